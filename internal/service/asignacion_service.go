package service

import (
	"context"

	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/apierror"
	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/repository"

	"github.com/google/uuid"
)

// Toma is one planned take: cantidad units from almacén.
type Toma struct {
	AlmacenID uuid.UUID
	Cantidad  int
}

// PlanAsignacion is the result of planning a required quantity against a
// product's warehouse rows. Simple=true means the product has no warehouse
// rows and the whole quantity must come from the flat producto.stock counter.
type PlanAsignacion struct {
	ProductoID uuid.UUID
	Requerido  int
	Simple     bool
	Tomas      []Toma
}

// AsignacionService plans how a required quantity is satisfied across
// almacenes. Planning only reads — executing the decrements (and handling
// their failure modes) belongs to the caller, so a mid-plan failure never
// leaves hidden partial writes.
type AsignacionService interface {
	Planear(ctx context.Context, productoID uuid.UUID, requerido int) (*PlanAsignacion, error)
}

type asignacionService struct {
	stockRepo repository.StockRepository
}

func NewAsignacionService(stockRepo repository.StockRepository) AsignacionService {
	return &asignacionService{stockRepo: stockRepo}
}

// Planear walks the product's stock rows in their stable order, greedily
// taking min(disponible, restante) from each. Rows with disponible <= 0 are
// skipped. A shortfall after exhausting all rows fails with
// StockInsuficiente carrying the missing units.
func (s *asignacionService) Planear(ctx context.Context, productoID uuid.UUID, requerido int) (*PlanAsignacion, error) {
	if requerido <= 0 {
		return nil, apierror.Validacion("Cantidad requerida debe ser mayor a 0")
	}

	rows, err := s.stockRepo.FindByProducto(ctx, productoID)
	if err != nil {
		return nil, apierror.Interno(err)
	}

	if len(rows) == 0 {
		// Modo simple: no almacenes configured for this product. The caller
		// decrements the flat counter conditionally for the whole quantity.
		return &PlanAsignacion{ProductoID: productoID, Requerido: requerido, Simple: true}, nil
	}

	plan := &PlanAsignacion{ProductoID: productoID, Requerido: requerido}
	restante := requerido
	for _, row := range rows {
		if restante <= 0 {
			break
		}
		if row.Cantidad <= 0 {
			continue
		}
		tomar := row.Cantidad
		if restante < tomar {
			tomar = restante
		}
		plan.Tomas = append(plan.Tomas, Toma{AlmacenID: row.AlmacenID, Cantidad: tomar})
		restante -= tomar
	}

	if restante > 0 {
		return nil, apierror.StockInsuficiente(productoID, restante)
	}
	return plan, nil
}
