package service

import (
	"context"
	"errors"

	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/apierror"
	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/model"
	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/repository"
	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// MovimientoPublisher enqueues audit events after a stock write committed.
// Satisfied by *worker.Dispatcher; stubbed in unit tests.
type MovimientoPublisher interface {
	EncolarMovimiento(ctx context.Context, job worker.MovimientoJob) error
}

// rolesStock are the taller roles allowed to mutate stock directly.
var rolesStock = []string{model.RolAdmin, model.RolVendedor}

// StockService is the ledger boundary: every quantity change on a
// (producto, almacén) pair goes through its conditional operations.
type StockService interface {
	ObtenerPorProducto(ctx context.Context, productoID uuid.UUID) ([]model.Stock, int, error)
	ObtenerTotal(ctx context.Context, productoID uuid.UUID) (int, error)

	// Ajustar applies a signed delta. Positive deltas upsert-increment;
	// negative deltas decrement only when the current quantity covers them;
	// zero is a no-op read. When realizadoPor is set the actor must hold a
	// stock role on the almacén's taller; nil actors (system/checkout paths)
	// skip the check.
	Ajustar(ctx context.Context, productoID, almacenID uuid.UUID, delta int, realizadoPor *uuid.UUID) (*model.Stock, int, error)

	// SetAbsoluto sets the quantity to max(0, cantidad) and emits the signed
	// audit diff computed from the pre-image read under the row lock.
	SetAbsoluto(ctx context.Context, productoID, almacenID uuid.UUID, cantidad int, realizadoPor *uuid.UUID) (*model.Stock, int, error)

	// EliminarRegistro removes the pair's row entirely, emitting an EGRESO
	// for the removed quantity.
	EliminarRegistro(ctx context.Context, productoID, almacenID uuid.UUID, realizadoPor *uuid.UUID) (int, error)
}

type stockService struct {
	stockRepo    repository.StockRepository
	productoRepo repository.ProductoRepository
	almacenRepo  repository.AlmacenRepository
	publisher    MovimientoPublisher
}

func NewStockService(
	stockRepo repository.StockRepository,
	productoRepo repository.ProductoRepository,
	almacenRepo repository.AlmacenRepository,
	publisher MovimientoPublisher,
) StockService {
	return &stockService{
		stockRepo:    stockRepo,
		productoRepo: productoRepo,
		almacenRepo:  almacenRepo,
		publisher:    publisher,
	}
}

func (s *stockService) ObtenerPorProducto(ctx context.Context, productoID uuid.UUID) ([]model.Stock, int, error) {
	rows, err := s.stockRepo.FindByProducto(ctx, productoID)
	if err != nil {
		return nil, 0, apierror.Interno(err)
	}
	total := 0
	for _, r := range rows {
		total += r.Cantidad
	}
	return rows, total, nil
}

func (s *stockService) ObtenerTotal(ctx context.Context, productoID uuid.UUID) (int, error) {
	total, err := s.stockRepo.TotalPorProducto(ctx, productoID)
	if err != nil {
		return 0, apierror.Interno(err)
	}
	return total, nil
}

// autorizar resolves the almacén and, when the action has a known actor,
// verifies taller membership. Consumer-facing checkout passes a nil actor,
// which skips the role check.
func (s *stockService) autorizar(ctx context.Context, almacenID uuid.UUID, realizadoPor *uuid.UUID) error {
	almacen, err := s.almacenRepo.FindAlmacenByID(ctx, almacenID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.NoEncontrado("Almacen %s no encontrado", almacenID)
		}
		return apierror.Interno(err)
	}
	if realizadoPor == nil {
		return nil
	}
	allowed, err := s.almacenRepo.TieneRolEnTaller(ctx, *realizadoPor, almacen.TallerID, rolesStock)
	if err != nil {
		return apierror.Interno(err)
	}
	if !allowed {
		return apierror.NoAutorizado("Permisos insuficientes para modificar stock en este almacen")
	}
	return nil
}

func (s *stockService) Ajustar(ctx context.Context, productoID, almacenID uuid.UUID, delta int, realizadoPor *uuid.UUID) (*model.Stock, int, error) {
	if err := s.autorizar(ctx, almacenID, realizadoPor); err != nil {
		return nil, 0, err
	}

	if delta == 0 {
		row, err := s.stockRepo.FindByProductoYAlmacen(ctx, productoID, almacenID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, apierror.Interno(err)
		}
		total, terr := s.stockRepo.TotalPorProducto(ctx, productoID)
		if terr != nil {
			return nil, 0, apierror.Interno(terr)
		}
		return row, total, nil
	}

	var row *model.Stock
	var err error
	if delta > 0 {
		row, err = s.stockRepo.IncrementarTx(s.stockRepo.DB(), productoID, almacenID, delta)
	} else {
		row, err = s.stockRepo.DecrementarCondicionalTx(s.stockRepo.DB(), productoID, almacenID, -delta)
	}
	if err != nil {
		if errors.Is(err, repository.ErrCondicionNoCumplida) {
			return nil, 0, apierror.StockInsuficiente(productoID, -delta)
		}
		return nil, 0, apierror.Interno(err)
	}

	total := s.sincronizarTotal(ctx, productoID)

	if delta > 0 {
		s.publicar(ctx, model.TipoIngreso, productoID, delta, realizadoPor, "ajuste", "")
	} else {
		s.publicar(ctx, model.TipoEgreso, productoID, -delta, realizadoPor, "ajuste", "")
	}
	return row, total, nil
}

func (s *stockService) SetAbsoluto(ctx context.Context, productoID, almacenID uuid.UUID, cantidad int, realizadoPor *uuid.UUID) (*model.Stock, int, error) {
	if err := s.autorizar(ctx, almacenID, realizadoPor); err != nil {
		return nil, 0, err
	}
	if cantidad < 0 {
		cantidad = 0
	}

	anterior, row, err := s.stockRepo.SetAbsolutoTx(s.stockRepo.DB(), productoID, almacenID, cantidad)
	if err != nil {
		return nil, 0, apierror.Interno(err)
	}

	total := s.sincronizarTotal(ctx, productoID)

	// The diff comes from the pre-image the repo read under its row lock:
	// correct even when a concurrent writer raced the upsert.
	diff := cantidad - anterior
	switch {
	case diff > 0:
		s.publicar(ctx, model.TipoIngreso, productoID, diff, realizadoPor, "setStock", "ajuste absoluto")
	case diff < 0:
		s.publicar(ctx, model.TipoEgreso, productoID, -diff, realizadoPor, "setStock", "ajuste absoluto")
	}
	return row, total, nil
}

func (s *stockService) EliminarRegistro(ctx context.Context, productoID, almacenID uuid.UUID, realizadoPor *uuid.UUID) (int, error) {
	if err := s.autorizar(ctx, almacenID, realizadoPor); err != nil {
		return 0, err
	}

	removed, err := s.stockRepo.EliminarTx(s.stockRepo.DB(), productoID, almacenID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, apierror.NoEncontrado("Registro de stock no encontrado")
		}
		return 0, apierror.Interno(err)
	}

	total := s.sincronizarTotal(ctx, productoID)

	if removed.Cantidad > 0 {
		s.publicar(ctx, model.TipoEgreso, productoID, removed.Cantidad, realizadoPor, "removeRecord", "eliminacion registro")
	}
	return total, nil
}

// sincronizarTotal mirrors the aggregate into producto.stock. The mirror is a
// read optimization, not the source of truth: failures are logged only.
func (s *stockService) sincronizarTotal(ctx context.Context, productoID uuid.UUID) int {
	total, err := s.stockRepo.TotalPorProducto(ctx, productoID)
	if err != nil {
		log.Warn().Err(err).Str("producto_id", productoID.String()).Msg("stock: no se pudo leer total para sincronizar")
		return 0
	}
	if err := s.productoRepo.SincronizarStock(ctx, productoID, total); err != nil {
		log.Warn().Err(err).Str("producto_id", productoID.String()).Msg("stock: fallo espejo de stock en producto")
	}
	return total
}

// publicar enqueues the audit event. Never awaited, never escalated: an audit
// outage must not fail the ledger write that already committed.
func (s *stockService) publicar(ctx context.Context, tipo model.TipoMovimiento, productoID uuid.UUID, cantidad int, realizadoPor *uuid.UUID, referencia, notas string) {
	if s.publisher == nil {
		return
	}
	job := worker.MovimientoJob{
		Tipo:         string(tipo),
		ProductoID:   productoID,
		Cantidad:     cantidad,
		RealizadoPor: realizadoPor,
		Referencia:   referencia,
		Notas:        notas,
	}
	if err := s.publisher.EncolarMovimiento(ctx, job); err != nil {
		log.Warn().Err(err).Str("producto_id", productoID.String()).Msg("stock: fallo al encolar movimiento de auditoria")
	}
}
