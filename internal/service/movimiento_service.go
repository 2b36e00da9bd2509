package service

import (
	"context"
	"errors"
	"time"

	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/apierror"
	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/dto"
	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/model"
	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MovimientoService records manual inventory movements against the flat
// product counter and serves the audit listings. Warehouse-scoped changes are
// out of its reach on purpose: those go through StockService so the
// conditional-update path is never bypassed.
type MovimientoService interface {
	Crear(ctx context.Context, req dto.CrearMovimientoRequest, realizadoPor *uuid.UUID) (*model.Movimiento, *model.Producto, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*model.Movimiento, error)
	ListarPorProducto(ctx context.Context, productoID uuid.UUID) ([]model.Movimiento, error)
	Listar(ctx context.Context, filter dto.MovimientoFilter) ([]model.Movimiento, int64, error)
}

type movimientoService struct {
	movimientoRepo repository.MovimientoRepository
	productoRepo   repository.ProductoRepository
}

func NewMovimientoService(movimientoRepo repository.MovimientoRepository, productoRepo repository.ProductoRepository) MovimientoService {
	return &movimientoService{movimientoRepo: movimientoRepo, productoRepo: productoRepo}
}

func (s *movimientoService) Crear(ctx context.Context, req dto.CrearMovimientoRequest, realizadoPor *uuid.UUID) (*model.Movimiento, *model.Producto, error) {
	if req.AlmacenID != nil && *req.AlmacenID != "" {
		return nil, nil, apierror.Validacion("Movimientos manuales no aceptan almacen_id; use el endpoint de ajuste de stock por almacen")
	}

	tipo := model.TipoMovimientoDe(req.Tipo)
	if tipo == "" {
		return nil, nil, apierror.Validacion("Tipo de movimiento invalido: %s", req.Tipo)
	}
	productoID, err := uuid.Parse(req.ProductoID)
	if err != nil {
		return nil, nil, apierror.Validacion("producto_id invalido")
	}
	if req.Cantidad <= 0 {
		return nil, nil, apierror.Validacion("Cantidad debe ser mayor a 0")
	}

	if _, err := s.productoRepo.FindByID(ctx, productoID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apierror.NoEncontrado("Producto %s no encontrado", productoID)
		}
		return nil, nil, apierror.Interno(err)
	}

	delta := tipo.EfectoSigno() * req.Cantidad
	producto, err := s.productoRepo.AjustarStockSimple(ctx, productoID, delta)
	if err != nil {
		if errors.Is(err, repository.ErrCondicionNoCumplida) {
			return nil, nil, apierror.StockInsuficiente(productoID, req.Cantidad)
		}
		return nil, nil, apierror.Interno(err)
	}

	// The movement row is written synchronously: for manual movements the
	// record IS the operation, unlike the async audit trail of ledger writes.
	m := &model.Movimiento{
		Tipo:         string(tipo),
		ProductoID:   productoID,
		Cantidad:     req.Cantidad,
		Referencia:   req.Referencia,
		Notas:        req.Notas,
		RealizadoPor: realizadoPor,
		CreadoEn:     time.Now().UTC(),
	}
	if err := s.movimientoRepo.Create(ctx, m); err != nil {
		return nil, nil, apierror.Interno(err)
	}
	return m, producto, nil
}

func (s *movimientoService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*model.Movimiento, error) {
	m, err := s.movimientoRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NoEncontrado("Movimiento %s no encontrado", id)
		}
		return nil, apierror.Interno(err)
	}
	return m, nil
}

func (s *movimientoService) ListarPorProducto(ctx context.Context, productoID uuid.UUID) ([]model.Movimiento, error) {
	movs, err := s.movimientoRepo.ListByProducto(ctx, productoID)
	if err != nil {
		return nil, apierror.Interno(err)
	}
	return movs, nil
}

func (s *movimientoService) Listar(ctx context.Context, filter dto.MovimientoFilter) ([]model.Movimiento, int64, error) {
	if filter.Tipo != "" && model.TipoMovimientoDe(filter.Tipo) == "" {
		return nil, 0, apierror.Validacion("Tipo de movimiento invalido: %s", filter.Tipo)
	}
	movs, total, err := s.movimientoRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, apierror.Interno(err)
	}
	return movs, total, nil
}
