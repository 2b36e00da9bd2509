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

// CarritoService manages shopping carts. Carts hold quantities only; prices
// and taxes are resolved at checkout from the catalog snapshot, so a cart can
// sit for days without freezing stale prices.
type CarritoService interface {
	Crear(ctx context.Context, req dto.CrearCarritoRequest) (*model.Carrito, error)
	Obtener(ctx context.Context, id uuid.UUID) (*model.Carrito, error)
	AgregarItem(ctx context.Context, id uuid.UUID, req dto.AgregarItemRequest) (*model.Carrito, error)
	QuitarItem(ctx context.Context, id, productoID uuid.UUID) (*model.Carrito, error)
	Vaciar(ctx context.Context, id uuid.UUID) error
	Eliminar(ctx context.Context, id uuid.UUID) error
}

type carritoService struct {
	carritoRepo  repository.CarritoRepository
	productoRepo repository.ProductoRepository
}

func NewCarritoService(carritoRepo repository.CarritoRepository, productoRepo repository.ProductoRepository) CarritoService {
	return &carritoService{carritoRepo: carritoRepo, productoRepo: productoRepo}
}

func (s *carritoService) Crear(ctx context.Context, req dto.CrearCarritoRequest) (*model.Carrito, error) {
	c := &model.Carrito{
		CreadoEn:      time.Now().UTC(),
		ActualizadoEn: time.Now().UTC(),
	}
	if req.UsuarioID != nil {
		uid, err := uuid.Parse(*req.UsuarioID)
		if err != nil {
			return nil, apierror.Validacion("usuario_id invalido")
		}
		c.UsuarioID = &uid
	}

	for _, it := range req.Items {
		pid, err := s.validarProducto(ctx, it.ProductoID, it.Cantidad)
		if err != nil {
			return nil, err
		}
		c.Items = agregarOMergear(c.Items, pid, it.Cantidad)
	}

	if err := s.carritoRepo.Create(ctx, c); err != nil {
		return nil, apierror.Interno(err)
	}
	return c, nil
}

func (s *carritoService) Obtener(ctx context.Context, id uuid.UUID) (*model.Carrito, error) {
	c, err := s.carritoRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NoEncontrado("Carrito %s no encontrado", id)
		}
		return nil, apierror.Interno(err)
	}
	return c, nil
}

func (s *carritoService) AgregarItem(ctx context.Context, id uuid.UUID, req dto.AgregarItemRequest) (*model.Carrito, error) {
	c, err := s.Obtener(ctx, id)
	if err != nil {
		return nil, err
	}
	pid, err := s.validarProducto(ctx, req.ProductoID, req.Cantidad)
	if err != nil {
		return nil, err
	}

	items := agregarOMergear(c.Items, pid, req.Cantidad)
	if err := s.carritoRepo.ReplaceItems(ctx, id, items); err != nil {
		return nil, apierror.Interno(err)
	}
	return s.Obtener(ctx, id)
}

func (s *carritoService) QuitarItem(ctx context.Context, id, productoID uuid.UUID) (*model.Carrito, error) {
	c, err := s.Obtener(ctx, id)
	if err != nil {
		return nil, err
	}

	var items []model.CarritoItem
	found := false
	for _, it := range c.Items {
		if it.ProductoID == productoID {
			found = true
			continue
		}
		items = append(items, it)
	}
	if !found {
		return nil, apierror.NoEncontrado("Producto %s no esta en el carrito", productoID)
	}

	if err := s.carritoRepo.ReplaceItems(ctx, id, items); err != nil {
		return nil, apierror.Interno(err)
	}
	return s.Obtener(ctx, id)
}

func (s *carritoService) Vaciar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Obtener(ctx, id); err != nil {
		return err
	}
	if err := s.carritoRepo.Clear(ctx, id); err != nil {
		return apierror.Interno(err)
	}
	return nil
}

func (s *carritoService) Eliminar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Obtener(ctx, id); err != nil {
		return err
	}
	if err := s.carritoRepo.Delete(ctx, id); err != nil {
		return apierror.Interno(err)
	}
	return nil
}

// validarProducto parses the id and checks the product exists and is active.
// Stock is deliberately NOT checked here: availability is only decided by the
// conditional decrements at checkout.
func (s *carritoService) validarProducto(ctx context.Context, rawID string, cantidad int) (uuid.UUID, error) {
	pid, err := uuid.Parse(rawID)
	if err != nil {
		return uuid.Nil, apierror.Validacion("producto_id invalido: %s", rawID)
	}
	if cantidad <= 0 {
		return uuid.Nil, apierror.Validacion("Cantidad debe ser mayor a 0")
	}
	p, err := s.productoRepo.FindByID(ctx, pid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, apierror.NoEncontrado("Producto %s no encontrado", pid)
		}
		return uuid.Nil, apierror.Interno(err)
	}
	if !p.Activo {
		return uuid.Nil, apierror.Validacion("Producto %s no esta activo", p.Codigo)
	}
	return pid, nil
}

// agregarOMergear adds cantidad to an existing line of the product or appends
// a new one.
func agregarOMergear(items []model.CarritoItem, productoID uuid.UUID, cantidad int) []model.CarritoItem {
	for i := range items {
		if items[i].ProductoID == productoID {
			items[i].Cantidad += cantidad
			return items
		}
	}
	return append(items, model.CarritoItem{ProductoID: productoID, Cantidad: cantidad})
}
