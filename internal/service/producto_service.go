package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/apierror"
	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/dto"
	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/model"
	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const precioCachePrefix = "precio:"

// ProductoService is the catalog. Price lookups are cached in redis with a
// short TTL; every price or tax mutation invalidates the entry.
type ProductoService interface {
	Crear(ctx context.Context, req dto.CrearProductoRequest) (*model.Producto, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*model.Producto, error)
	ObtenerPorCodigo(ctx context.Context, codigo string) (*model.Producto, error)
	Listar(ctx context.Context, filter dto.ProductoFilter) ([]model.Producto, int64, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*model.Producto, error)
	Eliminar(ctx context.Context, id uuid.UUID) error

	// ObtenerPrecio serves the public price lookup through the cache.
	ObtenerPrecio(ctx context.Context, id uuid.UUID) (*dto.PrecioResponse, error)
}

type productoService struct {
	productoRepo repository.ProductoRepository
	rdb          *redis.Client
	cacheTTL     time.Duration
}

// NewProductoService builds the catalog service. rdb may be nil (tests);
// cache operations become no-ops.
func NewProductoService(productoRepo repository.ProductoRepository, rdb *redis.Client, cacheTTL time.Duration) ProductoService {
	return &productoService{productoRepo: productoRepo, rdb: rdb, cacheTTL: cacheTTL}
}

func (s *productoService) Crear(ctx context.Context, req dto.CrearProductoRequest) (*model.Producto, error) {
	if _, err := s.productoRepo.FindByCodigo(ctx, req.Codigo); err == nil {
		return nil, apierror.Validacion("Ya existe un producto con codigo %s", req.Codigo)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierror.Interno(err)
	}

	p := &model.Producto{
		Codigo:      req.Codigo,
		Nombre:      req.Nombre,
		Descripcion: req.Descripcion,
		Precio:      req.Precio,
		TasaIva:     req.TasaIva,
		Stock:       req.Stock,
		Activo:      true,
	}
	if req.CategoriaID != nil {
		cid, err := uuid.Parse(*req.CategoriaID)
		if err != nil {
			return nil, apierror.Validacion("categoria_id invalido")
		}
		p.CategoriaID = &cid
	}

	if err := s.productoRepo.Create(ctx, p); err != nil {
		return nil, apierror.Interno(err)
	}
	return p, nil
}

func (s *productoService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*model.Producto, error) {
	p, err := s.productoRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NoEncontrado("Producto %s no encontrado", id)
		}
		return nil, apierror.Interno(err)
	}
	return p, nil
}

func (s *productoService) ObtenerPorCodigo(ctx context.Context, codigo string) (*model.Producto, error) {
	p, err := s.productoRepo.FindByCodigo(ctx, codigo)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NoEncontrado("Producto con codigo %s no encontrado", codigo)
		}
		return nil, apierror.Interno(err)
	}
	return p, nil
}

func (s *productoService) Listar(ctx context.Context, filter dto.ProductoFilter) ([]model.Producto, int64, error) {
	productos, total, err := s.productoRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, apierror.Interno(err)
	}
	return productos, total, nil
}

func (s *productoService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*model.Producto, error) {
	p, err := s.ObtenerPorID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Nombre != nil {
		p.Nombre = *req.Nombre
	}
	if req.Descripcion != nil {
		p.Descripcion = req.Descripcion
	}
	if req.Precio != nil {
		p.Precio = *req.Precio
	}
	if req.TasaIva != nil {
		p.TasaIva = req.TasaIva
	}

	if err := s.productoRepo.Update(ctx, p); err != nil {
		return nil, apierror.Interno(err)
	}
	s.invalidarPrecio(ctx, id)
	return p, nil
}

func (s *productoService) Eliminar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.ObtenerPorID(ctx, id); err != nil {
		return err
	}
	if err := s.productoRepo.SoftDelete(ctx, id); err != nil {
		return apierror.Interno(err)
	}
	s.invalidarPrecio(ctx, id)
	return nil
}

func (s *productoService) ObtenerPrecio(ctx context.Context, id uuid.UUID) (*dto.PrecioResponse, error) {
	key := precioCachePrefix + id.String()

	if s.rdb != nil {
		if raw, err := s.rdb.Get(ctx, key).Result(); err == nil {
			var cached dto.PrecioResponse
			if jerr := json.Unmarshal([]byte(raw), &cached); jerr == nil {
				return &cached, nil
			}
			// Corrupt entry: drop it and fall through to the database.
			s.rdb.Del(ctx, key)
		}
	}

	p, err := s.ObtenerPorID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := &dto.PrecioResponse{
		ProductoID: p.ID.String(),
		Nombre:     p.Nombre,
		Precio:     p.Precio,
		TasaIva:    p.TasaIvaEfectiva(),
	}

	if s.rdb != nil {
		if raw, jerr := json.Marshal(resp); jerr == nil {
			if err := s.rdb.Set(ctx, key, raw, s.cacheTTL).Err(); err != nil {
				log.Warn().Err(err).Str("producto_id", id.String()).Msg("producto: fallo al cachear precio")
			}
		}
	}
	return resp, nil
}

func (s *productoService) invalidarPrecio(ctx context.Context, id uuid.UUID) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, precioCachePrefix+id.String()).Err(); err != nil {
		log.Warn().Err(err).Str("producto_id", id.String()).Msg("producto: fallo al invalidar cache de precio")
	}
}
