package repository

import (
	"context"

	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/dto"
	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductoRepository defines data access for the catalog, including the flat
// stock counter used in modo simple.
type ProductoRepository interface {
	Create(ctx context.Context, p *model.Producto) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Producto, error)
	FindByCodigo(ctx context.Context, codigo string) (*model.Producto, error)
	List(ctx context.Context, filter dto.ProductoFilter) ([]model.Producto, int64, error)
	Update(ctx context.Context, p *model.Producto) error
	SoftDelete(ctx context.Context, id uuid.UUID) error

	// DescontarStockSimpleTx is the modo-simple conditional decrement: a
	// single UPDATE guarded by stock >= cantidad. ErrCondicionNoCumplida when
	// the product is missing or short.
	DescontarStockSimpleTx(tx *gorm.DB, id uuid.UUID, cantidad int) (*model.Producto, error)

	// AjustarStockSimple shifts the flat counter by delta (manual
	// movimientos); negative deltas are conditional like the decrement above.
	AjustarStockSimple(ctx context.Context, id uuid.UUID, delta int) (*model.Producto, error)

	// SincronizarStock mirrors the aggregate per-almacén total into the
	// denormalized stock column. Best-effort read optimization only.
	SincronizarStock(ctx context.Context, id uuid.UUID, total int) error

	DB() *gorm.DB
}

type productoRepo struct{ db *gorm.DB }

func NewProductoRepository(db *gorm.DB) ProductoRepository { return &productoRepo{db: db} }

func (r *productoRepo) Create(ctx context.Context, p *model.Producto) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Producto, error) {
	var p model.Producto
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productoRepo) FindByCodigo(ctx context.Context, codigo string) (*model.Producto, error) {
	var p model.Producto
	err := r.db.WithContext(ctx).Where("codigo = ? AND activo = true", codigo).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productoRepo) List(ctx context.Context, filter dto.ProductoFilter) ([]model.Producto, int64, error) {
	var productos []model.Producto
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Producto{})

	// Activo filter: "false" = inactivos, "all" = todos, anything else = activos (default)
	switch filter.Activo {
	case "false":
		q = q.Where("activo = false")
	case "all":
		// no filter
	default:
		q = q.Where("activo = true")
	}

	if filter.Codigo != "" {
		q = q.Where("codigo = ?", filter.Codigo)
	}
	if filter.Nombre != "" {
		q = q.Where("nombre ILIKE ?", "%"+filter.Nombre+"%")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("nombre ASC").Limit(filter.Limit).Offset(offset).Find(&productos).Error
	return productos, total, err
}

func (r *productoRepo) Update(ctx context.Context, p *model.Producto) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *productoRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Producto{}).Where("id = ?", id).Update("activo", false).Error
}

func (r *productoRepo) DescontarStockSimpleTx(tx *gorm.DB, id uuid.UUID, cantidad int) (*model.Producto, error) {
	var p model.Producto
	res := tx.Model(&p).Clauses(clause.Returning{}).
		Where("id = ? AND stock >= ?", id, cantidad).
		Update("stock", gorm.Expr("stock - ?", cantidad))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrCondicionNoCumplida
	}
	return &p, nil
}

func (r *productoRepo) AjustarStockSimple(ctx context.Context, id uuid.UUID, delta int) (*model.Producto, error) {
	var p model.Producto
	q := r.db.WithContext(ctx).Model(&p).Clauses(clause.Returning{})
	if delta < 0 {
		q = q.Where("id = ? AND stock >= ?", id, -delta)
	} else {
		q = q.Where("id = ?", id)
	}
	res := q.Update("stock", gorm.Expr("stock + ?", delta))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrCondicionNoCumplida
	}
	return &p, nil
}

func (r *productoRepo) SincronizarStock(ctx context.Context, id uuid.UUID, total int) error {
	return r.db.WithContext(ctx).Model(&model.Producto{}).
		Where("id = ?", id).
		Update("stock", total).Error
}

func (r *productoRepo) DB() *gorm.DB { return r.db }
