package repository

import (
	"context"

	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AlmacenRepository resolves warehouses, their owning taller, and the
// role-membership check consulted by stock mutations with a known actor.
type AlmacenRepository interface {
	CreateTaller(ctx context.Context, t *model.Taller) error
	FindTallerByID(ctx context.Context, id uuid.UUID) (*model.Taller, error)
	AgregarMiembro(ctx context.Context, m *model.TallerMiembro) error

	CreateAlmacen(ctx context.Context, a *model.Almacen) error
	FindAlmacenByID(ctx context.Context, id uuid.UUID) (*model.Almacen, error)
	ListAlmacenesPorTaller(ctx context.Context, tallerID uuid.UUID) ([]model.Almacen, error)

	// TieneRolEnTaller reports whether the user holds any of the given roles
	// on the taller.
	TieneRolEnTaller(ctx context.Context, usuarioID, tallerID uuid.UUID, roles []string) (bool, error)
}

type almacenRepo struct{ db *gorm.DB }

func NewAlmacenRepository(db *gorm.DB) AlmacenRepository { return &almacenRepo{db: db} }

func (r *almacenRepo) CreateTaller(ctx context.Context, t *model.Taller) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *almacenRepo) FindTallerByID(ctx context.Context, id uuid.UUID) (*model.Taller, error) {
	var t model.Taller
	err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *almacenRepo) AgregarMiembro(ctx context.Context, m *model.TallerMiembro) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *almacenRepo) CreateAlmacen(ctx context.Context, a *model.Almacen) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *almacenRepo) FindAlmacenByID(ctx context.Context, id uuid.UUID) (*model.Almacen, error) {
	var a model.Almacen
	err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *almacenRepo) ListAlmacenesPorTaller(ctx context.Context, tallerID uuid.UUID) ([]model.Almacen, error) {
	var almacenes []model.Almacen
	err := r.db.WithContext(ctx).Where("taller_id = ?", tallerID).Order("nombre ASC").Find(&almacenes).Error
	return almacenes, err
}

func (r *almacenRepo) TieneRolEnTaller(ctx context.Context, usuarioID, tallerID uuid.UUID, roles []string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.TallerMiembro{}).
		Where("usuario_id = ? AND taller_id = ? AND rol IN ?", usuarioID, tallerID, roles).
		Count(&count).Error
	return count > 0, err
}
