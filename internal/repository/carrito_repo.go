package repository

import (
	"context"
	"time"

	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CarritoRepository interface {
	Create(ctx context.Context, c *model.Carrito) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Carrito, error)
	ReplaceItems(ctx context.Context, carritoID uuid.UUID, items []model.CarritoItem) error
	Clear(ctx context.Context, carritoID uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type carritoRepo struct{ db *gorm.DB }

func NewCarritoRepository(db *gorm.DB) CarritoRepository { return &carritoRepo{db: db} }

func (r *carritoRepo) Create(ctx context.Context, c *model.Carrito) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *carritoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Carrito, error) {
	var c model.Carrito
	err := r.db.WithContext(ctx).Preload("Items").First(&c, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *carritoRepo) ReplaceItems(ctx context.Context, carritoID uuid.UUID, items []model.CarritoItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("carrito_id = ?", carritoID).Delete(&model.CarritoItem{}).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].CarritoID = carritoID
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		return tx.Model(&model.Carrito{}).Where("id = ?", carritoID).
			Update("actualizado_en", time.Now().UTC()).Error
	})
}

func (r *carritoRepo) Clear(ctx context.Context, carritoID uuid.UUID) error {
	return r.ReplaceItems(ctx, carritoID, nil)
}

func (r *carritoRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Select("Items").Delete(&model.Carrito{ID: id}).Error
}
