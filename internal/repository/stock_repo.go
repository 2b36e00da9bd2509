package repository

import (
	"context"
	"errors"
	"time"

	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrCondicionNoCumplida signals that a conditional stock update matched no
// row: either the record does not exist or its cantidad is below the
// requested decrement. Services translate it to StockInsuficiente.
var ErrCondicionNoCumplida = errors.New("stock: condicion de cantidad no cumplida")

// StockRepository owns every mutation of the stock collection. All writes are
// single-statement conditional updates — no caller may read-then-write a
// cantidad.
type StockRepository interface {
	FindByProducto(ctx context.Context, productoID uuid.UUID) ([]model.Stock, error)
	FindByProductoYAlmacen(ctx context.Context, productoID, almacenID uuid.UUID) (*model.Stock, error)
	TotalPorProducto(ctx context.Context, productoID uuid.UUID) (int, error)

	// IncrementarTx atomically adds delta (> 0) to the pair, creating the row
	// when absent. Returns the updated row.
	IncrementarTx(tx *gorm.DB, productoID, almacenID uuid.UUID, delta int) (*model.Stock, error)

	// DecrementarCondicionalTx atomically subtracts cantidad (> 0) only when
	// the current value covers it; ErrCondicionNoCumplida otherwise. Never
	// creates a row, never writes partially.
	DecrementarCondicionalTx(tx *gorm.DB, productoID, almacenID uuid.UUID, cantidad int) (*model.Stock, error)

	// SetAbsolutoTx upserts cantidad and returns the pre-image quantity. The
	// existing row is read under a FOR UPDATE lock inside one transaction, so
	// the audit diff cannot race a concurrent writer.
	SetAbsolutoTx(tx *gorm.DB, productoID, almacenID uuid.UUID, cantidad int) (anterior int, s *model.Stock, err error)

	// EliminarTx deletes the pair and returns the removed row;
	// gorm.ErrRecordNotFound when absent.
	EliminarTx(tx *gorm.DB, productoID, almacenID uuid.UUID) (*model.Stock, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type stockRepo struct{ db *gorm.DB }

func NewStockRepository(db *gorm.DB) StockRepository { return &stockRepo{db: db} }

func (r *stockRepo) FindByProducto(ctx context.Context, productoID uuid.UUID) ([]model.Stock, error) {
	var rows []model.Stock
	// Stable order so repeated allocation attempts walk warehouses identically.
	err := r.db.WithContext(ctx).
		Where("producto_id = ?", productoID).
		Order("almacen_id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *stockRepo) FindByProductoYAlmacen(ctx context.Context, productoID, almacenID uuid.UUID) (*model.Stock, error) {
	var s model.Stock
	err := r.db.WithContext(ctx).
		Where("producto_id = ? AND almacen_id = ?", productoID, almacenID).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *stockRepo) TotalPorProducto(ctx context.Context, productoID uuid.UUID) (int, error) {
	var total *int
	err := r.db.WithContext(ctx).Model(&model.Stock{}).
		Select("SUM(cantidad)").
		Where("producto_id = ?", productoID).
		Scan(&total).Error
	if err != nil || total == nil {
		return 0, err
	}
	return *total, nil
}

func (r *stockRepo) IncrementarTx(tx *gorm.DB, productoID, almacenID uuid.UUID, delta int) (*model.Stock, error) {
	s := model.Stock{
		ProductoID:    productoID,
		AlmacenID:     almacenID,
		Cantidad:      delta,
		ActualizadoEn: time.Now().UTC(),
	}
	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "producto_id"}, {Name: "almacen_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"cantidad":       gorm.Expr("stock.cantidad + ?", delta),
			"actualizado_en": s.ActualizadoEn,
		}),
	}).Clauses(clause.Returning{}).Create(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *stockRepo) DecrementarCondicionalTx(tx *gorm.DB, productoID, almacenID uuid.UUID, cantidad int) (*model.Stock, error) {
	var s model.Stock
	// The minimum-quantity predicate lives in the WHERE clause of the UPDATE
	// itself: two concurrent decrements on the last units can never both
	// succeed.
	res := tx.Model(&s).Clauses(clause.Returning{}).
		Where("producto_id = ? AND almacen_id = ? AND cantidad >= ?", productoID, almacenID, cantidad).
		Updates(map[string]interface{}{
			"cantidad":       gorm.Expr("cantidad - ?", cantidad),
			"actualizado_en": time.Now().UTC(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrCondicionNoCumplida
	}
	return &s, nil
}

func (r *stockRepo) SetAbsolutoTx(tx *gorm.DB, productoID, almacenID uuid.UUID, cantidad int) (int, *model.Stock, error) {
	if cantidad < 0 {
		cantidad = 0
	}
	now := time.Now().UTC()
	var anterior int
	var s model.Stock
	// Insert-or-lock: a fresh pair is created in one statement (pre-image 0);
	// an existing row is locked FOR UPDATE before reading it, so the
	// pre-image a racing writer could move is pinned until our commit.
	err := tx.Transaction(func(tx *gorm.DB) error {
		s = model.Stock{
			ProductoID:    productoID,
			AlmacenID:     almacenID,
			Cantidad:      cantidad,
			ActualizadoEn: now,
		}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "producto_id"}, {Name: "almacen_id"}},
			DoNothing: true,
		}).Create(&s)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 1 {
			anterior = 0
			return nil
		}

		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("producto_id = ? AND almacen_id = ?", productoID, almacenID).
			First(&s).Error; err != nil {
			return err
		}
		anterior = s.Cantidad
		s.Cantidad = cantidad
		s.ActualizadoEn = now
		return tx.Model(&model.Stock{}).Where("id = ?", s.ID).
			Updates(map[string]interface{}{
				"cantidad":       cantidad,
				"actualizado_en": now,
			}).Error
	})
	if err != nil {
		return 0, nil, err
	}
	return anterior, &s, nil
}

func (r *stockRepo) EliminarTx(tx *gorm.DB, productoID, almacenID uuid.UUID) (*model.Stock, error) {
	var s model.Stock
	res := tx.Clauses(clause.Returning{}).
		Where("producto_id = ? AND almacen_id = ?", productoID, almacenID).
		Delete(&s)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &s, nil
}

func (r *stockRepo) DB() *gorm.DB { return r.db }
