package model

import (
	"time"

	"github.com/google/uuid"
)

// Stock is the per-(producto, almacén) quantity record. Cantidad never goes
// below zero: every decrement runs as a single conditional UPDATE whose WHERE
// clause includes the minimum-quantity predicate. Rows are created implicitly
// on the first positive adjustment and removed only by administrative delete.
type Stock struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductoID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_stock_producto_almacen;index"`
	AlmacenID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_stock_producto_almacen"`
	Cantidad      int       `gorm:"not null;default:0"`
	ActualizadoEn time.Time `gorm:"not null"`
}

func (Stock) TableName() string { return "stock" }
