package model

import (
	"time"

	"github.com/google/uuid"
)

// Carrito holds pending purchase lines until checkout settles them into an
// EMITIDA factura. It is cleared only after the factura committed.
type Carrito struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UsuarioID     *uuid.UUID `gorm:"type:uuid;index"`
	Items         []CarritoItem `gorm:"foreignKey:CarritoID;constraint:OnDelete:CASCADE"`
	CreadoEn      time.Time  `gorm:"not null"`
	ActualizadoEn time.Time  `gorm:"not null"`
}

func (Carrito) TableName() string { return "carritos" }

type CarritoItem struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CarritoID  uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductoID uuid.UUID `gorm:"type:uuid;not null"`
	Cantidad   int       `gorm:"not null"`
}

func (CarritoItem) TableName() string { return "carrito_items" }
