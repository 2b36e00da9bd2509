package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// TipoMovimiento classifies a stock movement and carries the sign of its
// effect on the flat product counter.
type TipoMovimiento string

const (
	TipoIngreso    TipoMovimiento = "INGRESO"
	TipoEgreso     TipoMovimiento = "EGRESO"
	TipoVenta      TipoMovimiento = "VENTA"
	TipoDevolucion TipoMovimiento = "DEVOLUCION"
	TipoAjuste     TipoMovimiento = "AJUSTE"
)

// EfectoSigno returns +1 for movements that add stock, −1 otherwise.
func (t TipoMovimiento) EfectoSigno() int {
	switch t {
	case TipoIngreso, TipoDevolucion:
		return +1
	default:
		return -1
	}
}

// TipoMovimientoDe parses a movement type case-insensitively; empty string on
// unknown input so callers can reject it.
func TipoMovimientoDe(s string) TipoMovimiento {
	switch TipoMovimiento(strings.ToUpper(strings.TrimSpace(s))) {
	case TipoIngreso:
		return TipoIngreso
	case TipoEgreso:
		return TipoEgreso
	case TipoVenta:
		return TipoVenta
	case TipoDevolucion:
		return TipoDevolucion
	case TipoAjuste:
		return TipoAjuste
	default:
		return ""
	}
}

// Movimiento is the immutable audit record of a stock quantity change.
// Rows are appended by the audit worker strictly after the originating stock
// mutation committed; they are never updated or deleted.
type Movimiento struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Tipo         string    `gorm:"not null;index"`
	ProductoID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Cantidad     int       `gorm:"not null"`
	Referencia   *string
	Notas        *string
	RealizadoPor *uuid.UUID `gorm:"type:uuid"`
	CreadoEn     time.Time  `gorm:"not null;index"`
}

func (Movimiento) TableName() string { return "movimientos" }
