package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Invoice lifecycle states. Only EMITIDA has decremented stock; BORRADOR never
// touches the ledger; ANULADA is terminal and does not restore stock.
const (
	EstadoBorrador = "BORRADOR"
	EstadoEmitida  = "EMITIDA"
	EstadoAnulada  = "ANULADA"
)

// Factura is the invoice aggregate. Totals are always recomputed server-side
// from the items; client-supplied totals are only ever compared, never stored.
type Factura struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NumeroFactura string    `gorm:"uniqueIndex;not null"`
	ClienteID     *uuid.UUID `gorm:"type:uuid;index"`

	Items []FacturaItem `gorm:"foreignKey:FacturaID;constraint:OnDelete:CASCADE"`

	Subtotal        decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	TotalDescuentos decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	BaseImponible   decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	TotalIva        decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Total           decimal.Decimal `gorm:"type:decimal(14,2);not null"`

	Estado          string `gorm:"not null;default:'BORRADOR';index"`
	MotivoAnulacion *string
	RealizadoPor    *uuid.UUID `gorm:"type:uuid;index"`
	CreadoEn        time.Time  `gorm:"not null"`
	EmitidaEn       *time.Time
}

func (Factura) TableName() string { return "facturas" }

// FacturaItem is a settled invoice line. Name, code, price and tax rate are
// snapshots captured at settlement time and immutable thereafter.
type FacturaItem struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	FacturaID      uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductoID     uuid.UUID `gorm:"type:uuid;not null;index"`
	NombreProducto string    `gorm:"not null"`
	CodigoProducto string

	Cantidad       int             `gorm:"not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Descuento      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TasaIva        decimal.Decimal `gorm:"type:decimal(5,2);not null"`

	// Derived: Subtotal = Cantidad×PrecioUnitario − Descuento,
	// ValorIva = BaseImponible × TasaIva/100, TotalItem = base + IVA.
	Subtotal      decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	BaseImponible decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	ValorIva      decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	TotalItem     decimal.Decimal `gorm:"type:decimal(14,2);not null"`
}

func (FacturaItem) TableName() string { return "factura_items" }
