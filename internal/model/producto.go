package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TasaIvaDefecto applies when a product has no explicit tax rate.
var TasaIvaDefecto = decimal.NewFromFloat(19.0)

// Producto is the catalog entry. Stock is the flat counter used only in
// "modo simple" (products without per-almacén stock rows); when stock rows
// exist it is a denormalized mirror of the aggregate and never the source
// of truth.
type Producto struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Codigo      string    `gorm:"uniqueIndex;not null"`
	Nombre      string    `gorm:"index;not null"`
	Descripcion *string
	Precio      decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	TasaIva     *decimal.Decimal `gorm:"type:decimal(5,2)"` // nil → 19%
	Stock       int              `gorm:"not null;default:0"`
	CategoriaID *uuid.UUID       `gorm:"type:uuid;index"`
	Activo      bool             `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TasaIvaEfectiva returns the product tax rate, defaulting to 19%.
func (p *Producto) TasaIvaEfectiva() decimal.Decimal {
	if p.TasaIva == nil {
		return TasaIvaDefecto
	}
	return *p.TasaIva
}
