package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// FacturaItemRequest carries only product and quantity (plus optional
// discount). Price and tax rate are deliberately absent: they are always
// snapshotted from the catalog, never trusted from the caller.
type FacturaItemRequest struct {
	ProductoID string           `json:"producto_id" validate:"required,uuid"`
	Cantidad   int              `json:"cantidad"    validate:"required,min=1"`
	Descuento  *decimal.Decimal `json:"descuento"   validate:"omitempty"`
}

type FacturaRequest struct {
	Items     []FacturaItemRequest `json:"items"      validate:"required,min=1,dive"`
	ClienteID *string              `json:"cliente_id" validate:"omitempty,uuid"`
	// Total, when supplied, is validated against the server-computed grand
	// total with a 0.01 tolerance; it is never persisted.
	Total *decimal.Decimal `json:"total"`
}

type AnularFacturaRequest struct {
	Motivo string `json:"motivo" validate:"required,min=5"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type FacturaItemResponse struct {
	ProductoID     string          `json:"producto_id"`
	NombreProducto string          `json:"nombre_producto"`
	CodigoProducto string          `json:"codigo_producto"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Descuento      decimal.Decimal `json:"descuento"`
	BaseImponible  decimal.Decimal `json:"base_imponible"`
	TasaIva        decimal.Decimal `json:"tasa_iva"`
	ValorIva       decimal.Decimal `json:"valor_iva"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	TotalItem      decimal.Decimal `json:"total_item"`
}

type FacturaResponse struct {
	ID              string                `json:"id"`
	NumeroFactura   string                `json:"numero_factura"`
	ClienteID       *string               `json:"cliente_id,omitempty"`
	Items           []FacturaItemResponse `json:"items"`
	Subtotal        decimal.Decimal       `json:"subtotal"`
	TotalDescuentos decimal.Decimal       `json:"total_descuentos"`
	BaseImponible   decimal.Decimal       `json:"base_imponible"`
	TotalIva        decimal.Decimal       `json:"total_iva"`
	Total           decimal.Decimal       `json:"total"`
	Estado          string                `json:"estado"`
	MotivoAnulacion *string               `json:"motivo_anulacion,omitempty"`
	RealizadoPor    *string               `json:"realizado_por,omitempty"`
	CreadoEn        string                `json:"creado_en"`
	EmitidaEn       *string               `json:"emitida_en,omitempty"`
}
