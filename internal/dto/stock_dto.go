package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

// AjustarStockRequest is bound from POST /v1/stock/ajustar.
// Delta may be negative (conditional decrement) or positive (upsert increment).
type AjustarStockRequest struct {
	ProductoID string `json:"producto_id" validate:"required,uuid"`
	AlmacenID  string `json:"almacen_id"  validate:"required,uuid"`
	Delta      int    `json:"delta"`
}

// SetStockRequest sets an absolute quantity; negatives are clamped to 0.
type SetStockRequest struct {
	ProductoID string `json:"producto_id" validate:"required,uuid"`
	AlmacenID  string `json:"almacen_id"  validate:"required,uuid"`
	Cantidad   int    `json:"cantidad"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type StockResponse struct {
	ProductoID    string `json:"producto_id"`
	AlmacenID     string `json:"almacen_id"`
	Cantidad      int    `json:"cantidad"`
	ActualizadoEn string `json:"actualizado_en"`
}

// StockAjusteResponse returns the mutated row plus the new aggregate total.
type StockAjusteResponse struct {
	Stock *StockResponse `json:"stock,omitempty"`
	Total int            `json:"total"`
}

// StockProductoResponse is the per-warehouse breakdown of a product.
type StockProductoResponse struct {
	ProductoID string          `json:"producto_id"`
	Total      int             `json:"total"`
	Almacenes  []StockResponse `json:"almacenes"`
}
