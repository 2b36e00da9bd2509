package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

// CrearMovimientoRequest creates a manual movement against the flat product
// counter. Warehouse-scoped adjustments must go through /v1/stock/ajustar so
// the conditional-update and audit path is not bypassed — a non-empty
// almacen_id here is rejected.
type CrearMovimientoRequest struct {
	Tipo       string  `json:"tipo"        validate:"required"`
	ProductoID string  `json:"producto_id" validate:"required,uuid"`
	Cantidad   int     `json:"cantidad"    validate:"required,min=1"`
	AlmacenID  *string `json:"almacen_id"  validate:"omitempty"`
	Referencia *string `json:"referencia"`
	Notas      *string `json:"notas"`
}

// MovimientoFilter is bound from the query string of GET /v1/movimientos.
type MovimientoFilter struct {
	ProductoID string `form:"producto_id" validate:"omitempty,uuid"`
	Tipo       string `form:"tipo"`
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=50" validate:"min=1,max=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type MovimientoResponse struct {
	ID           string  `json:"id"`
	Tipo         string  `json:"tipo"`
	ProductoID   string  `json:"producto_id"`
	Cantidad     int     `json:"cantidad"`
	Referencia   *string `json:"referencia,omitempty"`
	Notas        *string `json:"notas,omitempty"`
	RealizadoPor *string `json:"realizado_por,omitempty"`
	CreadoEn     string  `json:"creado_en"`
}

type MovimientoListResponse struct {
	Data  []MovimientoResponse `json:"data"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
}
