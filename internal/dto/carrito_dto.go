package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CarritoItemRequest struct {
	ProductoID string `json:"producto_id" validate:"required,uuid"`
	Cantidad   int    `json:"cantidad"    validate:"required,min=1"`
}

type CrearCarritoRequest struct {
	UsuarioID *string              `json:"usuario_id" validate:"omitempty,uuid"`
	Items     []CarritoItemRequest `json:"items"      validate:"omitempty,dive"`
}

type AgregarItemRequest struct {
	ProductoID string `json:"producto_id" validate:"required,uuid"`
	Cantidad   int    `json:"cantidad"    validate:"required,min=1"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CarritoItemResponse struct {
	ProductoID string `json:"producto_id"`
	Cantidad   int    `json:"cantidad"`
}

type CarritoResponse struct {
	ID        string                `json:"id"`
	UsuarioID *string               `json:"usuario_id,omitempty"`
	Items     []CarritoItemResponse `json:"items"`
	CreadoEn  string                `json:"creado_en"`
}
