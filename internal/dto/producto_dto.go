package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearProductoRequest struct {
	Codigo      string           `json:"codigo"      validate:"required"`
	Nombre      string           `json:"nombre"      validate:"required"`
	Descripcion *string          `json:"descripcion"`
	Precio      decimal.Decimal  `json:"precio"      validate:"required"`
	TasaIva     *decimal.Decimal `json:"tasa_iva"`
	Stock       int              `json:"stock"       validate:"min=0"`
	CategoriaID *string          `json:"categoria_id" validate:"omitempty,uuid"`
}

type ActualizarProductoRequest struct {
	Nombre      *string          `json:"nombre"`
	Descripcion *string          `json:"descripcion"`
	Precio      *decimal.Decimal `json:"precio"`
	TasaIva     *decimal.Decimal `json:"tasa_iva"`
}

// ProductoFilter is bound from the query string of GET /v1/productos.
type ProductoFilter struct {
	Nombre string `form:"nombre"`
	Codigo string `form:"codigo"`
	Activo string `form:"activo"` // "false" | "all" | default activos
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductoResponse struct {
	ID          string          `json:"id"`
	Codigo      string          `json:"codigo"`
	Nombre      string          `json:"nombre"`
	Descripcion *string         `json:"descripcion,omitempty"`
	Precio      decimal.Decimal `json:"precio"`
	TasaIva     decimal.Decimal `json:"tasa_iva"`
	Stock       int             `json:"stock"`
	Activo      bool            `json:"activo"`
	CreadoEn    string          `json:"creado_en"`
}

type ProductoListResponse struct {
	Data  []ProductoResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

// PrecioResponse is the public, cacheable price lookup payload.
type PrecioResponse struct {
	ProductoID string          `json:"producto_id"`
	Nombre     string          `json:"nombre"`
	Precio     decimal.Decimal `json:"precio"`
	TasaIva    decimal.Decimal `json:"tasa_iva"`
}
