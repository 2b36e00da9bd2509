package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearTallerRequest struct {
	Nombre    string  `json:"nombre" validate:"required"`
	Direccion *string `json:"direccion"`
}

type AgregarMiembroRequest struct {
	UsuarioID string `json:"usuario_id" validate:"required,uuid"`
	Rol       string `json:"rol"        validate:"required,oneof=ADMIN VENDEDOR"`
}

type CrearAlmacenRequest struct {
	Nombre    string  `json:"nombre" validate:"required"`
	Direccion *string `json:"direccion"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type TallerResponse struct {
	ID        string  `json:"id"`
	Nombre    string  `json:"nombre"`
	Direccion *string `json:"direccion,omitempty"`
}

type AlmacenResponse struct {
	ID        string  `json:"id"`
	TallerID  string  `json:"taller_id"`
	Nombre    string  `json:"nombre"`
	Direccion *string `json:"direccion,omitempty"`
}
