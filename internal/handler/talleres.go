package handler

import (
	"net/http"

	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/dto"
	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/model"
	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type TalleresHandler struct{ svc service.TallerService }

func NewTalleresHandler(svc service.TallerService) *TalleresHandler {
	return &TalleresHandler{svc: svc}
}

func (h *TalleresHandler) Crear(c *gin.Context) {
	var req dto.CrearTallerRequest
	if !bindAndValidate(c, &req) {
		return
	}
	t, err := h.svc.CrearTaller(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toTallerResponse(t))
}

func (h *TalleresHandler) Obtener(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	t, err := h.svc.ObtenerTaller(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTallerResponse(t))
}

func (h *TalleresHandler) AgregarMiembro(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.AgregarMiembroRequest
	if !bindAndValidate(c, &req) {
		return
	}
	m, err := h.svc.AgregarMiembro(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"taller_id":  m.TallerID.String(),
		"usuario_id": m.UsuarioID.String(),
		"rol":        m.Rol,
	})
}

func (h *TalleresHandler) CrearAlmacen(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.CrearAlmacenRequest
	if !bindAndValidate(c, &req) {
		return
	}
	a, err := h.svc.CrearAlmacen(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toAlmacenResponse(a))
}

func (h *TalleresHandler) ListarAlmacenes(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	almacenes, err := h.svc.ListarAlmacenes(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	resp := make([]dto.AlmacenResponse, 0, len(almacenes))
	for i := range almacenes {
		resp = append(resp, toAlmacenResponse(&almacenes[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func toTallerResponse(t *model.Taller) dto.TallerResponse {
	return dto.TallerResponse{
		ID:        t.ID.String(),
		Nombre:    t.Nombre,
		Direccion: t.Direccion,
	}
}

func toAlmacenResponse(a *model.Almacen) dto.AlmacenResponse {
	return dto.AlmacenResponse{
		ID:        a.ID.String(),
		TallerID:  a.TallerID.String(),
		Nombre:    a.Nombre,
		Direccion: a.Direccion,
	}
}
