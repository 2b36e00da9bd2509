package handler

import (
	"net/http"

	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/dto"
	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/middleware"
	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/model"
	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type CarritosHandler struct {
	svc        service.CarritoService
	facturaSvc service.FacturaService
}

func NewCarritosHandler(svc service.CarritoService, facturaSvc service.FacturaService) *CarritosHandler {
	return &CarritosHandler{svc: svc, facturaSvc: facturaSvc}
}

func (h *CarritosHandler) Crear(c *gin.Context) {
	var req dto.CrearCarritoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	carrito, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toCarritoResponse(carrito))
}

func (h *CarritosHandler) Obtener(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	carrito, err := h.svc.Obtener(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCarritoResponse(carrito))
}

func (h *CarritosHandler) AgregarItem(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.AgregarItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	carrito, err := h.svc.AgregarItem(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCarritoResponse(carrito))
}

func (h *CarritosHandler) QuitarItem(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	productoID, ok := parseUUIDParam(c, "producto_id")
	if !ok {
		return
	}
	carrito, err := h.svc.QuitarItem(c.Request.Context(), id, productoID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCarritoResponse(carrito))
}

func (h *CarritosHandler) Vaciar(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Vaciar(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CarritosHandler) Eliminar(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Eliminar(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Checkout godoc
// @Summary      Checkout del carrito
// @Description  Liquida el carrito en una factura EMITIDA: descuenta stock y persiste la factura atómicamente. Si falta stock responde 409 y el carrito queda intacto.
// @Tags         carritos
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID del carrito"
// @Success      201 {object} dto.FacturaResponse
// @Failure      409 {object} apierror.APIError
// @Router       /v1/carritos/{id}/checkout [post]
func (h *CarritosHandler) Checkout(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	f, err := h.facturaSvc.Checkout(c.Request.Context(), id, middleware.ActorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toFacturaResponse(f))
}

func toCarritoResponse(c *model.Carrito) dto.CarritoResponse {
	resp := dto.CarritoResponse{
		ID:        c.ID.String(),
		UsuarioID: uuidPtrString(c.UsuarioID),
		Items:     make([]dto.CarritoItemResponse, 0, len(c.Items)),
		CreadoEn:  fmtTime(c.CreadoEn),
	}
	for _, it := range c.Items {
		resp.Items = append(resp.Items, dto.CarritoItemResponse{
			ProductoID: it.ProductoID.String(),
			Cantidad:   it.Cantidad,
		})
	}
	return resp
}
