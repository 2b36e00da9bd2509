package handler

import (
	"net/http"

	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/dto"
	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/middleware"
	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/model"
	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type MovimientosHandler struct{ svc service.MovimientoService }

func NewMovimientosHandler(svc service.MovimientoService) *MovimientosHandler {
	return &MovimientosHandler{svc: svc}
}

// Crear godoc
// @Summary      Registrar movimiento manual
// @Description  Registra un movimiento INGRESO/EGRESO/AJUSTE/DEVOLUCION sobre el contador plano del producto. No acepta almacen_id: los ajustes por almacén van por /v1/stock.
// @Tags         movimientos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CrearMovimientoRequest true "Movimiento"
// @Success      201  {object} dto.MovimientoResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/movimientos [post]
func (h *MovimientosHandler) Crear(c *gin.Context) {
	var req dto.CrearMovimientoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	m, _, err := h.svc.Crear(c.Request.Context(), req, middleware.ActorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toMovimientoResponse(m))
}

func (h *MovimientosHandler) ObtenerPorID(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	m, err := h.svc.ObtenerPorID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toMovimientoResponse(m))
}

func (h *MovimientosHandler) ListarPorProducto(c *gin.Context) {
	productoID, ok := parseUUIDParam(c, "producto_id")
	if !ok {
		return
	}
	movs, err := h.svc.ListarPorProducto(c.Request.Context(), productoID)
	if err != nil {
		respondError(c, err)
		return
	}
	resp := make([]dto.MovimientoResponse, 0, len(movs))
	for i := range movs {
		resp = append(resp, toMovimientoResponse(&movs[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *MovimientosHandler) Listar(c *gin.Context) {
	var filter dto.MovimientoFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	movs, total, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := dto.MovimientoListResponse{
		Data:  make([]dto.MovimientoResponse, 0, len(movs)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for i := range movs {
		resp.Data = append(resp.Data, toMovimientoResponse(&movs[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func toMovimientoResponse(m *model.Movimiento) dto.MovimientoResponse {
	return dto.MovimientoResponse{
		ID:           m.ID.String(),
		Tipo:         m.Tipo,
		ProductoID:   m.ProductoID.String(),
		Cantidad:     m.Cantidad,
		Referencia:   m.Referencia,
		Notas:        m.Notas,
		RealizadoPor: uuidPtrString(m.RealizadoPor),
		CreadoEn:     fmtTime(m.CreadoEn),
	}
}
