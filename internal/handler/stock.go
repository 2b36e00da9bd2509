package handler

import (
	"net/http"

	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/apierror"
	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/dto"
	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/middleware"
	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/model"
	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type StockHandler struct{ svc service.StockService }

func NewStockHandler(svc service.StockService) *StockHandler {
	return &StockHandler{svc: svc}
}

// Ajustar godoc
// @Summary      Ajustar stock por almacén
// @Description  Aplica un delta con signo sobre el par (producto, almacén). Deltas negativos son condicionales: fallan con 409 si la cantidad no alcanza.
// @Tags         stock
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.AjustarStockRequest true "Ajuste"
// @Success      200  {object} dto.StockAjusteResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/stock/ajustar [post]
func (h *StockHandler) Ajustar(c *gin.Context) {
	var req dto.AjustarStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	productoID, err := uuid.Parse(req.ProductoID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("producto_id invalido"))
		return
	}
	almacenID, err := uuid.Parse(req.AlmacenID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("almacen_id invalido"))
		return
	}

	row, total, err := h.svc.Ajustar(c.Request.Context(), productoID, almacenID, req.Delta, middleware.ActorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toStockAjusteResponse(row, total))
}

// SetAbsoluto handles PUT /v1/stock — absolute quantity, negatives clamped.
func (h *StockHandler) SetAbsoluto(c *gin.Context) {
	var req dto.SetStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	productoID, err := uuid.Parse(req.ProductoID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("producto_id invalido"))
		return
	}
	almacenID, err := uuid.Parse(req.AlmacenID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("almacen_id invalido"))
		return
	}

	row, total, err := h.svc.SetAbsoluto(c.Request.Context(), productoID, almacenID, req.Cantidad, middleware.ActorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toStockAjusteResponse(row, total))
}

// Eliminar handles DELETE /v1/stock/:producto_id/:almacen_id.
func (h *StockHandler) Eliminar(c *gin.Context) {
	productoID, ok := parseUUIDParam(c, "producto_id")
	if !ok {
		return
	}
	almacenID, ok := parseUUIDParam(c, "almacen_id")
	if !ok {
		return
	}

	total, err := h.svc.EliminarRegistro(c.Request.Context(), productoID, almacenID, middleware.ActorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.StockAjusteResponse{Total: total})
}

// PorProducto handles GET /v1/stock/:producto_id — per-warehouse breakdown.
func (h *StockHandler) PorProducto(c *gin.Context) {
	productoID, ok := parseUUIDParam(c, "producto_id")
	if !ok {
		return
	}
	rows, total, err := h.svc.ObtenerPorProducto(c.Request.Context(), productoID)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := dto.StockProductoResponse{
		ProductoID: productoID.String(),
		Total:      total,
		Almacenes:  make([]dto.StockResponse, 0, len(rows)),
	}
	for i := range rows {
		resp.Almacenes = append(resp.Almacenes, toStockResponse(&rows[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func toStockResponse(s *model.Stock) dto.StockResponse {
	return dto.StockResponse{
		ProductoID:    s.ProductoID.String(),
		AlmacenID:     s.AlmacenID.String(),
		Cantidad:      s.Cantidad,
		ActualizadoEn: fmtTime(s.ActualizadoEn),
	}
}

func toStockAjusteResponse(s *model.Stock, total int) dto.StockAjusteResponse {
	resp := dto.StockAjusteResponse{Total: total}
	if s != nil {
		r := toStockResponse(s)
		resp.Stock = &r
	}
	return resp
}
