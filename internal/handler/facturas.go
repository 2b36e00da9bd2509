package handler

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/apierror"
	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/dto"
	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/infra"
	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/middleware"
	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/model"
	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type FacturasHandler struct {
	svc        service.FacturaService
	pdfStorage string
}

func NewFacturasHandler(svc service.FacturaService, pdfStorage string) *FacturasHandler {
	return &FacturasHandler{svc: svc, pdfStorage: pdfStorage}
}

// Crear godoc
// @Summary      Crear factura
// @Description  Crea una factura. Con emitir=true descuenta stock y persiste EMITIDA en una sola transacción; sin stock suficiente responde 409 y no persiste nada.
// @Tags         facturas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        emitir query bool false "Emitir inmediatamente (default true)"
// @Param        body   body  dto.FacturaRequest true "Items de la factura"
// @Success      201    {object} dto.FacturaResponse
// @Failure      409    {object} apierror.APIError
// @Failure      422    {object} apierror.APIError
// @Router       /v1/facturas [post]
func (h *FacturasHandler) Crear(c *gin.Context) {
	var req dto.FacturaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	actor := middleware.ActorID(c)

	var f *model.Factura
	var err error
	if c.DefaultQuery("emitir", "true") == "false" {
		f, err = h.svc.CrearBorrador(c.Request.Context(), req, actor)
	} else {
		f, err = h.svc.CrearYEmitir(c.Request.Context(), req, actor)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toFacturaResponse(f))
}

// Emitir settles an existing draft: POST /v1/facturas/:id/emitir.
func (h *FacturasHandler) Emitir(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	f, err := h.svc.EmitirBorrador(c.Request.Context(), id, middleware.ActorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFacturaResponse(f))
}

// Anular godoc
// @Summary      Anular factura
// @Description  Anula una factura EMITIDA con un motivo. El stock NO se restaura: las devoluciones físicas se registran aparte como movimientos DEVOLUCION.
// @Tags         facturas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "UUID de la factura"
// @Param        body body dto.AnularFacturaRequest true "Motivo de anulación"
// @Success      200  {object} dto.FacturaResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/facturas/{id}/anular [post]
func (h *FacturasHandler) Anular(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.AnularFacturaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	f, err := h.svc.Anular(c.Request.Context(), id, req.Motivo, middleware.ActorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFacturaResponse(f))
}

// Eliminar deletes a draft: DELETE /v1/facturas/:id.
func (h *FacturasHandler) Eliminar(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.EliminarBorrador(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *FacturasHandler) ObtenerPorID(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	f, err := h.svc.ObtenerPorID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFacturaResponse(f))
}

func (h *FacturasHandler) ObtenerPorNumero(c *gin.Context) {
	f, err := h.svc.ObtenerPorNumero(c.Request.Context(), c.Param("numero"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFacturaResponse(f))
}

// Listar returns the caller's invoices, or all of them with ?todas=true.
func (h *FacturasHandler) Listar(c *gin.Context) {
	var facturas []model.Factura
	var err error

	actor := middleware.ActorID(c)
	if c.Query("todas") == "true" || actor == nil {
		facturas, err = h.svc.ListarTodas(c.Request.Context())
	} else {
		facturas, err = h.svc.ListarPorUsuario(c.Request.Context(), *actor)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]dto.FacturaResponse, 0, len(facturas))
	for i := range facturas {
		resp = append(resp, toFacturaResponse(&facturas[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// DescargarPDF streams the invoice PDF, generating it on first request.
func (h *FacturasHandler) DescargarPDF(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	f, err := h.svc.ObtenerPorID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if f.Estado != model.EstadoEmitida {
		c.JSON(http.StatusConflict, apierror.New("Solo facturas EMITIDAS tienen PDF"))
		return
	}

	path := filepath.Join(h.pdfStorage, fmt.Sprintf("factura_%s.pdf", f.NumeroFactura))
	if _, statErr := os.Stat(path); statErr != nil {
		path, err = infra.GenerateFacturaPDF(f, h.pdfStorage)
		if err != nil {
			respondError(c, apierror.Interno(err))
			return
		}
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=factura_%s.pdf", f.NumeroFactura))
	c.Header("Content-Type", "application/pdf")
	c.File(path)
}

// EnviarRecibo queues the receipt email: POST /v1/facturas/:id/enviar.
func (h *FacturasHandler) EnviarRecibo(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Email string `json:"email" validate:"required,email"`
	}
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.EnviarRecibo(c.Request.Context(), id, req.Email); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"detail": "Recibo encolado"})
}

func toFacturaResponse(f *model.Factura) dto.FacturaResponse {
	resp := dto.FacturaResponse{
		ID:              f.ID.String(),
		NumeroFactura:   f.NumeroFactura,
		ClienteID:       uuidPtrString(f.ClienteID),
		Items:           make([]dto.FacturaItemResponse, 0, len(f.Items)),
		Subtotal:        f.Subtotal,
		TotalDescuentos: f.TotalDescuentos,
		BaseImponible:   f.BaseImponible,
		TotalIva:        f.TotalIva,
		Total:           f.Total,
		Estado:          f.Estado,
		MotivoAnulacion: f.MotivoAnulacion,
		RealizadoPor:    uuidPtrString(f.RealizadoPor),
		CreadoEn:        fmtTime(f.CreadoEn),
		EmitidaEn:       fmtTimePtr(f.EmitidaEn),
	}
	for _, it := range f.Items {
		resp.Items = append(resp.Items, dto.FacturaItemResponse{
			ProductoID:     it.ProductoID.String(),
			NombreProducto: it.NombreProducto,
			CodigoProducto: it.CodigoProducto,
			Cantidad:       it.Cantidad,
			PrecioUnitario: it.PrecioUnitario,
			Descuento:      it.Descuento,
			BaseImponible:  it.BaseImponible,
			TasaIva:        it.TasaIva,
			ValorIva:       it.ValorIva,
			Subtotal:       it.Subtotal,
			TotalItem:      it.TotalItem,
		})
	}
	return resp
}
