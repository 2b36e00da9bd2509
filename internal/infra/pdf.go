package infra

// pdf.go — invoice PDF rendering using go-pdf/fpdf.
// A5 portrait layout: header with invoice number and state, item table
// (code, name, qty, unit price, discount, IVA, line total), totals block.
// The output file is saved to storagePath/factura_{numero}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/model"

	"github.com/go-pdf/fpdf"
)

// GenerateFacturaPDF renders a factura into a PDF file and returns its path.
func GenerateFacturaPDF(f *model.Factura, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("factura_%s.pdf", f.NumeroFactura)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, fmt.Sprintf("Factura N° %s", f.NumeroFactura), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 5, fmt.Sprintf("Estado: %s", f.Estado), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 5, f.CreadoEn.Format("2006-01-02 15:04"), "", 1, "C", false, 0, "")
	pdf.Ln(3)

	// Item table header
	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(42, 6, "Producto", "B", 0, "L", false, 0, "")
	pdf.CellFormat(12, 6, "Cant.", "B", 0, "R", false, 0, "")
	pdf.CellFormat(24, 6, "P. Unit.", "B", 0, "R", false, 0, "")
	pdf.CellFormat(18, 6, "Desc.", "B", 0, "R", false, 0, "")
	pdf.CellFormat(14, 6, "IVA %", "B", 0, "R", false, 0, "")
	pdf.CellFormat(0, 6, "Total", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	for _, it := range f.Items {
		nombre := it.NombreProducto
		if len(nombre) > 28 {
			nombre = nombre[:28]
		}
		pdf.CellFormat(42, 5, nombre, "", 0, "L", false, 0, "")
		pdf.CellFormat(12, 5, fmt.Sprintf("%d", it.Cantidad), "", 0, "R", false, 0, "")
		pdf.CellFormat(24, 5, it.PrecioUnitario.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(18, 5, it.Descuento.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(14, 5, it.TasaIva.StringFixed(1), "", 0, "R", false, 0, "")
		pdf.CellFormat(0, 5, it.TotalItem.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(3)
	totales := []struct {
		label string
		valor string
	}{
		{"Subtotal", f.Subtotal.StringFixed(2)},
		{"Descuentos", f.TotalDescuentos.StringFixed(2)},
		{"Base imponible", f.BaseImponible.StringFixed(2)},
		{"IVA", f.TotalIva.StringFixed(2)},
	}
	for _, t := range totales {
		pdf.CellFormat(80, 5, t.label, "", 0, "R", false, 0, "")
		pdf.CellFormat(0, 5, t.valor, "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(80, 7, "TOTAL", "T", 0, "R", false, 0, "")
	pdf.CellFormat(0, 7, f.Total.StringFixed(2), "T", 1, "R", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write %s: %w", filePath, err)
	}
	return filePath, nil
}
