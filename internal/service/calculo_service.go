package service

import (
	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/apierror"
	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/model"

	"github.com/shopspring/decimal"
)

// toleranciaTotal is the absolute tolerance when comparing a caller-supplied
// total against the recomputed one.
var toleranciaTotal = decimal.NewFromFloat(0.01)

// CalculoService centralizes invoice arithmetic: IVA, discounts and totals.
// Pure computation, no I/O. Recomputation is always authoritative —
// client-supplied totals are never persisted.
type CalculoService struct{}

func NewCalculoService() *CalculoService { return &CalculoService{} }

// CalcularItem fills the derived values of a single line:
//
//	subtotal      = cantidad × precioUnitario
//	baseImponible = subtotal − descuento
//	valorIva      = baseImponible × tasaIva/100
//	totalItem     = baseImponible + valorIva
//
// Subtotal is gross: the discount is applied once, at the line base.
func (c *CalculoService) CalcularItem(item *model.FacturaItem) {
	cantidad := decimal.NewFromInt(int64(item.Cantidad))

	subtotal := cantidad.Mul(item.PrecioUnitario)
	baseImponible := subtotal.Sub(item.Descuento)
	valorIva := baseImponible.Mul(item.TasaIva).Div(decimal.NewFromInt(100))

	item.Subtotal = subtotal
	item.BaseImponible = baseImponible
	item.ValorIva = valorIva
	item.TotalItem = baseImponible.Add(valorIva)
}

// CalcularTotales recomputes every line and then the invoice aggregates.
// Idempotent: a second call over the same factura yields identical totals.
func (c *CalculoService) CalcularTotales(f *model.Factura) {
	subtotal := decimal.Zero
	totalDescuentos := decimal.Zero
	totalIva := decimal.Zero

	for i := range f.Items {
		c.CalcularItem(&f.Items[i])
		subtotal = subtotal.Add(f.Items[i].Subtotal)
		totalDescuentos = totalDescuentos.Add(f.Items[i].Descuento)
		totalIva = totalIva.Add(f.Items[i].ValorIva)
	}

	baseImponible := subtotal.Sub(totalDescuentos)

	f.Subtotal = subtotal
	f.TotalDescuentos = totalDescuentos
	f.BaseImponible = baseImponible
	f.TotalIva = totalIva
	f.Total = baseImponible.Add(totalIva)
}

// ValidarTotal compares a caller-supplied total against the recomputed grand
// total. A nil provided total is not an error; a mismatch beyond 0.01 names
// both values so the caller can fix its arithmetic.
func (c *CalculoService) ValidarTotal(f *model.Factura, proporcionado *decimal.Decimal) error {
	if proporcionado == nil {
		return nil
	}
	c.CalcularTotales(f)
	diff := proporcionado.Sub(f.Total).Abs()
	if diff.GreaterThan(toleranciaTotal) {
		return apierror.Validacion(
			"Total proporcionado (%s) no coincide con total calculado (%s)",
			proporcionado.StringFixed(2), f.Total.StringFixed(2))
	}
	return nil
}

// ConstruirItemDesdeProducto builds an invoice line from the product
// snapshot. Unit price and tax rate come exclusively from the product;
// caller-supplied prices are never read.
func (c *CalculoService) ConstruirItemDesdeProducto(p *model.Producto, cantidad int, descuento *decimal.Decimal) (*model.FacturaItem, error) {
	if p == nil {
		return nil, apierror.Validacion("Producto no puede ser nulo")
	}
	if cantidad <= 0 {
		return nil, apierror.Validacion("Cantidad debe ser mayor a 0 para producto %s", p.ID)
	}

	d := decimal.Zero
	if descuento != nil {
		d = *descuento
	}
	if d.IsNegative() {
		return nil, apierror.Validacion("Descuento no puede ser negativo para producto %s", p.ID)
	}

	item := &model.FacturaItem{
		ProductoID:     p.ID,
		NombreProducto: p.Nombre,
		CodigoProducto: p.Codigo,
		Cantidad:       cantidad,
		PrecioUnitario: p.Precio,
		Descuento:      d,
		TasaIva:        p.TasaIvaEfectiva(),
	}
	c.CalcularItem(item)
	return item, nil
}
