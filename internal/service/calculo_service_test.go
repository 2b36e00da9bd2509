package service_test

import (
	"testing"

	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/apierror"
	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/model"
	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestCalcularItem(t *testing.T) {
	calc := service.NewCalculoService()

	item := &model.FacturaItem{
		Cantidad:       3,
		PrecioUnitario: dec("10.00"),
		Descuento:      dec("5.00"),
		TasaIva:        dec("19"),
	}
	calc.CalcularItem(item)

	// subtotal 3×10 = 30; base 30 − 5 = 25; iva = 25×0.19 = 4.75; total = 29.75
	assert.True(t, item.Subtotal.Equal(dec("30")), "subtotal: %s", item.Subtotal)
	assert.True(t, item.BaseImponible.Equal(dec("25")))
	assert.True(t, item.ValorIva.Equal(dec("4.75")), "iva: %s", item.ValorIva)
	assert.True(t, item.TotalItem.Equal(dec("29.75")), "total: %s", item.TotalItem)
}

func TestCalcularTotalesEsIdempotente(t *testing.T) {
	calc := service.NewCalculoService()

	f := &model.Factura{Items: []model.FacturaItem{
		{Cantidad: 2, PrecioUnitario: dec("100.00"), Descuento: dec("10.00"), TasaIva: dec("19")},
		{Cantidad: 1, PrecioUnitario: dec("50.00"), Descuento: decimal.Zero, TasaIva: dec("19")},
	}}

	calc.CalcularTotales(f)
	primera := f.Total

	// brutos 200 y 50 → subtotal 250, descuentos 10, base 240,
	// iva 36.10 + 9.50 = 45.60, total 285.60
	assert.True(t, f.Subtotal.Equal(dec("250")), "subtotal: %s", f.Subtotal)
	assert.True(t, f.TotalDescuentos.Equal(dec("10")))
	assert.True(t, f.BaseImponible.Equal(dec("240")))
	assert.True(t, f.TotalIva.Equal(dec("45.60")), "iva: %s", f.TotalIva)
	assert.True(t, f.Total.Equal(dec("285.60")), "total: %s", f.Total)

	calc.CalcularTotales(f)
	assert.True(t, f.Total.Equal(primera), "recalcular no debe cambiar el total")
}

func TestDescuentoSeAplicaUnaVez(t *testing.T) {
	calc := service.NewCalculoService()

	f := &model.Factura{Items: []model.FacturaItem{
		{Cantidad: 1, PrecioUnitario: dec("100.00"), Descuento: dec("10.00"), TasaIva: dec("19")},
	}}
	calc.CalcularTotales(f)

	// El subtotal es bruto; el descuento solo reduce la base.
	assert.True(t, f.Subtotal.Equal(dec("100")), "subtotal: %s", f.Subtotal)
	assert.True(t, f.BaseImponible.Equal(dec("90")), "base: %s", f.BaseImponible)
	assert.True(t, f.TotalIva.Equal(dec("17.10")), "iva: %s", f.TotalIva)
	assert.True(t, f.Total.Equal(dec("107.10")), "total: %s", f.Total)

	// Consistencia interna: base = subtotal − descuentos = Σ bases de linea,
	// total = Σ totales de linea.
	assert.True(t, f.BaseImponible.Equal(f.Subtotal.Sub(f.TotalDescuentos)))
	assert.True(t, f.Items[0].BaseImponible.Equal(f.BaseImponible))
	assert.True(t, f.Items[0].TotalItem.Equal(f.Total))
}

func TestValidarTotalTolerancia(t *testing.T) {
	calc := service.NewCalculoService()

	build := func() *model.Factura {
		return &model.Factura{Items: []model.FacturaItem{
			{Cantidad: 1, PrecioUnitario: dec("100.00"), Descuento: decimal.Zero, TasaIva: dec("19")},
		}}
	}
	// total real = 119.00

	require.NoError(t, calc.ValidarTotal(build(), nil), "total ausente es valido")
	require.NoError(t, calc.ValidarTotal(build(), decPtr("119.00")))
	require.NoError(t, calc.ValidarTotal(build(), decPtr("119.01")), "dentro de tolerancia")
	require.NoError(t, calc.ValidarTotal(build(), decPtr("118.99")), "dentro de tolerancia")

	err := calc.ValidarTotal(build(), decPtr("119.02"))
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindValidacion))
	assert.Contains(t, err.Error(), "119.02")
	assert.Contains(t, err.Error(), "119.00")
}

func TestConstruirItemDesdeProducto(t *testing.T) {
	calc := service.NewCalculoService()

	p := &model.Producto{
		ID:     uuid.New(),
		Codigo: "FIL-001",
		Nombre: "Filtro de aceite",
		Precio: dec("15.90"),
	}

	item, err := calc.ConstruirItemDesdeProducto(p, 2, nil)
	require.NoError(t, err)
	assert.Equal(t, p.ID, item.ProductoID)
	assert.Equal(t, "Filtro de aceite", item.NombreProducto)
	assert.True(t, item.PrecioUnitario.Equal(dec("15.90")))
	// sin tasa explicita aplica 19%
	assert.True(t, item.TasaIva.Equal(dec("19")), "tasa: %s", item.TasaIva)
	assert.True(t, item.Subtotal.Equal(dec("31.80")))

	_, err = calc.ConstruirItemDesdeProducto(p, 0, nil)
	assert.True(t, apierror.IsKind(err, apierror.KindValidacion))

	_, err = calc.ConstruirItemDesdeProducto(p, 1, decPtr("-1"))
	assert.True(t, apierror.IsKind(err, apierror.KindValidacion))

	_, err = calc.ConstruirItemDesdeProducto(nil, 1, nil)
	assert.True(t, apierror.IsKind(err, apierror.KindValidacion))
}

func TestConstruirItemConTasaExplicita(t *testing.T) {
	calc := service.NewCalculoService()

	tasa := dec("5")
	p := &model.Producto{ID: uuid.New(), Codigo: "X", Nombre: "Reducido", Precio: dec("100.00"), TasaIva: &tasa}

	item, err := calc.ConstruirItemDesdeProducto(p, 1, nil)
	require.NoError(t, err)
	assert.True(t, item.TasaIva.Equal(dec("5")))
	assert.True(t, item.ValorIva.Equal(dec("5")), "iva: %s", item.ValorIva)
}
