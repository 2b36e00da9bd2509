package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/apierror"
	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/model"
	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stockFixture struct {
	stockRepo    *stubStockRepo
	productoRepo *stubProductoRepo
	almacenRepo  *stubAlmacenRepo
	publisher    *stubPublisher
	svc          service.StockService

	productoID uuid.UUID
	tallerID   uuid.UUID
	almacenID  uuid.UUID
}

func newStockFixture(t *testing.T) *stockFixture {
	t.Helper()
	f := &stockFixture{
		stockRepo:    newStubStockRepo(),
		productoRepo: newStubProductoRepo(),
		almacenRepo:  newStubAlmacenRepo(),
		publisher:    &stubPublisher{},
		tallerID:     uuid.New(),
	}
	f.almacenID = f.almacenRepo.seedAlmacen(f.tallerID)

	p := &model.Producto{Codigo: "FIL-001", Nombre: "Filtro", Precio: dec("10"), Activo: true}
	f.productoRepo.seed(p)
	f.productoID = p.ID

	f.svc = service.NewStockService(f.stockRepo, f.productoRepo, f.almacenRepo, f.publisher)
	return f
}

func TestAjustarDeltaPositivoCreaRegistro(t *testing.T) {
	f := newStockFixture(t)

	row, total, err := f.svc.Ajustar(context.Background(), f.productoID, f.almacenID, 5, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, row.Cantidad)
	assert.Equal(t, 5, total)

	// el espejo plano sigue al agregado
	assert.Equal(t, 5, f.productoRepo.espejos[f.productoID])

	evs := f.publisher.eventos()
	require.Len(t, evs, 1)
	assert.Equal(t, string(model.TipoIngreso), evs[0].Tipo)
	assert.Equal(t, 5, evs[0].Cantidad)
}

func TestAjustarDeltaNegativoCondicional(t *testing.T) {
	f := newStockFixture(t)
	f.stockRepo.seed(f.productoID, f.almacenID, 3)

	// cubre: 3 - 2 = 1
	row, total, err := f.svc.Ajustar(context.Background(), f.productoID, f.almacenID, -2, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, row.Cantidad)
	assert.Equal(t, 1, total)

	// no cubre: queda 1, pedir 2 falla sin escribir
	_, _, err = f.svc.Ajustar(context.Background(), f.productoID, f.almacenID, -2, nil)
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindStockInsuficiente))

	remaining, _ := f.stockRepo.FindByProductoYAlmacen(context.Background(), f.productoID, f.almacenID)
	assert.Equal(t, 1, remaining.Cantidad, "un decremento fallido no escribe nada")

	evs := f.publisher.eventos()
	require.Len(t, evs, 1, "el fallo no emite evento")
	assert.Equal(t, string(model.TipoEgreso), evs[0].Tipo)
	assert.Equal(t, 2, evs[0].Cantidad)
}

func TestAjustarDeltaCeroEsLectura(t *testing.T) {
	f := newStockFixture(t)
	f.stockRepo.seed(f.productoID, f.almacenID, 7)

	row, total, err := f.svc.Ajustar(context.Background(), f.productoID, f.almacenID, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, 7, row.Cantidad)
	assert.Equal(t, 7, total)
	assert.Empty(t, f.publisher.eventos(), "delta 0 no emite eventos")
}

func TestAjustarConcurrenteSobreUltimasUnidades(t *testing.T) {
	f := newStockFixture(t)
	f.stockRepo.seed(f.productoID, f.almacenID, 1)

	// dos decrementos compiten por la ultima unidad: exactamente uno gana
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = f.svc.Ajustar(context.Background(), f.productoID, f.almacenID, -1, nil)
		}(i)
	}
	wg.Wait()

	fallos := 0
	for _, err := range errs {
		if err != nil {
			assert.True(t, apierror.IsKind(err, apierror.KindStockInsuficiente))
			fallos++
		}
	}
	assert.Equal(t, 1, fallos)

	remaining, _ := f.stockRepo.FindByProductoYAlmacen(context.Background(), f.productoID, f.almacenID)
	assert.Equal(t, 0, remaining.Cantidad, "nunca negativo")
}

func TestAjustarAlmacenInexistente(t *testing.T) {
	f := newStockFixture(t)

	_, _, err := f.svc.Ajustar(context.Background(), f.productoID, uuid.New(), 5, nil)
	assert.True(t, apierror.IsKind(err, apierror.KindNoEncontrado))
}

func TestAjustarPermisos(t *testing.T) {
	f := newStockFixture(t)

	vendedor := uuid.New()
	intruso := uuid.New()
	f.almacenRepo.seedRol(vendedor, f.tallerID, model.RolVendedor)

	_, _, err := f.svc.Ajustar(context.Background(), f.productoID, f.almacenID, 5, &vendedor)
	require.NoError(t, err, "VENDEDOR del taller puede ajustar")

	_, _, err = f.svc.Ajustar(context.Background(), f.productoID, f.almacenID, 5, &intruso)
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindNoAutorizado))

	// actor nil (checkout / sistema) omite el chequeo
	_, _, err = f.svc.Ajustar(context.Background(), f.productoID, f.almacenID, 1, nil)
	assert.NoError(t, err)
}

func TestSetAbsolutoEmiteDiferencia(t *testing.T) {
	f := newStockFixture(t)
	f.stockRepo.seed(f.productoID, f.almacenID, 10)

	// 10 → 4: egreso de 6
	row, total, err := f.svc.SetAbsoluto(context.Background(), f.productoID, f.almacenID, 4, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, row.Cantidad)
	assert.Equal(t, 4, total)

	// 4 → 9: ingreso de 5
	_, _, err = f.svc.SetAbsoluto(context.Background(), f.productoID, f.almacenID, 9, nil)
	require.NoError(t, err)

	// 9 → 9: sin evento
	_, _, err = f.svc.SetAbsoluto(context.Background(), f.productoID, f.almacenID, 9, nil)
	require.NoError(t, err)

	evs := f.publisher.eventos()
	require.Len(t, evs, 2)
	assert.Equal(t, string(model.TipoEgreso), evs[0].Tipo)
	assert.Equal(t, 6, evs[0].Cantidad)
	assert.Equal(t, string(model.TipoIngreso), evs[1].Tipo)
	assert.Equal(t, 5, evs[1].Cantidad)
}

func TestSetAbsolutoNegativoSeTruncaACero(t *testing.T) {
	f := newStockFixture(t)
	f.stockRepo.seed(f.productoID, f.almacenID, 3)

	row, _, err := f.svc.SetAbsoluto(context.Background(), f.productoID, f.almacenID, -5, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, row.Cantidad)

	evs := f.publisher.eventos()
	require.Len(t, evs, 1)
	assert.Equal(t, string(model.TipoEgreso), evs[0].Tipo)
	assert.Equal(t, 3, evs[0].Cantidad)
}

func TestEliminarRegistro(t *testing.T) {
	f := newStockFixture(t)
	f.stockRepo.seed(f.productoID, f.almacenID, 8)

	total, err := f.svc.EliminarRegistro(context.Background(), f.productoID, f.almacenID, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, total)

	evs := f.publisher.eventos()
	require.Len(t, evs, 1)
	assert.Equal(t, string(model.TipoEgreso), evs[0].Tipo)
	assert.Equal(t, 8, evs[0].Cantidad)

	// segunda vez: ya no existe
	_, err = f.svc.EliminarRegistro(context.Background(), f.productoID, f.almacenID, nil)
	assert.True(t, apierror.IsKind(err, apierror.KindNoEncontrado))
}

func TestAjustarFalloDePublicacionNoRompeElAjuste(t *testing.T) {
	f := newStockFixture(t)
	f.publisher.err = assert.AnError

	row, total, err := f.svc.Ajustar(context.Background(), f.productoID, f.almacenID, 5, nil)
	require.NoError(t, err, "la indisponibilidad de la cola no bloquea la escritura")
	assert.Equal(t, 5, row.Cantidad)
	assert.Equal(t, 5, total)
}
