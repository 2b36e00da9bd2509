package service_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/dto"
	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/model"
	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/repository"
	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/worker"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

type stockKey struct{ producto, almacen uuid.UUID }

// stubStockRepo is an in-memory StockRepository. The mutex makes the
// conditional operations atomic, mirroring what the single-statement SQL
// guarantees in production.
type stubStockRepo struct {
	mu   sync.Mutex
	rows map[stockKey]*model.Stock
}

func newStubStockRepo() *stubStockRepo {
	return &stubStockRepo{rows: make(map[stockKey]*model.Stock)}
}

func (r *stubStockRepo) seed(productoID, almacenID uuid.UUID, cantidad int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[stockKey{productoID, almacenID}] = &model.Stock{
		ID: uuid.New(), ProductoID: productoID, AlmacenID: almacenID,
		Cantidad: cantidad, ActualizadoEn: time.Now().UTC(),
	}
}

func (r *stubStockRepo) FindByProducto(_ context.Context, productoID uuid.UUID) ([]model.Stock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Stock
	for _, s := range r.rows {
		if s.ProductoID == productoID {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].AlmacenID.String() < out[j].AlmacenID.String()
	})
	return out, nil
}

func (r *stubStockRepo) FindByProductoYAlmacen(_ context.Context, productoID, almacenID uuid.UUID) (*model.Stock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.rows[stockKey{productoID, almacenID}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *stubStockRepo) TotalPorProducto(_ context.Context, productoID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := 0
	for _, s := range r.rows {
		if s.ProductoID == productoID {
			total += s.Cantidad
		}
	}
	return total, nil
}

func (r *stubStockRepo) IncrementarTx(_ *gorm.DB, productoID, almacenID uuid.UUID, delta int) (*model.Stock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := stockKey{productoID, almacenID}
	s, ok := r.rows[k]
	if !ok {
		s = &model.Stock{ID: uuid.New(), ProductoID: productoID, AlmacenID: almacenID}
		r.rows[k] = s
	}
	s.Cantidad += delta
	s.ActualizadoEn = time.Now().UTC()
	cp := *s
	return &cp, nil
}

func (r *stubStockRepo) DecrementarCondicionalTx(_ *gorm.DB, productoID, almacenID uuid.UUID, cantidad int) (*model.Stock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.rows[stockKey{productoID, almacenID}]
	if !ok || s.Cantidad < cantidad {
		return nil, repository.ErrCondicionNoCumplida
	}
	s.Cantidad -= cantidad
	s.ActualizadoEn = time.Now().UTC()
	cp := *s
	return &cp, nil
}

func (r *stubStockRepo) SetAbsolutoTx(_ *gorm.DB, productoID, almacenID uuid.UUID, cantidad int) (int, *model.Stock, error) {
	if cantidad < 0 {
		cantidad = 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	k := stockKey{productoID, almacenID}
	anterior := 0
	s, ok := r.rows[k]
	if ok {
		anterior = s.Cantidad
	} else {
		s = &model.Stock{ID: uuid.New(), ProductoID: productoID, AlmacenID: almacenID}
		r.rows[k] = s
	}
	s.Cantidad = cantidad
	s.ActualizadoEn = time.Now().UTC()
	cp := *s
	return anterior, &cp, nil
}

func (r *stubStockRepo) EliminarTx(_ *gorm.DB, productoID, almacenID uuid.UUID) (*model.Stock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := stockKey{productoID, almacenID}
	s, ok := r.rows[k]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	delete(r.rows, k)
	return s, nil
}

func (r *stubStockRepo) DB() *gorm.DB { return nil }

var _ repository.StockRepository = (*stubStockRepo)(nil)

// stubProductoRepo is an in-memory ProductoRepository.
type stubProductoRepo struct {
	mu        sync.Mutex
	productos map[uuid.UUID]*model.Producto
	// espejos records every SincronizarStock call: productoID → last total.
	espejos map[uuid.UUID]int
}

func newStubProductoRepo() *stubProductoRepo {
	return &stubProductoRepo{
		productos: make(map[uuid.UUID]*model.Producto),
		espejos:   make(map[uuid.UUID]int),
	}
}

func (r *stubProductoRepo) seed(p *model.Producto) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.productos[p.ID] = p
}

func (r *stubProductoRepo) Create(_ context.Context, p *model.Producto) error {
	r.seed(p)
	return nil
}

func (r *stubProductoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Producto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.productos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubProductoRepo) FindByCodigo(_ context.Context, codigo string) (*model.Producto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.productos {
		if p.Codigo == codigo && p.Activo {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProductoRepo) List(_ context.Context, _ dto.ProductoFilter) ([]model.Producto, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Producto
	for _, p := range r.productos {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *stubProductoRepo) Update(_ context.Context, p *model.Producto) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.productos[p.ID] = p
	return nil
}

func (r *stubProductoRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.productos[id]; ok {
		p.Activo = false
	}
	return nil
}

func (r *stubProductoRepo) DescontarStockSimpleTx(_ *gorm.DB, id uuid.UUID, cantidad int) (*model.Producto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.productos[id]
	if !ok || p.Stock < cantidad {
		return nil, repository.ErrCondicionNoCumplida
	}
	p.Stock -= cantidad
	cp := *p
	return &cp, nil
}

func (r *stubProductoRepo) AjustarStockSimple(_ context.Context, id uuid.UUID, delta int) (*model.Producto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.productos[id]
	if !ok {
		return nil, repository.ErrCondicionNoCumplida
	}
	if delta < 0 && p.Stock < -delta {
		return nil, repository.ErrCondicionNoCumplida
	}
	p.Stock += delta
	cp := *p
	return &cp, nil
}

func (r *stubProductoRepo) SincronizarStock(_ context.Context, id uuid.UUID, total int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.espejos[id] = total
	if p, ok := r.productos[id]; ok {
		p.Stock = total
	}
	return nil
}

func (r *stubProductoRepo) DB() *gorm.DB { return nil }

var _ repository.ProductoRepository = (*stubProductoRepo)(nil)

// stubAlmacenRepo resolves almacenes and role membership from fixed maps.
type stubAlmacenRepo struct {
	talleres  map[uuid.UUID]*model.Taller
	almacenes map[uuid.UUID]*model.Almacen
	// roles: usuario → taller → rol
	roles map[uuid.UUID]map[uuid.UUID]string
}

func newStubAlmacenRepo() *stubAlmacenRepo {
	return &stubAlmacenRepo{
		talleres:  make(map[uuid.UUID]*model.Taller),
		almacenes: make(map[uuid.UUID]*model.Almacen),
		roles:     make(map[uuid.UUID]map[uuid.UUID]string),
	}
}

func (r *stubAlmacenRepo) seedAlmacen(tallerID uuid.UUID) uuid.UUID {
	if _, ok := r.talleres[tallerID]; !ok {
		r.talleres[tallerID] = &model.Taller{ID: tallerID, Nombre: "Taller Test"}
	}
	a := &model.Almacen{ID: uuid.New(), TallerID: tallerID, Nombre: "Bodega"}
	r.almacenes[a.ID] = a
	return a.ID
}

func (r *stubAlmacenRepo) seedRol(usuarioID, tallerID uuid.UUID, rol string) {
	if r.roles[usuarioID] == nil {
		r.roles[usuarioID] = make(map[uuid.UUID]string)
	}
	r.roles[usuarioID][tallerID] = rol
}

func (r *stubAlmacenRepo) CreateTaller(_ context.Context, t *model.Taller) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	r.talleres[t.ID] = t
	return nil
}

func (r *stubAlmacenRepo) FindTallerByID(_ context.Context, id uuid.UUID) (*model.Taller, error) {
	t, ok := r.talleres[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return t, nil
}

func (r *stubAlmacenRepo) AgregarMiembro(_ context.Context, m *model.TallerMiembro) error {
	r.seedRol(m.UsuarioID, m.TallerID, m.Rol)
	return nil
}

func (r *stubAlmacenRepo) CreateAlmacen(_ context.Context, a *model.Almacen) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	r.almacenes[a.ID] = a
	return nil
}

func (r *stubAlmacenRepo) FindAlmacenByID(_ context.Context, id uuid.UUID) (*model.Almacen, error) {
	a, ok := r.almacenes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return a, nil
}

func (r *stubAlmacenRepo) ListAlmacenesPorTaller(_ context.Context, tallerID uuid.UUID) ([]model.Almacen, error) {
	var out []model.Almacen
	for _, a := range r.almacenes {
		if a.TallerID == tallerID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *stubAlmacenRepo) TieneRolEnTaller(_ context.Context, usuarioID, tallerID uuid.UUID, roles []string) (bool, error) {
	rol, ok := r.roles[usuarioID][tallerID]
	if !ok {
		return false, nil
	}
	for _, want := range roles {
		if rol == want {
			return true, nil
		}
	}
	return false, nil
}

var _ repository.AlmacenRepository = (*stubAlmacenRepo)(nil)

// stubFacturaRepo is an in-memory FacturaRepository.
type stubFacturaRepo struct {
	mu       sync.Mutex
	facturas map[uuid.UUID]*model.Factura
}

func newStubFacturaRepo() *stubFacturaRepo {
	return &stubFacturaRepo{facturas: make(map[uuid.UUID]*model.Factura)}
}

func (r *stubFacturaRepo) CreateTx(_ *gorm.DB, f *model.Factura) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	cp := *f
	r.facturas[f.ID] = &cp
	return nil
}

func (r *stubFacturaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Factura, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.facturas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *f
	return &cp, nil
}

func (r *stubFacturaRepo) FindByNumero(_ context.Context, numero string) (*model.Factura, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.facturas {
		if f.NumeroFactura == numero {
			cp := *f
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubFacturaRepo) ListPorUsuario(_ context.Context, usuarioID uuid.UUID) ([]model.Factura, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Factura
	for _, f := range r.facturas {
		if (f.ClienteID != nil && *f.ClienteID == usuarioID) ||
			(f.RealizadoPor != nil && *f.RealizadoPor == usuarioID) {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (r *stubFacturaRepo) ListTodas(_ context.Context) ([]model.Factura, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Factura
	for _, f := range r.facturas {
		out = append(out, *f)
	}
	return out, nil
}

func (r *stubFacturaRepo) Update(_ context.Context, f *model.Factura) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *f
	r.facturas[f.ID] = &cp
	return nil
}

func (r *stubFacturaRepo) EmitirTx(_ *gorm.DB, f *model.Factura) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	actual, ok := r.facturas[f.ID]
	if !ok || actual.Estado != model.EstadoBorrador {
		return repository.ErrEstadoNoCoincide
	}
	actual.Estado = f.Estado
	actual.EmitidaEn = f.EmitidaEn
	actual.RealizadoPor = f.RealizadoPor
	return nil
}

func (r *stubFacturaRepo) EliminarBorrador(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.facturas[id]
	if !ok || f.Estado != model.EstadoBorrador {
		return repository.ErrEstadoNoCoincide
	}
	delete(r.facturas, id)
	return nil
}

func (r *stubFacturaRepo) DB() *gorm.DB { return nil }

var _ repository.FacturaRepository = (*stubFacturaRepo)(nil)

// stubCarritoRepo is an in-memory CarritoRepository.
type stubCarritoRepo struct {
	mu       sync.Mutex
	carritos map[uuid.UUID]*model.Carrito
}

func newStubCarritoRepo() *stubCarritoRepo {
	return &stubCarritoRepo{carritos: make(map[uuid.UUID]*model.Carrito)}
}

func (r *stubCarritoRepo) Create(_ context.Context, c *model.Carrito) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.carritos[c.ID] = c
	return nil
}

func (r *stubCarritoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Carrito, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.carritos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	cp.Items = append([]model.CarritoItem(nil), c.Items...)
	return &cp, nil
}

func (r *stubCarritoRepo) ReplaceItems(_ context.Context, carritoID uuid.UUID, items []model.CarritoItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.carritos[carritoID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.Items = items
	c.ActualizadoEn = time.Now().UTC()
	return nil
}

func (r *stubCarritoRepo) Clear(ctx context.Context, carritoID uuid.UUID) error {
	return r.ReplaceItems(ctx, carritoID, nil)
}

func (r *stubCarritoRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carritos, id)
	return nil
}

var _ repository.CarritoRepository = (*stubCarritoRepo)(nil)

// stubSecuenciaRepo hands out sequential numbers from memory.
type stubSecuenciaRepo struct {
	mu      sync.Mutex
	valores map[string]int64
}

func newStubSecuenciaRepo() *stubSecuenciaRepo {
	return &stubSecuenciaRepo{valores: make(map[string]int64)}
}

func (r *stubSecuenciaRepo) NextTx(_ *gorm.DB, nombre string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.valores[nombre]++
	return r.valores[nombre], nil
}

var _ repository.SecuenciaRepository = (*stubSecuenciaRepo)(nil)

// stubMovimientoRepo collects appended movement rows.
type stubMovimientoRepo struct {
	mu   sync.Mutex
	rows []*model.Movimiento
}

func newStubMovimientoRepo() *stubMovimientoRepo { return &stubMovimientoRepo{} }

func (r *stubMovimientoRepo) Create(_ context.Context, m *model.Movimiento) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.rows = append(r.rows, m)
	return nil
}

func (r *stubMovimientoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Movimiento, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.rows {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubMovimientoRepo) ListByProducto(_ context.Context, productoID uuid.UUID) ([]model.Movimiento, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Movimiento
	for _, m := range r.rows {
		if m.ProductoID == productoID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *stubMovimientoRepo) ListByTipo(_ context.Context, tipo string) ([]model.Movimiento, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Movimiento
	for _, m := range r.rows {
		if m.Tipo == tipo {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *stubMovimientoRepo) List(_ context.Context, _ dto.MovimientoFilter) ([]model.Movimiento, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Movimiento
	for _, m := range r.rows {
		out = append(out, *m)
	}
	return out, int64(len(out)), nil
}

var _ repository.MovimientoRepository = (*stubMovimientoRepo)(nil)

// stubPublisher captures enqueued audit events.
type stubPublisher struct {
	mu   sync.Mutex
	jobs []worker.MovimientoJob
	err  error
}

func (p *stubPublisher) EncolarMovimiento(_ context.Context, job worker.MovimientoJob) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.jobs = append(p.jobs, job)
	return nil
}

func (p *stubPublisher) eventos() []worker.MovimientoJob {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]worker.MovimientoJob(nil), p.jobs...)
}

// stubEmailPublisher captures enqueued receipt emails.
type stubEmailPublisher struct {
	mu   sync.Mutex
	jobs []worker.EmailJob
}

func (p *stubEmailPublisher) EncolarEmail(_ context.Context, job worker.EmailJob) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.jobs = append(p.jobs, job)
	return nil
}
