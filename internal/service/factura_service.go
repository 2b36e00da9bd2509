package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/apierror"
	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/dto"
	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/model"
	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/repository"
	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// SecuenciaFacturas is the sequence name backing invoice numbering.
const SecuenciaFacturas = "facturas"

// EmailPublisher enqueues receipt emails. Satisfied by *worker.Dispatcher.
type EmailPublisher interface {
	EncolarEmail(ctx context.Context, job worker.EmailJob) error
}

// FacturaService coordinates settlement: it turns carts or item requests into
// invoices, and on emission decrements stock and persists the invoice inside
// one database transaction. If any line lacks stock the whole transaction
// rolls back — no invoice row, no partial decrements.
type FacturaService interface {
	// CrearBorrador materializes an invoice without touching stock.
	CrearBorrador(ctx context.Context, req dto.FacturaRequest, realizadoPor *uuid.UUID) (*model.Factura, error)

	// CrearYEmitir settles in one step: snapshot, compute, decrement, persist
	// as EMITIDA — all-or-nothing.
	CrearYEmitir(ctx context.Context, req dto.FacturaRequest, realizadoPor *uuid.UUID) (*model.Factura, error)

	// EmitirBorrador settles an existing draft. Quantities are re-checked at
	// emission time; staleness since the draft was written fails the emit.
	EmitirBorrador(ctx context.Context, id uuid.UUID, realizadoPor *uuid.UUID) (*model.Factura, error)

	// Checkout settles a cart. Duplicate product lines are merged before
	// settlement; the cart is cleared only after the invoice committed.
	Checkout(ctx context.Context, carritoID uuid.UUID, clienteID *uuid.UUID) (*model.Factura, error)

	// Anular voids an emitted invoice. Stock is NOT restored: returns are a
	// separate physical process recorded as DEVOLUCION movements.
	Anular(ctx context.Context, id uuid.UUID, motivo string, realizadoPor *uuid.UUID) (*model.Factura, error)

	// EliminarBorrador hard-deletes a draft. Emitted or voided invoices are
	// history and can never be deleted.
	EliminarBorrador(ctx context.Context, id uuid.UUID) error

	// EnviarRecibo mails the PDF receipt of an emitted invoice.
	EnviarRecibo(ctx context.Context, id uuid.UUID, email string) error

	ObtenerPorID(ctx context.Context, id uuid.UUID) (*model.Factura, error)
	ObtenerPorNumero(ctx context.Context, numero string) (*model.Factura, error)
	ListarPorUsuario(ctx context.Context, usuarioID uuid.UUID) ([]model.Factura, error)
	ListarTodas(ctx context.Context) ([]model.Factura, error)
}

type facturaService struct {
	facturaRepo   repository.FacturaRepository
	productoRepo  repository.ProductoRepository
	stockRepo     repository.StockRepository
	carritoRepo   repository.CarritoRepository
	secuenciaRepo repository.SecuenciaRepository
	asignacion    AsignacionService
	calculo       *CalculoService
	publisher     MovimientoPublisher
	emails        EmailPublisher
}

func NewFacturaService(
	facturaRepo repository.FacturaRepository,
	productoRepo repository.ProductoRepository,
	stockRepo repository.StockRepository,
	carritoRepo repository.CarritoRepository,
	secuenciaRepo repository.SecuenciaRepository,
	asignacion AsignacionService,
	calculo *CalculoService,
	publisher MovimientoPublisher,
	emails EmailPublisher,
) FacturaService {
	return &facturaService{
		facturaRepo:   facturaRepo,
		productoRepo:  productoRepo,
		stockRepo:     stockRepo,
		carritoRepo:   carritoRepo,
		secuenciaRepo: secuenciaRepo,
		asignacion:    asignacion,
		calculo:       calculo,
		publisher:     publisher,
		emails:        emails,
	}
}

// runTx runs fn inside a transaction. A nil DB (stub repos in unit tests)
// runs fn directly.
func (s *facturaService) runTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	db := s.facturaRepo.DB()
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// construir snapshots products into invoice lines, computes totals and
// validates the optional caller-supplied total.
func (s *facturaService) construir(ctx context.Context, req dto.FacturaRequest, realizadoPor *uuid.UUID) (*model.Factura, error) {
	if len(req.Items) == 0 {
		return nil, apierror.Validacion("La factura debe tener al menos un item")
	}

	f := &model.Factura{
		Estado:       model.EstadoBorrador,
		RealizadoPor: realizadoPor,
		CreadoEn:     time.Now().UTC(),
	}
	if req.ClienteID != nil {
		cid, err := uuid.Parse(*req.ClienteID)
		if err != nil {
			return nil, apierror.Validacion("cliente_id invalido")
		}
		f.ClienteID = &cid
	}

	for _, it := range req.Items {
		pid, err := uuid.Parse(it.ProductoID)
		if err != nil {
			return nil, apierror.Validacion("producto_id invalido: %s", it.ProductoID)
		}
		p, err := s.productoRepo.FindByID(ctx, pid)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apierror.NoEncontrado("Producto %s no encontrado", pid)
			}
			return nil, apierror.Interno(err)
		}
		if !p.Activo {
			return nil, apierror.Validacion("Producto %s no esta activo", p.Codigo)
		}
		item, err := s.calculo.ConstruirItemDesdeProducto(p, it.Cantidad, it.Descuento)
		if err != nil {
			return nil, err
		}
		f.Items = append(f.Items, *item)
	}

	s.calculo.CalcularTotales(f)
	if err := s.calculo.ValidarTotal(f, req.Total); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *facturaService) CrearBorrador(ctx context.Context, req dto.FacturaRequest, realizadoPor *uuid.UUID) (*model.Factura, error) {
	f, err := s.construir(ctx, req, realizadoPor)
	if err != nil {
		return nil, err
	}
	err = s.runTx(ctx, func(tx *gorm.DB) error {
		n, serr := s.secuenciaRepo.NextTx(tx, SecuenciaFacturas)
		if serr != nil {
			return serr
		}
		f.NumeroFactura = formatNumeroFactura(n)
		return s.facturaRepo.CreateTx(tx, f)
	})
	if err != nil {
		return nil, apierror.AsError(err)
	}
	return f, nil
}

func (s *facturaService) CrearYEmitir(ctx context.Context, req dto.FacturaRequest, realizadoPor *uuid.UUID) (*model.Factura, error) {
	f, err := s.construir(ctx, req, realizadoPor)
	if err != nil {
		return nil, err
	}

	var eventos []worker.MovimientoJob
	err = s.runTx(ctx, func(tx *gorm.DB) error {
		n, serr := s.secuenciaRepo.NextTx(tx, SecuenciaFacturas)
		if serr != nil {
			return serr
		}
		f.NumeroFactura = formatNumeroFactura(n)

		evs, derr := s.descontarStock(ctx, tx, f)
		if derr != nil {
			return derr
		}
		eventos = evs

		now := time.Now().UTC()
		f.Estado = model.EstadoEmitida
		f.EmitidaEn = &now
		return s.facturaRepo.CreateTx(tx, f)
	})
	if err != nil {
		return nil, apierror.AsError(err)
	}

	s.postEmision(ctx, f, eventos)
	return f, nil
}

func (s *facturaService) EmitirBorrador(ctx context.Context, id uuid.UUID, realizadoPor *uuid.UUID) (*model.Factura, error) {
	f, err := s.ObtenerPorID(ctx, id)
	if err != nil {
		return nil, err
	}
	if f.Estado != model.EstadoBorrador {
		return nil, apierror.EstadoInvalido("Solo facturas en estado BORRADOR pueden emitirse (estado actual: %s)", f.Estado)
	}
	if realizadoPor != nil {
		f.RealizadoPor = realizadoPor
	}

	var eventos []worker.MovimientoJob
	err = s.runTx(ctx, func(tx *gorm.DB) error {
		// The transition goes first: its state predicate and row lock make
		// sure only one of two racing emits reaches the decrements.
		now := time.Now().UTC()
		f.Estado = model.EstadoEmitida
		f.EmitidaEn = &now
		if uerr := s.facturaRepo.EmitirTx(tx, f); uerr != nil {
			if errors.Is(uerr, repository.ErrEstadoNoCoincide) {
				return apierror.EstadoInvalido("Factura %s ya no esta en estado BORRADOR", f.ID)
			}
			return uerr
		}

		evs, derr := s.descontarStock(ctx, tx, f)
		if derr != nil {
			return derr
		}
		eventos = evs
		return nil
	})
	if err != nil {
		return nil, apierror.AsError(err)
	}

	s.postEmision(ctx, f, eventos)
	return f, nil
}

func (s *facturaService) Checkout(ctx context.Context, carritoID uuid.UUID, clienteID *uuid.UUID) (*model.Factura, error) {
	carrito, err := s.carritoRepo.FindByID(ctx, carritoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NoEncontrado("Carrito %s no encontrado", carritoID)
		}
		return nil, apierror.Interno(err)
	}
	if len(carrito.Items) == 0 {
		return nil, apierror.Validacion("El carrito esta vacio")
	}

	req := dto.FacturaRequest{}
	for _, line := range lineasDeCarrito(carrito.Items) {
		req.Items = append(req.Items, dto.FacturaItemRequest{
			ProductoID: line.ProductoID.String(),
			Cantidad:   line.Cantidad,
		})
	}
	if clienteID == nil {
		clienteID = carrito.UsuarioID
	}
	if clienteID != nil {
		cid := clienteID.String()
		req.ClienteID = &cid
	}

	// The buyer is the client, not the seller: RealizadoPor stays nil so the
	// stock path skips the taller role check.
	f, err := s.CrearYEmitir(ctx, req, nil)
	if err != nil {
		return nil, err
	}

	// Clearing happens strictly after the commit: a mid-settlement failure
	// must leave the cart intact for retry. A failed clear is only logged —
	// the sale already happened.
	if cerr := s.carritoRepo.Clear(ctx, carritoID); cerr != nil {
		log.Warn().Err(cerr).Str("carrito_id", carritoID.String()).Msg("factura: no se pudo vaciar carrito tras checkout")
	}
	return f, nil
}

func (s *facturaService) Anular(ctx context.Context, id uuid.UUID, motivo string, realizadoPor *uuid.UUID) (*model.Factura, error) {
	f, err := s.ObtenerPorID(ctx, id)
	if err != nil {
		return nil, err
	}
	if f.Estado != model.EstadoEmitida {
		return nil, apierror.EstadoInvalido("Solo facturas EMITIDAS pueden anularse (estado actual: %s)", f.Estado)
	}

	f.Estado = model.EstadoAnulada
	f.MotivoAnulacion = &motivo
	if err := s.facturaRepo.Update(ctx, f); err != nil {
		return nil, apierror.Interno(err)
	}
	log.Info().Str("numero", f.NumeroFactura).Msg("factura anulada; el stock no se restaura")
	return f, nil
}

func (s *facturaService) EliminarBorrador(ctx context.Context, id uuid.UUID) error {
	f, err := s.ObtenerPorID(ctx, id)
	if err != nil {
		return err
	}
	if f.Estado != model.EstadoBorrador {
		return apierror.EstadoInvalido("Solo borradores pueden eliminarse (estado actual: %s)", f.Estado)
	}
	// The delete carries its own state predicate so a draft mid-emission
	// cannot be removed between the check above and the statement.
	if err := s.facturaRepo.EliminarBorrador(ctx, id); err != nil {
		if errors.Is(err, repository.ErrEstadoNoCoincide) {
			return apierror.EstadoInvalido("Factura %s ya no esta en estado BORRADOR", id)
		}
		return apierror.Interno(err)
	}
	return nil
}

func (s *facturaService) EnviarRecibo(ctx context.Context, id uuid.UUID, email string) error {
	f, err := s.ObtenerPorID(ctx, id)
	if err != nil {
		return err
	}
	if f.Estado != model.EstadoEmitida {
		return apierror.EstadoInvalido("Solo facturas EMITIDAS tienen recibo (estado actual: %s)", f.Estado)
	}
	if s.emails == nil {
		return apierror.Interno(errors.New("envio de emails no configurado"))
	}
	if err := s.emails.EncolarEmail(ctx, worker.EmailJob{FacturaID: f.ID, ToEmail: email}); err != nil {
		return apierror.Interno(err)
	}
	return nil
}

func (s *facturaService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*model.Factura, error) {
	f, err := s.facturaRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NoEncontrado("Factura %s no encontrada", id)
		}
		return nil, apierror.Interno(err)
	}
	return f, nil
}

func (s *facturaService) ObtenerPorNumero(ctx context.Context, numero string) (*model.Factura, error) {
	f, err := s.facturaRepo.FindByNumero(ctx, numero)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NoEncontrado("Factura %s no encontrada", numero)
		}
		return nil, apierror.Interno(err)
	}
	return f, nil
}

func (s *facturaService) ListarPorUsuario(ctx context.Context, usuarioID uuid.UUID) ([]model.Factura, error) {
	facturas, err := s.facturaRepo.ListPorUsuario(ctx, usuarioID)
	if err != nil {
		return nil, apierror.Interno(err)
	}
	return facturas, nil
}

func (s *facturaService) ListarTodas(ctx context.Context) ([]model.Factura, error) {
	facturas, err := s.facturaRepo.ListTodas(ctx)
	if err != nil {
		return nil, apierror.Interno(err)
	}
	return facturas, nil
}

// lineaVenta is a per-product aggregated quantity, in first-seen order.
type lineaVenta struct {
	ProductoID uuid.UUID
	Cantidad   int
}

// fusionarLineas sums quantities per product in first-seen order. Invoice and
// cart lines funnel through this one merge so the rule cannot drift between
// the two paths.
func fusionarLineas(lineas []lineaVenta) []lineaVenta {
	idx := make(map[uuid.UUID]int)
	var out []lineaVenta
	for _, l := range lineas {
		if i, ok := idx[l.ProductoID]; ok {
			out[i].Cantidad += l.Cantidad
			continue
		}
		idx[l.ProductoID] = len(out)
		out = append(out, l)
	}
	return out
}

func lineasDeFactura(items []model.FacturaItem) []lineaVenta {
	lineas := make([]lineaVenta, 0, len(items))
	for _, it := range items {
		lineas = append(lineas, lineaVenta{ProductoID: it.ProductoID, Cantidad: it.Cantidad})
	}
	return fusionarLineas(lineas)
}

func lineasDeCarrito(items []model.CarritoItem) []lineaVenta {
	lineas := make([]lineaVenta, 0, len(items))
	for _, it := range items {
		lineas = append(lineas, lineaVenta{ProductoID: it.ProductoID, Cantidad: it.Cantidad})
	}
	return fusionarLineas(lineas)
}

// descontarStock executes the conditional decrements for every product of the
// invoice inside tx. The allocation plan is advisory — each take is still a
// guarded single-statement decrement, so a concurrent sale draining a
// warehouse between planning and execution simply fails the condition and
// rolls the whole settlement back.
func (s *facturaService) descontarStock(ctx context.Context, tx *gorm.DB, f *model.Factura) ([]worker.MovimientoJob, error) {
	var eventos []worker.MovimientoJob

	for _, linea := range lineasDeFactura(f.Items) {
		plan, err := s.asignacion.Planear(ctx, linea.ProductoID, linea.Cantidad)
		if err != nil {
			return nil, err
		}

		if plan.Simple {
			if _, err := s.productoRepo.DescontarStockSimpleTx(tx, linea.ProductoID, linea.Cantidad); err != nil {
				if errors.Is(err, repository.ErrCondicionNoCumplida) {
					return nil, apierror.StockInsuficiente(linea.ProductoID, linea.Cantidad)
				}
				return nil, err
			}
		} else {
			for _, toma := range plan.Tomas {
				if _, err := s.stockRepo.DecrementarCondicionalTx(tx, linea.ProductoID, toma.AlmacenID, toma.Cantidad); err != nil {
					if errors.Is(err, repository.ErrCondicionNoCumplida) {
						return nil, apierror.StockInsuficiente(linea.ProductoID, toma.Cantidad)
					}
					return nil, err
				}
			}
		}

		eventos = append(eventos, worker.MovimientoJob{
			Tipo:         string(model.TipoVenta),
			ProductoID:   linea.ProductoID,
			Cantidad:     linea.Cantidad,
			RealizadoPor: f.RealizadoPor,
			Referencia:   f.NumeroFactura,
			Notas:        "venta",
		})
	}
	return eventos, nil
}

// postEmision runs the after-commit effects: audit events and mirror sync.
// Both are best-effort — the invoice is already settled.
func (s *facturaService) postEmision(ctx context.Context, f *model.Factura, eventos []worker.MovimientoJob) {
	if s.publisher != nil {
		for _, ev := range eventos {
			if err := s.publisher.EncolarMovimiento(ctx, ev); err != nil {
				log.Warn().Err(err).Str("numero", f.NumeroFactura).Msg("factura: fallo al encolar movimiento de venta")
			}
		}
	}
	for _, linea := range lineasDeFactura(f.Items) {
		rows, err := s.stockRepo.FindByProducto(ctx, linea.ProductoID)
		if err != nil || len(rows) == 0 {
			// Modo simple: the flat counter was decremented directly, there is
			// no aggregate to mirror.
			continue
		}
		total := 0
		for _, r := range rows {
			total += r.Cantidad
		}
		if err := s.productoRepo.SincronizarStock(ctx, linea.ProductoID, total); err != nil {
			log.Warn().Err(err).Str("producto_id", linea.ProductoID.String()).Msg("factura: fallo espejo de stock")
		}
	}
}

func formatNumeroFactura(n int64) string {
	return fmt.Sprintf("FAC-%06d", n)
}
