package router

import (
	"time"

	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/config"
	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/handler"
	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/middleware"
	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/repository"
	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/service"
	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORSOrigins()))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	productoRepo := repository.NewProductoRepository(db)
	stockRepo := repository.NewStockRepository(db)
	almacenRepo := repository.NewAlmacenRepository(db)
	facturaRepo := repository.NewFacturaRepository(db)
	movimientoRepo := repository.NewMovimientoRepository(db)
	carritoRepo := repository.NewCarritoRepository(db)
	secuenciaRepo := repository.NewSecuenciaRepository(db)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	calculoSvc := service.NewCalculoService()
	asignacionSvc := service.NewAsignacionService(stockRepo)
	stockSvc := service.NewStockService(stockRepo, productoRepo, almacenRepo, dispatcher)
	productoSvc := service.NewProductoService(productoRepo, rdb, time.Duration(cfg.PrecioCacheTTLSeconds)*time.Second)
	movimientoSvc := service.NewMovimientoService(movimientoRepo, productoRepo)
	carritoSvc := service.NewCarritoService(carritoRepo, productoRepo)
	tallerSvc := service.NewTallerService(almacenRepo)
	facturaSvc := service.NewFacturaService(
		facturaRepo, productoRepo, stockRepo, carritoRepo, secuenciaRepo,
		asignacionSvc, calculoSvc, dispatcher, dispatcher,
	)

	// ── Handlers ─────────────────────────────────────────────────────────────
	stockH := handler.NewStockHandler(stockSvc)
	productosH := handler.NewProductosHandler(productoSvc)
	movimientosH := handler.NewMovimientosHandler(movimientoSvc)
	carritosH := handler.NewCarritosHandler(carritoSvc, facturaSvc)
	talleresH := handler.NewTalleresHandler(tallerSvc)
	facturasH := handler.NewFacturasHandler(facturaSvc, cfg.PDFStoragePath)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Price check — public, cached in redis
	r.GET("/v1/productos/:id/precio", productosH.ObtenerPrecio)

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		stock := v1.Group("/stock")
		{
			stock.POST("/ajustar", stockH.Ajustar)
			stock.PUT("", stockH.SetAbsoluto)
			stock.GET("/:producto_id", stockH.PorProducto)
			stock.DELETE("/:producto_id/:almacen_id", stockH.Eliminar)
		}

		facturas := v1.Group("/facturas")
		{
			facturas.POST("", middleware.CheckoutRateLimiter(), facturasH.Crear)
			facturas.GET("", facturasH.Listar)
			facturas.GET("/:id", facturasH.ObtenerPorID)
			facturas.GET("/numero/:numero", facturasH.ObtenerPorNumero)
			facturas.POST("/:id/emitir", middleware.CheckoutRateLimiter(), facturasH.Emitir)
			facturas.POST("/:id/anular", facturasH.Anular)
			facturas.POST("/:id/enviar", facturasH.EnviarRecibo)
			facturas.GET("/:id/pdf", facturasH.DescargarPDF)
			facturas.DELETE("/:id", facturasH.Eliminar)
		}

		movimientos := v1.Group("/movimientos")
		{
			movimientos.POST("", movimientosH.Crear)
			movimientos.GET("", movimientosH.Listar)
			movimientos.GET("/:id", movimientosH.ObtenerPorID)
			movimientos.GET("/producto/:producto_id", movimientosH.ListarPorProducto)
		}

		carritos := v1.Group("/carritos")
		{
			carritos.POST("", carritosH.Crear)
			carritos.GET("/:id", carritosH.Obtener)
			carritos.POST("/:id/items", carritosH.AgregarItem)
			carritos.DELETE("/:id/items/:producto_id", carritosH.QuitarItem)
			carritos.POST("/:id/checkout", middleware.CheckoutRateLimiter(), carritosH.Checkout)
			carritos.DELETE("/:id/items", carritosH.Vaciar)
			carritos.DELETE("/:id", carritosH.Eliminar)
		}

		talleres := v1.Group("/talleres")
		{
			talleres.POST("", talleresH.Crear)
			talleres.GET("/:id", talleresH.Obtener)
			talleres.POST("/:id/miembros", talleresH.AgregarMiembro)
			talleres.POST("/:id/almacenes", talleresH.CrearAlmacen)
			talleres.GET("/:id/almacenes", talleresH.ListarAlmacenes)
		}

		productos := v1.Group("/productos")
		{
			productos.POST("", productosH.Crear)
			productos.GET("", productosH.Listar)
			productos.GET("/:id", productosH.ObtenerPorID)
			productos.GET("/codigo/:codigo", productosH.ObtenerPorCodigo)
			productos.PUT("/:id", productosH.Actualizar)
			productos.DELETE("/:id", productosH.Eliminar)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
