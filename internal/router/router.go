package router

import (
	"time"

	"github.com/firatemu/nuviabutik/internal/config"
	"github.com/firatemu/nuviabutik/internal/handler"
	"github.com/firatemu/nuviabutik/internal/metrics"
	"github.com/firatemu/nuviabutik/internal/middleware"
	"github.com/firatemu/nuviabutik/internal/repository"
	"github.com/firatemu/nuviabutik/internal/service"
	"github.com/firatemu/nuviabutik/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, dispatcher *worker.Dispatcher) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP
	r.Use(metrics.Middleware())

	// ── Repositories ─────────────────────────────────────────────────────────
	variantRepo := repository.NewVariantRepository(db)
	movementRepo := repository.NewMovementRepository(db)
	sequenceRepo := repository.NewSequenceRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	voucherRepo := repository.NewVoucherRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	registerRepo := repository.NewRegisterRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	sequenceSvc := service.NewSequenceService(sequenceRepo)
	stockSvc := service.NewStockService(variantRepo, movementRepo)
	voucherSvc := service.NewVoucherService(voucherRepo, cfg.VoucherValidityDays)
	customerSvc := service.NewCustomerService(customerRepo)
	saleSvc := service.NewSaleService(saleRepo, variantRepo, registerRepo,
		stockSvc, sequenceSvc, voucherSvc, customerSvc, cfg.SaleNumberPrefix)
	returnSvc := service.NewReturnService(saleRepo, stockSvc, voucherSvc, dispatcher)

	// ── Handlers ─────────────────────────────────────────────────────────────
	salesH := handler.NewSalesHandler(saleSvc)
	returnsH := handler.NewReturnsHandler(returnSvc)
	stockH := handler.NewStockHandler(stockSvc)
	vouchersH := handler.NewVouchersHandler(voucherSvc)
	priceH := handler.NewPriceCheckHandler(variantRepo, rdb)

	// ── Routes ───────────────────────────────────────────────────────────────
	r.GET("/health", handler.Health(db, rdb))
	r.GET("/metrics", metrics.Handler())

	// Price check — read-only scanner endpoint
	r.GET("/v1/price/:barcode", priceH.GetByBarcode)

	v1 := r.Group("/v1")
	{
		v1.POST("/sales", salesH.Settle)
		v1.GET("/sales", salesH.List)
		v1.GET("/sales/next-number", salesH.NextNumber)
		v1.GET("/sales/:id", salesH.Get)
		v1.DELETE("/sales/:id", salesH.Cancel)
		v1.POST("/sales/:id/returns", returnsH.Create)

		v1.POST("/variants/:id/stock", stockH.DirectEdit)
		v1.POST("/variants/:id/movements", stockH.ApplyMovement)
		v1.GET("/variants/:id/movements", stockH.ListMovements)
		v1.GET("/variants/:id/audit", stockH.Audit)

		v1.POST("/vouchers", vouchersH.Issue)
		v1.GET("/vouchers/:code", vouchersH.Balance)
	}

	return r
}
