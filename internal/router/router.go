package router

import (
	"context"
	"time"

	"sheetpos/internal/config"
	"sheetpos/internal/handler"
	"sheetpos/internal/infra"
	"sheetpos/internal/middleware"
	"sheetpos/internal/model"
	"sheetpos/internal/repository"
	"sheetpos/internal/schema"
	"sheetpos/internal/service"
	"sheetpos/internal/session"
	"sheetpos/internal/supplier"
	"sheetpos/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// App is the wired HTTP engine plus the background worker pool, which is nil
// when Redis is not configured.
type App struct {
	Engine *gin.Engine
	Pool   *worker.Pool
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← Sheets API (+ Redis)
func New(cfg *config.Config, client *infra.SheetsClient, registry *schema.Registry, rdb *redis.Client) *App {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	metrics := middleware.NewMetrics()
	metrics.WatchBreaker(client.Breaker())

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(metrics.Middleware())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORSOrigin))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.NewRateLimiter(cfg.RateLimitPerIP, time.Minute, "Too many requests. Try again shortly.").Middleware())

	// ── Infrastructure ───────────────────────────────────────────────────────
	var source infra.Sheets = client
	if rdb != nil && cfg.SheetCacheTTL() > 0 {
		source = infra.NewSheetCache(client, rdb, cfg.SheetCacheTTL())
	}

	var sessions session.Store = session.NewMemoryStore()
	if rdb != nil {
		sessions = session.NewRedisStore(rdb)
	}

	// ── Repositories ─────────────────────────────────────────────────────────
	sheetRepo := repository.NewSheetRepository(source, registry)
	userRepo := repository.NewUserRepository(sheetRepo)
	auditRepo := repository.NewAuditRepository(sheetRepo)

	// ── Audit path: queued through Redis when available, else written inline ─
	var (
		audit service.AuditWriter = service.AuditWriterFunc(auditRepo.Append)
		pool  *worker.Pool
	)
	if rdb != nil {
		dispatcher := worker.NewDispatcher(rdb)
		audit = service.AuditWriterFunc(dispatcher.EnqueueAudit)

		pool = worker.NewPool(rdb, cfg.WorkerPoolSize, cfg.JobMaxAttempts)
		pool.Handle(worker.QueueAudit, worker.JobAudit, worker.AuditHandler(auditRepo))

		metrics.WatchQueue("sheetpos_audit_dead_letters", "Audit jobs in the dead letter queue.", func() float64 {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			n, err := worker.DLQLength(ctx, rdb, worker.QueueAudit)
			if err != nil {
				return -1
			}
			return float64(n)
		})
	}

	// ── Services ─────────────────────────────────────────────────────────────
	caps := service.Caps{
		Cashflow:  cfg.CapCashflow,
		Movements: cfg.CapMovements,
		Audit:     cfg.CapAudit,
		Suppliers: cfg.CapSuppliers,
		Stock:     cfg.CapStock,
	}
	reportSvc := service.NewReportService(sheetRepo, supplier.NewRandomMetrics(cfg.SupplierMetricsSeed), caps)
	entrySvc := service.NewEntryService(sheetRepo, audit)
	authSvc := service.NewAuthService(userRepo, sessions, audit, cfg.JWTSecret, cfg.SessionTTL())

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	reportsH := handler.NewReportsHandler(reportSvc)
	entriesH := handler.NewEntriesHandler(entrySvc)

	// ── Public routes ────────────────────────────────────────────────────────
	r.GET("/health", handler.Health(client, rdb))
	r.GET("/metrics", metrics.Handler())
	r.POST("/v1/auth/login", middleware.NewLoginRateLimiter().Middleware(), authH.Login)

	// ── Protected routes ─────────────────────────────────────────────────────
	jwtMW := middleware.JWTAuth(cfg.JWTSecret, sessions)
	v1 := r.Group("/v1", jwtMW)

	auth := v1.Group("/auth")
	auth.POST("/logout", authH.Logout)
	auth.GET("/me", authH.Me)

	v1.GET("/cashflow", reportsH.Cashflow)
	v1.GET("/cashflow/export", reportsH.ExportCashflow)
	v1.GET("/inventory/movements", reportsH.Movements)
	v1.GET("/inventory/stock", reportsH.Stock)

	v1.POST("/sales", entriesH.Sale)
	v1.POST("/purchases", entriesH.Purchase)
	v1.POST("/expenses", entriesH.Expense)

	managers := v1.Group("", middleware.RequireRole(model.RoleAdmin, model.RoleManager))
	managers.GET("/audit", reportsH.Audit)
	managers.GET("/suppliers/performance", reportsH.Suppliers)

	admin := v1.Group("", middleware.RequireRole(model.RoleAdmin))
	admin.GET("/sheets/:sheet", reportsH.Sheet)
	if rdb != nil {
		admin.GET("/admin/dead-letters", handler.DeadLetters(rdb))
	}

	log.Info().
		Bool("redis", rdb != nil).
		Bool("sheet_cache", source != infra.Sheets(client)).
		Msg("router ready")

	return &App{Engine: r, Pool: pool}
}
