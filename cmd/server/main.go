package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	catalogapp "github.com/machshop/backend/internal/application/catalog"
	estimatingapp "github.com/machshop/backend/internal/application/estimating"
	partnerapp "github.com/machshop/backend/internal/application/partner"
	"github.com/machshop/backend/internal/domain/estimating"
	"github.com/machshop/backend/internal/domain/shared"
	"github.com/machshop/backend/internal/infrastructure/cache"
	"github.com/machshop/backend/internal/infrastructure/config"
	"github.com/machshop/backend/internal/infrastructure/event"
	"github.com/machshop/backend/internal/infrastructure/logger"
	"github.com/machshop/backend/internal/infrastructure/persistence"
	"github.com/machshop/backend/internal/infrastructure/scheduler"
	"github.com/machshop/backend/internal/infrastructure/telemetry"
	"github.com/machshop/backend/internal/interfaces/http/handler"
	"github.com/machshop/backend/internal/interfaces/http/middleware"
	"github.com/machshop/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	_ "github.com/machshop/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			Machshop Estimating API
//	@version		1.0
//	@description	Estimate lifecycle backend: catalog pricing, availability checks, approval workflow and revisioned quotes.

//	@contact.name	API Support
//	@contact.url	https://github.com/machshop/backend

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Machshop Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize OpenTelemetry tracing and metrics
	ctx := context.Background()
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()

	// Register database tracing and metrics instrumentation
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:         true,
			LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		}, log)
		if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
			log.Warn("Failed to register database tracing", zap.Error(err))
		}
	}
	if cfg.Telemetry.Enabled {
		dbMetrics, err := telemetry.RegisterDBMetrics(db.DB, meterProvider, telemetry.DefaultDBMetricsConfig(), log)
		if err != nil {
			log.Warn("Failed to register database metrics", zap.Error(err))
		} else if dbMetrics != nil {
			dbMetrics.StartPoolStatsCollection(ctx)
			defer dbMetrics.Stop()
		}
	}

	// Initialize repositories
	estimateRepo := persistence.NewGormEstimateRepository(db.DB)
	itemRepo := persistence.NewGormItemRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	priceBookRepo := persistence.NewGormPriceBookRepository(db.DB)
	approvalRuleRepo := persistence.NewGormApprovalRuleRepository(db.DB)

	// Initialize list price cache (Redis with in-memory fallback)
	cacheFactory := cache.NewListPriceCacheFactory(cfg.Redis, cfg.Estimating.ListPriceCacheTTL, cache.WithLogger(log))
	listPriceCache, err := cacheFactory.CreateCache()
	if err != nil {
		log.Fatal("Failed to initialize list price cache", zap.Error(err))
	}

	// Initialize domain services
	clock := shared.SystemClock{}
	pricingResolver := estimating.NewPricingResolver(priceBookRepo, customerRepo, itemRepo, clock, listPriceCache)
	availabilityChecker := estimating.NewAvailabilityChecker(itemRepo, clock, cfg.Estimating.ProcessingDays)
	approvalEvaluator := estimating.NewApprovalEvaluator(approvalRuleRepo)
	taxPolicy := estimating.NewFlatRateTaxPolicy(decimal.NewFromFloat(cfg.Estimating.TaxRate))

	// Initialize application services
	estimateService := estimatingapp.NewEstimateService(
		estimateRepo,
		itemRepo,
		customerRepo,
		pricingResolver,
		availabilityChecker,
		approvalEvaluator,
		taxPolicy,
		clock,
		cfg.Estimating.ValidityDays,
	)
	priceBookService := estimatingapp.NewPriceBookService(priceBookRepo, listPriceCache)
	approvalRuleService := estimatingapp.NewApprovalRuleService(approvalRuleRepo)
	itemService := catalogapp.NewItemService(itemRepo, listPriceCache)
	itemImportService := catalogapp.NewItemImportService(itemRepo, listPriceCache)
	customerService := partnerapp.NewCustomerService(customerRepo)

	// Initialize business metrics with periodic pipeline collection
	businessMetrics, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:            meterProvider.Meter("machshop-backend"),
		Logger:           log,
		EstimateProvider: persistence.NewGormEstimateMetricsProvider(db.DB),
	})
	if err != nil {
		log.Fatal("Failed to initialize business metrics", zap.Error(err))
	}
	businessMetrics.StartPeriodicCollection(ctx, 5*time.Minute)
	defer businessMetrics.Stop()

	// Initialize event bus and subscribe lifecycle handlers
	eventBus := event.NewInMemoryEventBus(log)
	metricsHandler := estimatingapp.NewEstimateMetricsHandler(businessMetrics, log)
	eventBus.Subscribe(metricsHandler, metricsHandler.EventTypes()...)

	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()
	estimateService.SetEventPublisher(eventBus)

	// Initialize expiry scheduler
	expiryScheduler, err := scheduler.NewExpiryScheduler(scheduler.ExpirySchedulerConfig{
		Enabled:    cfg.Estimating.ExpiryCheckEnabled,
		Interval:   cfg.Estimating.ExpiryCheckInterval,
		RunTimeout: 5 * time.Minute,
	}, estimateService, log)
	if err != nil {
		log.Fatal("Failed to initialize expiry scheduler", zap.Error(err))
	}
	if cfg.Estimating.ExpiryCheckEnabled {
		if err := expiryScheduler.Start(ctx); err != nil {
			log.Fatal("Failed to start expiry scheduler", zap.Error(err))
		}
		defer func() {
			if err := expiryScheduler.Stop(context.Background()); err != nil {
				log.Error("Error stopping expiry scheduler", zap.Error(err))
			}
		}()
		log.Info("Expiry scheduler started",
			zap.Duration("interval", cfg.Estimating.ExpiryCheckInterval),
		)
	}

	// Initialize HTTP handlers
	estimateHandler := handler.NewEstimateHandler(estimateService)
	priceBookHandler := handler.NewPriceBookHandler(priceBookService)
	approvalRuleHandler := handler.NewApprovalRuleHandler(approvalRuleService)
	itemHandler := handler.NewItemHandler(itemService, itemImportService)
	customerHandler := handler.NewCustomerHandler(customerService)
	schedulerHandler := handler.NewSchedulerHandler(expiryScheduler)
	systemHandler := handler.NewSystemHandler()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Tracing - OpenTelemetry spans
	// 5. Metrics - HTTP request metrics
	// 6. Security - Add security headers
	// 7. CORS - Handle cross-origin requests
	// 8. BodyLimit - Limit request body size
	// 9. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.TracingAttributeInjector())
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.HTTPMetricsWithMeter(meterProvider.Meter("machshop-backend/http"), cfg.Telemetry.Enabled))
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Rate limiting (if enabled)
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db))

	// Swagger documentation endpoint, guarded by IP allowlist
	swaggerGroup := engine.Group("/swagger")
	swaggerGroup.Use(middleware.SwaggerProtection(middleware.SwaggerConfig{
		Enabled:    cfg.Swagger.Enabled,
		AllowedIPs: cfg.Swagger.AllowedIPs,
	}))
	swaggerGroup.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Estimating domain (estimates, price books, approval rules, quoting)
	estimatingRoutes := router.NewDomainGroup("estimating", "/estimating")
	estimatingRoutes.POST("/estimates", estimateHandler.Create)
	estimatingRoutes.GET("/estimates", estimateHandler.List)
	estimatingRoutes.POST("/estimates/expire-overdue", estimateHandler.ExpireOverdue)
	estimatingRoutes.GET("/estimates/number/:estimate_number", estimateHandler.GetByNumber)
	estimatingRoutes.GET("/estimates/number/:estimate_number/revisions", estimateHandler.VersionHistory)
	estimatingRoutes.GET("/estimates/:id", estimateHandler.GetByID)
	estimatingRoutes.PUT("/estimates/:id", estimateHandler.Update)
	estimatingRoutes.DELETE("/estimates/:id", estimateHandler.Delete)
	estimatingRoutes.POST("/estimates/:id/lines", estimateHandler.AddLineItem)
	estimatingRoutes.PUT("/estimates/:id/lines/:line_id", estimateHandler.UpdateLineItem)
	estimatingRoutes.DELETE("/estimates/:id/lines/:line_id", estimateHandler.DeleteLineItem)
	estimatingRoutes.POST("/estimates/:id/submit", estimateHandler.Submit)
	estimatingRoutes.POST("/estimates/:id/approve", estimateHandler.Approve)
	estimatingRoutes.POST("/estimates/:id/reject", estimateHandler.Reject)
	estimatingRoutes.POST("/estimates/:id/send", estimateHandler.Send)
	estimatingRoutes.POST("/estimates/:id/accept", estimateHandler.Accept)
	estimatingRoutes.POST("/estimates/:id/expire", estimateHandler.Expire)
	estimatingRoutes.POST("/estimates/:id/revisions", estimateHandler.CreateRevision)

	// Interactive quote endpoint
	estimatingRoutes.GET("/quote", estimateHandler.Quote)

	// Price book routes
	estimatingRoutes.POST("/price-books", priceBookHandler.Create)
	estimatingRoutes.GET("/price-books", priceBookHandler.List)
	estimatingRoutes.GET("/price-books/:id", priceBookHandler.GetByID)
	estimatingRoutes.PUT("/price-books/:id", priceBookHandler.Update)
	estimatingRoutes.DELETE("/price-books/:id", priceBookHandler.Delete)
	estimatingRoutes.POST("/price-books/:id/entries", priceBookHandler.AddEntry)
	estimatingRoutes.DELETE("/price-books/:id/entries/:entry_id", priceBookHandler.RemoveEntry)

	// Approval rule routes
	estimatingRoutes.POST("/approval-rules", approvalRuleHandler.Create)
	estimatingRoutes.GET("/approval-rules", approvalRuleHandler.List)
	estimatingRoutes.GET("/approval-rules/:id", approvalRuleHandler.GetByID)
	estimatingRoutes.PUT("/approval-rules/:id", approvalRuleHandler.Update)
	estimatingRoutes.DELETE("/approval-rules/:id", approvalRuleHandler.Delete)

	// Expiry scheduler monitoring
	estimatingRoutes.GET("/scheduler/status", schedulerHandler.Status)
	estimatingRoutes.GET("/scheduler/history", schedulerHandler.History)
	estimatingRoutes.POST("/scheduler/trigger", schedulerHandler.TriggerNow)

	// Catalog domain (items)
	catalogRoutes := router.NewDomainGroup("catalog", "/catalog")
	catalogRoutes.POST("/items", itemHandler.Create)
	catalogRoutes.POST("/items/import", itemHandler.Import)
	catalogRoutes.GET("/items", itemHandler.List)
	catalogRoutes.GET("/items/sku/:sku", itemHandler.GetBySKU)
	catalogRoutes.GET("/items/:id", itemHandler.GetByID)
	catalogRoutes.PUT("/items/:id", itemHandler.Update)
	catalogRoutes.PUT("/items/:id/stock", itemHandler.SetStock)
	catalogRoutes.DELETE("/items/:id", itemHandler.Delete)

	// Partner domain (customers)
	partnerRoutes := router.NewDomainGroup("partner", "/partner")
	partnerRoutes.POST("/customers", customerHandler.Create)
	partnerRoutes.GET("/customers", customerHandler.List)
	partnerRoutes.GET("/customers/:id", customerHandler.GetByID)
	partnerRoutes.PUT("/customers/:id", customerHandler.Update)
	partnerRoutes.DELETE("/customers/:id", customerHandler.Delete)

	// System routes
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)

	r.Register(estimatingRoutes).
		Register(catalogRoutes).
		Register(partnerRoutes).
		Register(systemRoutes)

	// Setup routes
	r.Setup()

	// Also keep a simple ping at root API level for basic health checks
	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		body := gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		}
		if stats, err := db.Stats(); err == nil {
			body["pool"] = stats
		}
		c.JSON(http.StatusOK, body)
	}
}
