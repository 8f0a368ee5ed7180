package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	editorsapp "github.com/marketplace/backend/internal/application/editors"
	payapp "github.com/marketplace/backend/internal/application/payment"
	"github.com/marketplace/backend/internal/infrastructure/auth"
	"github.com/marketplace/backend/internal/infrastructure/billing"
	"github.com/marketplace/backend/internal/infrastructure/cache"
	"github.com/marketplace/backend/internal/infrastructure/config"
	"github.com/marketplace/backend/internal/infrastructure/event"
	"github.com/marketplace/backend/internal/infrastructure/i18n"
	"github.com/marketplace/backend/internal/infrastructure/logger"
	"github.com/marketplace/backend/internal/infrastructure/marketplace"
	"github.com/marketplace/backend/internal/infrastructure/persistence"
	"github.com/marketplace/backend/internal/infrastructure/postback"
	"github.com/marketplace/backend/internal/infrastructure/session"
	"github.com/marketplace/backend/internal/infrastructure/telemetry"
	"github.com/marketplace/backend/internal/infrastructure/urlcheck"
	"github.com/marketplace/backend/internal/interfaces/http/handler"
	"github.com/marketplace/backend/internal/interfaces/http/middleware"
	"github.com/marketplace/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	_ "github.com/marketplace/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const appVersion = "1.0.0"

//	@title			Marketplace Backend API
//	@version		1.0
//	@description	Editor review queues and the in-app payment lobby of the add-ons marketplace

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	ctx := context.Background()

	// OpenTelemetry log bridge; exporting is a no-op when disabled
	logProvider, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry)
	if err != nil {
		panic("Failed to initialize log provider: " + err.Error())
	}

	logCfg := logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}
	var extraCores []zapcore.Core
	if logProvider.IsEnabled() {
		extraCores = append(extraCores, logProvider.ZapCore(logger.ParseLevel(cfg.Log.Level)))
	}
	log, err := logger.New(logCfg, extraCores...)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting Marketplace Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Tracing, metrics and profiling
	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	profiler, err := telemetry.NewProfiler(cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsActive() && tracerProvider.IsEnabled() {
		tracerProvider.EnableSpanProfiles()
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := profiler.Stop(); err != nil {
			log.Error("Error stopping profiler", zap.Error(err))
		}
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
		if err := logProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down log provider", zap.Error(err))
		}
	}()

	meter := meterProvider.Meter(cfg.Telemetry.ServiceName)
	appMetrics, err := telemetry.NewAppMetrics(meter)
	if err != nil {
		log.Fatal("Failed to register application metrics", zap.Error(err))
	}

	// Create GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh),
		logger.WithParameterizedQueries(!cfg.Telemetry.DBLogFullSQL),
	)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.RegisterDBTracing(db.DB, cfg.Telemetry, cfg.Database.DBName, log); err != nil {
		log.Warn("Database tracing disabled", zap.Error(err))
	}
	if err := telemetry.RegisterDBPoolMetrics(db.DB, meter); err != nil {
		log.Warn("Database pool metrics disabled", zap.Error(err))
	}
	log.Info("Database connected successfully")

	// Cache stores: Redis when enabled, process memory otherwise
	storeFactory := cache.NewStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.App.Env != "production"),
	)
	defer func() {
		if err := storeFactory.Close(); err != nil {
			log.Error("Error closing cache stores", zap.Error(err))
		}
	}()
	sessionBackend, err := storeFactory.CreateStore(ctx, "session:")
	if err != nil {
		log.Fatal("Failed to create session store", zap.Error(err))
	}
	flashBackend, err := storeFactory.CreateStore(ctx, "flash:")
	if err != nil {
		log.Fatal("Failed to create flash store", zap.Error(err))
	}
	tierBackend, err := storeFactory.CreateStore(ctx, "tier:")
	if err != nil {
		log.Fatal("Failed to create price tier store", zap.Error(err))
	}
	sessionStore := session.NewStore(sessionBackend, cfg.Cookie.MaxAge)
	flashStore := session.NewFlashStore(flashBackend, 24*time.Hour)

	// Initialize repositories
	queueRepo := persistence.NewGormQueueRepository(db.DB)
	addonRepo := persistence.NewGormAddonRepository(db.DB)
	activityRepo := persistence.NewGormActivityLogRepository(db.DB)
	approvalRepo := persistence.NewGormApprovalRepository(db.DB)
	eventLogRepo := persistence.NewGormEventLogRepository(db.DB)
	reviewRepo := persistence.NewGormReviewRepository(db.DB)
	cannedRepo := persistence.NewGormCannedResponseRepository(db.DB)
	siteConfigRepo := persistence.NewGormSiteConfigRepository(db.DB)
	appVersionRepo := persistence.NewGormAppVersionRepository(db.DB)
	reviewWriter := persistence.NewGormReviewWriter(db.DB)
	issuerRepo := persistence.NewGormIssuerRepository(db.DB)

	// External services
	billingClient := billing.NewClient(cfg.Billing, log)
	priceCatalog := cache.NewPriceTierCache(marketplace.NewClient(cfg.Marketplace), tierBackend, cfg.Marketplace.TierCacheTTL, log)
	urlVerifier := urlcheck.NewVerifier(cfg.Payment.VerifyURLReachable, cfg.Payment.VerifyURLTimeout)
	deliverer := postback.NewDeliverer(cfg.Payment.NotifyRetries, cfg.Billing.Timeout, log)

	jwtService := auth.NewJWTService(cfg.JWT)
	noticeSigner := auth.NewNoticeSigner(cfg.Payment.Domain, cfg.Payment.NoticeExpiration)
	payRequestVerifier := auth.NewPayRequestVerifier(cfg.Payment.Domain)
	secrets := payapp.NewSecretResolver(cfg.Payment.Key, cfg.Payment.Secret, issuerRepo)
	translator := i18n.NewTranslator()

	// Background tasks run on the in-process event bus
	eventBus := event.NewAsyncEventBus(log,
		event.WithWorkers(cfg.Event.Workers),
		event.WithQueueSize(cfg.Event.QueueSize),
	)
	startPay := payapp.NewStartPayHandler(billingClient, priceCatalog, appMetrics, log)
	simulateNotify := payapp.NewSimulateNotifyHandler(secrets, noticeSigner, deliverer, appMetrics, log)
	reviewEvents := editorsapp.NewReviewEventsHandler(log, appMetrics)
	eventBus.Subscribe(startPay, startPay.EventTypes()...)
	eventBus.Subscribe(simulateNotify, simulateNotify.EventTypes()...)
	eventBus.Subscribe(reviewEvents, reviewEvents.EventTypes()...)

	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := eventBus.Stop(stopCtx); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Initialize application services
	editorsService := editorsapp.NewService(editorsapp.Repositories{
		Queue:       queueRepo,
		Addons:      addonRepo,
		Activity:    activityRepo,
		Approvals:   approvalRepo,
		EventLog:    eventLogRepo,
		Reviews:     reviewRepo,
		Canned:      cannedRepo,
		SiteConfig:  siteConfigRepo,
		AppVersions: appVersionRepo,
		Writer:      reviewWriter,
	}, flashStore, eventBus, translator, log)

	payService := payapp.NewService(cfg.Payment, payapp.Dependencies{
		Secrets:    secrets,
		Verifier:   payRequestVerifier,
		URLs:       urlVerifier,
		Prices:     priceCatalog,
		Billing:    billingClient,
		Publisher:  eventBus,
		Translator: translator,
		Metrics:    appMetrics,
	}, log)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}
	r := router.NewRouter(engine, router.WithAPIVersion("v1"), router.WithLogger(log))

	// Initialize HTTP handlers
	editorsHandler := handler.NewEditorsHandler(editorsService, r.APIPrefix()+"/editors")
	payHandler := handler.NewPayHandler(payService, jwtService.ValidateBuyerToken)
	systemHandler := handler.NewSystemHandler(cfg.App.Name, appVersion, map[string]handler.HealthCheck{
		"database": db.Ping,
		"cache": func(ctx context.Context) error {
			_, err := sessionBackend.Get(ctx, "healthcheck")
			if errors.Is(err, cache.ErrCacheMiss) {
				return nil
			}
			return err
		},
	})

	middleware.SetupValidator()

	// Global middleware; order matters
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.Tracing(cfg.Telemetry.ServiceName, tracerProvider.IsEnabled()))
	engine.Use(logger.GinMiddleware(log, "/health"))
	engine.Use(middleware.HTTPMetrics(meter))
	engine.Use(middleware.Profiling(cfg.Telemetry.ProfilingEnabled))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	serverCtx, stopServer := context.WithCancel(context.Background())
	defer stopServer()
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(serverCtx, cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", systemHandler.Health)

	// Swagger documentation endpoint
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:    cfg.Swagger.Enabled,
			AllowedIPs: cfg.Swagger.AllowedIPs,
		}),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	// Editor tools
	editorsRoutes := router.NewArea("editors", "/editors").
		Use(
			middleware.JWTAuthMiddleware(jwtService, log),
			middleware.SpanEnricher(),
			middleware.RequireEditor(log),
			middleware.Locale(translator),
		)
	editorsRoutes.GET("/", editorsHandler.Home)
	editorsRoutes.GET("/eventlog", editorsHandler.EventLog)
	editorsRoutes.GET("/eventlog/:id", editorsHandler.EventLogDetail)
	editorsRoutes.GET("/queue", editorsHandler.QueueIndex)
	editorsRoutes.GET("/queue/reviews", editorsHandler.ModeratedQueue)
	editorsRoutes.POST("/queue/reviews", editorsHandler.Moderate)
	editorsRoutes.POST("/queue/application_versions.json", editorsHandler.ApplicationVersions)
	editorsRoutes.GET("/queue/:tab", editorsHandler.Queue)
	editorsRoutes.GET("/review/:version_id", editorsHandler.Review)
	editorsRoutes.POST("/review/:version_id", editorsHandler.SubmitReview)
	editorsRoutes.GET("/reviewlog", editorsHandler.ReviewLog)
	editorsRoutes.POST("/motd",
		middleware.RequireAnyPermission(middleware.PermissionEditorsMOTD),
		editorsHandler.SetMotd,
	)

	// Payment lobby; anonymous buyers are tracked by the session cookie
	payRoutes := router.NewArea("pay", "/mozpay").
		Use(
			middleware.PaySession(sessionStore, cfg.Cookie, log),
			middleware.SpanEnricher(),
			middleware.Locale(translator),
		)
	payRoutes.GET("/", payHandler.Lobby)
	payRoutes.POST("/simulate", payHandler.Simulate)
	payRoutes.GET("/fakepay", payHandler.FakePay)
	payRoutes.GET("/fake-bango-url", payHandler.FakeBangoURL)
	payRoutes.GET("/wait-to-start", payHandler.WaitToStart)
	payRoutes.GET("/trans_start_url", payHandler.TransStartURL)
	payRoutes.POST("/pin/verify", payHandler.VerifyPin)
	payRoutes.POST("/auth/verify", payHandler.VerifyBuyer)

	systemRoutes := router.NewArea("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)

	r.Register(editorsRoutes).
		Register(systemRoutes).
		RegisterRoot(payRoutes)
	r.Setup()

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
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("Server exited gracefully")
}
