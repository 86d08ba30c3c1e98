package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matheuspina/avaliatec/internal/crm/cache"
	"github.com/matheuspina/avaliatec/internal/crm/domain"
	"github.com/matheuspina/avaliatec/internal/crm/evolution"
	httpapi "github.com/matheuspina/avaliatec/internal/crm/http"
	"github.com/matheuspina/avaliatec/internal/crm/realtime"
	"github.com/matheuspina/avaliatec/internal/crm/saga"
	"github.com/matheuspina/avaliatec/internal/crm/service"
	"github.com/matheuspina/avaliatec/internal/crm/store"
	"github.com/matheuspina/avaliatec/internal/crm/store/drivers/sqlite"
	"github.com/matheuspina/avaliatec/pkg/access"
	"github.com/matheuspina/avaliatec/pkg/jwtx"
	"github.com/matheuspina/avaliatec/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"

	redisKeyPrefix      = "avaliatec:"
	realtimeChannelName = redisKeyPrefix + "realtime"
)

// Application encapsulates the CRM service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	redis    *redis.Client // nil with the memory backend
	verifier jwtx.Verifier
	gateway  *evolution.Client
	hub      *realtime.Hub

	permCache     cache.Cache[access.Map]
	permGens      cache.Cache[string]
	instanceCache cache.Cache[domain.Instance]
	webhookSeen   cache.Cache[bool]
	cacheHealth   httpapi.Pinger

	// Services
	permissionService   *service.PermissionService
	userService         *service.UserService
	groupService        *service.GroupService
	inviteService       *service.InviteService
	bootstrapService    *service.BootstrapService
	matchService        *service.MatchService
	clientService       *service.ClientService
	instanceService     *service.InstanceService
	messageService      *service.MessageService
	webhookService      *service.WebhookService
	housekeepingService *service.HousekeepingService

	// Background work tied to the application lifetime
	bgCtx    context.Context
	bgCancel context.CancelFunc
	hubDone  chan struct{}
	started  bool

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "avaliatec-crm",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}
	app.bgCtx, app.bgCancel = context.WithCancel(context.Background())

	if err := app.initDatabase(); err != nil {
		app.bgCancel()
		return nil, err
	}

	if err := app.initCache(app.bgCtx); err != nil {
		app.bgCancel()
		_ = app.db.Close()
		return nil, err
	}

	verifier, err := jwtx.NewVerifierHS256([]byte(cfg.JWTSecret), cfg.Issuer, cfg.Audience)
	if err != nil {
		app.closeBackends()
		return nil, fmt.Errorf("failed to initialize token verifier: %w", err)
	}
	app.verifier = verifier

	app.initRealtime()
	app.initServices()
	app.initHTTP()

	return app, nil
}

// Handler returns the root HTTP handler.
func (app *Application) Handler() http.Handler {
	return app.router
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.start()

	app.logger.Info("crm service starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"cache_backend", app.cfg.CacheBackend,
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			_ = app.Shutdown()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		// Perform graceful shutdown
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down crm service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	// Shutdown the HTTP server
	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	// Stop background workers
	if app.started {
		app.housekeepingService.Stop()
		app.bgCancel()
		<-app.hubDone
	}

	if err := app.closeBackends(); err != nil {
		return err
	}

	app.logger.Info("crm service stopped")
	return nil
}

func (app *Application) closeBackends() error {
	app.bgCancel()

	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}
	return nil
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "file", app.cfg.DatabaseFile)
	return nil
}

// initCache selects the cache backend. Redis shares permissions, instance
// lookups and webhook dedupe keys between replicas; memory keeps them per
// process.
func (app *Application) initCache(ctx context.Context) error {
	if app.cfg.CacheBackend != "redis" {
		perms := cache.NewMemory[access.Map]()
		app.permCache = perms
		app.permGens = cache.NewMemory[string]()
		app.instanceCache = cache.NewMemory[domain.Instance]()
		app.webhookSeen = cache.NewMemory[bool]()
		app.cacheHealth = perms
		app.logger.Info("using in-memory cache")
		return nil
	}

	client, err := cache.NewRedisClient(ctx, cache.RedisConfig{
		Addr:     app.cfg.RedisAddr,
		Password: app.cfg.RedisPassword,
		DB:       app.cfg.RedisDB,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize redis cache: %w", err)
	}
	app.redis = client

	perms := cache.NewRedis[access.Map](client, redisKeyPrefix)
	app.permCache = perms
	app.permGens = cache.NewRedis[string](client, redisKeyPrefix)
	app.instanceCache = cache.NewRedis[domain.Instance](client, redisKeyPrefix)
	app.webhookSeen = cache.NewRedis[bool](client, redisKeyPrefix)
	app.cacheHealth = perms

	app.logger.Info("using redis cache", "addr", app.cfg.RedisAddr, "db", app.cfg.RedisDB)
	return nil
}

// initRealtime builds the websocket hub. With redis, events fan out to every
// replica through pub/sub.
func (app *Application) initRealtime() {
	var broker realtime.Broker
	if app.redis != nil {
		broker = &realtime.RedisBroker{
			Client:  app.redis,
			Channel: realtimeChannelName,
			Logger:  app.logger,
		}
	}
	app.hub = realtime.NewHub(app.logger, broker, app.cfg.AllowedOrigins)
}

// start launches the background workers that Shutdown stops.
func (app *Application) start() {
	app.housekeepingService.Start()
	app.startHub()
	app.started = true
}

func (app *Application) startHub() {
	app.hubDone = make(chan struct{})
	go func() {
		defer close(app.hubDone)
		if err := app.hub.Run(app.bgCtx); err != nil && app.bgCtx.Err() == nil {
			app.logger.Error("realtime broker stopped", "error", err)
		}
	}()
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	if app.cfg.EvolutionAPIURL == "" {
		app.logger.Warn("EVOLUTION_API_URL is not set, WhatsApp calls will fail as unavailable")
	}
	app.gateway = evolution.NewClient(app.cfg.EvolutionAPIURL, app.cfg.EvolutionAPIKey)

	app.permissionService = &service.PermissionService{
		Store:       app.db,
		Cache:       app.permCache,
		Generations: app.permGens,
		TTL:         app.cfg.PermissionCacheTTL,
		Notifier:    app.hub,
	}

	app.userService = &service.UserService{Store: app.db, Permissions: app.permissionService}
	app.groupService = &service.GroupService{Store: app.db, Permissions: app.permissionService}
	app.inviteService = &service.InviteService{
		Store:       app.db,
		Permissions: app.permissionService,
		Mailer:      service.LogMailer{Logger: app.logger},
		AppBaseURL:  app.cfg.AppBaseURL,
	}
	app.bootstrapService = &service.BootstrapService{
		Store: app.db,
		Token: app.cfg.BootstrapToken,
	}

	app.matchService = &service.MatchService{Store: app.db}
	app.clientService = &service.ClientService{Store: app.db, Match: app.matchService}

	webhookURL := app.cfg.WebhookURL()
	if webhookURL == "" {
		app.logger.Warn("PUBLIC_BASE_URL is not set, new instances will not receive webhooks")
	}
	app.instanceService = &service.InstanceService{
		Store:      app.db,
		Gateway:    app.gateway,
		Cache:      app.instanceCache,
		Saga:       saga.Default,
		WebhookURL: webhookURL,
	}
	app.messageService = &service.MessageService{
		Store:   app.db,
		Gateway: app.gateway,
		Limiter: service.NewSendLimiter(time.Second),
	}

	if app.cfg.EvolutionWebhookSecret == "" {
		app.logger.Warn("EVOLUTION_WEBHOOK_SECRET is not set, webhook signatures are not verified")
	}
	app.webhookService = &service.WebhookService{
		Store:     app.db,
		Instances: app.instanceService,
		Match:     app.matchService,
		Seen:      app.webhookSeen,
		Secret:    app.cfg.EvolutionWebhookSecret,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.webhookService,
		app.matchService,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.verifier,
		BuildVersion,
		app.db,
		app.cacheHealth,
		app.logger,
	)

	// Wire services to router
	router.PermissionService = app.permissionService
	router.UserService = app.userService
	router.GroupService = app.groupService
	router.InviteService = app.inviteService
	router.BootstrapService = app.bootstrapService
	router.ClientService = app.clientService
	router.InstanceService = app.instanceService
	router.MessageService = app.messageService
	router.WebhookService = app.webhookService
	router.Hub = app.hub
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
