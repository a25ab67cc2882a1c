package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yungbote/calisthenics-backend/internal/catalog"
	"github.com/yungbote/calisthenics-backend/internal/data/db"
	apphttp "github.com/yungbote/calisthenics-backend/internal/http"
	"github.com/yungbote/calisthenics-backend/internal/observability"
	"github.com/yungbote/calisthenics-backend/internal/pkg/dbctx"
	"github.com/yungbote/calisthenics-backend/internal/pkg/logger"
	"github.com/yungbote/calisthenics-backend/internal/realtime"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Catalog  *catalog.Catalog
	Repos    Repos
	Services Services
	Clients  Clients
	SSEHub   *realtime.SSEHub
	Metrics  *observability.Metrics

	pg           *db.PostgresService
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

// New connects to postgres (and redis when configured), migrates the schema
// and wires every layer. It does not start background work; see Start.
func New(ctx context.Context, log *logger.Logger, cfg Config) (*App, error) {
	cat, err := catalog.Load()
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Env,
		Version:     cfg.Version,
	})
	metrics := observability.Init(log)

	pg, err := db.NewPostgresService(log, cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	theDB := pg.DB()
	if err := db.AutoMigrateAll(theDB); err != nil {
		_ = pg.Close()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}
	if err := db.EnsureProgressIndexes(theDB); err != nil {
		_ = pg.Close()
		return nil, fmt.Errorf("postgres indexes: %w", err)
	}

	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		_ = pg.Close()
		return nil, err
	}

	hub := realtime.NewSSEHub(log)
	reposet := wireRepos(theDB, log)
	serviceset := wireServices(theDB, log, cfg, cat, reposet, clients, hub)
	handlerset := wireHandlers(log, theDB, serviceset, clients, hub)
	middleware := wireMiddleware(log, serviceset)
	router := wireRouter(log, cfg, handlerset, middleware)

	return &App{
		Log:          log,
		DB:           theDB,
		Router:       router,
		Cfg:          cfg,
		Catalog:      cat,
		Repos:        reposet,
		Services:     serviceset,
		Clients:      clients,
		SSEHub:       hub,
		Metrics:      metrics,
		pg:           pg,
		otelShutdown: otelShutdown,
	}, nil
}

// Start launches background work: the redis event forwarder, metrics
// endpoint and collectors, and the expired-token sweeper.
func (a *App) Start(ctx context.Context) {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	if a.Clients.SSEBus != nil {
		hub := a.SSEHub
		if err := a.Clients.SSEBus.StartForwarder(ctx, hub.Broadcast); err != nil {
			a.Log.Warn("sse forwarder failed to start; events stay local", "error", err)
		}
	}
	if a.Metrics != nil {
		a.Metrics.StartServer(ctx, a.Log, a.Cfg.MetricsAddr)
		a.Metrics.StartPostgresCollector(ctx, a.Log, a.DB)
		if a.Clients.Redis != nil {
			a.Metrics.StartRedisCollector(ctx, a.Log, a.Clients.Redis)
		}
	}
	go a.sweepTokens(ctx, a.Cfg.TokenSweepEvery)
}

func (a *App) sweepTokens(ctx context.Context, every time.Duration) {
	if every <= 0 {
		return
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			n, err := a.Repos.UserToken.FullDeleteExpired(dbctx.Context{Ctx: ctx}, now)
			if err != nil {
				a.Log.Warn("token sweep failed", "error", err)
				continue
			}
			if n > 0 {
				a.Log.Info("expired tokens removed", "count", n)
			}
		}
	}
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	srv := &apphttp.Server{Engine: a.Router}
	a.Log.Info("http server listening", "port", a.Cfg.Port)
	return srv.Run(ctx, ":"+a.Cfg.Port, a.Cfg.ShutdownTimeout)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.Clients.Close()
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = a.otelShutdown(ctx)
		cancel()
	}
	if a.pg != nil {
		_ = a.pg.Close()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
