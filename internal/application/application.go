package application

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/eugenenazirov/maxweight/internal/api"
	"github.com/eugenenazirov/maxweight/internal/config"
	"github.com/eugenenazirov/maxweight/internal/food"
	"github.com/eugenenazirov/maxweight/internal/loader"
	"github.com/eugenenazirov/maxweight/internal/metrics"
	"github.com/eugenenazirov/maxweight/internal/solver"
	"github.com/eugenenazirov/maxweight/internal/storage"
)

// App encapsulates the application dependencies and HTTP server.
type App struct {
	cfg     config.Config
	storage storage.Storage
	loader  *loader.Loader
	handler *api.Handler
	router  http.Handler
	logger  *zap.Logger
	server  *http.Server

	watchCtx   context.Context
	stopWatch  context.CancelFunc
	watchDone  chan struct{}
	startWatch sync.Once
}

// Option customizes App construction.
type Option func(*appOptions)

type appOptions struct {
	objects loader.ObjectGetter
}

// WithObjectGetter supplies the object store used for s3:// catalog sources
// instead of building an S3 client from configuration.
func WithObjectGetter(objects loader.ObjectGetter) Option {
	return func(o *appOptions) {
		o.objects = objects
	}
}

// New initializes the application with all dependencies from the provided
// configuration and loads the initial catalog when a source is configured.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	var o appOptions
	for _, opt := range opts {
		opt(&o)
	}

	if o.objects == nil && loader.IsRemote(cfg.CatalogSource) {
		client, err := loader.NewS3Client(ctx, loader.S3Config{
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			PathStyle: cfg.S3.PathStyle,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create object store client: %w", err)
		}
		o.objects = client
	}

	var loaderOpts []loader.Option
	if o.objects != nil {
		loaderOpts = append(loaderOpts, loader.WithObjectGetter(o.objects))
	}
	catalogLoader := loader.New(logger, loaderOpts...)

	store := storage.NewMemoryStorage(storage.WithMaxItems(cfg.MaxCatalogItems))
	if cfg.CatalogSource != "" {
		catalog, err := catalogLoader.Load(ctx, cfg.CatalogSource)
		if err == nil {
			err = store.SetCatalog(catalog)
		}
		metrics.CatalogReloaded(err)
		if err != nil {
			return nil, fmt.Errorf("failed to load initial catalog: %w", err)
		}
	}

	handler := api.NewHandler(store,
		api.WithLogger(logger),
		api.WithDefaultStrategy(cfg.DefaultStrategy),
		api.WithSolverOptions(
			solver.WithMaxItems(cfg.MaxExhaustiveItems),
			solver.WithWorkers(cfg.ExhaustiveWorkers),
		),
		api.WithSolveTimeout(cfg.WriteTimeout),
	)
	apiRouter := api.NewRouter(handler, logger,
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	watchCtx, stopWatch := context.WithCancel(context.Background())

	return &App{
		cfg:       cfg,
		storage:   store,
		loader:    catalogLoader,
		handler:   handler,
		router:    apiRouter,
		logger:    logger,
		server:    NewServer(cfg, BuildRootHandler(apiRouter)),
		watchCtx:  watchCtx,
		stopWatch: stopWatch,
		watchDone: make(chan struct{}),
	}, nil
}

// BuildRootHandler constructs the root HTTP handler that routes API requests
// and exposes Prometheus metrics.
func BuildRootHandler(apiHandler http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/", apiHandler)
	mux.Handle("GET /metrics", metrics.Handler())
	return mux
}

// NewServer creates and configures an HTTP server from the provided configuration.
func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	addr := cfg.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Start starts the HTTP server in a goroutine and logs the listening address.
// When catalog watching is enabled the catalog file watcher starts as well.
func (a *App) Start() error {
	a.StartWatcher()

	go func() {
		a.logger.Info("server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// StartWatcher starts reloading the catalog on file changes if configured.
// It is safe to call more than once.
func (a *App) StartWatcher() {
	a.startWatch.Do(func() {
		if !a.cfg.WatchCatalog || a.cfg.CatalogSource == "" || loader.IsRemote(a.cfg.CatalogSource) {
			close(a.watchDone)
			return
		}

		go func() {
			defer close(a.watchDone)
			if err := a.loader.Watch(a.watchCtx, a.cfg.CatalogSource, a.replaceCatalog); err != nil {
				a.logger.Error("catalog watcher stopped", zap.Error(err))
			}
		}()
	})
}

func (a *App) replaceCatalog(catalog food.Catalog) {
	err := a.storage.SetCatalog(catalog)
	metrics.CatalogReloaded(err)
	if err != nil {
		a.logger.Warn("catalog reload rejected", zap.Error(err))
		return
	}
	a.logger.Info("catalog reloaded", zap.Int("items", len(catalog)))
}

// Close stops the catalog watcher and waits for it to exit.
func (a *App) Close() {
	a.stopWatch()
	a.startWatch.Do(func() { close(a.watchDone) })
	<-a.watchDone
}

// Storage returns the catalog store.
func (a *App) Storage() storage.Storage {
	return a.storage
}

// Handler returns the root HTTP handler served by the application.
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}
