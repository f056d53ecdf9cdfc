// Package app wires the local store, the remote backend, the session and the
// sync orchestrator into one device process.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/harentsoaR/dentist-sync/internal/auth"
	"github.com/harentsoaR/dentist-sync/internal/clinicsync"
	"github.com/harentsoaR/dentist-sync/internal/config"
	"github.com/harentsoaR/dentist-sync/internal/handlers"
	"github.com/harentsoaR/dentist-sync/internal/services"
	"github.com/harentsoaR/dentist-sync/internal/store/local"
	"github.com/harentsoaR/dentist-sync/internal/store/remote"
)

// App is a fully wired device.
type App struct {
	Config   config.Config
	Local    *local.Store
	Remote   *remote.Store
	Session  *auth.Session
	Sync     *clinicsync.Orchestrator
	Registry *prometheus.Registry
	Handler  *handlers.Handler

	out     io.Writer
	closers []func(context.Context) error
}

// New opens the stores and builds the orchestrator. Call Start before serving.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	a := &App{Config: cfg, out: os.Stderr}
	if cfg.LogFile != "" {
		rotating := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
		a.out = io.MultiWriter(os.Stderr, rotating)
		a.closers = append(a.closers, func(context.Context) error { return rotating.Close() })
	}
	logger := a.Logger("app")

	localStore, err := local.Open(cfg.LocalDBPath, a.Logger("local"))
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}
	a.Local = localStore
	a.closers = append(a.closers, func(context.Context) error { return localStore.Close() })

	backend, dir, conn, err := a.openRemote(ctx)
	if err != nil {
		_ = a.Close(ctx)
		return nil, err
	}
	logger.Printf("Remote backend: %s", cfg.RemoteBackend)

	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	if cfg.JWTSecret == "" {
		logger.Println("WARNING: JWT_SECRET is NOT SET, sign in is disabled.")
	}
	a.Session = auth.NewSession(dir, issuer, localStore, a.Logger("auth"))
	a.Remote = remote.NewStore(backend, a.Session, a.Logger("remote"))

	a.Registry = prometheus.NewRegistry()
	a.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.Sync = clinicsync.New(localStore, a.Remote, a.Session, conn, clinicsync.Options{
		MaxAttempts:  cfg.PushMaxAttempts,
		BaseBackoff:  cfg.PushBaseBackoff,
		PullInterval: cfg.PullInterval,
		Logger:       a.Logger("sync"),
		Metrics:      clinicsync.NewMetrics(a.Registry),
	})

	a.Handler = handlers.NewHandler(a.Sync, a.Session, localStore, a.Remote, a.Logger("api"))
	if cfg.GeminiAPIKey != "" {
		a.Handler.Assistant = services.NewAssistant(cfg.GeminiURL, cfg.GeminiAPIKey)
	}
	if cfg.TextbeltKey != "" {
		a.Handler.Notifier = services.NewNotificationService(cfg.TextbeltURL, cfg.TextbeltKey, a.Logger("sms"))
	}
	return a, nil
}

// Logger returns a logger for one component, tagged "[name] ".
func (a *App) Logger(name string) *log.Logger {
	return log.New(a.out, "["+name+"] ", log.LstdFlags)
}

func (a *App) openRemote(ctx context.Context) (remote.Backend, auth.Directory, clinicsync.Connectivity, error) {
	cfg := a.Config
	logger := a.Logger("remote")

	switch cfg.RemoteBackend {
	case config.BackendMongo:
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connect to MongoDB: %w", err)
		}
		a.closers = append(a.closers, client.Disconnect)
		db := client.Database(cfg.MongoDatabase)

		store := remote.NewMongoStore(db, logger)
		dir := auth.NewMongoDirectory(db)
		// Offline start is allowed: indexes are created on the next start.
		if err := store.EnsureIndexes(connectCtx); err != nil {
			logger.Printf("WARNING: could not create snapshot indexes: %v", err)
		}
		if err := dir.EnsureIndexes(connectCtx); err != nil {
			logger.Printf("WARNING: could not create user indexes: %v", err)
		}
		return store, dir, clinicsync.PingProbe{Target: store, Timeout: cfg.ConnectivityTimeout}, nil

	case config.BackendRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		client := redis.NewClient(opts)
		a.closers = append(a.closers, func(context.Context) error { return client.Close() })
		store := remote.NewRedisStore(client, logger)
		return store, auth.NewMemoryDirectory(), clinicsync.PingProbe{Target: store, Timeout: cfg.ConnectivityTimeout}, nil

	case config.BackendMemory:
		return remote.NewMemoryStore(), auth.NewMemoryDirectory(), clinicsync.AlwaysOnline{}, nil
	}
	return nil, nil, nil, fmt.Errorf("unknown REMOTE_BACKEND %q", cfg.RemoteBackend)
}

// Start loads the local snapshot and runs the first pull.
func (a *App) Start(ctx context.Context) error {
	return a.Sync.Start(ctx)
}

// Router returns the HTTP API of the device.
func (a *App) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.LoggerWithWriter(a.out), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     a.Config.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": a.Sync.Status().Status})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{})))
	a.Handler.Register(r)
	return r
}

// Serve runs the HTTP API until ctx is done, then shuts it down.
func (a *App) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + a.Config.Port,
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		a.Logger("app").Printf("Starting server on port %s", a.Config.Port)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// Close stops the orchestrator and releases every store, newest first.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.Sync != nil {
		errs = append(errs, a.Sync.Close())
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i](ctx))
	}
	a.closers = nil
	return errors.Join(errs...)
}
