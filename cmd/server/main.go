package main

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

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/xeze-org/exercise-tracker/internal/config"
	"github.com/xeze-org/exercise-tracker/internal/middleware"
	"github.com/xeze-org/exercise-tracker/internal/store"
	"github.com/xeze-org/exercise-tracker/internal/tracker"
	"github.com/xeze-org/exercise-tracker/internal/web"
)

func main() {
	cfg := config.Load()
	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx := context.Background()

	// ── Record store ─────────────────────────────────────────
	records, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	// ── Redis (optional user cache) ──────────────────────────
	opts := []tracker.Option{tracker.WithLogger(logger)}
	if cfg.RedisAddr != "" {
		redisCtx, cancel := context.WithTimeout(ctx, cfg.StoreTimeout)
		rdb, err := store.NewRedisClient(redisCtx, cfg.RedisAddr, cfg.RedisPassword)
		cancel()
		if err != nil {
			return fmt.Errorf("redis connect: %w", err)
		}
		defer rdb.Close()
		opts = append(opts, tracker.WithUserCache(store.NewRedisUserCache(rdb, cfg.UserCacheTTL)))
		logger.Info("user cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.UserCacheTTL)
	}

	// ── Static assets ────────────────────────────────────────
	var assets web.AssetStore = store.NewDirStore(cfg.AssetsDir)
	if cfg.MinioEndpoint != "" {
		minioCtx, cancel := context.WithTimeout(ctx, cfg.StoreTimeout)
		minioStore, err := store.NewMinioStore(
			minioCtx, cfg.MinioEndpoint, cfg.MinioAccessKey,
			cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL,
		)
		cancel()
		if err != nil {
			return fmt.Errorf("minio connect: %w", err)
		}
		assets = minioStore
		logger.Info("serving assets from minio", "bucket", cfg.MinioBucket)
	}

	// ── Handlers ─────────────────────────────────────────────
	svc := tracker.NewService(records, opts...)
	apiHandler := tracker.NewHandler(svc, logger)
	webHandler := web.NewHandler(assets, logger)

	// ── Router ───────────────────────────────────────────────
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())
	webHandler.Routes(r)
	apiHandler.Routes(r)

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "port", cfg.Port, "store", cfg.StoreBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-quit:
	}

	logger.Info("shutting down")
	shutCtx, cancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutCtx)
}

// openStore connects the configured record store and returns a function
// releasing its connections.
func openStore(ctx context.Context, cfg *config.Config) (tracker.RecordStore, func(), error) {
	switch cfg.StoreBackend {
	case "mongo":
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, nil, fmt.Errorf("mongo connect: %w", err)
		}
		closeFn := func() {
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(dctx)
		}
		pingCtx, cancel := context.WithTimeout(ctx, cfg.StoreTimeout)
		defer cancel()
		if err := client.Ping(pingCtx, nil); err != nil {
			closeFn()
			return nil, nil, fmt.Errorf("mongo ping: %w", err)
		}
		s := store.NewMongoStore(client.Database(cfg.MongoDB))
		if err := s.EnsureIndexes(pingCtx); err != nil {
			closeFn()
			return nil, nil, err
		}
		return s, closeFn, nil

	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres connect: %w", err)
		}
		migrateCtx, cancel := context.WithTimeout(ctx, cfg.StoreTimeout)
		defer cancel()
		s := store.NewPostgresStore(pool)
		if err := s.Migrate(migrateCtx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("postgres migrate: %w", err)
		}
		return s, pool.Close, nil

	case "memory":
		return store.NewMemoryStore(), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
