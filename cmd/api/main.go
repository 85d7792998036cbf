package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"storefront/config"
	"storefront/internal/auth"
	"storefront/internal/delivery/http/middleware"
	v1 "storefront/internal/delivery/http/v1"
	"storefront/internal/domain"
	"storefront/internal/infrastructure/cache"
	"storefront/internal/infrastructure/facebook"
	"storefront/internal/infrastructure/metrics"
	"storefront/internal/infrastructure/snapshot"
	"storefront/internal/repository/rest"
	"storefront/internal/repository/supabase"
	"storefront/internal/session"
	"storefront/internal/usecase"
	"storefront/pkg/logger"
	"storefront/pkg/storage"
	"storefront/pkg/utils"
)

const (
	serviceName = "storefront"
	version     = "1.0.0"
)

func main() {
	cfg := config.LoadConfig()

	// Initialize Logger
	logger.Init(cfg.Env, cfg.LogLevel, serviceName)
	log := logger.Get()

	ctx := context.Background()
	var closers []func()

	// Snapshot persistence
	snapshots, closeSnapshots, err := newSnapshotStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.SnapshotDriver).Msg("Failed to initialize snapshot store")
	}
	closers = append(closers, closeSnapshots)
	log.Info().Str("driver", cfg.SnapshotDriver).Msg("Snapshot store ready")

	// Remote backend
	backend, closeBackend, err := newBackend(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Backend).Msg("Failed to initialize backend")
	}
	closers = append(closers, closeBackend)

	// Caches: sessions evict on idle, everything else uses explicit TTLs
	sessionCache := cache.NewMemoryCache(cfg.SessionIdleTTL, time.Minute)
	memCache := cache.NewMemoryCache(30*time.Minute, 60*time.Minute)

	registry := session.NewRegistry(sessionCache, snapshots, backend, cfg.PageSize, cfg.SessionIdleTTL)

	// Conversion tracking (nil client when disabled)
	capi := facebook.NewCAPIClient(cfg.FBPixelID, cfg.FBAccessToken, cfg.FBAPIVersion, cfg.FBTestCode, cfg.Currency)
	var tracker domain.ConversionTracker
	if capi != nil {
		tracker = capi
	}

	// --- Modules Initialization ---
	cartUC := usecase.NewCartUsecase(registry, backend, backend, tracker, cfg.MaxCartQuantity)
	wishlistUC := usecase.NewWishlistUsecase(registry, backend, cartUC, tracker)
	listingUC := usecase.NewListingUsecase(registry)
	catalogUC := usecase.NewCatalogUsecase(backend, memCache, cfg)
	checkoutUC := usecase.NewCheckoutUsecase(registry, backend, backend, tracker)
	accountUC := usecase.NewAccountUsecase(backend)

	verifier := auth.NewTokenVerifier(cfg.JWTSecret)
	tokens := auth.NewSessionTokens(snapshots)

	routes := &v1.Routes{
		Cart:     v1.NewCartHandler(cartUC),
		Wishlist: v1.NewWishlistHandler(wishlistUC),
		Catalog:  v1.NewCatalogHandler(listingUC, catalogUC),
		Orders:   v1.NewOrderHandler(checkoutUC, accountUC),
		Account:  v1.NewAccountHandler(accountUC),
		Auth:     v1.NewAuthHandler(verifier, tokens),
		Config:   v1.NewConfigHandler(memCache, cfg.Currency, cfg.PageSize),
	}

	// --- Storage Module (R2) ---
	if cfg.R2AccountID != "" && cfg.R2BucketName != "" {
		r2Storage, err := storage.NewR2Storage(
			ctx,
			cfg.R2AccountID,
			cfg.R2AccessKeyID,
			cfg.R2AccessKeySecret,
			cfg.R2BucketName,
			cfg.R2PublicURL,
			cfg.R2UploadTimeout,
		)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize R2 Storage")
		}
		routes.Upload = v1.NewUploadHandler(r2Storage, cfg.MaxUploadSizeMB)
	} else {
		log.Info().Msg("R2 not configured. Shop uploads disabled.")
	}

	// Set up Router
	mux := http.NewServeMux()
	routes.Register(mux)

	healthHandler := func(w http.ResponseWriter, r *http.Request) {
		utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok", "backend": cfg.Backend})
	}
	mux.HandleFunc("GET /api/v1/health", healthHandler)
	mux.HandleFunc("GET /health", healthHandler)

	// Rate limiter with lifecycle management: cleanup every minute, TTL 3 minutes
	rateLimiter := middleware.NewRateLimiter(
		ctx,
		rate.Limit(cfg.RateLimitRPS),
		cfg.RateLimitBurst,
		time.Minute,
		3*time.Minute,
	)

	authMW := middleware.NewAuth(verifier, tokens)

	var handler http.Handler = mux
	handler = authMW.Identify(handler)
	handler = middleware.Session(cfg.IsProduction())(handler)
	handler = middleware.NewCORSMiddleware(cfg)(handler)
	handler = middleware.RequestLogger(handler)
	handler = rateLimiter.Middleware()(handler)
	handler = gziphandler.GzipHandler(handler)

	// Metrics bypass the API middleware chain
	root := http.NewServeMux()
	root.Handle("GET /metrics", metrics.Handler())
	root.Handle("/", handler)

	addr := fmt.Sprintf(":%s", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           root,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful Shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	logger.ServiceStart(serviceName, version, cfg.Port, cfg.Backend)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down...")
	rateLimiter.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Flush in-flight conversion events before closing backends
	capi.Wait()
	for i := len(closers) - 1; i >= 0; i-- {
		closers[i]()
	}

	logger.ServiceStop(serviceName)
}

func newSnapshotStore(ctx context.Context, cfg *config.Config) (domain.SnapshotStore, func(), error) {
	switch cfg.SnapshotDriver {
	case config.SnapshotRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		return snapshot.NewRedisStore(client, cfg.SnapshotTTL), func() { client.Close() }, nil

	case config.SnapshotPostgres:
		if err := snapshot.Migrate(cfg.SnapshotDBDSN); err != nil {
			return nil, nil, err
		}
		pool, err := supabase.NewPgxPool(ctx, cfg.SnapshotDBDSN, supabase.PoolSettings{
			MaxConns:        cfg.DBMaxConns,
			MinConns:        cfg.DBMinConns,
			MaxConnIdleTime: cfg.DBMaxConnIdleTime,
		})
		if err != nil {
			return nil, nil, err
		}
		return snapshot.NewPostgresStore(pool), pool.Close, nil

	default:
		return snapshot.NewMemoryStore(), func() {}, nil
	}
}

func newBackend(ctx context.Context, cfg *config.Config) (domain.Backend, func(), error) {
	switch cfg.Backend {
	case config.BackendSupabase:
		pool, err := supabase.NewPgxPool(ctx, cfg.SupabaseDBDSN, supabase.PoolSettings{
			MaxConns:        cfg.DBMaxConns,
			MinConns:        cfg.DBMinConns,
			MaxConnIdleTime: cfg.DBMaxConnIdleTime,
		})
		if err != nil {
			return nil, nil, err
		}
		logger.Info().Msg("Connected to Supabase Postgres via pgx")
		return supabase.NewRepository(pool), pool.Close, nil

	default:
		client := rest.NewClient(cfg.BackendURL, cfg.BackendTimeout, rest.BreakerSettings{
			MaxRequests:  cfg.BreakerMaxRequests,
			Interval:     cfg.BreakerInterval,
			Timeout:      cfg.BreakerTimeout,
			FailureRatio: cfg.BreakerFailureRatio,
			MinRequests:  cfg.BreakerMinRequests,
		})
		logger.Info().Str("url", cfg.BackendURL).Msg("Using REST backend")
		return client, func() {}, nil
	}
}
