package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/yourorg/talentmatch/internal/domain"
	"github.com/yourorg/talentmatch/internal/featureflags"
	"github.com/yourorg/talentmatch/internal/handler"
	"github.com/yourorg/talentmatch/internal/infrastructure/logger"
	"github.com/yourorg/talentmatch/internal/infrastructure/redis"
	"github.com/yourorg/talentmatch/internal/notify"
	"github.com/yourorg/talentmatch/internal/observability/metrics"
	"github.com/yourorg/talentmatch/internal/observability/tracing"
	"github.com/yourorg/talentmatch/internal/repository"
	"github.com/yourorg/talentmatch/internal/security"
	"github.com/yourorg/talentmatch/internal/security/audit"
	"github.com/yourorg/talentmatch/internal/security/auth"
	"github.com/yourorg/talentmatch/internal/security/middleware"
	"github.com/yourorg/talentmatch/internal/security/ratelimit"
	"github.com/yourorg/talentmatch/internal/service"
	"github.com/yourorg/talentmatch/internal/worker"
	"github.com/yourorg/talentmatch/pkg/config"
	"github.com/yourorg/talentmatch/pkg/database"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize structured logger
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("starting TalentMatch server", slog.String("environment", cfg.Environment))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Initialize tracing (no-op unless an OTLP endpoint is configured)
	shutdownTracing, err := tracing.Init(ctx, log, "talentmatch", cfg.Environment)
	if err != nil {
		log.Error("failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer shutdownTracing(context.Background())

	// 4. Initialize Redis client
	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Error("failed to connect to Redis", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer redisClient.Close()

	// 5. Initialize PostgreSQL pool and run migrations
	pool, err := database.NewConnectionPool(ctx, &database.Config{
		Host:            cfg.DatabaseHost,
		Port:            cfg.DatabasePort,
		User:            cfg.DatabaseUser,
		Password:        cfg.DatabasePassword,
		Database:        cfg.DatabaseName,
		SSLMode:         cfg.DatabaseSSLMode,
		MaxOpenConns:    25,
		MaxIdleConns:    10,
		ConnMaxLifetime: 30 * time.Minute,
	}, log)
	if err != nil {
		log.Error("failed to connect to PostgreSQL", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Migrate(ctx); err != nil {
		log.Error("failed to run migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 6. Initialize stores: reads bound to the pool, factory for transactions
	storeFactory := newStoreFactory(log)
	reads := storeFactory(pool.GetDB())

	// 7. Initialize event hub and feed cache
	hub := notify.NewHub(redisClient, log)
	go hub.Run(ctx)

	var feedCache *service.FeedCache
	if featureflags.EnabledDefault(featureflags.FeedCache, true) {
		feedCache = service.NewFeedCache(redisClient, cfg.FeedCacheTTL, log)
	}

	// 8. Initialize services
	swipeService := service.NewSwipeService(pool, storeFactory, reads, hub, feedCache, log)
	feedService := service.NewFeedService(reads, feedCache, service.FeedLimits{
		DefaultLimit: cfg.FeedDefaultLimit,
		MaxLimit:     cfg.FeedMaxLimit,
		RankingScan:  cfg.FeedRankingScanLimit,
	}, log)
	jobService := service.NewJobService(pool, storeFactory, reads, hub, feedCache, log)
	matchService := service.NewMatchService(pool, storeFactory, reads, log)

	// 9. Initialize handlers
	jobseekerSwipeHandler := handler.NewSwipeHandler(swipeService, domain.RoleJobseeker, log)
	employerSwipeHandler := handler.NewSwipeHandler(swipeService, domain.RoleEmployer, log)
	feedHandler := handler.NewFeedHandler(feedService, log)
	shareJobsHandler := handler.NewShareJobsHandler(jobService, log)
	jobInterestHandler := handler.NewJobInterestHandler(jobService, log)
	scheduleHandler := handler.NewScheduleHandler(matchService, log)
	matchesHandler := handler.NewMatchesHandler(matchService, log)
	matchStreamHandler := handler.NewMatchStreamHandler(hub, log, cfg.CORSAllowedOrigins)
	healthHandler := handler.NewHealthHandler(pool, redisClient, log)

	// 9a. Initialize security components
	tokenManager := auth.NewTokenManager(cfg.JWTSecret, "talentmatch")
	rateLimiter := ratelimit.NewLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
	auditLogger := audit.NewLogger(log)
	authzService := security.NewAuthorizationService(log)

	// 10. Setup HTTP routes
	mux := http.NewServeMux()
	mux.Handle("POST /api/swipe/jobseeker", jobseekerSwipeHandler)
	mux.Handle("POST /api/swipe/employer", employerSwipeHandler)
	mux.Handle("GET /api/matches/feed", feedHandler)
	mux.Handle("GET /api/matches", matchesHandler)
	mux.Handle("POST /api/matches/{matchId}/share-jobs", shareJobsHandler)
	mux.Handle("POST /api/matches/{matchId}/schedule", scheduleHandler)
	mux.Handle("POST /api/jobs/{jobPostingId}/interest", jobInterestHandler)
	mux.Handle("GET /ws/matches", matchStreamHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", healthHandler.Health)
	mux.HandleFunc("/readyz", healthHandler.Ready)

	// CORS middleware honoring configured origins
	handlerWithCORS := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if originAllowed(cfg.CORSAllowedOrigins, origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		} else if len(cfg.CORSAllowedOrigins) > 0 {
			w.Header().Set("Access-Control-Allow-Origin", cfg.CORSAllowedOrigins[0])
		}
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		mux.ServeHTTP(w, r)
	})

	// Chain middleware: request ID -> metrics -> validation -> JWT ->
	// authorization -> rate limit -> audit -> CORS+mux
	rootHandler := withRequestID(
		metrics.HTTPMetricsMiddleware(
			middleware.ValidateJSONContentType(log)(
				middleware.JWTMiddleware(tokenManager, log)(
					middleware.AuthorizationMiddleware(authzService, auditLogger)(
						middleware.RateLimitMiddleware(rateLimiter, log)(
							middleware.AuditMiddleware(auditLogger)(handlerWithCORS),
						),
					),
				),
			),
		),
		log,
	)

	// 11. Start the match reconciler in the background
	if featureflags.EnabledDefault(featureflags.Reconciler, true) {
		reconciler := worker.NewReconciler(swipeService, cfg.ReconcileInterval, log)
		if err := reconciler.Start(ctx); err != nil {
			log.Error("failed to start reconciler", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer reconciler.Stop()
	}

	// 12. Start HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      otelhttp.NewHandler(rootHandler, "talentmatch"),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("server starting",
		slog.Int("port", cfg.ServerPort),
		slog.String("auth", "jwt"),
		slog.Int("rate_limit", cfg.RateLimitRequests),
		slog.Duration("rate_limit_window", cfg.RateLimitWindow),
	)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.String("error", err.Error()))
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}

	cancel() // stop hub and reconciler
	rateLimiter.Stop()
	log.Info("server stopped")
}

// newStoreFactory binds the Postgres repositories to a Queryer, so the same
// factory serves both pool-bound reads and per-transaction stores.
func newStoreFactory(log *slog.Logger) service.StoreFactory {
	return func(q database.Queryer) service.Stores {
		return service.Stores{
			Users:   repository.NewPostgresUserRepository(q, log),
			Swipes:  repository.NewPostgresSwipeRepository(q, log),
			Matches: repository.NewPostgresMatchRepository(q, log),
			Jobs:    repository.NewPostgresJobRepository(q, log),
		}
	}
}

type requestIDKey struct{}

// withRequestID attaches a request ID to the context and response headers for traceability
func withRequestID(next http.Handler, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := generateRequestID()
		w.Header().Set("X-Request-ID", reqID)

		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		start := time.Now()

		next.ServeHTTP(w, r.WithContext(ctx))

		log.Info("request completed",
			slog.String("request_id", reqID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("duration_ms", time.Since(start)),
		)
	})
}

func originAllowed(allowed []string, origin string) bool {
	if origin == "" {
		return false
	}
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}

func generateRequestID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}
