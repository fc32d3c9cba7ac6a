// Package main is the entrypoint for the linkpage API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"regexp"
	"strings"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/linkpage/linkpage/internal/analytics"
	"github.com/linkpage/linkpage/internal/auth"
	"github.com/linkpage/linkpage/internal/cache"
	"github.com/linkpage/linkpage/internal/config"
	"github.com/linkpage/linkpage/internal/handler"
	"github.com/linkpage/linkpage/internal/metrics"
	"github.com/linkpage/linkpage/internal/middleware"
	"github.com/linkpage/linkpage/internal/repository"
	"github.com/linkpage/linkpage/internal/server"
	"github.com/linkpage/linkpage/internal/service"
	"github.com/linkpage/linkpage/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		return errors.New("connect database")
	}
	defer repo.Close()
	logger.Info("connected to database")

	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		return errors.New("connect redis")
	}
	defer cacheClient.Close()
	cacheClient.SetProfileTTL(cfg.ProfileCacheTTL, cfg.NegativeCacheTTL)
	logger.Info("connected to Redis")

	a, err := newApp(cfg, repo, cacheClient, logger)
	if err != nil {
		return err
	}

	srv := server.New(a.router, server.Config{
		Addr:            fmt.Sprintf(":%d", cfg.AppPort),
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	if a.worker != nil {
		srv.Go("analytics_worker", a.worker.Run)
		srv.OnShutdown("analytics_worker", a.worker.Shutdown)
	}
	// Registered last so in-flight recordings drain before the worker stops.
	srv.OnShutdown("analytics_recorder", a.recorder.Shutdown)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"base_url", cfg.PublicBaseURL(),
		"env", cfg.AppEnv,
		"analytics_sink", cfg.AnalyticsSink,
	)

	return srv.Run(ctx)
}

// app is the wired HTTP surface plus the background pieces main manages.
type app struct {
	router   *chi.Mux
	recorder *analytics.Recorder
	worker   *analytics.Worker // nil unless the stream sink is selected
}

func newApp(cfg *config.Config, repo *repository.Repository, cacheClient *cache.Cache, logger *slog.Logger) (*app, error) {
	verifier, err := auth.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience)
	if err != nil {
		return nil, fmt.Errorf("auth verifier: %w", err)
	}

	uploads, err := storage.NewLocal(cfg.UploadDir, cfg.UploadURL())
	if err != nil {
		return nil, fmt.Errorf("upload storage: %w", err)
	}

	m := metrics.NewInMemory()
	baseURL := cfg.PublicBaseURL()

	profileService := service.NewProfileService(repo, repo, cacheClient, logger, m)
	linkService := service.NewLinkService(repo, repo, cacheClient, logger, m)
	analyticsService := service.NewAnalyticsService(repo, repo, repo)
	imageService := service.NewImageService(repo, repo, uploads, cacheClient, cfg.UploadMaxSize, logger, m)

	a := &app{}

	// Events go straight to Postgres, or through the Redis stream with a
	// worker draining it in batches.
	var sink analytics.EventSink = repo
	if cfg.AnalyticsSink == config.SinkStream {
		sink = analytics.NewPublisher(cacheClient.Client(), logger, m)
		a.worker = analytics.NewWorker(cacheClient.Client(), repo, logger, analytics.WorkerConfig{
			ConsumerID:   cfg.AnalyticsConsumerID,
			BatchSize:    cfg.AnalyticsBatchSize,
			BlockTimeout: cfg.AnalyticsBlockTimeout,
			MaxRetries:   cfg.AnalyticsMaxRetries,
		}, m)
	}
	a.recorder = analytics.NewRecorder(repo, sink, logger, m, cfg.RecordTimeout)

	a.router = setupRouter(routerDeps{
		h:         handler.New(),
		health:    handler.NewHealthHandler(repo, cacheClient, logger),
		metrics:   handler.NewMetricsHandler(m),
		public:    handler.NewPublicHandler(profileService, linkService, a.recorder, baseURL, logger),
		profile:   handler.NewProfileHandler(profileService, baseURL, logger),
		links:     handler.NewLinkHandler(linkService, baseURL, logger),
		analytics: handler.NewAnalyticsHandler(analyticsService, logger),
		images:    handler.NewImageHandler(imageService, baseURL, logger),
		verifier:  verifier,
		repo:      repo,
		cache:     cacheClient,
		uploadDir: uploads.Root(),
	}, cfg, logger)

	return a, nil
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h).With("service", "linkpage")
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type routerDeps struct {
	h         *handler.Handler
	health    *handler.HealthHandler
	metrics   *handler.MetricsHandler
	public    *handler.PublicHandler
	profile   *handler.ProfileHandler
	links     *handler.LinkHandler
	analytics *handler.AnalyticsHandler
	images    *handler.ImageHandler
	verifier  *auth.Verifier
	repo      *repository.Repository
	cache     *cache.Cache
	uploadDir string
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(d routerDeps, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment()}))

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()
	r.Use(middleware.CORS(corsCfg))

	r.Get("/healthz", d.health.Healthz)
	r.Get("/readyz", d.health.Readyz)
	r.Get("/metrics", d.metrics.Metrics)

	r.Handle("/static/*", http.StripPrefix("/static/", staticFiles(d.uploadDir)))

	rl := middleware.RateLimitConfig{
		Logger:         logger,
		Limiter:        d.cache,
		PublicEnabled:  cfg.RateLimitPublicEnabled,
		PublicRPS:      cfg.RateLimitPublicRPS,
		PublicBurst:    cfg.RateLimitPublicBurst,
		OwnerEnabled:   cfg.RateLimitOwnerEnabled,
		OwnerPerMinute: cfg.RateLimitOwnerPerMin,
		OwnerBurst:     cfg.RateLimitOwnerBurst,
	}
	authCfg := middleware.AuthConfig{
		Logger:   logger,
		Verifier: d.verifier,
		Cache:    d.cache,
		Users:    d.repo,
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimitIP(rl))
			r.Get("/platforms", d.h.Platforms)
			r.Get("/usernames/{username}", d.profile.CheckUsername)
			r.Post("/public/links/{linkID}/click", d.public.Beacon)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(authCfg))
			r.Use(middleware.RateLimitOwner(rl))

			r.Route("/profile", func(r chi.Router) {
				r.Get("/", d.profile.Get)
				r.With(middleware.MaxBodySize(cfg.MaxRequestBodySize)).Post("/", d.profile.Create)
				r.With(middleware.MaxBodySize(cfg.MaxRequestBodySize)).Patch("/", d.profile.Update)
				r.With(middleware.MaxBodySize(cfg.MaxRequestBodySize)).Put("/background", d.profile.UpdateBackground)
				r.With(middleware.MaxBodySize(cfg.MaxRequestBodySize)).Post("/background/type", d.profile.ChangeBackgroundType)
				r.With(middleware.MaxBodySize(uploadBodyLimit(cfg))).Post("/images/{kind}", d.images.UploadProfile)
			})

			r.Route("/links", func(r chi.Router) {
				r.Get("/", d.links.List)
				r.With(middleware.MaxBodySize(cfg.MaxRequestBodySize)).Post("/", d.links.Create)
				r.With(middleware.MaxBodySize(cfg.MaxRequestBodySize)).Put("/order", d.links.Reorder)
				r.With(middleware.MaxBodySize(cfg.MaxRequestBodySize)).Patch("/{linkID}", d.links.Update)
				r.Delete("/{linkID}", d.links.Delete)
				r.With(middleware.MaxBodySize(uploadBodyLimit(cfg))).Post("/{linkID}/icon", d.images.UploadLinkIcon)
			})

			r.Get("/analytics", d.analytics.Dashboard)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimitIP(rl))
		r.Get("/go/{linkID}", d.public.Click)
		r.Get("/{username}", d.public.Profile)
	})

	r.NotFound(d.h.NotFound)
	r.MethodNotAllowed(d.h.MethodNotAllowed)

	return r
}

// uploadBodyLimit leaves room for multipart framing around the image.
func uploadBodyLimit(cfg *config.Config) int64 {
	return cfg.UploadMaxSize + 64<<10
}

// staticFiles serves uploaded images without directory listings.
func staticFiles(root string) http.Handler {
	fs := http.FileServer(http.Dir(root))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Cache-Control", "public, max-age=86400")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		fs.ServeHTTP(w, r)
	})
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
