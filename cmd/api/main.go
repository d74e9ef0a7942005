// Package main is the entrypoint for the HeartHealth API server.
package main

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/hearthealth/hearthealth/internal/auth"
	"github.com/hearthealth/hearthealth/internal/cache"
	"github.com/hearthealth/hearthealth/internal/config"
	"github.com/hearthealth/hearthealth/internal/genai"
	"github.com/hearthealth/hearthealth/internal/handler"
	"github.com/hearthealth/hearthealth/internal/inference"
	"github.com/hearthealth/hearthealth/internal/metrics"
	"github.com/hearthealth/hearthealth/internal/middleware"
	"github.com/hearthealth/hearthealth/internal/repository"
	"github.com/hearthealth/hearthealth/internal/server"
	"github.com/hearthealth/hearthealth/internal/service"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database")

	if cfg.AutoMigrate {
		if err := repo.Migrate(ctx, logger); err != nil {
			logger.Error("failed to apply migrations", "error", sanitizeError(err, cfg.DatabaseURL))
			repo.Close()
			os.Exit(1)
		}
	}

	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		repo.Close()
		os.Exit(1)
	}
	logger.Info("connected to Redis")

	recorder := metrics.NewInMemory()

	// A missing artifact is not fatal: the endpoint answers "Model not
	// loaded" and /readyz reports it until the file appears.
	models := inference.NewRegistry(logger, recorder)
	for name, path := range map[string]string{
		service.HeartModel:  cfg.HeartModelPath,
		service.StressModel: cfg.StressModelPath,
	} {
		if err := models.Register(name, path); err != nil {
			logger.Error("model unavailable", "model", name, "error", err)
		}
	}
	if cfg.ModelWatch {
		if err := models.Watch(); err != nil {
			logger.Warn("model watch disabled", "error", err)
		}
	}

	prompts, err := genai.LoadPrompts(cfg.PromptsPath)
	if err != nil {
		logger.Error("failed to load prompts", "error", err, "path", cfg.PromptsPath)
		os.Exit(1)
	}
	if cfg.GeminiAPIKey == "" {
		logger.Warn("GEMINI_API_KEY not set, coaching endpoints will report a technical issue")
	}
	generator := genai.NewCachedGenerator(
		genai.NewClient(genai.ClientConfig{
			APIKey:  cfg.GeminiAPIKey,
			BaseURL: cfg.GeminiBaseURL,
			Model:   cfg.GeminiModel,
			Timeout: cfg.GeminiTimeout,
		}),
		cacheClient,
		cfg.GenerationMemoSize,
		cfg.GenerationCacheTTL,
		recorder,
		logger,
	)

	tokens := auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL)

	accountService := service.NewAccountService(repo, tokens, recorder, logger)
	predictionService := service.NewPredictionService(models, repo, repo, recorder, logger)
	coachService := service.NewCoachService(generator, prompts)

	r := setupRouter(routes{
		base:        handler.New(),
		health:      handler.NewHealthHandler(repo, cacheClient, models),
		metrics:     handler.NewMetricsHandler(recorder),
		accounts:    handler.NewAccountHandler(accountService, logger),
		predictions: handler.NewPredictionHandler(predictionService, logger),
		coach:       handler.NewCoachHandler(coachService, logger),
	}, tokens, cacheClient, cfg, logger)

	srv := server.New(r, server.Options{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	srv.OnShutdown("postgres", func(ctx context.Context) error {
		repo.Close()
		return nil
	})
	srv.OnShutdown("redis", func(ctx context.Context) error {
		return cacheClient.Close()
	})
	srv.OnShutdown("models", func(ctx context.Context) error {
		return models.Close()
	})

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"gemini_model", cfg.GeminiModel,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger builds the slog logger. When LOG_FILE is set, records are also
// written to a size-rotated file.
func initLogger(cfg *config.Config) *slog.Logger {
	var out io.Writer = os.Stdout
	if cfg.LogFile != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    50,
			MaxBackups: 5,
			MaxAge:     28,
			Compress:   true,
		})
	}

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(out, opts)
	} else {
		h = slog.NewTextHandler(out, opts)
	}

	logger := slog.New(h)
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

type routes struct {
	base        *handler.Handler
	health      *handler.HealthHandler
	metrics     *handler.MetricsHandler
	accounts    *handler.AccountHandler
	predictions *handler.PredictionHandler
	coach       *handler.CoachHandler
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(h routes, tokens middleware.TokenParser, limiter middleware.IPLimiter, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	if cfg.TrustProxyHeaders {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment()}))

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()
	r.Use(middleware.CORS(corsCfg))

	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

	r.Get("/healthz", h.health.Healthz)
	r.Get("/readyz", h.health.Readyz)
	r.Get("/metrics", h.metrics.Metrics)
	r.Get("/", h.base.Hello)

	authCfg := middleware.AuthConfig{
		Logger: logger,
		Tokens: tokens,
	}

	generalLimit := middleware.RateLimitIP(middleware.RateLimitConfig{
		Logger:  logger,
		Limiter: limiter,
		Enabled: cfg.RateLimitEnabled,
		Scope:   "api",
		Limit:   cache.PerSecond(cfg.RateLimitRPS, cfg.RateLimitBurst),
	})
	genaiLimit := middleware.RateLimitIP(middleware.RateLimitConfig{
		Logger:  logger,
		Limiter: limiter,
		Enabled: cfg.RateLimitEnabled,
		Scope:   "genai",
		Limit:   cache.PerMinute(cfg.RateLimitGenAIRPM, cfg.RateLimitGenAIBurst),
	})

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(generalLimit)

			r.Post("/register", h.accounts.Register)
			r.Post("/login", h.accounts.Login)

			r.With(middleware.OptionalAuth(authCfg)).Post("/predict", h.predictions.Predict)
			r.Post("/predict-stress", h.predictions.PredictStress)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth(authCfg))
				r.Get("/prediction-history", h.predictions.History)
				r.Delete("/account", h.accounts.Delete)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(genaiLimit)

			r.Post("/chatbot", h.coach.Chatbot)
			r.Post("/nutrition-planner", h.coach.NutritionPlanner)
			r.Post("/stress-coach", h.coach.StressCoach)
		})
	})

	r.NotFound(h.base.NotFound)
	r.MethodNotAllowed(h.base.MethodNotAllowed)

	return r
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
