// Package config provides application configuration management.
// Configuration is loaded from environment variables, optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"5000"`

	// Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"true"`

	// Cache (Redis)
	RedisURL string `env:"REDIS_URL,required"`

	// Access tokens
	JWTSecret string        `env:"JWT_SECRET_KEY,required"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"24h"`

	// Model artifacts
	HeartModelPath  string `env:"HEART_MODEL_PATH" envDefault:"models/heart_risk.json"`
	StressModelPath string `env:"STRESS_MODEL_PATH" envDefault:"models/stress.json"`
	ModelWatch      bool   `env:"MODEL_WATCH" envDefault:"true"`

	// Generative API. An empty key is allowed; the coaching endpoints then fail per request.
	GeminiAPIKey  string        `env:"GEMINI_API_KEY"`
	GeminiBaseURL string        `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com/v1beta"`
	GeminiModel   string        `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash-preview-09-2025"`
	GeminiTimeout time.Duration `env:"GEMINI_TIMEOUT" envDefault:"30s"`
	PromptsPath   string        `env:"PROMPTS_PATH"`

	GenerationCacheTTL time.Duration `env:"GENERATION_CACHE_TTL" envDefault:"10m"`
	GenerationMemoSize int           `env:"GENERATION_MEMO_SIZE" envDefault:"256"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
	LogFile   string `env:"LOG_FILE"`

	// Server timeouts. Write timeout covers the outbound generative call.
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Rate limiting (per client IP)
	RateLimitEnabled    bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitRPS        int  `env:"RATE_LIMIT_RPS" envDefault:"5"`
	RateLimitBurst      int  `env:"RATE_LIMIT_BURST" envDefault:"10"`
	RateLimitGenAIRPM   int  `env:"RATE_LIMIT_GENAI_RPM" envDefault:"20"`
	RateLimitGenAIBurst int  `env:"RATE_LIMIT_GENAI_BURST" envDefault:"5"`

	// Honor X-Forwarded-For / X-Real-IP. Enable only behind a proxy that
	// overwrites them; otherwise clients can pick their own rate limit bucket.
	TrustProxyHeaders bool `env:"TRUST_PROXY_HEADERS" envDefault:"false"`

	// Comma-separated list of allowed origins.
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:3000"`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`
}

// minProductionSecretLength is the shortest JWT secret accepted in production.
const minProductionSecretLength = 32

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Validate checks constraints that depend on more than one variable.
func (c *Config) Validate() error {
	if c.IsProduction() && len(c.JWTSecret) < minProductionSecretLength {
		return fmt.Errorf("JWT_SECRET_KEY must be at least %d bytes in production", minProductionSecretLength)
	}
	return nil
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// Load reads an optional .env file from the working directory, then parses
// environment variables into a Config. Variables already present in the
// environment win over the file.
func Load() (*Config, error) {
	return LoadFrom(".env")
}

// LoadFrom is Load with an explicit dotenv path.
func LoadFrom(dotenvPath string) (*Config, error) {
	if dotenvPath != "" {
		if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read %s: %w", dotenvPath, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
