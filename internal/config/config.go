package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration
// Generation itself is stateless; the KV store only backs the plan cache,
// rate-limit counters, stats and stored pieces.
type Config struct {
	// Environment
	Environment string
	Port        string

	// Guidance service
	OpenAIAPIKey     string        // OpenAI API key for GPT models
	GeminiAPIKey     string        // Google Gemini API key
	GuidanceProvider string        // "openai", "gemini" or "none"
	GuidanceModel    string        // Model name, provider default when empty
	GuidanceTimeout  time.Duration // Upper bound on one guidance call

	// Composition bounds
	MinPieceSeconds float64
	MaxPieceSeconds float64
	SectionWorkers  int

	// Storage
	KVDir             string // Badger directory, in-memory store when empty
	StyleProfilesPath string // Overrides the embedded profile table
	DatabaseURL       string // Optional generation history (postgres)
	PlanCacheTTL      time.Duration
	PieceTTL          time.Duration

	// Rate limiting
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Observability
	SentryDSN         string // Sentry DSN for error tracking
	LangfusePublicKey string // Langfuse public key
	LangfuseSecretKey string // Langfuse secret key
	LangfuseHost      string // Langfuse host URL (cloud or self-hosted)
	LangfuseEnabled   bool   // Feature flag for Langfuse
	CloudWatchEnabled bool

	// Auth mode
	// - "none": No auth, clients identified by IP
	// - "gateway": Trust X-User-* headers from an upstream gateway
	AuthMode string
}

func Load() *Config {
	return &Config{
		Environment:       getEnv("ENVIRONMENT", "development"),
		Port:              getEnv("PORT", "8080"),
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		GuidanceProvider:  getEnv("GUIDANCE_PROVIDER", "openai"),
		GuidanceModel:     getEnv("GUIDANCE_MODEL", ""),
		GuidanceTimeout:   getDuration("GUIDANCE_TIMEOUT", 8*time.Second),
		MinPieceSeconds:   getFloat("MIN_PIECE_SECONDS", 30),
		MaxPieceSeconds:   getFloat("MAX_PIECE_SECONDS", 45),
		SectionWorkers:    getInt("SECTION_WORKERS", 4),
		KVDir:             getEnv("KV_DIR", ""),
		StyleProfilesPath: getEnv("STYLE_PROFILES_PATH", ""),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		PlanCacheTTL:      getDuration("PLAN_CACHE_TTL", time.Hour),
		PieceTTL:          getDuration("PIECE_TTL", 24*time.Hour),
		RateLimitRequests: getInt("RATE_LIMIT_REQUESTS", 20),
		RateLimitWindow:   getDuration("RATE_LIMIT_WINDOW", time.Minute),
		SentryDSN:         getEnv("SENTRY_DSN", ""),
		LangfusePublicKey: getEnv("LANGFUSE_PUBLIC_KEY", ""),
		LangfuseSecretKey: getEnv("LANGFUSE_SECRET_KEY", ""),
		LangfuseHost:      getEnv("LANGFUSE_HOST", "https://cloud.langfuse.com"),
		LangfuseEnabled:   getEnv("LANGFUSE_ENABLED", "false") == "true",
		CloudWatchEnabled: getEnv("CLOUDWATCH_ENABLED", "false") == "true",
		AuthMode:          getEnv("AUTH_MODE", "none"),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return n
	}
	return defaultValue
}

func getFloat(key string, defaultValue float64) float64 {
	if f, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return f
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return d
	}
	return defaultValue
}

// IsGatewayMode returns true if running behind an authenticating gateway
func (c *Config) IsGatewayMode() bool {
	return c.AuthMode == "gateway"
}

// GuidanceEnabled reports whether a remote guidance provider has credentials.
func (c *Config) GuidanceEnabled() bool {
	switch c.GuidanceProvider {
	case "openai":
		return c.OpenAIAPIKey != ""
	case "gemini":
		return c.GeminiAPIKey != ""
	default:
		return false
	}
}
