package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	Port                   string
	Env                    string
	AllowedOrigins         []string
	DatabaseURL            string
	MockMode               bool
	LLMProvider            string
	LLMModel               string
	OpenAIAPIKey           string
	GeminiAPIKey           string
	LLMTimeout             time.Duration
	MaxSnippets            int
	KBSource               string
	KBDir                  string
	AWSRegion              string
	KBS3Bucket             string
	KBS3Prefix             string
	DedupeRisks            bool
	JWTSecret              string
	AccessTokenTTL         time.Duration
	PlanRateLimitPerMinute int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	for _, path := range []string{".env", "cmd/.env"} {
		if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
			log.Printf("config: failed to load %s: %v", path, err)
		}
	}

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")
	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}

	return Config{
		Port:                   getEnv("PORT", "8000"),
		Env:                    env,
		AllowedOrigins:         splitAndTrim(getEnv("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:3001")),
		DatabaseURL:            dbURL,
		MockMode:               getBool("MOCK_MODE", false),
		LLMProvider:            normalizeProvider(getEnv("LLM_PROVIDER", "openai")),
		LLMModel:               getEnv("LLM_MODEL", ""),
		OpenAIAPIKey:           getEnv("OPENAI_API_KEY", ""),
		GeminiAPIKey:           getEnv("GEMINI_API_KEY", ""),
		LLMTimeout:             time.Duration(getInt("LLM_TIMEOUT_SECONDS", 30)) * time.Second,
		MaxSnippets:            getInt("MAX_SNIPPETS", 5),
		KBSource:               normalizeSource(getEnv("KB_SOURCE", "local")),
		KBDir:                  getEnv("KB_DIR", "kb"),
		AWSRegion:              getEnv("AWS_REGION", "us-east-1"),
		KBS3Bucket:             getEnv("KB_S3_BUCKET", ""),
		KBS3Prefix:             getEnv("KB_S3_PREFIX", "kb/"),
		DedupeRisks:            getBool("PLAN_DEDUPE_RISKS", false),
		JWTSecret:              getEnv("JWT_SECRET_KEY", ""),
		AccessTokenTTL:         time.Duration(getInt("ACCESS_TOKEN_EXPIRE_MINUTES", 60)) * time.Minute,
		PlanRateLimitPerMinute: getInt("PLAN_RATE_LIMIT_PER_MINUTE", 30),
	}
}

// APIKey returns the credential of the selected provider.
func (c Config) APIKey() string {
	if c.LLMProvider == "gemini" {
		return c.GeminiAPIKey
	}
	return c.OpenAIAPIKey
}

// CompletionEnabled reports whether plans and chat should call the
// completion service rather than the deterministic templates.
func (c Config) CompletionEnabled() bool {
	return !c.MockMode && strings.TrimSpace(c.APIKey()) != ""
}

// IsDevLike reports whether in-memory fallbacks are allowed.
func (c Config) IsDevLike() bool {
	switch c.Env {
	case "dev", "local", "test":
		return true
	}
	return false
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		log.Printf("config: ignoring invalid %s=%q", key, raw)
		return def
	}
	return n
}

func getBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	switch strings.ToLower(raw) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	log.Printf("config: ignoring invalid %s=%q", key, raw)
	return def
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "test":
		return "test"
	default:
		return "dev"
	}
}

func normalizeProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "gemini", "google":
		return "gemini"
	default:
		return "openai"
	}
}

func normalizeSource(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}
