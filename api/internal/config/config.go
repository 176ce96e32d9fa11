package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string

	LLMEngine    string
	GeminiAPIKey string
	GeminiModel  string
	OpenAIAPIKey string
	OpenAIModel  string
	PromptDir    string

	MaxSourceChars   int
	MinQuestions     int
	MaxQuestions     int
	DefaultQuestions int
	ExtraKinds       string

	GenerationTimeout  time.Duration
	RateLimitRetries   int
	RetryDelay         time.Duration
	MaxUploadBytes     int64
	CORSAllowedOrigins []string
	QuizRetention      time.Duration

	DatabaseDriver string
	DatabaseURL    string
	RedisURL       string
	SessionTTL     time.Duration

	TelegramToken string
	WebhookURL    string
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getInt(k string, def int) int {
	v := getEnv(k, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("bad integer env, using default", "key", k, "value", v, "default", def)
		return def
	}
	return n
}

func getDuration(k string, def time.Duration) time.Duration {
	v := getEnv(k, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("bad duration env, using default", "key", k, "value", v, "default", def)
		return def
	}
	return d
}

func getList(k string, def []string) []string {
	v := getEnv(k, "")
	if v == "" {
		return def
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Load reads the environment, after an optional .env file.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:        getEnv("PORT", "8000"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", ""),

		LLMEngine:    strings.ToLower(getEnv("LLM_ENGINE", "gemini")),
		GeminiAPIKey: getEnv("GEMINI_API_KEY", getEnv("GOOGLE_API_KEY", "")),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:  getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		PromptDir:    getEnv("PROMPT_DIR", ""),

		MaxSourceChars:   getInt("QUIZ_MAX_SOURCE_CHARS", 3000),
		MinQuestions:     getInt("QUIZ_MIN_QUESTIONS", 1),
		MaxQuestions:     getInt("QUIZ_MAX_QUESTIONS", 10),
		DefaultQuestions: getInt("QUIZ_DEFAULT_QUESTIONS", 5),
		ExtraKinds:       getEnv("QUIZ_EXTRA_KINDS", ""),

		GenerationTimeout:  getDuration("GENERATION_TIMEOUT", 120*time.Second),
		RateLimitRetries:   getInt("GENERATION_RATE_LIMIT_RETRIES", 0),
		RetryDelay:         getDuration("GENERATION_RETRY_DELAY", 5*time.Second),
		MaxUploadBytes:     int64(getInt("MAX_UPLOAD_BYTES", 20<<20)),
		CORSAllowedOrigins: getList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		QuizRetention:      getDuration("QUIZ_RETENTION", 30*24*time.Hour),

		DatabaseDriver: getEnv("DATABASE_DRIVER", ""),
		DatabaseURL:    resolveDSN(),
		RedisURL:       getEnv("REDIS_URL", ""),
		SessionTTL:     getDuration("SESSION_TTL", 24*time.Hour),

		TelegramToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		WebhookURL:    getEnv("WEBHOOK_URL", ""),
	}
}

// Validate reports settings the services cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.GeminiAPIKey == "" && c.OpenAIAPIKey == "" {
		errs = append(errs, errors.New("set GEMINI_API_KEY or OPENAI_API_KEY"))
	}
	switch c.LLMEngine {
	case "gemini", "google":
		if c.GeminiAPIKey == "" {
			errs = append(errs, errors.New("LLM_ENGINE=gemini needs GEMINI_API_KEY"))
		}
	case "gpt", "openai":
		if c.OpenAIAPIKey == "" {
			errs = append(errs, errors.New("LLM_ENGINE=gpt needs OPENAI_API_KEY"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown LLM_ENGINE %q", c.LLMEngine))
	}
	if c.MinQuestions < 1 || c.MaxQuestions < c.MinQuestions {
		errs = append(errs, fmt.Errorf("bad question range %d..%d", c.MinQuestions, c.MaxQuestions))
	}
	if c.DefaultQuestions < c.MinQuestions || c.DefaultQuestions > c.MaxQuestions {
		errs = append(errs, fmt.Errorf("QUIZ_DEFAULT_QUESTIONS %d outside %d..%d", c.DefaultQuestions, c.MinQuestions, c.MaxQuestions))
	}
	if c.MaxSourceChars < 1 {
		errs = append(errs, errors.New("QUIZ_MAX_SOURCE_CHARS must be positive"))
	}
	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	e := strings.ToLower(c.Environment)
	return e == "prod" || e == "production"
}

// resolveDSN prefers DATABASE_URL and falls back to POSTGRES_* parts.
func resolveDSN() string {
	if v := getEnv("DATABASE_URL", ""); v != "" {
		return v
	}
	host := getEnv("POSTGRES_HOST", getEnv("PGHOST", ""))
	if host == "" {
		return ""
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(getEnv("POSTGRES_USER", "postgres"), getEnv("POSTGRES_PASSWORD", "")),
		Host:     host + ":" + getEnv("POSTGRES_PORT", getEnv("PGPORT", "5432")),
		Path:     "/" + getEnv("POSTGRES_DB", "lecture_quiz"),
		RawQuery: "sslmode=" + getEnv("POSTGRES_SSLMODE", "disable"),
	}
	return u.String()
}

// SafeDSNSummary masks the password for logs.
func SafeDSNSummary(dsn string) string {
	if dsn == "" {
		return "(none)"
	}
	u, err := url.Parse(dsn)
	if err != nil || u.Host == "" {
		return "(unparsable dsn)"
	}
	return u.Redacted()
}
