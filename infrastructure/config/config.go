package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	IdleTimeout   time.Duration

	// Logging
	LogLevel string

	// Supabase configuration. SupabaseKey should be the service role key;
	// every query is scoped by user_id in the repositories.
	SupabaseURL       string
	SupabaseKey       string
	SupabaseJWTSecret string

	// OpenAI configuration
	OpenAIAPIKey  string
	OpenAIBaseURL string
	SummaryModel  string
	ChatModel     string
	LLMTimeout    time.Duration

	// Analytics. Zero values leave the analysis file (or default) untouched.
	AnalysisConfigFile        string
	WatchAnalysisConfig       bool
	AlertMissingDaysThreshold int
	EpisodeScale              string

	// HTTP
	CORSAllowedOrigins     []string
	RateLimitIPPerMinute   int
	RateLimitUserPerMinute int

	// Tracing. Spans are exported over OTLP gRPC when an endpoint is set.
	TracingEnabled  bool
	OTLPEndpoint    string
	OTLPInsecure    bool
	TraceSampleRate float64

	// Feature flags
	EnableMetrics bool
}

// LoadConfig loads .env files from the working directory, then reads the
// environment
func LoadConfig() (*Config, error) {
	return loadFrom(".")
}

func loadFrom(dir string) (*Config, error) {
	if err := loadDotEnv(dir); err != nil {
		return nil, err
	}

	environment := getEnv("ENVIRONMENT", "development")

	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   environment,
		ReadTimeout:   getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:  getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:   getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		LogLevel:      getEnv("LOG_LEVEL", "info"),

		// Supabase
		SupabaseURL:       getEnv("SUPABASE_URL", ""),
		SupabaseKey:       getEnv("SUPABASE_SERVICE_ROLE_KEY", getEnv("SUPABASE_KEY", getEnv("SUPABASE_ANON_KEY", ""))),
		SupabaseJWTSecret: getEnv("SUPABASE_JWT_SECRET", ""),

		// OpenAI
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
		SummaryModel:  getEnv("OPENAI_SUMMARY_MODEL", "gpt-4"),
		ChatModel:     getEnv("OPENAI_CHAT_MODEL", "gpt-4o-mini"),
		LLMTimeout:    getEnvDuration("LLM_TIMEOUT", 30*time.Second),

		// Analytics
		AnalysisConfigFile:        getEnv("ANALYSIS_CONFIG_FILE", ""),
		WatchAnalysisConfig:       getEnvBool("WATCH_ANALYSIS_CONFIG", environment == "development"),
		AlertMissingDaysThreshold: getEnvInt("ALERT_MISSING_DAYS_THRESHOLD", 0),
		EpisodeScale:              getEnv("EPISODE_SCALE", ""),

		// HTTP
		CORSAllowedOrigins:     getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		RateLimitIPPerMinute:   getEnvInt("RATE_LIMIT_IP_PER_MINUTE", 100),
		RateLimitUserPerMinute: getEnvInt("RATE_LIMIT_USER_PER_MINUTE", 200),

		// Tracing
		TracingEnabled:  getEnvBool("TRACING_ENABLED", false),
		OTLPEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTLPInsecure:    getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", environment == "development"),
		TraceSampleRate: getEnvFloat("TRACE_SAMPLE_RATE", 1.0),

		EnableMetrics: getEnvBool("ENABLE_METRICS", false),
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadDotEnv reads .env and then .env.<ENVIRONMENT>. Variables that are
// already set always win.
func loadDotEnv(dir string) error {
	if err := loadEnvFile(filepath.Join(dir, ".env")); err != nil {
		return err
	}
	if env := os.Getenv("ENVIRONMENT"); env != "" {
		return loadEnvFile(filepath.Join(dir, ".env."+env))
	}
	return nil
}

func loadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if c.IsProduction() {
		if c.SupabaseURL == "" || c.SupabaseKey == "" {
			return fmt.Errorf("SUPABASE_URL and SUPABASE_SERVICE_ROLE_KEY are required in production")
		}
		if c.SupabaseJWTSecret == "" {
			return fmt.Errorf("SUPABASE_JWT_SECRET is required in production")
		}
	}
	if c.SupabaseURL != "" && c.SupabaseKey == "" {
		return fmt.Errorf("SUPABASE_URL is set but no Supabase key was provided")
	}
	if c.LLMTimeout <= 0 {
		return fmt.Errorf("LLM_TIMEOUT must be positive")
	}
	if c.RateLimitIPPerMinute <= 0 || c.RateLimitUserPerMinute <= 0 {
		return fmt.Errorf("rate limits must be positive")
	}
	if c.TraceSampleRate < 0 || c.TraceSampleRate > 1 {
		return fmt.Errorf("TRACE_SAMPLE_RATE must be between 0 and 1")
	}
	switch c.EpisodeScale {
	case "", "five_point", "eight_point":
	default:
		return fmt.Errorf("EPISODE_SCALE must be five_point or eight_point, got %q", c.EpisodeScale)
	}
	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// UseSupabase reports whether storage should go to Supabase rather than
// the in-memory repositories
func (c *Config) UseSupabase() bool {
	return c.SupabaseURL != "" && c.SupabaseKey != ""
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvList splits a comma-separated variable, dropping blanks
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
