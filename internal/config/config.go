package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the Meeteo server.
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	AI        AIConfig
	Weather   WeatherConfig
	Search    SearchConfig
	Photos    PhotosConfig
	Auth      AuthConfig
	Analysis  AnalysisConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port int
	Env  string
}

type LogConfig struct {
	Level string
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL string
}

type AIConfig struct {
	Provider         string
	InferenceTimeout time.Duration
	Anthropic        AnthropicConfig
	Gemini           GeminiConfig
	Ollama           OllamaConfig
}

type AnthropicConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type OllamaConfig struct {
	BaseURL string
	Model   string
}

// WeatherConfig points at an OpenWeatherMap-compatible current-conditions API.
type WeatherConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// SearchConfig configures Google Custom Search for product lookups.
// Missing credentials are allowed: every lookup then returns its fallback.
type SearchConfig struct {
	BaseURL  string
	APIKey   string
	EngineID string
	Timeout  time.Duration
}

// PhotosConfig configures the Unsplash API. An empty AccessKey disables lookups.
type PhotosConfig struct {
	BaseURL   string
	AccessKey string
	Timeout   time.Duration
}

// AuthConfig configures bearer-token verification. JWT verification is
// disabled when JWTSecret is empty; API keys keep working either way.
type AuthConfig struct {
	JWTSecret   string
	JWTIssuer   string
	JWTAudience string
}

type AnalysisConfig struct {
	Queue       string
	JobTTL      time.Duration
	Concurrency int
}

type RateLimitConfig struct {
	RequestsPerMinute int
}

var validProviders = map[string]bool{
	"anthropic": true,
	"gemini":    true,
	"ollama":    true,
}

var validQueues = map[string]bool{
	"asynq":  true,
	"inline": true,
}

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any required value is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("MEETEO_PORT", 8080),
			Env:  envString("MEETEO_ENV", "development"),
		},
		Log: LogConfig{
			Level: envString("LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		AI: AIConfig{
			Provider:         os.Getenv("AI_PROVIDER"),
			InferenceTimeout: envDurationSecs("AI_INFERENCE_TIMEOUT_SECS", 60*time.Second),
			Anthropic: AnthropicConfig{
				APIKey:  os.Getenv("ANTHROPIC_API_KEY"),
				Model:   envString("ANTHROPIC_MODEL", "claude-sonnet-4-5-20250929"),
				BaseURL: os.Getenv("ANTHROPIC_BASE_URL"),
			},
			Gemini: GeminiConfig{
				APIKey: os.Getenv("GEMINI_API_KEY"),
				Model:  envString("GEMINI_MODEL", "gemini-1.5-pro"),
			},
			Ollama: OllamaConfig{
				BaseURL: envString("OLLAMA_BASE_URL", "http://localhost:11434"),
				Model:   envString("OLLAMA_MODEL", "llava"),
			},
		},
		Weather: WeatherConfig{
			BaseURL: envString("OPENWEATHER_BASE_URL", "https://api.openweathermap.org"),
			APIKey:  os.Getenv("OPENWEATHER_API_KEY"),
			Timeout: envDuration("WEATHER_TIMEOUT", 10*time.Second),
		},
		Search: SearchConfig{
			BaseURL:  envString("GOOGLE_SEARCH_BASE_URL", "https://customsearch.googleapis.com/"),
			APIKey:   os.Getenv("GOOGLE_API_KEY"),
			EngineID: os.Getenv("GOOGLE_SEARCH_ENGINE_ID"),
			Timeout:  envDuration("GOOGLE_SEARCH_TIMEOUT", 8*time.Second),
		},
		Photos: PhotosConfig{
			BaseURL:   envString("UNSPLASH_BASE_URL", "https://api.unsplash.com"),
			AccessKey: os.Getenv("UNSPLASH_ACCESS_KEY"),
			Timeout:   envDuration("UNSPLASH_TIMEOUT", 8*time.Second),
		},
		Auth: AuthConfig{
			JWTSecret:   os.Getenv("AUTH_JWT_SECRET"),
			JWTIssuer:   os.Getenv("AUTH_JWT_ISSUER"),
			JWTAudience: os.Getenv("AUTH_JWT_AUDIENCE"),
		},
		Analysis: AnalysisConfig{
			Queue:       envString("ANALYSIS_QUEUE", "asynq"),
			JobTTL:      envDuration("ANALYSIS_JOB_TTL", time.Hour),
			Concurrency: envInt("ANALYSIS_CONCURRENCY", 4),
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: envInt("RATE_LIMIT_PER_MINUTE", 60),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if c.AI.Provider == "" {
		return fmt.Errorf("AI_PROVIDER is required")
	}
	if !validProviders[c.AI.Provider] {
		return fmt.Errorf("AI_PROVIDER must be one of anthropic, gemini, ollama; got %q", c.AI.Provider)
	}
	if c.AI.Provider == "anthropic" && c.AI.Anthropic.APIKey == "" {
		return fmt.Errorf("ANTHROPIC_API_KEY is required when AI_PROVIDER is anthropic")
	}
	if c.AI.Provider == "gemini" && c.AI.Gemini.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required when AI_PROVIDER is gemini")
	}

	if c.Weather.APIKey == "" {
		return fmt.Errorf("OPENWEATHER_API_KEY is required")
	}
	if !isHTTPURL(c.Weather.BaseURL) {
		return fmt.Errorf("OPENWEATHER_BASE_URL must start with http:// or https://, got %q", c.Weather.BaseURL)
	}
	if !isHTTPURL(c.Search.BaseURL) {
		return fmt.Errorf("GOOGLE_SEARCH_BASE_URL must start with http:// or https://, got %q", c.Search.BaseURL)
	}
	if !isHTTPURL(c.Photos.BaseURL) {
		return fmt.Errorf("UNSPLASH_BASE_URL must start with http:// or https://, got %q", c.Photos.BaseURL)
	}

	if !validQueues[c.Analysis.Queue] {
		return fmt.Errorf("ANALYSIS_QUEUE must be one of asynq, inline; got %q", c.Analysis.Queue)
	}
	if c.Analysis.JobTTL <= 0 {
		return fmt.Errorf("ANALYSIS_JOB_TTL must be positive, got %s", c.Analysis.JobTTL)
	}

	return nil
}

func isHTTPURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

func envDurationSecs(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return time.Duration(secs) * time.Second
}
