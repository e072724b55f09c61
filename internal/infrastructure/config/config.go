package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App         AppConfig        `mapstructure:"app"`
	Server      ServerConfig     `mapstructure:"server"`
	AI          AIConfig         `mapstructure:"ai"`
	Gemini      GeminiConfig     `mapstructure:"gemini"`
	OpenRouter  OpenRouterConfig `mapstructure:"openrouter"`
	Queue       QueueConfig      `mapstructure:"queue"`
	Session     SessionConfig    `mapstructure:"session"`
	Redis       RedisConfig      `mapstructure:"redis"`
	RateLimit   RateLimitConfig  `mapstructure:"rate_limit"`
	Calendar    CalendarConfig   `mapstructure:"calendar"`
	DedupWindow time.Duration    `mapstructure:"dedup_window"`
	LogLevel    string           `mapstructure:"log_level"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes"`
}

// AIConfig 選擇使用的模型供應商
type AIConfig struct {
	Provider    string  `mapstructure:"provider"`
	Temperature float32 `mapstructure:"temperature"`
}

// GeminiConfig Gemini 配置
type GeminiConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// OpenRouterConfig OpenRouter 配置
type OpenRouterConfig struct {
	APIKey    string        `mapstructure:"api_key"`
	Model     string        `mapstructure:"model"`
	MaxTokens int           `mapstructure:"max_tokens"`
	Timeout   time.Duration `mapstructure:"timeout"`
	BaseURL   string        `mapstructure:"base_url"`
}

// QueueConfig 模型呼叫隊列配置
type QueueConfig struct {
	Workers int `mapstructure:"workers"`
	MaxSize int `mapstructure:"max_size"`
}

// SessionConfig 精靈 session 儲存設定
type SessionConfig struct {
	Store           string        `mapstructure:"store"`
	TTL             time.Duration `mapstructure:"ttl"`
	MaxSize         int           `mapstructure:"max_size"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// RedisConfig Redis 連線設定
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// CalendarConfig 行事曆匯出設定
type CalendarConfig struct {
	Timezone string `mapstructure:"timezone"`
}

// Location 解析行事曆時區，空字串使用系統時區
func (c CalendarConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// LoadConfig 載入設定
func LoadConfig() (*Config, error) {
	// .env 不存在時只使用環境變數
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()

	// 設定預設值
	setDefaults(v)

	// 設定環境變數前綴
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 綁定環境變量
	bindings := map[string]string{
		"app.env":                  "APP_ENV",
		"app.debug":                "APP_DEBUG",
		"server.port":              "PORT",
		"ai.provider":              "AI_PROVIDER",
		"ai.temperature":           "AI_TEMPERATURE",
		"gemini.api_key":           "GEMINI_API_KEY",
		"gemini.model":             "GEMINI_MODEL",
		"gemini.timeout":           "GEMINI_TIMEOUT",
		"openrouter.api_key":       "OPENROUTER_API_KEY",
		"openrouter.model":         "OPENROUTER_MODEL",
		"openrouter.max_tokens":    "MODEL_MAX_TOKENS",
		"openrouter.base_url":      "OPENROUTER_BASE_URL",
		"queue.workers":            "QUEUE_WORKERS",
		"queue.max_size":           "QUEUE_MAX_SIZE",
		"session.store":            "SESSION_STORE",
		"session.ttl":              "SESSION_TTL",
		"session.max_size":         "SESSION_MAX_SIZE",
		"redis.addr":               "REDIS_ADDR",
		"redis.password":           "REDIS_PASSWORD",
		"redis.db":                 "REDIS_DB",
		"rate_limit.enabled":       "RATE_LIMIT_ENABLED",
		"rate_limit.requests":      "RATE_LIMIT_REQUESTS",
		"rate_limit.window":        "RATE_LIMIT_WINDOW",
		"calendar.timezone":        "CALENDAR_TIMEZONE",
		"dedup_window":             "DEDUP_WINDOW",
		"log_level":                "LOG_LEVEL",
		"server.request_timeout":   "REQUEST_TIMEOUT",
		"session.cleanup_interval": "SESSION_CLEANUP_INTERVAL",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	// 解析設定
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 驗證必要設定
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// MaskAPIKey 遮罩 API Key，只顯示前後各 4 個字符
func MaskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// ActiveAPIKey 回傳目前供應商使用的金鑰
func (c *Config) ActiveAPIKey() string {
	if c.AI.Provider == "openrouter" {
		return c.OpenRouter.APIKey
	}
	return c.Gemini.APIKey
}

// setDefaults 設定預設值
func setDefaults(v *viper.Viper) {
	// 應用程式設定
	v.SetDefault("app.env", "development")
	v.SetDefault("app.debug", true)
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.name", "bachat-planner")

	// 伺服器設定
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "90s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.request_timeout", "75s")
	v.SetDefault("server.max_body_bytes", 1<<20)

	// AI 設定
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.temperature", 0.7)

	// Gemini 設定
	v.SetDefault("gemini.model", "gemini-1.5-flash")
	v.SetDefault("gemini.timeout", "60s")

	// OpenRouter 設定
	v.SetDefault("openrouter.model", "google/gemini-flash-1.5")
	v.SetDefault("openrouter.max_tokens", 4000)
	v.SetDefault("openrouter.timeout", "60s")
	v.SetDefault("openrouter.base_url", "https://openrouter.ai/api/v1")

	// 隊列設定
	v.SetDefault("queue.workers", 4)
	v.SetDefault("queue.max_size", 100)

	// Session 設定
	v.SetDefault("session.store", "memory")
	v.SetDefault("session.ttl", "2h")
	v.SetDefault("session.max_size", 1000)
	v.SetDefault("session.cleanup_interval", "10m")

	// Redis 設定
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "bachat:session:")

	// 限流設定
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 100)
	v.SetDefault("rate_limit.window", "1m")

	v.SetDefault("calendar.timezone", "")
	v.SetDefault("dedup_window", "1s")
	v.SetDefault("log_level", "info")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	// 驗證伺服器設定
	if config.Server.Port == 0 {
		return fmt.Errorf("server port is required")
	}

	// 驗證 AI 設定
	switch config.AI.Provider {
	case "gemini", "openrouter":
	default:
		return fmt.Errorf("unsupported ai provider %q", config.AI.Provider)
	}
	if config.ActiveAPIKey() == "" {
		return fmt.Errorf("api key for provider %q is required", config.AI.Provider)
	}

	// 驗證隊列設定
	if config.Queue.Workers <= 0 {
		return fmt.Errorf("queue workers must be greater than 0")
	}
	if config.Queue.MaxSize < 0 {
		return fmt.Errorf("invalid queue max size")
	}

	// 驗證 session 設定
	switch config.Session.Store {
	case "memory":
		if config.Session.MaxSize <= 0 {
			return fmt.Errorf("invalid session max size")
		}
		if config.Session.CleanupInterval <= 0 {
			return fmt.Errorf("invalid session cleanup interval")
		}
	case "redis":
		if config.Redis.Addr == "" {
			return fmt.Errorf("redis addr is required for redis session store")
		}
	default:
		return fmt.Errorf("unsupported session store %q", config.Session.Store)
	}
	if config.Session.TTL <= 0 {
		return fmt.Errorf("invalid session ttl")
	}

	if _, err := config.Calendar.Location(); err != nil {
		return fmt.Errorf("invalid calendar timezone: %w", err)
	}

	return nil
}
