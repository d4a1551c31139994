package config

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	pkgRetry "github.com/futig/fxchat-backend/internal/pkg/retry"
	"github.com/joho/godotenv"
)

// Dispatch modes for the chat use case
const (
	DispatchFunctionCalling = "function_calling"
	DispatchKeyword         = "keyword"
	DispatchAugmented       = "augmented"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr string `env:"SERVER_ADDR" envDefault:":8000"`

	// LLM provider credential. Chat degrades to a fixed message when empty.
	GeminiAPIKey string `env:"GEMINI_API_KEY"`

	// Set by the managed deployment platform; disables permissive CORS headers
	VercelEnv string `env:"VERCEL_ENV"`

	// External service configurations
	LLMConnectorCfg       LLMConnectorConfig       `envPrefix:"LLM_"`
	EmbeddingConnectorCfg EmbeddingConnectorConfig `envPrefix:"EMBEDDING_"`
	ForexConnectorCfg     ForexConnectorConfig     `envPrefix:"FOREX_"`
	LoaderCfg             LoaderConfig             `envPrefix:"LOADER_"`

	// Retrieval configuration
	RAGCfg RAGConfig `envPrefix:"RAG_"`

	// Chat dispatch configuration
	ChatCfg ChatConfig `envPrefix:"CHAT_"`

	// Font used for PDF exports; bundled locations are tried when empty
	PDFFontPath string `env:"PDF_FONT_PATH"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Telegram bot configuration (optional)
	TelegramCfg TelegramConfig `envPrefix:"TELEGRAM_"`

	// Environment (set from flag, not from env var)
	Environment string
}

// CORSEnabled reports whether permissive cross-origin headers should be served
func (c *Config) CORSEnabled() bool {
	return c.VercelEnv == ""
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	BotToken        string `env:"BOT_TOKEN"`
	UpdateTimeout   int    `env:"UPDATE_TIMEOUT" envDefault:"60"`
	ShutdownTimeout int    `env:"SHUTDOWN_TIMEOUT" envDefault:"30"` // seconds
}

type LLMConnectorConfig struct {
	BaseURL     string        `env:"BASE_URL" envDefault:"https://generativelanguage.googleapis.com/v1beta/openai"`
	Model       string        `env:"MODEL" envDefault:"gemini-2.0-flash"`
	Temperature float32       `env:"TEMPERATURE" envDefault:"0.7"`
	MaxTokens   int           `env:"MAX_TOKENS" envDefault:"1000"`
	Timeout     time.Duration `env:"TIMEOUT" envDefault:"30s"`
}

type EmbeddingConnectorConfig struct {
	Model    string        `env:"MODEL" envDefault:"text-embedding-004"`
	Timeout  time.Duration `env:"TIMEOUT" envDefault:"30s"`
	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"10m"`
}

type ForexConnectorConfig struct {
	HTTPClientConfig
	TickerEndpoint string `env:"TICKER_ENDPOINT" envDefault:"/public/v1/ticker"`
}

type LoaderConfig struct {
	Timeout   time.Duration        `env:"TIMEOUT" envDefault:"30s"`
	UserAgent string               `env:"USER_AGENT" envDefault:"fxchat-backend/1.0"`
	Retry     pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type RAGConfig struct {
	ChunkSize    int  `env:"CHUNK_SIZE" envDefault:"1000"`
	ChunkOverlap int  `env:"CHUNK_OVERLAP" envDefault:"100"`
	TopK         int  `env:"TOP_K" envDefault:"3"`
	QueryRewrite bool `env:"QUERY_REWRITE" envDefault:"true"`
}

type ChatConfig struct {
	DispatchMode string `env:"DISPATCH_MODE" envDefault:"function_calling"`
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"10s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"5s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"90s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"10s"`
	Token                 string        `env:"TOKEN"`
	Url                   string        `env:"SERVICE_URL" envDefault:"https://forex-api.coin.z.com"`
}

func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	envFile := getEnvFile(*envFlag)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg, err := Parse()
	if err != nil {
		return nil, err
	}
	cfg.Environment = *envFlag

	return cfg, nil
}

// Parse reads the configuration from the process environment and validates it
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	var errors []string

	switch cfg.ChatCfg.DispatchMode {
	case DispatchFunctionCalling, DispatchKeyword, DispatchAugmented:
	default:
		errors = append(errors, fmt.Sprintf("CHAT_DISPATCH_MODE must be one of %s, %s, %s, got %q",
			DispatchFunctionCalling, DispatchKeyword, DispatchAugmented, cfg.ChatCfg.DispatchMode))
	}

	if cfg.RAGCfg.ChunkSize < 1 {
		errors = append(errors, fmt.Sprintf("RAG_CHUNK_SIZE must be positive, got %d", cfg.RAGCfg.ChunkSize))
	}

	if cfg.RAGCfg.ChunkOverlap < 0 || cfg.RAGCfg.ChunkOverlap >= cfg.RAGCfg.ChunkSize {
		errors = append(errors, fmt.Sprintf("RAG_CHUNK_OVERLAP must be between 0 and RAG_CHUNK_SIZE(%d), got %d", cfg.RAGCfg.ChunkSize, cfg.RAGCfg.ChunkOverlap))
	}

	if cfg.RAGCfg.TopK < 1 || cfg.RAGCfg.TopK > 20 {
		errors = append(errors, fmt.Sprintf("RAG_TOP_K must be between 1 and 20, got %d", cfg.RAGCfg.TopK))
	}

	if cfg.LoaderCfg.Retry.Attempts < 1 || cfg.LoaderCfg.Retry.Attempts > 5 {
		errors = append(errors, fmt.Sprintf("LOADER_RETRY_ATTEMPTS must be between 1 and 5, got %d", cfg.LoaderCfg.Retry.Attempts))
	}

	if cfg.TelegramCfg.ShutdownTimeout < 1 || cfg.TelegramCfg.ShutdownTimeout > 300 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_SHUTDOWN_TIMEOUT must be between 1 and 300 seconds, got %d", cfg.TelegramCfg.ShutdownTimeout))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
