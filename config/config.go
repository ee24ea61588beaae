package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"doc-search/embedding"
	"doc-search/manifest"
	"doc-search/meta"
)

const (
	ProviderOpenAI = "openai"
	ProviderHash   = "hash"

	DefaultPort              = 8000
	DefaultEmbedTimeout      = 30 * time.Second
	DefaultCompletionTimeout = meta.DefaultTimeout
)

var ErrInvalid = errors.New("invalid configuration")

// Config holds everything needed to bootstrap the search engine and its transports.
type Config struct {
	DocumentsPath string
	Host          string
	Port          int

	OpenAIAPIKey  string
	OpenAIBaseURL string

	EmbeddingProvider string
	EmbeddingModel    string
	HashDimensions    int
	EmbedTimeout      time.Duration

	ChatModel         string
	CompletionTimeout time.Duration

	LogLevel  string
	LogFormat string
	Tracing   bool
}

func Default() Config {
	return Config{
		DocumentsPath:     manifest.DefaultPath,
		Port:              DefaultPort,
		EmbeddingProvider: ProviderOpenAI,
		EmbeddingModel:    embedding.DefaultOpenAIModel,
		HashDimensions:    embedding.DefaultHashDimensions,
		EmbedTimeout:      DefaultEmbedTimeout,
		ChatModel:         meta.DefaultChatModel,
		CompletionTimeout: DefaultCompletionTimeout,
		LogLevel:          "info",
		LogFormat:         "text",
	}
}

// LoadDotEnv reads a .env file into the environment if there is one, existing variables win.
func LoadDotEnv(logger *slog.Logger, filenames ...string) {
	if err := godotenv.Load(filenames...); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("failed to load .env file", slog.Any("error", err))
	}
}

// FromEnv builds a Config from the environment only, for entry points without flags.
func FromEnv() (Config, error) {
	cfg := Default()
	cfg.DocumentsPath = envString("DOCUMENTS_PATH", cfg.DocumentsPath)
	cfg.Host = envString("HOST", cfg.Host)
	cfg.OpenAIAPIKey = envString("OPENAI_API_KEY", cfg.OpenAIAPIKey)
	cfg.OpenAIBaseURL = envString("OPENAI_BASE_URL", cfg.OpenAIBaseURL)
	cfg.EmbeddingProvider = envString("EMBEDDING_PROVIDER", "")
	cfg.EmbeddingModel = envString("EMBEDDING_MODEL", cfg.EmbeddingModel)
	cfg.ChatModel = envString("CHAT_MODEL", cfg.ChatModel)
	cfg.LogLevel = envString("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = envString("LOG_FORMAT", cfg.LogFormat)

	var err error
	if cfg.Port, err = envInt("PORT", cfg.Port); err != nil {
		return cfg, err
	}
	if cfg.HashDimensions, err = envInt("HASH_DIMENSIONS", cfg.HashDimensions); err != nil {
		return cfg, err
	}
	if cfg.EmbedTimeout, err = envDuration("EMBED_TIMEOUT", cfg.EmbedTimeout); err != nil {
		return cfg, err
	}
	if cfg.CompletionTimeout, err = envDuration("COMPLETION_TIMEOUT", cfg.CompletionTimeout); err != nil {
		return cfg, err
	}
	if v := os.Getenv("TRACING"); v != "" {
		if cfg.Tracing, err = strconv.ParseBool(v); err != nil {
			return cfg, fmt.Errorf("%w: TRACING: %w", ErrInvalid, err)
		}
	}

	cfg.defaultProvider()
	return cfg, cfg.Validate()
}

// Flags are the CLI flags for every Config field, each also settable from its environment variable.
func Flags() []cli.Flag {
	d := Default()
	return []cli.Flag{
		&cli.StringFlag{Name: "documents", Value: d.DocumentsPath, EnvVars: []string{"DOCUMENTS_PATH"}, Usage: "document source: .json, .yaml, or a glob of text files"},
		&cli.StringFlag{Name: "host", Value: d.Host, EnvVars: []string{"HOST"}, Usage: "address to listen on"},
		&cli.IntFlag{Name: "port", Value: d.Port, EnvVars: []string{"PORT"}, Usage: "port to listen on"},
		&cli.StringFlag{Name: "openai-api-key", EnvVars: []string{"OPENAI_API_KEY"}, Usage: "OpenAI API key, enables /with-gpt"},
		&cli.StringFlag{Name: "openai-base-url", EnvVars: []string{"OPENAI_BASE_URL"}, Usage: "override the OpenAI API base URL"},
		&cli.StringFlag{Name: "embedding-provider", EnvVars: []string{"EMBEDDING_PROVIDER"}, Usage: "openai or hash, defaults to openai when an API key is set and to the local hash embedder otherwise"},
		&cli.StringFlag{Name: "embedding-model", Value: d.EmbeddingModel, EnvVars: []string{"EMBEDDING_MODEL"}, Usage: "OpenAI embedding model"},
		&cli.IntFlag{Name: "hash-dimensions", Value: d.HashDimensions, EnvVars: []string{"HASH_DIMENSIONS"}, Usage: "vector size of the hash embedder"},
		&cli.DurationFlag{Name: "embed-timeout", Value: d.EmbedTimeout, EnvVars: []string{"EMBED_TIMEOUT"}, Usage: "bound on a single embedding call"},
		&cli.StringFlag{Name: "chat-model", Value: d.ChatModel, EnvVars: []string{"CHAT_MODEL"}, Usage: "OpenAI chat model used for synthesized answers"},
		&cli.DurationFlag{Name: "completion-timeout", Value: d.CompletionTimeout, EnvVars: []string{"COMPLETION_TIMEOUT"}, Usage: "bound on a single completion call"},
		&cli.StringFlag{Name: "log-level", Value: d.LogLevel, EnvVars: []string{"LOG_LEVEL"}, Usage: "debug, info, warn, or error"},
		&cli.StringFlag{Name: "log-format", Value: d.LogFormat, EnvVars: []string{"LOG_FORMAT"}, Usage: "text or json"},
		&cli.BoolFlag{Name: "tracing", EnvVars: []string{"TRACING"}, Usage: "print OpenTelemetry spans to stdout"},
	}
}

// FromContext reads the flags declared by Flags.
func FromContext(ctx *cli.Context) (Config, error) {
	cfg := Config{
		DocumentsPath:     ctx.String("documents"),
		Host:              ctx.String("host"),
		Port:              ctx.Int("port"),
		OpenAIAPIKey:      ctx.String("openai-api-key"),
		OpenAIBaseURL:     ctx.String("openai-base-url"),
		EmbeddingProvider: ctx.String("embedding-provider"),
		EmbeddingModel:    ctx.String("embedding-model"),
		HashDimensions:    ctx.Int("hash-dimensions"),
		EmbedTimeout:      ctx.Duration("embed-timeout"),
		ChatModel:         ctx.String("chat-model"),
		CompletionTimeout: ctx.Duration("completion-timeout"),
		LogLevel:          ctx.String("log-level"),
		LogFormat:         ctx.String("log-format"),
		Tracing:           ctx.Bool("tracing"),
	}
	cfg.defaultProvider()
	return cfg, cfg.Validate()
}

// defaultProvider picks an embedding provider when none was named. Without an API key only the
// hash embedder can run, which keeps BasicSearch available and leaves synthesis disabled.
func (c *Config) defaultProvider() {
	if strings.TrimSpace(c.EmbeddingProvider) != "" {
		return
	}
	if c.OpenAIAPIKey == "" {
		c.EmbeddingProvider = ProviderHash
	} else {
		c.EmbeddingProvider = ProviderOpenAI
	}
}

func (c Config) Validate() error {
	var errs []error
	switch c.EmbeddingProvider {
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			errs = append(errs, errors.New("the openai embedding provider needs OPENAI_API_KEY"))
		}
	case ProviderHash:
		if c.HashDimensions <= 0 {
			errs = append(errs, fmt.Errorf("hash dimensions must be positive, got %d", c.HashDimensions))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown embedding provider %q", c.EmbeddingProvider))
	}
	if c.DocumentsPath == "" {
		errs = append(errs, errors.New("documents path is empty"))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.EmbedTimeout <= 0 {
		errs = append(errs, fmt.Errorf("embed timeout must be positive, got %s", c.EmbedTimeout))
	}
	if c.CompletionTimeout <= 0 {
		errs = append(errs, fmt.Errorf("completion timeout must be positive, got %s", c.CompletionTimeout))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SynthesisEnabled reports whether an API key is available for answer synthesis.
func (c Config) SynthesisEnabled() bool {
	return c.OpenAIAPIKey != ""
}

func envString(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback, fmt.Errorf("%w: %s: %w", ErrInvalid, key, err)
	}
	return n, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback, fmt.Errorf("%w: %s: %w", ErrInvalid, key, err)
	}
	return d, nil
}
