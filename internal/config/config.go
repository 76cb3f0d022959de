package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Vision  VisionConfig  `yaml:"vision" mapstructure:"vision"`
	Extract ExtractConfig `yaml:"extract" mapstructure:"extract"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// VisionConfig holds the vision model provider settings.
type VisionConfig struct {
	Provider          string  `yaml:"provider" mapstructure:"provider"`
	AnthropicKey      string  `yaml:"anthropic_key" mapstructure:"anthropic_key"`
	AnthropicModel    string  `yaml:"anthropic_model" mapstructure:"anthropic_model"`
	GeminiKey         string  `yaml:"gemini_key" mapstructure:"gemini_key"`
	GeminiModel       string  `yaml:"gemini_model" mapstructure:"gemini_model"`
	MaxTokens         int64   `yaml:"max_tokens" mapstructure:"max_tokens"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// ExtractConfig configures extraction behavior.
type ExtractConfig struct {
	DefaultStrategy string `yaml:"default_strategy" mapstructure:"default_strategy"`
	MaxConcurrent   int    `yaml:"max_concurrent" mapstructure:"max_concurrent"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port         int   `yaml:"port" mapstructure:"port"`
	MaxUploadMiB int64 `yaml:"max_upload_mib" mapstructure:"max_upload_mib"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SCORECARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "scorecards.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.max_upload_mib", 20)
	v.SetDefault("vision.provider", "anthropic")
	v.SetDefault("vision.anthropic_model", "claude-sonnet-4-5-20250929")
	v.SetDefault("vision.gemini_model", "gemini-3-pro-preview")
	v.SetDefault("vision.max_tokens", 8192)
	v.SetDefault("vision.requests_per_second", 1)
	v.SetDefault("extract.default_strategy", "smart")
	v.SetDefault("extract.max_concurrent", 3)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that the configuration is usable for the given mode.
// Modes: "scan" (CLI extraction), "serve" (HTTP API), "migrate" (schema only).
func (c *Config) Validate(mode string) error {
	var problems []string

	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		problems = append(problems, "store.driver must be sqlite or postgres")
	}
	if c.Store.DatabaseURL == "" {
		problems = append(problems, "store.database_url is required")
	}

	switch mode {
	case "migrate":
		// Store settings only.
	case "scan", "serve":
		switch c.Vision.Provider {
		case "anthropic":
			if c.Vision.AnthropicKey == "" {
				problems = append(problems, "vision.anthropic_key is required")
			}
		case "gemini":
			if c.Vision.GeminiKey == "" {
				problems = append(problems, "vision.gemini_key is required")
			}
		default:
			problems = append(problems, "vision.provider must be anthropic or gemini")
		}
		switch c.Extract.DefaultStrategy {
		case "full", "scores_only", "smart":
		default:
			problems = append(problems, "extract.default_strategy must be full, scores_only, or smart")
		}
		if c.Extract.MaxConcurrent < 1 || c.Extract.MaxConcurrent > 20 {
			problems = append(problems, "extract.max_concurrent must be between 1 and 20")
		}
		if mode == "serve" {
			if c.Server.Port <= 0 {
				problems = append(problems, "server.port must be > 0")
			}
			if c.Server.MaxUploadMiB <= 0 {
				problems = append(problems, "server.max_upload_mib must be > 0")
			}
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
