package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "scorecards.db", cfg.Store.DatabaseURL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, int64(20), cfg.Server.MaxUploadMiB)
	assert.Equal(t, "anthropic", cfg.Vision.Provider)
	assert.Equal(t, "claude-sonnet-4-5-20250929", cfg.Vision.AnthropicModel)
	assert.Equal(t, "gemini-3-pro-preview", cfg.Vision.GeminiModel)
	assert.Equal(t, int64(8192), cfg.Vision.MaxTokens)
	assert.InDelta(t, 1.0, cfg.Vision.RequestsPerSecond, 0.001)
	assert.Equal(t, "smart", cfg.Extract.DefaultStrategy)
	assert.Equal(t, 3, cfg.Extract.MaxConcurrent)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/golf
log:
  level: debug
  format: console
server:
  port: 9090
vision:
  provider: gemini
extract:
  default_strategy: full
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/golf", cfg.Store.DatabaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "gemini", cfg.Vision.Provider)
	assert.Equal(t, "full", cfg.Extract.DefaultStrategy)
	// Defaults still apply for unset values
	assert.Equal(t, 3, cfg.Extract.MaxConcurrent)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("SCORECARD_STORE_DRIVER", "postgres")
	t.Setenv("SCORECARD_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("SCORECARD_SERVER_PORT", "3000")
	t.Setenv("SCORECARD_VISION_ANTHROPIC_KEY", "sk-ant-key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "sk-ant-key", cfg.Vision.AnthropicKey)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Store.Driver = "sqlite"
	cfg.Store.DatabaseURL = "scorecards.db"
	cfg.Vision.Provider = "anthropic"
	cfg.Vision.AnthropicKey = "sk-ant-key"
	cfg.Extract.DefaultStrategy = "smart"
	cfg.Extract.MaxConcurrent = 3
	cfg.Server.Port = 8080
	cfg.Server.MaxUploadMiB = 20
	return cfg
}

func TestValidateScan_AllPresent(t *testing.T) {
	cfg := validDefaults()
	assert.NoError(t, cfg.Validate("scan"))
}

func TestValidateScan_MissingCredentials(t *testing.T) {
	cfg := validDefaults()
	cfg.Vision.AnthropicKey = ""

	err := cfg.Validate("scan")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "vision.anthropic_key is required")

	cfg.Vision.Provider = "gemini"
	err = cfg.Validate("scan")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "vision.gemini_key is required")
}

func TestValidateScan_UnknownProvider(t *testing.T) {
	cfg := validDefaults()
	cfg.Vision.Provider = "watson"

	err := cfg.Validate("scan")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "vision.provider must be anthropic or gemini")
}

func TestValidateScan_BadStrategy(t *testing.T) {
	cfg := validDefaults()
	cfg.Extract.DefaultStrategy = "guess"

	err := cfg.Validate("scan")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "extract.default_strategy")
}

func TestValidateMigrate_StoreOnly(t *testing.T) {
	cfg := validDefaults()
	cfg.Vision.AnthropicKey = ""

	// Migrate needs no model credentials.
	assert.NoError(t, cfg.Validate("migrate"))

	cfg.Store.DatabaseURL = ""
	err := cfg.Validate("migrate")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store.database_url is required")
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestValidateUnknownMode(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestValidateConcurrencyBounds(t *testing.T) {
	cfg := validDefaults()

	cfg.Extract.MaxConcurrent = 0
	err := cfg.Validate("scan")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "extract.max_concurrent must be between 1 and 20")

	cfg.Extract.MaxConcurrent = 21
	err = cfg.Validate("scan")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "extract.max_concurrent must be between 1 and 20")

	cfg.Extract.MaxConcurrent = 20
	assert.NoError(t, cfg.Validate("scan"))
}
