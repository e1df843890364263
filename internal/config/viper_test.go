package config

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTestConfig() *Config {
	var cfg Config
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	cfg.AI.Enabled = false
	cfg.Data.Directory = "data"
	cfg.Data.DatabaseFile = "ledger.db"
	return &cfg
}

func TestValidateConfigDefaultsPass(t *testing.T) {
	assert.NoError(t, validateConfig(validTestConfig()))
}

func TestValidateConfigRejectsBadLogSettings(t *testing.T) {
	cfg := validTestConfig()
	cfg.Log.Level = "noisy"
	assert.Error(t, validateConfig(cfg))

	cfg = validTestConfig()
	cfg.Log.Format = "xml"
	assert.Error(t, validateConfig(cfg))
}

func TestValidateConfigAIRequiresKeyAndProvider(t *testing.T) {
	cfg := validTestConfig()
	cfg.AI.Enabled = true
	cfg.AI.Provider = ProviderOpenAI
	cfg.AI.HistoryWindow = 5
	cfg.AI.TimeoutSeconds = 30

	err := validateConfig(cfg)
	require.Error(t, err, "enabled AI without an API key must fail")

	cfg.AI.APIKey = "sk-test"
	assert.NoError(t, validateConfig(cfg))

	cfg.AI.Provider = "anthropic"
	assert.Error(t, validateConfig(cfg))
}

func TestValidateConfigAIBounds(t *testing.T) {
	cfg := validTestConfig()
	cfg.AI.Enabled = true
	cfg.AI.Provider = ProviderGemini
	cfg.AI.APIKey = "key"
	cfg.AI.TimeoutSeconds = 30

	cfg.AI.HistoryWindow = 51
	assert.Error(t, validateConfig(cfg))

	cfg.AI.HistoryWindow = 5
	cfg.AI.TimeoutSeconds = 0
	assert.Error(t, validateConfig(cfg))
}

func TestConfigureLoggingFromConfig(t *testing.T) {
	cfg := validTestConfig()
	cfg.Log.Level = "debug"
	cfg.Log.Format = "json"

	logger := ConfigureLoggingFromConfig(cfg)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)
}

func TestConfigureLoggingInvalidLevelFallsBackToInfo(t *testing.T) {
	cfg := validTestConfig()
	cfg.Log.Level = "noisy"

	logger := ConfigureLoggingFromConfig(cfg)
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
}

func TestInitializeConfigAPIKeyFollowsProvider(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "or-key")
	t.Setenv("GEMINI_API_KEY", "gm-key")

	t.Setenv("LEDGER_AI_PROVIDER", ProviderGemini)
	cfg, err := InitializeConfig()
	require.NoError(t, err)
	assert.Equal(t, "gm-key", cfg.AI.APIKey, "gemini provider must not pick up the OpenRouter key")

	t.Setenv("LEDGER_AI_PROVIDER", ProviderOpenAI)
	cfg, err = InitializeConfig()
	require.NoError(t, err)
	assert.Equal(t, "or-key", cfg.AI.APIKey)
}

func TestGetEnv(t *testing.T) {
	t.Setenv("LEDGER_TEST_KEY", "value")
	assert.Equal(t, "value", GetEnv("LEDGER_TEST_KEY", "fallback"))
	assert.Equal(t, "fallback", GetEnv("LEDGER_TEST_MISSING", "fallback"))
}
