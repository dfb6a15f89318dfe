package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("HOME", t.TempDir())
}

func TestInitializeConfigDefaults(t *testing.T) {
	isolate(t)

	cfg, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, 6, cfg.Recon.ProximityDays)
	assert.Equal(t, 7, cfg.Recon.HorizonDays)
	assert.Empty(t, cfg.Recon.ExcludedPaymentMethods)
	assert.Equal(t, 2*time.Second, cfg.Extract.MinPageSpacing)
	assert.Equal(t, 15*time.Second, cfg.Extract.ReadyTimeout)
	assert.Equal(t, "coded-orders", cfg.Dispatch.OrderDir)
	assert.False(t, cfg.Dispatch.PrintEnabled)
	assert.Equal(t, "matches.csv", cfg.Report.MatchLogFile)
	assert.Equal(t, "residual.csv", cfg.Report.ResidualFile)
}

func TestInitializeConfigEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("TXNRECON_RECON_PROXIMITY_DAYS", "4")
	t.Setenv("TXNRECON_EXTRACT_MIN_PAGE_SPACING", "500ms")
	t.Setenv("TXNRECON_DISPATCH_ORDER_DIR", "artifacts")
	t.Setenv("TXNRECON_LOG_LEVEL", "debug")

	cfg, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Recon.ProximityDays)
	assert.Equal(t, 500*time.Millisecond, cfg.Extract.MinPageSpacing)
	assert.Equal(t, "artifacts", cfg.Dispatch.OrderDir)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestInitializeConfigFile(t *testing.T) {
	isolate(t)

	configYAML := `
log:
  level: warn
recon:
  proximity_days: 3
  excluded_payment_methods:
    - "Mastercard ****4798"
dispatch:
  print_enabled: true
`
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(wd, "config.yaml"), []byte(configYAML), 0o644))

	cfg, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 3, cfg.Recon.ProximityDays)
	assert.Equal(t, []string{"Mastercard ****4798"}, cfg.Recon.ExcludedPaymentMethods)
	assert.True(t, cfg.Dispatch.PrintEnabled)

	// Untouched keys keep their defaults.
	assert.Equal(t, 7, cfg.Recon.HorizonDays)
}

func TestInitializeConfigInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "negative proximity",
			env:     map[string]string{"TXNRECON_RECON_PROXIMITY_DAYS": "-1"},
			wantErr: "recon.proximity_days must be positive",
		},
		{
			name:    "zero horizon",
			env:     map[string]string{"TXNRECON_RECON_HORIZON_DAYS": "0"},
			wantErr: "recon.horizon_days must be positive",
		},
		{
			name:    "negative spacing",
			env:     map[string]string{"TXNRECON_EXTRACT_MIN_PAGE_SPACING": "-1s"},
			wantErr: "extract.min_page_spacing must not be negative",
		},
		{
			name:    "bogus log level",
			env:     map[string]string{"TXNRECON_LOG_LEVEL": "verbose"},
			wantErr: "invalid log level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := InitializeConfig()
			require.Error(t, err)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestValidateConfigEmptyOrderDir(t *testing.T) {
	isolate(t)

	cfg, err := InitializeConfig()
	require.NoError(t, err)

	cfg.Dispatch.OrderDir = ""
	err = validateConfig(cfg)
	require.Error(t, err)
	assert.ErrorContains(t, err, "dispatch.order_dir must not be empty")
}

func TestApplyLogConfig(t *testing.T) {
	isolate(t)
	t.Setenv("TXNRECON_LOG_LEVEL", "warn")
	t.Setenv("TXNRECON_LOG_FORMAT", "json")

	cfg, err := InitializeConfig()
	require.NoError(t, err)

	logger := logrus.New()
	ApplyLogConfig(logger, cfg)

	assert.Equal(t, logrus.WarnLevel, logger.GetLevel())
	_, isJSON := logger.Formatter.(*logrus.JSONFormatter)
	assert.True(t, isJSON)
}

func TestApplyLogConfigKeepsLevelOnParseFailure(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	cfg := &Config{}
	cfg.Log.Level = "nonsense"
	cfg.Log.Format = "text"
	ApplyLogConfig(logger, cfg)

	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
}

func TestGetEnv(t *testing.T) {
	t.Setenv("TXNRECON_TEST_KEY", "set")
	assert.Equal(t, "set", GetEnv("TXNRECON_TEST_KEY", "fallback"))
	assert.Equal(t, "fallback", GetEnv("TXNRECON_TEST_MISSING_KEY", "fallback"))
}

func TestConfigureLogging(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")

	logger := ConfigureLogging()
	assert.Equal(t, "debug", logger.GetLevel().String())
}
