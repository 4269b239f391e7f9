package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SESSION_SECRET", "secret")
	t.Setenv("AUTH_PASSWORD_HASH", "$2a$10$abcdefghijklmnopqrstuv")
	t.Setenv("RECORDS_SOURCE", "memory")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.AppAddr)
	require.Equal(t, SourceMemory, cfg.RecordsSource)
	require.Equal(t, 5*time.Second, cfg.DashboardFetchTimeout)
	require.Equal(t, 5*time.Minute, cfg.RecordsCacheTTL)
	require.Equal(t, 4, cfg.InsightMax)
	require.False(t, cfg.IsProduction())
}

func TestLoadConfigRequiresSecrets(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("AUTH_PASSWORD_HASH", "")
	_, err := LoadConfig()
	require.Error(t, err)
}

func TestLoadConfigRemoteNeedsURL(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("RECORDS_SOURCE", "Remote")
	t.Setenv("RECORDS_REMOTE_URL", "")

	_, err := LoadConfig()
	require.ErrorContains(t, err, "RECORDS_REMOTE_URL")

	t.Setenv("RECORDS_REMOTE_URL", "http://records.internal")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, SourceRemote, cfg.RecordsSource)
}

func TestLoadConfigRejectsUnknownSourceAndInvertedBand(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("RECORDS_SOURCE", "sqlite")
	_, err := LoadConfig()
	require.ErrorContains(t, err, "sqlite")

	t.Setenv("RECORDS_SOURCE", "memory")
	t.Setenv("INSIGHT_UTILIZATION_LOW", "95")
	_, err = LoadConfig()
	require.Error(t, err)
}

func TestLoadConfigReadsEnvFile(t *testing.T) {
	setRequiredEnv(t)
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("APP_ADDR=:9999\nAPP_ENV=production\n"), 0o600))
	t.Cleanup(func() {
		_ = os.Unsetenv("APP_ADDR")
		_ = os.Unsetenv("APP_ENV")
	})

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, ":9999", cfg.AppAddr)
	require.True(t, cfg.IsProduction())
}

func TestThresholdsRetargetShiftsBand(t *testing.T) {
	cfg := &Config{
		InsightUtilizationHigh:     85,
		InsightUtilizationLow:      40,
		InsightActiveSupplierMin:   70,
		InsightMax:                 3,
		KPIProfitMarginTarget:      25,
		KPIBudgetUtilizationTarget: 80,
	}

	th := cfg.Thresholds()
	require.Equal(t, 85.0, th.UtilizationHigh)
	require.Equal(t, 40.0, th.UtilizationLow)
	require.Equal(t, 70.0, th.ActiveSupplierMin)
	require.Equal(t, 3, th.MaxInsights)

	require.Equal(t, 25.0, th.ProfitMargin.Target)
	require.Equal(t, 25.0, th.ProfitMargin.Band.Success)
	require.Equal(t, 15.0, th.ProfitMargin.Band.Warning)

	require.Equal(t, 80.0, th.BudgetUtilization.Target)
	require.Equal(t, 80.0, th.BudgetUtilization.Band.Success)
	require.Equal(t, 85.0, th.BudgetUtilization.Band.Warning)

	// Zero targets keep the defaults.
	require.Equal(t, 90.0, th.OnTimePayment.Target)
	require.Equal(t, 80.0, th.ActiveSuppliers.Target)
}
