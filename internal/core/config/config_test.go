package config

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aevon-lab/sales-insight/internal/core/sales"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, sales.BonusSchemeProfit, cfg.Report.BonusScheme)
	require.Equal(t, sales.RevenueSimple, cfg.Report.RevenueMethod)
	require.Equal(t, 10, cfg.Report.TopProductsLimit)
	require.Equal(t, 4, cfg.Report.Workers)
	require.Equal(t, "info", cfg.Log.Level)
	require.Equal(t, "text", cfg.Log.Format)
	require.Equal(t, sales.BonusSchemeProfit, cfg.Schemes.Selected.Name)
	require.Len(t, cfg.Schemes.All, 1)
}

func TestLoad_FileWithSchemes(t *testing.T) {
	root := t.TempDir()
	schemesDir := filepath.Join(root, "schemes")
	requireNoError(t, os.MkdirAll(schemesDir, 0o755))
	requireNoError(t, os.WriteFile(filepath.Join(schemesDir, "holiday.yaml"), []byte(`
name: "holiday"
rates:
  0: 0.25
default_rate: 0.1
`), 0o644))

	cfgPath := filepath.Join(root, "sales.yaml")
	requireNoError(t, os.WriteFile(cfgPath, []byte(fmt.Sprintf(`
report:
  bonus_scheme: "holiday"
  top_products_limit: 5
  schemes_dir: "%s"
  workers: 2
log:
  level: "debug"
  format: "json"
`, schemesDir)), 0o644))

	cfg, err := Load(cfgPath)
	requireNoError(t, err)
	require.Equal(t, 5, cfg.Report.TopProductsLimit)
	require.Equal(t, 2, cfg.Report.Workers)
	require.Equal(t, "holiday", cfg.Schemes.Selected.Name)
	require.NotEmpty(t, cfg.Schemes.Selected.Fingerprint)
	require.True(t, decimal.RequireFromString("0.25").Equal(cfg.Schemes.Selected.Rates[0]))
	require.Len(t, cfg.Schemes.All, 2)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	root := t.TempDir()
	cfgPath := filepath.Join(root, "sales.yaml")
	requireNoError(t, os.WriteFile(cfgPath, []byte(`
report:
  top_products_limit: 5
`), 0o644))

	t.Setenv("SALES_REPORT__TOP_PRODUCTS_LIMIT", "3")
	t.Setenv("SALES_LOG__LEVEL", "warn")

	cfg, err := Load(cfgPath)
	requireNoError(t, err)
	require.Equal(t, 3, cfg.Report.TopProductsLimit)
	require.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_ValidationFailures(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "unknown revenue method",
			yaml:    "report:\n  revenue_method: \"gross\"\n",
			wantErr: "unsupported report.revenue_method",
		},
		{
			name:    "zero top products",
			yaml:    "report:\n  top_products_limit: 0\n",
			wantErr: "report.top_products_limit must be > 0",
		},
		{
			name:    "negative workers",
			yaml:    "report:\n  workers: -1\n",
			wantErr: "report.workers must be > 0",
		},
		{
			name:    "bad log level",
			yaml:    "log:\n  level: \"loud\"\n",
			wantErr: "invalid log.level",
		},
		{
			name:    "bad log format",
			yaml:    "log:\n  format: \"xml\"\n",
			wantErr: "invalid log.format",
		},
		{
			name:    "unknown bonus scheme",
			yaml:    "report:\n  bonus_scheme: \"seasonal\"\n",
			wantErr: "bonus scheme not found",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfgPath := filepath.Join(t.TempDir(), "sales.yaml")
			requireNoError(t, os.WriteFile(cfgPath, []byte(tc.yaml), 0o644))

			_, err := Load(cfgPath)
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestLoad_InvalidSchemeFileFailsStartup(t *testing.T) {
	root := t.TempDir()
	schemesDir := filepath.Join(root, "schemes")
	requireNoError(t, os.MkdirAll(schemesDir, 0o755))
	requireNoError(t, os.WriteFile(filepath.Join(schemesDir, "bad.yaml"), []byte(`
name: "bad"
default_rate: 2
`), 0o644))

	cfgPath := filepath.Join(root, "sales.yaml")
	requireNoError(t, os.WriteFile(cfgPath, []byte(fmt.Sprintf("report:\n  schemes_dir: \"%s\"\n", schemesDir)), 0o644))

	_, err := Load(cfgPath)
	if err == nil || !strings.Contains(err.Error(), "failed to load bonus schemes") {
		t.Fatalf("expected scheme load error, got %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil || !strings.Contains(err.Error(), "failed to load config file") {
		t.Fatalf("expected config file error, got %v", err)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, LogConfig{Level: "warn", Format: "json"})
	requireNoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "seller_id", "seller_1")
	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.Contains(t, out, `"msg":"shown"`)
	require.Contains(t, out, `"seller_id":"seller_1"`)

	_, err = NewLogger(&buf, LogConfig{Level: "verbose", Format: "text"})
	require.Error(t, err)
}

func TestSetupLogger(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	requireNoError(t, SetupLogger(&buf, LogConfig{Level: "debug", Format: "text"}))
	slog.Debug("[Report] Analysing dataset", "sellers", 3)
	require.Contains(t, buf.String(), "sellers=3")

	require.Error(t, SetupLogger(&buf, LogConfig{Level: "loud", Format: "text"}))
}

func requireNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}
