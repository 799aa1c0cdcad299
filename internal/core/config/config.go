package config

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aevon-lab/sales-insight/internal/core/sales"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config represents the top-level report config plus the resolved bonus schemes.
type Config struct {
	Report ReportConfig `koanf:"report"`
	Log    LogConfig    `koanf:"log"`

	// Schemes is populated by Load after parsing scheme files.
	Schemes SchemeLoadingConfig `koanf:"-"`
}

type ReportConfig struct {
	BonusScheme      string `koanf:"bonus_scheme"`
	RevenueMethod    string `koanf:"revenue_method"`
	TopProductsLimit int    `koanf:"top_products_limit"`
	SchemesDir       string `koanf:"schemes_dir"` // empty: built-in scheme only
	Workers          int    `koanf:"workers"`     // concurrent datasets in RunAll
}

type LogConfig struct {
	Level  string `koanf:"level"`  // debug | info | warn | error
	Format string `koanf:"format"` // text | json
}

type SchemeLoadingConfig struct {
	Dir      string
	Selected sales.BonusScheme
	All      []sales.BonusScheme
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Report.BonusScheme) == "" {
		return fmt.Errorf("report.bonus_scheme is required")
	}
	if !sales.ValidRevenueMethod(c.Report.RevenueMethod) {
		return fmt.Errorf("unsupported report.revenue_method %q", c.Report.RevenueMethod)
	}
	if c.Report.TopProductsLimit <= 0 {
		return fmt.Errorf("report.top_products_limit must be > 0")
	}
	if c.Report.Workers <= 0 {
		return fmt.Errorf("report.workers must be > 0")
	}

	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("invalid log.format %q (must be text or json)", c.Log.Format)
	}

	return nil
}

// EnvPrefix marks environment overrides: SALES_REPORT__WORKERS=8 sets report.workers.
const EnvPrefix = "SALES_"

func defaultValues() map[string]interface{} {
	return map[string]interface{}{
		"report.bonus_scheme":       sales.BonusSchemeProfit,
		"report.revenue_method":     sales.RevenueSimple,
		"report.top_products_limit": sales.DefaultTopProductsLimit,
		"report.schemes_dir":        "",
		"report.workers":            4,
		"log.level":                 "info",
		"log.format":                "text",
	}
}

func envKey(name string) string {
	key := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

// Load layers built-in defaults, the optional YAML file at configPath and
// SALES_ environment variables, validates the result and resolves the
// selected bonus scheme.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")
	for key, value := range defaultValues() {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("default %s: %w", key, err)
		}
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load %s* env vars: %w", EnvPrefix, err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.resolveSchemes(context.Background()); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) resolveSchemes(ctx context.Context) error {
	repo, err := sales.NewFileSystemSchemeRepository(c.Report.SchemesDir)
	if err != nil {
		return fmt.Errorf("failed to load bonus schemes: %w", err)
	}
	selected, err := repo.Get(ctx, c.Report.BonusScheme)
	if err != nil {
		return fmt.Errorf("report.bonus_scheme: %w", err)
	}
	all, err := repo.List(ctx)
	if err != nil {
		return err
	}

	c.Schemes = SchemeLoadingConfig{Dir: c.Report.SchemesDir, Selected: *selected, All: all}
	return nil
}

// NewLogger builds a slog logger writing to w with the configured level and format.
func NewLogger(w io.Writer, c LogConfig) (*slog.Logger, error) {
	level, err := parseLevel(c.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

// SetupLogger installs the configured logger as the slog default.
func SetupLogger(w io.Writer, c LogConfig) error {
	logger, err := NewLogger(w, c)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return level, fmt.Errorf("invalid log.level %q (must be debug, info, warn or error)", s)
	}
	return level, nil
}
