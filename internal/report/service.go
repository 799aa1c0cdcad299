package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aevon-lab/sales-insight/internal/core/config"
	"github.com/aevon-lab/sales-insight/internal/core/sales"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Report is one finalized analysis run.
type Report struct {
	RunID             uuid.UUID            `json:"run_id"`
	Name              string               `json:"name"`
	Scheme            string               `json:"bonus_scheme"`
	SchemeFingerprint string               `json:"bonus_scheme_fingerprint,omitempty"`
	RevenueMethod     string               `json:"revenue_method"`
	GeneratedAt       time.Time            `json:"generated_at"`
	Sellers           []sales.SellerReport `json:"sellers"`
}

// Batch is a named dataset for RunAll.
type Batch struct {
	Name string
	Data *sales.Dataset
}

// Service runs seller analyses with the strategies selected in config.
type Service struct {
	options       sales.Options
	scheme        sales.BonusScheme
	revenueMethod string
	workers       int
	now           func() time.Time
}

// NewService binds a loaded config to a report service. It panics when the
// revenue method is unknown or the selected bonus scheme was never resolved.
func NewService(cfg *config.Config) *Service {
	if cfg == nil {
		panic("report: config must not be nil")
	}
	revenue, ok := sales.RevenueMethods[cfg.Report.RevenueMethod]
	if !ok {
		panic(fmt.Sprintf("report: unsupported revenue method %q", cfg.Report.RevenueMethod))
	}
	workers := cfg.Report.Workers
	if workers <= 0 {
		workers = 1
	}
	scheme := cfg.Schemes.Selected
	if scheme.Name != cfg.Report.BonusScheme {
		panic(fmt.Sprintf("report: bonus scheme %q is not resolved (got %q); build the config with config.Load", cfg.Report.BonusScheme, scheme.Name))
	}
	if err := scheme.Validate(); err != nil {
		panic(fmt.Sprintf("report: %v", err))
	}
	return &Service{
		options: sales.Options{
			CalculateRevenue: revenue,
			CalculateBonus:   scheme.Func(),
			TopProductsLimit: cfg.Report.TopProductsLimit,
		},
		scheme:        scheme,
		revenueMethod: cfg.Report.RevenueMethod,
		workers:       workers,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Run analyses one dataset.
func (s *Service) Run(ctx context.Context, name string, data *sales.Dataset) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	runID := uuid.New()
	logger := slog.With("run_id", runID.String(), "report", name)
	if data != nil {
		logger.Debug("[Report] Analysing dataset",
			"sellers", len(data.Sellers),
			"products", len(data.Products),
			"purchase_records", len(data.PurchaseRecords),
			"bonus_scheme", s.scheme.Name,
		)
	}

	sellers, err := sales.Analyze(data, s.options)
	if err != nil {
		logger.Error("[Report] Analysis failed", "error", err, "code", sales.ErrorCode(err))
		return nil, fmt.Errorf("report %q: %w", name, err)
	}

	logger.Info("[Report] Analysis complete",
		"sellers", len(sellers),
		"top_seller", sellers[0].SellerID,
		"top_profit", sellers[0].Profit.String(),
	)

	return &Report{
		RunID:             runID,
		Name:              name,
		Scheme:            s.scheme.Name,
		SchemeFingerprint: s.scheme.Fingerprint,
		RevenueMethod:     s.revenueMethod,
		GeneratedAt:       s.now(),
		Sellers:           sellers,
	}, nil
}

// RunJSON decodes a raw dataset document and analyses it.
func (s *Service) RunJSON(ctx context.Context, name string, raw []byte) (*Report, error) {
	data, err := sales.DecodeDataset(raw)
	if err != nil {
		slog.Error("[Report] Dataset rejected", "report", name, "error", err, "code", sales.ErrorCode(err))
		return nil, fmt.Errorf("report %q: %w", name, err)
	}
	return s.Run(ctx, name, data)
}

// RunAll analyses independent datasets concurrently, at most s.workers at a
// time. Reports come back in batch order. The first failure cancels the
// remaining runs and is returned.
func (s *Service) RunAll(ctx context.Context, batches []Batch) ([]*Report, error) {
	reports := make([]*Report, len(batches))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, b := range batches {
		g.Go(func() error {
			r, err := s.Run(gctx, b.Name, b.Data)
			if err != nil {
				return err
			}
			reports[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slog.Info("[Report] Batch complete", "reports", len(reports), "workers", s.workers)
	return reports, nil
}
