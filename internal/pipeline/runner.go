package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/ndxcap/internal/contracts"
	"github.com/wonny/ndxcap/internal/marketcap"
	"github.com/wonny/ndxcap/pkg/logger"
)

// UniverseProvider discovers the tracked ticker universe.
// Implementations must degrade internally and never fail the run.
type UniverseProvider interface {
	GetTickers(ctx context.Context) []string
}

// MarketDataProvider supplies raw prices and per-ticker metadata
type MarketDataProvider interface {
	FetchDailyCloses(ctx context.Context, tickers []string, from time.Time) (contracts.PriceSeries, error)
	FetchAllMetadata(ctx context.Context, tickers []string) []contracts.MetadataResult
}

// DatasetStore persists the record array
type DatasetStore interface {
	Load() (contracts.Dataset, error)
	Save(ds contracts.Dataset) error
}

// RunReport summarizes one pipeline run
type RunReport struct {
	State        marketcap.RunState `json:"state"`
	FetchStart   string             `json:"fetch_start,omitempty"`
	Tickers      int                `json:"tickers"`
	NewRecords   int                `json:"new_records"`
	TotalRecords int                `json:"total_records"`
	Saved        bool               `json:"saved"`
}

// Runner wires the refresh pipeline: universe → market data → transform →
// growth → incremental merge → store.
// ⭐ SSOT: 파이프라인 실행 순서는 이 타입에서만
type Runner struct {
	universe    UniverseProvider
	market      MarketDataProvider
	store       DatasetStore
	transformer *marketcap.Transformer
	growth      *marketcap.GrowthCalculator
	merger      *marketcap.Merger
	logger      *logger.Logger
	now         func() time.Time
}

// New creates a pipeline runner
func New(
	universe UniverseProvider,
	market MarketDataProvider,
	store DatasetStore,
	transformer *marketcap.Transformer,
	growth *marketcap.GrowthCalculator,
	merger *marketcap.Merger,
	log *logger.Logger,
) *Runner {
	return &Runner{
		universe:    universe,
		market:      market,
		store:       store,
		transformer: transformer,
		growth:      growth,
		merger:      merger,
		logger:      log,
		now:         time.Now,
	}
}

// WithClock overrides the runner's clock (used by tests)
func (r *Runner) WithClock(now func() time.Time) *Runner {
	r.now = now
	return r
}

// Run executes one full refresh.
//
// The store is written at most once, at the very end; any failure that
// leaves no usable price data aborts before that write, so a failed run
// cannot corrupt previously good data. An up-to-date dataset short-circuits
// with zero network calls.
func (r *Runner) Run(ctx context.Context) (*RunReport, error) {
	existing, err := r.store.Load()
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}

	plan := r.merger.Plan(existing, r.now())
	if plan.State == marketcap.StateUpToDate {
		return &RunReport{
			State:        plan.State,
			TotalRecords: len(existing),
		}, nil
	}

	tickers := r.universe.GetTickers(ctx)
	if len(tickers) == 0 {
		return nil, fmt.Errorf("empty ticker universe")
	}

	prices, err := r.market.FetchDailyCloses(ctx, tickers, plan.FetchStart)
	if err != nil {
		return nil, fmt.Errorf("bulk price fetch: %w", err)
	}
	if len(prices) == 0 {
		return nil, fmt.Errorf("bulk price fetch returned no data")
	}

	meta := r.collectMetadata(ctx, tickers)

	table := r.transformer.Build(prices, meta)
	computed := marketcap.BuildRecords(table, r.growth)

	merged, state, changed := r.merger.Reconcile(existing, computed, plan)
	if changed {
		if err := r.store.Save(merged); err != nil {
			return nil, fmt.Errorf("save dataset: %w", err)
		}
	}

	report := &RunReport{
		State:        state,
		FetchStart:   plan.FetchStart.Format(contracts.DateFormat),
		Tickers:      len(tickers),
		NewRecords:   len(merged) - len(existing),
		TotalRecords: len(merged),
		Saved:        changed,
	}
	if report.NewRecords < 0 {
		report.NewRecords = 0
	}

	r.logger.WithFields(map[string]interface{}{
		"state":         string(report.State),
		"tickers":       report.Tickers,
		"total_records": report.TotalRecords,
		"saved":         report.Saved,
	}).Info("Pipeline run finished")

	return report, nil
}

// collectMetadata turns the per-ticker result batch into a complete
// metadata map. A failed ticker degrades to {shares=0, sector=Unknown,
// name=ticker} and the run continues for all others.
func (r *Runner) collectMetadata(ctx context.Context, tickers []string) map[string]contracts.Metadata {
	meta := make(map[string]contracts.Metadata, len(tickers))

	for _, result := range r.market.FetchAllMetadata(ctx, tickers) {
		if result.Err != nil {
			r.logger.WithError(result.Err).WithField("ticker", result.Ticker).
				Warn("Metadata fetch failed, using defaults")
			meta[result.Ticker] = contracts.Metadata{
				SharesOutstanding: 0,
				Sector:            marketcap.UnknownSector,
				LongName:          result.Ticker,
			}
			continue
		}

		m := result.Meta
		if m.Sector == "" {
			m.Sector = marketcap.UnknownSector
		}
		if m.LongName == "" {
			m.LongName = result.Ticker
		}
		meta[result.Ticker] = m
	}

	return meta
}
