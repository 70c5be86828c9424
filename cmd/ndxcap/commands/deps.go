package commands

import (
	"fmt"
	"time"

	"github.com/wonny/ndxcap/internal/external/yahoo"
	"github.com/wonny/ndxcap/internal/marketcap"
	"github.com/wonny/ndxcap/internal/pipeline"
	"github.com/wonny/ndxcap/internal/store"
	"github.com/wonny/ndxcap/internal/universe"
	"github.com/wonny/ndxcap/pkg/config"
	"github.com/wonny/ndxcap/pkg/httputil"
	"github.com/wonny/ndxcap/pkg/logger"
)

// deps holds the wired application components shared by the commands
type deps struct {
	cfg    *config.Config
	log    *logger.Logger
	store  *store.Store
	runner *pipeline.Runner
}

// buildDeps loads config and wires the pipeline
// ⭐ SSOT: 컴포넌트 조립은 이 함수에서만
func buildDeps() (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	// Flags override environment
	if dataFile != "" {
		cfg.DataFile = dataFile
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	log := logger.New(cfg)

	httpClient := httputil.New(log, cfg.Yahoo.Timeout).
		WithRetry(cfg.Yahoo.MaxRetries, time.Second).
		WithRateLimit(cfg.Yahoo.RatePerSec)

	epochStart, err := time.Parse("2006-01-02", cfg.EpochStart)
	if err != nil {
		return nil, fmt.Errorf("parse epoch start: %w", err)
	}

	st := store.New(cfg.DataFile, log)

	runner := pipeline.New(
		universe.NewProvider(httpClient, cfg.UniverseURL, log),
		yahoo.NewClient(cfg.Yahoo, httpClient, log),
		st,
		marketcap.NewTransformer(marketcap.DefaultMergeRules, log),
		marketcap.NewGrowthCalculator(marketcap.GrowthLookback),
		marketcap.NewMerger(epochStart, log),
		log,
	)

	return &deps{
		cfg:    cfg,
		log:    log,
		store:  st,
		runner: runner,
	}, nil
}
