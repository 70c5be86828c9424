package marketcap

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/ndxcap/internal/contracts"
	"github.com/wonny/ndxcap/pkg/config"
	"github.com/wonny/ndxcap/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(&config.Config{
		Env:       "development",
		LogLevel:  "error",
		LogFormat: "console",
	})
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestTransformer_Build_CapIsPriceTimesShares(t *testing.T) {
	prices := contracts.PriceSeries{
		"AAPL": {
			{Date: day("2024-01-05"), Close: 185.5},
			{Date: day("2024-01-08"), Close: 186.0},
		},
	}
	meta := map[string]contracts.Metadata{
		"AAPL": {SharesOutstanding: 1000, Sector: "Technology", LongName: "Apple Inc."},
	}

	table := NewTransformer(nil, testLogger()).Build(prices, meta)

	require.Contains(t, table.Caps, "AAPL")
	require.Len(t, table.Caps["AAPL"], 2)
	assert.InDelta(t, 185.5*1000, table.Caps["AAPL"][0].Close, 1e-9)
	assert.InDelta(t, 186.0*1000, table.Caps["AAPL"][1].Close, 1e-9)
	assert.Equal(t, "Technology", table.Sectors["AAPL"])
	assert.Equal(t, "Apple Inc.", table.Names["AAPL"])
}

func TestTransformer_Build_DropsTickerWithoutMetadata(t *testing.T) {
	prices := contracts.PriceSeries{
		"AAPL": {{Date: day("2024-01-05"), Close: 185.5}},
		"MSFT": {{Date: day("2024-01-05"), Close: 390.0}},
	}
	meta := map[string]contracts.Metadata{
		"AAPL": {SharesOutstanding: 1000},
	}

	table := NewTransformer(nil, testLogger()).Build(prices, meta)

	assert.Contains(t, table.Caps, "AAPL")
	assert.NotContains(t, table.Caps, "MSFT")
}

func TestTransformer_Build_DualClassMerge(t *testing.T) {
	d := day("2024-01-05")
	prices := contracts.PriceSeries{
		"GOOG":  {{Date: d, Close: 100}},
		"GOOGL": {{Date: d, Close: 101}},
	}
	meta := map[string]contracts.Metadata{
		"GOOG":  {SharesOutstanding: 100, Sector: "Communication Services", LongName: "Alphabet Inc."},
		"GOOGL": {SharesOutstanding: 50, Sector: "Communication Services", LongName: "Alphabet Inc."},
	}

	table := NewTransformer(DefaultMergeRules, testLogger()).Build(prices, meta)

	// merged cap(d) = 100*100 + 101*50 = 15,050
	require.Contains(t, table.Caps, "GOOG(L)")
	require.Len(t, table.Caps["GOOG(L)"], 1)
	assert.InDelta(t, 15050.0, table.Caps["GOOG(L)"][0].Close, 1e-9)

	// neither class survives standalone
	assert.NotContains(t, table.Caps, "GOOG")
	assert.NotContains(t, table.Caps, "GOOGL")

	// sector/name come from the first listed source
	assert.Equal(t, "Communication Services", table.Sectors["GOOG(L)"])
	assert.Equal(t, "Alphabet Inc.", table.Names["GOOG(L)"])
}

func TestTransformer_Build_MergeAlignmentIsIntersection(t *testing.T) {
	prices := contracts.PriceSeries{
		"GOOG": {
			{Date: day("2024-01-05"), Close: 100},
			{Date: day("2024-01-08"), Close: 102},
		},
		"GOOGL": {
			{Date: day("2024-01-05"), Close: 101},
			// 2024-01-08 missing for GOOGL
		},
	}
	meta := map[string]contracts.Metadata{
		"GOOG":  {SharesOutstanding: 10},
		"GOOGL": {SharesOutstanding: 10},
	}

	table := NewTransformer(DefaultMergeRules, testLogger()).Build(prices, meta)

	require.Contains(t, table.Caps, "GOOG(L)")
	merged := table.Caps["GOOG(L)"]
	require.Len(t, merged, 1, "dates missing for any source must stay absent")
	assert.True(t, merged[0].Date.Equal(day("2024-01-05")))
}

func TestTransformer_Build_MergeSkippedWhenSourceAbsent(t *testing.T) {
	prices := contracts.PriceSeries{
		"GOOG": {{Date: day("2024-01-05"), Close: 100}},
		// GOOGL not fetched at all
	}
	meta := map[string]contracts.Metadata{
		"GOOG": {SharesOutstanding: 10},
	}

	table := NewTransformer(DefaultMergeRules, testLogger()).Build(prices, meta)

	assert.NotContains(t, table.Caps, "GOOG(L)")
	assert.Contains(t, table.Caps, "GOOG", "unmerged class survives as-is")
}

func TestTransformer_Build_MergeFallbackSectorAndName(t *testing.T) {
	d := day("2024-01-05")
	prices := contracts.PriceSeries{
		"FOX":  {{Date: d, Close: 30}},
		"FOXA": {{Date: d, Close: 31}},
	}
	meta := map[string]contracts.Metadata{
		// degraded metadata: unknown sector, name defaulted to ticker
		"FOX":  {SharesOutstanding: 10, Sector: "Unknown", LongName: "FOX"},
		"FOXA": {SharesOutstanding: 10, Sector: "Unknown", LongName: "FOXA"},
	}

	table := NewTransformer(DefaultMergeRules, testLogger()).Build(prices, meta)

	require.Contains(t, table.Caps, "FOX(A)")
	assert.Equal(t, "Communication Services", table.Sectors["FOX(A)"])
	assert.Equal(t, "Fox Corporation", table.Names["FOX(A)"])
}

func TestBuildRecords_ThresholdAndRounding(t *testing.T) {
	prices := contracts.PriceSeries{
		// cap = 10 * 1000 = 10,000 < 1,000,000 → never emitted
		"AAA": {{Date: day("2024-01-05"), Close: 10}},
		// cap = 10 * 1,000,000 = 10,000,000 → emitted
		"BBB": {{Date: day("2024-01-05"), Close: 10}},
	}
	meta := map[string]contracts.Metadata{
		"AAA": {SharesOutstanding: 1000, Sector: "Technology", LongName: "Triple A"},
		"BBB": {SharesOutstanding: 1_000_000, Sector: "Technology", LongName: "Triple B"},
	}

	table := NewTransformer(nil, testLogger()).Build(prices, meta)
	records := BuildRecords(table, NewGrowthCalculator(0))

	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, "BBB", rec.Name)
	assert.Equal(t, "2024-01-05", rec.Date)
	assert.Equal(t, "Triple B", rec.FullName)
	assert.Equal(t, "Technology", rec.Category)
	assert.Equal(t, int64(10_000_000), rec.Value)
	assert.Equal(t, 0.0, rec.Growth)
}

func TestBuildRecords_Deterministic(t *testing.T) {
	prices := contracts.PriceSeries{
		"MSFT": {{Date: day("2024-01-05"), Close: 400}},
		"AAPL": {{Date: day("2024-01-05"), Close: 185}},
	}
	meta := map[string]contracts.Metadata{
		"MSFT": {SharesOutstanding: 1_000_000},
		"AAPL": {SharesOutstanding: 1_000_000},
	}

	tr := NewTransformer(nil, testLogger())
	calc := NewGrowthCalculator(0)

	first := BuildRecords(tr.Build(prices, meta), calc)
	second := BuildRecords(tr.Build(prices, meta), calc)

	assert.Equal(t, first, second)
	require.Len(t, first, 2)
	assert.Equal(t, "AAPL", first[0].Name, "tickers walked in sorted order")
}
