package marketcap

import (
	"sort"

	"github.com/wonny/ndxcap/internal/contracts"
	"github.com/wonny/ndxcap/pkg/logger"
)

// MinMarketCap is the smallest capitalization worth recording.
// Anything below this is treated as bad data and never emitted.
const MinMarketCap = 1_000_000

// UnknownSector is the default category for tickers without sector data
const UnknownSector = "Unknown"

// DefaultMergeRules collapses the dual-class listings in the Nasdaq-100.
// Order matters: rules are applied in sequence.
var DefaultMergeRules = []contracts.MergeRule{
	{
		Merged:         "GOOG(L)",
		Sources:        []string{"GOOG", "GOOGL"},
		FallbackSector: "Communication Services",
		FallbackName:   "Alphabet",
	},
	{
		Merged:         "FOX(A)",
		Sources:        []string{"FOX", "FOXA"},
		FallbackSector: "Communication Services",
		FallbackName:   "Fox Corporation",
	},
}

// CapTable is the aligned output of the transformer: one capitalization
// series per surviving ticker, plus sector/name lookups.
type CapTable struct {
	Caps    map[string]contracts.Series
	Sectors map[string]string
	Names   map[string]string
}

// Tickers returns the table's tickers in stable sorted order
func (t *CapTable) Tickers() []string {
	tickers := make([]string, 0, len(t.Caps))
	for ticker := range t.Caps {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)
	return tickers
}

// Transformer converts raw price series and per-ticker metadata into a
// merged market capitalization table.
// ⭐ SSOT: 시가총액 계산은 이 타입에서만
type Transformer struct {
	rules  []contracts.MergeRule
	logger *logger.Logger
}

// NewTransformer creates a transformer with the given merge rules
func NewTransformer(rules []contracts.MergeRule, log *logger.Logger) *Transformer {
	return &Transformer{
		rules:  rules,
		logger: log,
	}
}

// Build computes cap(ticker, date) = close(ticker, date) * shares(ticker)
// for every ticker present in both inputs, then applies the merge rules.
// Tickers without a metadata entry are dropped; tickers with zero shares
// produce zero caps and fall out later at the record threshold.
func (t *Transformer) Build(prices contracts.PriceSeries, meta map[string]contracts.Metadata) *CapTable {
	table := &CapTable{
		Caps:    make(map[string]contracts.Series, len(prices)),
		Sectors: make(map[string]string, len(prices)),
		Names:   make(map[string]string, len(prices)),
	}

	// Restrict to the price/metadata intersection
	for ticker, series := range prices {
		m, ok := meta[ticker]
		if !ok {
			t.logger.WithField("ticker", ticker).Debug("No shares data, dropping from cap table")
			continue
		}

		caps := make(contracts.Series, 0, len(series))
		shares := float64(m.SharesOutstanding)
		for _, p := range series {
			caps = append(caps, contracts.PricePoint{
				Date:  p.Date,
				Close: p.Close * shares,
			})
		}

		table.Caps[ticker] = caps
		table.Sectors[ticker] = defaultString(m.Sector, UnknownSector)
		table.Names[ticker] = defaultString(m.LongName, ticker)
	}

	for _, rule := range t.rules {
		t.applyMergeRule(table, rule)
	}

	return table
}

// applyMergeRule replaces the rule's source tickers with a single merged
// series when every source is present. A date is emitted only when all
// sources have it; partially covered dates stay absent.
func (t *Transformer) applyMergeRule(table *CapTable, rule contracts.MergeRule) {
	for _, src := range rule.Sources {
		if _, ok := table.Caps[src]; !ok {
			t.logger.WithFields(map[string]interface{}{
				"merged":  rule.Merged,
				"missing": src,
			}).Debug("Merge rule skipped, source ticker absent")
			return
		}
	}

	merged := sumAligned(table, rule.Sources)

	first := rule.Sources[0]
	sector := table.Sectors[first]
	if sector == "" || sector == UnknownSector {
		sector = rule.FallbackSector
	}
	name := table.Names[first]
	if name == "" || name == first {
		name = rule.FallbackName
	}

	for _, src := range rule.Sources {
		delete(table.Caps, src)
		delete(table.Sectors, src)
		delete(table.Names, src)
	}

	table.Caps[rule.Merged] = merged
	table.Sectors[rule.Merged] = sector
	table.Names[rule.Merged] = name

	t.logger.WithFields(map[string]interface{}{
		"merged":  rule.Merged,
		"sources": rule.Sources,
		"dates":   len(merged),
	}).Debug("Applied dual-class merge")
}

// sumAligned sums the sources' series over the intersection of their dates,
// preserving the first source's date order.
func sumAligned(table *CapTable, sources []string) contracts.Series {
	base := table.Caps[sources[0]]
	merged := make(contracts.Series, 0, len(base))

	for _, p := range base {
		total := p.Close
		aligned := true
		for _, src := range sources[1:] {
			v, ok := table.Caps[src].At(p.Date)
			if !ok {
				aligned = false
				break
			}
			total += v
		}
		if aligned {
			merged = append(merged, contracts.PricePoint{Date: p.Date, Close: total})
		}
	}

	return merged
}

func defaultString(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
