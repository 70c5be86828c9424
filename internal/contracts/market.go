package contracts

import "time"

// PricePoint is a single daily close observation
type PricePoint struct {
	Date  time.Time
	Close float64
}

// Series is a date-ascending sequence of observations for one ticker.
// Missing dates are absent entries, never zero fills.
type Series []PricePoint

// At returns the value on a given date
func (s Series) At(date time.Time) (float64, bool) {
	for _, p := range s {
		if p.Date.Equal(date) {
			return p.Close, true
		}
	}
	return 0, false
}

// PriceSeries maps ticker → daily close series.
// Dates need not be aligned across tickers.
type PriceSeries map[string]Series

// Metadata holds per-ticker reference data from the market data provider
type Metadata struct {
	SharesOutstanding int64  // 0 means unknown
	Sector            string // "Unknown" when unavailable
	LongName          string // ticker symbol when unavailable
}

// MetadataResult is the outcome of one ticker's metadata fetch.
// Failures are carried as values so one ticker never aborts another.
// ⭐ SSOT: 종목별 메타데이터 실패 처리는 이 타입으로만 전달
type MetadataResult struct {
	Ticker string
	Meta   Metadata
	Err    error
}

// MergeRule collapses dual-class listings into one logical company by
// summing the source tickers' capitalizations.
type MergeRule struct {
	Merged         string   // canonical merged id, e.g. "GOOG(L)"
	Sources        []string // ordered; first source donates sector/name
	FallbackSector string   // used when the first source's sector is unknown
	FallbackName   string   // used when the first source's name is unknown
}

// Day normalizes a timestamp to UTC midnight
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
