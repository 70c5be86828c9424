package contracts

import "time"

// DateFormat is the wire format for record dates
const DateFormat = "2006-01-02"

// MarketCapRecord is one persisted observation: a company's market
// capitalization on a trading day, plus its trailing growth.
// ⭐ SSOT: 저장 레코드 스키마는 여기서만 정의
type MarketCapRecord struct {
	Date     string  `json:"date"`     // YYYY-MM-DD
	Name     string  `json:"name"`     // ticker or merged dual-class id
	FullName string  `json:"fullname"` // company long name
	Category string  `json:"category"` // sector
	Value    int64   `json:"value"`    // market cap, whole currency units
	Growth   float64 `json:"growth"`   // trailing growth, 4 decimal places
}

// ParsedDate returns the record date as a time.Time (UTC midnight)
func (r MarketCapRecord) ParsedDate() (time.Time, error) {
	return time.Parse(DateFormat, r.Date)
}

// Dataset is the full persisted record collection. Order is write-order,
// not guaranteed; (date, name) pairs are unique.
type Dataset []MarketCapRecord

// LastDate returns the maximum date across all records.
// The second return is false for an empty dataset.
func (d Dataset) LastDate() (time.Time, bool) {
	var last time.Time
	found := false

	for _, r := range d {
		t, err := r.ParsedDate()
		if err != nil {
			continue // malformed date, ignore for range purposes
		}
		if !found || t.After(last) {
			last = t
			found = true
		}
	}

	return last, found
}

// Tickers returns the set of distinct names in the dataset
func (d Dataset) Tickers() map[string]struct{} {
	set := make(map[string]struct{})
	for _, r := range d {
		set[r.Name] = struct{}{}
	}
	return set
}
