package marketcap

import (
	"math"

	"github.com/wonny/ndxcap/internal/contracts"
)

// BuildRecords flattens a cap table into persistable records.
//
// Growth is computed over each ticker's full series so that context-window
// history counts toward the lookback, then sub-threshold observations are
// dropped at emission. Tickers are walked in sorted order so output is
// deterministic for identical inputs.
func BuildRecords(table *CapTable, calc *GrowthCalculator) contracts.Dataset {
	records := make(contracts.Dataset, 0)

	for _, ticker := range table.Tickers() {
		series := table.Caps[ticker]
		growth := calc.Compute(series)

		for i, p := range series {
			value := int64(math.Round(p.Close))
			if value < MinMarketCap {
				continue
			}

			records = append(records, contracts.MarketCapRecord{
				Date:     p.Date.Format(contracts.DateFormat),
				Name:     ticker,
				FullName: table.Names[ticker],
				Category: table.Sectors[ticker],
				Value:    value,
				Growth:   Round4(growth[i]),
			})
		}
	}

	return records
}
