package universe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/ndxcap/pkg/httputil"
	"github.com/wonny/ndxcap/pkg/logger"
)

// fallbackTickers keeps the pipeline alive when the constituents page
// cannot be scraped
var fallbackTickers = []string{
	"AAPL", "MSFT", "NVDA", "GOOGL", "AMZN",
	"META", "TSLA", "AVGO", "PEP", "COST",
}

// Provider discovers the tracked ticker universe from the Nasdaq-100
// constituents table on Wikipedia.
// ⭐ SSOT: 유니버스 스크래핑은 이 타입에서만
type Provider struct {
	client *httputil.Client
	url    string
	logger *logger.Logger
}

// NewProvider creates a universe provider
func NewProvider(client *httputil.Client, url string, log *logger.Logger) *Provider {
	return &Provider{
		client: client,
		url:    url,
		logger: log,
	}
}

// GetTickers returns the ordered universe. It never fails the run: any
// scrape or parse error degrades to the static fallback list.
func (p *Provider) GetTickers(ctx context.Context) []string {
	tickers, err := p.fetch(ctx)
	if err != nil {
		p.logger.WithError(err).Warn("Universe scrape failed, using fallback list")
		return append([]string(nil), fallbackTickers...)
	}

	p.logger.WithField("count", len(tickers)).Info("Universe fetched")
	return tickers
}

// fetch downloads and parses the constituents page
func (p *Provider) fetch(ctx context.Context) ([]string, error) {
	resp, err := p.client.Get(ctx, p.url)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return ParseConstituents(resp.Body)
}

// ParseConstituents extracts ticker symbols from the page HTML.
//
// Table selection is heuristic: the first table whose header row has a
// "Ticker" or "Symbol" column is taken as the constituents table. Symbols
// are normalized for the market data provider (dots become dashes, e.g.
// BRK.B → BRK-B).
func ParseConstituents(r io.Reader) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	var tickers []string

	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		col := symbolColumn(table)
		if col < 0 {
			return true // not the constituents table, keep looking
		}

		table.Find("tr").Each(func(i int, row *goquery.Selection) {
			if i == 0 {
				return // header row
			}
			cells := row.Find("td")
			if cells.Length() <= col {
				return
			}
			symbol := normalizeSymbol(cells.Eq(col).Text())
			if symbol != "" {
				tickers = append(tickers, symbol)
			}
		})

		return false // stop at the first matching table
	})

	if len(tickers) == 0 {
		return nil, fmt.Errorf("no constituents table found")
	}

	return tickers, nil
}

// symbolColumn returns the header index of the Ticker/Symbol column,
// or -1 when the table does not have one
func symbolColumn(table *goquery.Selection) int {
	col := -1
	table.Find("tr").First().Find("th").Each(func(i int, th *goquery.Selection) {
		header := strings.TrimSpace(th.Text())
		if col < 0 && (strings.EqualFold(header, "Ticker") || strings.EqualFold(header, "Symbol")) {
			col = i
		}
	})
	return col
}

// normalizeSymbol cleans a scraped cell into a provider-ready symbol
func normalizeSymbol(s string) string {
	s = strings.TrimSpace(s)
	return strings.ReplaceAll(s, ".", "-")
}
