package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/ndxcap/internal/contracts"
)

// chartResponse is the v8 chart API envelope. Timestamps and quote arrays
// are parallel; a null close is a gap, not a zero.
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  interface{}   `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []chartQuote `json:"quote"`
	} `json:"indicators"`
}

type chartQuote struct {
	Close []*float64 `json:"close"`
}

// FetchDailyCloses downloads daily close series for all tickers from the
// fetch start through today. Per-ticker requests run concurrently; a
// ticker that fails is logged and omitted. An empty result map signals
// total failure to the caller.
// ⭐ SSOT: 일봉 가격 호출은 이 함수에서만
func (c *Client) FetchDailyCloses(ctx context.Context, tickers []string, from time.Time) (contracts.PriceSeries, error) {
	results := make([]contracts.Series, len(tickers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for i, ticker := range tickers {
		i, ticker := i, ticker
		g.Go(func() error {
			series, err := c.fetchChart(gctx, ticker, from)
			if err != nil {
				// Isolated: one symbol's failure must not sink the batch
				c.logger.WithError(err).WithField("ticker", ticker).
					Warn("Price fetch failed for ticker")
				return nil
			}
			results[i] = series // disjoint slot per ticker
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("price fetch cancelled: %w", err)
	}

	prices := make(contracts.PriceSeries)
	for i, ticker := range tickers {
		if len(results[i]) > 0 {
			prices[ticker] = results[i]
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"requested": len(tickers),
		"fetched":   len(prices),
		"from":      from.Format(contracts.DateFormat),
	}).Info("Fetched daily closes")

	return prices, nil
}

// fetchChart downloads and parses one ticker's daily chart
func (c *Client) fetchChart(ctx context.Context, ticker string, from time.Time) (contracts.Series, error) {
	url := fmt.Sprintf("%s/%s?interval=1d&period1=%d&period2=%d",
		c.chartBaseURL, ticker, from.Unix(), time.Now().Unix())

	resp, err := c.httpClient.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var parsed chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if parsed.Chart.Error != nil {
		return nil, fmt.Errorf("chart API error: %v", parsed.Chart.Error)
	}
	if len(parsed.Chart.Result) == 0 || len(parsed.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("empty chart result")
	}

	result := parsed.Chart.Result[0]
	closes := result.Indicators.Quote[0].Close

	series := make(contracts.Series, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue // null close: explicit gap
		}
		series = append(series, contracts.PricePoint{
			Date:  contracts.Day(time.Unix(ts, 0)),
			Close: *closes[i],
		})
	}

	return series, nil
}
