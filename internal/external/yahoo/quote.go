package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/ndxcap/internal/contracts"
)

// quoteSummaryResponse is the v10 quoteSummary envelope
type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []quoteSummaryResult `json:"result"`
		Error  interface{}          `json:"error"`
	} `json:"quoteSummary"`
}

type quoteSummaryResult struct {
	DefaultKeyStatistics *struct {
		SharesOutstanding rawValue `json:"sharesOutstanding"`
	} `json:"defaultKeyStatistics"`
	AssetProfile *struct {
		Sector string `json:"sector"`
	} `json:"assetProfile"`
	Price *struct {
		LongName string `json:"longName"`
	} `json:"price"`
}

// rawValue unwraps Yahoo's {raw, fmt} number objects
type rawValue struct {
	Raw int64 `json:"raw"`
}

// FetchMetadata fetches shares outstanding, sector and long name for one
// ticker. Missing modules degrade to zero values; the caller applies
// defaults.
// ⭐ SSOT: 종목 메타데이터 호출은 이 함수에서만
func (c *Client) FetchMetadata(ctx context.Context, ticker string) (contracts.Metadata, error) {
	url := fmt.Sprintf("%s/%s?modules=defaultKeyStatistics%%2CassetProfile%%2Cprice",
		c.quoteBaseURL, ticker)

	resp, err := c.httpClient.Get(ctx, url)
	if err != nil {
		return contracts.Metadata{}, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return contracts.Metadata{}, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var parsed quoteSummaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return contracts.Metadata{}, fmt.Errorf("decode response: %w", err)
	}

	if len(parsed.QuoteSummary.Result) == 0 {
		return contracts.Metadata{}, fmt.Errorf("empty quoteSummary result")
	}

	result := parsed.QuoteSummary.Result[0]
	meta := contracts.Metadata{}

	if result.DefaultKeyStatistics != nil {
		meta.SharesOutstanding = result.DefaultKeyStatistics.SharesOutstanding.Raw
	}
	if result.AssetProfile != nil {
		meta.Sector = result.AssetProfile.Sector
	}
	if result.Price != nil {
		meta.LongName = result.Price.LongName
	}

	return meta, nil
}

// FetchAllMetadata fetches metadata for every ticker concurrently. Each
// goroutine writes only its own result slot, and a failing ticker is
// returned as an error value in the batch rather than aborting the rest.
func (c *Client) FetchAllMetadata(ctx context.Context, tickers []string) []contracts.MetadataResult {
	results := make([]contracts.MetadataResult, len(tickers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for i, ticker := range tickers {
		i, ticker := i, ticker
		g.Go(func() error {
			meta, err := c.FetchMetadata(gctx, ticker)
			results[i] = contracts.MetadataResult{
				Ticker: ticker,
				Meta:   meta,
				Err:    err,
			}
			return nil
		})
	}

	// Goroutines never return errors; Wait only observes ctx cancellation
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"requested": len(tickers),
		"failed":    failed,
	}).Info("Fetched metadata batch")

	return results
}
