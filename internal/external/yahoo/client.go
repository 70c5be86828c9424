package yahoo

import (
	"github.com/wonny/ndxcap/pkg/config"
	"github.com/wonny/ndxcap/pkg/httputil"
	"github.com/wonny/ndxcap/pkg/logger"
)

// Client handles communication with Yahoo Finance
// ⭐ SSOT: Yahoo Finance API 호출은 이 클라이언트에서만
type Client struct {
	httpClient   *httputil.Client
	logger       *logger.Logger
	chartBaseURL string
	quoteBaseURL string
	concurrency  int
}

// NewClient creates a new Yahoo Finance client
func NewClient(cfg config.YahooConfig, httpClient *httputil.Client, log *logger.Logger) *Client {
	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	return &Client{
		httpClient:   httpClient,
		logger:       log,
		chartBaseURL: cfg.ChartBaseURL,
		quoteBaseURL: cfg.QuoteBaseURL,
		concurrency:  concurrency,
	}
}
