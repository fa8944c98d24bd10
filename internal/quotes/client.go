package quotes

import (
	"context"
	"fmt"
	"time"

	"papertrade-go/internal/config"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ClientInterface defines the interface for the quote feed client.
type ClientInterface interface {
	GetQuotes() (map[string]float64, error)
}

// Client fetches instrument quotes from a configurable HTTP feed.
// It implements the ClientInterface.
type Client struct {
	client  *resty.Client
	logger  *zap.Logger
	limiter *rate.Limiter
}

// ensure Client implements the interface
var _ ClientInterface = (*Client)(nil)

// NewClient creates a new quote feed client.
func NewClient(cfg *config.Quotes, logger *zap.Logger) *Client {
	client := resty.New().SetBaseURL(cfg.BaseURL)

	// rate.Limit is requests per second.
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst)

	return &Client{
		client:  client,
		logger:  logger,
		limiter: limiter,
	}
}

// Quote represents one entry of the feed response.
type Quote struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
}

// GetQuotes fetches the latest prices for all symbols the feed knows about.
func (c *Client) GetQuotes() (map[string]float64, error) {
	var result []Quote
	req := c.client.R().SetResult(&result)

	resp, err := c.doRequest(context.Background(), "GET", "/quotes", req)
	if err != nil {
		c.logger.Error("Failed to get quotes", zap.Error(err))
		return nil, fmt.Errorf("failed to get quotes: %w", err)
	}

	quotes := *resp.Result().(*[]Quote)
	prices := make(map[string]float64, len(quotes))
	for _, q := range quotes {
		prices[q.Symbol] = q.Price
	}
	return prices, nil
}

// doRequest handles the actual request execution with rate limiting and retry logic.
func (c *Client) doRequest(ctx context.Context, method, url string, req *resty.Request) (*resty.Response, error) {
	var resp *resty.Response
	var err error
	const maxRetries = 3

	for i := 0; i < maxRetries; i++ {
		// Wait for the rate limiter
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait failed: %w", err)
		}

		resp, err = req.Execute(method, url)
		if err == nil && resp.IsSuccess() {
			return resp, nil
		}

		if err == nil {
			err = fmt.Errorf("request failed with status %d: %s", resp.StatusCode(), resp.String())
		}
		c.logger.Warn("Quote feed request failed, retrying",
			zap.String("url", url),
			zap.Int("attempt", i+1),
			zap.Error(err))
		time.Sleep(time.Duration(i+1) * 500 * time.Millisecond)
	}

	return nil, fmt.Errorf("request failed after %d retries: %w", maxRetries, err)
}
