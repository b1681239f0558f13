package binance

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Re-Quant/calc/internal/config"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	baseURL        = "https://api.binance.com/api/v3"
	testnetBaseURL = "https://testnet.binance.vision/api/v3"
	maxRetries     = 3
)

// RestClientInterface defines the market data calls the planner relies on.
type RestClientInterface interface {
	GetServerTime(ctx context.Context) (int64, error)
	GetTickerPrice(ctx context.Context, symbol string) (float64, error)
}

// RestClient is a client for the public Binance REST API.
// It implements the RestClientInterface.
type RestClient struct {
	client    *resty.Client
	logger    *zap.Logger
	limiter   *rate.Limiter
	retryBase time.Duration
}

// ensure RestClient implements the interface
var _ RestClientInterface = (*RestClient)(nil)

// NewRestClient creates a new Binance REST API client.
func NewRestClient(cfg config.Binance, logger *zap.Logger) *RestClient {
	logger = logger.Named("binance")

	url := cfg.BaseURL
	switch {
	case url != "":
		logger.Info("Using custom Binance endpoint", zap.String("url", url))
	case cfg.Testnet:
		url = testnetBaseURL
		logger.Warn("Using Binance Testnet")
	default:
		url = baseURL
		logger.Info("Using Binance Production API")
	}

	burst := cfg.RateLimitBurst
	if burst < 1 {
		burst = 1
	}

	return &RestClient{
		client:    resty.New().SetBaseURL(url),
		logger:    logger,
		limiter:   rate.NewLimiter(rate.Limit(cfg.RateLimit), burst),
		retryBase: time.Second,
	}
}

// GetServerTime fetches the current server time from Binance.
// This is a good endpoint to test connectivity.
func (c *RestClient) GetServerTime(ctx context.Context) (int64, error) {
	type ServerTimeResponse struct {
		ServerTime int64 `json:"serverTime"`
	}

	req := c.client.R().
		SetResult(&ServerTimeResponse{})

	resp, err := c.doRequest(ctx, http.MethodGet, "/time", req)
	if err != nil {
		c.logger.Error("Failed to get server time", zap.Error(err))
		return 0, fmt.Errorf("failed to get server time: %w", err)
	}

	result := resp.Result().(*ServerTimeResponse)
	return result.ServerTime, nil
}

// TickerPrice represents the response for a single ticker price.
type TickerPrice struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

// GetTickerPrice fetches the latest price for one symbol, e.g. "BTCUSDT".
func (c *RestClient) GetTickerPrice(ctx context.Context, symbol string) (float64, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return 0, fmt.Errorf("failed to get ticker price: empty symbol")
	}

	req := c.client.R().
		SetQueryParam("symbol", symbol).
		SetResult(&TickerPrice{}).
		SetHeader("Content-Type", "application/json")

	resp, err := c.doRequest(ctx, http.MethodGet, "/ticker/price", req)
	if err != nil {
		return 0, fmt.Errorf("failed to get ticker price for %s: %w", symbol, err)
	}

	ticker := resp.Result().(*TickerPrice)
	price, err := strconv.ParseFloat(ticker.Price, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse ticker price %q for %s: %w", ticker.Price, symbol, err)
	}
	if price <= 0 || math.IsInf(price, 0) {
		return 0, fmt.Errorf("invalid ticker price %v for %s", price, symbol)
	}

	c.logger.Debug("Fetched ticker price", zap.String("symbol", symbol), zap.Float64("price", price))
	return price, nil
}

// doRequest handles the actual request execution with rate limiting and retry logic.
func (c *RestClient) doRequest(ctx context.Context, method, url string, req *resty.Request) (*resty.Response, error) {
	var resp *resty.Response
	var err error

	req.SetContext(ctx)

	for i := 0; i < maxRetries; i++ {
		// Wait for the rate limiter
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait failed: %w", err)
		}

		c.logger.Debug("Executing request", zap.String("method", method), zap.String("url", c.client.BaseURL+url))
		resp, err = req.Execute(method, url)

		if err == nil && !resp.IsError() {
			return resp, nil // Success
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		// Analyze error and decide whether to retry
		shouldRetry := false
		var retryAfter time.Duration

		if err == nil {
			statusCode := resp.StatusCode()
			if statusCode == http.StatusTooManyRequests || statusCode == http.StatusTeapot {
				shouldRetry = true
				if seconds, convErr := strconv.Atoi(resp.Header().Get("Retry-After")); convErr == nil {
					retryAfter = time.Duration(seconds) * time.Second
				}
			} else if statusCode >= 500 { // Server errors
				shouldRetry = true
			}
			err = fmt.Errorf("status %s: %s", resp.Status(), resp.String())
		} else { // Network or other client-side errors
			shouldRetry = true
		}

		if !shouldRetry {
			return nil, fmt.Errorf("request failed with %w", err)
		}

		if retryAfter == 0 {
			// Exponential backoff: base, 2*base, 4*base
			retryAfter = time.Duration(math.Pow(2, float64(i))) * c.retryBase
		}

		c.logger.Warn("Request failed, retrying...",
			zap.Int("attempt", i+1),
			zap.Duration("retry_after", retryAfter),
			zap.Error(err),
		)

		select {
		case <-time.After(retryAfter):
			continue
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", maxRetries, err)
}
