// Package feed fetches AMM pool records from the aggregator REST API.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"solana-flow-bot/internal/domain"
)

// Default configuration values.
const (
	DefaultTimeout     = 15 * time.Second
	DefaultMaxRetries  = 3
	DefaultRetryDelay  = 1 * time.Second
	DefaultMaxDelay    = 10 * time.Second
	DefaultBackoffMult = 2.0
)

// ErrNotFound is returned when the aggregator has no record for a pool.
var ErrNotFound = errors.New("pool not found")

// Source provides pool records to the monitor loop.
type Source interface {
	Pools(ctx context.Context) ([]domain.PoolRecord, error)
	Pool(ctx context.Context, id string) (*domain.PoolRecord, error)
}

// Client fetches pool records over HTTP with bounded retries.
type Client struct {
	baseURL     string
	client      *http.Client
	maxRetries  int
	retryDelay  time.Duration
	maxDelay    time.Duration
	backoffMult float64
}

var _ Source = (*Client)(nil)

// ClientOption configures Client.
type ClientOption func(*Client)

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.client.Timeout = d
	}
}

// WithMaxRetries sets maximum retry attempts.
func WithMaxRetries(n int) ClientOption {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// WithRetryDelay sets initial retry delay.
func WithRetryDelay(d time.Duration) ClientOption {
	return func(c *Client) {
		c.retryDelay = d
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

// NewClient creates a pool feed client for the given aggregator base URL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:     baseURL,
		client:      &http.Client{Timeout: DefaultTimeout},
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		maxDelay:    DefaultMaxDelay,
		backoffMult: DefaultBackoffMult,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope is the aggregator response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// poolPayload is the raw aggregator pool record.
type poolPayload struct {
	ID           string       `json:"id"`
	Version      int          `json:"version"`
	BaseToken    tokenPayload `json:"baseToken"`
	QuoteToken   tokenPayload `json:"quoteToken"`
	LPMint       string       `json:"lpMint"`
	BaseVault    string       `json:"baseVault"`
	QuoteVault   string       `json:"quoteVault"`
	BaseAmount   float64      `json:"baseAmount"`
	QuoteAmount  float64      `json:"quoteAmount"`
	FeeRateBps   int          `json:"feeRateBps"`
	Status       string       `json:"status"`
	CreationTime int64        `json:"creationTime"`
}

type tokenPayload struct {
	Mint     string `json:"mint"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals int    `json:"decimals"`
}

func (p *poolPayload) toDomain() domain.PoolRecord {
	return domain.PoolRecord{
		ID:           p.ID,
		Version:      p.Version,
		BaseToken:    domain.TokenInfo(p.BaseToken),
		QuoteToken:   domain.TokenInfo(p.QuoteToken),
		LPMint:       p.LPMint,
		BaseVault:    p.BaseVault,
		QuoteVault:   p.QuoteVault,
		BaseAmount:   p.BaseAmount,
		QuoteAmount:  p.QuoteAmount,
		FeeRateBps:   p.FeeRateBps,
		Status:       p.Status,
		CreationTime: p.CreationTime,
	}
}

// get performs a GET with retries and exponential backoff, decoding the
// envelope's data field into result.
func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	endpoint := c.baseURL + path

	delay := c.retryDelay
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			// Exponential backoff
			delay = time.Duration(float64(delay) * c.backoffMult)
			if delay > c.maxDelay {
				delay = c.maxDelay
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http request: %w", err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		// Handle rate limiting
		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("rate limited (429)")
			continue
		}

		if resp.StatusCode == http.StatusNotFound {
			return ErrNotFound
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
			continue
		}

		var env envelope
		if err := json.Unmarshal(body, &env); err != nil {
			lastErr = fmt.Errorf("unmarshal envelope: %w", err)
			continue
		}

		if !env.Success {
			// API-level errors are not retried
			return fmt.Errorf("aggregator error: %s", env.Error)
		}

		if result != nil && env.Data != nil {
			if err := json.Unmarshal(env.Data, result); err != nil {
				return fmt.Errorf("unmarshal data: %w", err)
			}
		}

		return nil
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// Pools fetches all tracked Raydium pools.
func (c *Client) Pools(ctx context.Context) ([]domain.PoolRecord, error) {
	var payload []poolPayload
	if err := c.get(ctx, "/api/pools/raydium", &payload); err != nil {
		return nil, err
	}

	pools := make([]domain.PoolRecord, len(payload))
	for i := range payload {
		pools[i] = payload[i].toDomain()
	}
	return pools, nil
}

// Pool fetches a single pool by AMM ID.
func (c *Client) Pool(ctx context.Context, id string) (*domain.PoolRecord, error) {
	var payload poolPayload
	if err := c.get(ctx, "/api/pools/raydium/"+url.PathEscape(id), &payload); err != nil {
		return nil, err
	}

	pool := payload.toDomain()
	return &pool, nil
}
