package feed

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func poolsResponse() map[string]interface{} {
	return map[string]interface{}{
		"success": true,
		"data": []map[string]interface{}{
			{
				"id":      "pool-abc",
				"version": 4,
				"baseToken": map[string]interface{}{
					"mint":     "Mint1111111111111111111111111111111111111111",
					"symbol":   "TKN",
					"name":     "Test Token",
					"decimals": 9,
				},
				"quoteToken": map[string]interface{}{
					"mint":     "So11111111111111111111111111111111111111112",
					"symbol":   "SOL",
					"name":     "Wrapped SOL",
					"decimals": 9,
				},
				"lpMint":       "LP111111111111111111111111111111111111111111",
				"baseVault":    "Vault111111111111111111111111111111111111111",
				"quoteVault":   "Vault222222222222222222222222222222222222222",
				"baseAmount":   50000.0,
				"quoteAmount":  250.0,
				"feeRateBps":   30,
				"status":       "online",
				"creationTime": int64(1700000000),
			},
		},
	}
}

func TestClient_Pools(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/pools/raydium" {
			t.Errorf("expected path /api/pools/raydium, got %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(poolsResponse())
	}))
	defer server.Close()

	client := NewClient(server.URL)

	pools, err := client.Pools(context.Background())
	if err != nil {
		t.Fatalf("Pools: %v", err)
	}

	if len(pools) != 1 {
		t.Fatalf("expected 1 pool, got %d", len(pools))
	}

	pool := pools[0]
	if pool.ID != "pool-abc" {
		t.Errorf("expected pool ID pool-abc, got %s", pool.ID)
	}
	if pool.BaseToken.Symbol != "TKN" {
		t.Errorf("expected base symbol TKN, got %s", pool.BaseToken.Symbol)
	}
	if pool.TotalLiquidity() != 50250.0 {
		t.Errorf("expected total liquidity 50250, got %f", pool.TotalLiquidity())
	}
	if pool.CreationTime != 1700000000 {
		t.Errorf("expected creation time 1700000000, got %d", pool.CreationTime)
	}
}

func TestClient_Pool(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/pools/raydium/pool-abc" {
			t.Errorf("expected pool path, got %s", r.URL.Path)
		}
		resp := map[string]interface{}{
			"success": true,
			"data":    poolsResponse()["data"].([]map[string]interface{})[0],
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	pool, err := client.Pool(context.Background(), "pool-abc")
	if err != nil {
		t.Fatalf("Pool: %v", err)
	}
	if pool.QuoteToken.Symbol != "SOL" {
		t.Errorf("expected quote symbol SOL, got %s", pool.QuoteToken.Symbol)
	}
}

func TestClient_Pool_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	_, err := client.Pool(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestClient_APIError_NotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		resp := map[string]interface{}{
			"success": false,
			"error":   "upstream unavailable",
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(server.URL, WithRetryDelay(time.Millisecond))

	_, err := client.Pools(context.Background())
	if err == nil {
		t.Fatal("expected error for unsuccessful envelope")
	}
	if calls.Load() != 1 {
		t.Errorf("expected 1 call (no retry on API error), got %d", calls.Load())
	}
}

func TestClient_RetriesOn429(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(poolsResponse())
	}))
	defer server.Close()

	client := NewClient(server.URL, WithRetryDelay(time.Millisecond))

	pools, err := client.Pools(context.Background())
	if err != nil {
		t.Fatalf("Pools after retries: %v", err)
	}
	if len(pools) != 1 {
		t.Errorf("expected 1 pool, got %d", len(pools))
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 calls, got %d", calls.Load())
	}
}

func TestClient_MaxRetriesExceeded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, WithRetryDelay(time.Millisecond), WithMaxRetries(2))

	_, err := client.Pools(context.Background())
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
}
