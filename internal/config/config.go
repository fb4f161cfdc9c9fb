// Package config loads bot configuration from the environment.
// Values are read once at startup; there is no hot reload.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"solana-flow-bot/internal/solana"
)

// Defaults mirror the reference deployment.
const (
	DefaultRPCEndpoint     = "https://api.mainnet-beta.solana.com"
	DefaultJitoEndpoint    = "https://mainnet.block-engine.jito.wtf"
	DefaultAggregatorURL   = "http://127.0.0.1:8545"
	DefaultPollInterval    = 5 * time.Second
	DefaultMinLiquidityTVL = 70000.0
	DefaultMaxRiskScore    = 40.0
	DefaultMinConfidence   = 60.0
	DefaultMinProfitPct    = 0.5
	DefaultTradeAmountSOL  = 0.02
	DefaultHTTPAddr        = ":8080"
)

// Config holds all runtime settings for the bot.
type Config struct {
	// RPC endpoints
	RPCEndpoint string
	WSEndpoint  string

	// External services
	JitoEndpoint  string
	AggregatorURL string

	// Wallet (optional; empty disables the balance gate)
	WalletPubkey string

	// Analysis thresholds
	MinLiquidityTVL float64
	MaxRiskScore    float64
	MinConfidence   float64
	MinProfitPct    float64
	TradeAmountSOL  float64

	// Monitor
	PollInterval time.Duration
	HTTPAddr     string

	// Telegram (token/chat "disabled" or empty disables notifications)
	TelegramBotToken string
	TelegramChatID   string

	// KOL wallets, name -> base58 address
	KOLWallets map[string]string

	// Persistence (empty DSNs select in-memory stores)
	PostgresDSN   string
	ClickhouseDSN string

	Verbose bool
}

// Load reads configuration from the environment, applying defaults.
// A .env file in the working directory is loaded first without
// overriding variables already set.
func Load() (*Config, error) {
	LoadEnvFile(".env")

	cfg := &Config{
		RPCEndpoint:      rpcEndpoint(),
		WSEndpoint:       os.Getenv("WS_ENDPOINT"),
		JitoEndpoint:     envString("JITO_ENDPOINT", DefaultJitoEndpoint),
		AggregatorURL:    envString("RAYDIUM_API_ENDPOINT", DefaultAggregatorURL),
		WalletPubkey:     os.Getenv("WALLET_PUBKEY"),
		MinLiquidityTVL:  envFloat("MIN_LIQUIDITY_TVL", DefaultMinLiquidityTVL),
		MaxRiskScore:     envFloat("MAX_RISK_SCORE", DefaultMaxRiskScore),
		MinConfidence:    envFloat("MIN_CONFIDENCE", DefaultMinConfidence),
		MinProfitPct:     envFloat("MIN_PROFIT_PCT", DefaultMinProfitPct),
		TradeAmountSOL:   envFloat("TRADE_AMOUNT_SOL", DefaultTradeAmountSOL),
		PollInterval:     envDuration("POLL_INTERVAL", DefaultPollInterval),
		HTTPAddr:         envString("HTTP_ADDR", DefaultHTTPAddr),
		TelegramBotToken: envString("TELEGRAM_BOT_TOKEN", "disabled"),
		TelegramChatID:   envString("TELEGRAM_CHAT_ID", "disabled"),
		KOLWallets:       parseKOLWallets(os.Getenv("KOL_WALLETS")),
		PostgresDSN:      os.Getenv("POSTGRES_DSN"),
		ClickhouseDSN:    os.Getenv("CLICKHOUSE_DSN"),
		Verbose:          envBool("VERBOSE", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks configured values for consistency.
func (c *Config) Validate() error {
	if c.RPCEndpoint == "" {
		return fmt.Errorf("RPC endpoint not configured")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", c.PollInterval)
	}
	if c.TradeAmountSOL <= 0 {
		return fmt.Errorf("trade amount must be positive, got %f", c.TradeAmountSOL)
	}
	if c.WalletPubkey != "" {
		if err := solana.ValidateWalletAddress(c.WalletPubkey); err != nil {
			return fmt.Errorf("invalid wallet pubkey: %w", err)
		}
	}
	for name, addr := range c.KOLWallets {
		if err := solana.ValidateWalletAddress(addr); err != nil {
			return fmt.Errorf("invalid KOL wallet %s: %w", name, err)
		}
	}
	return nil
}

// TelegramEnabled reports whether Telegram notifications are configured.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramBotToken != "disabled" &&
		c.TelegramChatID != "" && c.TelegramChatID != "disabled" &&
		!envBool("DISABLE_NOTIFICATIONS", false)
}

// rpcEndpoint resolves the RPC endpoint with the original priority:
// explicit RPC_ENDPOINT, then Helius, then Alchemy, then public mainnet.
func rpcEndpoint() string {
	if v := os.Getenv("RPC_ENDPOINT"); v != "" {
		return v
	}
	if key := os.Getenv("HELIUS_API_KEY"); key != "" {
		return "https://mainnet.helius-rpc.com/?api-key=" + key
	}
	if key := os.Getenv("ALCHEMY_API_KEY"); key != "" {
		return "https://solana-mainnet.g.alchemy.com/v2/" + key
	}
	return DefaultRPCEndpoint
}

// parseKOLWallets parses "name=addr,name2=addr2" pairs.
func parseKOLWallets(raw string) map[string]string {
	wallets := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, addr, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		addr = strings.TrimSpace(addr)
		if !ok || name == "" || addr == "" {
			continue
		}
		wallets[name] = addr
	}
	return wallets
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return strings.EqualFold(v, "true") || v == "1"
}

// envDuration parses a Go duration, falling back to plain seconds for
// bare numbers ("5" == 5s) to match the original env format.
func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
