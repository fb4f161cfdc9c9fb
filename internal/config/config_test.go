package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// onCurveAddr is the system program address, a valid on-curve pubkey.
const onCurveAddr = "11111111111111111111111111111111"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.RPCEndpoint != DefaultRPCEndpoint {
		t.Errorf("RPCEndpoint = %q, want %q", cfg.RPCEndpoint, DefaultRPCEndpoint)
	}
	if cfg.JitoEndpoint != DefaultJitoEndpoint {
		t.Errorf("JitoEndpoint = %q, want %q", cfg.JitoEndpoint, DefaultJitoEndpoint)
	}
	if cfg.PollInterval != DefaultPollInterval {
		t.Errorf("PollInterval = %s, want %s", cfg.PollInterval, DefaultPollInterval)
	}
	if cfg.MinLiquidityTVL != DefaultMinLiquidityTVL {
		t.Errorf("MinLiquidityTVL = %f, want %f", cfg.MinLiquidityTVL, DefaultMinLiquidityTVL)
	}
	if cfg.TelegramEnabled() {
		t.Error("Telegram should be disabled by default")
	}
}

func TestLoad_RPCEndpointPriority(t *testing.T) {
	t.Setenv("HELIUS_API_KEY", "helius-key")
	t.Setenv("ALCHEMY_API_KEY", "alchemy-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	want := "https://mainnet.helius-rpc.com/?api-key=helius-key"
	if cfg.RPCEndpoint != want {
		t.Errorf("RPCEndpoint = %q, want Helius endpoint", cfg.RPCEndpoint)
	}

	// Explicit endpoint wins over both keys.
	t.Setenv("RPC_ENDPOINT", "https://example.com")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.RPCEndpoint != "https://example.com" {
		t.Errorf("RPCEndpoint = %q, want explicit endpoint", cfg.RPCEndpoint)
	}
}

func TestLoad_AlchemyFallback(t *testing.T) {
	t.Setenv("ALCHEMY_API_KEY", "alchemy-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	want := "https://solana-mainnet.g.alchemy.com/v2/alchemy-key"
	if cfg.RPCEndpoint != want {
		t.Errorf("RPCEndpoint = %q, want Alchemy endpoint", cfg.RPCEndpoint)
	}
}

func TestLoad_InvalidWallet(t *testing.T) {
	t.Setenv("WALLET_PUBKEY", "not-a-pubkey")

	if _, err := Load(); err == nil {
		t.Fatal("Expected error for malformed wallet pubkey")
	}
}

func TestLoad_PollIntervalFormats(t *testing.T) {
	t.Setenv("POLL_INTERVAL", "2500ms")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.PollInterval != 2500*time.Millisecond {
		t.Errorf("PollInterval = %s, want 2.5s", cfg.PollInterval)
	}

	// Bare numbers are seconds, matching the original env format.
	t.Setenv("POLL_INTERVAL", "3")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.PollInterval != 3*time.Second {
		t.Errorf("PollInterval = %s, want 3s", cfg.PollInterval)
	}
}

func TestParseKOLWallets(t *testing.T) {
	wallets := parseKOLWallets("Alpha=" + onCurveAddr + " , Beta=" + onCurveAddr + ",, bad-pair")

	if len(wallets) != 2 {
		t.Fatalf("Expected 2 wallets, got %d: %v", len(wallets), wallets)
	}
	if wallets["Alpha"] != onCurveAddr {
		t.Errorf("Alpha = %q, want %q", wallets["Alpha"], onCurveAddr)
	}
}

func TestLoad_KOLWalletValidation(t *testing.T) {
	t.Setenv("KOL_WALLETS", "Alpha=bogus")

	if _, err := Load(); err == nil {
		t.Fatal("Expected error for malformed KOL wallet address")
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# comment\nexport FOO_FROM_FILE=hello\nQUOTED_FROM_FILE=\"quoted value\"\nPRESET_VAR=file-value\nnot a pair\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	t.Setenv("PRESET_VAR", "env-value")
	defer os.Unsetenv("FOO_FROM_FILE")
	defer os.Unsetenv("QUOTED_FROM_FILE")

	LoadEnvFile(path)

	if got := os.Getenv("FOO_FROM_FILE"); got != "hello" {
		t.Errorf("FOO_FROM_FILE = %q, want %q", got, "hello")
	}
	if got := os.Getenv("QUOTED_FROM_FILE"); got != "quoted value" {
		t.Errorf("QUOTED_FROM_FILE = %q, want %q", got, "quoted value")
	}
	// File values never override set variables.
	if got := os.Getenv("PRESET_VAR"); got != "env-value" {
		t.Errorf("PRESET_VAR = %q, want %q", got, "env-value")
	}
}

func TestLoadEnvFile_Missing(t *testing.T) {
	// Must be a no-op, not a panic.
	LoadEnvFile(filepath.Join(t.TempDir(), "absent.env"))
}
