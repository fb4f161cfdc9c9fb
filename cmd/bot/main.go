// Package main runs the liquidity-flow trading bot: a periodic monitor that
// samples pool liquidity, classifies flow patterns, scores opportunities, and
// emits trade recommendations, alongside optional KOL wallet tracking and a
// WebSocket new-pool watcher.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"solana-flow-bot/internal/config"
	"solana-flow-bot/internal/decision"
	"solana-flow-bot/internal/domain"
	"solana-flow-bot/internal/feed"
	"solana-flow-bot/internal/flow"
	"solana-flow-bot/internal/jito"
	"solana-flow-bot/internal/kol"
	"solana-flow-bot/internal/monitor"
	"solana-flow-bot/internal/notify"
	"solana-flow-bot/internal/observability"
	"solana-flow-bot/internal/scoring"
	"solana-flow-bot/internal/solana"
	"solana-flow-bot/internal/storage"
	chstore "solana-flow-bot/internal/storage/clickhouse"
	"solana-flow-bot/internal/storage/memory"
	"solana-flow-bot/internal/storage/migrations"
	pgstore "solana-flow-bot/internal/storage/postgres"
)

// Bot holds the wired components and runtime state.
type Bot struct {
	cfg      *config.Config
	analyzer *flow.Analyzer
	monitor  *monitor.Monitor
	watcher  *kol.Watcher
	logger   *log.Logger

	backend string
	started time.Time
}

func main() {
	logger := log.New(os.Stdout, "[bot] ", log.LstdFlags)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	stores, kolStore, backend, cleanup, err := createStores(ctx, cfg)
	if err != nil {
		logger.Fatalf("create stores: %v", err)
	}
	defer cleanup()
	logger.Printf("storage backend: %s", backend)

	componentLogger := log.New(os.Stdout, "", log.LstdFlags)
	if !cfg.Verbose {
		componentLogger = log.New(io.Discard, "", 0)
	}

	rpc := solana.NewHTTPClient(cfg.RPCEndpoint)

	var balance decision.BalanceProvider
	if cfg.WalletPubkey != "" {
		wallet, err := solana.NewWalletProvider(rpc, cfg.WalletPubkey)
		if err != nil {
			logger.Fatalf("wallet provider: %v", err)
		}
		balance = wallet
		logger.Printf("wallet balance gate enabled for %s", cfg.WalletPubkey)
	}

	notifier := buildNotifier(cfg, logger)

	client := feed.NewClient(cfg.AggregatorURL)
	cache := feed.NewCache(client, feed.DefaultCacheTTL)

	analyzer := flow.NewAnalyzer(flow.DefaultConfig())
	risk := scoring.NewRiskAnalyzer(scoring.DefaultRiskConfig())
	engine := decision.NewEngine(decision.Config{
		MinConfidence:  cfg.MinConfidence,
		MaxRisk:        cfg.MaxRiskScore,
		MinLiquidity:   cfg.MinLiquidityTVL,
		MinProfitPct:   cfg.MinProfitPct,
		TradeAmountSOL: cfg.TradeAmountSOL,
	}, balance)

	// Submissions run on the fake bundler until real swap transaction
	// building lands; jito.NewHTTPClient(cfg.JitoEndpoint) takes its place then.
	bundler := jito.NewFake()
	tips := jito.NewTipCalculator(jito.DefaultTipConfig())

	mon := monitor.New(cache, analyzer, risk, engine, notifier,
		monitor.WithInterval(cfg.PollInterval),
		monitor.WithLogger(componentLogger),
		monitor.WithStores(stores),
		monitor.WithCache(cache),
		monitor.WithExecutor(bundler, tips),
	)

	bot := &Bot{
		cfg:      cfg,
		analyzer: analyzer,
		monitor:  mon,
		logger:   logger,
		backend:  backend,
		started:  time.Now(),
	}

	if len(cfg.KOLWallets) > 0 {
		trackerCfg := kol.DefaultConfig()
		trackerCfg.Wallets = cfg.KOLWallets
		tracker := kol.NewTracker(trackerCfg, kol.WithLogger(componentLogger))

		source := kol.NewSignatureSource(rpc, kol.WithTokenQuote(poolTokenQuote(cache)))
		bot.watcher = kol.NewWatcher(source, tracker, notifier,
			kol.WithTradeStore(kolStore),
			kol.WithWatcherLogger(componentLogger),
		)
		logger.Printf("tracking %d KOL wallets", len(cfg.KOLWallets))
	}

	done := make(chan error, 1)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("received signal %v, shutting down...", sig)
		cancel()

		select {
		case sig := <-sigCh:
			logger.Printf("received second signal %v, forcing exit", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
		}
	}()

	go bot.startHTTPServer(cfg.HTTPAddr)

	err = bot.Run(ctx, rpc)
	done <- err
	cancel()

	if err != nil && err != context.Canceled {
		logger.Fatalf("bot error: %v", err)
	}
	logger.Println("shutdown complete")
}

// Run starts the monitor loop plus the optional KOL and new-pool watchers,
// returning on cancellation or the first component failure.
func (b *Bot) Run(ctx context.Context, rpc solana.RPCClient) error {
	errCh := make(chan error, 3)

	go func() {
		err := b.monitor.Run(ctx)
		if err != nil && err != context.Canceled {
			errCh <- fmt.Errorf("monitor: %w", err)
		}
	}()

	if b.watcher != nil {
		go func() {
			err := b.watcher.Run(ctx)
			if err != nil && err != context.Canceled {
				errCh <- fmt.Errorf("kol watcher: %w", err)
			}
		}()
	}

	if b.cfg.WSEndpoint != "" {
		go func() {
			if err := b.runPoolWatcher(ctx, rpc); err != nil && err != context.Canceled {
				errCh <- fmt.Errorf("pool watcher: %w", err)
			}
		}()
	}

	b.logger.Printf("bot started, poll interval %s", b.cfg.PollInterval)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// runPoolWatcher subscribes to AMM program logs so new pools are sampled
// from their first moments.
func (b *Bot) runPoolWatcher(ctx context.Context, rpc solana.RPCClient) error {
	ws, err := solana.NewWSClient(ctx, b.cfg.WSEndpoint, nil)
	if err != nil {
		return fmt.Errorf("create websocket client: %w", err)
	}
	defer ws.Close()

	watcher := solana.NewPoolWatcher(ws, rpc)
	go b.monitor.HandlePoolEvents(ctx, watcher.Events())

	return watcher.Run(ctx)
}

// buildNotifier assembles the notification fan-out: always the log sink,
// plus Telegram when configured.
func buildNotifier(cfg *config.Config, logger *log.Logger) notify.Notifier {
	logSink := notify.NewLogNotifier(log.New(os.Stdout, "", log.LstdFlags))
	if !cfg.TelegramEnabled() {
		return logSink
	}

	telegram := notify.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramChatID, logger)
	logger.Println("telegram notifications enabled")
	return notify.NewMulti(logSink, telegram)
}

// createStores selects storage backends per DSN: Postgres for opportunities,
// recommendations and KOL trades, ClickHouse for the sample archive, falling
// back to in-memory stores when a DSN is unset. Migrations run on connect.
func createStores(ctx context.Context, cfg *config.Config) (monitor.Stores, storage.KOLTradeStore, string, func(), error) {
	stores := monitor.Stores{
		Opportunities:   memory.NewOpportunityStore(),
		Recommendations: memory.NewRecommendationStore(),
		Samples:         memory.NewSampleArchive(),
	}
	var kolStore storage.KOLTradeStore = memory.NewKOLTradeStore()
	backend := "memory"
	cleanup := func() {}

	if cfg.PostgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return stores, nil, "", nil, fmt.Errorf("connect to postgres: %w", err)
		}
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return stores, nil, "", nil, fmt.Errorf("postgres migrations: %w", err)
		}

		stores.Opportunities = pgstore.NewOpportunityStore(pool)
		stores.Recommendations = pgstore.NewRecommendationStore(pool)
		kolStore = pgstore.NewKOLTradeStore(pool)
		backend = "postgres"
		cleanup = pool.Close
	}

	if cfg.ClickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickhouseDSN)
		if err != nil {
			cleanup()
			return stores, nil, "", nil, fmt.Errorf("clickhouse migrations: %w", err)
		}

		stores.Samples = chstore.NewSampleArchive(conn)
		if backend == "postgres" {
			backend = "postgres+clickhouse"
		} else {
			backend = "memory+clickhouse"
		}

		prev := cleanup
		cleanup = func() {
			conn.Close()
			prev()
		}
	}

	return stores, kolStore, backend, cleanup, nil
}

// poolTokenQuote resolves token symbols and USD prices from the pool feed.
// Prices come from USDC-quoted pools; tokens without one resolve with a
// zero price.
func poolTokenQuote(source feed.Source) kol.TokenQuote {
	return func(ctx context.Context, mint string) (string, float64, bool) {
		pools, err := source.Pools(ctx)
		if err != nil {
			return "", 0, false
		}

		symbol := ""
		price := 0.0
		found := false
		for i := range pools {
			p := &pools[i]
			if p.BaseToken.Mint != mint {
				continue
			}
			symbol = p.BaseToken.Symbol
			found = true
			if p.QuoteToken.Mint == domain.MintUSDC && p.BaseAmount > 0 {
				price = p.QuoteAmount / p.BaseAmount
				break
			}
		}
		if !found {
			return "", 0, false
		}
		return symbol, price, true
	}
}

// startHTTPServer serves health, status and metrics endpoints.
func (b *Bot) startHTTPServer(addr string) {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	mux.Handle("/metrics", observability.Handler())
	mux.HandleFunc("/status", b.handleStatus)

	b.logger.Printf("http server listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		b.logger.Printf("http server error: %v", err)
	}
}

// StatusResponse is the JSON body of the /status endpoint.
type StatusResponse struct {
	Status          string `json:"status"`
	Uptime          string `json:"uptime"`
	PoolsTracked    int    `json:"pools_tracked"`
	KOLWallets      int    `json:"kol_wallets"`
	StorageBackend  string `json:"storage_backend"`
	TelegramEnabled bool   `json:"telegram_enabled"`
}

func (b *Bot) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		Status:          "running",
		Uptime:          time.Since(b.started).String(),
		PoolsTracked:    b.analyzer.PoolCount(),
		KOLWallets:      len(b.cfg.KOLWallets),
		StorageBackend:  b.backend,
		TelegramEnabled: b.cfg.TelegramEnabled(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
