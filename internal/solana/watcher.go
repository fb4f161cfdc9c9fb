package solana

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
)

// RaydiumAMMV4 is the Raydium AMM v4 program ID.
const RaydiumAMMV4 = "675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8"

// initialize2 places the AMM id at this position in the account list.
const ammIDAccountIndex = 4

// PoolEvent signals a newly initialized AMM pool.
type PoolEvent struct {
	PoolID      string
	TxSignature string
	Slot        int64
}

// LogSubscriber is the subscription surface the watcher needs.
type LogSubscriber interface {
	SubscribeLogs(ctx context.Context, filter LogsFilter) (<-chan LogNotification, error)
	Close() error
}

var _ LogSubscriber = (*WSClient)(nil)

// PoolWatcher subscribes to AMM program logs and emits pool-creation
// events, so sampling can begin the moment a pool goes live instead of
// waiting for the next aggregator refresh.
type PoolWatcher struct {
	ws     LogSubscriber
	rpc    RPCClient
	logger *log.Logger

	programID string
	events    chan PoolEvent
}

// WatcherOption configures PoolWatcher.
type WatcherOption func(*PoolWatcher)

// WithProgramID overrides the watched AMM program.
func WithProgramID(id string) WatcherOption {
	return func(w *PoolWatcher) {
		w.programID = id
	}
}

// WithWatcherLogger sets the watcher's logger.
func WithWatcherLogger(logger *log.Logger) WatcherOption {
	return func(w *PoolWatcher) {
		w.logger = logger
	}
}

// NewPoolWatcher creates a watcher over the given WebSocket and RPC clients.
func NewPoolWatcher(ws LogSubscriber, rpc RPCClient, opts ...WatcherOption) *PoolWatcher {
	w := &PoolWatcher{
		ws:        ws,
		rpc:       rpc,
		logger:    log.New(io.Discard, "", 0),
		programID: RaydiumAMMV4,
		events:    make(chan PoolEvent, 256),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Events returns the pool-creation event channel. It is closed when Run
// returns.
func (w *PoolWatcher) Events() <-chan PoolEvent {
	return w.events
}

// Run subscribes and processes notifications until ctx is cancelled or the
// subscription channel closes.
func (w *PoolWatcher) Run(ctx context.Context) error {
	defer close(w.events)

	notifs, err := w.ws.SubscribeLogs(ctx, LogsFilter{Mentions: []string{w.programID}})
	if err != nil {
		return fmt.Errorf("subscribe logs: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case notif, ok := <-notifs:
			if !ok {
				return nil
			}
			w.handleNotification(ctx, notif)
		}
	}
}

// handleNotification checks a log notification for pool initialization and
// resolves the pool address from the transaction's account keys.
func (w *PoolWatcher) handleNotification(ctx context.Context, notif LogNotification) {
	if notif.Err != nil {
		return // failed transaction
	}
	if !isPoolInit(notif.Logs) {
		return
	}

	tx, err := w.rpc.GetTransaction(ctx, notif.Signature)
	if err != nil {
		w.logger.Printf("[watcher] get transaction %s: %v", notif.Signature, err)
		return
	}
	if tx == nil || tx.Message == nil || len(tx.Message.AccountKeys) <= ammIDAccountIndex {
		return
	}

	event := PoolEvent{
		PoolID:      tx.Message.AccountKeys[ammIDAccountIndex],
		TxSignature: notif.Signature,
		Slot:        notif.Slot,
	}

	select {
	case w.events <- event:
	case <-ctx.Done():
	}
}

// isPoolInit reports whether the logs contain an AMM pool initialization.
func isPoolInit(logs []string) bool {
	for _, line := range logs {
		if strings.Contains(line, "initialize2") || strings.Contains(line, "Instruction: Initialize2") {
			return true
		}
	}
	return false
}
