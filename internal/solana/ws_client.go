package solana

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// notifyBuffer absorbs log bursts while the watcher resolves transactions.
const notifyBuffer = 1024

// LogsFilter selects which transactions a logs subscription delivers.
type LogsFilter struct {
	// Mentions matches transactions that mention any of these accounts.
	// Empty means all transactions.
	Mentions []string
}

// LogNotification is one message from a logs subscription.
type LogNotification struct {
	Signature string
	Slot      int64
	Logs      []string
	Err       interface{}
}

// WSClientConfig configures the WebSocket log stream.
type WSClientConfig struct {
	// ReconnectDelay is the initial delay before a reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay caps the reconnect backoff.
	MaxReconnectDelay time.Duration
	// PingInterval is the keepalive ping spacing.
	PingInterval time.Duration
	// ReadTimeout bounds a single read, including the subscribe handshake.
	ReadTimeout time.Duration
	// WriteTimeout bounds a single write.
	WriteTimeout time.Duration
	// Logger receives connection-level events. Defaults to a discarding logger.
	Logger *log.Logger
}

// DefaultWSConfig returns the default stream configuration.
func DefaultWSConfig() WSClientConfig {
	return WSClientConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

// WSClient carries one logsSubscribe stream over a Solana WebSocket
// endpoint. The pool watcher follows a single AMM program, so one client
// holds one subscription and re-establishes it itself after a reconnect,
// keeping the stream continuous across connection drops.
type WSClient struct {
	endpoint string
	config   WSClientConfig
	logger   *log.Logger

	connMu sync.Mutex
	conn   *websocket.Conn

	closed atomic.Bool
	reqID  atomic.Uint64

	subMu  sync.Mutex
	filter LogsFilter
	subID  int64
	notifs chan LogNotification

	done chan struct{}
	wg   sync.WaitGroup
}

// NewWSClient connects to the endpoint. A nil config uses DefaultWSConfig.
func NewWSClient(ctx context.Context, endpoint string, config *WSClientConfig) (*WSClient, error) {
	cfg := DefaultWSConfig()
	if config != nil {
		cfg = *config
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	c := &WSClient{
		endpoint: endpoint,
		config:   cfg,
		logger:   logger,
		done:     make(chan struct{}),
	}

	if err := c.dial(ctx); err != nil {
		return nil, err
	}

	c.wg.Add(1)
	go c.pingLoop()

	return c, nil
}

// SubscribeLogs opens the client's log subscription and returns its
// notification channel. The channel closes when the client closes. A
// WSClient holds exactly one subscription; a second call fails.
func (c *WSClient) SubscribeLogs(ctx context.Context, filter LogsFilter) (<-chan LogNotification, error) {
	if c.closed.Load() {
		return nil, fmt.Errorf("client closed")
	}

	c.subMu.Lock()
	if c.notifs != nil {
		c.subMu.Unlock()
		return nil, fmt.Errorf("already subscribed")
	}
	c.filter = filter
	c.notifs = make(chan LogNotification, notifyBuffer)
	notifs := c.notifs
	c.subMu.Unlock()

	subID, err := c.subscribe(ctx)
	if err != nil {
		return nil, fmt.Errorf("logsSubscribe: %w", err)
	}
	c.setSubID(subID)

	c.wg.Add(1)
	go c.readLoop()

	return notifs, nil
}

// Close shuts the stream down and closes the notification channel.
// Safe to call more than once.
func (c *WSClient) Close() error {
	if c.closed.Swap(true) {
		return nil
	}

	close(c.done)

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.conn.Close()
	}
	c.connMu.Unlock()

	c.wg.Wait()

	c.subMu.Lock()
	if c.notifs != nil {
		close(c.notifs)
		c.notifs = nil
	}
	c.subMu.Unlock()

	return nil
}

// dial replaces the connection.
func (c *WSClient) dial(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, c.endpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.Close()
	}
	c.conn = conn
	c.connMu.Unlock()
	return nil
}

// subscribe writes the logsSubscribe request and reads frames until the
// matching confirmation arrives. Only one goroutine reads at a time: the
// initial call happens before readLoop starts, reconnect calls happen
// inside it.
func (c *WSClient) subscribe(ctx context.Context) (int64, error) {
	reqID := c.reqID.Add(1)

	var mentions interface{} = "all"
	if len(c.filter.Mentions) > 0 {
		mentions = map[string]interface{}{"mentions": c.filter.Mentions}
	}

	req := wsRequest{
		JSONRPC: "2.0",
		ID:      reqID,
		Method:  "logsSubscribe",
		Params: []interface{}{
			mentions,
			map[string]string{"commitment": "confirmed"},
		},
	}

	c.connMu.Lock()
	conn := c.conn
	if conn == nil {
		c.connMu.Unlock()
		return 0, fmt.Errorf("not connected")
	}
	conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	err := conn.WriteJSON(req)
	c.connMu.Unlock()
	if err != nil {
		return 0, fmt.Errorf("write subscribe: %w", err)
	}

	deadline := time.Now().Add(c.config.ReadTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	for {
		select {
		case <-c.done:
			return 0, fmt.Errorf("client closed")
		case <-ctx.Done():
			return 0, ctx.Err()
		default:
		}

		conn.SetReadDeadline(deadline)
		_, message, err := conn.ReadMessage()
		if err != nil {
			return 0, fmt.Errorf("read subscribe reply: %w", err)
		}

		var reply wsSubscribeReply
		if err := json.Unmarshal(message, &reply); err != nil || reply.ID != reqID {
			// Stray frame from before the reconnect; skip it.
			continue
		}
		if reply.Error != nil {
			return 0, fmt.Errorf("subscribe rejected: code=%d %s", reply.Error.Code, reply.Error.Message)
		}
		if reply.Result == nil {
			return 0, fmt.Errorf("subscribe reply missing subscription id")
		}
		return *reply.Result, nil
	}
}

func (c *WSClient) setSubID(id int64) {
	c.subMu.Lock()
	c.subID = id
	c.subMu.Unlock()
}

// readLoop reads notifications and drives reconnect with exponential
// backoff. The subscription is re-established on every new connection.
func (c *WSClient) readLoop() {
	defer c.wg.Done()

	delay := c.config.ReconnectDelay

	for {
		c.connMu.Lock()
		conn := c.conn
		c.connMu.Unlock()

		conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))
		_, message, err := conn.ReadMessage()
		if err != nil {
			if c.closed.Load() {
				return
			}

			c.logger.Printf("[ws] connection lost, reconnecting in %s: %v", delay, err)
			if !c.sleep(delay) {
				return
			}
			delay *= 2
			if delay > c.config.MaxReconnectDelay {
				delay = c.config.MaxReconnectDelay
			}

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			err := c.dial(ctx)
			if err == nil {
				var subID int64
				subID, err = c.subscribe(ctx)
				if err == nil {
					c.setSubID(subID)
					delay = c.config.ReconnectDelay
					c.logger.Printf("[ws] resubscribed, subscription %d", subID)
				}
			}
			cancel()
			if err != nil && !c.closed.Load() {
				c.logger.Printf("[ws] reconnect failed: %v", err)
			}
			continue
		}

		c.handleMessage(message)
	}
}

// sleep waits for d or shutdown; reports false on shutdown.
func (c *WSClient) sleep(d time.Duration) bool {
	select {
	case <-c.done:
		return false
	case <-time.After(d):
		return true
	}
}

// handleMessage dispatches one frame from the established stream.
func (c *WSClient) handleMessage(message []byte) {
	var env wsEnvelope
	if err := json.Unmarshal(message, &env); err != nil {
		return
	}

	if env.Error != nil {
		c.logger.Printf("[ws] error frame: code=%d msg=%s", env.Error.Code, env.Error.Message)
		return
	}
	if env.Method != "logsNotification" || env.Params == nil {
		return
	}

	c.subMu.Lock()
	subID := c.subID
	notifs := c.notifs
	c.subMu.Unlock()

	if notifs == nil || env.Params.Subscription != subID {
		// Notification for a subscription that died with an old connection.
		return
	}

	value := env.Params.Result.Value
	notif := LogNotification{
		Signature: value.Signature,
		Slot:      env.Params.Result.Context.Slot,
		Logs:      value.Logs,
		Err:       value.Err,
	}

	select {
	case notifs <- notif:
	case <-c.done:
	}
}

// pingLoop keeps the connection alive between notifications.
func (c *WSClient) pingLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.connMu.Lock()
			if c.conn != nil {
				c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
				// A failed ping surfaces as a read error; readLoop reconnects.
				c.conn.WriteMessage(websocket.PingMessage, nil)
			}
			c.connMu.Unlock()
		}
	}
}

// Wire frames.

type wsRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params,omitempty"`
}

type wsError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type wsSubscribeReply struct {
	ID     uint64   `json:"id"`
	Result *int64   `json:"result"`
	Error  *wsError `json:"error"`
}

type wsEnvelope struct {
	Method string        `json:"method"`
	Params *wsLogsParams `json:"params"`
	Error  *wsError      `json:"error"`
}

type wsLogsParams struct {
	Subscription int64 `json:"subscription"`
	Result       struct {
		Context struct {
			Slot int64 `json:"slot"`
		} `json:"context"`
		Value struct {
			Signature string      `json:"signature"`
			Logs      []string    `json:"logs"`
			Err       interface{} `json:"err"`
		} `json:"value"`
	} `json:"result"`
}
