package notify

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"solana-flow-bot/internal/domain"
)

// DefaultTelegramTimeout bounds a single sendMessage call.
const DefaultTelegramTimeout = 10 * time.Second

// TelegramNotifier sends alerts to a Telegram chat via the Bot API. When
// token or chat ID is missing it runs disabled: calls succeed but nothing
// is sent.
type TelegramNotifier struct {
	token    string
	chatID   string
	baseURL  string
	client   *http.Client
	logger   *log.Logger
	disabled bool
}

var _ Notifier = (*TelegramNotifier)(nil)

// TelegramOption configures TelegramNotifier.
type TelegramOption func(*TelegramNotifier)

// WithTelegramHTTPClient sets a custom http.Client.
func WithTelegramHTTPClient(client *http.Client) TelegramOption {
	return func(n *TelegramNotifier) {
		n.client = client
	}
}

// WithTelegramBaseURL overrides the Bot API base URL. Used in tests.
func WithTelegramBaseURL(baseURL string) TelegramOption {
	return func(n *TelegramNotifier) {
		n.baseURL = baseURL
	}
}

// NewTelegramNotifier creates a notifier for the given bot token and chat.
func NewTelegramNotifier(token, chatID string, logger *log.Logger, opts ...TelegramOption) *TelegramNotifier {
	n := &TelegramNotifier{
		token:   token,
		chatID:  chatID,
		baseURL: "https://api.telegram.org",
		client:  &http.Client{Timeout: DefaultTelegramTimeout},
		logger:  logger,
	}
	for _, opt := range opts {
		opt(n)
	}

	if token == "" || token == "disabled" || chatID == "" || chatID == "disabled" {
		n.disabled = true
		logger.Printf("[telegram] token or chat ID not configured, notifications disabled")
	}

	return n
}

// Disabled reports whether the notifier is a no-op.
func (n *TelegramNotifier) Disabled() bool {
	return n.disabled
}

// send delivers one HTML-formatted message.
func (n *TelegramNotifier) send(ctx context.Context, text string) error {
	if n.disabled {
		return nil
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.token)
	form := url.Values{
		"chat_id":    {n.chatID},
		"text":       {text},
		"parse_mode": {"HTML"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("telegram status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}

func (n *TelegramNotifier) NotifyOpportunity(ctx context.Context, opp *domain.PoolOpportunity) error {
	return n.send(ctx, FormatOpportunity(opp))
}

func (n *TelegramNotifier) NotifyRecommendation(ctx context.Context, rec *domain.TradeRecommendation) error {
	return n.send(ctx, FormatRecommendation(rec))
}

func (n *TelegramNotifier) NotifyKOLAlert(ctx context.Context, alert *domain.KOLAlert) error {
	return n.send(ctx, FormatKOLAlert(alert))
}
