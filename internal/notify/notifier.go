// Package notify delivers opportunity and recommendation alerts.
package notify

import (
	"context"
	"log"
	"sync"

	"solana-flow-bot/internal/domain"
)

// Notifier delivers alerts to one sink.
type Notifier interface {
	// NotifyOpportunity reports a scored pool opportunity.
	NotifyOpportunity(ctx context.Context, opp *domain.PoolOpportunity) error

	// NotifyRecommendation reports a trade recommendation.
	NotifyRecommendation(ctx context.Context, rec *domain.TradeRecommendation) error

	// NotifyKOLAlert reports a significant KOL trade.
	NotifyKOLAlert(ctx context.Context, alert *domain.KOLAlert) error
}

// LogNotifier writes alerts to a standard logger.
type LogNotifier struct {
	logger *log.Logger
}

var _ Notifier = (*LogNotifier)(nil)

// NewLogNotifier creates a notifier over logger.
func NewLogNotifier(logger *log.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) NotifyOpportunity(_ context.Context, opp *domain.PoolOpportunity) error {
	n.logger.Printf("[notify] opportunity %s/%s pool=%s pattern=%s rate=%.2f score=%.1f",
		opp.BaseSymbol, opp.QuoteSymbol, opp.PoolID, opp.Pattern.Pattern, opp.Pattern.Rate, opp.Score)
	return nil
}

func (n *LogNotifier) NotifyRecommendation(_ context.Context, rec *domain.TradeRecommendation) error {
	n.logger.Printf("[notify] recommendation %s %s decision=%s confidence=%.1f risk=%s",
		rec.Recommendation, rec.TokenSymbol, rec.Decision, rec.Confidence, rec.RiskLevel)
	return nil
}

func (n *LogNotifier) NotifyKOLAlert(_ context.Context, alert *domain.KOLAlert) error {
	action := "sold"
	if alert.Trade.IsBuy {
		action = "bought"
	}
	n.logger.Printf("[notify] kol %s %s %s $%.2f confidence=%.2f",
		alert.KOLName, action, alert.Trade.TokenSymbol, alert.Trade.ValueUSD(), alert.Confidence)
	return nil
}

// Multi fans out to several notifiers. Delivery continues past failures;
// the first error is returned.
type Multi struct {
	notifiers []Notifier
}

var _ Notifier = (*Multi)(nil)

// NewMulti creates a fan-out notifier.
func NewMulti(notifiers ...Notifier) *Multi {
	return &Multi{notifiers: notifiers}
}

func (m *Multi) NotifyOpportunity(ctx context.Context, opp *domain.PoolOpportunity) error {
	var firstErr error
	for _, n := range m.notifiers {
		if err := n.NotifyOpportunity(ctx, opp); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m *Multi) NotifyRecommendation(ctx context.Context, rec *domain.TradeRecommendation) error {
	var firstErr error
	for _, n := range m.notifiers {
		if err := n.NotifyRecommendation(ctx, rec); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m *Multi) NotifyKOLAlert(ctx context.Context, alert *domain.KOLAlert) error {
	var firstErr error
	for _, n := range m.notifiers {
		if err := n.NotifyKOLAlert(ctx, alert); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Recorder captures alerts for tests.
type Recorder struct {
	mu              sync.Mutex
	Opportunities   []*domain.PoolOpportunity
	Recommendations []*domain.TradeRecommendation
	KOLAlerts       []*domain.KOLAlert

	// Err, when set, is returned by every call.
	Err error
}

var _ Notifier = (*Recorder)(nil)

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) NotifyOpportunity(_ context.Context, opp *domain.PoolOpportunity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.Opportunities = append(r.Opportunities, opp)
	return nil
}

func (r *Recorder) NotifyRecommendation(_ context.Context, rec *domain.TradeRecommendation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.Recommendations = append(r.Recommendations, rec)
	return nil
}

func (r *Recorder) NotifyKOLAlert(_ context.Context, alert *domain.KOLAlert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.KOLAlerts = append(r.KOLAlerts, alert)
	return nil
}
