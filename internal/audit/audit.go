// Package audit publishes the outcome of every sign-in and sign-up attempt on
// the event bus and logs them from a subscriber, keeping the request path free
// of diagnostic work.
package audit

import (
	"context"
	"log/slog"
	"sync"

	"github.com/wellnash/wellnash/internal/domain"
	"github.com/wellnash/wellnash/internal/pubsub"
)

// AttemptEvent is the topic carrying domain.AttemptEvent payloads.
var AttemptEvent = pubsub.NewEvent[domain.AttemptEvent]("auth.attempt")

// Publisher adapts a pubsub.Publisher to authform.EventPublisher.
type Publisher struct {
	pub pubsub.Publisher
}

// NewPublisher creates a Publisher writing to pub.
func NewPublisher(pub pubsub.Publisher) *Publisher {
	return &Publisher{pub: pub}
}

// PublishAttempt implements authform.EventPublisher.
func (p *Publisher) PublishAttempt(ctx context.Context, evt domain.AttemptEvent) error {
	return pubsub.Publish(ctx, p.pub, AttemptEvent, evt)
}

// Stats counts attempt outcomes seen by a Logger.
type Stats struct {
	Succeeded int `json:"succeeded"`
	Rejected  int `json:"rejected"`
	Faults    int `json:"faults"`
}

// Logger subscribes to attempt events and writes one structured log line per
// attempt.
type Logger struct {
	logger *slog.Logger

	mu    sync.Mutex
	stats Stats
}

// NewLogger creates a Logger writing to logger (slog.Default when nil).
func NewLogger(logger *slog.Logger) *Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logger{logger: logger.With("component", "audit")}
}

// Start subscribes to attempt events until ctx is canceled.
func (l *Logger) Start(ctx context.Context, sub pubsub.Subscriber) error {
	return pubsub.Subscribe(ctx, sub, AttemptEvent, l.handle)
}

func (l *Logger) handle(ctx context.Context, evt domain.AttemptEvent) error {
	attrs := []any{
		"form_id", evt.FormID,
		"mode", evt.Mode,
		"email", evt.Email,
		"outcome", evt.Outcome,
		"duration_ms", evt.Duration.Milliseconds(),
	}

	l.mu.Lock()
	switch evt.Outcome {
	case domain.OutcomeSucceeded:
		l.stats.Succeeded++
	case domain.OutcomeRejected:
		l.stats.Rejected++
	case domain.OutcomeFault:
		l.stats.Faults++
	}
	l.mu.Unlock()

	switch evt.Outcome {
	case domain.OutcomeSucceeded:
		l.logger.InfoContext(ctx, "Auth attempt succeeded", append(attrs, "redirect", evt.Redirect)...)
	case domain.OutcomeRejected:
		l.logger.WarnContext(ctx, "Auth attempt rejected", append(attrs, "message", evt.Message)...)
	default:
		l.logger.ErrorContext(ctx, "Auth attempt failed unexpectedly", append(attrs, "error", evt.Message)...)
	}
	return nil
}

// Stats returns a snapshot of the counters.
func (l *Logger) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats
}
