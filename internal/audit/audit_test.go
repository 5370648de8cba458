package audit

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wellnash/wellnash/internal/domain"
	"github.com/wellnash/wellnash/internal/pubsub"
)

// syncBuffer guards a bytes.Buffer written from the subscriber goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestAuditLogger_RecordsPublishedAttempts(t *testing.T) {
	bridge := pubsub.NewWatermillBridge()
	t.Cleanup(func() { _ = bridge.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var out syncBuffer
	l := NewLogger(slog.New(slog.NewTextHandler(&out, nil)))
	require.NoError(t, l.Start(ctx, bridge))

	pub := NewPublisher(bridge)
	require.NoError(t, pub.PublishAttempt(ctx, domain.AttemptEvent{FormID: "f1", Mode: "sign_in", Outcome: domain.OutcomeSucceeded, Redirect: "/dashboard"}))
	require.NoError(t, pub.PublishAttempt(ctx, domain.AttemptEvent{FormID: "f2", Mode: "sign_up", Outcome: domain.OutcomeRejected, Message: "Email already in use"}))
	require.NoError(t, pub.PublishAttempt(ctx, domain.AttemptEvent{FormID: "f3", Mode: "sign_in", Outcome: domain.OutcomeFault, Message: "dial tcp"}))

	require.Eventually(t, func() bool {
		s := l.Stats()
		return s.Succeeded == 1 && s.Rejected == 1 && s.Faults == 1
	}, 2*time.Second, 5*time.Millisecond)

	logs := out.String()
	assert.Contains(t, logs, "Auth attempt succeeded")
	assert.Contains(t, logs, `message="Email already in use"`)
	assert.Contains(t, logs, "component=audit")
}
