// Package notify provides Notifier adapters. Delivery itself belongs to the
// host platform; these adapters record and log what would be delivered.
package notify

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/ewilliams-labs/nekolog/internal/core/domain"
	"github.com/ewilliams-labs/nekolog/internal/core/ports"
)

// LogNotifier writes schedule requests and badge changes to a logger.
type LogNotifier struct {
	logger *zap.Logger
}

var _ ports.Notifier = (*LogNotifier)(nil)

// NewLogNotifier returns a LogNotifier.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

// Schedule logs r.
func (n *LogNotifier) Schedule(_ context.Context, r domain.Reminder) error {
	n.logger.Info("notification scheduled",
		zap.String("id", r.ID),
		zap.String("title", r.Title),
		zap.String("body", r.Body),
		zap.Int("hour", r.Hour),
		zap.Int("minute", r.Minute),
		zap.Bool("repeats", r.Repeats))
	return nil
}

// SetBadge logs the badge count.
func (n *LogNotifier) SetBadge(_ context.Context, count int) error {
	n.logger.Info("badge updated", zap.Int("count", count))
	return nil
}

// Recorder keeps the latest request per reminder ID and the current badge.
// Scheduling the same ID again replaces the earlier request.
type Recorder struct {
	mu        sync.Mutex
	reminders map[string]domain.Reminder
	order     []string
	badge     int
	next      ports.Notifier
}

var _ ports.Notifier = (*Recorder)(nil)

// NewRecorder returns a Recorder forwarding to next when it is non-nil.
func NewRecorder(next ports.Notifier) *Recorder {
	return &Recorder{reminders: map[string]domain.Reminder{}, next: next}
}

// Schedule records r.
func (n *Recorder) Schedule(ctx context.Context, r domain.Reminder) error {
	n.mu.Lock()
	if _, ok := n.reminders[r.ID]; !ok {
		n.order = append(n.order, r.ID)
	}
	n.reminders[r.ID] = r
	n.mu.Unlock()

	if n.next != nil {
		return n.next.Schedule(ctx, r)
	}
	return nil
}

// SetBadge records count.
func (n *Recorder) SetBadge(ctx context.Context, count int) error {
	n.mu.Lock()
	n.badge = count
	n.mu.Unlock()

	if n.next != nil {
		return n.next.SetBadge(ctx, count)
	}
	return nil
}

// Reminders returns the pending requests in first-scheduled order.
func (n *Recorder) Reminders() []domain.Reminder {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]domain.Reminder, 0, len(n.order))
	for _, id := range n.order {
		out = append(out, n.reminders[id])
	}
	return out
}

// Reminder returns the request scheduled under id.
func (n *Recorder) Reminder(id string) (domain.Reminder, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	r, ok := n.reminders[id]
	return r, ok
}

// Badge returns the current badge count.
func (n *Recorder) Badge() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.badge
}
