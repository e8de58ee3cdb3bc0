package ports

import (
	"context"

	"github.com/ewilliams-labs/nekolog/internal/core/domain"
)

// Notifier hands reminders to the host platform. Delivery is the host's job.
type Notifier interface {
	Schedule(ctx context.Context, r domain.Reminder) error
	SetBadge(ctx context.Context, count int) error
}
