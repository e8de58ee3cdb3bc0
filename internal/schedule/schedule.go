// Package schedule computes daily fire instants and runs self-re-arming
// timers against the wall clock.
package schedule

import (
	"time"

	"github.com/ewilliams-labs/nekolog/internal/core/domain"
)

// Default morning report time of day.
const (
	DefaultMorningHour   = 5
	DefaultMorningMinute = 0
)

// NextDaily returns the next instant strictly after now whose local time of
// day is hour:minute:00 in now's location.
func NextDaily(now time.Time, hour, minute int) time.Time {
	y, m, d := now.Date()
	next := time.Date(y, m, d, hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = time.Date(y, m, d+1, hour, minute, 0, 0, now.Location())
	}
	return next
}

// NextMidnight returns the start of the day following now, in now's location.
func NextMidnight(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, now.Location())
}

// Plan returns the next morning and midnight fire instants after now.
func Plan(now time.Time, morningHour, morningMinute int) domain.ReminderSchedule {
	return domain.ReminderSchedule{
		NextMorningFire:  NextDaily(now, morningHour, morningMinute),
		NextMidnightFire: NextMidnight(now),
	}
}
