package domain

import "time"

// MinScore and MaxScore bound every WellbeingScore.
const (
	MinScore = 0
	MaxScore = 100

	// NeutralScore is the yesterday score assumed before any history exists.
	NeutralScore = 50
)

// WellbeingScore is the daily mood estimate in [0,100].
type WellbeingScore int

// ClampScore hard-limits n to [MinScore, MaxScore].
func ClampScore(n int) WellbeingScore {
	if n < MinScore {
		return MinScore
	}
	if n > MaxScore {
		return MaxScore
	}
	return WellbeingScore(n)
}

// ScoreContext carries the non-slider inputs of a score computation.
type ScoreContext struct {
	Weekday       time.Weekday
	Address       string
	PreviousScore int
}

// IsWeekday reports whether wd is Monday through Friday.
func IsWeekday(wd time.Weekday) bool {
	return wd >= time.Monday && wd <= time.Friday
}

// DayState is the persisted per-day bookkeeping of the wellbeing service.
// LastCalculationDate is formatted with DateKey.
type DayState struct {
	LastCalculationDate string
	TodayScore          WellbeingScore
	YesterdayScore      WellbeingScore
}

// DateKey formats t as the calendar-day key used for date gating.
func DateKey(t time.Time) string {
	return t.Format(time.DateOnly)
}
