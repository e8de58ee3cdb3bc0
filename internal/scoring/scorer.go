// Package scoring turns slider values and daily context into a wellbeing score.
package scoring

import (
	"strings"

	"github.com/ewilliams-labs/nekolog/internal/core/domain"
)

const (
	weekdayPenalty  = -5.0
	weekendBonus    = 5.0
	yesterdayWeight = 0.4
)

// LocationRule adds Adjustment when an address contains Substring.
type LocationRule struct {
	Substring  string  `mapstructure:"substring" yaml:"substring" json:"substring"`
	Adjustment float64 `mapstructure:"adjustment" yaml:"adjustment" json:"adjustment"`
}

// DefaultLocations is the built-in location table.
var DefaultLocations = []LocationRule{
	{Substring: "Tokyo", Adjustment: -3},
	{Substring: "Osaka", Adjustment: 2},
}

// Breakdown lists the terms that make up a score.
type Breakdown struct {
	Base         float64               `json:"base"`
	WeekdayAdj   float64               `json:"weekday_adj"`
	LocationAdj  float64               `json:"location_adj"`
	YesterdayAdj float64               `json:"yesterday_adj"`
	Total        float64               `json:"total"`
	Score        domain.WellbeingScore `json:"score"`
}

// Scorer computes wellbeing scores. The zero value has an empty location
// table; use New for the defaults.
type Scorer struct {
	locations []LocationRule
}

// New returns a Scorer using locations in order. A nil table selects
// DefaultLocations.
func New(locations []LocationRule) *Scorer {
	if locations == nil {
		locations = DefaultLocations
	}
	cp := make([]LocationRule, len(locations))
	copy(cp, locations)
	return &Scorer{locations: cp}
}

// Score returns the clamped wellbeing score.
func (s *Scorer) Score(sliders domain.SliderScores, ctx domain.ScoreContext) domain.WellbeingScore {
	return s.Breakdown(sliders, ctx).Score
}

// Breakdown computes every term of the score. The total is truncated toward
// zero before clamping.
func (s *Scorer) Breakdown(sliders domain.SliderScores, ctx domain.ScoreContext) Breakdown {
	b := Breakdown{
		Base:         sliders.Mean(),
		WeekdayAdj:   weekdayAdjustment(ctx),
		LocationAdj:  s.locationAdjustment(ctx.Address),
		YesterdayAdj: float64(ctx.PreviousScore-domain.NeutralScore) * yesterdayWeight,
	}
	b.Total = b.Base + b.WeekdayAdj + b.LocationAdj + b.YesterdayAdj
	b.Score = domain.ClampScore(int(b.Total))
	return b
}

func weekdayAdjustment(ctx domain.ScoreContext) float64 {
	if domain.IsWeekday(ctx.Weekday) {
		return weekdayPenalty
	}
	return weekendBonus
}

// first match wins; matching is case-sensitive
func (s *Scorer) locationAdjustment(address string) float64 {
	if address == "" {
		return 0
	}
	for _, rule := range s.locations {
		if rule.Substring != "" && strings.Contains(address, rule.Substring) {
			return rule.Adjustment
		}
	}
	return 0
}
