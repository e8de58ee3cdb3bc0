package rest

import (
	"net/http"
	"strings"
	"time"

	"github.com/ewilliams-labs/nekolog/internal/core/domain"
)

// ScoreRequest asks for a one-off score. Sliders defaults to the stored
// values and Weekday to the current day.
type ScoreRequest struct {
	Sliders       []float64 `json:"sliders"`
	Weekday       string    `json:"weekday"`
	Address       string    `json:"address"`
	PreviousScore *int      `json:"previous_score"`
}

// SlidersBody carries the six slider values in dimension order.
type SlidersBody struct {
	Values []float64 `json:"values"`
}

// Score handles POST /score.
func (h *Handler) Score(w http.ResponseWriter, r *http.Request) {
	if h.deps.Scorer == nil {
		notConfigured(w, "scorer")
		return
	}
	var req ScoreRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	sliders := domain.DefaultSliderScores
	switch {
	case len(req.Sliders) > 0:
		s, err := domain.NewSliderScores(req.Sliders...)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		sliders = s
	case h.deps.Wellbeing != nil:
		s, err := h.deps.Wellbeing.Sliders(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		sliders = s
	}

	weekday := h.deps.Now().Weekday()
	if req.Weekday != "" {
		wd, ok := parseWeekday(req.Weekday)
		if !ok {
			writeErrorWithCode(w, http.StatusBadRequest, "unknown weekday "+req.Weekday, "INVALID_WEEKDAY")
			return
		}
		weekday = wd
	}
	previous := domain.NeutralScore
	if req.PreviousScore != nil {
		previous = *req.PreviousScore
	}

	b := h.deps.Scorer.Breakdown(sliders, domain.ScoreContext{
		Weekday:       weekday,
		Address:       req.Address,
		PreviousScore: previous,
	})
	writeJSON(w, http.StatusOK, b)
}

// Today handles GET /today.
func (h *Handler) Today(w http.ResponseWriter, r *http.Request) {
	if h.deps.Wellbeing == nil {
		notConfigured(w, "wellbeing")
		return
	}
	report, err := h.deps.Wellbeing.Today(r.Context(), h.deps.Now())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// Foreground handles POST /foreground, sent when the app comes to the front.
func (h *Handler) Foreground(w http.ResponseWriter, r *http.Request) {
	if h.deps.Wellbeing == nil {
		notConfigured(w, "wellbeing")
		return
	}
	report, err := h.deps.Wellbeing.Foreground(r.Context(), h.deps.Now())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// Reset handles POST /reset, the manual version of the midnight reset.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	if h.deps.Wellbeing == nil {
		notConfigured(w, "wellbeing")
		return
	}
	if err := h.deps.Wellbeing.ResetDay(r.Context()); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetSliders handles GET /sliders.
func (h *Handler) GetSliders(w http.ResponseWriter, r *http.Request) {
	if h.deps.Wellbeing == nil {
		notConfigured(w, "wellbeing")
		return
	}
	s, err := h.deps.Wellbeing.Sliders(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SlidersBody{Values: s[:]})
}

// PutSliders handles PUT /sliders. Values are clamped to [0,100].
func (h *Handler) PutSliders(w http.ResponseWriter, r *http.Request) {
	if h.deps.Wellbeing == nil {
		notConfigured(w, "wellbeing")
		return
	}
	var body SlidersBody
	if !decodeJSON(w, r, &body) {
		return
	}
	s, err := domain.NewSliderScores(body.Values...)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if err := h.deps.Wellbeing.SaveSliders(r.Context(), s); err != nil {
		writeServiceError(w, err)
		return
	}
	saved, err := h.deps.Wellbeing.Sliders(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SlidersBody{Values: saved[:]})
}

// Schedule handles GET /schedule.
func (h *Handler) Schedule(w http.ResponseWriter, r *http.Request) {
	if h.deps.Plan == nil {
		notConfigured(w, "scheduler")
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Plan(h.deps.Now()))
}

func parseWeekday(s string) (time.Weekday, bool) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := d.String()
		if strings.EqualFold(s, name) || strings.EqualFold(s, name[:3]) {
			return d, true
		}
	}
	return 0, false
}
