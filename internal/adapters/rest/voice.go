package rest

import (
	"net/http"

	"github.com/ewilliams-labs/nekolog/internal/audio"
	"github.com/ewilliams-labs/nekolog/internal/core/domain"
)

// ClassifyResponse is the phrase picked for a recording.
type ClassifyResponse struct {
	Features   domain.AudioFeatures `json:"features"`
	Phrase     string               `json:"phrase"`
	Candidates []string             `json:"candidates"`
}

// TextBody is a single free-text field.
type TextBody struct {
	Text string `json:"text"`
}

// Classify handles POST /classify with an AudioFeatures body.
func (h *Handler) Classify(w http.ResponseWriter, r *http.Request) {
	if h.deps.Classifier == nil {
		notConfigured(w, "classifier")
		return
	}
	var f domain.AudioFeatures
	if !decodeJSON(w, r, &f) {
		return
	}
	writeJSON(w, http.StatusOK, h.classify(f))
}

// Listen handles POST /listen with an MP3 body. The whole clip is one
// recording session.
func (h *Handler) Listen(w http.ResponseWriter, r *http.Request) {
	if h.deps.Classifier == nil {
		notConfigured(w, "classifier")
		return
	}
	body := http.MaxBytesReader(w, r.Body, maxUploadBytes)
	src, err := audio.NewMP3Source(body, h.deps.BlockSize)
	if err != nil {
		writeErrorWithCode(w, http.StatusBadRequest, err.Error(), "INVALID_AUDIO")
		return
	}
	f, err := audio.Analyze(r.Context(), src, h.logger)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := src.Err(); err != nil {
		writeErrorWithCode(w, http.StatusBadRequest, err.Error(), "INVALID_AUDIO")
		return
	}
	writeJSON(w, http.StatusOK, h.classify(f))
}

func (h *Handler) classify(f domain.AudioFeatures) ClassifyResponse {
	return ClassifyResponse{
		Features:   f,
		Phrase:     h.deps.Classifier.Classify(f),
		Candidates: h.deps.Classifier.Candidates(f),
	}
}

// Reply handles POST /reply.
func (h *Handler) Reply(w http.ResponseWriter, r *http.Request) {
	if h.deps.Assistant == nil {
		notConfigured(w, "assistant")
		return
	}
	var body TextBody
	if !decodeJSON(w, r, &body) {
		return
	}
	reply, err := h.deps.Assistant.Reply(r.Context(), body.Text)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, TextBody{Text: reply})
}

// Weather handles GET /weather?location=.
func (h *Handler) Weather(w http.ResponseWriter, r *http.Request) {
	if h.deps.Assistant == nil {
		notConfigured(w, "assistant")
		return
	}
	location := r.URL.Query().Get("location")
	if location == "" {
		writeError(w, http.StatusBadRequest, "location is required")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"location": location,
		"weather":  h.deps.Assistant.Weather(r.Context(), location),
	})
}
