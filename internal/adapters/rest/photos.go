package rest

import (
	"net/http"
	"time"

	"github.com/ewilliams-labs/nekolog/internal/core/domain"
	"github.com/ewilliams-labs/nekolog/internal/imaging"
)

// PhotoSummary describes a photo record without its pixels.
type PhotoSummary struct {
	ID               string    `json:"id"`
	CapturedAt       time.Time `json:"captured_at"`
	UserCaption      string    `json:"user_caption"`
	AssistantCaption string    `json:"assistant_caption"`
	Stage            string    `json:"stage"`
	Width            int       `json:"width"`
	Height           int       `json:"height"`
}

// AddPhotoResponse reports whether an upload created a new record.
type AddPhotoResponse struct {
	Photo PhotoSummary `json:"photo"`
	Added bool         `json:"added"`
}

func summarize(rec domain.PhotoRecord) PhotoSummary {
	s := PhotoSummary{
		ID:               rec.ID,
		CapturedAt:       rec.CapturedAt,
		UserCaption:      rec.UserCaption,
		AssistantCaption: rec.AssistantCaption,
		Stage:            rec.Stage.String(),
	}
	if img := rec.Display(); img != nil {
		s.Width, s.Height = img.Bounds().Dx(), img.Bounds().Dy()
	}
	return s
}

// AddPhoto handles POST /photos. The body is the image; captions come from
// the user and assistant query parameters.
func (h *Handler) AddPhoto(w http.ResponseWriter, r *http.Request) {
	if h.deps.Album == nil {
		notConfigured(w, "album")
		return
	}
	img, _, err := imaging.Decode(http.MaxBytesReader(w, r.Body, maxUploadBytes))
	if err != nil {
		writeErrorWithCode(w, http.StatusBadRequest, err.Error(), "INVALID_IMAGE")
		return
	}
	q := r.URL.Query()
	rec, added, err := h.deps.Album.Add(r.Context(), img, q.Get("user"), q.Get("assistant"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	status := http.StatusCreated
	if !added {
		status = http.StatusOK
	}
	writeJSON(w, status, AddPhotoResponse{Photo: summarize(rec), Added: added})
}

// ListPhotos handles GET /photos in capture order.
func (h *Handler) ListPhotos(w http.ResponseWriter, r *http.Request) {
	if h.deps.Album == nil {
		notConfigured(w, "album")
		return
	}
	recs, err := h.deps.Album.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]PhotoSummary, 0, len(recs))
	for _, rec := range recs {
		out = append(out, summarize(rec))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetPhoto handles GET /photos/{id}.
func (h *Handler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	if h.deps.Album == nil {
		notConfigured(w, "album")
		return
	}
	rec, err := h.deps.Album.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summarize(rec))
}

// GetComposite handles GET /photos/{id}/composite and returns the displayed
// image as PNG.
func (h *Handler) GetComposite(w http.ResponseWriter, r *http.Request) {
	if h.deps.Album == nil {
		notConfigured(w, "album")
		return
	}
	rec, err := h.deps.Album.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writePNG(w, rec.Display())
}

// SetUserCaption handles PUT /photos/{id}/captions/user.
func (h *Handler) SetUserCaption(w http.ResponseWriter, r *http.Request) {
	if h.deps.Album == nil {
		notConfigured(w, "album")
		return
	}
	var body TextBody
	if !decodeJSON(w, r, &body) {
		return
	}
	rec, err := h.deps.Album.SetUserCaption(r.Context(), r.PathValue("id"), body.Text)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summarize(rec))
}

// SetAssistantCaption handles PUT /photos/{id}/captions/assistant.
func (h *Handler) SetAssistantCaption(w http.ResponseWriter, r *http.Request) {
	if h.deps.Album == nil {
		notConfigured(w, "album")
		return
	}
	var body TextBody
	if !decodeJSON(w, r, &body) {
		return
	}
	rec, err := h.deps.Album.SetAssistantCaption(r.Context(), r.PathValue("id"), body.Text)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summarize(rec))
}

// RespondToPhoto handles POST /photos/{id}/reply: the text becomes the user
// caption and the assistant's answer the assistant caption.
func (h *Handler) RespondToPhoto(w http.ResponseWriter, r *http.Request) {
	if h.deps.Album == nil {
		notConfigured(w, "album")
		return
	}
	var body TextBody
	if !decodeJSON(w, r, &body) {
		return
	}
	rec, err := h.deps.Album.Respond(r.Context(), r.PathValue("id"), body.Text)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summarize(rec))
}
