// Package rest exposes the services over HTTP for host applications.
package rest

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ewilliams-labs/nekolog/internal/audio"
	"github.com/ewilliams-labs/nekolog/internal/core/domain"
	"github.com/ewilliams-labs/nekolog/internal/core/services"
	"github.com/ewilliams-labs/nekolog/internal/scoring"
)

// maxUploadBytes caps photo and audio request bodies.
const maxUploadBytes = 32 << 20

// Deps are the services behind the handler. Any service left nil makes its
// routes answer 501.
type Deps struct {
	Wellbeing  *services.Wellbeing
	Assistant  *services.Assistant
	Album      *services.Album
	Portrait   *services.Portrait
	Scorer     *scoring.Scorer
	Classifier *audio.Classifier
	Plan       func(now time.Time) domain.ReminderSchedule
	BlockSize  int
	Now        func() time.Time
	Logger     *zap.Logger
}

// Handler manages the HTTP interface for our application.
type Handler struct {
	deps   Deps
	logger *zap.Logger
	router *http.ServeMux
}

// NewHandler initializes the HTTP adapter and sets up routes.
func NewHandler(deps Deps) *Handler {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.BlockSize <= 0 {
		deps.BlockSize = audio.DefaultBlockSize
	}
	h := &Handler{
		deps:   deps,
		logger: deps.Logger,
		router: http.NewServeMux(),
	}
	h.routes()
	return h
}

// ServeHTTP satisfies the http.Handler interface.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) routes() {
	h.router.HandleFunc("GET /health", h.HealthCheck)

	// Wellbeing
	h.router.HandleFunc("POST /score", h.Score)
	h.router.HandleFunc("GET /today", h.Today)
	h.router.HandleFunc("POST /foreground", h.Foreground)
	h.router.HandleFunc("POST /reset", h.Reset)
	h.router.HandleFunc("GET /sliders", h.GetSliders)
	h.router.HandleFunc("PUT /sliders", h.PutSliders)
	h.router.HandleFunc("GET /schedule", h.Schedule)

	// Voice
	h.router.HandleFunc("POST /classify", h.Classify)
	h.router.HandleFunc("POST /listen", h.Listen)

	// Assistant
	h.router.HandleFunc("POST /reply", h.Reply)
	h.router.HandleFunc("GET /weather", h.Weather)

	// Photos
	h.router.HandleFunc("POST /photos", h.AddPhoto)
	h.router.HandleFunc("GET /photos", h.ListPhotos)
	h.router.HandleFunc("GET /photos/{id}", h.GetPhoto)
	h.router.HandleFunc("GET /photos/{id}/composite", h.GetComposite)
	h.router.HandleFunc("PUT /photos/{id}/captions/user", h.SetUserCaption)
	h.router.HandleFunc("PUT /photos/{id}/captions/assistant", h.SetAssistantCaption)
	h.router.HandleFunc("POST /photos/{id}/reply", h.RespondToPhoto)

	// Wallpaper
	h.router.HandleFunc("POST /frame", h.Frame)
	h.router.HandleFunc("GET /wallpaper", h.GetWallpaper)
	h.router.HandleFunc("GET /icon", h.GetIcon)
}

// HealthCheck is a simple endpoint to verify the API is running.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "message": "nekolog is purring"})
}
