package rest

import (
	"image"
	"net/http"

	"github.com/ewilliams-labs/nekolog/internal/imaging"
)

// Frame handles POST /frame. The body is a photo; the response is the
// wallpaper crop as PNG. The icon is stored alongside and served by GET /icon.
func (h *Handler) Frame(w http.ResponseWriter, r *http.Request) {
	if h.deps.Portrait == nil {
		notConfigured(w, "portrait")
		return
	}
	img, _, err := imaging.Decode(http.MaxBytesReader(w, r.Body, maxUploadBytes))
	if err != nil {
		writeErrorWithCode(w, http.StatusBadRequest, err.Error(), "INVALID_IMAGE")
		return
	}
	f, err := h.deps.Portrait.Frame(r.Context(), img, h.deps.Now())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writePNG(w, f.Wallpaper)
}

// GetWallpaper handles GET /wallpaper.
func (h *Handler) GetWallpaper(w http.ResponseWriter, r *http.Request) {
	h.serveArtifact(w, r, func(wallpaper, _ image.Image) image.Image { return wallpaper })
}

// GetIcon handles GET /icon.
func (h *Handler) GetIcon(w http.ResponseWriter, r *http.Request) {
	h.serveArtifact(w, r, func(_, icon image.Image) image.Image { return icon })
}

func (h *Handler) serveArtifact(w http.ResponseWriter, r *http.Request, pick func(wallpaper, icon image.Image) image.Image) {
	if h.deps.Portrait == nil {
		notConfigured(w, "portrait")
		return
	}
	wallpaper, icon, err := h.deps.Portrait.Current(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	img := pick(wallpaper, icon)
	if img == nil {
		writeErrorWithCode(w, http.StatusNotFound, "no wallpaper framed today", "NOT_FOUND")
		return
	}
	writePNG(w, img)
}
