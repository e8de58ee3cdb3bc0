package services

import (
	"context"
	"fmt"
	"image"
	"time"

	"go.uber.org/zap"

	"github.com/ewilliams-labs/nekolog/internal/core/domain"
	"github.com/ewilliams-labs/nekolog/internal/core/ports"
	"github.com/ewilliams-labs/nekolog/internal/imaging"
)

// Portrait turns a photo into the day's wallpaper and icon.
type Portrait struct {
	framer    *imaging.Framer
	detector  ports.FaceDetector
	artifacts ports.ArtifactStore
	prefs     ports.PreferenceStore
	logger    *zap.Logger
}

// NewPortrait constructs a Portrait. artifacts and prefs may be nil, in
// which case framings are returned but not stored.
func NewPortrait(framer *imaging.Framer, detector ports.FaceDetector, artifacts ports.ArtifactStore, prefs ports.PreferenceStore, logger *zap.Logger) *Portrait {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Portrait{framer: framer, detector: detector, artifacts: artifacts, prefs: prefs, logger: logger}
}

// Face returns the detected face in pixel coordinates, or nil. Detector
// failures count as no face.
func (p *Portrait) Face(ctx context.Context, img image.Image) *image.Rectangle {
	if p.detector == nil {
		return nil
	}
	box, err := p.detector.DetectFace(ctx, img)
	if err != nil {
		p.logger.Warn("face detection failed, framing whole image", zap.Error(err))
		return nil
	}
	if box == nil {
		return nil
	}
	return domain.FaceBoxFromNormalized(*box, img.Bounds())
}

// Frame crops img around its face and stores the wallpaper and icon.
func (p *Portrait) Frame(ctx context.Context, img image.Image, now time.Time) (imaging.Framing, error) {
	f := p.framer.Frame(img, p.Face(ctx, img))

	if p.artifacts != nil {
		if err := p.artifacts.SaveArtifact(ctx, ArtifactWallpaper, f.Wallpaper); err != nil {
			return imaging.Framing{}, fmt.Errorf("service: failed to save wallpaper: %w", err)
		}
		if err := p.artifacts.SaveArtifact(ctx, ArtifactIcon, f.Icon); err != nil {
			return imaging.Framing{}, fmt.Errorf("service: failed to save icon: %w", err)
		}
	}
	if p.prefs != nil {
		if err := p.prefs.SetString(ctx, KeyLastWallpaperDate, domain.DateKey(now)); err != nil {
			return imaging.Framing{}, fmt.Errorf("service: failed to save wallpaper date: %w", err)
		}
	}
	return f, nil
}

// Current returns the stored wallpaper and icon. Either may be nil.
func (p *Portrait) Current(ctx context.Context) (wallpaper, icon image.Image, err error) {
	if p.artifacts == nil {
		return nil, nil, nil
	}
	if wallpaper, err = p.artifacts.GetArtifact(ctx, ArtifactWallpaper); err != nil {
		return nil, nil, fmt.Errorf("service: failed to load wallpaper: %w", err)
	}
	if icon, err = p.artifacts.GetArtifact(ctx, ArtifactIcon); err != nil {
		return nil, nil, fmt.Errorf("service: failed to load icon: %w", err)
	}
	return wallpaper, icon, nil
}
