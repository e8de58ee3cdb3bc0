package ports

import (
	"context"
	"image"

	"github.com/ewilliams-labs/nekolog/internal/core/domain"
)

// PreferenceStore is a flat key-value store for user settings. Missing keys
// return the supplied default.
type PreferenceStore interface {
	GetString(ctx context.Context, key, def string) (string, error)
	GetInt(ctx context.Context, key string, def int) (int, error)
	GetFloat(ctx context.Context, key string, def float64) (float64, error)
	SetString(ctx context.Context, key, value string) error
	SetInt(ctx context.Context, key string, value int) error
	SetFloat(ctx context.Context, key string, value float64) error
	Delete(ctx context.Context, key string) error
}

// PhotoRepository persists the photo history in insertion order.
type PhotoRepository interface {
	SavePhoto(ctx context.Context, p domain.PhotoRecord) error
	GetPhoto(ctx context.Context, id string) (domain.PhotoRecord, error)
	ListPhotos(ctx context.Context) ([]domain.PhotoRecord, error)
}

// ArtifactStore keeps named single images such as the current wallpaper
// and icon. Missing artifacts return a nil image.
type ArtifactStore interface {
	SaveArtifact(ctx context.Context, name string, img image.Image) error
	GetArtifact(ctx context.Context, name string) (image.Image, error)
	DeleteArtifact(ctx context.Context, name string) error
}
