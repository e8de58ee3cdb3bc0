package ports

import (
	"context"
	"image"

	"github.com/ewilliams-labs/nekolog/internal/core/domain"
)

// ReplyGenerator produces assistant text for a prompt. Implementations
// never fail: transport and decoding problems surface as a fallback phrase.
type ReplyGenerator interface {
	GenerateReply(ctx context.Context, prompt string) string
}

// FaceDetector finds at most one face. A nil box with a nil error means no
// face was found.
type FaceDetector interface {
	DetectFace(ctx context.Context, img image.Image) (*domain.NormalizedBox, error)
}

// ReplyRequester is implemented by generators that can report failures
// instead of substituting a fallback phrase.
type ReplyRequester interface {
	Request(ctx context.Context, prompt string) (string, error)
}
