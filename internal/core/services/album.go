package services

import (
	"context"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ewilliams-labs/nekolog/internal/core/domain"
	"github.com/ewilliams-labs/nekolog/internal/core/ports"
	"github.com/ewilliams-labs/nekolog/internal/worker"
)

// AlbumConfig controls caption rendering.
type AlbumConfig struct {
	// DrawUserText renders the user caption in its own column during the
	// user pass.
	DrawUserText bool
}

// Album owns the photo history. Every read and write runs as a job on one
// queue, so caption passes for a record are applied in submission order.
type Album struct {
	queue      *worker.Queue
	repo       ports.PhotoRepository
	compositor domain.Compositor
	portrait   *Portrait
	assistant  *Assistant
	cfg        AlbumConfig
	logger     *zap.Logger

	now   func() time.Time
	newID func() string
}

// NewAlbum constructs an Album. The queue must be started by the caller.
// portrait and assistant may be nil.
func NewAlbum(queue *worker.Queue, repo ports.PhotoRepository, compositor domain.Compositor, portrait *Portrait, assistant *Assistant, cfg AlbumConfig, logger *zap.Logger) *Album {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Album{
		queue:      queue,
		repo:       repo,
		compositor: compositor,
		portrait:   portrait,
		assistant:  assistant,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// Add appends a photo with optional captions and makes it the wallpaper.
// A photo carrying the same non-empty captions as an existing record is not
// appended again; the existing record is returned with added=false and the
// wallpaper is left alone.
func (a *Album) Add(ctx context.Context, img image.Image, userCaption, assistantCaption string) (rec domain.PhotoRecord, added bool, err error) {
	if dup, ok, err := a.duplicate(ctx, userCaption, assistantCaption); err != nil || ok {
		return dup, false, err
	}

	now := a.now()
	if a.portrait != nil {
		if _, err := a.portrait.Frame(ctx, img, now); err != nil {
			return domain.PhotoRecord{}, false, err
		}
	}

	err = a.queue.Do(ctx, func(ctx context.Context) error {
		if dup, ok, err := a.findDuplicate(ctx, userCaption, assistantCaption); err != nil || ok {
			rec = dup
			return err
		}

		r := domain.NewPhotoRecord(a.newID(), img, now)
		if userCaption != "" {
			r = r.WithUserCaption(a.compositor, userCaption, a.cfg.DrawUserText)
		}
		if assistantCaption != "" {
			r = r.WithAssistantCaption(a.compositor, assistantCaption)
		}
		if err := a.repo.SavePhoto(ctx, r); err != nil {
			return fmt.Errorf("service: failed to save photo: %w", err)
		}
		rec, added = r, true
		return nil
	})
	if err != nil {
		return domain.PhotoRecord{}, false, err
	}
	if added {
		a.logger.Info("photo added", zap.String("id", rec.ID), zap.Stringer("stage", rec.Stage))
	}
	return rec, added, nil
}

// duplicate runs findDuplicate as a queue job.
func (a *Album) duplicate(ctx context.Context, userCaption, assistantCaption string) (rec domain.PhotoRecord, found bool, err error) {
	err = a.queue.Do(ctx, func(ctx context.Context) error {
		var err error
		rec, found, err = a.findDuplicate(ctx, userCaption, assistantCaption)
		return err
	})
	return rec, found, err
}

// findDuplicate looks for a record with the same captions. Uncaptioned
// photos never match. It must run on the queue.
func (a *Album) findDuplicate(ctx context.Context, userCaption, assistantCaption string) (domain.PhotoRecord, bool, error) {
	if userCaption == "" && assistantCaption == "" {
		return domain.PhotoRecord{}, false, nil
	}
	existing, err := a.repo.ListPhotos(ctx)
	if err != nil {
		return domain.PhotoRecord{}, false, fmt.Errorf("service: failed to load photos: %w", err)
	}
	for _, p := range existing {
		if p.SameCaptions(userCaption, assistantCaption) {
			return p, true, nil
		}
	}
	return domain.PhotoRecord{}, false, nil
}

// SetUserCaption runs the user pass for id.
func (a *Album) SetUserCaption(ctx context.Context, id, text string) (domain.PhotoRecord, error) {
	return a.update(ctx, id, func(r domain.PhotoRecord) domain.PhotoRecord {
		return r.WithUserCaption(a.compositor, text, a.cfg.DrawUserText)
	})
}

// SetAssistantCaption runs the assistant pass for id.
func (a *Album) SetAssistantCaption(ctx context.Context, id, text string) (domain.PhotoRecord, error) {
	return a.update(ctx, id, func(r domain.PhotoRecord) domain.PhotoRecord {
		return r.WithAssistantCaption(a.compositor, text)
	})
}

func (a *Album) update(ctx context.Context, id string, apply func(domain.PhotoRecord) domain.PhotoRecord) (domain.PhotoRecord, error) {
	var out domain.PhotoRecord
	err := a.queue.Do(ctx, func(ctx context.Context) error {
		r, err := a.repo.GetPhoto(ctx, id)
		if err != nil {
			return fmt.Errorf("service: failed to load photo %s: %w", id, err)
		}
		r = apply(r)
		if err := a.repo.SavePhoto(ctx, r); err != nil {
			return fmt.Errorf("service: failed to save photo %s: %w", id, err)
		}
		out = r
		return nil
	})
	return out, err
}

// Respond sets the user caption at once, asks the assistant for a reply
// off the queue, and then layers the reply as the assistant caption. A blank
// text returns ErrEmptyPrompt and leaves the record untouched.
func (a *Album) Respond(ctx context.Context, id, text string) (domain.PhotoRecord, error) {
	if a.assistant == nil {
		return domain.PhotoRecord{}, fmt.Errorf("service: no assistant configured")
	}
	if strings.TrimSpace(text) == "" {
		return domain.PhotoRecord{}, ErrEmptyPrompt
	}
	if _, err := a.SetUserCaption(ctx, id, text); err != nil {
		return domain.PhotoRecord{}, err
	}
	reply, err := a.assistant.Reply(ctx, text)
	if err != nil {
		return domain.PhotoRecord{}, err
	}
	return a.SetAssistantCaption(ctx, id, reply)
}

// Get returns one record.
func (a *Album) Get(ctx context.Context, id string) (domain.PhotoRecord, error) {
	var out domain.PhotoRecord
	err := a.queue.Do(ctx, func(ctx context.Context) error {
		r, err := a.repo.GetPhoto(ctx, id)
		if err != nil {
			return fmt.Errorf("service: failed to load photo %s: %w", id, err)
		}
		out = r
		return nil
	})
	return out, err
}

// List returns the history in insertion order.
func (a *Album) List(ctx context.Context) ([]domain.PhotoRecord, error) {
	var out []domain.PhotoRecord
	err := a.queue.Do(ctx, func(ctx context.Context) error {
		list, err := a.repo.ListPhotos(ctx)
		if err != nil {
			return fmt.Errorf("service: failed to load photos: %w", err)
		}
		out = list
		return nil
	})
	return out, err
}
