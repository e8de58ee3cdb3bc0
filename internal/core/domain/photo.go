package domain

import (
	"errors"
	"image"
	"time"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("domain: not found")

// Stage tracks how far a photo has been composited.
type Stage int

const (
	// StageRaw has no caption layers.
	StageRaw Stage = iota
	// StageUserCaptioned has the user caption baked into UserLayer.
	StageUserCaptioned
	// StageComposited has the assistant caption layered on top.
	StageComposited
)

func (s Stage) String() string {
	switch s {
	case StageRaw:
		return "raw"
	case StageUserCaptioned:
		return "user_captioned"
	case StageComposited:
		return "composited"
	default:
		return "unknown"
	}
}

// Compositor renders caption layers onto a base image.
type Compositor interface {
	Compose(base image.Image, assistantText, userText string, drawUserText bool) image.Image
}

// PhotoRecord is one entry of the photo history.
//
// Captions are applied in two independent passes. The user pass renders
// UserCaption onto Image and keeps the result as UserLayer. The assistant
// pass renders AssistantCaption onto UserLayer when present, otherwise onto
// Image, and stores the result as Composite. Each transition below returns a
// new record whose Composite matches its captions.
type PhotoRecord struct {
	ID               string
	Image            image.Image
	CapturedAt       time.Time
	UserCaption      string
	AssistantCaption string
	UserLayer        image.Image
	Composite        image.Image
	Stage            Stage
}

// NewPhotoRecord returns a raw record.
func NewPhotoRecord(id string, img image.Image, capturedAt time.Time) PhotoRecord {
	return PhotoRecord{ID: id, Image: img, CapturedAt: capturedAt, Stage: StageRaw}
}

// WithUserCaption re-renders the user layer from the original image and
// then re-applies the assistant caption on top of it.
func (r PhotoRecord) WithUserCaption(c Compositor, text string, drawUserText bool) PhotoRecord {
	r.UserCaption = text
	r.UserLayer = nil
	if text != "" {
		r.UserLayer = c.Compose(r.Image, "", text, drawUserText)
	}
	return r.layerAssistant(c)
}

// WithAssistantCaption renders text over the user layer, or over the
// original image when no user caption exists.
func (r PhotoRecord) WithAssistantCaption(c Compositor, text string) PhotoRecord {
	r.AssistantCaption = text
	return r.layerAssistant(c)
}

func (r PhotoRecord) layerAssistant(c Compositor) PhotoRecord {
	base := r.Image
	if r.UserLayer != nil {
		base = r.UserLayer
	}

	switch {
	case r.AssistantCaption != "":
		r.Composite = c.Compose(base, r.AssistantCaption, "", false)
		r.Stage = StageComposited
	case r.UserLayer != nil:
		r.Composite = r.UserLayer
		r.Stage = StageUserCaptioned
	default:
		r.Composite = nil
		r.Stage = StageRaw
	}
	return r
}

// Display returns the image that should be shown for the record.
func (r PhotoRecord) Display() image.Image {
	if r.Composite != nil {
		return r.Composite
	}
	return r.Image
}

// SameCaptions reports whether r carries exactly the given captions.
func (r PhotoRecord) SameCaptions(user, assistant string) bool {
	return r.UserCaption == user && r.AssistantCaption == assistant
}
