package services

import (
	"context"
	"errors"
	"image"
	"sync"

	"github.com/ewilliams-labs/nekolog/internal/core/domain"
)

type memPrefs struct {
	mu     sync.Mutex
	values map[string]any
}

func newMemPrefs() *memPrefs { return &memPrefs{values: map[string]any{}} }

func (m *memPrefs) GetString(_ context.Context, key, def string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.values[key].(string); ok {
		return v, nil
	}
	return def, nil
}

func (m *memPrefs) GetInt(_ context.Context, key string, def int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.values[key].(int); ok {
		return v, nil
	}
	return def, nil
}

func (m *memPrefs) GetFloat(_ context.Context, key string, def float64) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.values[key].(float64); ok {
		return v, nil
	}
	return def, nil
}

func (m *memPrefs) set(key string, v any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = v
	return nil
}

func (m *memPrefs) SetString(_ context.Context, key, value string) error { return m.set(key, value) }
func (m *memPrefs) SetInt(_ context.Context, key string, value int) error { return m.set(key, value) }
func (m *memPrefs) SetFloat(_ context.Context, key string, value float64) error {
	return m.set(key, value)
}

func (m *memPrefs) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

type memPhotos struct {
	order   []string
	records map[string]domain.PhotoRecord
}

func newMemPhotos() *memPhotos { return &memPhotos{records: map[string]domain.PhotoRecord{}} }

func (m *memPhotos) SavePhoto(_ context.Context, p domain.PhotoRecord) error {
	if _, ok := m.records[p.ID]; !ok {
		m.order = append(m.order, p.ID)
	}
	m.records[p.ID] = p
	return nil
}

func (m *memPhotos) GetPhoto(_ context.Context, id string) (domain.PhotoRecord, error) {
	p, ok := m.records[id]
	if !ok {
		return domain.PhotoRecord{}, domain.ErrNotFound
	}
	return p, nil
}

func (m *memPhotos) ListPhotos(context.Context) ([]domain.PhotoRecord, error) {
	out := make([]domain.PhotoRecord, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.records[id])
	}
	return out, nil
}

type memArtifacts struct {
	mu     sync.Mutex
	images map[string]image.Image
}

func newMemArtifacts() *memArtifacts { return &memArtifacts{images: map[string]image.Image{}} }

func (m *memArtifacts) SaveArtifact(_ context.Context, name string, img image.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.images[name] = img
	return nil
}

func (m *memArtifacts) GetArtifact(_ context.Context, name string) (image.Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.images[name], nil
}

func (m *memArtifacts) DeleteArtifact(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.images, name)
	return nil
}

type mockNotifier struct {
	mu        sync.Mutex
	reminders []domain.Reminder
	badges    []int
}

func (m *mockNotifier) Schedule(_ context.Context, r domain.Reminder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reminders = append(m.reminders, r)
	return nil
}

func (m *mockNotifier) SetBadge(_ context.Context, count int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.badges = append(m.badges, count)
	return nil
}

type mockGenerator struct {
	mu      sync.Mutex
	reply   string
	prompts []string
}

func (m *mockGenerator) GenerateReply(_ context.Context, prompt string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	return m.reply
}

// mockRequester fails every Request and falls back in GenerateReply.
type mockRequester struct {
	mockGenerator
}

func (m *mockRequester) Request(context.Context, string) (string, error) {
	return "", errors.New("offline")
}

// recordingCompositor returns an image one pixel wider than its base and
// logs each pass.
type recordingCompositor struct {
	mu    sync.Mutex
	calls []string
}

func (c *recordingCompositor) Compose(base image.Image, assistantText, userText string, drawUserText bool) image.Image {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case assistantText != "":
		c.calls = append(c.calls, "assistant:"+assistantText)
	default:
		c.calls = append(c.calls, "user:"+userText)
	}
	b := base.Bounds()
	return image.NewRGBA(image.Rect(0, 0, b.Dx()+1, b.Dy()))
}

type mockDetector struct {
	box *domain.NormalizedBox
	err error
}

func (m mockDetector) DetectFace(context.Context, image.Image) (*domain.NormalizedBox, error) {
	return m.box, m.err
}
