package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ewilliams-labs/nekolog/internal/adapters/notify"
	"github.com/ewilliams-labs/nekolog/internal/adapters/sqlite"
	"github.com/ewilliams-labs/nekolog/internal/audio"
	"github.com/ewilliams-labs/nekolog/internal/core/domain"
	"github.com/ewilliams-labs/nekolog/internal/core/services"
	"github.com/ewilliams-labs/nekolog/internal/imaging"
	"github.com/ewilliams-labs/nekolog/internal/schedule"
	"github.com/ewilliams-labs/nekolog/internal/scoring"
	"github.com/ewilliams-labs/nekolog/internal/worker"
)

// Wednesday morning, a weekday with no stored history.
var testNow = time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)

type stubGenerator struct{ reply string }

func (s stubGenerator) GenerateReply(context.Context, string) string { return s.reply }

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	store, err := sqlite.NewAdapter(sqlite.DriverPure, ":memory:")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	q := worker.NewQueue(8, nil)
	q.Start(context.Background())
	t.Cleanup(q.Stop)

	fonts, err := imaging.DefaultFonts()
	if err != nil {
		t.Fatalf("failed to load fonts: %v", err)
	}

	scorer := scoring.New(nil)
	assistant := services.NewAssistant(stubGenerator{reply: "えらいにゃ"}, "")
	portrait := services.NewPortrait(imaging.NewFramer(500, 1000, 40), nil, store, store, nil)
	wellbeing := services.NewWellbeing(store, store, notify.NewRecorder(nil), scorer, services.WellbeingConfig{MorningHour: 5}, nil)
	album := services.NewAlbum(q, store, imaging.NewCompositor(fonts), portrait, assistant, services.AlbumConfig{DrawUserText: true}, nil)
	classifier := audio.NewClassifier(audio.Japanese, audio.PickerFunc(func(c []string) string { return c[0] }))

	return NewHandler(Deps{
		Wellbeing:  wellbeing,
		Assistant:  assistant,
		Album:      album,
		Portrait:   portrait,
		Scorer:     scorer,
		Classifier: classifier,
		Plan: func(now time.Time) domain.ReminderSchedule {
			return schedule.Plan(now, 5, 0)
		},
		Now: func() time.Time { return testNow },
	})
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func pngBody(t *testing.T, w, h int) *bytes.Buffer {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 0xff, A: 0xff})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return &buf
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("failed to decode response %q: %v", rr.Body.String(), err)
	}
	return v
}

func TestHealthCheck(t *testing.T) {
	h := newTestHandler(t)
	rr := doJSON(t, h, http.MethodGet, "/health", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	got := decodeBody[map[string]string](t, rr)
	if got["status"] != "ok" {
		t.Fatalf("unexpected body %v", got)
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		wantStatus  int
		wantScore   domain.WellbeingScore
	}{
		{
			name:       "Stored sliders on a weekday",
			body:       `{"weekday":"Wednesday"}`,
			wantStatus: http.StatusOK,
			wantScore:  60,
		},
		{
			name:       "Explicit inputs",
			body:       `{"sliders":[0,0,0,0,0,0],"weekday":"sun","address":"東京都港区","previous_score":100}`,
			wantStatus: http.StatusOK,
			wantScore:  25,
		},
		{
			name:       "Wrong slider count",
			body:       `{"sliders":[1,2,3]}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Unknown weekday",
			body:       `{"weekday":"Someday"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:        "Wrong content type",
			contentType: "text/plain",
			body:        `{}`,
			wantStatus:  http.StatusUnsupportedMediaType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t)
			req := httptest.NewRequest(http.MethodPost, "/score", strings.NewReader(tt.body))
			ct := tt.contentType
			if ct == "" {
				ct = "application/json"
			}
			req.Header.Set("Content-Type", ct)
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.wantStatus, rr.Code, rr.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			b := decodeBody[scoring.Breakdown](t, rr)
			if b.Score != tt.wantScore {
				t.Fatalf("expected score %d, got %+v", tt.wantScore, b)
			}
		})
	}
}

func TestToday_ComputesOncePerDay(t *testing.T) {
	h := newTestHandler(t)

	first := decodeBody[services.Report](t, doJSON(t, h, http.MethodGet, "/today", ""))
	if !first.Computed || first.Score != 60 || first.Date != "2026-10-14" {
		t.Fatalf("unexpected first report %+v", first)
	}
	second := decodeBody[services.Report](t, doJSON(t, h, http.MethodGet, "/today", ""))
	if second.Computed || second.Score != 60 {
		t.Fatalf("expected cached report, got %+v", second)
	}

	if rr := doJSON(t, h, http.MethodPost, "/reset", ""); rr.Code != http.StatusNoContent {
		t.Fatalf("expected status 204 from reset, got %d", rr.Code)
	}
	// The reset zeroes the score but the day stays calculated.
	third := decodeBody[services.Report](t, doJSON(t, h, http.MethodPost, "/foreground", ""))
	if third.Computed || third.Score != 0 {
		t.Fatalf("expected the reset score, got %+v", third)
	}
}

func TestSliders_PutClamps(t *testing.T) {
	h := newTestHandler(t)

	rr := doJSON(t, h, http.MethodPut, "/sliders", `{"values":[150,-5,50,50,50,50]}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	got := decodeBody[SlidersBody](t, doJSON(t, h, http.MethodGet, "/sliders", ""))
	want := []float64{100, 0, 50, 50, 50, 50}
	for i := range want {
		if got.Values[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got.Values)
		}
	}

	if rr := doJSON(t, h, http.MethodPut, "/sliders", `{"values":[1]}`); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestSchedule(t *testing.T) {
	h := newTestHandler(t)
	got := decodeBody[domain.ReminderSchedule](t, doJSON(t, h, http.MethodGet, "/schedule", ""))
	if !got.NextMorningFire.Equal(time.Date(2026, 10, 15, 5, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected morning fire %v", got.NextMorningFire)
	}
	if !got.NextMidnightFire.Equal(time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected midnight fire %v", got.NextMidnightFire)
	}
}

func TestClassify(t *testing.T) {
	h := newTestHandler(t)
	rr := doJSON(t, h, http.MethodPost, "/classify", `{"rms_loudness":0.01,"peak_amplitude":100,"duration_seconds":1}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	got := decodeBody[ClassifyResponse](t, rr)
	if got.Phrase != "小さな声にゃ" || len(got.Candidates) != 6 {
		t.Fatalf("unexpected classification %+v", got)
	}
}

func TestListen_RejectsNonAudio(t *testing.T) {
	h := newTestHandler(t)
	req := httptest.NewRequest(http.MethodPost, "/listen", strings.NewReader(""))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestReply(t *testing.T) {
	h := newTestHandler(t)

	got := decodeBody[TextBody](t, doJSON(t, h, http.MethodPost, "/reply", `{"text":"ただいま"}`))
	if got.Text != "えらいにゃ" {
		t.Fatalf("unexpected reply %q", got.Text)
	}
	if rr := doJSON(t, h, http.MethodPost, "/reply", `{"text":"  "}`); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for empty prompt, got %d", rr.Code)
	}
}

func TestPhotos_Lifecycle(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/photos?user=hi", pngBody(t, 40, 30))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}
	added := decodeBody[AddPhotoResponse](t, rr)
	if !added.Added || added.Photo.Stage != domain.StageUserCaptioned.String() {
		t.Fatalf("unexpected add response %+v", added)
	}
	id := added.Photo.ID

	list := decodeBody[[]PhotoSummary](t, doJSON(t, h, http.MethodGet, "/photos", ""))
	if len(list) != 1 || list[0].ID != id {
		t.Fatalf("unexpected list %+v", list)
	}

	rr = doJSON(t, h, http.MethodPost, "/photos/"+id+"/reply", `{"text":"つかれた"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	got := decodeBody[PhotoSummary](t, rr)
	if got.UserCaption != "つかれた" || got.AssistantCaption != "えらいにゃ" || got.Stage != domain.StageComposited.String() {
		t.Fatalf("unexpected record %+v", got)
	}

	rr = doJSON(t, h, http.MethodGet, "/photos/"+id+"/composite", "")
	if rr.Code != http.StatusOK || rr.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("expected png, got %d %q", rr.Code, rr.Header().Get("Content-Type"))
	}
	img, err := png.Decode(rr.Body)
	if err != nil {
		t.Fatalf("decode composite: %v", err)
	}
	if img.Bounds().Dx() != got.Width || img.Bounds().Dy() != got.Height {
		t.Fatalf("composite %v does not match summary %dx%d", img.Bounds(), got.Width, got.Height)
	}

	rr = doJSON(t, h, http.MethodPut, "/photos/"+id+"/captions/assistant", `{"text":""}`)
	if got := decodeBody[PhotoSummary](t, rr); got.Stage != domain.StageUserCaptioned.String() {
		t.Fatalf("expected the assistant caption to be removed, got %+v", got)
	}

	rr = doJSON(t, h, http.MethodPost, "/photos/"+id+"/reply", `{"text":"   "}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for blank reply text, got %d", rr.Code)
	}
	if e := decodeBody[errorResponse](t, rr); e.Code != "EMPTY_PROMPT" {
		t.Fatalf("expected EMPTY_PROMPT, got %+v", e)
	}
	if got := decodeBody[PhotoSummary](t, doJSON(t, h, http.MethodGet, "/photos/"+id, "")); got.UserCaption != "つかれた" {
		t.Fatalf("blank reply changed the user caption to %q", got.UserCaption)
	}

	if rr := doJSON(t, h, http.MethodGet, "/photos/missing", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
	if rr := doJSON(t, h, http.MethodPut, "/photos/missing/captions/user", `{"text":"x"}`); rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
}

func TestPhotos_RejectsInvalidImage(t *testing.T) {
	h := newTestHandler(t)
	req := httptest.NewRequest(http.MethodPost, "/photos", strings.NewReader("not an image"))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestFrame(t *testing.T) {
	h := newTestHandler(t)

	if rr := doJSON(t, h, http.MethodGet, "/wallpaper", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 before framing, got %d", rr.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/frame", pngBody(t, 100, 100))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	wallpaper, err := png.Decode(rr.Body)
	if err != nil {
		t.Fatalf("decode wallpaper: %v", err)
	}
	if wallpaper.Bounds() != image.Rect(0, 0, 50, 100) {
		t.Fatalf("unexpected wallpaper bounds %v", wallpaper.Bounds())
	}

	rr = doJSON(t, h, http.MethodGet, "/icon", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	icon, err := png.Decode(rr.Body)
	if err != nil {
		t.Fatalf("decode icon: %v", err)
	}
	if icon.Bounds() != image.Rect(0, 0, 40, 40) {
		t.Fatalf("unexpected icon bounds %v", icon.Bounds())
	}
}

func TestNotConfigured(t *testing.T) {
	h := NewHandler(Deps{})
	for _, path := range []string{"/today", "/sliders", "/photos", "/wallpaper", "/schedule"} {
		if rr := doJSON(t, h, http.MethodGet, path, ""); rr.Code != http.StatusNotImplemented {
			t.Fatalf("%s: expected status 501, got %d", path, rr.Code)
		}
	}
}
