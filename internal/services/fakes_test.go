package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"

	"github.com/yungbote/crystal-grimoire-backend/internal/pkg/ctxutil"
	"github.com/yungbote/crystal-grimoire-backend/internal/pkg/dbctx"
	"github.com/yungbote/crystal-grimoire-backend/internal/platform/apierr"
)

var pngBytes = encodePNG(4, 3)

func encodePNG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 150, G: 90, B: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func pngBase64() string { return base64.StdEncoding.EncodeToString(pngBytes) }

func withUser(userID string) context.Context {
	return ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{UserID: userID})
}

type fakeVision struct {
	mu       sync.Mutex
	out      string
	err      error
	calls    int
	lastMime string
	lastUser string
}

func (f *fakeVision) GenerateFromImage(ctx context.Context, system, prompt string, image []byte, mimeType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastMime = mimeType
	f.lastUser = prompt
	return f.out, f.err
}

func (f *fakeVision) Provider() string { return "fake" }
func (f *fakeVision) Model() string    { return "fake-vision" }

func (f *fakeVision) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeText struct {
	out      string
	err      error
	lastUser string
}

func (f *fakeText) GenerateText(ctx context.Context, system, user string) (string, error) {
	f.lastUser = user
	return f.out, f.err
}

type fakeCache struct {
	mu sync.Mutex
	m  map[string][]byte
}

func newFakeCache() *fakeCache { return &fakeCache{m: map[string][]byte{}} }

func (c *fakeCache) Get(ctx context.Context, hash string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.m[hash]
	return b, ok, nil
}

func (c *fakeCache) Set(ctx context.Context, hash string, raw []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[hash] = append([]byte(nil), raw...)
	return nil
}

type fakeStore struct {
	mu        sync.Mutex
	uploads   map[string]string
	deleted   []string
	uploadErr error
}

func newFakeStore() *fakeStore { return &fakeStore{uploads: map[string]string{}} }

func (s *fakeStore) UploadImage(dbc dbctx.Context, key, contentType string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.uploadErr != nil {
		return s.uploadErr
	}
	s.uploads[key] = contentType
	return nil
}

func (s *fakeStore) DeleteImage(dbc dbctx.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, key)
	delete(s.uploads, key)
	return nil
}

func (s *fakeStore) GetPublicURL(key string) string { return "https://cdn.test/" + key }

func assertAPIError(t *testing.T, err error, status int, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %d %s, got nil error", status, code)
	}
	var ae *apierr.Error
	if !errors.As(err, &ae) {
		t.Fatalf("expected *apierr.Error, got %T: %v", err, err)
	}
	if ae.Status != status || ae.Code != code {
		t.Fatalf("api error: got=%d/%s want=%d/%s (%v)", ae.Status, ae.Code, status, code, err)
	}
}
