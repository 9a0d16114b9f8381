package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yungbote/crystal-grimoire-backend/internal/pkg/logger"
)

func newTestClient(t *testing.T, srv *httptest.Server, retries int) Client {
	t.Helper()
	c, err := NewClient(Config{
		APIKey:     "sk-test",
		BaseURL:    srv.URL,
		Model:      "gpt-test",
		Timeout:    5 * time.Second,
		MaxRetries: retries,
	}, logger.Nop())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

const okBody = `{"output":[{"type":"message","role":"assistant","content":[{"type":"output_text","text":"{\"ok\":true}"}]}]}`

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient(Config{}, logger.Nop()); err == nil {
		t.Fatalf("NewClient: expected error without api key")
	}
}

func TestGenerateFromImageSendsInlineImage(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/responses" {
			t.Errorf("path: got=%q", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("authorization: got=%q", auth)
		}
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &got)
		_, _ = io.WriteString(w, okBody)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, 0)
	out, err := c.GenerateFromImage(context.Background(), "sys", "identify", []byte{0xff, 0xd8, 0xff}, "image/jpeg")
	if err != nil {
		t.Fatalf("GenerateFromImage: %v", err)
	}
	if out != `{"ok":true}` {
		t.Fatalf("output: got=%q", out)
	}

	raw, _ := json.Marshal(got)
	if !strings.Contains(string(raw), "data:image/jpeg;base64,") {
		t.Fatalf("request missing data url: %s", raw)
	}
	if !strings.Contains(string(raw), `"json_object"`) {
		t.Fatalf("request missing json_object format: %s", raw)
	}
}

func TestGenerateTextRetriesOnServerError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = io.WriteString(w, `{"error":"busy"}`)
			return
		}
		_, _ = io.WriteString(w, okBody)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, 2)
	out, err := c.GenerateText(context.Background(), "sys", "hello")
	if err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	if out == "" || atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("GenerateText: out=%q calls=%d", out, calls)
	}
}

func TestGenerateTextDoesNotRetryClientError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":"bad"}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, 3)
	if _, err := c.GenerateText(context.Background(), "sys", "hello"); err == nil {
		t.Fatalf("GenerateText: expected error")
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("calls: got=%d want=1", n)
	}
}
