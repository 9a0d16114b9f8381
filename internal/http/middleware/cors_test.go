package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func preflight(t *testing.T, h gin.HandlerFunc, origin string) *httptest.ResponseRecorder {
	t.Helper()
	r := gin.New()
	r.Use(h)
	r.OPTIONS("/api/crystals", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	req := httptest.NewRequest(http.MethodOptions, "/api/crystals", nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCORSAllowsLocalDevOrigins(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	for _, origin := range []string{"http://localhost:5173", "http://127.0.0.1:8080"} {
		origin := origin
		t.Run(origin, func(t *testing.T) {
			t.Parallel()
			rec := preflight(t, CORS(nil), origin)
			if rec.Code != http.StatusNoContent {
				t.Fatalf("unexpected status: got=%d want=%d", rec.Code, http.StatusNoContent)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != origin {
				t.Fatalf("unexpected allow-origin header: got=%q want=%q", got, origin)
			}
		})
	}
}

func TestCORSConfiguredOrigins(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	h := CORS([]string{"https://grimoire.example"})
	rec := preflight(t, h, "https://grimoire.example")
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://grimoire.example" {
		t.Fatalf("allow-origin: got=%q want=%q", got, "https://grimoire.example")
	}

	rec = preflight(t, h, "http://localhost:5173")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("unlisted origin: got=%d want=%d", rec.Code, http.StatusForbidden)
	}
}

func TestCORSWildcard(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	rec := preflight(t, CORS([]string{"*"}), "https://anywhere.example")
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("allow-origin: got=%q want=*", got)
	}
}
