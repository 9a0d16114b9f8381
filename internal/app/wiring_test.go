package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"

	"github.com/yungbote/crystal-grimoire-backend/internal/data/repos/testutil"
)

func TestWiringWithoutExternalBackends(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log := testutil.Logger(t)
	gdb := testutil.DB(t)

	cfg := Config{
		Port:          "8080",
		ServiceName:   "crystal-grimoire",
		DBDriver:      "sqlite",
		AIProvider:    "none",
		MaxImageBytes: 1 << 20,
	}
	clientset, err := wireClients(context.Background(), cfg, log)
	if err != nil {
		t.Fatalf("wireClients: %v", err)
	}
	if clientset.AIProvider != AIProviderNone {
		t.Fatalf("provider: got=%q want=%q", clientset.AIProvider, AIProviderNone)
	}

	serviceset := wireServices(gdb, log, cfg, wireRepos(gdb, log), clientset)
	if serviceset.Identification.Available() {
		t.Fatalf("identification should be unavailable without a model")
	}
	if serviceset.Guidance.Available() {
		t.Fatalf("guidance should be unavailable without a model")
	}

	server := wireServer(log, cfg, wireHandlers(log, cfg, gdb, serviceset, clientset))

	w := httptest.NewRecorder()
	server.Engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status: got=%d want=%d", w.Code, http.StatusOK)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" || body["db"] != true || body["ai"] != false {
		t.Fatalf("health body: %v", body)
	}

	w = httptest.NewRecorder()
	server.Engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status code: got=%d want=%d (%s)", w.Code, http.StatusOK, w.Body.String())
	}
	var status struct {
		Status   string            `json:"status"`
		Services map[string]string `json:"services"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	wantServices := map[string]string{
		"database":         "online",
		"ai_model":         "disabled",
		"ai_cache":         "disabled",
		"specimen_storage": "disabled",
	}
	if status.Status != "operational" || !cmp.Equal(status.Services, wantServices) {
		t.Fatalf("status body: got=%+v want services=%v", status, wantServices)
	}

	w = httptest.NewRecorder()
	server.Engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/guidance/personalized", nil))
	if w.Code != http.StatusBadRequest && w.Code != http.StatusServiceUnavailable {
		t.Fatalf("guidance status: got=%d", w.Code)
	}
}
