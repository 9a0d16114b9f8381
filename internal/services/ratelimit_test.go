package services

import (
	"context"
	"testing"
	"time"
)

func TestRateLimitedModelsDisabled(t *testing.T) {
	fv := &fakeVision{out: "{}"}
	v, tx := RateLimitedModels(fv, nil, 0, 0)
	if v != VisionModel(fv) {
		t.Fatalf("vision: expected the original model when limiting is off")
	}
	if tx != nil {
		t.Fatalf("text: got=%v want=nil", tx)
	}
}

func TestRateLimitedModelsShareBudget(t *testing.T) {
	fv := &fakeVision{out: "{}"}
	ft := &fakeText{out: "ok"}
	v, tx := RateLimitedModels(fv, ft, 1, 1)

	if _, err := v.GenerateFromImage(context.Background(), "s", "p", pngBytes, "image/png"); err != nil {
		t.Fatalf("first call: %v", err)
	}
	if v.Provider() != "fake" || v.Model() != "fake-vision" {
		t.Fatalf("identity not forwarded: %s/%s", v.Provider(), v.Model())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := tx.GenerateText(ctx, "s", "u"); err == nil {
		t.Fatalf("second call inside the same minute should be refused")
	}
	if ft.lastUser != "" {
		t.Fatalf("text model was called despite the limiter")
	}
	if fv.callCount() != 1 {
		t.Fatalf("vision calls: got=%d want=1", fv.callCount())
	}
}
