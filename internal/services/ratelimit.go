package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitedModels makes the vision and text models share one limiter of perMinute calls.
// perMinute <= 0 returns the models unchanged. Nil models stay nil.
func RateLimitedModels(vision VisionModel, text TextModel, perMinute, burst int) (VisionModel, TextModel) {
	if perMinute <= 0 {
		return vision, text
	}
	if burst < 1 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), burst)

	var v VisionModel
	if vision != nil {
		v = &limitedVision{next: vision, limiter: limiter}
	}
	var t TextModel
	if text != nil {
		t = &limitedText{next: text, limiter: limiter}
	}
	return v, t
}

type limitedVision struct {
	next    VisionModel
	limiter *rate.Limiter
}

func (m *limitedVision) GenerateFromImage(ctx context.Context, system, prompt string, image []byte, mimeType string) (string, error) {
	if err := m.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}
	return m.next.GenerateFromImage(ctx, system, prompt, image, mimeType)
}

func (m *limitedVision) Provider() string { return m.next.Provider() }
func (m *limitedVision) Model() string    { return m.next.Model() }

type limitedText struct {
	next    TextModel
	limiter *rate.Limiter
}

func (m *limitedText) GenerateText(ctx context.Context, system, user string) (string, error) {
	if err := m.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}
	return m.next.GenerateText(ctx, system, user)
}
