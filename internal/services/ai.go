package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yungbote/crystal-grimoire-backend/internal/pkg/dbctx"
)

// VisionModel identifies a crystal photo. Implemented by the gemini and openai clients.
type VisionModel interface {
	GenerateFromImage(ctx context.Context, system string, prompt string, image []byte, mimeType string) (string, error)
	Provider() string
	Model() string
}

// TextModel produces free-form guidance text.
type TextModel interface {
	GenerateText(ctx context.Context, system string, user string) (string, error)
}

// AICache keeps raw model output per image hash.
type AICache interface {
	Get(ctx context.Context, imageHash string) ([]byte, bool, error)
	Set(ctx context.Context, imageHash string, raw []byte) error
}

// SpecimenStore persists submitted photos.
type SpecimenStore interface {
	UploadImage(dbc dbctx.Context, key string, contentType string, data []byte) error
	DeleteImage(dbc dbctx.Context, key string) error
	GetPublicURL(key string) string
}

const automationMarker = "AUTOMATION_DATA:"

// ExtractJSONObject pulls the outermost JSON object out of model output. It tolerates
// markdown fences, leading prose and an AUTOMATION_DATA: marker. prose is whatever
// text preceded the object.
func ExtractJSONObject(text string) (obj map[string]any, prose string, err error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return nil, "", fmt.Errorf("empty model output")
	}

	if i := strings.Index(s, automationMarker); i >= 0 {
		prose = strings.TrimSpace(s[:i])
		s = strings.TrimSpace(s[i+len(automationMarker):])
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return nil, prose, fmt.Errorf("no JSON object in model output")
	}
	if prose == "" {
		prose = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s[:start]), "```json"))
		prose = strings.TrimSpace(strings.TrimSuffix(prose, "```"))
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(s[start : end+1])))
	dec.UseNumber()
	if err := dec.Decode(&obj); err != nil {
		return nil, prose, fmt.Errorf("decode model JSON: %w", err)
	}
	if obj == nil {
		return nil, prose, fmt.Errorf("model JSON is null")
	}
	return obj, prose, nil
}
