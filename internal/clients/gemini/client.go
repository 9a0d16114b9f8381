package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/yungbote/crystal-grimoire-backend/internal/pkg/httpx"
	"github.com/yungbote/crystal-grimoire-backend/internal/pkg/logger"
)

const ProviderName = "gemini"

type Config struct {
	APIKey     string
	Model      string
	MaxRetries int
}

// Client talks to the Gemini API through google.golang.org/genai.
type Client interface {
	GenerateText(ctx context.Context, system string, user string) (string, error)
	// GenerateFromImage sends one inline image and asks for a JSON object back.
	GenerateFromImage(ctx context.Context, system string, prompt string, image []byte, mimeType string) (string, error)

	Provider() string
	Model() string
}

// generator is the slice of *genai.Models the client needs.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type client struct {
	log        *logger.Logger
	models     generator
	model      string
	maxRetries int
}

func NewClient(ctx context.Context, cfg Config, log *logger.Logger) (Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("missing GEMINI_API_KEY")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return newClient(gc.Models, cfg, log), nil
}

func newClient(models generator, cfg Config, log *logger.Logger) *client {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "gemini-2.5-flash"
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &client{
		log:        log.With("service", "GeminiClient"),
		models:     models,
		model:      model,
		maxRetries: maxRetries,
	}
}

func (c *client) Provider() string { return ProviderName }
func (c *client) Model() string    { return c.model }

func (c *client) GenerateText(ctx context.Context, system string, user string) (string, error) {
	contents := []*genai.Content{genai.NewContentFromText(user, genai.RoleUser)}
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0.7),
	}
	if strings.TrimSpace(system) != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	return c.generate(ctx, contents, cfg)
}

func (c *client) GenerateFromImage(ctx context.Context, system string, prompt string, image []byte, mimeType string) (string, error) {
	if len(image) == 0 {
		return "", fmt.Errorf("empty image")
	}
	if strings.TrimSpace(mimeType) == "" {
		mimeType = "image/jpeg"
	}
	parts := []*genai.Part{
		genai.NewPartFromText(prompt),
		genai.NewPartFromBytes(image, mimeType),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	cfg := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0.2),
		ResponseMIMEType: "application/json",
	}
	if strings.TrimSpace(system) != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	return c.generate(ctx, contents, cfg)
}

func (c *client) generate(ctx context.Context, contents []*genai.Content, cfg *genai.GenerateContentConfig) (string, error) {
	backoff := 1 * time.Second

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		resp, err := c.models.GenerateContent(ctx, c.model, contents, cfg)
		if err == nil {
			text := ""
			if resp != nil {
				text = resp.Text()
			}
			if strings.TrimSpace(text) == "" {
				return "", fmt.Errorf("gemini returned no text")
			}
			return text, nil
		}

		err = wrapAPIError(err)
		if !httpx.IsRetryableError(err) || attempt == c.maxRetries {
			return "", err
		}

		sleepFor := httpx.JitterSleep(backoff)
		c.log.Warn("Gemini request retrying",
			"model", c.model,
			"attempt", attempt+1,
			"max_retries", c.maxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)
		if err := httpx.Sleep(ctx, sleepFor); err != nil {
			return "", err
		}
		backoff *= 2
	}

	return "", fmt.Errorf("unreachable retry loop")
}

// apiError exposes the upstream status code to httpx retry classification.
type apiError struct {
	code int
	err  error
}

func (e *apiError) Error() string       { return fmt.Sprintf("gemini http %d: %v", e.code, e.err) }
func (e *apiError) Unwrap() error       { return e.err }
func (e *apiError) HTTPStatusCode() int { return e.code }

func wrapAPIError(err error) error {
	var v genai.APIError
	if errors.As(err, &v) {
		return &apiError{code: v.Code, err: err}
	}
	var p *genai.APIError
	if errors.As(err, &p) && p != nil {
		return &apiError{code: p.Code, err: err}
	}
	return err
}
