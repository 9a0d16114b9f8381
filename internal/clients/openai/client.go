package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yungbote/crystal-grimoire-backend/internal/pkg/httpx"
	"github.com/yungbote/crystal-grimoire-backend/internal/pkg/logger"
)

const ProviderName = "openai"

// ImageInput is one image attached to a Responses API request.
type ImageInput struct {
	// Can be https://... or data:image/...;base64,...
	ImageURL string
	Detail   string // "low" | "high"
}

type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	MaxRetries int
}

// Client is the OpenAI Responses API client.
type Client interface {
	// Plain text (no schema)
	GenerateText(ctx context.Context, system string, user string) (string, error)

	// Multimodal: user prompt + images -> JSON object text
	GenerateJSONWithImages(ctx context.Context, system string, user string, images []ImageInput) (string, error)

	// GenerateFromImage sends one inline image and asks for a JSON object back.
	GenerateFromImage(ctx context.Context, system string, prompt string, image []byte, mimeType string) (string, error)

	Provider() string
	Model() string
}

type client struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client

	maxRetries int
}

func NewClient(cfg Config, log *logger.Logger) (Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	baseURL = strings.TrimRight(baseURL, "/")

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "gpt-4o"
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	return &client{
		log:        log.With("service", "OpenAIClient"),
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		maxRetries: maxRetries,
	}, nil
}

func (c *client) Provider() string { return ProviderName }
func (c *client) Model() string    { return c.model }

type openAIHTTPError struct {
	StatusCode int
	Body       string
}

func (e *openAIHTTPError) Error() string {
	return fmt.Sprintf("openai http %d: %s", e.StatusCode, e.Body)
}

func (e *openAIHTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

func (c *client) doOnce(ctx context.Context, method, path string, body any) (*http.Response, []byte, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}

	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, nil, readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, raw, &openAIHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return resp, raw, nil
}

func (c *client) do(ctx context.Context, method, path string, body any, out any) error {
	backoff := 1 * time.Second

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		resp, raw, err := c.doOnce(ctx, method, path, body)
		if err == nil {
			if out == nil {
				return nil
			}
			if uErr := json.Unmarshal(raw, out); uErr != nil {
				return fmt.Errorf("openai decode error: %w", uErr)
			}
			return nil
		}

		if !httpx.IsRetryableError(err) || attempt == c.maxRetries {
			return err
		}

		sleepFor := httpx.RetryAfterDuration(resp, backoff, 10*time.Second)
		sleepFor = httpx.JitterSleep(sleepFor)

		c.log.Warn("OpenAI request retrying",
			"path", path,
			"attempt", attempt+1,
			"max_retries", c.maxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)

		if err := httpx.Sleep(ctx, sleepFor); err != nil {
			return err
		}
		backoff *= 2
	}

	return fmt.Errorf("unreachable retry loop")
}

// -------------------- Responses API --------------------

type inputMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type responsesRequest struct {
	Model string         `json:"model"`
	Input []inputMessage `json:"input"`

	Text struct {
		Format map[string]any `json:"format,omitempty"`
	} `json:"text,omitempty"`

	Temperature float64 `json:"temperature,omitempty"`
}

type responsesResponse struct {
	Output []struct {
		Type    string `json:"type"`
		Role    string `json:"role,omitempty"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text,omitempty"`
		} `json:"content,omitempty"`
	} `json:"output"`
	Refusal string `json:"refusal,omitempty"`
}

func extractOutputText(resp responsesResponse) string {
	var out strings.Builder
	for _, item := range resp.Output {
		if item.Type == "message" && item.Role == "assistant" {
			for _, c := range item.Content {
				if c.Type == "output_text" && c.Text != "" {
					out.WriteString(c.Text)
				}
			}
		}
	}
	return out.String()
}

func (c *client) respond(ctx context.Context, req responsesRequest) (string, error) {
	var resp responsesResponse
	if err := c.do(ctx, "POST", "/v1/responses", req, &resp); err != nil {
		return "", err
	}
	if resp.Refusal != "" {
		return "", fmt.Errorf("model refused: %s", resp.Refusal)
	}
	text := extractOutputText(resp)
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("no output_text found in response")
	}
	return text, nil
}

func (c *client) GenerateText(ctx context.Context, system string, user string) (string, error) {
	req := responsesRequest{
		Model: c.model,
		Input: []inputMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0.7,
	}
	return c.respond(ctx, req)
}

func (c *client) GenerateJSONWithImages(ctx context.Context, system string, user string, images []ImageInput) (string, error) {
	content := make([]map[string]any, 0, 1+len(images))
	content = append(content, map[string]any{
		"type": "input_text",
		"text": user,
	})
	for _, img := range images {
		u := strings.TrimSpace(img.ImageURL)
		if u == "" {
			continue
		}
		item := map[string]any{
			"type":      "input_image",
			"image_url": u,
		}
		if d := strings.TrimSpace(img.Detail); d != "" {
			item["detail"] = d
		}
		content = append(content, item)
	}
	if len(content) == 1 {
		return "", fmt.Errorf("at least one image is required")
	}

	req := responsesRequest{
		Model: c.model,
		Input: []inputMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: content},
		},
		Temperature: 0.2,
	}
	req.Text.Format = map[string]any{"type": "json_object"}
	return c.respond(ctx, req)
}

func (c *client) GenerateFromImage(ctx context.Context, system string, prompt string, image []byte, mimeType string) (string, error) {
	if len(image) == 0 {
		return "", fmt.Errorf("empty image")
	}
	if strings.TrimSpace(mimeType) == "" {
		mimeType = "image/jpeg"
	}
	dataURL := "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(image)
	return c.GenerateJSONWithImages(ctx, system, prompt, []ImageInput{{ImageURL: dataURL, Detail: "high"}})
}
