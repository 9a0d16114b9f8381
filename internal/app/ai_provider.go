package app

import (
	"fmt"
	"strings"
)

type AIProvider string

const (
	AIProviderGemini AIProvider = "gemini"
	AIProviderOpenAI AIProvider = "openai"
	AIProviderNone   AIProvider = "none"
)

type AIProviderConfigErrorCode string

const (
	AIProviderConfigErrorUnknownProvider AIProviderConfigErrorCode = "unknown_ai_provider"
	AIProviderConfigErrorMissingGemini   AIProviderConfigErrorCode = "missing_gemini_api_key"
	AIProviderConfigErrorMissingOpenAI   AIProviderConfigErrorCode = "missing_openai_api_key"
	AIProviderConfigErrorInvalidTimeout  AIProviderConfigErrorCode = "invalid_openai_timeout"
)

type AIProviderConfigError struct {
	Code     AIProviderConfigErrorCode
	Provider AIProvider
	Cause    error
}

func (e *AIProviderConfigError) Error() string {
	if e == nil {
		return "invalid ai provider config"
	}
	return fmt.Sprintf("invalid ai provider config (code=%s provider=%q): %v", e.Code, e.Provider, e.Cause)
}

func (e *AIProviderConfigError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

type AIProviderConfig struct {
	Provider AIProvider
	// ModeSource is "explicit" when AI_PROVIDER was set, otherwise the key that decided it.
	ModeSource string
}

// resolveAIProviderConfig picks the model backend. An empty AI_PROVIDER prefers Gemini,
// then OpenAI, then runs without AI.
func resolveAIProviderConfig(cfg Config) (AIProviderConfig, error) {
	raw := AIProvider(strings.ToLower(strings.TrimSpace(cfg.AIProvider)))
	hasGemini := strings.TrimSpace(cfg.GeminiAPIKey) != ""
	hasOpenAI := strings.TrimSpace(cfg.OpenAIAPIKey) != ""

	switch raw {
	case "":
		switch {
		case hasGemini:
			return AIProviderConfig{Provider: AIProviderGemini, ModeSource: "gemini_api_key"}, nil
		case hasOpenAI:
			if err := checkOpenAITimeout(cfg); err != nil {
				return AIProviderConfig{}, err
			}
			return AIProviderConfig{Provider: AIProviderOpenAI, ModeSource: "openai_api_key"}, nil
		default:
			return AIProviderConfig{Provider: AIProviderNone, ModeSource: "no_api_key"}, nil
		}
	case AIProviderGemini:
		if !hasGemini {
			return AIProviderConfig{}, &AIProviderConfigError{
				Code:     AIProviderConfigErrorMissingGemini,
				Provider: raw,
				Cause:    fmt.Errorf("AI_PROVIDER=gemini requires GEMINI_API_KEY"),
			}
		}
	case AIProviderOpenAI:
		if !hasOpenAI {
			return AIProviderConfig{}, &AIProviderConfigError{
				Code:     AIProviderConfigErrorMissingOpenAI,
				Provider: raw,
				Cause:    fmt.Errorf("AI_PROVIDER=openai requires OPENAI_API_KEY"),
			}
		}
		if err := checkOpenAITimeout(cfg); err != nil {
			return AIProviderConfig{}, err
		}
	case AIProviderNone:
	default:
		return AIProviderConfig{}, &AIProviderConfigError{
			Code:     AIProviderConfigErrorUnknownProvider,
			Provider: raw,
			Cause:    fmt.Errorf("unsupported AI_PROVIDER %q", cfg.AIProvider),
		}
	}
	return AIProviderConfig{Provider: raw, ModeSource: "explicit"}, nil
}

func checkOpenAITimeout(cfg Config) error {
	if cfg.OpenAITimeoutSeconds > 0 {
		return nil
	}
	return &AIProviderConfigError{
		Code:     AIProviderConfigErrorInvalidTimeout,
		Provider: AIProviderOpenAI,
		Cause:    fmt.Errorf("OPENAI_TIMEOUT_SECONDS must be positive, got %d", cfg.OpenAITimeoutSeconds),
	}
}
