package app

import (
	"errors"
	"testing"
)

func TestResolveAIProviderConfigAuto(t *testing.T) {
	tests := []struct {
		name       string
		cfg        Config
		want       AIProvider
		wantSource string
	}{
		{"gemini key wins", Config{GeminiAPIKey: "g", OpenAIAPIKey: "o", OpenAITimeoutSeconds: 30}, AIProviderGemini, "gemini_api_key"},
		{"openai only", Config{OpenAIAPIKey: "o", OpenAITimeoutSeconds: 30}, AIProviderOpenAI, "openai_api_key"},
		{"no keys", Config{}, AIProviderNone, "no_api_key"},
		{"explicit none", Config{AIProvider: "None", GeminiAPIKey: "g"}, AIProviderNone, "explicit"},
		{"explicit openai", Config{AIProvider: " openai ", OpenAIAPIKey: "o", OpenAITimeoutSeconds: 5}, AIProviderOpenAI, "explicit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveAIProviderConfig(tt.cfg)
			if err != nil {
				t.Fatalf("resolveAIProviderConfig: %v", err)
			}
			if got.Provider != tt.want {
				t.Fatalf("provider: want=%q got=%q", tt.want, got.Provider)
			}
			if got.ModeSource != tt.wantSource {
				t.Fatalf("mode source: want=%q got=%q", tt.wantSource, got.ModeSource)
			}
		})
	}
}

func TestResolveAIProviderConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want AIProviderConfigErrorCode
	}{
		{"unknown provider", Config{AIProvider: "claude"}, AIProviderConfigErrorUnknownProvider},
		{"gemini without key", Config{AIProvider: "gemini"}, AIProviderConfigErrorMissingGemini},
		{"openai without key", Config{AIProvider: "openai", OpenAITimeoutSeconds: 30}, AIProviderConfigErrorMissingOpenAI},
		{"openai zero timeout", Config{AIProvider: "openai", OpenAIAPIKey: "o"}, AIProviderConfigErrorInvalidTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := resolveAIProviderConfig(tt.cfg)
			if err == nil {
				t.Fatalf("resolveAIProviderConfig: expected error, got nil")
			}
			var got *AIProviderConfigError
			if !errors.As(err, &got) {
				t.Fatalf("expected AIProviderConfigError, got=%T", err)
			}
			if got.Code != tt.want {
				t.Fatalf("code: want=%q got=%q", tt.want, got.Code)
			}
		})
	}
}
