package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `{"llm":{"provider":"openai","openai":{"api_key":"test-key"}}}`)

	cfg := LoadConfig(path)

	if got, want := cfg.LLM.OpenAI.Model, "gpt-4o"; got != want {
		t.Fatalf("expected default model %q, got %q", want, got)
	}
	if got, want := cfg.Fallbacks.Confidence, 6.0; got != want {
		t.Fatalf("expected default fallback confidence %v, got %v", want, got)
	}
	if got, want := cfg.Fallbacks.SynthesisConfidence, 6.5; got != want {
		t.Fatalf("expected default synthesis confidence %v, got %v", want, got)
	}
	if got, want := cfg.Fallbacks.TrendCount, 3; got != want {
		t.Fatalf("expected default trend count %d, got %d", want, got)
	}
	if got, want := cfg.Signals.Reddit.Limit, 3; got != want {
		t.Fatalf("expected default reddit limit %d, got %d", want, got)
	}
	if got, want := cfg.Signals.Serper.BaseURL, "https://google.serper.dev"; got != want {
		t.Fatalf("expected serper base url %q, got %q", want, got)
	}
	if got, want := cfg.Storage.File.OutputDir, "output"; got != want {
		t.Fatalf("expected output dir %q, got %q", want, got)
	}
	if !cfg.Storage.File.SaveIntermediate {
		t.Fatal("expected save_intermediate to default to true")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	path := writeConfig(t, `{
		"llm": {"provider": "azure", "azure": {"api_key": "k", "endpoint": "https://unit.openai.azure.com", "deployment": "gpt4"}},
		"fallbacks": {"trend_count": 5},
		"signals": {"reddit": {"limit": 7}}
	}`)

	cfg := LoadConfig(path)

	if got, want := cfg.LLM.Provider, "azure"; got != want {
		t.Fatalf("expected provider %q, got %q", want, got)
	}
	if got, want := cfg.LLM.Azure.APIVersion, "2024-02-15-preview"; got != want {
		t.Fatalf("expected default api version %q, got %q", want, got)
	}
	if got, want := cfg.Fallbacks.TrendCount, 5; got != want {
		t.Fatalf("expected trend count %d, got %d", want, got)
	}
	if got, want := cfg.Signals.Reddit.Limit, 7; got != want {
		t.Fatalf("expected reddit limit %d, got %d", want, got)
	}
}

func TestFallbacksNormalize(t *testing.T) {
	var zero FallbacksConfig
	n := zero.Normalize()
	if n.Confidence != 6.0 || n.SynthesisConfidence != 6.5 || n.TrendCount != 3 {
		t.Fatalf("expected canonical defaults, got %+v", n)
	}

	custom := FallbacksConfig{Confidence: 4.5, SynthesisConfidence: 5.5, TrendCount: 2}
	if got := custom.Normalize(); got != custom {
		t.Fatalf("expected custom values preserved, got %+v", got)
	}
}

func TestLLMConfigValidate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     LLMConfig
		wantErr bool
	}{
		{"openai with key", LLMConfig{Provider: "openai", OpenAI: OpenAIConfig{APIKey: "k"}}, false},
		{"openai without key", LLMConfig{Provider: "openai"}, true},
		{"azure complete", LLMConfig{Provider: "azure", Azure: AzureConfig{APIKey: "k", Endpoint: "https://x", Deployment: "d"}}, false},
		{"azure missing endpoint", LLMConfig{Provider: "azure", Azure: AzureConfig{APIKey: "k", Deployment: "d"}}, true},
		{"unknown provider", LLMConfig{Provider: "anthropic"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})
	}
}

func TestTelemetryConfigValidate(t *testing.T) {
	if err := (TelemetryConfig{Enabled: true, MetricsPort: 0}).Validate(); err == nil {
		t.Fatal("expected error for enabled telemetry without metrics port")
	}
	if err := (TelemetryConfig{Enabled: false}).Validate(); err != nil {
		t.Fatalf("expected disabled telemetry to validate, got %v", err)
	}
}
