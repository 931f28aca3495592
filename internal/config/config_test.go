package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidateRequiresKeys(t *testing.T) {
	cfg := Config{Provider: "anthropic", AnthropicAPIKey: "sk-ant"}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("missing service key must fail validation")
	}

	cfg.ServiceAPIKey = "svc"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	cfg.Provider = "openai"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("openai provider without key must fail validation")
	}

	cfg.Provider = "gemini"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("unknown provider must fail validation")
	}
}

func TestLoadSectionOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sections.yaml")
	content := `fundingHistory:
  max_retries: 4
  quality_threshold: 1
consistencyCheck:
  retry_on_low_quality: false
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := Config{SectionsFile: path}
	if err := cfg.LoadSectionOverrides(); err != nil {
		t.Fatalf("LoadSectionOverrides: %v", err)
	}

	ov, ok := cfg.SectionOverrides["fundingHistory"]
	if !ok {
		t.Fatalf("fundingHistory override missing")
	}
	if ov.MaxRetries == nil || *ov.MaxRetries != 4 {
		t.Fatalf("max_retries = %v", ov.MaxRetries)
	}
	if ov.QualityThreshold == nil || *ov.QualityThreshold != 1 {
		t.Fatalf("quality_threshold = %v", ov.QualityThreshold)
	}
	if ov.RetryOnRefusal != nil {
		t.Fatalf("unset field must stay nil")
	}

	cc := cfg.SectionOverrides["consistencyCheck"]
	if cc.RetryOnLowQuality == nil || *cc.RetryOnLowQuality {
		t.Fatalf("retry_on_low_quality = %v", cc.RetryOnLowQuality)
	}
}

func TestLoadSectionOverridesMissingFileIsOK(t *testing.T) {
	cfg := Config{}
	if err := cfg.LoadSectionOverrides(); err != nil {
		t.Fatalf("empty path must be a no-op, got %v", err)
	}

	cfg.SectionsFile = filepath.Join(t.TempDir(), "nope.yaml")
	if err := cfg.LoadSectionOverrides(); err == nil {
		t.Fatalf("configured but unreadable file must fail")
	}
}
