package config

import (
	"testing"
	"time"
)

func TestLoadFromEnvDefaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Errorf("unexpected addr %q", cfg.Addr)
	}
	if cfg.DefaultLanguage != "es" {
		t.Errorf("unexpected language %q", cfg.DefaultLanguage)
	}
	if cfg.ShutdownGracePeriod != 15*time.Second {
		t.Errorf("unexpected grace period %v", cfg.ShutdownGracePeriod)
	}
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("KAREN_ADDR", ":9999")
	t.Setenv("KAREN_CHAT_MODEL", "gemini-test")
	t.Setenv("KAREN_CORS_ORIGINS", "https://a.test, https://b.test")
	t.Setenv("KAREN_READ_TIMEOUT", "45s")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9999" {
		t.Errorf("unexpected addr %q", cfg.Addr)
	}
	if cfg.ChatModel != "gemini-test" {
		t.Errorf("unexpected model %q", cfg.ChatModel)
	}
	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Errorf("expected 2 origins, got %d", len(cfg.CORSAllowedOrigins))
	}
	if cfg.ReadTimeout != 45*time.Second {
		t.Errorf("unexpected read timeout %v", cfg.ReadTimeout)
	}
}

func TestLoadFromEnvRejectsBadValues(t *testing.T) {
	t.Setenv("KAREN_LIVE_MAX_FRAME_BYTES", "-1")
	if _, err := LoadFromEnv(); err == nil {
		t.Error("expected error for negative frame limit")
	}
}

func TestGeminiKeyFallsBackToGoogleKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "g-key")
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.GeminiAPIKey != "g-key" {
		t.Errorf("expected GOOGLE_API_KEY fallback, got %q", cfg.GeminiAPIKey)
	}
}
