package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CONFIG_ENV", "nonexistent")
	t.Setenv("DEEPGRAM_API_KEY", "")
	t.Setenv("DEEPL_API_KEY", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Port)
	}
	if cfg.Mode != "release" {
		t.Errorf("mode = %q, want release", cfg.Mode)
	}
	if cfg.RingTimeout != 30*time.Second {
		t.Errorf("ring_timeout = %v, want 30s", cfg.RingTimeout)
	}
	if cfg.CallRateLimit != 5 || cfg.CallRateInterval != 10*time.Second {
		t.Errorf("rate limit = %d/%v, want 5/10s", cfg.CallRateLimit, cfg.CallRateInterval)
	}
	if cfg.DeepgramModel != "nova-2" {
		t.Errorf("deepgram_model = %q", cfg.DeepgramModel)
	}
	if cfg.SampleRate != 48000 {
		t.Errorf("sample_rate = %d", cfg.SampleRate)
	}
	if cfg.VADSilenceFrames != 10 {
		t.Errorf("vad_silence_frames = %d", cfg.VADSilenceFrames)
	}
	if !cfg.MetricsEnabled {
		t.Error("metrics should default to enabled")
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("CONFIG_ENV", "test")
	t.Setenv("DEEPGRAM_API_KEY", "")
	t.Setenv("DEEPL_API_KEY", "")

	if err := os.MkdirAll(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatal(err)
	}
	yaml := "mode: debug\nport: 9090\nring_timeout: 5s\nmetrics_enabled: false\n"
	if err := os.WriteFile(filepath.Join(dir, "config", "config.test.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Mode != "debug" || cfg.Port != 9090 {
		t.Errorf("mode/port = %s/%d, want debug/9090", cfg.Mode, cfg.Port)
	}
	if cfg.RingTimeout != 5*time.Second {
		t.Errorf("ring_timeout = %v, want 5s", cfg.RingTimeout)
	}
	if cfg.MetricsEnabled {
		t.Error("metrics_enabled should be overridden to false")
	}
	// Unset keys fall through to defaults.
	if cfg.SampleRate != 48000 {
		t.Errorf("sample_rate = %d, want default 48000", cfg.SampleRate)
	}
}

func TestLoadEnvOverridesKeys(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CONFIG_ENV", "nonexistent")
	t.Setenv("DEEPGRAM_API_KEY", "dg-secret")
	t.Setenv("DEEPL_API_KEY", "dl-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DeepgramAPIKey != "dg-secret" {
		t.Errorf("deepgram key = %q", cfg.DeepgramAPIKey)
	}
	if cfg.DeepLAPIKey != "dl-secret" {
		t.Errorf("deepl key = %q", cfg.DeepLAPIKey)
	}
}

// chdir changes the working directory for the duration of the test.
// It stands in for t.Chdir, which requires Go 1.24+.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
