package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSplitAndTrim(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", nil},
		{"single", "https://tabkeep.app", []string{"https://tabkeep.app"}},
		{"multiple with spaces", "https://tabkeep.app, https://www.tabkeep.app", []string{"https://tabkeep.app", "https://www.tabkeep.app"}},
		{"quoted values", `"https://tabkeep.app", 'http://localhost:3000'`, []string{"https://tabkeep.app", "http://localhost:3000"}},
		{"trailing comma", "https://tabkeep.app,", []string{"https://tabkeep.app"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitAndTrim(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("splitAndTrim(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("splitAndTrim(%q)[%d] = %q, want %q", tt.input, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestMustDuration(t *testing.T) {
	t.Setenv("TEST_DURATION", "10m")
	if got := mustDuration("TEST_DURATION", time.Hour); got != 10*time.Minute {
		t.Errorf("mustDuration() = %v, want 10m", got)
	}

	t.Setenv("TEST_DURATION", "not-a-duration")
	if got := mustDuration("TEST_DURATION", time.Hour); got != time.Hour {
		t.Errorf("mustDuration() with invalid value = %v, want default 1h", got)
	}

	if got := mustDuration("TEST_DURATION_UNSET", 2*time.Hour); got != 2*time.Hour {
		t.Errorf("mustDuration() with unset key = %v, want default 2h", got)
	}
}

func TestApplyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tabkeep.yaml")
	content := []byte(`
allowed_origins:
  - https://tabkeep.app
  - "*.vercel.app"
scanner:
  interval: 1m
  inactivity_threshold: 30m
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := &Config{
		AllowedOrigins:      []string{"http://localhost:3000"},
		ScanInterval:        5 * time.Minute,
		InactivityThreshold: 2 * time.Hour,
	}

	if err := applyFile(cfg, path); err != nil {
		t.Fatalf("applyFile() error: %v", err)
	}

	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "*.vercel.app" {
		t.Errorf("applyFile() origins = %v, want file values", cfg.AllowedOrigins)
	}
	if cfg.ScanInterval != time.Minute {
		t.Errorf("applyFile() scan interval = %v, want 1m", cfg.ScanInterval)
	}
	if cfg.InactivityThreshold != 30*time.Minute {
		t.Errorf("applyFile() threshold = %v, want 30m", cfg.InactivityThreshold)
	}
}

func TestApplyFileInvalid(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("scanner:\n  interval: nope\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := applyFile(&Config{}, path); err == nil {
		t.Error("applyFile() with invalid duration should fail")
	}

	if err := applyFile(&Config{}, filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("applyFile() with missing file should fail")
	}
}
