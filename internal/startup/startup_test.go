package startup

import (
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("INTERNAL_DIR", dir)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() = %v", err)
	}

	if cfg.InternalDir != dir {
		t.Errorf("InternalDir = %q, want %q", cfg.InternalDir, dir)
	}
	if cfg.RemovableDir != "/media/sd" {
		t.Errorf("RemovableDir = %q, want /media/sd", cfg.RemovableDir)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.Mount.SettleDelay != 200*time.Millisecond {
		t.Errorf("SettleDelay = %v, want 200ms", cfg.Mount.SettleDelay)
	}
	if cfg.Mount.ReadInterval != 500*time.Millisecond {
		t.Errorf("ReadInterval = %v, want 500ms", cfg.Mount.ReadInterval)
	}
	if cfg.Mount.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %d, want 3", cfg.Mount.MaxAttempts)
	}
	if cfg.Playback.TrackGap != 500*time.Millisecond {
		t.Errorf("TrackGap = %v, want 500ms", cfg.Playback.TrackGap)
	}
	if !cfg.MetricsEnabled {
		t.Error("MetricsEnabled = false, want true by default")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("INTERNAL_DIR", dir)
	t.Setenv("REMOVABLE_DIR", "/mnt/card")
	t.Setenv("PORT", "9090")
	t.Setenv("SETTLE_DELAY", "1s")
	t.Setenv("READ_INTERVAL", "250ms")
	t.Setenv("MOUNT_ATTEMPTS", "5")
	t.Setenv("TRACK_GAP", "0s")
	t.Setenv("METRICS_ENABLED", "false")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() = %v", err)
	}

	if cfg.RemovableDir != "/mnt/card" {
		t.Errorf("RemovableDir = %q, want /mnt/card", cfg.RemovableDir)
	}
	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Port)
	}
	if cfg.Mount.SettleDelay != time.Second {
		t.Errorf("SettleDelay = %v, want 1s", cfg.Mount.SettleDelay)
	}
	if cfg.Mount.ReadInterval != 250*time.Millisecond {
		t.Errorf("ReadInterval = %v, want 250ms", cfg.Mount.ReadInterval)
	}
	if cfg.Mount.MaxAttempts != 5 {
		t.Errorf("MaxAttempts = %d, want 5", cfg.Mount.MaxAttempts)
	}
	if cfg.Playback.TrackGap != 0 {
		t.Errorf("TrackGap = %v, want 0", cfg.Playback.TrackGap)
	}
	if cfg.MetricsEnabled {
		t.Error("MetricsEnabled = true, want false")
	}
}

func TestLoadConfigInvalidValuesFallBack(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("INTERNAL_DIR", dir)
	t.Setenv("SETTLE_DELAY", "soon")
	t.Setenv("MOUNT_ATTEMPTS", "several")
	t.Setenv("METRICS_ENABLED", "maybe")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() = %v", err)
	}

	if cfg.Mount.SettleDelay != 200*time.Millisecond {
		t.Errorf("SettleDelay = %v, want default 200ms", cfg.Mount.SettleDelay)
	}
	if cfg.Mount.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %d, want default 3", cfg.Mount.MaxAttempts)
	}
	if !cfg.MetricsEnabled {
		t.Error("MetricsEnabled = false, want default true")
	}
}

func TestLoadConfigMissingInternalDir(t *testing.T) {
	t.Setenv("INTERNAL_DIR", filepath.Join(t.TempDir(), "does-not-exist"))

	if _, err := LoadConfig(); err == nil {
		t.Error("LoadConfig() = nil, want error for absent internal directory")
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"1", true},
		{"true", true},
		{"YES", true},
		{"on", true},
		{"0", false},
		{"false", false},
		{"no", false},
		{"off", false},
		{"banana", true}, // falls back to the default
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("TEST_BOOL", tt.value)
			if got := getEnvBool("TEST_BOOL", true); got != tt.want {
				t.Errorf("getEnvBool(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}
