package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Scan.TargetDuration != 8 {
		t.Errorf("TargetDuration = %v, want 8", cfg.Scan.TargetDuration)
	}
	if cfg.Scan.SampleFPS != 5 {
		t.Errorf("SampleFPS = %v, want 5", cfg.Scan.SampleFPS)
	}
	if cfg.Scan.Tolerance != 0.45 {
		t.Errorf("Tolerance = %v, want 0.45", cfg.Scan.Tolerance)
	}
	if cfg.Scan.MinValidRatio != 0.9 {
		t.Errorf("MinValidRatio = %v, want 0.9", cfg.Scan.MinValidRatio)
	}
	if cfg.Scan.MaxScanSeconds != 1800 {
		t.Errorf("MaxScanSeconds = %v, want 1800", cfg.Scan.MaxScanSeconds)
	}
	if cfg.Scan.MaxWallClock != 0 {
		t.Errorf("MaxWallClock = %v, want 0", cfg.Scan.MaxWallClock)
	}
	if cfg.Detector.URL != "http://localhost:8000" {
		t.Errorf("Detector.URL = %q, want default", cfg.Detector.URL)
	}
	if cfg.Detector.Dim != 128 {
		t.Errorf("Detector.Dim = %d, want 128", cfg.Detector.Dim)
	}
	if cfg.Media.MaxHeight != 720 {
		t.Errorf("Media.MaxHeight = %d, want 720", cfg.Media.MaxHeight)
	}
	if cfg.Identity.Dir != "./reference_faces" {
		t.Errorf("Identity.Dir = %q, want ./reference_faces", cfg.Identity.Dir)
	}
	if cfg.Database.MaxOpenConns != 25 {
		t.Errorf("Database.MaxOpenConns = %d, want 25", cfg.Database.MaxOpenConns)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("CLIP_TARGET_DURATION", "12")
	t.Setenv("CLIP_SAMPLE_FPS", "3")
	t.Setenv("CLIP_TOLERANCE", "0.6")
	t.Setenv("CLIP_MAX_WALL_SECONDS", "90")
	t.Setenv("DETECTOR_URL", "http://detector:9000")
	t.Setenv("DETECTOR_DIM", "512")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/db")

	cfg := Load()

	if cfg.Scan.TargetDuration != 12 {
		t.Errorf("TargetDuration = %v, want 12", cfg.Scan.TargetDuration)
	}
	if cfg.Scan.SampleFPS != 3 {
		t.Errorf("SampleFPS = %v, want 3", cfg.Scan.SampleFPS)
	}
	if cfg.Scan.Tolerance != 0.6 {
		t.Errorf("Tolerance = %v, want 0.6", cfg.Scan.Tolerance)
	}
	if cfg.Scan.MaxWallClock != 90*time.Second {
		t.Errorf("MaxWallClock = %v, want 90s", cfg.Scan.MaxWallClock)
	}
	if cfg.Detector.URL != "http://detector:9000" {
		t.Errorf("Detector.URL = %q, want override", cfg.Detector.URL)
	}
	if cfg.Detector.Dim != 512 {
		t.Errorf("Detector.Dim = %d, want 512", cfg.Detector.Dim)
	}
	if cfg.Database.URL != "postgres://u:p@localhost/db" {
		t.Errorf("Database.URL = %q, want override", cfg.Database.URL)
	}
}

func TestLoadIgnoresInvalidValues(t *testing.T) {
	t.Setenv("CLIP_TOLERANCE", "not-a-number")
	t.Setenv("CLIP_SAMPLE_FPS", "-5")
	t.Setenv("DETECTOR_DIM", "0")

	cfg := Load()

	if cfg.Scan.Tolerance != 0.45 {
		t.Errorf("Tolerance = %v, want default 0.45", cfg.Scan.Tolerance)
	}
	if cfg.Scan.SampleFPS != 5 {
		t.Errorf("SampleFPS = %v, want default 5", cfg.Scan.SampleFPS)
	}
	if cfg.Detector.Dim != 128 {
		t.Errorf("Detector.Dim = %d, want default 128", cfg.Detector.Dim)
	}
}

func TestProfiles(t *testing.T) {
	cfg := Load()

	tests := []struct {
		name      string
		tolerance float64
		ratio     float64
	}{
		{name: "default", tolerance: 0.45, ratio: 0.9},
		{name: "strict", tolerance: 0.40, ratio: 0.95},
		{name: "loose", tolerance: 0.60, ratio: 0.85},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := cfg.Profile(tt.name)
			if !ok {
				t.Fatalf("profile %q not found", tt.name)
			}
			if p.Tolerance != tt.tolerance {
				t.Errorf("Tolerance = %v, want %v", p.Tolerance, tt.tolerance)
			}
			if p.MinValidRatio != tt.ratio {
				t.Errorf("MinValidRatio = %v, want %v", p.MinValidRatio, tt.ratio)
			}
		})
	}

	if _, ok := cfg.Profile("nonexistent"); ok {
		t.Error("unknown profile should not resolve")
	}
}
