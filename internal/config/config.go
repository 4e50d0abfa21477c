package config

import (
	_ "embed"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed profiles.yaml
var profilesYAML []byte

type Config struct {
	Scan     ScanConfig
	Detector DetectorConfig
	Media    MediaConfig
	Identity IdentityConfig
	Database DatabaseConfig
	Profiles ProfilesConfig
}

type ScanConfig struct {
	TargetDuration float64       // clip length in seconds (default 8)
	SampleFPS      float64       // analyzed frames per second (default 5)
	Tolerance      float64       // max embedding distance for one identity (default 0.45)
	MinValidRatio  float64       // min fraction of single-face frames per window (default 0.9)
	MaxScanSeconds float64       // media timestamp cap (default 1800)
	MaxWallClock   time.Duration // optional wall-clock cap (default none)
}

type DetectorConfig struct {
	URL      string  // face detection service (defaults to http://localhost:8000)
	Dim      int     // embedding dimensionality (defaults to 128)
	MinScore float64 // minimum detection confidence (defaults to 0.7)
}

type MediaConfig struct {
	CacheDir  string // downloaded videos (defaults to ./temp)
	OutputDir string // extracted clips (defaults to ./processed_videos)
	MaxHeight int    // download resolution cap (defaults to 720)
}

type IdentityConfig struct {
	Dir string // file-store directory (defaults to ./reference_faces)
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL; empty selects the file store
	MaxOpenConns int    // maximum open connections (default 25)
	MaxIdleConns int    // maximum idle connections (default 5)
}

// ProfilesConfig holds the named scan presets embedded in the binary.
type ProfilesConfig struct {
	Profiles map[string]ScanProfile `yaml:"profiles"`
}

// ScanProfile is a tolerance/ratio preset selectable with --profile.
type ScanProfile struct {
	Tolerance     float64 `yaml:"tolerance"`
	MinValidRatio float64 `yaml:"min_valid_ratio"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a positive float.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

// envString reads an environment variable with a fallback.
func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

func Load() *Config {
	var profiles ProfilesConfig
	if err := yaml.Unmarshal(profilesYAML, &profiles); err != nil {
		// Embedded file, this cannot happen in a correct build.
		panic("failed to unmarshal embedded profiles.yaml: " + err.Error())
	}

	return &Config{
		Scan: ScanConfig{
			TargetDuration: envFloat("CLIP_TARGET_DURATION", 8),
			SampleFPS:      envFloat("CLIP_SAMPLE_FPS", 5),
			Tolerance:      envFloat("CLIP_TOLERANCE", 0.45),
			MinValidRatio:  envFloat("CLIP_MIN_VALID_RATIO", 0.9),
			MaxScanSeconds: envFloat("CLIP_MAX_SCAN_SECONDS", 1800),
			MaxWallClock:   time.Duration(envFloat("CLIP_MAX_WALL_SECONDS", 0) * float64(time.Second)),
		},
		Detector: DetectorConfig{
			URL:      envString("DETECTOR_URL", "http://localhost:8000"),
			Dim:      envInt("DETECTOR_DIM", 128),
			MinScore: envFloat("DETECTOR_MIN_SCORE", 0.7),
		},
		Media: MediaConfig{
			CacheDir:  envString("MEDIA_CACHE_DIR", "./temp"),
			OutputDir: envString("MEDIA_OUTPUT_DIR", "./processed_videos"),
			MaxHeight: envInt("MEDIA_MAX_HEIGHT", 720),
		},
		Identity: IdentityConfig{
			Dir: envString("IDENTITY_DIR", "./reference_faces"),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Profiles: profiles,
	}
}

// Profile returns the named scan preset.
func (c *Config) Profile(name string) (ScanProfile, bool) {
	p, ok := c.Profiles.Profiles[name]
	return p, ok
}
