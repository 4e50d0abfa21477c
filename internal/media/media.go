// Package media wraps the external video collaborators: yt-dlp for
// acquisition, ffprobe for stream metadata, ffmpeg for frame sampling and
// clip extraction. The scan core never touches these directly; it only sees
// samples going in and clip boundaries going out.
package media

import (
	"fmt"
	"net/url"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
)

// Tools holds resolved paths to the external binaries.
type Tools struct {
	FFmpeg  string
	FFprobe string
	logger  zerolog.Logger
}

// NewTools locates ffmpeg and ffprobe in PATH.
func NewTools(logger zerolog.Logger) (*Tools, error) {
	ffmpegPath, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}

	ffprobePath, err := exec.LookPath("ffprobe")
	if err != nil {
		return nil, fmt.Errorf("ffprobe not found in PATH: %w", err)
	}

	return &Tools{
		FFmpeg:  ffmpegPath,
		FFprobe: ffprobePath,
		logger:  logger.With().Str("component", "media").Logger(),
	}, nil
}

// IsURL reports whether the source looks like a remote video rather than a
// local file path.
func IsURL(source string) bool {
	u, err := url.Parse(source)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// VideoID extracts a stable identifier from a YouTube URL for cache file
// naming. Falls back to a sanitized form of the whole source string.
func VideoID(source string) string {
	u, err := url.Parse(source)
	if err == nil {
		host := strings.ToLower(u.Host)
		switch {
		case strings.Contains(host, "youtu.be"):
			if id := strings.Trim(u.Path, "/"); id != "" {
				return id
			}
		case strings.Contains(host, "youtube.com"):
			if id := u.Query().Get("v"); id != "" {
				return id
			}
			for _, prefix := range []string{"/embed/", "/v/", "/shorts/"} {
				if strings.HasPrefix(u.Path, prefix) {
					if id := strings.TrimPrefix(u.Path, prefix); id != "" {
						return id
					}
				}
			}
		}
	}

	sanitized := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, source)
	if len(sanitized) > 48 {
		sanitized = sanitized[:48]
	}
	return sanitized
}
