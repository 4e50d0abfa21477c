package media

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
)

// Exporter cuts accepted clips out of the source video with stream copy, so
// extraction is fast and lossless.
type Exporter struct {
	tools  *Tools
	outDir string
}

// NewExporter creates the output directory if needed.
func NewExporter(tools *Tools, outDir string) (*Exporter, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	return &Exporter{tools: tools, outDir: outDir}, nil
}

// Extract cuts [start, start+duration) from the source and returns the clip
// path.
func (e *Exporter) Extract(ctx context.Context, source string, start, duration float64) (string, error) {
	if duration <= 0 {
		return "", fmt.Errorf("clip duration must be positive, got %v", duration)
	}

	name := fmt.Sprintf("clip_%d_%s.mp4", int(start), uuid.NewString()[:8])
	dst := filepath.Join(e.outDir, name)

	args := extractArgs(source, dst, start, duration)
	cmd := exec.CommandContext(ctx, e.tools.FFmpeg, args...)

	e.tools.logger.Info().
		Str("source", source).
		Str("clip", dst).
		Float64("start", start).
		Float64("duration", duration).
		Msg("extracting clip")

	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("extract clip from %s: %w: %s", source, err, out)
	}
	return dst, nil
}

// extractArgs builds the ffmpeg argument list for stream-copy extraction.
func extractArgs(source, dst string, start, duration float64) []string {
	return []string{
		"-hide_banner", "-loglevel", "error", "-nostdin",
		"-ss", strconv.FormatFloat(start, 'f', 3, 64),
		"-i", source,
		"-t", strconv.FormatFloat(duration, 'f', 3, 64),
		"-c", "copy",
		"-y",
		dst,
	}
}
