package media

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Info is the subset of stream metadata the scanner needs.
type Info struct {
	Duration float64 // seconds
	FPS      float64
	Width    int
	Height   int
}

type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType    string `json:"codec_type"`
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		AvgFrameRate string `json:"avg_frame_rate"`
		RFrameRate   string `json:"r_frame_rate"`
	} `json:"streams"`
}

// Probe runs ffprobe and parses duration and frame rate of the first video
// stream.
func (t *Tools) Probe(ctx context.Context, path string) (Info, error) {
	cmd := exec.CommandContext(ctx, t.FFprobe,
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)

	out, err := cmd.Output()
	if err != nil {
		return Info{}, fmt.Errorf("ffprobe %s: %w", path, err)
	}

	var parsed probeOutput
	if err := json.Unmarshal(out, &parsed); err != nil {
		return Info{}, fmt.Errorf("parse ffprobe output for %s: %w", path, err)
	}

	info := Info{}
	if parsed.Format.Duration != "" {
		if d, err := strconv.ParseFloat(parsed.Format.Duration, 64); err == nil {
			info.Duration = d
		}
	}

	for _, s := range parsed.Streams {
		if s.CodecType != "video" {
			continue
		}
		info.Width = s.Width
		info.Height = s.Height
		info.FPS = parseFrameRate(s.AvgFrameRate)
		if info.FPS == 0 {
			info.FPS = parseFrameRate(s.RFrameRate)
		}
		break
	}

	if info.FPS == 0 {
		// Some containers omit frame rates; 30 keeps timestamp math sane.
		info.FPS = 30
	}

	t.logger.Debug().
		Str("path", path).
		Float64("duration", info.Duration).
		Float64("fps", info.FPS).
		Msg("probed video")
	return info, nil
}

// parseFrameRate parses ffprobe rational rates like "30000/1001" or "25/1".
func parseFrameRate(rate string) float64 {
	if rate == "" || rate == "0/0" {
		return 0
	}

	parts := strings.SplitN(rate, "/", 2)
	num, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0
	}
	if len(parts) == 1 {
		return num
	}

	den, err := strconv.ParseFloat(parts[1], 64)
	if err != nil || den == 0 {
		return 0
	}
	return num / den
}
