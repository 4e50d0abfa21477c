package media

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/kozaktomas/clip-finder/internal/detect"
)

// FrameReader streams JPEG frames out of a video at a fixed sample rate by
// piping ffmpeg's image2pipe muxer. It implements detect.FrameSource.
//
// Frames are downscaled to scaleWidth pixels wide before detection; face
// embeddings are robust to that and it keeps the detector fast.
type FrameReader struct {
	cmd    *exec.Cmd
	stdout *bufio.Reader
	stderr bytes.Buffer

	sampleRate float64
	start      float64
	index      int
	closed     bool
	logger     zerolog.Logger
}

const scaleWidth = 640

// OpenFrames starts ffmpeg decoding the file from the start offset at the
// given sample rate. The caller must Close the reader on every exit path to
// reap the process.
func (t *Tools) OpenFrames(ctx context.Context, path string, start, sampleRate float64) (*FrameReader, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %v", sampleRate)
	}

	args := frameArgs(path, start, sampleRate)
	cmd := exec.CommandContext(ctx, t.FFmpeg, args...)

	fr := &FrameReader{
		cmd:        cmd,
		sampleRate: sampleRate,
		start:      start,
		logger:     t.logger.With().Str("component", "frame_reader").Logger(),
	}
	cmd.Stderr = &fr.stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("open ffmpeg stdout: %w", err)
	}
	fr.stdout = bufio.NewReaderSize(stdout, 1<<20)

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ffmpeg for %s: %w", path, err)
	}

	fr.logger.Debug().
		Str("path", path).
		Float64("start", start).
		Float64("sample_rate", sampleRate).
		Msg("frame stream opened")
	return fr, nil
}

// frameArgs builds the ffmpeg argument list for sampled JPEG output.
func frameArgs(path string, start, sampleRate float64) []string {
	args := []string{"-hide_banner", "-loglevel", "error", "-nostdin"}
	if start > 0 {
		args = append(args, "-ss", strconv.FormatFloat(start, 'f', 3, 64))
	}
	args = append(args,
		"-i", path,
		"-vf", fmt.Sprintf("fps=%g,scale=%d:-1", sampleRate, scaleWidth),
		"-f", "image2pipe",
		"-c:v", "mjpeg",
		"-q:v", "2",
		"pipe:1",
	)
	return args
}

// Next returns the next frame with its computed timestamp, or io.EOF when the
// stream ends.
func (r *FrameReader) Next(ctx context.Context) (detect.Frame, error) {
	if err := ctx.Err(); err != nil {
		return detect.Frame{}, err
	}
	if r.closed {
		return detect.Frame{}, io.EOF
	}

	data, err := readJPEG(r.stdout)
	if err == io.EOF {
		if werr := r.wait(); werr != nil {
			return detect.Frame{}, werr
		}
		return detect.Frame{}, io.EOF
	}
	if err != nil {
		return detect.Frame{}, fmt.Errorf("read frame %d: %w", r.index, err)
	}

	frame := detect.Frame{
		Timestamp: r.start + float64(r.index)/r.sampleRate,
		JPEG:      data,
	}
	r.index++
	return frame, nil
}

// Close terminates the decoder. Safe to call multiple times.
func (r *FrameReader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	if r.cmd.Process != nil {
		_ = r.cmd.Process.Kill()
	}
	_ = r.cmd.Wait()
	return nil
}

// wait reaps the finished decoder and surfaces a decode failure, which the
// session treats as an unreadable source.
func (r *FrameReader) wait() error {
	if r.closed {
		return nil
	}
	r.closed = true
	if err := r.cmd.Wait(); err != nil {
		msg := bytes.TrimSpace(r.stderr.Bytes())
		if len(msg) > 0 {
			return fmt.Errorf("ffmpeg: %w: %s", err, msg)
		}
		return fmt.Errorf("ffmpeg: %w", err)
	}
	return nil
}

// readJPEG reads one JPEG image from a concatenated MJPEG stream, delimited
// by the SOI (FFD8) and EOI (FFD9) markers.
func readJPEG(r *bufio.Reader) ([]byte, error) {
	// Seek to the start-of-image marker, skipping any stray bytes.
	for {
		b, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		if b != 0xFF {
			continue
		}
		next, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		if next == 0xD8 {
			break
		}
	}

	buf := make([]byte, 0, 64<<10)
	buf = append(buf, 0xFF, 0xD8)

	prev := byte(0)
	for {
		b, err := r.ReadByte()
		if err != nil {
			if err == io.EOF {
				return nil, io.ErrUnexpectedEOF
			}
			return nil, err
		}
		buf = append(buf, b)
		if prev == 0xFF && b == 0xD9 {
			return buf, nil
		}
		prev = b
	}
}
