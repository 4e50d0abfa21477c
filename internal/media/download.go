package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lrstanley/go-ytdlp"
	"github.com/rs/zerolog"
)

// Downloader fetches remote videos through yt-dlp into a cache directory
// keyed by video ID, so repeated scans of the same video skip the download.
type Downloader struct {
	cacheDir  string
	maxHeight int
	logger    zerolog.Logger
}

// NewDownloader creates the cache directory if needed.
func NewDownloader(cacheDir string, maxHeight int, logger zerolog.Logger) (*Downloader, error) {
	if maxHeight <= 0 {
		maxHeight = 720
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("create media cache directory: %w", err)
	}
	return &Downloader{
		cacheDir:  cacheDir,
		maxHeight: maxHeight,
		logger:    logger.With().Str("component", "downloader").Logger(),
	}, nil
}

// Fetch downloads the video unless a cached copy exists, returning the local
// path.
func (d *Downloader) Fetch(ctx context.Context, videoURL string) (string, error) {
	path := filepath.Join(d.cacheDir, fmt.Sprintf("video_%s.mp4", VideoID(videoURL)))

	if _, err := os.Stat(path); err == nil {
		d.logger.Info().Str("path", path).Msg("video cache hit")
		return path, nil
	}

	d.logger.Info().Str("url", videoURL).Str("path", path).Msg("downloading video")

	dl := ytdlp.New().
		Format(fmt.Sprintf("best[height<=%d]", d.maxHeight)).
		NoPlaylist().
		Output(path)

	if _, err := dl.Run(ctx, videoURL); err != nil {
		return "", fmt.Errorf("download %s: %w", videoURL, err)
	}

	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("download %s: output file missing: %w", videoURL, err)
	}
	return path, nil
}
