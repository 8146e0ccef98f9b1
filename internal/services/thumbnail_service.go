package services

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/mediavault/backend/internal/config"
)

// Still frames are always taken this far into the stream.
const thumbnailOffsetSeconds = 1

// Thumbnailer derives still images and probes durations from video files.
type Thumbnailer interface {
	ExtractFrame(ctx context.Context, srcPath, dstPath string) error
	ProbeDuration(ctx context.Context, path string) (int, error)
}

// ThumbnailService extracts video stills via the ffmpeg CLI (no CGO
// required). Every call is best-effort and independently retryable.
type ThumbnailService struct {
	ffmpegBin  string
	ffprobeBin string
}

func NewThumbnailService(cfg *config.Config) *ThumbnailService {
	return &ThumbnailService{
		ffmpegBin:  cfg.FFmpegBin,
		ffprobeBin: cfg.FFprobeBin,
	}
}

// ExtractFrame writes a single JPEG frame taken 1 second into the video.
// Overwrites any existing destination, so regeneration is idempotent.
func (s *ThumbnailService) ExtractFrame(ctx context.Context, srcPath, dstPath string) error {
	cmd := exec.CommandContext(ctx, s.ffmpegBin,
		"-y",
		"-ss", strconv.Itoa(thumbnailOffsetSeconds),
		"-i", srcPath,
		"-frames:v", "1",
		"-f", "image2",
		dstPath,
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg frame extraction failed: %w, output: %s", err, string(output))
	}

	// Verify the file was created
	if _, err := os.Stat(dstPath); err != nil {
		return fmt.Errorf("thumbnail file not created: %w", err)
	}
	return nil
}

// ProbeDuration returns the container duration in whole seconds.
func (s *ThumbnailService) ProbeDuration(ctx context.Context, path string) (int, error) {
	cmd := exec.CommandContext(ctx, s.ffprobeBin,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w", err)
	}

	seconds, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil {
		return 0, fmt.Errorf("unexpected ffprobe output %q: %w", string(output), err)
	}
	return int(seconds), nil
}
