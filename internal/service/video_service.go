package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
)

// Platform feed posts accept aspect ratios in this width/height range;
// anything outside must be transcoded before upload.
const (
	AspectRatioMin = 0.8
	AspectRatioMax = 1.91
)

// VideoService validates a local video against the platform aspect-ratio
// constraint and transcodes it when needed.
type VideoService interface {
	// EnsureAspect returns the path of an upload-ready file plus a cleanup
	// function owning any temporary artifact. The cleanup must run after the
	// upload regardless of its outcome.
	EnsureAspect(ctx context.Context, localPath string) (string, func(), error)
}

type ffmpegVideoService struct{}

func NewFFmpegVideoService() VideoService {
	return &ffmpegVideoService{}
}

func (s *ffmpegVideoService) EnsureAspect(ctx context.Context, localPath string) (string, func(), error) {
	noop := func() {}

	width, height, err := s.probe(ctx, localPath)
	if err != nil {
		return "", noop, err
	}

	ratio := float64(width) / float64(height)
	if ratio >= AspectRatioMin && ratio <= AspectRatioMax {
		return localPath, noop, nil
	}
	slog.Warn("video aspect ratio out of range, transcoding", "path", localPath, "ratio", ratio)

	tmp, err := os.CreateTemp("", "sheetcast-*.mp4")
	if err != nil {
		return "", noop, fmt.Errorf("failed to create transcode target: %w", err)
	}
	tmp.Close()

	if err := s.convert(ctx, localPath, tmp.Name()); err != nil {
		os.Remove(tmp.Name())
		return "", noop, err
	}

	cleanup := func() {
		if err := os.Remove(tmp.Name()); err != nil && !os.IsNotExist(err) {
			slog.Warn("failed to remove transcode artifact", "path", tmp.Name(), "error", err)
		}
	}
	return tmp.Name(), cleanup, nil
}

// probe reads the pixel dimensions of the first video stream via ffprobe.
func (s *ffmpegVideoService) probe(ctx context.Context, path string) (int, int, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		"-select_streams", "v:0",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return 0, 0, fmt.Errorf("ffprobe failed for %s: %w", path, err)
	}

	var result struct {
		Streams []struct {
			Width  int `json:"width"`
			Height int `json:"height"`
		} `json:"streams"`
	}
	if err := json.Unmarshal(out, &result); err != nil {
		return 0, 0, fmt.Errorf("failed to parse ffprobe output for %s: %w", path, err)
	}
	if len(result.Streams) == 0 || result.Streams[0].Width == 0 || result.Streams[0].Height == 0 {
		return 0, 0, fmt.Errorf("no video stream dimensions found in %s", path)
	}
	return result.Streams[0].Width, result.Streams[0].Height, nil
}

// convert transcodes to a 4:5 feed-compliant mp4.
func (s *ffmpegVideoService) convert(ctx context.Context, inputPath, outputPath string) error {
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-i", inputPath,
		"-c:v", "libx264",
		"-c:a", "aac",
		"-pix_fmt", "yuv420p",
		"-vf", "scale=1080:-2,crop=1080:1350",
		"-movflags", "+faststart",
		"-y", outputPath,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg conversion failed for %s: %w (%s)", inputPath, err, string(out))
	}
	slog.Info("transcoded video", "input", inputPath, "output", outputPath)
	return nil
}
