package videoproc

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Output encoding is fixed across all platform variants: every rendition
// is an H.264/AAC mp4 normalized to 30fps.
const (
	outputVideoCodec   = "libx264"
	outputAudioCodec   = "aac"
	outputVideoBitrate = "2000k"
	outputAudioBitrate = "128k"
	outputFrameRate    = "30"
)

// DefaultRenderTimeout bounds a single ffmpeg invocation. The external
// transcoder otherwise has no deadline of its own.
const DefaultRenderTimeout = 10 * time.Minute

// RenderError reports a failed transcoder invocation for one variant.
// The orchestrator records it per-variant; it never aborts sibling variants.
type RenderError struct {
	Message string
}

func (e *RenderError) Error() string {
	return e.Message
}

// Dimensions is the pixel geometry of a finished rendition.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Renderer executes one transformation plan against a source file.
type Renderer interface {
	Render(ctx context.Context, inputPath, outputPath string, config PlatformConfig, metadata VideoMetadata) (Dimensions, error)
}

// FFmpegRenderer renders platform variants by shelling out to ffmpeg.
type FFmpegRenderer struct {
	// Timeout bounds each ffmpeg invocation. Zero uses DefaultRenderTimeout.
	Timeout time.Duration
}

// CheckFFmpegAvailable checks if ffmpeg is available in the system PATH.
// Returns nil if ffmpeg is available, or an error describing the issue.
func CheckFFmpegAvailable() error {
	path, err := exec.LookPath("ffmpeg")
	if err != nil {
		return fmt.Errorf("ffmpeg not found in PATH: video processing will be unavailable. Install FFmpeg with: brew install ffmpeg (macOS) or apt install ffmpeg (Linux)")
	}
	log.Debug().Str("path", path).Msg("ffmpeg found")
	return nil
}

// ParseAspectRatio parses a "W:H" ratio string (e.g. "16:9") into a float.
func ParseAspectRatio(s string) (float64, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid aspect ratio %q", s)
	}
	w, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid aspect ratio %q: %w", s, err)
	}
	h, err := strconv.ParseFloat(parts[1], 64)
	if err != nil || h == 0 {
		return 0, fmt.Errorf("invalid aspect ratio %q", s)
	}
	return w / h, nil
}

// TargetDimensions computes the output geometry for a config/source pair
// without touching ffmpeg. The same arithmetic drives the filter chain,
// so tests can verify rendition geometry directly.
func TargetDimensions(config PlatformConfig, metadata VideoMetadata) Dimensions {
	switch config.Transform {
	case TransformCropToSquare:
		// Centered square of side min(w, h), capped at the variant's max width.
		size := min(metadata.Width, metadata.Height)
		side := min(size, config.MaxWidth)
		return Dimensions{Width: side, Height: side}

	case TransformAddPadding:
		targetRatio, err := ParseAspectRatio(config.AspectRatio)
		if err != nil {
			targetRatio = float64(config.MaxWidth) / float64(config.MaxHeight)
		}
		if metadata.AspectRatio > targetRatio {
			// Source is wider than the target box: fit width, pad vertically.
			w := config.MaxWidth
			return Dimensions{Width: w, Height: int(roundf(float64(w) / targetRatio))}
		}
		// Source is taller: fit height, pad horizontally.
		h := config.MaxHeight
		return Dimensions{Width: int(roundf(float64(h) * targetRatio)), Height: h}

	default:
		// Scale down to fit the max bounds, preserving the source's own
		// aspect ratio; pass through unchanged when already within bounds.
		if metadata.Width > config.MaxWidth || metadata.Height > config.MaxHeight {
			if metadata.AspectRatio > float64(config.MaxWidth)/float64(config.MaxHeight) {
				w := config.MaxWidth
				return Dimensions{Width: w, Height: int(roundf(float64(w) / metadata.AspectRatio))}
			}
			h := config.MaxHeight
			return Dimensions{Width: int(roundf(float64(h) * metadata.AspectRatio)), Height: h}
		}
		return Dimensions{Width: metadata.Width, Height: metadata.Height}
	}
}

// BuildRenderArgs constructs the full ffmpeg argument list for one
// rendition. Exposed for tests; Render passes it to exec.
func BuildRenderArgs(inputPath, outputPath string, config PlatformConfig, metadata VideoMetadata) []string {
	dims := TargetDimensions(config, metadata)
	args := []string{"-i", inputPath}

	switch config.Transform {
	case TransformCropToSquare:
		size := min(metadata.Width, metadata.Height)
		vf := fmt.Sprintf("crop=%d:%d:(iw-%d)/2:(ih-%d)/2,scale=%d:%d",
			size, size, size, size, dims.Width, dims.Height)
		args = append(args, "-vf", vf)

	case TransformAddPadding:
		color := config.PaddingColor
		if color == "" {
			color = "black"
		}
		vf := fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2:%s",
			dims.Width, dims.Height, dims.Width, dims.Height, color)
		args = append(args, "-vf", vf)

	default:
		args = append(args, "-vf", fmt.Sprintf("scale=%d:%d", dims.Width, dims.Height))
	}

	args = append(args,
		"-c:v", outputVideoCodec,
		"-c:a", outputAudioCodec,
		"-b:v", outputVideoBitrate,
		"-b:a", outputAudioBitrate,
		"-r", outputFrameRate,
		"-f", "mp4",
		"-y", outputPath,
	)
	return args
}

// Render transcodes inputPath into a platform-conformant rendition at
// outputPath and returns the output geometry. Transcoder failures come
// back as *RenderError so the orchestrator can record them per-variant.
func (r *FFmpegRenderer) Render(ctx context.Context, inputPath, outputPath string, config PlatformConfig, metadata VideoMetadata) (Dimensions, error) {
	ffmpegPath, err := exec.LookPath("ffmpeg")
	if err != nil {
		return Dimensions{}, &RenderError{Message: "ffmpeg not found in PATH"}
	}

	timeout := r.Timeout
	if timeout == 0 {
		timeout = DefaultRenderTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := BuildRenderArgs(inputPath, outputPath, config, metadata)
	dims := TargetDimensions(config, metadata)

	log.Debug().
		Str("input", inputPath).
		Str("output", outputPath).
		Str("transform", string(config.Transform)).
		Int("width", dims.Width).
		Int("height", dims.Height).
		Msg("Running ffmpeg rendition")

	start := time.Now()
	cmd := exec.CommandContext(ctx, ffmpegPath, args...)
	output, err := cmd.CombinedOutput()
	elapsed := time.Since(start)
	if err != nil {
		log.Warn().
			Err(err).
			Str("input", inputPath).
			Str("ffmpeg_output", truncate(string(output), 2000)).
			Dur("duration", elapsed).
			Msg("ffmpeg rendition failed")
		return Dimensions{}, &RenderError{Message: fmt.Sprintf("ffmpeg failed: %v", err)}
	}

	log.Info().
		Str("output", outputPath).
		Int("width", dims.Width).
		Int("height", dims.Height).
		Dur("duration", elapsed).
		Msg("Rendition complete")

	return dims, nil
}

// roundf rounds half away from zero, matching the planner arithmetic.
func roundf(v float64) float64 {
	if v < 0 {
		return float64(int(v - 0.5))
	}
	return float64(int(v + 0.5))
}

// truncate limits log payloads from ffmpeg's stderr.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
