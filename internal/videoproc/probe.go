// Package videoproc implements the video-format detection and
// multi-platform transcoding pipeline: probing uploaded files with
// ffprobe, classifying their geometry into camera formats, planning
// per-platform transformations, and rendering platform-conformant
// outputs with ffmpeg.
package videoproc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// ErrNoVideoStream is returned by Probe when the container is readable
// but holds no video stream at all. This is the only probe failure that
// propagates to the caller; everything else degrades to fallback metadata.
var ErrNoVideoStream = errors.New("no video stream found")

// VideoMetadata contains the geometry, timing, and codec facts extracted
// from an uploaded video file. It is produced once per upload and is
// immutable afterwards.
type VideoMetadata struct {
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	Duration    float64 `json:"duration"`
	AspectRatio float64 `json:"aspectRatio"`
	FPS         float64 `json:"fps"`
	Codec       string  `json:"codec"`
	Bitrate     int64   `json:"bitrate"`
	FileSize    int64   `json:"fileSize"`
}

// CheckFFprobeAvailable checks if ffprobe is available in the system PATH.
// Returns nil if ffprobe is available, or an error describing the issue.
func CheckFFprobeAvailable() error {
	path, err := exec.LookPath("ffprobe")
	if err != nil {
		return fmt.Errorf("ffprobe not found in PATH: video analysis will use fallback metadata. Install FFmpeg with: brew install ffmpeg (macOS) or apt install ffmpeg (Linux)")
	}
	log.Debug().Str("path", path).Msg("ffprobe found")
	return nil
}

// ffprobeOutput represents the JSON structure from ffprobe.
type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	Duration string `json:"duration"`
	Size     string `json:"size"`
	BitRate  string `json:"bit_rate"`
}

type ffprobeStream struct {
	CodecName  string `json:"codec_name"`
	CodecType  string `json:"codec_type"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	RFrameRate string `json:"r_frame_rate"`
}

// Probe extracts VideoMetadata from a video file using ffprobe.
//
// Probe never fails on inspection problems: if ffprobe is missing, the
// container is corrupt, or the output cannot be parsed, it substitutes
// fallback metadata derived from the file's byte size so that an upload
// is never rejected for tooling reasons. The single hard error is a
// readable container with no video stream, which returns ErrNoVideoStream.
func Probe(ctx context.Context, filePath string) (VideoMetadata, error) {
	ffprobePath, err := exec.LookPath("ffprobe")
	if err != nil {
		log.Warn().Err(err).Str("path", filePath).Msg("ffprobe unavailable, using fallback metadata")
		return fallbackMetadata(filePath), nil
	}

	cmd := exec.CommandContext(ctx, ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		filePath,
	)
	output, err := cmd.Output()
	if err != nil {
		log.Warn().Err(err).Str("path", filePath).Msg("ffprobe failed, using fallback metadata")
		return fallbackMetadata(filePath), nil
	}

	var probe ffprobeOutput
	if err := json.Unmarshal(output, &probe); err != nil {
		log.Warn().Err(err).Str("path", filePath).Msg("Failed to parse ffprobe output, using fallback metadata")
		return fallbackMetadata(filePath), nil
	}

	var video *ffprobeStream
	for i := range probe.Streams {
		if probe.Streams[i].CodecType == "video" {
			video = &probe.Streams[i]
			break
		}
	}
	if video == nil {
		return VideoMetadata{}, ErrNoVideoStream
	}

	metadata := VideoMetadata{
		Width:  video.Width,
		Height: video.Height,
		Codec:  video.CodecName,
	}
	if video.Height > 0 {
		metadata.AspectRatio = float64(video.Width) / float64(video.Height)
	}
	metadata.FPS = parseFrameRate(video.RFrameRate)
	if metadata.FPS == 0 {
		metadata.FPS = 30
	}
	if probe.Format.Duration != "" {
		metadata.Duration, _ = strconv.ParseFloat(probe.Format.Duration, 64)
	}
	if probe.Format.BitRate != "" {
		metadata.Bitrate, _ = strconv.ParseInt(probe.Format.BitRate, 10, 64)
	}
	if probe.Format.Size != "" {
		metadata.FileSize, _ = strconv.ParseInt(probe.Format.Size, 10, 64)
	}

	log.Info().
		Int("width", metadata.Width).
		Int("height", metadata.Height).
		Float64("duration", metadata.Duration).
		Float64("fps", metadata.FPS).
		Str("codec", metadata.Codec).
		Msg("Video metadata extracted via ffprobe")

	return metadata, nil
}

// fallbackMetadata returns plausible default metadata built from the
// file's byte size. Availability over accuracy: an upload whose file
// cannot be inspected is still analyzed as a 1080p/30fps clip.
func fallbackMetadata(filePath string) VideoMetadata {
	var size int64
	if info, err := os.Stat(filePath); err == nil {
		size = info.Size()
	}
	return VideoMetadata{
		Width:       1920,
		Height:      1080,
		Duration:    30,
		AspectRatio: 16.0 / 9.0,
		FPS:         30,
		Codec:       "unknown",
		Bitrate:     0,
		FileSize:    size,
	}
}

// parseFrameRate parses frame rate from ffprobe format (e.g., "30/1" -> 30.0)
func parseFrameRate(value string) float64 {
	parts := strings.Split(value, "/")
	if len(parts) == 2 {
		num, _ := strconv.ParseFloat(parts[0], 64)
		den, _ := strconv.ParseFloat(parts[1], 64)
		if den != 0 {
			return num / den
		}
	}
	rate, _ := strconv.ParseFloat(value, 64)
	return rate
}
