package videoproc

import "math"

// CameraFormat is the canonical orientation/aspect-ratio bucket derived
// from a video's raw geometry.
type CameraFormat string

const (
	FormatLandscapeHD   CameraFormat = "landscape_hd"
	FormatLandscapeSD   CameraFormat = "landscape_sd"
	FormatPortrait      CameraFormat = "portrait"
	FormatSquare        CameraFormat = "square"
	FormatStandard      CameraFormat = "standard"
	FormatUltrawide     CameraFormat = "ultrawide"
	FormatUltraPortrait CameraFormat = "ultra_portrait"
	FormatCustom        CameraFormat = "custom"
)

// ratioTolerance is the absolute tolerance band around each canonical
// aspect ratio. Bands are checked in a fixed order, first match wins.
const ratioTolerance = 0.1

// ClassifyFormat maps metadata to a camera format. It is total and
// deterministic: every aspect ratio maps to exactly one format, with
// "custom" as the catch-all.
//
// Bands are tested in priority order: 16:9 (HD/SD split at width 1920),
// 9:16, 1:1, 4:3, ratio > 2, ratio < 0.5, custom.
func ClassifyFormat(metadata VideoMetadata) CameraFormat {
	ratio := metadata.AspectRatio

	switch {
	case math.Abs(ratio-16.0/9.0) < ratioTolerance:
		if metadata.Width >= 1920 {
			return FormatLandscapeHD
		}
		return FormatLandscapeSD
	case math.Abs(ratio-9.0/16.0) < ratioTolerance:
		return FormatPortrait
	case math.Abs(ratio-1) < ratioTolerance:
		return FormatSquare
	case math.Abs(ratio-4.0/3.0) < ratioTolerance:
		return FormatStandard
	case ratio > 2:
		return FormatUltrawide
	case ratio < 0.5:
		return FormatUltraPortrait
	}

	return FormatCustom
}
