package videoproc

import "testing"

func TestClassifyFormat(t *testing.T) {
	tests := []struct {
		name     string
		width    int
		height   int
		expected CameraFormat
	}{
		{"1080p landscape", 1920, 1080, FormatLandscapeHD},
		{"4K landscape", 3840, 2160, FormatLandscapeHD},
		{"720p landscape", 1280, 720, FormatLandscapeSD},
		{"near 16:9 below HD width", 1700, 1000, FormatLandscapeSD},
		{"phone portrait", 1080, 1920, FormatPortrait},
		{"portrait within tolerance of 9:16", 540, 1080, FormatPortrait},
		{"square", 1080, 1080, FormatSquare},
		{"near square", 1000, 1080, FormatSquare},
		{"4:3 standard", 1440, 1080, FormatStandard},
		{"640x480 standard", 640, 480, FormatStandard},
		{"ultrawide", 5000, 2000, FormatUltrawide},
		{"ultra portrait", 960, 2400, FormatUltraPortrait},
		{"3:2 falls through to custom", 1620, 1080, FormatCustom},
		{"2:1 exactly is custom", 2000, 1000, FormatCustom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metadata := VideoMetadata{
				Width:       tt.width,
				Height:      tt.height,
				AspectRatio: float64(tt.width) / float64(tt.height),
			}
			if got := ClassifyFormat(metadata); got != tt.expected {
				t.Errorf("ClassifyFormat(%dx%d) = %s, want %s", tt.width, tt.height, got, tt.expected)
			}
		})
	}
}

func TestClassifyFormatHDSplitUsesWidth(t *testing.T) {
	// Same aspect ratio, different widths: the HD/SD split is on width,
	// not on ratio.
	hd := VideoMetadata{Width: 1920, Height: 1080, AspectRatio: 16.0 / 9.0}
	sd := VideoMetadata{Width: 1919, Height: 1079, AspectRatio: 1919.0 / 1079.0}

	if got := ClassifyFormat(hd); got != FormatLandscapeHD {
		t.Errorf("expected landscape_hd at width 1920, got %s", got)
	}
	if got := ClassifyFormat(sd); got != FormatLandscapeSD {
		t.Errorf("expected landscape_sd below width 1920, got %s", got)
	}
}
