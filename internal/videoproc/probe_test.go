package videoproc

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestParseFrameRate(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"30/1", 30},
		{"25/1", 25},
		{"30000/1001", 30000.0 / 1001.0},
		{"24", 24},
		{"0/0", 0},
		{"", 0},
		{"garbage", 0},
	}
	for _, tt := range tests {
		got := parseFrameRate(tt.input)
		if math.Abs(got-tt.expected) > 1e-9 {
			t.Errorf("parseFrameRate(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestFallbackMetadata(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clip.mp4")
	if err := os.WriteFile(path, []byte("not really a video"), 0o644); err != nil {
		t.Fatal(err)
	}

	metadata := fallbackMetadata(path)

	if metadata.Width != 1920 || metadata.Height != 1080 {
		t.Errorf("expected 1920x1080 fallback, got %dx%d", metadata.Width, metadata.Height)
	}
	if metadata.Duration != 30 || metadata.FPS != 30 {
		t.Errorf("expected 30s/30fps fallback, got %vs/%vfps", metadata.Duration, metadata.FPS)
	}
	if metadata.Codec != "unknown" {
		t.Errorf("expected unknown codec, got %q", metadata.Codec)
	}
	if metadata.FileSize != int64(len("not really a video")) {
		t.Errorf("expected file size from stat, got %d", metadata.FileSize)
	}

	// The fallback still classifies as HD landscape.
	if got := ClassifyFormat(metadata); got != FormatLandscapeHD {
		t.Errorf("fallback metadata should classify as landscape_hd, got %s", got)
	}
}

func TestFallbackMetadataMissingFile(t *testing.T) {
	metadata := fallbackMetadata(filepath.Join(t.TempDir(), "missing.mp4"))
	if metadata.FileSize != 0 {
		t.Errorf("expected zero file size for missing file, got %d", metadata.FileSize)
	}
	if metadata.Width != 1920 {
		t.Errorf("expected fallback geometry even for missing file, got width %d", metadata.Width)
	}
}
