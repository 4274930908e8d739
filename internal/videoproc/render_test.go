package videoproc

import (
	"strings"
	"testing"
)

func TestParseAspectRatio(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
		wantErr  bool
	}{
		{"16:9", 16.0 / 9.0, false},
		{"9:16", 9.0 / 16.0, false},
		{"1:1", 1, false},
		{"4:3", 4.0 / 3.0, false},
		{"16x9", 0, true},
		{"16:0", 0, true},
		{"a:b", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseAspectRatio(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseAspectRatio(%q): expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseAspectRatio(%q): unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.expected {
			t.Errorf("ParseAspectRatio(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestTargetDimensionsCropToSquare(t *testing.T) {
	feed := cropped(VariantInstagramFeed)

	tests := []struct {
		name   string
		width  int
		height int
		side   int
	}{
		{"portrait source", 1080, 1920, 1080},
		{"landscape source", 1920, 1080, 1080},
		{"large source capped at max width", 4000, 3000, 1080},
		{"small source keeps its short side", 720, 1280, 720},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metadata := VideoMetadata{
				Width: tt.width, Height: tt.height,
				AspectRatio: float64(tt.width) / float64(tt.height),
			}
			dims := TargetDimensions(feed, metadata)
			if dims.Width != tt.side || dims.Height != tt.side {
				t.Errorf("expected %dx%d, got %dx%d", tt.side, tt.side, dims.Width, dims.Height)
			}
		})
	}
}

func TestTargetDimensionsAddPadding(t *testing.T) {
	tests := []struct {
		name    string
		variant string
		width   int
		height  int
		want    Dimensions
	}{
		// Portrait into a 16:9 box: fit height, pillarbox to full width.
		{"portrait into facebook", VariantFacebook, 1080, 1920, Dimensions{1920, 1080}},
		// Landscape into a 9:16 box: fit width, letterbox to full height.
		{"landscape into tiktok", VariantTikTok, 1920, 1080, Dimensions{1080, 1920}},
		// Square into a 9:16 box.
		{"square into reels", VariantInstagramReels, 1080, 1080, Dimensions{1080, 1920}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metadata := VideoMetadata{
				Width: tt.width, Height: tt.height,
				AspectRatio: float64(tt.width) / float64(tt.height),
			}
			dims := TargetDimensions(padded(tt.variant), metadata)
			if dims != tt.want {
				t.Errorf("expected %dx%d, got %dx%d", tt.want.Width, tt.want.Height, dims.Width, dims.Height)
			}
		})
	}
}

func TestTargetDimensionsScaleToFit(t *testing.T) {
	facebook := native(VariantFacebook)

	tests := []struct {
		name   string
		width  int
		height int
		want   Dimensions
	}{
		{"4K scales down", 3840, 2160, Dimensions{1920, 1080}},
		{"within bounds passes through", 1280, 720, Dimensions{1280, 720}},
		{"exact bounds pass through", 1920, 1080, Dimensions{1920, 1080}},
		{"ultrawide fits width", 5000, 2000, Dimensions{1920, 768}},
		{"tall source fits height", 1080, 2400, Dimensions{486, 1080}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metadata := VideoMetadata{
				Width: tt.width, Height: tt.height,
				AspectRatio: float64(tt.width) / float64(tt.height),
			}
			dims := TargetDimensions(facebook, metadata)
			if dims != tt.want {
				t.Errorf("expected %dx%d, got %dx%d", tt.want.Width, tt.want.Height, dims.Width, dims.Height)
			}
		})
	}
}

func TestBuildRenderArgsCropFilter(t *testing.T) {
	metadata := VideoMetadata{Width: 1920, Height: 1080, AspectRatio: 16.0 / 9.0}
	args := BuildRenderArgs("in.mp4", "out.mp4", cropped(VariantInstagramFeed), metadata)

	vf := filterArg(t, args)
	expected := "crop=1080:1080:(iw-1080)/2:(ih-1080)/2,scale=1080:1080"
	if vf != expected {
		t.Errorf("crop filter = %q, want %q", vf, expected)
	}
}

func TestBuildRenderArgsPadFilter(t *testing.T) {
	metadata := VideoMetadata{Width: 1920, Height: 1080, AspectRatio: 16.0 / 9.0}
	args := BuildRenderArgs("in.mp4", "out.mp4", padded(VariantTikTok), metadata)

	vf := filterArg(t, args)
	expected := "scale=1080:1920:force_original_aspect_ratio=decrease,pad=1080:1920:(ow-iw)/2:(oh-ih)/2:black"
	if vf != expected {
		t.Errorf("pad filter = %q, want %q", vf, expected)
	}
}

func TestBuildRenderArgsEncodingTail(t *testing.T) {
	metadata := VideoMetadata{Width: 1280, Height: 720, AspectRatio: 16.0 / 9.0}
	args := BuildRenderArgs("in.mp4", "out.mp4", native(VariantFacebook), metadata)

	joined := strings.Join(args, " ")
	for _, fragment := range []string{
		"-i in.mp4",
		"-c:v libx264",
		"-c:a aac",
		"-b:v 2000k",
		"-b:a 128k",
		"-r 30",
		"-f mp4",
		"-y out.mp4",
	} {
		if !strings.Contains(joined, fragment) {
			t.Errorf("args missing %q: %s", fragment, joined)
		}
	}
}

// filterArg extracts the -vf value from an argument list.
func filterArg(t *testing.T, args []string) string {
	t.Helper()
	for i, arg := range args {
		if arg == "-vf" && i+1 < len(args) {
			return args[i+1]
		}
	}
	t.Fatal("no -vf argument found")
	return ""
}
