package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fpang/social-video-pipeline/internal/store"
	"github.com/fpang/social-video-pipeline/internal/videoproc"
)

// stubRenderer records render calls and fails the variants listed in
// fail. The variant is recovered from the rendition filename, which is
// {base}_{variant}.mp4.
type stubRenderer struct {
	calls []string
	fail  map[string]error
}

func (r *stubRenderer) Render(ctx context.Context, inputPath, outputPath string, config videoproc.PlatformConfig, metadata videoproc.VideoMetadata) (videoproc.Dimensions, error) {
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	variant := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(outputPath), base+"_"), ".mp4")
	r.calls = append(r.calls, variant)
	if err, ok := r.fail[variant]; ok {
		return videoproc.Dimensions{}, err
	}
	return videoproc.TargetDimensions(config, metadata), nil
}

func newTestOrchestrator(t *testing.T, renderer videoproc.Renderer) (*Orchestrator, *store.FileStore, string) {
	t.Helper()
	uploadsDir := t.TempDir()
	processedDir := filepath.Join(uploadsDir, "processed")

	fileStore, err := store.NewFileStore(processedDir)
	if err != nil {
		t.Fatal(err)
	}
	return NewOrchestrator(fileStore, renderer, uploadsDir, processedDir, nil), fileStore, uploadsDir
}

func seedAnalyzedUpload(t *testing.T, s *store.FileStore, uploadsDir, filename string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(uploadsDir, filename), []byte("fake video bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	record := store.NewAnalysisRecord(videoproc.VideoMetadata{
		Width:       1080,
		Height:      1920,
		Duration:    15,
		AspectRatio: 0.5625,
		FPS:         30,
	}, videoproc.FormatPortrait)
	if err := s.PutAnalysis(context.Background(), filename, record); err != nil {
		t.Fatal(err)
	}
}

func TestValidateRequest(t *testing.T) {
	orchestrator, fileStore, uploadsDir := newTestOrchestrator(t, &stubRenderer{})
	seedAnalyzedUpload(t, fileStore, uploadsDir, "video-1.mp4")

	if err := orchestrator.ValidateRequest("video-1.mp4", nil); !errors.Is(err, ErrEmptyPlatformList) {
		t.Errorf("empty platform list: got %v, want ErrEmptyPlatformList", err)
	}
	if err := orchestrator.ValidateRequest("missing.mp4", []string{"tiktok"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing file: got %v, want ErrNotFound", err)
	}
	if err := orchestrator.ValidateRequest("video-1.mp4", []string{"tiktok"}); err != nil {
		t.Errorf("valid request: unexpected error %v", err)
	}
}

func TestProcessPersistsEachVariant(t *testing.T) {
	renderer := &stubRenderer{}
	orchestrator, fileStore, uploadsDir := newTestOrchestrator(t, renderer)
	seedAnalyzedUpload(t, fileStore, uploadsDir, "video-1.mp4")
	ctx := context.Background()

	orchestrator.Process(ctx, "video-1.mp4", []string{videoproc.VariantTikTok, videoproc.VariantInstagramFeed})

	record, err := fileStore.GetAnalysis(ctx, "video-1.mp4")
	if err != nil {
		t.Fatal(err)
	}
	if len(record.Processed) != 2 {
		t.Fatalf("expected 2 results, got %d", len(record.Processed))
	}

	tiktok := record.Processed[videoproc.VariantTikTok]
	if tiktok.Failed() {
		t.Fatalf("tiktok result failed: %s", tiktok.Error)
	}
	if tiktok.URL != "/uploads/processed/video-1_tiktok.mp4" {
		t.Errorf("tiktok URL = %q", tiktok.URL)
	}
	if tiktok.Width != 1080 || tiktok.Height != 1920 {
		t.Errorf("tiktok dimensions = %dx%d", tiktok.Width, tiktok.Height)
	}

	feed := record.Processed[videoproc.VariantInstagramFeed]
	if feed.Width != 1080 || feed.Height != 1080 {
		t.Errorf("feed dimensions = %dx%d, want square crop", feed.Width, feed.Height)
	}
	if feed.Config == nil || feed.Config.Transform != videoproc.TransformCropToSquare {
		t.Error("feed result should carry its crop config")
	}
}

func TestProcessFailedVariantDoesNotAbortSiblings(t *testing.T) {
	renderer := &stubRenderer{
		fail: map[string]error{
			videoproc.VariantTikTok: errors.New("ffmpeg exited with status 1"),
		},
	}
	orchestrator, fileStore, uploadsDir := newTestOrchestrator(t, renderer)
	seedAnalyzedUpload(t, fileStore, uploadsDir, "video-1.mp4")
	ctx := context.Background()

	orchestrator.Process(ctx, "video-1.mp4", []string{
		videoproc.VariantTikTok,
		videoproc.VariantInstagramReels,
		videoproc.VariantFacebook,
	})

	if len(renderer.calls) != 3 {
		t.Fatalf("expected all 3 variants attempted, got %v", renderer.calls)
	}

	record, err := fileStore.GetAnalysis(ctx, "video-1.mp4")
	if err != nil {
		t.Fatal(err)
	}
	if !record.Processed[videoproc.VariantTikTok].Failed() {
		t.Error("tiktok should be recorded as failed")
	}
	if record.Processed[videoproc.VariantInstagramReels].Failed() {
		t.Error("reels should have succeeded after the tiktok failure")
	}
	if record.Processed[videoproc.VariantFacebook].Failed() {
		t.Error("facebook should have succeeded after the tiktok failure")
	}
}

func TestProcessRecordsMissingPlatformConfig(t *testing.T) {
	renderer := &stubRenderer{}
	orchestrator, fileStore, uploadsDir := newTestOrchestrator(t, renderer)
	seedAnalyzedUpload(t, fileStore, uploadsDir, "video-1.mp4")
	ctx := context.Background()

	// instagram_story is never planned, and youtube_regular is not in the
	// portrait plan.
	orchestrator.Process(ctx, "video-1.mp4", []string{
		videoproc.VariantInstagramStory,
		videoproc.VariantTikTok,
	})

	record, err := fileStore.GetAnalysis(ctx, "video-1.mp4")
	if err != nil {
		t.Fatal(err)
	}
	story := record.Processed[videoproc.VariantInstagramStory]
	if story.Error != "Platform configuration not found" {
		t.Errorf("story error = %q", story.Error)
	}
	if record.Processed[videoproc.VariantTikTok].Failed() {
		t.Error("tiktok should still succeed alongside the unplanned variant")
	}
	if len(renderer.calls) != 1 {
		t.Errorf("renderer should only see plannable variants, got %v", renderer.calls)
	}
}

func TestRenditionName(t *testing.T) {
	tests := []struct {
		filename string
		variant  string
		expected string
	}{
		{"video-123.mp4", "tiktok", "video-123_tiktok.mp4"},
		{"clip.mov", "facebook", "clip_facebook.mp4"},
		{"no-extension", "instagram_feed", "no-extension_instagram_feed.mp4"},
	}
	for _, tt := range tests {
		if got := renditionName(tt.filename, tt.variant); got != tt.expected {
			t.Errorf("renditionName(%q, %q) = %q, want %q", tt.filename, tt.variant, got, tt.expected)
		}
	}
}
