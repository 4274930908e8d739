// Package pipeline coordinates the processing flow for one uploaded
// video: probe, classify, plan, render each requested platform variant
// sequentially, and merge every outcome into the analysis store as soon
// as it lands so that status polls see monotonically increasing progress.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fpang/social-video-pipeline/internal/s3util"
	"github.com/fpang/social-video-pipeline/internal/store"
	"github.com/fpang/social-video-pipeline/internal/videoproc"
)

// Request validation errors, surfaced synchronously before any async work.
var (
	// ErrEmptyPlatformList rejects a processing request with no platforms.
	ErrEmptyPlatformList = errors.New("platform list must not be empty")

	// ErrNotFound rejects a processing request for a file that was never uploaded.
	ErrNotFound = errors.New("video file not found")
)

// errPlatformConfigMissing is recorded per-variant when a requested
// variant has no entry in the planner table for this source format.
const errPlatformConfigMissing = "Platform configuration not found"

// Orchestrator owns the per-file processing flow. It is constructed
// explicitly at startup and handed to the HTTP layer; there are no
// package-level singletons.
type Orchestrator struct {
	store        store.AnalysisStore
	renderer     videoproc.Renderer
	uploadsDir   string
	processedDir string
	mirror       *s3util.Mirror // optional; nil disables S3 mirroring
}

// NewOrchestrator wires an orchestrator. mirror may be nil.
func NewOrchestrator(s store.AnalysisStore, renderer videoproc.Renderer, uploadsDir, processedDir string, mirror *s3util.Mirror) *Orchestrator {
	return &Orchestrator{
		store:        s,
		renderer:     renderer,
		uploadsDir:   uploadsDir,
		processedDir: processedDir,
		mirror:       mirror,
	}
}

// Analyze probes and classifies a freshly uploaded file and persists the
// initial analysis record. Inspection problems degrade to fallback
// metadata inside the probe; the one hard error is a container with no
// video stream, which is persisted as a file-level failure and returned.
func (o *Orchestrator) Analyze(ctx context.Context, filename string) (*store.AnalysisRecord, error) {
	path := filepath.Join(o.uploadsDir, filename)

	metadata, err := videoproc.Probe(ctx, path)
	if err != nil {
		if errors.Is(err, videoproc.ErrNoVideoStream) {
			failure := &store.FailureRecord{
				Error:     err.Error(),
				Timestamp: time.Now(),
			}
			if putErr := o.store.PutFailure(ctx, filename, failure); putErr != nil {
				log.Error().Err(putErr).Str("filename", filename).Msg("Failed to persist analysis failure")
			}
		}
		return nil, fmt.Errorf("analyze %s: %w", filename, err)
	}

	format := videoproc.ClassifyFormat(metadata)
	record := store.NewAnalysisRecord(metadata, format)
	if err := o.store.PutAnalysis(ctx, filename, record); err != nil {
		return nil, fmt.Errorf("persist analysis for %s: %w", filename, err)
	}

	log.Info().
		Str("filename", filename).
		Str("format", string(format)).
		Int("width", metadata.Width).
		Int("height", metadata.Height).
		Float64("duration", metadata.Duration).
		Msg("Video analyzed")

	return record, nil
}

// ValidateRequest performs the synchronous checks for a processing
// request: the platform list must be non-empty and the source file must
// exist. Everything after a nil return happens asynchronously.
func (o *Orchestrator) ValidateRequest(filename string, platforms []string) error {
	if len(platforms) == 0 {
		return ErrEmptyPlatformList
	}
	if _, err := os.Stat(filepath.Join(o.uploadsDir, filename)); err != nil {
		return ErrNotFound
	}
	return nil
}

// Process runs the rendition loop for the requested platform variants.
// Variants are processed strictly sequentially, bounding transcoder load
// to one job at a time; each result is persisted immediately, and a
// failed variant never aborts its siblings.
func (o *Orchestrator) Process(ctx context.Context, filename string, platforms []string) {
	inputPath := filepath.Join(o.uploadsDir, filename)

	record, err := o.store.GetAnalysis(ctx, filename)
	if err != nil {
		log.Error().Err(err).Str("filename", filename).Msg("Failed to load analysis record")
		o.recordRunFailure(ctx, filename, platforms, err)
		return
	}
	if record == nil {
		// Upload-time analysis is normally done already; recreate it for
		// files that predate the side file.
		record, err = o.Analyze(ctx, filename)
		if err != nil {
			log.Error().Err(err).Str("filename", filename).Msg("Analysis failed during processing")
			o.recordRunFailure(ctx, filename, platforms, err)
			return
		}
	}

	configs := videoproc.PlanPlatforms(record.Original.CameraFormat, record.Original.Metadata)

	log.Info().
		Str("filename", filename).
		Strs("platforms", platforms).
		Str("format", string(record.Original.CameraFormat)).
		Msg("Starting platform processing")

	succeeded := 0
	for _, variant := range platforms {
		config, ok := configs[variant]
		if !ok {
			log.Warn().Str("filename", filename).Str("platform", variant).Msg("No configuration for platform")
			record.SetResult(variant, store.RenditionResult{
				Error:       errPlatformConfigMissing,
				ProcessedAt: time.Now(),
			})
			o.persist(ctx, filename, record)
			continue
		}

		outputName := renditionName(filename, variant)
		outputPath := filepath.Join(o.processedDir, outputName)

		dims, err := o.renderer.Render(ctx, inputPath, outputPath, config, record.Original.Metadata)
		if err != nil {
			log.Warn().Err(err).Str("filename", filename).Str("platform", variant).Msg("Rendition failed")
			record.SetResult(variant, store.RenditionResult{
				Error:       err.Error(),
				Config:      &config,
				ProcessedAt: time.Now(),
			})
			o.persist(ctx, filename, record)
			continue
		}

		result := store.RenditionResult{
			Width:       dims.Width,
			Height:      dims.Height,
			URL:         "/uploads/processed/" + outputName,
			Config:      &config,
			ProcessedAt: time.Now(),
		}
		record.SetResult(variant, result)
		o.persist(ctx, filename, record)
		succeeded++

		if o.mirror != nil {
			if _, err := o.mirror.UploadRendition(ctx, outputPath); err != nil {
				// Mirroring is best-effort; the local rendition is the result.
				log.Warn().Err(err).Str("platform", variant).Msg("S3 mirror failed")
			}
		}
	}

	log.Info().
		Str("filename", filename).
		Int("succeeded", succeeded).
		Int("requested", len(platforms)).
		Msg("Platform processing finished")
}

// persist writes the record through to the store, logging rather than
// failing the run when the write itself errors.
func (o *Orchestrator) persist(ctx context.Context, filename string, record *store.AnalysisRecord) {
	if err := o.store.PutAnalysis(ctx, filename, record); err != nil {
		log.Error().Err(err).Str("filename", filename).Msg("Failed to persist analysis record")
	}
}

// recordRunFailure persists a file-level failure for a run that could
// not produce or load an analysis record at all.
func (o *Orchestrator) recordRunFailure(ctx context.Context, filename string, platforms []string, cause error) {
	failure := &store.FailureRecord{
		Error:     cause.Error(),
		Platforms: platforms,
		Timestamp: time.Now(),
	}
	if err := o.store.PutFailure(ctx, filename, failure); err != nil {
		log.Error().Err(err).Str("filename", filename).Msg("Failed to persist run failure")
	}
}

// renditionName builds the deterministic output filename for a variant:
// {base}_{variant}.mp4.
func renditionName(filename, variant string) string {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	return base + "_" + variant + ".mp4"
}
