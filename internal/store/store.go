// Package store persists per-upload analysis state: the original
// metadata/format classification and the incrementally merged
// per-platform rendition results. It is the system of record behind the
// status-polling endpoint, so every mutation is written through
// immediately rather than batched at the end of a processing run.
//
// Two implementations exist: FileStore keeps one JSON side file per
// upload next to the rendition outputs (the default, single-process
// deployment), and DynamoStore keeps the same records in DynamoDB for
// deployments where status queries may land on a different process.
package store

import (
	"context"
	"time"

	"github.com/fpang/social-video-pipeline/internal/videoproc"
)

// OriginalAnalysis is the upload-time classification of a video file.
type OriginalAnalysis struct {
	Metadata     videoproc.VideoMetadata `json:"metadata" dynamodbav:"metadata"`
	CameraFormat videoproc.CameraFormat  `json:"cameraFormat" dynamodbav:"cameraFormat"`
}

// RenditionResult is the terminal outcome for one (file, variant) pair:
// either output geometry and a URL, or an error message. Exactly one of
// the two shapes is populated; a later run for the same variant
// overwrites the earlier entry wholesale.
type RenditionResult struct {
	Width       int                       `json:"width,omitempty" dynamodbav:"width,omitempty"`
	Height      int                       `json:"height,omitempty" dynamodbav:"height,omitempty"`
	URL         string                    `json:"url,omitempty" dynamodbav:"url,omitempty"`
	Error       string                    `json:"error,omitempty" dynamodbav:"error,omitempty"`
	Config      *videoproc.PlatformConfig `json:"config,omitempty" dynamodbav:"config,omitempty"`
	ProcessedAt time.Time                 `json:"processedAt" dynamodbav:"processedAt"`
}

// Failed reports whether this result records a per-variant failure.
func (r RenditionResult) Failed() bool {
	return r.Error != ""
}

// AnalysisRecord is the persisted state for one uploaded file. Created
// at upload time with Processed empty, then mutated one variant at a
// time as renditions finish. Never deleted automatically.
type AnalysisRecord struct {
	Original  OriginalAnalysis           `json:"original" dynamodbav:"original"`
	Analyzed  bool                       `json:"analyzed" dynamodbav:"analyzed"`
	Processed map[string]RenditionResult `json:"processed" dynamodbav:"processed"`
}

// NewAnalysisRecord builds a fresh record for an analyzed upload.
func NewAnalysisRecord(metadata videoproc.VideoMetadata, format videoproc.CameraFormat) *AnalysisRecord {
	return &AnalysisRecord{
		Original: OriginalAnalysis{
			Metadata:     metadata,
			CameraFormat: format,
		},
		Analyzed:  true,
		Processed: make(map[string]RenditionResult),
	}
}

// SetResult merges one rendition outcome into the record, replacing any
// earlier entry for the same variant.
func (r *AnalysisRecord) SetResult(variant string, result RenditionResult) {
	if r.Processed == nil {
		r.Processed = make(map[string]RenditionResult)
	}
	r.Processed[variant] = result
}

// FailureRecord marks a file-level analysis failure (e.g. no video
// stream). Its presence makes the file's status "failed".
type FailureRecord struct {
	Error     string    `json:"error" dynamodbav:"error"`
	Platforms []string  `json:"platforms,omitempty" dynamodbav:"platforms,omitempty"`
	Timestamp time.Time `json:"timestamp" dynamodbav:"timestamp"`
}

// AnalysisStore is the persistence interface for analysis records.
// All Get methods return (nil, nil) when the record does not exist.
// Put methods perform full-record replacement. Implementations must be
// safe for concurrent use; the known read-then-write race between two
// overlapping processing runs for the same file is accepted because
// results are keyed per-variant and the last writer wins.
type AnalysisStore interface {
	// GetAnalysis retrieves the analysis record for an uploaded file.
	GetAnalysis(ctx context.Context, filename string) (*AnalysisRecord, error)

	// PutAnalysis creates or replaces the analysis record for a file.
	PutAnalysis(ctx context.Context, filename string, record *AnalysisRecord) error

	// GetFailure retrieves the file-level failure record, if any.
	GetFailure(ctx context.Context, filename string) (*FailureRecord, error)

	// PutFailure creates or replaces the file-level failure record.
	PutFailure(ctx context.Context, filename string, failure *FailureRecord) error
}
