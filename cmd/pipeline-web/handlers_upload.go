package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/fpang/social-video-pipeline/internal/pipeline"
	"github.com/fpang/social-video-pipeline/internal/videoproc"
)

// maxUploadSize caps uploads at 100MB, matching the largest rendition
// target for the short-form platforms.
const maxUploadSize = 100 << 20

// allowedVideoTypes maps accepted upload MIME types.
var allowedVideoTypes = map[string]bool{
	"video/mp4":        true,
	"video/avi":        true,
	"video/x-msvideo":  true,
	"video/mov":        true,
	"video/quicktime":  true,
	"video/wmv":        true,
	"video/x-ms-wmv":   true,
	"video/flv":        true,
	"video/x-flv":      true,
	"video/webm":       true,
	"application/octet-stream": true, // some browsers send this for video files
}

// uploadedFileInfo is the file block in upload and listing responses.
type uploadedFileInfo struct {
	Filename     string                   `json:"filename"`
	OriginalName string                   `json:"originalName,omitempty"`
	MimeType     string                   `json:"mimetype,omitempty"`
	Size         int64                    `json:"size"`
	URL          string                   `json:"url"`
	UploadDate   time.Time                `json:"uploadDate,omitempty"`
	Metadata     *videoproc.VideoMetadata `json:"metadata,omitempty"`
	CameraFormat string                   `json:"cameraFormat,omitempty"`
}

// POST /api/upload/video
func (s *server) handleUploadVideo(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		httpError(w, http.StatusBadRequest, "No video file uploaded")
		return
	}

	file, header, err := r.FormFile("video")
	if err != nil {
		httpError(w, http.StatusBadRequest, "No video file uploaded")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !allowedVideoTypes[contentType] {
		httpError(w, http.StatusBadRequest, "Invalid file type. Only video files are allowed.")
		return
	}

	filename := fmt.Sprintf("video-%d-%s%s",
		time.Now().UnixMilli(),
		strings.Split(uuid.NewString(), "-")[0],
		strings.ToLower(filepath.Ext(header.Filename)))
	destPath := filepath.Join(s.uploadsDir, filename)

	dest, err := os.Create(destPath)
	if err != nil {
		log.Error().Err(err).Str("filename", filename).Msg("Failed to create upload file")
		httpError(w, http.StatusInternalServerError, "Upload failed")
		return
	}
	size, err := io.Copy(dest, file)
	dest.Close()
	if err != nil {
		os.Remove(destPath)
		httpError(w, http.StatusInternalServerError, "Upload failed")
		return
	}

	info := uploadedFileInfo{
		Filename:     filename,
		OriginalName: header.Filename,
		MimeType:     contentType,
		Size:         size,
		URL:          "/uploads/" + filename,
	}

	log.Info().Str("filename", filename).Int64("size", size).Msg("Video uploaded")

	record, err := s.orchestrator.Analyze(r.Context(), filename)
	if err != nil {
		if errors.Is(err, videoproc.ErrNoVideoStream) {
			httpError(w, http.StatusUnprocessableEntity, "Uploaded file has no video stream")
			return
		}
		// Analysis problems other than a missing video stream degrade
		// to fallback metadata inside the probe, so reaching here means
		// persistence failed. The upload itself succeeded.
		log.Warn().Err(err).Str("filename", filename).Msg("Upload analysis incomplete")
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"message": "Video uploaded successfully",
			"file":    info,
		})
		return
	}

	info.Metadata = &record.Original.Metadata
	info.CameraFormat = string(record.Original.CameraFormat)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Video uploaded and analyzed successfully",
		"file":    info,
	})
}

// GET /api/upload/files
func (s *server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	entries, err := os.ReadDir(s.uploadsDir)
	if err != nil {
		if os.IsNotExist(err) {
			respondJSON(w, http.StatusOK, map[string]interface{}{"files": []uploadedFileInfo{}})
			return
		}
		httpError(w, http.StatusInternalServerError, "Failed to list files")
		return
	}

	files := make([]uploadedFileInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		stat, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, uploadedFileInfo{
			Filename:   entry.Name(),
			Size:       stat.Size(),
			UploadDate: stat.ModTime(),
			URL:        "/uploads/" + entry.Name(),
		})
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].UploadDate.After(files[j].UploadDate)
	})

	respondJSON(w, http.StatusOK, map[string]interface{}{"files": files})
}

// DELETE /api/upload/files/{filename}
func (s *server) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	filename := r.PathValue("filename")
	if containsPathTraversal(filename) {
		httpError(w, http.StatusBadRequest, "invalid filename")
		return
	}

	path := filepath.Join(s.uploadsDir, filename)
	if _, err := os.Stat(path); err != nil {
		httpError(w, http.StatusNotFound, "File not found")
		return
	}
	if err := os.Remove(path); err != nil {
		httpError(w, http.StatusInternalServerError, "Failed to delete file")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "File deleted successfully",
	})
}

// POST /api/upload/video/{filename}/process
func (s *server) handleProcessVideo(w http.ResponseWriter, r *http.Request) {
	filename := r.PathValue("filename")
	if containsPathTraversal(filename) {
		httpError(w, http.StatusBadRequest, "invalid filename")
		return
	}

	var body struct {
		Platforms []string `json:"platforms"`
	}
	if err := decodeJSON(r, &body); err != nil {
		httpError(w, http.StatusBadRequest, "Please select at least one platform")
		return
	}

	if err := s.orchestrator.ValidateRequest(filename, body.Platforms); err != nil {
		switch {
		case errors.Is(err, pipeline.ErrEmptyPlatformList):
			httpError(w, http.StatusBadRequest, "Please select at least one platform")
		case errors.Is(err, pipeline.ErrNotFound):
			httpError(w, http.StatusNotFound, "Video file not found")
		default:
			httpError(w, http.StatusInternalServerError, "Processing request failed")
		}
		return
	}

	// Respond before the renditions run; progress is observed through
	// the status endpoint.
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"message":   fmt.Sprintf("Starting processing for %d platform(s)", len(body.Platforms)),
		"platforms": body.Platforms,
		"status":    "processing",
	})

	platforms := body.Platforms
	s.runner.Submit("process:"+filename, func(ctx context.Context) {
		s.orchestrator.Process(ctx, filename, platforms)
	})
}

// GET /api/upload/video/{filename}/status
func (s *server) handleVideoStatus(w http.ResponseWriter, r *http.Request) {
	filename := r.PathValue("filename")
	if containsPathTraversal(filename) {
		httpError(w, http.StatusBadRequest, "invalid filename")
		return
	}

	record, err := s.store.GetAnalysis(r.Context(), filename)
	if err != nil {
		httpError(w, http.StatusInternalServerError, "Failed to check processing status")
		return
	}
	if record != nil {
		// "completed" means at least one platform has a result, not
		// that every requested platform finished; clients keep polling
		// and merge results incrementally.
		status := "analyzed"
		message := "Video analyzed, ready for platform processing"
		if len(record.Processed) > 0 {
			status = "completed"
			message = fmt.Sprintf("Processed for %d platform(s)", len(record.Processed))
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"status":  status,
			"results": map[string]interface{}{
				"original":  record.Original,
				"processed": record.Processed,
			},
			"message": message,
		})
		return
	}

	failure, err := s.store.GetFailure(r.Context(), filename)
	if err != nil {
		httpError(w, http.StatusInternalServerError, "Failed to check processing status")
		return
	}
	if failure != nil {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"success": false,
			"status":  "failed",
			"error":   failure,
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"status":  "analyzing",
		"message": "Video is being analyzed",
	})
}
