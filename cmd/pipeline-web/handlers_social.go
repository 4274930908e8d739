package main

import (
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/fpang/social-video-pipeline/internal/social"
)

// socialPostRequest is the shared body for the publishing endpoints.
// Callers either pass a publicly reachable videoUrl directly or a
// videoPath naming an uploaded file, which is resolved to this
// server's /uploads/ URL.
type socialPostRequest struct {
	Caption   string                       `json:"caption"`
	Message   string                       `json:"message"` // alias kept for the Facebook clients
	VideoURL  string                       `json:"videoUrl"`
	VideoPath string                       `json:"videoPath"`
	Platforms []string                     `json:"platforms"`
	Content   map[string]map[string]string `json:"content"` // per-platform captions for post-all
}

// caption returns the effective caption.
func (req *socialPostRequest) caption() string {
	if req.Caption != "" {
		return req.Caption
	}
	return req.Message
}

// resolveVideoURL turns the request's video reference into a URL the
// platform APIs can pull.
func (req *socialPostRequest) resolveVideoURL(r *http.Request) string {
	if req.VideoURL != "" {
		return req.VideoURL
	}
	if req.VideoPath == "" {
		return ""
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/uploads/%s", scheme, r.Host, filepath.Base(req.VideoPath))
}

// GET /api/social/status
func (s *server) handleSocialStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": s.publisher.Status(),
	})
}

// POST /api/social/{platform}
func (s *server) handlePostPlatform(w http.ResponseWriter, r *http.Request) {
	platform := r.PathValue("platform")

	var req socialPostRequest
	if err := decodeJSON(r, &req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	videoURL := req.resolveVideoURL(r)
	if videoURL == "" {
		httpError(w, http.StatusBadRequest, fmt.Sprintf("Video is required for %s posts", platform))
		return
	}

	result := s.publisher.Post(r.Context(), platform, videoURL, req.caption())
	if !result.Success {
		switch result.Error {
		case social.ErrUnknownPlatform.Error():
			httpError(w, http.StatusNotFound, "Unknown platform: "+platform)
		case social.ErrNotConfigured.Error():
			httpError(w, http.StatusBadRequest, fmt.Sprintf("%s access token required", platform))
		case social.ErrNotImplemented.Error():
			respondJSON(w, http.StatusNotImplemented, map[string]string{
				"error":         "TikTok posting not yet implemented",
				"message":       "TikTok Content Posting API requires special approval from TikTok. Please check their developer documentation for access requirements.",
				"documentation": "https://developers.tiktok.com/doc/content-posting-api-get-started",
			})
		default:
			respondJSON(w, http.StatusInternalServerError, map[string]string{
				"error":   fmt.Sprintf("%s posting failed", platform),
				"message": result.Error,
			})
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"platform": platform,
		"postId":   result.PostID,
		"message":  fmt.Sprintf("Posted to %s successfully", platform),
	})
}

// POST /api/social/post-all
func (s *server) handlePostAll(w http.ResponseWriter, r *http.Request) {
	var req socialPostRequest
	if err := decodeJSON(r, &req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Platforms) == 0 {
		httpError(w, http.StatusBadRequest, "Please select at least one platform")
		return
	}

	videoURL := req.resolveVideoURL(r)
	baseCaption := req.caption()

	results := make([]social.PostResult, 0, len(req.Platforms))
	var postErrors []map[string]string
	successful := 0

	for _, platform := range req.Platforms {
		caption := baseCaption
		if platformContent, ok := req.Content[platform]; ok && platformContent["caption"] != "" {
			caption = platformContent["caption"]
		}

		result := s.publisher.Post(r.Context(), platform, videoURL, caption)
		results = append(results, result)
		if result.Success {
			successful++
		} else {
			postErrors = append(postErrors, map[string]string{
				"platform": platform,
				"error":    result.Error,
			})
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": successful > 0,
		"results": results,
		"errors":  postErrors,
		"summary": map[string]int{
			"successful": successful,
			"failed":     len(postErrors),
			"total":      len(req.Platforms),
		},
	})
}
