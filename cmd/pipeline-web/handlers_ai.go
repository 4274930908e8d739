package main

import (
	"net/http"

	"github.com/fpang/social-video-pipeline/internal/content"
)

// defaultContentPlatforms is the platform set used when a generation
// request names none.
var defaultContentPlatforms = []string{"facebook", "instagram", "tiktok", "youtube"}

// POST /api/ai/generate-content
func (s *server) handleGenerateContent(w http.ResponseWriter, r *http.Request) {
	var body struct {
		VideoDescription string   `json:"videoDescription"`
		TargetAudience   string   `json:"targetAudience"`
		Tone             string   `json:"tone"`
		Platforms        []string `json:"platforms"`
		CustomPrompt     string   `json:"customPrompt"`
	}
	if err := decodeJSON(r, &body); err != nil {
		httpError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.VideoDescription == "" {
		httpError(w, http.StatusBadRequest, "Video description is required")
		return
	}
	if !s.generator.Available() {
		httpError(w, http.StatusServiceUnavailable, "AI service not configured. Please set GEMINI_API_KEY environment variable.")
		return
	}

	platforms := body.Platforms
	if len(platforms) == 0 {
		platforms = defaultContentPlatforms
	}

	generated := make(map[string]content.Caption, len(platforms))
	for _, platform := range platforms {
		generated[platform] = s.generator.CaptionForPlatform(
			r.Context(), platform, body.VideoDescription, body.TargetAudience, body.Tone, body.CustomPrompt)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"content": generated,
	})
}

// POST /api/ai/generate-hashtags
func (s *server) handleGenerateHashtags(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Content  string `json:"content"`
		Platform string `json:"platform"`
		Niche    string `json:"niche"`
	}
	if err := decodeJSON(r, &body); err != nil {
		httpError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !s.generator.Available() {
		httpError(w, http.StatusServiceUnavailable, "AI service not configured. Please set GEMINI_API_KEY environment variable.")
		return
	}

	hashtags := s.generator.Hashtags(r.Context(), body.Content, body.Platform, body.Niche)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"hashtags": hashtags,
	})
}

// POST /api/ai/optimize-content
func (s *server) handleOptimizeContent(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Content   string `json:"content"`
		Platform  string `json:"platform"`
		Objective string `json:"objective"`
	}
	if err := decodeJSON(r, &body); err != nil {
		httpError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !s.generator.Available() {
		httpError(w, http.StatusServiceUnavailable, "AI service not configured. Please set GEMINI_API_KEY environment variable.")
		return
	}

	optimized, err := s.generator.OptimizeContent(r.Context(), body.Content, body.Platform, body.Objective)
	if err != nil {
		httpError(w, http.StatusInternalServerError, "Failed to optimize content")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":          true,
		"optimizedContent": optimized,
	})
}
