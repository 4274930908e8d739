package main

import (
	"net/http/httptest"
	"testing"
)

func TestContainsPathTraversal(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"video-123.mp4", false},
		{"../etc/passwd", true},
		{"..", true},
		{"nested/../escape.mp4", true},
		{"file..mp4", false},
		{"..hidden.mp4", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := containsPathTraversal(tt.path); got != tt.expected {
			t.Errorf("containsPathTraversal(%q) = %v, want %v", tt.path, got, tt.expected)
		}
	}
}

func TestResolveVideoURL(t *testing.T) {
	r := httptest.NewRequest("POST", "http://localhost:3000/api/social/facebook", nil)

	tests := []struct {
		name     string
		req      socialPostRequest
		expected string
	}{
		{
			name:     "direct URL wins",
			req:      socialPostRequest{VideoURL: "http://cdn.example.com/v.mp4", VideoPath: "uploads/v.mp4"},
			expected: "http://cdn.example.com/v.mp4",
		},
		{
			name:     "path resolves against this server",
			req:      socialPostRequest{VideoPath: "uploads/processed/video-1_tiktok.mp4"},
			expected: "http://localhost:3000/uploads/video-1_tiktok.mp4",
		},
		{
			name:     "neither gives empty",
			req:      socialPostRequest{},
			expected: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.req.resolveVideoURL(r); got != tt.expected {
				t.Errorf("resolveVideoURL = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestSocialPostRequestCaption(t *testing.T) {
	both := socialPostRequest{Caption: "caption", Message: "message"}
	if both.caption() != "caption" {
		t.Errorf("caption field should win, got %q", both.caption())
	}
	alias := socialPostRequest{Message: "message"}
	if alias.caption() != "message" {
		t.Errorf("message alias should apply, got %q", alias.caption())
	}
}
