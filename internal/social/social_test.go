package social

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestTokensFromEnv(t *testing.T) {
	t.Setenv("FACEBOOK_ACCESS_TOKEN", "fb-token")
	t.Setenv("FACEBOOK_PAGE_ID", "page-1")
	t.Setenv("INSTAGRAM_ACCESS_TOKEN", "")
	t.Setenv("INSTAGRAM_USER_ID", "")
	t.Setenv("TIKTOK_ACCESS_TOKEN", "tt-token")
	t.Setenv("YOUTUBE_ACCESS_TOKEN", "")

	tokens := TokensFromEnv()
	if tokens.FacebookAccessToken != "fb-token" || tokens.FacebookPageID != "page-1" {
		t.Errorf("facebook tokens = %q / %q", tokens.FacebookAccessToken, tokens.FacebookPageID)
	}
	if tokens.InstagramAccessToken != "" {
		t.Error("unset instagram token should be empty")
	}
	if tokens.TikTokAccessToken != "tt-token" {
		t.Errorf("tiktok token = %q", tokens.TikTokAccessToken)
	}
}

func TestPublisherStatus(t *testing.T) {
	publisher := NewPublisher(Tokens{
		FacebookAccessToken: "token",
		FacebookPageID:      "page",
		TikTokAccessToken:   "token",
	})

	status := publisher.Status()
	if !status["facebook"] {
		t.Error("facebook should be configured")
	}
	if status["instagram"] {
		t.Error("instagram should be unconfigured")
	}
	if !status["tiktok"] {
		t.Error("tiktok should be configured")
	}
	if status["youtube"] {
		t.Error("youtube should be unconfigured")
	}
}

func TestPublisherPostUnknownPlatform(t *testing.T) {
	publisher := NewPublisher(Tokens{})
	result := publisher.Post(context.Background(), "myspace", "http://example.com/v.mp4", "hi")

	if result.Success {
		t.Error("unknown platform should not succeed")
	}
	if result.Error != ErrUnknownPlatform.Error() {
		t.Errorf("error = %q", result.Error)
	}
}

func TestPublisherPostUnconfigured(t *testing.T) {
	publisher := NewPublisher(Tokens{})
	result := publisher.Post(context.Background(), "facebook", "http://example.com/v.mp4", "hi")

	if result.Success {
		t.Error("unconfigured platform should not succeed")
	}
	if result.Error != ErrNotConfigured.Error() {
		t.Errorf("error = %q", result.Error)
	}
}

func TestPublisherPostAllContinuesPastFailures(t *testing.T) {
	publisher := NewPublisher(Tokens{TikTokAccessToken: "token"})
	results := publisher.PostAll(context.Background(),
		[]string{"facebook", "tiktok"}, "http://example.com/v.mp4", "hi")

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Error != ErrNotConfigured.Error() {
		t.Errorf("facebook error = %q", results[0].Error)
	}
	// TikTok is configured but its publishing API is not wired.
	if results[1].Error != ErrNotImplemented.Error() {
		t.Errorf("tiktok error = %q", results[1].Error)
	}
}

func TestFacebookPostVideo(t *testing.T) {
	var gotPath string
	var gotForm map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		r.ParseForm()
		gotForm = map[string]string{
			"file_url":     r.PostForm.Get("file_url"),
			"description":  r.PostForm.Get("description"),
			"access_token": r.PostForm.Get("access_token"),
		}
		json.NewEncoder(w).Encode(map[string]string{"id": "post_123"})
	}))
	defer server.Close()

	client := NewFacebookClient("fb-token", "page-1")
	client.baseURL = server.URL

	postID, err := client.PostVideo(context.Background(), "http://example.com/v.mp4", "A caption")
	if err != nil {
		t.Fatal(err)
	}
	if postID != "post_123" {
		t.Errorf("post ID = %q", postID)
	}
	if gotPath != "/page-1/videos" {
		t.Errorf("path = %q", gotPath)
	}
	if gotForm["file_url"] != "http://example.com/v.mp4" {
		t.Errorf("file_url = %q", gotForm["file_url"])
	}
	if gotForm["description"] != "A caption" {
		t.Errorf("description = %q", gotForm["description"])
	}
	if gotForm["access_token"] != "fb-token" {
		t.Errorf("access_token = %q", gotForm["access_token"])
	}
}

func TestFacebookPostVideoGraphError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]interface{}{
				"message": "Invalid OAuth access token",
				"type":    "OAuthException",
				"code":    190,
			},
		})
	}))
	defer server.Close()

	client := NewFacebookClient("expired", "page-1")
	client.baseURL = server.URL

	_, err := client.PostVideo(context.Background(), "http://example.com/v.mp4", "hi")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "Invalid OAuth access token") {
		t.Errorf("error should carry the Graph message, got %v", err)
	}
	if !strings.Contains(err.Error(), "190") {
		t.Errorf("error should carry the Graph code, got %v", err)
	}
}

func TestInstagramPostVideoContainerFlow(t *testing.T) {
	var steps []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/user-1/media":
			steps = append(steps, "create")
			r.ParseForm()
			if r.PostForm.Get("media_type") != "REELS" {
				t.Errorf("media_type = %q", r.PostForm.Get("media_type"))
			}
			if r.PostForm.Get("video_url") != "http://example.com/v.mp4" {
				t.Errorf("video_url = %q", r.PostForm.Get("video_url"))
			}
			json.NewEncoder(w).Encode(map[string]string{"id": "container_1"})
		case r.Method == http.MethodGet && r.URL.Path == "/container_1":
			steps = append(steps, "status")
			json.NewEncoder(w).Encode(map[string]string{
				"id": "container_1", "status_code": "FINISHED",
			})
		case r.Method == http.MethodPost && r.URL.Path == "/user-1/media_publish":
			steps = append(steps, "publish")
			r.ParseForm()
			if r.PostForm.Get("creation_id") != "container_1" {
				t.Errorf("creation_id = %q", r.PostForm.Get("creation_id"))
			}
			json.NewEncoder(w).Encode(map[string]string{"id": "media_9"})
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := NewInstagramClient("ig-token", "user-1")
	client.baseURL = server.URL

	mediaID, err := client.PostVideo(context.Background(), "http://example.com/v.mp4", "reel caption")
	if err != nil {
		t.Fatal(err)
	}
	if mediaID != "media_9" {
		t.Errorf("media ID = %q", mediaID)
	}

	expected := []string{"create", "status", "publish"}
	if len(steps) != len(expected) {
		t.Fatalf("steps = %v", steps)
	}
	for i, step := range expected {
		if steps[i] != step {
			t.Errorf("step %d = %q, want %q", i, steps[i], step)
		}
	}
}

func TestInstagramPostVideoProcessingError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost:
			json.NewEncoder(w).Encode(map[string]string{"id": "container_1"})
		default:
			json.NewEncoder(w).Encode(map[string]string{
				"id": "container_1", "status_code": "ERROR",
			})
		}
	}))
	defer server.Close()

	client := NewInstagramClient("ig-token", "user-1")
	client.baseURL = server.URL

	_, err := client.PostVideo(context.Background(), "http://example.com/v.mp4", "hi")
	if err == nil {
		t.Fatal("expected error for failed container processing")
	}
	if !strings.Contains(err.Error(), "processing failed") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestYouTubePostVideo(t *testing.T) {
	var sessionStarted, bytesUploaded bool

	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("POST /session", func(w http.ResponseWriter, r *http.Request) {
		sessionStarted = true
		if got := r.Header.Get("Authorization"); got != "Bearer yt-token" {
			t.Errorf("authorization = %q", got)
		}
		var meta youtubeSnippet
		if err := json.NewDecoder(r.Body).Decode(&meta); err != nil {
			t.Errorf("decode metadata: %v", err)
		}
		if meta.Snippet.Title != "My first line" {
			t.Errorf("title = %q", meta.Snippet.Title)
		}
		if meta.Status.PrivacyStatus != "unlisted" {
			t.Errorf("privacy = %q", meta.Status.PrivacyStatus)
		}
		w.Header().Set("Location", server.URL+"/put")
	})
	mux.HandleFunc("PUT /put", func(w http.ResponseWriter, r *http.Request) {
		bytesUploaded = true
		json.NewEncoder(w).Encode(map[string]string{"id": "yt_video_1"})
	})
	mux.HandleFunc("GET /video.mp4", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("fake video bytes"))
	})

	client := NewYouTubeClient("yt-token")
	client.uploadURL = server.URL + "/session"

	videoID, err := client.PostVideo(context.Background(),
		server.URL+"/video.mp4", "My first line\nAnd the description below it")
	if err != nil {
		t.Fatal(err)
	}
	if videoID != "yt_video_1" {
		t.Errorf("video ID = %q", videoID)
	}
	if !sessionStarted || !bytesUploaded {
		t.Errorf("flow incomplete: session=%v upload=%v", sessionStarted, bytesUploaded)
	}
}

func TestSplitCaption(t *testing.T) {
	long := strings.Repeat("x", 120)

	tests := []struct {
		name        string
		caption     string
		title       string
		description string
	}{
		{"two lines", "Title here\nBody here", "Title here", "Body here"},
		{"single line doubles as both", "Just one line", "Just one line", "Just one line"},
		{"empty caption", "", "Untitled video", ""},
		{"long first line capped", long + "\nbody", long[:97] + "...", "body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, description := splitCaption(tt.caption)
			if title != tt.title {
				t.Errorf("title = %q, want %q", title, tt.title)
			}
			if description != tt.description {
				t.Errorf("description = %q, want %q", description, tt.description)
			}
		})
	}
}

func TestTikTokNotImplemented(t *testing.T) {
	client := NewTikTokClient("token")
	if !client.Configured() {
		t.Error("client with a token should report configured")
	}
	_, err := client.PostVideo(context.Background(), "http://example.com/v.mp4", "hi")
	if !errors.Is(err, ErrNotImplemented) {
		t.Errorf("expected ErrNotImplemented, got %v", err)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate(short) = %q", got)
	}
	if got := truncate("abcdefghij", 5); got != "abcde..." {
		t.Errorf("truncate = %q", got)
	}
}
