package social

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// youtubeUploadURL is the YouTube Data API resumable upload endpoint.
const youtubeUploadURL = "https://www.googleapis.com/upload/youtube/v3/videos?uploadType=resumable&part=snippet,status"

// YouTubeClient uploads videos via the YouTube Data API resumable
// upload flow. Unlike the Meta platforms, YouTube does not pull media
// from a URL: the client fetches the rendition itself and streams the
// bytes to the upload session.
type YouTubeClient struct {
	httpClient  *http.Client
	accessToken string
	uploadURL   string
}

// NewYouTubeClient creates a YouTube API client. The access token is
// an OAuth2 bearer token with the youtube.upload scope.
func NewYouTubeClient(accessToken string) *YouTubeClient {
	return &YouTubeClient{
		// Uploads can far exceed the API-call timeout.
		httpClient:  &http.Client{Timeout: 10 * time.Minute},
		accessToken: accessToken,
		uploadURL:   youtubeUploadURL,
	}
}

func (c *YouTubeClient) Platform() string { return "youtube" }

func (c *YouTubeClient) Configured() bool { return c.accessToken != "" }

// youtubeSnippet is the upload metadata body.
type youtubeSnippet struct {
	Snippet struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	} `json:"snippet"`
	Status struct {
		PrivacyStatus string `json:"privacyStatus"`
	} `json:"status"`
}

// PostVideo uploads a video. The caption's first line becomes the
// title, the rest the description. Uploads are created unlisted; the
// account owner promotes them manually.
func (c *YouTubeClient) PostVideo(ctx context.Context, videoURL, caption string) (string, error) {
	sessionURL, err := c.startUploadSession(ctx, caption)
	if err != nil {
		return "", err
	}

	videoResp, err := c.fetchVideo(ctx, videoURL)
	if err != nil {
		return "", err
	}
	defer videoResp.Body.Close()

	return c.uploadBytes(ctx, sessionURL, videoResp.Body, videoResp.ContentLength)
}

// startUploadSession creates a resumable upload session and returns
// the session URL from the Location header.
func (c *YouTubeClient) startUploadSession(ctx context.Context, caption string) (string, error) {
	var meta youtubeSnippet
	meta.Snippet.Title, meta.Snippet.Description = splitCaption(caption)
	meta.Status.PrivacyStatus = "unlisted"

	body, err := json.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("marshal upload metadata: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Upload-Content-Type", "video/mp4")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("start upload session: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("start upload session: status %d (body: %s)", resp.StatusCode, truncate(string(raw), 200))
	}

	sessionURL := resp.Header.Get("Location")
	if sessionURL == "" {
		return "", fmt.Errorf("start upload session: no session URL in response")
	}
	return sessionURL, nil
}

// fetchVideo opens the rendition for streaming to the upload session.
func (c *YouTubeClient) fetchVideo(ctx context.Context, videoURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, videoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch video %s: %w", videoURL, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch video %s: status %d", videoURL, resp.StatusCode)
	}
	return resp, nil
}

// uploadBytes streams the video into the session and returns the
// uploaded video ID.
func (c *YouTubeClient) uploadBytes(ctx context.Context, sessionURL string, body io.Reader, contentLength int64) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, sessionURL, body)
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", "video/mp4")
	if contentLength > 0 {
		req.ContentLength = contentLength
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload video: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read upload response: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("upload video: status %d (body: %s)", resp.StatusCode, truncate(string(raw), 200))
	}

	var uploaded struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &uploaded); err != nil {
		return "", fmt.Errorf("parse upload response: %w", err)
	}
	if uploaded.ID == "" {
		return "", fmt.Errorf("upload response missing video ID (body: %s)", truncate(string(raw), 200))
	}

	log.Info().Str("videoId", uploaded.ID).Msg("Video uploaded to YouTube")
	return uploaded.ID, nil
}

// splitCaption divides a caption into a title (first line, capped at
// YouTube's 100-character title limit) and description (the rest).
func splitCaption(caption string) (title, description string) {
	caption = strings.TrimSpace(caption)
	title, description, found := strings.Cut(caption, "\n")
	if !found {
		description = caption
	}
	if len(title) > 100 {
		title = title[:97] + "..."
	}
	if title == "" {
		title = "Untitled video"
	}
	return title, strings.TrimSpace(description)
}
