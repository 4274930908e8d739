package social

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/rs/zerolog/log"
)

// facebookBaseURL is the Facebook Graph API base URL.
const facebookBaseURL = "https://graph.facebook.com/v19.0"

// FacebookClient publishes videos to a Facebook page via the Graph API
// video upload endpoint. Facebook pulls the video from a public URL, so
// no local upload is needed.
type FacebookClient struct {
	httpClient  *http.Client
	accessToken string
	pageID      string
	baseURL     string
}

// NewFacebookClient creates a Facebook API client for one page.
func NewFacebookClient(accessToken, pageID string) *FacebookClient {
	return &FacebookClient{
		httpClient:  &http.Client{Timeout: defaultTimeout},
		accessToken: accessToken,
		pageID:      pageID,
		baseURL:     facebookBaseURL,
	}
}

func (c *FacebookClient) Platform() string { return "facebook" }

func (c *FacebookClient) Configured() bool {
	return c.accessToken != "" && c.pageID != ""
}

// PostVideo publishes a video to the page feed. videoURL must be a
// publicly accessible URL; caption becomes the video description.
func (c *FacebookClient) PostVideo(ctx context.Context, videoURL, caption string) (string, error) {
	params := url.Values{
		"file_url":     {videoURL},
		"description":  {caption},
		"access_token": {c.accessToken},
	}

	resp, err := postForm(ctx, c.httpClient, c.baseURL, fmt.Sprintf("/%s/videos", c.pageID), params)
	if err != nil {
		return "", fmt.Errorf("post video to Facebook page %s: %w", c.pageID, err)
	}

	log.Info().Str("pageId", c.pageID).Str("postId", resp.ID).Msg("Video posted to Facebook")
	return resp.ID, nil
}
