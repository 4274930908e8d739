package social

import "context"

// TikTokClient is a placeholder for TikTok's Content Posting API.
// Posting requires an approved developer app with the video.publish
// scope, so the client reports its configuration state but every post
// attempt returns ErrNotImplemented.
type TikTokClient struct {
	accessToken string
}

// NewTikTokClient creates the placeholder client.
func NewTikTokClient(accessToken string) *TikTokClient {
	return &TikTokClient{accessToken: accessToken}
}

func (c *TikTokClient) Platform() string { return "tiktok" }

func (c *TikTokClient) Configured() bool { return c.accessToken != "" }

// PostVideo always returns ErrNotImplemented.
func (c *TikTokClient) PostVideo(ctx context.Context, videoURL, caption string) (string, error) {
	return "", ErrNotImplemented
}
