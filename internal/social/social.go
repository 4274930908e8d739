// Package social publishes finished video renditions to the supported
// platforms. Each platform has its own client speaking that platform's
// publishing API; the Publisher aggregates them behind a common
// interface so the HTTP layer and the autoposting agent can post
// without knowing per-platform mechanics.
//
// Credentials come from the environment. A platform with no credential
// configured is reported as unconfigured and refuses to post rather
// than failing mid-call.
package social

import (
	"context"
	"errors"
	"os"
	"time"
)

// ErrNotImplemented marks platforms whose publishing API integration
// is not wired yet (TikTok requires an approved developer app).
var ErrNotImplemented = errors.New("platform publishing not implemented")

// ErrNotConfigured rejects posting to a platform with no access token.
var ErrNotConfigured = errors.New("platform credentials not configured")

// ErrUnknownPlatform rejects posting to a platform name the publisher
// does not recognize.
var ErrUnknownPlatform = errors.New("unknown platform")

// Tokens holds per-platform credentials, read from the environment.
type Tokens struct {
	FacebookAccessToken  string
	FacebookPageID       string
	InstagramAccessToken string
	InstagramUserID      string
	TikTokAccessToken    string
	YouTubeAccessToken   string
}

// TokensFromEnv loads all platform credentials from the environment.
// Missing variables are left empty; the platform is then unconfigured.
func TokensFromEnv() Tokens {
	return Tokens{
		FacebookAccessToken:  os.Getenv("FACEBOOK_ACCESS_TOKEN"),
		FacebookPageID:       os.Getenv("FACEBOOK_PAGE_ID"),
		InstagramAccessToken: os.Getenv("INSTAGRAM_ACCESS_TOKEN"),
		InstagramUserID:      os.Getenv("INSTAGRAM_USER_ID"),
		TikTokAccessToken:    os.Getenv("TIKTOK_ACCESS_TOKEN"),
		YouTubeAccessToken:   os.Getenv("YOUTUBE_ACCESS_TOKEN"),
	}
}

// VideoPublisher posts one video to one platform.
type VideoPublisher interface {
	// Platform returns the platform identifier ("facebook", "instagram", ...).
	Platform() string

	// Configured reports whether credentials are present.
	Configured() bool

	// PostVideo publishes a video. videoURL must be publicly reachable
	// (platform APIs pull the media over HTTP). Returns the platform's
	// post ID.
	PostVideo(ctx context.Context, videoURL, caption string) (string, error)
}

// PostResult is the outcome of posting to one platform.
type PostResult struct {
	Platform string    `json:"platform"`
	Success  bool      `json:"success"`
	PostID   string    `json:"postId,omitempty"`
	Error    string    `json:"error,omitempty"`
	PostedAt time.Time `json:"postedAt"`
}

// Publisher aggregates the per-platform clients.
type Publisher struct {
	publishers map[string]VideoPublisher
}

// NewPublisher builds a Publisher with one client per supported platform.
func NewPublisher(tokens Tokens) *Publisher {
	clients := []VideoPublisher{
		NewFacebookClient(tokens.FacebookAccessToken, tokens.FacebookPageID),
		NewInstagramClient(tokens.InstagramAccessToken, tokens.InstagramUserID),
		NewTikTokClient(tokens.TikTokAccessToken),
		NewYouTubeClient(tokens.YouTubeAccessToken),
	}
	byName := make(map[string]VideoPublisher, len(clients))
	for _, c := range clients {
		byName[c.Platform()] = c
	}
	return &Publisher{publishers: byName}
}

// Status reports per-platform credential presence, for the status
// endpoint. It never reveals the tokens themselves.
func (p *Publisher) Status() map[string]bool {
	status := make(map[string]bool, len(p.publishers))
	for name, client := range p.publishers {
		status[name] = client.Configured()
	}
	return status
}

// Post publishes a video to one platform.
func (p *Publisher) Post(ctx context.Context, platform, videoURL, caption string) PostResult {
	result := PostResult{Platform: platform, PostedAt: time.Now()}

	client, ok := p.publishers[platform]
	if !ok {
		result.Error = ErrUnknownPlatform.Error()
		return result
	}
	if !client.Configured() {
		result.Error = ErrNotConfigured.Error()
		return result
	}

	postID, err := client.PostVideo(ctx, videoURL, caption)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.Success = true
	result.PostID = postID
	return result
}

// PostAll publishes a video to every requested platform. Platforms are
// posted sequentially; one platform failing never skips the rest.
func (p *Publisher) PostAll(ctx context.Context, platforms []string, videoURL, caption string) []PostResult {
	results := make([]PostResult, 0, len(platforms))
	for _, platform := range platforms {
		results = append(results, p.Post(ctx, platform, videoURL, caption))
	}
	return results
}
