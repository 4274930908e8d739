package social

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// instagramBaseURL is the Instagram Graph API base URL.
	instagramBaseURL = "https://graph.instagram.com/v22.0"

	// Video container processing poll settings. Instagram transcodes
	// the pulled video server-side before the container can publish.
	initialPollInterval = 5 * time.Second
	maxPollInterval     = 30 * time.Second
	containerTimeout    = 5 * time.Minute
)

// InstagramClient publishes reels via the Instagram Graph API
// container flow: create a media container from a public video URL,
// wait for Instagram's processing to finish, then publish it.
type InstagramClient struct {
	httpClient  *http.Client
	accessToken string
	userID      string
	baseURL     string
}

// NewInstagramClient creates an Instagram API client.
func NewInstagramClient(accessToken, userID string) *InstagramClient {
	return &InstagramClient{
		httpClient:  &http.Client{Timeout: defaultTimeout},
		accessToken: accessToken,
		userID:      userID,
		baseURL:     instagramBaseURL,
	}
}

func (c *InstagramClient) Platform() string { return "instagram" }

func (c *InstagramClient) Configured() bool {
	return c.accessToken != "" && c.userID != ""
}

// PostVideo runs the full container flow and returns the published
// media ID.
func (c *InstagramClient) PostVideo(ctx context.Context, videoURL, caption string) (string, error) {
	containerID, err := c.createReelContainer(ctx, videoURL, caption)
	if err != nil {
		return "", err
	}
	if err := c.waitForContainer(ctx, containerID); err != nil {
		return "", err
	}
	return c.publish(ctx, containerID)
}

// createReelContainer creates a reel media container. videoURL must be
// publicly accessible; Instagram pulls and transcodes it.
func (c *InstagramClient) createReelContainer(ctx context.Context, videoURL, caption string) (string, error) {
	params := url.Values{
		"video_url":    {videoURL},
		"media_type":   {"REELS"},
		"caption":      {caption},
		"access_token": {c.accessToken},
	}

	resp, err := postForm(ctx, c.httpClient, c.baseURL, fmt.Sprintf("/%s/media", c.userID), params)
	if err != nil {
		return "", fmt.Errorf("create reel container: %w", err)
	}
	log.Info().Str("containerId", resp.ID).Msg("Instagram reel container created")
	return resp.ID, nil
}

// publish publishes a processed media container.
func (c *InstagramClient) publish(ctx context.Context, containerID string) (string, error) {
	params := url.Values{
		"creation_id":  {containerID},
		"access_token": {c.accessToken},
	}

	resp, err := postForm(ctx, c.httpClient, c.baseURL, fmt.Sprintf("/%s/media_publish", c.userID), params)
	if err != nil {
		return "", fmt.Errorf("publish container %s: %w", containerID, err)
	}
	log.Info().Str("containerId", containerID).Str("postId", resp.ID).Msg("Instagram container published")
	return resp.ID, nil
}

// containerStatusResponse is the response from
// GET /{container_id}?fields=status_code,status.
type containerStatusResponse struct {
	ID         string    `json:"id"`
	StatusCode string    `json:"status_code"` // IN_PROGRESS, FINISHED, ERROR
	Status     string    `json:"status,omitempty"`
	Error      *graphErr `json:"error,omitempty"`
}

// containerStatus returns the processing status of a media container.
func (c *InstagramClient) containerStatus(ctx context.Context, containerID string) (string, error) {
	endpoint := fmt.Sprintf("/%s?fields=status_code,status&access_token=%s",
		containerID, url.QueryEscape(c.accessToken))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("container status request: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var status containerStatusResponse
	if err := json.Unmarshal(body, &status); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	if status.Error != nil {
		return "", fmt.Errorf("API error: %s (code %d)", status.Error.Message, status.Error.Code)
	}
	return status.StatusCode, nil
}

// waitForContainer polls container status until FINISHED or ERROR.
// Uses exponential backoff: 5s, 10s, 20s, 30s (max).
func (c *InstagramClient) waitForContainer(ctx context.Context, containerID string) error {
	deadline := time.Now().Add(containerTimeout)
	interval := initialPollInterval

	for {
		if time.Now().After(deadline) {
			return fmt.Errorf("container %s: timed out after %s waiting for processing", containerID, containerTimeout)
		}

		status, err := c.containerStatus(ctx, containerID)
		if err != nil {
			log.Warn().Err(err).Str("containerId", containerID).Msg("Container status poll error, retrying")
		} else {
			switch status {
			case "FINISHED":
				log.Debug().Str("containerId", containerID).Msg("Container processing finished")
				return nil
			case "ERROR":
				return fmt.Errorf("container %s: processing failed on Instagram's side", containerID)
			case "IN_PROGRESS":
				log.Debug().Str("containerId", containerID).Dur("nextPoll", interval).Msg("Container still processing")
			default:
				log.Warn().Str("containerId", containerID).Str("status", status).Msg("Unknown container status")
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}

		interval = interval * 2
		if interval > maxPollInterval {
			interval = maxPollInterval
		}
	}
}
