package social

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// defaultTimeout is the HTTP client timeout for platform API calls.
const defaultTimeout = 30 * time.Second

// graphResponse is the generic Meta Graph API response shape, shared by
// the Facebook and Instagram clients.
type graphResponse struct {
	ID    string    `json:"id"`
	Error *graphErr `json:"error,omitempty"`
}

type graphErr struct {
	Message   string `json:"message"`
	Type      string `json:"type"`
	Code      int    `json:"code"`
	FBTraceID string `json:"fbtrace_id,omitempty"`
}

// postForm sends a form-encoded POST to a Graph API endpoint and
// decodes the generic response.
func postForm(ctx context.Context, client *http.Client, baseURL, endpoint string, params url.Values) (*graphResponse, error) {
	log.Debug().Str("method", http.MethodPost).Str("path", endpoint).Msg("Graph API request")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+endpoint,
		strings.NewReader(params.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	start := time.Now()
	httpResp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer httpResp.Body.Close()

	log.Debug().Int("statusCode", httpResp.StatusCode).Dur("duration", time.Since(start)).Msg("Graph API response")

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var resp graphResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse response: %w (body: %s)", err, truncate(string(body), 200))
	}

	if resp.Error != nil {
		log.Error().
			Str("errorMessage", resp.Error.Message).
			Str("errorType", resp.Error.Type).
			Int("errorCode", resp.Error.Code).
			Msg("Graph API error")
		return nil, fmt.Errorf("Graph API error: %s (type: %s, code: %d)",
			resp.Error.Message, resp.Error.Type, resp.Error.Code)
	}

	if resp.ID == "" {
		return nil, fmt.Errorf("unexpected response: no ID returned (body: %s)", truncate(string(body), 200))
	}
	return &resp, nil
}

// truncate returns the first n characters of s, appending "..." if truncated.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
