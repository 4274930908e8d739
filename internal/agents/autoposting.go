package agents

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fpang/social-video-pipeline/internal/content"
	"github.com/fpang/social-video-pipeline/internal/jobs"
	"github.com/fpang/social-video-pipeline/internal/social"
)

// QueuedContent is one pending item in the auto-posting queue.
type QueuedContent struct {
	ID              string                    `json:"id"`
	Title           string                    `json:"title"`
	Description     string                    `json:"description,omitempty"`
	VideoURL        string                    `json:"videoUrl"`
	Platforms       []string                  `json:"platforms"`
	Status          string                    `json:"status"` // pending, posted, failed
	PlatformContent content.GeneratedContent  `json:"platformContent,omitempty"`
	Results         []social.PostResult       `json:"results,omitempty"`
	Error           string                    `json:"error,omitempty"`
	CreatedAt       time.Time                 `json:"createdAt"`
	PostedAt        time.Time                 `json:"postedAt,omitempty"`
}

// AutoPostingAgent drains a content queue: for each pending item it
// generates platform-specific copy and publishes the video to every
// requested platform. One queue item is posted per pass.
type AutoPostingAgent struct {
	limiter   *Limiter
	generator *content.Generator
	publisher *social.Publisher

	mu      sync.Mutex
	queue   []*QueuedContent
	history []*QueuedContent
}

// NewAutoPostingAgent creates the agent with its default pacing:
// three posts a day, one hour apart, at the scheduled posting times.
func NewAutoPostingAgent(generator *content.Generator, publisher *social.Publisher) *AutoPostingAgent {
	return &AutoPostingAgent{
		limiter: NewLimiter(Limits{
			Schedule:         "0 9,15,21 * * *",
			MaxActionsPerDay: 3,
			CooldownMinutes:  60,
		}),
		generator: generator,
		publisher: publisher,
	}
}

func (a *AutoPostingAgent) Name() string { return "autoPosting" }

func (a *AutoPostingAgent) Limiter() *Limiter { return a.limiter }

// Enqueue adds content to the posting queue.
func (a *AutoPostingAgent) Enqueue(title, description, videoURL string, platforms []string) *QueuedContent {
	if len(platforms) == 0 {
		platforms = []string{"facebook", "instagram"}
	}
	item := &QueuedContent{
		ID:          jobs.GenerateID("queue-"),
		Title:       title,
		Description: description,
		VideoURL:    videoURL,
		Platforms:   platforms,
		Status:      "pending",
		CreatedAt:   time.Now(),
	}

	a.mu.Lock()
	a.queue = append(a.queue, item)
	a.mu.Unlock()

	log.Info().Str("title", title).Msg("Content added to auto-posting queue")
	return item
}

// Queue returns snapshots of the pending queue and posting history.
func (a *AutoPostingAgent) Queue() (queue, history []*QueuedContent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]*QueuedContent(nil), a.queue...), append([]*QueuedContent(nil), a.history...)
}

// QueueSize returns the number of pending items.
func (a *AutoPostingAgent) QueueSize() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := 0
	for _, item := range a.queue {
		if item.Status == "pending" {
			n++
		}
	}
	return n
}

// Run posts the oldest pending queue item, if the limiter allows.
func (a *AutoPostingAgent) Run(ctx context.Context) {
	if !a.limiter.Allow(a.Name()) {
		return
	}

	item := a.nextPending()
	if item == nil {
		return
	}

	log.Info().Str("title", item.Title).Strs("platforms", item.Platforms).Msg("Processing queued content")

	if item.PlatformContent == nil {
		item.PlatformContent = a.generator.GeneratePlatformContent(ctx, item.Title, item.Description, item.Platforms)
	}

	results := make([]social.PostResult, 0, len(item.Platforms))
	anySuccess := false
	for _, platform := range item.Platforms {
		caption := buildCaption(item.PlatformContent[platform], item.Title, item.Description)
		result := a.publisher.Post(ctx, platform, item.VideoURL, caption)
		results = append(results, result)
		if result.Success {
			anySuccess = true
		} else {
			log.Warn().Str("platform", platform).Str("error", result.Error).Msg("Queued post failed on platform")
		}
	}

	a.mu.Lock()
	item.Results = results
	item.PostedAt = time.Now()
	if anySuccess {
		item.Status = "posted"
	} else {
		item.Status = "failed"
		item.Error = "all platforms failed"
	}
	a.removeFromQueue(item)
	a.history = append(a.history, item)
	a.mu.Unlock()

	if anySuccess {
		a.limiter.Record()
		log.Info().Str("title", item.Title).Msg("Queued content posted")
	}
}

// nextPending returns the oldest pending item, or nil.
func (a *AutoPostingAgent) nextPending() *QueuedContent {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, item := range a.queue {
		if item.Status == "pending" {
			return item
		}
	}
	return nil
}

// removeFromQueue drops an item from the queue slice. Caller holds mu.
func (a *AutoPostingAgent) removeFromQueue(target *QueuedContent) {
	for i, item := range a.queue {
		if item == target {
			a.queue = append(a.queue[:i], a.queue[i+1:]...)
			return
		}
	}
}

// buildCaption flattens generated copy into the single caption string
// the publishing APIs take. YouTube keeps its title on the first line.
func buildCaption(post content.PlatformPost, title, description string) string {
	caption := post.Caption
	if caption == "" {
		caption = description
	}
	if caption == "" {
		caption = title
	}

	var parts []string
	if post.Title != "" {
		parts = append(parts, post.Title)
	}
	parts = append(parts, caption)
	if len(post.Hashtags) > 0 {
		parts = append(parts, strings.Join(post.Hashtags, " "))
	}
	return strings.Join(parts, "\n")
}
