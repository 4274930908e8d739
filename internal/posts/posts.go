// Package posts is the in-memory post library: drafts connecting an
// uploaded video with generated copy, publish targets, and publish
// results. Storage is process-local; restarting the server clears it.
package posts

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fpang/social-video-pipeline/internal/social"
)

// ErrPostNotFound rejects requests naming an unknown post ID.
var ErrPostNotFound = errors.New("post not found")

// Post statuses.
const (
	StatusDraft      = "draft"
	StatusScheduled  = "scheduled"
	StatusPublishing = "publishing"
	StatusPublished  = "published"
	StatusFailed     = "failed"
)

// Post is one draft or published post.
type Post struct {
	ID             int                 `json:"id"`
	Title          string              `json:"title"`
	VideoURL       string              `json:"videoUrl,omitempty"`
	Content        string              `json:"content,omitempty"`
	Hashtags       map[string][]string `json:"hashtags,omitempty"`
	Platforms      []string            `json:"platforms"`
	ScheduledTime  string              `json:"scheduledTime,omitempty"`
	Status         string              `json:"status"`
	CreatedAt      time.Time           `json:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt"`
	PublishedAt    *time.Time          `json:"publishedAt,omitempty"`
	PublishResults []social.PostResult `json:"publishResults"`
}

// CreateRequest is the input for creating a post.
type CreateRequest struct {
	Title         string              `json:"title"`
	VideoURL      string              `json:"videoUrl"`
	Content       string              `json:"content"`
	Hashtags      map[string][]string `json:"hashtags"`
	Platforms     []string            `json:"platforms"`
	ScheduledTime string              `json:"scheduledTime"`
	Status        string              `json:"status"`
}

// UpdateRequest carries the updatable post fields. Nil pointers leave
// the field unchanged.
type UpdateRequest struct {
	Title         *string             `json:"title"`
	VideoURL      *string             `json:"videoUrl"`
	Content       *string             `json:"content"`
	Hashtags      map[string][]string `json:"hashtags"`
	Platforms     []string            `json:"platforms"`
	ScheduledTime *string             `json:"scheduledTime"`
	Status        *string             `json:"status"`
}

// Library holds the posts and publishes them through the social layer.
type Library struct {
	publisher *social.Publisher

	mu     sync.Mutex
	posts  []*Post
	nextID int
}

// NewLibrary creates an empty Library.
func NewLibrary(publisher *social.Publisher) *Library {
	return &Library{publisher: publisher, nextID: 1}
}

// Create adds a new post. Empty titles default to "Untitled Post" and
// an empty status to draft.
func (l *Library) Create(req CreateRequest) *Post {
	now := time.Now()
	post := &Post{
		Title:          req.Title,
		VideoURL:       req.VideoURL,
		Content:        req.Content,
		Hashtags:       req.Hashtags,
		Platforms:      req.Platforms,
		ScheduledTime:  req.ScheduledTime,
		Status:         req.Status,
		CreatedAt:      now,
		UpdatedAt:      now,
		PublishResults: []social.PostResult{},
	}
	if post.Title == "" {
		post.Title = "Untitled Post"
	}
	if post.Status == "" {
		post.Status = StatusDraft
	}
	if post.Hashtags == nil {
		post.Hashtags = map[string][]string{}
	}
	if post.Platforms == nil {
		post.Platforms = []string{}
	}

	l.mu.Lock()
	post.ID = l.nextID
	l.nextID++
	l.posts = append(l.posts, post)
	l.mu.Unlock()

	log.Info().Int("postId", post.ID).Str("title", post.Title).Msg("Post created")
	return post
}

// List returns all posts, newest first.
func (l *Library) List() []*Post {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := append([]*Post(nil), l.posts...)
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Get returns one post by ID.
func (l *Library) Get(id int) (*Post, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.find(id)
}

// find locates a post by ID. Caller holds mu.
func (l *Library) find(id int) (*Post, error) {
	for _, post := range l.posts {
		if post.ID == id {
			return post, nil
		}
	}
	return nil, ErrPostNotFound
}

// Update applies an update to a post.
func (l *Library) Update(id int, req UpdateRequest) (*Post, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	post, err := l.find(id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		post.Title = *req.Title
	}
	if req.VideoURL != nil {
		post.VideoURL = *req.VideoURL
	}
	if req.Content != nil {
		post.Content = *req.Content
	}
	if req.Hashtags != nil {
		post.Hashtags = req.Hashtags
	}
	if req.Platforms != nil {
		post.Platforms = req.Platforms
	}
	if req.ScheduledTime != nil {
		post.ScheduledTime = *req.ScheduledTime
	}
	if req.Status != nil {
		post.Status = *req.Status
	}
	post.UpdatedAt = time.Now()
	return post, nil
}

// Delete removes a post.
func (l *Library) Delete(id int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, post := range l.posts {
		if post.ID == id {
			l.posts = append(l.posts[:i], l.posts[i+1:]...)
			log.Info().Int("postId", id).Msg("Post deleted")
			return nil
		}
	}
	return ErrPostNotFound
}

// Publish posts a post's video to all of its platforms and records the
// results. The post ends up published when at least one platform
// succeeded, failed otherwise.
func (l *Library) Publish(ctx context.Context, id int) (*Post, error) {
	l.mu.Lock()
	post, err := l.find(id)
	if err != nil {
		l.mu.Unlock()
		return nil, err
	}
	post.Status = StatusPublishing
	post.UpdatedAt = time.Now()
	videoURL, content, platforms := post.VideoURL, post.Content, append([]string(nil), post.Platforms...)
	l.mu.Unlock()

	results := l.publisher.PostAll(ctx, platforms, videoURL, content)

	anySuccess := false
	for _, result := range results {
		if result.Success {
			anySuccess = true
			break
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now()
	post.PublishResults = results
	post.PublishedAt = &now
	post.UpdatedAt = now
	if anySuccess {
		post.Status = StatusPublished
	} else {
		post.Status = StatusFailed
	}

	log.Info().Int("postId", id).Str("status", post.Status).Int("platforms", len(results)).Msg("Post publish finished")
	return post, nil
}
