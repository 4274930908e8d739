package agents

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fpang/social-video-pipeline/internal/content"
)

// maxEngagementsPerRun bounds how many opportunities one pass acts on.
const maxEngagementsPerRun = 3

// TargetCriteria filters which posts from a target account are worth
// engaging with.
type TargetCriteria struct {
	MinEngagement float64  `json:"minEngagement"`
	MaxFollowers  int      `json:"maxFollowers"`
	Keywords      []string `json:"keywords,omitempty"`
}

// EngagementTarget is one account the agent watches.
type EngagementTarget struct {
	Platform    string         `json:"platform"`
	AccountID   string         `json:"accountId"`
	Criteria    TargetCriteria `json:"criteria"`
	LastChecked time.Time      `json:"lastChecked,omitempty"`
}

// Opportunity is a post worth engaging with, with its analysis.
type Opportunity struct {
	Platform  string           `json:"platform"`
	AccountID string           `json:"accountId"`
	PostID    string           `json:"postId"`
	Content   string           `json:"content"`
	Analysis  content.Analysis `json:"analysis"`
}

// EngagementRecord is one completed engagement, kept for the history
// endpoint and the daily analytics rollup.
type EngagementRecord struct {
	Platform  string    `json:"platform"`
	PostID    string    `json:"postId"`
	Action    string    `json:"action"`
	Response  string    `json:"response,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// RecentPost is a post fetched from a target account's timeline.
type RecentPost struct {
	ID      string
	Content string
}

// PostFetcher retrieves recent posts from an account. The production
// fetcher would call each platform's timeline API; none of the
// configured platforms currently expose one to this app, so the
// default fetcher returns a fixed sample.
type PostFetcher func(ctx context.Context, platform, accountID string) ([]RecentPost, error)

// samplePostFetcher stands in until platform timeline access is wired.
func samplePostFetcher(ctx context.Context, platform, accountID string) ([]RecentPost, error) {
	return []RecentPost{
		{ID: "sample_post_1", Content: "Sample post content for engagement testing"},
	}, nil
}

// EngagementAgent scans target accounts for posts worth engaging with,
// likes them, and comments on the strongest ones with generated copy.
type EngagementAgent struct {
	limiter   *Limiter
	generator *content.Generator
	fetch     PostFetcher

	mu      sync.Mutex
	targets []*EngagementTarget
	history []EngagementRecord
}

// NewEngagementAgent creates the agent with its default pacing: every
// thirty minutes, up to fifty actions a day, five minutes apart.
func NewEngagementAgent(generator *content.Generator, fetch PostFetcher) *EngagementAgent {
	if fetch == nil {
		fetch = samplePostFetcher
	}
	return &EngagementAgent{
		limiter: NewLimiter(Limits{
			Schedule:         "*/30 * * * *",
			MaxActionsPerDay: 50,
			CooldownMinutes:  5,
		}),
		generator: generator,
		fetch:     fetch,
	}
}

func (a *EngagementAgent) Name() string { return "engagement" }

func (a *EngagementAgent) Limiter() *Limiter { return a.limiter }

// AddTarget registers an account to watch. Zero criteria fields get
// the defaults: 0.3 minimum engagement, 100k follower cap.
func (a *EngagementAgent) AddTarget(platform, accountID string, criteria TargetCriteria) {
	if criteria.MinEngagement == 0 {
		criteria.MinEngagement = 0.3
	}
	if criteria.MaxFollowers == 0 {
		criteria.MaxFollowers = 100000
	}

	a.mu.Lock()
	a.targets = append(a.targets, &EngagementTarget{
		Platform:  platform,
		AccountID: accountID,
		Criteria:  criteria,
	})
	a.mu.Unlock()

	log.Info().Str("accountId", accountID).Str("platform", platform).Msg("Added engagement target")
}

// Targets returns snapshots of the watch list and engagement history.
func (a *EngagementAgent) Targets() (targets []*EngagementTarget, history []EngagementRecord) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]*EngagementTarget(nil), a.targets...), append([]EngagementRecord(nil), a.history...)
}

// TargetCount returns the number of watched accounts.
func (a *EngagementAgent) TargetCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.targets)
}

// FindOpportunities scans every target's recent posts and returns the
// ones whose analysis clears the target's criteria.
func (a *EngagementAgent) FindOpportunities(ctx context.Context) []Opportunity {
	a.mu.Lock()
	targets := append([]*EngagementTarget(nil), a.targets...)
	a.mu.Unlock()

	var opportunities []Opportunity
	for _, target := range targets {
		posts, err := a.fetch(ctx, target.Platform, target.AccountID)
		if err != nil {
			log.Warn().Err(err).Str("accountId", target.AccountID).Msg("Could not fetch posts for target")
			continue
		}
		target.LastChecked = time.Now()

		for _, post := range posts {
			analysis := a.generator.AnalyzeContent(ctx, post.Content)
			if analysis.Engagement > target.Criteria.MinEngagement && analysis.Relevance > 0.5 {
				opportunities = append(opportunities, Opportunity{
					Platform:  target.Platform,
					AccountID: target.AccountID,
					PostID:    post.ID,
					Content:   post.Content,
					Analysis:  analysis,
				})
			}
		}
	}
	return opportunities
}

// Engage likes an opportunity's post and, when the engagement score is
// high enough, comments with generated copy. Returns whether the
// engagement was performed.
func (a *EngagementAgent) Engage(ctx context.Context, opp Opportunity) bool {
	if !a.limiter.Allow(a.Name()) {
		return false
	}

	reply := a.generator.EngagementReply(ctx, opp.Content, opp.Platform)

	a.likePost(opp.Platform, opp.PostID)
	if opp.Analysis.Engagement > 0.7 {
		a.commentOnPost(opp.Platform, opp.PostID, reply)
	}

	a.mu.Lock()
	a.history = append(a.history, EngagementRecord{
		Platform:  opp.Platform,
		PostID:    opp.PostID,
		Action:    "engaged",
		Response:  reply,
		Timestamp: time.Now(),
	})
	a.mu.Unlock()

	a.limiter.Record()
	log.Info().Str("postId", opp.PostID).Str("platform", opp.Platform).Msg("Engaged with post")
	return true
}

// Run performs one engagement pass.
func (a *EngagementAgent) Run(ctx context.Context) {
	if !a.limiter.Allow(a.Name()) {
		return
	}

	opportunities := a.FindOpportunities(ctx)
	for i, opp := range opportunities {
		if i >= maxEngagementsPerRun {
			break
		}
		a.Engage(ctx, opp)
	}
}

// likePost and commentOnPost log the intended action. The platform
// engagement APIs (Graph API likes edge, comment edge) need
// app-review-gated permissions this app does not hold yet.
func (a *EngagementAgent) likePost(platform, postID string) {
	log.Info().Str("platform", platform).Str("postId", postID).Msg("Liking post")
}

func (a *EngagementAgent) commentOnPost(platform, postID, comment string) {
	log.Info().Str("platform", platform).Str("postId", postID).Str("comment", comment).Msg("Commenting on post")
}
