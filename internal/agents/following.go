package agents

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fpang/social-video-pipeline/internal/content"
)

// maxFollowsPerRun bounds how many accounts one pass follows.
const maxFollowsPerRun = 2

// Follower count bounds for candidate accounts.
const (
	minCandidateFollowers = 100
	maxCandidateFollowers = 1000000
)

// KeywordTarget is one keyword set the agent searches on a platform.
type KeywordTarget struct {
	Keywords     []string  `json:"keywords"`
	Platform     string    `json:"platform"`
	LastSearched time.Time `json:"lastSearched,omitempty"`
}

// CandidateAccount is an account found by keyword search.
type CandidateAccount struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Platform  string `json:"platform"`
	Bio       string `json:"bio,omitempty"`
	Followers int    `json:"followers"`
	LastPost  string `json:"lastPost,omitempty"`
}

// FollowRecord is one completed follow.
type FollowRecord struct {
	Platform  string    `json:"platform"`
	AccountID string    `json:"accountId"`
	Username  string    `json:"username"`
	Timestamp time.Time `json:"timestamp"`
}

// AccountSearcher finds accounts matching keywords on a platform. The
// default searcher returns a fixed sample until platform search APIs
// are wired.
type AccountSearcher func(ctx context.Context, keywords []string, platform string) ([]CandidateAccount, error)

func sampleAccountSearcher(ctx context.Context, keywords []string, platform string) ([]CandidateAccount, error) {
	return []CandidateAccount{
		{
			ID:        "sample_account_1",
			Username:  "sample_user",
			Platform:  platform,
			Bio:       "Sample bio for testing",
			Followers: 5000,
			LastPost:  "Sample post content",
		},
	}, nil
}

// FollowingAgent searches for accounts matching target keywords and
// follows the ones whose content analysis looks relevant and positive.
type FollowingAgent struct {
	limiter   *Limiter
	generator *content.Generator
	search    AccountSearcher

	mu        sync.Mutex
	keywords  []*KeywordTarget
	following []string
	history   []FollowRecord
}

// NewFollowingAgent creates the agent with its default pacing: three
// runs a day, twenty follows a day at most, fifteen minutes apart.
func NewFollowingAgent(generator *content.Generator, search AccountSearcher) *FollowingAgent {
	if search == nil {
		search = sampleAccountSearcher
	}
	return &FollowingAgent{
		limiter: NewLimiter(Limits{
			Schedule:         "0 10,14,18 * * *",
			MaxActionsPerDay: 20,
			CooldownMinutes:  15,
		}),
		generator: generator,
		search:    search,
	}
}

func (a *FollowingAgent) Name() string { return "following" }

func (a *FollowingAgent) Limiter() *Limiter { return a.limiter }

// AddKeywords registers a keyword set to search on a platform.
func (a *FollowingAgent) AddKeywords(keywords []string, platform string) {
	a.mu.Lock()
	a.keywords = append(a.keywords, &KeywordTarget{
		Keywords: keywords,
		Platform: platform,
	})
	a.mu.Unlock()

	log.Info().Strs("keywords", keywords).Str("platform", platform).Msg("Added following keywords")
}

// Keywords returns snapshots of the keyword targets, the accounts
// already followed, and the follow history.
func (a *FollowingAgent) Keywords() (keywords []*KeywordTarget, following []string, history []FollowRecord) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]*KeywordTarget(nil), a.keywords...),
		append([]string(nil), a.following...),
		append([]FollowRecord(nil), a.history...)
}

// KeywordCount returns the number of registered keyword targets.
func (a *FollowingAgent) KeywordCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.keywords)
}

// FindAccounts searches every keyword target and returns the accounts
// worth following.
func (a *FollowingAgent) FindAccounts(ctx context.Context) []CandidateAccount {
	a.mu.Lock()
	targets := append([]*KeywordTarget(nil), a.keywords...)
	a.mu.Unlock()

	var accounts []CandidateAccount
	for _, target := range targets {
		results, err := a.search(ctx, target.Keywords, target.Platform)
		if err != nil {
			log.Warn().Err(err).Strs("keywords", target.Keywords).Msg("Keyword search failed")
			continue
		}
		target.LastSearched = time.Now()

		for _, account := range results {
			if a.shouldFollow(ctx, account) {
				accounts = append(accounts, account)
			}
		}
	}
	return accounts
}

// shouldFollow applies the follow criteria: not already followed,
// follower count in bounds, and content analysis relevant and positive.
func (a *FollowingAgent) shouldFollow(ctx context.Context, account CandidateAccount) bool {
	a.mu.Lock()
	followed := slices.Contains(a.following, account.ID)
	a.mu.Unlock()
	if followed {
		return false
	}

	if account.Followers > maxCandidateFollowers || account.Followers < minCandidateFollowers {
		return false
	}

	bio := account.Bio
	if bio == "" {
		bio = account.LastPost
	}
	analysis := a.generator.AnalyzeContent(ctx, bio)
	return analysis.Relevance > 0.6 && analysis.Sentiment == "positive"
}

// Follow follows one account. Returns whether the follow was performed.
func (a *FollowingAgent) Follow(ctx context.Context, account CandidateAccount) bool {
	if !a.limiter.Allow(a.Name()) {
		return false
	}

	// Platform follow APIs need app-review-gated permissions; log the
	// intended action until they are available.
	log.Info().Str("platform", account.Platform).Str("accountId", account.ID).Msg("Following account")

	a.mu.Lock()
	a.following = append(a.following, account.ID)
	a.history = append(a.history, FollowRecord{
		Platform:  account.Platform,
		AccountID: account.ID,
		Username:  account.Username,
		Timestamp: time.Now(),
	})
	a.mu.Unlock()

	a.limiter.Record()
	log.Info().Str("username", account.Username).Str("platform", account.Platform).Msg("Followed account")
	return true
}

// Run performs one following pass.
func (a *FollowingAgent) Run(ctx context.Context) {
	if !a.limiter.Allow(a.Name()) {
		return
	}

	accounts := a.FindAccounts(ctx)
	for i, account := range accounts {
		if i >= maxFollowsPerRun {
			break
		}
		a.Follow(ctx, account)
	}
}
