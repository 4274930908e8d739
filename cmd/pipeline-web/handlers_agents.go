package main

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fpang/social-video-pipeline/internal/agents"
)

// GET /api/agents/status
func (s *server) handleAgentStatusAll(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"agents":  s.agents.StatusAll(),
	})
}

// GET /api/agents/status/{agentName}
func (s *server) handleAgentStatus(w http.ResponseWriter, r *http.Request) {
	status := s.agents.Status(r.PathValue("agentName"))
	if status == nil {
		httpError(w, http.StatusNotFound, "Agent not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"agent":   status,
	})
}

// POST /api/agents/start/{agentName}
func (s *server) handleAgentStart(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("agentName")
	if err := s.agents.Start(name); err != nil {
		switch {
		case errors.Is(err, agents.ErrAgentNotFound):
			httpError(w, http.StatusNotFound, "Agent not found")
		case errors.Is(err, agents.ErrAgentUnavailable):
			status := s.agents.Status(name)
			respondJSON(w, http.StatusBadRequest, map[string]interface{}{
				"error":               "Agent cannot operate",
				"message":             err.Error(),
				"serviceAvailability": status.ServiceAvailability,
			})
		default:
			httpError(w, http.StatusInternalServerError, "Failed to start agent")
		}
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": fmt.Sprintf("%s agent started successfully", name),
	})
}

// POST /api/agents/stop/{agentName}
func (s *server) handleAgentStop(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("agentName")
	if err := s.agents.Stop(name); err != nil {
		httpError(w, http.StatusNotFound, "Agent not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": fmt.Sprintf("%s agent stopped successfully", name),
	})
}

// PUT /api/agents/config/{agentName}
func (s *server) handleAgentConfig(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("agentName")

	var limits agents.Limits
	if err := decodeJSON(r, &limits); err != nil {
		httpError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.agents.UpdateLimits(name, limits); err != nil {
		if errors.Is(err, agents.ErrAgentNotFound) {
			httpError(w, http.StatusNotFound, "Agent not found")
			return
		}
		httpError(w, http.StatusBadRequest, "Failed to update agent configuration: "+err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": fmt.Sprintf("%s agent configuration updated", name),
	})
}

// POST /api/agents/auto-posting/add-content
func (s *server) handleQueueAdd(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		VideoURL    string   `json:"videoUrl"`
		Platforms   []string `json:"platforms"`
	}
	if err := decodeJSON(r, &body); err != nil {
		httpError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Title == "" || body.VideoURL == "" {
		httpError(w, http.StatusBadRequest, "Title and video URL are required")
		return
	}

	s.agents.AutoPosting().Enqueue(body.Title, body.Description, body.VideoURL, body.Platforms)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Content added to auto-posting queue",
	})
}

// GET /api/agents/auto-posting/queue
func (s *server) handleQueueGet(w http.ResponseWriter, r *http.Request) {
	queue, history := s.agents.AutoPosting().Queue()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"queue":   queue,
		"history": history,
	})
}

// POST /api/agents/auto-posting/run
func (s *server) handleAutoPostingRun(w http.ResponseWriter, r *http.Request) {
	agent := s.agents.AutoPosting()
	agent.Run(r.Context())
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"message":   "Auto-posting run completed",
		"queueSize": agent.QueueSize(),
	})
}

// POST /api/agents/engagement/add-target
func (s *server) handleEngagementAddTarget(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Platform  string                `json:"platform"`
		AccountID string                `json:"accountId"`
		Criteria  agents.TargetCriteria `json:"criteria"`
	}
	if err := decodeJSON(r, &body); err != nil {
		httpError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Platform == "" || body.AccountID == "" {
		httpError(w, http.StatusBadRequest, "Platform and account ID are required")
		return
	}

	s.agents.Engagement().AddTarget(body.Platform, body.AccountID, body.Criteria)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Engagement target added successfully",
	})
}

// GET /api/agents/engagement/targets
func (s *server) handleEngagementTargets(w http.ResponseWriter, r *http.Request) {
	targets, history := s.agents.Engagement().Targets()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"targets": targets,
		"history": history,
	})
}

// POST /api/agents/engagement/run
func (s *server) handleEngagementRun(w http.ResponseWriter, r *http.Request) {
	agent := s.agents.Engagement()
	opportunities := agent.FindOpportunities(r.Context())

	type runResult struct {
		Opportunity agents.Opportunity `json:"opportunity"`
		Success     bool               `json:"success"`
	}
	results := make([]runResult, 0, 3)
	for i, opp := range opportunities {
		if i >= 3 {
			break
		}
		results = append(results, runResult{Opportunity: opp, Success: agent.Engage(r.Context(), opp)})
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Engagement run completed",
		"results": results,
	})
}

// POST /api/agents/following/add-keywords
func (s *server) handleFollowingAddKeywords(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Keywords []string `json:"keywords"`
		Platform string   `json:"platform"`
	}
	if err := decodeJSON(r, &body); err != nil {
		httpError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(body.Keywords) == 0 || body.Platform == "" {
		httpError(w, http.StatusBadRequest, "Keywords array and platform are required")
		return
	}

	s.agents.Following().AddKeywords(body.Keywords, body.Platform)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Following keywords added successfully",
	})
}

// GET /api/agents/following/keywords
func (s *server) handleFollowingKeywords(w http.ResponseWriter, r *http.Request) {
	keywords, following, history := s.agents.Following().Keywords()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":       true,
		"keywords":      keywords,
		"followingList": following,
		"history":       history,
	})
}

// POST /api/agents/following/run
func (s *server) handleFollowingRun(w http.ResponseWriter, r *http.Request) {
	agent := s.agents.Following()
	accounts := agent.FindAccounts(r.Context())

	type runResult struct {
		Account agents.CandidateAccount `json:"account"`
		Success bool                    `json:"success"`
	}
	results := make([]runResult, 0, 2)
	for i, account := range accounts {
		if i >= 2 {
			break
		}
		results = append(results, runResult{Account: account, Success: agent.Follow(r.Context(), account)})
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Following run completed",
		"results": results,
	})
}

// POST /api/agents/trigger-all
func (s *server) handleAgentsTriggerAll(w http.ResponseWriter, r *http.Request) {
	results := make(map[string]interface{})
	for name, err := range s.agents.TriggerAll(r.Context()) {
		if err != nil {
			results[name] = map[string]interface{}{"success": false, "error": err.Error()}
		} else {
			results[name] = map[string]interface{}{"success": true}
		}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "All agents triggered successfully",
		"results": results,
	})
}

// GET /api/agents/analytics
func (s *server) handleAgentAnalytics(w http.ResponseWriter, r *http.Request) {
	autoPosting := s.agents.AutoPosting()
	engagement := s.agents.Engagement()
	following := s.agents.Following()

	_, postHistory := autoPosting.Queue()
	_, engageHistory := engagement.Targets()
	_, followingList, followHistory := following.Keywords()

	today := time.Now()
	sameDay := func(t time.Time) bool {
		return t.Year() == today.Year() && t.YearDay() == today.YearDay()
	}

	postsToday := 0
	for _, item := range postHistory {
		if sameDay(item.PostedAt) {
			postsToday++
		}
	}
	engagementsToday := 0
	for _, record := range engageHistory {
		if sameDay(record.Timestamp) {
			engagementsToday++
		}
	}
	followsToday := 0
	for _, record := range followHistory {
		if sameDay(record.Timestamp) {
			followsToday++
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"analytics": map[string]interface{}{
			"autoPosting": map[string]int{
				"queueSize":  autoPosting.QueueSize(),
				"postsToday": postsToday,
				"totalPosts": len(postHistory),
			},
			"engagement": map[string]int{
				"targetsCount":     engagement.TargetCount(),
				"engagementsToday": engagementsToday,
				"totalEngagements": len(engageHistory),
			},
			"following": map[string]int{
				"keywordsCount":     following.KeywordCount(),
				"followsToday":      followsToday,
				"totalFollows":      len(followHistory),
				"followingListSize": len(followingList),
			},
		},
	})
}
