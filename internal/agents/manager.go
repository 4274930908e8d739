package agents

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/fpang/social-video-pipeline/internal/content"
	"github.com/fpang/social-video-pipeline/internal/social"
)

// ErrAgentNotFound rejects requests naming an unknown agent.
var ErrAgentNotFound = errors.New("agent not found")

// ErrAgentUnavailable rejects starting an agent whose required
// services are not configured.
var ErrAgentUnavailable = errors.New("agent cannot operate: configure the Gemini API key and at least one platform access token")

// Availability describes whether an agent's external dependencies are
// configured.
type Availability struct {
	HasAI                 bool            `json:"hasAI"`
	HasConnectedPlatforms bool            `json:"hasConnectedPlatforms"`
	PlatformConnections   map[string]bool `json:"platformConnections"`
	CanOperate            bool            `json:"canOperate"`
}

// AgentStatus is the status report for one agent.
type AgentStatus struct {
	Name                string       `json:"name"`
	Enabled             bool         `json:"enabled"`
	IsRunning           bool         `json:"isRunning"`
	LastActionTime      *time.Time   `json:"lastActionTime,omitempty"`
	ActionCount         int          `json:"actionCount"`
	MaxActionsPerDay    int          `json:"maxActionsPerDay"`
	Schedule            string       `json:"schedule"`
	CooldownMinutes     int          `json:"cooldownMinutes"`
	ServiceAvailability Availability `json:"serviceAvailability"`
	Status              string       `json:"status"` // ready, disabled, unavailable
}

// Manager owns the agents and their cron schedules. It is constructed
// once at startup and shut down with the server.
type Manager struct {
	generator *content.Generator
	publisher *social.Publisher
	cron      *cron.Cron

	mu      sync.Mutex
	agents  map[string]Agent
	entries map[string]cron.EntryID
	running map[string]bool
}

// NewManager creates a Manager with the standard three agents. The
// cron scheduler starts immediately but drives nothing until an agent
// is started.
func NewManager(generator *content.Generator, publisher *social.Publisher) *Manager {
	m := &Manager{
		generator: generator,
		publisher: publisher,
		cron:      cron.New(),
		agents:    make(map[string]Agent),
		entries:   make(map[string]cron.EntryID),
		running:   make(map[string]bool),
	}

	for _, agent := range []Agent{
		NewAutoPostingAgent(generator, publisher),
		NewEngagementAgent(generator, nil),
		NewFollowingAgent(generator, nil),
	} {
		m.agents[agent.Name()] = agent
	}

	m.cron.Start()
	return m
}

// Agent returns a registered agent by name.
func (m *Manager) Agent(name string) (Agent, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	agent, ok := m.agents[name]
	return agent, ok
}

// AutoPosting returns the auto-posting agent, for its queue endpoints.
func (m *Manager) AutoPosting() *AutoPostingAgent {
	return m.agents["autoPosting"].(*AutoPostingAgent)
}

// Engagement returns the engagement agent, for its target endpoints.
func (m *Manager) Engagement() *EngagementAgent {
	return m.agents["engagement"].(*EngagementAgent)
}

// Following returns the following agent, for its keyword endpoints.
func (m *Manager) Following() *FollowingAgent {
	return m.agents["following"].(*FollowingAgent)
}

// availability computes the shared service check. All agents need the
// AI generator plus at least one connected platform.
func (m *Manager) availability() Availability {
	connections := m.publisher.Status()
	hasConnected := false
	for _, connected := range connections {
		if connected {
			hasConnected = true
			break
		}
	}
	hasAI := m.generator.Available()
	return Availability{
		HasAI:                 hasAI,
		HasConnectedPlatforms: hasConnected,
		PlatformConnections:   connections,
		CanOperate:            hasAI && hasConnected,
	}
}

// Start enables an agent and schedules it with its configured cron
// expression. Starting an agent whose services are unavailable fails.
func (m *Manager) Start(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	agent, ok := m.agents[name]
	if !ok {
		return ErrAgentNotFound
	}
	if !m.availability().CanOperate {
		return ErrAgentUnavailable
	}

	agent.Limiter().SetEnabled(true)

	if _, scheduled := m.entries[name]; scheduled {
		return nil
	}

	entryID, err := m.cron.AddFunc(agent.Limiter().Limits().Schedule, func() {
		m.runAgent(name)
	})
	if err != nil {
		agent.Limiter().SetEnabled(false)
		return err
	}
	m.entries[name] = entryID

	log.Info().Str("agent", name).Str("schedule", agent.Limiter().Limits().Schedule).Msg("Agent started")
	return nil
}

// Stop disables an agent and removes its schedule.
func (m *Manager) Stop(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	agent, ok := m.agents[name]
	if !ok {
		return ErrAgentNotFound
	}

	agent.Limiter().SetEnabled(false)
	if entryID, scheduled := m.entries[name]; scheduled {
		m.cron.Remove(entryID)
		delete(m.entries, name)
	}

	log.Info().Str("agent", name).Msg("Agent stopped")
	return nil
}

// UpdateLimits merges new limits into an agent's configuration. A
// schedule change on a started agent reschedules it.
func (m *Manager) UpdateLimits(name string, limits Limits) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	agent, ok := m.agents[name]
	if !ok {
		return ErrAgentNotFound
	}

	current := agent.Limiter().Limits()
	if limits.Schedule == "" {
		limits.Schedule = current.Schedule
	}
	if limits.MaxActionsPerDay == 0 {
		limits.MaxActionsPerDay = current.MaxActionsPerDay
	}
	if limits.CooldownMinutes == 0 {
		limits.CooldownMinutes = current.CooldownMinutes
	}
	agent.Limiter().Update(limits)

	if entryID, scheduled := m.entries[name]; scheduled && limits.Schedule != current.Schedule {
		m.cron.Remove(entryID)
		newID, err := m.cron.AddFunc(limits.Schedule, func() {
			m.runAgent(name)
		})
		if err != nil {
			delete(m.entries, name)
			return err
		}
		m.entries[name] = newID
	}

	log.Info().Str("agent", name).Msg("Agent configuration updated")
	return nil
}

// runAgent executes one scheduled pass, skipping if the previous pass
// is still running.
func (m *Manager) runAgent(name string) {
	m.mu.Lock()
	agent, ok := m.agents[name]
	if !ok || m.running[name] {
		m.mu.Unlock()
		return
	}
	m.running[name] = true
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.running[name] = false
		m.mu.Unlock()
	}()

	log.Debug().Str("agent", name).Msg("Scheduled agent run")
	agent.Run(context.Background())
}

// TriggerAll runs every agent once, immediately, regardless of
// schedule. Used by the manual trigger endpoint.
func (m *Manager) TriggerAll(ctx context.Context) map[string]error {
	m.mu.Lock()
	names := make([]string, 0, len(m.agents))
	for name := range m.agents {
		names = append(names, name)
	}
	m.mu.Unlock()

	results := make(map[string]error, len(names))
	for _, name := range names {
		agent, _ := m.Agent(name)
		agent.Run(ctx)
		results[name] = nil
	}
	return results
}

// Status reports one agent's status, or nil when unknown.
func (m *Manager) Status(name string) *AgentStatus {
	m.mu.Lock()
	agent, ok := m.agents[name]
	isRunning := m.running[name]
	m.mu.Unlock()
	if !ok {
		return nil
	}

	limits := agent.Limiter().Limits()
	lastAction, count := agent.Limiter().Snapshot()
	availability := m.availability()

	status := "unavailable"
	if availability.CanOperate {
		if limits.Enabled {
			status = "ready"
		} else {
			status = "disabled"
		}
	}

	report := &AgentStatus{
		Name:                name,
		Enabled:             limits.Enabled,
		IsRunning:           isRunning,
		ActionCount:         count,
		MaxActionsPerDay:    limits.MaxActionsPerDay,
		Schedule:            limits.Schedule,
		CooldownMinutes:     limits.CooldownMinutes,
		ServiceAvailability: availability,
		Status:              status,
	}
	if !lastAction.IsZero() {
		report.LastActionTime = &lastAction
	}
	return report
}

// StatusAll reports every agent's status.
func (m *Manager) StatusAll() []*AgentStatus {
	m.mu.Lock()
	names := make([]string, 0, len(m.agents))
	for name := range m.agents {
		names = append(names, name)
	}
	m.mu.Unlock()

	statuses := make([]*AgentStatus, 0, len(names))
	for _, name := range []string{"autoPosting", "engagement", "following"} {
		for _, n := range names {
			if n == name {
				statuses = append(statuses, m.Status(name))
			}
		}
	}
	return statuses
}

// Shutdown stops the scheduler and waits for any running cron jobs.
func (m *Manager) Shutdown() {
	ctx := m.cron.Stop()
	<-ctx.Done()
	log.Info().Msg("Agent scheduler stopped")
}
