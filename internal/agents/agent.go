// Package agents contains the automation agents that act on the
// account's behalf: queued auto-posting, engagement with target
// accounts, and keyword-driven following. Agents are plain values
// implementing the Agent interface, constructed explicitly and driven
// by a cron-backed Manager; nothing here is a package-level singleton.
package agents

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Agent is one automation behavior. Run performs a single scheduled
// pass; the Manager handles scheduling, overlap suppression, and
// lifecycle.
type Agent interface {
	// Name is the stable identifier used in API routes and status output.
	Name() string

	// Limiter exposes the agent's rate limiting state.
	Limiter() *Limiter

	// Run performs one pass of the agent's behavior. Implementations
	// check the limiter per action, not per pass.
	Run(ctx context.Context)
}

// Limits configures an agent's pacing.
type Limits struct {
	Enabled          bool   `json:"enabled"`
	Schedule         string `json:"schedule"` // cron expression
	MaxActionsPerDay int    `json:"maxActionsPerDay"`
	CooldownMinutes  int    `json:"cooldownMinutes"`
}

// Limiter enforces an agent's daily action cap and per-action cooldown.
// The counter resets when the calendar day changes.
type Limiter struct {
	mu         sync.Mutex
	limits     Limits
	lastAction time.Time
	count      int
	resetDay   time.Time
	now        func() time.Time // overridable in tests
}

// NewLimiter creates a Limiter with the given limits.
func NewLimiter(limits Limits) *Limiter {
	return &Limiter{
		limits:   limits,
		resetDay: time.Now(),
		now:      time.Now,
	}
}

// Limits returns a copy of the current limits.
func (l *Limiter) Limits() Limits {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.limits
}

// Update merges new limits in. The schedule change takes effect the
// next time the Manager starts the agent.
func (l *Limiter) Update(limits Limits) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.limits = limits
}

// SetEnabled flips the enabled flag without touching other limits.
func (l *Limiter) SetEnabled(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.limits.Enabled = enabled
}

// Allow reports whether another action may run right now. It does not
// consume budget; call Record after the action succeeds.
func (l *Limiter) Allow(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.limits.Enabled {
		return false
	}

	now := l.now()
	if now.Day() != l.resetDay.Day() || now.Month() != l.resetDay.Month() || now.Year() != l.resetDay.Year() {
		l.count = 0
		l.resetDay = now
	}

	if l.count >= l.limits.MaxActionsPerDay {
		log.Debug().Str("agent", name).Msg("Daily action limit reached")
		return false
	}

	if !l.lastAction.IsZero() {
		cooldown := time.Duration(l.limits.CooldownMinutes) * time.Minute
		if now.Sub(l.lastAction) < cooldown {
			log.Debug().Str("agent", name).Msg("Still in cooldown period")
			return false
		}
	}
	return true
}

// Record consumes one action from the daily budget and starts the
// cooldown clock.
func (l *Limiter) Record() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastAction = l.now()
	l.count++
}

// Snapshot returns the limiter's counters for status reporting.
func (l *Limiter) Snapshot() (lastAction time.Time, count int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastAction, l.count
}
