package agents

import (
	"testing"
	"time"
)

func testLimiter(limits Limits, start time.Time) (*Limiter, *time.Time) {
	clock := start
	l := NewLimiter(limits)
	l.resetDay = start
	l.now = func() time.Time { return clock }
	return l, &clock
}

func TestLimiterDisabled(t *testing.T) {
	l, _ := testLimiter(Limits{
		Enabled:          false,
		MaxActionsPerDay: 10,
	}, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))

	if l.Allow("test") {
		t.Error("disabled limiter should never allow actions")
	}

	l.SetEnabled(true)
	if !l.Allow("test") {
		t.Error("enabling should allow the first action")
	}
}

func TestLimiterDailyCap(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	l, clock := testLimiter(Limits{
		Enabled:          true,
		MaxActionsPerDay: 3,
		CooldownMinutes:  0,
	}, start)

	for i := 0; i < 3; i++ {
		if !l.Allow("test") {
			t.Fatalf("action %d should be allowed", i+1)
		}
		l.Record()
		*clock = clock.Add(time.Minute)
	}

	if l.Allow("test") {
		t.Error("fourth action should exceed the daily cap")
	}
}

func TestLimiterCooldown(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	l, clock := testLimiter(Limits{
		Enabled:          true,
		MaxActionsPerDay: 100,
		CooldownMinutes:  60,
	}, start)

	if !l.Allow("test") {
		t.Fatal("first action should be allowed")
	}
	l.Record()

	*clock = clock.Add(30 * time.Minute)
	if l.Allow("test") {
		t.Error("action inside the cooldown window should be blocked")
	}

	*clock = clock.Add(31 * time.Minute)
	if !l.Allow("test") {
		t.Error("action after the cooldown window should be allowed")
	}
}

func TestLimiterDayBoundaryResetsCount(t *testing.T) {
	start := time.Date(2026, 3, 1, 23, 0, 0, 0, time.UTC)
	l, clock := testLimiter(Limits{
		Enabled:          true,
		MaxActionsPerDay: 1,
		CooldownMinutes:  0,
	}, start)

	if !l.Allow("test") {
		t.Fatal("first action should be allowed")
	}
	l.Record()
	if l.Allow("test") {
		t.Fatal("cap of one should block a second action the same day")
	}

	// Cross midnight: the daily budget resets.
	*clock = time.Date(2026, 3, 2, 0, 5, 0, 0, time.UTC)
	if !l.Allow("test") {
		t.Error("new calendar day should reset the daily count")
	}
}

func TestLimiterUpdatePreservesCounters(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	l, clock := testLimiter(Limits{
		Enabled:          true,
		MaxActionsPerDay: 1,
		CooldownMinutes:  0,
	}, start)

	l.Record()
	if l.Allow("test") {
		t.Fatal("cap reached")
	}

	// Raising the cap takes effect immediately; the consumed budget stays.
	l.Update(Limits{Enabled: true, MaxActionsPerDay: 2, CooldownMinutes: 0})
	*clock = clock.Add(time.Minute)
	if !l.Allow("test") {
		t.Error("raised cap should free another action")
	}

	_, count := l.Snapshot()
	if count != 1 {
		t.Errorf("update should not reset the count, got %d", count)
	}
}
