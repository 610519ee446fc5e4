package poller

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/zonetune/zonetune/internal/domain/models"
	"github.com/zonetune/zonetune/internal/scheduler/executor"
	"github.com/zonetune/zonetune/internal/scheduler/metrics"
)

type fakeStore struct {
	runs      []models.Run
	schedules []models.Schedule
	targets   map[uint][]models.Target
	actions   []models.ActionRecord

	nextRuns map[uint]*time.Time
	cleared  []uint
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		targets:  make(map[uint][]models.Target),
		nextRuns: make(map[uint]*time.Time),
	}
}

func (s *fakeStore) CreateRun(ctx context.Context) (*models.Run, error) {
	run := models.Run{ID: uuid.New(), CreatedAt: time.Now()}
	s.runs = append(s.runs, run)
	return &run, nil
}

func (s *fakeStore) DueSchedules(ctx context.Context, now time.Time) ([]models.Schedule, error) {
	var due []models.Schedule
	for _, schedule := range s.schedules {
		if schedule.NextRun != nil && !schedule.NextRun.After(now) && schedule.DisabledAt == nil {
			due = append(due, schedule)
		}
	}
	return due, nil
}

func (s *fakeStore) EnabledTargets(ctx context.Context, scheduleID uint) ([]models.Target, error) {
	var enabled []models.Target
	for _, target := range s.targets[scheduleID] {
		if target.DisabledAt == nil {
			enabled = append(enabled, target)
		}
	}
	return enabled, nil
}

func (s *fakeStore) CreateAction(ctx context.Context, action *models.ActionRecord) error {
	s.actions = append(s.actions, *action)
	return nil
}

func (s *fakeStore) UpdateNextRun(ctx context.Context, scheduleID uint, nextRun *time.Time) error {
	if nextRun == nil {
		s.cleared = append(s.cleared, scheduleID)
	}
	s.nextRuns[scheduleID] = nextRun
	return nil
}

type noopAssigner struct {
	calls []string
}

func (a *noopAssigner) AssignMusic(ctx context.Context, zoneID, playFromID string) error {
	a.calls = append(a.calls, zoneID)
	return nil
}

func timePtr(t time.Time) *time.Time { return &t }
func intPtr(v int) *int              { return &v }
func strPtr(s string) *string        { return &s }
func unitPtr(u models.RepeatUnit) *models.RepeatUnit {
	return &u
}

func newTestPoller(t *testing.T, s *fakeStore, api executor.Assigner) *Poller {
	t.Helper()
	collector := metrics.NewCollector()
	p, err := New(s, executor.New(s, api, collector), collector, time.Minute)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return p
}

func TestNewRejectsSubSecondIntervals(t *testing.T) {
	collector := metrics.NewCollector()
	s := newFakeStore()
	exec := executor.New(s, &noopAssigner{}, collector)

	for _, interval := range []time.Duration{0, 500 * time.Millisecond, -time.Second, 1500 * time.Millisecond} {
		if _, err := New(s, exec, collector, interval); err == nil {
			t.Fatalf("expected %s to be rejected", interval)
		}
	}
	if _, err := New(s, exec, collector, time.Second); err != nil {
		t.Fatalf("1s should be accepted: %v", err)
	}
}

func TestTickExecutesDueScheduleAndAdvances(t *testing.T) {
	now := time.Now()
	anchor := now.Add(-24 * time.Hour)
	yesterday := anchor

	s := newFakeStore()
	s.schedules = []models.Schedule{{
		ID:         1,
		Name:       "Daily opener",
		At:         timePtr(anchor),
		NextRun:    timePtr(yesterday),
		Repeat:     intPtr(1),
		RepeatUnit: unitPtr(models.RepeatDay),
		Assign:     strPtr("playlist-1"),
	}}
	s.targets[1] = []models.Target{
		{ScheduleID: 1, ZoneID: "z1", AccountID: "acc-1"},
		{ScheduleID: 1, ZoneID: "z2", AccountID: "acc-1"},
		{ScheduleID: 1, ZoneID: "z3", AccountID: "acc-1", DisabledAt: timePtr(now)},
	}

	api := &noopAssigner{}
	p := newTestPoller(t, s, api)

	if err := p.Tick(context.Background()); err != nil {
		t.Fatalf("Tick failed: %v", err)
	}

	if len(s.runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(s.runs))
	}
	// The disabled target is skipped.
	if len(api.calls) != 2 {
		t.Fatalf("expected 2 assignments, got %d", len(api.calls))
	}
	if len(s.actions) != 2 {
		t.Fatalf("expected 2 action records, got %d", len(s.actions))
	}
	for _, action := range s.actions {
		if action.RunID != s.runs[0].ID {
			t.Fatalf("action not linked to the tick's run: %+v", action)
		}
	}

	// next_run advances on the anchor's grid, past now.
	nextRun := s.nextRuns[1]
	if nextRun == nil {
		t.Fatal("expected next_run to be set")
	}
	if !nextRun.After(now) {
		t.Fatalf("next_run %v is not in the future", *nextRun)
	}
	if got := nextRun.Sub(anchor) % (24 * time.Hour); got != 0 {
		t.Fatalf("next_run drifted off the anchor grid by %s", got)
	}
}

func TestTickCreatesRunWhenNothingIsDue(t *testing.T) {
	s := newFakeStore()
	p := newTestPoller(t, s, &noopAssigner{})

	if err := p.Tick(context.Background()); err != nil {
		t.Fatalf("Tick failed: %v", err)
	}
	if len(s.runs) != 1 {
		t.Fatalf("expected the audit run even with no work, got %d", len(s.runs))
	}
	if len(s.actions) != 0 {
		t.Fatalf("expected no actions, got %d", len(s.actions))
	}
}

func TestTickClearsNextRunForOneShotSchedule(t *testing.T) {
	now := time.Now()
	s := newFakeStore()
	s.schedules = []models.Schedule{{
		ID:      2,
		Name:    "One-off",
		At:      timePtr(now.Add(-time.Minute)),
		NextRun: timePtr(now.Add(-time.Minute)),
		Assign:  strPtr("playlist-2"),
	}}
	s.targets[2] = []models.Target{{ScheduleID: 2, ZoneID: "z1"}}

	p := newTestPoller(t, s, &noopAssigner{})
	if err := p.Tick(context.Background()); err != nil {
		t.Fatalf("Tick failed: %v", err)
	}

	if len(s.cleared) != 1 || s.cleared[0] != 2 {
		t.Fatalf("expected next_run cleared for schedule 2, got %v", s.cleared)
	}
}

func TestTickLeavesNextRunOnComputationFailure(t *testing.T) {
	now := time.Now()
	s := newFakeStore()
	s.schedules = []models.Schedule{{
		ID:         3,
		Name:       "Broken repeat",
		At:         timePtr(now.Add(-time.Hour)),
		NextRun:    timePtr(now.Add(-time.Hour)),
		Repeat:     intPtr(0),
		RepeatUnit: unitPtr(models.RepeatDay),
		Assign:     strPtr("playlist-3"),
	}}
	s.targets[3] = []models.Target{{ScheduleID: 3, ZoneID: "z1"}}

	api := &noopAssigner{}
	p := newTestPoller(t, s, api)
	if err := p.Tick(context.Background()); err != nil {
		t.Fatalf("Tick failed: %v", err)
	}

	// The schedule still executed; only the advance failed.
	if len(api.calls) != 1 {
		t.Fatalf("expected the assignment, got %d calls", len(api.calls))
	}
	if _, touched := s.nextRuns[3]; touched {
		t.Fatal("next_run must be left untouched when recomputation fails")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	s := newFakeStore()
	p := newTestPoller(t, s, &noopAssigner{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}

	// The immediate tick still ran to completion.
	if len(s.runs) != 1 {
		t.Fatalf("expected the first tick, got %d runs", len(s.runs))
	}
}
