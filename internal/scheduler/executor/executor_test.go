package executor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/zonetune/zonetune/internal/domain/models"
	"github.com/zonetune/zonetune/internal/scheduler/metrics"
)

type fakeStore struct {
	targets    []models.Target
	targetsErr error
	actions    []models.ActionRecord
	actionErr  error
}

func (s *fakeStore) CreateRun(ctx context.Context) (*models.Run, error) {
	return &models.Run{ID: uuid.New(), CreatedAt: time.Now()}, nil
}

func (s *fakeStore) DueSchedules(ctx context.Context, now time.Time) ([]models.Schedule, error) {
	return nil, nil
}

func (s *fakeStore) EnabledTargets(ctx context.Context, scheduleID uint) ([]models.Target, error) {
	if s.targetsErr != nil {
		return nil, s.targetsErr
	}
	return s.targets, nil
}

func (s *fakeStore) CreateAction(ctx context.Context, action *models.ActionRecord) error {
	if s.actionErr != nil {
		return s.actionErr
	}
	s.actions = append(s.actions, *action)
	return nil
}

func (s *fakeStore) UpdateNextRun(ctx context.Context, scheduleID uint, nextRun *time.Time) error {
	return nil
}

type fakeAssigner struct {
	calls   []string
	failFor map[string]error
}

func (a *fakeAssigner) AssignMusic(ctx context.Context, zoneID, playFromID string) error {
	a.calls = append(a.calls, zoneID)
	if err, ok := a.failFor[zoneID]; ok {
		return err
	}
	return nil
}

func strPtr(s string) *string { return &s }

func testSchedule(assign *string) models.Schedule {
	return models.Schedule{ID: 7, Name: "Morning playlist", Assign: assign}
}

func TestExecuteRecordsEveryTarget(t *testing.T) {
	store := &fakeStore{targets: []models.Target{
		{ScheduleID: 7, ZoneID: "z1", AccountID: "acc-1"},
		{ScheduleID: 7, ZoneID: "z2", AccountID: "acc-1"},
		{ScheduleID: 7, ZoneID: "z3", AccountID: "acc-2"},
	}}
	api := &fakeAssigner{failFor: map[string]error{
		"z2": errors.New("zone offline"),
	}}
	exec := New(store, api, metrics.NewCollector())
	runID := uuid.New()

	if err := exec.Execute(context.Background(), runID, testSchedule(strPtr("playlist-1"))); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	// The middle target's failure must not stop its siblings.
	if len(api.calls) != 3 {
		t.Fatalf("expected 3 assignment calls, got %d", len(api.calls))
	}
	if len(store.actions) != 3 {
		t.Fatalf("expected 3 action records, got %d", len(store.actions))
	}

	byZone := make(map[string]models.ActionRecord)
	for _, action := range store.actions {
		if action.RunID != runID {
			t.Fatalf("action for %s carries wrong run id", action.ZoneID)
		}
		if action.ScheduleID != 7 || action.Action != "assign" {
			t.Fatalf("unexpected action record: %+v", action)
		}
		byZone[action.ZoneID] = action
	}

	if byZone["z1"].Status != models.ActionSuccess || byZone["z3"].Status != models.ActionSuccess {
		t.Fatal("expected z1 and z3 to succeed")
	}
	failed := byZone["z2"]
	if failed.Status != models.ActionError {
		t.Fatal("expected z2 to fail")
	}
	if failed.Error == nil || *failed.Error != "zone offline" {
		t.Fatalf("expected error text preserved, got %v", failed.Error)
	}
	if byZone["z3"].AccountID != "acc-2" {
		t.Fatalf("account id not carried through: %+v", byZone["z3"])
	}
}

func TestExecuteSkipsScheduleWithoutContent(t *testing.T) {
	store := &fakeStore{targets: []models.Target{{ScheduleID: 7, ZoneID: "z1"}}}
	api := &fakeAssigner{}
	exec := New(store, api, metrics.NewCollector())

	for _, assign := range []*string{nil, strPtr("")} {
		if err := exec.Execute(context.Background(), uuid.New(), testSchedule(assign)); err != nil {
			t.Fatalf("Execute failed: %v", err)
		}
	}
	if len(api.calls) != 0 {
		t.Fatalf("expected no assignments, got %d", len(api.calls))
	}
	if len(store.actions) != 0 {
		t.Fatalf("expected no action records, got %d", len(store.actions))
	}
}

func TestExecuteReturnsTargetLoadFailure(t *testing.T) {
	store := &fakeStore{targetsErr: errors.New("db down")}
	exec := New(store, &fakeAssigner{}, metrics.NewCollector())

	err := exec.Execute(context.Background(), uuid.New(), testSchedule(strPtr("playlist-1")))
	if err == nil {
		t.Fatal("expected error when targets cannot be loaded")
	}
}

func TestExecuteToleratesActionWriteFailure(t *testing.T) {
	store := &fakeStore{
		targets:   []models.Target{{ScheduleID: 7, ZoneID: "z1"}},
		actionErr: errors.New("insert failed"),
	}
	api := &fakeAssigner{}
	exec := New(store, api, metrics.NewCollector())

	if err := exec.Execute(context.Background(), uuid.New(), testSchedule(strPtr("playlist-1"))); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if len(api.calls) != 1 {
		t.Fatalf("expected the assignment to happen, got %d calls", len(api.calls))
	}
}
