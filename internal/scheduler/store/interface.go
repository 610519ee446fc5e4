package store

import (
	"context"
	"time"

	"github.com/zonetune/zonetune/internal/domain/models"
)

// Store is the engine's view of the durable schedule data. The poller is
// the only writer of next_run; Run and ActionRecord rows are append-only.
type Store interface {
	// CreateRun opens the audit record for one poll tick.
	CreateRun(ctx context.Context) (*models.Run, error)

	// DueSchedules returns enabled schedules with next_run <= now.
	DueSchedules(ctx context.Context, now time.Time) ([]models.Schedule, error)

	// EnabledTargets returns a schedule's targets that are not disabled.
	EnabledTargets(ctx context.Context, scheduleID uint) ([]models.Target, error)

	// CreateAction appends one per-target outcome record.
	CreateAction(ctx context.Context, action *models.ActionRecord) error

	// UpdateNextRun persists a schedule's recomputed next occurrence. A nil
	// nextRun clears it; the schedule will not fire again until edited.
	UpdateNextRun(ctx context.Context, scheduleID uint, nextRun *time.Time) error
}
