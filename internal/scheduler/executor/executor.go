// Package executor applies one due schedule to its enabled targets.
package executor

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/zonetune/zonetune/internal/domain/models"
	"github.com/zonetune/zonetune/internal/scheduler/metrics"
	"github.com/zonetune/zonetune/internal/scheduler/store"
)

// Assigner pushes a playable source onto a zone. Satisfied by
// *soundtrack.Api.
type Assigner interface {
	AssignMusic(ctx context.Context, zoneID, playFromID string) error
}

type Executor struct {
	store   store.Store
	api     Assigner
	metrics *metrics.Collector
}

func New(s store.Store, api Assigner, collector *metrics.Collector) *Executor {
	return &Executor{store: s, api: api, metrics: collector}
}

// Execute assigns the schedule's content to each enabled target and writes
// exactly one ActionRecord per target, success or error. One target's
// failure never aborts its siblings; only a failure to load the targets is
// returned to the caller.
func (e *Executor) Execute(ctx context.Context, runID uuid.UUID, schedule models.Schedule) error {
	if schedule.Assign == nil || *schedule.Assign == "" {
		log.Info().Uint("schedule_id", schedule.ID).Msg("Nothing to assign, skipping schedule")
		return nil
	}
	playFromID := *schedule.Assign

	log.Info().Uint("schedule_id", schedule.ID).Msg("Executing schedule")

	targets, err := e.store.EnabledTargets(ctx, schedule.ID)
	if err != nil {
		return fmt.Errorf("failed to load targets for schedule %d: %w", schedule.ID, err)
	}

	log.Info().Uint("schedule_id", schedule.ID).Int("targets", len(targets)).Msg("Found targets")

	payload, err := json.Marshal(map[string]string{"playFromId": playFromID})
	if err != nil {
		return fmt.Errorf("failed to marshal assignment payload: %w", err)
	}

	for _, target := range targets {
		log.Info().
			Str("zone_id", target.ZoneID).
			Str("play_from_id", playFromID).
			Msg("Assigning music to zone")

		status := models.ActionSuccess
		var errText *string

		if err := e.api.AssignMusic(ctx, target.ZoneID, playFromID); err != nil {
			log.Info().
				Err(err).
				Str("zone_id", target.ZoneID).
				Msg("Failed to assign music to zone")
			status = models.ActionError
			msg := err.Error()
			errText = &msg
		}

		if status == models.ActionSuccess {
			e.metrics.IncActionsSucceeded(1)
		} else {
			e.metrics.IncActionsFailed(1)
		}

		record := models.ActionRecord{
			ID:         uuid.New(),
			RunID:      runID,
			ScheduleID: schedule.ID,
			ZoneID:     target.ZoneID,
			AccountID:  target.AccountID,
			Action:     "assign",
			Data:       string(payload),
			Status:     status,
			Error:      errText,
		}
		if err := e.store.CreateAction(ctx, &record); err != nil {
			log.Error().
				Err(err).
				Str("zone_id", target.ZoneID).
				Uint("schedule_id", schedule.ID).
				Msg("Failed to write action record")
		}
	}

	return nil
}
