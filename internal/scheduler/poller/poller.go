// Package poller drives the scheduling loop: find due schedules, execute
// them, recompute their next occurrence, and leave an audit Run behind.
package poller

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zonetune/zonetune/internal/domain/models"
	"github.com/zonetune/zonetune/internal/scheduler/executor"
	"github.com/zonetune/zonetune/internal/scheduler/metrics"
	"github.com/zonetune/zonetune/internal/scheduler/recurrence"
	"github.com/zonetune/zonetune/internal/scheduler/store"
)

type Poller struct {
	store    store.Store
	executor *executor.Executor
	metrics  *metrics.Collector
	interval time.Duration
}

// New builds a poller. The interval must be a positive whole number of
// seconds; anything else is a configuration error the process should not
// start with.
func New(s store.Store, exec *executor.Executor, collector *metrics.Collector, interval time.Duration) (*Poller, error) {
	if interval < time.Second || interval%time.Second != 0 {
		return nil, fmt.Errorf("invalid poll interval %s, must be a positive number of seconds", interval)
	}
	return &Poller{
		store:    s,
		executor: exec,
		metrics:  collector,
		interval: interval,
	}, nil
}

// Run ticks immediately and then re-arms the timer for the full interval
// measured from each tick's completion, so long ticks delay the next tick
// instead of stacking. Cancelling ctx stops future ticks; an in-flight
// tick always runs to completion because the tick itself does not inherit
// ctx.
func (p *Poller) Run(ctx context.Context) {
	log.Info().Dur("interval", p.interval).Msg("Starting worker")

	for {
		start := time.Now()
		if err := p.Tick(context.Background()); err != nil {
			log.Error().Err(err).Msg("Run failed")
		}
		p.metrics.RecordTick(start)
		log.Info().Dur("took", time.Since(start)).Msg("Done checking")

		select {
		case <-ctx.Done():
			log.Info().Msg("Stopping worker...")
			return
		case <-time.After(p.interval):
		}
	}
}

// Tick performs one poll. A Run row is created even when nothing is due so
// the audit trail shows the poll happened.
func (p *Poller) Tick(ctx context.Context) error {
	p.metrics.IncTicks()

	run, err := p.store.CreateRun(ctx)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	log.Info().Str("run_id", run.ID.String()).Msg("Created run")

	now := time.Now()
	schedules, err := p.store.DueSchedules(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to fetch due schedules: %w", err)
	}

	if len(schedules) == 0 {
		log.Info().Msg("No schedules need action")
		return nil
	}

	// Schedules run one at a time: the remote ceiling is shared with the
	// whole process and a tick must not flood it.
	for _, schedule := range schedules {
		if err := p.executor.Execute(ctx, run.ID, schedule); err != nil {
			log.Error().Err(err).Uint("schedule_id", schedule.ID).Msg("Failed to execute schedule")
		}
		p.metrics.IncSchedulesExecuted(1)
		p.advance(ctx, schedule, now)
	}

	return nil
}

// advance recomputes and persists the schedule's next occurrence from its
// original anchor. Without repeat configuration next_run is explicitly
// cleared; a computation failure is logged and leaves next_run untouched
// so the remaining schedules still advance.
func (p *Poller) advance(ctx context.Context, schedule models.Schedule, now time.Time) {
	if schedule.Repeat == nil || schedule.RepeatUnit == nil {
		log.Info().Uint("schedule_id", schedule.ID).Msg("Unsetting nextRun for one-shot schedule")
		if err := p.store.UpdateNextRun(ctx, schedule.ID, nil); err != nil {
			log.Error().Err(err).Uint("schedule_id", schedule.ID).Msg("Failed to clear nextRun")
		}
		return
	}

	log.Info().
		Uint("schedule_id", schedule.ID).
		Int("repeat", *schedule.Repeat).
		Str("repeat_unit", string(*schedule.RepeatUnit)).
		Msg("Schedule is set to repeat")

	nextRun, err := recurrence.NextRun(schedule.At, schedule.Repeat, schedule.RepeatUnit, now)
	if err != nil || nextRun == nil {
		log.Error().Err(err).Uint("schedule_id", schedule.ID).Msg("Failed to compute nextRun")
		return
	}

	log.Info().
		Uint("schedule_id", schedule.ID).
		Time("next_run", *nextRun).
		Msg("Setting nextRun")
	if err := p.store.UpdateNextRun(ctx, schedule.ID, nextRun); err != nil {
		log.Error().Err(err).Uint("schedule_id", schedule.ID).Msg("Failed to persist nextRun")
	}
}
