package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zonetune/zonetune/internal/domain/models"
	"github.com/zonetune/zonetune/internal/domain/repositories"
	"github.com/zonetune/zonetune/internal/scheduler/recurrence"
	"gorm.io/gorm"
)

var (
	ErrNotFound          = errors.New("schedule not found")
	ErrNameRequired      = errors.New("name is required")
	ErrInvalidRepeat     = errors.New("repeat must be a number > 0")
	ErrInvalidRepeatUnit = fmt.Errorf("repeat unit must be one of %v", models.RepeatUnits)
)

// Optional distinguishes an absent JSON field from an explicit null, so
// updates can leave a field untouched, set it, or clear it.
type Optional[T any] struct {
	Set   bool
	Value *T
}

func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = nil
		return nil
	}
	var value T
	if err := json.Unmarshal(b, &value); err != nil {
		return err
	}
	o.Value = &value
	return nil
}

type ScheduleService struct {
	repo *repositories.ScheduleRepository
}

func NewScheduleService(repo *repositories.ScheduleRepository) *ScheduleService {
	return &ScheduleService{repo: repo}
}

func (s *ScheduleService) List(ctx context.Context) ([]models.Schedule, error) {
	return s.repo.FindAll(ctx)
}

func (s *ScheduleService) Get(ctx context.Context, id uint) (*models.Schedule, error) {
	schedule, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return schedule, err
}

type CreateScheduleInput struct {
	Name        string
	Description *string
	At          *time.Time
	Repeat      *int
	RepeatUnit  *models.RepeatUnit
	Assign      *string
}

func (s *ScheduleService) Create(ctx context.Context, in CreateScheduleInput) (*models.Schedule, error) {
	if in.Name == "" {
		return nil, ErrNameRequired
	}
	if err := validateRepeat(in.Repeat, in.RepeatUnit); err != nil {
		return nil, err
	}

	nextRun, err := recurrence.NextRun(in.At, in.Repeat, in.RepeatUnit, time.Now())
	if err != nil {
		return nil, ErrInvalidRepeat
	}

	schedule := models.Schedule{
		Name:        in.Name,
		Description: in.Description,
		At:          in.At,
		NextRun:     nextRun,
		Repeat:      in.Repeat,
		RepeatUnit:  in.RepeatUnit,
		Assign:      in.Assign,
	}
	if err := s.repo.Create(ctx, &schedule); err != nil {
		return nil, err
	}
	return &schedule, nil
}

type UpdateScheduleInput struct {
	Name        Optional[string]
	Description Optional[string]
	At          Optional[time.Time]
	Repeat      Optional[int]
	RepeatUnit  Optional[models.RepeatUnit]
	Assign      Optional[string]
	DisabledAt  Optional[time.Time]
}

func (s *ScheduleService) Update(ctx context.Context, id uint, in UpdateScheduleInput) (*models.Schedule, error) {
	schedule, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name.Set {
		if in.Name.Value == nil || *in.Name.Value == "" {
			return nil, ErrNameRequired
		}
		schedule.Name = *in.Name.Value
	}
	if in.Description.Set {
		schedule.Description = in.Description.Value
	}
	if in.Repeat.Set {
		if in.Repeat.Value == nil {
			schedule.Repeat = nil
			schedule.RepeatUnit = nil
		} else {
			if err := validateRepeat(in.Repeat.Value, in.RepeatUnit.Value); err != nil {
				return nil, err
			}
			schedule.Repeat = in.Repeat.Value
			schedule.RepeatUnit = in.RepeatUnit.Value
		}
	}
	if in.At.Set {
		if in.At.Value == nil {
			schedule.At = nil
			schedule.NextRun = nil
		} else {
			nextRun, err := recurrence.NextRun(in.At.Value, schedule.Repeat, schedule.RepeatUnit, time.Now())
			if err != nil {
				return nil, ErrInvalidRepeat
			}
			schedule.At = in.At.Value
			schedule.NextRun = nextRun
		}
	}
	if in.Assign.Set {
		schedule.Assign = in.Assign.Value
	}
	if in.DisabledAt.Set {
		schedule.DisabledAt = in.DisabledAt.Value
	}

	if err := s.repo.Save(ctx, schedule); err != nil {
		return nil, err
	}
	return schedule, nil
}

func (s *ScheduleService) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

// Copy duplicates a schedule with its targets, including their
// enabled/disabled state.
func (s *ScheduleService) Copy(ctx context.Context, id uint) (*models.Schedule, error) {
	original, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	log.Info().Uint("schedule_id", original.ID).Msg("Making a copy of schedule")

	duplicate := models.Schedule{
		Name:        "Copy of " + original.Name,
		Description: original.Description,
		At:          original.At,
		NextRun:     original.NextRun,
		Repeat:      original.Repeat,
		RepeatUnit:  original.RepeatUnit,
		Assign:      original.Assign,
		DisabledAt:  original.DisabledAt,
	}
	for _, target := range original.Targets {
		duplicate.Targets = append(duplicate.Targets, models.Target{
			ZoneID:     target.ZoneID,
			AccountID:  target.AccountID,
			DisabledAt: target.DisabledAt,
		})
	}

	if err := s.repo.Create(ctx, &duplicate); err != nil {
		return nil, err
	}

	log.Info().Uint("schedule_id", duplicate.ID).Msg("Created schedule copy")
	return &duplicate, nil
}

func (s *ScheduleService) Targets(ctx context.Context, scheduleID uint) ([]models.Target, error) {
	if _, err := s.Get(ctx, scheduleID); err != nil {
		return nil, err
	}
	return s.repo.Targets(ctx, scheduleID)
}

type TargetInput struct {
	ZoneID    string
	AccountID string
}

type SetTargetsInput struct {
	Add        []TargetInput
	Activate   []string
	Deactivate []string
	Remove     []string
}

// SetTargets applies a batch of target mutations to one schedule and
// returns the resulting target list.
func (s *ScheduleService) SetTargets(ctx context.Context, scheduleID uint, in SetTargetsInput) ([]models.Target, error) {
	if _, err := s.Get(ctx, scheduleID); err != nil {
		return nil, err
	}

	if len(in.Remove) > 0 {
		rows, err := s.repo.RemoveTargets(ctx, scheduleID, in.Remove)
		if err != nil {
			return nil, err
		}
		log.Info().Int64("rows", rows).Uint("schedule_id", scheduleID).Msg("Removed targets")
	}

	if len(in.Activate) > 0 {
		rows, err := s.repo.SetTargetsDisabled(ctx, scheduleID, in.Activate, nil)
		if err != nil {
			return nil, err
		}
		log.Info().Int64("rows", rows).Uint("schedule_id", scheduleID).Msg("Activated targets")
	}

	if len(in.Deactivate) > 0 {
		now := time.Now()
		rows, err := s.repo.SetTargetsDisabled(ctx, scheduleID, in.Deactivate, &now)
		if err != nil {
			return nil, err
		}
		log.Info().Int64("rows", rows).Uint("schedule_id", scheduleID).Msg("Deactivated targets")
	}

	for _, add := range in.Add {
		target := models.Target{
			ScheduleID: scheduleID,
			ZoneID:     add.ZoneID,
			AccountID:  add.AccountID,
		}
		if err := s.repo.AddTarget(ctx, &target); err != nil {
			return nil, fmt.Errorf("failed to add target %s: %w", add.ZoneID, err)
		}
	}
	if len(in.Add) > 0 {
		log.Info().Int("rows", len(in.Add)).Uint("schedule_id", scheduleID).Msg("Added targets")
	}

	return s.repo.Targets(ctx, scheduleID)
}

// SchedulesForAccount returns every schedule that has at least one target
// in the account.
func (s *ScheduleService) SchedulesForAccount(ctx context.Context, accountID string) ([]models.Schedule, error) {
	targets, err := s.repo.TargetsByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	seen := make(map[uint]bool)
	var ids []uint
	for _, target := range targets {
		if !seen[target.ScheduleID] {
			seen[target.ScheduleID] = true
			ids = append(ids, target.ScheduleID)
		}
	}
	if len(ids) == 0 {
		return []models.Schedule{}, nil
	}
	return s.repo.FindByIDs(ctx, ids)
}

func validateRepeat(repeat *int, unit *models.RepeatUnit) error {
	if repeat == nil && unit == nil {
		return nil
	}
	if repeat == nil || unit == nil {
		return ErrInvalidRepeat
	}
	if *repeat <= 0 {
		return ErrInvalidRepeat
	}
	if !unit.Valid() {
		return ErrInvalidRepeatUnit
	}
	return nil
}
