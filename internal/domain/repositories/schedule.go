package repositories

import (
	"context"
	"time"

	"github.com/zonetune/zonetune/internal/domain/models"
	"gorm.io/gorm"
)

type ScheduleRepository struct {
	*BaseRepository[models.Schedule]
}

func NewScheduleRepository(db *gorm.DB) *ScheduleRepository {
	return &ScheduleRepository{
		BaseRepository: NewBaseRepository[models.Schedule](db),
	}
}

func (r *ScheduleRepository) FindAll(ctx context.Context) ([]models.Schedule, error) {
	var schedules []models.Schedule
	err := r.DB().WithContext(ctx).
		Preload("Targets").
		Order("created_at DESC").
		Find(&schedules).Error
	return schedules, err
}

func (r *ScheduleRepository) FindByID(ctx context.Context, id uint) (*models.Schedule, error) {
	var schedule models.Schedule
	err := r.DB().WithContext(ctx).
		Preload("Targets").
		First(&schedule, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}

func (r *ScheduleRepository) FindByIDs(ctx context.Context, ids []uint) ([]models.Schedule, error) {
	var schedules []models.Schedule
	err := r.DB().WithContext(ctx).
		Preload("Targets").
		Where("id IN ?", ids).
		Find(&schedules).Error
	return schedules, err
}

func (r *ScheduleRepository) Delete(ctx context.Context, id uint) error {
	return r.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Target{}, "schedule_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Schedule{}, "id = ?", id).Error
	})
}

func (r *ScheduleRepository) Targets(ctx context.Context, scheduleID uint) ([]models.Target, error) {
	var targets []models.Target
	err := r.DB().WithContext(ctx).
		Where("schedule_id = ?", scheduleID).
		Order("id ASC").
		Find(&targets).Error
	return targets, err
}

func (r *ScheduleRepository) TargetsByAccount(ctx context.Context, accountID string) ([]models.Target, error) {
	var targets []models.Target
	err := r.DB().WithContext(ctx).
		Where("account_id = ?", accountID).
		Find(&targets).Error
	return targets, err
}

func (r *ScheduleRepository) AddTarget(ctx context.Context, target *models.Target) error {
	return r.DB().WithContext(ctx).Create(target).Error
}

func (r *ScheduleRepository) RemoveTargets(ctx context.Context, scheduleID uint, zoneIDs []string) (int64, error) {
	result := r.DB().WithContext(ctx).
		Where("schedule_id = ? AND zone_id IN ?", scheduleID, zoneIDs).
		Delete(&models.Target{})
	return result.RowsAffected, result.Error
}

// SetTargetsDisabled enables (nil) or disables (timestamp) targets without
// detaching them from their schedule.
func (r *ScheduleRepository) SetTargetsDisabled(ctx context.Context, scheduleID uint, zoneIDs []string, disabledAt *time.Time) (int64, error) {
	result := r.DB().WithContext(ctx).Model(&models.Target{}).
		Where("schedule_id = ? AND zone_id IN ?", scheduleID, zoneIDs).
		Update("disabled_at", disabledAt)
	return result.RowsAffected, result.Error
}
