package repositories

import (
	"context"

	"github.com/zonetune/zonetune/internal/domain/models"
	"gorm.io/gorm"
)

type RunRepository struct {
	*BaseRepository[models.Run]
}

func NewRunRepository(db *gorm.DB) *RunRepository {
	return &RunRepository{
		BaseRepository: NewBaseRepository[models.Run](db),
	}
}

func (r *RunRepository) FindRecent(ctx context.Context, limit int) ([]models.Run, error) {
	var runs []models.Run
	err := r.DB().WithContext(ctx).
		Preload("Actions").
		Order("created_at DESC").
		Limit(limit).
		Find(&runs).Error
	return runs, err
}

func (r *RunRepository) ActionsBySchedule(ctx context.Context, scheduleID uint) ([]models.ActionRecord, error) {
	var actions []models.ActionRecord
	err := r.DB().WithContext(ctx).
		Where("schedule_id = ?", scheduleID).
		Order("created_at DESC").
		Find(&actions).Error
	return actions, err
}
