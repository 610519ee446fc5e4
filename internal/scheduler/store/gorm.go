package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/zonetune/zonetune/internal/domain/models"
	"gorm.io/gorm"
)

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) CreateRun(ctx context.Context) (*models.Run, error) {
	run := models.Run{ID: uuid.New()}
	if err := s.db.WithContext(ctx).Create(&run).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

func (s *GormStore) DueSchedules(ctx context.Context, now time.Time) ([]models.Schedule, error) {
	var schedules []models.Schedule
	err := s.db.WithContext(ctx).
		Where("next_run <= ? AND disabled_at IS NULL", now).
		Order("next_run ASC").
		Find(&schedules).Error
	return schedules, err
}

func (s *GormStore) EnabledTargets(ctx context.Context, scheduleID uint) ([]models.Target, error) {
	var targets []models.Target
	err := s.db.WithContext(ctx).
		Where("schedule_id = ? AND disabled_at IS NULL", scheduleID).
		Order("id ASC").
		Find(&targets).Error
	return targets, err
}

func (s *GormStore) CreateAction(ctx context.Context, action *models.ActionRecord) error {
	return s.db.WithContext(ctx).Create(action).Error
}

func (s *GormStore) UpdateNextRun(ctx context.Context, scheduleID uint, nextRun *time.Time) error {
	return s.db.WithContext(ctx).Model(&models.Schedule{}).
		Where("id = ?", scheduleID).
		Update("next_run", nextRun).Error
}
