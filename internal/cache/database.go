package cache

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/zonetune/zonetune/internal/domain/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DatabaseCache persists entries in the relational store so cached
// responses survive process restarts without a redis deployment.
type DatabaseCache struct {
	db *gorm.DB
}

func NewDatabaseCache(db *gorm.DB) *DatabaseCache {
	log.Info().Msg("Creating database cache")
	return &DatabaseCache{db: db}
}

func (c *DatabaseCache) Get(ctx context.Context, key string) (string, bool, error) {
	var entry models.CacheEntry
	err := c.db.WithContext(ctx).First(&entry, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Debug().Str("key", key).Msg("No cache entry found")
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	log.Debug().Str("key", key).Msg("Found cached entry")
	return entry.Value, true, nil
}

func (c *DatabaseCache) Set(ctx context.Context, key, value string) error {
	log.Debug().Str("key", key).Msg("Setting cache entry")
	entry := models.CacheEntry{Key: key, Value: value}
	return c.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&entry).Error
}

func (c *DatabaseCache) Delete(ctx context.Context, key string) error {
	log.Debug().Str("key", key).Msg("Deleting cache entry")
	return c.db.WithContext(ctx).Delete(&models.CacheEntry{}, "key = ?", key).Error
}

func (c *DatabaseCache) Clear(ctx context.Context) error {
	return c.db.WithContext(ctx).Where("1 = 1").Delete(&models.CacheEntry{}).Error
}

func (c *DatabaseCache) Count(ctx context.Context) (int64, error) {
	var count int64
	err := c.db.WithContext(ctx).Model(&models.CacheEntry{}).Count(&count).Error
	return count, err
}
