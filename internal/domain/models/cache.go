package models

import "time"

// CacheEntry backs the database cache. Entries have no TTL; they live
// until overwritten or explicitly cleared.
type CacheEntry struct {
	Key       string    `gorm:"primaryKey;size:255" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (CacheEntry) TableName() string {
	return "cache_entries"
}
