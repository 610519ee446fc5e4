package models

import (
	"time"
)

type RepeatUnit string

const (
	RepeatDay    RepeatUnit = "day"
	RepeatHour   RepeatUnit = "hour"
	RepeatMinute RepeatUnit = "minute"
)

var RepeatUnits = []RepeatUnit{RepeatDay, RepeatHour, RepeatMinute}

func (u RepeatUnit) Valid() bool {
	switch u {
	case RepeatDay, RepeatHour, RepeatMinute:
		return true
	}
	return false
}

// Schedule is a recurring or one-shot music assignment instruction.
// Repeat and RepeatUnit are co-nullable: both set for a recurring schedule,
// both unset for a one-shot. NextRun is derived and is non-nil only while
// the schedule is active and has a future-or-due occurrence.
type Schedule struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Name        string      `gorm:"size:200;not null" json:"name"`
	Description *string     `gorm:"type:text" json:"description,omitempty"`
	At          *time.Time  `json:"at,omitempty"`
	NextRun     *time.Time  `gorm:"index" json:"next_run,omitempty"`
	Repeat      *int        `json:"repeat,omitempty"`
	RepeatUnit  *RepeatUnit `gorm:"size:10" json:"repeat_unit,omitempty"`
	Assign      *string     `gorm:"size:100" json:"assign,omitempty"`
	DisabledAt  *time.Time  `json:"disabled_at,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`

	Targets []Target `gorm:"constraint:OnDelete:CASCADE" json:"targets,omitempty"`
}

func (Schedule) TableName() string {
	return "schedules"
}

// Target is a (zone, account) pair a schedule applies to. A disabled target
// stays attached to its schedule but is skipped during execution.
type Target struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	ScheduleID uint       `gorm:"index;uniqueIndex:idx_targets_schedule_zone;not null" json:"schedule_id"`
	ZoneID     string     `gorm:"size:100;uniqueIndex:idx_targets_schedule_zone;not null" json:"zone_id"`
	AccountID  string     `gorm:"size:100;not null" json:"account_id"`
	DisabledAt *time.Time `json:"disabled_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (Target) TableName() string {
	return "targets"
}
