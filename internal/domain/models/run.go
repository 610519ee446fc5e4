package models

import (
	"time"

	"github.com/google/uuid"
)

// Run is one execution of the poll loop. A Run row is written on every
// tick, also when no schedule was due, so the audit trail has no gaps.
type Run struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Actions []ActionRecord `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE" json:"actions,omitempty"`
}

func (Run) TableName() string {
	return "runs"
}

type ActionStatus string

const (
	ActionSuccess ActionStatus = "success"
	ActionError   ActionStatus = "error"
)

// ActionRecord is the audit outcome of applying one schedule to one target
// during one run. Records are append-only; the engine never updates them.
type ActionRecord struct {
	ID         uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	RunID      uuid.UUID    `gorm:"type:uuid;index;not null" json:"run_id"`
	ScheduleID uint         `gorm:"index;not null" json:"schedule_id"`
	ZoneID     string       `gorm:"size:100;not null" json:"zone_id"`
	AccountID  string       `gorm:"size:100;not null" json:"account_id"`
	Action     string       `gorm:"size:20;not null" json:"action"`
	Data       string       `gorm:"type:text" json:"data"`
	Status     ActionStatus `gorm:"size:10;not null" json:"status"`
	Error      *string      `gorm:"type:text" json:"error,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
}

func (ActionRecord) TableName() string {
	return "action_records"
}
