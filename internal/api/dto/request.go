package dto

import (
	"time"

	"github.com/zonetune/zonetune/internal/domain/models"
	"github.com/zonetune/zonetune/internal/domain/services"
)

type CreateScheduleRequest struct {
	Name        string             `json:"name" validate:"required"`
	Description *string            `json:"description"`
	At          *time.Time         `json:"at"`
	Repeat      *int               `json:"repeat" validate:"omitempty,gt=0"`
	RepeatUnit  *models.RepeatUnit `json:"repeat_unit" validate:"omitempty,repeatunit"`
	Assign      *string            `json:"assign"`
}

// UpdateScheduleRequest is a patch: absent fields stay untouched, explicit
// nulls clear.
type UpdateScheduleRequest struct {
	Name        services.Optional[string]            `json:"name"`
	Description services.Optional[string]            `json:"description"`
	At          services.Optional[time.Time]         `json:"at"`
	Repeat      services.Optional[int]               `json:"repeat"`
	RepeatUnit  services.Optional[models.RepeatUnit] `json:"repeat_unit"`
	Assign      services.Optional[string]            `json:"assign"`
	DisabledAt  services.Optional[time.Time]         `json:"disabled_at"`
}

type TargetRequest struct {
	ZoneID    string `json:"zone_id" validate:"required"`
	AccountID string `json:"account_id"`
}

type SetTargetsRequest struct {
	Add        []TargetRequest `json:"add"`
	Activate   []TargetRequest `json:"activate"`
	Deactivate []TargetRequest `json:"deactivate"`
	Remove     []TargetRequest `json:"remove"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
