package models

import "time"

// AuthTokenKey is the primary key of the single persisted token row.
const AuthTokenKey = 0

// AuthToken is the persisted user-mode credential. At most one row exists;
// all reads and writes go through the soundtrack token manager, which
// serializes access.
type AuthToken struct {
	Key          int       `gorm:"primaryKey" json:"key"`
	Token        string    `gorm:"type:text;not null" json:"-"`
	RefreshToken string    `gorm:"type:text" json:"-"`
	ExpiresAt    time.Time `gorm:"not null" json:"expires_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (AuthToken) TableName() string {
	return "auth_tokens"
}
