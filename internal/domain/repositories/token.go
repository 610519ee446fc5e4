package repositories

import (
	"context"
	"errors"

	"github.com/zonetune/zonetune/internal/domain/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TokenRepository persists the single user-mode token record. It
// implements soundtrack.TokenStore; concurrency control lives in the token
// manager, not here.
type TokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) GetToken(ctx context.Context) (*models.AuthToken, error) {
	var token models.AuthToken
	err := r.db.WithContext(ctx).First(&token, "key = ?", models.AuthTokenKey).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *TokenRepository) SaveToken(ctx context.Context, token *models.AuthToken) error {
	token.Key = models.AuthTokenKey
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"token", "refresh_token", "expires_at", "updated_at"}),
		}).
		Create(token).Error
}

func (r *TokenRepository) DeleteToken(ctx context.Context) error {
	return r.db.WithContext(ctx).Delete(&models.AuthToken{}, "key = ?", models.AuthTokenKey).Error
}
