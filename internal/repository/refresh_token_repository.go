package repository

import (
	"context"

	"gorm.io/gorm"

	"authgate/internal/model"
)

// RefreshTokenRepository persists the durable refresh-token records. Expired
// rows are not swept here; cleanup belongs to an external job.
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *model.RefreshToken) error
	FindByTokenID(ctx context.Context, tokenID string) (*model.RefreshToken, error)
	FindByUser(ctx context.Context, userID uint) ([]model.RefreshToken, error)
	DeleteByID(ctx context.Context, id uint) error
	DeleteByTokenID(ctx context.Context, tokenID string) error
}

type refreshTokenRepository struct {
	db *gorm.DB
}

// NewRefreshTokenRepository builds a GORM-backed repository.
func NewRefreshTokenRepository(db *gorm.DB) RefreshTokenRepository {
	return &refreshTokenRepository{db: db}
}

func (r *refreshTokenRepository) Create(ctx context.Context, token *model.RefreshToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

func (r *refreshTokenRepository) FindByTokenID(ctx context.Context, tokenID string) (*model.RefreshToken, error) {
	var token model.RefreshToken
	if err := r.db.WithContext(ctx).Where("token_id = ?", tokenID).First(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *refreshTokenRepository) FindByUser(ctx context.Context, userID uint) ([]model.RefreshToken, error) {
	var tokens []model.RefreshToken
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&tokens).Error; err != nil {
		return nil, err
	}
	return tokens, nil
}

func (r *refreshTokenRepository) DeleteByID(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.RefreshToken{}, id).Error
}

func (r *refreshTokenRepository) DeleteByTokenID(ctx context.Context, tokenID string) error {
	return r.db.WithContext(ctx).Where("token_id = ?", tokenID).Delete(&model.RefreshToken{}).Error
}
