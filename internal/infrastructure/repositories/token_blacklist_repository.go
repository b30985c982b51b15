package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/Alphonse-K/freres-unis/domain"
)

// TokenBlacklistRepository implements domain.TokenBlacklistRepository.
// Rows are retained at least until their token's natural expiry; garbage
// collection is an external concern.
type TokenBlacklistRepository struct {
	db *gorm.DB
}

func NewTokenBlacklistRepository(db *gorm.DB) domain.TokenBlacklistRepository {
	return &TokenBlacklistRepository{db: db}
}

// Add implements domain.TokenBlacklistRepository.
func (r *TokenBlacklistRepository) Add(ctx context.Context, entry *domain.BlacklistedToken) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// Exists implements domain.TokenBlacklistRepository.
func (r *TokenBlacklistRepository) Exists(ctx context.Context, jti string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.BlacklistedToken{}).
		Where("jti = ?", jti).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
