package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Alphonse-K/freres-unis/domain"
)

// RefreshTokenRepository implements domain.RefreshTokenRepository.
type RefreshTokenRepository struct {
	db *gorm.DB
}

func NewRefreshTokenRepository(db *gorm.DB) domain.RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

// Create implements domain.RefreshTokenRepository.
func (r *RefreshTokenRepository) Create(ctx context.Context, token *domain.RefreshToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

// ActiveForAccount implements domain.RefreshTokenRepository.
func (r *RefreshTokenRepository) ActiveForAccount(ctx context.Context, kind domain.AccountKind, accountID uint, now time.Time) ([]domain.RefreshToken, error) {
	var tokens []domain.RefreshToken
	err := r.db.WithContext(ctx).
		Where("account_kind = ? AND account_id = ? AND is_active = ? AND expires_at > ?",
			kind, accountID, true, now).
		Find(&tokens).Error
	if err != nil {
		return nil, err
	}
	return tokens, nil
}

// Deactivate implements domain.RefreshTokenRepository.
func (r *RefreshTokenRepository) Deactivate(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&domain.RefreshToken{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}

// DeactivateByAccessJTI implements domain.RefreshTokenRepository.
func (r *RefreshTokenRepository) DeactivateByAccessJTI(ctx context.Context, jti string) error {
	return r.db.WithContext(ctx).
		Model(&domain.RefreshToken{}).
		Where("access_jti = ? AND is_active = ?", jti, true).
		Update("is_active", false).Error
}

// DeactivateAll implements domain.RefreshTokenRepository.
func (r *RefreshTokenRepository) DeactivateAll(ctx context.Context, kind domain.AccountKind, accountID uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.RefreshToken{}).
		Where("account_kind = ? AND account_id = ? AND is_active = ?", kind, accountID, true).
		Update("is_active", false)
	return res.RowsAffected, res.Error
}
