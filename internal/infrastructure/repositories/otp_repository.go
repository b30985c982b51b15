package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Alphonse-K/freres-unis/domain"
)

// OTPRepository implements domain.OTPRepository.
type OTPRepository struct {
	db *gorm.DB
}

func NewOTPRepository(db *gorm.DB) domain.OTPRepository {
	return &OTPRepository{db: db}
}

// DeleteUnused implements domain.OTPRepository. Removing prior unused
// codes keeps at most one live code per (account, purpose).
func (r *OTPRepository) DeleteUnused(ctx context.Context, kind domain.AccountKind, accountID uint, purpose string) error {
	return r.db.WithContext(ctx).
		Where("account_kind = ? AND account_id = ? AND purpose = ? AND is_used = ?",
			kind, accountID, purpose, false).
		Delete(&domain.OTPCode{}).Error
}

// Create implements domain.OTPRepository.
func (r *OTPRepository) Create(ctx context.Context, code *domain.OTPCode) error {
	return r.db.WithContext(ctx).Create(code).Error
}

// FindValid implements domain.OTPRepository.
func (r *OTPRepository) FindValid(ctx context.Context, kind domain.AccountKind, accountID uint, code, purpose string, now time.Time) (*domain.OTPCode, error) {
	var otp domain.OTPCode
	err := r.db.WithContext(ctx).
		Where("account_kind = ? AND account_id = ? AND code = ? AND purpose = ? AND is_used = ? AND expires_at > ?",
			kind, accountID, code, purpose, false, now).
		First(&otp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOTPInvalid
		}
		return nil, err
	}
	return &otp, nil
}

// MarkUsed implements domain.OTPRepository.
func (r *OTPRepository) MarkUsed(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&domain.OTPCode{}).
		Where("id = ?", id).
		Update("is_used", true).Error
}
