package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Alphonse-K/freres-unis/domain"
)

// APIKeyRepository implements domain.APIKeyRepository.
type APIKeyRepository struct {
	db *gorm.DB
}

func NewAPIKeyRepository(db *gorm.DB) domain.APIKeyRepository {
	return &APIKeyRepository{db: db}
}

// Create implements domain.APIKeyRepository.
func (r *APIKeyRepository) Create(ctx context.Context, key *domain.APIKey) error {
	return r.db.WithContext(ctx).Create(key).Error
}

// FindActiveByKey implements domain.APIKeyRepository.
func (r *APIKeyRepository) FindActiveByKey(ctx context.Context, key string) (*domain.APIKey, error) {
	var k domain.APIKey
	err := r.db.WithContext(ctx).
		Where("key = ? AND is_active = ?", key, true).
		First(&k).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAPIKeyNotFound
		}
		return nil, err
	}
	return &k, nil
}

// TouchLastUsed implements domain.APIKeyRepository.
func (r *APIKeyRepository) TouchLastUsed(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&domain.APIKey{}).
		Where("id = ?", id).
		Update("last_used", at).Error
}

// ListByCompany implements domain.APIKeyRepository.
func (r *APIKeyRepository) ListByCompany(ctx context.Context, companyID uint) ([]domain.APIKey, error) {
	var keys []domain.APIKey
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("id").
		Find(&keys).Error
	if err != nil {
		return nil, err
	}
	return keys, nil
}

// Deactivate implements domain.APIKeyRepository.
func (r *APIKeyRepository) Deactivate(ctx context.Context, id, companyID uint) error {
	res := r.db.WithContext(ctx).
		Model(&domain.APIKey{}).
		Where("id = ? AND company_id = ?", id, companyID).
		Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrAPIKeyNotFound
	}
	return nil
}
