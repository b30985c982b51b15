package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/Alphonse-K/freres-unis/domain"
)

// AuditLogRepository implements domain.AuditRepository.
type AuditLogRepository struct {
	db *gorm.DB
}

func NewAuditLogRepository(db *gorm.DB) domain.AuditRepository {
	return &AuditLogRepository{db: db}
}

// Create implements domain.AuditRepository.
func (r *AuditLogRepository) Create(ctx context.Context, entry *domain.AuditEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}
