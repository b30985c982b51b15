package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Alphonse-K/freres-unis/domain"
)

// AuditServiceImpl implements domain.AuditSink. Entries are written to the
// audit_logs table and mirrored to the structured log; a failed database
// write is logged but never fails the calling operation.
type AuditServiceImpl struct {
	repo   domain.AuditRepository
	logger *zap.Logger
}

// NewAuditService creates a new audit sink.
func NewAuditService(repo domain.AuditRepository, logger *zap.Logger) domain.AuditSink {
	return &AuditServiceImpl{repo: repo, logger: logger}
}

// Record implements domain.AuditSink.
func (s *AuditServiceImpl) Record(ctx context.Context, entry domain.AuditEntry) {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	s.logger.Info("audit",
		zap.String("action", entry.Action),
		zap.String("actor_type", entry.ActorKind),
		zap.Uint("actor_id", entry.ActorID),
		zap.String("target_type", entry.TargetKind),
		zap.Uint("target_id", entry.TargetID),
		zap.String("ip", entry.IP),
	)

	if err := s.repo.Create(ctx, &entry); err != nil {
		s.logger.Error("audit write failed", zap.String("action", entry.Action), zap.Error(err))
	}
}
