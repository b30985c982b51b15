package mocks

import (
	"context"
	"time"

	"github.com/Alphonse-K/freres-unis/domain"
)

// MockOTPRepository implements domain.OTPRepository for testing. Without
// overrides it behaves as an in-memory store with the same single-live-code
// semantics as the real one.
type MockOTPRepository struct {
	DeleteUnusedFunc func(ctx context.Context, kind domain.AccountKind, accountID uint, purpose string) error
	CreateFunc       func(ctx context.Context, code *domain.OTPCode) error
	FindValidFunc    func(ctx context.Context, kind domain.AccountKind, accountID uint, code, purpose string, now time.Time) (*domain.OTPCode, error)
	MarkUsedFunc     func(ctx context.Context, id uint) error

	Codes  []domain.OTPCode
	nextID uint
}

// NewMockOTPRepository creates a mock backed by an in-memory slice.
func NewMockOTPRepository() *MockOTPRepository {
	return &MockOTPRepository{}
}

func (m *MockOTPRepository) DeleteUnused(ctx context.Context, kind domain.AccountKind, accountID uint, purpose string) error {
	if m.DeleteUnusedFunc != nil {
		return m.DeleteUnusedFunc(ctx, kind, accountID, purpose)
	}
	kept := m.Codes[:0]
	for _, c := range m.Codes {
		if c.AccountKind == kind && c.AccountID == accountID && c.Purpose == purpose && !c.IsUsed {
			continue
		}
		kept = append(kept, c)
	}
	m.Codes = kept
	return nil
}

func (m *MockOTPRepository) Create(ctx context.Context, code *domain.OTPCode) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, code)
	}
	m.nextID++
	code.ID = m.nextID
	m.Codes = append(m.Codes, *code)
	return nil
}

func (m *MockOTPRepository) FindValid(ctx context.Context, kind domain.AccountKind, accountID uint, code, purpose string, now time.Time) (*domain.OTPCode, error) {
	if m.FindValidFunc != nil {
		return m.FindValidFunc(ctx, kind, accountID, code, purpose, now)
	}
	for i := range m.Codes {
		c := m.Codes[i]
		if c.AccountKind == kind && c.AccountID == accountID && c.Code == code &&
			c.Purpose == purpose && !c.IsUsed && c.ExpiresAt.After(now) {
			return &c, nil
		}
	}
	return nil, domain.ErrOTPInvalid
}

func (m *MockOTPRepository) MarkUsed(ctx context.Context, id uint) error {
	if m.MarkUsedFunc != nil {
		return m.MarkUsedFunc(ctx, id)
	}
	for i := range m.Codes {
		if m.Codes[i].ID == id {
			m.Codes[i].IsUsed = true
		}
	}
	return nil
}
