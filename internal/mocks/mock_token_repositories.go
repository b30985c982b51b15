package mocks

import (
	"context"
	"time"

	"github.com/Alphonse-K/freres-unis/domain"
)

// MockRefreshTokenRepository implements domain.RefreshTokenRepository for
// testing. Without overrides it behaves as an in-memory store.
type MockRefreshTokenRepository struct {
	CreateFunc               func(ctx context.Context, token *domain.RefreshToken) error
	ActiveForAccountFunc     func(ctx context.Context, kind domain.AccountKind, accountID uint, now time.Time) ([]domain.RefreshToken, error)
	DeactivateFunc           func(ctx context.Context, id uint) error
	DeactivateByAccessJTIFunc func(ctx context.Context, jti string) error
	DeactivateAllFunc        func(ctx context.Context, kind domain.AccountKind, accountID uint) (int64, error)

	Rows   []domain.RefreshToken
	nextID uint
}

// NewMockRefreshTokenRepository creates a mock backed by an in-memory
// slice.
func NewMockRefreshTokenRepository() *MockRefreshTokenRepository {
	return &MockRefreshTokenRepository{}
}

func (m *MockRefreshTokenRepository) Create(ctx context.Context, token *domain.RefreshToken) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, token)
	}
	m.nextID++
	token.ID = m.nextID
	m.Rows = append(m.Rows, *token)
	return nil
}

func (m *MockRefreshTokenRepository) ActiveForAccount(ctx context.Context, kind domain.AccountKind, accountID uint, now time.Time) ([]domain.RefreshToken, error) {
	if m.ActiveForAccountFunc != nil {
		return m.ActiveForAccountFunc(ctx, kind, accountID, now)
	}
	var out []domain.RefreshToken
	for _, r := range m.Rows {
		if r.AccountKind == kind && r.AccountID == accountID && r.IsActive && r.ExpiresAt.After(now) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *MockRefreshTokenRepository) Deactivate(ctx context.Context, id uint) error {
	if m.DeactivateFunc != nil {
		return m.DeactivateFunc(ctx, id)
	}
	for i := range m.Rows {
		if m.Rows[i].ID == id {
			m.Rows[i].IsActive = false
		}
	}
	return nil
}

func (m *MockRefreshTokenRepository) DeactivateByAccessJTI(ctx context.Context, jti string) error {
	if m.DeactivateByAccessJTIFunc != nil {
		return m.DeactivateByAccessJTIFunc(ctx, jti)
	}
	for i := range m.Rows {
		if m.Rows[i].AccessJTI == jti {
			m.Rows[i].IsActive = false
		}
	}
	return nil
}

func (m *MockRefreshTokenRepository) DeactivateAll(ctx context.Context, kind domain.AccountKind, accountID uint) (int64, error) {
	if m.DeactivateAllFunc != nil {
		return m.DeactivateAllFunc(ctx, kind, accountID)
	}
	var n int64
	for i := range m.Rows {
		if m.Rows[i].AccountKind == kind && m.Rows[i].AccountID == accountID && m.Rows[i].IsActive {
			m.Rows[i].IsActive = false
			n++
		}
	}
	return n, nil
}

// MockTokenBlacklistRepository implements domain.TokenBlacklistRepository
// for testing, backed by a map keyed by JTI.
type MockTokenBlacklistRepository struct {
	AddFunc    func(ctx context.Context, entry *domain.BlacklistedToken) error
	ExistsFunc func(ctx context.Context, jti string) (bool, error)

	Entries map[string]domain.BlacklistedToken
}

// NewMockTokenBlacklistRepository creates a mock backed by an in-memory
// map.
func NewMockTokenBlacklistRepository() *MockTokenBlacklistRepository {
	return &MockTokenBlacklistRepository{Entries: map[string]domain.BlacklistedToken{}}
}

func (m *MockTokenBlacklistRepository) Add(ctx context.Context, entry *domain.BlacklistedToken) error {
	if m.AddFunc != nil {
		return m.AddFunc(ctx, entry)
	}
	m.Entries[entry.JTI] = *entry
	return nil
}

func (m *MockTokenBlacklistRepository) Exists(ctx context.Context, jti string) (bool, error) {
	if m.ExistsFunc != nil {
		return m.ExistsFunc(ctx, jti)
	}
	_, ok := m.Entries[jti]
	return ok, nil
}
