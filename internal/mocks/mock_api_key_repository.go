package mocks

import (
	"context"
	"time"

	"github.com/Alphonse-K/freres-unis/domain"
)

// MockAPIKeyRepository implements domain.APIKeyRepository for testing,
// backed by an in-memory slice.
type MockAPIKeyRepository struct {
	CreateFunc          func(ctx context.Context, key *domain.APIKey) error
	FindActiveByKeyFunc func(ctx context.Context, key string) (*domain.APIKey, error)
	TouchLastUsedFunc   func(ctx context.Context, id uint, at time.Time) error
	ListByCompanyFunc   func(ctx context.Context, companyID uint) ([]domain.APIKey, error)
	DeactivateFunc      func(ctx context.Context, id, companyID uint) error

	Keys   []domain.APIKey
	nextID uint
}

// NewMockAPIKeyRepository creates a mock backed by an in-memory slice.
func NewMockAPIKeyRepository() *MockAPIKeyRepository {
	return &MockAPIKeyRepository{}
}

func (m *MockAPIKeyRepository) Create(ctx context.Context, key *domain.APIKey) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, key)
	}
	m.nextID++
	key.ID = m.nextID
	m.Keys = append(m.Keys, *key)
	return nil
}

func (m *MockAPIKeyRepository) FindActiveByKey(ctx context.Context, key string) (*domain.APIKey, error) {
	if m.FindActiveByKeyFunc != nil {
		return m.FindActiveByKeyFunc(ctx, key)
	}
	for i := range m.Keys {
		if m.Keys[i].Key == key && m.Keys[i].IsActive {
			k := m.Keys[i]
			return &k, nil
		}
	}
	return nil, domain.ErrAPIKeyNotFound
}

func (m *MockAPIKeyRepository) TouchLastUsed(ctx context.Context, id uint, at time.Time) error {
	if m.TouchLastUsedFunc != nil {
		return m.TouchLastUsedFunc(ctx, id, at)
	}
	for i := range m.Keys {
		if m.Keys[i].ID == id {
			t := at
			m.Keys[i].LastUsed = &t
		}
	}
	return nil
}

func (m *MockAPIKeyRepository) ListByCompany(ctx context.Context, companyID uint) ([]domain.APIKey, error) {
	if m.ListByCompanyFunc != nil {
		return m.ListByCompanyFunc(ctx, companyID)
	}
	var out []domain.APIKey
	for _, k := range m.Keys {
		if k.CompanyID == companyID {
			out = append(out, k)
		}
	}
	return out, nil
}

func (m *MockAPIKeyRepository) Deactivate(ctx context.Context, id, companyID uint) error {
	if m.DeactivateFunc != nil {
		return m.DeactivateFunc(ctx, id, companyID)
	}
	for i := range m.Keys {
		if m.Keys[i].ID == id && m.Keys[i].CompanyID == companyID {
			m.Keys[i].IsActive = false
			return nil
		}
	}
	return domain.ErrAPIKeyNotFound
}
