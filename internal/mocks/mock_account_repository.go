package mocks

import (
	"context"

	"github.com/Alphonse-K/freres-unis/domain"
)

// MockAccountRepository implements domain.AccountRepository for testing.
type MockAccountRepository struct {
	FindStaffByEmailFunc   func(ctx context.Context, email string) (*domain.StaffUser, error)
	FindPOSUserByPhoneFunc func(ctx context.Context, phone string) (*domain.POSUser, error)
	FindClientByPhoneFunc  func(ctx context.Context, phone string) (*domain.Client, error)
	FindByKindFunc         func(ctx context.Context, kind domain.AccountKind, id uint) (domain.Account, error)
	SaveFunc               func(ctx context.Context, account domain.Account) error
	ReplaceRolesFunc       func(ctx context.Context, account domain.Account, roles []domain.Role) error

	SaveCalls int
}

// NewMockAccountRepository creates a mock with default behaviors.
func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{}
}

func (m *MockAccountRepository) FindStaffByEmail(ctx context.Context, email string) (*domain.StaffUser, error) {
	if m.FindStaffByEmailFunc != nil {
		return m.FindStaffByEmailFunc(ctx, email)
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) FindPOSUserByPhone(ctx context.Context, phone string) (*domain.POSUser, error) {
	if m.FindPOSUserByPhoneFunc != nil {
		return m.FindPOSUserByPhoneFunc(ctx, phone)
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) FindClientByPhone(ctx context.Context, phone string) (*domain.Client, error) {
	if m.FindClientByPhoneFunc != nil {
		return m.FindClientByPhoneFunc(ctx, phone)
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) FindByKind(ctx context.Context, kind domain.AccountKind, id uint) (domain.Account, error) {
	if m.FindByKindFunc != nil {
		return m.FindByKindFunc(ctx, kind, id)
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) Save(ctx context.Context, account domain.Account) error {
	m.SaveCalls++
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, account)
	}
	return nil
}

func (m *MockAccountRepository) ReplaceRoles(ctx context.Context, account domain.Account, roles []domain.Role) error {
	if m.ReplaceRolesFunc != nil {
		return m.ReplaceRolesFunc(ctx, account, roles)
	}
	return nil
}
