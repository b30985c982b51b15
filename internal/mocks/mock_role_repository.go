package mocks

import (
	"context"

	"github.com/Alphonse-K/freres-unis/domain"
)

// MockRoleRepository implements domain.RoleRepository for testing, backed
// by an in-memory slice.
type MockRoleRepository struct {
	CreateFunc     func(ctx context.Context, role *domain.Role) error
	UpdateFunc     func(ctx context.Context, role *domain.Role) error
	DeleteFunc     func(ctx context.Context, id uint) error
	FindByIDFunc   func(ctx context.Context, id uint) (*domain.Role, error)
	FindByNameFunc func(ctx context.Context, name string) (*domain.Role, error)
	FindByIDsFunc  func(ctx context.Context, ids []uint) ([]domain.Role, error)
	ListFunc       func(ctx context.Context) ([]domain.Role, error)

	Roles  []domain.Role
	nextID uint
}

// NewMockRoleRepository creates a mock backed by an in-memory slice.
func NewMockRoleRepository() *MockRoleRepository {
	return &MockRoleRepository{}
}

func (m *MockRoleRepository) Create(ctx context.Context, role *domain.Role) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, role)
	}
	m.nextID++
	role.ID = m.nextID
	m.Roles = append(m.Roles, *role)
	return nil
}

func (m *MockRoleRepository) Update(ctx context.Context, role *domain.Role) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, role)
	}
	for i := range m.Roles {
		if m.Roles[i].ID == role.ID {
			m.Roles[i] = *role
			return nil
		}
	}
	return domain.ErrRoleNotFound
}

func (m *MockRoleRepository) Delete(ctx context.Context, id uint) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	for i := range m.Roles {
		if m.Roles[i].ID == id {
			m.Roles = append(m.Roles[:i], m.Roles[i+1:]...)
			return nil
		}
	}
	return domain.ErrRoleNotFound
}

func (m *MockRoleRepository) FindByID(ctx context.Context, id uint) (*domain.Role, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	for i := range m.Roles {
		if m.Roles[i].ID == id {
			r := m.Roles[i]
			return &r, nil
		}
	}
	return nil, domain.ErrRoleNotFound
}

func (m *MockRoleRepository) FindByName(ctx context.Context, name string) (*domain.Role, error) {
	if m.FindByNameFunc != nil {
		return m.FindByNameFunc(ctx, name)
	}
	for i := range m.Roles {
		if m.Roles[i].Name == name {
			r := m.Roles[i]
			return &r, nil
		}
	}
	return nil, domain.ErrRoleNotFound
}

func (m *MockRoleRepository) FindByIDs(ctx context.Context, ids []uint) ([]domain.Role, error) {
	if m.FindByIDsFunc != nil {
		return m.FindByIDsFunc(ctx, ids)
	}
	var out []domain.Role
	for _, id := range ids {
		for _, r := range m.Roles {
			if r.ID == id {
				out = append(out, r)
			}
		}
	}
	return out, nil
}

func (m *MockRoleRepository) List(ctx context.Context) ([]domain.Role, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return append([]domain.Role(nil), m.Roles...), nil
}
