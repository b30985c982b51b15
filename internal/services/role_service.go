package services

import (
	"context"
	"fmt"

	"github.com/Alphonse-K/freres-unis/domain"
)

// RoleServiceImpl implements domain.RoleService. Role rows live in the
// roles table; their permission grants live as (role, permission) rules
// in the policy store, and assignment to accounts goes through the
// per-kind join tables.
type RoleServiceImpl struct {
	roleRepo    domain.RoleRepository
	accountRepo domain.AccountRepository
	enforcer    domain.PolicyEnforcer
	audit       domain.AuditSink
}

// NewRoleService creates a new role service.
func NewRoleService(
	roleRepo domain.RoleRepository,
	accountRepo domain.AccountRepository,
	enforcer domain.PolicyEnforcer,
	audit domain.AuditSink,
) domain.RoleService {
	return &RoleServiceImpl{
		roleRepo:    roleRepo,
		accountRepo: accountRepo,
		enforcer:    enforcer,
		audit:       audit,
	}
}

// Create implements domain.RoleService.
func (s *RoleServiceImpl) Create(ctx context.Context, name string) (*domain.Role, error) {
	role := &domain.Role{Name: name}
	if err := s.roleRepo.Create(ctx, role); err != nil {
		return nil, fmt.Errorf("failed to create role: %w", err)
	}
	return role, nil
}

// Rename implements domain.RoleService. Permission rules are keyed by
// role name, so they move with the rename.
func (s *RoleServiceImpl) Rename(ctx context.Context, id uint, name string) (*domain.Role, error) {
	role, err := s.roleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	oldName := role.Name
	role.Name = name
	if err := s.roleRepo.Update(ctx, role); err != nil {
		return nil, fmt.Errorf("failed to rename role: %w", err)
	}

	if oldName != name {
		perms, err := s.PermissionsOf(ctx, oldName)
		if err != nil {
			return nil, err
		}
		if err := s.replacePolicies(oldName, name, perms); err != nil {
			return nil, err
		}
	}
	return role, nil
}

// Delete implements domain.RoleService. The role's policy rules are
// removed with it so a recreated role of the same name starts empty.
func (s *RoleServiceImpl) Delete(ctx context.Context, id uint) error {
	role, err := s.roleRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.roleRepo.Delete(ctx, id); err != nil {
		return err
	}
	if _, err := s.enforcer.RemoveFilteredPolicy(0, role.Name); err != nil {
		return fmt.Errorf("failed to remove role policies: %w", err)
	}
	return s.enforcer.SavePolicy()
}

// Get implements domain.RoleService.
func (s *RoleServiceImpl) Get(ctx context.Context, id uint) (*domain.Role, error) {
	return s.roleRepo.FindByID(ctx, id)
}

// List implements domain.RoleService.
func (s *RoleServiceImpl) List(ctx context.Context) ([]domain.Role, error) {
	return s.roleRepo.List(ctx)
}

// SetPermissions implements domain.RoleService. The grant is replaced
// wholesale: existing rules for the role are dropped and the validated
// set written in their place.
func (s *RoleServiceImpl) SetPermissions(ctx context.Context, roleID uint, permissions []string) error {
	for _, p := range permissions {
		if !domain.KnownPermission(p) {
			return fmt.Errorf("%w: %s", domain.ErrUnknownPermission, p)
		}
	}

	role, err := s.roleRepo.FindByID(ctx, roleID)
	if err != nil {
		return err
	}
	if err := s.replacePolicies(role.Name, role.Name, permissions); err != nil {
		return err
	}

	s.audit.Record(ctx, domain.AuditEntry{
		TargetKind: "role",
		TargetID:   role.ID,
		Action:     "role.permissions_set",
		Details:    fmt.Sprintf("%d permissions", len(permissions)),
	})
	return nil
}

// PermissionsOf implements domain.RoleService.
func (s *RoleServiceImpl) PermissionsOf(ctx context.Context, roleName string) ([]string, error) {
	rules, err := s.enforcer.GetFilteredPolicy(0, roleName)
	if err != nil {
		return nil, err
	}
	perms := make([]string, 0, len(rules))
	for _, rule := range rules {
		if len(rule) >= 2 {
			perms = append(perms, rule[1])
		}
	}
	return perms, nil
}

// AssignRoles implements domain.RoleService. The account's role set is
// replaced with the resolved list; unknown role ids fail the whole call.
func (s *RoleServiceImpl) AssignRoles(ctx context.Context, kind domain.AccountKind, accountID uint, roleIDs []uint) error {
	account, err := s.accountRepo.FindByKind(ctx, kind, accountID)
	if err != nil {
		return err
	}

	roles, err := s.roleRepo.FindByIDs(ctx, roleIDs)
	if err != nil {
		return err
	}
	if len(roles) != len(roleIDs) {
		return domain.ErrRoleNotFound
	}

	if err := s.accountRepo.ReplaceRoles(ctx, account, roles); err != nil {
		return fmt.Errorf("failed to assign roles: %w", err)
	}

	s.audit.Record(ctx, domain.AuditEntry{
		TargetKind: string(kind),
		TargetID:   accountID,
		Action:     "role.assigned",
		Details:    fmt.Sprintf("%d roles", len(roles)),
	})
	return nil
}

func (s *RoleServiceImpl) replacePolicies(oldName, newName string, permissions []string) error {
	if _, err := s.enforcer.RemoveFilteredPolicy(0, oldName); err != nil {
		return fmt.Errorf("failed to clear role policies: %w", err)
	}
	for _, p := range permissions {
		if _, err := s.enforcer.AddPolicy(newName, p); err != nil {
			return fmt.Errorf("failed to grant permission: %w", err)
		}
	}
	return s.enforcer.SavePolicy()
}
