package services

import (
	"github.com/Alphonse-K/freres-unis/domain"
)

// PermissionServiceImpl implements domain.PermissionChecker against the
// policy store. Role -> permission edges live as (role, permission)
// policy rules.
type PermissionServiceImpl struct {
	enforcer domain.PolicyEnforcer
}

// NewPermissionService creates a new permission checker.
func NewPermissionService(enforcer domain.PolicyEnforcer) domain.PermissionChecker {
	return &PermissionServiceImpl{enforcer: enforcer}
}

// RoleHasPermission implements domain.PermissionChecker.
func (p *PermissionServiceImpl) RoleHasPermission(role, permission string) (bool, error) {
	if role == domain.RoleSuperAdmin {
		return true, nil
	}
	return p.enforcer.Enforce(role, permission)
}

// AccountHasPermission implements domain.PermissionChecker. SUPER_ADMIN
// accounts are granted everything without consulting the store.
func (p *PermissionServiceImpl) AccountHasPermission(account domain.Account, permission string) (bool, error) {
	for _, role := range account.RoleNames() {
		if role == domain.RoleSuperAdmin {
			return true, nil
		}
	}
	for _, role := range account.RoleNames() {
		ok, err := p.enforcer.Enforce(role, permission)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
