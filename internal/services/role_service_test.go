package services

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/Alphonse-K/freres-unis/domain"
	"github.com/Alphonse-K/freres-unis/internal/mocks"
)

type roleFixture struct {
	svc      domain.RoleService
	roles    *mocks.MockRoleRepository
	accounts *mocks.MockAccountRepository
	enforcer *mocks.MockPolicyEnforcer
}

func newRoleFixture() *roleFixture {
	roles := mocks.NewMockRoleRepository()
	accounts := mocks.NewMockAccountRepository()
	enforcer := mocks.NewMockPolicyEnforcer()
	svc := NewRoleService(roles, accounts, enforcer, mocks.NewMockAuditSink())
	return &roleFixture{svc: svc, roles: roles, accounts: accounts, enforcer: enforcer}
}

func TestRoleService_SetPermissions(t *testing.T) {
	fx := newRoleFixture()
	ctx := context.Background()

	role, err := fx.svc.Create(ctx, "MANAGER")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	grant := []string{domain.PermOrderRead, domain.PermOrderCancel}
	if err := fx.svc.SetPermissions(ctx, role.ID, grant); err != nil {
		t.Fatalf("set permissions: %v", err)
	}

	perms, err := fx.svc.PermissionsOf(ctx, "MANAGER")
	if err != nil {
		t.Fatalf("permissions of: %v", err)
	}
	sort.Strings(perms)
	if len(perms) != 2 || perms[0] != domain.PermOrderCancel || perms[1] != domain.PermOrderRead {
		t.Errorf("perms = %v", perms)
	}

	// Replacement is wholesale, not additive.
	if err := fx.svc.SetPermissions(ctx, role.ID, []string{domain.PermSaleCreate}); err != nil {
		t.Fatalf("replace permissions: %v", err)
	}
	perms, _ = fx.svc.PermissionsOf(ctx, "MANAGER")
	if len(perms) != 1 || perms[0] != domain.PermSaleCreate {
		t.Errorf("perms after replace = %v", perms)
	}
	if fx.enforcer.SaveCalls == 0 {
		t.Error("policy changes must be saved")
	}
}

func TestRoleService_SetPermissionsValidatesCatalog(t *testing.T) {
	fx := newRoleFixture()
	ctx := context.Background()

	role, _ := fx.svc.Create(ctx, "MANAGER")
	err := fx.svc.SetPermissions(ctx, role.ID, []string{domain.PermOrderRead, "nonsense:perm"})
	if !errors.Is(err, domain.ErrUnknownPermission) {
		t.Fatalf("got %v, want ErrUnknownPermission", err)
	}
	if perms, _ := fx.svc.PermissionsOf(ctx, "MANAGER"); len(perms) != 0 {
		t.Errorf("rejected grant must not be partially applied: %v", perms)
	}
}

func TestRoleService_DeleteRemovesPolicies(t *testing.T) {
	fx := newRoleFixture()
	ctx := context.Background()

	role, _ := fx.svc.Create(ctx, "TEMP")
	_ = fx.svc.SetPermissions(ctx, role.ID, []string{domain.PermOrderRead})

	if err := fx.svc.Delete(ctx, role.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if perms, _ := fx.svc.PermissionsOf(ctx, "TEMP"); len(perms) != 0 {
		t.Errorf("policies must be removed with the role: %v", perms)
	}
	if _, err := fx.svc.Get(ctx, role.ID); !errors.Is(err, domain.ErrRoleNotFound) {
		t.Errorf("got %v, want ErrRoleNotFound", err)
	}
}

func TestRoleService_RenameMovesGrant(t *testing.T) {
	fx := newRoleFixture()
	ctx := context.Background()

	role, _ := fx.svc.Create(ctx, "OLD")
	_ = fx.svc.SetPermissions(ctx, role.ID, []string{domain.PermSaleCreate})

	if _, err := fx.svc.Rename(ctx, role.ID, "NEW"); err != nil {
		t.Fatalf("rename: %v", err)
	}

	if perms, _ := fx.svc.PermissionsOf(ctx, "OLD"); len(perms) != 0 {
		t.Errorf("old name must hold no grant: %v", perms)
	}
	perms, _ := fx.svc.PermissionsOf(ctx, "NEW")
	if len(perms) != 1 || perms[0] != domain.PermSaleCreate {
		t.Errorf("grant did not follow the rename: %v", perms)
	}
}

func TestRoleService_AssignRoles(t *testing.T) {
	fx := newRoleFixture()
	ctx := context.Background()

	manager, _ := fx.svc.Create(ctx, "MANAGER")
	staff := &domain.StaffUser{ID: 1, Status: domain.StaffActive}
	fx.accounts.FindByKindFunc = func(ctx context.Context, kind domain.AccountKind, id uint) (domain.Account, error) {
		if kind == domain.AccountKindStaff && id == 1 {
			return staff, nil
		}
		return nil, domain.ErrAccountNotFound
	}
	var replaced []domain.Role
	fx.accounts.ReplaceRolesFunc = func(ctx context.Context, account domain.Account, roles []domain.Role) error {
		replaced = roles
		return nil
	}

	if err := fx.svc.AssignRoles(ctx, domain.AccountKindStaff, 1, []uint{manager.ID}); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if len(replaced) != 1 || replaced[0].Name != "MANAGER" {
		t.Errorf("replaced = %v", replaced)
	}

	// Unknown role id fails the whole call.
	if err := fx.svc.AssignRoles(ctx, domain.AccountKindStaff, 1, []uint{manager.ID, 999}); !errors.Is(err, domain.ErrRoleNotFound) {
		t.Errorf("got %v, want ErrRoleNotFound", err)
	}
}
