package mocks

import (
	"context"
	"time"

	"github.com/Alphonse-K/freres-unis/domain"
)

// MockAuthService implements domain.AuthService for handler tests.
type MockAuthService struct {
	AuthenticateFunc       func(ctx context.Context, identifier, secret, mode string, device domain.DeviceInfo) (domain.Account, error)
	IsOTPRequiredFunc      func(account domain.Account, device domain.DeviceInfo) bool
	CompleteLoginFunc      func(ctx context.Context, account domain.Account, device domain.DeviceInfo) (*domain.TokenPair, error)
	RefreshFunc            func(ctx context.Context, rawRefresh string, device domain.DeviceInfo) (*domain.TokenPair, domain.Account, error)
	LogoutFunc             func(ctx context.Context, account domain.Account, rawAccess string) error
	LogoutAllFunc          func(ctx context.Context, account domain.Account, rawAccess string) error
	ChangePasswordFunc     func(ctx context.Context, account domain.Account, oldSecret, newSecret, confirm string, device domain.DeviceInfo) error
	ChangePINFunc          func(ctx context.Context, account domain.Account, oldPIN, newPIN, confirm string, device domain.DeviceInfo) error
	ResolveAccessTokenFunc func(ctx context.Context, raw string) (domain.Account, *domain.TokenClaims, error)
}

func NewMockAuthService() *MockAuthService {
	return &MockAuthService{}
}

func (m *MockAuthService) Authenticate(ctx context.Context, identifier, secret, mode string, device domain.DeviceInfo) (domain.Account, error) {
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(ctx, identifier, secret, mode, device)
	}
	return nil, domain.ErrInvalidCredentials
}

func (m *MockAuthService) IsOTPRequired(account domain.Account, device domain.DeviceInfo) bool {
	if m.IsOTPRequiredFunc != nil {
		return m.IsOTPRequiredFunc(account, device)
	}
	return false
}

func (m *MockAuthService) CompleteLogin(ctx context.Context, account domain.Account, device domain.DeviceInfo) (*domain.TokenPair, error) {
	if m.CompleteLoginFunc != nil {
		return m.CompleteLoginFunc(ctx, account, device)
	}
	return &domain.TokenPair{AccessToken: "access", RefreshToken: "refresh", TokenType: "Bearer"}, nil
}

func (m *MockAuthService) Refresh(ctx context.Context, rawRefresh string, device domain.DeviceInfo) (*domain.TokenPair, domain.Account, error) {
	if m.RefreshFunc != nil {
		return m.RefreshFunc(ctx, rawRefresh, device)
	}
	return nil, nil, domain.ErrRefreshTokenInvalid
}

func (m *MockAuthService) Logout(ctx context.Context, account domain.Account, rawAccess string) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, account, rawAccess)
	}
	return nil
}

func (m *MockAuthService) LogoutAll(ctx context.Context, account domain.Account, rawAccess string) error {
	if m.LogoutAllFunc != nil {
		return m.LogoutAllFunc(ctx, account, rawAccess)
	}
	return nil
}

func (m *MockAuthService) ChangePassword(ctx context.Context, account domain.Account, oldSecret, newSecret, confirm string, device domain.DeviceInfo) error {
	if m.ChangePasswordFunc != nil {
		return m.ChangePasswordFunc(ctx, account, oldSecret, newSecret, confirm, device)
	}
	return nil
}

func (m *MockAuthService) ChangePIN(ctx context.Context, account domain.Account, oldPIN, newPIN, confirm string, device domain.DeviceInfo) error {
	if m.ChangePINFunc != nil {
		return m.ChangePINFunc(ctx, account, oldPIN, newPIN, confirm, device)
	}
	return nil
}

func (m *MockAuthService) ResolveAccessToken(ctx context.Context, raw string) (domain.Account, *domain.TokenClaims, error) {
	if m.ResolveAccessTokenFunc != nil {
		return m.ResolveAccessTokenFunc(ctx, raw)
	}
	return nil, nil, domain.ErrTokenInvalid
}

// MockOTPService implements domain.OTPService for handler tests.
type MockOTPService struct {
	GenerateFunc func(ctx context.Context, account domain.Account, purpose string) (string, error)
	VerifyFunc   func(ctx context.Context, identifier, code, purpose string) (domain.Account, error)

	Generated []string
}

func NewMockOTPService() *MockOTPService {
	return &MockOTPService{}
}

func (m *MockOTPService) Generate(ctx context.Context, account domain.Account, purpose string) (string, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, account, purpose)
	}
	m.Generated = append(m.Generated, account.Identifier())
	return "123456", nil
}

func (m *MockOTPService) Verify(ctx context.Context, identifier, code, purpose string) (domain.Account, error) {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx, identifier, code, purpose)
	}
	return nil, domain.ErrOTPInvalid
}

// MockAPIKeyService implements domain.APIKeyService for middleware and
// handler tests.
type MockAPIKeyService struct {
	CreateFunc   func(ctx context.Context, companyID uint, name string, perms domain.PermissionList, expiresAt *time.Time) (*domain.APIKeyWithSecret, error)
	ValidateFunc func(ctx context.Context, key, secret string) (*domain.APIKey, error)
	ListFunc     func(ctx context.Context, companyID uint) ([]domain.APIKey, error)
	RevokeFunc   func(ctx context.Context, id, companyID uint) error
}

func NewMockAPIKeyService() *MockAPIKeyService {
	return &MockAPIKeyService{}
}

func (m *MockAPIKeyService) Create(ctx context.Context, companyID uint, name string, perms domain.PermissionList, expiresAt *time.Time) (*domain.APIKeyWithSecret, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, companyID, name, perms, expiresAt)
	}
	return &domain.APIKeyWithSecret{Secret: "secret"}, nil
}

func (m *MockAPIKeyService) Validate(ctx context.Context, key, secret string) (*domain.APIKey, error) {
	if m.ValidateFunc != nil {
		return m.ValidateFunc(ctx, key, secret)
	}
	return nil, domain.ErrAPIKeyInvalid
}

func (m *MockAPIKeyService) List(ctx context.Context, companyID uint) ([]domain.APIKey, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, companyID)
	}
	return nil, nil
}

func (m *MockAPIKeyService) Revoke(ctx context.Context, id, companyID uint) error {
	if m.RevokeFunc != nil {
		return m.RevokeFunc(ctx, id, companyID)
	}
	return nil
}

// MockPermissionChecker implements domain.PermissionChecker for
// middleware tests.
type MockPermissionChecker struct {
	RoleHasPermissionFunc    func(role, permission string) (bool, error)
	AccountHasPermissionFunc func(account domain.Account, permission string) (bool, error)
}

func NewMockPermissionChecker() *MockPermissionChecker {
	return &MockPermissionChecker{}
}

func (m *MockPermissionChecker) RoleHasPermission(role, permission string) (bool, error) {
	if m.RoleHasPermissionFunc != nil {
		return m.RoleHasPermissionFunc(role, permission)
	}
	return false, nil
}

func (m *MockPermissionChecker) AccountHasPermission(account domain.Account, permission string) (bool, error) {
	if m.AccountHasPermissionFunc != nil {
		return m.AccountHasPermissionFunc(account, permission)
	}
	return false, nil
}
