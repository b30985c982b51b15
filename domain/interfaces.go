package domain

import (
	"context"
	"time"
)

// Authentication modes accepted by the orchestrator.
const (
	AuthModePassword = "password"
	AuthModePIN      = "pin"
)

// AccountRepository is polymorphic access to the three account tables.
type AccountRepository interface {
	FindStaffByEmail(ctx context.Context, email string) (*StaffUser, error)
	FindPOSUserByPhone(ctx context.Context, phone string) (*POSUser, error)
	FindClientByPhone(ctx context.Context, phone string) (*Client, error)
	// FindByKind loads an account row by its discriminator tag and id.
	FindByKind(ctx context.Context, kind AccountKind, id uint) (Account, error)
	Save(ctx context.Context, account Account) error
	ReplaceRoles(ctx context.Context, account Account, roles []Role) error
}

// RefreshTokenRepository persists hashed refresh tokens.
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *RefreshToken) error
	ActiveForAccount(ctx context.Context, kind AccountKind, accountID uint, now time.Time) ([]RefreshToken, error)
	Deactivate(ctx context.Context, id uint) error
	DeactivateByAccessJTI(ctx context.Context, jti string) error
	DeactivateAll(ctx context.Context, kind AccountKind, accountID uint) (int64, error)
}

// TokenBlacklistRepository records revoked access tokens.
type TokenBlacklistRepository interface {
	Add(ctx context.Context, entry *BlacklistedToken) error
	Exists(ctx context.Context, jti string) (bool, error)
}

// OTPRepository persists single-use step-up codes.
type OTPRepository interface {
	DeleteUnused(ctx context.Context, kind AccountKind, accountID uint, purpose string) error
	Create(ctx context.Context, code *OTPCode) error
	FindValid(ctx context.Context, kind AccountKind, accountID uint, code, purpose string, now time.Time) (*OTPCode, error)
	MarkUsed(ctx context.Context, id uint) error
}

// APIKeyRepository persists machine-to-machine credentials.
type APIKeyRepository interface {
	Create(ctx context.Context, key *APIKey) error
	FindActiveByKey(ctx context.Context, key string) (*APIKey, error)
	TouchLastUsed(ctx context.Context, id uint, at time.Time) error
	ListByCompany(ctx context.Context, companyID uint) ([]APIKey, error)
	Deactivate(ctx context.Context, id, companyID uint) error
}

// RoleRepository manages the role catalog.
type RoleRepository interface {
	Create(ctx context.Context, role *Role) error
	Update(ctx context.Context, role *Role) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*Role, error)
	FindByName(ctx context.Context, name string) (*Role, error)
	FindByIDs(ctx context.Context, ids []uint) ([]Role, error)
	List(ctx context.Context) ([]Role, error)
}

// AuditRepository persists structured action records.
type AuditRepository interface {
	Create(ctx context.Context, entry *AuditEntry) error
}

// CredentialStore hashes and verifies passwords, PINs, refresh tokens and
// API secrets.
type CredentialStore interface {
	Hash(secret string) (string, error)
	// Verify reports whether the secret matches the stored hash. legacy is
	// true when the match came from the legacy scheme, signalling the
	// caller to re-hash and persist ("upgrade on login"). Malformed hashes
	// never panic; they simply do not match.
	Verify(secret, storedHash string) (ok bool, legacy bool)
}

// TokenCodec mints and parses signed tokens. Parse methods reject tokens
// whose "type" claim does not match the expected discriminator.
type TokenCodec interface {
	MintAccess(accountID uint, kind AccountKind, role string) (string, *TokenClaims, error)
	MintRefresh(accountID uint, kind AccountKind, role string) (string, *TokenClaims, error)
	ParseAccess(token string) (*TokenClaims, error)
	ParseRefresh(token string) (*TokenClaims, error)
	// ParseUnverified extracts claims without signature verification, for
	// blacklisting tokens that are already trusted via the middleware.
	ParseUnverified(token string) (*TokenClaims, error)
}

// TokenService owns the issue / verify / rotate / revoke state machine.
type TokenService interface {
	Issue(ctx context.Context, account Account, device DeviceInfo) (*TokenPair, error)
	// VerifyAccess checks signature, expiry, type claim and blacklist.
	VerifyAccess(ctx context.Context, raw string) (*TokenClaims, error)
	// Rotate exchanges a raw refresh token for a fresh pair. Single-use:
	// a second call with the same token fails with ErrRefreshTokenInvalid.
	Rotate(ctx context.Context, raw string, device DeviceInfo) (*TokenPair, Account, error)
	RevokeAccess(ctx context.Context, raw string, account Account, reason string) error
	RevokeAll(ctx context.Context, raw string, account Account, reason string) error
}

// OTPService generates and verifies step-up codes.
type OTPService interface {
	// Generate invalidates prior unused codes for (account, purpose),
	// stores a fresh one and dispatches it. The code is returned for
	// internal composition only and must never reach an HTTP response.
	Generate(ctx context.Context, account Account, purpose string) (string, error)
	// Verify resolves the identifier across account kinds, consumes the
	// matching code and returns the owning account. Failures are uniform.
	Verify(ctx context.Context, identifier, code, purpose string) (Account, error)
}

// AuthService is the orchestrator composing credential checks, policies,
// OTP step-up and token issuance.
type AuthService interface {
	Authenticate(ctx context.Context, identifier, secret, mode string, device DeviceInfo) (Account, error)
	IsOTPRequired(account Account, device DeviceInfo) bool
	// CompleteLogin stamps last-login metadata and issues a token pair.
	CompleteLogin(ctx context.Context, account Account, device DeviceInfo) (*TokenPair, error)
	Refresh(ctx context.Context, rawRefresh string, device DeviceInfo) (*TokenPair, Account, error)
	Logout(ctx context.Context, account Account, rawAccess string) error
	LogoutAll(ctx context.Context, account Account, rawAccess string) error
	ChangePassword(ctx context.Context, account Account, oldSecret, newSecret, confirm string, device DeviceInfo) error
	ChangePIN(ctx context.Context, account Account, oldPIN, newPIN, confirm string, device DeviceInfo) error
	// ResolveAccessToken verifies a bearer token and loads the live
	// account row behind it.
	ResolveAccessToken(ctx context.Context, raw string) (Account, *TokenClaims, error)
}

// APIKeyWithSecret is returned once at creation; the raw secret is not
// recoverable afterwards.
type APIKeyWithSecret struct {
	APIKey
	Secret string `json:"secret"`
}

// APIKeyService manages machine-to-machine credentials.
type APIKeyService interface {
	Create(ctx context.Context, companyID uint, name string, perms PermissionList, expiresAt *time.Time) (*APIKeyWithSecret, error)
	Validate(ctx context.Context, key, secret string) (*APIKey, error)
	List(ctx context.Context, companyID uint) ([]APIKey, error)
	Revoke(ctx context.Context, id, companyID uint) error
}

// PolicyEnforcer is the slice of the policy engine the services use.
// Policies are pairs of (role name, permission string).
type PolicyEnforcer interface {
	Enforce(rvals ...interface{}) (bool, error)
	AddPolicy(params ...interface{}) (bool, error)
	RemoveFilteredPolicy(fieldIndex int, fieldValues ...string) (bool, error)
	GetFilteredPolicy(fieldIndex int, fieldValues ...string) ([][]string, error)
	SavePolicy() error
}

// PermissionChecker flattens roles into permission sets.
type PermissionChecker interface {
	RoleHasPermission(role, permission string) (bool, error)
	// AccountHasPermission applies the SUPER_ADMIN bypass, then checks
	// every role the account holds.
	AccountHasPermission(account Account, permission string) (bool, error)
}

// RoleService manages roles, their permission grants and assignment to
// accounts.
type RoleService interface {
	Create(ctx context.Context, name string) (*Role, error)
	Rename(ctx context.Context, id uint, name string) (*Role, error)
	Delete(ctx context.Context, id uint) error
	Get(ctx context.Context, id uint) (*Role, error)
	List(ctx context.Context) ([]Role, error)
	SetPermissions(ctx context.Context, roleID uint, permissions []string) error
	PermissionsOf(ctx context.Context, roleName string) ([]string, error)
	AssignRoles(ctx context.Context, kind AccountKind, accountID uint, roleIDs []uint) error
}

// NotificationService delivers OTP codes and security notices.
// Fire-and-forget: failures are logged, never fatal to the auth flow.
type NotificationService interface {
	SendSMS(to, message string) error
	SendEmail(to, subject, body string) error
}

// AuditSink records structured action entries keyed by actor and target.
type AuditSink interface {
	Record(ctx context.Context, entry AuditEntry)
}
