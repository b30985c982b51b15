package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"

	"github.com/Alphonse-K/freres-unis/domain"
)

// LockoutConfig tunes the failed-attempt counter.
type LockoutConfig struct {
	MaxFailedAttempts  int
	SuspensionDuration time.Duration
}

// AuthServiceImpl implements domain.AuthService, composing credential
// verification, login policies, lockout bookkeeping and token issuance.
type AuthServiceImpl struct {
	accountRepo domain.AccountRepository
	credentials domain.CredentialStore
	tokenSvc    domain.TokenService
	audit       domain.AuditSink
	notifier    domain.NotificationService
	lockout     LockoutConfig
	logger      *zap.Logger
}

// NewAuthService creates a new auth service. notifier may be nil, which
// disables credential-change notices.
func NewAuthService(
	accountRepo domain.AccountRepository,
	credentials domain.CredentialStore,
	tokenSvc domain.TokenService,
	audit domain.AuditSink,
	notifier domain.NotificationService,
	lockout LockoutConfig,
	logger *zap.Logger,
) domain.AuthService {
	return &AuthServiceImpl{
		accountRepo: accountRepo,
		credentials: credentials,
		tokenSvc:    tokenSvc,
		audit:       audit,
		notifier:    notifier,
		lockout:     lockout,
		logger:      logger,
	}
}

// Authenticate implements domain.AuthService. The identifier routes to the
// staff table when it looks like an email, otherwise to POS users and then
// clients. Failures are uniform ErrInvalidCredentials so a caller cannot
// probe which identifiers exist.
func (s *AuthServiceImpl) Authenticate(ctx context.Context, identifier, secret, mode string, device domain.DeviceInfo) (domain.Account, error) {
	if identifier == "" {
		return nil, domain.ErrIdentifierRequired
	}

	account, err := s.resolveAccount(ctx, identifier)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	var storedHash string
	switch mode {
	case domain.AuthModePassword:
		storedHash = account.PasswordHash()
	case domain.AuthModePIN:
		pinAccount, ok := account.(domain.PINAuthenticable)
		if !ok {
			return nil, domain.ErrPINNotSupported
		}
		storedHash = pinAccount.PINHash()
	default:
		return nil, domain.ErrUnsupportedAuthMode
	}
	if storedHash == "" {
		return nil, domain.ErrInvalidCredentials
	}

	ok, legacyScheme := s.credentials.Verify(secret, storedHash)
	if !ok {
		s.registerFailure(ctx, account, device)
		return nil, domain.ErrInvalidCredentials
	}

	if err := s.enforceLoginPolicies(ctx, account, time.Now()); err != nil {
		return nil, err
	}

	if legacyScheme {
		s.upgradeHash(ctx, account, secret, mode)
	}
	return account, nil
}

// IsOTPRequired implements domain.AuthService. Step-up applies to staff
// logins only; a step-up fires on the first login, after 24 hours of
// inactivity, or when the device looks different from the last one.
func (s *AuthServiceImpl) IsOTPRequired(account domain.Account, device domain.DeviceInfo) bool {
	if account.Kind() != domain.AccountKindStaff {
		return false
	}
	st := account.Login()
	if st.LastLogin == nil {
		return true
	}
	if time.Since(*st.LastLogin) > 24*time.Hour {
		return true
	}
	// Any mismatch with the recorded device counts, a missing current
	// value included.
	if st.LastLoginIP != "" && device.IP != st.LastLoginIP {
		return true
	}
	if st.LastLoginUserAgent != "" && device.UserAgent != st.LastLoginUserAgent {
		return true
	}
	return false
}

// CompleteLogin implements domain.AuthService.
func (s *AuthServiceImpl) CompleteLogin(ctx context.Context, account domain.Account, device domain.DeviceInfo) (*domain.TokenPair, error) {
	account.Login().RecordLogin(device.IP, device.UserAgent, time.Now().UTC())
	if err := s.accountRepo.Save(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}

	pair, err := s.tokenSvc.Issue(ctx, account, device)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, domain.AuditEntry{
		ActorKind: string(account.Kind()),
		ActorID:   account.AccountID(),
		Action:    "auth.login",
		IP:        device.IP,
		UserAgent: device.UserAgent,
	})
	return pair, nil
}

// Refresh implements domain.AuthService.
func (s *AuthServiceImpl) Refresh(ctx context.Context, rawRefresh string, device domain.DeviceInfo) (*domain.TokenPair, domain.Account, error) {
	pair, account, err := s.tokenSvc.Rotate(ctx, rawRefresh, device)
	if err != nil {
		return nil, nil, err
	}
	if err := s.enforceLoginPolicies(ctx, account, time.Now()); err != nil {
		// Rotation already consumed the presented token; the replacement
		// pair must die with it.
		if revokeErr := s.tokenSvc.RevokeAccess(ctx, pair.AccessToken, account, "policy_violation"); revokeErr != nil {
			s.logger.Warn("failed to revoke pair after policy rejection",
				zap.String("account_type", string(account.Kind())),
				zap.Uint("account_id", account.AccountID()),
				zap.Error(revokeErr))
		}
		return nil, nil, err
	}
	return pair, account, nil
}

// Logout implements domain.AuthService.
func (s *AuthServiceImpl) Logout(ctx context.Context, account domain.Account, rawAccess string) error {
	if err := s.tokenSvc.RevokeAccess(ctx, rawAccess, account, "logout"); err != nil {
		return err
	}
	s.audit.Record(ctx, domain.AuditEntry{
		ActorKind: string(account.Kind()),
		ActorID:   account.AccountID(),
		Action:    "auth.logout",
	})
	return nil
}

// LogoutAll implements domain.AuthService.
func (s *AuthServiceImpl) LogoutAll(ctx context.Context, account domain.Account, rawAccess string) error {
	if err := s.tokenSvc.RevokeAll(ctx, rawAccess, account, "logout_all"); err != nil {
		return err
	}
	s.audit.Record(ctx, domain.AuditEntry{
		ActorKind: string(account.Kind()),
		ActorID:   account.AccountID(),
		Action:    "auth.logout_all",
	})
	return nil
}

// ChangePassword implements domain.AuthService.
func (s *AuthServiceImpl) ChangePassword(ctx context.Context, account domain.Account, oldSecret, newSecret, confirm string, device domain.DeviceInfo) error {
	if newSecret != confirm {
		return domain.ErrSecretMismatch
	}
	if newSecret == oldSecret {
		return domain.ErrSecretReused
	}
	if err := ValidatePasswordStrength(newSecret); err != nil {
		return err
	}
	// First-time setup: no stored hash means there is no old password to
	// verify against.
	if account.PasswordHash() != "" {
		if ok, _ := s.credentials.Verify(oldSecret, account.PasswordHash()); !ok {
			return domain.ErrOldSecretIncorrect
		}
	}

	hash, err := s.credentials.Hash(newSecret)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	account.SetPasswordHash(hash)
	if err := s.accountRepo.Save(ctx, account); err != nil {
		return fmt.Errorf("failed to save password: %w", err)
	}

	s.audit.Record(ctx, domain.AuditEntry{
		ActorKind: string(account.Kind()),
		ActorID:   account.AccountID(),
		Action:    "auth.password_changed",
		IP:        device.IP,
		UserAgent: device.UserAgent,
	})
	s.notifyChange(account, "password", device)
	return nil
}

// ChangePIN implements domain.AuthService.
func (s *AuthServiceImpl) ChangePIN(ctx context.Context, account domain.Account, oldPIN, newPIN, confirm string, device domain.DeviceInfo) error {
	pinAccount, ok := account.(domain.PINAuthenticable)
	if !ok {
		return domain.ErrPINNotSupported
	}
	if newPIN != confirm {
		return domain.ErrSecretMismatch
	}
	if newPIN == oldPIN {
		return domain.ErrSecretReused
	}
	if err := ValidatePIN(newPIN); err != nil {
		return err
	}
	if pinAccount.PINHash() != "" {
		if ok, _ := s.credentials.Verify(oldPIN, pinAccount.PINHash()); !ok {
			return domain.ErrOldSecretIncorrect
		}
	}

	hash, err := s.credentials.Hash(newPIN)
	if err != nil {
		return fmt.Errorf("failed to hash pin: %w", err)
	}
	pinAccount.SetPINHash(hash)
	if err := s.accountRepo.Save(ctx, account); err != nil {
		return fmt.Errorf("failed to save pin: %w", err)
	}

	s.audit.Record(ctx, domain.AuditEntry{
		ActorKind: string(account.Kind()),
		ActorID:   account.AccountID(),
		Action:    "auth.pin_changed",
		IP:        device.IP,
		UserAgent: device.UserAgent,
	})
	s.notifyChange(account, "PIN", device)
	return nil
}

// notifyChange sends a security notice after a credential change.
// Fire-and-forget: delivery failures are logged, never returned.
func (s *AuthServiceImpl) notifyChange(account domain.Account, credential string, device domain.DeviceInfo) {
	if s.notifier == nil {
		return
	}
	msg := fmt.Sprintf("Your %s was changed", credential)
	if device.IP != "" {
		msg += " from " + device.IP
	}
	var err error
	if email := account.ContactEmail(); email != "" {
		err = s.notifier.SendEmail(email, "Security notice", msg)
	} else if phone := account.ContactPhone(); phone != "" {
		err = s.notifier.SendSMS(phone, msg)
	}
	if err != nil {
		s.logger.Warn("change notice delivery failed",
			zap.String("account_type", string(account.Kind())),
			zap.Uint("account_id", account.AccountID()),
			zap.Error(err))
	}
}

// ResolveAccessToken implements domain.AuthService.
func (s *AuthServiceImpl) ResolveAccessToken(ctx context.Context, raw string) (domain.Account, *domain.TokenClaims, error) {
	claims, err := s.tokenSvc.VerifyAccess(ctx, raw)
	if err != nil {
		return nil, nil, err
	}
	account, err := s.accountRepo.FindByKind(ctx, claims.AccountKind, claims.AccountID)
	if err != nil {
		return nil, nil, domain.ErrTokenInvalid
	}
	if !account.StatusActive() {
		return nil, nil, domain.ErrAccountNotActive
	}
	return account, claims, nil
}

func (s *AuthServiceImpl) resolveAccount(ctx context.Context, identifier string) (domain.Account, error) {
	if strings.Contains(identifier, "@") {
		return s.accountRepo.FindStaffByEmail(ctx, identifier)
	}
	if u, err := s.accountRepo.FindPOSUserByPhone(ctx, identifier); err == nil {
		return u, nil
	}
	return s.accountRepo.FindClientByPhone(ctx, identifier)
}

// registerFailure increments the failed-attempt counter and flips the
// account into a timed suspension once the threshold is reached.
func (s *AuthServiceImpl) registerFailure(ctx context.Context, account domain.Account, device domain.DeviceInfo) {
	st := account.Login()
	st.FailedAttempts++

	if st.FailedAttempts >= s.lockout.MaxFailedAttempts {
		until := time.Now().UTC().Add(s.lockout.SuspensionDuration)
		st.SuspendedUntil = &until
		st.FailedAttempts = 0

		s.audit.Record(ctx, domain.AuditEntry{
			ActorKind: string(account.Kind()),
			ActorID:   account.AccountID(),
			Action:    "auth.account_suspended",
			Details:   fmt.Sprintf("too many failed attempts, suspended until %s", until.Format(time.RFC3339)),
			IP:        device.IP,
			UserAgent: device.UserAgent,
		})
	}

	if err := s.accountRepo.Save(ctx, account); err != nil {
		s.logger.Error("failed to persist login failure",
			zap.String("account_type", string(account.Kind())),
			zap.Uint("account_id", account.AccountID()),
			zap.Error(err),
		)
	}
}

// enforceLoginPolicies checks lifecycle status, active suspension and the
// allowed login window. An elapsed suspension is cleared in place.
func (s *AuthServiceImpl) enforceLoginPolicies(ctx context.Context, account domain.Account, now time.Time) error {
	if !account.StatusActive() {
		return domain.ErrAccountNotActive
	}

	st := account.Login()
	if st.SuspendedUntil != nil {
		if now.Before(*st.SuspendedUntil) {
			return &domain.SuspensionError{Until: *st.SuspendedUntil}
		}
		st.SuspendedUntil = nil
		st.FailedAttempts = 0
		if err := s.accountRepo.Save(ctx, account); err != nil {
			s.logger.Error("failed to clear elapsed suspension", zap.Error(err))
		}
	}

	if st.AllowedLoginStart != "" && st.AllowedLoginEnd != "" {
		if !withinWindow(now, st.AllowedLoginStart, st.AllowedLoginEnd) {
			return domain.ErrLoginOutsideHours
		}
	}
	return nil
}

func (s *AuthServiceImpl) upgradeHash(ctx context.Context, account domain.Account, secret, mode string) {
	hash, err := s.credentials.Hash(secret)
	if err != nil {
		s.logger.Warn("hash upgrade failed", zap.Error(err))
		return
	}
	switch mode {
	case domain.AuthModePassword:
		account.SetPasswordHash(hash)
	case domain.AuthModePIN:
		account.(domain.PINAuthenticable).SetPINHash(hash)
	}
	if err := s.accountRepo.Save(ctx, account); err != nil {
		s.logger.Warn("hash upgrade save failed", zap.Error(err))
	}
}

// withinWindow checks a wall-clock login window. A window whose end is
// before its start wraps past midnight, e.g. 22:00-06:00.
func withinWindow(now time.Time, start, end string) bool {
	s, err1 := time.Parse("15:04", start)
	e, err2 := time.Parse("15:04", end)
	if err1 != nil || err2 != nil {
		return true
	}
	cur := now.Hour()*60 + now.Minute()
	sm := s.Hour()*60 + s.Minute()
	em := e.Hour()*60 + e.Minute()
	if sm <= em {
		return cur >= sm && cur <= em
	}
	return cur >= sm || cur <= em
}

// ValidatePasswordStrength enforces the password complexity rules: 8 to
// 128 characters with at least one digit, one upper and one lower case
// letter.
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 || len(password) > 128 {
		return domain.ErrWeakSecret
	}
	var hasDigit, hasUpper, hasLower bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		}
	}
	if !hasDigit || !hasUpper || !hasLower {
		return domain.ErrWeakSecret
	}
	return nil
}

// ValidatePIN enforces the PIN shape: 4 to 6 digits.
func ValidatePIN(pin string) error {
	if len(pin) < 4 || len(pin) > 6 {
		return domain.ErrWeakSecret
	}
	for _, r := range pin {
		if !unicode.IsDigit(r) {
			return domain.ErrWeakSecret
		}
	}
	return nil
}
