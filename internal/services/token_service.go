package services

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Alphonse-K/freres-unis/domain"
)

const blacklistKeyPrefix = "jwt:blacklist:"

// TokenServiceImpl implements domain.TokenService. Refresh tokens are
// persisted hashed, one row per issue, paired with the access token's JTI.
// Revoked access JTIs live in the jwt_blacklist table with a Redis
// write-through cache in front of it.
type TokenServiceImpl struct {
	codec       domain.TokenCodec
	refreshRepo domain.RefreshTokenRepository
	blacklist   domain.TokenBlacklistRepository
	accountRepo domain.AccountRepository
	credentials domain.CredentialStore
	cache       *redis.Client
	logger      *zap.Logger
}

// NewTokenService creates a new token service. cache may be nil, in which
// case every blacklist lookup hits the database.
func NewTokenService(
	codec domain.TokenCodec,
	refreshRepo domain.RefreshTokenRepository,
	blacklist domain.TokenBlacklistRepository,
	accountRepo domain.AccountRepository,
	credentials domain.CredentialStore,
	cache *redis.Client,
	logger *zap.Logger,
) domain.TokenService {
	return &TokenServiceImpl{
		codec:       codec,
		refreshRepo: refreshRepo,
		blacklist:   blacklist,
		accountRepo: accountRepo,
		credentials: credentials,
		cache:       cache,
		logger:      logger,
	}
}

// Issue implements domain.TokenService.
func (s *TokenServiceImpl) Issue(ctx context.Context, account domain.Account, device domain.DeviceInfo) (*domain.TokenPair, error) {
	role := domain.PrimaryRole(account)

	access, accessClaims, err := s.codec.MintAccess(account.AccountID(), account.Kind(), role)
	if err != nil {
		return nil, fmt.Errorf("failed to mint access token: %w", err)
	}
	refresh, refreshClaims, err := s.codec.MintRefresh(account.AccountID(), account.Kind(), role)
	if err != nil {
		return nil, fmt.Errorf("failed to mint refresh token: %w", err)
	}

	hash, err := s.credentials.Hash(refresh)
	if err != nil {
		return nil, fmt.Errorf("failed to hash refresh token: %w", err)
	}

	row := &domain.RefreshToken{
		AccountID:   account.AccountID(),
		AccountKind: account.Kind(),
		TokenHash:   hash,
		AccessJTI:   accessClaims.JTI,
		IP:          device.IP,
		UserAgent:   device.UserAgent,
		ExpiresAt:   refreshClaims.ExpiresAt,
		IsActive:    true,
	}
	if err := s.refreshRepo.Create(ctx, row); err != nil {
		return nil, fmt.Errorf("failed to persist refresh token: %w", err)
	}

	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresAt:    accessClaims.ExpiresAt,
		JTI:          accessClaims.JTI,
	}, nil
}

// VerifyAccess implements domain.TokenService.
func (s *TokenServiceImpl) VerifyAccess(ctx context.Context, raw string) (*domain.TokenClaims, error) {
	claims, err := s.codec.ParseAccess(raw)
	if err != nil {
		return nil, err
	}

	revoked, err := s.isBlacklisted(ctx, claims.JTI)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, domain.ErrTokenRevoked
	}
	return claims, nil
}

// Rotate implements domain.TokenService. The presented token is matched
// against the account's active rows by hash comparison; the matched row is
// deactivated before a fresh pair is issued, so a replay of the same token
// finds nothing.
func (s *TokenServiceImpl) Rotate(ctx context.Context, raw string, device domain.DeviceInfo) (*domain.TokenPair, domain.Account, error) {
	claims, err := s.codec.ParseRefresh(raw)
	if err != nil {
		return nil, nil, domain.ErrRefreshTokenInvalid
	}

	rows, err := s.refreshRepo.ActiveForAccount(ctx, claims.AccountKind, claims.AccountID, time.Now().UTC())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load refresh tokens: %w", err)
	}

	var matched *domain.RefreshToken
	for i := range rows {
		if ok, _ := s.credentials.Verify(raw, rows[i].TokenHash); ok {
			matched = &rows[i]
			break
		}
	}
	if matched == nil {
		return nil, nil, domain.ErrRefreshTokenInvalid
	}

	if err := s.refreshRepo.Deactivate(ctx, matched.ID); err != nil {
		return nil, nil, fmt.Errorf("failed to deactivate refresh token: %w", err)
	}

	account, err := s.accountRepo.FindByKind(ctx, claims.AccountKind, claims.AccountID)
	if err != nil {
		return nil, nil, domain.ErrRefreshTokenInvalid
	}

	pair, err := s.Issue(ctx, account, device)
	if err != nil {
		return nil, nil, err
	}
	return pair, account, nil
}

// RevokeAccess implements domain.TokenService. The raw token has already
// been verified by the caller, so claims are extracted without a second
// signature check.
func (s *TokenServiceImpl) RevokeAccess(ctx context.Context, raw string, account domain.Account, reason string) error {
	claims, err := s.codec.ParseUnverified(raw)
	if err != nil {
		return err
	}

	if err := s.addToBlacklist(ctx, raw, claims, account, reason); err != nil {
		return err
	}

	// Retire the refresh token issued alongside this access token so the
	// session cannot resurrect itself.
	if err := s.refreshRepo.DeactivateByAccessJTI(ctx, claims.JTI); err != nil {
		return fmt.Errorf("failed to deactivate paired refresh token: %w", err)
	}
	return nil
}

// RevokeAll implements domain.TokenService.
func (s *TokenServiceImpl) RevokeAll(ctx context.Context, raw string, account domain.Account, reason string) error {
	claims, err := s.codec.ParseUnverified(raw)
	if err != nil {
		return err
	}

	if err := s.addToBlacklist(ctx, raw, claims, account, reason); err != nil {
		return err
	}

	n, err := s.refreshRepo.DeactivateAll(ctx, account.Kind(), account.AccountID())
	if err != nil {
		return fmt.Errorf("failed to deactivate refresh tokens: %w", err)
	}
	s.logger.Info("revoked all sessions",
		zap.String("account_type", string(account.Kind())),
		zap.Uint("account_id", account.AccountID()),
		zap.Int64("refresh_tokens", n),
	)
	return nil
}

func (s *TokenServiceImpl) addToBlacklist(ctx context.Context, raw string, claims *domain.TokenClaims, account domain.Account, reason string) error {
	entry := &domain.BlacklistedToken{
		JTI:         claims.JTI,
		AccountID:   account.AccountID(),
		AccountKind: account.Kind(),
		Token:       raw,
		ExpiresAt:   claims.ExpiresAt,
		Reason:      reason,
	}
	if err := s.blacklist.Add(ctx, entry); err != nil {
		return fmt.Errorf("failed to blacklist token: %w", err)
	}

	if s.cache != nil {
		ttl := time.Until(claims.ExpiresAt)
		if ttl > 0 {
			if err := s.cache.Set(ctx, blacklistKeyPrefix+claims.JTI, 1, ttl).Err(); err != nil {
				s.logger.Warn("blacklist cache write failed", zap.Error(err))
			}
		}
	}
	return nil
}

func (s *TokenServiceImpl) isBlacklisted(ctx context.Context, jti string) (bool, error) {
	if s.cache != nil {
		n, err := s.cache.Exists(ctx, blacklistKeyPrefix+jti).Result()
		if err == nil && n > 0 {
			return true, nil
		}
		if err != nil {
			s.logger.Warn("blacklist cache read failed", zap.Error(err))
		}
	}
	return s.blacklist.Exists(ctx, jti)
}
