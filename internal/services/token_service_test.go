package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Alphonse-K/freres-unis/domain"
	"github.com/Alphonse-K/freres-unis/internal/infrastructure/auth"
	"github.com/Alphonse-K/freres-unis/internal/mocks"
)

type tokenFixture struct {
	svc       domain.TokenService
	refresh   *mocks.MockRefreshTokenRepository
	blacklist *mocks.MockTokenBlacklistRepository
	accounts  *mocks.MockAccountRepository
	staff     *domain.StaffUser
}

func newTokenFixture(t *testing.T, cache *redis.Client) *tokenFixture {
	t.Helper()

	staff := activeStaff("jdoe@example.com")
	accounts := mocks.NewMockAccountRepository()
	accounts.FindByKindFunc = func(ctx context.Context, kind domain.AccountKind, id uint) (domain.Account, error) {
		if kind == domain.AccountKindStaff && id == staff.ID {
			return staff, nil
		}
		return nil, domain.ErrAccountNotFound
	}

	refresh := mocks.NewMockRefreshTokenRepository()
	blacklist := mocks.NewMockTokenBlacklistRepository()
	codec := auth.NewJWTService("test-secret", "", "test", 15*time.Minute, time.Hour)

	svc := NewTokenService(codec, refresh, blacklist, accounts, mocks.NewMockCredentialStore(), cache, zap.NewNop())
	return &tokenFixture{svc: svc, refresh: refresh, blacklist: blacklist, accounts: accounts, staff: staff}
}

func TestTokenService_IssuePersistsHashedRefresh(t *testing.T) {
	fx := newTokenFixture(t, nil)
	ctx := context.Background()

	pair, err := fx.svc.Issue(ctx, fx.staff, domain.DeviceInfo{IP: "10.0.0.1", UserAgent: "agent"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("expected both tokens")
	}

	if len(fx.refresh.Rows) != 1 {
		t.Fatalf("refresh rows = %d, want 1", len(fx.refresh.Rows))
	}
	row := fx.refresh.Rows[0]
	if row.TokenHash == pair.RefreshToken {
		t.Error("raw refresh token must not be stored")
	}
	if row.AccessJTI != pair.JTI {
		t.Error("refresh row must be paired with the access jti")
	}
	if row.IP != "10.0.0.1" || row.UserAgent != "agent" {
		t.Error("device metadata must be stamped")
	}
}

func TestTokenService_RotationIsSingleUse(t *testing.T) {
	fx := newTokenFixture(t, nil)
	ctx := context.Background()

	pair, err := fx.svc.Issue(ctx, fx.staff, domain.DeviceInfo{})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	next, account, err := fx.svc.Rotate(ctx, pair.RefreshToken, domain.DeviceInfo{})
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if account.AccountID() != fx.staff.ID {
		t.Error("rotation resolved the wrong account")
	}
	if next.RefreshToken == pair.RefreshToken {
		t.Error("rotation must mint a new refresh token")
	}

	// Replaying the consumed token fails.
	if _, _, err := fx.svc.Rotate(ctx, pair.RefreshToken, domain.DeviceInfo{}); !errors.Is(err, domain.ErrRefreshTokenInvalid) {
		t.Errorf("replay: got %v, want ErrRefreshTokenInvalid", err)
	}

	// The replacement still works.
	if _, _, err := fx.svc.Rotate(ctx, next.RefreshToken, domain.DeviceInfo{}); err != nil {
		t.Errorf("rotate replacement: %v", err)
	}
}

func TestTokenService_RotateRejectsGarbage(t *testing.T) {
	fx := newTokenFixture(t, nil)

	for _, raw := range []string{"", "garbage"} {
		if _, _, err := fx.svc.Rotate(context.Background(), raw, domain.DeviceInfo{}); !errors.Is(err, domain.ErrRefreshTokenInvalid) {
			t.Errorf("Rotate(%q): got %v, want ErrRefreshTokenInvalid", raw, err)
		}
	}
}

func TestTokenService_RevokeAccessImmediate(t *testing.T) {
	fx := newTokenFixture(t, nil)
	ctx := context.Background()

	pair, err := fx.svc.Issue(ctx, fx.staff, domain.DeviceInfo{})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := fx.svc.VerifyAccess(ctx, pair.AccessToken); err != nil {
		t.Fatalf("verify before revoke: %v", err)
	}

	if err := fx.svc.RevokeAccess(ctx, pair.AccessToken, fx.staff, "logout"); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	// The cryptographically valid token is rejected immediately.
	if _, err := fx.svc.VerifyAccess(ctx, pair.AccessToken); !errors.Is(err, domain.ErrTokenRevoked) {
		t.Errorf("verify after revoke: got %v, want ErrTokenRevoked", err)
	}

	// The paired refresh token is gone with it.
	if _, _, err := fx.svc.Rotate(ctx, pair.RefreshToken, domain.DeviceInfo{}); !errors.Is(err, domain.ErrRefreshTokenInvalid) {
		t.Errorf("rotate after logout: got %v, want ErrRefreshTokenInvalid", err)
	}

	entry, ok := fx.blacklist.Entries[pair.JTI]
	if !ok {
		t.Fatal("expected blacklist entry")
	}
	if entry.Reason != "logout" {
		t.Errorf("reason = %q", entry.Reason)
	}
}

func TestTokenService_RevokeAccessKeepsOtherSessions(t *testing.T) {
	fx := newTokenFixture(t, nil)
	ctx := context.Background()

	first, _ := fx.svc.Issue(ctx, fx.staff, domain.DeviceInfo{})
	second, _ := fx.svc.Issue(ctx, fx.staff, domain.DeviceInfo{})

	if err := fx.svc.RevokeAccess(ctx, first.AccessToken, fx.staff, "logout"); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	if _, err := fx.svc.VerifyAccess(ctx, second.AccessToken); err != nil {
		t.Errorf("second session access token: %v", err)
	}
	if _, _, err := fx.svc.Rotate(ctx, second.RefreshToken, domain.DeviceInfo{}); err != nil {
		t.Errorf("second session refresh token: %v", err)
	}
}

func TestTokenService_RevokeAll(t *testing.T) {
	fx := newTokenFixture(t, nil)
	ctx := context.Background()

	first, _ := fx.svc.Issue(ctx, fx.staff, domain.DeviceInfo{})
	second, _ := fx.svc.Issue(ctx, fx.staff, domain.DeviceInfo{})

	if err := fx.svc.RevokeAll(ctx, first.AccessToken, fx.staff, "logout_all"); err != nil {
		t.Fatalf("revoke all: %v", err)
	}

	for i, raw := range []string{first.RefreshToken, second.RefreshToken} {
		if _, _, err := fx.svc.Rotate(ctx, raw, domain.DeviceInfo{}); !errors.Is(err, domain.ErrRefreshTokenInvalid) {
			t.Errorf("refresh %d after revoke all: got %v", i, err)
		}
	}
	if _, err := fx.svc.VerifyAccess(ctx, first.AccessToken); !errors.Is(err, domain.ErrTokenRevoked) {
		t.Errorf("presented access token: got %v, want ErrTokenRevoked", err)
	}
}

func TestTokenService_BlacklistCache(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	fx := newTokenFixture(t, cache)
	ctx := context.Background()

	pair, _ := fx.svc.Issue(ctx, fx.staff, domain.DeviceInfo{})
	if err := fx.svc.RevokeAccess(ctx, pair.AccessToken, fx.staff, "logout"); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	if !mr.Exists(blacklistKeyPrefix + pair.JTI) {
		t.Error("expected cached blacklist key")
	}

	// Even with the database row gone, the cache rejects the token.
	delete(fx.blacklist.Entries, pair.JTI)
	if _, err := fx.svc.VerifyAccess(ctx, pair.AccessToken); !errors.Is(err, domain.ErrTokenRevoked) {
		t.Errorf("got %v, want ErrTokenRevoked", err)
	}
}
