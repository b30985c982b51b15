package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/Alphonse-K/freres-unis/domain"
)

func newTestCodec() domain.TokenCodec {
	return NewJWTService("test-secret", "", "freres-unis-test", 15*time.Minute, 720*time.Hour)
}

func TestJWTService_MintAndParseAccess(t *testing.T) {
	codec := newTestCodec()

	raw, claims, err := codec.MintAccess(42, domain.AccountKindStaff, "MANAGER")
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if claims.JTI == "" {
		t.Error("expected a jti")
	}

	parsed, err := codec.ParseAccess(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed.AccountID != 42 {
		t.Errorf("account id = %d, want 42", parsed.AccountID)
	}
	if parsed.AccountKind != domain.AccountKindStaff {
		t.Errorf("account kind = %q, want staff", parsed.AccountKind)
	}
	if parsed.Role != "MANAGER" {
		t.Errorf("role = %q, want MANAGER", parsed.Role)
	}
	if parsed.TokenType != domain.TokenTypeAccess {
		t.Errorf("type = %q, want access", parsed.TokenType)
	}
	if parsed.JTI != claims.JTI {
		t.Errorf("jti mismatch: %q vs %q", parsed.JTI, claims.JTI)
	}
}

func TestJWTService_TypeConfusionRejected(t *testing.T) {
	codec := newTestCodec()

	refresh, _, err := codec.MintRefresh(7, domain.AccountKindPOS, "CASHIER")
	if err != nil {
		t.Fatalf("mint refresh: %v", err)
	}
	if _, err := codec.ParseAccess(refresh); err == nil {
		t.Fatal("refresh token must not parse as access token")
	}

	access, _, err := codec.MintAccess(7, domain.AccountKindPOS, "CASHIER")
	if err != nil {
		t.Fatalf("mint access: %v", err)
	}
	if _, err := codec.ParseRefresh(access); err == nil {
		t.Fatal("access token must not parse as refresh token")
	}
}

func TestJWTService_SeparateSecrets(t *testing.T) {
	a := NewJWTService("secret-a", "", "iss", time.Minute, time.Hour)
	b := NewJWTService("secret-b", "", "iss", time.Minute, time.Hour)

	raw, _, _ := a.MintAccess(1, domain.AccountKindClient, "")
	if _, err := b.ParseAccess(raw); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("got %v, want ErrTokenInvalid", err)
	}
}

func TestJWTService_Expiry(t *testing.T) {
	codec := NewJWTService("test-secret", "", "iss", -time.Minute, time.Hour)

	raw, _, err := codec.MintAccess(1, domain.AccountKindStaff, "")
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := codec.ParseAccess(raw); !errors.Is(err, domain.ErrTokenExpired) {
		t.Errorf("got %v, want ErrTokenExpired", err)
	}
}

func TestJWTService_Garbage(t *testing.T) {
	codec := newTestCodec()

	for _, raw := range []string{"", "garbage", "a.b.c"} {
		if _, err := codec.ParseAccess(raw); err == nil {
			t.Errorf("ParseAccess(%q) must fail", raw)
		}
	}
}

func TestJWTService_ParseUnverified(t *testing.T) {
	codec := newTestCodec()

	raw, minted, err := codec.MintAccess(9, domain.AccountKindClient, "CLIENT")
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	claims, err := codec.ParseUnverified(raw)
	if err != nil {
		t.Fatalf("parse unverified: %v", err)
	}
	if claims.JTI != minted.JTI || claims.AccountID != 9 {
		t.Errorf("claims mismatch: %+v", claims)
	}
}
