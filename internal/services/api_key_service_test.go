package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Alphonse-K/freres-unis/domain"
	"github.com/Alphonse-K/freres-unis/internal/mocks"
)

func newAPIKeyFixture() (domain.APIKeyService, *mocks.MockAPIKeyRepository) {
	repo := mocks.NewMockAPIKeyRepository()
	svc := NewAPIKeyService(repo, mocks.NewMockCredentialStore(), mocks.NewMockAuditSink(),
		APIKeyConfig{KeyBytes: 32, SecretBytes: 64})
	return svc, repo
}

func TestAPIKeyService_CreateAndValidate(t *testing.T) {
	svc, repo := newAPIKeyFixture()
	ctx := context.Background()

	created, err := svc.Create(ctx, 10, "warehouse-sync", domain.PermissionList{domain.PermOrderRead, domain.PermInventoryTransfer}, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Secret == "" || created.Key == "" {
		t.Fatal("expected key and secret")
	}
	if created.SecretHash == created.Secret {
		t.Error("secret must be stored hashed")
	}
	if len(repo.Keys) != 1 {
		t.Fatalf("stored keys = %d, want 1", len(repo.Keys))
	}

	validated, err := svc.Validate(ctx, created.Key, created.Secret)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if validated.CompanyID != 10 {
		t.Errorf("company = %d, want 10", validated.CompanyID)
	}
	if !validated.Permissions.Contains(domain.PermOrderRead) {
		t.Error("expected inline permission")
	}

	if _, err := svc.Validate(ctx, created.Key, "wrong-secret"); !errors.Is(err, domain.ErrAPIKeyInvalid) {
		t.Errorf("wrong secret: got %v, want ErrAPIKeyInvalid", err)
	}
	if _, err := svc.Validate(ctx, "no-such-key", created.Secret); !errors.Is(err, domain.ErrAPIKeyInvalid) {
		t.Errorf("unknown key: got %v, want ErrAPIKeyInvalid", err)
	}
}

func TestAPIKeyService_UnknownPermissionRejected(t *testing.T) {
	svc, repo := newAPIKeyFixture()

	_, err := svc.Create(context.Background(), 10, "bad", domain.PermissionList{"order:read", "fly:to_moon"}, nil)
	if !errors.Is(err, domain.ErrUnknownPermission) {
		t.Fatalf("got %v, want ErrUnknownPermission", err)
	}
	if len(repo.Keys) != 0 {
		t.Error("nothing must be stored on rejection")
	}
}

func TestAPIKeyService_Expiry(t *testing.T) {
	svc, _ := newAPIKeyFixture()
	ctx := context.Background()

	past := time.Now().Add(-time.Hour)
	created, err := svc.Create(ctx, 10, "expired", domain.PermissionList{domain.PermOrderRead}, &past)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Validate(ctx, created.Key, created.Secret); !errors.Is(err, domain.ErrAPIKeyInvalid) {
		t.Errorf("expired key: got %v, want ErrAPIKeyInvalid", err)
	}
}

func TestAPIKeyService_Revoke(t *testing.T) {
	svc, _ := newAPIKeyFixture()
	ctx := context.Background()

	created, err := svc.Create(ctx, 10, "short-lived", domain.PermissionList{domain.PermOrderRead}, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Scoped by company: another tenant cannot revoke it.
	if err := svc.Revoke(ctx, created.ID, 99); !errors.Is(err, domain.ErrAPIKeyNotFound) {
		t.Errorf("cross-tenant revoke: got %v, want ErrAPIKeyNotFound", err)
	}

	if err := svc.Revoke(ctx, created.ID, 10); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := svc.Validate(ctx, created.Key, created.Secret); !errors.Is(err, domain.ErrAPIKeyInvalid) {
		t.Errorf("revoked key: got %v, want ErrAPIKeyInvalid", err)
	}
}
