package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/Alphonse-K/freres-unis/domain"
)

// APIKeyConfig tunes credential sizes in raw bytes before URL-safe
// encoding.
type APIKeyConfig struct {
	KeyBytes    int
	SecretBytes int
}

// APIKeyServiceImpl implements domain.APIKeyService. The public key part
// is stored in cleartext for lookup; the secret is stored hashed and
// shown exactly once at creation.
type APIKeyServiceImpl struct {
	keyRepo     domain.APIKeyRepository
	credentials domain.CredentialStore
	audit       domain.AuditSink
	config      APIKeyConfig
}

// NewAPIKeyService creates a new API key service.
func NewAPIKeyService(
	keyRepo domain.APIKeyRepository,
	credentials domain.CredentialStore,
	audit domain.AuditSink,
	config APIKeyConfig,
) domain.APIKeyService {
	return &APIKeyServiceImpl{
		keyRepo:     keyRepo,
		credentials: credentials,
		audit:       audit,
		config:      config,
	}
}

// Create implements domain.APIKeyService. Permissions are granted inline
// and validated against the catalog; unknown strings are rejected rather
// than silently carried.
func (s *APIKeyServiceImpl) Create(ctx context.Context, companyID uint, name string, perms domain.PermissionList, expiresAt *time.Time) (*domain.APIKeyWithSecret, error) {
	for _, p := range perms {
		if !domain.KnownPermission(p) {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnknownPermission, p)
		}
	}

	key, err := randomToken(s.config.KeyBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	secret, err := randomToken(s.config.SecretBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to generate secret: %w", err)
	}
	secretHash, err := s.credentials.Hash(secret)
	if err != nil {
		return nil, fmt.Errorf("failed to hash secret: %w", err)
	}

	apiKey := &domain.APIKey{
		CompanyID:   companyID,
		Name:        name,
		Key:         key,
		SecretHash:  secretHash,
		Permissions: perms,
		IsActive:    true,
		ExpiresAt:   expiresAt,
	}
	if err := s.keyRepo.Create(ctx, apiKey); err != nil {
		return nil, fmt.Errorf("failed to store api key: %w", err)
	}

	s.audit.Record(ctx, domain.AuditEntry{
		ActorKind:  "company",
		ActorID:    companyID,
		TargetKind: "api_key",
		TargetID:   apiKey.ID,
		Action:     "apikey.created",
		Details:    name,
	})

	return &domain.APIKeyWithSecret{APIKey: *apiKey, Secret: secret}, nil
}

// Validate implements domain.APIKeyService. Missing key, inactive key,
// expired key and wrong secret all collapse into ErrAPIKeyInvalid.
func (s *APIKeyServiceImpl) Validate(ctx context.Context, key, secret string) (*domain.APIKey, error) {
	apiKey, err := s.keyRepo.FindActiveByKey(ctx, key)
	if err != nil {
		return nil, domain.ErrAPIKeyInvalid
	}
	if apiKey.Expired(time.Now().UTC()) {
		return nil, domain.ErrAPIKeyInvalid
	}
	if ok, _ := s.credentials.Verify(secret, apiKey.SecretHash); !ok {
		return nil, domain.ErrAPIKeyInvalid
	}

	// Best effort; a missed timestamp is not worth failing the request.
	_ = s.keyRepo.TouchLastUsed(ctx, apiKey.ID, time.Now().UTC())
	return apiKey, nil
}

// List implements domain.APIKeyService.
func (s *APIKeyServiceImpl) List(ctx context.Context, companyID uint) ([]domain.APIKey, error) {
	return s.keyRepo.ListByCompany(ctx, companyID)
}

// Revoke implements domain.APIKeyService.
func (s *APIKeyServiceImpl) Revoke(ctx context.Context, id, companyID uint) error {
	if err := s.keyRepo.Deactivate(ctx, id, companyID); err != nil {
		return err
	}
	s.audit.Record(ctx, domain.AuditEntry{
		ActorKind:  "company",
		ActorID:    companyID,
		TargetKind: "api_key",
		TargetID:   id,
		Action:     "apikey.revoked",
	})
	return nil
}

func randomToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
