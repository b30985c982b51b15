package auth

import (
	"crypto/sha256"

	"golang.org/x/crypto/bcrypt"

	"github.com/Alphonse-K/freres-unis/domain"
)

// PasswordService implements domain.CredentialStore.
//
// Current scheme: bcrypt over the SHA-256 digest of the secret. The
// pre-digest keeps arbitrarily long secrets inside bcrypt's 72-byte input
// limit. Legacy scheme: bcrypt directly over the plaintext; still accepted
// on verify so pre-migration hashes keep working, with the caller expected
// to re-hash on a successful legacy match.
type PasswordService struct {
	cost int
}

// NewPasswordService creates a credential store with the default bcrypt
// cost.
func NewPasswordService() domain.CredentialStore {
	return &PasswordService{cost: bcrypt.DefaultCost}
}

// Hash implements domain.CredentialStore.
func (p *PasswordService) Hash(secret string) (string, error) {
	sum := sha256.Sum256([]byte(secret))
	hashed, err := bcrypt.GenerateFromPassword(sum[:], p.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify implements domain.CredentialStore. The current scheme is tried
// first, the legacy scheme second. bcrypt errors on malformed stored
// hashes are treated as "no match" for that scheme.
func (p *PasswordService) Verify(secret, storedHash string) (ok bool, legacy bool) {
	sum := sha256.Sum256([]byte(secret))
	if err := bcrypt.CompareHashAndPassword([]byte(storedHash), sum[:]); err == nil {
		return true, false
	}
	if err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(secret)); err == nil {
		return true, true
	}
	return false, false
}
