package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Alphonse-K/freres-unis/domain"
)

// JWTService implements domain.TokenCodec with HS256. Access and refresh
// tokens are signed with separate secrets so a leaked refresh secret
// cannot forge access tokens.
type JWTService struct {
	accessSecret  []byte
	refreshSecret []byte
	issuer        string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewJWTService creates a token codec. An empty refreshSecret falls back
// to accessSecret + "refresh".
func NewJWTService(secret, refreshSecret, issuer string, accessTTL, refreshTTL time.Duration) domain.TokenCodec {
	if refreshSecret == "" {
		refreshSecret = secret + "refresh"
	}
	return &JWTService{
		accessSecret:  []byte(secret),
		refreshSecret: []byte(refreshSecret),
		issuer:        issuer,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// MintAccess implements domain.TokenCodec.
func (j *JWTService) MintAccess(accountID uint, kind domain.AccountKind, role string) (string, *domain.TokenClaims, error) {
	return j.mint(accountID, kind, role, domain.TokenTypeAccess, j.accessTTL, j.accessSecret)
}

// MintRefresh implements domain.TokenCodec.
func (j *JWTService) MintRefresh(accountID uint, kind domain.AccountKind, role string) (string, *domain.TokenClaims, error) {
	return j.mint(accountID, kind, role, domain.TokenTypeRefresh, j.refreshTTL, j.refreshSecret)
}

func (j *JWTService) mint(accountID uint, kind domain.AccountKind, role, tokenType string, ttl time.Duration, secret []byte) (string, *domain.TokenClaims, error) {
	now := time.Now().UTC()
	claims := &domain.TokenClaims{
		AccountID:   accountID,
		AccountKind: kind,
		Role:        role,
		TokenType:   tokenType,
		JTI:         uuid.NewString(),
		IssuedAt:    now,
		ExpiresAt:   now.Add(ttl),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":          strconv.FormatUint(uint64(accountID), 10),
		"account_type": string(kind),
		"role":         role,
		"type":         tokenType,
		"jti":          claims.JTI,
		"iss":          j.issuer,
		"iat":          now.Unix(),
		"exp":          claims.ExpiresAt.Unix(),
	})

	signed, err := token.SignedString(secret)
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

// ParseAccess implements domain.TokenCodec.
func (j *JWTService) ParseAccess(token string) (*domain.TokenClaims, error) {
	return j.parse(token, domain.TokenTypeAccess, j.accessSecret)
}

// ParseRefresh implements domain.TokenCodec.
func (j *JWTService) ParseRefresh(token string) (*domain.TokenClaims, error) {
	return j.parse(token, domain.TokenTypeRefresh, j.refreshSecret)
}

func (j *JWTService) parse(tokenString, wantType string, secret []byte) (*domain.TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrTokenMalformed
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenInvalid
	}
	if !token.Valid {
		return nil, domain.ErrTokenInvalid
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, domain.ErrTokenMalformed
	}
	claims, err := claimsFrom(mc)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != wantType {
		return nil, domain.ErrTokenInvalid
	}
	if claims.ExpiresAt.Before(time.Now()) {
		return nil, domain.ErrTokenExpired
	}
	return claims, nil
}

// ParseUnverified implements domain.TokenCodec.
func (j *JWTService) ParseUnverified(tokenString string) (*domain.TokenClaims, error) {
	parser := jwt.NewParser()
	token, _, err := parser.ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return nil, domain.ErrTokenMalformed
	}
	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, domain.ErrTokenMalformed
	}
	return claimsFrom(mc)
}

func claimsFrom(mc jwt.MapClaims) (*domain.TokenClaims, error) {
	sub, ok := mc["sub"].(string)
	if !ok {
		return nil, domain.ErrTokenMalformed
	}
	id, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return nil, domain.ErrTokenMalformed
	}
	kind, ok := mc["account_type"].(string)
	if !ok {
		return nil, domain.ErrTokenMalformed
	}
	tokenType, ok := mc["type"].(string)
	if !ok {
		return nil, domain.ErrTokenMalformed
	}
	jti, ok := mc["jti"].(string)
	if !ok {
		return nil, domain.ErrTokenMalformed
	}
	exp, ok := mc["exp"].(float64)
	if !ok {
		return nil, domain.ErrTokenMalformed
	}
	iat, _ := mc["iat"].(float64)
	role, _ := mc["role"].(string)

	return &domain.TokenClaims{
		AccountID:   uint(id),
		AccountKind: domain.AccountKind(kind),
		Role:        role,
		TokenType:   tokenType,
		JTI:         jti,
		IssuedAt:    time.Unix(int64(iat), 0).UTC(),
		ExpiresAt:   time.Unix(int64(exp), 0).UTC(),
	}, nil
}
