package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Token type discriminators carried in the "type" claim. A refresh token
// presented where an access token is expected must be rejected.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// TokenClaims is the decoded claim set of a signed token.
type TokenClaims struct {
	AccountID   uint        `json:"sub"`
	AccountKind AccountKind `json:"account_type"`
	Role        string      `json:"role"`
	TokenType   string      `json:"type"`
	JTI         string      `json:"jti"`
	IssuedAt    time.Time   `json:"iat"`
	ExpiresAt   time.Time   `json:"exp"`
}

// TokenPair is what a successful login, OTP verification or refresh
// rotation returns. The raw refresh token appears here exactly once and is
// never stored in cleartext.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
	JTI          string    `json:"jti"`
}

// DeviceInfo is the request metadata stamped onto refresh tokens and audit
// records.
type DeviceInfo struct {
	IP        string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
}

// RefreshToken is the persisted, hashed form of an issued refresh token.
// One row per issued token; rotation and logout flip IsActive.
type RefreshToken struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	AccountID   uint        `gorm:"index:idx_refresh_account" json:"account_id"`
	AccountKind AccountKind `gorm:"index:idx_refresh_account;size:20" json:"account_type"`
	// TokenHash is bcrypt over the raw refresh token, so a leaked table
	// cannot be replayed.
	TokenHash string `gorm:"column:token;size:255" json:"-"`
	// AccessJTI pairs the row with the access token minted alongside it,
	// so single-device logout can deactivate exactly this row.
	AccessJTI string    `gorm:"size:36;index" json:"-"`
	IP        string    `gorm:"size:45" json:"ip_address"`
	UserAgent string    `gorm:"size:255" json:"user_agent"`
	ExpiresAt time.Time `gorm:"index" json:"expires_at"`
	IsActive  bool      `gorm:"index" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func (RefreshToken) TableName() string { return "refresh_tokens" }

// BlacklistedToken records a revoked access token. An access token is
// rejected if its JTI appears here even while cryptographically valid.
type BlacklistedToken struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	JTI         string      `gorm:"uniqueIndex;size:36" json:"jti"`
	AccountID   uint        `gorm:"index:idx_blacklist_account" json:"account_id"`
	AccountKind AccountKind `gorm:"index:idx_blacklist_account;size:20" json:"account_type"`
	Token       string      `gorm:"size:500" json:"-"`
	ExpiresAt   time.Time   `gorm:"index" json:"expires_at"`
	Reason      string      `gorm:"size:50" json:"reason"`
	RevokedAt   time.Time   `gorm:"autoCreateTime" json:"revoked_at"`
}

func (BlacklistedToken) TableName() string { return "jwt_blacklist" }

// OTP purposes.
const (
	OTPPurposeLogin         = "login"
	OTPPurposePasswordReset = "password_reset"
)

// OTPCode is a single-use step-up code. At most one unused code exists per
// (account, purpose); generating a new one removes its predecessors.
type OTPCode struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	AccountID   uint        `gorm:"index:idx_otp_account" json:"account_id"`
	AccountKind AccountKind `gorm:"index:idx_otp_account;size:20" json:"account_type"`
	Code        string      `gorm:"size:6" json:"-"`
	Purpose     string      `gorm:"size:20" json:"purpose"`
	ExpiresAt   time.Time   `gorm:"index" json:"expires_at"`
	IsUsed      bool        `gorm:"default:false" json:"is_used"`
	CreatedAt   time.Time   `json:"created_at"`
}

func (OTPCode) TableName() string { return "otp_codes" }

// PermissionList is the inline permission grant of an API key, stored as a
// JSON column.
type PermissionList []string

func (p PermissionList) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (p *PermissionList) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*p = nil
		return nil
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	default:
		return fmt.Errorf("unsupported permission list type %T", src)
	}
}

// Contains reports whether the inline grant includes the permission.
func (p PermissionList) Contains(perm string) bool {
	for _, v := range p {
		if v == perm {
			return true
		}
	}
	return false
}

// APIKey authenticates machine-to-machine callers outside the role system.
// The secret is stored hashed; the raw secret is shown once at creation.
type APIKey struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CompanyID   uint           `gorm:"index" json:"company_id"`
	Name        string         `gorm:"size:100" json:"name"`
	Key         string         `gorm:"uniqueIndex;size:64" json:"key"`
	SecretHash  string         `gorm:"column:secret;size:255" json:"-"`
	Permissions PermissionList `gorm:"type:text" json:"permissions"`
	IsActive    bool           `gorm:"index" json:"is_active"`
	ExpiresAt   *time.Time     `json:"expires_at,omitempty"`
	LastUsed    *time.Time     `json:"last_used,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

func (APIKey) TableName() string { return "api_keys" }

// Expired reports whether the key has passed its optional expiry.
func (k *APIKey) Expired(now time.Time) bool {
	return k.ExpiresAt != nil && k.ExpiresAt.Before(now)
}
