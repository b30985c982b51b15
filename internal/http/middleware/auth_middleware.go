package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Alphonse-K/freres-unis/domain"
)

// Context keys set by the authentication middleware.
const (
	ctxAccount     = "account"
	ctxClaims      = "token_claims"
	ctxAccessToken = "access_token"
	ctxAPIKey      = "api_key"
)

// AuthMW authenticates requests either as an account (Bearer token) or as
// a machine caller (X-API-Key / X-API-Secret header pair).
type AuthMW struct {
	authSvc   domain.AuthService
	apiKeySvc domain.APIKeyService
}

// NewAuthMW creates the authentication middleware.
func NewAuthMW(authSvc domain.AuthService, apiKeySvc domain.APIKeyService) *AuthMW {
	return &AuthMW{authSvc: authSvc, apiKeySvc: apiKeySvc}
}

// Authenticate resolves the caller identity and aborts with 401 when no
// usable credential is presented.
func (mw *AuthMW) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
				c.Abort()
				return
			}
			raw := parts[1]

			account, claims, err := mw.authSvc.ResolveAccessToken(c.Request.Context(), raw)
			if err != nil {
				switch err {
				case domain.ErrTokenExpired:
					c.JSON(http.StatusUnauthorized, gin.H{"error": "Token expired"})
				case domain.ErrTokenRevoked:
					c.JSON(http.StatusUnauthorized, gin.H{"error": "Token revoked"})
				case domain.ErrAccountNotActive:
					c.JSON(http.StatusForbidden, gin.H{"error": "Account is not active"})
				default:
					c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
				}
				c.Abort()
				return
			}

			c.Set(ctxAccount, account)
			c.Set(ctxClaims, claims)
			c.Set(ctxAccessToken, raw)
			c.Next()
			return
		}

		if key := c.GetHeader("X-API-Key"); key != "" {
			apiKey, err := mw.apiKeySvc.Validate(c.Request.Context(), key, c.GetHeader("X-API-Secret"))
			if err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid API key or secret"})
				c.Abort()
				return
			}
			c.Set(ctxAPIKey, apiKey)
			c.Next()
			return
		}

		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		c.Abort()
	}
}

// AccountFrom returns the authenticated account, if the request carried a
// bearer token.
func AccountFrom(c *gin.Context) (domain.Account, bool) {
	v, ok := c.Get(ctxAccount)
	if !ok {
		return nil, false
	}
	account, ok := v.(domain.Account)
	return account, ok
}

// ClaimsFrom returns the verified token claims.
func ClaimsFrom(c *gin.Context) (*domain.TokenClaims, bool) {
	v, ok := c.Get(ctxClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*domain.TokenClaims)
	return claims, ok
}

// AccessTokenFrom returns the raw bearer token of the request.
func AccessTokenFrom(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxAccessToken)
	if !ok {
		return "", false
	}
	raw, ok := v.(string)
	return raw, ok
}

// APIKeyFrom returns the API key identity, if the request authenticated
// with one.
func APIKeyFrom(c *gin.Context) (*domain.APIKey, bool) {
	v, ok := c.Get(ctxAPIKey)
	if !ok {
		return nil, false
	}
	key, ok := v.(*domain.APIKey)
	return key, ok
}
