package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Alphonse-K/freres-unis/domain"
)

// PermissionMW authorizes authenticated callers. Accounts are resolved
// through their roles; API keys carry their grant inline and never touch
// the role system.
type PermissionMW struct {
	checker domain.PermissionChecker
}

// NewPermissionMW creates the authorization middleware.
func NewPermissionMW(checker domain.PermissionChecker) *PermissionMW {
	return &PermissionMW{checker: checker}
}

// Require aborts with 403 unless the caller holds the permission. Must
// run after AuthMW.Authenticate.
func (mw *PermissionMW) Require(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey, ok := APIKeyFrom(c); ok {
			if !apiKey.Permissions.Contains(permission) {
				c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
				c.Abort()
				return
			}
			c.Next()
			return
		}

		account, ok := AccountFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}

		allowed, err := mw.checker.AccountHasPermission(account, permission)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Permission check failed"})
			c.Abort()
			return
		}
		if !allowed {
			c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			c.Abort()
			return
		}
		c.Next()
	}
}
