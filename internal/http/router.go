package httpx

import (
	"github.com/gin-gonic/gin"

	"github.com/Alphonse-K/freres-unis/domain"
	"github.com/Alphonse-K/freres-unis/internal/http/handlers"
	"github.com/Alphonse-K/freres-unis/internal/http/middleware"
)

// BuildRouter wires the HTTP surface. Every protected route names the
// permission it requires; authorization logic lives in the middleware,
// not in handlers.
func BuildRouter(
	ah *handlers.AuthHandlers,
	kh *handlers.APIKeyHandlers,
	rh *handlers.RoleHandlers,
	authn *middleware.AuthMW,
	authz *middleware.PermissionMW,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	auth := r.Group("/auth")
	auth.POST("/login/password", ah.Login)
	auth.POST("/login/pin", ah.LoginPIN)
	auth.POST("/verify-otp", ah.VerifyOTP)
	auth.POST("/refresh", ah.Refresh)

	me := r.Group("/auth").Use(authn.Authenticate())
	me.GET("/me", ah.Me)
	me.POST("/logout", ah.Logout)
	me.POST("/logout-all", ah.LogoutAll)
	me.POST("/change-password", ah.ChangePassword)
	me.POST("/change-pin", ah.ChangePIN)

	keys := r.Group("/auth/api-keys").Use(authn.Authenticate(), authz.Require(domain.PermAuthManageAPIKeys))
	keys.POST("", kh.Create)
	keys.GET("", kh.List)
	keys.DELETE("/:id", kh.Revoke)

	roles := r.Group("/roles").Use(authn.Authenticate())
	roles.GET("", authz.Require(domain.PermRoleRead), rh.List)
	roles.GET("/:id", authz.Require(domain.PermRoleRead), rh.Get)
	roles.POST("", authz.Require(domain.PermRoleCreate), rh.Create)
	roles.PUT("/:id", authz.Require(domain.PermRoleUpdate), rh.Rename)
	roles.DELETE("/:id", authz.Require(domain.PermRoleDelete), rh.Delete)
	roles.PUT("/:id/permissions", authz.Require(domain.PermRoleUpdate), rh.SetPermissions)

	r.GET("/permissions", authn.Authenticate(), authz.Require(domain.PermRoleRead), rh.Permissions)

	accounts := r.Group("/accounts").Use(authn.Authenticate())
	accounts.PUT("/:kind/:id/roles", authz.Require(domain.PermUserAssignRole), rh.AssignRoles)

	return r
}
