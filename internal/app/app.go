package app

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/Alphonse-K/freres-unis/internal/config"
	httpx "github.com/Alphonse-K/freres-unis/internal/http"
	"github.com/Alphonse-K/freres-unis/internal/http/handlers"
	"github.com/Alphonse-K/freres-unis/internal/http/middleware"
	"github.com/Alphonse-K/freres-unis/internal/infrastructure/auth"
	"github.com/Alphonse-K/freres-unis/internal/infrastructure/database"
	"github.com/Alphonse-K/freres-unis/internal/infrastructure/notifications"
	"github.com/Alphonse-K/freres-unis/internal/infrastructure/repositories"
	"github.com/Alphonse-K/freres-unis/internal/services"
)

// Run wires the full service graph and blocks serving HTTP.
func Run(cfg *config.Config, logger *zap.Logger) error {
	gdb, err := database.Open(cfg.DSN)
	if err != nil {
		return err
	}
	if err := database.AutoMigrate(gdb); err != nil {
		return err
	}
	cas, err := auth.NewCasbinService(gdb, cfg.CasbinModelPath)
	if err != nil {
		return err
	}
	rdb := database.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err := rdb.Ping(context.Background()); err != nil {
		return err
	}

	// Infrastructure
	credentials := auth.NewPasswordService()
	codec := auth.NewJWTService(cfg.JWTSecret, cfg.JWTRefreshSecret, cfg.JWTIssuer, cfg.AccessTTL, cfg.RefreshTTL)
	notifier := notifications.NewTwilioService(cfg.TwilioSID, cfg.TwilioToken, cfg.TwilioFrom, logger)

	// Repositories
	accountRepo := repositories.NewAccountRepository(gdb)
	refreshRepo := repositories.NewRefreshTokenRepository(gdb)
	blacklistRepo := repositories.NewTokenBlacklistRepository(gdb)
	otpRepo := repositories.NewOTPRepository(gdb)
	apiKeyRepo := repositories.NewAPIKeyRepository(gdb)
	roleRepo := repositories.NewRoleRepository(gdb)
	auditRepo := repositories.NewAuditLogRepository(gdb)

	// Services
	audit := services.NewAuditService(auditRepo, logger)
	tokenSvc := services.NewTokenService(codec, refreshRepo, blacklistRepo, accountRepo, credentials, rdb.Client, logger)
	otpSvc := services.NewOTPService(otpRepo, accountRepo, notifier, rdb.Client, services.OTPConfig{
		Length:       cfg.OTPLength,
		TTL:          cfg.OTPTTL,
		ResendWindow: cfg.OTPResendWindow,
	}, logger)
	authSvc := services.NewAuthService(accountRepo, credentials, tokenSvc, audit, notifier, services.LockoutConfig{
		MaxFailedAttempts:  cfg.MaxFailedAttempts,
		SuspensionDuration: cfg.SuspensionDuration,
	}, logger)
	apiKeySvc := services.NewAPIKeyService(apiKeyRepo, credentials, audit, services.APIKeyConfig{
		KeyBytes:    cfg.APIKeyBytes,
		SecretBytes: cfg.APISecretBytes,
	})
	enforcer := auth.NewEnforcerWrapper(cas.E)
	permissionSvc := services.NewPermissionService(enforcer)
	roleSvc := services.NewRoleService(roleRepo, accountRepo, enforcer, audit)

	// HTTP surface
	authH := handlers.NewAuthHandlers(authSvc, otpSvc)
	apiKeyH := handlers.NewAPIKeyHandlers(apiKeySvc)
	roleH := handlers.NewRoleHandlers(roleSvc)
	authn := middleware.NewAuthMW(authSvc, apiKeySvc)
	authz := middleware.NewPermissionMW(permissionSvc)

	r := httpx.BuildRouter(authH, apiKeyH, roleH, authn, authz)

	addr := ":" + cfg.Port
	logger.Info("listening", zap.String("addr", addr))
	return http.ListenAndServe(addr, r)
}
