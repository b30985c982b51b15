package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Alphonse-K/freres-unis/domain"
	"github.com/Alphonse-K/freres-unis/internal/http/middleware"
)

// AuthHandlers handles login, OTP step-up, token lifecycle and credential
// change requests.
type AuthHandlers struct {
	authSvc domain.AuthService
	otpSvc  domain.OTPService
}

// NewAuthHandlers creates new auth handlers.
func NewAuthHandlers(authSvc domain.AuthService, otpSvc domain.OTPService) *AuthHandlers {
	return &AuthHandlers{authSvc: authSvc, otpSvc: otpSvc}
}

// LoginRequest is a password login. The identifier is an email for staff
// and a phone number for POS users and clients.
type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// PINLoginRequest is a PIN login for POS users and clients.
type PINLoginRequest struct {
	Phone string `json:"phone" binding:"required"`
	PIN   string `json:"pin" binding:"required"`
}

// OTPVerifyRequest completes a step-up login.
type OTPVerifyRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Code       string `json:"code" binding:"required"`
}

// RefreshRequest exchanges a refresh token for a fresh pair.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ChangePasswordRequest rotates the caller's password. OldPassword is
// empty on first-time setup.
type ChangePasswordRequest struct {
	OldPassword     string `json:"old_password"`
	NewPassword     string `json:"new_password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// ChangePINRequest rotates the caller's PIN.
type ChangePINRequest struct {
	OldPIN     string `json:"old_pin"`
	NewPIN     string `json:"new_pin" binding:"required"`
	ConfirmPIN string `json:"confirm_pin" binding:"required"`
}

// Login handles password logins. A staff login may answer with an OTP
// challenge instead of tokens; the code travels out of band.
func (h *AuthHandlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	device := deviceInfo(c)
	account, err := h.authSvc.Authenticate(c.Request.Context(), req.Identifier, req.Password, domain.AuthModePassword, device)
	if err != nil {
		writeAuthError(c, err)
		return
	}

	if h.authSvc.IsOTPRequired(account, device) {
		if _, err := h.otpSvc.Generate(c.Request.Context(), account, domain.OTPPurposeLogin); err != nil && !errors.Is(err, domain.ErrOTPThrottled) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send verification code"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"data": gin.H{
				"otp_required": true,
				"message":      "Verification code sent",
			},
		})
		return
	}

	pair, err := h.authSvc.CompleteLogin(c.Request.Context(), account, device)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}
	c.JSON(http.StatusOK, loginResponse(account, pair))
}

// LoginPIN handles PIN logins for POS users and clients.
func (h *AuthHandlers) LoginPIN(c *gin.Context) {
	var req PINLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	device := deviceInfo(c)
	account, err := h.authSvc.Authenticate(c.Request.Context(), req.Phone, req.PIN, domain.AuthModePIN, device)
	if err != nil {
		writeAuthError(c, err)
		return
	}

	pair, err := h.authSvc.CompleteLogin(c.Request.Context(), account, device)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}
	c.JSON(http.StatusOK, loginResponse(account, pair))
}

// VerifyOTP consumes a step-up code and completes the pending login.
func (h *AuthHandlers) VerifyOTP(c *gin.Context) {
	var req OTPVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	account, err := h.otpSvc.Verify(c.Request.Context(), req.Identifier, req.Code, domain.OTPPurposeLogin)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired verification code"})
		return
	}

	pair, err := h.authSvc.CompleteLogin(c.Request.Context(), account, deviceInfo(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}
	c.JSON(http.StatusOK, loginResponse(account, pair))
}

// Refresh rotates a refresh token. The presented token is single-use.
func (h *AuthHandlers) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pair, account, err := h.authSvc.Refresh(c.Request.Context(), req.RefreshToken, deviceInfo(c))
	if err != nil {
		if errors.Is(err, domain.ErrRefreshTokenInvalid) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired refresh token"})
			return
		}
		writeAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, loginResponse(account, pair))
}

// Logout revokes the presented access token and its paired refresh token.
func (h *AuthHandlers) Logout(c *gin.Context) {
	account, _ := middleware.AccountFrom(c)
	raw, _ := middleware.AccessTokenFrom(c)
	if account == nil || raw == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	if err := h.authSvc.Logout(c.Request.Context(), account, raw); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Logout failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"message": "Logged out"}})
}

// LogoutAll revokes the presented access token and every active refresh
// token of the account.
func (h *AuthHandlers) LogoutAll(c *gin.Context) {
	account, _ := middleware.AccountFrom(c)
	raw, _ := middleware.AccessTokenFrom(c)
	if account == nil || raw == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	if err := h.authSvc.LogoutAll(c.Request.Context(), account, raw); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Logout failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"message": "Logged out everywhere"}})
}

// ChangePassword rotates the caller's password.
func (h *AuthHandlers) ChangePassword(c *gin.Context) {
	account, ok := middleware.AccountFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.authSvc.ChangePassword(c.Request.Context(), account, req.OldPassword, req.NewPassword, req.ConfirmPassword, deviceInfo(c))
	if err != nil {
		writeAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"message": "Password changed"}})
}

// ChangePIN rotates the caller's PIN.
func (h *AuthHandlers) ChangePIN(c *gin.Context) {
	account, ok := middleware.AccountFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req ChangePINRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.authSvc.ChangePIN(c.Request.Context(), account, req.OldPIN, req.NewPIN, req.ConfirmPIN, deviceInfo(c))
	if err != nil {
		writeAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"message": "PIN changed"}})
}

// Me returns the authenticated account.
func (h *AuthHandlers) Me(c *gin.Context) {
	account, ok := middleware.AccountFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": accountPayload(account)})
}

func deviceInfo(c *gin.Context) domain.DeviceInfo {
	return domain.DeviceInfo{
		IP:        c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
	}
}

func loginResponse(account domain.Account, pair *domain.TokenPair) gin.H {
	return gin.H{
		"data": gin.H{
			"access_token":  pair.AccessToken,
			"refresh_token": pair.RefreshToken,
			"token_type":    pair.TokenType,
			"expires_at":    pair.ExpiresAt,
			"account":       accountPayload(account),
		},
	}
}

func accountPayload(account domain.Account) gin.H {
	return gin.H{
		"id":           account.AccountID(),
		"account_type": account.Kind(),
		"identifier":   account.Identifier(),
		"name":         account.DisplayName(),
		"roles":        account.RoleNames(),
	}
}

// writeAuthError maps domain errors onto HTTP statuses. Suspensions carry
// a retry hint in minutes.
func writeAuthError(c *gin.Context, err error) {
	var suspension *domain.SuspensionError
	if errors.As(err, &suspension) {
		c.JSON(http.StatusForbidden, gin.H{
			"error":               "Account temporarily suspended",
			"retry_after_minutes": suspension.RemainingMinutes(),
		})
		return
	}

	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
	case errors.Is(err, domain.ErrAccountSuspended):
		c.JSON(http.StatusForbidden, gin.H{"error": "Account temporarily suspended"})
	case errors.Is(err, domain.ErrAccountNotActive):
		c.JSON(http.StatusForbidden, gin.H{"error": "Account is not active"})
	case errors.Is(err, domain.ErrLoginOutsideHours):
		c.JSON(http.StatusForbidden, gin.H{"error": "Login not allowed at this time"})
	case errors.Is(err, domain.ErrPINNotSupported):
		c.JSON(http.StatusForbidden, gin.H{"error": "PIN login is not supported for this account"})
	case errors.Is(err, domain.ErrUnsupportedAuthMode):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported authentication mode"})
	case errors.Is(err, domain.ErrIdentifierRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email or phone required"})
	case errors.Is(err, domain.ErrWeakSecret):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Secret does not meet complexity requirements"})
	case errors.Is(err, domain.ErrSecretMismatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": "New secrets do not match"})
	case errors.Is(err, domain.ErrSecretReused):
		c.JSON(http.StatusBadRequest, gin.H{"error": "New secret must differ from the old one"})
	case errors.Is(err, domain.ErrOldSecretIncorrect):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Old secret is incorrect"})
	case errors.Is(err, domain.ErrTokenExpired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token expired"})
	case errors.Is(err, domain.ErrTokenRevoked):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token revoked"})
	case errors.Is(err, domain.ErrTokenInvalid), errors.Is(err, domain.ErrTokenMalformed):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Request failed"})
	}
}
