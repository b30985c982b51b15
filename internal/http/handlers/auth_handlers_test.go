package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Alphonse-K/freres-unis/domain"
	"github.com/Alphonse-K/freres-unis/internal/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func postJSON(t *testing.T, r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func loginRouter(authSvc domain.AuthService, otpSvc domain.OTPService) *gin.Engine {
	h := NewAuthHandlers(authSvc, otpSvc)
	r := gin.New()
	r.POST("/auth/login/password", h.Login)
	r.POST("/auth/login/pin", h.LoginPIN)
	r.POST("/auth/verify-otp", h.VerifyOTP)
	r.POST("/auth/refresh", h.Refresh)
	return r
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body struct {
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body.Data
}

func TestAuthHandlers_PasswordLogin(t *testing.T) {
	staff := &domain.StaffUser{
		ID: 1, Email: "jdoe@example.com", Username: "jdoe",
		Status: domain.StaffActive,
		Roles:  []domain.Role{{Name: "MANAGER"}},
	}
	authSvc := mocks.NewMockAuthService()
	authSvc.AuthenticateFunc = func(ctx context.Context, identifier, secret, mode string, device domain.DeviceInfo) (domain.Account, error) {
		if identifier == "jdoe@example.com" && secret == "Passw0rd!" && mode == domain.AuthModePassword {
			return staff, nil
		}
		return nil, domain.ErrInvalidCredentials
	}
	authSvc.CompleteLoginFunc = func(ctx context.Context, account domain.Account, device domain.DeviceInfo) (*domain.TokenPair, error) {
		return &domain.TokenPair{AccessToken: "at", RefreshToken: "rt", TokenType: "Bearer", ExpiresAt: time.Now().Add(15 * time.Minute)}, nil
	}

	r := loginRouter(authSvc, mocks.NewMockOTPService())

	w := postJSON(t, r, "/auth/login/password", LoginRequest{Identifier: "jdoe@example.com", Password: "Passw0rd!"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	data := decodeData(t, w)
	if data["access_token"] != "at" || data["refresh_token"] != "rt" {
		t.Errorf("tokens missing: %v", data)
	}
	account := data["account"].(map[string]any)
	if account["account_type"] != "staff" {
		t.Errorf("account_type = %v, want staff", account["account_type"])
	}

	w = postJSON(t, r, "/auth/login/password", LoginRequest{Identifier: "jdoe@example.com", Password: "wrong"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad password: status = %d", w.Code)
	}
}

func TestAuthHandlers_OTPStepUp(t *testing.T) {
	staff := &domain.StaffUser{ID: 1, Email: "jdoe@example.com", Status: domain.StaffActive}
	authSvc := mocks.NewMockAuthService()
	authSvc.AuthenticateFunc = func(ctx context.Context, identifier, secret, mode string, device domain.DeviceInfo) (domain.Account, error) {
		return staff, nil
	}
	authSvc.IsOTPRequiredFunc = func(account domain.Account, device domain.DeviceInfo) bool { return true }

	otpSvc := mocks.NewMockOTPService()
	otpSvc.VerifyFunc = func(ctx context.Context, identifier, code, purpose string) (domain.Account, error) {
		if identifier == "jdoe@example.com" && code == "123456" && purpose == domain.OTPPurposeLogin {
			return staff, nil
		}
		return nil, domain.ErrOTPInvalid
	}

	r := loginRouter(authSvc, otpSvc)

	// Step 1: correct password answers with a challenge, not tokens. The
	// code itself never appears in the response.
	w := postJSON(t, r, "/auth/login/password", LoginRequest{Identifier: "jdoe@example.com", Password: "Passw0rd!"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	data := decodeData(t, w)
	if data["otp_required"] != true {
		t.Fatalf("expected otp challenge, got %v", data)
	}
	if _, leaked := data["access_token"]; leaked {
		t.Error("tokens must not be issued before otp verification")
	}
	if bytes.Contains(w.Body.Bytes(), []byte("123456")) {
		t.Error("otp code must not leak into the response")
	}

	// Step 2: the code completes the login.
	w = postJSON(t, r, "/auth/verify-otp", OTPVerifyRequest{Identifier: "jdoe@example.com", Code: "123456"})
	if w.Code != http.StatusOK {
		t.Fatalf("verify status = %d", w.Code)
	}
	data = decodeData(t, w)
	if data["access_token"] == "" {
		t.Error("expected tokens after otp verification")
	}

	w = postJSON(t, r, "/auth/verify-otp", OTPVerifyRequest{Identifier: "jdoe@example.com", Code: "999999"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong code: status = %d", w.Code)
	}
}

func TestAuthHandlers_PINLogin(t *testing.T) {
	pos := &domain.POSUser{
		ID: 2, Phone: "+224620000001", Username: "cashier1",
		IsActive: true,
		Roles:    []domain.Role{{Name: "CASHIER"}},
	}
	authSvc := mocks.NewMockAuthService()
	authSvc.AuthenticateFunc = func(ctx context.Context, identifier, secret, mode string, device domain.DeviceInfo) (domain.Account, error) {
		if mode != domain.AuthModePIN {
			t.Errorf("mode = %q, want pin", mode)
		}
		if identifier == "+224620000001" && secret == "4321" {
			return pos, nil
		}
		return nil, domain.ErrInvalidCredentials
	}

	r := loginRouter(authSvc, mocks.NewMockOTPService())

	w := postJSON(t, r, "/auth/login/pin", PINLoginRequest{Phone: "+224620000001", PIN: "4321"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	account := decodeData(t, w)["account"].(map[string]any)
	if account["account_type"] != "pos" {
		t.Errorf("account_type = %v, want pos", account["account_type"])
	}
}

func TestAuthHandlers_SuspensionResponse(t *testing.T) {
	authSvc := mocks.NewMockAuthService()
	authSvc.AuthenticateFunc = func(ctx context.Context, identifier, secret, mode string, device domain.DeviceInfo) (domain.Account, error) {
		return nil, &domain.SuspensionError{Until: time.Now().Add(20 * time.Minute)}
	}

	r := loginRouter(authSvc, mocks.NewMockOTPService())

	w := postJSON(t, r, "/auth/login/password", LoginRequest{Identifier: "jdoe@example.com", Password: "Passw0rd!"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
	var body struct {
		RetryAfterMinutes int `json:"retry_after_minutes"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.RetryAfterMinutes <= 0 || body.RetryAfterMinutes > 20 {
		t.Errorf("retry_after_minutes = %d", body.RetryAfterMinutes)
	}
}

func TestAuthHandlers_Refresh(t *testing.T) {
	staff := &domain.StaffUser{ID: 1, Email: "jdoe@example.com", Status: domain.StaffActive}
	authSvc := mocks.NewMockAuthService()
	authSvc.RefreshFunc = func(ctx context.Context, rawRefresh string, device domain.DeviceInfo) (*domain.TokenPair, domain.Account, error) {
		if rawRefresh != "good-refresh" {
			return nil, nil, domain.ErrRefreshTokenInvalid
		}
		return &domain.TokenPair{AccessToken: "new-at", RefreshToken: "new-rt", TokenType: "Bearer"}, staff, nil
	}

	r := loginRouter(authSvc, mocks.NewMockOTPService())

	w := postJSON(t, r, "/auth/refresh", RefreshRequest{RefreshToken: "good-refresh"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if decodeData(t, w)["access_token"] != "new-at" {
		t.Error("expected rotated tokens")
	}

	w = postJSON(t, r, "/auth/refresh", RefreshRequest{RefreshToken: "stale"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("stale refresh: status = %d", w.Code)
	}

	w = postJSON(t, r, "/auth/refresh", map[string]string{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing body: status = %d", w.Code)
	}
}
