package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Alphonse-K/freres-unis/domain"
	"github.com/Alphonse-K/freres-unis/internal/mocks"
)

type otpFixture struct {
	svc      domain.OTPService
	repo     *mocks.MockOTPRepository
	accounts *mocks.MockAccountRepository
	notifier *mocks.MockNotificationService
	staff    *domain.StaffUser
}

func newOTPFixture(t *testing.T, cache *redis.Client) *otpFixture {
	t.Helper()

	staff := activeStaff("jdoe@example.com")
	accounts := mocks.NewMockAccountRepository()
	accounts.FindStaffByEmailFunc = func(ctx context.Context, email string) (*domain.StaffUser, error) {
		if email == staff.Email {
			return staff, nil
		}
		return nil, domain.ErrAccountNotFound
	}

	repo := mocks.NewMockOTPRepository()
	notifier := mocks.NewMockNotificationService()
	svc := NewOTPService(repo, accounts, notifier, cache, OTPConfig{
		Length:       6,
		TTL:          5 * time.Minute,
		ResendWindow: time.Minute,
	}, zap.NewNop())

	return &otpFixture{svc: svc, repo: repo, accounts: accounts, notifier: notifier, staff: staff}
}

func TestOTPService_GenerateAndVerify(t *testing.T) {
	fx := newOTPFixture(t, nil)
	ctx := context.Background()

	code, err := fx.svc.Generate(ctx, fx.staff, domain.OTPPurposeLogin)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(code) != 6 {
		t.Errorf("code length = %d, want 6", len(code))
	}
	if len(fx.notifier.SentEmails) != 1 {
		t.Errorf("emails sent = %d, want 1", len(fx.notifier.SentEmails))
	}

	account, err := fx.svc.Verify(ctx, "jdoe@example.com", code, domain.OTPPurposeLogin)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if account.AccountID() != fx.staff.ID {
		t.Error("verified wrong account")
	}

	// Single use.
	if _, err := fx.svc.Verify(ctx, "jdoe@example.com", code, domain.OTPPurposeLogin); !errors.Is(err, domain.ErrOTPInvalid) {
		t.Errorf("replay: got %v, want ErrOTPInvalid", err)
	}
}

func TestOTPService_NewCodeInvalidatesPrevious(t *testing.T) {
	fx := newOTPFixture(t, nil)
	ctx := context.Background()

	first, err := fx.svc.Generate(ctx, fx.staff, domain.OTPPurposeLogin)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	second, err := fx.svc.Generate(ctx, fx.staff, domain.OTPPurposeLogin)
	if err != nil {
		t.Fatalf("generate second: %v", err)
	}

	if first != second {
		if _, err := fx.svc.Verify(ctx, "jdoe@example.com", first, domain.OTPPurposeLogin); !errors.Is(err, domain.ErrOTPInvalid) {
			t.Errorf("superseded code: got %v, want ErrOTPInvalid", err)
		}
	}
	if _, err := fx.svc.Verify(ctx, "jdoe@example.com", second, domain.OTPPurposeLogin); err != nil {
		t.Errorf("latest code: %v", err)
	}
}

func TestOTPService_PurposesAreSeparate(t *testing.T) {
	fx := newOTPFixture(t, nil)
	ctx := context.Background()

	code, err := fx.svc.Generate(ctx, fx.staff, domain.OTPPurposeLogin)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := fx.svc.Verify(ctx, "jdoe@example.com", code, domain.OTPPurposePasswordReset); !errors.Is(err, domain.ErrOTPInvalid) {
		t.Errorf("wrong purpose: got %v, want ErrOTPInvalid", err)
	}
}

func TestOTPService_UniformFailures(t *testing.T) {
	fx := newOTPFixture(t, nil)
	ctx := context.Background()

	// Unknown identifier and wrong code are indistinguishable.
	if _, err := fx.svc.Verify(ctx, "ghost@example.com", "000000", domain.OTPPurposeLogin); !errors.Is(err, domain.ErrOTPInvalid) {
		t.Errorf("unknown identifier: got %v, want ErrOTPInvalid", err)
	}
	if _, err := fx.svc.Verify(ctx, "jdoe@example.com", "000000", domain.OTPPurposeLogin); !errors.Is(err, domain.ErrOTPInvalid) {
		t.Errorf("wrong code: got %v, want ErrOTPInvalid", err)
	}
}

func TestOTPService_Expiry(t *testing.T) {
	fx := newOTPFixture(t, nil)
	ctx := context.Background()

	code, err := fx.svc.Generate(ctx, fx.staff, domain.OTPPurposeLogin)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	for i := range fx.repo.Codes {
		fx.repo.Codes[i].ExpiresAt = time.Now().Add(-time.Second)
	}

	if _, err := fx.svc.Verify(ctx, "jdoe@example.com", code, domain.OTPPurposeLogin); !errors.Is(err, domain.ErrOTPInvalid) {
		t.Errorf("expired code: got %v, want ErrOTPInvalid", err)
	}
}

func TestOTPService_ResendThrottle(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	fx := newOTPFixture(t, cache)
	ctx := context.Background()

	if _, err := fx.svc.Generate(ctx, fx.staff, domain.OTPPurposeLogin); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := fx.svc.Generate(ctx, fx.staff, domain.OTPPurposeLogin); !errors.Is(err, domain.ErrOTPThrottled) {
		t.Fatalf("immediate resend: got %v, want ErrOTPThrottled", err)
	}

	mr.FastForward(time.Minute + time.Second)
	if _, err := fx.svc.Generate(ctx, fx.staff, domain.OTPPurposeLogin); err != nil {
		t.Errorf("resend after window: %v", err)
	}
}

func TestOTPService_SMSFallback(t *testing.T) {
	fx := newOTPFixture(t, nil)
	pos := activePOSUser("+224620000001")
	pos.Email = ""

	if _, err := fx.svc.Generate(context.Background(), pos, domain.OTPPurposeLogin); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(fx.notifier.SentSMS) != 1 {
		t.Errorf("sms sent = %d, want 1", len(fx.notifier.SentSMS))
	}
	if len(fx.notifier.SentEmails) != 0 {
		t.Errorf("emails sent = %d, want 0", len(fx.notifier.SentEmails))
	}
}
