package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Alphonse-K/freres-unis/domain"
)

// OTPConfig tunes code generation and delivery.
type OTPConfig struct {
	Length       int
	TTL          time.Duration
	ResendWindow time.Duration
}

// OTPServiceImpl implements domain.OTPService. Codes live in the database
// so they survive restarts; the resend throttle lives in Redis because it
// is pure rate-limit state.
type OTPServiceImpl struct {
	otpRepo     domain.OTPRepository
	accountRepo domain.AccountRepository
	notifier    domain.NotificationService
	cache       *redis.Client
	config      OTPConfig
	logger      *zap.Logger
}

// NewOTPService creates a new OTP service. cache may be nil, which
// disables resend throttling.
func NewOTPService(
	otpRepo domain.OTPRepository,
	accountRepo domain.AccountRepository,
	notifier domain.NotificationService,
	cache *redis.Client,
	config OTPConfig,
	logger *zap.Logger,
) domain.OTPService {
	return &OTPServiceImpl{
		otpRepo:     otpRepo,
		accountRepo: accountRepo,
		notifier:    notifier,
		cache:       cache,
		config:      config,
		logger:      logger,
	}
}

// Generate implements domain.OTPService. At most one unused code per
// (account, purpose): prior unused codes are deleted before the new one is
// stored.
func (s *OTPServiceImpl) Generate(ctx context.Context, account domain.Account, purpose string) (string, error) {
	if s.cache != nil {
		key := fmt.Sprintf("otp:res:%s:%d:%s", account.Kind(), account.AccountID(), purpose)
		set, err := s.cache.SetNX(ctx, key, 1, s.config.ResendWindow).Result()
		if err != nil {
			s.logger.Warn("otp throttle check failed", zap.Error(err))
		} else if !set {
			return "", domain.ErrOTPThrottled
		}
	}

	if err := s.otpRepo.DeleteUnused(ctx, account.Kind(), account.AccountID(), purpose); err != nil {
		return "", fmt.Errorf("failed to invalidate previous codes: %w", err)
	}

	code, err := s.generateCode()
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}

	otp := &domain.OTPCode{
		AccountID:   account.AccountID(),
		AccountKind: account.Kind(),
		Code:        code,
		Purpose:     purpose,
		ExpiresAt:   time.Now().UTC().Add(s.config.TTL),
	}
	if err := s.otpRepo.Create(ctx, otp); err != nil {
		return "", fmt.Errorf("failed to store code: %w", err)
	}

	s.dispatch(account, code)
	return code, nil
}

// Verify implements domain.OTPService. Any failure, including an unknown
// identifier, surfaces as ErrOTPInvalid.
func (s *OTPServiceImpl) Verify(ctx context.Context, identifier, code, purpose string) (domain.Account, error) {
	account, err := s.resolveAccount(ctx, identifier)
	if err != nil {
		return nil, domain.ErrOTPInvalid
	}

	otp, err := s.otpRepo.FindValid(ctx, account.Kind(), account.AccountID(), code, purpose, time.Now().UTC())
	if err != nil {
		return nil, domain.ErrOTPInvalid
	}
	if err := s.otpRepo.MarkUsed(ctx, otp.ID); err != nil {
		return nil, fmt.Errorf("failed to consume code: %w", err)
	}
	return account, nil
}

func (s *OTPServiceImpl) resolveAccount(ctx context.Context, identifier string) (domain.Account, error) {
	if strings.Contains(identifier, "@") {
		return s.accountRepo.FindStaffByEmail(ctx, identifier)
	}
	if u, err := s.accountRepo.FindPOSUserByPhone(ctx, identifier); err == nil {
		return u, nil
	}
	return s.accountRepo.FindClientByPhone(ctx, identifier)
}

// dispatch delivers the code, preferring email over SMS. Delivery failure
// is logged, not fatal: the code is already stored and can be re-sent.
func (s *OTPServiceImpl) dispatch(account domain.Account, code string) {
	msg := fmt.Sprintf("Your verification code is %s. It expires in %d minutes.",
		code, int(s.config.TTL.Minutes()))

	if email := account.ContactEmail(); email != "" {
		if err := s.notifier.SendEmail(email, "Verification code", msg); err == nil {
			return
		} else {
			s.logger.Warn("otp email delivery failed", zap.Error(err))
		}
	}
	if phone := account.ContactPhone(); phone != "" {
		if err := s.notifier.SendSMS(phone, msg); err != nil {
			s.logger.Warn("otp sms delivery failed", zap.Error(err))
		}
	}
}

func (s *OTPServiceImpl) generateCode() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < s.config.Length; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", s.config.Length, n), nil
}
