package mocks

import (
	"context"

	"github.com/Alphonse-K/freres-unis/domain"
)

// MockCredentialStore implements domain.CredentialStore for testing. The
// default "hash" is a reversible marker so tests can assert without
// running bcrypt.
type MockCredentialStore struct {
	HashFunc   func(secret string) (string, error)
	VerifyFunc func(secret, storedHash string) (bool, bool)
}

func NewMockCredentialStore() *MockCredentialStore {
	return &MockCredentialStore{}
}

func (m *MockCredentialStore) Hash(secret string) (string, error) {
	if m.HashFunc != nil {
		return m.HashFunc(secret)
	}
	return "hashed:" + secret, nil
}

func (m *MockCredentialStore) Verify(secret, storedHash string) (bool, bool) {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(secret, storedHash)
	}
	return storedHash == "hashed:"+secret, false
}

// MockTokenService implements domain.TokenService for testing.
type MockTokenService struct {
	IssueFunc        func(ctx context.Context, account domain.Account, device domain.DeviceInfo) (*domain.TokenPair, error)
	VerifyAccessFunc func(ctx context.Context, raw string) (*domain.TokenClaims, error)
	RotateFunc       func(ctx context.Context, raw string, device domain.DeviceInfo) (*domain.TokenPair, domain.Account, error)
	RevokeAccessFunc func(ctx context.Context, raw string, account domain.Account, reason string) error
	RevokeAllFunc    func(ctx context.Context, raw string, account domain.Account, reason string) error
}

func NewMockTokenService() *MockTokenService {
	return &MockTokenService{}
}

func (m *MockTokenService) Issue(ctx context.Context, account domain.Account, device domain.DeviceInfo) (*domain.TokenPair, error) {
	if m.IssueFunc != nil {
		return m.IssueFunc(ctx, account, device)
	}
	return &domain.TokenPair{AccessToken: "access", RefreshToken: "refresh", TokenType: "Bearer"}, nil
}

func (m *MockTokenService) VerifyAccess(ctx context.Context, raw string) (*domain.TokenClaims, error) {
	if m.VerifyAccessFunc != nil {
		return m.VerifyAccessFunc(ctx, raw)
	}
	return nil, domain.ErrTokenInvalid
}

func (m *MockTokenService) Rotate(ctx context.Context, raw string, device domain.DeviceInfo) (*domain.TokenPair, domain.Account, error) {
	if m.RotateFunc != nil {
		return m.RotateFunc(ctx, raw, device)
	}
	return nil, nil, domain.ErrRefreshTokenInvalid
}

func (m *MockTokenService) RevokeAccess(ctx context.Context, raw string, account domain.Account, reason string) error {
	if m.RevokeAccessFunc != nil {
		return m.RevokeAccessFunc(ctx, raw, account, reason)
	}
	return nil
}

func (m *MockTokenService) RevokeAll(ctx context.Context, raw string, account domain.Account, reason string) error {
	if m.RevokeAllFunc != nil {
		return m.RevokeAllFunc(ctx, raw, account, reason)
	}
	return nil
}

// MockNotificationService implements domain.NotificationService for
// testing, recording outbound messages.
type MockNotificationService struct {
	SendSMSFunc   func(to, message string) error
	SendEmailFunc func(to, subject, body string) error

	SentSMS    []string
	SentEmails []string
}

func NewMockNotificationService() *MockNotificationService {
	return &MockNotificationService{}
}

func (m *MockNotificationService) SendSMS(to, message string) error {
	if m.SendSMSFunc != nil {
		return m.SendSMSFunc(to, message)
	}
	m.SentSMS = append(m.SentSMS, to)
	return nil
}

func (m *MockNotificationService) SendEmail(to, subject, body string) error {
	if m.SendEmailFunc != nil {
		return m.SendEmailFunc(to, subject, body)
	}
	m.SentEmails = append(m.SentEmails, to)
	return nil
}

// MockAuditSink implements domain.AuditSink for testing, recording every
// entry.
type MockAuditSink struct {
	RecordFunc func(ctx context.Context, entry domain.AuditEntry)

	Entries []domain.AuditEntry
}

func NewMockAuditSink() *MockAuditSink {
	return &MockAuditSink{}
}

func (m *MockAuditSink) Record(ctx context.Context, entry domain.AuditEntry) {
	if m.RecordFunc != nil {
		m.RecordFunc(ctx, entry)
		return
	}
	m.Entries = append(m.Entries, entry)
}

// Actions returns the recorded action names in order.
func (m *MockAuditSink) Actions() []string {
	out := make([]string, 0, len(m.Entries))
	for _, e := range m.Entries {
		out = append(out, e.Action)
	}
	return out
}

// MockPolicyEnforcer implements domain.PolicyEnforcer for testing, backed
// by an in-memory rule list.
type MockPolicyEnforcer struct {
	EnforceFunc func(rvals ...interface{}) (bool, error)

	Rules      [][]string
	SaveCalls  int
}

func NewMockPolicyEnforcer() *MockPolicyEnforcer {
	return &MockPolicyEnforcer{}
}

func (m *MockPolicyEnforcer) Enforce(rvals ...interface{}) (bool, error) {
	if m.EnforceFunc != nil {
		return m.EnforceFunc(rvals...)
	}
	if len(rvals) != 2 {
		return false, nil
	}
	sub, _ := rvals[0].(string)
	perm, _ := rvals[1].(string)
	for _, rule := range m.Rules {
		if len(rule) == 2 && rule[0] == sub && rule[1] == perm {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockPolicyEnforcer) AddPolicy(params ...interface{}) (bool, error) {
	rule := make([]string, 0, len(params))
	for _, p := range params {
		s, _ := p.(string)
		rule = append(rule, s)
	}
	m.Rules = append(m.Rules, rule)
	return true, nil
}

func (m *MockPolicyEnforcer) RemoveFilteredPolicy(fieldIndex int, fieldValues ...string) (bool, error) {
	kept := m.Rules[:0]
	removed := false
	for _, rule := range m.Rules {
		match := true
		for i, v := range fieldValues {
			if v == "" {
				continue
			}
			if fieldIndex+i >= len(rule) || rule[fieldIndex+i] != v {
				match = false
				break
			}
		}
		if match {
			removed = true
			continue
		}
		kept = append(kept, rule)
	}
	m.Rules = kept
	return removed, nil
}

func (m *MockPolicyEnforcer) GetFilteredPolicy(fieldIndex int, fieldValues ...string) ([][]string, error) {
	var out [][]string
	for _, rule := range m.Rules {
		match := true
		for i, v := range fieldValues {
			if v == "" {
				continue
			}
			if fieldIndex+i >= len(rule) || rule[fieldIndex+i] != v {
				match = false
				break
			}
		}
		if match {
			out = append(out, rule)
		}
	}
	return out, nil
}

func (m *MockPolicyEnforcer) SavePolicy() error {
	m.SaveCalls++
	return nil
}
