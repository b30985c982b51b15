package notifications

import (
	"fmt"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"

	"github.com/Alphonse-K/freres-unis/domain"
)

// TwilioService implements domain.NotificationService. SMS goes through
// Twilio; email delivery is owned by an external dispatcher, so SendEmail
// only records the intent. With no from-number configured, SMS is logged
// instead of sent, which is the mode every test runs in.
type TwilioService struct {
	client     *twilio.RestClient
	fromNumber string
	logger     *zap.Logger
}

func NewTwilioService(accountSID, authToken, fromNumber string, logger *zap.Logger) domain.NotificationService {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioService{client: client, fromNumber: fromNumber, logger: logger}
}

// SendSMS implements domain.NotificationService.
func (t *TwilioService) SendSMS(to, message string) error {
	if t.fromNumber == "" {
		t.logger.Info("sms dispatch (not configured, logging only)",
			zap.String("to", to))
		return nil
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(t.fromNumber)
	params.SetBody(message)

	if _, err := t.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("send sms: %w", err)
	}
	return nil
}

// SendEmail implements domain.NotificationService.
func (t *TwilioService) SendEmail(to, subject, body string) error {
	t.logger.Info("email dispatch",
		zap.String("to", to),
		zap.String("subject", subject))
	return nil
}
