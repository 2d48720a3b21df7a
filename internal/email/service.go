package email

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	gomail "gopkg.in/gomail.v2"
)

// Notifier sends billing-team notices about batch submissions. Delivery is
// best-effort: a failed notice never affects the submission outcome.
type Notifier interface {
	SendBatchAccepted(ctx context.Context, batchID string, numClaims int, totalCharge string) error
	SendBatchFailed(ctx context.Context, reason string) error
}

type Config struct {
	Host        string
	Port        int
	Username    string
	Password    string
	From        string
	BillingTeam string
}

type service struct {
	dialer *gomail.Dialer
	cfg    Config
	logger zerolog.Logger
}

func NewService(cfg Config, logger zerolog.Logger) Notifier {
	return &service{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		cfg:    cfg,
		logger: logger.With().Str("component", "email").Logger(),
	}
}

func (s *service) SendBatchAccepted(ctx context.Context, batchID string, numClaims int, totalCharge string) error {
	subject := fmt.Sprintf("Claim batch %s accepted", batchID)
	body := fmt.Sprintf(
		"Batch %s was accepted by the clearinghouse at %s.\n\nClaims: %d\nTotal charge: $%s\n",
		batchID, time.Now().Format(time.RFC1123), numClaims, totalCharge,
	)
	return s.send(subject, body)
}

func (s *service) SendBatchFailed(ctx context.Context, reason string) error {
	body := fmt.Sprintf(
		"A claim batch submission failed at %s.\n\nReason: %s\n\nNo sessions were marked submitted; the batch can be retried after the issue is resolved.\n",
		time.Now().Format(time.RFC1123), reason,
	)
	return s.send("Claim batch submission failed", body)
}

func (s *service) send(subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", s.cfg.BillingTeam)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		s.logger.Error().Err(err).Str("subject", subject).Msg("failed to send notice")
		return fmt.Errorf("failed to send notice: %w", err)
	}
	return nil
}
