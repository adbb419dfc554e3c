// Package sender отправляет владельцам подписок письма о скором окончании подписки.
package sender

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/harmonyeco/gec-subscriptions/internal/lib/smtp"
	"github.com/harmonyeco/gec-subscriptions/internal/models"
)

// ErrNoRecipient — в уведомлении нет адреса получателя.
var ErrNoRecipient = errors.New("notice has no recipient")

// Service формирует и отправляет письма.
type Service struct {
	transport smtp.Transport
	loc       *time.Location
	log       *slog.Logger
}

// NewSenderService создаёт отправителя. Даты в письме выводятся в часовом поясе loc.
func NewSenderService(transport smtp.Transport, loc *time.Location, log *slog.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{transport: transport, loc: loc, log: log}
}

// HandleExpiryNotice разбирает models.ExpiryNotice из тела сообщения и отправляет письмо.
func (s *Service) HandleExpiryNotice(ctx context.Context, body []byte) error {
	const op = "services.sender.HandleExpiryNotice"

	var notice models.ExpiryNotice
	if err := json.Unmarshal(body, &notice); err != nil {
		return fmt.Errorf("%s: unmarshal notice: %w", op, err)
	}
	if notice.Email == "" {
		return fmt.Errorf("%s: %w", op, ErrNoRecipient)
	}

	subject, text := s.render(notice)
	if err := s.sendEmail(ctx, notice.Email, subject, text); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("expiry notice sent", slog.String("event_id", notice.EventID), slog.String("user_id", notice.UserID))
	return nil
}

func (s *Service) render(n models.ExpiryNotice) (subject, text string) {
	name := n.Name
	if name == "" {
		name = "membre GEC"
	}
	subject = "GEC APP : votre abonnement arrive à échéance"
	text = fmt.Sprintf("Bonjour %s,\n\n"+
		"Votre abonnement GEC APP expire le %s.\n"+
		"Pensez à le renouveler auprès de votre opérateur pour continuer à en profiter.\n",
		name, n.ExpiresAt.In(s.loc).Format("02/01/2006 15:04"))
	return subject, text
}

func (s *Service) sendEmail(ctx context.Context, to, subject, text string) error {
	from := s.transport.From()
	msg := strings.Join([]string{
		"From: " + from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		text,
	}, "\r\n")

	client, err := s.transport.Connect(ctx)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer func() {
		_ = client.Close()
	}()

	if err = client.Mail(from); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err = client.Rcpt(to); err != nil {
		return fmt.Errorf("rcpt to: %w", err)
	}

	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err = wc.Write([]byte(msg)); err != nil {
		_ = wc.Close()
		return fmt.Errorf("write body: %w", err)
	}
	if err = wc.Close(); err != nil {
		return fmt.Errorf("close body: %w", err)
	}

	if err = client.Quit(); err != nil {
		return fmt.Errorf("quit: %w", err)
	}
	return nil
}
