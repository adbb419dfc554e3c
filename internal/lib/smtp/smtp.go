// Package smtp открывает авторизованные STARTTLS-сессии с почтовым сервером.
package smtp

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/smtp"

	"github.com/harmonyeco/gec-subscriptions/internal/config"
)

// ErrNoStartTLS возвращается, если сервер не поддерживает STARTTLS.
var ErrNoStartTLS = errors.New("smtp server does not support STARTTLS")

// Client — SMTP-сессия, достаточная для отправки одного письма.
type Client interface {
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}

// Transport открывает SMTP-сессии.
type Transport interface {
	Connect(ctx context.Context) (Client, error)
	From() string
}

// StartTLSTransport подключается к cfg.SMTPHost, включает TLS и авторизуется.
type StartTLSTransport struct {
	cfg    config.SMTP
	dialer net.Dialer
}

// NewTransport создаёт транспорт по настройкам SMTP.
func NewTransport(cfg config.SMTP) *StartTLSTransport {
	return &StartTLSTransport{cfg: cfg}
}

// From возвращает адрес отправителя.
func (t *StartTLSTransport) From() string {
	return t.cfg.SMTPUser
}

func (t *StartTLSTransport) Connect(ctx context.Context) (Client, error) {
	const op = "smtp.Connect"

	conn, err := t.dialer.DialContext(ctx, "tcp", net.JoinHostPort(t.cfg.SMTPHost, t.cfg.SMTPPort))
	if err != nil {
		return nil, fmt.Errorf("%s: dial: %w", op, err)
	}

	client, err := smtp.NewClient(conn, t.cfg.SMTPHost)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: new client: %w", op, err)
	}

	if ok, _ := client.Extension("STARTTLS"); !ok {
		_ = client.Close()
		return nil, fmt.Errorf("%s: %w", op, ErrNoStartTLS)
	}
	tlsConfig := &tls.Config{
		ServerName: t.cfg.SMTPHost,
		MinVersion: tls.VersionTLS12,
	}
	if err = client.StartTLS(tlsConfig); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%s: start tls: %w", op, err)
	}

	auth := smtp.PlainAuth("", t.cfg.SMTPUser, t.cfg.SMTPPass, t.cfg.SMTPHost)
	if err = client.Auth(auth); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%s: auth: %w", op, err)
	}

	return client, nil
}
