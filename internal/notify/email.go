package notify

import (
	"context"

	"gopkg.in/gomail.v2"

	"github.com/coworkhq/member-portal/internal/config"
)

// Mailer delivers notification mail over SMTP. When the SMTP settings are
// incomplete every send is a silent no-op, mirroring the webhook sender.
type Mailer struct {
	cfg config.SMTPConfig
	// send is swapped out in tests; defaults to gomail's DialAndSend.
	send func(m *gomail.Message) error
}

func NewMailer(cfg config.SMTPConfig) *Mailer {
	m := &Mailer{cfg: cfg}
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	if !cfg.Auth {
		d = gomail.NewDialer(cfg.Host, cfg.Port, "", "")
	}
	d.SSL = cfg.Port == 465 && !cfg.StartTLS
	m.send = func(msg *gomail.Message) error { return d.DialAndSend(msg) }
	return m
}

func (m *Mailer) Name() string { return "email" }

// Configured reports whether mail can actually be sent.
func (m *Mailer) Configured() bool { return m.cfg.Configured() }

func (m *Mailer) Send(_ context.Context, n Notification) error {
	if n.Mail == nil {
		return nil
	}
	if !m.Configured() {
		return nil
	}
	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.cfg.FromEmail, m.cfg.FromName)
	msg.SetHeader("To", n.Mail.To)
	msg.SetHeader("Subject", n.Mail.Subject)
	msg.SetBody("text/plain", n.Mail.Body)
	return m.send(msg)
}
