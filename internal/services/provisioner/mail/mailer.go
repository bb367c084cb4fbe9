// Package mail sends transactional workspace emails over SMTP.
package mail

import (
	"context"
	"fmt"
	"log"
	"net/smtp"
	"strings"

	"github.com/louisbranch/workroom.space/internal/platform/timeouts"
)

// Config carries the SMTP relay settings. An empty Host disables sending.
type Config struct {
	Host string
	Port int
	User string
	Pass string
	From string

	Logf func(format string, args ...any)
}

// sendFunc matches smtp.SendMail, injected for tests.
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer delivers HTML emails through a single SMTP relay.
type Mailer struct {
	cfg  Config
	logf func(format string, args ...any)
	send sendFunc
}

// New builds a mailer. When cfg.Host is empty the mailer logs and drops
// every message instead of failing the provisioning step.
func New(cfg Config) *Mailer {
	logf := cfg.Logf
	if logf == nil {
		logf = log.Printf
	}
	return &Mailer{cfg: cfg, logf: logf, send: smtp.SendMail}
}

// Send delivers one HTML email to all recipients.
func (m *Mailer) Send(ctx context.Context, to []string, subject string, htmlBody string) error {
	if len(to) == 0 {
		return nil
	}
	if m.cfg.Host == "" {
		m.logf("mail: smtp relay not configured, dropping message to %d recipients", len(to))
		return nil
	}
	var auth smtp.Auth
	if m.cfg.User != "" {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Pass, m.cfg.Host)
	}

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	msg := buildMessage(m.cfg.From, to, subject, htmlBody)

	// smtp.SendMail has no context support, so a stalled relay is
	// abandoned once the deadline passes and the step fails.
	ctx, cancel := context.WithTimeout(ctx, timeouts.RemoteCall)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- m.send(addr, auth, m.cfg.From, to, msg)
	}()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send mail via %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("send mail via %s: %w", addr, ctx.Err())
	}
}

func buildMessage(from string, to []string, subject string, htmlBody string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + strings.Join(to, ", ") + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	b.WriteString("\r\n")
	return []byte(b.String())
}
