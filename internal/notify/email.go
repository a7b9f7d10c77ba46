package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/bsource/dbbackup/internal/config"
)

type emailNotifier struct {
	host     string
	port     int
	from     string
	to       []string
	username string
	password string
}

func NewEmail(cfg config.EmailConfig) (Notifier, error) {
	host := strings.TrimSpace(cfg.SMTPHost)
	from := strings.TrimSpace(cfg.From)
	if host == "" {
		return nil, fmt.Errorf("EMAIL_SMTP is required")
	}
	if cfg.SMTPPort <= 0 {
		return nil, fmt.Errorf("EMAIL_PORT must be > 0")
	}
	if from == "" {
		return nil, fmt.Errorf("EMAIL_FROM is required")
	}

	recipients := splitRecipients(cfg.To)
	if len(recipients) == 0 {
		return nil, fmt.Errorf("EMAIL_TO must include at least one recipient")
	}

	return &emailNotifier{
		host:     host,
		port:     cfg.SMTPPort,
		from:     from,
		to:       recipients,
		username: strings.TrimSpace(cfg.Username),
		password: strings.TrimSpace(cfg.Password),
	}, nil
}

func (e *emailNotifier) Notify(ctx context.Context, p Payload) error {
	if err := ctx.Err(); err != nil {
		return &Error{Cause: err}
	}

	msg := []byte(strings.Join([]string{
		"From: " + e.from,
		"To: " + strings.Join(e.to, ", "),
		"Subject: " + buildSubject(p),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=UTF-8",
		"",
		buildBody(p),
	}, "\r\n"))

	addr := e.host + ":" + strconv.Itoa(e.port)
	var auth smtp.Auth
	if e.username != "" {
		auth = smtp.PlainAuth("", e.username, e.password, e.host)
	}

	if err := smtp.SendMail(addr, auth, e.from, e.to, msg); err != nil {
		return &Error{Cause: fmt.Errorf("send mail: %w", err)}
	}
	return nil
}

func buildSubject(p Payload) string {
	if p.Status == StatusSuccess {
		return "Database Backup - SUCCESS"
	}
	return "Database Backup - FAILURE"
}

func buildBody(p Payload) string {
	when := p.Timestamp
	if p.Timezone != "" {
		when += " (" + p.Timezone + ")"
	}

	if p.Status == StatusSuccess {
		return fmt.Sprintf(
			"Backup of database '%s' (%s) completed successfully at %s.\n\nStored at: %s",
			p.Database, p.Engine, when, p.RemoteKey,
		)
	}
	return fmt.Sprintf(
		"Backup of database '%s' (%s) failed at %s.\n\nError: %s",
		p.Database, p.Engine, when, p.Error,
	)
}

func splitRecipients(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}
