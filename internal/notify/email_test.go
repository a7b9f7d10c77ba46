package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/bsource/dbbackup/internal/config"
)

func validEmailConfig() config.EmailConfig {
	return config.EmailConfig{
		From:     "backup@example.com",
		To:       "ops@example.com, oncall@example.com",
		SMTPHost: "smtp.example.com",
		SMTPPort: 587,
		Username: "backup@example.com",
		Password: "secret",
	}
}

func TestNewEmailSplitsRecipients(t *testing.T) {
	n, err := NewEmail(validEmailConfig())
	if err != nil {
		t.Fatalf("NewEmail unexpected error: %v", err)
	}

	e, ok := n.(*emailNotifier)
	if !ok {
		t.Fatalf("unexpected notifier type %T", n)
	}
	if len(e.to) != 2 || e.to[0] != "ops@example.com" || e.to[1] != "oncall@example.com" {
		t.Fatalf("unexpected recipients: %v", e.to)
	}
}

func TestNewEmailRequiresRecipient(t *testing.T) {
	cfg := validEmailConfig()
	cfg.To = " , "

	if _, err := NewEmail(cfg); err == nil {
		t.Fatal("expected error for empty recipient list, got nil")
	}
}

func TestNotifyHonorsCanceledContext(t *testing.T) {
	n, err := NewEmail(validEmailConfig())
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = n.Notify(ctx, Payload{Status: StatusSuccess})
	if err == nil {
		t.Fatal("expected error for canceled context, got nil")
	}
	var notifyErr *Error
	if !errors.As(err, &notifyErr) {
		t.Fatalf("expected *notify.Error, got %T", err)
	}
}

func TestBuildSubject(t *testing.T) {
	if got := buildSubject(Payload{Status: StatusSuccess}); got != "Database Backup - SUCCESS" {
		t.Fatalf("success subject: got %q", got)
	}
	if got := buildSubject(Payload{Status: StatusFailure}); got != "Database Backup - FAILURE" {
		t.Fatalf("failure subject: got %q", got)
	}
}

func TestBuildBodySuccessCarriesRemoteKey(t *testing.T) {
	body := buildBody(Payload{
		Status:    StatusSuccess,
		Engine:    "postgres",
		Database:  "orders",
		Timestamp: "10/03/2024 23:58:00",
		Timezone:  "America/Sao_Paulo",
		RemoteKey: "backups/20240310/backup_orders_20240310_235800.sql",
	})

	for _, want := range []string{"orders", "postgres", "America/Sao_Paulo", "backups/20240310/"} {
		if !strings.Contains(body, want) {
			t.Fatalf("success body missing %q:\n%s", want, body)
		}
	}
}

func TestBuildBodyFailureCarriesErrorDetail(t *testing.T) {
	body := buildBody(Payload{
		Status:    StatusFailure,
		Engine:    "mysql",
		Database:  "orders",
		Timestamp: "10/03/2024 23:58:00",
		Timezone:  "America/Sao_Paulo",
		Error:     "mysql dump failed (exit 2): Access denied",
	})

	if !strings.Contains(body, "Access denied") {
		t.Fatalf("failure body missing error detail:\n%s", body)
	}
	if strings.Contains(body, "Stored at") {
		t.Fatalf("failure body should not mention a stored object:\n%s", body)
	}
}
