package mail

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"
)

func TestSendBuildsHTMLMessage(t *testing.T) {
	t.Parallel()

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	mailer := New(Config{
		Host: "smtp.example.com",
		Port: 587,
		From: "noreply@example.com",
		Logf: t.Logf,
	})
	mailer.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	err := mailer.Send(context.Background(), []string{"c@x.com", "r1@x.com"}, "Workspace ready", "<p>hello</p>")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if gotAddr != "smtp.example.com:587" {
		t.Fatalf("unexpected relay address %q", gotAddr)
	}
	if gotFrom != "noreply@example.com" || len(gotTo) != 2 {
		t.Fatalf("unexpected envelope from=%q to=%v", gotFrom, gotTo)
	}
	msg := string(gotMsg)
	if !strings.Contains(msg, "Content-Type: text/html") {
		t.Fatal("expected html content type header")
	}
	if !strings.Contains(msg, "Subject: Workspace ready") {
		t.Fatal("expected subject header")
	}
	if !strings.Contains(msg, "<p>hello</p>") {
		t.Fatal("expected html body")
	}
}

func TestSendWithoutRelayIsNoOp(t *testing.T) {
	t.Parallel()

	mailer := New(Config{Logf: t.Logf})
	mailer.send = func(string, smtp.Auth, string, []string, []byte) error {
		t.Fatal("send must not be called without a relay")
		return nil
	}

	if err := mailer.Send(context.Background(), []string{"c@x.com"}, "s", "b"); err != nil {
		t.Fatalf("unconfigured mailer must not error: %v", err)
	}
}

func TestSendWithoutRecipientsIsNoOp(t *testing.T) {
	t.Parallel()

	mailer := New(Config{Host: "smtp.example.com", Port: 25, Logf: t.Logf})
	mailer.send = func(string, smtp.Auth, string, []string, []byte) error {
		t.Fatal("send must not be called without recipients")
		return nil
	}

	if err := mailer.Send(context.Background(), nil, "s", "b"); err != nil {
		t.Fatalf("empty recipient list must not error: %v", err)
	}
}

func TestSendSurfacesRelayError(t *testing.T) {
	t.Parallel()

	mailer := New(Config{Host: "smtp.example.com", Port: 25, Logf: t.Logf})
	mailer.send = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("connection refused")
	}

	if err := mailer.Send(context.Background(), []string{"c@x.com"}, "s", "b"); err == nil {
		t.Fatal("expected relay error to surface")
	}
}

func TestSendFailsWhenRelayStalls(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	mailer := New(Config{Host: "smtp.example.com", Port: 25, Logf: t.Logf})
	mailer.send = func(string, smtp.Auth, string, []string, []byte) error {
		<-release
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := mailer.Send(ctx, []string{"c@x.com"}, "s", "b")
	if err == nil {
		t.Fatal("expected stalled relay to fail the send")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("send was not bounded, took %s", elapsed)
	}
}
