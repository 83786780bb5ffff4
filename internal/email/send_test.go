package email

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type sentMessage struct {
	recipient string
	subject   string
	body      string
	ctxErr    error
}

type fakeEmailSender struct {
	mu      sync.Mutex
	sent    []sentMessage
	err     error
	started chan struct{}
}

func newFakeEmailSender() *fakeEmailSender {
	return &fakeEmailSender{started: make(chan struct{}, 1)}
}

func (f *fakeEmailSender) Send(ctx context.Context, recipient, subject, body string) error {
	f.mu.Lock()
	f.sent = append(f.sent, sentMessage{recipient: recipient, subject: subject, body: body, ctxErr: ctx.Err()})
	f.mu.Unlock()
	select {
	case f.started <- struct{}{}:
	default:
	}
	return f.err
}

func (f *fakeEmailSender) messages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.sent...)
}

func TestBuildInviteEmail(t *testing.T) {
	expires := time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)
	msg := BuildInviteEmail(InviteDetails{
		ClubName:    "Sideline FC",
		DisplayName: "Dana",
		Role:        "coach",
		InvitedBy:   "Alex",
		ActionLink:  "https://club.example/auth/recover?token=abc",
		ExpiresAt:   expires,
	})

	if msg.Subject != "You're invited to Sideline FC" {
		t.Fatalf("subject = %q", msg.Subject)
	}
	for _, want := range []string{
		"Hello Dana,",
		"Alex invited you to join Sideline FC as Coach.",
		"https://club.example/auth/recover?token=abc",
		"Monday, Mar 2, 2026 at 18:00 UTC",
	} {
		if !strings.Contains(msg.Body, want) {
			t.Fatalf("body missing %q:\n%s", want, msg.Body)
		}
	}
}

func TestBuildInviteEmail_Defaults(t *testing.T) {
	msg := BuildInviteEmail(InviteDetails{Role: "unknown", ActionLink: "link"})
	if msg.Subject != "You're invited to your club" {
		t.Fatalf("subject = %q", msg.Subject)
	}
	if !strings.HasPrefix(msg.Body, "Hello,\n") {
		t.Fatalf("expected generic greeting, got %q", msg.Body)
	}
	if !strings.Contains(msg.Body, "An administrator invited you to join your club as Member.") {
		t.Fatalf("unexpected body %q", msg.Body)
	}
	if strings.Contains(msg.Body, "expires") {
		t.Fatalf("zero expiry should be omitted: %q", msg.Body)
	}
}

func TestBuildRecoveryEmail(t *testing.T) {
	msg := BuildRecoveryEmail(RecoveryDetails{ClubName: "Sideline FC", ActionLink: "link"})
	if msg.Subject != "Reset your Sideline FC password" {
		t.Fatalf("subject = %q", msg.Subject)
	}
	if !strings.Contains(msg.Body, "\nlink\n") {
		t.Fatalf("body missing link: %q", msg.Body)
	}
}

func TestDeliver_IgnoresCanceledParent(t *testing.T) {
	sender := newFakeEmailSender()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	logger := zerolog.Nop()
	ok := Deliver(ctx, sender, " player@example.com ", Message{Subject: "s", Body: "b"}, &logger)
	if !ok {
		t.Fatalf("expected delivery to succeed")
	}
	msgs := sender.messages()
	if len(msgs) != 1 {
		t.Fatalf("expected one send, got %d", len(msgs))
	}
	if msgs[0].recipient != "player@example.com" {
		t.Fatalf("recipient = %q", msgs[0].recipient)
	}
	if msgs[0].ctxErr != nil {
		t.Fatalf("send context should not inherit cancellation, got %v", msgs[0].ctxErr)
	}
}

func TestDeliver_ReportsFailure(t *testing.T) {
	sender := newFakeEmailSender()
	sender.err = errors.New("ses down")

	if Deliver(context.Background(), sender, "a@example.com", Message{Subject: "s", Body: "b"}, nil) {
		t.Fatalf("expected failed delivery")
	}
}

func TestDeliver_SkipsIncompleteMessages(t *testing.T) {
	sender := newFakeEmailSender()
	if Deliver(context.Background(), sender, "", Message{Subject: "s", Body: "b"}, nil) {
		t.Fatalf("expected skip for empty recipient")
	}
	if Deliver(context.Background(), sender, "a@example.com", Message{Subject: "s"}, nil) {
		t.Fatalf("expected skip for empty body")
	}
	if Deliver(context.Background(), nil, "a@example.com", Message{Subject: "s", Body: "b"}, nil) {
		t.Fatalf("expected skip for nil sender")
	}
	if n := len(sender.messages()); n != 0 {
		t.Fatalf("expected no sends, got %d", n)
	}
}

func TestDeliverAsync(t *testing.T) {
	sender := newFakeEmailSender()
	ctx, cancel := context.WithCancel(context.Background())
	DeliverAsync(ctx, sender, "a@example.com", Message{Subject: "s", Body: "b"}, nil)
	cancel()

	select {
	case <-sender.started:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for async send")
	}
}
