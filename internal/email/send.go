package email

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const sendTimeout = 5 * time.Second

// Sender delivers one plain-text message. SESClient is the production sender.
type Sender interface {
	Send(ctx context.Context, recipient, subject, body string) error
}

// Deliver sends msg to recipient and logs, rather than returns, any failure.
// The send is detached from ctx cancellation and bounded by its own timeout.
func Deliver(ctx context.Context, sender Sender, recipient string, msg Message, logger *zerolog.Logger) bool {
	if sender == nil {
		return false
	}
	recipient = strings.TrimSpace(recipient)
	if recipient == "" || msg.Subject == "" || msg.Body == "" {
		return false
	}

	if ctx == nil {
		ctx = context.Background()
	}
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sendTimeout)
	defer cancel()
	if err := sender.Send(sendCtx, recipient, msg.Subject, msg.Body); err != nil {
		if logger != nil {
			logger.Error().Err(err).Str("recipient", recipient).Msg("Failed to send email")
		}
		return false
	}
	return true
}

// DeliverAsync is Deliver on its own goroutine.
func DeliverAsync(ctx context.Context, sender Sender, recipient string, msg Message, logger *zerolog.Logger) {
	if sender == nil {
		return
	}
	detached := context.WithoutCancel(ctx)
	go Deliver(detached, sender, recipient, msg, logger)
}
