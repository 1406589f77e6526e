package resend

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-waitlist-api/internal/domain"
	resendgo "github.com/resend/resend-go/v2"
)

// Message is a single outbound transactional email.
type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
}

// Mailer sends transactional email.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type mailer struct {
	client *resendgo.Client
	isDev  bool
}

// NewMailer builds a Resend-backed mailer. Without an API key in a
// development environment it logs messages instead of sending them.
func NewMailer(apiKey string, isDev bool) Mailer {
	var client *resendgo.Client
	if apiKey != "" {
		client = resendgo.NewClient(apiKey)
	}
	return &mailer{client: client, isDev: isDev && apiKey == ""}
}

func (m *mailer) Send(ctx context.Context, msg Message) error {
	if m.isDev {
		slog.Info("email sent (dev mode)", "to", msg.To, "subject", msg.Subject)
		return nil
	}
	if m.client == nil {
		return fmt.Errorf("mailer not configured (missing RESEND_API_KEY): %w", domain.ErrDeliveryFailure)
	}
	_, err := m.client.Emails.SendWithContext(ctx, &resendgo.SendEmailRequest{
		From:    msg.From,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
	})
	if err != nil {
		return fmt.Errorf("resend send to %s: %v: %w", msg.To, err, domain.ErrDeliveryFailure)
	}
	slog.Info("email sent", "to", msg.To, "subject", msg.Subject)
	return nil
}
