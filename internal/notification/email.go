package notification

import (
	"context"
	"fmt"
	"strings"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/transitgo/service-booking/internal/application"
	"github.com/transitgo/service-booking/internal/config"
)

// EmailNotifier sends booking confirmation and cancellation emails over SMTP.
// Delivery is best effort: failures are logged and never surfaced to callers.
type EmailNotifier struct {
	cfg    config.SMTPConfig
	logger *zap.Logger
}

var _ application.Notifier = (*EmailNotifier)(nil)

// NewEmailNotifier creates a new EmailNotifier.
func NewEmailNotifier(cfg config.SMTPConfig, logger *zap.Logger) *EmailNotifier {
	return &EmailNotifier{cfg: cfg, logger: logger}
}

// BookingCreated emails the traveler their booking confirmation.
func (n *EmailNotifier) BookingCreated(ctx context.Context, recipient string, b *application.BookingDTO) {
	subject := fmt.Sprintf("Booking confirmed: %s", b.BookingCode)

	var body strings.Builder
	fmt.Fprintf(&body, "Your booking %s is confirmed.\n\n", b.BookingCode)
	if b.Trip != nil {
		fmt.Fprintf(&body, "Route: %s to %s\n", b.Trip.Origin, b.Trip.Destination)
		fmt.Fprintf(&body, "Departure: %s\n", b.Trip.DepartureAt.Format("Mon, 02 Jan 2006 15:04 MST"))
	}
	fmt.Fprintf(&body, "Seats: %s\n", strings.Join(b.SelectedSeats, ", "))
	fmt.Fprintf(&body, "Total paid: %.2f %s\n", float64(b.TotalAmountCents)/100, bookingCurrency(b))
	body.WriteString("\nThank you for traveling with us.\n")

	n.send(ctx, recipient, subject, body.String())
}

// BookingCancelled emails the traveler their cancellation and refund notice.
func (n *EmailNotifier) BookingCancelled(ctx context.Context, recipient string, b *application.BookingDTO) {
	subject := fmt.Sprintf("Booking cancelled: %s", b.BookingCode)

	var body strings.Builder
	fmt.Fprintf(&body, "Your booking %s has been cancelled.\n\n", b.BookingCode)
	if b.CancellationReason != "" {
		fmt.Fprintf(&body, "Reason: %s\n", b.CancellationReason)
	}
	fmt.Fprintf(&body, "A refund of %.2f %s has been issued to your original payment method.\n",
		float64(b.TotalAmountCents)/100, bookingCurrency(b))

	n.send(ctx, recipient, subject, body.String())
}

func bookingCurrency(b *application.BookingDTO) string {
	if b.Trip != nil && b.Trip.Currency != "" {
		return b.Trip.Currency
	}
	return "USD"
}

func (n *EmailNotifier) send(ctx context.Context, recipient, subject, body string) {
	if recipient == "" {
		n.logger.Debug("skipping email, no recipient address", zap.String("subject", subject))
		return
	}

	msg := mail.NewMsg()
	if err := msg.FromFormat(n.cfg.FromName, n.cfg.From); err != nil {
		n.logger.Error("failed to set email sender", zap.Error(err))
		return
	}
	if err := msg.To(recipient); err != nil {
		n.logger.Error("failed to set email recipient",
			zap.String("recipient", recipient),
			zap.Error(err),
		)
		return
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	client, err := mail.NewClient(n.cfg.Host,
		mail.WithPort(n.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(n.cfg.Username),
		mail.WithPassword(n.cfg.Password),
	)
	if err != nil {
		n.logger.Error("failed to create smtp client", zap.Error(err))
		return
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		n.logger.Error("failed to send email",
			zap.String("recipient", recipient),
			zap.String("subject", subject),
			zap.Error(err),
		)
		return
	}

	n.logger.Info("email sent",
		zap.String("recipient", recipient),
		zap.String("subject", subject),
	)
}
