// utils/email.go
package utils

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/keighl/postmark"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"phonestore/models"
)

// EmailService sends transactional email through Postmark or SendGrid.
// With no provider configured, messages are logged and dropped.
type EmailService struct {
	sender   string
	postmark *postmark.Client
	sendgrid *sendgrid.Client
}

// NewEmailService initializes the provider selected by cfg.EmailProvider
func NewEmailService(cfg *Config) (*EmailService, error) {
	es := &EmailService{sender: cfg.EmailSender}
	switch cfg.EmailProvider {
	case "postmark":
		if cfg.PostmarkAPIToken == "" {
			return nil, fmt.Errorf("POSTMARK_API_TOKEN is not set in environment variables")
		}
		es.postmark = postmark.NewClient(cfg.PostmarkAPIToken, "")
	case "sendgrid":
		if cfg.SendGridAPIKey == "" {
			return nil, fmt.Errorf("SENDGRID_API_KEY is not set in environment variables")
		}
		es.sendgrid = sendgrid.NewSendClient(cfg.SendGridAPIKey)
	}
	return es, nil
}

// SendEmail sends a basic email to the specified recipient
func (es *EmailService) SendEmail(toEmail, subject, htmlContent, textContent string) error {
	switch {
	case es.postmark != nil:
		_, err := es.postmark.SendEmail(postmark.Email{
			From:     es.sender,
			To:       toEmail,
			Subject:  subject,
			HtmlBody: htmlContent,
			TextBody: textContent,
		})
		if err != nil {
			return fmt.Errorf("failed to send email: %w", err)
		}
	case es.sendgrid != nil:
		message := mail.NewSingleEmail(
			mail.NewEmail("PhoneStore", es.sender),
			subject,
			mail.NewEmail("", toEmail),
			textContent,
			htmlContent,
		)
		resp, err := es.sendgrid.Send(message)
		if err != nil {
			return fmt.Errorf("failed to send email: %w", err)
		}
		if resp.StatusCode >= 300 {
			return fmt.Errorf("failed to send email: sendgrid status %d", resp.StatusCode)
		}
	default:
		slog.Debug("email provider disabled, dropping message", "to", toEmail, "subject", subject)
		return nil
	}

	slog.Info("email sent", "to", toEmail, "subject", subject)
	return nil
}

// SendOrderConfirmationEmail sends an order confirmation email to the user
func (es *EmailService) SendOrderConfirmationEmail(toEmail string, order *models.Order) error {
	subject := "Order Confirmation - PhoneStore"
	html, text := orderConfirmationBody(order)
	return es.SendEmail(toEmail, subject, html, text)
}

func orderConfirmationBody(order *models.Order) (string, string) {
	var lines strings.Builder
	for _, it := range order.Items {
		fmt.Fprintf(&lines, "%d x %s: %s\n", it.Quantity, it.Name, FormatVND(it.LineTotal()))
	}
	text := fmt.Sprintf(
		"Dear %s,\n\nThank you for your purchase! Your order (ID: %s) has been placed successfully.\n\n%s\nSubtotal: %s\nShipping: %s\nTotal: %s\nPayment Method: %s\n\nThank you for shopping with us!\n",
		order.ShippingAddress.FirstName,
		order.ID.Hex(),
		lines.String(),
		FormatVND(order.Subtotal),
		FormatVND(order.ShippingFee),
		FormatVND(order.Total),
		order.PaymentMethod,
	)
	html := "<pre>" + text + "</pre>"
	return html, text
}

// FormatVND renders an amount with dot thousands separators, e.g. 1.250.000 ₫.
func FormatVND(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	digits := fmt.Sprintf("%d", amount)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + " ₫"
}
