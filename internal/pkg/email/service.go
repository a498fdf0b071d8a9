package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/sirupsen/logrus"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/order"
)

// Service sends transactional mail over SMTP
type Service struct {
	config *config.Config
	logger *logrus.Logger
}

// NewService creates a new email service
func NewService(cfg *config.Config, logger *logrus.Logger) *Service {
	return &Service{config: cfg, logger: logger}
}

const confirmationTemplate = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>Thanks for your order!</h2>
  <p>Your order <strong>#{{.Order.ID}}</strong> has been paid and confirmed.</p>
  <table cellpadding="6" style="border-collapse: collapse;">
    {{range .Order.Items}}
    <tr>
      <td>{{.Product.Name}}</td>
      <td>x{{.Quantity}}</td>
    </tr>
    {{end}}
  </table>
  <p><strong>Total: {{.Total}} {{.Currency}}</strong></p>
  <p>{{.CompanyName}}</p>
</body>
</html>`

var confirmationTmpl = template.Must(template.New("confirmation").Parse(confirmationTemplate))

// SendOrderConfirmation emails the customer a summary of a fulfilled
// order. When email is disabled in config it logs and returns nil.
func (s *Service) SendOrderConfirmation(ctx context.Context, o *order.Order) error {
	if !s.config.Email.Enabled {
		s.logger.WithField("order_id", o.ID).Debug("Email disabled, skipping confirmation")
		return nil
	}
	if o.CustomerEmail == "" {
		return nil
	}

	data := struct {
		Order       *order.Order
		Total       string
		Currency    string
		CompanyName string
	}{
		Order:       o,
		Total:       fmt.Sprintf("%.2f", float64(o.Amount)/100),
		Currency:    o.Currency,
		CompanyName: s.config.Company.Name,
	}

	var body bytes.Buffer
	if err := confirmationTmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render confirmation email: %w", err)
	}

	subject := fmt.Sprintf("Order #%d confirmed", o.ID)
	return s.send(o.CustomerEmail, subject, body.String())
}

func (s *Service) send(to, subject, htmlBody string) error {
	cfg := s.config.Email
	if cfg.SMTPHost == "" {
		return fmt.Errorf("SMTP configuration incomplete: missing host")
	}

	from := cfg.FromEmail
	if cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromEmail)
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)

	var auth smtp.Auth
	if cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPHost)
	}

	addr := fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort)
	if err := smtp.SendMail(addr, auth, cfg.FromEmail, []string{to}, msg.Bytes()); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.WithFields(logrus.Fields{"to": to, "subject": subject}).Info("Email sent")
	return nil
}
