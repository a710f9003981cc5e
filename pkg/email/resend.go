package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/resendlabs/resend-go"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type Config struct {
	APIKey         string
	FromAddress    string
	FromName       string
	SupportAddress string
	FrontendURL    string
}

type Receipt struct {
	Email       string
	FullName    string
	ProductName string
	Credits     int
	AmountCents int64
	Currency    string
	Available   int
	SessionID   string
}

type EmailService struct {
	client         *resend.Client
	from           string
	fromName       string
	supportAddress string
	frontendURL    string
	log            *zap.Logger
}

func NewEmailService(cfg Config, log *zap.Logger) *EmailService {
	var client *resend.Client
	if cfg.APIKey != "" {
		client = resend.NewClient(cfg.APIKey)
	}
	return &EmailService{
		client:         client,
		from:           cfg.FromAddress,
		fromName:       cfg.FromName,
		supportAddress: cfg.SupportAddress,
		frontendURL:    cfg.FrontendURL,
		log:            log.Named("email"),
	}
}

func (s *EmailService) SendPaymentReceipt(r Receipt) error {
	html, err := s.parseTemplate("payment-receipt.html", map[string]interface{}{
		"FullName":      r.FullName,
		"ProductName":   r.ProductName,
		"Credits":       r.Credits,
		"Amount":        fmt.Sprintf("%d.%02d", r.AmountCents/100, r.AmountCents%100),
		"Currency":      r.Currency,
		"Available":     r.Available,
		"SessionID":     r.SessionID,
		"DashboardLink": s.frontendURL + "/dashboard",
		"Year":          time.Now().Year(),
	})
	if err != nil {
		return err
	}
	return s.send(r.Email, "Your credits are ready - Menu Translator", html)
}

func (s *EmailService) SendPasswordResetEmail(email, resetToken string) error {
	html, err := s.parseTemplate("reset-password.html", map[string]interface{}{
		"ResetLink": s.frontendURL + "/reset-password?token=" + resetToken,
		"Email":     email,
		"Year":      time.Now().Year(),
	})
	if err != nil {
		return err
	}
	return s.send(email, "Reset Your Password - Menu Translator", html)
}

// SendSupportAlert notifies the support inbox about conditions that need a human,
// such as a paid checkout session with no recorded payment intent.
func (s *EmailService) SendSupportAlert(subject string, fields map[string]string) error {
	if s.supportAddress == "" {
		s.log.Warn("support alert dropped, no support address configured", zap.String("subject", subject))
		return nil
	}
	html, err := s.parseTemplate("support-alert.html", map[string]interface{}{
		"Subject": subject,
		"Fields":  fields,
		"Time":    time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	return s.send(s.supportAddress, "[support] "+subject, html)
}

func (s *EmailService) send(to, subject, html string) error {
	if s.client == nil {
		s.log.Info("email delivery disabled, skipping", zap.String("to", to), zap.String("subject", subject))
		return nil
	}

	params := &resend.SendEmailRequest{
		From:    s.fromName + " <" + s.from + ">",
		To:      []string{to},
		Subject: subject,
		Html:    html,
	}

	resp, err := s.client.Emails.Send(params)
	if err != nil {
		s.log.Error("failed to send email", zap.String("to", to), zap.String("subject", subject), zap.Error(err))
		return err
	}

	s.log.Info("email sent", zap.String("to", to), zap.String("id", resp.Id))
	return nil
}

func (s *EmailService) parseTemplate(templateName string, data interface{}) (string, error) {
	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, templateName, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", templateName, err)
	}
	return body.String(), nil
}
