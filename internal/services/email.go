package services

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/resend/resend-go/v2"

	"meridianwealth/internal/config"
)

// EmailService handles sending emails
type EmailService struct {
	cfg *config.EmailConfig
}

// NewEmailService creates a new email service
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

// IsEnabled returns whether email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.cfg.Enabled
}

// SendOTP sends an OTP code via email
func (s *EmailService) SendOTP(to, otpCode string) error {
	subject := "Your Meridian Wealth Verification Code"
	textBody := fmt.Sprintf(`Hello,

Your verification code for Meridian Wealth is: %s

This code will expire in 10 minutes.

If you did not request this code, please ignore this email.

Best regards,
The Meridian Wealth Team
`, otpCode)

	htmlBody := fmt.Sprintf(`<div style="font-family: sans-serif; max-width: 480px; margin: 0 auto; padding: 24px;">
  <h2 style="color: #0D1A2D;">Verify your account</h2>
  <p>Enter this code in the verification form:</p>
  <p style="font-size: 32px; font-weight: 700; letter-spacing: 8px; color: #1C5D99;">%s</p>
  <p style="color: #888; font-size: 14px;">The code expires in 10 minutes. If you didn't request it, ignore this email.</p>
</div>`, otpCode)

	return s.SendHTMLEmail(to, subject, htmlBody, textBody)
}

// SendPasswordReset sends a password reset link
func (s *EmailService) SendPasswordReset(to, resetURL string) error {
	subject := "Reset your Meridian Wealth password"
	textBody := fmt.Sprintf(`Hello,

We received a request to reset your Meridian Wealth password.

Open this link to choose a new password: %s

The link expires in 30 minutes and can only be used once. If you did not
request a reset, you can safely ignore this email.

Best regards,
The Meridian Wealth Team
`, resetURL)

	htmlBody := fmt.Sprintf(`<div style="font-family: sans-serif; max-width: 480px; margin: 0 auto; padding: 24px;">
  <h2 style="color: #0D1A2D;">Reset your password</h2>
  <p>Click the button below to choose a new password:</p>
  <a href="%s" style="display: inline-block; background: #1C5D99; color: white; padding: 12px 24px; border-radius: 8px; text-decoration: none; font-weight: 600;">Reset Password</a>
  <p style="color: #888; font-size: 14px; margin-top: 16px;">This link expires in 30 minutes and can only be used once.</p>
  <p style="color: #aaa; font-size: 12px;">If you didn't request this, you can safely ignore this email.</p>
</div>`, resetURL)

	return s.SendHTMLEmail(to, subject, htmlBody, textBody)
}

// SendHTMLEmail sends an HTML email with plain text fallback using the
// configured provider
func (s *EmailService) SendHTMLEmail(to, subject, htmlBody, textBody string) error {
	if !s.cfg.Enabled {
		fmt.Printf("[EMAIL] Would send to %s: %s\n", to, subject)
		return nil
	}

	switch strings.ToLower(s.cfg.Provider) {
	case "smtp":
		return s.sendViaSMTP(to, subject, htmlBody, textBody)
	case "resend":
		return s.sendViaResend(to, subject, htmlBody, textBody)
	case "console", "dev", "development":
		fmt.Printf("[EMAIL] Would send to %s: %s\n", to, subject)
		return nil
	default:
		return fmt.Errorf("unsupported email provider: %s", s.cfg.Provider)
	}
}

// sendViaResend sends the email through the Resend API
func (s *EmailService) sendViaResend(to, subject, htmlBody, textBody string) error {
	if s.cfg.ResendKey == "" {
		return fmt.Errorf("resend provider not properly configured")
	}

	from := s.cfg.FromEmail
	if s.cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.cfg.FromName, s.cfg.FromEmail)
	}

	client := resend.NewClient(s.cfg.ResendKey)
	params := &resend.SendEmailRequest{
		From:    from,
		To:      []string{to},
		Subject: subject,
		Html:    htmlBody,
		Text:    textBody,
	}

	if _, err := client.Emails.Send(params); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// sendViaSMTP sends the email as a multipart/alternative message over SMTP
func (s *EmailService) sendViaSMTP(to, subject, htmlBody, textBody string) error {
	if s.cfg.SMTPHost == "" || s.cfg.Username == "" || s.cfg.Password == "" {
		return fmt.Errorf("email service not properly configured")
	}

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.SMTPHost)

	from := s.cfg.FromEmail
	if s.cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.cfg.FromName, s.cfg.FromEmail)
	}

	boundary := "----=_NextPart_1234567890"

	headers := fmt.Sprintf("From: %s\r\n", from) +
		fmt.Sprintf("To: %s\r\n", to) +
		fmt.Sprintf("Subject: %s\r\n", subject) +
		"MIME-Version: 1.0\r\n" +
		fmt.Sprintf("Content-Type: multipart/alternative; boundary=\"%s\"\r\n", boundary) +
		"\r\n"

	message := headers +
		fmt.Sprintf("--%s\r\n", boundary) +
		"Content-Type: text/plain; charset=UTF-8\r\n" +
		"Content-Transfer-Encoding: quoted-printable\r\n" +
		"\r\n" +
		textBody + "\r\n"

	if htmlBody != "" {
		message += fmt.Sprintf("--%s\r\n", boundary) +
			"Content-Type: text/html; charset=UTF-8\r\n" +
			"Content-Transfer-Encoding: quoted-printable\r\n" +
			"\r\n" +
			htmlBody + "\r\n"
	}

	message += fmt.Sprintf("--%s--\r\n", boundary)

	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)
	if err := smtp.SendMail(addr, auth, s.cfg.FromEmail, []string{to}, []byte(message)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
