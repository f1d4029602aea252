package services

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"meridianwealth/internal/config"
)

// SMSService handles sending SMS messages
type SMSService struct {
	cfg *config.SMSConfig
}

// NewSMSService creates a new SMS service
func NewSMSService(cfg *config.SMSConfig) *SMSService {
	return &SMSService{cfg: cfg}
}

// IsEnabled returns whether SMS service is enabled
func (s *SMSService) IsEnabled() bool {
	return s.cfg.Enabled
}

// SendOTP sends an OTP code via SMS
func (s *SMSService) SendOTP(phoneNumber, otpCode string) error {
	if !s.cfg.Enabled {
		fmt.Printf("[SMS] OTP would be sent to %s: %s\n", phoneNumber, otpCode)
		return nil
	}

	message := fmt.Sprintf("Your Meridian Wealth verification code is: %s. Valid for 10 minutes.", otpCode)

	switch strings.ToLower(s.cfg.Provider) {
	case "twilio":
		return s.sendViaTwilio(phoneNumber, message)
	case "console", "dev", "development":
		fmt.Printf("[SMS] OTP would be sent to %s: %s\n", phoneNumber, otpCode)
		return nil
	default:
		return fmt.Errorf("unsupported SMS provider: %s", s.cfg.Provider)
	}
}

// sendViaTwilio sends SMS via the Twilio messages API
func (s *SMSService) sendViaTwilio(phoneNumber, message string) error {
	if s.cfg.TwilioSID == "" || s.cfg.TwilioAuth == "" || s.cfg.TwilioFrom == "" {
		return fmt.Errorf("Twilio not properly configured")
	}

	normalizedPhone := phoneNumber
	if !strings.HasPrefix(normalizedPhone, "+") {
		normalizedPhone = "+" + normalizedPhone
	}

	endpoint := fmt.Sprintf("https://api.twilio.com/2010-04-01/Accounts/%s/Messages.json", s.cfg.TwilioSID)

	form := url.Values{}
	form.Set("From", s.cfg.TwilioFrom)
	form.Set("To", normalizedPhone)
	form.Set("Body", message)

	req, err := http.NewRequest(http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(s.cfg.TwilioSID, s.cfg.TwilioAuth)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send SMS request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Twilio API error (status %d)", resp.StatusCode)
	}

	return nil
}
