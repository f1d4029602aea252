package services

import (
	"log"
	"strings"

	"meridianwealth/internal/metrics"
	"meridianwealth/internal/util"

	apperrors "meridianwealth/pkg/errors"
)

// OTPService coordinates one-time-password challenges over SMS or email
type OTPService struct {
	email *EmailService
	sms   *SMSService
}

// NewOTPService creates a new OTP service
func NewOTPService(email *EmailService, sms *SMSService) *OTPService {
	return &OTPService{email: email, sms: sms}
}

// Send generates an OTP for the identifier (phone number or email) and
// delivers it over the matching channel
func (s *OTPService) Send(identifier string) error {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return apperrors.BadRequest("phone number or email is required")
	}

	otp, normalized, err := util.CreateOTPSession(identifier)
	if err != nil {
		log.Printf("[OTP] Send failed for %s: %v", normalized, err)
		return apperrors.Wrap(apperrors.ErrCodeBadRequest, "could not create OTP session", err)
	}

	if strings.Contains(identifier, "@") {
		if err := s.email.SendOTP(normalized, otp); err != nil {
			log.Printf("[OTP] Email delivery failed for %s: %v", normalized, err)
			return apperrors.Internal("failed to send OTP email", err)
		}
		metrics.RecordOTPGenerated("email")
	} else {
		if err := s.sms.SendOTP(normalized, otp); err != nil {
			log.Printf("[OTP] SMS delivery failed for %s: %v", normalized, err)
			return apperrors.Internal("failed to send OTP SMS", err)
		}
		metrics.RecordOTPGenerated("sms")
	}

	log.Printf("[OTP] Code sent to %s", normalized)
	return nil
}

// Verify checks an OTP code against the open session for the identifier
func (s *OTPService) Verify(identifier, code string) error {
	if err := util.VerifyOTPSession(identifier, code); err != nil {
		log.Printf("[OTP] Verification failed for %s: %v", util.NormalizeIdentifier(identifier), err)
		metrics.RecordOTPVerified(false)
		return apperrors.Wrap(apperrors.ErrCodeBadRequest, err.Error(), err)
	}

	log.Printf("[OTP] Verification successful for %s", util.NormalizeIdentifier(identifier))
	metrics.RecordOTPVerified(true)
	return nil
}

// CheckVerified reports whether the identifier has a verified session
func (s *OTPService) CheckVerified(identifier string) bool {
	return util.IsVerified(identifier)
}
