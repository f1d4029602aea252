package util

import (
	"crypto/rand"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"
)

const (
	OTPValidityMinutes      = 10
	OTPLength               = 6
	MaxVerificationAttempts = 3
	RateLimitMinutes        = 1
	MaxRequestsPerMinute    = 5
)

// OTPSession represents an in-flight one-time-password challenge
type OTPSession struct {
	OTP       string
	CreatedAt time.Time
	ExpiresAt time.Time
	Attempts  int
	Verified  bool
}

var (
	otpStorage     = make(map[string]*OTPSession)
	rateLimitStore = make(map[string][]time.Time)
	mu             sync.RWMutex
)

// GenerateOTP generates a random 6-digit OTP
func GenerateOTP() (string, error) {
	bytes := make([]byte, OTPLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}

	otp := ""
	for i := 0; i < OTPLength; i++ {
		otp += fmt.Sprintf("%d", bytes[i]%10)
	}
	return otp, nil
}

// NormalizeIdentifier normalizes a phone number or email for use as a
// session key: emails are lowercased, phone numbers reduced to digits.
func NormalizeIdentifier(identifier string) string {
	if strings.Contains(identifier, "@") {
		return strings.ToLower(strings.TrimSpace(identifier))
	}
	re := regexp.MustCompile(`\d+`)
	digits := re.FindAllString(identifier, -1)
	return strings.Join(digits, "")
}

// checkRateLimit enforces the per-identifier request budget. Callers must
// hold mu.
func checkRateLimit(normalized string) error {
	now := time.Now()
	cutoff := now.Add(-RateLimitMinutes * time.Minute)

	valid := []time.Time{}
	for _, reqTime := range rateLimitStore[normalized] {
		if reqTime.After(cutoff) {
			valid = append(valid, reqTime)
		}
	}

	if len(valid) >= MaxRequestsPerMinute {
		wait := valid[0].Add(RateLimitMinutes * time.Minute).Sub(now)
		if wait > 0 {
			return fmt.Errorf("rate limit exceeded: maximum %d OTP requests per minute. Please wait %v before requesting again",
				MaxRequestsPerMinute, wait.Round(time.Second))
		}
	}

	rateLimitStore[normalized] = append(valid, now)
	return nil
}

// CreateOTPSession generates a code and opens a session for the identifier.
// Returns the code and the normalized identifier.
func CreateOTPSession(identifier string) (string, string, error) {
	normalized := NormalizeIdentifier(identifier)

	mu.Lock()
	defer mu.Unlock()

	if err := checkRateLimit(normalized); err != nil {
		return "", "", err
	}

	otp, err := GenerateOTP()
	if err != nil {
		return "", "", fmt.Errorf("failed to generate OTP: %w", err)
	}

	now := time.Now()
	otpStorage[normalized] = &OTPSession{
		OTP:       otp,
		CreatedAt: now,
		ExpiresAt: now.Add(OTPValidityMinutes * time.Minute),
	}

	return otp, normalized, nil
}

// VerifyOTPSession verifies an OTP code against the open session
func VerifyOTPSession(identifier, otpCode string) error {
	normalized := NormalizeIdentifier(identifier)

	mu.Lock()
	defer mu.Unlock()

	session, exists := otpStorage[normalized]
	if !exists {
		return fmt.Errorf("OTP session not found. Please request a new OTP")
	}

	if session.Verified {
		return fmt.Errorf("this contact has already been verified")
	}

	if time.Now().After(session.ExpiresAt) {
		delete(otpStorage, normalized)
		return fmt.Errorf("OTP has expired. Please request a new OTP")
	}

	if session.Attempts >= MaxVerificationAttempts {
		delete(otpStorage, normalized)
		return fmt.Errorf("maximum verification attempts exceeded. Please request a new OTP")
	}

	session.Attempts++

	if session.OTP != otpCode {
		remaining := MaxVerificationAttempts - session.Attempts
		if remaining > 0 {
			return fmt.Errorf("invalid OTP. %d attempt(s) remaining", remaining)
		}
		delete(otpStorage, normalized)
		return fmt.Errorf("invalid OTP. Maximum attempts exceeded. Please request a new OTP")
	}

	session.Verified = true
	return nil
}

// IsVerified checks if an identifier has a verified session
func IsVerified(identifier string) bool {
	normalized := NormalizeIdentifier(identifier)

	mu.RLock()
	defer mu.RUnlock()

	session, exists := otpStorage[normalized]
	return exists && session.Verified
}

// ClearOTPSession clears an OTP session
func ClearOTPSession(identifier string) {
	normalized := NormalizeIdentifier(identifier)

	mu.Lock()
	defer mu.Unlock()

	delete(otpStorage, normalized)
}

// CleanupExpiredSessions removes expired sessions and stale rate entries
func CleanupExpiredSessions() {
	mu.Lock()
	defer mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-RateLimitMinutes * time.Minute)

	for key, session := range otpStorage {
		if now.After(session.ExpiresAt) {
			delete(otpStorage, key)
		}
	}

	for key, requests := range rateLimitStore {
		valid := []time.Time{}
		for _, reqTime := range requests {
			if reqTime.After(cutoff) {
				valid = append(valid, reqTime)
			}
		}
		if len(valid) == 0 {
			delete(rateLimitStore, key)
		} else {
			rateLimitStore[key] = valid
		}
	}
}
