package domain

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Onboarding application status values. Rejection is not stored: rejecting an
// application deletes the record, and the absence of a non-draft record is
// read as "rejected, start over".
const (
	StatusDraft     = "draft"
	StatusSubmitted = "submitted"
	StatusPending   = "pending"
	StatusApproved  = "approved"
)

// Onboarding step indices persisted so a resumed session lands on the last
// section reached without forcing re-traversal of completed ones.
const (
	StepProfile = iota
	StepQuestionnaire
	StepConsultation
	StepReview
)

// OnboardingApplication is the single record driving a client's onboarding.
// Its primary key is the owning user's ID.
type OnboardingApplication struct {
	UserID                 uint       `gorm:"primaryKey" json:"user_id"`
	Name                   string     `json:"name"`
	Email                  string     `json:"email"`
	Phone                  string     `json:"phone"`
	Address                string     `json:"address"`
	PreferredCommunication string     `json:"preferred_communication"`
	MediaAccountNumber     string     `json:"media_account_number"`
	ImageURL               string     `json:"image_url"`
	ConsultationType       string     `json:"consultation_type"`
	ConsultationDate       string     `json:"consultation_date"`
	ConsultationTime       string     `json:"consultation_time"`
	Status                 string     `gorm:"default:'draft';index" json:"status"`
	CurrentStep            int        `gorm:"default:0" json:"current_step"`
	MaxStep                int        `gorm:"default:0" json:"max_step"`
	SubmittedAt            *time.Time `json:"submitted_at"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              *time.Time `json:"updated_at"`
}

// TableName specifies the table name for OnboardingApplication
func (OnboardingApplication) TableName() string {
	return "onboarding_applications"
}

// BeforeCreate hook
func (a *OnboardingApplication) BeforeCreate(tx *gorm.DB) error {
	a.CreatedAt = time.Now()
	if a.Status == "" {
		a.Status = StatusDraft
	}
	return nil
}

// BeforeUpdate hook
func (a *OnboardingApplication) BeforeUpdate(tx *gorm.DB) error {
	now := time.Now()
	a.UpdatedAt = &now
	return nil
}

// ConsultationComplete reports whether consultation scheduling is done:
// type, date and time must all be set before submission is allowed.
func (a *OnboardingApplication) ConsultationComplete() bool {
	return strings.TrimSpace(a.ConsultationType) != "" &&
		strings.TrimSpace(a.ConsultationDate) != "" &&
		strings.TrimSpace(a.ConsultationTime) != ""
}

// HasProfileContent reports whether the user has filled in anything at all.
// An empty draft routes to the welcome page, a partial one resumes onboarding.
func (a *OnboardingApplication) HasProfileContent() bool {
	fields := []string{
		a.Name, a.Email, a.Phone, a.Address,
		a.PreferredCommunication, a.MediaAccountNumber, a.ImageURL,
		a.ConsultationType, a.ConsultationDate, a.ConsultationTime,
	}
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return true
		}
	}
	return false
}

// Route is where an authenticated page load should send the user.
type Route string

const (
	RouteWelcome    Route = "welcome"
	RouteOnboarding Route = "onboarding"
	RoutePending    Route = "pending"
	RouteDashboard  Route = "dashboard"
)

// NextRoute maps onboarding state to the route the client should render.
// A nil application means no record exists (never started, or rejected).
func NextRoute(app *OnboardingApplication) Route {
	if app == nil {
		return RouteWelcome
	}
	switch app.Status {
	case StatusSubmitted, StatusPending:
		return RoutePending
	case StatusApproved:
		return RouteDashboard
	default:
		if app.HasProfileContent() {
			return RouteOnboarding
		}
		return RouteWelcome
	}
}
