package services

import (
	"errors"
	"log"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"meridianwealth/internal/domain"
	"meridianwealth/internal/metrics"

	apperrors "meridianwealth/pkg/errors"
)

// OnboardingService drives the client onboarding workflow: draft section
// saves, questionnaire upserts, submission, and admin decisions.
type OnboardingService struct {
	db           *gorm.DB
	emailService *EmailService
}

// NewOnboardingService creates a new onboarding service
func NewOnboardingService(db *gorm.DB, emailService *EmailService) *OnboardingService {
	return &OnboardingService{db: db, emailService: emailService}
}

// WorkflowState is what an authenticated page load needs to route the user.
type WorkflowState struct {
	Route         domain.Route                  `json:"route"`
	Application   *domain.OnboardingApplication `json:"application"`
	Questionnaire *domain.QuestionnaireResponse `json:"questionnaire,omitempty"`
	Answers       map[string]string             `json:"answers,omitempty"`
	CanSubmit     bool                          `json:"can_submit"`
}

// State fetches the user's current workflow state, creating an empty draft
// application on first sign-in.
func (s *OnboardingService) State(user *domain.User) (*WorkflowState, error) {
	app, err := s.getOrCreate(user)
	if err != nil {
		return nil, err
	}

	state := &WorkflowState{
		Route:       domain.NextRoute(app),
		Application: app,
		CanSubmit:   app.Status == domain.StatusDraft && app.ConsultationComplete(),
	}

	var q domain.QuestionnaireResponse
	if err := s.db.First(&q, "user_id = ?", user.ID).Error; err == nil {
		state.Questionnaire = &q
		state.Answers = q.AnswerMap()
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Internal("failed to load questionnaire", err)
	}

	return state, nil
}

func (s *OnboardingService) getOrCreate(user *domain.User) (*domain.OnboardingApplication, error) {
	var app domain.OnboardingApplication
	err := s.db.First(&app, "user_id = ?", user.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		app = domain.OnboardingApplication{UserID: user.ID, Status: domain.StatusDraft}
		if err := s.db.Create(&app).Error; err != nil {
			log.Printf("[ONBOARD] Failed to create draft for user %d: %v", user.ID, err)
			return nil, apperrors.Internal("failed to create application", err)
		}
		log.Printf("[ONBOARD] Created empty draft for user %d", user.ID)
		return &app, nil
	}
	if err != nil {
		return nil, apperrors.Internal("failed to load application", err)
	}
	return &app, nil
}

// ProfileInput is the profile section of the onboarding form
type ProfileInput struct {
	Name                   string `json:"name"`
	Email                  string `json:"email"`
	Phone                  string `json:"phone"`
	Address                string `json:"address"`
	PreferredCommunication string `json:"preferred_communication"`
	MediaAccountNumber     string `json:"media_account_number"`
	ImageURL               string `json:"image_url"`
}

// SaveProfile stores the profile section as a draft
func (s *OnboardingService) SaveProfile(user *domain.User, in ProfileInput) (*domain.OnboardingApplication, error) {
	app, err := s.editableApplication(user)
	if err != nil {
		return nil, err
	}

	app.Name = strings.TrimSpace(in.Name)
	app.Email = strings.ToLower(strings.TrimSpace(in.Email))
	app.Phone = strings.TrimSpace(in.Phone)
	app.Address = strings.TrimSpace(in.Address)
	app.PreferredCommunication = strings.TrimSpace(in.PreferredCommunication)
	app.MediaAccountNumber = strings.TrimSpace(in.MediaAccountNumber)
	app.ImageURL = strings.TrimSpace(in.ImageURL)
	s.advanceStep(app, domain.StepProfile)

	if err := s.db.Save(app).Error; err != nil {
		log.Printf("[ONBOARD] SaveProfile failed for user %d: %v", user.ID, err)
		return nil, apperrors.Internal("failed to save profile", err)
	}

	log.Printf("[ONBOARD] Profile draft saved for user %d", user.ID)
	return app, nil
}

// QuestionnaireInput is the questionnaire section of the onboarding form
type QuestionnaireInput struct {
	Answers              map[string]string `json:"answers"`
	AnnualIncome         string            `json:"annual_income"`
	NetWorth             string            `json:"net_worth"`
	RiskTolerance        string            `json:"risk_tolerance"`
	InvestmentHorizon    string            `json:"investment_horizon"`
	InvestmentExperience string            `json:"investment_experience"`
	FinancialGoals       string            `json:"financial_goals"`
	Completed            bool              `json:"completed"`
}

// SaveQuestionnaire upserts the questionnaire response for the user's
// application (last writer wins on the user-id key)
func (s *OnboardingService) SaveQuestionnaire(user *domain.User, in QuestionnaireInput) (*domain.QuestionnaireResponse, error) {
	app, err := s.editableApplication(user)
	if err != nil {
		return nil, err
	}

	var q domain.QuestionnaireResponse
	err = s.db.First(&q, "user_id = ?", user.ID).Error
	isNew := errors.Is(err, gorm.ErrRecordNotFound)
	if err != nil && !isNew {
		return nil, apperrors.Internal("failed to load questionnaire", err)
	}

	q.UserID = user.ID
	q.AnnualIncome = in.AnnualIncome
	q.NetWorth = in.NetWorth
	q.RiskTolerance = in.RiskTolerance
	q.InvestmentHorizon = in.InvestmentHorizon
	q.InvestmentExperience = in.InvestmentExperience
	q.FinancialGoals = in.FinancialGoals
	q.Completed = in.Completed
	if err := q.SetAnswers(in.Answers); err != nil {
		return nil, apperrors.Validation("answers could not be encoded")
	}

	if isNew {
		err = s.db.Create(&q).Error
	} else {
		err = s.db.Save(&q).Error
	}
	if err != nil {
		log.Printf("[ONBOARD] SaveQuestionnaire failed for user %d: %v", user.ID, err)
		return nil, apperrors.Internal("failed to save questionnaire", err)
	}

	s.advanceStep(app, domain.StepQuestionnaire)
	if err := s.db.Save(app).Error; err != nil {
		return nil, apperrors.Internal("failed to update application", err)
	}

	log.Printf("[ONBOARD] Questionnaire saved for user %d (completed=%v)", user.ID, q.Completed)
	return &q, nil
}

// ConsultationInput is the consultation-scheduling section
type ConsultationInput struct {
	Type string `json:"type"`
	Date string `json:"date"`
	Time string `json:"time"`
}

// SaveConsultation stores the consultation section as a draft
func (s *OnboardingService) SaveConsultation(user *domain.User, in ConsultationInput) (*domain.OnboardingApplication, error) {
	app, err := s.editableApplication(user)
	if err != nil {
		return nil, err
	}

	app.ConsultationType = strings.TrimSpace(in.Type)
	app.ConsultationDate = strings.TrimSpace(in.Date)
	app.ConsultationTime = strings.TrimSpace(in.Time)
	s.advanceStep(app, domain.StepConsultation)

	if err := s.db.Save(app).Error; err != nil {
		log.Printf("[ONBOARD] SaveConsultation failed for user %d: %v", user.ID, err)
		return nil, apperrors.Internal("failed to save consultation", err)
	}

	log.Printf("[ONBOARD] Consultation draft saved for user %d", user.ID)
	return app, nil
}

// Submit moves a draft application to pending. Consultation scheduling must
// be complete; the review screen disables its control on the same predicate,
// but the service is the authority.
func (s *OnboardingService) Submit(user *domain.User) (*domain.OnboardingApplication, error) {
	app, err := s.editableApplication(user)
	if err != nil {
		return nil, err
	}

	if !app.ConsultationComplete() {
		log.Printf("[ONBOARD] Submit rejected for user %d: consultation incomplete", user.ID)
		return nil, apperrors.BadRequest("consultation scheduling must be completed before submission")
	}

	now := time.Now()
	app.Status = domain.StatusPending
	app.SubmittedAt = &now
	s.advanceStep(app, domain.StepReview)

	if err := s.db.Save(app).Error; err != nil {
		log.Printf("[ONBOARD] Submit failed for user %d: %v", user.ID, err)
		return nil, apperrors.Internal("failed to submit application", err)
	}

	log.Printf("[ONBOARD] Application submitted by user %d", user.ID)
	metrics.RecordOnboardingSubmission()
	return app, nil
}

// editableApplication fetches the application and rejects edits once it has
// left draft state.
func (s *OnboardingService) editableApplication(user *domain.User) (*domain.OnboardingApplication, error) {
	app, err := s.getOrCreate(user)
	if err != nil {
		return nil, err
	}
	if app.Status != domain.StatusDraft {
		return nil, apperrors.BadRequest("application is no longer editable")
	}
	return app, nil
}

func (s *OnboardingService) advanceStep(app *domain.OnboardingApplication, step int) {
	app.CurrentStep = step
	if step > app.MaxStep {
		app.MaxStep = step
	}
}

// AdminList returns applications for review, newest submissions first
func (s *OnboardingService) AdminList(status string, skip, limit int) ([]domain.OnboardingApplication, error) {
	log.Printf("[ONBOARD] AdminList request: status=%q skip=%d limit=%d", status, skip, limit)

	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if skip < 0 {
		skip = 0
	}

	query := s.db.Order("created_at DESC").Offset(skip).Limit(limit)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var apps []domain.OnboardingApplication
	if err := query.Find(&apps).Error; err != nil {
		log.Printf("[ONBOARD] AdminList failed: %v", err)
		return nil, apperrors.Internal("failed to list applications", err)
	}

	log.Printf("[ONBOARD] AdminList successful: returned %d applications", len(apps))
	return apps, nil
}

// AdminGet returns one application with its questionnaire
func (s *OnboardingService) AdminGet(userID uint) (*domain.OnboardingApplication, *domain.QuestionnaireResponse, error) {
	var app domain.OnboardingApplication
	if err := s.db.First(&app, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperrors.NotFound("application not found")
		}
		return nil, nil, apperrors.Internal("failed to load application", err)
	}

	var q domain.QuestionnaireResponse
	if err := s.db.First(&q, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &app, nil, nil
		}
		return nil, nil, apperrors.Internal("failed to load questionnaire", err)
	}
	return &app, &q, nil
}

// Approve marks a pending application approved
func (s *OnboardingService) Approve(userID uint) (*domain.OnboardingApplication, error) {
	app, _, err := s.AdminGet(userID)
	if err != nil {
		return nil, err
	}
	if app.Status != domain.StatusPending && app.Status != domain.StatusSubmitted {
		return nil, apperrors.BadRequest("only pending applications can be approved")
	}

	app.Status = domain.StatusApproved
	if err := s.db.Save(app).Error; err != nil {
		log.Printf("[ONBOARD] Approve failed for user %d: %v", userID, err)
		return nil, apperrors.Internal("failed to approve application", err)
	}

	log.Printf("[ONBOARD] Application approved for user %d", userID)
	metrics.RecordOnboardingDecision("approved")

	go s.notifyDecision(app, "approved")
	return app, nil
}

// Reject removes the application and its questionnaire. Rejection is not a
// stored state: the client reads the missing record as "start over".
func (s *OnboardingService) Reject(userID uint) error {
	app, _, err := s.AdminGet(userID)
	if err != nil {
		return err
	}
	if app.Status != domain.StatusPending && app.Status != domain.StatusSubmitted {
		return apperrors.BadRequest("only pending applications can be rejected")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// Questionnaire first: it must not outlive its application.
		if err := tx.Delete(&domain.QuestionnaireResponse{}, "user_id = ?", userID).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.OnboardingApplication{}, "user_id = ?", userID).Error
	})
	if err != nil {
		log.Printf("[ONBOARD] Reject failed for user %d: %v", userID, err)
		return apperrors.Internal("failed to reject application", err)
	}

	log.Printf("[ONBOARD] Application rejected (deleted) for user %d", userID)
	metrics.RecordOnboardingDecision("rejected")

	go s.notifyDecision(app, "rejected")
	return nil
}

func (s *OnboardingService) notifyDecision(app *domain.OnboardingApplication, decision string) {
	email := strings.TrimSpace(app.Email)
	if email == "" {
		return
	}
	name := app.Name
	if name == "" {
		name = "there"
	}
	var subject, body string
	if decision == "approved" {
		subject = "Your Meridian Wealth application has been approved"
		body = "Hello " + name + ",\n\nYour onboarding application has been approved. You can now sign in to your client dashboard.\n\nBest regards,\nThe Meridian Wealth Team\n"
	} else {
		subject = "Update on your Meridian Wealth application"
		body = "Hello " + name + ",\n\nWe were unable to approve your onboarding application at this time. You are welcome to start a new application.\n\nBest regards,\nThe Meridian Wealth Team\n"
	}
	if err := s.emailService.SendHTMLEmail(email, subject, "", body); err != nil {
		log.Printf("[ONBOARD] Warning: failed to send %s notification to %s: %v", decision, email, err)
	}
}

// CheckInPayload is the URL encoded into a consultation check-in QR code so
// scanning it at the front desk opens the application straight away.
func CheckInPayload(publicURL string, app *domain.OnboardingApplication) string {
	return strings.TrimRight(publicURL, "/") + "/admin/applications/" + strconv.FormatUint(uint64(app.UserID), 10)
}
