package services

import (
	"path/filepath"
	"testing"

	"gorm.io/gorm"

	"meridianwealth/internal/config"
	"meridianwealth/internal/database"
	"meridianwealth/internal/domain"

	apperrors "meridianwealth/pkg/errors"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenTest(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	return db
}

func consoleEmail() *EmailService {
	return NewEmailService(&config.EmailConfig{Provider: "console", FromEmail: "test@example.com"})
}

func createTestUser(t *testing.T, db *gorm.DB, email string) *domain.User {
	t.Helper()
	user := &domain.User{
		Name:           "Test Client",
		Email:          email,
		HashedPassword: "x",
		IsActive:       true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func TestStateCreatesEmptyDraftOnFirstLoad(t *testing.T) {
	db := testDB(t)
	svc := NewOnboardingService(db, consoleEmail())
	user := createTestUser(t, db, "first@example.com")

	state, err := svc.State(user)
	if err != nil {
		t.Fatalf("State failed: %v", err)
	}
	if state.Application == nil {
		t.Fatal("expected a draft application to be created")
	}
	if state.Application.Status != domain.StatusDraft {
		t.Errorf("expected draft status, got %q", state.Application.Status)
	}
	if state.Route != domain.RouteWelcome {
		t.Errorf("expected welcome route for empty draft, got %q", state.Route)
	}
	if state.CanSubmit {
		t.Error("empty draft must not be submittable")
	}

	var count int64
	db.Model(&domain.OnboardingApplication{}).Where("user_id = ?", user.ID).Count(&count)
	if count != 1 {
		t.Errorf("expected exactly one application row, got %d", count)
	}
}

func TestSubmitRequiresCompleteConsultation(t *testing.T) {
	db := testDB(t)
	svc := NewOnboardingService(db, consoleEmail())
	user := createTestUser(t, db, "gate@example.com")

	if _, err := svc.SaveProfile(user, ProfileInput{Name: "Alice", Email: "alice@example.com"}); err != nil {
		t.Fatalf("SaveProfile failed: %v", err)
	}
	if _, err := svc.SaveConsultation(user, ConsultationInput{Type: "video", Date: "2026-09-01"}); err != nil {
		t.Fatalf("SaveConsultation failed: %v", err)
	}

	// Time is still missing.
	if _, err := svc.Submit(user); err == nil {
		t.Fatal("expected Submit to fail with incomplete consultation")
	}

	if _, err := svc.SaveConsultation(user, ConsultationInput{Type: "video", Date: "2026-09-01", Time: "10:30"}); err != nil {
		t.Fatalf("SaveConsultation failed: %v", err)
	}

	app, err := svc.Submit(user)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if app.Status != domain.StatusPending {
		t.Errorf("expected pending status after submit, got %q", app.Status)
	}
	if app.SubmittedAt == nil {
		t.Error("expected SubmittedAt to be set")
	}
}

func TestSubmittedApplicationIsNoLongerEditable(t *testing.T) {
	db := testDB(t)
	svc := NewOnboardingService(db, consoleEmail())
	user := createTestUser(t, db, "locked@example.com")

	if _, err := svc.SaveConsultation(user, ConsultationInput{Type: "office", Date: "2026-09-02", Time: "14:00"}); err != nil {
		t.Fatalf("SaveConsultation failed: %v", err)
	}
	if _, err := svc.Submit(user); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if _, err := svc.SaveProfile(user, ProfileInput{Name: "Too Late"}); err == nil {
		t.Fatal("expected edits after submission to be rejected")
	}
	if _, err := svc.Submit(user); err == nil {
		t.Fatal("expected double submission to be rejected")
	}
}

func TestQuestionnaireUpsertKeepsOneRow(t *testing.T) {
	db := testDB(t)
	svc := NewOnboardingService(db, consoleEmail())
	user := createTestUser(t, db, "quiz@example.com")

	first := QuestionnaireInput{
		Answers:       map[string]string{"q1": "a"},
		RiskTolerance: "low",
	}
	if _, err := svc.SaveQuestionnaire(user, first); err != nil {
		t.Fatalf("first SaveQuestionnaire failed: %v", err)
	}

	second := QuestionnaireInput{
		Answers:       map[string]string{"q1": "b", "q2": "c"},
		RiskTolerance: "high",
		Completed:     true,
	}
	q, err := svc.SaveQuestionnaire(user, second)
	if err != nil {
		t.Fatalf("second SaveQuestionnaire failed: %v", err)
	}

	var count int64
	db.Model(&domain.QuestionnaireResponse{}).Where("user_id = ?", user.ID).Count(&count)
	if count != 1 {
		t.Errorf("expected one questionnaire row after upsert, got %d", count)
	}
	if q.RiskTolerance != "high" {
		t.Errorf("expected last write to win, got risk tolerance %q", q.RiskTolerance)
	}
	answers := q.AnswerMap()
	if answers["q2"] != "c" {
		t.Errorf("expected answers to be replaced, got %v", answers)
	}
}

func TestApproveMovesPendingToApproved(t *testing.T) {
	db := testDB(t)
	svc := NewOnboardingService(db, consoleEmail())
	user := createTestUser(t, db, "approve@example.com")

	if _, err := svc.SaveConsultation(user, ConsultationInput{Type: "video", Date: "2026-09-03", Time: "09:00"}); err != nil {
		t.Fatalf("SaveConsultation failed: %v", err)
	}
	if _, err := svc.Submit(user); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	app, err := svc.Approve(user.ID)
	if err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	if app.Status != domain.StatusApproved {
		t.Errorf("expected approved status, got %q", app.Status)
	}

	state, err := svc.State(user)
	if err != nil {
		t.Fatalf("State failed: %v", err)
	}
	if state.Route != domain.RouteDashboard {
		t.Errorf("expected dashboard route after approval, got %q", state.Route)
	}
}

func TestApproveRejectsDrafts(t *testing.T) {
	db := testDB(t)
	svc := NewOnboardingService(db, consoleEmail())
	user := createTestUser(t, db, "draft@example.com")

	if _, err := svc.State(user); err != nil {
		t.Fatalf("State failed: %v", err)
	}
	if _, err := svc.Approve(user.ID); err == nil {
		t.Fatal("expected Approve to fail on a draft application")
	}
}

func TestRejectDeletesApplicationAndQuestionnaire(t *testing.T) {
	db := testDB(t)
	svc := NewOnboardingService(db, consoleEmail())
	user := createTestUser(t, db, "reject@example.com")

	if _, err := svc.SaveQuestionnaire(user, QuestionnaireInput{Answers: map[string]string{"q1": "a"}}); err != nil {
		t.Fatalf("SaveQuestionnaire failed: %v", err)
	}
	if _, err := svc.SaveConsultation(user, ConsultationInput{Type: "video", Date: "2026-09-04", Time: "11:00"}); err != nil {
		t.Fatalf("SaveConsultation failed: %v", err)
	}
	if _, err := svc.Submit(user); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if err := svc.Reject(user.ID); err != nil {
		t.Fatalf("Reject failed: %v", err)
	}

	var apps, quizzes int64
	db.Model(&domain.OnboardingApplication{}).Where("user_id = ?", user.ID).Count(&apps)
	db.Model(&domain.QuestionnaireResponse{}).Where("user_id = ?", user.ID).Count(&quizzes)
	if apps != 0 || quizzes != 0 {
		t.Errorf("expected both records deleted, got apps=%d quizzes=%d", apps, quizzes)
	}

	if _, _, err := svc.AdminGet(user.ID); err == nil || !apperrors.IsNotFound(err) {
		t.Errorf("expected not-found after rejection, got %v", err)
	}

	// A rejected client starts over: the next page load creates a fresh draft.
	state, err := svc.State(user)
	if err != nil {
		t.Fatalf("State failed: %v", err)
	}
	if state.Route != domain.RouteWelcome {
		t.Errorf("expected welcome route after rejection, got %q", state.Route)
	}
}

func TestCheckInPayload(t *testing.T) {
	app := &domain.OnboardingApplication{UserID: 42}
	got := CheckInPayload("https://meridianwealth.com/", app)
	want := "https://meridianwealth.com/admin/applications/42"
	if got != want {
		t.Errorf("CheckInPayload = %q, want %q", got, want)
	}
}
