package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"gorm.io/gorm"

	"meridianwealth/internal/config"
	"meridianwealth/internal/database"
	"meridianwealth/internal/domain"
	"meridianwealth/internal/services"
	"meridianwealth/internal/util"
)

func testServer(t *testing.T) (*httptest.Server, *gorm.DB) {
	t.Helper()

	db, err := database.OpenTest(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	emailSvc := services.NewEmailService(&config.EmailConfig{Provider: "console"})
	smsSvc := services.NewSMSService(&config.SMSConfig{Provider: "console"})
	otpSvc := services.NewOTPService(emailSvc, smsSvc)
	authSvc := services.NewAuthService(db, emailSvc, otpSvc)

	storageCfg := config.Get()
	storageCfg.Storage.Root = t.TempDir()
	storageSvc, err := services.NewStorageService(storageCfg)
	if err != nil {
		t.Fatalf("failed to init storage: %v", err)
	}

	router := NewRouter(Deps{
		DB:         db,
		Auth:       NewAuthHandler(authSvc, otpSvc),
		Onboarding: NewOnboardingHandler(services.NewOnboardingService(db, emailSvc)),
		Articles:   NewArticleHandler(services.NewArticleService(db)),
		Contacts:   NewContactHandler(services.NewContactService(db, emailSvc)),
		Carousel:   NewCarouselHandler(),
		Storage:    NewStorageHandler(storageSvc),
		Health:     NewHealthHandler(services.NewHealthService()),
		UploadsDir: storageSvc.Root(),
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, db
}

func tokenFor(t *testing.T, db *gorm.DB, email string, admin bool) string {
	t.Helper()
	hashed, err := util.HashPassword("password123")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	user := &domain.User{
		Name:           "Test",
		Email:          email,
		HashedPassword: hashed,
		IsActive:       true,
		IsAdmin:        admin,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	token, err := util.GenerateToken(user)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	return token
}

func doJSON(t *testing.T, method, url, token string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestCarouselLayoutEndpoint(t *testing.T) {
	srv, _ := testServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/carousel/layout?viewport=1400&sections=4", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var layout struct {
		Dimensions struct {
			CardWidth float64 `json:"card_width"`
			Mobile    bool    `json:"mobile"`
		} `json:"dimensions"`
		Entries []struct {
			OriginalIndex int `json:"original_index"`
		} `json:"entries"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&layout); err != nil {
		t.Fatalf("failed to decode layout: %v", err)
	}
	if layout.Dimensions.CardWidth != 900 {
		t.Errorf("expected desktop card width 900 at 1400px, got %v", layout.Dimensions.CardWidth)
	}
	if layout.Dimensions.Mobile {
		t.Error("1400px viewport must not be mobile")
	}
	if len(layout.Entries) != 12 {
		t.Errorf("expected 12 virtual entries for 4 sections, got %d", len(layout.Entries))
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/carousel/layout?viewport=abc&sections=4", "", nil)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 for bad viewport, got %d", resp.StatusCode)
	}
}

func TestAuthenticationGate(t *testing.T) {
	srv, db := testServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/onboarding", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/onboarding", "not-a-token", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 with garbage token, got %d", resp.StatusCode)
	}

	token := tokenFor(t, db, "client@example.com", false)
	resp = doJSON(t, http.MethodGet, srv.URL+"/onboarding", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 with valid token, got %d", resp.StatusCode)
	}

	var state struct {
		Route string `json:"route"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		t.Fatalf("failed to decode state: %v", err)
	}
	if state.Route != "welcome" {
		t.Errorf("expected welcome route for a fresh account, got %q", state.Route)
	}
}

func TestAdminGate(t *testing.T) {
	srv, db := testServer(t)

	client := tokenFor(t, db, "plain@example.com", false)
	resp := doJSON(t, http.MethodGet, srv.URL+"/admin/users", client, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for non-admin, got %d", resp.StatusCode)
	}

	admin := tokenFor(t, db, "boss@example.com", true)
	resp = doJSON(t, http.MethodGet, srv.URL+"/admin/users", admin, nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 for admin, got %d", resp.StatusCode)
	}
}

func TestContactSubmitAndExport(t *testing.T) {
	srv, db := testServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/contact", "", map[string]string{
		"name":         "Walk In",
		"contact_type": "email",
		"contact_info": "walkin@example.com",
		"message":      "Interested in advisory services",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 for contact submit, got %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/contact", "", map[string]string{
		"name": "Incomplete",
	})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 for incomplete form, got %d", resp.StatusCode)
	}

	admin := tokenFor(t, db, "triage@example.com", true)
	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/admin/inquiries/export", nil)
	req.Header.Set("Authorization", "Bearer "+admin)
	exportResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("export request failed: %v", err)
	}
	defer exportResp.Body.Close()

	if exportResp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for export, got %d", exportResp.StatusCode)
	}
	if ct := exportResp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("expected text/csv content type, got %q", ct)
	}
	if cd := exportResp.Header.Get("Content-Disposition"); !strings.Contains(cd, "contact_inquiries") {
		t.Errorf("expected download filename in disposition, got %q", cd)
	}
}

func TestCheckInQRRequiresSubmission(t *testing.T) {
	srv, db := testServer(t)

	admin := tokenFor(t, db, "desk@example.com", true)
	client := tokenFor(t, db, "visitor@example.com", false)

	// First authenticated load creates the draft application.
	resp := doJSON(t, http.MethodGet, srv.URL+"/onboarding", client, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 loading onboarding state, got %d", resp.StatusCode)
	}

	var visitor domain.User
	if err := db.Where("email = ?", "visitor@example.com").First(&visitor).Error; err != nil {
		t.Fatalf("failed to load visitor: %v", err)
	}
	qrURL := srv.URL + "/admin/applications/" + strconv.FormatUint(uint64(visitor.ID), 10) + "/checkin-qr"

	resp = doJSON(t, http.MethodGet, qrURL, admin, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for a draft application, got %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPut, srv.URL+"/onboarding/consultation", client, map[string]string{
		"type": "office", "date": "2026-09-10", "time": "10:00",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 saving consultation, got %d", resp.StatusCode)
	}
	resp = doJSON(t, http.MethodPost, srv.URL+"/onboarding/submit", client, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 submitting, got %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodGet, qrURL, admin, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for a submitted application, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("expected image/png, got %q", ct)
	}
}

func TestPublicArticlesHideDrafts(t *testing.T) {
	srv, db := testServer(t)

	articles := services.NewArticleService(db)
	if _, err := articles.Create(services.ArticleInput{Slug: "draft-piece", TitleEN: "Draft Piece"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	resp := doJSON(t, http.MethodGet, srv.URL+"/articles", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var list []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("failed to decode list: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("expected drafts hidden from public list, got %d items", len(list))
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/articles/draft-piece", "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for draft by slug, got %d", resp.StatusCode)
	}
}
