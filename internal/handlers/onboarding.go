package handlers

import (
	"net/http"

	qrcode "github.com/skip2/go-qrcode"

	"meridianwealth/internal/config"
	"meridianwealth/internal/domain"
	"meridianwealth/internal/services"

	apperrors "meridianwealth/pkg/errors"
)

// OnboardingHandler exposes the client onboarding flow and its admin review
type OnboardingHandler struct {
	onboarding *services.OnboardingService
}

func NewOnboardingHandler(onboarding *services.OnboardingService) *OnboardingHandler {
	return &OnboardingHandler{onboarding: onboarding}
}

// State returns the workflow snapshot the client shell routes on
func (h *OnboardingHandler) State(w http.ResponseWriter, r *http.Request) {
	state, err := h.onboarding.State(UserFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *OnboardingHandler) SaveProfile(w http.ResponseWriter, r *http.Request) {
	var in services.ProfileInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	app, err := h.onboarding.SaveProfile(UserFrom(r.Context()), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

func (h *OnboardingHandler) SaveQuestionnaire(w http.ResponseWriter, r *http.Request) {
	var in services.QuestionnaireInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	resp, err := h.onboarding.SaveQuestionnaire(UserFrom(r.Context()), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *OnboardingHandler) SaveConsultation(w http.ResponseWriter, r *http.Request) {
	var in services.ConsultationInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	app, err := h.onboarding.SaveConsultation(UserFrom(r.Context()), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

func (h *OnboardingHandler) Submit(w http.ResponseWriter, r *http.Request) {
	app, err := h.onboarding.Submit(UserFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

// Admin review

func (h *OnboardingHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	skip, limit := pagination(r)
	apps, err := h.onboarding.AdminList(r.URL.Query().Get("status"), skip, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, apps)
}

func (h *OnboardingHandler) AdminGet(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		writeError(w, err)
		return
	}

	app, questionnaire, err := h.onboarding.AdminGet(userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"application":   app,
		"questionnaire": questionnaire,
	})
}

func (h *OnboardingHandler) Approve(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		writeError(w, err)
		return
	}

	app, err := h.onboarding.Approve(userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

func (h *OnboardingHandler) Reject(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.onboarding.Reject(userID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "rejected"})
}

// CheckInQR serves a PNG QR code pointing at the admin review page for an
// application, printable for in-office consultation check-in.
func (h *OnboardingHandler) CheckInQR(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		writeError(w, err)
		return
	}

	app, _, err := h.onboarding.AdminGet(userID)
	if err != nil {
		writeError(w, err)
		return
	}
	if app.Status == domain.StatusDraft {
		writeError(w, apperrors.BadRequest("check-in is only available once an application is submitted"))
		return
	}

	payload := services.CheckInPayload(config.Get().App.PublicURL, app)
	png, err := qrcode.Encode(payload, qrcode.Medium, 256)
	if err != nil {
		writeError(w, apperrors.Internal("failed to render QR code", err))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
