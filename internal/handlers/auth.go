package handlers

import (
	"net/http"

	"meridianwealth/internal/services"

	apperrors "meridianwealth/pkg/errors"
)

// AuthHandler exposes login, OTP and password reset endpoints
type AuthHandler struct {
	auth *services.AuthService
	otp  *services.OTPService
}

func NewAuthHandler(auth *services.AuthService, otp *services.OTPService) *AuthHandler {
	return &AuthHandler{auth: auth, otp: otp}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.auth.Login(body.Email, body.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *AuthHandler) RequestOTP(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Identifier string `json:"identifier"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if body.Identifier == "" {
		writeError(w, apperrors.Validation("identifier is required"))
		return
	}

	if err := h.otp.Send(body.Identifier); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

func (h *AuthHandler) LoginWithOTP(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Identifier string `json:"identifier"`
		Phone      string `json:"phone"`
		Code       string `json:"code"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if body.Identifier == "" {
		body.Identifier = body.Phone
	}

	result, err := h.auth.LoginWithOTP(body.Identifier, body.Code)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *AuthHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}

	if err := h.auth.RequestPasswordReset(body.Email); err != nil {
		writeError(w, err)
		return
	}
	// Always 200 so the endpoint does not reveal which emails exist.
	writeJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

func (h *AuthHandler) ConfirmPasswordReset(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Token       string `json:"token"`
		NewPassword string `json:"new_password"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}

	if err := h.auth.ConfirmPasswordReset(body.Token, body.NewPassword); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, UserFrom(r.Context()))
}

// Admin user management

func (h *AuthHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	skip, limit := pagination(r)
	users, err := h.auth.ListUsers(skip, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *AuthHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var in services.CreateUserInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.auth.CreateUser(in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *AuthHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	user, err := h.auth.GetUser(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var in services.UpdateUserInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.auth.UpdateUser(id, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) SetUserActive(active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, err)
			return
		}

		user, err := h.auth.SetUserActive(UserFrom(r.Context()), id, active)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}
