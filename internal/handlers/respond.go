package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	apperrors "meridianwealth/pkg/errors"
)

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("[HTTP] failed to encode response: %v", err)
	}
}

// writeError maps service errors onto HTTP statuses. Internal details stay
// in the server log, the client sees only the code and message.
func writeError(w http.ResponseWriter, err error) {
	if appErr, ok := apperrors.As(err); ok {
		if appErr.Err != nil {
			log.Printf("[HTTP] %s: %v", appErr.Code, appErr.Err)
		}
		writeJSON(w, appErr.HTTPStatus(), errorBody{
			Error:   string(appErr.Code),
			Message: appErr.Message,
		})
		return
	}
	log.Printf("[HTTP] unexpected error: %v", err)
	writeJSON(w, http.StatusInternalServerError, errorBody{
		Error:   string(apperrors.ErrCodeInternalError),
		Message: "internal server error",
	})
}

func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return apperrors.BadRequest("invalid JSON body")
	}
	return nil
}
