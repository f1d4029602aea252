package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	apperrors "meridianwealth/pkg/errors"
)

func pathID(r *http.Request, name string) (uint, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, apperrors.BadRequest("invalid " + name)
	}
	return uint(id), nil
}

func urlParam(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}

func pagination(r *http.Request) (skip, limit int) {
	skip, _ = strconv.Atoi(r.URL.Query().Get("skip"))
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	return skip, limit
}
