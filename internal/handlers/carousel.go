package handlers

import (
	"net/http"
	"strconv"

	"meridianwealth/internal/carousel"

	apperrors "meridianwealth/pkg/errors"
)

// CarouselHandler serves the shared carousel geometry so every surface
// renders from the same numbers.
type CarouselHandler struct{}

func NewCarouselHandler() *CarouselHandler {
	return &CarouselHandler{}
}

// Layout computes the layout for a viewport width and section count
func (h *CarouselHandler) Layout(w http.ResponseWriter, r *http.Request) {
	viewport, err := strconv.ParseFloat(r.URL.Query().Get("viewport"), 64)
	if err != nil || viewport <= 0 {
		writeError(w, apperrors.Validation("viewport must be a positive number"))
		return
	}

	sections, err := strconv.Atoi(r.URL.Query().Get("sections"))
	if err != nil || sections < 0 {
		writeError(w, apperrors.Validation("sections must be a non-negative integer"))
		return
	}

	writeJSON(w, http.StatusOK, carousel.ComputeLayout(viewport, sections))
}
