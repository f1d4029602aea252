package handlers

import (
	"net/http"

	"meridianwealth/internal/services"

	apperrors "meridianwealth/pkg/errors"
)

// StorageHandler accepts admin file uploads for article images and reports
type StorageHandler struct {
	storage *services.StorageService
}

func NewStorageHandler(storage *services.StorageService) *StorageHandler {
	return &StorageHandler{storage: storage}
}

func (h *StorageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.storage.MaxSize()+1<<20)
	if err := r.ParseMultipartForm(h.storage.MaxSize()); err != nil {
		writeError(w, apperrors.BadRequest("invalid multipart body"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, apperrors.Validation("file field is required"))
		return
	}
	defer file.Close()

	result, err := h.storage.Save(file, header)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *StorageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.storage.Delete(urlParam(r, "object")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
