package handlers

import (
	"fmt"
	"net/http"

	"meridianwealth/internal/services"
)

// ContactHandler exposes the public contact form and admin triage
type ContactHandler struct {
	contacts *services.ContactService
}

func NewContactHandler(contacts *services.ContactService) *ContactHandler {
	return &ContactHandler{contacts: contacts}
}

func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var in services.ContactInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	inquiry, err := h.contacts.Submit(in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, inquiry)
}

// Admin triage

func (h *ContactHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	skip, limit := pagination(r)
	inquiries, err := h.contacts.AdminList(r.URL.Query().Get("status"), skip, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inquiries)
}

func (h *ContactHandler) AdminGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	inquiry, err := h.contacts.AdminGet(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inquiry)
}

func (h *ContactHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}

	inquiry, err := h.contacts.SetStatus(id, body.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inquiry)
}

func (h *ContactHandler) AddNote(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var body struct {
		Body string `json:"body"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}

	note, err := h.contacts.AddNote(id, UserFrom(r.Context()), body.Body)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

func (h *ContactHandler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	noteID, err := pathID(r, "noteID")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.contacts.DeleteNote(id, noteID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.contacts.Delete(id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Export streams the inquiry list as a CSV download
func (h *ContactHandler) Export(w http.ResponseWriter, r *http.Request) {
	includeNotes := r.URL.Query().Get("notes") == "true"
	export, err := h.contacts.ExportCSV(r.URL.Query().Get("status"), includeNotes)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
	w.WriteHeader(http.StatusOK)
	w.Write(export.Data)
}
