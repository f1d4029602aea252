package handlers

import (
	"net/http"

	"meridianwealth/internal/services"
)

// ArticleHandler exposes public article reads and the admin editor
type ArticleHandler struct {
	articles *services.ArticleService
}

func NewArticleHandler(articles *services.ArticleService) *ArticleHandler {
	return &ArticleHandler{articles: articles}
}

func (h *ArticleHandler) List(w http.ResponseWriter, r *http.Request) {
	skip, limit := pagination(r)
	summaries, err := h.articles.ListPublished(r.URL.Query().Get("lang"), skip, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (h *ArticleHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	view, err := h.articles.GetBySlug(urlParam(r, "slug"), r.URL.Query().Get("lang"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Admin editor

func (h *ArticleHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	skip, limit := pagination(r)
	articles, err := h.articles.AdminList(skip, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, articles)
}

func (h *ArticleHandler) AdminGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	article, err := h.articles.AdminGet(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, article)
}

func (h *ArticleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.ArticleInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	article, err := h.articles.Create(in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, article)
}

func (h *ArticleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var in services.ArticleInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	article, err := h.articles.Update(id, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, article)
}

func (h *ArticleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.articles.Delete(id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *ArticleHandler) AddReport(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var in services.ReportInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	report, err := h.articles.AddReport(id, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, report)
}

func (h *ArticleHandler) DeleteReport(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	reportID, err := pathID(r, "reportID")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.articles.DeleteReport(id, reportID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
