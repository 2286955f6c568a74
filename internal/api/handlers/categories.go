package handlers

import (
	"net/http"

	"tasktracker/internal/models"
)

type CreateCategoryRequest struct {
	Name string `json:"name"`
}

func (h *Handlers) ListCategories(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "user_id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	categories, err := h.categories.ListCategories(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if categories == nil {
		categories = []models.Category{}
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *Handlers) CreateCategory(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "user_id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req CreateCategoryRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	category, err := h.categories.CreateCategory(r.Context(), userID, req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

func (h *Handlers) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "user_id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	categoryID, err := pathID(r, "category_id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.categories.DeleteCategory(r.Context(), userID, categoryID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
