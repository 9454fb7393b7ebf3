package api

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/whereismy/whereismy/internal/model"
	"github.com/whereismy/whereismy/internal/store"
)

// CategoriesHandler handles category endpoints.
type CategoriesHandler struct {
	DB *sql.DB
}

type categoryRequest struct {
	Name string `json:"name"`
}

// List handles GET /api/categories.
func (h *CategoriesHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := store.ListCategories(r.Context(), h.DB)
	if err != nil {
		serviceError(w, err)
		return
	}
	if categories == nil {
		categories = []model.Category{}
	}
	jsonResponse(w, http.StatusOK, categories)
}

// Create handles POST /api/categories.
func (h *CategoriesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		jsonError(w, http.StatusBadRequest, "name required")
		return
	}

	category, err := store.CreateCategory(r.Context(), h.DB, req.Name)
	if err != nil {
		serviceError(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, category)
}

// Update handles PUT /api/categories/{id}.
func (h *CategoriesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		jsonError(w, http.StatusBadRequest, "name required")
		return
	}

	if err := store.UpdateCategory(r.Context(), h.DB, id, req.Name); err != nil {
		serviceError(w, err)
		return
	}

	category, _ := store.GetCategory(r.Context(), h.DB, id)
	jsonResponse(w, http.StatusOK, category)
}

// Delete handles DELETE /api/categories/{id}. Deleting a category still
// referenced by items is a conflict.
func (h *CategoriesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	if err := store.DeleteCategory(r.Context(), h.DB, id); err != nil {
		serviceError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "category deleted"})
}
