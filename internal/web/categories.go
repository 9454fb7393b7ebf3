package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/whereismy/whereismy/internal/model"
	"github.com/whereismy/whereismy/internal/store"
)

// CategoriesPage handles GET /categories.
func (s *Server) CategoriesPage(w http.ResponseWriter, r *http.Request) {
	s.renderCategories(w, r, "", "")
}

func (s *Server) renderCategories(w http.ResponseWriter, r *http.Request, errMsg, success string) {
	claims := GetWebClaims(r.Context())
	categories, err := store.ListCategories(r.Context(), s.DB)
	if err != nil {
		slog.Error("listing categories", "error", err)
	}

	s.Templates.Render(w, "categories.html", &struct {
		PageData
		Categories []model.Category
	}{
		PageData:   PageData{Title: "Categories", User: claims, Error: errMsg, Success: success},
		Categories: categories,
	})
}

// CategoryCreateSubmit handles POST /categories.
func (s *Server) CategoryCreateSubmit(w http.ResponseWriter, r *http.Request) {
	name := r.FormValue("name")
	if name == "" {
		http.Redirect(w, r, "/categories", http.StatusSeeOther)
		return
	}

	if _, err := store.CreateCategory(r.Context(), s.DB, name); err != nil {
		if errors.Is(err, model.ErrConflict) {
			s.renderCategories(w, r, "A category with that name already exists.", "")
			return
		}
		slog.Error("creating category", "error", err)
	}
	http.Redirect(w, r, "/categories", http.StatusSeeOther)
}

// CategoryUpdateSubmit handles POST /categories/{id}.
func (s *Server) CategoryUpdateSubmit(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	name := r.FormValue("name")
	if name == "" {
		http.Redirect(w, r, "/categories", http.StatusSeeOther)
		return
	}

	if err := store.UpdateCategory(r.Context(), s.DB, id, name); err != nil {
		slog.Error("updating category", "id", id, "error", err)
	}
	http.Redirect(w, r, "/categories", http.StatusSeeOther)
}

// CategoryDeleteSubmit handles POST /categories/{id}/delete.
func (s *Server) CategoryDeleteSubmit(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := store.DeleteCategory(r.Context(), s.DB, id); err != nil {
		if errors.Is(err, model.ErrConflict) {
			s.renderCategories(w, r, "The category is still used by items and cannot be deleted.", "")
			return
		}
		slog.Error("deleting category", "id", id, "error", err)
	}
	http.Redirect(w, r, "/categories", http.StatusSeeOther)
}
