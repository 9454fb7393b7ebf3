package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/whereismy/whereismy/internal/imaging"
	"github.com/whereismy/whereismy/internal/model"
	"github.com/whereismy/whereismy/internal/store"
)

// ItemsPage handles GET /items.
func (s *Server) ItemsPage(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())

	filter := store.ItemFilter{
		Status: r.URL.Query().Get("status"),
		Type:   r.URL.Query().Get("type"),
	}
	items, err := store.ListItems(r.Context(), s.DB, filter)
	if err != nil {
		slog.Error("listing items", "error", err)
	}

	s.Templates.Render(w, "items.html", &struct {
		PageData
		Items        []model.Item
		FilterStatus string
		FilterType   string
	}{
		PageData:     PageData{Title: "Items", User: claims},
		Items:        items,
		FilterStatus: filter.Status,
		FilterType:   filter.Type,
	})
}

// ItemDetailPage handles GET /items/{id}. Shows the report with its closest
// counterpart matches and the edit form.
func (s *Server) ItemDetailPage(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	item, err := store.GetItem(r.Context(), s.DB, id)
	if err != nil {
		slog.Error("getting item", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if item == nil {
		http.Error(w, "item not found", http.StatusNotFound)
		return
	}

	matches, err := s.Service.MatchesForItem(r.Context(), item, 0)
	if err != nil {
		slog.Error("finding matches for item", "id", id, "error", err)
	}
	categories, err := store.ListCategories(r.Context(), s.DB)
	if err != nil {
		slog.Error("listing categories", "error", err)
	}
	locations, err := store.ListLocations(r.Context(), s.DB)
	if err != nil {
		slog.Error("listing locations", "error", err)
	}

	s.Templates.Render(w, "item_detail.html", &struct {
		PageData
		Item       *model.Item
		Matches    []model.Match
		Categories []model.Category
		Locations  []model.Location
	}{
		PageData:   PageData{Title: fmt.Sprintf("Item #%d", item.ID), User: claims},
		Item:       item,
		Matches:    matches,
		Categories: categories,
		Locations:  locations,
	})
}

// ItemUpdateSubmit handles POST /items/{id}. Form fields are translated into
// a partial update; an emptied location detaches it.
func (s *Server) ItemUpdateSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	update := model.ItemUpdate{}
	if v := r.FormValue("description"); v != "" {
		update.Description = &v
	}
	if v := r.FormValue("category_id"); v != "" {
		categoryID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			http.Error(w, "invalid category", http.StatusBadRequest)
			return
		}
		update.CategoryID = &categoryID
	}
	if v := r.FormValue("location_id"); v != "" {
		locationID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			http.Error(w, "invalid location", http.StatusBadRequest)
			return
		}
		update.LocationID = &locationID
	}
	if v := r.FormValue("specific_place"); v != "" {
		update.SpecificPlace = &v
	}
	if v := r.FormValue("contact_method"); v != "" {
		update.ContactMethod = &v
	}
	if v := r.FormValue("contact_info"); v != "" {
		update.ContactInfo = &v
	}

	if _, err := s.Service.UpdateItem(r.Context(), id, update); err != nil {
		slog.Error("updating item", "id", id, "error", err)
		http.Error(w, "failed to update", http.StatusInternalServerError)
		return
	}

	slog.Info("item updated", "user", claims.Username, "item", id)
	http.Redirect(w, r, fmt.Sprintf("/items/%d", id), http.StatusSeeOther)
}

// ItemArchiveSubmit handles POST /items/{id}/archive.
func (s *Server) ItemArchiveSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	archived := model.ItemStatusArchived
	if _, err := s.Service.UpdateItem(r.Context(), id, model.ItemUpdate{Status: &archived}); err != nil {
		slog.Error("archiving item", "id", id, "error", err)
		http.Error(w, "failed to archive", http.StatusInternalServerError)
		return
	}

	slog.Info("item archived by moderator", "user", claims.Username, "item", id)
	http.Redirect(w, r, fmt.Sprintf("/items/%d", id), http.StatusSeeOther)
}

// ItemDeleteSubmit handles POST /items/{id}/delete.
func (s *Server) ItemDeleteSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := store.DeleteItem(r.Context(), s.DB, id); err != nil {
		slog.Error("deleting item", "id", id, "error", err)
		http.Error(w, "failed to delete", http.StatusInternalServerError)
		return
	}

	slog.Info("item deleted", "user", claims.Username, "item", id)
	http.Redirect(w, r, "/items", http.StatusSeeOther)
}

// ItemPhotoSubmit handles POST /items/{id}/photo.
func (s *Server) ItemPhotoSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 5<<20)
	if err := r.ParseMultipartForm(5 << 20); err != nil {
		http.Error(w, "file too large", http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("photo")
	if err != nil {
		http.Error(w, "photo required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	result, err := imaging.Process(file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := store.SetItemPhoto(r.Context(), s.DB, id, result.Data, result.MIME); err != nil {
		slog.Error("saving photo", "id", id, "error", err)
		http.Error(w, "failed to save photo", http.StatusInternalServerError)
		return
	}

	slog.Info("item photo uploaded", "user", claims.Username, "item", id)
	http.Redirect(w, r, fmt.Sprintf("/items/%d", id), http.StatusSeeOther)
}

// ItemPhotoGet handles GET /items/{id}/photo.
func (s *Server) ItemPhotoGet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	data, mime, err := store.GetItemPhoto(r.Context(), s.DB, id)
	if err != nil {
		slog.Error("getting photo", "id", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if data == nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Disposition", "inline")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if _, err := w.Write(data); err != nil {
		slog.Error("writing photo response", "error", err)
	}
}
