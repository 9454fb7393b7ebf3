package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/whereismy/whereismy/internal/model"
	"github.com/whereismy/whereismy/internal/store"
)

// LocationsPage handles GET /locations.
func (s *Server) LocationsPage(w http.ResponseWriter, r *http.Request) {
	s.renderLocations(w, r, "")
}

func (s *Server) renderLocations(w http.ResponseWriter, r *http.Request, errMsg string) {
	claims := GetWebClaims(r.Context())
	locations, err := store.ListLocations(r.Context(), s.DB)
	if err != nil {
		slog.Error("listing locations", "error", err)
	}

	s.Templates.Render(w, "locations.html", &struct {
		PageData
		Locations []model.Location
	}{
		PageData:  PageData{Title: "Locations", User: claims, Error: errMsg},
		Locations: locations,
	})
}

// LocationCreateSubmit handles POST /locations.
func (s *Server) LocationCreateSubmit(w http.ResponseWriter, r *http.Request) {
	name := r.FormValue("name")
	address := r.FormValue("address")
	if name == "" {
		http.Redirect(w, r, "/locations", http.StatusSeeOther)
		return
	}

	if _, err := store.CreateLocation(r.Context(), s.DB, name, address); err != nil {
		if errors.Is(err, model.ErrConflict) {
			s.renderLocations(w, r, "A location with that name already exists.")
			return
		}
		slog.Error("creating location", "error", err)
	}
	http.Redirect(w, r, "/locations", http.StatusSeeOther)
}

// LocationUpdateSubmit handles POST /locations/{id}.
func (s *Server) LocationUpdateSubmit(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	name := r.FormValue("name")
	if name == "" {
		http.Redirect(w, r, "/locations", http.StatusSeeOther)
		return
	}

	if err := store.UpdateLocation(r.Context(), s.DB, id, name, r.FormValue("address")); err != nil {
		slog.Error("updating location", "id", id, "error", err)
	}
	http.Redirect(w, r, "/locations", http.StatusSeeOther)
}

// LocationDeleteSubmit handles POST /locations/{id}/delete.
func (s *Server) LocationDeleteSubmit(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := store.DeleteLocation(r.Context(), s.DB, id); err != nil {
		if errors.Is(err, model.ErrConflict) {
			s.renderLocations(w, r, "The location is still used by items and cannot be deleted.")
			return
		}
		slog.Error("deleting location", "id", id, "error", err)
	}
	http.Redirect(w, r, "/locations", http.StatusSeeOther)
}
