package api

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/whereismy/whereismy/internal/model"
	"github.com/whereismy/whereismy/internal/store"
)

// LocationsHandler handles location endpoints.
type LocationsHandler struct {
	DB *sql.DB
}

type locationRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// List handles GET /api/locations.
func (h *LocationsHandler) List(w http.ResponseWriter, r *http.Request) {
	locations, err := store.ListLocations(r.Context(), h.DB)
	if err != nil {
		serviceError(w, err)
		return
	}
	if locations == nil {
		locations = []model.Location{}
	}
	jsonResponse(w, http.StatusOK, locations)
}

// Create handles POST /api/locations.
func (h *LocationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req locationRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		jsonError(w, http.StatusBadRequest, "name required")
		return
	}

	location, err := store.CreateLocation(r.Context(), h.DB, req.Name, req.Address)
	if err != nil {
		serviceError(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, location)
}

// Update handles PUT /api/locations/{id}.
func (h *LocationsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid location id")
		return
	}

	var req locationRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		jsonError(w, http.StatusBadRequest, "name required")
		return
	}

	if err := store.UpdateLocation(r.Context(), h.DB, id, req.Name, req.Address); err != nil {
		serviceError(w, err)
		return
	}

	location, _ := store.GetLocation(r.Context(), h.DB, id)
	jsonResponse(w, http.StatusOK, location)
}

// Delete handles DELETE /api/locations/{id}. Deleting a location still
// referenced by items is a conflict.
func (h *LocationsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid location id")
		return
	}

	if err := store.DeleteLocation(r.Context(), h.DB, id); err != nil {
		serviceError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "location deleted"})
}
