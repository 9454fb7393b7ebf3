package api

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/whereismy/whereismy/internal/imaging"
	"github.com/whereismy/whereismy/internal/matching"
	"github.com/whereismy/whereismy/internal/model"
	"github.com/whereismy/whereismy/internal/store"
)

// ItemsHandler handles item endpoints. Reads go straight to the store;
// anything that embeds or touches ownership goes through the matching
// service.
type ItemsHandler struct {
	DB      *sql.DB
	Service *matching.Service
}

type searchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
	Type  string `json:"type"`
}

// List handles GET /api/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := store.ItemFilter{
		Status: r.URL.Query().Get("status"),
		Type:   r.URL.Query().Get("type"),
	}
	if filter.Status != "" {
		if err := model.ValidateItemStatus(filter.Status); err != nil {
			serviceError(w, err)
			return
		}
	}
	if filter.Type != "" {
		if err := model.ValidateItemType(filter.Type); err != nil {
			serviceError(w, err)
			return
		}
	}

	items, err := store.ListItems(r.Context(), h.DB, filter)
	if err != nil {
		serviceError(w, err)
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		serviceError(w, err)
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Search handles POST /api/items/search. Public: anyone can look for their
// lost things without an account.
func (h *ItemsHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	matches, err := h.Service.FindMatches(r.Context(), req.Query, req.Limit, req.Type)
	if err != nil {
		serviceError(w, err)
		return
	}
	if matches == nil {
		matches = []model.Match{}
	}
	jsonResponse(w, http.StatusOK, matches)
}

// Create handles POST /api/items. The authenticated moderator becomes the
// author unless the request names one.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req matching.Report
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.AuthorID == 0 {
		if claims := GetClaims(r.Context()); claims != nil {
			req.AuthorID = claims.UserID
		}
	}

	item, err := h.Service.ReportItem(r.Context(), req)
	if err != nil {
		serviceError(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, item)
}

// Update handles PATCH /api/items/{id} with a partial update.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var update model.ItemUpdate
	if err := decodeJSON(r, &update); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.Service.UpdateItem(r.Context(), id, update)
	if err != nil {
		serviceError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Archive handles POST /api/items/{id}/archive. Moderators may archive any
// item, so this goes through the moderation update path rather than the
// owner-scoped one.
func (h *ItemsHandler) Archive(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	archived := model.ItemStatusArchived
	item, err := h.Service.UpdateItem(r.Context(), id, model.ItemUpdate{Status: &archived})
	if err != nil {
		serviceError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Delete handles DELETE /api/items/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	if err := store.DeleteItem(r.Context(), h.DB, id); err != nil {
		serviceError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "item deleted"})
}

// UploadPhoto handles PUT /api/items/{id}/photo.
func (h *ItemsHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		serviceError(w, err)
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	// Limit to 5 MB.
	r.Body = http.MaxBytesReader(w, r.Body, 5<<20)

	if err := r.ParseMultipartForm(5 << 20); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("photo")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "photo file required")
		return
	}
	defer file.Close()

	result, err := imaging.Process(file)
	if err != nil {
		serviceError(w, err)
		return
	}

	if err := store.SetItemPhoto(r.Context(), h.DB, id, result.Data, result.MIME); err != nil {
		serviceError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "photo uploaded"})
}

// GetPhoto handles GET /api/items/{id}/photo.
func (h *ItemsHandler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	data, mime, err := store.GetItemPhoto(r.Context(), h.DB, id)
	if err != nil {
		serviceError(w, err)
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no photo")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}
