package web

import (
	"log/slog"
	"net/http"

	"github.com/whereismy/whereismy/internal/model"
	"github.com/whereismy/whereismy/internal/store"
)

// Dashboard handles GET /.
func (s *Server) Dashboard(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())

	active, archived, err := store.CountItems(r.Context(), s.DB)
	if err != nil {
		slog.Error("counting items for dashboard", "error", err)
	}

	recent, err := store.ListItems(r.Context(), s.DB, store.ItemFilter{Status: model.ItemStatusActive})
	if err != nil {
		slog.Error("listing items for dashboard", "error", err)
	}
	if len(recent) > 10 {
		recent = recent[:10]
	}

	s.Templates.Render(w, "dashboard.html", &struct {
		PageData
		ActiveCount   int
		ArchivedCount int
		RecentItems   []model.Item
	}{
		PageData:      PageData{Title: "Dashboard", User: claims},
		ActiveCount:   active,
		ArchivedCount: archived,
		RecentItems:   recent,
	})
}
