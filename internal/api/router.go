package api

import (
	"database/sql"
	"net/http"

	"github.com/whereismy/whereismy/internal/matching"
)

// NewRouter creates the API router with all endpoints registered. Reads and
// search are public; every mutation requires a moderator token.
func NewRouter(db *sql.DB, svc *matching.Service, jwtSecret string) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	itemsHandler := &ItemsHandler{DB: db, Service: svc}
	categoriesHandler := &CategoriesHandler{DB: db}
	locationsHandler := &LocationsHandler{DB: db}

	authMW := AuthMiddleware(jwtSecret, db)
	moderator := func(h http.HandlerFunc) http.Handler {
		return authMW(RequireModerator(h))
	}

	// Auth.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))

	// Items: reads and search are public, mutations are moderator-only.
	mux.HandleFunc("GET /api/items", itemsHandler.List)
	mux.HandleFunc("GET /api/items/{id}", itemsHandler.Get)
	mux.HandleFunc("GET /api/items/{id}/photo", itemsHandler.GetPhoto)
	mux.HandleFunc("POST /api/items/search", itemsHandler.Search)
	mux.Handle("POST /api/items", moderator(itemsHandler.Create))
	mux.Handle("PATCH /api/items/{id}", moderator(itemsHandler.Update))
	mux.Handle("POST /api/items/{id}/archive", moderator(itemsHandler.Archive))
	mux.Handle("DELETE /api/items/{id}", moderator(itemsHandler.Delete))
	mux.Handle("PUT /api/items/{id}/photo", moderator(itemsHandler.UploadPhoto))

	// Categories.
	mux.HandleFunc("GET /api/categories", categoriesHandler.List)
	mux.Handle("POST /api/categories", moderator(categoriesHandler.Create))
	mux.Handle("PUT /api/categories/{id}", moderator(categoriesHandler.Update))
	mux.Handle("DELETE /api/categories/{id}", moderator(categoriesHandler.Delete))

	// Locations.
	mux.HandleFunc("GET /api/locations", locationsHandler.List)
	mux.Handle("POST /api/locations", moderator(locationsHandler.Create))
	mux.Handle("PUT /api/locations/{id}", moderator(locationsHandler.Update))
	mux.Handle("DELETE /api/locations/{id}", moderator(locationsHandler.Delete))

	return mux
}
