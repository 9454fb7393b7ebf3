package web

import (
	"database/sql"
	"net/http"

	"github.com/whereismy/whereismy/internal/matching"
	webembed "github.com/whereismy/whereismy/web"
)

// NewRouter creates the moderator panel router with all page routes
// registered.
func NewRouter(db *sql.DB, svc *matching.Service, jwtSecret string) (http.Handler, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		DB:        db,
		Service:   svc,
		Templates: templates,
		JWTSecret: jwtSecret,
	}

	mux := http.NewServeMux()
	cookieAuth := CookieAuthMiddleware(jwtSecret, db)

	// Static assets.
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(webembed.StaticFS()))))

	// Public routes.
	mux.HandleFunc("GET /login", s.LoginPage)
	mux.HandleFunc("POST /login", s.LoginSubmit)
	mux.HandleFunc("POST /logout", s.Logout)

	// Authenticated routes.
	mux.Handle("GET /{$}", cookieAuth(http.HandlerFunc(s.Dashboard)))

	mux.Handle("GET /items", cookieAuth(http.HandlerFunc(s.ItemsPage)))
	mux.Handle("GET /items/{id}", cookieAuth(http.HandlerFunc(s.ItemDetailPage)))
	mux.Handle("POST /items/{id}", cookieAuth(http.HandlerFunc(s.ItemUpdateSubmit)))
	mux.Handle("POST /items/{id}/archive", cookieAuth(http.HandlerFunc(s.ItemArchiveSubmit)))
	mux.Handle("POST /items/{id}/delete", cookieAuth(http.HandlerFunc(s.ItemDeleteSubmit)))
	mux.Handle("POST /items/{id}/photo", cookieAuth(http.HandlerFunc(s.ItemPhotoSubmit)))
	mux.Handle("GET /items/{id}/photo", cookieAuth(http.HandlerFunc(s.ItemPhotoGet)))

	mux.Handle("GET /categories", cookieAuth(http.HandlerFunc(s.CategoriesPage)))
	mux.Handle("POST /categories", cookieAuth(http.HandlerFunc(s.CategoryCreateSubmit)))
	mux.Handle("POST /categories/{id}", cookieAuth(http.HandlerFunc(s.CategoryUpdateSubmit)))
	mux.Handle("POST /categories/{id}/delete", cookieAuth(http.HandlerFunc(s.CategoryDeleteSubmit)))

	mux.Handle("GET /locations", cookieAuth(http.HandlerFunc(s.LocationsPage)))
	mux.Handle("POST /locations", cookieAuth(http.HandlerFunc(s.LocationCreateSubmit)))
	mux.Handle("POST /locations/{id}", cookieAuth(http.HandlerFunc(s.LocationUpdateSubmit)))
	mux.Handle("POST /locations/{id}/delete", cookieAuth(http.HandlerFunc(s.LocationDeleteSubmit)))

	return mux, nil
}
