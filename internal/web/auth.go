package web

import (
	"net/http"

	"github.com/whereismy/whereismy/internal/auth"
	"github.com/whereismy/whereismy/internal/store"
)

// LoginPage handles GET /login.
func (s *Server) LoginPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "login.html", &PageData{Title: "Sign in"})
}

// LoginSubmit handles POST /login.
func (s *Server) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	password := r.FormValue("password")

	if username == "" || password == "" {
		s.Templates.Render(w, "login.html", &PageData{
			Title: "Sign in",
			Error: "Enter a username and password.",
		})
		return
	}

	user, err := store.GetModeratorByUsername(r.Context(), s.DB, username)
	if err != nil || user == nil || !user.CanLogin() || !auth.CheckPassword(user.PasswordHash, password) {
		s.Templates.Render(w, "login.html", &PageData{
			Title: "Sign in",
			Error: "Wrong username or password.",
		})
		return
	}

	token, err := auth.GenerateToken(s.JWTSecret, user.ID, user.Username, user.Role)
	if err != nil {
		s.Templates.Render(w, "login.html", &PageData{
			Title: "Sign in",
			Error: "Sign-in failed, try again.",
		})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   86400, // 24 hours
	})

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout handles POST /logout. The JTI is revoked so the cookie value cannot
// be replayed.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie("token"); err == nil && cookie.Value != "" {
		if claims, err := auth.ValidateToken(s.JWTSecret, cookie.Value); err == nil {
			store.RevokeToken(r.Context(), s.DB, claims.ID, claims.ExpiresAt.Time)
		}
	}
	clearAuthCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
