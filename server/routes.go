package server

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/urbanfix/go-civic-auth/users"
)

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Method("GET", "/metrics", promhttp.Handler())

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)
		r.Post("/refresh", s.handleRefresh)
		r.With(s.OptionalAuth).Get("/status", s.handleStatus)

		r.Group(func(r chi.Router) {
			r.Use(s.RequireAuth)
			r.Post("/logout", s.handleLogout)
			r.Get("/me", s.handleMe)
		})
	})

	// Self-or-admin: a user may revoke their own sessions, admins anyone's.
	r.Route("/api/users/{userID}", func(r chi.Router) {
		r.Use(s.RequireAuth)
		r.With(s.RequireSelfOrAdmin("userID")).Post("/logout-all", s.handleLogoutAll)
	})

	// Admin console surface.
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(s.RequireAuth)
		r.Use(s.RequireRoles(users.RoleAdmin))
		r.Post("/users/{userID}/revoke-sessions", s.handleLogoutAll)
	})

	return r
}
