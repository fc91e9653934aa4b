// Package server is the HTTP layer: routing, the authentication gate, the
// cookie and bearer transports, and the auth endpoints.
package server

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/urbanfix/go-civic-auth/auth"
	"github.com/urbanfix/go-civic-auth/internal/config"
	"github.com/urbanfix/go-civic-auth/token"
)

type Server struct {
	config *config.Config
	codec  *token.Codec
	auth   *auth.Service
	repos  auth.Repos
	router chi.Router
}

// New wires the auth service and builds the route table.
func New(cfg *config.Config, repos auth.Repos, codec *token.Codec) (*Server, error) {
	authService, err := auth.NewService(repos, codec, auth.WithBcryptCost(cfg.BcryptCost))
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create auth service: %w", err)
	}

	s := &Server{
		config: cfg,
		codec:  codec,
		auth:   authService,
		repos:  repos,
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
