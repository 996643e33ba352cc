package httpapi

import "github.com/go-chi/chi/v5"

// setupRoutes wires SPEC_FULL.md §6's three debug endpoints.
func (s *Server) setupRoutes() {
	r := s.router

	r.Route("/sessions", func(r chi.Router) {
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", s.getSession)
			r.Get("/tree", s.getSessionTree)
		})
	})

	r.Post("/tasks", s.createTask)
}
