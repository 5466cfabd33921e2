package server

import (
	"github.com/go-chi/chi/v5"
)

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	r := s.router

	r.Get("/health", s.health)

	// Decision endpoints
	r.Route("/check", func(r chi.Router) {
		r.Post("/bash", s.checkBash)
		r.Post("/tool", s.checkTool)
	})
	r.Post("/hook", s.hookDecision)

	// Relation administration
	r.Route("/relations", func(r chi.Router) {
		r.Get("/", s.listRelations)
		r.Post("/", s.grantRelation)
		r.Delete("/", s.revokeRelation)
		r.Post("/sync", s.syncRelations)
	})

	// Audit streaming (SSE)
	r.Get("/events", s.auditEvents)
}
