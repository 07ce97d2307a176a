package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/photo-culler/internal/web/handlers"
)

func (s *Server) setupRoutes() {
	// Health check
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		// Groups
		r.Get("/groups", s.review.ListGroups)
		r.Get("/groups/{index}", s.review.GetGroup)
		r.Post("/groups/{index}/photos/{photo}/toggle", s.review.TogglePhoto)

		// Selection strategies
		r.Post("/selection", s.review.ApplyStrategy)
		r.Get("/strategies/aliases", s.review.ListAliases)
	})

	s.router.Get("/", s.serveIndex)
}

// serveIndex returns a placeholder page pointing at the API.
func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`<!DOCTYPE html>
<html>
<head>
    <title>Photo Culler</title>
    <style>
        body { font-family: system-ui, sans-serif; display: flex; justify-content: center; align-items: center; height: 100vh; margin: 0; background: #1a1a2e; color: #eee; }
        .container { text-align: center; }
        h1 { color: #00d9ff; }
        a { color: #00d9ff; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Photo Culler</h1>
        <p>Groups are available at <a href="/api/v1/groups">/api/v1/groups</a></p>
    </div>
</body>
</html>`))
}
