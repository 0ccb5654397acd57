package server

import (
	"encoding/json"
	"net/http"

	"github.com/bobmcallan/vox-portal/internal/page"
)

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// UI page routes (HTML templates). "/" also catches unknown paths and 404s them.
	pages := s.app.PageHandler
	mux.HandleFunc("/", pages.ServePage(page.Home))
	mux.HandleFunc("/stocks", pages.ServePage(page.Stocks))
	mux.HandleFunc("/stocks.html", pages.ServePage(page.Stocks))
	mux.HandleFunc("/dogs", pages.ServePage(page.Dogs))
	mux.HandleFunc("/dogs.html", pages.ServePage(page.Dogs))

	// Static files (CSS, JS, images)
	mux.HandleFunc("/static/", pages.StaticFileHandler)

	// MCP endpoint (JSON-RPC over HTTP)
	if s.app.MCPHandler != nil {
		mux.Handle("/mcp", s.app.MCPHandler)
	}

	// API routes
	mux.HandleFunc("/api/health", s.app.HealthHandler.ServeHTTP)
	mux.HandleFunc("/api/version", s.app.VersionHandler.ServeHTTP)
	mux.HandleFunc("/api/stocks/chart", s.app.StocksHandler.HandleChart)
	mux.HandleFunc("/api/stocks/trending", s.app.StocksHandler.HandleTrending)
	mux.HandleFunc("/api/dogs/images", s.app.DogsHandler.HandleImages)
	mux.HandleFunc("/api/dogs/breeds", s.app.DogsHandler.HandleBreeds)
	mux.Handle("/api/voice", s.app.VoiceHandler)

	// Anything else under /api/ is a JSON 404 rather than the HTML page 404.
	mux.HandleFunc("/api/", handleAPINotFound)

	return mux
}

func handleAPINotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(map[string]any{
		"error": "no such endpoint: " + r.URL.Path,
		"code":  http.StatusNotFound,
	})
}
