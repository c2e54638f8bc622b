// -----------------------------------------------------------------------
// Last Modified: Thursday, 9th October 2025 8:53:55 am
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package server

import (
	"net/http"
	"strings"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// WebSocket route for live status events
	mux.HandleFunc("/api/events", s.app.EventService.HandleWebSocket)

	// API routes - Documents
	mux.HandleFunc("/api/documents/analyze", s.app.DocumentHandler.AnalyzeHandler)
	mux.HandleFunc("/api/documents/stats", s.app.DocumentHandler.StatsHandler)
	mux.HandleFunc("/api/documents", s.handleDocumentsRoute)
	mux.HandleFunc("/api/documents/", s.handleDocumentRoutes) // Handles /api/documents/{id} and subpaths

	// API routes - Scheduler
	mux.HandleFunc("/api/scheduler/sweep", s.SweepHandler) // POST - force a stale-run sweep

	// API routes - System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)
	mux.HandleFunc("/health", s.app.APIHandler.HealthHandler)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.app.APIHandler.NotFoundHandler)

	return mux
}

// handleDocumentsRoute routes /api/documents requests (list and create)
func (s *Server) handleDocumentsRoute(w http.ResponseWriter, r *http.Request) {
	RouteByMethod(w, r, MethodRouter{
		"GET":  s.app.DocumentHandler.ListHandler,
		"POST": s.app.DocumentHandler.CreateHandler,
	})
}

// handleDocumentRoutes routes /api/documents/{id} requests and subpaths
func (s *Server) handleDocumentRoutes(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	// Skip paths registered on their own patterns
	if path == "/api/documents/analyze" || path == "/api/documents/stats" {
		return
	}

	// GET /api/documents/{id}/report
	if strings.HasSuffix(path, "/report") {
		documentID := documentIDFromPath(path, "/report")
		if documentID == "" {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}
		s.app.DocumentHandler.ReportHandler(w, r, documentID)
		return
	}

	documentID := documentIDFromPath(path, "")
	if documentID == "" {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	switch r.Method {
	case "GET":
		s.app.DocumentHandler.GetHandler(w, r, documentID)
	case "DELETE":
		s.app.DocumentHandler.DeleteHandler(w, r, documentID)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// documentIDFromPath extracts the {id} segment from /api/documents/{id}<suffix>.
// Returns "" when the segment is missing or contains further path components.
func documentIDFromPath(path, suffix string) string {
	trimmed := strings.TrimPrefix(path, "/api/documents/")
	trimmed = strings.TrimSuffix(trimmed, suffix)
	if trimmed == "" || strings.Contains(trimmed, "/") {
		return ""
	}
	return trimmed
}
