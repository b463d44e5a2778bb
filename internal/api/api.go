// Package api serves the local HTTP interface for revise: review state
// reads, hunk decisions, trust management, and AI-derived artifacts.
package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/sprite-ai/revise/internal/ai"
	"github.com/sprite-ai/revise/internal/guide"
	"github.com/sprite-ai/revise/internal/review"
)

// Services are the AI collaborators the server calls out to. Any of
// them may be nil, which disables the corresponding endpoints.
type Services struct {
	Classifier ai.Classifier
	Grouper    ai.Grouper
	Narrator   ai.Narrator
}

// Server is the revise HTTP API server. All review mutations go
// through the session; the server itself is stateless apart from the
// websocket hub and the guide cursor.
type Server struct {
	addr    string
	mux     *http.ServeMux
	server  *http.Server
	session *review.Session
	svc     Services
	guide   *guide.Guide
	hub     *hub
}

// New creates an API server over a review session.
func New(addr string, session *review.Session, svc Services) *Server {
	s := &Server{
		addr:    addr,
		session: session,
		svc:     svc,
		hub:     newHub(),
	}
	s.guide = guide.New(func(int) { s.broadcast() })
	s.mux = http.NewServeMux()
	s.registerRoutes()
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)

	s.mux.HandleFunc("GET /api/state", s.handleState)
	s.mux.HandleFunc("GET /api/tree", s.handleTree)
	s.mux.HandleFunc("GET /api/files", s.handleFiles)
	s.mux.HandleFunc("GET /api/symbols", s.handleSymbols)

	s.mux.HandleFunc("POST /api/hunks/{id}/approve", s.handleApprove)
	s.mux.HandleFunc("POST /api/hunks/{id}/reject", s.handleReject)
	s.mux.HandleFunc("POST /api/hunks/{id}/unapprove", s.handleUnapprove)
	s.mux.HandleFunc("POST /api/hunks/{id}/unreject", s.handleUnreject)
	s.mux.HandleFunc("POST /api/hunks/{id}/defer", s.handleDefer)
	s.mux.HandleFunc("POST /api/hunks/{id}/notes", s.handleHunkNotes)
	s.mux.HandleFunc("POST /api/batch", s.handleBatch)

	s.mux.HandleFunc("GET /api/annotations", s.handleAnnotationList)
	s.mux.HandleFunc("POST /api/annotations", s.handleAnnotationAdd)
	s.mux.HandleFunc("DELETE /api/annotations/{id}", s.handleAnnotationRemove)

	s.mux.HandleFunc("GET /api/taxonomy", s.handleTaxonomy)
	s.mux.HandleFunc("GET /api/trust", s.handleTrustList)
	s.mux.HandleFunc("POST /api/trust", s.handleTrustAdd)
	s.mux.HandleFunc("DELETE /api/trust/{pattern}", s.handleTrustRemove)

	s.mux.HandleFunc("POST /api/classify", s.handleClassify)
	s.mux.HandleFunc("POST /api/groups", s.handleGroups)
	s.mux.HandleFunc("POST /api/narrative", s.handleNarrative)
	s.mux.HandleFunc("GET /api/guide", s.handleGuide)
	s.mux.HandleFunc("POST /api/guide/active", s.handleGuideActive)

	s.mux.HandleFunc("POST /api/complete", s.handleComplete)

	s.mux.HandleFunc("GET /api/ws", s.handleWebSocket)
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	log.Printf("revise API server listening on %s", s.addr)
	return s.server.ListenAndServe()
}

// Handler returns the HTTP handler for testing.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.Printf("json encode error: %v", err)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// readJSON decodes a JSON request body into v.
func readJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return fmt.Errorf("empty request body")
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	return dec.Decode(v)
}
