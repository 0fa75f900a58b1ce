package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// conditionalHTTPLogger only logs HTTP requests when HTTP logging is enabled
func (h *Handlers) conditionalHTTPLogger(next http.Handler) http.Handler {
	logger := middleware.Logger(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Log != nil && h.Log.IsHTTPLoggingEnabled() {
			logger.ServeHTTP(w, r)
		} else {
			next.ServeHTTP(w, r)
		}
	})
}

// Router returns a configured chi router with all routes
func (h *Handlers) Router() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.conditionalHTTPLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RedirectSlashes)
	r.Use(middleware.Timeout(60 * time.Second))

	// WebSocket snapshot stream
	r.Get("/ws/sessions/{id}", h.handleWS)

	// Share link QR
	r.Get("/sessions/{id}/qr", h.handleSessionQR)

	// Decks
	r.Get("/api/decks", h.handleListDecks)
	r.Post("/api/decks", h.handleCreateDeck)

	// Sessions
	r.Post("/api/sessions", h.handleCreateSession)
	r.Route("/api/sessions/{id}", func(r chi.Router) {
		r.Get("/", h.handleGetSession)
		r.Get("/summary", h.handleGetSummary)
		r.Post("/join", h.handleJoin)
		r.Post("/leave", h.handleLeave)
		r.Post("/vote", h.handleVote)
		r.Post("/reveal", h.handleReveal)
		r.Post("/reset", h.handleReset)
		r.Post("/deck", h.handleChangeDeck)
		r.Delete("/", h.handleDeleteSession)
	})

	return r
}
