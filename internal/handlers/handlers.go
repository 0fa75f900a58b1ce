// Package handlers exposes the session engine over HTTP: a JSON API for
// intents, QR share codes for session links, and the websocket snapshot
// stream.
package handlers

import (
	"github.com/abrezinsky/scrumdeck/internal/deck"
	"github.com/abrezinsky/scrumdeck/internal/engine"
	"github.com/abrezinsky/scrumdeck/internal/logger"
	"github.com/abrezinsky/scrumdeck/internal/store"
	"github.com/abrezinsky/scrumdeck/internal/websocket"
)

// Handlers holds all HTTP handler dependencies
type Handlers struct {
	Log     logger.Logger
	Engine  *engine.Engine
	Store   store.Store
	Decks   *deck.Catalog
	Hub     *websocket.Hub
	BaseURL string
}

// New creates the handler set.
func New(log logger.Logger, eng *engine.Engine, st store.Store, decks *deck.Catalog, hub *websocket.Hub, baseURL string) *Handlers {
	return &Handlers{
		Log:     log,
		Engine:  eng,
		Store:   st,
		Decks:   decks,
		Hub:     hub,
		BaseURL: baseURL,
	}
}
