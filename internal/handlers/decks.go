package handlers

import "net/http"

// handleListDecks returns the deck catalog in order.
func (h *Handlers) handleListDecks(w http.ResponseWriter, r *http.Request) {
	respondOK(w, h.Decks.List())
}

// handleCreateDeck registers a custom deck.
func (h *Handlers) handleCreateDeck(w http.ResponseWriter, r *http.Request) {
	var req CreateDeckRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	d, err := h.Decks.AddCustom(req.Name, req.Values)
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, d)
}
