package handlers

import (
	"net/http"
	"strings"

	"github.com/abrezinsky/scrumdeck/internal/models"
	"github.com/abrezinsky/scrumdeck/internal/projection"
	"github.com/abrezinsky/scrumdeck/internal/store"
)

// handleCreateSession creates a session with the requester as host.
func (h *Handlers) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	deckID := req.DeckID
	if deckID == "" {
		deckID = "fibonacci"
	}
	d, err := h.Decks.Get(deckID)
	if err != nil {
		respondError(w, BadRequest("Unknown deck id: "+deckID))
		return
	}

	host := models.User{ID: req.User.ID, Name: req.User.Name}
	sessionID, err := h.Engine.CreateSession(r.Context(), req.Name, d, host)
	if err != nil {
		respondError(w, err)
		return
	}

	respondCreated(w, CreateSessionResponse{
		SessionID: sessionID,
		ShareURL:  h.shareURL(sessionID),
	})
}

// handleGetSession returns the current session snapshot.
func (h *Handlers) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := sessionIDParam(r)
	if err != nil {
		respondError(w, err)
		return
	}

	session, err := h.Store.Get(r.Context(), sessionID)
	if err == store.ErrNotFound {
		respondError(w, NotFound("Session not found"))
		return
	}
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, session)
}

// handleGetSummary returns the projection summary for the session.
func (h *Handlers) handleGetSummary(w http.ResponseWriter, r *http.Request) {
	sessionID, err := sessionIDParam(r)
	if err != nil {
		respondError(w, err)
		return
	}

	session, err := h.Store.Get(r.Context(), sessionID)
	if err == store.ErrNotFound {
		respondError(w, NotFound("Session not found"))
		return
	}
	if err != nil {
		respondError(w, err)
		return
	}

	view := projection.NewView(session)
	resp := SummaryResponse{
		UserCount: view.UserCount(),
		VoteCount: view.VoteCount(),
		Revealed:  view.Revealed(),
	}
	if view.Revealed() {
		resp.Results = view.ResultSummary()
	}
	respondOK(w, resp)
}

// handleJoin adds a user to the session (idempotent by user id).
func (h *Handlers) handleJoin(w http.ResponseWriter, r *http.Request) {
	sessionID, err := sessionIDParam(r)
	if err != nil {
		respondError(w, err)
		return
	}
	var req JoinRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	joined, err := h.Engine.JoinSession(r.Context(), sessionID, models.User{ID: req.User.ID, Name: req.User.Name})
	h.respondMutation(w, joined, err)
}

// handleLeave removes a user and their vote from the session.
func (h *Handlers) handleLeave(w http.ResponseWriter, r *http.Request) {
	sessionID, err := sessionIDParam(r)
	if err != nil {
		respondError(w, err)
		return
	}
	var req LeaveRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	left, err := h.Engine.LeaveSession(r.Context(), sessionID, req.UserID)
	h.respondMutation(w, left, err)
}

// handleVote submits or replaces the user's vote.
func (h *Handlers) handleVote(w http.ResponseWriter, r *http.Request) {
	sessionID, err := sessionIDParam(r)
	if err != nil {
		respondError(w, err)
		return
	}
	var req VoteRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	ok, err := h.Engine.SubmitVote(r.Context(), sessionID, req.UserID, req.UserName, req.Value)
	h.respondMutation(w, ok, err)
}

// handleReveal makes all votes visible.
func (h *Handlers) handleReveal(w http.ResponseWriter, r *http.Request) {
	sessionID, err := sessionIDParam(r)
	if err != nil {
		respondError(w, err)
		return
	}
	ok, err := h.Engine.RevealVotes(r.Context(), sessionID)
	h.respondMutation(w, ok, err)
}

// handleReset clears the votes for a fresh round.
func (h *Handlers) handleReset(w http.ResponseWriter, r *http.Request) {
	sessionID, err := sessionIDParam(r)
	if err != nil {
		respondError(w, err)
		return
	}
	ok, err := h.Engine.ResetVotes(r.Context(), sessionID)
	h.respondMutation(w, ok, err)
}

// handleChangeDeck swaps the session deck and starts a new round.
func (h *Handlers) handleChangeDeck(w http.ResponseWriter, r *http.Request) {
	sessionID, err := sessionIDParam(r)
	if err != nil {
		respondError(w, err)
		return
	}
	var req ChangeDeckRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	d, err := h.Decks.Get(req.DeckID)
	if err != nil {
		respondError(w, BadRequest("Unknown deck id: "+req.DeckID))
		return
	}

	ok, err := h.Engine.ChangeDeck(r.Context(), sessionID, d)
	h.respondMutation(w, ok, err)
}

// handleDeleteSession removes the session permanently.
func (h *Handlers) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := sessionIDParam(r)
	if err != nil {
		respondError(w, err)
		return
	}
	if _, err := h.Engine.DeleteSession(r.Context(), sessionID); err != nil {
		respondError(w, err)
		return
	}
	respondDeleted(w)
}

// handleWS streams session snapshots over a websocket.
func (h *Handlers) handleWS(w http.ResponseWriter, r *http.Request) {
	sessionID, err := sessionIDParam(r)
	if err != nil {
		respondError(w, err)
		return
	}
	h.Hub.ServeSession(w, r, sessionID)
}

// respondMutation reports an engine mutation outcome: not-found is a
// negative result with 404, everything else either succeeds or surfaces
// the classified error.
func (h *Handlers) respondMutation(w http.ResponseWriter, ok bool, err error) {
	if err != nil {
		respondError(w, err)
		return
	}
	if !ok {
		respondJSON(w, http.StatusNotFound, MutationResponse{OK: false})
		return
	}
	respondOK(w, MutationResponse{OK: true})
}

func (h *Handlers) shareURL(sessionID string) string {
	if h.BaseURL == "" {
		return ""
	}
	return strings.TrimRight(h.BaseURL, "/") + "/sessions/" + sessionID
}
