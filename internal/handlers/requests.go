package handlers

// UserPayload identifies a participant in request bodies.
type UserPayload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CreateSessionRequest is the body for POST /api/sessions
type CreateSessionRequest struct {
	Name   string      `json:"name"`
	DeckID string      `json:"deckId"`
	User   UserPayload `json:"user"`
}

// JoinRequest is the body for POST /api/sessions/{id}/join
type JoinRequest struct {
	User UserPayload `json:"user"`
}

// LeaveRequest is the body for POST /api/sessions/{id}/leave
type LeaveRequest struct {
	UserID string `json:"userId"`
}

// VoteRequest is the body for POST /api/sessions/{id}/vote
type VoteRequest struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
	Value    string `json:"value"`
}

// ChangeDeckRequest is the body for POST /api/sessions/{id}/deck
type ChangeDeckRequest struct {
	DeckID string `json:"deckId"`
}

// CreateDeckRequest is the body for POST /api/decks
type CreateDeckRequest struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}
