package handlers

import "github.com/abrezinsky/scrumdeck/internal/projection"

// CreateSessionResponse is the response for session creation
type CreateSessionResponse struct {
	SessionID string `json:"sessionId"`
	ShareURL  string `json:"shareUrl,omitempty"`
}

// MutationResponse reports a mutation outcome. OK is false when the
// session was not found; transport failures surface as error statuses
// instead.
type MutationResponse struct {
	OK bool `json:"ok"`
}

// SummaryResponse is the response for the projection summary endpoint
type SummaryResponse struct {
	UserCount int                     `json:"userCount"`
	VoteCount int                     `json:"voteCount"`
	Revealed  bool                    `json:"revealed"`
	Results   []projection.ValueCount `json:"results,omitempty"`
}
