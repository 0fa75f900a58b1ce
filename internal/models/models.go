package models

// Card is a single selectable value in a deck. Value is the canonical token
// used for equality and tallying; DisplayValue is presentation-only
// (e.g. "0.5" renders as "½").
type Card struct {
	Value        string `json:"value"`
	DisplayValue string `json:"displayValue"`
}

// Deck is an ordered set of cards. Decks are immutable once created; a
// session swaps decks, it never edits one in place.
type Deck struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Cards    []Card `json:"cards"`
	IsCustom bool   `json:"isCustom,omitempty"`
}

// User is a session participant. ID is a stable, opaque, client-generated
// token. Exactly one user per session carries IsHost, assigned at creation
// and never transferred.
type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	IsHost bool   `json:"isHost,omitempty"`
}

// Vote is a user's current card selection. UserName is a denormalized
// snapshot of the name at vote time. Revealed mirrors the session-wide
// reveal flag; the engine keeps it consistent across the whole vote set.
type Vote struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
	Value    string `json:"value"`
	Revealed bool   `json:"revealed"`
}

// Session is one shared estimation round-table. ID is the only external
// handle and doubles as the shareable join token. Timestamps are Unix
// milliseconds.
type Session struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	SelectedDeck Deck   `json:"selectedDeck"`
	Users        []User `json:"users"`
	Votes        []Vote `json:"votes"`
	Revealed     bool   `json:"revealed"`
	CreatedAt    int64  `json:"createdAt"`
	UpdatedAt    int64  `json:"updatedAt"`
}

// WSMessage is the envelope pushed to websocket subscribers.
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// CloneDeck returns a deep copy of a deck.
func CloneDeck(d Deck) Deck {
	out := d
	out.Cards = append([]Card(nil), d.Cards...)
	return out
}

// Clone returns a deep copy of the session. Store adapters hand out clones
// so a caller can never alias the canonical record or another subscriber's
// snapshot.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.SelectedDeck = CloneDeck(s.SelectedDeck)
	out.Users = append([]User(nil), s.Users...)
	out.Votes = append([]Vote(nil), s.Votes...)
	return &out
}

// UserByID returns the user with the given id, or nil.
func (s *Session) UserByID(id string) *User {
	for i := range s.Users {
		if s.Users[i].ID == id {
			return &s.Users[i]
		}
	}
	return nil
}

// VoteByUserID returns the vote keyed by the given user id, or nil. At most
// one vote per user exists after every committed mutation.
func (s *Session) VoteByUserID(userID string) *Vote {
	for i := range s.Votes {
		if s.Votes[i].UserID == userID {
			return &s.Votes[i]
		}
	}
	return nil
}
