// Package projection derives read-only, UI-agnostic summaries from a
// session snapshot. All functions are pure; none mutate the snapshot.
//
// Votes whose user is no longer present in the session (dangling votes,
// left behind by storage-level races) are excluded from every projection.
package projection

import (
	"sort"

	"github.com/abrezinsky/scrumdeck/internal/models"
)

// ValueCount is one entry of a vote tally.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// View wraps a session snapshot with derived read functions.
type View struct {
	session *models.Session
}

// NewView creates a projection over the given snapshot. A nil session is a
// valid input: every projection reports the empty state.
func NewView(session *models.Session) View {
	return View{session: session}
}

// activeVotes returns the votes whose user is still in the session, in
// submission order.
func (v View) activeVotes() []models.Vote {
	if v.session == nil {
		return nil
	}
	var out []models.Vote
	for _, vote := range v.session.Votes {
		if v.session.UserByID(vote.UserID) != nil {
			out = append(out, vote)
		}
	}
	return out
}

// ActiveVotes returns the non-dangling votes in submission order.
func (v View) ActiveVotes() []models.Vote {
	return v.activeVotes()
}

// VoteCount returns the number of non-dangling votes.
func (v View) VoteCount() int {
	return len(v.activeVotes())
}

// UserCount returns the number of users in the session.
func (v View) UserCount() int {
	if v.session == nil {
		return 0
	}
	return len(v.session.Users)
}

// IsHost reports whether the given user carries the host flag.
func (v View) IsHost(userID string) bool {
	if v.session == nil {
		return false
	}
	u := v.session.UserByID(userID)
	return u != nil && u.IsHost
}

// HasVoted reports whether a vote keyed by the given user exists,
// regardless of reveal state.
func (v View) HasVoted(userID string) bool {
	if v.session == nil {
		return false
	}
	return v.session.UserByID(userID) != nil && v.session.VoteByUserID(userID) != nil
}

// Revealed reports the session's reveal state.
func (v View) Revealed() bool {
	return v.session != nil && v.session.Revealed
}

// ResultSummary tallies votes by value, sorted by count descending. Ties
// are broken by the value's position in the session's selected deck;
// values not in the deck sort after deck values, in first-encountered
// order. Only meaningful when the session is revealed; callers gate display
// on Revealed.
func (v View) ResultSummary() []ValueCount {
	votes := v.activeVotes()
	if len(votes) == 0 {
		return nil
	}

	deckPos := make(map[string]int)
	for i, c := range v.session.SelectedDeck.Cards {
		if _, ok := deckPos[c.Value]; !ok {
			deckPos[c.Value] = i
		}
	}

	counts := make(map[string]int)
	var order []string
	for _, vote := range votes {
		if counts[vote.Value] == 0 {
			order = append(order, vote.Value)
		}
		counts[vote.Value]++
	}

	out := make([]ValueCount, len(order))
	for i, val := range order {
		out[i] = ValueCount{Value: val, Count: counts[val]}
	}

	rank := func(val string) int {
		if p, ok := deckPos[val]; ok {
			return p
		}
		return len(v.session.SelectedDeck.Cards)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return rank(out[i].Value) < rank(out[j].Value)
	})
	return out
}
