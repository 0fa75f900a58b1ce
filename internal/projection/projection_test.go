package projection_test

import (
	"testing"

	"github.com/abrezinsky/scrumdeck/internal/deck"
	"github.com/abrezinsky/scrumdeck/internal/models"
	"github.com/abrezinsky/scrumdeck/internal/projection"
)

func snapshot(users []models.User, votes []models.Vote, revealed bool) *models.Session {
	return &models.Session{
		ID:           "s-1",
		Name:         "Sprint",
		SelectedDeck: deck.Fibonacci,
		Users:        users,
		Votes:        votes,
		Revealed:     revealed,
	}
}

// TestResultSummary_CountsDescending tests the grouped tally ordering
func TestResultSummary_CountsDescending(t *testing.T) {
	s := snapshot(
		[]models.User{{ID: "a", Name: "A", IsHost: true}, {ID: "b", Name: "B"}, {ID: "c", Name: "C"}},
		[]models.Vote{
			{UserID: "a", UserName: "A", Value: "5", Revealed: true},
			{UserID: "b", UserName: "B", Value: "5", Revealed: true},
			{UserID: "c", UserName: "C", Value: "8", Revealed: true},
		},
		true,
	)

	got := projection.NewView(s).ResultSummary()
	want := []projection.ValueCount{{Value: "5", Count: 2}, {Value: "8", Count: 1}}
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

// TestResultSummary_TieBreakByDeckPosition tests deterministic ordering of
// equal counts
func TestResultSummary_TieBreakByDeckPosition(t *testing.T) {
	// Submission order deliberately reversed relative to the deck.
	s := snapshot(
		[]models.User{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}},
		[]models.Vote{
			{UserID: "a", UserName: "A", Value: "13", Revealed: true},
			{UserID: "b", UserName: "B", Value: "2", Revealed: true},
		},
		true,
	)

	got := projection.NewView(s).ResultSummary()
	if len(got) != 2 || got[0].Value != "2" || got[1].Value != "13" {
		t.Errorf("expected deck-position tie-break [2 13], got %+v", got)
	}
}

// TestResultSummary_OffDeckValuesSortLast tests values not present in the
// selected deck
func TestResultSummary_OffDeckValuesSortLast(t *testing.T) {
	s := snapshot(
		[]models.User{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}},
		[]models.Vote{
			{UserID: "a", UserName: "A", Value: "XL", Revealed: true}, // not in fibonacci
			{UserID: "b", UserName: "B", Value: "8", Revealed: true},
		},
		true,
	)

	got := projection.NewView(s).ResultSummary()
	if len(got) != 2 || got[0].Value != "8" || got[1].Value != "XL" {
		t.Errorf("expected off-deck value last, got %+v", got)
	}
}

// TestProjections_ExcludeDanglingVotes tests that votes whose user left
// are invisible everywhere
func TestProjections_ExcludeDanglingVotes(t *testing.T) {
	s := snapshot(
		[]models.User{{ID: "a", Name: "A", IsHost: true}},
		[]models.Vote{
			{UserID: "a", UserName: "A", Value: "5", Revealed: true},
			{UserID: "ghost", UserName: "Ghost", Value: "8", Revealed: true},
		},
		true,
	)

	view := projection.NewView(s)
	if view.VoteCount() != 1 {
		t.Errorf("expected voteCount 1, got %d", view.VoteCount())
	}
	if view.HasVoted("ghost") {
		t.Error("expected dangling vote to be treated as absent")
	}
	summary := view.ResultSummary()
	if len(summary) != 1 || summary[0].Value != "5" {
		t.Errorf("expected dangling vote excluded from summary, got %+v", summary)
	}
	if votes := view.ActiveVotes(); len(votes) != 1 || votes[0].UserID != "a" {
		t.Errorf("expected only a's vote active, got %+v", votes)
	}
}

// TestView_HostAndCounts tests the simple read functions
func TestView_HostAndCounts(t *testing.T) {
	s := snapshot(
		[]models.User{{ID: "a", Name: "A", IsHost: true}, {ID: "b", Name: "B"}},
		[]models.Vote{{UserID: "b", UserName: "B", Value: "3"}},
		false,
	)

	view := projection.NewView(s)
	if view.UserCount() != 2 {
		t.Errorf("expected userCount 2, got %d", view.UserCount())
	}
	if !view.IsHost("a") || view.IsHost("b") || view.IsHost("ghost") {
		t.Error("host determination incorrect")
	}
	if !view.HasVoted("b") || view.HasVoted("a") {
		t.Error("hasVoted incorrect")
	}
	if view.Revealed() {
		t.Error("expected unrevealed")
	}
}

// TestView_NilSessionIsEmptyState tests that a missing session projects
// the empty state instead of panicking
func TestView_NilSessionIsEmptyState(t *testing.T) {
	view := projection.NewView(nil)
	if view.UserCount() != 0 || view.VoteCount() != 0 || view.Revealed() {
		t.Error("expected empty projections for nil session")
	}
	if view.IsHost("a") || view.HasVoted("a") {
		t.Error("expected negative membership for nil session")
	}
	if view.ResultSummary() != nil {
		t.Error("expected nil summary for nil session")
	}
}
