package store_test

import (
	"testing"

	"github.com/abrezinsky/scrumdeck/internal/deck"
	"github.com/abrezinsky/scrumdeck/internal/models"
	"github.com/abrezinsky/scrumdeck/internal/store"
)

func TestNormalize_FillsMissingOptionalFields(t *testing.T) {
	s := store.Normalize(&models.Session{ID: "s-1", Name: "Sprint"}, deck.Default)

	if s.Users == nil || s.Votes == nil {
		t.Error("expected nil slices replaced with empty ones")
	}
	if s.SelectedDeck.ID != deck.Default.ID {
		t.Errorf("expected default deck, got %s", s.SelectedDeck.ID)
	}
	if s.CreatedAt == 0 || s.UpdatedAt == 0 {
		t.Error("expected timestamps filled")
	}
}

func TestNormalize_LeavesPopulatedFieldsAlone(t *testing.T) {
	in := &models.Session{
		ID:           "s-1",
		Name:         "Sprint",
		SelectedDeck: deck.TShirt,
		Users:        []models.User{{ID: "u-1", Name: "Ann"}},
		Votes:        []models.Vote{{UserID: "u-1", UserName: "Ann", Value: "M"}},
		CreatedAt:    100,
		UpdatedAt:    200,
	}

	s := store.Normalize(in, deck.Default)
	if s.SelectedDeck.ID != "tshirt" || len(s.Users) != 1 || len(s.Votes) != 1 {
		t.Errorf("expected populated fields untouched, got %+v", s)
	}
	if s.CreatedAt != 100 || s.UpdatedAt != 200 {
		t.Errorf("expected timestamps untouched, got %d/%d", s.CreatedAt, s.UpdatedAt)
	}
}

func TestNormalize_NilSessionStaysNil(t *testing.T) {
	if store.Normalize(nil, deck.Default) != nil {
		t.Error("expected nil in, nil out")
	}
}
