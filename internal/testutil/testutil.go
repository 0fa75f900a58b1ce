package testutil

import (
	"context"
	"testing"

	"github.com/abrezinsky/scrumdeck/internal/deck"
	"github.com/abrezinsky/scrumdeck/internal/engine"
	"github.com/abrezinsky/scrumdeck/internal/logger"
	"github.com/abrezinsky/scrumdeck/internal/models"
	"github.com/abrezinsky/scrumdeck/internal/store/memory"
)

// NewTestStore creates a fresh in-memory session store.
func NewTestStore(t *testing.T) *memory.Store {
	t.Helper()
	return memory.New()
}

// NewTestEngine creates an engine over a fresh in-memory store and returns
// both.
func NewTestEngine(t *testing.T) (*engine.Engine, *memory.Store) {
	t.Helper()
	st := memory.New()
	return engine.New(logger.New(), st), st
}

// User builds a participant for tests.
func User(id, name string) models.User {
	return models.User{ID: id, Name: name}
}

// CreateTestSession creates a session hosted by the given user and returns
// its id.
func CreateTestSession(t *testing.T, eng *engine.Engine, name string, host models.User) string {
	t.Helper()
	sessionID, err := eng.CreateSession(context.Background(), name, deck.Fibonacci, host)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	return sessionID
}
