package mock

import (
	"context"

	"github.com/abrezinsky/scrumdeck/internal/models"
	"github.com/abrezinsky/scrumdeck/internal/store"
)

// Store wraps a real session store and allows injecting errors for testing.
// This provides a flexible way to test transport-failure paths without a
// faulty backing store.
//
// Usage:
//
//	real := memory.New()
//	mockStore := mock.New(real)
//	mockStore.ApplyError = errors.New("connection reset")
//	eng := engine.New(log, mockStore)
//	_, err := eng.JoinSession(ctx, sessionID, user)
//	// err now carries the injected failure
type Store struct {
	store.Store

	CreateError    error
	GetError       error
	ApplyError     error
	SubscribeError error
	DeleteError    error
}

var _ store.Store = (*Store)(nil)

// New creates a mock store wrapping a real one.
func New(real store.Store) *Store {
	return &Store{Store: real}
}

func (m *Store) Create(ctx context.Context, session *models.Session) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	return m.Store.Create(ctx, session)
}

func (m *Store) Get(ctx context.Context, sessionID string) (*models.Session, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	return m.Store.Get(ctx, sessionID)
}

func (m *Store) Apply(ctx context.Context, sessionID string, patch store.Patch) error {
	if m.ApplyError != nil {
		return m.ApplyError
	}
	return m.Store.Apply(ctx, sessionID, patch)
}

func (m *Store) Subscribe(ctx context.Context, sessionID string) (*store.Subscription, error) {
	if m.SubscribeError != nil {
		return nil, m.SubscribeError
	}
	return m.Store.Subscribe(ctx, sessionID)
}

func (m *Store) Delete(ctx context.Context, sessionID string) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}
	return m.Store.Delete(ctx, sessionID)
}
