// Package memory provides the in-memory reference implementation of the
// session store adapter. Patches are applied under a single store mutex, so
// every commit is atomic and totally ordered per session; subscribers
// observe commits in that order. Suitable for tests and single-node
// deployments.
package memory

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/abrezinsky/scrumdeck/internal/deck"
	"github.com/abrezinsky/scrumdeck/internal/models"
	"github.com/abrezinsky/scrumdeck/internal/store"
)

type subscriber struct {
	ch   chan *models.Session
	saw  atomic.Bool
	once sync.Once
}

// push delivers the freshest snapshot, replacing an undelivered older one.
// A slow subscriber skips intermediate states but always converges to the
// latest record.
func (s *subscriber) push(snap *models.Session) {
	if snap != nil {
		s.saw.Store(true)
	}
	for {
		select {
		case s.ch <- snap:
			return
		default:
			select {
			case <-s.ch:
			default:
			}
		}
	}
}

// Store is the in-memory adapter.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
	subs     map[string]map[*subscriber]struct{}
}

var _ store.Store = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		sessions: make(map[string]*models.Session),
		subs:     make(map[string]map[*subscriber]struct{}),
	}
}

// Create writes a brand new session record.
func (s *Store) Create(ctx context.Context, session *models.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[session.ID]; ok {
		return store.ErrAlreadyExists
	}
	rec := store.Normalize(session.Clone(), deck.Default)
	s.sessions[session.ID] = rec
	s.publishLocked(session.ID, rec)
	return nil
}

// Get returns a copy of the current record, or store.ErrNotFound.
func (s *Store) Get(ctx context.Context, sessionID string) (*models.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.sessions[sessionID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return rec.Clone(), nil
}

// Apply commits a partial update atomically. Only fields present in the
// patch are touched; UpdatedAt never goes backwards.
func (s *Store) Apply(ctx context.Context, sessionID string, patch store.Patch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.sessions[sessionID]
	if !ok {
		return store.ErrNotFound
	}

	if patch.Users != nil {
		rec.Users = append([]models.User{}, *patch.Users...)
	}
	if patch.Votes != nil {
		rec.Votes = append([]models.Vote{}, *patch.Votes...)
	}
	if patch.Revealed != nil {
		rec.Revealed = *patch.Revealed
	}
	if patch.SelectedDeck != nil {
		rec.SelectedDeck = models.CloneDeck(*patch.SelectedDeck)
	}
	if patch.UpdatedAt > rec.UpdatedAt {
		rec.UpdatedAt = patch.UpdatedAt
	} else {
		rec.UpdatedAt++
	}

	s.publishLocked(sessionID, rec)
	return nil
}

// Subscribe opens a live feed starting with the current record (nil when
// the session does not exist).
func (s *Store) Subscribe(ctx context.Context, sessionID string) (*store.Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sub := &subscriber{ch: make(chan *models.Session, 1)}

	s.mu.Lock()
	if s.subs[sessionID] == nil {
		s.subs[sessionID] = make(map[*subscriber]struct{})
	}
	s.subs[sessionID][sub] = struct{}{}
	var current *models.Session
	if rec, ok := s.sessions[sessionID]; ok {
		current = rec.Clone()
	}
	// Initial delivery happens under the store mutex so it cannot land
	// after a newer committed snapshot.
	sub.push(current)
	s.mu.Unlock()

	cancel := func() {
		sub.once.Do(func() {
			s.mu.Lock()
			delete(s.subs[sessionID], sub)
			if len(s.subs[sessionID]) == 0 {
				delete(s.subs, sessionID)
			}
			s.mu.Unlock()
			close(sub.ch)
		})
	}
	return store.NewSubscription(sub.ch, &sub.saw, cancel), nil
}

// Delete removes the record permanently and notifies subscribers with a nil
// snapshot. Deleting an absent session is a no-op.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return nil
	}
	delete(s.sessions, sessionID)
	s.publishLocked(sessionID, nil)
	return nil
}

// publishLocked fans the committed record out to subscribers. Callers hold
// the store mutex, which is what orders commits identically for everyone.
func (s *Store) publishLocked(sessionID string, rec *models.Session) {
	subs := s.subs[sessionID]
	if len(subs) == 0 {
		return
	}
	for sub := range subs {
		// Each subscriber gets its own clone; snapshots are never shared.
		sub.push(rec.Clone())
	}
}
