// Package store defines the boundary between the synchronization engine and
// the shared session record storage. The engine is written against the
// Store interface only; adapters live in the subpackages.
package store

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/abrezinsky/scrumdeck/internal/models"
)

// ErrNotFound is returned when a session record does not exist. Callers are
// expected to treat it as a negative result, not a transport failure.
var ErrNotFound = errors.New("session not found")

// ErrAlreadyExists is returned by Create when the session id is taken.
var ErrAlreadyExists = errors.New("session already exists")

// Patch is a targeted partial update to one session record. Only non-nil
// fields are applied; UpdatedAt is always applied. Adapters MUST apply a
// patch atomically relative to concurrent Apply/Create/Delete calls on the
// same session id. Concurrent patches to distinct fields never clobber each
// other; this granularity is part of the race-safety contract.
type Patch struct {
	Users        *[]models.User
	Votes        *[]models.Vote
	Revealed     *bool
	SelectedDeck *models.Deck
	UpdatedAt    int64
}

// Subscription is a live feed of one session's record. Snapshots delivers
// the full current record at subscribe time and after every committed
// change. A nil snapshot means the session does not exist (or was deleted);
// it is a valid state, not an error.
type Subscription struct {
	ch     chan *models.Session
	saw    *atomic.Bool
	cancel func()
}

// NewSubscription wraps a snapshot channel, the adapter's record-seen flag,
// and a cancel hook. Intended for adapter implementations.
func NewSubscription(ch chan *models.Session, saw *atomic.Bool, cancel func()) *Subscription {
	return &Subscription{ch: ch, saw: saw, cancel: cancel}
}

// SawRecord reports whether the feed has ever carried a non-nil record,
// including one replaced by a newer snapshot before the consumer read it.
// Lets a consumer of a nil snapshot distinguish a session that never
// existed from one deleted before the first read.
func (s *Subscription) SawRecord() bool {
	return s.saw.Load()
}

// Snapshots returns the channel of record snapshots. The channel is closed
// when the subscription is cancelled.
func (s *Subscription) Snapshots() <-chan *models.Session {
	return s.ch
}

// Cancel tears down the subscription and closes the snapshot channel.
// Safe to call more than once.
func (s *Subscription) Cancel() {
	s.cancel()
}

// Store is the session store adapter contract consumed by the engine.
type Store interface {
	// Create writes a brand new session record.
	Create(ctx context.Context, session *models.Session) error

	// Get returns the current record, or ErrNotFound.
	Get(ctx context.Context, sessionID string) (*models.Session, error)

	// Apply commits a partial update atomically. Returns ErrNotFound when
	// the session does not exist.
	Apply(ctx context.Context, sessionID string, patch Patch) error

	// Subscribe opens a live feed of the session record, starting with the
	// current value (nil if the session does not exist).
	Subscribe(ctx context.Context, sessionID string) (*Subscription, error)

	// Delete removes the record permanently. Deleting an absent session is
	// not an error.
	Delete(ctx context.Context, sessionID string) error
}

// Normalize fills in documented defaults for missing optional fields so the
// engine never sees a denormalized record: nil user/vote slices become
// empty, a zero-value deck becomes the provided default, zero timestamps
// become now. Adapters call this on every read path.
func Normalize(s *models.Session, defaultDeck models.Deck) *models.Session {
	if s == nil {
		return nil
	}
	if s.Users == nil {
		s.Users = []models.User{}
	}
	if s.Votes == nil {
		s.Votes = []models.Vote{}
	}
	if s.SelectedDeck.ID == "" {
		s.SelectedDeck = models.CloneDeck(defaultDeck)
	}
	now := time.Now().UnixMilli()
	if s.CreatedAt == 0 {
		s.CreatedAt = now
	}
	if s.UpdatedAt == 0 {
		s.UpdatedAt = now
	}
	return s
}
