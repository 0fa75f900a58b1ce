// Package engine owns the session state machine and its mutation protocol.
// Every mutation is a read-modify-write against the freshest record,
// serialized per session through a keyed mutex and committed as a single
// targeted patch, so concurrent mutations to one session can never lose
// each other's updates.
package engine

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abrezinsky/scrumdeck/internal/errors"
	"github.com/abrezinsky/scrumdeck/internal/logger"
	"github.com/abrezinsky/scrumdeck/internal/models"
	"github.com/abrezinsky/scrumdeck/internal/store"
)

// Engine validates and applies every session mutation.
type Engine struct {
	log   logger.Logger
	store store.Store
	locks *keyedMutex
}

// New creates an Engine backed by the given session store.
func New(log logger.Logger, st store.Store) *Engine {
	return &Engine{
		log:   log,
		store: st,
		locks: newKeyedMutex(),
	}
}

// CreateSession allocates a fresh opaque id and writes a new session with
// the creator as its only user, flagged as host. Host status is assigned
// here once and never transferred.
func (e *Engine) CreateSession(ctx context.Context, name string, d models.Deck, host models.User) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.InvalidArgument("session name must not be empty")
	}
	if err := validateDeck(d); err != nil {
		return "", err
	}
	if err := validateUser(host); err != nil {
		return "", err
	}

	sessionID := uuid.NewString()
	host.IsHost = true
	now := time.Now().UnixMilli()

	session := &models.Session{
		ID:           sessionID,
		Name:         name,
		SelectedDeck: models.CloneDeck(d),
		Users:        []models.User{host},
		Votes:        []models.Vote{},
		Revealed:     false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := e.store.Create(ctx, session); err != nil {
		return "", errors.StoreUnavailable(err)
	}

	e.log.Info("Session created", "session_id", sessionID, "name", name, "deck", d.ID, "host_id", host.ID)
	return sessionID, nil
}

// JoinSession appends the user to the session. Joining is idempotent by
// user id: multiple code paths may race to join the same user (reconnects,
// the handle's self-heal join) and must not create duplicates. A rejoin
// under a changed display name refreshes the stored name. Session absence
// is a negative result, not an error.
func (e *Engine) JoinSession(ctx context.Context, sessionID string, user models.User) (bool, error) {
	if err := validateUser(user); err != nil {
		return false, err
	}

	unlock := e.locks.lock(sessionID)
	defer unlock()

	session, err := e.store.Get(ctx, sessionID)
	if err == store.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, errors.StoreUnavailable(err)
	}

	if existing := session.UserByID(user.ID); existing != nil {
		if existing.Name == user.Name {
			return true, nil
		}
		existing.Name = user.Name
	} else {
		// A joiner never claims host status; that flag is set only at
		// creation.
		user.IsHost = false
		session.Users = append(session.Users, user)
	}

	patch := store.Patch{Users: &session.Users, UpdatedAt: time.Now().UnixMilli()}
	if ok, err := e.apply(ctx, sessionID, patch); !ok {
		return false, err
	}

	e.log.Info("User joined session", "session_id", sessionID, "user_id", user.ID, "user_name", user.Name)
	return true, nil
}

// LeaveSession removes the user and any vote keyed by that user as one
// commit. Leaving twice, or leaving a session the user isn't in, is not an
// error.
func (e *Engine) LeaveSession(ctx context.Context, sessionID, userID string) (bool, error) {
	if userID == "" {
		return false, errors.InvalidArgument("user id must not be empty")
	}

	unlock := e.locks.lock(sessionID)
	defer unlock()

	session, err := e.store.Get(ctx, sessionID)
	if err == store.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, errors.StoreUnavailable(err)
	}

	users := session.Users[:0:0]
	for _, u := range session.Users {
		if u.ID != userID {
			users = append(users, u)
		}
	}
	votes := session.Votes[:0:0]
	for _, v := range session.Votes {
		if v.UserID != userID {
			votes = append(votes, v)
		}
	}
	if len(users) == len(session.Users) && len(votes) == len(session.Votes) {
		return true, nil
	}
	if users == nil {
		users = []models.User{}
	}
	if votes == nil {
		votes = []models.Vote{}
	}

	patch := store.Patch{Users: &users, Votes: &votes, UpdatedAt: time.Now().UnixMilli()}
	if ok, err := e.apply(ctx, sessionID, patch); !ok {
		return false, err
	}

	e.log.Info("User left session", "session_id", sessionID, "user_id", userID)
	return true, nil
}

// SubmitVote upserts the user's vote by user id; a repeat submission
// replaces, never duplicates. The vote is stamped with the session's
// current reveal flag, so a vote cast after reveal is visible immediately.
func (e *Engine) SubmitVote(ctx context.Context, sessionID, userID, userName, value string) (bool, error) {
	if userID == "" || strings.TrimSpace(userName) == "" {
		return false, errors.InvalidArgument("voter identity must not be empty")
	}
	if value == "" {
		return false, errors.InvalidArgument("vote value must not be empty")
	}

	unlock := e.locks.lock(sessionID)
	defer unlock()

	session, err := e.store.Get(ctx, sessionID)
	if err == store.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, errors.StoreUnavailable(err)
	}

	vote := models.Vote{
		UserID:   userID,
		UserName: userName,
		Value:    value,
		Revealed: session.Revealed,
	}

	votes := session.Votes[:0:0]
	for _, v := range session.Votes {
		if v.UserID != userID {
			votes = append(votes, v)
		}
	}
	votes = append(votes, vote)

	patch := store.Patch{Votes: &votes, UpdatedAt: time.Now().UnixMilli()}
	if ok, err := e.apply(ctx, sessionID, patch); !ok {
		return false, err
	}

	e.log.Debug("Vote recorded", "session_id", sessionID, "user_id", userID, "revealed", session.Revealed)
	return true, nil
}

// RevealVotes flips the session to Revealed and stamps every existing vote
// revealed, as one atomic commit.
func (e *Engine) RevealVotes(ctx context.Context, sessionID string) (bool, error) {
	unlock := e.locks.lock(sessionID)
	defer unlock()

	session, err := e.store.Get(ctx, sessionID)
	if err == store.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, errors.StoreUnavailable(err)
	}

	votes := make([]models.Vote, len(session.Votes))
	for i, v := range session.Votes {
		v.Revealed = true
		votes[i] = v
	}
	revealed := true

	patch := store.Patch{Votes: &votes, Revealed: &revealed, UpdatedAt: time.Now().UnixMilli()}
	if ok, err := e.apply(ctx, sessionID, patch); !ok {
		return false, err
	}

	e.log.Info("Votes revealed", "session_id", sessionID, "vote_count", len(votes))
	return true, nil
}

// ResetVotes clears all votes and returns the session to Voting. Users are
// untouched. Resetting an already-empty round is a no-op commit.
func (e *Engine) ResetVotes(ctx context.Context, sessionID string) (bool, error) {
	unlock := e.locks.lock(sessionID)
	defer unlock()

	votes := []models.Vote{}
	revealed := false
	patch := store.Patch{Votes: &votes, Revealed: &revealed, UpdatedAt: time.Now().UnixMilli()}

	err := e.store.Apply(ctx, sessionID, patch)
	if err == store.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, errors.StoreUnavailable(err)
	}

	e.log.Info("Votes reset", "session_id", sessionID)
	return true, nil
}

// ChangeDeck swaps the selected deck. Card values from the old deck are
// meaningless under the new one, so the votes are cleared and the session
// returns to Voting in the same commit.
func (e *Engine) ChangeDeck(ctx context.Context, sessionID string, d models.Deck) (bool, error) {
	if err := validateDeck(d); err != nil {
		return false, err
	}

	unlock := e.locks.lock(sessionID)
	defer unlock()

	newDeck := models.CloneDeck(d)
	votes := []models.Vote{}
	revealed := false
	patch := store.Patch{
		SelectedDeck: &newDeck,
		Votes:        &votes,
		Revealed:     &revealed,
		UpdatedAt:    time.Now().UnixMilli(),
	}

	err := e.store.Apply(ctx, sessionID, patch)
	if err == store.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, errors.StoreUnavailable(err)
	}

	e.log.Info("Deck changed", "session_id", sessionID, "deck", d.ID)
	return true, nil
}

// DeleteSession removes the record permanently. Deleting an absent session
// is not an error.
func (e *Engine) DeleteSession(ctx context.Context, sessionID string) (bool, error) {
	unlock := e.locks.lock(sessionID)
	defer unlock()

	if err := e.store.Delete(ctx, sessionID); err != nil {
		return false, errors.StoreUnavailable(err)
	}

	e.log.Info("Session deleted", "session_id", sessionID)
	return true, nil
}

// apply commits a patch, classifying adapter failures. The caller holds the
// session lock. A session that vanished between the read and the commit
// (concurrent delete) is a negative result, not a transport failure.
func (e *Engine) apply(ctx context.Context, sessionID string, patch store.Patch) (bool, error) {
	err := e.store.Apply(ctx, sessionID, patch)
	if err == store.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, errors.StoreUnavailable(err)
	}
	return true, nil
}

func validateUser(u models.User) error {
	if u.ID == "" {
		return errors.InvalidArgument("user id must not be empty")
	}
	if strings.TrimSpace(u.Name) == "" {
		return errors.InvalidArgument("user name must not be empty")
	}
	return nil
}

func validateDeck(d models.Deck) error {
	if d.ID == "" {
		return errors.InvalidArgument("deck id must not be empty")
	}
	if len(d.Cards) == 0 {
		return errors.InvalidArgument("deck must have at least one card")
	}
	return nil
}
