// Package client provides the per-participant session handle: a live
// subscription to one session plus intent methods that forward to the
// synchronization engine with the locally known identity.
//
// The handle never updates its snapshot optimistically; state changes only
// when the store's subscription delivers a newly committed record. Identity
// is explicit constructor state, not ambient storage.
package client

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"github.com/abrezinsky/scrumdeck/internal/engine"
	"github.com/abrezinsky/scrumdeck/internal/errors"
	"github.com/abrezinsky/scrumdeck/internal/logger"
	"github.com/abrezinsky/scrumdeck/internal/models"
	"github.com/abrezinsky/scrumdeck/internal/store"
)

// DefaultIntentTimeout bounds every forwarded intent. A timed-out intent
// has an unknown outcome; all intents are idempotent and safe to retry.
const DefaultIntentTimeout = 10 * time.Second

// Handle is one participant's connection to one session.
type Handle struct {
	log       logger.Logger
	engine    *engine.Engine
	store     store.Store
	sessionID string
	user      models.User
	timeout   time.Duration

	sub  *store.Subscription
	out  chan *models.Session
	done chan struct{}

	mu      sync.Mutex
	current *models.Session
	joined  bool
	left    bool
	closed  bool
}

// Option tweaks handle construction.
type Option func(*Handle)

// WithIntentTimeout overrides the per-intent timeout.
func WithIntentTimeout(d time.Duration) Option {
	return func(h *Handle) { h.timeout = d }
}

// Open subscribes to the session and starts the snapshot pump. If the local
// user is missing from the first delivered snapshot, the handle self-heal
// joins; the engine's idempotent join guarantees no duplicate users even
// when open races a concurrent join for the same user.
func Open(ctx context.Context, log logger.Logger, eng *engine.Engine, st store.Store, sessionID string, user models.User, opts ...Option) (*Handle, error) {
	if sessionID == "" {
		return nil, errors.InvalidArgument("session id must not be empty")
	}
	if user.ID == "" || user.Name == "" {
		return nil, errors.InvalidArgument("local identity must not be empty")
	}

	h := &Handle{
		log:       log,
		engine:    eng,
		store:     st,
		sessionID: sessionID,
		user:      user,
		timeout:   DefaultIntentTimeout,
		out:       make(chan *models.Session, 1),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}

	sub, err := st.Subscribe(ctx, sessionID)
	if err != nil {
		return nil, errors.StoreUnavailable(err)
	}
	h.sub = sub

	go h.pump()
	return h, nil
}

// pump forwards store snapshots to the consumer channel, tracking the
// latest and triggering the self-heal join when the local user is absent.
func (h *Handle) pump() {
	defer close(h.out)
	for snap := range h.sub.Snapshots() {
		h.mu.Lock()
		h.current = snap
		closed := h.closed
		left := h.left
		h.mu.Unlock()
		if closed {
			return
		}

		// A deliberate leave must stay left; only heal unexpected absence.
		if snap != nil && snap.UserByID(h.user.ID) == nil && !left {
			go h.selfHealJoin()
		} else if snap != nil && snap.UserByID(h.user.ID) != nil {
			h.mu.Lock()
			h.joined = true
			h.mu.Unlock()
		}

		// Latest-wins delivery: a consumer that lags skips intermediate
		// snapshots but always sees the freshest one.
		for {
			select {
			case h.out <- snap:
			default:
				select {
				case <-h.out:
				default:
				}
				continue
			}
			break
		}
	}
}

func (h *Handle) selfHealJoin() {
	h.mu.Lock()
	skip := h.left || h.closed
	h.mu.Unlock()
	if skip {
		return
	}

	ctx, cancel := h.intentContext()
	defer cancel()
	joined, err := h.engine.JoinSession(ctx, h.sessionID, h.user)
	if err != nil {
		h.log.Warn("Self-heal join failed", "session_id", h.sessionID, "user_id", h.user.ID, "error", err)
		return
	}
	if joined {
		h.mu.Lock()
		h.joined = true
		h.mu.Unlock()
	}
}

// Snapshots returns the live snapshot channel. A nil snapshot means the
// session does not exist or was deleted; it is a valid state the
// presentation layer must render, not an error.
func (h *Handle) Snapshots() <-chan *models.Session {
	return h.out
}

// Current returns the most recent snapshot (possibly nil).
func (h *Handle) Current() *models.Session {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

// User returns the local identity bound to this handle.
func (h *Handle) User() models.User {
	return h.user
}

// Vote submits or replaces the local user's vote.
func (h *Handle) Vote(value string) (bool, error) {
	ctx, cancel := h.intentContext()
	defer cancel()
	return h.classify(h.engine.SubmitVote(ctx, h.sessionID, h.user.ID, h.user.Name, value))
}

// Reveal makes all votes visible to every participant.
func (h *Handle) Reveal() (bool, error) {
	ctx, cancel := h.intentContext()
	defer cancel()
	return h.classify(h.engine.RevealVotes(ctx, h.sessionID))
}

// Reset clears the votes and starts a fresh round.
func (h *Handle) Reset() (bool, error) {
	ctx, cancel := h.intentContext()
	defer cancel()
	return h.classify(h.engine.ResetVotes(ctx, h.sessionID))
}

// ChangeDeck swaps the session deck, implicitly starting a new round.
func (h *Handle) ChangeDeck(d models.Deck) (bool, error) {
	ctx, cancel := h.intentContext()
	defer cancel()
	return h.classify(h.engine.ChangeDeck(ctx, h.sessionID, d))
}

// Leave removes the local user (and their vote) from the session without
// closing the subscription.
func (h *Handle) Leave() (bool, error) {
	ctx, cancel := h.intentContext()
	defer cancel()
	h.mu.Lock()
	h.left = true
	h.mu.Unlock()

	left, err := h.classify(h.engine.LeaveSession(ctx, h.sessionID, h.user.ID))
	if err == nil && left {
		h.mu.Lock()
		h.joined = false
		h.mu.Unlock()
	}
	return left, err
}

// Close cancels the subscription and, if the user had joined, leaves the
// session. Safe to call more than once.
func (h *Handle) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	joined := h.joined
	h.mu.Unlock()

	h.sub.Cancel()

	if joined {
		ctx, cancel := h.intentContext()
		defer cancel()
		if _, err := h.engine.LeaveSession(ctx, h.sessionID, h.user.ID); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handle) intentContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), h.timeout)
}

// classify maps a deadline expiry to StoreUnavailable: the outcome is
// unknown and the caller may retry.
func (h *Handle) classify(ok bool, err error) (bool, error) {
	if err == nil {
		return ok, nil
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return false, errors.Wrap(err, errors.ErrStoreUnavailable, "intent timed out")
	}
	return ok, err
}
