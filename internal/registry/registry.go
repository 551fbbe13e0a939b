package registry

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/lobbyn/relay/internal/dependencies/clock"
	"github.com/lobbyn/relay/internal/model"
)

// Sender delivers payloads to a connection's peer. Send must not block the
// caller; Close must be idempotent.
type Sender interface {
	Send(payload []byte) error
	Close(reason model.CloseReason)
}

// connection is the registry's record of a live transport session. The
// registry exclusively owns these; callers only see Snapshot copies.
type connection struct {
	id            model.ConnectionID
	state         model.ConnectionState
	identity      *model.ResolvedAccount
	challengeIcon *model.IconID
	openedAt      time.Time
	authorizedAt  time.Time
	sender        Sender
	timer         clock.Timer
}

// Snapshot is a point-in-time copy of a connection's public state.
type Snapshot struct {
	ID            model.ConnectionID
	State         model.ConnectionState
	Identity      *model.ResolvedAccount
	ChallengeIcon *model.IconID
	OpenedAt      time.Time
}

// Peer is an authorized connection as seen by the message router.
type Peer struct {
	ID      model.ConnectionID
	Account model.ResolvedAccount
}

// Registry is the single source of truth for live connections and their
// handshake state. Every operation is atomic under one mutex; handlers for
// different connections call in concurrently.
type Registry struct {
	mu     sync.Mutex
	conns  map[model.ConnectionID]*connection
	logger *slog.Logger
}

// New creates an empty Registry
func New(logger *slog.Logger) *Registry {
	return &Registry{
		conns:  make(map[model.ConnectionID]*connection),
		logger: logger.With(slog.String("component", "registry")),
	}
}

// Add registers a freshly opened connection in the pending state.
func (r *Registry) Add(id model.ConnectionID, sender Sender, openedAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[id] = &connection{
		id:       id,
		state:    model.StatePending,
		openedAt: openedAt,
		sender:   sender,
	}
}

// ArmTimer attaches the handshake deadline timer to a connection, stopping
// any previous one. The registry stops the timer when the connection is
// removed, so cancellation happens exactly once regardless of which side
// wins the race.
func (r *Registry) ArmTimer(id model.ConnectionID, t clock.Timer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conns[id]
	if !ok {
		// Connection closed before the timer could be attached; the caller's
		// timer must not fire against a recycled id.
		t.Stop()
		return
	}
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = t
}

// ResetTimer re-arms a connection's handshake deadline.
func (r *Registry) ResetTimer(id model.ConnectionID, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.conns[id]; ok && c.timer != nil {
		c.timer.Reset(d)
	}
}

// Get returns a snapshot of a connection, if it exists.
func (r *Registry) Get(id model.ConnectionID) (Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conns[id]
	if !ok {
		return Snapshot{}, false
	}
	return snapshotOf(c), true
}

// MarkIdentified transitions a pending connection to identified, attaching
// the resolved account.
func (r *Registry) MarkIdentified(id model.ConnectionID, account model.ResolvedAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conns[id]
	if !ok {
		return model.ErrConnectionNotFound
	}
	if c.state != model.StatePending {
		return model.ErrInvalidTransition
	}
	c.state = model.StateIdentified
	c.identity = &account
	return nil
}

// MarkChallenged transitions an identified connection to challenged,
// recording the issued challenge icon.
func (r *Registry) MarkChallenged(id model.ConnectionID, icon model.IconID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conns[id]
	if !ok {
		return model.ErrConnectionNotFound
	}
	if c.state != model.StateIdentified {
		return model.ErrInvalidTransition
	}
	c.state = model.StateChallenged
	c.challengeIcon = &icon
	return nil
}

// Authorize promotes a challenged connection to authorized and cancels its
// handshake deadline. The promotion is a single atomic step; a concurrent
// timeout either wins entirely (and this returns ErrConnectionNotFound) or
// loses entirely (and its expiry becomes a no-op).
func (r *Registry) Authorize(id model.ConnectionID, now time.Time) (model.ResolvedAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conns[id]
	if !ok {
		return model.ResolvedAccount{}, model.ErrConnectionNotFound
	}
	if c.state != model.StateChallenged {
		return model.ResolvedAccount{}, model.ErrInvalidTransition
	}
	c.state = model.StateAuthorized
	c.challengeIcon = nil
	c.authorizedAt = now
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	return *c.identity, nil
}

// Remove deletes a connection and releases its handshake timer. Removing an
// absent id is a no-op.
func (r *Registry) Remove(id model.ConnectionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeLocked(id)
}

// CloseAndRemove closes a connection's transport with the given reason and
// removes it from the registry. Idempotent: a second call for the same id
// does nothing.
func (r *Registry) CloseAndRemove(id model.ConnectionID, reason model.CloseReason) {
	r.mu.Lock()
	c, ok := r.conns[id]
	r.removeLocked(id)
	r.mu.Unlock()
	if ok {
		c.sender.Close(reason)
	}
}

// CloseIfUnauthorized closes and removes a connection only if it has not
// reached the authorized state. Used by the handshake deadline so that an
// expiry racing a successful verification never tears down an authorized
// connection. Reports whether the connection was closed.
func (r *Registry) CloseIfUnauthorized(id model.ConnectionID, reason model.CloseReason) bool {
	r.mu.Lock()
	c, ok := r.conns[id]
	if !ok || c.state == model.StateAuthorized {
		r.mu.Unlock()
		return false
	}
	r.removeLocked(id)
	r.mu.Unlock()
	c.sender.Close(reason)
	return true
}

// Send delivers a payload to a connection. Lookup and send happen under the
// registry lock so a concurrent removal cannot interleave; the sender itself
// never blocks, so holding the lock is cheap.
func (r *Registry) Send(id model.ConnectionID, payload []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conns[id]
	if !ok {
		return model.ErrConnectionNotFound
	}
	return c.sender.Send(payload)
}

// ListAuthorized returns every authorized connection.
func (r *Registry) ListAuthorized() []Peer {
	r.mu.Lock()
	defer r.mu.Unlock()
	peers := make([]Peer, 0, len(r.conns))
	for _, c := range r.conns {
		if c.state == model.StateAuthorized {
			peers = append(peers, Peer{ID: c.id, Account: *c.identity})
		}
	}
	return peers
}

// FindByIdentity returns the authorized connection for a Riot ID. Matching
// is on (displayName, tag) only, case-insensitively; region is not part of
// identity equality. When the same identity is authorized on several
// connections the most recently authorized one wins.
func (r *Registry) FindByIdentity(displayName, tag string) (model.ConnectionID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var best *connection
	for _, c := range r.conns {
		if c.state != model.StateAuthorized {
			continue
		}
		if !strings.EqualFold(c.identity.DisplayName, displayName) || !strings.EqualFold(c.identity.Tag, tag) {
			continue
		}
		if best == nil || c.authorizedAt.After(best.authorizedAt) {
			best = c
		}
	}
	if best == nil {
		return "", false
	}
	return best.id, true
}

// Counts returns the number of connections still in the handshake and the
// number authorized.
func (r *Registry) Counts() (unauthorized, authorized int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.conns {
		if c.state == model.StateAuthorized {
			authorized++
		} else {
			unauthorized++
		}
	}
	return unauthorized, authorized
}

func (r *Registry) removeLocked(id model.ConnectionID) {
	c, ok := r.conns[id]
	if !ok {
		return
	}
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	delete(r.conns, id)
}

func snapshotOf(c *connection) Snapshot {
	return Snapshot{
		ID:            c.id,
		State:         c.state,
		Identity:      c.identity,
		ChallengeIcon: c.challengeIcon,
		OpenedAt:      c.openedAt,
	}
}
