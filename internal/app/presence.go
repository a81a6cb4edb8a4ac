package app

import (
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Babel/internal/core"
	"github.com/dkeye/Babel/internal/domain"
	"github.com/dkeye/Babel/internal/observability"
)

type session struct {
	SID      core.SessionID
	User     *domain.User
	Presence domain.Presence
	Conn     core.SignalConnection
}

// PresenceRegistry exclusively owns session records, keyed both by the
// transport handle and by user id. The two indexes always point at the
// same entries.
type PresenceRegistry struct {
	mu     sync.RWMutex
	bySID  map[core.SessionID]*session
	byUser map[domain.UserID]*session
}

func NewPresenceRegistry() *PresenceRegistry {
	return &PresenceRegistry{
		bySID:  make(map[core.SessionID]*session),
		byUser: make(map[domain.UserID]*session),
	}
}

// Register inserts or updates the session for user. A rejoin for the same
// user id overwrites the previous record instead of duplicating it, and a
// connection re-bound to a different user evicts whoever it served
// before; both indexes always move together. An InCall presence survives
// the overwrite so the registry cannot contradict the call table.
func (r *PresenceRegistry) Register(sid core.SessionID, user *domain.User, conn core.SignalConnection) {
	r.mu.Lock()
	defer r.mu.Unlock()

	presence := domain.Online
	evicted := 0
	if old, ok := r.byUser[user.ID]; ok {
		delete(r.bySID, old.SID)
		delete(r.byUser, user.ID)
		if old.Presence == domain.InCall {
			presence = domain.InCall
		}
		evicted++
	}
	if old, ok := r.bySID[sid]; ok {
		delete(r.byUser, old.User.ID)
		delete(r.bySID, sid)
		log.Warn().Str("module", "app.presence").Str("sid", string(sid)).Str("user", string(old.User.ID)).Msg("connection rebound, evicting previous user")
		evicted++
	}
	// Two evicted records collapse into one; none means a fresh session.
	switch evicted {
	case 0:
		observability.SessionRegistered()
	case 2:
		observability.SessionUnregistered()
	}

	s := &session{SID: sid, User: user, Presence: presence, Conn: conn}
	r.bySID[sid] = s
	r.byUser[user.ID] = s
	log.Info().Str("module", "app.presence").Str("sid", string(sid)).Str("user", string(user.ID)).Msg("registered session")
}

// Unregister removes the session record entirely (disconnect policy).
// It returns the user that was bound to the connection, if any.
func (r *PresenceRegistry) Unregister(sid core.SessionID) (*domain.User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.bySID[sid]
	if !ok {
		return nil, false
	}
	delete(r.bySID, sid)
	delete(r.byUser, s.User.ID)
	observability.SessionUnregistered()
	log.Info().Str("module", "app.presence").Str("sid", string(sid)).Str("user", string(s.User.ID)).Msg("unregistered session")
	return s.User, true
}

// Leave marks the user Offline but keeps the record (explicit leave policy,
// as opposed to a dropped connection).
func (r *PresenceRegistry) Leave(uid domain.UserID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.byUser[uid]
	if !ok {
		log.Warn().Str("module", "app.presence").Str("user", string(uid)).Msg("leave for unknown user")
		return false
	}
	s.Presence = domain.Offline
	log.Info().Str("module", "app.presence").Str("user", string(uid)).Msg("user left")
	return true
}

// SetPresence transitions a user's presence. Unknown users are logged and
// ignored, never fatal.
func (r *PresenceRegistry) SetPresence(uid domain.UserID, p domain.Presence) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.byUser[uid]
	if !ok {
		log.Warn().Str("module", "app.presence").Str("user", string(uid)).Str("presence", string(p)).Msg("set presence for unknown user")
		return
	}
	s.Presence = p
}

func (r *PresenceRegistry) Exists(uid domain.UserID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byUser[uid]
	return ok
}

func (r *PresenceRegistry) IsBusy(uid domain.UserID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byUser[uid]
	return ok && s.Presence == domain.InCall
}

// UserBySID resolves the user bound to a connection.
func (r *PresenceRegistry) UserBySID(sid core.SessionID) (*domain.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.bySID[sid]; ok {
		return s.User, true
	}
	return nil, false
}

// ConnOf resolves the transport endpoint of a user for unicast delivery.
func (r *PresenceRegistry) ConnOf(uid domain.UserID) (core.SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.byUser[uid]; ok && s.Conn != nil {
		return s.Conn, true
	}
	return nil, false
}

// Conns returns every registered transport endpoint for broadcast.
func (r *PresenceRegistry) Conns() []core.SignalConnection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.SignalConnection, 0, len(r.bySID))
	for _, s := range r.bySID {
		if s.Conn != nil {
			out = append(out, s.Conn)
		}
	}
	return out
}

// Snapshot returns the roster of all known sessions, ordered by username
// for stable broadcasts.
func (r *PresenceRegistry) Snapshot() []core.RosterEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]core.RosterEntry, 0, len(r.byUser))
	for _, s := range r.byUser {
		out = append(out, core.RosterEntry{
			ID:        s.User.ID,
			Username:  s.User.Username,
			FirstName: s.User.FirstName,
			LastName:  s.User.LastName,
			Presence:  s.Presence,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Username != out[j].Username {
			return out[i].Username < out[j].Username
		}
		return out[i].ID < out[j].ID
	})
	return out
}
