package app

import (
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Babel/internal/core"
	"github.com/dkeye/Babel/internal/domain"
)

// UserDirectory resolves user ids created by the account API. The relay
// only reads from it.
type UserDirectory interface {
	Lookup(id domain.UserID) (*domain.User, bool)
}

// Orchestrator ties the presence registry, the call machine and the speech
// relay together and funnels connection lifecycle events through them.
type Orchestrator struct {
	Presence *PresenceRegistry
	Calls    *CallMachine
	Relay    *SpeechRelay
	Users    UserDirectory
	Emitter  core.Emitter
}

// Join binds a connection to a user identity and announces the roster.
// Unknown ids still get a session with a guest identity so a client that
// skipped account creation can be addressed.
func (o *Orchestrator) Join(sid core.SessionID, uid domain.UserID, conn core.SignalConnection) {
	user, ok := o.Users.Lookup(uid)
	if !ok {
		user = &domain.User{ID: uid, Username: "guest"}
		log.Warn().Str("module", "app.orchestrator").Str("user", string(uid)).Msg("join for unknown user id, registering as guest")
	}
	o.Presence.Register(sid, user, conn)
	o.broadcastRoster()
}

// Leave marks the user Offline, tearing down any call first. The session
// record survives for a later rejoin.
func (o *Orchestrator) Leave(uid domain.UserID) {
	if peer, ok := o.Calls.Disconnect(uid); ok {
		o.Relay.Release(uid)
		o.Relay.Release(peer)
	}
	if o.Presence.Leave(uid) {
		o.broadcastRoster()
	}
}

// OnDisconnect handles a dropped connection: same cleanup as endCall for
// any active call, then the session record is removed entirely.
func (o *Orchestrator) OnDisconnect(sid core.SessionID) {
	user, ok := o.Presence.UserBySID(sid)
	if !ok {
		return
	}
	if peer, inCall := o.Calls.Disconnect(user.ID); inCall {
		o.Relay.Release(user.ID)
		o.Relay.Release(peer)
	}
	if _, removed := o.Presence.Unregister(sid); removed {
		o.broadcastRoster()
	}
}

// EndCall applies the explicit endCall transition and releases both
// parties' recognizer streams.
func (o *Orchestrator) EndCall(from, to domain.UserID) error {
	if err := o.Calls.End(from, to); err != nil {
		return err
	}
	o.Relay.Release(from)
	o.Relay.Release(to)
	return nil
}

func (o *Orchestrator) broadcastRoster() {
	o.Emitter.Emit(core.Notice{Payload: core.UserListEvent{
		Type:  core.EvUserList,
		Users: o.Presence.Snapshot(),
	}})
}
