package app

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Babel/internal/core"
	"github.com/dkeye/Babel/internal/domain"
	"github.com/dkeye/Babel/internal/observability"
)

type activeCall struct {
	call  domain.Call
	timer *time.Timer
}

// CallMachine owns every call relationship and validates all signaling
// transitions. Both parties of a call index the same record, which is what
// enforces "at most one call per user". Every transition is a
// read-validate-mutate critical section with no I/O inside; notices are
// emitted after the mutation commits.
type CallMachine struct {
	mu          sync.Mutex
	calls       map[domain.UserID]*activeCall
	presence    *PresenceRegistry
	emitter     core.Emitter
	ringTimeout time.Duration
}

// NewCallMachine creates the machine. ringTimeout <= 0 disables the
// automatic cancellation of calls stuck in Requested.
func NewCallMachine(presence *PresenceRegistry, emitter core.Emitter, ringTimeout time.Duration) *CallMachine {
	return &CallMachine{
		calls:       make(map[domain.UserID]*activeCall),
		presence:    presence,
		emitter:     emitter,
		ringTimeout: ringTimeout,
	}
}

// Request starts a call from -> to. The callee gets an incoming-call
// notice and both parties turn InCall.
func (m *CallMachine) Request(from, to domain.UserID) error {
	m.mu.Lock()
	if !m.presence.Exists(to) {
		m.mu.Unlock()
		return ErrUnknownUser
	}
	if from == to {
		m.mu.Unlock()
		return ErrInvalidTransition
	}
	if _, busy := m.calls[from]; busy {
		m.mu.Unlock()
		return ErrUserBusy
	}
	if _, busy := m.calls[to]; busy {
		m.mu.Unlock()
		return ErrUserBusy
	}

	ac := &activeCall{call: domain.Call{
		Caller:    from,
		Callee:    to,
		State:     domain.CallRequested,
		StartedAt: time.Now(),
	}}
	if m.ringTimeout > 0 {
		ac.timer = time.AfterFunc(m.ringTimeout, func() { m.expire(ac) })
	}
	m.calls[from] = ac
	m.calls[to] = ac
	m.presence.SetPresence(from, domain.InCall)
	m.presence.SetPresence(to, domain.InCall)
	m.mu.Unlock()

	observability.CallStarted()
	log.Info().Str("module", "app.calls").Str("from", string(from)).Str("to", string(to)).Msg("call requested")
	m.emitter.Emit(core.Notice{To: to, Payload: core.CallRequestEvent{Type: core.EvRequestCall, From: from}})
	m.emitRoster()
	return nil
}

// CancelRequest withdraws a pending call. Only the caller of a Requested
// call may do this; the callee is notified.
func (m *CallMachine) CancelRequest(from, to domain.UserID) error {
	m.mu.Lock()
	ac, ok := m.calls[from]
	if !ok || ac.call.State != domain.CallRequested || ac.call.Caller != from || ac.call.Callee != to {
		m.mu.Unlock()
		return ErrInvalidTransition
	}
	m.teardownLocked(ac, "cancelled")
	m.mu.Unlock()

	log.Info().Str("module", "app.calls").Str("from", string(from)).Str("to", string(to)).Msg("call request cancelled")
	m.emitter.Emit(core.Notice{To: to, Payload: core.CallCancelEvent{Type: core.EvCancelRequestCall, From: from}})
	m.emitRoster()
	return nil
}

// CancelOffer declines a pending call from the callee side. The original
// caller is notified.
func (m *CallMachine) CancelOffer(callee, caller domain.UserID) error {
	m.mu.Lock()
	ac, ok := m.calls[callee]
	if !ok || ac.call.State != domain.CallRequested || ac.call.Caller != caller || ac.call.Callee != callee {
		m.mu.Unlock()
		return ErrInvalidTransition
	}
	m.teardownLocked(ac, "rejected")
	m.mu.Unlock()

	log.Info().Str("module", "app.calls").Str("callee", string(callee)).Str("caller", string(caller)).Msg("call offer declined")
	m.emitter.Emit(core.Notice{To: caller, Payload: core.CallCancelEvent{Type: core.EvCancelOfferCall}})
	m.emitRoster()
	return nil
}

// Accept confirms a pending call. Both parties receive the confirmation;
// presence stays InCall.
func (m *CallMachine) Accept(callee, caller domain.UserID) error {
	m.mu.Lock()
	ac, ok := m.calls[callee]
	if !ok || ac.call.State != domain.CallRequested || ac.call.Caller != caller || ac.call.Callee != callee {
		m.mu.Unlock()
		return ErrInvalidTransition
	}
	ac.call.State = domain.CallAccepted
	if ac.timer != nil {
		ac.timer.Stop()
		ac.timer = nil
	}
	m.mu.Unlock()

	log.Info().Str("module", "app.calls").Str("callee", string(callee)).Str("caller", string(caller)).Msg("call accepted")
	ev := core.CallAcceptEvent{Type: core.EvAcceptOfferCall, From: caller, To: callee}
	m.emitter.Emit(core.Notice{To: caller, Payload: ev})
	m.emitter.Emit(core.Notice{To: callee, Payload: ev})
	return nil
}

// End tears a call down from either party, in any state. Ending an
// already-idle pair is a safe no-op, so duplicate endCall events from both
// sides never error.
func (m *CallMachine) End(from, to domain.UserID) error {
	m.mu.Lock()
	ac, ok := m.calls[from]
	if !ok {
		m.mu.Unlock()
		return nil
	}
	if !ac.call.HasParty(to) {
		m.mu.Unlock()
		return ErrInvalidTransition
	}
	m.teardownLocked(ac, "ended")
	m.mu.Unlock()

	log.Info().Str("module", "app.calls").Str("from", string(from)).Str("to", string(to)).Msg("call ended")
	ev := core.CallEndEvent{Type: core.EvEndCall, From: from, To: to}
	m.emitter.Emit(core.Notice{To: from, Payload: ev})
	m.emitter.Emit(core.Notice{To: to, Payload: ev})
	m.emitRoster()
	return nil
}

// Disconnect is the implicit teardown event: a dropped connection mid-call
// produces the same cleanup as endCall for the surviving party. It returns
// the peer so the caller can release per-user pipeline resources.
func (m *CallMachine) Disconnect(uid domain.UserID) (domain.UserID, bool) {
	m.mu.Lock()
	ac, ok := m.calls[uid]
	if !ok {
		m.mu.Unlock()
		return "", false
	}
	peer, _ := ac.call.Peer(uid)
	m.teardownLocked(ac, "disconnected")
	m.mu.Unlock()

	log.Info().Str("module", "app.calls").Str("user", string(uid)).Str("peer", string(peer)).Msg("party disconnected mid-call")
	m.emitter.Emit(core.Notice{To: peer, Payload: core.CallEndEvent{Type: core.EvEndCall, From: uid, To: peer}})
	m.emitRoster()
	return peer, true
}

// PartnerOf reports the counterpart of uid's active call, if any.
func (m *CallMachine) PartnerOf(uid domain.UserID) (domain.UserID, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ac, ok := m.calls[uid]; ok {
		return ac.call.Peer(uid)
	}
	return "", false
}

// CallOf returns a copy of uid's active call, if any.
func (m *CallMachine) CallOf(uid domain.UserID) (domain.Call, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ac, ok := m.calls[uid]; ok {
		return ac.call, true
	}
	return domain.Call{}, false
}

// expire fires when a call sat in Requested past the ring timeout. The
// record is re-checked under the lock: if the call was accepted or torn
// down in the meantime, the timer is a no-op.
func (m *CallMachine) expire(ac *activeCall) {
	m.mu.Lock()
	cur, ok := m.calls[ac.call.Caller]
	if !ok || cur != ac || cur.call.State != domain.CallRequested {
		m.mu.Unlock()
		return
	}
	caller, callee := ac.call.Caller, ac.call.Callee
	m.teardownLocked(ac, "timeout")
	m.mu.Unlock()

	log.Warn().Str("module", "app.calls").Str("caller", string(caller)).Str("callee", string(callee)).Msg("ring timeout, call auto-cancelled")
	ev := core.CallTimeoutEvent{Type: core.EvCallTimeout, From: caller, To: callee}
	m.emitter.Emit(core.Notice{To: caller, Payload: ev})
	m.emitter.Emit(core.Notice{To: callee, Payload: ev})
	m.emitRoster()
}

// teardownLocked removes the call exactly once and restores both parties'
// presence. Callers hold m.mu.
func (m *CallMachine) teardownLocked(ac *activeCall, outcome string) {
	if ac.timer != nil {
		ac.timer.Stop()
		ac.timer = nil
	}
	delete(m.calls, ac.call.Caller)
	delete(m.calls, ac.call.Callee)
	m.presence.SetPresence(ac.call.Caller, domain.Online)
	m.presence.SetPresence(ac.call.Callee, domain.Online)
	observability.CallEnded(outcome, ac.call.StartedAt)
}

func (m *CallMachine) emitRoster() {
	m.emitter.Emit(core.Notice{Payload: core.UserListEvent{Type: core.EvUserList, Users: m.presence.Snapshot()}})
}
