package signal

import (
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Babel/internal/app"
	"github.com/dkeye/Babel/internal/core"
	"github.com/dkeye/Babel/internal/domain"
)

// sender resolves the user bound to this connection. Call events before
// joinRoom are rejected.
func (ctl *Controller) sender(sid core.SessionID, conn *WsSignalConn) (domain.UserID, bool) {
	user, ok := ctl.Orch.Presence.UserBySID(sid)
	if !ok {
		ctl.sendError(conn, "not_joined")
		return "", false
	}
	return user.ID, true
}

func (ctl *Controller) handleRequestCall(sid core.SessionID, conn *WsSignalConn, data []byte) {
	type payload struct {
		Type string        `json:"type"`
		To   domain.UserID `json:"to"`
	}
	var p payload
	if err := json.Unmarshal(data, &p); err != nil || p.To == "" {
		log.Error().Err(err).Str("module", "signal").Msg("bad requestCall payload")
		ctl.sendError(conn, "bad_payload")
		return
	}

	from, ok := ctl.sender(sid, conn)
	if !ok {
		return
	}
	if !ctl.limiter.Allow(from) {
		log.Warn().Str("module", "signal").Str("user", string(from)).Msg("requestCall rate limited")
		ctl.sendError(conn, "too_many_requests")
		return
	}

	switch err := ctl.Orch.Calls.Request(from, p.To); {
	case err == nil:
	case errors.Is(err, app.ErrUnknownUser):
		ctl.sendError(conn, "unknown_user")
	case errors.Is(err, app.ErrUserBusy):
		ctl.sendError(conn, "user_busy")
	default:
		log.Warn().Err(err).Str("module", "signal").Str("from", string(from)).Str("to", string(p.To)).Msg("requestCall dropped")
		ctl.sendError(conn, "invalid_transition")
	}
}

func (ctl *Controller) handleCancelRequest(sid core.SessionID, conn *WsSignalConn, data []byte) {
	type payload struct {
		Type string        `json:"type"`
		To   domain.UserID `json:"to"`
	}
	var p payload
	if err := json.Unmarshal(data, &p); err != nil || p.To == "" {
		log.Error().Err(err).Str("module", "signal").Msg("bad cancelRequestCall payload")
		ctl.sendError(conn, "bad_payload")
		return
	}

	from, ok := ctl.sender(sid, conn)
	if !ok {
		return
	}
	// Stale cancels are expected (the peer may have answered first);
	// they are logged and dropped, never surfaced to the client.
	if err := ctl.Orch.Calls.CancelRequest(from, p.To); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("from", string(from)).Str("to", string(p.To)).Msg("cancelRequestCall dropped")
	}
}

func (ctl *Controller) handleCancelOffer(sid core.SessionID, conn *WsSignalConn, data []byte) {
	type payload struct {
		Type string        `json:"type"`
		From domain.UserID `json:"from"`
	}
	var p payload
	if err := json.Unmarshal(data, &p); err != nil || p.From == "" {
		log.Error().Err(err).Str("module", "signal").Msg("bad cancelOfferCall payload")
		ctl.sendError(conn, "bad_payload")
		return
	}

	callee, ok := ctl.sender(sid, conn)
	if !ok {
		return
	}
	if err := ctl.Orch.Calls.CancelOffer(callee, p.From); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("callee", string(callee)).Str("caller", string(p.From)).Msg("cancelOfferCall dropped")
	}
}

func (ctl *Controller) handleAcceptOffer(sid core.SessionID, conn *WsSignalConn, data []byte) {
	type payload struct {
		Type string        `json:"type"`
		From domain.UserID `json:"from"`
	}
	var p payload
	if err := json.Unmarshal(data, &p); err != nil || p.From == "" {
		log.Error().Err(err).Str("module", "signal").Msg("bad acceptOfferCall payload")
		ctl.sendError(conn, "bad_payload")
		return
	}

	callee, ok := ctl.sender(sid, conn)
	if !ok {
		return
	}
	if err := ctl.Orch.Calls.Accept(callee, p.From); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("callee", string(callee)).Str("caller", string(p.From)).Msg("acceptOfferCall dropped")
	}
}

func (ctl *Controller) handleEndCall(sid core.SessionID, conn *WsSignalConn, data []byte) {
	type payload struct {
		Type string        `json:"type"`
		From domain.UserID `json:"from"`
		To   domain.UserID `json:"to"`
	}
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad endCall payload")
		ctl.sendError(conn, "bad_payload")
		return
	}

	uid, ok := ctl.sender(sid, conn)
	if !ok {
		return
	}
	// The sender is one party; the payload names the other.
	other := p.From
	if other == uid || other == "" {
		other = p.To
	}
	if other == "" || other == uid {
		ctl.sendError(conn, "bad_payload")
		return
	}
	if err := ctl.Orch.EndCall(uid, other); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("from", string(uid)).Str("to", string(other)).Msg("endCall dropped")
	}
}
