package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Babel/internal/core"
	"github.com/dkeye/Babel/internal/domain"
)

func (ctl *Controller) handleJoin(sid core.SessionID, conn *WsSignalConn, data []byte) {
	type joinPayload struct {
		Type   string        `json:"type"`
		UserID domain.UserID `json:"user_id"`
	}
	var p joinPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad joinRoom payload")
		ctl.sendError(conn, "bad_payload")
		return
	}
	if p.UserID == "" {
		ctl.sendError(conn, "missing user_id")
		return
	}

	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("user", string(p.UserID)).Msg("joinRoom")
	ctl.Orch.Join(sid, p.UserID, conn)
}

// handleLeave marks the user Offline; the connection itself stays open.
// The actor is always the session's own user; a payload user_id naming
// anyone else is rejected, so no client can take another user offline.
func (ctl *Controller) handleLeave(sid core.SessionID, conn *WsSignalConn, data []byte) {
	type leavePayload struct {
		Type   string        `json:"type"`
		UserID domain.UserID `json:"user_id"`
	}
	var p leavePayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad userLeave payload")
		ctl.sendError(conn, "bad_payload")
		return
	}

	uid, ok := ctl.sender(sid, conn)
	if !ok {
		return
	}
	if p.UserID != "" && p.UserID != uid {
		log.Warn().Str("module", "signal").Str("user", string(uid)).Str("claimed", string(p.UserID)).Msg("userLeave for another user rejected")
		ctl.sendError(conn, "forbidden")
		return
	}

	log.Info().Str("module", "signal").Str("user", string(uid)).Msg("userLeave")
	ctl.Orch.Leave(uid)
}

// handleUserList replies to the requester only; roster pushes to everyone
// happen on state changes, not on queries.
func (ctl *Controller) handleUserList(conn *WsSignalConn) {
	ctl.sendJSON(conn, core.UserListEvent{
		Type:  core.EvUserList,
		Users: ctl.Orch.Presence.Snapshot(),
	})
}

func (ctl *Controller) handleCheckExist(conn *WsSignalConn, data []byte) {
	type checkPayload struct {
		Type string        `json:"type"`
		To   domain.UserID `json:"to"`
	}
	var p checkPayload
	if err := json.Unmarshal(data, &p); err != nil || p.To == "" {
		log.Error().Err(err).Str("module", "signal").Msg("bad checkExistCallingUser payload")
		ctl.sendError(conn, "bad_payload")
		return
	}

	ctl.sendJSON(conn, core.UserExistEvent{
		Type:        core.EvUserExist,
		UserExist:   ctl.Orch.Presence.Exists(p.To),
		CallingUser: p.To,
	})
}

func (ctl *Controller) handleCheckBusy(conn *WsSignalConn, data []byte) {
	type checkPayload struct {
		Type string        `json:"type"`
		To   domain.UserID `json:"to"`
	}
	var p checkPayload
	if err := json.Unmarshal(data, &p); err != nil || p.To == "" {
		log.Error().Err(err).Str("module", "signal").Msg("bad checkUserBusy payload")
		ctl.sendError(conn, "bad_payload")
		return
	}

	ctl.sendJSON(conn, core.UserBusyEvent{
		Type:        core.EvUserBusy,
		UserBusy:    ctl.Orch.Presence.IsBusy(p.To),
		CallingUser: p.To,
	})
}
