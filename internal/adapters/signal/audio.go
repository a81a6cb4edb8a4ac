package signal

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Babel/internal/core"
	"github.com/dkeye/Babel/internal/domain"
)

// handleAudioTransfer feeds one audio chunk to the speech relay. The
// pipeline decides every emission (translated text to the peer, failure
// notices to the sender); here we only validate and dispatch. Processing
// runs inline on the read pump so chunks from one connection stay ordered.
func (ctl *Controller) handleAudioTransfer(ctx context.Context, sid core.SessionID, conn *WsSignalConn, data []byte) {
	type payload struct {
		Type           string        `json:"type"`
		To             domain.UserID `json:"to"`
		Audio          []byte        `json:"audio"`
		OriginalVoice  string        `json:"originalVoice"`
		TranslateVoice string        `json:"translateVoice"`
	}
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad audioTransfer payload")
		ctl.sendError(conn, "bad_payload")
		return
	}
	if p.To == "" || len(p.Audio) == 0 {
		ctl.sendError(conn, "bad_payload")
		return
	}

	from, ok := ctl.sender(sid, conn)
	if !ok {
		return
	}

	if err := ctl.Orch.Relay.Process(ctx, from, p.To, p.Audio, p.OriginalVoice, p.TranslateVoice); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("from", string(from)).Str("to", string(p.To)).Msg("audio chunk dropped")
	}
}
