package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Babel/internal/app"
	"github.com/dkeye/Babel/internal/core"
	"github.com/dkeye/Babel/internal/domain"
)

// Hub delivers notices over the registered connections. It implements
// core.Emitter; the application layer decides recipients, the hub owns
// marshaling and fan-out.
type Hub struct {
	presence *app.PresenceRegistry
}

func NewHub(presence *app.PresenceRegistry) *Hub {
	return &Hub{presence: presence}
}

func (h *Hub) Emit(n core.Notice) {
	b, err := json.Marshal(n.Payload)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("notice marshal")
		return
	}

	if n.To == "" {
		for _, conn := range h.presence.Conns() {
			h.deliver(conn, b, "")
		}
		return
	}

	conn, ok := h.presence.ConnOf(n.To)
	if !ok {
		log.Warn().Str("module", "signal").Str("user", string(n.To)).Msg("notice for user without connection")
		return
	}
	h.deliver(conn, b, n.To)
}

func (h *Hub) deliver(conn core.SignalConnection, b []byte, to domain.UserID) {
	if err := conn.TrySend(b); err != nil {
		// Slow consumers lose frames instead of stalling the relay.
		log.Warn().Err(err).Str("module", "signal").Str("user", string(to)).Msg("notice dropped")
	}
}
