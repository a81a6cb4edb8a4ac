package core

import "github.com/dkeye/Babel/internal/domain"

// Frame is a marshaled signal payload.
type Frame []byte

// SessionID is the opaque transport connection handle. It is assigned by
// the HTTP layer and never persisted.
type SessionID string

// SignalConnection abstracts the system messaging transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// Notice is one routed outbound event. An empty To means broadcast to
// every registered session. Payload is one of the event structs in this
// package; it carries its own type discriminator.
type Notice struct {
	To      domain.UserID
	Payload any
}

// Emitter delivers notices over the transport. The application layer
// decides recipients; the adapter owns marshaling and sockets.
type Emitter interface {
	Emit(Notice)
}
