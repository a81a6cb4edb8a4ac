package domain

import "time"

type CallState string

const (
	CallRequested CallState = "requested"
	CallAccepted  CallState = "accepted"
)

// Call is the signaling relationship between two users from request
// through accept/end. Parties are referenced by UserID; the record never
// outlives the sessions behind them.
type Call struct {
	Caller    UserID
	Callee    UserID
	State     CallState
	StartedAt time.Time
}

func (c Call) HasParty(uid UserID) bool {
	return c.Caller == uid || c.Callee == uid
}

// Peer returns the other party of the call, if uid is one of them.
func (c Call) Peer(uid UserID) (UserID, bool) {
	switch uid {
	case c.Caller:
		return c.Callee, true
	case c.Callee:
		return c.Caller, true
	}
	return "", false
}
