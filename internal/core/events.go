package core

import "github.com/dkeye/Babel/internal/domain"

// Outbound event names. Inbound names mirror these; the signal adapter
// validates payloads against fixed schemas before dispatch.
const (
	EvRequestCall       = "requestCall"
	EvCancelRequestCall = "cancelRequestCall"
	EvCancelOfferCall   = "cancelOfferCall"
	EvAcceptOfferCall   = "acceptOfferCall"
	EvEndCall           = "endCall"
	EvCallTimeout       = "callTimeout"
	EvUserList          = "update-user-list"
	EvUserExist         = "checkExistCallingUser"
	EvUserBusy          = "checkUserBusy"
	EvAudioTransfer     = "audioTransfer"
	EvError             = "error"
	EvPong              = "pong"
)

// RosterEntry is a read-only roster view of one session (no transport fields).
type RosterEntry struct {
	ID        domain.UserID   `json:"id"`
	Username  string          `json:"username"`
	FirstName string          `json:"first_name,omitempty"`
	LastName  string          `json:"last_name,omitempty"`
	Presence  domain.Presence `json:"presence"`
}

type UserListEvent struct {
	Type  string        `json:"type"`
	Users []RosterEntry `json:"users"`
}

type CallRequestEvent struct {
	Type string        `json:"type"`
	From domain.UserID `json:"from"`
}

type CallCancelEvent struct {
	Type string        `json:"type"`
	From domain.UserID `json:"from,omitempty"`
}

type CallAcceptEvent struct {
	Type string        `json:"type"`
	From domain.UserID `json:"from"`
	To   domain.UserID `json:"to"`
}

type CallEndEvent struct {
	Type string        `json:"type"`
	From domain.UserID `json:"from"`
	To   domain.UserID `json:"to"`
}

type CallTimeoutEvent struct {
	Type string        `json:"type"`
	From domain.UserID `json:"from"`
	To   domain.UserID `json:"to"`
}

type UserExistEvent struct {
	Type        string        `json:"type"`
	UserExist   bool          `json:"user_exist"`
	CallingUser domain.UserID `json:"calling_user"`
}

type UserBusyEvent struct {
	Type        string        `json:"type"`
	UserBusy    bool          `json:"user_busy"`
	CallingUser domain.UserID `json:"calling_user"`
}

// TranscriptEvent carries one translated utterance to the call peer.
type TranscriptEvent struct {
	Type string        `json:"type"`
	Text string        `json:"text"`
	From domain.UserID `json:"from"`
	To   domain.UserID `json:"to"`
}

type ErrorEvent struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}
