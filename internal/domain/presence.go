package domain

// Presence is a user's availability state.
type Presence string

const (
	Offline Presence = "offline"
	Online  Presence = "online"
	InCall  Presence = "in_call"
)
