package domain

import "testing"

func TestCallPeer(t *testing.T) {
	call := Call{Caller: "u1", Callee: "u2", State: CallRequested}

	if peer, ok := call.Peer("u1"); !ok || peer != "u2" {
		t.Errorf("Peer(u1) = %q, %v; want u2, true", peer, ok)
	}
	if peer, ok := call.Peer("u2"); !ok || peer != "u1" {
		t.Errorf("Peer(u2) = %q, %v; want u1, true", peer, ok)
	}
	if _, ok := call.Peer("stranger"); ok {
		t.Error("Peer(stranger) should not resolve")
	}

	if !call.HasParty("u1") || !call.HasParty("u2") {
		t.Error("both parties should be recognized")
	}
	if call.HasParty("stranger") {
		t.Error("stranger is not a party")
	}
}

func TestNewUserValidation(t *testing.T) {
	if _, err := NewUser("", "A", "B"); err != ErrUsernameEmpty {
		t.Errorf("empty username: got %v, want ErrUsernameEmpty", err)
	}

	long := make([]byte, MaxUsernameLen+1)
	for i := range long {
		long[i] = 'x'
	}
	if _, err := NewUser(string(long), "", ""); err != ErrUsernameTooLong {
		t.Errorf("long username: got %v, want ErrUsernameTooLong", err)
	}

	u, err := NewUser("alice", "Alice", "Smith")
	if err != nil {
		t.Fatalf("NewUser: %v", err)
	}
	if u.ID == "" {
		t.Error("expected generated id")
	}
	if got := u.DisplayName(); got != "Alice Smith" {
		t.Errorf("DisplayName = %q, want %q", got, "Alice Smith")
	}

	bare := &User{ID: "x", Username: "bob"}
	if got := bare.DisplayName(); got != "bob" {
		t.Errorf("DisplayName fallback = %q, want username", got)
	}
}
