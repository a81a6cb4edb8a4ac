package signal

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/dkeye/Babel/internal/app"
	"github.com/dkeye/Babel/internal/core"
	"github.com/dkeye/Babel/internal/domain"
)

type captureConn struct {
	frames []core.Frame
	fail   bool
}

func (c *captureConn) TrySend(f core.Frame) error {
	if c.fail {
		return errors.New("send buffer full")
	}
	c.frames = append(c.frames, f)
	return nil
}

func (c *captureConn) Close() {}

func registerUser(t *testing.T, presence *app.PresenceRegistry, sid, username string) (*domain.User, *captureConn) {
	t.Helper()
	user, err := domain.NewUser(username, "", "")
	if err != nil {
		t.Fatal(err)
	}
	conn := &captureConn{}
	presence.Register(core.SessionID(sid), user, conn)
	return user, conn
}

func TestHubUnicast(t *testing.T) {
	presence := app.NewPresenceRegistry()
	hub := NewHub(presence)
	alice, aliceConn := registerUser(t, presence, "s1", "alice")
	_, bobConn := registerUser(t, presence, "s2", "bob")

	hub.Emit(core.Notice{To: alice.ID, Payload: core.ErrorEvent{Type: core.EvError, Error: "oops"}})

	if len(aliceConn.frames) != 1 {
		t.Fatalf("alice frames = %d, want 1", len(aliceConn.frames))
	}
	if len(bobConn.frames) != 0 {
		t.Error("unicast must not reach other users")
	}

	var ev core.ErrorEvent
	if err := json.Unmarshal(aliceConn.frames[0], &ev); err != nil {
		t.Fatalf("frame is not valid JSON: %v", err)
	}
	if ev.Type != core.EvError || ev.Error != "oops" {
		t.Errorf("decoded event = %+v", ev)
	}
}

func TestHubBroadcast(t *testing.T) {
	presence := app.NewPresenceRegistry()
	hub := NewHub(presence)
	_, aliceConn := registerUser(t, presence, "s1", "alice")
	_, bobConn := registerUser(t, presence, "s2", "bob")

	hub.Emit(core.Notice{Payload: core.UserListEvent{Type: core.EvUserList}})

	if len(aliceConn.frames) != 1 || len(bobConn.frames) != 1 {
		t.Errorf("frames = %d/%d, want 1 each", len(aliceConn.frames), len(bobConn.frames))
	}
}

func TestHubUnknownRecipient(t *testing.T) {
	presence := app.NewPresenceRegistry()
	hub := NewHub(presence)
	_, aliceConn := registerUser(t, presence, "s1", "alice")

	hub.Emit(core.Notice{To: "nobody", Payload: core.ErrorEvent{Type: core.EvError}})

	if len(aliceConn.frames) != 0 {
		t.Error("notice for an unknown user must be dropped, not misrouted")
	}
}

func TestHubBackpressureDrop(t *testing.T) {
	presence := app.NewPresenceRegistry()
	hub := NewHub(presence)
	slow, err := domain.NewUser("slow", "", "")
	if err != nil {
		t.Fatal(err)
	}
	slowConn := &captureConn{fail: true}
	presence.Register("s1", slow, slowConn)
	_, fastConn := registerUser(t, presence, "s2", "fast")

	// A slow consumer must not keep the broadcast from the rest.
	hub.Emit(core.Notice{Payload: core.UserListEvent{Type: core.EvUserList}})

	if len(fastConn.frames) != 1 {
		t.Errorf("fast conn frames = %d, want 1", len(fastConn.frames))
	}
}
