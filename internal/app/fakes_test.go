package app

import (
	"context"
	"errors"
	"sync"

	"github.com/dkeye/Babel/internal/core"
	"github.com/dkeye/Babel/internal/domain"
)

type fakeEmitter struct {
	mu      sync.Mutex
	notices []core.Notice
}

func (f *fakeEmitter) Emit(n core.Notice) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notices = append(f.notices, n)
}

func (f *fakeEmitter) all() []core.Notice {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]core.Notice, len(f.notices))
	copy(out, f.notices)
	return out
}

func (f *fakeEmitter) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notices = nil
}

// to returns the notices unicast to uid.
func (f *fakeEmitter) to(uid domain.UserID) []core.Notice {
	var out []core.Notice
	for _, n := range f.all() {
		if n.To == uid {
			out = append(out, n)
		}
	}
	return out
}

type fakeConn struct{}

func (fakeConn) TrySend(core.Frame) error { return nil }
func (fakeConn) Close()                   {}

// scriptedRecognizer replays a fixed sequence of AcceptChunk results.
type scriptedRecognizer struct {
	script []string // "" means endpoint not reached for that chunk
	pos    int
	closed bool
	failAt int // 1-based chunk index that errors; 0 disables
}

func (r *scriptedRecognizer) AcceptChunk(_ context.Context, _ []byte) (string, bool, error) {
	r.pos++
	if r.failAt > 0 && r.pos == r.failAt {
		return "", false, errors.New("decoder blew up")
	}
	if r.pos > len(r.script) {
		return "", false, nil
	}
	text := r.script[r.pos-1]
	return text, text != "", nil
}

func (r *scriptedRecognizer) Reset()       { r.pos = 0 }
func (r *scriptedRecognizer) Close() error { r.closed = true; return nil }

type fakeTranslator struct {
	mu    sync.Mutex
	fail  bool
	calls int
}

func (t *fakeTranslator) Translate(_ context.Context, text string, _, target domain.Lang) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls++
	if t.fail {
		return "", errors.New("quota exceeded")
	}
	return "[" + string(target) + "] " + text, nil
}
