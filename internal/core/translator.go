package core

import (
	"context"

	"github.com/dkeye/Babel/internal/domain"
)

// Translator converts finalized utterances between languages. Treated as
// an unreliable remote dependency: it may fail or be slow, and failures
// must never take the relay down.
type Translator interface {
	Translate(ctx context.Context, text string, source, target domain.Lang) (string, error)
}
