package core

import (
	"context"

	"github.com/dkeye/Babel/internal/domain"
)

// Recognizer wraps one streaming speech-to-text session. It is stateful:
// AcceptChunk buffers audio internally and yields final=true with the
// utterance text only once an endpoint (silence) is detected, so callers
// must not assume a 1:1 chunk-to-transcript ratio.
//
// A Recognizer instance belongs to exactly one (user, language) stream
// and is never shared between users.
type Recognizer interface {
	AcceptChunk(ctx context.Context, audio []byte) (transcript string, final bool, err error)
	Reset()
	Close() error
}

// RecognizerFactory provisions a ready Recognizer for a source language.
// Model/connection setup happens here, not in the pipeline.
type RecognizerFactory func(lang domain.Lang) (Recognizer, error)
