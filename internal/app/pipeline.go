package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Babel/internal/core"
	"github.com/dkeye/Babel/internal/domain"
	"github.com/dkeye/Babel/internal/observability"
)

type streamKey struct {
	uid  domain.UserID
	lang domain.Lang
}

// SpeechRelay pipes audio chunks through recognition and translation and
// unicasts the result to the call peer. It owns no call state; each
// utterance is ephemeral and scoped to one chunk's processing.
//
// Recognizers are pooled per (user, language): one user's endpoint
// buffering must never bleed into another's, so a flat per-language
// singleton is not acceptable here.
type SpeechRelay struct {
	mu         sync.Mutex
	streams    map[streamKey]core.Recognizer
	factory    core.RecognizerFactory
	translator core.Translator
	emitter    core.Emitter
}

func NewSpeechRelay(factory core.RecognizerFactory, translator core.Translator, emitter core.Emitter) *SpeechRelay {
	return &SpeechRelay{
		streams:    make(map[streamKey]core.Recognizer),
		factory:    factory,
		translator: translator,
		emitter:    emitter,
	}
}

// Process handles one inbound audio chunk from `from` addressed to `to`.
// No emission happens until the recognizer reports an utterance boundary;
// then the finalized transcript is translated and delivered to the peer
// only — the sender never receives their own translated text.
//
// All failures are contained: the sender may get an error notice, the peer
// never sees a partial payload, and later chunks are unaffected.
func (r *SpeechRelay) Process(ctx context.Context, from, to domain.UserID, chunk []byte, srcVoice, dstVoice string) error {
	src, err := domain.ParseVoice(srcVoice)
	if err != nil {
		r.emitError(from, "unsupported_language")
		return fmt.Errorf("source voice %q: %w", srcVoice, err)
	}
	dst, err := domain.ParseVoice(dstVoice)
	if err != nil {
		r.emitError(from, "unsupported_language")
		return fmt.Errorf("target voice %q: %w", dstVoice, err)
	}

	rec, err := r.recognizer(from, src)
	if err != nil {
		observability.RecognitionResult("setup_error")
		return fmt.Errorf("recognizer for %s/%s: %w", from, src, err)
	}

	transcript, final, err := rec.AcceptChunk(ctx, chunk)
	if err != nil {
		observability.RecognitionResult("error")
		return fmt.Errorf("recognition: %w", err)
	}
	if !final || transcript == "" {
		// Endpoint not reached yet; nothing to emit this round.
		return nil
	}
	observability.RecognitionResult("final")
	log.Info().Str("module", "app.relay").Str("from", string(from)).Str("to", string(to)).Str("transcript", transcript).Msg("utterance finalized")

	started := time.Now()
	translated, err := r.translator.Translate(ctx, transcript, src, dst)
	if err != nil {
		observability.TranslationResult("error", time.Since(started))
		r.emitError(from, "translation_failed")
		return fmt.Errorf("translation: %w", err)
	}
	observability.TranslationResult("ok", time.Since(started))

	r.emitter.Emit(core.Notice{To: to, Payload: core.TranscriptEvent{
		Type: core.EvAudioTransfer,
		Text: translated,
		From: from,
		To:   to,
	}})
	observability.TranscriptRelayed()
	return nil
}

// Release closes and evicts every recognizer stream owned by uid. Called
// on call end and on disconnect.
func (r *SpeechRelay) Release(uid domain.UserID) {
	r.mu.Lock()
	var victims []core.Recognizer
	for key, rec := range r.streams {
		if key.uid == uid {
			victims = append(victims, rec)
			delete(r.streams, key)
		}
	}
	r.mu.Unlock()

	for _, rec := range victims {
		if err := rec.Close(); err != nil {
			log.Warn().Err(err).Str("module", "app.relay").Str("user", string(uid)).Msg("recognizer close")
		}
	}
	if len(victims) > 0 {
		log.Info().Str("module", "app.relay").Str("user", string(uid)).Int("streams", len(victims)).Msg("released recognizer streams")
	}
}

// StreamCount reports the number of live recognizer streams.
func (r *SpeechRelay) StreamCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.streams)
}

func (r *SpeechRelay) recognizer(uid domain.UserID, lang domain.Lang) (core.Recognizer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := streamKey{uid: uid, lang: lang}
	if rec, ok := r.streams[key]; ok {
		return rec, nil
	}
	rec, err := r.factory(lang)
	if err != nil {
		return nil, err
	}
	r.streams[key] = rec
	log.Info().Str("module", "app.relay").Str("user", string(uid)).Str("lang", string(lang)).Msg("opened recognizer stream")
	return rec, nil
}

func (r *SpeechRelay) emitError(uid domain.UserID, code string) {
	r.emitter.Emit(core.Notice{To: uid, Payload: core.ErrorEvent{Type: core.EvError, Error: code}})
}
