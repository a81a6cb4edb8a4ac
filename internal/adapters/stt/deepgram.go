// Package stt adapts Deepgram's streaming recognizer to the core
// Recognizer contract: feed chunks in, get a finalized utterance out once
// an endpoint is detected.
package stt

import (
	"context"
	"fmt"
	"strings"
	"sync"

	websocketv1api "github.com/deepgram/deepgram-go-sdk/v3/pkg/api/listen/v1/websocket"
	msginterfaces "github.com/deepgram/deepgram-go-sdk/v3/pkg/api/listen/v1/websocket/interfaces"
	interfaces "github.com/deepgram/deepgram-go-sdk/v3/pkg/client/interfaces"
	listenClient "github.com/deepgram/deepgram-go-sdk/v3/pkg/client/listen"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Babel/internal/audio"
	"github.com/dkeye/Babel/internal/config"
	"github.com/dkeye/Babel/internal/core"
	"github.com/dkeye/Babel/internal/domain"
)

// NewFactory returns a RecognizerFactory opening one Deepgram streaming
// session per (user, language) stream. The pipeline owns instance
// lifetime; this only knows how to provision one.
func NewFactory(cfg *config.Config) core.RecognizerFactory {
	return func(lang domain.Lang) (core.Recognizer, error) {
		return newRecognizer(cfg, lang)
	}
}

// callbackHandler embeds the SDK default handler and overrides only the
// message path. UtteranceEnd arrives as a message type, not a separate
// callback.
type callbackHandler struct {
	*websocketv1api.DefaultCallbackHandler
	onMessage func(*msginterfaces.MessageResponse)
}

func (h *callbackHandler) Message(msg *msginterfaces.MessageResponse) error {
	h.onMessage(msg)
	return nil
}

func (h *callbackHandler) Error(errResp *msginterfaces.ErrorResponse) error {
	log.Error().Str("module", "stt").Interface("response", errResp).Msg("deepgram error")
	return nil
}

type recognizer struct {
	client *listenClient.WSCallback
	lang   domain.Lang
	finals chan string
	vad    *audio.Detector

	mu      sync.Mutex
	pending strings.Builder

	cancel context.CancelFunc
}

func newRecognizer(cfg *config.Config, lang domain.Lang) (core.Recognizer, error) {
	ctx, cancel := context.WithCancel(context.Background())

	r := &recognizer{
		lang:   lang,
		finals: make(chan string, 8),
		vad: audio.NewDetector(audio.DetectorConfig{
			EnergyThreshold: cfg.VADEnergyThreshold,
			SilenceFrames:   cfg.VADSilenceFrames,
		}),
		cancel: cancel,
	}

	tOptions := &interfaces.LiveTranscriptionOptions{
		Model:          cfg.DeepgramModel,
		Language:       string(lang),
		Punctuate:      true,
		InterimResults: true, // required for utterance_end_ms
		UtteranceEndMs: "1000",
		VadEvents:      true,
		Encoding:       "linear16",
		Channels:       1,
		SampleRate:     cfg.SampleRate,
	}

	callback := &callbackHandler{
		DefaultCallbackHandler: websocketv1api.NewDefaultCallbackHandler(),
		onMessage:              r.handleMessage,
	}

	client, err := listenClient.NewWSUsingCallback(ctx, cfg.DeepgramAPIKey, nil, tOptions, callback)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("deepgram client for %s: %w", lang, err)
	}
	r.client = client

	log.Info().Str("module", "stt").Str("lang", string(lang)).Str("model", cfg.DeepgramModel).Msg("recognizer stream opened")
	return r, nil
}

// AcceptChunk forwards a chunk to the stream and reports a finalized
// utterance if one completed. Leading silence (no speech in progress and
// chunk below the energy threshold) is not forwarded; silence inside an
// utterance is, since the endpointing depends on it.
func (r *recognizer) AcceptChunk(ctx context.Context, chunk []byte) (string, bool, error) {
	voiced, ended := r.vad.Process(audio.Samples(chunk))
	if voiced || ended {
		if _, err := r.client.Write(chunk); err != nil {
			return "", false, fmt.Errorf("send audio: %w", err)
		}
	}

	select {
	case text := <-r.finals:
		return text, true, nil
	case <-ctx.Done():
		return "", false, ctx.Err()
	default:
		return "", false, nil
	}
}

func (r *recognizer) handleMessage(msg *msginterfaces.MessageResponse) {
	if msg == nil {
		return
	}
	switch msg.Type {
	case "Results", "Message":
		if len(msg.Channel.Alternatives) == 0 {
			return
		}
		text := msg.Channel.Alternatives[0].Transcript
		if !msg.IsFinal || text == "" {
			return
		}
		// Multiple segment finals can belong to one utterance; they are
		// stitched together until UtteranceEnd.
		r.mu.Lock()
		if r.pending.Len() > 0 {
			r.pending.WriteByte(' ')
		}
		r.pending.WriteString(text)
		r.mu.Unlock()

	case "UtteranceEnd":
		r.mu.Lock()
		text := r.pending.String()
		r.pending.Reset()
		r.mu.Unlock()
		if text == "" {
			return
		}
		select {
		case r.finals <- text:
		default:
			log.Warn().Str("module", "stt").Str("lang", string(r.lang)).Msg("finals channel full, dropping utterance")
		}
	}
}

func (r *recognizer) Reset() {
	r.mu.Lock()
	r.pending.Reset()
	r.mu.Unlock()
	for {
		select {
		case <-r.finals:
		default:
			r.vad.Reset()
			return
		}
	}
}

func (r *recognizer) Close() error {
	r.client.Finish()
	r.cancel()
	return nil
}
