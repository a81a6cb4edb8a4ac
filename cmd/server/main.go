package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/dkeye/Babel/internal/adapters/http"
	signalws "github.com/dkeye/Babel/internal/adapters/signal"
	"github.com/dkeye/Babel/internal/adapters/stt"
	"github.com/dkeye/Babel/internal/adapters/translate"
	"github.com/dkeye/Babel/internal/app"
	"github.com/dkeye/Babel/internal/config"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("failed to load config")
	}

	users := router.NewUserStore()
	presence := app.NewPresenceRegistry()
	hub := signalws.NewHub(presence)

	orch := &app.Orchestrator{
		Presence: presence,
		Calls:    app.NewCallMachine(presence, hub, cfg.RingTimeout),
		Relay:    app.NewSpeechRelay(stt.NewFactory(cfg), translate.NewClient(cfg), hub),
		Users:    users,
		Emitter:  hub,
	}

	r := router.SetupRouter(ctx, cfg, orch, users)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Babel server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
