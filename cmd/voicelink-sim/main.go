// ABOUTME: Entry point for the backend simulator
// ABOUTME: Runs a scripted WebSocket backend for local client testing
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/voicelink/voicelink-go/internal/sim"
)

var (
	addr  = flag.String("addr", ":8000", "Listen address")
	reply = flag.String("reply", "This is a simulated reply.", "Scripted reply text")
)

func main() {
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	config := sim.DefaultConfig()
	config.Addr = *addr
	config.ReplyText = *reply

	server := sim.New(config, log)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info().Msg("shutting down")
		server.Stop()
	}()

	if err := server.Start(); err != nil {
		log.Fatal().Err(err).Msg("simulator failed")
	}
}
