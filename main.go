// ABOUTME: Entry point for the Voicelink voice assistant client
// ABOUTME: Parses CLI flags and runs the engine in TUI or headless mode
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/voicelink/voicelink-go/internal/app"
	"github.com/voicelink/voicelink-go/internal/config"
	"github.com/voicelink/voicelink-go/internal/logging"
	"github.com/voicelink/voicelink-go/internal/ui"
	"github.com/voicelink/voicelink-go/internal/version"
)

var (
	configPath = flag.String("config", "", "Config file path (YAML)")
	serverURL  = flag.String("server", "", "Backend WebSocket URL (overrides config)")
	logFile    = flag.String("log-file", "", "Log file path (overrides config)")
	noTUI      = flag.Bool("no-tui", false, "Disable TUI, use streaming logs instead")
	showVer    = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVer {
		fmt.Printf("%s %s\n", version.Product, version.Version)
		return
	}

	// Missing .env is fine; env vars may come from the shell.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	if *serverURL != "" {
		cfg.Backend.URL = *serverURL
	}
	if *logFile != "" {
		cfg.Logging.File = *logFile
	}

	// TUI mode owns the terminal, so logs always go to the file there.
	format := cfg.Logging.Format
	if !*noTUI {
		format = "json"
	}
	log, err := logging.New(cfg.Logging.Level, format, cfg.Logging.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging error: %v\n", err)
		os.Exit(1)
	}

	log.Info().
		Str("version", version.Version).
		Str("backend", cfg.Backend.URL).
		Msg("starting voicelink")

	engine := app.New(cfg, log)
	engine.ServeMetrics()
	defer engine.Shutdown()

	if *noTUI {
		runHeadless(engine, log)
		return
	}
	runTUI(engine, log)
}

// runHeadless logs the conversation and blocks until a signal arrives or
// the session ends on its own.
func runHeadless(engine *app.App, log zerolog.Logger) {
	sink := app.NewLogSink(log)
	if err := engine.StartSession(sink, sink); err != nil {
		log.Error().Err(err).Msg("session start failed")
		os.Exit(1)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		log.Info().Msg("shutdown signal received")
	case <-engine.SessionDone():
		log.Info().Msg("session ended")
	}

	engine.StopSession()
}

// runTUI drives the transcript view and stops the engine when the user
// quits.
func runTUI(engine *app.App, log zerolog.Logger) {
	prog := ui.Run()
	sink := ui.NewProgramSink(prog)

	go func() {
		if err := engine.StartSession(sink, sink); err != nil {
			log.Error().Err(err).Msg("session start failed")
		}
	}()

	if _, err := prog.Run(); err != nil {
		log.Error().Err(err).Msg("tui failed")
	}

	engine.StopSession()
	log.Info().Msg("voicelink stopped")
}
