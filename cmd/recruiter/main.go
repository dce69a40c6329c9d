package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/xonecas/pnw-recruiter/internal/config"
	"github.com/xonecas/pnw-recruiter/internal/constants"
	"github.com/xonecas/pnw-recruiter/internal/notify"
	"github.com/xonecas/pnw-recruiter/internal/pnw"
	"github.com/xonecas/pnw-recruiter/internal/recruit"
	"github.com/xonecas/pnw-recruiter/internal/status"
	"github.com/xonecas/pnw-recruiter/internal/store"
	"github.com/xonecas/pnw-recruiter/internal/tui"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	var (
		showVersion  = flag.Bool("version", false, "Show version and exit")
		settingsPath = flag.String("settings", constants.DefaultSettingsPath, "Path to settings file (.json, .toml or .yaml)")
		debug        = flag.Bool("debug", false, "Enable debug logging")
		edit         = flag.Bool("edit", false, "Open the interactive settings editor")
		once         = flag.Bool("once", false, "Run a single recruitment round, then exit")
		statusAddr   = flag.String("status", "", "Status API listen address, overrides status.listen")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("PnW Recruiter %s\n", Version)
		os.Exit(0)
	}

	if *edit {
		if err := initLogging(*debug, true); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
			os.Exit(1)
		}
		if err := tui.Run(*settingsPath); err != nil {
			fmt.Fprintf(os.Stderr, "Editor error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := initLogging(*debug, false); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
		os.Exit(1)
	}

	log.Info().Str("version", Version).Msg("Starting PnW Recruiter")

	settings, err := config.Load(*settingsPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *settingsPath).Msg("Failed to load settings")
	}
	if *statusAddr != "" {
		settings.Status.Listen = *statusAddr
	}
	log.Debug().
		Strs("target_alliance", settings.Info.TargetAlliance).
		Int("frequency", settings.Info.Frequency).
		Int("delay", settings.ReadOnly.Delay).
		Msg("Settings loaded")

	s, err := store.Open(settings.Sec.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", settings.Sec.DBPath).Msg("Failed to open contact ledger")
	}
	defer s.Close()

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	dbTime, err := s.Ping(pingCtx)
	cancelPing()
	if err != nil {
		log.Fatal().Err(err).Msg("Contact ledger is not responding")
	}
	log.Info().Str("db_time", dbTime).Str("path", settings.Sec.DBPath).Msg("Contact ledger ready")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bus := recruit.NewEventBus(constants.MinEventBusBufferSize)
	defer bus.Close()

	client := pnw.NewClient(settings)
	engine := recruit.NewEngine(settings, client, s, recruit.WithEventBus(bus))

	if settings.NotifyEnabled() {
		notifier, err := notify.NewDiscord(settings.Notify.DiscordToken, settings.Notify.DiscordChannel)
		if err != nil {
			log.Error().Err(err).Msg("Discord notifications disabled")
		} else {
			go notifier.Run(ctx, bus.Subscribe())
			log.Info().Str("channel", settings.Notify.DiscordChannel).Msg("Discord notifications enabled")
		}
	}

	if addr := settings.Status.Listen; addr != "" {
		go func() {
			log.Info().Str("addr", addr).Msg("Status API listening")
			if err := status.Serve(ctx, addr, status.New(s, engine)); err != nil {
				log.Error().Err(err).Str("addr", addr).Msg("Status API stopped")
			}
		}()
	}

	if *once {
		summary, err := engine.RunRound(ctx)
		if err != nil {
			log.Error().Err(err).Str("round", summary.ID).Msg("Recruitment round failed")
			s.Close()
			os.Exit(1)
		}
		return
	}

	if err := engine.Run(ctx); err != nil {
		log.Error().Err(err).Msg("Recruitment loop stopped")
	}
	log.Info().Msg("PnW Recruiter shutdown complete")
}

// initLogging configures the global logger. The bot logs to stderr; the editor
// logs to a file in the data directory because the TUI owns the terminal.
func initLogging(debug, editor bool) error {
	zerolog.TimeFieldFormat = time.RFC3339

	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	var out io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: constants.LedgerTimeFormat}
	if editor {
		dataDir, err := config.EnsureDataDir()
		if err != nil {
			return fmt.Errorf("ensure data dir: %w", err)
		}

		logPath := filepath.Join(dataDir, constants.EditorLogFile)
		logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		out = logFile
	}

	log.Logger = zerolog.New(out).With().Timestamp().Logger()
	return nil
}
