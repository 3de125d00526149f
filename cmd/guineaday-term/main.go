// Command guineaday-term plays in a terminal with the mouse as pointer.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ayusman/guineaday/internal/app"
	"github.com/ayusman/guineaday/internal/config"
	"github.com/ayusman/guineaday/internal/logging"
	"github.com/ayusman/guineaday/internal/store"
	"github.com/ayusman/guineaday/internal/term"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "guineaday-term: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	dataDir := filepath.Join(home, ".guineaday")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	// The screen owns the terminal, so stderr logs go to a file instead.
	if cfg.Logging.Output == "" || cfg.Logging.Output == "stderr" {
		cfg.Logging.Output = filepath.Join(dataDir, "term.log")
	}
	log, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer log.Sync()

	dbPath := cfg.Store.Path
	if !filepath.IsAbs(dbPath) {
		dbPath = filepath.Join(dataDir, dbPath)
	}
	st, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer st.Close()

	a, err := app.New(cfg, st, log)
	if err != nil {
		return err
	}
	defer a.Close()

	var chime term.Chime
	if cfg.Term.Chime {
		sp, err := term.NewSpeaker()
		if err != nil {
			log.Warn("audio unavailable", zap.Error(err))
		} else {
			defer sp.Close()
			chime = sp
		}
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	host := term.NewHost(screen, a, cfg.Term, chime, log.Named("term"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.Run(gctx)
	})
	g.Go(func() error {
		// Quitting the host ends the app loop too.
		defer stop()
		return host.Run(gctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
