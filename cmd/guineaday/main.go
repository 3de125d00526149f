// Command guineaday serves the play surface over HTTP and shows a tray menu.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ayusman/guineaday/internal/app"
	"github.com/ayusman/guineaday/internal/config"
	"github.com/ayusman/guineaday/internal/engine"
	"github.com/ayusman/guineaday/internal/input"
	"github.com/ayusman/guineaday/internal/logging"
	"github.com/ayusman/guineaday/internal/server"
	"github.com/ayusman/guineaday/internal/store"
	"github.com/ayusman/guineaday/internal/tray"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	noTray := flag.Bool("no-tray", false, "run without the system tray")
	flag.Parse()

	if err := run(*configPath, !*noTray); err != nil {
		fmt.Fprintf(os.Stderr, "guineaday: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, withTray bool) error {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	log, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer log.Sync()

	dataDir, err := dataDir()
	if err != nil {
		return err
	}
	dbPath := cfg.Store.Path
	if !filepath.IsAbs(dbPath) {
		dbPath = filepath.Join(dataDir, dbPath)
	}
	st, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer st.Close()
	log.Info("store opened", zap.String("path", st.Path()))

	a, err := app.New(cfg, st, log)
	if err != nil {
		return err
	}
	defer a.Close()

	webDir := findWebDir(cfg.Server.StaticDir)
	if webDir != "" {
		log.Info("serving static files", zap.String("dir", webDir))
	}
	srv := server.New(server.Config{
		StaticDir:  webDir,
		Store:      st,
		Controller: a,
		Logger:     log.Named("server"),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var t *tray.Tray
	if withTray {
		t = newTray(ctx, a, cfg.Server.Addr, log, stop)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Serve(gctx, cfg.Server.Addr)
	})
	g.Go(func() error {
		return a.Run(gctx)
	})

	if t == nil {
		return ignoreCanceled(g.Wait())
	}

	// The tray owns the main thread until the group ends or Quit is clicked.
	done := make(chan error, 1)
	go func() {
		done <- g.Wait()
		t.Quit()
	}()
	t.Run()
	stop()
	return ignoreCanceled(<-done)
}

func newTray(ctx context.Context, a *app.App, addr string, log *zap.Logger, quit func()) *tray.Tray {
	t := tray.New(a.Engine().Mode() == input.ModeGesture)
	t.OnGesture(func(enabled bool) {
		m := input.ModePointer
		if enabled {
			m = input.ModeGesture
		}
		if err := a.SetMode(m); err != nil {
			log.Warn("failed to switch input mode", zap.Error(err))
		}
	})
	t.OnRestart(func() {
		id := a.Engine().Restart()
		log.Info("session restarted", zap.String("session", id))
	})
	t.OnOpen(func() {
		if err := openBrowser("http://" + addr); err != nil {
			log.Warn("failed to open browser", zap.Error(err))
		}
	})
	t.OnQuit(quit)

	a.Engine().OnCompletion(func(n engine.Notice) {
		t.SetLast(n.Completion.Body, n.Completion.Zone)
	})

	// Keep the toggle in step with fallbacks and API mode changes.
	snaps, unsubscribe := a.Engine().Subscribe()
	go func() {
		defer unsubscribe()
		for {
			select {
			case <-ctx.Done():
				return
			case s, ok := <-snaps:
				if !ok {
					return
				}
				if gesture := s.Mode == input.ModeGesture; gesture != t.Gesture() {
					t.SetGesture(gesture)
				}
			}
		}
	}()
	return t
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func dataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	dir := filepath.Join(home, ".guineaday")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}
	return dir, nil
}

// findWebDir returns the first existing directory among preferred, "web",
// "../web", "../../web" and ~/.guineaday/web, or "" if none exists.
func findWebDir(preferred string) string {
	candidates := []string{"web", "../web", "../../web"}
	if preferred != "" {
		candidates = append([]string{preferred}, candidates...)
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".guineaday", "web"))
	}

	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
