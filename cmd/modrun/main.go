package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/blockpeak/mod-sandbox/bridge"
	"github.com/blockpeak/mod-sandbox/engine"
	"github.com/blockpeak/mod-sandbox/feed"
	"github.com/blockpeak/mod-sandbox/gateway"
	"github.com/blockpeak/mod-sandbox/sandbox"
)

func main() {
	var (
		modsDir     = flag.String("mods", "", "Mods directory (each subdirectory holds manifest.yaml and mod.wasm)")
		worldFile   = flag.String("world", "", "World definition YAML (optional)")
		tickRate    = flag.Int("tick", 60, "Host ticks per second")
		duration    = flag.Duration("duration", 0, "Stop after this long (0 runs until interrupted)")
		callBudget  = flag.Duration("budget", 0, "Per-call guest time budget (0 uses the engine default)")
		feedURL     = flag.String("feed", "", "Server mod channel websocket URL (optional)")
		verbose     = flag.Bool("v", false, "Debug logging")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *modsDir == "" {
		fmt.Fprintln(os.Stderr, "Usage: modrun -mods <dir> [-world file.yaml] [-tick n] [-duration d] [-feed ws://...]")
		fmt.Fprintln(os.Stderr, "       modrun -mods <dir> -i  (interactive mode)")
		os.Exit(1)
	}

	if *interactive {
		if err := runInteractive(*modsDir, *worldFile, *tickRate, *callBudget); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*modsDir, *worldFile, *tickRate, *duration, *callBudget, *feedURL, *verbose); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func setLoggers(log *zap.Logger) {
	engine.SetLogger(log.Named("engine"))
	bridge.SetLogger(log.Named("bridge"))
	sandbox.SetLogger(log.Named("sandbox"))
	feed.SetLogger(log.Named("feed"))
}

func buildGateway(worldFile string) (*gateway.Gateway, error) {
	if worldFile == "" {
		return nil, nil
	}
	world, err := gateway.LoadStaticWorld(worldFile)
	if err != nil {
		return nil, fmt.Errorf("load world: %w", err)
	}
	return world.Gateway(), nil
}

// loadMods scans dir for subdirectories carrying a manifest.yaml and a
// mod.wasm and loads each into the sandbox. A mod that fails to load is
// reported and skipped; the rest keep running.
func loadMods(ctx context.Context, s *sandbox.Sandbox, dir string, log *zap.Logger) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read mods dir: %w", err)
	}

	loaded := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		modDir := filepath.Join(dir, entry.Name())

		manifest, err := sandbox.LoadManifest(filepath.Join(modDir, "manifest.yaml"))
		if err != nil {
			log.Warn("skipping mod", zap.String("dir", modDir), zap.Error(err))
			continue
		}
		wasm, err := os.ReadFile(filepath.Join(modDir, "mod.wasm"))
		if err != nil {
			log.Warn("skipping mod", zap.String("dir", modDir), zap.Error(err))
			continue
		}

		if _, err := s.Load(ctx, manifest, wasm); err != nil {
			log.Warn("mod failed to load",
				zap.String("mod", manifest.Name),
				zap.Error(err))
			continue
		}
		loaded++
	}
	return loaded, nil
}

func run(modsDir, worldFile string, tickRate int, duration, callBudget time.Duration, feedURL string, verbose bool) error {
	if tickRate <= 0 {
		return fmt.Errorf("tick rate must be positive, got %d", tickRate)
	}

	log, err := newLogger(verbose)
	if err != nil {
		return err
	}
	defer log.Sync()
	setLoggers(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, duration)
		defer cancel()
	}

	gw, err := buildGateway(worldFile)
	if err != nil {
		return err
	}

	s, err := sandbox.New(ctx, &sandbox.Config{
		Engine:  &engine.Config{CallTimeout: callBudget},
		Gateway: gw,
		OnFault: func(f sandbox.Fault) {
			log.Error("mod fault",
				zap.String("mod", f.Mod),
				zap.String("call", f.Call),
				zap.String("kind", string(f.Kind)),
				zap.Error(f.Err))
		},
	})
	if err != nil {
		return err
	}
	defer s.Close(context.Background())

	loaded, err := loadMods(ctx, s, modsDir, log)
	if err != nil {
		return err
	}
	if loaded == 0 {
		return fmt.Errorf("no mods loaded from %s", modsDir)
	}
	log.Info("mods loaded", zap.Int("count", loaded))

	if feedURL != "" {
		client, err := feed.Dial(ctx, feed.Config{URL: feedURL, Sink: s})
		if err != nil {
			return err
		}
		defer client.Close()
		go func() {
			if err := client.Run(ctx); err != nil && ctx.Err() == nil {
				log.Error("mod channel lost", zap.Error(err))
			}
		}()
	}

	ticker := time.NewTicker(time.Second / time.Duration(tickRate))
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			log.Info("shutting down")
			return nil
		case now := <-ticker.C:
			s.Tick(ctx, now.Sub(last))
			last = now
		}
	}
}
