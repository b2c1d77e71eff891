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

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/careenium/config"
	"github.com/milk9111/careenium/prefabs"
	"github.com/milk9111/careenium/sandbox"
	"github.com/milk9111/careenium/scene"
	"github.com/pkg/profile"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	cfgPath := flag.String("config", "", "path to a toml config file")
	sceneName := flag.String("scene", "", "scene script in prefabs/scenes (basename, .tengo optional)")
	headless := flag.Bool("headless", false, "run the simulation without a window")
	ticks := flag.Uint64("ticks", 0, "stop a headless run after this many ticks (0 = until interrupted)")
	profileMode := flag.String("profile", "", "write a cpu or mem profile to the working directory")
	debug := flag.Bool("debug", false, "draw the physics debug overlay")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := newLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	switch *profileMode {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	default:
		log.Fatal("unknown profile mode", zap.String("profile", *profileMode))
	}

	src := prefabs.Source{Dir: cfg.Prefabs.Dir}
	kinds, err := prefabs.LoadKinds(src)
	if err != nil {
		log.Fatal("load kinds", zap.Error(err))
	}
	world, err := sandbox.NewWorld(cfg, kinds, log)
	if err != nil {
		log.Fatal("create world", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *sceneName != "" {
		res, err := scene.Load(ctx, world, src, *sceneName, log)
		if err != nil {
			log.Fatal("load scene", zap.String("scene", *sceneName), zap.Error(err))
		}
		if res.Follow != 0 {
			world.Camera().Follow(res.Follow)
		}
	}

	var watcher *prefabs.Watcher
	if cfg.Prefabs.Watch && cfg.Prefabs.Dir != "" {
		dirs := []string{cfg.Prefabs.Dir}
		if info, err := os.Stat(filepath.Join(cfg.Prefabs.Dir, "scenes")); err == nil && info.IsDir() {
			dirs = append(dirs, filepath.Join(cfg.Prefabs.Dir, "scenes"))
		}
		watcher, err = prefabs.NewWatcher(dirs...)
		if err != nil {
			log.Warn("prefab watcher disabled", zap.Error(err))
			watcher = nil
		} else {
			defer watcher.Close()
		}
	}

	log.Info("careenium starting",
		zap.Bool("headless", *headless),
		zap.String("mode", world.Mode().String()),
		zap.Int("tick_rate", cfg.World.TickRate),
		zap.Int("entities", world.Registry().Len()))

	if *headless {
		if err := runHeadless(ctx, world, src, watcher, *ticks, log); err != nil {
			log.Fatal("simulation stopped", zap.Error(err))
		}
		return
	}

	ebiten.SetWindowSize(int(cfg.Viewport.Width), int(cfg.Viewport.Height))
	ebiten.SetWindowTitle("careenium")
	ebiten.SetTPS(cfg.World.TickRate)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	game := newGame(world, src, watcher, *debug, log)
	if err := ebiten.RunGame(game); err != nil {
		log.Fatal("game stopped", zap.Error(err))
	}
}

// runHeadless steps the world on a ticker and applies prefab reloads
// between ticks.
func runHeadless(ctx context.Context, w *sandbox.World, src prefabs.Source, watcher *prefabs.Watcher, ticks uint64, log *zap.Logger) error {
	runner := sandbox.NewRunner(w, 0)
	if watcher != nil {
		go func() {
			for change := range watcher.Changes {
				_ = runner.Do(func(w *sandbox.World) error {
					reload(w, src, change, log)
					return nil
				})
			}
		}()
	}

	start := time.Now()
	err := runner.Run(ctx, ticks)
	var stats sandbox.Stats
	_ = runner.Do(func(w *sandbox.World) error {
		stats = w.Stats()
		return nil
	})
	log.Info("simulation finished",
		zap.Uint64("ticks", stats.Tick),
		zap.Int("entities", stats.Entities),
		zap.Int("joints", stats.Joints),
		zap.Duration("elapsed", time.Since(start)))
	return err
}

// reload applies one prefab change. Kind specs apply to later creations;
// scene edits take effect on the next start.
func reload(w *sandbox.World, src prefabs.Source, change prefabs.Change, log *zap.Logger) {
	switch change.Kind {
	case prefabs.ChangeKinds:
		kinds, err := prefabs.LoadKinds(src)
		if err != nil {
			log.Warn("kind reload failed", zap.String("path", change.Path), zap.Error(err))
			return
		}
		w.SetKinds(kinds)
		log.Info("kinds reloaded", zap.String("path", change.Path), zap.Int("kinds", len(kinds.Kinds)))
	case prefabs.ChangeScene:
		log.Info("scene changed, restart to apply", zap.String("path", change.Path))
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
