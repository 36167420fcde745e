package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/1broseidon/viewwall/internal/bridge"
	"github.com/1broseidon/viewwall/internal/config"
	"github.com/1broseidon/viewwall/internal/content"
	"github.com/1broseidon/viewwall/internal/daemon"
	"github.com/1broseidon/viewwall/internal/events"
	"github.com/1broseidon/viewwall/internal/geom"
	"github.com/1broseidon/viewwall/internal/hotkeys"
	"github.com/1broseidon/viewwall/internal/ipc"
	"github.com/1broseidon/viewwall/internal/orchestrator"
	"github.com/1broseidon/viewwall/internal/panels"
	"github.com/1broseidon/viewwall/internal/platform"
	"github.com/1broseidon/viewwall/internal/telemetry"
)

func runDaemon() {
	// Load configuration
	res, err := config.LoadWithSources()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg := res.Config
	log.Printf("Configuration loaded (mode: %s, fps: %d)", cfg.Display.Mode, cfg.Display.FPS)

	logger := telemetry.SetupLogger(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to display server. The wall still runs headless without one;
	// only hotkeys and display detection need X11.
	if cfg.Display.XAuthority != "" {
		os.Setenv("XAUTHORITY", cfg.Display.XAuthority)
	}
	var backend *platform.LinuxBackend
	if b, err := platform.NewLinuxBackendFromDisplay(cfg.Display.X11Display); err != nil {
		logger.Warn("no X11 display, running headless", "error", err)
	} else {
		backend = b
		defer backend.Disconnect()
	}

	bus := events.NewBus()
	metrics := telemetry.NewMetrics()
	idle := daemon.NewIdleTracker(0, nil)

	ctrl := orchestrator.New(orchestrator.Options{
		Settings: daemon.Settings(cfg),
		Registry: panels.NewRegistry(),
		Bus:      bus,
		Resolver: content.FileResolver{Root: catalogRoot(cfg)},
		Logger:   logger.With("component", "orchestrator"),
		Idle:     idle.Idle,
		Exit:     cancel,
	})
	ctrl.Listen(bus)
	metrics.Observe(bus)

	loop := daemon.NewLoop(ctrl, bus, daemon.LoopConfig{
		Interval: cfg.TickInterval(),
		Idle:     idle,
		Metrics:  metrics,
		Logger:   logger.With("component", "loop"),
	})
	go func() {
		if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("loop stopped", "error", err)
		}
	}()

	var detect daemon.DisplayDetector
	if backend != nil {
		detect = func() (geom.Size, error) {
			w, h, err := backend.WallSize()
			if err != nil {
				return geom.Size{}, err
			}
			return geom.Size{Width: float64(w), Height: float64(h)}, nil
		}
	}
	synchronizer := daemon.NewStateSynchronizer(loop, detect, logger.With("component", "sync"))
	if err := synchronizer.Apply(ctx, cfg); err != nil {
		logger.Warn("initial config apply incomplete", "error", err)
	}

	// Create config reload channel
	reloadChan := make(chan struct{}, 1)

	// Start IPC server
	var ipcBackend platform.Backend
	if backend != nil {
		ipcBackend = backend
	}
	ipcServer, err := ipc.NewServer(cfg, loop, ipcBackend, reloadChan)
	if err != nil {
		log.Fatalf("Failed to create IPC server: %v", err)
	}
	ipcServer.SetMetrics(metrics)
	ipcServer.SetConfigLoader(config.Load)
	if err := ipcServer.Start(); err != nil {
		log.Fatalf("Failed to start IPC server: %v", err)
	}
	defer ipcServer.Stop()

	// Setup hotkey handler
	if backend != nil {
		handler, err := hotkeys.NewHandler(backend, loop.Post)
		if err != nil {
			logger.Warn("hotkeys disabled", "error", err)
		} else {
			n := handler.RegisterAll(hotkeys.Bindings(cfg.Hotkeys))
			logger.Info("hotkeys registered", "count", n)
			if err := handler.RegisterSelf("palette", cfg.Hotkeys.Palette, "palette"); err != nil {
				logger.Warn("palette hotkey not registered", "keys", cfg.Hotkeys.Palette, "error", err)
			}
		}
	}

	reconciler := daemon.NewReconciler(daemon.ReconcilerConfig{
		Logger: logger.With("component", "reconciler"),
	}, loop)
	go reconciler.Run(ctx)

	if cfg.Bridge.AMQP.URL != "" {
		go func() {
			if err := bridge.Run(ctx, cfg.Bridge.AMQP, ipcServer, logger); err != nil {
				logger.Error("amqp bridge stopped", "error", err)
			}
		}()
	}

	if cfg.Metrics.Listen != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.Metrics.Listen, logger.With("component", "metrics")); err != nil {
				logger.Error("metrics server stopped", "error", err)
			}
		}()
	}

	reload := func(newCfg *config.Config) {
		ipcServer.UpdateConfig(newCfg)
		if err := synchronizer.Apply(ctx, newCfg); err != nil {
			logger.Warn("config reload incomplete", "error", err)
			return
		}
		logger.Info("config reloaded")
	}

	if cfg.Watch {
		files := append([]string{}, res.Files...)
		if cfg.Content.Catalog != "" {
			files = append(files, cfg.Content.Catalog)
		}
		err := config.Watch(ctx, files, logger.With("component", "watch"), func() {
			newCfg, err := config.Load()
			if err != nil {
				logger.Warn("config reload failed", "error", err)
				return
			}
			reload(newCfg)
		})
		if err != nil {
			logger.Warn("config watch disabled", "error", err)
		}
	}

	// Setup signal handlers
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	// Handle signals and config reloads
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case sig := <-sigCh:
				switch sig {
				case syscall.SIGHUP:
					log.Println("Received SIGHUP, reloading config...")
					newCfg, err := config.Load()
					if err != nil {
						log.Printf("Config reload failed: %v", err)
						continue
					}
					reload(newCfg)

				case os.Interrupt, syscall.SIGTERM:
					log.Println("Shutting down viewwall daemon...")
					cancel()
					return
				}

			case <-reloadChan:
				// Config was reloaded via IPC
				reload(ipcServer.GetConfig())
			}
		}
	}()

	log.Println("viewwall daemon started successfully")

	if backend != nil {
		go func() {
			<-ctx.Done()
			backend.StopEventLoop()
		}()
		log.Println("Entering event loop...")
		backend.EventLoop()
	}
	<-ctx.Done()
	<-loop.Done()
	log.Println("viewwall daemon stopped")
}

// catalogRoot resolves relative resource paths against the catalog's
// directory.
func catalogRoot(cfg *config.Config) string {
	if cfg.Content.Catalog == "" {
		return ""
	}
	return filepath.Dir(cfg.Content.Catalog)
}
