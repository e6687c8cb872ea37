/*
ImmediateRenderer sample: rebuilds an animated paraboloid grid through the
immediate geometry buffer every frame and draws it with the headless backend.
*/
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/immediate/engine"
	"github.com/spaghettifunk/immediate/engine/config"
	"github.com/spaghettifunk/immediate/engine/core"
	"github.com/spaghettifunk/immediate/engine/renderer/headless"
	"github.com/spaghettifunk/immediate/testbed"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the TOML configuration")
	frames := flag.Uint64("frames", 0, "stop after this many frames, overrides the configuration when set")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		core.LogFatal("failed to load configuration: %s", err)
	}
	if *frames > 0 {
		cfg.Application.Frames = *frames
	}

	backend := headless.New()
	tb, err := testbed.NewTestGame(cfg, backend)
	if err != nil {
		core.LogFatal("failed to create testbed: %s", err)
	}

	e, err := engine.New(tb.Game, backend)
	if err != nil {
		panic(err)
	}

	if err := e.Initialize(); err != nil {
		panic(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	go func() {
		select {
		case sig := <-sigCh:
			core.LogInfo("received %s, stopping", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	if cfg.Application.Watch {
		watcher, err := config.NewWatcher(*configPath)
		if err != nil {
			core.LogWarn("configuration hot reload disabled: %s", err)
		} else {
			defer watcher.Close()
			go func() {
				for updated := range watcher.Updates() {
					e.Events().Fire(core.EVENT_CODE_CONFIG_RELOADED, watcher, core.EventContext{Data: updated})
				}
			}()
		}
	}

	// run engine
	if err := e.Run(ctx); err != nil {
		core.LogError("run failed: %s", err)
	}
	if err := e.Shutdown(); err != nil {
		panic(err)
	}
}
