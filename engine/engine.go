package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/spaghettifunk/immediate/engine/core"
	"github.com/spaghettifunk/immediate/engine/renderer"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently booting up
	EngineStageBooting
	// Engine completed boot process and is ready to be initialized
	EngineStageBootComplete
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

type Engine struct {
	currentStage Stage
	gameInstance *Game
	isRunning    bool
	isSuspended  bool
	renderer     *renderer.Renderer
	events       *core.EventSystem
	width        uint32
	height       uint32
	clock        *core.Clock
	metrics      *core.Metrics
	lastTime     float64
	frames       uint64
}

func New(g *Game, backend renderer.RendererBackend) (*Engine, error) {
	if g == nil || g.ApplicationConfig == nil {
		return nil, fmt.Errorf("game without application config: %w", core.ErrInvalidConfig)
	}
	core.SetLogLevel(g.ApplicationConfig.LogLevel)

	return &Engine{
		currentStage: EngineStageUninitialized,
		gameInstance: g,
		renderer:     renderer.New(backend, nil),
		events:       core.NewEventSystem(),
		clock:        core.NewClock(),
		metrics:      core.NewMetrics(),
		isRunning:    false,
		isSuspended:  false,
		width:        g.ApplicationConfig.StartWidth,
		height:       g.ApplicationConfig.StartHeight,
		lastTime:     0,
	}, nil
}

func (e *Engine) Initialize() error {
	if e.currentStage != EngineStageUninitialized {
		return fmt.Errorf("engine already initialized (stage %d)", e.currentStage)
	}
	e.currentStage = EngineStageBooting
	if e.gameInstance.FnBoot != nil {
		if err := e.gameInstance.FnBoot(); err != nil {
			core.LogError("game boot failed: %s", err)
			return err
		}
	}
	e.currentStage = EngineStageBootComplete

	e.currentStage = EngineStageInitializing
	e.events.Register(core.EVENT_CODE_APPLICATION_QUIT, e, e.onEvent)
	e.events.Register(core.EVENT_CODE_RESIZED, e, e.onResized)

	config := e.gameInstance.ApplicationConfig
	if err := e.renderer.Initialize(config.Name, e.width, e.height); err != nil {
		core.LogError("failed to initialize renderer: %s", err)
		return err
	}

	if err := e.gameInstance.FnInitialize(e); err != nil {
		return err
	}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(e.width, e.height); err != nil {
			return err
		}
	}
	e.currentStage = EngineStageInitialized
	return nil
}

/**
 * @brief Runs frames until the context is cancelled, a quit event arrives or
 * the configured frame count is reached. Each frame updates the game, lets it
 * fill a render packet and hands the packet to the renderer.
 */
func (e *Engine) Run(ctx context.Context) error {
	if e.currentStage != EngineStageInitialized {
		return fmt.Errorf("engine not initialized (stage %d)", e.currentStage)
	}
	e.currentStage = EngineStageRunning
	e.isRunning = true

	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	config := e.gameInstance.ApplicationConfig
	var targetFrameSeconds float64
	if config.TargetFPS > 0 {
		targetFrameSeconds = 1.0 / config.TargetFPS
	}

	for e.isRunning {
		select {
		case <-ctx.Done():
			core.LogInfo("Run loop cancelled, shutting down.")
			e.isRunning = false
			continue
		default:
		}

		if e.isSuspended {
			time.Sleep(time.Millisecond)
			continue
		}

		// Update clock and get delta time.
		e.clock.Update()
		currentTime := e.clock.Elapsed()
		delta := currentTime - e.lastTime
		frameStart := time.Now()

		if err := e.gameInstance.FnUpdate(delta); err != nil {
			core.LogError("Game update failed, shutting down.")
			e.isRunning = false
			return err
		}

		packet := &renderer.RenderPacket{DeltaTime: delta}
		if err := e.gameInstance.FnRender(packet, delta); err != nil {
			core.LogError("Game render failed, shutting down.")
			e.isRunning = false
			return err
		}

		if err := e.renderer.DrawFrame(packet); err != nil {
			core.LogError("Draw frame failed, shutting down.")
			e.isRunning = false
			return err
		}

		// Figure out how long the frame took and give the rest back if a
		// frame rate target is set.
		frameElapsed := time.Since(frameStart).Seconds()
		if remaining := targetFrameSeconds - frameElapsed; remaining > 0 {
			time.Sleep(time.Duration(remaining * float64(time.Second)))
		}

		e.metrics.Update(delta)
		e.lastTime = currentTime
		e.frames++
		if config.Frames > 0 && e.frames >= config.Frames {
			e.isRunning = false
		}
	}
	return nil
}

func (e *Engine) Shutdown() error {
	e.currentStage = EngineStageShuttingDown
	e.isRunning = false
	e.clock.Stop()
	if e.gameInstance.FnShutdown != nil {
		if err := e.gameInstance.FnShutdown(); err != nil {
			return err
		}
	}
	e.events.Shutdown()
	if err := e.renderer.Shutdown(); err != nil {
		return err
	}
	core.LogInfo("Max FPS: %.0f", e.metrics.MaxFPS())
	return nil
}

// Quit asks the run loop to stop after the current frame.
func (e *Engine) Quit() {
	e.events.Fire(core.EVENT_CODE_APPLICATION_QUIT, e, core.EventContext{})
}

// Resize notifies the renderer and the game of a new framebuffer size.
func (e *Engine) Resize(width, height uint32) {
	e.events.Fire(core.EVENT_CODE_RESIZED, e, core.EventContext{Data: [2]uint32{width, height}})
}

// Suspend pauses frame production until Resume.
func (e *Engine) Suspend() {
	e.isSuspended = true
}

func (e *Engine) Resume() {
	e.isSuspended = false
}

// GetFramebufferSize returns the width and height (in this order)
// of the application framebuffer.
func (e *Engine) GetFramebufferSize() (uint32, uint32) {
	return e.width, e.height
}

func (e *Engine) Renderer() *renderer.Renderer {
	return e.renderer
}

func (e *Engine) Events() *core.EventSystem {
	return e.events
}

func (e *Engine) Metrics() *core.Metrics {
	return e.metrics
}

func (e *Engine) Stage() Stage {
	return e.currentStage
}

// FrameCount is the number of frames run so far.
func (e *Engine) FrameCount() uint64 {
	return e.frames
}

func (e *Engine) onEvent(code core.SystemEventCode, sender interface{}, listener interface{}, context core.EventContext) bool {
	switch code {
	case core.EVENT_CODE_APPLICATION_QUIT:
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		e.isRunning = false
		return true
	}
	return false
}

func (e *Engine) onResized(code core.SystemEventCode, sender interface{}, listener interface{}, context core.EventContext) bool {
	size, ok := context.Data.([2]uint32)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", code)
		return false
	}
	width, height := size[0], size[1]
	if width == e.width && height == e.height {
		return false
	}
	if width == 0 || height == 0 {
		core.LogInfo("Window minimized, suspending application.")
		e.isSuspended = true
		return true
	}
	if e.isSuspended {
		core.LogInfo("Window restored, resuming application.")
		e.isSuspended = false
	}
	e.width = width
	e.height = height
	if err := e.renderer.OnResize(width, height); err != nil {
		core.LogError("renderer resize failed: %s", err)
	}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(width, height); err != nil {
			core.LogError("game resize failed: %s", err)
		}
	}
	// Other listeners may want to know too.
	return false
}
