package engine

import (
	"github.com/spaghettifunk/immediate/engine/core"
)

type ApplicationConfig struct {
	// Starting framebuffer width.
	StartWidth uint32
	// Starting framebuffer height.
	StartHeight uint32
	// The application name handed to the renderer.
	Name     string
	LogLevel core.LogLevel
	// Frames stops the run loop after this many frames. 0 means no limit.
	Frames uint64
	// TargetFPS caps the frame rate by sleeping the remainder of each frame.
	// 0 runs unthrottled.
	TargetFPS float64
}
