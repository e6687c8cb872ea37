package renderer

import (
	"fmt"

	"github.com/spaghettifunk/immediate/engine/core"
	"github.com/spaghettifunk/immediate/engine/renderer/metadata"
)

type RendererType uint8

const (
	Headless RendererType = iota
	Vulkan
)

// Drawable is anything that can submit itself through a pipeline.
type Drawable interface {
	Execute(pipeline Pipeline, params metadata.ParameterManager) error
}

/**
 * @brief A structure which is generated by the application and sent once
 * to the renderer to render a given frame.
 */
type RenderPacket struct {
	DeltaTime float64
	Drawables []Drawable
}

// Renderer is the frontend the engine talks to; it brackets every frame
// with the backend's begin/end calls.
type Renderer struct {
	backend RendererBackend
	params  metadata.ParameterManager
	frame   uint64
}

func New(backend RendererBackend, params metadata.ParameterManager) *Renderer {
	if params == nil {
		params = metadata.NewParameterStore()
	}
	return &Renderer{
		backend: backend,
		params:  params,
	}
}

func (r *Renderer) Initialize(appName string, appWidth, appHeight uint32) error {
	return r.backend.Initialize(appName, appWidth, appHeight)
}

func (r *Renderer) Shutdown() error {
	return r.backend.Shutdown()
}

func (r *Renderer) OnResize(width, height uint32) error {
	return r.backend.Resized(width, height)
}

// Backend exposes the device for resource creation.
func (r *Renderer) Backend() RendererBackend {
	return r.backend
}

func (r *Renderer) Parameters() metadata.ParameterManager {
	return r.params
}

// FrameNumber is the number of frames drawn so far.
func (r *Renderer) FrameNumber() uint64 {
	return r.frame
}

func (r *Renderer) DrawFrame(packet *RenderPacket) error {
	if err := r.backend.BeginFrame(packet.DeltaTime); err != nil {
		core.LogError(err.Error())
		return err
	}
	for i, d := range packet.Drawables {
		if err := d.Execute(r.backend, r.params); err != nil {
			// Close the frame so the backend is not left mid-frame.
			_ = r.backend.EndFrame(packet.DeltaTime)
			return fmt.Errorf("drawable %d: %w", i, err)
		}
	}
	if err := r.backend.EndFrame(packet.DeltaTime); err != nil {
		core.LogError("RendererEndFrame failed. Application shutting down...")
		return err
	}
	r.frame++
	return nil
}
