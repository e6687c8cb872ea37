package headless

import (
	"fmt"

	"github.com/spaghettifunk/immediate/engine/core"
	"github.com/spaghettifunk/immediate/engine/renderer/metadata"
)

/**
 * @brief A rendering backend that keeps every resource in host memory and
 * records draws instead of rasterizing them. It validates the same things a
 * real device would: mapping rules, input layouts against shader signatures
 * and that draws stay inside the bound vertex buffer.
 *
 * It is not safe for concurrent use.
 */
type HeadlessRenderer struct {
	FrameNumber uint64

	appName       string
	width, height uint32
	initialized   bool
	inFrame       bool

	nextResource metadata.ResourceID
	buffers      map[metadata.ResourceID]*buffer
	allocated    uint64
	memoryLimit  uint64

	shaders      map[metadata.ShaderID]*metadata.Shader
	vertexShader metadata.ShaderID
	layouts      []inputLayout

	desired metadata.InputAssemblerState
	applied metadata.InputAssemblerState

	draws []DrawCall
	stats Stats
}

type buffer struct {
	config  metadata.BufferConfig
	data    []byte
	mapped  bool
	mapType metadata.MapType
}

type inputLayout struct {
	elements []metadata.InputElementDesc
	offsets  []uint32
	strides  map[uint32]uint32
	shader   metadata.ShaderID
}

/** @brief Counters of everything the backend was asked to do. */
type Stats struct {
	BuffersCreated uint64
	BuffersDeleted uint64
	LayoutsCreated uint64
	Maps           uint64
	// Discards counts write-discard maps that handed out fresh memory.
	Discards      uint64
	Applies       uint64
	Draws         uint64
	VerticesDrawn uint64
}

/** @brief A draw recorded during the current frame. */
type DrawCall struct {
	VertexCount uint32
	StartVertex uint32
	Topology    metadata.PrimitiveTopology
	InputLayout metadata.InputLayoutID
	Shader      metadata.ShaderID
	// Data holds a copy of the stream 0 bytes the draw reads.
	Data []byte
}

// Vertices decodes Data as immediate vertices.
func (d DrawCall) Vertices() []metadata.ImmediateVertex {
	return metadata.BytesToVertices(d.Data)
}

func New() *HeadlessRenderer {
	return &HeadlessRenderer{
		nextResource: 0,
		buffers:      make(map[metadata.ResourceID]*buffer),
		shaders:      make(map[metadata.ShaderID]*metadata.Shader),
		vertexShader: metadata.NilShader,
		desired:      metadata.NewInputAssemblerState(),
		applied:      metadata.NewInputAssemblerState(),
	}
}

func (hr *HeadlessRenderer) Initialize(appName string, appWidth, appHeight uint32) error {
	hr.appName = appName
	hr.width = appWidth
	hr.height = appHeight
	hr.initialized = true
	core.LogInfo("Headless renderer initialized for '%s' (%dx%d)", appName, appWidth, appHeight)
	return nil
}

func (hr *HeadlessRenderer) Shutdown() error {
	if len(hr.buffers) > 0 {
		core.LogWarn("Headless renderer shutting down with %d live buffers (%d bytes)", len(hr.buffers), hr.allocated)
	}
	hr.buffers = make(map[metadata.ResourceID]*buffer)
	hr.allocated = 0
	hr.layouts = nil
	hr.draws = nil
	hr.initialized = false
	core.LogInfo("Headless renderer shut down after %d frames", hr.FrameNumber)
	return nil
}

func (hr *HeadlessRenderer) Resized(width, height uint32) error {
	hr.width = width
	hr.height = height
	core.LogDebug("Headless renderer resized to %dx%d", width, height)
	return nil
}

func (hr *HeadlessRenderer) BeginFrame(deltaTime float64) error {
	if hr.inFrame {
		return fmt.Errorf("frame %d already begun", hr.FrameNumber)
	}
	hr.inFrame = true
	hr.draws = hr.draws[:0]
	return nil
}

func (hr *HeadlessRenderer) EndFrame(deltaTime float64) error {
	if !hr.inFrame {
		return fmt.Errorf("frame %d was not begun", hr.FrameNumber)
	}
	hr.inFrame = false
	hr.FrameNumber++
	return nil
}

func (hr *HeadlessRenderer) IsMultithreaded() bool {
	return false
}

// SetMemoryLimit caps the total bytes of live buffers. 0 means no limit.
func (hr *HeadlessRenderer) SetMemoryLimit(bytes uint64) {
	hr.memoryLimit = bytes
}

// Allocated is the number of bytes held by live buffers.
func (hr *HeadlessRenderer) Allocated() uint64 {
	return hr.allocated
}

func (hr *HeadlessRenderer) Stats() Stats {
	return hr.stats
}

// Draws returns the draws recorded since the current frame began.
func (hr *HeadlessRenderer) Draws() []DrawCall {
	return hr.draws
}

// AppliedState is the input assembler state of the last ApplyInputResources.
func (hr *HeadlessRenderer) AppliedState() metadata.InputAssemblerState {
	return hr.applied
}

// BufferData returns the current contents of a buffer.
func (hr *HeadlessRenderer) BufferData(id metadata.ResourceID) ([]byte, bool) {
	b, ok := hr.buffers[id]
	if !ok {
		return nil, false
	}
	return b.data, true
}

// BufferConfig returns the description a buffer was created with.
func (hr *HeadlessRenderer) BufferConfig(id metadata.ResourceID) (metadata.BufferConfig, bool) {
	b, ok := hr.buffers[id]
	if !ok {
		return metadata.BufferConfig{}, false
	}
	return b.config, true
}
