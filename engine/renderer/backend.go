package renderer

import "github.com/spaghettifunk/immediate/engine/renderer/metadata"

// Device creates and destroys device resources.
type Device interface {
	// CreateVertexBuffer allocates a vertex buffer described by config.
	// initial may be nil; otherwise it seeds the buffer contents.
	CreateVertexBuffer(config *metadata.BufferConfig, initial []byte) (metadata.ResourceID, error)
	// DeleteResource releases a resource; the handle is invalid afterwards.
	DeleteResource(id metadata.ResourceID) error
	// CreateInputLayout binds elements against the input signature of shader.
	CreateInputLayout(elements []metadata.InputElementDesc, shader metadata.ShaderID) (metadata.InputLayoutID, error)
}

// Pipeline is the per-context state that draws are issued through.
type Pipeline interface {
	// MapResource returns a writable view of the resource memory. The view is
	// only valid until UnmapResource.
	MapResource(id metadata.ResourceID, subresource uint32, mapType metadata.MapType) ([]byte, error)
	UnmapResource(id metadata.ResourceID, subresource uint32) error
	// VertexShader is the program currently bound to the vertex stage.
	VertexShader() metadata.ShaderID
	// InputAssembler is the desired input assembler state, applied by
	// ApplyInputResources.
	InputAssembler() *metadata.InputAssemblerState
	ApplyInputResources() error
	// Draw issues a non indexed draw of vertexCount vertices.
	Draw(vertexCount, startVertex uint32) error
}

// RendererBackend is a full rendering backend: resources, a pipeline and a
// frame lifecycle.
type RendererBackend interface {
	Device
	Pipeline
	Initialize(appName string, appWidth, appHeight uint32) error
	Shutdown() error
	Resized(width, height uint32) error
	BeginFrame(deltaTime float64) error
	EndFrame(deltaTime float64) error
	IsMultithreaded() bool
}
