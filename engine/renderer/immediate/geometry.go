package immediate

import (
	"fmt"
	stdmath "math"

	"github.com/spaghettifunk/immediate/engine/core"
	"github.com/spaghettifunk/immediate/engine/math"
	"github.com/spaghettifunk/immediate/engine/renderer"
	"github.com/spaghettifunk/immediate/engine/renderer/metadata"
)

/** @brief The capacity a new geometry buffer starts with. */
const DefaultMaxSize uint32 = 1024

// DefaultColor is the colour of vertices pushed without one until SetColor is called.
var DefaultColor = math.NewVec4(0.0, 1.0, 0.0, 1.0)

/**
 * @brief Geometry that is rebuilt every frame. Vertices are appended into a
 * fixed capacity host array which is uploaded to a dynamic vertex buffer and
 * drawn with a single call.
 *
 * Capacity is managed by the caller: vertices pushed while the buffer is
 * full are dropped without an error, and the buffer never grows on its own.
 * It is not safe for concurrent use, see SyncGeometry.
 */
type ImmediateGeometry struct {
	device renderer.Device

	// vertices always has exactly MaxSize elements.
	vertices    []metadata.ImmediateVertex
	vertexCount uint32

	color         math.Vec4
	primitiveType metadata.PrimitiveTopology

	elements     []metadata.InputElementDesc
	vertexBuffer metadata.ResourceID
	layouts      *LayoutCache

	// overflowed is set once a vertex has been dropped in the current pass.
	overflowed bool
}

// New creates a geometry buffer holding DefaultMaxSize vertices.
func New(device renderer.Device) (*ImmediateGeometry, error) {
	return NewWithSize(device, DefaultMaxSize)
}

// NewWithSize creates a geometry buffer holding maxVertices vertices.
func NewWithSize(device renderer.Device, maxVertices uint32) (*ImmediateGeometry, error) {
	g := &ImmediateGeometry{
		device:        device,
		color:         DefaultColor,
		primitiveType: metadata.PrimitiveTopologyTriangleList,
		elements:      metadata.ImmediateVertexElements(),
		vertexBuffer:  metadata.InvalidResource,
		layouts:       NewLayoutCache(),
	}
	if err := g.SetMaxSize(maxVertices); err != nil {
		return nil, err
	}
	return g, nil
}

// Reset prepares the buffer for the next drawing pass. Storage is kept as is.
func (g *ImmediateGeometry) Reset() {
	g.vertexCount = 0
	g.overflowed = false
}

// AddVertex appends a complete vertex record.
func (g *ImmediateGeometry) AddVertex(vertex metadata.ImmediateVertex) {
	if g.vertexCount < g.MaxSize() {
		g.vertices[g.vertexCount] = vertex
		g.vertexCount++
		return
	}
	g.drop()
}

// AddPosition appends a vertex with the current colour and zero texture coordinates.
func (g *ImmediateGeometry) AddPosition(position math.Vec3) {
	g.AddVertex(metadata.ImmediateVertex{
		Position: position,
		Color:    g.color,
	})
}

// AddPositionColor appends a vertex with zero texture coordinates.
func (g *ImmediateGeometry) AddPositionColor(position math.Vec3, color math.Vec4) {
	g.AddVertex(metadata.ImmediateVertex{
		Position: position,
		Color:    color,
	})
}

// AddPositionTexCoords appends a vertex with the current colour.
func (g *ImmediateGeometry) AddPositionTexCoords(position math.Vec3, texcoords math.Vec2) {
	g.AddVertex(metadata.ImmediateVertex{
		Position:  position,
		Color:     g.color,
		TexCoords: texcoords,
	})
}

func (g *ImmediateGeometry) AddPositionColorTexCoords(position math.Vec3, color math.Vec4, texcoords math.Vec2) {
	g.AddVertex(metadata.ImmediateVertex{
		Position:  position,
		Color:     color,
		TexCoords: texcoords,
	})
}

func (g *ImmediateGeometry) drop() {
	if !g.overflowed {
		g.overflowed = true
		core.LogDebug("immediate geometry full (%d vertices), dropping vertices until reset", g.MaxSize())
	}
}

/**
 * @brief Changes the capacity to maxVertices. The host array and the vertex
 * buffer are both reallocated and the vertex count goes back to 0. Asking for
 * the current capacity does nothing.
 *
 * The new vertex buffer is created before anything is released, so when the
 * device refuses the allocation the buffer is left exactly as it was.
 */
func (g *ImmediateGeometry) SetMaxSize(maxVertices uint32) error {
	if maxVertices == g.MaxSize() {
		return nil
	}

	byteWidth := uint64(maxVertices) * metadata.ImmediateVertexSize
	if byteWidth > stdmath.MaxUint32 {
		return fmt.Errorf("immediate geometry of %d vertices needs %d bytes: %w", maxVertices, byteWidth, core.ErrBufferAllocation)
	}

	vertexBuffer := metadata.InvalidResource
	if maxVertices > 0 {
		config := &metadata.BufferConfig{}
		config.SetDefaultVertexBuffer(uint32(byteWidth), true)
		id, err := g.device.CreateVertexBuffer(config, nil)
		if err != nil {
			return fmt.Errorf("immediate geometry resize to %d vertices: %w: %w", maxVertices, core.ErrBufferAllocation, err)
		}
		vertexBuffer = id
	}

	previous := g.vertexBuffer
	g.vertices = make([]metadata.ImmediateVertex, maxVertices)
	g.vertexBuffer = vertexBuffer
	g.Reset()

	if previous.IsValid() {
		if err := g.device.DeleteResource(previous); err != nil {
			core.LogWarn("failed to delete previous immediate vertex buffer %d: %s", previous, err)
		}
	}

	core.LogDebug("immediate geometry resized to %d vertices (%d bytes)", maxVertices, byteWidth)
	return nil
}

/**
 * @brief Copies the vertices written since the last reset into the vertex
 * buffer. Only the live prefix is copied, never the whole capacity.
 */
func (g *ImmediateGeometry) UploadData(pipeline renderer.Pipeline) error {
	if g.vertexCount == 0 {
		return nil
	}

	// Discarding lets the device hand out fresh memory instead of waiting
	// for draws still reading the previous contents.
	data, err := pipeline.MapResource(g.vertexBuffer, 0, metadata.MapWriteDiscard)
	if err != nil {
		return fmt.Errorf("failed to map immediate vertex buffer: %w", err)
	}

	src := metadata.VertexBytes(g.vertices[:g.vertexCount])
	if len(data) < len(src) {
		_ = pipeline.UnmapResource(g.vertexBuffer, 0)
		return fmt.Errorf("mapped region holds %d bytes, need %d: %w", len(data), len(src), core.ErrInvalidResource)
	}
	copy(data, src)

	if err := pipeline.UnmapResource(g.vertexBuffer, 0); err != nil {
		return fmt.Errorf("failed to unmap immediate vertex buffer: %w", err)
	}
	return nil
}

/**
 * @brief Uploads the vertices and draws them with the configured topology
 * using the vertex shader bound on the pipeline. Does nothing while the
 * buffer is empty.
 */
func (g *ImmediateGeometry) Execute(pipeline renderer.Pipeline, params metadata.ParameterManager) error {
	if g.vertexCount == 0 {
		return nil
	}

	if err := g.UploadData(pipeline); err != nil {
		return err
	}

	ia := pipeline.InputAssembler()
	ia.Clear()

	layout, err := g.InputLayout(pipeline.VertexShader())
	if err != nil {
		return err
	}
	ia.SetInputLayout(layout)
	ia.SetPrimitiveTopology(g.primitiveType)
	if err := ia.SetVertexBuffer(0, g.vertexBuffer, 0, metadata.ImmediateVertexSize); err != nil {
		return err
	}

	if err := pipeline.ApplyInputResources(); err != nil {
		return fmt.Errorf("failed to apply input resources: %w", err)
	}

	if err := pipeline.Draw(g.vertexCount, 0); err != nil {
		return fmt.Errorf("immediate draw of %d vertices failed: %w", g.vertexCount, err)
	}
	return nil
}

// GenerateInputLayout makes sure a layout for shader is cached.
func (g *ImmediateGeometry) GenerateInputLayout(shader metadata.ShaderID) error {
	_, err := g.InputLayout(shader)
	return err
}

// InputLayout returns the cached layout for shader, building it on first use.
func (g *ImmediateGeometry) InputLayout(shader metadata.ShaderID) (metadata.InputLayoutID, error) {
	if shader.IsNil() {
		return metadata.InvalidInputLayout, core.ErrNoVertexShader
	}
	return g.layouts.Resolve(shader, func() (metadata.InputLayoutID, error) {
		layout, err := g.device.CreateInputLayout(g.elements, shader)
		if err != nil {
			return metadata.InvalidInputLayout, fmt.Errorf("input layout for shader %s: %w", shader, err)
		}
		return layout, nil
	})
}

// Destroy releases the host array and the vertex buffer. The geometry can
// be given a new capacity with SetMaxSize afterwards.
func (g *ImmediateGeometry) Destroy() error {
	g.vertices = nil
	g.Reset()
	if !g.vertexBuffer.IsValid() {
		return nil
	}
	vertexBuffer := g.vertexBuffer
	g.vertexBuffer = metadata.InvalidResource
	if err := g.device.DeleteResource(vertexBuffer); err != nil {
		return fmt.Errorf("failed to delete immediate vertex buffer: %w", err)
	}
	return nil
}

func (g *ImmediateGeometry) Color() math.Vec4 {
	return g.color
}

func (g *ImmediateGeometry) SetColor(color math.Vec4) {
	g.color = color
}

func (g *ImmediateGeometry) PrimitiveType() metadata.PrimitiveTopology {
	return g.primitiveType
}

// SetPrimitiveType accepts any value; see ValidatePrimitiveType.
func (g *ImmediateGeometry) SetPrimitiveType(primitiveType metadata.PrimitiveTopology) {
	g.primitiveType = primitiveType
}

func (g *ImmediateGeometry) VertexCount() uint32 {
	return g.vertexCount
}

func (g *ImmediateGeometry) MaxSize() uint32 {
	return uint32(len(g.vertices))
}

// PrimitiveCount is the number of primitives the current vertices assemble into.
func (g *ImmediateGeometry) PrimitiveCount() uint32 {
	return g.primitiveType.PrimitiveCount(g.vertexCount)
}

// Vertices returns the vertices written since the last reset. The slice
// aliases the host array and is only valid until the next write.
func (g *ImmediateGeometry) Vertices() []metadata.ImmediateVertex {
	return g.vertices[:g.vertexCount]
}

// VertexBuffer is the device handle of the vertex buffer.
func (g *ImmediateGeometry) VertexBuffer() metadata.ResourceID {
	return g.vertexBuffer
}

// Layouts exposes the input layout cache.
func (g *ImmediateGeometry) Layouts() *LayoutCache {
	return g.layouts
}

// ValidatePrimitiveType reports topologies no draw can be issued with.
func ValidatePrimitiveType(primitiveType metadata.PrimitiveTopology) error {
	if !primitiveType.IsValid() {
		return fmt.Errorf("%s: %w", primitiveType, core.ErrUnsupportedTopology)
	}
	return nil
}
