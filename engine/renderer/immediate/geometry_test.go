package immediate

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/immediate/engine/core"
	"github.com/spaghettifunk/immediate/engine/math"
	"github.com/spaghettifunk/immediate/engine/renderer/metadata"
)

func newGeometry(t *testing.T, device *recorder, size uint32) *ImmediateGeometry {
	t.Helper()
	g, err := NewWithSize(device, size)
	require.NoError(t, err)
	return g
}

func TestNewDefaults(t *testing.T) {
	device := newRecorder()
	g, err := New(device)
	require.NoError(t, err)

	assert.Equal(t, DefaultMaxSize, g.MaxSize())
	assert.Equal(t, uint32(0), g.VertexCount())
	assert.Equal(t, uint32(0), g.PrimitiveCount())
	assert.Equal(t, math.NewVec4(0, 1, 0, 1), g.Color())
	assert.Equal(t, metadata.PrimitiveTopologyTriangleList, g.PrimitiveType())
	assert.True(t, g.VertexBuffer().IsValid())

	config := device.configs[g.VertexBuffer()]
	assert.Equal(t, uint32(1024*36), config.ByteWidth)
	assert.Equal(t, metadata.BufferUsageDynamic, config.Usage)
	assert.Equal(t, metadata.BindVertexBuffer, config.BindFlags)
	assert.Equal(t, metadata.CPUAccessWrite, config.CPUAccessFlags)
}

func TestAddVertexVariants(t *testing.T) {
	g := newGeometry(t, newRecorder(), 8)
	red := math.NewVec4(1, 0, 0, 1)
	uv := math.NewVec2(0.25, 0.75)

	g.AddPosition(math.NewVec3(1, 2, 3))
	g.AddPositionColor(math.NewVec3(4, 5, 6), red)
	g.AddPositionTexCoords(math.NewVec3(7, 8, 9), uv)
	g.AddPositionColorTexCoords(math.NewVec3(1, 1, 1), red, uv)

	vertices := g.Vertices()
	require.Len(t, vertices, 4)
	assert.Equal(t, metadata.ImmediateVertex{Position: math.NewVec3(1, 2, 3), Color: DefaultColor}, vertices[0])
	assert.Equal(t, metadata.ImmediateVertex{Position: math.NewVec3(4, 5, 6), Color: red}, vertices[1])
	assert.Equal(t, metadata.ImmediateVertex{Position: math.NewVec3(7, 8, 9), Color: DefaultColor, TexCoords: uv}, vertices[2])
	assert.Equal(t, metadata.ImmediateVertex{Position: math.NewVec3(1, 1, 1), Color: red, TexCoords: uv}, vertices[3])
}

func TestSetColorAffectsLaterVerticesOnly(t *testing.T) {
	g := newGeometry(t, newRecorder(), 4)
	g.AddPosition(math.NewVec3Zero())
	g.SetColor(math.NewVec4(1, 0, 0, 1))
	g.AddPosition(math.NewVec3Zero())

	assert.Equal(t, DefaultColor, g.Vertices()[0].Color)
	assert.Equal(t, math.NewVec4(1, 0, 0, 1), g.Vertices()[1].Color)
	assert.Equal(t, math.NewVec4(1, 0, 0, 1), g.Color())
}

func TestOverflowDropsSilently(t *testing.T) {
	g := newGeometry(t, newRecorder(), 3)
	for i := 0; i < 10; i++ {
		g.AddPosition(math.NewVec3(float32(i), 0, 0))
	}

	assert.Equal(t, uint32(3), g.VertexCount())
	for i, v := range g.Vertices() {
		assert.Equal(t, float32(i), v.Position.X)
	}
}

func TestResetKeepsStorage(t *testing.T) {
	g := newGeometry(t, newRecorder(), 4)
	g.AddPosition(math.NewVec3(1, 2, 3))
	g.AddPosition(math.NewVec3(4, 5, 6))
	g.Reset()

	assert.Equal(t, uint32(0), g.VertexCount())
	assert.Equal(t, uint32(4), g.MaxSize())
	assert.Equal(t, math.NewVec3(1, 2, 3), g.vertices[0].Position)

	g.AddPosition(math.NewVec3(9, 9, 9))
	assert.Equal(t, uint32(1), g.VertexCount())
	assert.Equal(t, math.NewVec3(9, 9, 9), g.Vertices()[0].Position)
}

func TestSetMaxSize(t *testing.T) {
	device := newRecorder()
	g := newGeometry(t, device, 4)
	first := g.VertexBuffer()
	g.AddPosition(math.NewVec3Zero())

	require.NoError(t, g.SetMaxSize(16))
	assert.Equal(t, uint32(16), g.MaxSize())
	assert.Equal(t, uint32(0), g.VertexCount())
	assert.NotEqual(t, first, g.VertexBuffer())
	assert.Equal(t, uint32(16*36), device.configs[g.VertexBuffer()].ByteWidth)
	assert.NotContains(t, device.buffers, first)

	// The new buffer is requested before the old one is released.
	assert.Equal(t, []string{"create 144", "create 576", "delete 1"}, device.calls)
}

func TestSetMaxSizeSameIsNoop(t *testing.T) {
	device := newRecorder()
	g := newGeometry(t, device, 4)
	g.AddPosition(math.NewVec3Zero())
	device.calls = nil

	require.NoError(t, g.SetMaxSize(4))
	assert.Equal(t, uint32(1), g.VertexCount())
	assert.Empty(t, device.calls)
}

func TestSetMaxSizeFailureKeepsState(t *testing.T) {
	device := newRecorder()
	g := newGeometry(t, device, 4)
	g.AddPosition(math.NewVec3(1, 2, 3))
	buffer := g.VertexBuffer()

	device.refuseBuffers = true
	err := g.SetMaxSize(64)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrBufferAllocation)
	assert.ErrorIs(t, err, errRefused)

	assert.Equal(t, uint32(4), g.MaxSize())
	assert.Equal(t, uint32(1), g.VertexCount())
	assert.Equal(t, buffer, g.VertexBuffer())
	assert.Contains(t, device.buffers, buffer)
}

func TestNewFailsWhenDeviceRefuses(t *testing.T) {
	device := newRecorder()
	device.refuseBuffers = true
	_, err := New(device)
	assert.ErrorIs(t, err, core.ErrBufferAllocation)
}

func TestSetMaxSizeZero(t *testing.T) {
	device := newRecorder()
	g := newGeometry(t, device, 4)

	require.NoError(t, g.SetMaxSize(0))
	assert.Equal(t, uint32(0), g.MaxSize())
	assert.False(t, g.VertexBuffer().IsValid())

	g.AddPosition(math.NewVec3Zero())
	assert.Equal(t, uint32(0), g.VertexCount())
	require.NoError(t, g.Execute(device, nil))
	assert.Empty(t, device.draws)
}

func TestSetMaxSizeTooLarge(t *testing.T) {
	g := newGeometry(t, newRecorder(), 4)
	err := g.SetMaxSize(200_000_000)
	assert.ErrorIs(t, err, core.ErrBufferAllocation)
	assert.Equal(t, uint32(4), g.MaxSize())
}

func TestPrimitiveCount(t *testing.T) {
	g := newGeometry(t, newRecorder(), 32)
	for i := 0; i < 7; i++ {
		g.AddPosition(math.NewVec3Zero())
	}

	tests := []struct {
		topology metadata.PrimitiveTopology
		expected uint32
	}{
		{metadata.PrimitiveTopologyPointList, 7},
		{metadata.PrimitiveTopologyLineList, 3},
		{metadata.PrimitiveTopologyLineStrip, 6},
		{metadata.PrimitiveTopologyTriangleList, 2},
		{metadata.PrimitiveTopologyTriangleStrip, 5},
		{metadata.PrimitiveTopologyUndefined, 0},
	}
	for _, tt := range tests {
		g.SetPrimitiveType(tt.topology)
		assert.Equal(t, tt.expected, g.PrimitiveCount(), tt.topology.String())
	}
}

func TestExecuteEmptyTouchesNothing(t *testing.T) {
	device := newRecorder()
	g := newGeometry(t, device, 4)
	device.calls = nil

	require.NoError(t, g.Execute(device, metadata.NewParameterStore()))
	assert.Empty(t, device.calls)
	assert.Equal(t, 0, g.Layouts().Len())
}

func TestExecuteSequence(t *testing.T) {
	device := newRecorder()
	g := newGeometry(t, device, 1024)
	device.calls = nil

	g.AddPositionColor(math.NewVec3(0, 0, 0), math.NewVec4(1, 0, 0, 1))
	g.AddPositionColor(math.NewVec3(1, 0, 0), math.NewVec4(0, 1, 0, 1))
	g.AddPositionColor(math.NewVec3(0, 1, 0), math.NewVec4(0, 0, 1, 1))

	require.NoError(t, g.Execute(device, metadata.NewParameterStore()))

	assert.Equal(t, []string{
		"map 1 write_discard",
		"unmap 1",
		"layout 3",
		"apply",
		"draw 3 0",
	}, device.calls)

	// 108 bytes of vertex data, the rest of the buffer untouched.
	uploaded := metadata.BytesToVertices(device.buffers[g.VertexBuffer()][:3*36])
	assert.Equal(t, g.Vertices(), uploaded)
	assert.Equal(t, make([]byte, 36), device.buffers[g.VertexBuffer()][3*36:4*36])

	assert.Equal(t, metadata.PrimitiveTopologyTriangleList, device.applied.Topology)
	assert.True(t, device.applied.InputLayout.IsValid())
	assert.Equal(t, metadata.VertexBufferBinding{Resource: g.VertexBuffer(), Offset: 0, Stride: 36}, device.applied.VertexBuffers[0])
	assert.Equal(t, []uint32{0}, device.applied.BoundSlots())
	assert.Equal(t, uint32(1), g.PrimitiveCount())
}

func TestExecuteClearsPreviousBindings(t *testing.T) {
	device := newRecorder()
	g := newGeometry(t, device, 4)
	require.NoError(t, device.ia.SetVertexBuffer(3, 99, 0, 16))

	g.AddPosition(math.NewVec3Zero())
	require.NoError(t, g.Execute(device, nil))
	assert.Equal(t, []uint32{0}, device.applied.BoundSlots())
}

func TestInputLayoutCachedPerShader(t *testing.T) {
	device := newRecorder()
	g := newGeometry(t, device, 4)
	g.AddPosition(math.NewVec3Zero())

	for i := 0; i < 5; i++ {
		require.NoError(t, g.Execute(device, nil))
	}
	assert.Equal(t, 1, device.count("layout"))
	assert.Equal(t, 5, device.count("draw"))

	device.shader = metadata.NewShaderID()
	require.NoError(t, g.Execute(device, nil))
	assert.Equal(t, 2, device.count("layout"))
	assert.Equal(t, 2, g.Layouts().Len())
}

func TestGenerateInputLayout(t *testing.T) {
	device := newRecorder()
	g := newGeometry(t, device, 4)
	shader := metadata.NewShaderID()

	require.NoError(t, g.GenerateInputLayout(shader))
	require.NoError(t, g.GenerateInputLayout(shader))
	assert.Equal(t, 1, device.count("layout"))

	_, ok := g.Layouts().Lookup(shader)
	assert.True(t, ok)
}

func TestInputLayoutFailureNotCached(t *testing.T) {
	device := newRecorder()
	g := newGeometry(t, device, 4)
	device.refuseLayouts = true
	g.AddPosition(math.NewVec3Zero())

	err := g.Execute(device, nil)
	assert.ErrorIs(t, err, errRefused)
	assert.Empty(t, device.draws)
	assert.Equal(t, 0, g.Layouts().Len())

	device.refuseLayouts = false
	require.NoError(t, g.Execute(device, nil))
	assert.Len(t, device.draws, 1)
}

func TestExecuteWithoutVertexShader(t *testing.T) {
	device := newRecorder()
	device.shader = metadata.NilShader
	g := newGeometry(t, device, 4)
	g.AddPosition(math.NewVec3Zero())

	err := g.Execute(device, nil)
	assert.ErrorIs(t, err, core.ErrNoVertexShader)
	assert.Empty(t, device.draws)
}

func TestExecuteRepeatsWithoutReset(t *testing.T) {
	device := newRecorder()
	g := newGeometry(t, device, 4)
	g.AddPosition(math.NewVec3Zero())
	g.AddPosition(math.NewVec3Zero())

	require.NoError(t, g.Execute(device, nil))
	require.NoError(t, g.Execute(device, nil))
	assert.Equal(t, [][2]uint32{{2, 0}, {2, 0}}, device.draws)
	assert.Equal(t, 2, device.count("map"))
}

func TestFillToCapacity(t *testing.T) {
	device := newRecorder()
	g := newGeometry(t, device, 1024)
	for i := 0; i < 1200; i++ {
		g.AddPosition(math.NewVec3(float32(i), 0, 0))
	}

	require.NoError(t, g.Execute(device, nil))
	assert.Equal(t, [][2]uint32{{1024, 0}}, device.draws)
	assert.Equal(t, uint32(341), g.PrimitiveCount())
	assert.Equal(t, float32(1023), g.Vertices()[1023].Position.X)
}

func TestDestroy(t *testing.T) {
	device := newRecorder()
	g := newGeometry(t, device, 4)
	buffer := g.VertexBuffer()

	require.NoError(t, g.Destroy())
	assert.NotContains(t, device.buffers, buffer)
	assert.Equal(t, uint32(0), g.MaxSize())
	assert.False(t, g.VertexBuffer().IsValid())
	require.NoError(t, g.Destroy())

	require.NoError(t, g.SetMaxSize(8))
	assert.Equal(t, uint32(8), g.MaxSize())
}

func TestValidatePrimitiveType(t *testing.T) {
	assert.NoError(t, ValidatePrimitiveType(metadata.PrimitiveTopologyLineStrip))
	assert.NoError(t, ValidatePrimitiveType(metadata.PatchListTopology(3)))
	assert.ErrorIs(t, ValidatePrimitiveType(metadata.PrimitiveTopologyUndefined), core.ErrUnsupportedTopology)
	assert.ErrorIs(t, ValidatePrimitiveType(metadata.PrimitiveTopology(7)), core.ErrUnsupportedTopology)
}

func TestSyncGeometryConcurrentWriters(t *testing.T) {
	g := newGeometry(t, newRecorder(), 1000)
	s := NewSyncGeometry(g)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				s.AddPosition(math.NewVec3Zero())
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, uint32(1000), s.VertexCount())
	s.Reset()
	assert.Equal(t, uint32(0), s.VertexCount())
}

func TestSyncGeometryBatch(t *testing.T) {
	device := newRecorder()
	s := NewSyncGeometry(newGeometry(t, device, 8))
	s.AddVertices(
		metadata.ImmediateVertex{Position: math.NewVec3(0, 0, 0)},
		metadata.ImmediateVertex{Position: math.NewVec3(1, 0, 0)},
		metadata.ImmediateVertex{Position: math.NewVec3(0, 1, 0)},
	)
	require.NoError(t, s.Execute(device, nil))
	assert.Equal(t, [][2]uint32{{3, 0}}, device.draws)

	s.Do(func(g *ImmediateGeometry) {
		assert.Equal(t, uint32(1), g.PrimitiveCount())
	})
}
