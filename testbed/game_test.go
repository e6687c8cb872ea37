package testbed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/immediate/engine"
	"github.com/spaghettifunk/immediate/engine/config"
	"github.com/spaghettifunk/immediate/engine/core"
	"github.com/spaghettifunk/immediate/engine/math"
	"github.com/spaghettifunk/immediate/engine/renderer/headless"
	"github.com/spaghettifunk/immediate/engine/renderer/immediate"
	"github.com/spaghettifunk/immediate/engine/renderer/metadata"
	"github.com/spaghettifunk/immediate/engine/systems"
)

func testConfig(frames uint64) *config.Config {
	cfg := config.Default()
	cfg.Application.Frames = frames
	cfg.Application.TargetFPS = 0
	cfg.Application.LogLevel = "error"
	return cfg
}

func newSample(t *testing.T, cfg *config.Config) (*TestGame, *engine.Engine, *headless.HeadlessRenderer) {
	t.Helper()
	backend := headless.New()
	tg, err := NewTestGame(cfg, backend)
	require.NoError(t, err)
	e, err := engine.New(tg.Game, backend)
	require.NoError(t, err)
	require.NoError(t, e.Initialize())
	return tg, e, backend
}

func TestBuildGridSaturates(t *testing.T) {
	backend := headless.New()
	g, err := immediate.New(backend)
	require.NoError(t, err)

	BuildGrid(g, config.GridConfig{Size: 20, Scale: 5}, 0)
	assert.Equal(t, uint32(1024), g.VertexCount())
	assert.Equal(t, uint32(341), g.PrimitiveCount())
}

func TestBuildGridFirstCell(t *testing.T) {
	backend := headless.New()
	g, err := immediate.NewWithSize(backend, 4096)
	require.NoError(t, err)

	// sin(0) flattens the paraboloid and cos(0) selects the top colour.
	BuildGrid(g, config.GridConfig{Size: 2, Scale: 2}, 0)
	require.Equal(t, uint32(12), g.VertexCount())

	vertices := g.Vertices()
	assert.Equal(t, math.NewVec3(-1, 0, -1), vertices[0].Position)
	assert.Equal(t, math.NewVec3(-1, 0, 0), vertices[1].Position)
	assert.Equal(t, math.NewVec3(0, 0, -1), vertices[2].Position)

	assert.Equal(t, math.NewVec2(0, 1), vertices[0].TexCoords)
	assert.Equal(t, math.NewVec2(0, 0.5), vertices[1].TexCoords)
	assert.Equal(t, math.NewVec2(0.5, 1), vertices[2].TexCoords)

	for _, v := range vertices {
		assert.True(t, v.Color.Compare(TopColor, 1e-6))
	}
}

func TestBuildGridAnimates(t *testing.T) {
	backend := headless.New()
	g, err := immediate.NewWithSize(backend, 4096)
	require.NoError(t, err)

	BuildGrid(g, config.GridConfig{Size: 20, Scale: 5}, 2)
	assert.Equal(t, uint32(1200), g.VertexCount())

	var lifted bool
	for _, v := range g.Vertices() {
		if v.Position.Y != 0 {
			lifted = true
			break
		}
	}
	assert.True(t, lifted)
}

func TestBuildGridParallelKeepsRowsTogether(t *testing.T) {
	backend := headless.New()
	g, err := immediate.NewWithSize(backend, 4096)
	require.NoError(t, err)
	jobs, err := systems.NewJobSystem(4, 20)
	require.NoError(t, err)
	defer jobs.Shutdown()

	grid := config.GridConfig{Size: 20, Scale: 5}
	require.NoError(t, BuildGridParallel(immediate.NewSyncGeometry(g), jobs, grid, 1))
	require.Equal(t, uint32(1200), g.VertexCount())

	sequential, err := immediate.NewWithSize(backend, 4096)
	require.NoError(t, err)
	BuildGrid(sequential, grid, 1)

	rows := map[float32][]metadata.ImmediateVertex{}
	for start := 0; start < 1200; start += 60 {
		row := sequential.Vertices()[start : start+60]
		rows[row[0].Position.Z] = row
	}
	require.Len(t, rows, 20)

	vertices := g.Vertices()
	for start := 0; start < 1200; start += 60 {
		row := vertices[start : start+60]
		expected, ok := rows[row[0].Position.Z]
		require.True(t, ok)
		assert.Equal(t, expected, row)
		delete(rows, row[0].Position.Z)
	}
	assert.Empty(t, rows)
}

func TestSampleWithWorkers(t *testing.T) {
	cfg := testConfig(2)
	cfg.Grid.Workers = 3
	cfg.Geometry.MaxVertices = 2048
	cfg.Overlay.Enabled = false
	tg, e, backend := newSample(t, cfg)

	require.NoError(t, e.Run(context.Background()))
	assert.Equal(t, uint32(1200), tg.Geometry().VertexCount())
	assert.Equal(t, uint64(2400), backend.Stats().VerticesDrawn)
	require.NoError(t, e.Shutdown())
}

func TestSampleRunsFrames(t *testing.T) {
	tg, e, backend := newSample(t, testConfig(3))
	require.NotNil(t, tg.Overlay())

	require.NoError(t, e.Run(context.Background()))

	stats := backend.Stats()
	// grid and overlay per frame
	assert.Equal(t, uint64(6), stats.Draws)
	// one layout per geometry buffer
	assert.Equal(t, uint64(2), stats.LayoutsCreated)
	assert.Equal(t, uint32(1024), tg.Geometry().VertexCount())

	draws := backend.Draws()
	require.Len(t, draws, 2)
	assert.Equal(t, uint32(1024), draws[0].VertexCount)
	assert.Equal(t, metadata.PrimitiveTopologyTriangleList, draws[0].Topology)
	assert.NotZero(t, draws[1].VertexCount)
	assert.Zero(t, draws[1].VertexCount%6)

	require.NoError(t, e.Shutdown())
	assert.Equal(t, uint64(0), backend.Allocated())
}

func TestSampleWithoutOverlay(t *testing.T) {
	cfg := testConfig(2)
	cfg.Overlay.Enabled = false
	tg, e, backend := newSample(t, cfg)
	assert.Nil(t, tg.Overlay())

	require.NoError(t, e.Run(context.Background()))
	assert.Equal(t, uint64(2), backend.Stats().Draws)
	require.NoError(t, e.Shutdown())
}

func TestSampleAppliesReloadedConfig(t *testing.T) {
	cfg := testConfig(1)
	cfg.Overlay.Enabled = false
	tg, e, backend := newSample(t, cfg)

	reloaded := testConfig(1)
	reloaded.Geometry.MaxVertices = 2048
	reloaded.Geometry.Primitive = metadata.PrimitiveTopologyPointList
	reloaded.Grid.Size = 10
	e.Events().Fire(core.EVENT_CODE_CONFIG_RELOADED, nil, core.EventContext{Data: reloaded})

	require.NoError(t, e.Run(context.Background()))
	assert.Equal(t, uint32(2048), tg.Geometry().MaxSize())
	assert.Equal(t, uint32(300), tg.Geometry().VertexCount())
	assert.Equal(t, metadata.PrimitiveTopologyPointList, tg.Geometry().PrimitiveType())
	assert.Equal(t, uint32(10), tg.Config().Grid.Size)
	assert.False(t, tg.Config().Overlay.Enabled)

	draws := backend.Draws()
	require.Len(t, draws, 1)
	assert.Equal(t, uint32(300), draws[0].VertexCount)
	assert.Equal(t, metadata.PrimitiveTopologyPointList, draws[0].Topology)
}

func TestSampleKeepsSizeWhenResizeFails(t *testing.T) {
	cfg := testConfig(1)
	cfg.Overlay.Enabled = false
	backend := headless.New()
	backend.SetMemoryLimit(2048 * metadata.ImmediateVertexSize)
	tg, err := NewTestGame(cfg, backend)
	require.NoError(t, err)
	e, err := engine.New(tg.Game, backend)
	require.NoError(t, err)
	require.NoError(t, e.Initialize())

	reloaded := testConfig(1)
	reloaded.Geometry.MaxVertices = 4096
	e.Events().Fire(core.EVENT_CODE_CONFIG_RELOADED, nil, core.EventContext{Data: reloaded})

	require.NoError(t, e.Run(context.Background()))
	assert.Equal(t, uint32(1024), tg.Geometry().MaxSize())
	assert.Equal(t, uint32(1024), tg.Config().Geometry.MaxVertices)
}

func TestNewTestGameRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(1)
	cfg.Grid.Size = 0
	_, err := NewTestGame(cfg, headless.New())
	assert.ErrorIs(t, err, core.ErrInvalidConfig)
}
