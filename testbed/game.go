package testbed

import (
	"fmt"
	"sync"

	"github.com/chewxy/math32"

	"github.com/spaghettifunk/immediate/engine"
	"github.com/spaghettifunk/immediate/engine/config"
	"github.com/spaghettifunk/immediate/engine/core"
	"github.com/spaghettifunk/immediate/engine/math"
	"github.com/spaghettifunk/immediate/engine/renderer"
	"github.com/spaghettifunk/immediate/engine/renderer/immediate"
	"github.com/spaghettifunk/immediate/engine/renderer/metadata"
	"github.com/spaghettifunk/immediate/engine/systems"
	"github.com/spaghettifunk/immediate/engine/text"
)

const SampleName = "ImmediateRenderer"

var (
	TopColor    = math.NewVec4(0.25, 1.0, 1.0, 1.0)
	BottomColor = math.NewVec4(1.0, 0.25, 0.25, 1.0)
	TextColor   = math.NewVec4(1.0, 1.0, 1.0, 1.0)
)

// ImmediateSignature is the input signature of the textured immediate
// geometry vertex shader.
var ImmediateSignature = []metadata.ShaderInput{
	{SemanticName: "POSITION", Components: 3},
	{SemanticName: "COLOR", Components: 4},
	{SemanticName: "TEXCOORD", Components: 2},
}

// ShaderHost is a backend that shader programs can be registered with and
// bound on.
type ShaderHost interface {
	RegisterShader(name string, signature []metadata.ShaderInput) metadata.ShaderID
	BindVertexShader(id metadata.ShaderID) error
}

type TestGame struct {
	*engine.Game
	shaders ShaderHost
}

type gameState struct {
	engine   *engine.Engine
	config   *config.Config
	geometry *immediate.ImmediateGeometry
	overlay  *text.Overlay
	runtime  float64

	// Set when grid rows are built on worker goroutines.
	jobs   *systems.JobSystem
	shared *immediate.SyncGeometry

	// pending is written by the config reload listener and applied at the
	// start of the next frame.
	mutex   sync.Mutex
	pending *config.Config
}

func NewTestGame(cfg *config.Config, shaders ShaderHost) (*TestGame, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	level, err := core.ParseLogLevel(cfg.Application.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrInvalidConfig, err)
	}

	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: &engine.ApplicationConfig{
				StartWidth:  cfg.Application.Width,
				StartHeight: cfg.Application.Height,
				Name:        cfg.Application.Name,
				LogLevel:    level,
				Frames:      cfg.Application.Frames,
				TargetFPS:   cfg.Application.TargetFPS,
			},
			State: &gameState{
				config: cfg,
			},
		},
		shaders: shaders,
	}

	tg.FnBoot = tg.Boot
	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnRender = tg.Render
	tg.FnOnResize = tg.OnResize
	tg.FnShutdown = tg.Shutdown

	return tg, nil
}

func (g *TestGame) Boot() error {
	core.LogInfo("booting testbed...")
	return nil
}

func (g *TestGame) Initialize(e *engine.Engine) error {
	core.LogDebug("TestGame Initialize fn....")

	state := g.State.(*gameState)
	state.engine = e

	shader := g.shaders.RegisterShader("Shader.Builtin.Immediate", ImmediateSignature)
	if err := g.shaders.BindVertexShader(shader); err != nil {
		return err
	}

	device := e.Renderer().Backend()
	geometry, err := immediate.NewWithSize(device, state.config.Geometry.MaxVertices)
	if err != nil {
		return err
	}
	geometry.SetColor(state.config.Geometry.ColorVec())
	geometry.SetPrimitiveType(state.config.Geometry.Primitive)
	state.geometry = geometry

	if workers := int(state.config.Grid.Workers); workers > 0 {
		jobs, err := systems.NewJobSystem(workers, int(state.config.Grid.Size))
		if err != nil {
			return err
		}
		state.jobs = jobs
		state.shared = immediate.NewSyncGeometry(geometry)
	}

	if state.config.Overlay.Enabled {
		font, err := loadFont(state.config.Overlay.Font)
		if err != nil {
			return err
		}
		textGeometry, err := immediate.NewWithSize(device, state.config.Overlay.MaxVertices)
		if err != nil {
			return err
		}
		state.overlay = text.NewOverlay(font, textGeometry)
	}

	e.Events().Register(core.EVENT_CODE_CONFIG_RELOADED, g, g.onConfigReloaded)
	return nil
}

func loadFont(path string) (text.Font, error) {
	if path == "" {
		return text.NewBuiltinFont(), nil
	}
	return text.LoadBitmapFont(path)
}

func (g *TestGame) Update(deltaTime float64) error {
	state := g.State.(*gameState)
	state.applyPending()
	state.runtime += deltaTime

	if state.jobs != nil {
		if err := BuildGridParallel(state.shared, state.jobs, state.config.Grid, float32(state.runtime)); err != nil {
			return err
		}
	} else {
		BuildGrid(state.geometry, state.config.Grid, float32(state.runtime))
	}

	if state.overlay != nil {
		state.overlay.Begin()
		out := fmt.Sprintf("Hieroglyph 3 : %s\nFPS: %.0f", SampleName, state.engine.Metrics().FPS())
		state.overlay.DrawString(out, math.NewMat4Translation(math.NewVec3(5, 5, 0)), TextColor)
	}
	return nil
}

// paraboloid animates the height and colour of the grid over runtime.
type paraboloid struct {
	size      int
	fSize     float32
	sizeScale float32
	scaling   float32
	color     math.Vec4
}

func newParaboloid(grid config.GridConfig, runtime float32) paraboloid {
	colorScale := 0.5*math32.Cos(runtime*11.0) + 0.5
	return paraboloid{
		size:      int(grid.Size),
		fSize:     float32(grid.Size),
		sizeScale: grid.Scale / float32(grid.Size),
		scaling:   0.25 * math32.Sin(runtime*0.75),
		color:     BottomColor.Lerp(TopColor, colorScale),
	}
}

// vertex returns the scaled position and texture coordinates of grid point (x, z).
func (p paraboloid) vertex(x, z float32) (math.Vec3, math.Vec2) {
	y := (5.0 - 0.2*(x*x+z*z)) * p.scaling
	uv := math.NewVec2((x+p.fSize/2)/p.fSize, 1.0-(z+p.fSize/2)/p.fSize)
	return math.NewVec3(x, y, z).MulScalar(p.sizeScale), uv
}

// row returns the three vertices of every cell of row z.
func (p paraboloid) row(z int) []metadata.ImmediateVertex {
	vertices := make([]metadata.ImmediateVertex, 0, 3*p.size)
	fz := float32(z - p.size/2)
	for x := 0; x < p.size; x++ {
		fx := float32(x - p.size/2)
		for _, corner := range [3][2]float32{{fx, fz}, {fx, fz + 1}, {fx + 1, fz}} {
			position, uv := p.vertex(corner[0], corner[1])
			vertices = append(vertices, metadata.ImmediateVertex{Position: position, Color: p.color, TexCoords: uv})
		}
	}
	return vertices
}

/**
 * @brief Rebuilds the animated paraboloid: one triangle per cell of a
 * size x size grid, scaled to span grid.Scale units, with texture
 * coordinates mapping the grid onto [0, 1].
 */
func BuildGrid(geometry *immediate.ImmediateGeometry, grid config.GridConfig, runtime float32) {
	geometry.Reset()

	p := newParaboloid(grid, runtime)
	geometry.SetColor(p.color)

	for z := 0; z < p.size; z++ {
		for x := 0; x < p.size; x++ {
			fx := float32(x - p.size/2)
			fz := float32(z - p.size/2)
			geometry.AddPositionTexCoords(p.vertex(fx, fz))
			geometry.AddPositionTexCoords(p.vertex(fx, fz+1))
			geometry.AddPositionTexCoords(p.vertex(fx+1, fz))
		}
	}
}

/**
 * @brief Same as BuildGrid with one job per row. Rows land in the buffer in
 * completion order; a row is never interleaved with another.
 */
func BuildGridParallel(geometry *immediate.SyncGeometry, jobs *systems.JobSystem, grid config.GridConfig, runtime float32) error {
	p := newParaboloid(grid, runtime)
	geometry.Do(func(g *immediate.ImmediateGeometry) {
		g.Reset()
		g.SetColor(p.color)
	})

	for z := 0; z < p.size; z++ {
		jobs.Submit(systems.JobTask{
			Name: fmt.Sprintf("grid row %d", z),
			OnStart: func() error {
				geometry.AddVertices(p.row(z)...)
				return nil
			},
		})
	}
	return jobs.Wait()
}

func (g *TestGame) Render(packet *renderer.RenderPacket, deltaTime float64) error {
	state := g.State.(*gameState)
	packet.Drawables = append(packet.Drawables, state.geometry)
	if state.overlay != nil {
		packet.Drawables = append(packet.Drawables, state.overlay)
	}
	return nil
}

func (g *TestGame) OnResize(width uint32, height uint32) error {
	core.LogDebug("testbed resized to %dx%d", width, height)
	return nil
}

func (g *TestGame) Shutdown() error {
	state := g.State.(*gameState)
	if state.jobs != nil {
		if err := state.jobs.Shutdown(); err != nil {
			return err
		}
	}
	if state.overlay != nil {
		if err := state.overlay.Geometry().Destroy(); err != nil {
			return err
		}
	}
	if state.geometry != nil {
		return state.geometry.Destroy()
	}
	return nil
}

// Geometry is the grid buffer, available after Initialize.
func (g *TestGame) Geometry() *immediate.ImmediateGeometry {
	return g.State.(*gameState).geometry
}

// Overlay is nil when the overlay is disabled.
func (g *TestGame) Overlay() *text.Overlay {
	return g.State.(*gameState).overlay
}

func (g *TestGame) Config() *config.Config {
	return g.State.(*gameState).config
}

func (g *TestGame) onConfigReloaded(code core.SystemEventCode, sender interface{}, listener interface{}, context core.EventContext) bool {
	cfg, ok := context.Data.(*config.Config)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", code)
		return false
	}
	state := g.State.(*gameState)
	state.mutex.Lock()
	state.pending = cfg
	state.mutex.Unlock()
	return false
}

// applyPending takes over the geometry and grid sections of a reloaded
// config. It runs between passes so the buffer is never resized mid-pass.
func (s *gameState) applyPending() {
	s.mutex.Lock()
	cfg := s.pending
	s.pending = nil
	s.mutex.Unlock()
	if cfg == nil {
		return
	}

	if err := s.geometry.SetMaxSize(cfg.Geometry.MaxVertices); err != nil {
		core.LogError("keeping %d vertices: %s", s.geometry.MaxSize(), err)
		cfg.Geometry.MaxVertices = s.geometry.MaxSize()
	}
	s.geometry.SetPrimitiveType(cfg.Geometry.Primitive)
	s.geometry.SetColor(cfg.Geometry.ColorVec())

	// The overlay, worker and application settings only take effect on restart.
	cfg.Grid.Workers = s.config.Grid.Workers
	cfg.Overlay = s.config.Overlay
	cfg.Application = s.config.Application
	s.config = cfg
	core.LogInfo("configuration reloaded: %d vertices, %s, grid %d", cfg.Geometry.MaxVertices, cfg.Geometry.Primitive, cfg.Grid.Size)
}
