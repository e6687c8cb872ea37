package immediate

import (
	"sync"

	"github.com/spaghettifunk/immediate/engine/math"
	"github.com/spaghettifunk/immediate/engine/renderer"
	"github.com/spaghettifunk/immediate/engine/renderer/metadata"
)

// SyncGeometry serializes access to an ImmediateGeometry so several
// goroutines can feed the same pass.
type SyncGeometry struct {
	mu       sync.Mutex
	geometry *ImmediateGeometry
}

func NewSyncGeometry(geometry *ImmediateGeometry) *SyncGeometry {
	return &SyncGeometry{geometry: geometry}
}

func (s *SyncGeometry) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.geometry.Reset()
}

func (s *SyncGeometry) AddVertex(vertex metadata.ImmediateVertex) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.geometry.AddVertex(vertex)
}

func (s *SyncGeometry) AddPosition(position math.Vec3) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.geometry.AddPosition(position)
}

func (s *SyncGeometry) AddPositionColorTexCoords(position math.Vec3, color math.Vec4, texcoords math.Vec2) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.geometry.AddPositionColorTexCoords(position, color, texcoords)
}

// AddVertices appends vertices as one batch; no other writer interleaves.
func (s *SyncGeometry) AddVertices(vertices ...metadata.ImmediateVertex) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range vertices {
		s.geometry.AddVertex(v)
	}
}

func (s *SyncGeometry) SetMaxSize(maxVertices uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.geometry.SetMaxSize(maxVertices)
}

func (s *SyncGeometry) Execute(pipeline renderer.Pipeline, params metadata.ParameterManager) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.geometry.Execute(pipeline, params)
}

func (s *SyncGeometry) VertexCount() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.geometry.VertexCount()
}

// Do runs fn with exclusive access to the wrapped geometry.
func (s *SyncGeometry) Do(fn func(g *ImmediateGeometry)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.geometry)
}
