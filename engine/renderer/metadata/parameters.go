package metadata

import (
	"sync"

	"github.com/spaghettifunk/immediate/engine/math"
)

/**
 * @brief Supplies named shader parameters to draws. Geometry that needs no
 * parameters accepts it only to keep the execute signature uniform.
 */
type ParameterManager interface {
	SetVectorParameter(name string, value math.Vec4)
	VectorParameter(name string) (math.Vec4, bool)
	SetMatrixParameter(name string, value math.Mat4)
	MatrixParameter(name string) (math.Mat4, bool)
}

// ParameterStore is a map backed ParameterManager.
type ParameterStore struct {
	mu       sync.RWMutex
	vectors  map[string]math.Vec4
	matrices map[string]math.Mat4
}

func NewParameterStore() *ParameterStore {
	return &ParameterStore{
		vectors:  make(map[string]math.Vec4),
		matrices: make(map[string]math.Mat4),
	}
}

func (p *ParameterStore) SetVectorParameter(name string, value math.Vec4) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.vectors[name] = value
}

func (p *ParameterStore) VectorParameter(name string) (math.Vec4, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.vectors[name]
	return v, ok
}

func (p *ParameterStore) SetMatrixParameter(name string, value math.Mat4) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.matrices[name] = value
}

func (p *ParameterStore) MatrixParameter(name string) (math.Mat4, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	m, ok := p.matrices[name]
	return m, ok
}
