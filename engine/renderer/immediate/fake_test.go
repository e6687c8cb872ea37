package immediate

import (
	"errors"
	"fmt"

	"github.com/spaghettifunk/immediate/engine/renderer/metadata"
)

var errRefused = errors.New("out of device memory")

// recorder is a device and pipeline that keeps a log of every call.
type recorder struct {
	calls []string

	nextResource metadata.ResourceID
	nextLayout   metadata.InputLayoutID
	buffers      map[metadata.ResourceID][]byte
	configs      map[metadata.ResourceID]metadata.BufferConfig

	shader metadata.ShaderID
	ia     metadata.InputAssemblerState

	refuseBuffers bool
	refuseLayouts bool

	// applied is the input assembler state seen at the last apply.
	applied metadata.InputAssemblerState
	draws   [][2]uint32
}

func newRecorder() *recorder {
	return &recorder{
		nextResource: 1,
		nextLayout:   1,
		buffers:      make(map[metadata.ResourceID][]byte),
		configs:      make(map[metadata.ResourceID]metadata.BufferConfig),
		shader:       metadata.NewShaderID(),
		ia:           metadata.NewInputAssemblerState(),
	}
}

func (r *recorder) log(format string, args ...interface{}) {
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

func (r *recorder) count(prefix string) int {
	n := 0
	for _, c := range r.calls {
		if len(c) >= len(prefix) && c[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}

func (r *recorder) CreateVertexBuffer(config *metadata.BufferConfig, initial []byte) (metadata.ResourceID, error) {
	r.log("create %d", config.ByteWidth)
	if r.refuseBuffers {
		return metadata.InvalidResource, errRefused
	}
	id := r.nextResource
	r.nextResource++
	r.buffers[id] = make([]byte, config.ByteWidth)
	r.configs[id] = *config
	return id, nil
}

func (r *recorder) DeleteResource(id metadata.ResourceID) error {
	r.log("delete %d", id)
	delete(r.buffers, id)
	return nil
}

func (r *recorder) CreateInputLayout(elements []metadata.InputElementDesc, shader metadata.ShaderID) (metadata.InputLayoutID, error) {
	r.log("layout %d", len(elements))
	if r.refuseLayouts {
		return metadata.InvalidInputLayout, errRefused
	}
	id := r.nextLayout
	r.nextLayout++
	return id, nil
}

func (r *recorder) MapResource(id metadata.ResourceID, subresource uint32, mapType metadata.MapType) ([]byte, error) {
	r.log("map %d %s", id, mapType)
	return r.buffers[id], nil
}

func (r *recorder) UnmapResource(id metadata.ResourceID, subresource uint32) error {
	r.log("unmap %d", id)
	return nil
}

func (r *recorder) VertexShader() metadata.ShaderID {
	return r.shader
}

func (r *recorder) InputAssembler() *metadata.InputAssemblerState {
	return &r.ia
}

func (r *recorder) ApplyInputResources() error {
	r.log("apply")
	r.applied = r.ia
	return nil
}

func (r *recorder) Draw(vertexCount, startVertex uint32) error {
	r.log("draw %d %d", vertexCount, startVertex)
	r.draws = append(r.draws, [2]uint32{vertexCount, startVertex})
	return nil
}
