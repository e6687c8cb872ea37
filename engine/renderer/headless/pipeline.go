package headless

import (
	"fmt"

	"github.com/spaghettifunk/immediate/engine/core"
	"github.com/spaghettifunk/immediate/engine/renderer/metadata"
)

// RegisterShader makes a vertex shader with the given input signature known
// to the backend and returns its identity.
func (hr *HeadlessRenderer) RegisterShader(name string, signature []metadata.ShaderInput) metadata.ShaderID {
	shader := &metadata.Shader{
		ID:        metadata.NewShaderID(),
		Name:      name,
		Stage:     metadata.ShaderStageVertex,
		Signature: append([]metadata.ShaderInput(nil), signature...),
	}
	hr.shaders[shader.ID] = shader
	core.LogDebug("Headless shader '%s' registered as %s", name, shader.ID)
	return shader.ID
}

// BindVertexShader selects the program used by the following draws.
// Binding NilShader unbinds the stage.
func (hr *HeadlessRenderer) BindVertexShader(id metadata.ShaderID) error {
	if !id.IsNil() {
		if _, ok := hr.shaders[id]; !ok {
			return fmt.Errorf("shader %s is not registered: %w", id, core.ErrInvalidResource)
		}
	}
	hr.vertexShader = id
	return nil
}

func (hr *HeadlessRenderer) VertexShader() metadata.ShaderID {
	return hr.vertexShader
}

func (hr *HeadlessRenderer) InputAssembler() *metadata.InputAssemblerState {
	return &hr.desired
}

/**
 * @brief Creates an input layout if every input read by the shader is
 * provided by an element with the same semantic and enough components.
 */
func (hr *HeadlessRenderer) CreateInputLayout(elements []metadata.InputElementDesc, shader metadata.ShaderID) (metadata.InputLayoutID, error) {
	program, ok := hr.shaders[shader]
	if !ok {
		return metadata.InvalidInputLayout, fmt.Errorf("shader %s is not registered: %w", shader, core.ErrInvalidResource)
	}
	offsets, strides, err := metadata.ResolveElementOffsets(elements)
	if err != nil {
		return metadata.InvalidInputLayout, fmt.Errorf("%w: %w", core.ErrInputLayout, err)
	}

	if input, missing := program.MissingInput(elements); missing {
		return metadata.InvalidInputLayout, fmt.Errorf("shader '%s' reads %s%d: %w",
			program.Name, input.SemanticName, input.SemanticIndex, core.ErrInputLayout)
	}

	hr.layouts = append(hr.layouts, inputLayout{
		elements: append([]metadata.InputElementDesc(nil), elements...),
		offsets:  offsets,
		strides:  strides,
		shader:   shader,
	})
	hr.stats.LayoutsCreated++
	return metadata.InputLayoutID(len(hr.layouts) - 1), nil
}

// ApplyInputResources commits the desired input assembler state.
func (hr *HeadlessRenderer) ApplyInputResources() error {
	hr.applied = hr.desired
	hr.stats.Applies++
	return nil
}

func (hr *HeadlessRenderer) Draw(vertexCount, startVertex uint32) error {
	state := hr.applied
	if hr.vertexShader.IsNil() {
		return core.ErrNoVertexShader
	}
	if !state.InputLayout.IsValid() || int(state.InputLayout) >= len(hr.layouts) {
		return fmt.Errorf("layout %d: %w", state.InputLayout, core.ErrInputLayout)
	}
	if hr.layouts[state.InputLayout].shader != hr.vertexShader {
		return fmt.Errorf("layout %d was built for another shader: %w", state.InputLayout, core.ErrInputLayout)
	}
	if !state.Topology.IsValid() {
		return fmt.Errorf("%s: %w", state.Topology, core.ErrUnsupportedTopology)
	}

	binding := state.VertexBuffers[0]
	b, ok := hr.buffers[binding.Resource]
	if !ok {
		return fmt.Errorf("vertex stream 0: %w", core.ErrInvalidResource)
	}
	if b.mapped {
		return fmt.Errorf("vertex buffer %d: %w", binding.Resource, core.ErrResourceMapped)
	}
	start := uint64(binding.Offset) + uint64(startVertex)*uint64(binding.Stride)
	end := start + uint64(vertexCount)*uint64(binding.Stride)
	if end > uint64(len(b.data)) {
		return fmt.Errorf("draw reads bytes %d..%d of a %d byte buffer: %w", start, end, len(b.data), core.ErrInvalidResource)
	}

	hr.draws = append(hr.draws, DrawCall{
		VertexCount: vertexCount,
		StartVertex: startVertex,
		Topology:    state.Topology,
		InputLayout: state.InputLayout,
		Shader:      hr.vertexShader,
		Data:        append([]byte(nil), b.data[start:end]...),
	})
	hr.stats.Draws++
	hr.stats.VerticesDrawn += uint64(vertexCount)
	return nil
}
