// Package webgpu translates immediate geometry state to WebGPU pipeline
// descriptions. WebGPU has no adjacency or patch list topologies, so those
// are reported as unsupported.
package webgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/spaghettifunk/immediate/engine/core"
	"github.com/spaghettifunk/immediate/engine/renderer/metadata"
)

var vertexFormats = map[metadata.Format]gputypes.VertexFormat{
	metadata.FormatR32Float:          gputypes.VertexFormatFloat32,
	metadata.FormatR32G32Float:       gputypes.VertexFormatFloat32x2,
	metadata.FormatR32G32B32Float:    gputypes.VertexFormatFloat32x3,
	metadata.FormatR32G32B32A32Float: gputypes.VertexFormatFloat32x4,
}

func VertexFormat(format metadata.Format) (gputypes.VertexFormat, error) {
	f, ok := vertexFormats[format]
	if !ok {
		return 0, fmt.Errorf("no webgpu vertex format for %s: %w", format, core.ErrInputLayout)
	}
	return f, nil
}

var topologies = map[metadata.PrimitiveTopology]gputypes.PrimitiveTopology{
	metadata.PrimitiveTopologyPointList:     gputypes.PrimitiveTopologyPointList,
	metadata.PrimitiveTopologyLineList:      gputypes.PrimitiveTopologyLineList,
	metadata.PrimitiveTopologyLineStrip:     gputypes.PrimitiveTopologyLineStrip,
	metadata.PrimitiveTopologyTriangleList:  gputypes.PrimitiveTopologyTriangleList,
	metadata.PrimitiveTopologyTriangleStrip: gputypes.PrimitiveTopologyTriangleStrip,
}

func PrimitiveTopology(topology metadata.PrimitiveTopology) (gputypes.PrimitiveTopology, error) {
	t, ok := topologies[topology]
	if !ok {
		return 0, fmt.Errorf("%s has no webgpu equivalent: %w", topology, core.ErrUnsupportedTopology)
	}
	return t, nil
}

// PrimitiveState returns the primitive state for a topology. Immediate
// geometry is not culled.
func PrimitiveState(topology metadata.PrimitiveTopology) (gputypes.PrimitiveState, error) {
	t, err := PrimitiveTopology(topology)
	if err != nil {
		return gputypes.PrimitiveState{}, err
	}
	return gputypes.PrimitiveState{
		Topology: t,
		CullMode: gputypes.CullModeNone,
	}, nil
}

/**
 * @brief Builds one buffer layout per input slot, in slot order. Elements get
 * the shader location equal to their position in the list.
 */
func VertexBufferLayouts(elements []metadata.InputElementDesc) ([]gputypes.VertexBufferLayout, error) {
	offsets, strides, err := metadata.ResolveElementOffsets(elements)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrInputLayout, err)
	}

	slots := make(map[uint32]*gputypes.VertexBufferLayout)
	for i, e := range elements {
		format, err := VertexFormat(e.Format)
		if err != nil {
			return nil, err
		}
		stepMode := gputypes.VertexStepModeVertex
		if e.InputSlotClass == metadata.InputPerInstanceData {
			stepMode = gputypes.VertexStepModeInstance
		}
		layout, ok := slots[e.InputSlot]
		if !ok {
			layout = &gputypes.VertexBufferLayout{
				ArrayStride: uint64(strides[e.InputSlot]),
				StepMode:    stepMode,
			}
			slots[e.InputSlot] = layout
		} else if layout.StepMode != stepMode {
			return nil, fmt.Errorf("slot %d mixes per-vertex and per-instance data: %w", e.InputSlot, core.ErrInputLayout)
		}
		layout.Attributes = append(layout.Attributes, gputypes.VertexAttribute{
			Format:         format,
			Offset:         uint64(offsets[i]),
			ShaderLocation: uint32(i),
		})
	}

	var layouts []gputypes.VertexBufferLayout
	for slot := uint32(0); slot < metadata.MaxVertexStreams; slot++ {
		if layout, ok := slots[slot]; ok {
			layouts = append(layouts, *layout)
		}
	}
	return layouts, nil
}

// BufferUsage returns the usage of a buffer described by config. Dynamic
// buffers are rewritten through queue writes and need CopyDst.
func BufferUsage(config *metadata.BufferConfig) gputypes.BufferUsage {
	var usage gputypes.BufferUsage
	if config.BindFlags&metadata.BindVertexBuffer != 0 {
		usage |= gputypes.BufferUsageVertex
	}
	if config.BindFlags&metadata.BindIndexBuffer != 0 {
		usage |= gputypes.BufferUsageIndex
	}
	if config.BindFlags&metadata.BindConstantBuffer != 0 {
		usage |= gputypes.BufferUsageUniform
	}
	if config.Usage == metadata.BufferUsageDynamic || config.CPUAccessFlags&metadata.CPUAccessWrite != 0 {
		usage |= gputypes.BufferUsageCopyDst
	}
	return usage
}
