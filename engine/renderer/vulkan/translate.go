package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/immediate/engine/core"
	"github.com/spaghettifunk/immediate/engine/renderer/metadata"
)

var vertexFormats = map[metadata.Format]vk.Format{
	metadata.FormatR32Float:          vk.FormatR32Sfloat,
	metadata.FormatR32G32Float:       vk.FormatR32g32Sfloat,
	metadata.FormatR32G32B32Float:    vk.FormatR32g32b32Sfloat,
	metadata.FormatR32G32B32A32Float: vk.FormatR32g32b32a32Sfloat,
}

// VertexFormat returns the Vulkan format of a vertex element format.
func VertexFormat(format metadata.Format) (vk.Format, error) {
	f, ok := vertexFormats[format]
	if !ok {
		return vk.FormatUndefined, fmt.Errorf("no vulkan vertex format for %s: %w", format, core.ErrInputLayout)
	}
	return f, nil
}

var topologies = map[metadata.PrimitiveTopology]vk.PrimitiveTopology{
	metadata.PrimitiveTopologyPointList:        vk.PrimitiveTopologyPointList,
	metadata.PrimitiveTopologyLineList:         vk.PrimitiveTopologyLineList,
	metadata.PrimitiveTopologyLineStrip:        vk.PrimitiveTopologyLineStrip,
	metadata.PrimitiveTopologyTriangleList:     vk.PrimitiveTopologyTriangleList,
	metadata.PrimitiveTopologyTriangleStrip:    vk.PrimitiveTopologyTriangleStrip,
	metadata.PrimitiveTopologyLineListAdj:      vk.PrimitiveTopologyLineListWithAdjacency,
	metadata.PrimitiveTopologyLineStripAdj:     vk.PrimitiveTopologyLineStripWithAdjacency,
	metadata.PrimitiveTopologyTriangleListAdj:  vk.PrimitiveTopologyTriangleListWithAdjacency,
	metadata.PrimitiveTopologyTriangleStripAdj: vk.PrimitiveTopologyTriangleStripWithAdjacency,
}

/**
 * @brief Translates a topology to Vulkan. Patch lists all map to the single
 * Vulkan patch list topology; their control point count is returned
 * separately since it belongs to the tessellation state.
 */
func PrimitiveTopology(topology metadata.PrimitiveTopology) (vk.PrimitiveTopology, uint32, error) {
	if topology.IsPatchList() {
		return vk.PrimitiveTopologyPatchList, topology.ControlPoints(), nil
	}
	t, ok := topologies[topology]
	if !ok {
		return vk.PrimitiveTopologyPointList, 0, fmt.Errorf("%s: %w", topology, core.ErrUnsupportedTopology)
	}
	return t, 0, nil
}

/**
 * @brief The vertex input state of a pipeline built from element
 * descriptions. Each element is bound to the shader location equal to its
 * position in the list.
 */
type VertexInputState struct {
	Bindings   []vk.VertexInputBindingDescription
	Attributes []vk.VertexInputAttributeDescription
}

func NewVertexInputState(elements []metadata.InputElementDesc) (*VertexInputState, error) {
	offsets, strides, err := metadata.ResolveElementOffsets(elements)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrInputLayout, err)
	}

	state := &VertexInputState{}
	rates := make(map[uint32]metadata.InputClassification)
	for i, e := range elements {
		format, err := VertexFormat(e.Format)
		if err != nil {
			return nil, err
		}
		if rate, ok := rates[e.InputSlot]; ok && rate != e.InputSlotClass {
			return nil, fmt.Errorf("slot %d mixes per-vertex and per-instance data: %w", e.InputSlot, core.ErrInputLayout)
		}
		rates[e.InputSlot] = e.InputSlotClass
		state.Attributes = append(state.Attributes, vk.VertexInputAttributeDescription{
			Location: uint32(i),
			Binding:  e.InputSlot,
			Format:   format,
			Offset:   offsets[i],
		})
	}

	// Bindings are listed in slot order.
	for slot := uint32(0); slot < metadata.MaxVertexStreams; slot++ {
		stride, ok := strides[slot]
		if !ok {
			continue
		}
		rate := vk.VertexInputRateVertex
		if rates[slot] == metadata.InputPerInstanceData {
			rate = vk.VertexInputRateInstance
		}
		state.Bindings = append(state.Bindings, vk.VertexInputBindingDescription{
			Binding:   slot,
			Stride:    stride,
			InputRate: rate,
		})
	}
	return state, nil
}

// CreateInfo returns the pipeline vertex input state referencing s.
func (s *VertexInputState) CreateInfo() vk.PipelineVertexInputStateCreateInfo {
	return vk.PipelineVertexInputStateCreateInfo{
		SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
		VertexBindingDescriptionCount:   uint32(len(s.Bindings)),
		PVertexBindingDescriptions:      s.Bindings,
		VertexAttributeDescriptionCount: uint32(len(s.Attributes)),
		PVertexAttributeDescriptions:    s.Attributes,
	}
}

var bufferUsages = map[metadata.BindFlags]vk.BufferUsageFlagBits{
	metadata.BindVertexBuffer:   vk.BufferUsageVertexBufferBit,
	metadata.BindIndexBuffer:    vk.BufferUsageIndexBufferBit,
	metadata.BindConstantBuffer: vk.BufferUsageUniformBufferBit,
}

// BufferUsage translates bind flags to Vulkan buffer usage.
func BufferUsage(flags metadata.BindFlags) vk.BufferUsageFlags {
	var usage vk.BufferUsageFlagBits
	for flag, bit := range bufferUsages {
		if flags&flag != 0 {
			usage |= bit
		}
	}
	return vk.BufferUsageFlags(usage)
}

// MemoryProperties returns the memory properties a buffer config needs.
// CPU accessible buffers, and buffers seeded with initial data, live in host
// visible coherent memory.
func MemoryProperties(config *metadata.BufferConfig, seeded bool) vk.MemoryPropertyFlagBits {
	if seeded || config.CPUAccessFlags != 0 || config.Usage == metadata.BufferUsageDynamic || config.Usage == metadata.BufferUsageStaging {
		return vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit
	}
	return vk.MemoryPropertyDeviceLocalBit
}
