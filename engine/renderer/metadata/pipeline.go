package metadata

import (
	"fmt"
)

/** @brief Number of vertex buffer slots of the input assembler. */
const MaxVertexStreams = 32

/**
 * @brief A vertex buffer bound to an input assembler slot.
 */
type VertexBufferBinding struct {
	Resource ResourceID
	/** @brief Byte offset of the first vertex. */
	Offset uint32
	/** @brief Distance in bytes between two vertices. */
	Stride uint32
}

/**
 * @brief The input assembler configuration of a pipeline: which layout,
 * which topology and which vertex buffers the next draw uses.
 */
type InputAssemblerState struct {
	InputLayout   InputLayoutID
	Topology      PrimitiveTopology
	VertexBuffers [MaxVertexStreams]VertexBufferBinding
}

func NewInputAssemblerState() InputAssemblerState {
	s := InputAssemblerState{}
	s.Clear()
	return s
}

// Clear unbinds all inputs.
func (s *InputAssemblerState) Clear() {
	s.InputLayout = InvalidInputLayout
	s.Topology = PrimitiveTopologyUndefined
	for i := range s.VertexBuffers {
		s.VertexBuffers[i] = VertexBufferBinding{Resource: InvalidResource}
	}
}

func (s *InputAssemblerState) SetInputLayout(layout InputLayoutID) {
	s.InputLayout = layout
}

func (s *InputAssemblerState) SetPrimitiveTopology(topology PrimitiveTopology) {
	s.Topology = topology
}

func (s *InputAssemblerState) SetVertexBuffer(slot uint32, resource ResourceID, offset, stride uint32) error {
	if slot >= MaxVertexStreams {
		return fmt.Errorf("vertex buffer slot %d out of range (max=%d)", slot, MaxVertexStreams-1)
	}
	s.VertexBuffers[slot] = VertexBufferBinding{
		Resource: resource,
		Offset:   offset,
		Stride:   stride,
	}
	return nil
}

// BoundSlots returns the slots that have a vertex buffer bound, in order.
func (s *InputAssemblerState) BoundSlots() []uint32 {
	var slots []uint32
	for i, b := range s.VertexBuffers {
		if b.Resource.IsValid() {
			slots = append(slots, uint32(i))
		}
	}
	return slots
}
