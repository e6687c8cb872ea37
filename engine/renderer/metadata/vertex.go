package metadata

import (
	"fmt"
	"unsafe"

	"github.com/spaghettifunk/immediate/engine/math"
)

// Format is the storage format of a single vertex element.
type Format uint32

const (
	FormatUnknown Format = iota
	FormatR32Float
	FormatR32G32Float
	FormatR32G32B32Float
	FormatR32G32B32A32Float
)

// Components returns the number of 32-bit float components in the format.
func (f Format) Components() uint32 {
	switch f {
	case FormatR32Float:
		return 1
	case FormatR32G32Float:
		return 2
	case FormatR32G32B32Float:
		return 3
	case FormatR32G32B32A32Float:
		return 4
	}
	return 0
}

// Size returns the size of one element of the format in bytes.
func (f Format) Size() uint32 {
	return f.Components() * 4
}

func (f Format) String() string {
	switch f {
	case FormatR32Float:
		return "R32_FLOAT"
	case FormatR32G32Float:
		return "R32G32_FLOAT"
	case FormatR32G32B32Float:
		return "R32G32B32_FLOAT"
	case FormatR32G32B32A32Float:
		return "R32G32B32A32_FLOAT"
	}
	return "UNKNOWN"
}

type InputClassification uint8

const (
	InputPerVertexData InputClassification = iota
	InputPerInstanceData
)

/** @brief Places the element directly after the previous one in the same slot. */
const AppendAlignedElement uint32 = 0xffffffff

/**
 * @brief Describes one element of a vertex layout. A list of these is bound
 * against a shader input signature by the device to build an input layout.
 */
type InputElementDesc struct {
	SemanticName         string
	SemanticIndex        uint32
	Format               Format
	InputSlot            uint32
	AlignedByteOffset    uint32
	InputSlotClass       InputClassification
	InstanceDataStepRate uint32
}

/**
 * @brief The vertex record written by immediate geometry.
 * The field order matches ImmediateVertexElements.
 */
type ImmediateVertex struct {
	/** @brief The position of the vertex */
	Position math.Vec3
	/** @brief The colour of the vertex. */
	Color math.Vec4
	/** @brief The texture coordinate of the vertex. */
	TexCoords math.Vec2
}

/** @brief Size in bytes of ImmediateVertex, also its stride in a vertex buffer. */
const ImmediateVertexSize = 36

// ImmediateVertexElements returns the element descriptions of ImmediateVertex.
// A new slice is returned on every call.
func ImmediateVertexElements() []InputElementDesc {
	return []InputElementDesc{
		{
			SemanticName:      "POSITION",
			Format:            FormatR32G32B32Float,
			AlignedByteOffset: AppendAlignedElement,
			InputSlotClass:    InputPerVertexData,
		},
		{
			SemanticName:      "COLOR",
			Format:            FormatR32G32B32A32Float,
			AlignedByteOffset: AppendAlignedElement,
			InputSlotClass:    InputPerVertexData,
		},
		{
			SemanticName:      "TEXCOORD",
			Format:            FormatR32G32Float,
			AlignedByteOffset: AppendAlignedElement,
			InputSlotClass:    InputPerVertexData,
		},
	}
}

// ResolveElementOffsets replaces AppendAlignedElement with concrete byte
// offsets and returns them together with the stride of every input slot used.
func ResolveElementOffsets(elements []InputElementDesc) ([]uint32, map[uint32]uint32, error) {
	offsets := make([]uint32, len(elements))
	strides := make(map[uint32]uint32)
	for i, e := range elements {
		if e.Format.Size() == 0 {
			return nil, nil, fmt.Errorf("element %d (%s%d) has unknown format", i, e.SemanticName, e.SemanticIndex)
		}
		offset := e.AlignedByteOffset
		if offset == AppendAlignedElement {
			offset = strides[e.InputSlot]
		}
		offsets[i] = offset
		if end := offset + e.Format.Size(); end > strides[e.InputSlot] {
			strides[e.InputSlot] = end
		}
	}
	return offsets, strides, nil
}

// VertexBytes views the vertices as raw bytes without copying.
func VertexBytes(vertices []ImmediateVertex) []byte {
	if len(vertices) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&vertices[0])), len(vertices)*int(unsafe.Sizeof(ImmediateVertex{})))
}

// BytesToVertices views b as vertices without copying. Trailing bytes that do
// not form a whole vertex are ignored.
func BytesToVertices(b []byte) []ImmediateVertex {
	n := len(b) / ImmediateVertexSize
	if n == 0 {
		return nil
	}
	return unsafe.Slice((*ImmediateVertex)(unsafe.Pointer(&b[0])), n)
}
