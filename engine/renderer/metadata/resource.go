package metadata

import "fmt"

/**
 * @brief Handle of a device owned resource. The device allocates and
 * destroys the resource; holders only keep the handle.
 */
type ResourceID int32

/** @brief The handle of no resource. */
const InvalidResource ResourceID = -1

func (r ResourceID) IsValid() bool {
	return r >= 0
}

/**
 * @brief Handle of a device owned input layout.
 */
type InputLayoutID int32

/** @brief The handle of no input layout. */
const InvalidInputLayout InputLayoutID = -1

func (l InputLayoutID) IsValid() bool {
	return l >= 0
}

type BufferUsage int

const (
	/** @brief GPU read/write, no CPU access. */
	BufferUsageDefault BufferUsage = iota
	/** @brief GPU read only, never changes after creation. */
	BufferUsageImmutable
	/** @brief GPU read, CPU write through mapping. */
	BufferUsageDynamic
	/** @brief CPU read/write copy target. */
	BufferUsageStaging
)

type BindFlags uint32

const (
	BindVertexBuffer BindFlags = 1 << iota
	BindIndexBuffer
	BindConstantBuffer
)

type CPUAccessFlags uint32

const (
	CPUAccessWrite CPUAccessFlags = 1 << iota
	CPUAccessRead
)

/**
 * @brief Describes a buffer to be created by the device.
 */
type BufferConfig struct {
	/** @brief The size of the buffer in bytes. */
	ByteWidth uint32
	Usage     BufferUsage
	BindFlags BindFlags
	/** @brief Which kinds of CPU mapping are allowed. */
	CPUAccessFlags CPUAccessFlags
	/** @brief The size of one element, 0 for unstructured buffers. */
	StructureByteStride uint32
}

// SetDefaultVertexBuffer configures a vertex buffer of size bytes. Dynamic
// buffers can be mapped for writing every frame.
func (c *BufferConfig) SetDefaultVertexBuffer(size uint32, dynamic bool) {
	c.ByteWidth = size
	c.BindFlags = BindVertexBuffer
	c.StructureByteStride = 0
	if dynamic {
		c.Usage = BufferUsageDynamic
		c.CPUAccessFlags = CPUAccessWrite
	} else {
		c.Usage = BufferUsageImmutable
		c.CPUAccessFlags = 0
	}
}

// MapType selects how a mapped resource may be accessed.
type MapType int

const (
	MapRead MapType = iota + 1
	MapWrite
	MapReadWrite
	/** @brief Write access; previous contents are undefined afterwards. */
	MapWriteDiscard
	/** @brief Write access; the caller promises not to touch data in use by the GPU. */
	MapWriteNoOverwrite
)

func (m MapType) String() string {
	switch m {
	case MapRead:
		return "read"
	case MapWrite:
		return "write"
	case MapReadWrite:
		return "read_write"
	case MapWriteDiscard:
		return "write_discard"
	case MapWriteNoOverwrite:
		return "write_no_overwrite"
	}
	return fmt.Sprintf("MapType(%d)", int(m))
}

// Writes reports whether the map type grants write access.
func (m MapType) Writes() bool {
	return m == MapWrite || m == MapReadWrite || m == MapWriteDiscard || m == MapWriteNoOverwrite
}
