package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/immediate/engine/core"
)

/** @brief A buffer and the memory bound to it. */
type VulkanBuffer struct {
	Handle vk.Buffer
	Memory vk.DeviceMemory
	Size   uint64
	// mapped points at the host mapping while the buffer is mapped.
	mapped unsafe.Pointer
}

func createBuffer(context *VulkanContext, size uint64, usage vk.BufferUsageFlags, properties vk.MemoryPropertyFlagBits) (*VulkanBuffer, error) {
	b := &VulkanBuffer{
		Handle: vk.NullBuffer,
		Memory: vk.NullDeviceMemory,
		Size:   size,
	}

	bufferInfo := &vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(size),
		Usage:       usage,
		SharingMode: vk.SharingModeExclusive, // NOTE: Only used in one queue.
	}
	if err := resultError("vkCreateBuffer", vk.CreateBuffer(context.Device, bufferInfo, nil, &b.Handle)); err != nil {
		return nil, err
	}

	// Gather memory requirements.
	var requirements vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(context.Device, b.Handle, &requirements)
	requirements.Deref()

	memoryIndex := FindMemoryIndex(&context.MemoryProperties, requirements.MemoryTypeBits, properties)
	if memoryIndex == -1 {
		b.destroy(context)
		return nil, fmt.Errorf("no memory type for buffer of %d bytes: %w", size, core.ErrBufferAllocation)
	}

	allocateInfo := &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  requirements.Size,
		MemoryTypeIndex: uint32(memoryIndex),
	}
	if err := resultError("vkAllocateMemory", vk.AllocateMemory(context.Device, allocateInfo, nil, &b.Memory)); err != nil {
		b.destroy(context)
		return nil, err
	}
	if err := resultError("vkBindBufferMemory", vk.BindBufferMemory(context.Device, b.Handle, b.Memory, 0)); err != nil {
		b.destroy(context)
		return nil, err
	}
	return b, nil
}

// bytes maps the whole buffer and returns the mapping as a byte slice.
func (b *VulkanBuffer) bytes(context *VulkanContext) ([]byte, error) {
	if b.mapped == nil {
		var data unsafe.Pointer
		if err := resultError("vkMapMemory", vk.MapMemory(context.Device, b.Memory, 0, vk.DeviceSize(b.Size), 0, &data)); err != nil {
			return nil, err
		}
		b.mapped = data
	}
	return unsafe.Slice((*byte)(b.mapped), b.Size), nil
}

func (b *VulkanBuffer) unmap(context *VulkanContext) {
	if b.mapped == nil {
		return
	}
	vk.UnmapMemory(context.Device, b.Memory)
	b.mapped = nil
}

func (b *VulkanBuffer) destroy(context *VulkanContext) {
	b.unmap(context)
	if b.Handle != vk.NullBuffer {
		vk.DestroyBuffer(context.Device, b.Handle, nil)
		b.Handle = vk.NullBuffer
	}
	if b.Memory != vk.NullDeviceMemory {
		vk.FreeMemory(context.Device, b.Memory, nil)
		b.Memory = vk.NullDeviceMemory
	}
}

/**
 * @brief A resource made of one buffer per frame in flight. A write-discard
 * map moves on to the next copy so the GPU can keep reading the previous one.
 */
type renamedBuffer struct {
	copies  []*VulkanBuffer
	current int
	mapped  bool
}

func (r *renamedBuffer) active() *VulkanBuffer {
	return r.copies[r.current]
}

func (r *renamedBuffer) discard() *VulkanBuffer {
	r.current = (r.current + 1) % len(r.copies)
	return r.active()
}
