package vulkan

import (
	vk "github.com/goki/vulkan"
)

/**
 * @brief The Vulkan objects an application hands to the renderer. They are
 * owned by the application; the renderer never destroys them.
 */
type VulkanContext struct {
	PhysicalDevice vk.PhysicalDevice
	Device         vk.Device
	// CommandBuffer is the buffer draws are recorded into. It must be in the
	// recording state with a render pass begun while a frame is in progress.
	CommandBuffer vk.CommandBuffer

	// FramesInFlight is how many frames the GPU may still be reading when a
	// write-discard map happens. Each dynamic buffer keeps that many copies.
	FramesInFlight uint32

	MemoryProperties vk.PhysicalDeviceMemoryProperties
}

// QueryMemoryProperties fills MemoryProperties from the physical device.
func (vc *VulkanContext) QueryMemoryProperties() {
	vk.GetPhysicalDeviceMemoryProperties(vc.PhysicalDevice, &vc.MemoryProperties)
	vc.MemoryProperties.Deref()
	for i := uint32(0); i < vc.MemoryProperties.MemoryTypeCount; i++ {
		vc.MemoryProperties.MemoryTypes[i].Deref()
	}
}

// FindMemoryIndex returns the first memory type allowed by typeFilter that
// has all of propertyFlags, or -1.
func FindMemoryIndex(properties *vk.PhysicalDeviceMemoryProperties, typeFilter uint32, propertyFlags vk.MemoryPropertyFlagBits) int32 {
	for i := uint32(0); i < properties.MemoryTypeCount; i++ {
		// Check each memory type to see if its bit is set to 1.
		if (typeFilter&(1<<i)) != 0 && (vk.MemoryPropertyFlagBits(properties.MemoryTypes[i].PropertyFlags)&propertyFlags) == propertyFlags {
			return int32(i)
		}
	}
	return -1
}
