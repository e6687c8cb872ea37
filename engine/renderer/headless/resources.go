package headless

import (
	"fmt"

	"github.com/spaghettifunk/immediate/engine/core"
	"github.com/spaghettifunk/immediate/engine/renderer/metadata"
)

func (hr *HeadlessRenderer) CreateVertexBuffer(config *metadata.BufferConfig, initial []byte) (metadata.ResourceID, error) {
	if config == nil || config.ByteWidth == 0 {
		return metadata.InvalidResource, fmt.Errorf("zero sized buffer: %w", core.ErrBufferAllocation)
	}
	if config.BindFlags&metadata.BindVertexBuffer == 0 {
		return metadata.InvalidResource, fmt.Errorf("buffer is not bindable as a vertex buffer: %w", core.ErrBufferAllocation)
	}
	if config.Usage == metadata.BufferUsageImmutable && initial == nil {
		return metadata.InvalidResource, fmt.Errorf("immutable buffer needs initial data: %w", core.ErrBufferAllocation)
	}
	size := uint64(config.ByteWidth)
	if hr.memoryLimit > 0 && hr.allocated+size > hr.memoryLimit {
		return metadata.InvalidResource, fmt.Errorf("%d bytes requested, %d of %d in use: %w",
			size, hr.allocated, hr.memoryLimit, core.ErrBufferAllocation)
	}

	b := &buffer{
		config: *config,
		data:   make([]byte, config.ByteWidth),
	}
	copy(b.data, initial)

	id := hr.nextResource
	hr.nextResource++
	hr.buffers[id] = b
	hr.allocated += size
	hr.stats.BuffersCreated++
	core.LogDebug("Headless buffer %d created (%d bytes)", id, config.ByteWidth)
	return id, nil
}

func (hr *HeadlessRenderer) DeleteResource(id metadata.ResourceID) error {
	b, ok := hr.buffers[id]
	if !ok {
		return fmt.Errorf("buffer %d: %w", id, core.ErrInvalidResource)
	}
	delete(hr.buffers, id)
	hr.allocated -= uint64(b.config.ByteWidth)
	hr.stats.BuffersDeleted++
	return nil
}

func (hr *HeadlessRenderer) MapResource(id metadata.ResourceID, subresource uint32, mapType metadata.MapType) ([]byte, error) {
	b, ok := hr.buffers[id]
	if !ok {
		return nil, fmt.Errorf("buffer %d: %w", id, core.ErrInvalidResource)
	}
	if subresource != 0 {
		return nil, fmt.Errorf("buffer %d has no subresource %d: %w", id, subresource, core.ErrInvalidResource)
	}
	if b.mapped {
		return nil, fmt.Errorf("buffer %d: %w", id, core.ErrResourceMapped)
	}
	if mapType.Writes() && b.config.CPUAccessFlags&metadata.CPUAccessWrite == 0 {
		return nil, fmt.Errorf("buffer %d is not CPU writable: %w", id, core.ErrInvalidResource)
	}
	if mapType == metadata.MapWriteDiscard || mapType == metadata.MapWriteNoOverwrite {
		if b.config.Usage != metadata.BufferUsageDynamic {
			return nil, fmt.Errorf("buffer %d is not dynamic, cannot map %s: %w", id, mapType, core.ErrInvalidResource)
		}
	}

	if mapType == metadata.MapWriteDiscard {
		// Draws recorded earlier keep their own copy, so the previous
		// contents can be dropped.
		b.data = make([]byte, b.config.ByteWidth)
		hr.stats.Discards++
	}
	b.mapped = true
	b.mapType = mapType
	hr.stats.Maps++
	return b.data, nil
}

func (hr *HeadlessRenderer) UnmapResource(id metadata.ResourceID, subresource uint32) error {
	b, ok := hr.buffers[id]
	if !ok {
		return fmt.Errorf("buffer %d: %w", id, core.ErrInvalidResource)
	}
	if !b.mapped {
		return fmt.Errorf("buffer %d: %w", id, core.ErrResourceNotMapped)
	}
	b.mapped = false
	return nil
}
