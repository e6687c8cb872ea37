package immediate

import (
	"github.com/spaghettifunk/immediate/engine/renderer/metadata"
)

// LayoutCache remembers the input layout built for each shader identity.
// Entries are never evicted. The layouts belong to the device; the cache
// only keeps their handles.
type LayoutCache struct {
	layouts map[metadata.ShaderID]metadata.InputLayoutID
}

func NewLayoutCache() *LayoutCache {
	return &LayoutCache{
		layouts: make(map[metadata.ShaderID]metadata.InputLayoutID),
	}
}

func (c *LayoutCache) Lookup(shader metadata.ShaderID) (metadata.InputLayoutID, bool) {
	layout, ok := c.layouts[shader]
	return layout, ok
}

// Resolve returns the cached layout for shader or calls build and caches
// its result. Failed builds are not cached.
func (c *LayoutCache) Resolve(shader metadata.ShaderID, build func() (metadata.InputLayoutID, error)) (metadata.InputLayoutID, error) {
	if layout, ok := c.layouts[shader]; ok {
		return layout, nil
	}
	layout, err := build()
	if err != nil {
		return metadata.InvalidInputLayout, err
	}
	c.layouts[shader] = layout
	return layout, nil
}

func (c *LayoutCache) Len() int {
	return len(c.layouts)
}
