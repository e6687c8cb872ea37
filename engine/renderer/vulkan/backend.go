package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/immediate/engine/core"
	"github.com/spaghettifunk/immediate/engine/renderer/metadata"
)

/** @brief Identifies the graphics pipeline a draw needs. */
type PipelineKey struct {
	Shader             metadata.ShaderID
	InputLayout        metadata.InputLayoutID
	Topology           vk.PrimitiveTopology
	PatchControlPoints uint32
}

/**
 * @brief Builds the graphics pipeline for a key. The renderer calls it once
 * per key and caches the result; the vertex input state is the one created
 * by CreateInputLayout.
 */
type PipelineBuilder func(key PipelineKey, shader vk.ShaderModule, input *VertexInputState) (vk.Pipeline, error)

type vulkanShader struct {
	program metadata.Shader
	module  vk.ShaderModule
}

type vulkanLayout struct {
	shader metadata.ShaderID
	input  *VertexInputState
}

/**
 * @brief Records immediate draws into an application owned command buffer.
 * Instance, device, swapchain and render pass setup stay with the
 * application; this type fills the resource and draw side of the renderer
 * interfaces on top of them.
 */
type VulkanRenderer struct {
	FrameNumber uint64

	context  *VulkanContext
	builder  PipelineBuilder
	inFrame  bool
	appName  string
	width    uint32
	height   uint32
	shutdown bool

	nextResource metadata.ResourceID
	buffers      map[metadata.ResourceID]*renamedBuffer

	shaders      map[metadata.ShaderID]*vulkanShader
	vertexShader metadata.ShaderID
	layouts      []vulkanLayout
	pipelines    map[PipelineKey]vk.Pipeline

	desired metadata.InputAssemblerState
}

func New(context *VulkanContext, builder PipelineBuilder) *VulkanRenderer {
	if context.FramesInFlight == 0 {
		context.FramesInFlight = 2
	}
	return &VulkanRenderer{
		context:      context,
		builder:      builder,
		buffers:      make(map[metadata.ResourceID]*renamedBuffer),
		shaders:      make(map[metadata.ShaderID]*vulkanShader),
		vertexShader: metadata.NilShader,
		pipelines:    make(map[PipelineKey]vk.Pipeline),
		desired:      metadata.NewInputAssemblerState(),
	}
}

func (vr *VulkanRenderer) Initialize(appName string, appWidth, appHeight uint32) error {
	if vr.context.Device == nil || vr.context.PhysicalDevice == nil {
		return fmt.Errorf("vulkan renderer for '%s' needs a device: %w", appName, core.ErrInvalidResource)
	}
	vr.appName = appName
	vr.width = appWidth
	vr.height = appHeight
	vr.context.QueryMemoryProperties()
	core.LogInfo("Vulkan renderer initialized (%d memory types, %d frames in flight)",
		vr.context.MemoryProperties.MemoryTypeCount, vr.context.FramesInFlight)
	return nil
}

// Shutdown destroys the buffers and pipelines the renderer created. The
// device must be idle.
func (vr *VulkanRenderer) Shutdown() error {
	for id, b := range vr.buffers {
		for _, c := range b.copies {
			c.destroy(vr.context)
		}
		delete(vr.buffers, id)
	}
	for key, p := range vr.pipelines {
		vk.DestroyPipeline(vr.context.Device, p, nil)
		delete(vr.pipelines, key)
	}
	vr.shutdown = true
	core.LogInfo("Vulkan renderer shut down after %d frames", vr.FrameNumber)
	return nil
}

func (vr *VulkanRenderer) Resized(width, height uint32) error {
	vr.width = width
	vr.height = height
	return nil
}

func (vr *VulkanRenderer) BeginFrame(deltaTime float64) error {
	if vr.inFrame {
		return fmt.Errorf("frame %d already begun", vr.FrameNumber)
	}
	if vr.context.CommandBuffer == nil {
		return fmt.Errorf("no command buffer to record frame %d: %w", vr.FrameNumber, core.ErrInvalidResource)
	}
	vr.inFrame = true
	return nil
}

func (vr *VulkanRenderer) EndFrame(deltaTime float64) error {
	if !vr.inFrame {
		return fmt.Errorf("frame %d was not begun", vr.FrameNumber)
	}
	vr.inFrame = false
	vr.FrameNumber++
	return nil
}

func (vr *VulkanRenderer) IsMultithreaded() bool {
	return false
}

// SetCommandBuffer switches the command buffer draws are recorded into,
// typically once per swapchain image.
func (vr *VulkanRenderer) SetCommandBuffer(commandBuffer vk.CommandBuffer) {
	vr.context.CommandBuffer = commandBuffer
}

func (vr *VulkanRenderer) CreateVertexBuffer(config *metadata.BufferConfig, initial []byte) (metadata.ResourceID, error) {
	if config == nil || config.ByteWidth == 0 {
		return metadata.InvalidResource, fmt.Errorf("zero sized buffer: %w", core.ErrBufferAllocation)
	}

	copies := uint32(1)
	if config.Usage == metadata.BufferUsageDynamic {
		copies = vr.context.FramesInFlight
	}
	usage := BufferUsage(config.BindFlags)
	properties := MemoryProperties(config, initial != nil)

	resource := &renamedBuffer{}
	for i := uint32(0); i < copies; i++ {
		b, err := createBuffer(vr.context, uint64(config.ByteWidth), usage, properties)
		if err != nil {
			for _, c := range resource.copies {
				c.destroy(vr.context)
			}
			return metadata.InvalidResource, fmt.Errorf("vertex buffer of %d bytes: %w", config.ByteWidth, err)
		}
		resource.copies = append(resource.copies, b)
	}

	if initial != nil {
		b := resource.active()
		data, err := b.bytes(vr.context)
		if err != nil {
			for _, c := range resource.copies {
				c.destroy(vr.context)
			}
			return metadata.InvalidResource, err
		}
		copy(data, initial)
		b.unmap(vr.context)
	}

	id := vr.nextResource
	vr.nextResource++
	vr.buffers[id] = resource
	return id, nil
}

func (vr *VulkanRenderer) DeleteResource(id metadata.ResourceID) error {
	resource, ok := vr.buffers[id]
	if !ok {
		return fmt.Errorf("buffer %d: %w", id, core.ErrInvalidResource)
	}
	for _, c := range resource.copies {
		c.destroy(vr.context)
	}
	delete(vr.buffers, id)
	return nil
}

func (vr *VulkanRenderer) MapResource(id metadata.ResourceID, subresource uint32, mapType metadata.MapType) ([]byte, error) {
	resource, ok := vr.buffers[id]
	if !ok || subresource != 0 {
		return nil, fmt.Errorf("buffer %d subresource %d: %w", id, subresource, core.ErrInvalidResource)
	}
	if resource.mapped {
		return nil, fmt.Errorf("buffer %d: %w", id, core.ErrResourceMapped)
	}
	b := resource.active()
	if mapType == metadata.MapWriteDiscard {
		b = resource.discard()
	}
	data, err := b.bytes(vr.context)
	if err != nil {
		return nil, err
	}
	resource.mapped = true
	return data, nil
}

func (vr *VulkanRenderer) UnmapResource(id metadata.ResourceID, subresource uint32) error {
	resource, ok := vr.buffers[id]
	if !ok {
		return fmt.Errorf("buffer %d: %w", id, core.ErrInvalidResource)
	}
	if !resource.mapped {
		return fmt.Errorf("buffer %d: %w", id, core.ErrResourceNotMapped)
	}
	resource.active().unmap(vr.context)
	resource.mapped = false
	return nil
}

// RegisterShader makes a compiled vertex shader module known to the renderer.
func (vr *VulkanRenderer) RegisterShader(name string, module vk.ShaderModule, signature []metadata.ShaderInput) metadata.ShaderID {
	shader := &vulkanShader{
		program: metadata.Shader{
			ID:        metadata.NewShaderID(),
			Name:      name,
			Stage:     metadata.ShaderStageVertex,
			Signature: append([]metadata.ShaderInput(nil), signature...),
		},
		module: module,
	}
	vr.shaders[shader.program.ID] = shader
	return shader.program.ID
}

func (vr *VulkanRenderer) BindVertexShader(id metadata.ShaderID) error {
	if !id.IsNil() {
		if _, ok := vr.shaders[id]; !ok {
			return fmt.Errorf("shader %s is not registered: %w", id, core.ErrInvalidResource)
		}
	}
	vr.vertexShader = id
	return nil
}

func (vr *VulkanRenderer) VertexShader() metadata.ShaderID {
	return vr.vertexShader
}

func (vr *VulkanRenderer) CreateInputLayout(elements []metadata.InputElementDesc, shader metadata.ShaderID) (metadata.InputLayoutID, error) {
	program, ok := vr.shaders[shader]
	if !ok {
		return metadata.InvalidInputLayout, fmt.Errorf("shader %s is not registered: %w", shader, core.ErrInvalidResource)
	}
	if input, missing := program.program.MissingInput(elements); missing {
		return metadata.InvalidInputLayout, fmt.Errorf("shader '%s' reads %s%d: %w",
			program.program.Name, input.SemanticName, input.SemanticIndex, core.ErrInputLayout)
	}
	input, err := NewVertexInputState(elements)
	if err != nil {
		return metadata.InvalidInputLayout, err
	}
	vr.layouts = append(vr.layouts, vulkanLayout{shader: shader, input: input})
	return metadata.InputLayoutID(len(vr.layouts) - 1), nil
}

func (vr *VulkanRenderer) InputAssembler() *metadata.InputAssemblerState {
	return &vr.desired
}

/**
 * @brief Binds the pipeline matching the desired layout and topology,
 * building it on first use, and binds every vertex stream.
 */
func (vr *VulkanRenderer) ApplyInputResources() error {
	state := &vr.desired
	if !state.InputLayout.IsValid() || int(state.InputLayout) >= len(vr.layouts) {
		return fmt.Errorf("layout %d: %w", state.InputLayout, core.ErrInputLayout)
	}
	layout := vr.layouts[state.InputLayout]
	shader, ok := vr.shaders[layout.shader]
	if !ok || layout.shader != vr.vertexShader {
		return fmt.Errorf("layout %d was built for another shader: %w", state.InputLayout, core.ErrInputLayout)
	}

	topology, controlPoints, err := PrimitiveTopology(state.Topology)
	if err != nil {
		return err
	}
	key := PipelineKey{
		Shader:             layout.shader,
		InputLayout:        state.InputLayout,
		Topology:           topology,
		PatchControlPoints: controlPoints,
	}
	pipeline, ok := vr.pipelines[key]
	if !ok {
		if vr.builder == nil {
			return fmt.Errorf("no pipeline builder for %s: %w", state.Topology, core.ErrUnsupportedTopology)
		}
		pipeline, err = vr.builder(key, shader.module, layout.input)
		if err != nil {
			return fmt.Errorf("failed to build pipeline for %s: %w", state.Topology, err)
		}
		vr.pipelines[key] = pipeline
	}

	cmd := vr.context.CommandBuffer
	vk.CmdBindPipeline(cmd, vk.PipelineBindPointGraphics, pipeline)
	for _, slot := range state.BoundSlots() {
		binding := state.VertexBuffers[slot]
		resource, ok := vr.buffers[binding.Resource]
		if !ok {
			return fmt.Errorf("vertex stream %d: %w", slot, core.ErrInvalidResource)
		}
		vk.CmdBindVertexBuffers(cmd, slot, 1, []vk.Buffer{resource.active().Handle}, []vk.DeviceSize{vk.DeviceSize(binding.Offset)})
	}
	return nil
}

func (vr *VulkanRenderer) Draw(vertexCount, startVertex uint32) error {
	if !vr.inFrame {
		return fmt.Errorf("draw outside of a frame: %w", core.ErrInvalidResource)
	}
	vk.CmdDraw(vr.context.CommandBuffer, vertexCount, 1, startVertex, 0)
	return nil
}
