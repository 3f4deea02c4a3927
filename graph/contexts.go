package graph

/*
#include <vulkan/vulkan.h>
*/
import "C"
import (
	"unsafe"

	"render-engine/vulkan"
)

// GraphicsContext is handed to PassGraphics callbacks. It exposes exactly the draw-time operations a pass
// needs and never the raw command buffer, so a pass cannot bypass the executor's barrier/bind bookkeeping.
type GraphicsContext struct {
	cmd           *vulkan.CommandBuffer
	pass          *CompiledPass
	layout        vulkan.PipelineLayout
	Width, Height uint32
}

func (GraphicsContext) isExecutionContext() {}

func (c *GraphicsContext) SetViewport(x, y, w, h float32) {
	c.cmd.SetViewport(x, y, w, h)
}

func (c *GraphicsContext) SetScissor(x, y int32, w, h uint32) {
	c.cmd.SetScissor(x, y, w, h)
}

// BindPipeline binds pipeline and remembers its layout so a later PushConstantsDefault (or a Collaborator's
// own RenderMeshes, which has no other way to learn the layout the pass bound) can push against it without
// the pass having to thread the raw C.VkPipelineLayout value through an interface boundary.
func (c *GraphicsContext) BindPipeline(pipeline *vulkan.Pipeline) {
	c.cmd.BindPipeline(pipeline.Handle)
	c.layout = pipeline.Layout
}

// PipelineLayout returns the layout of the pipeline most recently bound via BindPipeline.
func (c *GraphicsContext) PipelineLayout() vulkan.PipelineLayout {
	return c.layout
}

// Pass returns the compiled pass this context was built for, giving a callback access to its resolved
// ReadHandles/WriteHandles/DescriptorKey — e.g. to hand to gpu.BuildPassDescriptorSet for set-2 binding.
func (c *GraphicsContext) Pass() *CompiledPass { return c.pass }

func (c *GraphicsContext) BindDescriptorSets(layout vulkan.PipelineLayout, firstSet uint32, sets []vulkan.DescriptorSetHandle) {
	c.cmd.BindDescriptorSets(layout, firstSet, sets)
}

func (c *GraphicsContext) BindVertexBuffer(buf *vulkan.Buffer, offset uint64) {
	c.cmd.BindVertexBuffer(buf.Handle, offset)
}

func (c *GraphicsContext) BindIndexBuffer(buf *vulkan.Buffer, offset uint64) {
	c.cmd.BindIndexBuffer(buf.Handle, offset, C.VK_INDEX_TYPE_UINT32)
}

func (c *GraphicsContext) Draw(vertexCount, instanceCount uint32) {
	c.cmd.Draw(vertexCount, instanceCount, 0, 0)
}

func (c *GraphicsContext) DrawIndexed(indexCount, instanceCount uint32) {
	c.cmd.DrawIndexed(indexCount, instanceCount, 0, 0, 0)
}

// DrawIndexedRange issues an indexed draw starting at firstIndex into a combined index buffer — the shape
// scene.Scene.RenderMeshes needs since every mesh's indices live at an offset into one merged buffer rather
// than each owning a dedicated VkBuffer.
func (c *GraphicsContext) DrawIndexedRange(firstIndex, indexCount, instanceCount uint32) {
	c.cmd.DrawIndexed(indexCount, instanceCount, firstIndex, 0, 0)
}

func (c *GraphicsContext) PushConstants(layout vulkan.PipelineLayout, stage vulkan.ShaderStageFlags, data []byte) {
	if len(data) == 0 {
		return
	}
	c.cmd.PushConstants(layout, stage, 0, uint32(len(data)), unsafe.Pointer(&data[0]))
}

// PushConstantsDefault pushes against the layout of the pipeline most recently bound via BindPipeline.
func (c *GraphicsContext) PushConstantsDefault(stage vulkan.ShaderStageFlags, data []byte) {
	c.PushConstants(c.layout, stage, data)
}

// ComputeContext is handed to PassCompute callbacks. A compute pass may declare several kernels
// (PipelineRef.Kernels); the callback resolves whichever one it needs from its own captured
// *gpu.PipelineCache and hands the result to Bind, the same "callback resolves its own pipeline" shape
// GraphicsContext.BindPipeline already uses — graph can't import gpu (gpu imports graph for CompiledGraph),
// so the pipeline-cache lookup can't live here.
type ComputeContext struct {
	cmd    *vulkan.CommandBuffer
	pass   *CompiledPass
	layout vulkan.PipelineLayout
	active string
}

func (ComputeContext) isExecutionContext() {}

// Pass returns the compiled pass this context was built for.
func (c *ComputeContext) Pass() *CompiledPass { return c.pass }

// Bind binds pipeline as the active compute pipeline and remembers kernel/its layout, so a subsequent
// Dispatch/PushConstants/BindDescriptorSets call (and ActiveKernel) reflect whichever kernel the callback
// most recently switched to.
func (c *ComputeContext) Bind(kernel string, pipeline *vulkan.ComputePipeline) {
	c.cmd.BindComputePipeline(pipeline.Handle)
	c.layout = pipeline.Layout
	c.active = kernel
}

// ActiveKernel returns the name most recently passed to Bind, empty until the first Bind call.
func (c *ComputeContext) ActiveKernel() string { return c.active }

// PipelineLayout returns the layout of the kernel most recently bound via Bind.
func (c *ComputeContext) PipelineLayout() vulkan.PipelineLayout { return c.layout }

func (c *ComputeContext) BindDescriptorSets(firstSet uint32, sets []vulkan.DescriptorSetHandle) {
	c.cmd.BindDescriptorSetsCompute(c.layout, firstSet, sets)
}

// PushConstants pushes against the layout of the kernel most recently bound via Bind.
func (c *ComputeContext) PushConstants(stage vulkan.ShaderStageFlags, data []byte) {
	if len(data) == 0 {
		return
	}
	c.cmd.PushConstants(c.layout, stage, 0, uint32(len(data)), unsafe.Pointer(&data[0]))
}

func (c *ComputeContext) Dispatch(groupsX, groupsY, groupsZ uint32) {
	c.cmd.Dispatch(groupsX, groupsY, groupsZ)
}

// RaytracingContext is handed to PassRaytracing callbacks.
type RaytracingContext struct {
	cmd  *vulkan.CommandBuffer
	pass *CompiledPass
}

func (RaytracingContext) isExecutionContext() {}

// Pass returns the compiled pass this context was built for.
func (c *RaytracingContext) Pass() *CompiledPass { return c.pass }

func (c *RaytracingContext) TraceRays(width, height, depth uint32) {
	c.cmd.TraceRays(width, height, depth)
}
