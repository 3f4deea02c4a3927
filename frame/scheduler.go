// Package frame implements the per-frame scheduling loop: acquiring a swapchain image, flushing the
// deletion queue and transient descriptor pool for the slot coming back into rotation, driving the
// compiled render graph, and submitting/presenting — the same sequence vulkan.Renderer's
// BeginFrame/BeginCommandBuffer/SubmitAndPresent/Resize used to run as one fixed-function loop, split out
// and generalized so it drives an arbitrary graph.CompiledGraph instead of one hardcoded render pass.
package frame

/*
#include <vulkan/vulkan.h>
*/
import "C"
import (
	"fmt"

	"render-engine/core"
	"render-engine/gpu"
	"render-engine/graph"
	"render-engine/vulkan"
)

// Scheduler owns the per-frame resources NewContext's Context deliberately does not: command buffers and
// the three synchronization primitives per frame-in-flight slot, mirroring vulkan.Renderer's own fields
// before frame scheduling was split into its own package.
type Scheduler struct {
	ctx       *gpu.Context
	resources *gpu.ResourceManager
	deletions *gpu.DeletionQueue
	window    *core.Window

	framesInFlight int
	commandBuffers []vulkan.CommandBuffer
	imageAvailable []*vulkan.Semaphore
	renderFinished []*vulkan.Semaphore
	inFlightFences []*vulkan.Fence
	imagesInFlight []vulkan.FenceHandle
	currentFrame   int

	sync2              bool
	framebufferResized bool

	// Overlay is invoked once per frame, after the compiled graph's own passes have run but before the
	// render output is handed to the present queue — the editor/UI draw hook.
	Overlay func(cmd *vulkan.CommandBuffer) error
}

// NewScheduler allocates one command buffer and one semaphore/fence set per frame-in-flight slot and
// installs a framebuffer-resize callback on window so a resize is picked up at the next BeginFrame instead
// of needing to be polled.
func NewScheduler(ctx *gpu.Context, resources *gpu.ResourceManager, deletions *gpu.DeletionQueue, window *core.Window, framesInFlight int) (*Scheduler, error) {
	cmdBuffers, err := vulkan.AllocateCommandBuffers(ctx.Device, ctx.Device.CommandPool, uint32(framesInFlight))
	if err != nil {
		return nil, fmt.Errorf("failed to allocate frame command buffers: %v", err)
	}

	s := &Scheduler{
		ctx:            ctx,
		resources:      resources,
		deletions:      deletions,
		window:         window,
		framesInFlight: framesInFlight,
		commandBuffers: cmdBuffers,
		imagesInFlight: make([]vulkan.FenceHandle, len(ctx.SwapChain.Images)),
		sync2:          ctx.Features.Synchronization2,
	}

	for i := 0; i < framesInFlight; i++ {
		avail, err := vulkan.CreateSemaphore(ctx.Device)
		if err != nil {
			return nil, fmt.Errorf("failed to create image-available semaphore: %v", err)
		}
		finished, err := vulkan.CreateSemaphore(ctx.Device)
		if err != nil {
			return nil, fmt.Errorf("failed to create render-finished semaphore: %v", err)
		}
		fence, err := vulkan.CreateFence(ctx.Device, true)
		if err != nil {
			return nil, fmt.Errorf("failed to create in-flight fence: %v", err)
		}
		s.imageAvailable = append(s.imageAvailable, avail)
		s.renderFinished = append(s.renderFinished, finished)
		s.inFlightFences = append(s.inFlightFences, fence)
	}

	window.SetFramebufferResizeCallback(func(width, height int) {
		s.framebufferResized = true
	})

	return s, nil
}

// BeginFrame waits for this slot's fence, acquires the next swapchain image, flushes the deletion queue and
// transient descriptor pool entries belonging to the slot being reclaimed, and returns a freshly reset and
// begun command buffer ready for graph.Execute. vulkan.ErrSwapchainOutOfDate is returned unwrapped so the
// caller can recreate the swapchain and retry rather than treating it as fatal.
func (s *Scheduler) BeginFrame() (imageIndex uint32, cmd *vulkan.CommandBuffer, err error) {
	fence := s.inFlightFences[s.currentFrame]
	if err := fence.Wait(s.ctx.Device, ^uint64(0)); err != nil {
		return 0, nil, err
	}

	idx, err := s.ctx.SwapChain.AcquireNextImage(s.ctx.Device, s.imageAvailable[s.currentFrame].Handle, ^uint64(0))
	if err != nil {
		return 0, nil, err
	}

	if s.imagesInFlight[idx] != nil {
		fenceHandle := C.VkFence(s.imagesInFlight[idx])
		result := C.vkWaitForFences(C.VkDevice(s.ctx.Device.Device), 1, &fenceHandle, C.VK_TRUE, C.uint64_t(^uint64(0)))
		if result != C.VK_SUCCESS {
			return 0, nil, fmt.Errorf("failed to wait for image in-flight fence: %d", result)
		}
	}
	s.imagesInFlight[idx] = fence.Handle

	if err := fence.Reset(s.ctx.Device); err != nil {
		return 0, nil, err
	}

	s.deletions.FlushFrame(s.currentFrame)
	if err := s.resources.ResetTransientPool(); err != nil {
		return 0, nil, err
	}

	cb := &s.commandBuffers[s.currentFrame]
	if result := C.vkResetCommandBuffer(C.VkCommandBuffer(cb.Handle), 0); result != C.VK_SUCCESS {
		return 0, nil, fmt.Errorf("failed to reset frame command buffer: %d", result)
	}
	if err := cb.Begin(false); err != nil {
		return 0, nil, err
	}

	return idx, cb, nil
}

// EndFrame merges the acquired swapchain image into phys as the RenderOutput resource, runs the compiled
// graph (inserting this scheduler's Overlay hook between the graph's own passes and the present
// transition), ends and submits the command buffer, and presents. It advances the frame-in-flight slot
// whether or not the present call reports the swapchain out of date, matching SubmitAndPresent's behavior.
func (s *Scheduler) EndFrame(cg *graph.CompiledGraph, phys *graph.PhysicalResources, imageIndex uint32, cmd *vulkan.CommandBuffer) error {
	outputRes, ok := cg.Resource(graph.RenderOutput)
	if !ok {
		return fmt.Errorf("compiled graph has no %s resource", graph.RenderOutput)
	}
	phys.Images[outputRes.Handle] = s.swapchainImage(imageIndex)

	width := uint32(s.ctx.SwapChain.Extent.width)
	height := uint32(s.ctx.SwapChain.Extent.height)
	if err := graph.Execute(cg, cmd, phys, s.sync2, width, height, s.Overlay); err != nil {
		return err
	}

	if err := cmd.End(); err != nil {
		return err
	}

	if err := vulkan.SubmitQueue(
		s.ctx.Device.GraphicsQueue,
		[]vulkan.CommandBuffer{*cmd},
		[]vulkan.SemaphoreHandle{s.imageAvailable[s.currentFrame].Handle},
		[]vulkan.SemaphoreHandle{s.renderFinished[s.currentFrame].Handle},
		s.inFlightFences[s.currentFrame],
	); err != nil {
		return err
	}

	presentErr := vulkan.PresentQueue(
		s.ctx.Device.PresentQueue,
		[]vulkan.SwapchainHandle{s.ctx.SwapChain.Handle},
		[]uint32{imageIndex},
		[]vulkan.SemaphoreHandle{s.renderFinished[s.currentFrame].Handle},
	)

	s.currentFrame = (s.currentFrame + 1) % s.framesInFlight

	if s.framebufferResized {
		s.framebufferResized = false
		return vulkan.ErrSwapchainOutOfDate
	}
	return presentErr
}

// swapchainImage wraps the raw swapchain image/view at index in a *vulkan.Image so it can be addressed by
// graph.PhysicalResources the same way a transient gpu.ResourceManager-realized image is. It is never
// destroyed by the caller — the swapchain itself owns the handle.
func (s *Scheduler) swapchainImage(index uint32) *vulkan.Image {
	return &vulkan.Image{
		Handle: s.ctx.SwapChain.Images[index],
		View:   s.ctx.SwapChain.ImageViews[index],
		Format: s.ctx.SwapChain.Format,
		Width:  uint32(s.ctx.SwapChain.Extent.width),
		Height: uint32(s.ctx.SwapChain.Extent.height),
	}
}

// Recreate waits for the device to go idle and rebuilds the swapchain at the window's current framebuffer
// size, called by the caller's frame loop after BeginFrame/EndFrame reports vulkan.ErrSwapchainOutOfDate.
func (s *Scheduler) Recreate() error {
	s.ctx.WaitIdle()
	w, h := s.window.GetFramebufferSize()
	if err := s.ctx.Resize(uint32(w), uint32(h)); err != nil {
		return err
	}
	s.imagesInFlight = make([]vulkan.FenceHandle, len(s.ctx.SwapChain.Images))
	return nil
}

// Destroy releases every per-frame synchronization primitive and command buffer this scheduler owns. The
// caller is responsible for draining the deletion queue's global list separately (gpu.DeletionQueue.FlushAll)
// since that queue outlives any one scheduler generation.
func (s *Scheduler) Destroy() {
	vulkan.FreeCommandBuffers(s.ctx.Device, s.ctx.Device.CommandPool, s.commandBuffers)
	for i := range s.imageAvailable {
		s.imageAvailable[i].Destroy(s.ctx.Device)
		s.renderFinished[i].Destroy(s.ctx.Device)
		s.inFlightFences[i].Destroy(s.ctx.Device)
	}
}
