package graph

/*
#include <vulkan/vulkan.h>
*/
import "C"
import "render-engine/vulkan"

// PhysicalResources maps compiled resource handles to the Vulkan images/buffers gpu.ResourceManager
// realized for the current frame's pool-slot assignments (images) or persistent bindings (buffers, AS).
type PhysicalResources struct {
	Images  map[ResourceHandle]*vulkan.Image
	Buffers map[ResourceHandle]*vulkan.Buffer
}

// resourceState tracks each resource's current (layout, access, stage) across a single Execute call so
// barriers are only inserted on an actual state transition, not unconditionally before every pass.
type resourceState struct {
	states map[ResourceHandle]vulkan.ResourceState
}

func newResourceState() *resourceState {
	return &resourceState{states: make(map[ResourceHandle]vulkan.ResourceState)}
}

func (rs *resourceState) get(h ResourceHandle) vulkan.ResourceState {
	if s, ok := rs.states[h]; ok {
		return s
	}
	return vulkan.StateUndefined
}

func (rs *resourceState) set(h ResourceHandle, s vulkan.ResourceState) {
	rs.states[h] = s
}

// Execute walks a compiled graph's passes in order, inserting image barriers ahead of each pass for every
// resource whose required state differs from its current tracked state, then invokes the pass's Execute
// callback with the execution context matching its declared Kind. sync2 selects between
// vkCmdPipelineBarrier2 and the legacy vkCmdPipelineBarrier path depending on device support. overlay, if
// non-nil, runs once after every declared pass but before the trailing RenderOutput-to-present barrier —
// frame.Scheduler wires its UI/editor hook in here so overlay draws land while the output image is still in
// VK_IMAGE_LAYOUT_COLOR_ATTACHMENT_OPTIMAL, not after it has already been handed off for presentation.
func Execute(cg *CompiledGraph, cmd *vulkan.CommandBuffer, phys *PhysicalResources, sync2 bool, width, height uint32, overlay func(*vulkan.CommandBuffer) error) error {
	rs := newResourceState()

	var outputHandle ResourceHandle
	var haveOutput bool

	for _, cp := range cg.Passes {
		allHandles := append(append([]ResourceHandle{}, cp.ReadHandles...), cp.WriteHandles...)
		for _, h := range allHandles {
			img, ok := phys.Images[h]
			if !ok {
				continue
			}
			if cg.Resources[h].Desc.Name == RenderOutput {
				outputHandle, haveOutput = h, true
			}
			isWrite := containsHandle(cp.WriteHandles, h)
			isDepth := cg.Resources[h].Desc.Usage == UsageDepthAttachment
			usage := usageFor(cp.Desc.Kind, isWrite, isDepth)
			target := requiredState(usage)
			current := rs.get(h)
			if current.Layout == target.Layout {
				continue
			}
			aspect := vulkan.ImageAspectFlags(C.VK_IMAGE_ASPECT_COLOR_BIT)
			if isDepth {
				aspect = C.VK_IMAGE_ASPECT_DEPTH_BIT
			}
			if sync2 {
				vulkan.ImageBarrier2(cmd, img.Handle, aspect, current, target)
			} else {
				vulkan.ImageBarrierLegacy(cmd, img.Handle, aspect, current, target)
			}
			rs.set(h, target)
		}

		if err := dispatchPass(cmd, cg, phys, cp, width, height); err != nil {
			return err
		}
	}

	if overlay != nil {
		if err := overlay(cmd); err != nil {
			return err
		}
	}

	// Every graph must produce RenderOutput (Build rejects one that doesn't), so by this point haveOutput is
	// always true; the flag only guards against phys.Images missing the handle, which would mean the caller
	// never realized or merged it in.
	if haveOutput {
		img := phys.Images[outputHandle]
		current := rs.get(outputHandle)
		target := requiredState(UsagePresent)
		if current.Layout != target.Layout {
			if sync2 {
				vulkan.ImageBarrier2(cmd, img.Handle, C.VK_IMAGE_ASPECT_COLOR_BIT, current, target)
			} else {
				vulkan.ImageBarrierLegacy(cmd, img.Handle, C.VK_IMAGE_ASPECT_COLOR_BIT, current, target)
			}
			rs.set(outputHandle, target)
		}
	}
	return nil
}

func containsHandle(hs []ResourceHandle, h ResourceHandle) bool {
	for _, x := range hs {
		if x == h {
			return true
		}
	}
	return false
}

func dispatchPass(cmd *vulkan.CommandBuffer, cg *CompiledGraph, phys *PhysicalResources, cp CompiledPass, width, height uint32) error {
	if cp.Desc.Execute == nil {
		return nil
	}
	switch cp.Desc.Kind {
	case PassGraphics:
		color, depth := attachmentsFor(cg, phys, cp)
		vulkan.BeginRendering(cmd, width, height, color, depth)
		ctx := &GraphicsContext{cmd: cmd, pass: &cp, Width: width, Height: height}
		err := cp.Desc.Execute(ctx)
		vulkan.EndRendering(cmd)
		return err
	case PassBlit:
		ctx := &GraphicsContext{cmd: cmd, pass: &cp, Width: width, Height: height}
		return cp.Desc.Execute(ctx)
	case PassCompute:
		ctx := &ComputeContext{cmd: cmd, pass: &cp}
		return cp.Desc.Execute(ctx)
	case PassRaytracing:
		ctx := &RaytracingContext{cmd: cmd, pass: &cp}
		return cp.Desc.Execute(ctx)
	default:
		return buildErrorf("unknown pass kind for %q", cp.Desc.Name)
	}
}

// attachmentsFor builds the vkCmdBeginRendering attachment list for a graphics pass from its write handles:
// depth-usage resources become the single depth attachment, everything else a color attachment. A resource
// is cleared to its zero value the first time the compiled pass order reaches cg.Resources[h].FirstPass —
// the pass that allocates its pool slot for this frame — and loaded on every subsequent pass that writes it,
// so a pass only ever discards the content of a resource nobody has produced yet, never another pass's
// output.
func attachmentsFor(cg *CompiledGraph, phys *PhysicalResources, cp CompiledPass) ([]vulkan.RenderingAttachment, *vulkan.RenderingAttachment) {
	var color []vulkan.RenderingAttachment
	var depth *vulkan.RenderingAttachment

	for _, h := range cp.WriteHandles {
		img, ok := phys.Images[h]
		if !ok {
			continue
		}
		res := cg.Resources[h]
		clearFirst := cp.Order == res.FirstPass
		if res.Desc.Usage == UsageDepthAttachment {
			d := vulkan.RenderingAttachment{
				View:       img.View,
				Layout:     vulkan.StateDepthAttachment.Layout,
				StoreOp:    C.VK_ATTACHMENT_STORE_OP_STORE,
				ClearDepth: 1,
			}
			if clearFirst {
				d.LoadOp = C.VK_ATTACHMENT_LOAD_OP_CLEAR
			} else {
				d.LoadOp = C.VK_ATTACHMENT_LOAD_OP_LOAD
			}
			depth = &d
			continue
		}
		c := vulkan.RenderingAttachment{
			View:    img.View,
			Layout:  vulkan.StateColorAttachment.Layout,
			StoreOp: C.VK_ATTACHMENT_STORE_OP_STORE,
		}
		if clearFirst {
			c.LoadOp = C.VK_ATTACHMENT_LOAD_OP_CLEAR
		} else {
			c.LoadOp = C.VK_ATTACHMENT_LOAD_OP_LOAD
		}
		color = append(color, c)
	}
	return color, depth
}
