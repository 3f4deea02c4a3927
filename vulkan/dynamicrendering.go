package vulkan

/*
#include <vulkan/vulkan.h>

static inline VkClearValue makeClearColorV(float r, float g, float b, float a) {
    VkClearValue v;
    v.color.float32[0] = r;
    v.color.float32[1] = g;
    v.color.float32[2] = b;
    v.color.float32[3] = a;
    return v;
}

static inline VkClearValue makeClearDepthV(float depth, uint32_t stencil) {
    VkClearValue v;
    v.depthStencil.depth = depth;
    v.depthStencil.stencil = stencil;
    return v;
}
*/
import "C"

// RenderingAttachment describes one color or depth attachment for vkCmdBeginRendering, replacing the
// VkRenderPass/VkFramebuffer pair CreateRenderPass used to build up front.
type RenderingAttachment struct {
	View         C.VkImageView
	Layout       C.VkImageLayout
	LoadOp       C.VkAttachmentLoadOp
	StoreOp      C.VkAttachmentStoreOp
	ClearColor   [4]float32
	ClearDepth   float32
	ClearStencil uint32
}

func (a RenderingAttachment) toC(depth bool) C.VkRenderingAttachmentInfo {
	info := C.VkRenderingAttachmentInfo{
		sType:       C.VK_STRUCTURE_TYPE_RENDERING_ATTACHMENT_INFO,
		imageView:   a.View,
		imageLayout: a.Layout,
		loadOp:      a.LoadOp,
		storeOp:     a.StoreOp,
	}
	if depth {
		info.clearValue = C.makeClearDepthV(C.float(a.ClearDepth), C.uint32_t(a.ClearStencil))
	} else {
		info.clearValue = C.makeClearColorV(C.float(a.ClearColor[0]), C.float(a.ClearColor[1]), C.float(a.ClearColor[2]), C.float(a.ClearColor[3]))
	}
	return info
}

// BeginRendering starts a dynamic-rendering pass over the given extent and attachments, the
// VK_KHR_dynamic_rendering replacement for CommandBuffer.BeginRenderPass.
func BeginRendering(cb *CommandBuffer, width, height uint32, color []RenderingAttachment, depth *RenderingAttachment) {
	colorInfos := make([]C.VkRenderingAttachmentInfo, len(color))
	for i, c := range color {
		colorInfos[i] = c.toC(false)
	}

	renderInfo := C.VkRenderingInfo{
		sType: C.VK_STRUCTURE_TYPE_RENDERING_INFO,
		renderArea: C.VkRect2D{
			offset: C.VkOffset2D{x: 0, y: 0},
			extent: C.VkExtent2D{width: C.uint32_t(width), height: C.uint32_t(height)},
		},
		layerCount:           1,
		colorAttachmentCount: C.uint32_t(len(colorInfos)),
	}
	if len(colorInfos) > 0 {
		renderInfo.pColorAttachments = &colorInfos[0]
	}
	var depthInfo C.VkRenderingAttachmentInfo
	if depth != nil {
		depthInfo = depth.toC(true)
		renderInfo.pDepthAttachment = &depthInfo
	}

	C.vkCmdBeginRendering(cb.Handle, &renderInfo)
}

// EndRendering closes a dynamic-rendering pass started with BeginRendering.
func EndRendering(cb *CommandBuffer) {
	C.vkCmdEndRendering(cb.Handle)
}
