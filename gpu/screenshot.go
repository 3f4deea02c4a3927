package gpu

/*
#include <vulkan/vulkan.h>
*/
import "C"
import (
	"fmt"
	"image"
	"image/color"
	"unsafe"

	"render-engine/vulkan"
)

// captureSwapchainImage copies one swapchain image into a host-visible staging buffer and decodes it into
// a standard image.RGBA, the Go-level equivalent of original_source/Chimera/Utils/VulkanScreenshot.cpp.
// It reuses the staging-buffer-then-copy shape vulkan.UploadTextureData already applies in the opposite
// direction (CPU to GPU).
func captureSwapchainImage(c *Context, index int) (image.Image, error) {
	if index < 0 || index >= len(c.SwapChain.Images) {
		return nil, errf(KindTransient, "swapchain image index %d out of range", index)
	}

	width := uint32(c.SwapChain.Extent.width)
	height := uint32(c.SwapChain.Extent.height)
	bufSize := uint64(width) * uint64(height) * 4

	staging, err := vulkan.CreateBuffer(c.Device, bufSize, C.VK_BUFFER_USAGE_TRANSFER_DST_BIT,
		C.VK_MEMORY_PROPERTY_HOST_VISIBLE_BIT|C.VK_MEMORY_PROPERTY_HOST_COHERENT_BIT)
	if err != nil {
		return nil, errf(KindResourceCreate, "failed to allocate screenshot staging buffer: %v", err)
	}
	defer staging.Destroy(c.Device)

	srcImage := C.VkImage(c.SwapChain.Images[index])
	copyErr := vulkan.ExecuteSingleTimeCommands(c.Device, func(cmd vulkan.CommandBufferHandle) {
		cCmd := C.VkCommandBuffer(cmd)
		barrier := C.VkImageMemoryBarrier{
			sType:               C.VK_STRUCTURE_TYPE_IMAGE_MEMORY_BARRIER,
			srcAccessMask:       0,
			dstAccessMask:       C.VK_ACCESS_TRANSFER_READ_BIT,
			oldLayout:           C.VK_IMAGE_LAYOUT_PRESENT_SRC_KHR,
			newLayout:           C.VK_IMAGE_LAYOUT_TRANSFER_SRC_OPTIMAL,
			srcQueueFamilyIndex: C.VK_QUEUE_FAMILY_IGNORED,
			dstQueueFamilyIndex: C.VK_QUEUE_FAMILY_IGNORED,
			image:               srcImage,
			subresourceRange: C.VkImageSubresourceRange{
				aspectMask:     C.VK_IMAGE_ASPECT_COLOR_BIT,
				levelCount:     1,
				layerCount:     1,
			},
		}
		C.vkCmdPipelineBarrier(cCmd, C.VK_PIPELINE_STAGE_TOP_OF_PIPE_BIT, C.VK_PIPELINE_STAGE_TRANSFER_BIT, 0, 0, nil, 0, nil, 1, &barrier)

		region := C.VkBufferImageCopy{
			bufferOffset:      0,
			bufferRowLength:   0,
			bufferImageHeight: 0,
			imageSubresource: C.VkImageSubresourceLayers{
				aspectMask: C.VK_IMAGE_ASPECT_COLOR_BIT,
				layerCount: 1,
			},
			imageExtent: C.VkExtent3D{width: C.uint32_t(width), height: C.uint32_t(height), depth: 1},
		}
		C.vkCmdCopyImageToBuffer(cCmd, srcImage, C.VK_IMAGE_LAYOUT_TRANSFER_SRC_OPTIMAL, C.VkBuffer(staging.Handle), 1, &region)

		back := barrier
		back.srcAccessMask = C.VK_ACCESS_TRANSFER_READ_BIT
		back.dstAccessMask = 0
		back.oldLayout = C.VK_IMAGE_LAYOUT_TRANSFER_SRC_OPTIMAL
		back.newLayout = C.VK_IMAGE_LAYOUT_PRESENT_SRC_KHR
		C.vkCmdPipelineBarrier(cCmd, C.VK_PIPELINE_STAGE_TRANSFER_BIT, C.VK_PIPELINE_STAGE_BOTTOM_OF_PIPE_BIT, 0, 0, nil, 0, nil, 1, &back)
	})
	if copyErr != nil {
		return nil, fmt.Errorf("failed to copy swapchain image to staging buffer: %w", copyErr)
	}

	if err := staging.Map(c.Device); err != nil {
		return nil, fmt.Errorf("failed to map screenshot staging buffer: %w", err)
	}
	defer staging.Unmap(c.Device)

	raw := unsafe.Slice((*byte)(staging.MappedData), int(bufSize))
	img := image.NewRGBA(image.Rect(0, 0, int(width), int(height)))
	for y := 0; y < int(height); y++ {
		for x := 0; x < int(width); x++ {
			i := (y*int(width) + x) * 4
			img.Set(x, y, color.RGBA{R: raw[i+2], G: raw[i+1], B: raw[i], A: raw[i+3]})
		}
	}
	return img, nil
}
