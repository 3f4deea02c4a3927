package gpu

/*
#include <vulkan/vulkan.h>
*/
import "C"
import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"unsafe"

	"render-engine/vulkan"
)

// uploadMippedTexture uploads a pre-generated CPU mip chain (see generateMipChain) as a single multi-level
// vulkan.Image, generalizing vulkan.UploadTextureData's single-staging-buffer-then-copy shape to more than
// one VkBufferImageCopy region, one per mip level, all drawn from one staging buffer.
func uploadMippedTexture(device *vulkan.Device, chain []*image.RGBA) (*vulkan.TextureUploadResult, error) {
	levelSize := make([]uint64, len(chain))
	levelOffset := make([]uint64, len(chain))
	var total uint64
	for i, lvl := range chain {
		b := lvl.Bounds()
		size := uint64(b.Dx()) * uint64(b.Dy()) * 4
		levelOffset[i] = total
		levelSize[i] = size
		total += size
	}

	staging, err := vulkan.CreateBuffer(device, total, C.VK_BUFFER_USAGE_TRANSFER_SRC_BIT,
		C.VK_MEMORY_PROPERTY_HOST_VISIBLE_BIT|C.VK_MEMORY_PROPERTY_HOST_COHERENT_BIT)
	if err != nil {
		return nil, fmt.Errorf("failed to create mip staging buffer: %w", err)
	}
	defer staging.Destroy(device)

	if err := staging.Map(device); err != nil {
		return nil, err
	}
	for i, lvl := range chain {
		if len(lvl.Pix) == 0 {
			continue
		}
		dst := unsafe.Add(staging.MappedData, levelOffset[i])
		staging.CopyDataAt(dst, unsafe.Pointer(&lvl.Pix[0]), levelSize[i])
	}
	staging.Unmap(device)

	base := chain[0].Bounds()
	width, height := uint32(base.Dx()), uint32(base.Dy())
	mipLevels := uint32(len(chain))

	img, err := vulkan.CreateImage(device, width, height, C.VK_FORMAT_R8G8B8A8_SRGB, C.VK_IMAGE_TILING_OPTIMAL,
		C.VK_IMAGE_USAGE_TRANSFER_DST_BIT|C.VK_IMAGE_USAGE_SAMPLED_BIT, C.VK_MEMORY_PROPERTY_DEVICE_LOCAL_BIT, mipLevels)
	if err != nil {
		return nil, fmt.Errorf("failed to create mipped image: %w", err)
	}

	err = vulkan.ExecuteSingleTimeCommands(device, func(cmd vulkan.CommandBufferHandle) {
		vulkan.TransitionImageLayout(cmd, img.Handle, img.Format, C.VK_IMAGE_LAYOUT_UNDEFINED, C.VK_IMAGE_LAYOUT_TRANSFER_DST_OPTIMAL, mipLevels)

		for i, lvl := range chain {
			b := lvl.Bounds()
			region := C.VkBufferImageCopy{
				bufferOffset: C.VkDeviceSize(levelOffset[i]),
				imageSubresource: C.VkImageSubresourceLayers{
					aspectMask: C.VK_IMAGE_ASPECT_COLOR_BIT,
					mipLevel:   C.uint32_t(i),
					layerCount: 1,
				},
				imageExtent: C.VkExtent3D{width: C.uint32_t(b.Dx()), height: C.uint32_t(b.Dy()), depth: 1},
			}
			C.vkCmdCopyBufferToImage(C.VkCommandBuffer(cmd), C.VkBuffer(staging.Handle), C.VkImage(img.Handle), C.VK_IMAGE_LAYOUT_TRANSFER_DST_OPTIMAL, 1, &region)
		}

		vulkan.TransitionImageLayout(cmd, img.Handle, img.Format, C.VK_IMAGE_LAYOUT_TRANSFER_DST_OPTIMAL, C.VK_IMAGE_LAYOUT_SHADER_READ_ONLY_OPTIMAL, mipLevels)
	})
	if err != nil {
		img.Destroy(device)
		return nil, fmt.Errorf("failed to upload mip chain: %w", err)
	}

	if err := img.CreateView(device, C.VK_IMAGE_ASPECT_COLOR_BIT); err != nil {
		img.Destroy(device)
		return nil, fmt.Errorf("failed to create mipped image view: %w", err)
	}

	sampler, err := vulkan.CreateSampler(device, C.VK_FILTER_LINEAR, C.VK_FILTER_LINEAR, C.VK_SAMPLER_ADDRESS_MODE_REPEAT, 16.0)
	if err != nil {
		img.Destroy(device)
		return nil, fmt.Errorf("failed to create mipped sampler: %w", err)
	}

	return &vulkan.TextureUploadResult{Image: img, Sampler: sampler}, nil
}

// decodeImageFile mirrors textures.loadImageFile (unexported there) but returns the decoded image.Image
// directly instead of a flattened RGBA byte slice, since generateMipChain needs bounds/pixel access to
// build the base level itself.
func decodeImageFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	return img, nil
}
