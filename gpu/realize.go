package gpu

/*
#include <vulkan/vulkan.h>
*/
import "C"
import (
	"sort"
	"unsafe"

	"render-engine/graph"
	"render-engine/vulkan"
)

// imagePoolEntry is one physical vulkan.Image realize's linear pool search can hand out to more than one
// CompiledResource across a single RealizeImages call, per spec.md §4.6(d). usage/format/width/height are
// tracked here rather than read back off *vulkan.Image because vulkan.Image itself doesn't carry the usage
// flags it was created with.
type imagePoolEntry struct {
	id            uint32
	img           *vulkan.Image
	width, height uint32
	format        C.VkFormat
	usage         C.VkImageUsageFlags
	lastUsedPass  int
}

// RealizeImages turns a compiled graph's transient ResourceDesc entries into physical vulkan.Image objects,
// the step graph.CompiledGraph's doc comment calls out as living in the gpu package. Persistent resources
// are skipped — callers store their already-owned images and buffers into the returned PhysicalResources
// maps themselves (frame.Scheduler assigns the swapchain's own image to RenderOutput's handle each frame).
//
// Image resources are walked in ascending FirstPass and matched against a pool of already-created images
// local to this one call (§4.6(d)): a resource reuses the first pool entry whose lastUsedPass is before the
// resource's FirstPass and whose (width, height, format, usage) match exactly, extending that entry's
// lastUsedPass to the resource's LastPass; only when no entry qualifies does it allocate a fresh image.
// graph/lifetime.go's PoolSlot is logged alongside the aliasing decision for visibility but isn't consulted
// by the search itself — a pool slot can be reused by resources of incompatible shape that pure interval
// coloring can't see, so the format/usage-aware search below is the actual aliasing authority.
func RealizeImages(rm *ResourceManager, cg *graph.CompiledGraph, swapchainWidth, swapchainHeight uint32) (*graph.PhysicalResources, []uint32, error) {
	phys := &graph.PhysicalResources{
		Images:  make(map[graph.ResourceHandle]*vulkan.Image),
		Buffers: make(map[graph.ResourceHandle]*vulkan.Buffer),
	}
	var createdIDs []uint32

	if n := len(cg.Resources); n > 0 {
		logf("realizing %d transient resources into %d pool slots", n, cg.PoolSlots)
	}

	var imageResources []graph.CompiledResource
	for _, res := range cg.Resources {
		if !res.Desc.Persistent && res.Desc.Kind == graph.ResourceImage {
			imageResources = append(imageResources, res)
		}
	}
	sort.Slice(imageResources, func(i, j int) bool { return imageResources[i].FirstPass < imageResources[j].FirstPass })

	var pool []*imagePoolEntry
	var aliasCount int

	for _, res := range imageResources {
		width, height := res.Desc.Width, res.Desc.Height
		if res.Desc.SizeRelative {
			width = scaleFraction(swapchainWidth, res.Desc.Width)
			height = scaleFraction(swapchainHeight, res.Desc.Height)
		}
		if width == 0 {
			width = swapchainWidth
		}
		if height == 0 {
			height = swapchainHeight
		}
		format := C.VkFormat(res.Desc.Format)
		usage, aspect := imageUsageFlags(res.Desc.Usage)

		var reused *imagePoolEntry
		for _, entry := range pool {
			if entry.lastUsedPass < res.FirstPass &&
				entry.width == width && entry.height == height &&
				entry.format == format && entry.usage == usage {
				reused = entry
				break
			}
		}

		if reused != nil {
			phys.Images[res.Handle] = reused.img
			reused.lastUsedPass = res.LastPass
			aliasCount++
			logf("aliased %q onto pool image %d (pool slot %d, frees after pass %d)", res.Desc.Name, reused.id, res.PoolSlot, res.LastPass)
			continue
		}

		id, img, err := rm.CreateGraphImage(width, height, format, usage, aspect)
		if err != nil {
			return nil, createdIDs, err
		}
		vulkan.SetDebugName(rm.device.Instance.Handle, rm.device.Device, C.VK_OBJECT_TYPE_IMAGE,
			uint64(uintptr(unsafe.Pointer(img.Handle))), string(res.Desc.Name))

		phys.Images[res.Handle] = img
		createdIDs = append(createdIDs, id)
		pool = append(pool, &imagePoolEntry{
			id: id, img: img, width: width, height: height, format: format, usage: usage, lastUsedPass: res.LastPass,
		})
	}

	if len(imageResources) > 0 {
		logf("physical aliasing: %d image resources -> %d physical images (%d reused)", len(imageResources), len(pool), aliasCount)
	}

	for _, res := range cg.Resources {
		if res.Desc.Persistent || res.Desc.Kind != graph.ResourceBuffer {
			continue
		}
		buf, err := vulkan.CreateBuffer(rm.device.Device, res.Desc.ByteSize,
			C.VK_BUFFER_USAGE_STORAGE_BUFFER_BIT|C.VK_BUFFER_USAGE_TRANSFER_DST_BIT,
			C.VK_MEMORY_PROPERTY_DEVICE_LOCAL_BIT)
		if err != nil {
			return nil, createdIDs, errf(KindResourceCreate, "failed to realize transient buffer %q: %v", res.Desc.Name, err)
		}
		phys.Buffers[res.Handle] = buf

		// Acceleration structures and sampler arrays are always Persistent in this engine (built once by the
		// scene collaborator / resource manager, never per-frame transient), so Build() never emits a
		// transient resource of either kind; nothing else to realize here.
	}

	return phys, createdIDs, nil
}

func scaleFraction(base uint32, fraction uint32) uint32 {
	if fraction == 0 {
		return base
	}
	return uint32(float64(base) * float64(fraction))
}

func imageUsageFlags(usage graph.ImageUsage) (C.VkImageUsageFlags, C.VkImageAspectFlags) {
	switch usage {
	case graph.UsageColorAttachment:
		return C.VK_IMAGE_USAGE_COLOR_ATTACHMENT_BIT | C.VK_IMAGE_USAGE_SAMPLED_BIT, C.VK_IMAGE_ASPECT_COLOR_BIT
	case graph.UsageDepthAttachment:
		return C.VK_IMAGE_USAGE_DEPTH_STENCIL_ATTACHMENT_BIT | C.VK_IMAGE_USAGE_SAMPLED_BIT, C.VK_IMAGE_ASPECT_DEPTH_BIT
	case graph.UsageStorage:
		return C.VK_IMAGE_USAGE_STORAGE_BIT | C.VK_IMAGE_USAGE_SAMPLED_BIT, C.VK_IMAGE_ASPECT_COLOR_BIT
	case graph.UsageTransferSrc:
		return C.VK_IMAGE_USAGE_TRANSFER_SRC_BIT, C.VK_IMAGE_ASPECT_COLOR_BIT
	case graph.UsageTransferDst:
		return C.VK_IMAGE_USAGE_TRANSFER_DST_BIT, C.VK_IMAGE_ASPECT_COLOR_BIT
	default:
		return C.VK_IMAGE_USAGE_SAMPLED_BIT, C.VK_IMAGE_ASPECT_COLOR_BIT
	}
}
