package graph

import "render-engine/vulkan"

// ResourceUsage is the original_source VulkanBarrier.cpp's small usage-kind enum: every place a resource
// is bound is classified into one of these, and requiredState below maps that classification to a
// (layout, access, stage) triple instead of inlining the mapping at each call site.
type ResourceUsage int

const (
	UsageUndefined ResourceUsage = iota
	UsageColorWrite
	UsageDepthWrite
	UsageShaderSampled
	UsageStorageReadWrite
	UsageTransferSource
	UsageTransferDestination
	UsagePresent
)

// requiredState maps a resource usage to the Vulkan synchronization state a barrier must transition into
// before a pass can touch the resource that way.
func requiredState(u ResourceUsage) vulkan.ResourceState {
	switch u {
	case UsageColorWrite:
		return vulkan.StateColorAttachment
	case UsageDepthWrite:
		return vulkan.StateDepthAttachment
	case UsageShaderSampled:
		return vulkan.StateShaderRead
	case UsageStorageReadWrite:
		return vulkan.StateStorageReadWrite
	case UsageTransferSource:
		return vulkan.StateTransferSrc
	case UsageTransferDestination:
		return vulkan.StateTransferDst
	case UsagePresent:
		return vulkan.StatePresent
	default:
		return vulkan.StateUndefined
	}
}

// usageFor determines how a pass touches a resource handle given the pass kind, whether the handle is a
// read or a write, and (for graphics writes) whether the underlying resource was declared as a depth
// attachment — the one place the access-mask coarseness §9 accepts doesn't extend to, since color vs. depth
// is a real layout difference vkCmdBeginRendering enforces, not a stage/access simplification. The render
// output's own transition to UsagePresent happens once, after every pass has run (Execute's trailing
// barrier), not here — whichever pass last writes it still needs the ordinary attachment/transfer state
// while it's doing that writing.
func usageFor(kind PassKind, isWrite bool, isDepthAttachment bool) ResourceUsage {
	switch {
	case kind == PassBlit && isWrite:
		return UsageTransferDestination
	case kind == PassBlit && !isWrite:
		return UsageTransferSource
	case kind == PassGraphics && isWrite && isDepthAttachment:
		return UsageDepthWrite
	case kind == PassGraphics && isWrite:
		return UsageColorWrite
	case kind == PassGraphics && !isWrite:
		return UsageShaderSampled
	case (kind == PassCompute || kind == PassRaytracing) && isWrite:
		return UsageStorageReadWrite
	default:
		return UsageShaderSampled
	}
}
