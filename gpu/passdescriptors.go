package gpu

/*
#include <vulkan/vulkan.h>
*/
import "C"
import (
	"fmt"
	"sort"
	"sync"
	"unsafe"

	"render-engine/graph"
	"render-engine/vulkan"
)

// bindingKey and setKey are the descriptor-set structural key SPEC_FULL.md's render graph compiler expansion
// describes: a sorted vector of (View, Sampler, Layout, Binding) tuples identifying exactly what a set-2
// descriptor set is bound to. setKey can't use Go's == directly — its []bindingKey field makes the struct
// incomparable — so String renders the sorted vector to text and that text is the map key, per the
// expansion's own "stored in a map[string]vulkan.DescriptorSet keyed by fmt.Sprintf-rendered key text" note.
type bindingKey struct {
	View    uintptr
	Sampler uintptr
	Layout  vulkan.ImageLayout
	Binding uint32
}

type setKey struct {
	bindings []bindingKey
}

func (k setKey) String() string {
	sorted := append([]bindingKey(nil), k.bindings...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Binding < sorted[j].Binding })
	return fmt.Sprintf("%+v", sorted)
}

// PassDescriptorCache caches the set-2 descriptor sets BuildPassDescriptorSet allocates, keyed by a pass's
// build-time CompiledPass.DescriptorKey joined with the runtime setKey of the physical views/samplers it
// actually ended up bound to. Two passes with identical declared reads/writes that realize to the exact same
// physical images (the common case across frames, once RealizeImages has run) share one descriptor set
// instead of writing a fresh one every time a pass runs.
type PassDescriptorCache struct {
	mu   sync.Mutex
	sets map[string]vulkan.DescriptorSetHandle
}

func NewPassDescriptorCache() *PassDescriptorCache {
	return &PassDescriptorCache{sets: make(map[string]vulkan.DescriptorSetHandle)}
}

// Reset drops every cached set. Call this after RealizeImages reallocates physical images (resize) — stale
// entries would otherwise point the cache at destroyed views.
func (c *PassDescriptorCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets = make(map[string]vulkan.DescriptorSetHandle)
}

func (c *PassDescriptorCache) lookup(key string) (vulkan.DescriptorSetHandle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sets[key]
	return s, ok
}

func (c *PassDescriptorCache) store(key string, set vulkan.DescriptorSetHandle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets[key] = set
}

// BuildPassDescriptorSet implements §4.6(e)'s descriptor construction: a combined-image-sampler binding per
// pass input, a storage-image binding per compute-or-raytracing-output, allocated and written from the
// transient pool against the pipeline's reflected set-2 layout. pipelineName identifies the pipeline cache
// entry (graphics pass name, compute kernel name, or raytracing pipeline name) whose Set2Layout describes
// the bindings to fill; cp's ReadHandles/WriteHandles supply the resources, ordinally matched against the
// reflected bindings in ascending Binding order. Returns a nil handle (and no error) when the pipeline
// declares no set-2 bindings at all.
func BuildPassDescriptorSet(rm *ResourceManager, pipelines *PipelineCache, cache *PassDescriptorCache, pipelineName string, cg *graph.CompiledGraph, cp graph.CompiledPass, phys *graph.PhysicalResources) (vulkan.DescriptorSetHandle, error) {
	layout, reflected, ok := pipelines.Set2Layout(pipelineName)
	if !ok {
		return nil, nil
	}

	var inputs, outputs []graph.ResourceHandle
	for _, h := range cp.ReadHandles {
		if int(h) < len(cg.Resources) && cg.Resources[h].Desc.Kind == graph.ResourceImage {
			inputs = append(inputs, h)
		}
	}
	for _, h := range cp.WriteHandles {
		if int(h) < len(cg.Resources) && cg.Resources[h].Desc.Kind == graph.ResourceImage && cg.Resources[h].Desc.Usage == graph.UsageStorage {
			outputs = append(outputs, h)
		}
	}

	type assignment struct {
		binding ReflectedBinding
		handle  graph.ResourceHandle
		sampler vulkan.Sampler
	}
	var assigned []assignment
	nextInput, nextOutput := 0, 0
	for _, rb := range reflected {
		switch rb.Kind {
		case BindingCombinedImageSampler:
			if nextInput >= len(inputs) {
				return nil, errf(KindResourceCreate, "pass %q: set-2 binding %d expects a read resource but none remain", cp.Desc.Name, rb.Binding)
			}
			assigned = append(assigned, assignment{binding: rb, handle: inputs[nextInput], sampler: rm.LinearClampSampler()})
			nextInput++
		case BindingStorageImage:
			if nextOutput >= len(outputs) {
				return nil, errf(KindResourceCreate, "pass %q: set-2 binding %d expects a storage write resource but none remain", cp.Desc.Name, rb.Binding)
			}
			assigned = append(assigned, assignment{binding: rb, handle: outputs[nextOutput]})
			nextOutput++
		default:
			// Uniform/storage-buffer set-2 bindings aren't produced by any declared pass today; nothing to
			// assign a resource handle to.
		}
	}

	var key setKey
	for _, a := range assigned {
		img, ok := phys.Images[a.handle]
		if !ok {
			continue
		}
		imgLayout := vulkan.ImageLayout(C.VK_IMAGE_LAYOUT_SHADER_READ_ONLY_OPTIMAL)
		sampler := a.sampler
		if a.binding.Kind == BindingStorageImage {
			imgLayout = vulkan.ImageLayout(C.VK_IMAGE_LAYOUT_GENERAL)
			sampler = nil
		}
		key.bindings = append(key.bindings, bindingKey{
			View:    uintptr(unsafe.Pointer(img.View)),
			Sampler: uintptr(unsafe.Pointer(sampler)),
			Layout:  imgLayout,
			Binding: a.binding.Binding,
		})
	}

	cacheKey := cp.DescriptorKey + "#" + pipelineName + "#" + key.String()
	if set, ok := cache.lookup(cacheKey); ok {
		return set, nil
	}

	set, err := rm.AllocatePassSet(layout)
	if err != nil {
		return nil, err
	}

	for _, a := range assigned {
		img, ok := phys.Images[a.handle]
		if !ok {
			continue
		}
		if a.binding.Kind == BindingStorageImage {
			vulkan.UpdateDescriptorSetStorageImage(rm.device.Device, set, a.binding.Binding, img.View)
		} else {
			vulkan.UpdateDescriptorSetImage(rm.device.Device, set, a.binding.Binding, img.View, a.sampler)
		}
	}

	cache.store(cacheKey, set)
	return set, nil
}
