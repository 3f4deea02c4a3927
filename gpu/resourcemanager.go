package gpu

/*
#include <vulkan/vulkan.h>
*/
import "C"
import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"

	xdraw "golang.org/x/image/draw"

	"render-engine/textures"
	"render-engine/vulkan"
)

// ResourceManager owns the physical resources a compiled render graph is realized against: the bindless
// texture array, the set-0/set-1 descriptor layouts shared by every pipeline, the transient descriptor pool
// that graph passes draw per-frame sets from, and the graph-image pool backing transient ResourceDesc
// entries. Grounded on textures.TextureManager's "own a mutex-guarded map, expose Load/GetOrDefault" shape,
// extended with the bindless allocation §4.3 adds on top.
type ResourceManager struct {
	device *Context

	mu           sync.Mutex
	setZeroLayout vulkan.DescriptorSetLayout
	bindlessLayout vulkan.DescriptorSetLayout
	transientPool *vulkan.DescriptorPool
	bindlessPool  *vulkan.DescriptorPool
	bindlessSet   vulkan.DescriptorSet

	samplers struct {
		linearRepeat vulkan.Sampler
		linearClamp  vulkan.Sampler
		nearest      vulkan.Sampler
	}

	textures   *textures.TextureManager
	bindlessNext uint32
	slotByPath   map[string]uint32

	graphImages map[uint32]*vulkan.Image
	nextImageID uint32

	mippedTextures []*textures.Texture
}

// NewResourceManager builds the descriptor-layout and sampler scaffolding described in §4.3: a transient
// descriptor pool sized for a handful of per-frame set-0 allocations, and the fixed-size bindless set-1
// array with its three persistent samplers.
func NewResourceManager(ctx *Context) (*ResourceManager, error) {
	rm := &ResourceManager{
		device:      ctx,
		textures:    textures.NewTextureManager(ctx.Device),
		slotByPath:  make(map[string]uint32),
		graphImages: make(map[uint32]*vulkan.Image),
	}

	setZero, err := vulkan.CreateDescriptorSetLayout(ctx.Device, []vulkan.DescriptorSetLayoutBinding{
		vulkan.UniformBufferBinding(0, C.VK_SHADER_STAGE_ALL),
		vulkan.CombinedImageSamplerBinding(1, C.VK_SHADER_STAGE_FRAGMENT_BIT),
		vulkan.StorageBufferBinding(2, C.VK_SHADER_STAGE_VERTEX_BIT),
		vulkan.StorageBufferBinding(3, C.VK_SHADER_STAGE_FRAGMENT_BIT),
	})
	if err != nil {
		return nil, errf(KindResourceCreate, "failed to create set-0 layout: %v", err)
	}
	rm.setZeroLayout = setZero

	bindless, err := vulkan.CreateBindlessSetLayout(ctx.Device)
	if err != nil {
		return nil, errf(KindResourceCreate, "failed to create bindless set layout: %v", err)
	}
	rm.bindlessLayout = bindless

	transientPool, err := vulkan.CreateDescriptorPool(ctx.Device, []vulkan.DescriptorPoolSize{
		vulkan.PoolSize(C.VK_DESCRIPTOR_TYPE_UNIFORM_BUFFER, 64),
		vulkan.PoolSize(C.VK_DESCRIPTOR_TYPE_COMBINED_IMAGE_SAMPLER, 64),
		vulkan.PoolSize(C.VK_DESCRIPTOR_TYPE_STORAGE_BUFFER, 128),
	}, 32)
	if err != nil {
		return nil, errf(KindResourceCreate, "failed to create transient descriptor pool: %v", err)
	}
	rm.transientPool = transientPool

	bindlessPool, err := vulkan.CreateDescriptorPool(ctx.Device, []vulkan.DescriptorPoolSize{
		vulkan.PoolSize(C.VK_DESCRIPTOR_TYPE_COMBINED_IMAGE_SAMPLER, vulkan.BindlessTextureCount),
	}, 1)
	if err != nil {
		return nil, errf(KindResourceCreate, "failed to create bindless descriptor pool: %v", err)
	}
	rm.bindlessPool = bindlessPool

	sets, err := bindlessPool.AllocateDescriptorSets(ctx.Device, []vulkan.DescriptorSetLayout{bindless})
	if err != nil {
		return nil, errf(KindResourceCreate, "failed to allocate bindless descriptor set: %v", err)
	}
	rm.bindlessSet = sets[0]

	if rm.samplers.linearRepeat, err = vulkan.CreateSampler(ctx.Device, C.VK_FILTER_LINEAR, C.VK_FILTER_LINEAR, C.VK_SAMPLER_ADDRESS_MODE_REPEAT, 16.0); err != nil {
		return nil, errf(KindResourceCreate, "failed to create linear-repeat sampler: %v", err)
	}
	if rm.samplers.linearClamp, err = vulkan.CreateSampler(ctx.Device, C.VK_FILTER_LINEAR, C.VK_FILTER_LINEAR, C.VK_SAMPLER_ADDRESS_MODE_CLAMP_TO_EDGE, 1.0); err != nil {
		return nil, errf(KindResourceCreate, "failed to create linear-clamp sampler: %v", err)
	}
	if rm.samplers.nearest, err = vulkan.CreateSampler(ctx.Device, C.VK_FILTER_NEAREST, C.VK_FILTER_NEAREST, C.VK_SAMPLER_ADDRESS_MODE_REPEAT, 1.0); err != nil {
		return nil, errf(KindResourceCreate, "failed to create nearest sampler: %v", err)
	}

	logf("resource manager ready: set-0 layout, %d-slot bindless array, 3 persistent samplers", vulkan.BindlessTextureCount)
	return rm, nil
}

// BindlessSet returns the set-1 descriptor set every pipeline layout binds bindless textures through.
// Returned through the portable vulkan.DescriptorSetHandle alias so callers outside this package (graph,
// cmd/demo) can hold and pass the value without importing cgo themselves.
func (rm *ResourceManager) BindlessSet() vulkan.DescriptorSetHandle {
	return vulkan.DescriptorSetHandle(rm.bindlessSet.Handle)
}

func (rm *ResourceManager) SetZeroLayout() vulkan.DescriptorSetLayout {
	return vulkan.DescriptorSetLayout(rm.setZeroLayout)
}
func (rm *ResourceManager) BindlessLayout() vulkan.DescriptorSetLayout {
	return vulkan.DescriptorSetLayout(rm.bindlessLayout)
}

// LoadTexture decodes the image file at path, always generates its CPU-side mip chain with
// golang.org/x/image/draw, uploads it, writes the resulting view into the next free bindless slot, and
// returns that slot index. On failure it falls back to a
// procedural checkerboard texture rather than propagating the error, per §4.3.
func (rm *ResourceManager) LoadTexture(path string) (uint32, error) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if slot, ok := rm.slotByPath[path]; ok {
		return slot, nil
	}

	tex, err := rm.loadMippedTexture(path)
	if err != nil {
		logf("texture %q failed to load (%v), falling back to checkerboard", path, err)
		tex, err = textures.CreateCheckerTexture(rm.device.Device, path, 64, color.RGBA{200, 200, 200, 255}, color.RGBA{80, 80, 80, 255})
		if err != nil {
			return 0, errf(KindResourceCreate, "fallback checkerboard texture failed: %v", err)
		}
	}

	slot := rm.bindlessNext
	if slot >= vulkan.BindlessTextureCount {
		return 0, errf(KindResourceCreate, "bindless texture array exhausted (%d slots)", vulkan.BindlessTextureCount)
	}
	rm.bindlessNext++

	vulkan.WriteBindlessTexture(rm.device.Device, rm.bindlessSet.Handle, slot, tex.Upload.Image.View, tex.Upload.Sampler)
	rm.slotByPath[path] = slot
	return slot, nil
}

// loadMippedTexture decodes path, builds a CPU mip chain with generateMipChain, and uploads it as one
// multi-level image via uploadMippedTexture, the CPU-staged alternative to TextureManager.LoadTexture's
// single-level GPU upload described in the DOMAIN STACK x/image/draw wiring.
func (rm *ResourceManager) loadMippedTexture(path string) (*textures.Texture, error) {
	decoded, err := decodeImageFile(path)
	if err != nil {
		return nil, err
	}

	chain := generateMipChain(decoded)
	upload, err := uploadMippedTexture(rm.device.Device, chain)
	if err != nil {
		return nil, err
	}

	b := chain[0].Bounds()
	tex := &textures.Texture{Name: path, Upload: upload, Width: uint32(b.Dx()), Height: uint32(b.Dy()), Path: path}
	rm.mippedTextures = append(rm.mippedTextures, tex)
	return tex, nil
}

// generateMipChain produces a chain of progressively halved images using high-quality Catmull-Rom
// resampling, the CPU-side alternative to successive GPU blits the teacher's own upload path uses for
// textures staged fully in host memory (the checkerboard and procedural generation paths).
func generateMipChain(src image.Image) []*image.RGBA {
	bounds := src.Bounds()
	base := image.NewRGBA(bounds)
	draw.Draw(base, bounds, src, bounds.Min, draw.Src)

	chain := []*image.RGBA{base}
	w, h := bounds.Dx(), bounds.Dy()
	cur := base
	for w > 1 || h > 1 {
		nw, nh := w/2, h/2
		if nw < 1 {
			nw = 1
		}
		if nh < 1 {
			nh = 1
		}
		next := image.NewRGBA(image.Rect(0, 0, nw, nh))
		xdraw.CatmullRom.Scale(next, next.Bounds(), cur, cur.Bounds(), xdraw.Over, nil)
		chain = append(chain, next)
		cur = next
		w, h = nw, nh
	}
	return chain
}

// CreateGraphImage allocates a physical vulkan.Image for a transient ResourceDesc's pool slot, sized and
// formatted per desc, matching CreateTextureFromPixels's "create image, create view" shape but without the
// staging-buffer upload step (graph images start undefined and are written by the pass that produces them).
func (rm *ResourceManager) CreateGraphImage(width, height uint32, format C.VkFormat, usage C.VkImageUsageFlags, aspect C.VkImageAspectFlags) (uint32, *vulkan.Image, error) {
	img, err := vulkan.CreateImage(rm.device.Device, width, height, format, C.VK_IMAGE_TILING_OPTIMAL, usage, C.VK_MEMORY_PROPERTY_DEVICE_LOCAL_BIT, 1)
	if err != nil {
		return 0, nil, errf(KindResourceCreate, "failed to create graph image: %v", err)
	}
	if err := img.CreateView(rm.device.Device, aspect); err != nil {
		img.Destroy(rm.device.Device)
		return 0, nil, errf(KindResourceCreate, "failed to create graph image view: %v", err)
	}

	rm.mu.Lock()
	id := rm.nextImageID
	rm.nextImageID++
	rm.graphImages[id] = img
	rm.mu.Unlock()

	return id, img, nil
}

// DestroyGraphImage releases a graph image previously returned by CreateGraphImage. Callers route this
// through gpu.DeletionQueue.PushFrame rather than calling it directly mid-frame.
func (rm *ResourceManager) DestroyGraphImage(id uint32) {
	rm.mu.Lock()
	img, ok := rm.graphImages[id]
	if ok {
		delete(rm.graphImages, id)
	}
	rm.mu.Unlock()
	if ok {
		img.Destroy(rm.device.Device)
	}
}

// ResetTransientPool recycles every descriptor set allocated from the transient pool, called once per frame
// by frame.Scheduler per §4.9 step 4.
func (rm *ResourceManager) ResetTransientPool() error {
	if result := C.vkResetDescriptorPool(C.VkDevice(rm.device.Device.Device), C.VkDescriptorPool(rm.transientPool.Handle), 0); result != C.VK_SUCCESS {
		return fmt.Errorf("failed to reset transient descriptor pool: %d", result)
	}
	return nil
}

// AllocateTransientSet allocates one set-0 descriptor set from the transient pool for the current frame.
func (rm *ResourceManager) AllocateTransientSet() (vulkan.DescriptorSetHandle, error) {
	return rm.AllocatePassSet(rm.setZeroLayout)
}

// AllocatePassSet allocates one descriptor set against an arbitrary layout from the transient pool,
// generalizing AllocateTransientSet to the pass-specific set-2 layouts gpu.PipelineCache builds from shader
// reflection — both set-0's per-frame set and a pass's set-2 set are transient-pool allocations reclaimed
// wholesale by ResetTransientPool, they just carry different layouts.
func (rm *ResourceManager) AllocatePassSet(layout vulkan.DescriptorSetLayout) (vulkan.DescriptorSetHandle, error) {
	sets, err := rm.transientPool.AllocateDescriptorSets(rm.device.Device, []vulkan.DescriptorSetLayout{layout})
	if err != nil {
		return nil, errf(KindTransient, "failed to allocate pass descriptor set: %v", err)
	}
	return sets[0].Handle, nil
}

// DefaultTexture returns the 1x1 white fallback every set-0 binding-1 sampler can point at when a pass has
// no material-specific texture of its own to bind — materials sample their actual textures through the
// bindless set-1 array instead; set-0's slot exists for passes (post-process, UI) that bind one texture
// directly.
func (rm *ResourceManager) DefaultTexture() *textures.Texture { return rm.textures.GetDefaultTexture() }

func (rm *ResourceManager) LinearRepeatSampler() vulkan.Sampler { return rm.samplers.linearRepeat }
func (rm *ResourceManager) LinearClampSampler() vulkan.Sampler  { return rm.samplers.linearClamp }
func (rm *ResourceManager) NearestSampler() vulkan.Sampler      { return rm.samplers.nearest }

// Destroy releases every resource this manager owns: samplers, descriptor pools, layouts, and any graph
// images still outstanding (the deletion queue is expected to have already destroyed per-frame-lifetime
// ones by shutdown; this is a backstop).
func (rm *ResourceManager) Destroy() {
	for id := range rm.graphImages {
		rm.DestroyGraphImage(id)
	}
	rm.textures.DestroyAll()
	for _, tex := range rm.mippedTextures {
		tex.Destroy(rm.device.Device)
	}

	vulkan.DestroySampler(rm.device.Device, rm.samplers.linearRepeat)
	vulkan.DestroySampler(rm.device.Device, rm.samplers.linearClamp)
	vulkan.DestroySampler(rm.device.Device, rm.samplers.nearest)

	rm.bindlessPool.Destroy(rm.device.Device)
	rm.transientPool.Destroy(rm.device.Device)

	C.vkDestroyDescriptorSetLayout(C.VkDevice(rm.device.Device.Device), C.VkDescriptorSetLayout(rm.bindlessLayout), nil)
	C.vkDestroyDescriptorSetLayout(C.VkDevice(rm.device.Device.Device), C.VkDescriptorSetLayout(rm.setZeroLayout), nil)
}
