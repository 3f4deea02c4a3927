package gpu

/*
#include <vulkan/vulkan.h>
*/
import "C"
import (
	"sort"
	"sync"
	"unsafe"

	"render-engine/vulkan"
)

// GraphicsPipelineDesc describes a graphics pipeline built against dynamic rendering instead of a
// VkRenderPass/VkFramebuffer pair, generalizing vulkan.PipelineConfig (vulkan/pipeline.go) to the formats a
// render-graph pass declares for its color/depth attachments rather than a fixed swapchain format.
type GraphicsPipelineDesc struct {
	Name               string
	VertexShader       string
	FragmentShader     string
	VertexDescription  vulkan.VertexInputDescription
	ColorFormats       []vulkan.Format
	DepthFormat        vulkan.Format
	Topology           vulkan.Topology
	PolygonMode        vulkan.PolygonMode
	CullMode           vulkan.CullMode
	DepthTestEnable    bool
	DepthWriteEnable   bool
	BlendEnable        bool
	PushConstantBytes  uint32
}

// PipelineCache owns the three families of pipeline this engine builds — graphics, compute, raytracing —
// each keyed by name and guarded by one mutex, mirroring textures.TextureManager's sync.RWMutex-guarded map
// shape (§4.5 says sync.Mutex is sufficient here since pipeline builds are rare and never read-heavy like
// texture lookups).
type PipelineCache struct {
	device    *Context
	shaders   *ShaderCache
	resources *ResourceManager

	mu        sync.Mutex
	graphics  map[string]*vulkan.Pipeline
	compute   map[string]*vulkan.ComputePipeline
	raytraced map[string]*vulkan.RaytracingPipeline

	// set2Layouts/set2Bindings hold the pass-specific set-2 layout (and the reflected bindings it was built
	// from) keyed by pipeline name — the same name a Graphics/Compute/Raytracing call caches its pipeline
	// under, per §4.5 step 3's "set 2 = pass-specific, reflected from this pipeline's shaders at set index 2".
	// A pipeline whose shaders declare no set-2 bindings has no entry here.
	set2Layouts  map[string]C.VkDescriptorSetLayout
	set2Bindings map[string][]ReflectedBinding
}

func NewPipelineCache(ctx *Context, shaders *ShaderCache, resources *ResourceManager) *PipelineCache {
	return &PipelineCache{
		device:       ctx,
		shaders:      shaders,
		resources:    resources,
		graphics:     make(map[string]*vulkan.Pipeline),
		compute:      make(map[string]*vulkan.ComputePipeline),
		raytraced:    make(map[string]*vulkan.RaytracingPipeline),
		set2Layouts:  make(map[string]C.VkDescriptorSetLayout),
		set2Bindings: make(map[string][]ReflectedBinding),
	}
}

// stageBindings pairs a shader stage with the reflected bindings recovered from its module, the unit
// buildSet2Layout merges across a pipeline's stages.
type stageBindings struct {
	stage    C.VkShaderStageFlags
	bindings []ReflectedBinding
}

// buildSet2Layout merges every set-2 binding reflected across a pipeline's shader stages into one
// VkDescriptorSetLayout, OR-ing stage flags together when two stages declare the same binding number (e.g. a
// combined-image-sampler read by both vertex and fragment shaders). Returns a nil layout when no stage
// declares any set-2 binding — most graphics passes have none, and pipelineLayout treats nil as "omit set 2".
func buildSet2Layout(device *vulkan.Device, sources []stageBindings) (C.VkDescriptorSetLayout, []ReflectedBinding, error) {
	type merged struct {
		binding ReflectedBinding
		stage   C.VkShaderStageFlags
	}
	byBinding := make(map[uint32]*merged)
	var order []uint32
	for _, src := range sources {
		for _, b := range src.bindings {
			if b.Set != 2 {
				continue
			}
			if m, ok := byBinding[b.Binding]; ok {
				m.stage |= src.stage
				continue
			}
			byBinding[b.Binding] = &merged{binding: b, stage: src.stage}
			order = append(order, b.Binding)
		}
	}
	if len(order) == 0 {
		return nil, nil, nil
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	layoutBindings := make([]C.VkDescriptorSetLayoutBinding, 0, len(order))
	reflected := make([]ReflectedBinding, 0, len(order))
	for _, bnum := range order {
		m := byBinding[bnum]
		switch m.binding.Kind {
		case BindingCombinedImageSampler:
			layoutBindings = append(layoutBindings, vulkan.CombinedImageSamplerBinding(bnum, m.stage))
		case BindingStorageImage:
			layoutBindings = append(layoutBindings, vulkan.StorageImageBinding(bnum, m.stage))
		case BindingStorageBuffer:
			layoutBindings = append(layoutBindings, vulkan.StorageBufferBinding(bnum, m.stage))
		default:
			layoutBindings = append(layoutBindings, vulkan.UniformBufferBinding(bnum, m.stage))
		}
		reflected = append(reflected, m.binding)
	}

	layout, err := vulkan.CreateDescriptorSetLayout(device, layoutBindings)
	if err != nil {
		return nil, nil, err
	}
	return layout, reflected, nil
}

// Set2Layout returns the set-2 descriptor-set layout and reflected bindings built for the pipeline cached
// under name (a graphics pass name, a compute kernel name, or a raytracing pipeline name — these share one
// namespace in practice, so one accessor serves all three Graphics/Compute/Raytracing callers).
func (pc *PipelineCache) Set2Layout(name string) (vulkan.DescriptorSetLayout, []ReflectedBinding, bool) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	l, ok := pc.set2Layouts[name]
	if !ok {
		return nil, nil, false
	}
	return vulkan.DescriptorSetLayout(l), pc.set2Bindings[name], true
}

func (pc *PipelineCache) pipelineLayout(pushConstantBytes uint32, set2 C.VkDescriptorSetLayout) (C.VkPipelineLayout, error) {
	setLayouts := []C.VkDescriptorSetLayout{
		C.VkDescriptorSetLayout(pc.resources.SetZeroLayout()),
		C.VkDescriptorSetLayout(pc.resources.BindlessLayout()),
	}
	if set2 != nil {
		setLayouts = append(setLayouts, set2)
	}

	var pushRange C.VkPushConstantRange
	var pushCount C.uint32_t
	if pushConstantBytes > 0 {
		pushRange = C.VkPushConstantRange{
			stageFlags: C.VK_SHADER_STAGE_ALL,
			offset:     0,
			size:       C.uint32_t(pushConstantBytes),
		}
		pushCount = 1
	}

	layoutInfo := C.VkPipelineLayoutCreateInfo{
		sType:                  C.VK_STRUCTURE_TYPE_PIPELINE_LAYOUT_CREATE_INFO,
		setLayoutCount:         C.uint32_t(len(setLayouts)),
		pSetLayouts:            &setLayouts[0],
		pushConstantRangeCount: pushCount,
	}
	if pushCount > 0 {
		layoutInfo.pPushConstantRanges = &pushRange
	}

	var layout C.VkPipelineLayout
	if result := C.vkCreatePipelineLayout(pc.device.Device.Device, &layoutInfo, nil, &layout); result != C.VK_SUCCESS {
		return nil, errf(KindResourceCreate, "failed to create pipeline layout: %d", result)
	}
	return layout, nil
}

// Graphics returns the named pipeline, building it from desc on first use via dynamic rendering
// (VkPipelineRenderingCreateInfo chained into VkGraphicsPipelineCreateInfo.pNext) instead of the teacher's
// fixed VkRenderPass, with viewport/scissor left dynamic since graph.GraphicsContext sets them per pass.
func (pc *PipelineCache) Graphics(desc GraphicsPipelineDesc) (*vulkan.Pipeline, error) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	if p, ok := pc.graphics[desc.Name]; ok {
		return p, nil
	}

	vs, err := pc.shaders.Load(desc.VertexShader, "vert")
	if err != nil {
		return nil, err
	}
	fs, err := pc.shaders.Load(desc.FragmentShader, "frag")
	if err != nil {
		return nil, err
	}

	vertModule, err := vulkan.CreateShaderModule(pc.device.Device, vs.Words)
	if err != nil {
		return nil, errf(KindShader, "failed to create vertex shader module for %q: %v", desc.Name, err)
	}
	fragModule, err := vulkan.CreateShaderModule(pc.device.Device, fs.Words)
	if err != nil {
		return nil, errf(KindShader, "failed to create fragment shader module for %q: %v", desc.Name, err)
	}

	entry := C.CString("main")
	defer C.free(unsafe.Pointer(entry))

	stages := []C.VkPipelineShaderStageCreateInfo{
		{sType: C.VK_STRUCTURE_TYPE_PIPELINE_SHADER_STAGE_CREATE_INFO, stage: C.VK_SHADER_STAGE_VERTEX_BIT, module: C.VkShaderModule(vertModule), pName: entry},
		{sType: C.VK_STRUCTURE_TYPE_PIPELINE_SHADER_STAGE_CREATE_INFO, stage: C.VK_SHADER_STAGE_FRAGMENT_BIT, module: C.VkShaderModule(fragModule), pName: entry},
	}

	var vertexInput C.VkPipelineVertexInputStateCreateInfo
	vertexInput.sType = C.VK_STRUCTURE_TYPE_PIPELINE_VERTEX_INPUT_STATE_CREATE_INFO
	if len(desc.VertexDescription.BindingDescriptions) > 0 {
		vertexInput.vertexBindingDescriptionCount = C.uint32_t(len(desc.VertexDescription.BindingDescriptions))
		vertexInput.pVertexBindingDescriptions = (*C.VkVertexInputBindingDescription)(&desc.VertexDescription.BindingDescriptions[0])
		vertexInput.vertexAttributeDescriptionCount = C.uint32_t(len(desc.VertexDescription.AttributeDescriptions))
		vertexInput.pVertexAttributeDescriptions = (*C.VkVertexInputAttributeDescription)(&desc.VertexDescription.AttributeDescriptions[0])
	}

	inputAssembly := C.VkPipelineInputAssemblyStateCreateInfo{
		sType:    C.VK_STRUCTURE_TYPE_PIPELINE_INPUT_ASSEMBLY_STATE_CREATE_INFO,
		topology: C.VkPrimitiveTopology(desc.Topology),
	}

	viewportState := C.VkPipelineViewportStateCreateInfo{
		sType:         C.VK_STRUCTURE_TYPE_PIPELINE_VIEWPORT_STATE_CREATE_INFO,
		viewportCount: 1,
		scissorCount:  1,
	}

	rasterizer := C.VkPipelineRasterizationStateCreateInfo{
		sType:       C.VK_STRUCTURE_TYPE_PIPELINE_RASTERIZATION_STATE_CREATE_INFO,
		polygonMode: C.VkPolygonMode(desc.PolygonMode),
		cullMode:    C.VkCullModeFlags(desc.CullMode),
		frontFace:   C.VK_FRONT_FACE_COUNTER_CLOCKWISE,
		lineWidth:   1.0,
	}

	multisampling := C.VkPipelineMultisampleStateCreateInfo{
		sType:                C.VK_STRUCTURE_TYPE_PIPELINE_MULTISAMPLE_STATE_CREATE_INFO,
		rasterizationSamples: C.VK_SAMPLE_COUNT_1_BIT,
	}

	depthStencil := C.VkPipelineDepthStencilStateCreateInfo{
		sType: C.VK_STRUCTURE_TYPE_PIPELINE_DEPTH_STENCIL_STATE_CREATE_INFO,
	}
	if desc.DepthTestEnable {
		depthStencil.depthTestEnable = C.VK_TRUE
		depthStencil.depthCompareOp = C.VK_COMPARE_OP_LESS
	}
	if desc.DepthWriteEnable {
		depthStencil.depthWriteEnable = C.VK_TRUE
	}

	colorBlendAttachment := C.VkPipelineColorBlendAttachmentState{
		colorWriteMask: C.VK_COLOR_COMPONENT_R_BIT | C.VK_COLOR_COMPONENT_G_BIT | C.VK_COLOR_COMPONENT_B_BIT | C.VK_COLOR_COMPONENT_A_BIT,
	}
	if desc.BlendEnable {
		colorBlendAttachment.blendEnable = C.VK_TRUE
		colorBlendAttachment.srcColorBlendFactor = C.VK_BLEND_FACTOR_SRC_ALPHA
		colorBlendAttachment.dstColorBlendFactor = C.VK_BLEND_FACTOR_ONE_MINUS_SRC_ALPHA
		colorBlendAttachment.colorBlendOp = C.VK_BLEND_OP_ADD
		colorBlendAttachment.srcAlphaBlendFactor = C.VK_BLEND_FACTOR_ONE
		colorBlendAttachment.dstAlphaBlendFactor = C.VK_BLEND_FACTOR_ZERO
		colorBlendAttachment.alphaBlendOp = C.VK_BLEND_OP_ADD
	}
	colorBlending := C.VkPipelineColorBlendStateCreateInfo{
		sType:           C.VK_STRUCTURE_TYPE_PIPELINE_COLOR_BLEND_STATE_CREATE_INFO,
		attachmentCount: 1,
		pAttachments:    &colorBlendAttachment,
	}

	dynamicStates := []C.VkDynamicState{C.VK_DYNAMIC_STATE_VIEWPORT, C.VK_DYNAMIC_STATE_SCISSOR}
	dynamicState := C.VkPipelineDynamicStateCreateInfo{
		sType:             C.VK_STRUCTURE_TYPE_PIPELINE_DYNAMIC_STATE_CREATE_INFO,
		dynamicStateCount: C.uint32_t(len(dynamicStates)),
		pDynamicStates:    &dynamicStates[0],
	}

	set2Layout, set2Reflected, err := buildSet2Layout(pc.device.Device, []stageBindings{
		{stage: C.VK_SHADER_STAGE_VERTEX_BIT, bindings: vs.Bindings},
		{stage: C.VK_SHADER_STAGE_FRAGMENT_BIT, bindings: fs.Bindings},
	})
	if err != nil {
		return nil, errf(KindResourceCreate, "failed to build set-2 layout for %q: %v", desc.Name, err)
	}

	layout, err := pc.pipelineLayout(desc.PushConstantBytes, set2Layout)
	if err != nil {
		return nil, err
	}
	if set2Layout != nil {
		pc.set2Layouts[desc.Name] = set2Layout
		pc.set2Bindings[desc.Name] = set2Reflected
	}

	colorFormats := make([]C.VkFormat, len(desc.ColorFormats))
	for i, f := range desc.ColorFormats {
		colorFormats[i] = C.VkFormat(f)
	}
	renderingInfo := C.VkPipelineRenderingCreateInfo{
		sType:                   C.VK_STRUCTURE_TYPE_PIPELINE_RENDERING_CREATE_INFO,
		colorAttachmentCount:    C.uint32_t(len(colorFormats)),
		depthAttachmentFormat:   C.VkFormat(desc.DepthFormat),
	}
	if len(colorFormats) > 0 {
		renderingInfo.pColorAttachmentFormats = &colorFormats[0]
	}

	pipelineInfo := C.VkGraphicsPipelineCreateInfo{
		sType:               C.VK_STRUCTURE_TYPE_GRAPHICS_PIPELINE_CREATE_INFO,
		pNext:               unsafe.Pointer(&renderingInfo),
		stageCount:          C.uint32_t(len(stages)),
		pStages:             &stages[0],
		pVertexInputState:   &vertexInput,
		pInputAssemblyState: &inputAssembly,
		pViewportState:      &viewportState,
		pRasterizationState: &rasterizer,
		pMultisampleState:   &multisampling,
		pDepthStencilState:  &depthStencil,
		pColorBlendState:    &colorBlending,
		pDynamicState:       &dynamicState,
		layout:              layout,
	}

	var handle C.VkPipeline
	if result := C.vkCreateGraphicsPipelines(pc.device.Device.Device, nil, 1, &pipelineInfo, nil, &handle); result != C.VK_SUCCESS {
		return nil, errf(KindResourceCreate, "failed to create graphics pipeline %q: %d", desc.Name, result)
	}

	p := &vulkan.Pipeline{Handle: vulkan.PipelineHandle(handle), Layout: vulkan.PipelineLayout(layout), VertexShader: vertModule, FragShader: fragModule}
	pc.graphics[desc.Name] = p
	return p, nil
}

// Compute returns the named compute pipeline, compiling kernel on first use.
func (pc *PipelineCache) Compute(name, kernel string, pushConstantBytes uint32) (*vulkan.ComputePipeline, error) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	if p, ok := pc.compute[name]; ok {
		return p, nil
	}

	entry, err := pc.shaders.Load(kernel, "comp")
	if err != nil {
		return nil, err
	}

	set2Layout, set2Reflected, err := buildSet2Layout(pc.device.Device, []stageBindings{
		{stage: C.VK_SHADER_STAGE_COMPUTE_BIT, bindings: entry.Bindings},
	})
	if err != nil {
		return nil, errf(KindResourceCreate, "failed to build set-2 layout for %q: %v", name, err)
	}

	layout, err := pc.pipelineLayout(pushConstantBytes, set2Layout)
	if err != nil {
		return nil, err
	}
	if set2Layout != nil {
		pc.set2Layouts[name] = set2Layout
		pc.set2Bindings[name] = set2Reflected
	}

	p, err := vulkan.CreateComputePipeline(pc.device.Device, entry.Words, vulkan.PipelineLayout(layout), "main")
	if err != nil {
		return nil, errf(KindResourceCreate, "failed to create compute pipeline %q: %v", name, err)
	}
	pc.compute[name] = p
	return p, nil
}

// RaytracingPipelineDesc names the three shader stages a minimal raygen/miss/closest-hit pipeline needs.
// Multiple hit/miss shaders are supported by passing additional names; group indices follow slice order.
type RaytracingPipelineDesc struct {
	Name          string
	RaygenShader  string
	MissShaders   []string
	HitShaders    []string
	MaxRecursion  uint32
	PushConstantBytes uint32
}

// Raytracing returns the named raytracing pipeline, compiling its raygen/miss/hit shaders and assembling
// one shader group per stage (general groups for raygen/miss, triangles-hit groups for hit shaders) on
// first use, per §4.5's raytracing pipeline construction.
func (pc *PipelineCache) Raytracing(desc RaytracingPipelineDesc) (*vulkan.RaytracingPipeline, error) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	if p, ok := pc.raytraced[desc.Name]; ok {
		return p, nil
	}

	entry := C.CString("main")
	defer C.free(unsafe.Pointer(entry))

	var stages []vulkan.PipelineShaderStageCreateInfo
	var groups []vulkan.RaytracingShaderGroup
	var set2Sources []stageBindings

	raygen, err := pc.shaders.Load(desc.RaygenShader, "rgen")
	if err != nil {
		return nil, err
	}
	raygenModule, err := vulkan.CreateShaderModule(pc.device.Device, raygen.Words)
	if err != nil {
		return nil, errf(KindShader, "failed to create raygen module for %q: %v", desc.Name, err)
	}
	stages = append(stages, vulkan.ShaderStage(C.VK_SHADER_STAGE_RAYGEN_BIT_KHR, raygenModule, entry))
	groups = append(groups, vulkan.RaytracingShaderGroup{
		Kind: C.VK_RAY_TRACING_SHADER_GROUP_TYPE_GENERAL_KHR, General: 0,
		ClosestHit: vulkan.ShaderUnused, AnyHit: vulkan.ShaderUnused, Intersection: vulkan.ShaderUnused,
	})
	set2Sources = append(set2Sources, stageBindings{stage: C.VK_SHADER_STAGE_RAYGEN_BIT_KHR, bindings: raygen.Bindings})

	for _, name := range desc.MissShaders {
		e, err := pc.shaders.Load(name, "rmiss")
		if err != nil {
			return nil, err
		}
		module, err := vulkan.CreateShaderModule(pc.device.Device, e.Words)
		if err != nil {
			return nil, errf(KindShader, "failed to create miss module %q: %v", name, err)
		}
		idx := uint32(len(stages))
		stages = append(stages, vulkan.ShaderStage(C.VK_SHADER_STAGE_MISS_BIT_KHR, module, entry))
		groups = append(groups, vulkan.RaytracingShaderGroup{
			Kind: C.VK_RAY_TRACING_SHADER_GROUP_TYPE_GENERAL_KHR, General: idx,
			ClosestHit: vulkan.ShaderUnused, AnyHit: vulkan.ShaderUnused, Intersection: vulkan.ShaderUnused,
		})
		set2Sources = append(set2Sources, stageBindings{stage: C.VK_SHADER_STAGE_MISS_BIT_KHR, bindings: e.Bindings})
	}

	for _, name := range desc.HitShaders {
		e, err := pc.shaders.Load(name, "rchit")
		if err != nil {
			return nil, err
		}
		module, err := vulkan.CreateShaderModule(pc.device.Device, e.Words)
		if err != nil {
			return nil, errf(KindShader, "failed to create hit module %q: %v", name, err)
		}
		idx := uint32(len(stages))
		stages = append(stages, vulkan.ShaderStage(C.VK_SHADER_STAGE_CLOSEST_HIT_BIT_KHR, module, entry))
		groups = append(groups, vulkan.RaytracingShaderGroup{
			Kind: C.VK_RAY_TRACING_SHADER_GROUP_TYPE_TRIANGLES_HIT_GROUP_KHR, General: vulkan.ShaderUnused,
			ClosestHit: idx, AnyHit: vulkan.ShaderUnused, Intersection: vulkan.ShaderUnused,
		})
		set2Sources = append(set2Sources, stageBindings{stage: C.VK_SHADER_STAGE_CLOSEST_HIT_BIT_KHR, bindings: e.Bindings})
	}

	set2Layout, set2Reflected, err := buildSet2Layout(pc.device.Device, set2Sources)
	if err != nil {
		return nil, errf(KindResourceCreate, "failed to build set-2 layout for %q: %v", desc.Name, err)
	}

	layout, err := pc.pipelineLayout(desc.PushConstantBytes, set2Layout)
	if err != nil {
		return nil, err
	}
	if set2Layout != nil {
		pc.set2Layouts[desc.Name] = set2Layout
		pc.set2Bindings[desc.Name] = set2Reflected
	}

	p, err := vulkan.CreateRaytracingPipeline(pc.device.Instance.Handle, pc.device.Device, stages, groups, vulkan.PipelineLayout(layout), desc.MaxRecursion)
	if err != nil {
		return nil, errf(KindResourceCreate, "failed to create raytracing pipeline %q: %v", desc.Name, err)
	}
	pc.raytraced[desc.Name] = p
	return p, nil
}

// Destroy releases every cached pipeline.
func (pc *PipelineCache) Destroy() {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	for _, p := range pc.graphics {
		p.Destroy(pc.device.Device)
	}
	for _, p := range pc.compute {
		p.Destroy(pc.device.Device)
	}
	for _, p := range pc.raytraced {
		p.Destroy(pc.device.Device)
	}
	for _, l := range pc.set2Layouts {
		C.vkDestroyDescriptorSetLayout(C.VkDevice(pc.device.Device.Device), l, nil)
	}
}
