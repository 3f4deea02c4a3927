package vulkan

/*
#include <vulkan/vulkan.h>
#include <stdlib.h>

VkResult CreateComputePipelinesExt(VkDevice device, VkPipelineCache cache, uint32_t count, const VkComputePipelineCreateInfo* infos, VkPipeline* pipelines) {
    return vkCreateComputePipelines(device, cache, count, infos, NULL, pipelines);
}

VkResult CreateRayTracingPipelinesExt(VkInstance instance, VkDevice device, VkDeferredOperationKHR deferred, VkPipelineCache cache, uint32_t count, const VkRayTracingPipelineCreateInfoKHR* infos, VkPipeline* pipelines) {
    PFN_vkCreateRayTracingPipelinesKHR func = (PFN_vkCreateRayTracingPipelinesKHR)vkGetInstanceProcAddr(instance, "vkCreateRayTracingPipelinesKHR");
    if (func == NULL) {
        return VK_ERROR_EXTENSION_NOT_PRESENT;
    }
    return func(device, deferred, cache, count, infos, NULL, pipelines);
}

VkResult GetRayTracingShaderGroupHandlesExt(VkInstance instance, VkDevice device, VkPipeline pipeline, uint32_t firstGroup, uint32_t groupCount, size_t dataSize, void* data) {
    PFN_vkGetRayTracingShaderGroupHandlesKHR func = (PFN_vkGetRayTracingShaderGroupHandlesKHR)vkGetInstanceProcAddr(instance, "vkGetRayTracingShaderGroupHandlesKHR");
    if (func == NULL) {
        return VK_ERROR_EXTENSION_NOT_PRESENT;
    }
    return func(device, pipeline, firstGroup, groupCount, dataSize, data);
}

static VkShaderModule createShaderModule(VkDevice device, const uint32_t* code, size_t size) {
    VkShaderModuleCreateInfo createInfo = {0};
    createInfo.sType = VK_STRUCTURE_TYPE_SHADER_MODULE_CREATE_INFO;
    createInfo.codeSize = size;
    createInfo.pCode = code;

    VkShaderModule shaderModule;
    if (vkCreateShaderModule(device, &createInfo, NULL, &shaderModule) != VK_SUCCESS) {
        return NULL;
    }
    return shaderModule;
}
*/
import "C"
import (
	"fmt"
	"unsafe"
)

// ComputePipeline mirrors Pipeline but for a single compute shader stage/layout pair, created the same
// way CreateGraphicsPipeline builds shader modules before assembling the pipeline create info.
type ComputePipeline struct {
	Handle C.VkPipeline
	Layout C.VkPipelineLayout
	Shader C.VkShaderModule
}

func CreateComputePipeline(device *Device, code []uint32, layout C.VkPipelineLayout, entryPoint string) (*ComputePipeline, error) {
	if len(code) == 0 {
		return nil, fmt.Errorf("compute pipeline requires shader code")
	}
	module := C.createShaderModule(device.Device, (*C.uint32_t)(unsafe.Pointer(&code[0])), C.size_t(len(code)*4))
	if module == nil {
		return nil, fmt.Errorf("failed to create compute shader module")
	}

	cEntry := C.CString(entryPoint)
	defer C.free(unsafe.Pointer(cEntry))

	stage := C.VkPipelineShaderStageCreateInfo{
		sType:  C.VK_STRUCTURE_TYPE_PIPELINE_SHADER_STAGE_CREATE_INFO,
		stage:  C.VK_SHADER_STAGE_COMPUTE_BIT,
		module: module,
		pName:  cEntry,
	}
	createInfo := C.VkComputePipelineCreateInfo{
		sType:  C.VK_STRUCTURE_TYPE_COMPUTE_PIPELINE_CREATE_INFO,
		stage:  stage,
		layout: layout,
	}

	var pipeline C.VkPipeline
	if result := C.CreateComputePipelinesExt(device.Device, nil, 1, &createInfo, &pipeline); result != C.VK_SUCCESS {
		return nil, fmt.Errorf("failed to create compute pipeline: %d", result)
	}
	return &ComputePipeline{Handle: pipeline, Layout: layout, Shader: module}, nil
}

func (p *ComputePipeline) Destroy(device *Device) {
	if p.Handle != nil {
		C.vkDestroyPipeline(device.Device, p.Handle, nil)
	}
	if p.Shader != nil {
		C.vkDestroyShaderModule(device.Device, p.Shader, nil)
	}
}

// RaytracingPipeline holds the pipeline handle plus the per-group shader modules so the SBT can later be
// assembled from vkGetRayTracingShaderGroupHandlesKHR output.
type RaytracingPipeline struct {
	Handle      C.VkPipeline
	Layout      C.VkPipelineLayout
	GroupCount  uint32
	modules     []C.VkShaderModule
}

// RaytracingShaderGroup is one entry of raygen/miss/closest-hit, addressed by shader stage and module index
// following the raygen/miss/hit group layout VkRayTracingShaderGroupCreateInfoKHR expects.
type RaytracingShaderGroup struct {
	Kind          C.VkRayTracingShaderGroupTypeKHR
	General       uint32
	ClosestHit    uint32
	AnyHit        uint32
	Intersection  uint32
}

const ShaderUnused = C.VK_SHADER_UNUSED_KHR

// ShaderStage builds one VkPipelineShaderStageCreateInfo entry. Exists so callers outside this package can
// assemble a raytracing or compute stage list without reaching into the unexported fields cgo generates for
// the C struct.
func ShaderStage(stage C.VkShaderStageFlagBits, module C.VkShaderModule, entryPoint *C.char) C.VkPipelineShaderStageCreateInfo {
	return C.VkPipelineShaderStageCreateInfo{
		sType:  C.VK_STRUCTURE_TYPE_PIPELINE_SHADER_STAGE_CREATE_INFO,
		stage:  stage,
		module: module,
		pName:  entryPoint,
	}
}

func CreateRaytracingPipeline(instance C.VkInstance, device *Device, stages []C.VkPipelineShaderStageCreateInfo, groups []RaytracingShaderGroup, layout C.VkPipelineLayout, maxRecursion uint32) (*RaytracingPipeline, error) {
	cGroups := make([]C.VkRayTracingShaderGroupCreateInfoKHR, len(groups))
	for i, g := range groups {
		cGroups[i] = C.VkRayTracingShaderGroupCreateInfoKHR{
			sType:              C.VK_STRUCTURE_TYPE_RAY_TRACING_SHADER_GROUP_CREATE_INFO_KHR,
			_type:              g.Kind,
			generalShader:      C.uint32_t(g.General),
			closestHitShader:   C.uint32_t(g.ClosestHit),
			anyHitShader:       C.uint32_t(g.AnyHit),
			intersectionShader: C.uint32_t(g.Intersection),
		}
	}

	createInfo := C.VkRayTracingPipelineCreateInfoKHR{
		sType:                        C.VK_STRUCTURE_TYPE_RAY_TRACING_PIPELINE_CREATE_INFO_KHR,
		stageCount:                   C.uint32_t(len(stages)),
		groupCount:                   C.uint32_t(len(cGroups)),
		maxPipelineRayRecursionDepth: C.uint32_t(maxRecursion),
		layout:                       layout,
	}
	if len(stages) > 0 {
		createInfo.pStages = &stages[0]
	}
	if len(cGroups) > 0 {
		createInfo.pGroups = &cGroups[0]
	}

	var pipeline C.VkPipeline
	if result := C.CreateRayTracingPipelinesExt(instance, device.Device, nil, nil, 1, &createInfo, &pipeline); result != C.VK_SUCCESS {
		return nil, fmt.Errorf("failed to create raytracing pipeline: %d", result)
	}

	rp := &RaytracingPipeline{Handle: pipeline, Layout: layout, GroupCount: uint32(len(groups))}
	for _, s := range stages {
		rp.modules = append(rp.modules, s.module)
	}
	return rp, nil
}

// ShaderGroupHandles copies the raw opaque group handles into a byte slice for SBT assembly; each handle is
// handleSize bytes, matching the device's rayTracingShaderGroupHandleSize property.
func ShaderGroupHandles(instance C.VkInstance, device *Device, pipeline *RaytracingPipeline, handleSize uint32) ([]byte, error) {
	total := int(handleSize) * int(pipeline.GroupCount)
	buf := make([]byte, total)
	if total == 0 {
		return buf, nil
	}
	result := C.GetRayTracingShaderGroupHandlesExt(instance, device.Device, pipeline.Handle, 0, C.uint32_t(pipeline.GroupCount), C.size_t(total), unsafe.Pointer(&buf[0]))
	if result != C.VK_SUCCESS {
		return nil, fmt.Errorf("failed to get shader group handles: %d", result)
	}
	return buf, nil
}

func (p *RaytracingPipeline) Destroy(device *Device) {
	if p.Handle != nil {
		C.vkDestroyPipeline(device.Device, p.Handle, nil)
	}
	for _, m := range p.modules {
		if m != nil {
			C.vkDestroyShaderModule(device.Device, m, nil)
		}
	}
}
