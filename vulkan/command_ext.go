package vulkan

/*
#include <vulkan/vulkan.h>

VkResult CmdTraceRaysExt(VkInstance instance, VkCommandBuffer cb,
    const VkStridedDeviceAddressRegionKHR* raygen,
    const VkStridedDeviceAddressRegionKHR* miss,
    const VkStridedDeviceAddressRegionKHR* hit,
    const VkStridedDeviceAddressRegionKHR* callable,
    uint32_t width, uint32_t height, uint32_t depth) {
    PFN_vkCmdTraceRaysKHR func = (PFN_vkCmdTraceRaysKHR)vkGetInstanceProcAddr(instance, "vkCmdTraceRaysKHR");
    if (func == NULL) {
        return VK_ERROR_EXTENSION_NOT_PRESENT;
    }
    func(cb, raygen, miss, hit, callable, width, height, depth);
    return VK_SUCCESS;
}
*/
import "C"

// Dispatch records a compute dispatch, the compute-pass equivalent of Draw/DrawIndexed.
func (cb *CommandBuffer) Dispatch(groupsX, groupsY, groupsZ uint32) {
	C.vkCmdDispatch(cb.Handle, C.uint32_t(groupsX), C.uint32_t(groupsY), C.uint32_t(groupsZ))
}

// BindComputePipeline binds pipeline at VK_PIPELINE_BIND_POINT_COMPUTE. command.go's BindPipeline hardcodes
// the graphics bind point, so compute pipelines need this separate entry point rather than a shared one.
func (cb *CommandBuffer) BindComputePipeline(pipeline C.VkPipeline) {
	C.vkCmdBindPipeline(cb.Handle, C.VK_PIPELINE_BIND_POINT_COMPUTE, pipeline)
}

// BindDescriptorSetsCompute is BindDescriptorSets's VK_PIPELINE_BIND_POINT_COMPUTE counterpart, for the same
// reason BindComputePipeline exists alongside BindPipeline.
func (cb *CommandBuffer) BindDescriptorSetsCompute(layout C.VkPipelineLayout, firstSet uint32, descriptorSets []C.VkDescriptorSet) {
	C.vkCmdBindDescriptorSets(cb.Handle, C.VK_PIPELINE_BIND_POINT_COMPUTE, layout, C.uint32_t(firstSet), C.uint32_t(len(descriptorSets)), &descriptorSets[0], 0, nil)
}

// ShaderBindingTable groups the four strided device-address regions vkCmdTraceRaysKHR expects, assembled
// by gpu.BuildShaderBindingTable (gpu/sbt.go).
type ShaderBindingTable struct {
	Raygen, Miss, Hit, Callable C.VkStridedDeviceAddressRegionKHR
}

// StridedAddressRegion builds one VkStridedDeviceAddressRegionKHR entry. Exists so callers outside this
// package can assemble a ShaderBindingTable without reaching into the unexported fields cgo generates for
// the C struct.
func StridedAddressRegion(addr C.VkDeviceAddress, stride, size C.VkDeviceSize) C.VkStridedDeviceAddressRegionKHR {
	return C.VkStridedDeviceAddressRegionKHR{deviceAddress: addr, stride: stride, size: size}
}

// TraceRaysWithSBT records a ray dispatch using the command buffer's bound raytracing pipeline and the
// SBT regions passed in sbt.
// The instance handle is threaded through because vkCmdTraceRaysKHR is resolved via
// vkGetInstanceProcAddr, same as the other KHR raytracing entry points in this package.
func (cb *CommandBuffer) TraceRaysWithSBT(instance C.VkInstance, sbt ShaderBindingTable, width, height, depth uint32) {
	C.CmdTraceRaysExt(instance, cb.Handle, &sbt.Raygen, &sbt.Miss, &sbt.Hit, &sbt.Callable, C.uint32_t(width), C.uint32_t(height), C.uint32_t(depth))
}

// TraceRays is a convenience for callers that already bound a command-buffer-scoped SBT set via
// BindShaderBindingTable; kept distinct from TraceRaysWithSBT so execution-context code (graph package)
// doesn't need a Vulkan instance handle in its hot path.
func (cb *CommandBuffer) TraceRays(width, height, depth uint32) {
	if cb.boundSBT == nil || cb.boundInstance == nil {
		return
	}
	cb.TraceRaysWithSBT(cb.boundInstance, *cb.boundSBT, width, height, depth)
}

// BindShaderBindingTable stashes the instance handle and SBT regions the next TraceRays call will use,
// mirroring how BindPipeline in command.go stores no extra state but calling code always binds
// immediately before use.
func (cb *CommandBuffer) BindShaderBindingTable(instance C.VkInstance, sbt ShaderBindingTable) {
	cb.boundInstance = instance
	cb.boundSBT = &sbt
}
