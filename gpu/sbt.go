package gpu

/*
#include <vulkan/vulkan.h>
*/
import "C"
import (
	"unsafe"

	"render-engine/vulkan"
)

// BuildShaderBindingTable assembles one host-visible vulkan.Buffer holding every shader group's handle at
// an aligned record start, plus the three VkStridedDeviceAddressRegionKHR values vkCmdTraceRaysKHR needs —
// per §4.5 step 5 and §6's bit-exact layout requirement: one raygen record, missCount miss records, hitCount
// hit records, laid out raygen-then-miss-then-hit with each record padded to shaderGroupBaseAlignment.
func BuildShaderBindingTable(ctx *Context, pipeline *vulkan.RaytracingPipeline, missCount, hitCount uint32) (*vulkan.Buffer, vulkan.ShaderBindingTable, error) {
	props := vulkan.QueryRaytracingProperties(ctx.Device.PhysicalDevice)
	handleSize := props.ShaderGroupHandleSize
	baseAlign := props.ShaderGroupBaseAlignment
	recordSize := align(handleSize, baseAlign)

	totalGroups := 1 + missCount + hitCount
	handles, err := vulkan.ShaderGroupHandles(ctx.Instance.Handle, ctx.Device, pipeline, handleSize)
	if err != nil {
		return nil, vulkan.ShaderBindingTable{}, errf(KindResourceCreate, "failed to read shader group handles: %v", err)
	}

	tableSize := uint64(recordSize) * uint64(totalGroups)
	buf, err := vulkan.CreateBuffer(ctx.Device, tableSize,
		C.VK_BUFFER_USAGE_SHADER_BINDING_TABLE_BIT_KHR|C.VK_BUFFER_USAGE_SHADER_DEVICE_ADDRESS_BIT,
		C.VK_MEMORY_PROPERTY_HOST_VISIBLE_BIT|C.VK_MEMORY_PROPERTY_HOST_COHERENT_BIT)
	if err != nil {
		return nil, vulkan.ShaderBindingTable{}, errf(KindResourceCreate, "failed to allocate SBT buffer: %v", err)
	}

	if err := buf.Map(ctx.Device); err != nil {
		buf.Destroy(ctx.Device)
		return nil, vulkan.ShaderBindingTable{}, errf(KindResourceCreate, "failed to map SBT buffer: %v", err)
	}
	for i := uint32(0); i < totalGroups; i++ {
		src := handles[i*handleSize : (i+1)*handleSize]
		dst := unsafe.Add(buf.MappedData, uint64(i)*uint64(recordSize))
		buf.CopyDataAt(dst, unsafe.Pointer(&src[0]), uint64(handleSize))
	}
	buf.Unmap(ctx.Device)

	base := vulkan.BufferDeviceAddress(ctx.Device, buf)
	stride := vulkan.DeviceSize(recordSize)

	sbt := vulkan.ShaderBindingTable{
		Raygen: vulkan.StridedAddressRegion(base, stride, stride),
	}
	if missCount > 0 {
		sbt.Miss = vulkan.StridedAddressRegion(base+vulkan.DeviceAddress(recordSize), stride, stride*vulkan.DeviceSize(missCount))
	}
	if hitCount > 0 {
		sbt.Hit = vulkan.StridedAddressRegion(
			base+vulkan.DeviceAddress(recordSize)*vulkan.DeviceAddress(1+missCount), stride, stride*vulkan.DeviceSize(hitCount),
		)
	}
	return buf, sbt, nil
}

func align(value, alignment uint32) uint32 {
	if alignment == 0 {
		return value
	}
	return (value + alignment - 1) / alignment * alignment
}
