package vulkan

/*
#include <vulkan/vulkan.h>
#include <string.h>

// makeIdentityInstance builds a VkAccelerationStructureInstanceKHR at the identity transform referencing
// blasAddress. Filled in C rather than through cgo's generated (and compiler-dependent) bitfield accessors
// for instanceCustomIndex/mask/instanceShaderBindingTableRecordOffset/flags.
VkAccelerationStructureInstanceKHR makeIdentityInstance(uint64_t blasAddress) {
    VkAccelerationStructureInstanceKHR inst;
    memset(&inst, 0, sizeof(inst));
    inst.transform.matrix[0][0] = 1.0f;
    inst.transform.matrix[1][1] = 1.0f;
    inst.transform.matrix[2][2] = 1.0f;
    inst.mask = 0xFF;
    inst.accelerationStructureReference = blasAddress;
    return inst;
}
*/
import "C"
import (
	"fmt"
	"unsafe"
)

// AccelerationStructure wraps a VkAccelerationStructureKHR plus its backing buffer, grounded on the same
// Buffer/Image ownership style used throughout buffer.go (handle + memory + destroy method, nothing hidden).
type AccelerationStructure struct {
	Handle       C.VkAccelerationStructureKHR
	Buffer       *Buffer
	DeviceAddress uint64
}

// BuildBLAS builds a bottom-level acceleration structure over one triangle geometry described by device
// addresses into vertex/index buffers, following the spec's requirement that the scene collaborator expose
// GPU buffers with device addresses rather than CPU-side mesh data.
func BuildBLAS(device *Device, vertexAddr, indexAddr C.VkDeviceAddress, vertexStride uint64, vertexCount, triangleCount uint32) (*AccelerationStructure, error) {
	geometry := C.VkAccelerationStructureGeometryKHR{
		sType:        C.VK_STRUCTURE_TYPE_ACCELERATION_STRUCTURE_GEOMETRY_KHR,
		geometryType: C.VK_GEOMETRY_TYPE_TRIANGLES_KHR,
		flags:        C.VK_GEOMETRY_OPAQUE_BIT_KHR,
	}
	triData := (*C.VkAccelerationStructureGeometryTrianglesDataKHR)(unsafe.Pointer(&geometry.geometry))
	triData.sType = C.VK_STRUCTURE_TYPE_ACCELERATION_STRUCTURE_GEOMETRY_TRIANGLES_DATA_KHR
	triData.vertexFormat = C.VK_FORMAT_R32G32B32_SFLOAT
	triData.vertexStride = C.VkDeviceSize(vertexStride)
	triData.maxVertex = C.uint32_t(vertexCount - 1)
	triData.indexType = C.VK_INDEX_TYPE_UINT32
	*(*C.VkDeviceAddress)(unsafe.Pointer(&triData.vertexData)) = vertexAddr
	*(*C.VkDeviceAddress)(unsafe.Pointer(&triData.indexData)) = indexAddr

	buildInfo := C.VkAccelerationStructureBuildGeometryInfoKHR{
		sType:         C.VK_STRUCTURE_TYPE_ACCELERATION_STRUCTURE_BUILD_GEOMETRY_INFO_KHR,
		_type:         C.VK_ACCELERATION_STRUCTURE_TYPE_BOTTOM_LEVEL_KHR,
		flags:         C.VK_BUILD_ACCELERATION_STRUCTURE_PREFER_FAST_TRACE_BIT_KHR,
		mode:          C.VK_BUILD_ACCELERATION_STRUCTURE_MODE_BUILD_KHR,
		geometryCount: 1,
		pGeometries:   &geometry,
	}

	var sizeInfo C.VkAccelerationStructureBuildSizesInfoKHR
	sizeInfo.sType = C.VK_STRUCTURE_TYPE_ACCELERATION_STRUCTURE_BUILD_SIZES_INFO_KHR
	primCounts := C.uint32_t(triangleCount)
	C.vkGetAccelerationStructureBuildSizesKHR(device.Device, C.VK_ACCELERATION_STRUCTURE_BUILD_TYPE_DEVICE_KHR, &buildInfo, &primCounts, &sizeInfo)

	asBuffer, err := CreateBuffer(device, uint64(sizeInfo.accelerationStructureSize),
		C.VK_BUFFER_USAGE_ACCELERATION_STRUCTURE_STORAGE_BIT_KHR|C.VK_BUFFER_USAGE_SHADER_DEVICE_ADDRESS_BIT,
		C.VK_MEMORY_PROPERTY_DEVICE_LOCAL_BIT)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate acceleration structure buffer: %w", err)
	}

	createInfo := C.VkAccelerationStructureCreateInfoKHR{
		sType:  C.VK_STRUCTURE_TYPE_ACCELERATION_STRUCTURE_CREATE_INFO_KHR,
		buffer: asBuffer.Handle,
		size:   sizeInfo.accelerationStructureSize,
		_type:  C.VK_ACCELERATION_STRUCTURE_TYPE_BOTTOM_LEVEL_KHR,
	}

	as := &AccelerationStructure{Buffer: asBuffer}
	if result := C.vkCreateAccelerationStructureKHR(device.Device, &createInfo, nil, &as.Handle); result != C.VK_SUCCESS {
		return nil, fmt.Errorf("failed to create acceleration structure: %d", result)
	}

	addrInfo := C.VkAccelerationStructureDeviceAddressInfoKHR{
		sType:                 C.VK_STRUCTURE_TYPE_ACCELERATION_STRUCTURE_DEVICE_ADDRESS_INFO_KHR,
		accelerationStructure: as.Handle,
	}
	as.DeviceAddress = uint64(C.vkGetAccelerationStructureDeviceAddressKHR(device.Device, &addrInfo))

	return as, nil
}

// BuildTLAS builds a top-level acceleration structure over a device-address-referenced instance buffer,
// mirroring BuildBLAS's shape one level up.
func BuildTLAS(device *Device, instanceBufferAddr C.VkDeviceAddress, instanceCount uint32) (*AccelerationStructure, error) {
	geometry := C.VkAccelerationStructureGeometryKHR{
		sType:        C.VK_STRUCTURE_TYPE_ACCELERATION_STRUCTURE_GEOMETRY_KHR,
		geometryType: C.VK_GEOMETRY_TYPE_INSTANCES_KHR,
	}
	instData := (*C.VkAccelerationStructureGeometryInstancesDataKHR)(unsafe.Pointer(&geometry.geometry))
	instData.sType = C.VK_STRUCTURE_TYPE_ACCELERATION_STRUCTURE_GEOMETRY_INSTANCES_DATA_KHR
	*(*C.VkDeviceAddress)(unsafe.Pointer(&instData.data)) = instanceBufferAddr

	buildInfo := C.VkAccelerationStructureBuildGeometryInfoKHR{
		sType:         C.VK_STRUCTURE_TYPE_ACCELERATION_STRUCTURE_BUILD_GEOMETRY_INFO_KHR,
		_type:         C.VK_ACCELERATION_STRUCTURE_TYPE_TOP_LEVEL_KHR,
		flags:         C.VK_BUILD_ACCELERATION_STRUCTURE_PREFER_FAST_TRACE_BIT_KHR,
		mode:          C.VK_BUILD_ACCELERATION_STRUCTURE_MODE_BUILD_KHR,
		geometryCount: 1,
		pGeometries:   &geometry,
	}

	var sizeInfo C.VkAccelerationStructureBuildSizesInfoKHR
	sizeInfo.sType = C.VK_STRUCTURE_TYPE_ACCELERATION_STRUCTURE_BUILD_SIZES_INFO_KHR
	primCounts := C.uint32_t(instanceCount)
	C.vkGetAccelerationStructureBuildSizesKHR(device.Device, C.VK_ACCELERATION_STRUCTURE_BUILD_TYPE_DEVICE_KHR, &buildInfo, &primCounts, &sizeInfo)

	asBuffer, err := CreateBuffer(device, uint64(sizeInfo.accelerationStructureSize),
		C.VK_BUFFER_USAGE_ACCELERATION_STRUCTURE_STORAGE_BIT_KHR|C.VK_BUFFER_USAGE_SHADER_DEVICE_ADDRESS_BIT,
		C.VK_MEMORY_PROPERTY_DEVICE_LOCAL_BIT)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate TLAS buffer: %w", err)
	}

	createInfo := C.VkAccelerationStructureCreateInfoKHR{
		sType:  C.VK_STRUCTURE_TYPE_ACCELERATION_STRUCTURE_CREATE_INFO_KHR,
		buffer: asBuffer.Handle,
		size:   sizeInfo.accelerationStructureSize,
		_type:  C.VK_ACCELERATION_STRUCTURE_TYPE_TOP_LEVEL_KHR,
	}

	as := &AccelerationStructure{Buffer: asBuffer}
	if result := C.vkCreateAccelerationStructureKHR(device.Device, &createInfo, nil, &as.Handle); result != C.VK_SUCCESS {
		return nil, fmt.Errorf("failed to create TLAS: %d", result)
	}
	return as, nil
}

func (as *AccelerationStructure) Destroy(device *Device) {
	if as.Handle != nil {
		C.vkDestroyAccelerationStructureKHR(device.Device, as.Handle, nil)
	}
	if as.Buffer != nil {
		as.Buffer.Destroy(device)
	}
}

// BufferDeviceAddress returns the VkDeviceAddress of a buffer created with
// VK_BUFFER_USAGE_SHADER_DEVICE_ADDRESS_BIT, used to build vertex/index/instance geometry references
// without descriptor binding, per the scene-collaborator buffer contract.
func BufferDeviceAddress(device *Device, buffer *Buffer) C.VkDeviceAddress {
	info := C.VkBufferDeviceAddressInfo{
		sType:  C.VK_STRUCTURE_TYPE_BUFFER_DEVICE_ADDRESS_INFO,
		buffer: buffer.Handle,
	}
	return C.vkGetBufferDeviceAddress(device.Device, &info)
}

// IdentityTLASInstance returns a single VkAccelerationStructureInstanceKHR at the identity transform
// referencing the BLAS at blasAddress, sized and byte-laid-out for direct upload as a TLAS instance buffer.
func IdentityTLASInstance(blasAddress uint64) C.VkAccelerationStructureInstanceKHR {
	return C.makeIdentityInstance(C.uint64_t(blasAddress))
}
