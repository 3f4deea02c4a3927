package vulkan

/*
#include <vulkan/vulkan.h>
*/
import "C"
import "unsafe"

// FeatureSet records the subset of device features the render graph cares about, queried once at
// device-creation time the same way Device.Properties/Features/Limits are captured in device.go.
type FeatureSet struct {
	DynamicRendering     bool
	Synchronization2     bool
	BufferDeviceAddress  bool
	ScalarBlockLayout    bool
	DescriptorIndexing   bool
	RaytracingSupported  bool
}

// QueryFeatures chains the Vulkan 1.2 / dynamic-rendering / synchronization-2 feature structs onto a
// single vkGetPhysicalDeviceFeatures2 call, following the teacher's pattern of populating a Go struct
// from a single C query (see device.go's findQueueFamilies/rateDevice) rather than many round trips.
func QueryFeatures(physicalDevice C.VkPhysicalDevice) FeatureSet {
	var rtPipeline C.VkPhysicalDeviceRayTracingPipelineFeaturesKHR
	rtPipeline.sType = C.VK_STRUCTURE_TYPE_PHYSICAL_DEVICE_RAY_TRACING_PIPELINE_FEATURES_KHR

	var accelStruct C.VkPhysicalDeviceAccelerationStructureFeaturesKHR
	accelStruct.sType = C.VK_STRUCTURE_TYPE_PHYSICAL_DEVICE_ACCELERATION_STRUCTURE_FEATURES_KHR

	var sync2 C.VkPhysicalDeviceSynchronization2Features
	sync2.sType = C.VK_STRUCTURE_TYPE_PHYSICAL_DEVICE_SYNCHRONIZATION_2_FEATURES

	var dynRender C.VkPhysicalDeviceDynamicRenderingFeatures
	dynRender.sType = C.VK_STRUCTURE_TYPE_PHYSICAL_DEVICE_DYNAMIC_RENDERING_FEATURES

	var vk12 C.VkPhysicalDeviceVulkan12Features
	vk12.sType = C.VK_STRUCTURE_TYPE_PHYSICAL_DEVICE_VULKAN_1_2_FEATURES

	var feats2 C.VkPhysicalDeviceFeatures2
	feats2.sType = C.VK_STRUCTURE_TYPE_PHYSICAL_DEVICE_FEATURES_2

	vk12.pNext = unsafe.Pointer(&dynRender)
	dynRender.pNext = unsafe.Pointer(&sync2)
	sync2.pNext = unsafe.Pointer(&accelStruct)
	accelStruct.pNext = unsafe.Pointer(&rtPipeline)
	feats2.pNext = unsafe.Pointer(&vk12)

	C.vkGetPhysicalDeviceFeatures2(physicalDevice, &feats2)

	return FeatureSet{
		DynamicRendering:    dynRender.dynamicRendering != 0,
		Synchronization2:    sync2.synchronization2 != 0,
		BufferDeviceAddress: vk12.bufferDeviceAddress != 0,
		ScalarBlockLayout:   vk12.scalarBlockLayout != 0,
		DescriptorIndexing:  vk12.descriptorBindingPartiallyBound != 0 && vk12.runtimeDescriptorArray != 0,
		RaytracingSupported: accelStruct.accelerationStructure != 0 && rtPipeline.rayTracingPipeline != 0,
	}
}

// RaytracingProperties carries the device limits the shader binding table layout depends on.
type RaytracingProperties struct {
	ShaderGroupHandleSize      uint32
	ShaderGroupBaseAlignment   uint32
	ShaderGroupHandleAlignment uint32
}

// QueryRaytracingProperties reads VkPhysicalDeviceRayTracingPipelinePropertiesKHR via
// vkGetPhysicalDeviceProperties2, the properties-side counterpart to QueryFeatures above. Callers must check
// FeatureSet.RaytracingSupported first; on an unsupported device the returned struct is the zero value.
func QueryRaytracingProperties(physicalDevice C.VkPhysicalDevice) RaytracingProperties {
	var rtProps C.VkPhysicalDeviceRayTracingPipelinePropertiesKHR
	rtProps.sType = C.VK_STRUCTURE_TYPE_PHYSICAL_DEVICE_RAY_TRACING_PIPELINE_PROPERTIES_KHR

	var props2 C.VkPhysicalDeviceProperties2
	props2.sType = C.VK_STRUCTURE_TYPE_PHYSICAL_DEVICE_PROPERTIES_2
	props2.pNext = unsafe.Pointer(&rtProps)

	C.vkGetPhysicalDeviceProperties2(physicalDevice, &props2)

	return RaytracingProperties{
		ShaderGroupHandleSize:      uint32(rtProps.shaderGroupHandleSize),
		ShaderGroupBaseAlignment:   uint32(rtProps.shaderGroupBaseAlignment),
		ShaderGroupHandleAlignment: uint32(rtProps.shaderGroupHandleAlignment),
	}
}

// RequiredDeviceExtensions returns the extension names the engine requests in addition to VK_KHR_swapchain,
// conditioned on what QueryFeatures reported so an unsupported raytracing device doesn't fail device
// creation outright.
func RequiredDeviceExtensions(fs FeatureSet) []string {
	ext := []string{
		"VK_KHR_swapchain",
		"VK_KHR_dynamic_rendering",
		"VK_KHR_synchronization2",
		"VK_KHR_buffer_device_address",
	}
	if fs.RaytracingSupported {
		ext = append(ext,
			"VK_KHR_acceleration_structure",
			"VK_KHR_ray_tracing_pipeline",
			"VK_KHR_deferred_host_operations",
		)
	}
	return ext
}
