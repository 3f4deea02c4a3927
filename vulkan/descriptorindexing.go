package vulkan

/*
#include <vulkan/vulkan.h>
*/
import "C"
import (
	"fmt"
	"unsafe"
)

// BindlessTextureCount is the fixed capacity of the bindless combined-image-sampler array bound at set 1,
// binding 0. A fixed, generously sized array keeps descriptor-set-layout creation static, matching how
// CreateDescriptorSetLayout in descriptors.go always builds a fixed, known-size binding list.
const BindlessTextureCount = 1024

// CreateBindlessSetLayout builds the set-1 layout for the bindless 2D texture array: one binding, variable
// count, partially bound, update-after-bind — the descriptor-indexing feature trio the resource manager
// requires, built the same way CreateDescriptorSetLayout in descriptors.go assembles a VkDescriptorSetLayout
// from a C-side binding array.
func CreateBindlessSetLayout(device *Device) (C.VkDescriptorSetLayout, error) {
	binding := C.VkDescriptorSetLayoutBinding{
		binding:         0,
		descriptorType:  C.VK_DESCRIPTOR_TYPE_COMBINED_IMAGE_SAMPLER,
		descriptorCount: BindlessTextureCount,
		stageFlags:      C.VK_SHADER_STAGE_ALL,
	}

	bindingFlags := C.VkDescriptorBindingFlags(
		C.VK_DESCRIPTOR_BINDING_PARTIALLY_BOUND_BIT |
			C.VK_DESCRIPTOR_BINDING_UPDATE_AFTER_BIND_BIT |
			C.VK_DESCRIPTOR_BINDING_VARIABLE_DESCRIPTOR_COUNT_BIT,
	)
	flagsInfo := C.VkDescriptorSetLayoutBindingFlagsCreateInfo{
		sType:         C.VK_STRUCTURE_TYPE_DESCRIPTOR_SET_LAYOUT_BINDING_FLAGS_CREATE_INFO,
		bindingCount:  1,
		pBindingFlags: &bindingFlags,
	}

	createInfo := C.VkDescriptorSetLayoutCreateInfo{
		sType:        C.VK_STRUCTURE_TYPE_DESCRIPTOR_SET_LAYOUT_CREATE_INFO,
		pNext:        unsafe.Pointer(&flagsInfo),
		flags:        C.VK_DESCRIPTOR_SET_LAYOUT_CREATE_UPDATE_AFTER_BIND_POOL_BIT,
		bindingCount: 1,
		pBindings:    &binding,
	}

	var layout C.VkDescriptorSetLayout
	if result := C.vkCreateDescriptorSetLayout(device.Device, &createInfo, nil, &layout); result != C.VK_SUCCESS {
		return nil, fmt.Errorf("failed to create bindless set layout: %d", result)
	}
	return layout, nil
}

// WriteBindlessTexture writes a single combined-image-sampler descriptor into slot index of the bindless
// array, generalizing UpdateDescriptorSetImage in descriptors.go to an array element instead of a bare
// binding.
func WriteBindlessTexture(device *Device, set C.VkDescriptorSet, index uint32, view C.VkImageView, sampler C.VkSampler) {
	imageInfo := C.VkDescriptorImageInfo{
		sampler:     sampler,
		imageView:   view,
		imageLayout: C.VK_IMAGE_LAYOUT_SHADER_READ_ONLY_OPTIMAL,
	}
	write := C.VkWriteDescriptorSet{
		sType:           C.VK_STRUCTURE_TYPE_WRITE_DESCRIPTOR_SET,
		dstSet:          set,
		dstBinding:       0,
		dstArrayElement: C.uint32_t(index),
		descriptorCount: 1,
		descriptorType:  C.VK_DESCRIPTOR_TYPE_COMBINED_IMAGE_SAMPLER,
		pImageInfo:      &imageInfo,
	}
	C.vkUpdateDescriptorSets(device.Device, 1, &write, 0, nil)
}
