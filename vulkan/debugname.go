package vulkan

/*
#include <vulkan/vulkan.h>
#include <stdlib.h>

VkResult SetDebugUtilsObjectNameEXT(VkDevice device, VkInstance instance, const VkDebugUtilsObjectNameInfoEXT* info) {
    PFN_vkSetDebugUtilsObjectNameEXT func = (PFN_vkSetDebugUtilsObjectNameEXT)vkGetInstanceProcAddr(instance, "vkSetDebugUtilsObjectNameEXT");
    if (func == NULL) {
        return VK_SUCCESS;
    }
    return func(device, info);
}
*/
import "C"
import "unsafe"

// SetDebugName assigns a VK_EXT_debug_utils object name, used by gpu.RealizeImages to label the render
// graph's realized images for capture tools. It is a best-effort call: devices without
// VK_EXT_debug_utils enabled simply get a no-op from the null function pointer guard, matching the
// teacher's own runtime-checked-optional-extension pattern in instance.go's
// CreateDebugUtilsMessengerEXT/DestroyDebugUtilsMessengerEXT rather than a Go build tag.
func SetDebugName(instance C.VkInstance, device *Device, objectType C.VkObjectType, handle uint64, name string) {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))

	info := C.VkDebugUtilsObjectNameInfoEXT{
		sType:        C.VK_STRUCTURE_TYPE_DEBUG_UTILS_OBJECT_NAME_INFO_EXT,
		objectType:   objectType,
		objectHandle: C.uint64_t(handle),
		pObjectName:  cname,
	}
	C.SetDebugUtilsObjectNameEXT(device.Device, instance, &info)
}
