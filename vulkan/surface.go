package vulkan

/*
#include <vulkan/vulkan.h>
*/
import "C"
import "unsafe"

// InstanceHandleUintptr exposes the raw VkInstance handle as a uintptr for windowing libraries (GLFW) that
// create a VkSurfaceKHR without their own cgo Vulkan bindings.
func InstanceHandleUintptr(inst *Instance) uintptr {
	return uintptr(unsafe.Pointer(inst.Handle))
}

// SurfaceFromUintptr converts a VkSurfaceKHR handle received as a uintptr (from GLFW's
// CreateWindowSurface) back into the C type the rest of this package expects.
func SurfaceFromUintptr(u uintptr) C.VkSurfaceKHR {
	return C.VkSurfaceKHR(unsafe.Pointer(u))
}
