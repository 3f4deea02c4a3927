package gpu

/*
#include <vulkan/vulkan.h>
*/
import "C"
import (
	"unsafe"

	"render-engine/core"
	"render-engine/vulkan"
)

// StandardVertexInput describes core.Vertex's memory layout (position, normal, UV, color, tangent,
// bitangent) the way the teacher's fixed vertex shader expected it laid out, generalized into a
// VertexInputDescription any GraphicsPipelineDesc can reuse instead of every caller hand-rolling its own
// binding/attribute slices.
func StandardVertexInput() vulkan.VertexInputDescription {
	var v core.Vertex
	stride := uint32(unsafe.Sizeof(v))

	return vulkan.VertexInputDescription{
		BindingDescriptions: []vulkan.VertexInputBindingDescription{
			vulkan.GetVertexLayoutBinding(0, stride),
		},
		AttributeDescriptions: []vulkan.VertexInputAttributeDescription{
			vulkan.GetVertexAttributeLocation(0, 0, C.VK_FORMAT_R32G32B32_SFLOAT, uint32(unsafe.Offsetof(v.Position))),
			vulkan.GetVertexAttributeLocation(1, 0, C.VK_FORMAT_R32G32B32_SFLOAT, uint32(unsafe.Offsetof(v.Normal))),
			vulkan.GetVertexAttributeLocation(2, 0, C.VK_FORMAT_R32G32_SFLOAT, uint32(unsafe.Offsetof(v.UV))),
			vulkan.GetVertexAttributeLocation(3, 0, C.VK_FORMAT_R32G32B32A32_SFLOAT, uint32(unsafe.Offsetof(v.Color))),
			vulkan.GetVertexAttributeLocation(4, 0, C.VK_FORMAT_R32G32B32_SFLOAT, uint32(unsafe.Offsetof(v.Tangent))),
			vulkan.GetVertexAttributeLocation(5, 0, C.VK_FORMAT_R32G32B32_SFLOAT, uint32(unsafe.Offsetof(v.Bitangent))),
		},
	}
}
