package vulkan

/*
#include <vulkan/vulkan.h>
*/
import "C"

// Format, Layout and the other aliases below re-export plain Vulkan enum and handle types so that packages
// built on top of this one (graph, gpu) — and callers further up, like cmd/demo — can name and pass around
// Vulkan values without each importing cgo's "C" pseudo-package themselves: cgo gives every package its own
// distinct Go type for the same C typedef, so a VkDescriptorSet read through gpu's "C" import and one read
// through graph's are not assignable to each other without a shared alias declared once, here.
type (
	Format              = C.VkFormat
	ImageLayout         = C.VkImageLayout
	AccessFlags2        = C.VkAccessFlags2
	PipelineStageFlags2 = C.VkPipelineStageFlags2
	Topology            = C.VkPrimitiveTopology
	PolygonMode         = C.VkPolygonMode
	CullMode            = C.VkCullModeFlags

	DescriptorSetHandle           = C.VkDescriptorSet
	DescriptorSetLayout           = C.VkDescriptorSetLayout
	DescriptorSetLayoutBinding    = C.VkDescriptorSetLayoutBinding
	DescriptorPoolSize            = C.VkDescriptorPoolSize
	PipelineLayout                = C.VkPipelineLayout
	PipelineHandle                = C.VkPipeline
	ShaderModule                  = C.VkShaderModule
	Sampler                       = C.VkSampler
	ShaderStageFlags              = C.VkShaderStageFlags
	PipelineShaderStageCreateInfo = C.VkPipelineShaderStageCreateInfo
	ImageAspectFlags              = C.VkImageAspectFlags
	CommandBufferHandle           = C.VkCommandBuffer
	DeviceAddress                 = C.VkDeviceAddress
	DeviceSize                    = C.VkDeviceSize
	SemaphoreHandle               = C.VkSemaphore
	FenceHandle                   = C.VkFence
	SwapchainHandle               = C.VkSwapchainKHR
	SurfaceHandle                 = C.VkSurfaceKHR

	VertexInputBindingDescription   = C.VkVertexInputBindingDescription
	VertexInputAttributeDescription = C.VkVertexInputAttributeDescription
)

const (
	FormatR8G8B8A8Unorm  = C.VK_FORMAT_R8G8B8A8_UNORM
	FormatR8G8B8A8Srgb   = C.VK_FORMAT_R8G8B8A8_SRGB
	FormatR16G16B16A16Sfloat = C.VK_FORMAT_R16G16B16A16_SFLOAT
	FormatR32G32B32A32Sfloat = C.VK_FORMAT_R32G32B32A32_SFLOAT
	FormatD32Sfloat      = C.VK_FORMAT_D32_SFLOAT
	FormatD24UnormS8Uint = C.VK_FORMAT_D24_UNORM_S8_UINT
	FormatUndefined      = C.VK_FORMAT_UNDEFINED

	TopologyTriangleList = C.VK_PRIMITIVE_TOPOLOGY_TRIANGLE_LIST
	TopologyLineList     = C.VK_PRIMITIVE_TOPOLOGY_LINE_LIST
	TopologyPointList    = C.VK_PRIMITIVE_TOPOLOGY_POINT_LIST

	PolygonModeFill  = C.VK_POLYGON_MODE_FILL
	PolygonModeLine  = C.VK_POLYGON_MODE_LINE

	CullModeNone  = C.VK_CULL_MODE_NONE
	CullModeBack  = C.VK_CULL_MODE_BACK_BIT
	CullModeFront = C.VK_CULL_MODE_FRONT_BIT
)
