package scene

/*
#include <vulkan/vulkan.h>
*/
import "C"
import (
	"unsafe"

	"render-engine/core"
	"render-engine/graph"
	"render-engine/materials"
	"render-engine/math"
	"render-engine/vulkan"
)

// AccelerationStructureRef is the raytracing pass's view of a scene's top-level acceleration structure. Nil
// when the device lacks raytracing support or BuildGPUBuffers has not run yet; passes must check for that
// before declaring a PassRaytracing dependency on it.
type AccelerationStructureRef = *vulkan.AccelerationStructure

// GPULight is the std140-aligned directional light a lighting pass reads from its push constants or a
// uniform binding, mirroring materials.MaterialUniform's own std140 field packing.
type GPULight struct {
	DirectionIntensity [4]float32 // xyz = normalized direction, w = intensity
	Color              [4]float32
}

// GPUInstance is one entry of the scene's instance buffer: the world matrix and material index the forward
// vertex shader looks up by the instance index RenderMeshes pushes as a push constant.
type GPUInstance struct {
	Model         math.Mat4
	MaterialIndex uint32
	_pad          [3]uint32
}

// Collaborator is what graph-declared raytracing/graphics passes consume from application scene state. See
// SPEC_FULL.md §6 for the external-interfaces contract this mirrors.
type Collaborator interface {
	VertexBuffer() *vulkan.Buffer
	IndexBuffer() *vulkan.Buffer
	MaterialBuffer() *vulkan.Buffer
	InstanceBuffer() *vulkan.Buffer
	TLAS() AccelerationStructureRef
	RenderMeshes(ctx *graph.GraphicsContext) error
	SkyboxTextureIndex() uint32
	DirectionalLight() GPULight
}

// drawEntry is one merged-buffer draw range bound to one instance-buffer slot.
type drawEntry struct {
	firstIndex    uint32
	indexCount    uint32
	instanceIndex uint32
}

// gpuScene holds the buffers BuildGPUBuffers assembles from the node graph's visible meshes. Scene embeds
// it rather than exposing it directly so callers that never build GPU state (editor-only tooling, tests)
// don't need a device.
type gpuScene struct {
	vertexBuffer   *vulkan.Buffer
	indexBuffer    *vulkan.Buffer
	materialBuffer *vulkan.Buffer
	instanceBuffer *vulkan.Buffer
	tlas           *vulkan.AccelerationStructure
	blas           *vulkan.AccelerationStructure

	skyboxTextureIndex uint32
	draws              []drawEntry
}

// MaterialLookup resolves a mesh's MaterialName to the material library the demo/editor built; scenes loaded
// without a matching entry fall back to materials.DefaultMaterial().
type MaterialLookup func(name string) *materials.Material

// BuildGPUBuffers walks every visible mesh, merges their vertex/index data into one pair of combined buffers
// (grounded on scene/mesh.go's CreateMeshFromData staging-buffer pattern, generalized to many meshes instead
// of one), builds the material and per-instance storage buffers PBR shaders index by the pushed instance index, and,
// when the device supports it, a single BLAS over the merged geometry wrapped in a one-instance TLAS. It
// replaces any buffers a previous call created, destroying them first.
func (s *Scene) BuildGPUBuffers(device *vulkan.Device, raytracingSupported bool, lookup MaterialLookup, skyboxTextureIndex uint32) error {
	s.destroyGPUBuffers(device)
	s.gpu.skyboxTextureIndex = skyboxTextureIndex

	visible := s.GetVisibleNodes()
	if len(visible) == 0 {
		return nil
	}

	var vertices []core.Vertex
	var indices []uint32
	var instances []GPUInstance
	var materialList []*materials.Material
	materialIndex := make(map[string]uint32)

	for _, node := range visible {
		mesh := node.Mesh
		if mesh == nil || len(mesh.Vertices) == 0 {
			continue
		}

		mat := lookup(mesh.MaterialName)
		if mat == nil {
			mat = materials.DefaultMaterial()
		}
		midx, ok := materialIndex[mat.Name]
		if !ok {
			midx = uint32(len(materialList))
			materialIndex[mat.Name] = midx
			materialList = append(materialList, mat)
		}

		firstIndex := uint32(len(indices))
		baseVertex := uint32(len(vertices))
		vertices = append(vertices, mesh.Vertices...)
		for _, idx := range mesh.Indices {
			indices = append(indices, idx+baseVertex)
		}

		instanceIdx := uint32(len(instances))
		instances = append(instances, GPUInstance{Model: node.GetWorldMatrix(), MaterialIndex: midx})

		s.gpu.draws = append(s.gpu.draws, drawEntry{
			firstIndex:    firstIndex,
			indexCount:    uint32(len(mesh.Indices)),
			instanceIndex: instanceIdx,
		})
	}

	if len(vertices) == 0 {
		return nil
	}

	var err error
	s.gpu.vertexBuffer, err = vulkan.UploadBufferData(device, unsafe.Pointer(&vertices[0]),
		uint64(len(vertices))*uint64(unsafe.Sizeof(core.Vertex{})),
		C.VK_BUFFER_USAGE_VERTEX_BUFFER_BIT|C.VK_BUFFER_USAGE_SHADER_DEVICE_ADDRESS_BIT)
	if err != nil {
		return err
	}
	s.gpu.indexBuffer, err = vulkan.UploadBufferData(device, unsafe.Pointer(&indices[0]),
		uint64(len(indices))*4,
		C.VK_BUFFER_USAGE_INDEX_BUFFER_BIT|C.VK_BUFFER_USAGE_SHADER_DEVICE_ADDRESS_BIT)
	if err != nil {
		return err
	}

	materialUniforms := make([]materials.MaterialUniform, len(materialList))
	for i, m := range materialList {
		materialUniforms[i] = m.ToUniform()
	}
	s.gpu.materialBuffer, err = vulkan.UploadBufferData(device, unsafe.Pointer(&materialUniforms[0]),
		uint64(len(materialUniforms))*uint64(unsafe.Sizeof(materials.MaterialUniform{})),
		C.VK_BUFFER_USAGE_STORAGE_BUFFER_BIT)
	if err != nil {
		return err
	}

	s.gpu.instanceBuffer, err = vulkan.UploadBufferData(device, unsafe.Pointer(&instances[0]),
		uint64(len(instances))*uint64(unsafe.Sizeof(GPUInstance{})),
		C.VK_BUFFER_USAGE_STORAGE_BUFFER_BIT|C.VK_BUFFER_USAGE_SHADER_DEVICE_ADDRESS_BIT)
	if err != nil {
		return err
	}

	if raytracingSupported {
		if err := s.buildAccelerationStructure(device, uint32(len(vertices)), uint32(len(indices)/3)); err != nil {
			return err
		}
	}

	return nil
}

// buildAccelerationStructure wraps the merged vertex/index buffers in a single BLAS and a one-instance TLAS
// at the identity transform, grounded on vulkan/raytracing.go's BuildBLAS/BuildTLAS. Per-instance raytracing
// transforms are left for a future pass (§9 scopes instance-level TLAS updates as beyond this iteration);
// rasterization already uses the real per-node world matrix via the instance buffer above.
func (s *Scene) buildAccelerationStructure(device *vulkan.Device, vertexCount, triangleCount uint32) error {
	vertexAddr := vulkan.BufferDeviceAddress(device, s.gpu.vertexBuffer)
	indexAddr := vulkan.BufferDeviceAddress(device, s.gpu.indexBuffer)

	blas, err := vulkan.BuildBLAS(device, vertexAddr, indexAddr, uint64(unsafe.Sizeof(core.Vertex{})), vertexCount, triangleCount)
	if err != nil {
		return err
	}

	instance := vulkan.IdentityTLASInstance(blas.DeviceAddress)

	instanceBuffer, err := vulkan.UploadBufferData(device, unsafe.Pointer(&instance), uint64(unsafe.Sizeof(instance)),
		C.VK_BUFFER_USAGE_SHADER_DEVICE_ADDRESS_BIT|C.VK_BUFFER_USAGE_ACCELERATION_STRUCTURE_BUILD_INPUT_READ_ONLY_BIT_KHR)
	if err != nil {
		blas.Destroy(device)
		return err
	}
	defer instanceBuffer.Destroy(device)

	instanceAddr := vulkan.BufferDeviceAddress(device, instanceBuffer)
	tlas, err := vulkan.BuildTLAS(device, instanceAddr, 1)
	if err != nil {
		blas.Destroy(device)
		return err
	}

	s.gpu.tlas = tlas
	// blas is referenced by device address only (instance.accelerationStructureReference); it must outlive
	// tlas, so it is intentionally leaked into a field rather than destroyed here. destroyGPUBuffers frees it.
	s.gpu.blas = blas
	return nil
}

func (s *Scene) destroyGPUBuffers(device *vulkan.Device) {
	if s.gpu.vertexBuffer != nil {
		s.gpu.vertexBuffer.Destroy(device)
	}
	if s.gpu.indexBuffer != nil {
		s.gpu.indexBuffer.Destroy(device)
	}
	if s.gpu.materialBuffer != nil {
		s.gpu.materialBuffer.Destroy(device)
	}
	if s.gpu.instanceBuffer != nil {
		s.gpu.instanceBuffer.Destroy(device)
	}
	if s.gpu.tlas != nil {
		s.gpu.tlas.Destroy(device)
	}
	if s.gpu.blas != nil {
		s.gpu.blas.Destroy(device)
	}
	s.gpu = gpuScene{}
}

func (s *Scene) VertexBuffer() *vulkan.Buffer   { return s.gpu.vertexBuffer }
func (s *Scene) IndexBuffer() *vulkan.Buffer    { return s.gpu.indexBuffer }
func (s *Scene) MaterialBuffer() *vulkan.Buffer { return s.gpu.materialBuffer }
func (s *Scene) InstanceBuffer() *vulkan.Buffer { return s.gpu.instanceBuffer }
func (s *Scene) TLAS() AccelerationStructureRef { return s.gpu.tlas }
func (s *Scene) SkyboxTextureIndex() uint32     { return s.gpu.skyboxTextureIndex }

// DirectionalLight returns the scene's first directional light, or a dim downward default when none was
// added — a pass must always be able to bind something.
func (s *Scene) DirectionalLight() GPULight {
	for _, l := range s.Lights {
		if l.Type != LightTypeDirectional {
			continue
		}
		dir := l.Direction.Normalize()
		return GPULight{
			DirectionIntensity: [4]float32{dir.X, dir.Y, dir.Z, l.Intensity},
			Color:              [4]float32{l.Color.R, l.Color.G, l.Color.B, 1},
		}
	}
	return GPULight{DirectionIntensity: [4]float32{0, -1, 0, 1}, Color: [4]float32{1, 1, 1, 1}}
}

// RenderMeshes binds the merged vertex/index buffers once and issues one indexed draw call per mesh draw
// range recorded by BuildGPUBuffers, pushing each instance's index so the vertex shader can look up its
// world matrix and material index from the instance/material storage buffers. Pipeline binding is the
// pass's responsibility (graph.PassDesc.Pipeline); RenderMeshes only issues the geometry commands.
func (s *Scene) RenderMeshes(ctx *graph.GraphicsContext) error {
	if s.gpu.vertexBuffer == nil || s.gpu.indexBuffer == nil {
		return nil
	}
	ctx.BindVertexBuffer(s.gpu.vertexBuffer, 0)
	ctx.BindIndexBuffer(s.gpu.indexBuffer, 0)
	for _, d := range s.gpu.draws {
		ctx.PushConstantsDefault(C.VK_SHADER_STAGE_VERTEX_BIT, instanceIndexBytes(d.instanceIndex))
		ctx.DrawIndexedRange(d.firstIndex, d.indexCount, 1)
	}
	return nil
}

func instanceIndexBytes(idx uint32) []byte {
	return []byte{byte(idx), byte(idx >> 8), byte(idx >> 16), byte(idx >> 24)}
}
