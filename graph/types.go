// Package graph implements the render graph compiler and executor: the component that turns a set of
// declared passes and transient resources into an ordered, barrier-inserted command stream each frame.
package graph

import "render-engine/vulkan"

// ResourceHandle is a compiler-assigned index into the resolved resource table, stable for the lifetime of
// one Build().
type ResourceHandle uint32

// ResourceName is the declaration-time string key a pass uses to refer to a resource. RenderOutput is the
// sentinel every graph must eventually produce.
type ResourceName string

const RenderOutput ResourceName = "RENDER_OUTPUT"

// ResourceKind tags the union of resource shapes a pass can declare.
type ResourceKind int

const (
	ResourceImage ResourceKind = iota
	ResourceBuffer
	ResourceAccelerationStructure
	ResourceSamplerArray
)

// ResourceDesc is the declaration-time description of a transient (or, if Persistent, externally owned)
// resource. Kind-specific fields are zero when not applicable.
type ResourceDesc struct {
	Name   ResourceName
	Kind   ResourceKind

	// Image fields.
	Format      vulkan.Format
	Width       uint32
	Height      uint32
	SizeRelative bool // width/height are swapchain-relative fractions (e.g. 1.0 = full res) when true
	MipLevels   uint32
	Usage       ImageUsage

	// Buffer fields.
	ByteSize uint64

	// Persistent resolves the Open Question on externally owned resources explicitly: when true, the
	// compiler never aliases or destroys this resource — it is supplied, already created, by the scene or
	// engine-config collaborator and simply tracked for barrier purposes.
	Persistent bool
}

// ImageUsage records which pipeline stages a transient image is used from, informing both aliasing and
// descriptor-type selection.
type ImageUsage int

const (
	UsageColorAttachment ImageUsage = iota
	UsageDepthAttachment
	UsageSampled
	UsageStorage
	UsageTransferSrc
	UsageTransferDst
)

// PassKind tags the closed sum type of pass shapes the compiler understands, dispatched dynamically at
// execution time rather than through a type hierarchy.
type PassKind int

const (
	PassGraphics PassKind = iota
	PassCompute
	PassRaytracing
	PassBlit
)

// PassDesc is the declaration-time description of one render graph pass.
type PassDesc struct {
	Name    string
	Kind    PassKind
	Reads   []ResourceName
	Writes  []ResourceName
	Pipeline PipelineRef
	Execute func(ctx ExecutionContext) error
}

// KernelDesc names one kernel within a compute pass's pipeline description: a dispatchable entry point plus
// the compute shader it's built from. §3's data model describes a compute pipeline as carrying "a list of
// kernels, each: name and shader path" — a pass may declare more than one and switch between them mid-Execute
// via ComputeContext.Bind.
type KernelDesc struct {
	Name       string
	ShaderPath string
}

// PipelineRef names the pipeline-cache entry a pass binds before Execute runs. Pass callbacks never
// construct pipelines themselves. Graphics and raytracing passes use Name alone; compute passes additionally
// declare Kernels, every kernel the pass's Execute callback may bind.
type PipelineRef struct {
	Name    string
	Kernels []KernelDesc // compute only; empty for graphics/raytracing
}

// ExecutionContext is implemented by GraphicsContext, ComputeContext, and RaytracingContext. Pass callbacks
// type-assert to the concrete type matching their declared Kind.
type ExecutionContext interface {
	isExecutionContext()
}
