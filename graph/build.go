package graph

// Graph accumulates pass and resource declarations before Build() resolves them into an executable plan.
// AddXPass calls are insertion-ordered; that order is also the tie-break used for determinism whenever the
// topological sort in executionOrder has more than one valid next pass.
type Graph struct {
	passes    []PassDesc
	resources map[ResourceName]ResourceDesc
}

func New() *Graph {
	return &Graph{resources: make(map[ResourceName]ResourceDesc)}
}

func (g *Graph) DeclareResource(desc ResourceDesc) {
	g.resources[desc.Name] = desc
}

func (g *Graph) AddGraphicsPass(desc PassDesc) {
	desc.Kind = PassGraphics
	g.passes = append(g.passes, desc)
}

func (g *Graph) AddComputePass(desc PassDesc) {
	desc.Kind = PassCompute
	g.passes = append(g.passes, desc)
}

func (g *Graph) AddRaytracingPass(desc PassDesc) {
	desc.Kind = PassRaytracing
	g.passes = append(g.passes, desc)
}

func (g *Graph) AddBlitPass(desc PassDesc) {
	desc.Kind = PassBlit
	g.passes = append(g.passes, desc)
}

// CompiledResource is a resolved, pool-assigned resource ready for physical realization.
type CompiledResource struct {
	Handle    ResourceHandle
	Desc      ResourceDesc
	PoolSlot  int // -1 for persistent resources, which are never aliased
	FirstPass int // index into CompiledGraph.Passes
	LastPass  int
}

// CompiledPass is one fully resolved pass: its declared reads/writes translated to resource handles, its
// position in execution order, and the descriptor-set structural key it will bind (empty for blit passes).
type CompiledPass struct {
	Desc          PassDesc
	Order         int
	ReadHandles   []ResourceHandle
	WriteHandles  []ResourceHandle
	DescriptorKey string
}

// CompiledGraph is the output of Build(): an ordered pass list plus a resolved, pool-aliased resource
// table. It carries no Vulkan handles yet — Realize (gpu package) turns PoolSlot assignments into actual
// images/buffers, and Execute (executor.go) walks Passes inserting barriers and invoking callbacks.
type CompiledGraph struct {
	Resources   []CompiledResource
	Passes      []CompiledPass
	PoolSlots   int
	byName      map[ResourceName]ResourceHandle
}

func (cg *CompiledGraph) Resource(name ResourceName) (CompiledResource, bool) {
	h, ok := cg.byName[name]
	if !ok {
		return CompiledResource{}, false
	}
	return cg.Resources[h], true
}

// Build implements the render graph compiler's seven steps: cull unreachable passes via a backward walk
// from RenderOutput, compute a deterministic execution order, analyze transient resource lifetimes, assign
// physical pool slots by interval aliasing, resolve each pass's reads/writes to resource handles, compute
// descriptor-set structural keys for dedup, and size the timestamp query pool (one entry per pass, exposed
// as len(Passes) to the caller rather than stored here since query pool creation is a GPU-side concern).
func (g *Graph) Build() (*CompiledGraph, error) {
	producer := make(map[ResourceName]int, len(g.resources))
	writers := make(map[ResourceName][]int)
	for i, p := range g.passes {
		for _, w := range p.Writes {
			if existing, ok := producer[w]; ok && existing != i {
				if !writesOrdered(g.passes, existing, i, w) {
					return nil, buildErrorf("write-after-write on %q requires explicit pass ordering (passes %q and %q)", w, g.passes[existing].Name, p.Name)
				}
			}
			producer[w] = i
			writers[w] = append(writers[w], i)
		}
	}

	if _, ok := producer[RenderOutput]; !ok {
		return nil, buildErrorf("no pass writes %s", RenderOutput)
	}

	needed := make(map[int]bool)
	var walk func(passIndex int)
	walk = func(passIndex int) {
		if needed[passIndex] {
			return
		}
		needed[passIndex] = true
		for _, r := range g.passes[passIndex].Reads {
			for _, src := range writers[r] {
				if src != passIndex {
					walk(src)
				}
			}
		}
	}
	walk(producer[RenderOutput])

	order, err := executionOrder(g.passes, needed, producer)
	if err != nil {
		return nil, err
	}

	resourceUsage := computeLifetimes(g.passes, g.resources, order)

	poolSlots := assignPoolSlots(resourceUsage)

	cg := &CompiledGraph{byName: make(map[ResourceName]ResourceHandle)}
	for name, usage := range resourceUsage {
		desc := g.resources[name]
		if desc.Name == "" {
			desc = ResourceDesc{Name: name, Kind: ResourceImage}
		}
		h := ResourceHandle(len(cg.Resources))
		slot := usage.poolSlot
		if desc.Persistent {
			slot = -1
		}
		cg.Resources = append(cg.Resources, CompiledResource{
			Handle:    h,
			Desc:      desc,
			PoolSlot:  slot,
			FirstPass: usage.first,
			LastPass:  usage.last,
		})
		cg.byName[name] = h
	}
	cg.PoolSlots = poolSlots

	for orderIdx, passIdx := range order {
		p := g.passes[passIdx]
		cp := CompiledPass{Desc: p, Order: orderIdx}
		for _, r := range p.Reads {
			if h, ok := cg.byName[r]; ok {
				cp.ReadHandles = append(cp.ReadHandles, h)
			}
		}
		for _, w := range p.Writes {
			if h, ok := cg.byName[w]; ok {
				cp.WriteHandles = append(cp.WriteHandles, h)
			}
		}
		cp.DescriptorKey = descriptorKey(cg, cp)
		cg.Passes = append(cg.Passes, cp)
	}

	return cg, nil
}

// writesOrdered resolves the write-after-write Open Question: two passes may both write the same resource
// only if one of them also reads it (establishing which write happens first via the read-after-write edge
// already present in the graph); otherwise Build rejects the graph.
func writesOrdered(passes []PassDesc, a, b int, resource ResourceName) bool {
	readsOf := func(i int) bool {
		for _, r := range passes[i].Reads {
			if r == resource {
				return true
			}
		}
		return false
	}
	return readsOf(a) || readsOf(b)
}
