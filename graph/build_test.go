package graph

import "testing"

func noop(ExecutionContext) error { return nil }

func outputDesc() ResourceDesc {
	return ResourceDesc{Name: RenderOutput, Kind: ResourceImage, SizeRelative: true, Width: 1, Height: 1}
}

func TestBuildSimpleGraph(t *testing.T) {
	g := New()
	g.DeclareResource(outputDesc())
	g.AddGraphicsPass(PassDesc{Name: "final", Writes: []ResourceName{RenderOutput}, Execute: noop})

	cg, err := g.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(cg.Passes) != 1 {
		t.Fatalf("expected 1 pass, got %d", len(cg.Passes))
	}
	res, ok := cg.Resource(RenderOutput)
	if !ok {
		t.Fatalf("RenderOutput not found in compiled graph")
	}
	if res.Desc.Name != RenderOutput {
		t.Errorf("resource name = %q, want %q", res.Desc.Name, RenderOutput)
	}
}

func TestBuildMissingRenderOutputFails(t *testing.T) {
	g := New()
	g.AddGraphicsPass(PassDesc{Name: "offscreen", Writes: []ResourceName{"scratch"}, Execute: noop})

	if _, err := g.Build(); err == nil {
		t.Fatal("expected error when no pass writes RenderOutput")
	}
}

func TestBuildCullsUnreachablePasses(t *testing.T) {
	g := New()
	g.DeclareResource(outputDesc())
	g.AddGraphicsPass(PassDesc{Name: "final", Writes: []ResourceName{RenderOutput}, Execute: noop})
	g.AddComputePass(PassDesc{Name: "orphan", Writes: []ResourceName{"unused"}, Execute: noop})

	cg, err := g.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for _, p := range cg.Passes {
		if p.Desc.Name == "orphan" {
			t.Fatal("orphan pass with no path to RenderOutput should have been culled")
		}
	}
	if len(cg.Passes) != 1 {
		t.Fatalf("expected only the reachable pass to survive, got %d passes", len(cg.Passes))
	}
}

func TestBuildExecutionOrderRespectsDependenciesAndDeclarationTies(t *testing.T) {
	g := New()
	g.DeclareResource(outputDesc())
	g.DeclareResource(ResourceDesc{Name: "a", Kind: ResourceImage})
	g.DeclareResource(ResourceDesc{Name: "b", Kind: ResourceImage})

	// a and b have no dependency between them, so declaration order ("a" before "b") must be the tie-break.
	g.AddGraphicsPass(PassDesc{Name: "produceA", Writes: []ResourceName{"a"}, Execute: noop})
	g.AddGraphicsPass(PassDesc{Name: "produceB", Writes: []ResourceName{"b"}, Execute: noop})
	g.AddGraphicsPass(PassDesc{Name: "combine", Reads: []ResourceName{"a", "b"}, Writes: []ResourceName{RenderOutput}, Execute: noop})

	cg, err := g.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(cg.Passes) != 3 {
		t.Fatalf("expected 3 passes, got %d", len(cg.Passes))
	}
	names := make([]string, len(cg.Passes))
	for i, p := range cg.Passes {
		names[i] = p.Desc.Name
	}
	if names[0] != "produceA" || names[1] != "produceB" || names[2] != "combine" {
		t.Fatalf("execution order = %v, want [produceA produceB combine]", names)
	}
}

func TestBuildIsDeterministicAcrossRepeatedCalls(t *testing.T) {
	build := func() []string {
		g := New()
		g.DeclareResource(outputDesc())
		g.DeclareResource(ResourceDesc{Name: "a", Kind: ResourceImage})
		g.DeclareResource(ResourceDesc{Name: "b", Kind: ResourceImage})
		g.AddGraphicsPass(PassDesc{Name: "produceA", Writes: []ResourceName{"a"}, Execute: noop})
		g.AddGraphicsPass(PassDesc{Name: "produceB", Writes: []ResourceName{"b"}, Execute: noop})
		g.AddGraphicsPass(PassDesc{Name: "combine", Reads: []ResourceName{"a", "b"}, Writes: []ResourceName{RenderOutput}, Execute: noop})
		cg, err := g.Build()
		if err != nil {
			t.Fatalf("Build: %v", err)
		}
		names := make([]string, len(cg.Passes))
		for i, p := range cg.Passes {
			names[i] = p.Desc.Name
		}
		return names
	}

	first := build()
	second := build()
	if len(first) != len(second) {
		t.Fatalf("pass count differs across builds: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("order differs at index %d: %q vs %q", i, first[i], second[i])
		}
	}
}

func TestBuildDetectsCycle(t *testing.T) {
	g := New()
	g.DeclareResource(outputDesc())
	g.AddGraphicsPass(PassDesc{Name: "a", Reads: []ResourceName{"b"}, Writes: []ResourceName{"a"}, Execute: noop})
	g.AddGraphicsPass(PassDesc{Name: "b", Reads: []ResourceName{"a"}, Writes: []ResourceName{"b"}, Execute: noop})
	g.AddGraphicsPass(PassDesc{Name: "final", Reads: []ResourceName{"a"}, Writes: []ResourceName{RenderOutput}, Execute: noop})

	if _, err := g.Build(); err == nil {
		t.Fatal("expected cycle detection error")
	}
}

func TestBuildRejectsUnorderedWriteAfterWrite(t *testing.T) {
	g := New()
	g.DeclareResource(outputDesc())
	g.AddGraphicsPass(PassDesc{Name: "first", Writes: []ResourceName{RenderOutput}, Execute: noop})
	g.AddGraphicsPass(PassDesc{Name: "second", Writes: []ResourceName{RenderOutput}, Execute: noop})

	if _, err := g.Build(); err == nil {
		t.Fatal("expected write-after-write error when neither pass reads the other's output")
	}
}

func TestBuildAllowsWriteAfterWriteWhenOrderedByRead(t *testing.T) {
	g := New()
	g.DeclareResource(outputDesc())
	g.AddGraphicsPass(PassDesc{Name: "clear", Writes: []ResourceName{RenderOutput}, Execute: noop})
	g.AddGraphicsPass(PassDesc{Name: "draw", Reads: []ResourceName{RenderOutput}, Writes: []ResourceName{RenderOutput}, Execute: noop})

	cg, err := g.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(cg.Passes) != 2 {
		t.Fatalf("expected 2 passes, got %d", len(cg.Passes))
	}
	if cg.Passes[0].Desc.Name != "clear" || cg.Passes[1].Desc.Name != "draw" {
		t.Fatalf("expected clear before draw, got %q then %q", cg.Passes[0].Desc.Name, cg.Passes[1].Desc.Name)
	}
}

func TestBuildPersistentResourceIsNeverPoolAliased(t *testing.T) {
	g := New()
	g.DeclareResource(outputDesc())
	g.DeclareResource(ResourceDesc{Name: "sceneColor", Kind: ResourceImage, Persistent: true})
	g.AddGraphicsPass(PassDesc{Name: "final", Reads: []ResourceName{"sceneColor"}, Writes: []ResourceName{RenderOutput}, Execute: noop})

	cg, err := g.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	res, ok := cg.Resource("sceneColor")
	if !ok {
		t.Fatalf("sceneColor not found")
	}
	if res.PoolSlot != -1 {
		t.Errorf("persistent resource PoolSlot = %d, want -1", res.PoolSlot)
	}
}

func TestAssignPoolSlotsReusesSlotAfterLifetimeEnds(t *testing.T) {
	usage := map[ResourceName]resourceUsage{
		"early": {first: 0, last: 1},
		"late":  {first: 2, last: 3}, // starts after "early" ends, so it should reuse slot 0
		"overlapping": {first: 0, last: 3}, // alive the whole time, needs its own slot
	}
	slots := assignPoolSlots(usage)
	if slots != 2 {
		t.Fatalf("expected 2 pool slots (one reused, one held for the overlapping resource), got %d", slots)
	}
	if usage["early"].poolSlot == usage["overlapping"].poolSlot {
		t.Errorf("early and overlapping resources must not share a slot: both got %d", usage["early"].poolSlot)
	}
	if usage["late"].poolSlot != usage["early"].poolSlot {
		t.Errorf("late should reuse early's slot (%d) once its interval ends, got %d", usage["early"].poolSlot, usage["late"].poolSlot)
	}
}
