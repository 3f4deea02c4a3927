package graph

import (
	"fmt"
	"sort"
	"strings"
)

// descriptorKey renders a pass's declared resource bindings into a stable, build-time structural key: the
// resolved resource *names* it reads and writes, sorted and joined. This is the declaration-shape half of
// the descriptor-set structural key SPEC_FULL.md's render graph compiler expansion describes — the other
// half, the runtime setKey of actual (View, Sampler, Layout, Binding) tuples, can only be built once physical
// resources exist (gpu.BuildPassDescriptorSet), so it lives in the gpu package and is combined with this
// string via CompiledPass.DescriptorKey at cache-lookup time.
func descriptorKey(cg *CompiledGraph, cp CompiledPass) string {
	if len(cp.ReadHandles) == 0 && len(cp.WriteHandles) == 0 {
		return ""
	}
	parts := make([]string, 0, len(cp.ReadHandles)+len(cp.WriteHandles))
	for _, h := range cp.ReadHandles {
		parts = append(parts, fmt.Sprintf("r:%s", cg.Resources[h].Desc.Name))
	}
	for _, h := range cp.WriteHandles {
		parts = append(parts, fmt.Sprintf("w:%s", cg.Resources[h].Desc.Name))
	}
	sort.Strings(parts)
	return strings.Join(parts, "|")
}
