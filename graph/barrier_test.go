package graph

import (
	"testing"

	"render-engine/vulkan"
)

func TestUsageForGraphicsWrite(t *testing.T) {
	if got := usageFor(PassGraphics, true, false); got != UsageColorWrite {
		t.Errorf("graphics write, not depth = %v, want UsageColorWrite", got)
	}
}

func TestUsageForGraphicsDepthWrite(t *testing.T) {
	if got := usageFor(PassGraphics, true, true); got != UsageDepthWrite {
		t.Errorf("graphics write, depth attachment = %v, want UsageDepthWrite", got)
	}
}

func TestUsageForGraphicsRead(t *testing.T) {
	if got := usageFor(PassGraphics, false, false); got != UsageShaderSampled {
		t.Errorf("graphics read = %v, want UsageShaderSampled", got)
	}
}

func TestUsageForBlit(t *testing.T) {
	if got := usageFor(PassBlit, true, false); got != UsageTransferDestination {
		t.Errorf("blit write = %v, want UsageTransferDestination", got)
	}
	if got := usageFor(PassBlit, false, false); got != UsageTransferSource {
		t.Errorf("blit read = %v, want UsageTransferSource", got)
	}
}

func TestUsageForComputeAndRaytracingWrite(t *testing.T) {
	if got := usageFor(PassCompute, true, false); got != UsageStorageReadWrite {
		t.Errorf("compute write = %v, want UsageStorageReadWrite", got)
	}
	if got := usageFor(PassRaytracing, true, false); got != UsageStorageReadWrite {
		t.Errorf("raytracing write = %v, want UsageStorageReadWrite", got)
	}
}

func TestUsageForComputeReadFallsBackToSampled(t *testing.T) {
	if got := usageFor(PassCompute, false, false); got != UsageShaderSampled {
		t.Errorf("compute read = %v, want UsageShaderSampled", got)
	}
}

func TestRequiredStateMapsEveryUsage(t *testing.T) {
	cases := []struct {
		usage ResourceUsage
		want  vulkan.ResourceState
	}{
		{UsageColorWrite, vulkan.StateColorAttachment},
		{UsageDepthWrite, vulkan.StateDepthAttachment},
		{UsageShaderSampled, vulkan.StateShaderRead},
		{UsageStorageReadWrite, vulkan.StateStorageReadWrite},
		{UsageTransferSource, vulkan.StateTransferSrc},
		{UsageTransferDestination, vulkan.StateTransferDst},
		{UsagePresent, vulkan.StatePresent},
	}
	for _, c := range cases {
		if got := requiredState(c.usage); got.Layout != c.want.Layout {
			t.Errorf("requiredState(%v).Layout = %v, want %v", c.usage, got.Layout, c.want.Layout)
		}
	}
}

func TestRequiredStateUndefinedForUnknownUsage(t *testing.T) {
	if got := requiredState(UsageUndefined); got.Layout != vulkan.StateUndefined.Layout {
		t.Errorf("requiredState(UsageUndefined).Layout = %v, want %v", got.Layout, vulkan.StateUndefined.Layout)
	}
}
