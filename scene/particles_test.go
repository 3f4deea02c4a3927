package scene

import "testing"

func TestParticleEmitterSpawnsAndCulls(t *testing.T) {
	e := NewParticleEmitter(64)
	e.Rate = 1000 // force spawning within a single short step

	e.Update(0.1)
	if e.Count() == 0 {
		t.Fatalf("expected particles to spawn, got 0")
	}
	if e.Count() > e.pool {
		t.Fatalf("spawned more particles than pool size: %d > %d", e.Count(), e.pool)
	}

	for _, p := range e.Particles {
		if p.Life <= 0 || p.Life > p.MaxLife {
			t.Fatalf("particle life out of range: %+v", p)
		}
	}

	// Advance past every particle's maximum possible lifetime; all should be culled.
	e.Active = false
	for i := 0; i < 100; i++ {
		e.Update(e.MaxLife)
	}
	if e.Count() != 0 {
		t.Fatalf("expected all particles culled, got %d remaining", e.Count())
	}
}

func TestNewSmokeEmitterDefaults(t *testing.T) {
	e := NewSmokeEmitter(16)
	if e.BlendMode != BlendAlpha {
		t.Fatalf("smoke emitter should default to alpha blending, got %v", e.BlendMode)
	}
	if !e.Active {
		t.Fatalf("smoke emitter should start active")
	}
}
