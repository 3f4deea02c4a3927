package scene

import "testing"

func TestCreateGrid(t *testing.T) {
	m := CreateGrid(10, 4)
	if m.DrawMode != DrawLines {
		t.Fatalf("grid mesh should draw as lines, got %v", m.DrawMode)
	}
	// (divisions+1) lines per axis, 2 vertices/indices per line, two axes.
	wantLines := (4 + 1) * 2
	if len(m.Vertices) != wantLines*2 {
		t.Fatalf("expected %d vertices, got %d", wantLines*2, len(m.Vertices))
	}
	if len(m.Indices) != wantLines*2 {
		t.Fatalf("expected %d indices, got %d", wantLines*2, len(m.Indices))
	}
}

func TestCreateGridMinDivisions(t *testing.T) {
	m := CreateGrid(10, 0)
	if len(m.Vertices) == 0 {
		t.Fatalf("divisions<1 should clamp to 1, not produce an empty mesh")
	}
}

func TestCreateUnitBoxWireframe(t *testing.T) {
	m := CreateUnitBoxWireframe()
	if m.DrawMode != DrawLines {
		t.Fatalf("box wireframe should draw as lines, got %v", m.DrawMode)
	}
	if len(m.Indices)%2 != 0 {
		t.Fatalf("expected an even number of indices (one pair per line), got %d", len(m.Indices))
	}
	// 12 edges on a cube.
	if len(m.Indices) != 24 {
		t.Fatalf("expected 24 indices (12 edges), got %d", len(m.Indices))
	}
}
