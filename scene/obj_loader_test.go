package scene

import (
	"os"
	"path/filepath"
	"testing"
)

const testOBJ = `
mtllib cube.mtl
usemtl Stone
v -1 -1 -1
v  1 -1 -1
v  1  1 -1
v -1  1 -1
f 1 2 3 4
`

const testMTL = `
newmtl Stone
Kd 0.5 0.5 0.5
Ns 32
`

func TestLoadOBJ(t *testing.T) {
	dir := t.TempDir()
	objPath := filepath.Join(dir, "cube.obj")
	mtlPath := filepath.Join(dir, "cube.mtl")

	if err := os.WriteFile(objPath, []byte(testOBJ), 0644); err != nil {
		t.Fatalf("write obj: %v", err)
	}
	if err := os.WriteFile(mtlPath, []byte(testMTL), 0644); err != nil {
		t.Fatalf("write mtl: %v", err)
	}

	meshes, materials, err := LoadOBJ(objPath)
	if err != nil {
		t.Fatalf("LoadOBJ: %v", err)
	}
	if len(meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(meshes))
	}
	m := meshes[0]
	if len(m.Vertices) != 4 {
		t.Fatalf("expected 4 vertices (quad face), got %d", len(m.Vertices))
	}
	if len(m.Indices) != 6 {
		t.Fatalf("expected 6 indices (fan-triangulated quad), got %d", len(m.Indices))
	}
	if m.MaterialName != "Stone" {
		t.Fatalf("expected MaterialName 'Stone', got %q", m.MaterialName)
	}
	mat, ok := materials["Stone"]
	if !ok {
		t.Fatalf("expected 'Stone' material to be parsed from the mtllib, got %+v", materials)
	}
	if mat.Shininess != 32 {
		t.Fatalf("expected Ns 32 parsed into Shininess, got %v", mat.Shininess)
	}
}
