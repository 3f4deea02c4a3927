package scene

import (
	"path/filepath"
	"testing"

	"render-engine/core"
	"render-engine/math"
)

func TestSaveLoadSceneRoundTrip(t *testing.T) {
	s := NewScene()
	s.Ambient = core.Color{R: 0.1, G: 0.2, B: 0.3, A: 1}
	s.SkyColor = core.Color{R: 0.4, G: 0.5, B: 0.6, A: 1}

	cam := NewCamera(1.2, 16.0/9.0, 0.1, 200.0)
	cam.SetPosition(math.Vec3{X: 1, Y: 2, Z: 3})
	s.SetCamera(cam)

	s.AddLight(&Light{
		Type:      LightTypePoint,
		Position:  math.Vec3{X: 5, Y: 1, Z: -2},
		Color:     core.Color{R: 1, G: 0.8, B: 0.5, A: 1},
		Intensity: 2.5,
		Range:     10,
	})

	box := NewNode("Box")
	box.SetPosition(math.Vec3{X: 1, Y: 0, Z: 0})
	box.Mesh = CubeMeshData(1.0, "Stone")
	s.AddNode(box)

	path := filepath.Join(t.TempDir(), "scene.json")
	if err := SaveScene(s, path); err != nil {
		t.Fatalf("SaveScene: %v", err)
	}

	sd, err := LoadScene(path)
	if err != nil {
		t.Fatalf("LoadScene: %v", err)
	}

	if sd.Ambient != s.Ambient || sd.SkyColor != s.SkyColor {
		t.Fatalf("ambient/sky color mismatch: got %+v/%+v", sd.Ambient, sd.SkyColor)
	}
	if sd.Camera == nil || sd.Camera.Position != cam.Position {
		t.Fatalf("camera position mismatch: got %+v", sd.Camera)
	}
	if len(sd.Lights) != 1 || sd.Lights[0].Intensity != 2.5 {
		t.Fatalf("light not round-tripped: %+v", sd.Lights)
	}
	if len(sd.Nodes) != 1 || sd.Nodes[0].Name != "Box" {
		t.Fatalf("node not round-tripped: %+v", sd.Nodes)
	}
	if sd.Nodes[0].Mesh == nil || sd.Nodes[0].Mesh.Name != "Cube" {
		t.Fatalf("mesh placeholder name hint lost: %+v", sd.Nodes[0].Mesh)
	}
	if sd.Nodes[0].Mesh.MaterialName != "Stone" {
		t.Fatalf("material name not round-tripped: %+v", sd.Nodes[0].Mesh.MaterialName)
	}

	applied := NewScene()
	sd.ApplyToScene(applied)
	if len(applied.Root.Children) != 1 {
		t.Fatalf("ApplyToScene did not attach nodes: %d children", len(applied.Root.Children))
	}
	if applied.Camera.Position != cam.Position {
		t.Fatalf("ApplyToScene did not carry camera over")
	}
}
