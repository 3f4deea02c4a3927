package main

/*
#include <vulkan/vulkan.h>
*/
import "C"
import (
	"fmt"
	stdmath "math"
	"time"
	"unsafe"

	"render-engine/core"
	"render-engine/frame"
	"render-engine/gpu"
	"render-engine/graph"
	"render-engine/materials"
	"render-engine/math"
	"render-engine/scene"
	"render-engine/vulkan"
)

// collBox is an axis-aligned rectangle in XZ used for player collision.
type collBox struct {
	minX, maxX, minZ, maxZ float32
}

const playerRadius = float32(0.35) // player XZ footprint radius

// resolvePlayerCollision pushes pos outside every overlapping collBox.
func resolvePlayerCollision(pos math.Vec3, boxes []collBox) math.Vec3 {
	for _, b := range boxes {
		eMinX := b.minX - playerRadius
		eMaxX := b.maxX + playerRadius
		eMinZ := b.minZ - playerRadius
		eMaxZ := b.maxZ + playerRadius

		if pos.X <= eMinX || pos.X >= eMaxX || pos.Z <= eMinZ || pos.Z >= eMaxZ {
			continue // no overlap
		}

		dLeft := pos.X - eMinX
		dRight := eMaxX - pos.X
		dFront := pos.Z - eMinZ
		dBack := eMaxZ - pos.Z

		switch {
		case dLeft <= dRight && dLeft <= dFront && dLeft <= dBack:
			pos.X = eMinX
		case dRight <= dLeft && dRight <= dFront && dRight <= dBack:
			pos.X = eMaxX
		case dFront <= dLeft && dFront <= dRight && dFront <= dBack:
			pos.Z = eMinZ
		default:
			pos.Z = eMaxZ
		}
	}
	return pos
}

// CameraController handles keyboard/mouse input with gravity and ground collision.
type CameraController struct {
	moveSpeed      float32
	lookSpeed      float32
	lastMouseX     float64
	lastMouseY     float64
	firstMouse     bool
	rightMouseDown bool
	yaw            float32
	pitch          float32

	velocityY      float32
	onGround       bool
	eyeHeight      float32
	jumpKeyWasDown bool

	CollBoxes []collBox
}

const (
	gravity   = -18.0
	jumpSpeed = 7.0
)

func NewCameraController() *CameraController {
	return &CameraController{
		moveSpeed:  6.0,
		lookSpeed:  0.003,
		firstMouse: true,
		yaw:        -90.0,
		pitch:      0.0,
		eyeHeight:  1.7,
		onGround:   true,
	}
}

func (cc *CameraController) Update(window *core.Window, camera *scene.Camera, deltaTime float32) {
	if deltaTime > 0.05 {
		deltaTime = 0.05
	}

	cc.rightMouseDown = window.IsMouseButtonPressed(1)
	if cc.rightMouseDown {
		mouseX, mouseY := window.GetCursorPos()
		if cc.firstMouse {
			cc.lastMouseX = mouseX
			cc.lastMouseY = mouseY
			cc.firstMouse = false
		}
		cc.yaw += float32(mouseX-cc.lastMouseX) * cc.lookSpeed
		cc.pitch += float32(cc.lastMouseY-mouseY) * cc.lookSpeed
		if cc.pitch > 88.0 {
			cc.pitch = 88.0
		}
		if cc.pitch < -88.0 {
			cc.pitch = -88.0
		}
		cc.lastMouseX = mouseX
		cc.lastMouseY = mouseY
	} else {
		cc.firstMouse = true
	}

	yawRad := cc.yaw * stdmath.Pi / 180.0
	pitchRad := cc.pitch * stdmath.Pi / 180.0

	forward := math.Vec3{
		X: float32(stdmath.Cos(float64(yawRad)) * stdmath.Cos(float64(pitchRad))),
		Y: float32(stdmath.Sin(float64(pitchRad))),
		Z: float32(stdmath.Sin(float64(yawRad)) * stdmath.Cos(float64(pitchRad))),
	}.Normalize()

	moveForward := math.Vec3{
		X: float32(stdmath.Cos(float64(yawRad))),
		Y: 0,
		Z: float32(stdmath.Sin(float64(yawRad))),
	}.Normalize()
	right := math.Vec3{
		X: float32(stdmath.Cos(float64(yawRad - stdmath.Pi/2))),
		Y: 0,
		Z: float32(stdmath.Sin(float64(yawRad - stdmath.Pi/2))),
	}.Normalize()

	hMove := math.Vec3{}
	if window.IsKeyPressed(core.KeyW) {
		hMove = hMove.Add(moveForward.Mul(cc.moveSpeed * deltaTime))
	}
	if window.IsKeyPressed(core.KeyS) {
		hMove = hMove.Add(moveForward.Mul(-cc.moveSpeed * deltaTime))
	}
	if window.IsKeyPressed(core.KeyD) {
		hMove = hMove.Add(right.Mul(cc.moveSpeed * deltaTime))
	}
	if window.IsKeyPressed(core.KeyA) {
		hMove = hMove.Add(right.Mul(-cc.moveSpeed * deltaTime))
	}

	spaceDown := window.IsKeyPressed(core.KeySpace)
	if spaceDown && !cc.jumpKeyWasDown && cc.onGround {
		cc.velocityY = jumpSpeed
		cc.onGround = false
	}
	cc.jumpKeyWasDown = spaceDown

	if !cc.onGround {
		cc.velocityY += gravity * deltaTime
	}

	newPos := camera.Position.Add(hMove)
	newPos.Y += cc.velocityY * deltaTime

	groundY := cc.eyeHeight
	if newPos.Y <= groundY {
		newPos.Y = groundY
		cc.velocityY = 0
		cc.onGround = true
	}

	newPos = resolvePlayerCollision(newPos, cc.CollBoxes)

	camera.SetPosition(newPos)
	up := forward.Cross(right).Normalize()
	if up.Y < 0 {
		up.Y = -up.Y
	}
	camera.LookAt(newPos.Add(forward), up)
}

// frameUBO is the std140 layout forward.vert/forward.frag's set-0 binding-0 uniform buffer expects.
type frameUBO struct {
	ViewProj        math.Mat4
	SunDirIntensity [4]float32
	SunColor        [4]float32
	Ambient         [4]float32
}

func main() {
	fmt.Println("Starting render graph demo...")

	windowConfig := core.DefaultWindowConfig()
	windowConfig.Title = "Render Engine - Graph Demo"
	windowConfig.Width = 1280
	windowConfig.Height = 720

	window, err := core.NewWindow(windowConfig)
	if err != nil {
		fmt.Printf("Failed to create window: %v\n", err)
		return
	}
	defer window.Destroy()

	cfg := gpu.DefaultEngineConfig()
	cfg.AppName = "render-engine demo"

	ctx, err := gpu.NewContext(window, cfg)
	if err != nil {
		fmt.Printf("Failed to create gpu context: %v\n", err)
		return
	}
	defer ctx.Destroy()

	resources, err := gpu.NewResourceManager(ctx)
	if err != nil {
		fmt.Printf("Failed to create resource manager: %v\n", err)
		return
	}
	defer resources.Destroy()

	shaders := gpu.NewShaderCache(cfg.ShaderSourceDir, cfg.ShaderSpirvDir)
	pipelines := gpu.NewPipelineCache(ctx, shaders, resources)
	deletions := gpu.NewDeletionQueue(int(cfg.FramesInFlight))
	defer deletions.FlushAll()

	scheduler, err := frame.NewScheduler(ctx, resources, deletions, window, int(cfg.FramesInFlight))
	if err != nil {
		fmt.Printf("Failed to create frame scheduler: %v\n", err)
		return
	}
	defer scheduler.Destroy()

	depthFormat := vulkan.FindDepthFormat(ctx.Device)

	// ── Render graph: one forward-lit pass writing the swapchain and a depth buffer ──
	g := graph.New()
	g.DeclareResource(graph.ResourceDesc{
		Name:       graph.RenderOutput,
		Kind:       graph.ResourceImage,
		Format:     ctx.SwapChain.Format,
		Usage:      graph.UsageColorAttachment,
		Persistent: true,
	})
	g.DeclareResource(graph.ResourceDesc{
		Name:         "SceneDepth",
		Kind:         graph.ResourceImage,
		Format:       vulkan.Format(depthFormat),
		SizeRelative: true,
		Width:        1,
		Height:       1,
		Usage:        graph.UsageDepthAttachment,
	})

	var frameTransientSet vulkan.DescriptorSetHandle

	g.AddGraphicsPass(graph.PassDesc{
		Name:     "forward",
		Kind:     graph.PassGraphics,
		Writes:   []graph.ResourceName{graph.RenderOutput, "SceneDepth"},
		Pipeline: graph.PipelineRef{Name: "forward"},
		Execute: func(ec graph.ExecutionContext) error {
			gc, ok := ec.(*graph.GraphicsContext)
			if !ok {
				return fmt.Errorf("forward pass bound to non-graphics context")
			}
			pipeline, err := pipelines.Graphics(gpu.GraphicsPipelineDesc{
				Name:              "forward",
				VertexShader:      "forward",
				FragmentShader:    "forward",
				VertexDescription: gpu.StandardVertexInput(),
				ColorFormats:      []vulkan.Format{ctx.SwapChain.Format},
				DepthFormat:       depthFormat,
				Topology:          vulkan.TopologyTriangleList,
				PolygonMode:       vulkan.PolygonModeFill,
				CullMode:          vulkan.CullModeBack,
				DepthTestEnable:   true,
				DepthWriteEnable:  true,
				PushConstantBytes: 4,
			})
			if err != nil {
				return err
			}
			gc.SetViewport(0, 0, float32(gc.Width), float32(gc.Height))
			gc.SetScissor(0, 0, gc.Width, gc.Height)
			gc.BindPipeline(pipeline)
			gc.BindDescriptorSets(gc.PipelineLayout(), 0, []vulkan.DescriptorSetHandle{frameTransientSet, resources.BindlessSet()})
			return demoScene.RenderMeshes(gc)
		},
	})

	cg, err := g.Build()
	if err != nil {
		fmt.Printf("Failed to build render graph: %v\n", err)
		return
	}

	w, h := window.GetFramebufferSize()
	phys, graphImageIDs, err := gpu.RealizeImages(resources, cg, uint32(w), uint32(h))
	if err != nil {
		fmt.Printf("Failed to realize graph images: %v\n", err)
		return
	}

	// ── Camera UBO: one small host-coherent buffer, rewritten each frame right after the scheduler
	// confirms the previous use of this command-buffer slot has retired. ──
	ubo, err := vulkan.CreateBuffer(ctx.Device, uint64(unsafe.Sizeof(frameUBO{})),
		C.VK_BUFFER_USAGE_UNIFORM_BUFFER_BIT, C.VK_MEMORY_PROPERTY_HOST_VISIBLE_BIT|C.VK_MEMORY_PROPERTY_HOST_COHERENT_BIT)
	if err != nil {
		fmt.Printf("Failed to create camera UBO: %v\n", err)
		return
	}
	defer ubo.Destroy(ctx.Device)
	if err := ubo.Map(ctx.Device); err != nil {
		fmt.Printf("Failed to map camera UBO: %v\n", err)
		return
	}

	// ── Scene setup ───────────────────────────────────────────────────────────
	s := scene.NewScene()
	demoScene = s
	s.Ambient = core.Color{R: 0.10, G: 0.12, B: 0.20, A: 1}
	s.SkyColor = core.Color{R: 0.18, G: 0.22, B: 0.50, A: 1}

	camera := scene.NewCamera(float32(stdmath.Pi)/3, 16.0/9.0, 0.1, 500.0)
	camera.SetPosition(math.Vec3{X: 0, Y: 1.7, Z: 12})
	camera.LookAt(math.Vec3{X: 0, Y: 1.7, Z: 0}, math.Vec3Up)
	s.SetCamera(camera)

	matLib := map[string]*materials.Material{}
	reg := func(m *materials.Material) *materials.Material {
		matLib[m.Name] = m
		return m
	}

	matGround := reg(materials.NewMaterial("Ground"))
	matGround.DiffuseColor = core.Color{R: 0.62, G: 0.58, B: 0.52, A: 1}
	matGround.Roughness = 0.9

	matStone := reg(materials.NewMaterial("Stone"))
	matStone.DiffuseColor = core.Color{R: 0.58, G: 0.55, B: 0.50, A: 1}
	matStone.Roughness = 0.8

	matBrick := reg(materials.NewMaterial("Brick"))
	matBrick.DiffuseColor = core.Color{R: 0.70, G: 0.43, B: 0.30, A: 1}
	matBrick.Roughness = 0.85

	matRoof := reg(materials.NewMaterial("Roof"))
	matRoof.DiffuseColor = core.Color{R: 0.32, G: 0.30, B: 0.28, A: 1}
	matRoof.Roughness = 0.7

	matTrunk := reg(materials.NewMaterial("Trunk"))
	matTrunk.DiffuseColor = core.Color{R: 0.42, G: 0.28, B: 0.13, A: 1}
	matTrunk.Roughness = 0.9

	matLeaves := reg(materials.NewMaterial("Leaves"))
	matLeaves.DiffuseColor = core.Color{R: 0.12, G: 0.42, B: 0.15, A: 1}
	matLeaves.Roughness = 0.8

	matMarble := reg(materials.NewMaterial("Marble"))
	matMarble.DiffuseColor = core.Color{R: 0.92, G: 0.90, B: 0.86, A: 1}
	matMarble.Roughness = 0.25

	matWater := reg(materials.NewMaterial("Water"))
	matWater.DiffuseColor = core.Color{R: 0.28, G: 0.52, B: 0.72, A: 1}
	matWater.Roughness = 0.08

	matMetal := reg(materials.NewMaterial("Metal"))
	matMetal.DiffuseColor = core.Color{R: 0.14, G: 0.14, B: 0.12, A: 1}
	matMetal.Metallic = 0.95
	matMetal.Roughness = 0.15

	matLamp := reg(materials.NewMaterial("LampGlow"))
	matLamp.DiffuseColor = core.Color{R: 1.0, G: 0.85, B: 0.45, A: 1}
	matLamp.EmissiveColor = core.Color{R: 3.0, G: 2.0, B: 0.6, A: 1}

	lookup := func(name string) *materials.Material {
		if m, ok := matLib[name]; ok {
			return m
		}
		return materials.DefaultMaterial()
	}

	addBox := func(name string, pos math.Vec3, sx, sy, sz float32, matName string) {
		m := scene.CubeMeshData(1.0, matName)
		n := scene.NewNode(name)
		n.Mesh = m
		n.SetPosition(pos)
		n.SetScale(math.Vec3{X: sx, Y: sy, Z: sz})
		s.AddNode(n)
	}

	groundNode := scene.NewNode("Ground")
	groundNode.Mesh = scene.PlaneMeshData(80, 80, 1, matGround.Name)
	s.AddNode(groundNode)

	addBox("Bldg_NW", math.Vec3{X: -15, Y: 4.5, Z: -15}, 9, 9, 9, matStone.Name)
	addBox("Bldg_NW_roof", math.Vec3{X: -15, Y: 9.5, Z: -15}, 10, 1, 10, matRoof.Name)

	addBox("Bldg_NE", math.Vec3{X: 16, Y: 3.5, Z: -15}, 12, 7, 10, matBrick.Name)
	addBox("Bldg_NE_roof", math.Vec3{X: 16, Y: 7.5, Z: -15}, 13, 1, 11, matRoof.Name)

	addBox("Bldg_SW", math.Vec3{X: -15, Y: 3, Z: 16}, 8, 6, 8, matBrick.Name)
	addBox("Bldg_SW_roof", math.Vec3{X: -15, Y: 6.5, Z: 16}, 9, 1, 9, matRoof.Name)

	addBox("Bldg_SE", math.Vec3{X: 16, Y: 2.5, Z: 16}, 14, 5, 8, matStone.Name)
	addBox("Bldg_SE_roof", math.Vec3{X: 16, Y: 5.5, Z: 16}, 15, 1, 9, matRoof.Name)

	for i, wx := range []float32{-10, 10} {
		wn := scene.NewNode(fmt.Sprintf("Wall_%d", i))
		wn.Mesh = scene.CubeMeshData(1.0, matStone.Name)
		wn.SetPosition(math.Vec3{X: wx, Y: 0.5, Z: 0})
		wn.SetScale(math.Vec3{X: 0.5, Y: 1, Z: 18})
		s.AddNode(wn)
	}

	{
		bn := scene.NewNode("Fountain_Base")
		bn.Mesh = scene.CylinderMeshData(3.4, 0.4, 24, matMarble.Name)
		bn.SetPosition(math.Vec3{X: 0, Y: 0.2, Z: 0})
		s.AddNode(bn)

		bo := scene.NewNode("Fountain_Bowl")
		bo.Mesh = scene.CylinderMeshData(3.0, 0.6, 24, matMarble.Name)
		bo.SetPosition(math.Vec3{X: 0, Y: 0.7, Z: 0})
		s.AddNode(bo)

		wo := scene.NewNode("Fountain_Water")
		wo.Mesh = scene.CylinderMeshData(2.7, 0.12, 24, matWater.Name)
		wo.SetPosition(math.Vec3{X: 0, Y: 0.46, Z: 0})
		s.AddNode(wo)

		pn := scene.NewNode("Fountain_Pillar")
		pn.Mesh = scene.CylinderMeshData(0.38, 2.8, 16, matMarble.Name)
		pn.SetPosition(math.Vec3{X: 0, Y: 1.4, Z: 0})
		s.AddNode(pn)

		tn := scene.NewNode("Fountain_Top")
		tn.Mesh = scene.SphereMeshData(0.5, 16, 8, matMarble.Name)
		tn.SetPosition(math.Vec3{X: 0, Y: 3.1, Z: 0})
		s.AddNode(tn)
	}

	treePos := []math.Vec3{
		{X: -8, Y: 0, Z: -5}, {X: 8, Y: 0, Z: -6},
		{X: -9, Y: 0, Z: 6}, {X: 9, Y: 0, Z: 5},
		{X: -6, Y: 0, Z: -11}, {X: 7, Y: 0, Z: -10},
	}
	for i, tp := range treePos {
		tn := scene.NewNode(fmt.Sprintf("Trunk%d", i))
		tn.Mesh = scene.CylinderMeshData(0.22, 2.2, 8, matTrunk.Name)
		tn.SetPosition(math.Vec3{X: tp.X, Y: 1.1, Z: tp.Z})
		s.AddNode(tn)

		cn := scene.NewNode(fmt.Sprintf("Canopy%d", i))
		cn.Mesh = scene.ConeMeshData(1.7, 3.0, 16, matLeaves.Name)
		cn.SetPosition(math.Vec3{X: tp.X, Y: 3.1, Z: tp.Z})
		s.AddNode(cn)
	}

	lampPos := []math.Vec3{
		{X: -5.5, Y: 0, Z: -5.5},
		{X: 5.5, Y: 0, Z: -5.5},
		{X: -5.5, Y: 0, Z: 5.5},
		{X: 5.5, Y: 0, Z: 5.5},
	}
	for i, lp := range lampPos {
		pn := scene.NewNode(fmt.Sprintf("LampPole%d", i))
		pn.Mesh = scene.CylinderMeshData(0.09, 4.8, 8, matMetal.Name)
		pn.SetPosition(math.Vec3{X: lp.X, Y: 2.4, Z: lp.Z})
		s.AddNode(pn)

		cn := scene.NewNode(fmt.Sprintf("LampCap%d", i))
		cn.Mesh = scene.SphereMeshData(0.28, 12, 6, matLamp.Name)
		cn.SetPosition(math.Vec3{X: lp.X, Y: 4.9, Z: lp.Z})
		s.AddNode(cn)

		s.AddLight(&scene.Light{
			Type:      scene.LightTypePoint,
			Position:  math.Vec3{X: lp.X, Y: 4.7, Z: lp.Z},
			Color:     core.Color{R: 1.0, G: 0.78, B: 0.35, A: 1},
			Intensity: 3.0,
			Range:     14.0,
		})
	}

	sunLight := &scene.Light{
		Type:      scene.LightTypeDirectional,
		Direction: math.Vec3{X: 0.55, Y: -0.75, Z: -0.35}.Normalize(),
		Color:     core.Color{R: 1.0, G: 0.90, B: 0.70, A: 1},
		Intensity: 1.1,
	}
	s.AddLight(sunLight)

	sceneCollBoxes := []collBox{
		{minX: -19.5, maxX: -10.5, minZ: -19.5, maxZ: -10.5},
		{minX: 10.0, maxX: 22.0, minZ: -20.0, maxZ: -10.0},
		{minX: -19.0, maxX: -11.0, minZ: 12.0, maxZ: 20.0},
		{minX: 9.0, maxX: 23.0, minZ: 12.0, maxZ: 20.0},
		{minX: -10.25, maxX: -9.75, minZ: -9.0, maxZ: 9.0},
		{minX: 9.75, maxX: 10.25, minZ: -9.0, maxZ: 9.0},
		{minX: -3.0, maxX: 3.0, minZ: -3.0, maxZ: 3.0},
	}

	if err := s.BuildGPUBuffers(ctx.Device, ctx.Features.RaytracingSupported, lookup, 0); err != nil {
		fmt.Printf("Failed to build scene GPU buffers: %v\n", err)
		return
	}

	dayNight := NewDayNight()
	dayNight.Apply(s, sunLight)

	camController := NewCameraController()
	camController.CollBoxes = sceneCollBoxes
	debugOverlay := &DebugOverlay{}

	frameCount := 0
	displayFPS := 0
	lastTime := time.Now()
	deltaTime := float32(0.016)
	fpsCounter := 0
	fpsLastTime := time.Now()

	fmt.Println("===========================================")
	fmt.Println("  Render Graph Demo")
	fmt.Println("===========================================")
	fmt.Println("")
	fmt.Println("CAMERA CONTROLS:")
	fmt.Println("  W / S             - Move forward / backward")
	fmt.Println("  A / D             - Strafe left / right")
	fmt.Println("  Space             - Jump")
	fmt.Println("  Right Mouse Drag  - Look around")
	fmt.Println("")
	fmt.Println("  N                 - Pause / resume day/night cycle")
	fmt.Println("  , / .             - Slow down / speed up day/night cycle")
	fmt.Println("")
	fmt.Println("EXIT: ESC")
	fmt.Println("===========================================")
	fmt.Println("")

	dnKeyWasDown := false

	for !window.ShouldClose() {
		window.PollEvents()

		if window.IsKeyPressed(core.KeyEscape) {
			break
		}

		nDown := window.IsKeyPressed(core.KeyN)
		if nDown && !dnKeyWasDown {
			dayNight.Active = !dayNight.Active
			fmt.Printf("[DayNight] %s\n", map[bool]string{true: "RUNNING", false: "PAUSED"}[dayNight.Active])
		}
		dnKeyWasDown = nDown

		if window.IsKeyPressed(core.KeyComma) {
			dayNight.Speed += 20.0 * deltaTime
			if dayNight.Speed > 600 {
				dayNight.Speed = 600
			}
		}
		if window.IsKeyPressed(core.KeyPeriod) {
			dayNight.Speed -= 20.0 * deltaTime
			if dayNight.Speed < 10 {
				dayNight.Speed = 10
			}
		}

		dayNight.Update(deltaTime)
		dayNight.Apply(s, sunLight)

		camController.Update(window, camera, deltaTime)

		imageIndex, cmd, err := scheduler.BeginFrame()
		if err == vulkan.ErrSwapchainOutOfDate {
			if err := recreateGraphResources(window, resources, scheduler, &phys, cg, &graphImageIDs); err != nil {
				fmt.Printf("Failed to recreate swapchain resources: %v\n", err)
				break
			}
			continue
		} else if err != nil {
			fmt.Printf("BeginFrame failed: %v\n", err)
			break
		}

		light := s.DirectionalLight()
		u := frameUBO{
			ViewProj:        camera.GetViewProjectionMatrix(),
			SunDirIntensity: light.DirectionIntensity,
			SunColor:        light.Color,
			Ambient:         [4]float32{s.Ambient.R, s.Ambient.G, s.Ambient.B, 1},
		}
		ubo.CopyData(unsafe.Pointer(&u), uint64(unsafe.Sizeof(u)))

		transientSet, err := resources.AllocateTransientSet()
		if err != nil {
			fmt.Printf("Failed to allocate transient descriptor set: %v\n", err)
			break
		}
		vulkan.UpdateDescriptorSetBuffer(ctx.Device, transientSet, 0, ubo.Handle, 0, uint64(unsafe.Sizeof(frameUBO{})))
		defaultTex := resources.DefaultTexture()
		vulkan.UpdateDescriptorSetImage(ctx.Device, transientSet, 1, defaultTex.Upload.Image.View, resources.LinearRepeatSampler())
		vulkan.UpdateDescriptorSetStorageBuffer(ctx.Device, transientSet, 2, s.InstanceBuffer().Handle, 0, s.InstanceBuffer().Size)
		vulkan.UpdateDescriptorSetStorageBuffer(ctx.Device, transientSet, 3, s.MaterialBuffer().Handle, 0, s.MaterialBuffer().Size)
		frameTransientSet = transientSet

		if err := scheduler.EndFrame(cg, phys, imageIndex, cmd); err == vulkan.ErrSwapchainOutOfDate {
			if err := recreateGraphResources(window, resources, scheduler, &phys, cg, &graphImageIDs); err != nil {
				fmt.Printf("Failed to recreate swapchain resources: %v\n", err)
				break
			}
		} else if err != nil {
			fmt.Printf("EndFrame failed: %v\n", err)
			break
		}

		frameCount++
		fpsCounter++
		now := time.Now()
		elapsed := now.Sub(lastTime)
		fpsDelta := now.Sub(fpsLastTime)

		if elapsed.Seconds() >= 1.0 {
			displayFPS = frameCount
			window.SetTitle(fmt.Sprintf("Render Graph Demo | FPS: %d | (%.1f, %.1f, %.1f)",
				frameCount, camera.Position.X, camera.Position.Y, camera.Position.Z))
			frameCount = 0
			lastTime = now
		}

		if fpsCounter%60 == 0 {
			fpsRate := float64(fpsCounter) / fpsDelta.Seconds()
			groundStr := map[bool]string{true: "grnd", false: "air"}[camController.onGround]
			debugOverlay.Clear()
			debugOverlay.AddLine("FPS: %.1f (display %d)   Pos: %.1f %.1f %.1f   %s",
				fpsRate, displayFPS, camera.Position.X, camera.Position.Y, camera.Position.Z, groundStr)
			debugOverlay.AddLine("Day/Night: %s  Speed: %.0fs/cycle", dayNight.TimeOfDayStr(), dayNight.Speed)
			fmt.Print(debugOverlay.GetText())
			fpsLastTime = now
		}

		deltaTime = float32(elapsed.Seconds())
	}

	ctx.WaitIdle()
	fmt.Println("Exiting...")
}

// recreateGraphResources rebuilds the swapchain and the depth image it's sized relative to. scheduler.Recreate
// already waits for the device to idle before touching the swapchain, so the previous generation's graph
// images are safe to destroy immediately afterward.
func recreateGraphResources(window *core.Window, resources *gpu.ResourceManager, scheduler *frame.Scheduler, phys **graph.PhysicalResources, cg *graph.CompiledGraph, ids *[]uint32) error {
	oldIDs := *ids
	if err := scheduler.Recreate(); err != nil {
		return err
	}
	for _, id := range oldIDs {
		resources.DestroyGraphImage(id)
	}
	w, h := window.GetFramebufferSize()
	p, newIDs, err := gpu.RealizeImages(resources, cg, uint32(w), uint32(h))
	if err != nil {
		return err
	}
	*phys = p
	*ids = newIDs
	return nil
}

// demoScene is read by the forward pass's Execute closure, which is built before the scene it draws exists.
var demoScene *scene.Scene
