package gpu

// EngineConfig is the plain exported configuration struct the gpu package is built from, following the
// same Default...Config() convention as core.DefaultWindowConfig / vulkan.DefaultInstanceConfig /
// vulkan.DefaultPipelineConfig rather than a config-file/flag-parsing library (none exists anywhere in the
// corpus; see DESIGN.md).
type EngineConfig struct {
	AppName           string
	FramesInFlight    uint32
	ShaderSourceDir   string
	ShaderSpirvDir    string
	AssetRoot         string
	ShaderCompileCmd  string // e.g. "glslc"; not read by the shader compile path, which tries glslc and then glslangValidator
}

func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		AppName:          "render graph demo",
		FramesInFlight:   3,
		ShaderSourceDir:  "assets/shaders/src",
		ShaderSpirvDir:   "assets/shaders/spv",
		AssetRoot:        "assets",
		ShaderCompileCmd: "glslc",
	}
}
