package renderer

import (
	"encoding/binary"
	"fmt"
	"os"
	"os/exec"
)

// CompileShaderGLSL compiles GLSL shader to SPIR-V using glslangValidator or glslc
func CompileShaderGLSL(source string, stage string, outputPath string) ([]uint32, error) {
	// Write source to temp file
	tempSrc := outputPath + ".tmp"
	if err := os.WriteFile(tempSrc, []byte(source), 0644); err != nil {
		return nil, err
	}
	defer os.Remove(tempSrc)
	
	// Try glslc first (Google's shader compiler), then glslangValidator
	var cmd *exec.Cmd
	
	if _, err := exec.LookPath("glslc"); err == nil {
		cmd = exec.Command("glslc", tempSrc, "-o", outputPath, "-O")
	} else if _, err := exec.LookPath("glslangValidator"); err == nil {
		cmd = exec.Command("glslangValidator", "-V", tempSrc, "-o", outputPath)
	} else {
		return nil, fmt.Errorf("no shader compiler found (glslc or glslangValidator)")
	}
	
	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("shader compilation failed: %v\n%s", err, output)
	}
	
	// Read compiled SPIR-V
	data, err := os.ReadFile(outputPath)
	if err != nil {
		return nil, err
	}
	defer os.Remove(outputPath)
	
	// Convert bytes to uint32 slice
	words := make([]uint32, len(data)/4)
	for i := 0; i < len(words); i++ {
		words[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	
	return words, nil
}
