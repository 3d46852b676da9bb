//go:build !nogpu

package gpu

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

// Embedded SDF text shader source.
//
//go:embed shaders/sdf_text.wgsl
var sdfTextShaderSource string

// ShaderSource returns the WGSL source of the SDF text shader.
func ShaderSource() string {
	return sdfTextShaderSource
}

// compileSPIRV compiles WGSL source to SPIR-V words.
func compileSPIRV(wgsl string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgsl)
	if err != nil {
		return nil, fmt.Errorf("compile shader: %w", err)
	}
	if len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("compile shader: SPIR-V length %d is not a multiple of 4", len(spirvBytes))
	}

	// SPIR-V is little-endian 32-bit words.
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}

// shaderModuleSource returns the module source handed to the HAL, either
// WGSL as-is or SPIR-V compiled ahead of time.
func shaderModuleSource(spirv bool) (hal.ShaderSource, error) {
	if !spirv {
		return hal.ShaderSource{WGSL: sdfTextShaderSource}, nil
	}
	words, err := compileSPIRV(sdfTextShaderSource)
	if err != nil {
		return hal.ShaderSource{}, err
	}
	return hal.ShaderSource{SPIRV: words}, nil
}
