// Package shader compiles WGSL compute shaders to SPIR-V for the
// Vulkan HAL backend.
package shader

import (
	"fmt"

	"github.com/gogpu/naga"
)

// CompileWGSL translates WGSL source to SPIR-V words. SPIR-V is a
// little-endian 32-bit word stream.
func CompileWGSL(source string) ([]uint32, error) {
	raw, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("shader: compile wgsl: %w", err)
	}
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("shader: spir-v output is %d bytes, not word aligned", len(raw))
	}

	words := make([]uint32, len(raw)/4)
	for i := range words {
		words[i] = uint32(raw[i*4]) |
			uint32(raw[i*4+1])<<8 |
			uint32(raw[i*4+2])<<16 |
			uint32(raw[i*4+3])<<24
	}
	return words, nil
}
