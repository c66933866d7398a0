//go:build !nogpu

package wgpu

import (
	_ "embed"
)

// Compute shader sources embedded at build time.

//go:embed shaders/stencil_eval.wgsl
var stencilEvalShaderSource string
