// Package subd implements subdivision surfaces for Go.
//
// # Overview
//
// subd is a Pure Go subdivision-surface library in the GoGPU ecosystem.
// It refines arbitrary polygonal meshes (Catmull-Clark and bilinear
// schemes), interpolates primvar data across refinement levels, factors
// refinement into stencil tables, builds bi-cubic B-spline patch tables
// and evaluates positions and derivatives on the limit surface.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/subd/far"
//	    "github.com/gogpu/subd/sdc"
//	)
//
//	// Describe a cube.
//	desc, _ := far.NewTopologyDescriptor(8, []int{4, 4, 4, 4, 4, 4}, cubeIndices)
//
//	// Refine it uniformly to level 2.
//	refiner, _ := far.NewTopologyRefiner(desc, far.TopologyRefinerOptions{
//	    Scheme: sdc.SchemeCatmullClark,
//	})
//	refiner.RefineUniform(far.UniformRefinementOptions{RefinementLevel: 2})
//
//	// Interpolate vertex positions level by level.
//	pr := far.NewPrimvarRefiner(refiner)
//	pr.Interpolate(1, 3, basePositions, level1Positions)
//
// # Architecture
//
// The library is organized into:
//   - sdc: subdivision schemes and per-scheme options
//   - far: topology refinement, primvar interpolation, stencil and
//     patch tables, limit-surface evaluation
//   - osd: stencil evaluation backends (CPU, goroutine-parallel, GPU
//     compute via gogpu/wgpu under osd/wgpu)
//
// # Renderers and GPU
//
// CPU evaluation works everywhere. The osd/wgpu backend requires a
// Vulkan-capable adapter; its availability is a normal, checkable
// condition rather than an error.
package subd

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0-alpha.1"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0

	// VersionPrerelease is the prerelease identifier
	VersionPrerelease = "alpha.1"
)
