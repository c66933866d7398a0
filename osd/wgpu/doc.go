// Package wgpu evaluates subdivision stencils on the GPU through
// gogpu/wgpu compute shaders. It mirrors the CPU evaluators in package
// osd: the same stencil tables and buffer descriptors, with the
// stencil application dispatched as a compute pass over storage
// buffers.
//
// Building with the nogpu tag compiles the package without GPU
// support; every entry point then reports subd.ErrUnavailable and
// callers fall back to the CPU evaluators.
package wgpu
