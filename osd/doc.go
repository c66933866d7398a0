// Package osd applies precomputed subdivision stencils and patch
// evaluations to primvar buffers. It offers a serial CPU evaluator, a
// goroutine-pool parallel evaluator and, in the wgpu sub-package, a GPU
// compute evaluator. All evaluators consume the tables produced by the
// far package and share the same buffer-descriptor conventions, so
// callers can switch backends without touching their data layout.
package osd
