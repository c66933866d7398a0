package far

import (
	"fmt"

	"github.com/gogpu/subd"
)

// Stencil is a view of one row of a StencilTable: the control-vertex
// indices and weights that produce one refined value.
type Stencil struct {
	Indices []subd.Index
	Weights []float32
}

// Size returns the number of control vertices in the stencil.
func (s Stencil) Size() int { return len(s.Indices) }

// StencilTable holds the factored subdivision stencils of a refined
// mesh: every refined vertex expressed as a weighted sum of base-level
// control vertices. The table layout is flat so it can be uploaded to
// GPU storage buffers unchanged.
type StencilTable struct {
	numControlVertices int

	sizes   []int32
	offsets []int32
	indices []subd.Index
	weights []float32
}

// NumStencils returns the number of stencils in the table.
func (t *StencilTable) NumStencils() int { return len(t.sizes) }

// NumControlVertices returns the number of base control vertices the
// stencils reference.
func (t *StencilTable) NumControlVertices() int { return t.numControlVertices }

// Sizes returns the per-stencil control-vertex counts.
func (t *StencilTable) Sizes() []int32 { return t.sizes }

// Offsets returns the per-stencil start offsets into ControlIndices and
// Weights.
func (t *StencilTable) Offsets() []int32 { return t.offsets }

// ControlIndices returns the concatenated control-vertex indices.
func (t *StencilTable) ControlIndices() []subd.Index { return t.indices }

// Weights returns the concatenated stencil weights.
func (t *StencilTable) Weights() []float32 { return t.weights }

// Stencil returns the i-th stencil, or false when i is out of range.
func (t *StencilTable) Stencil(i int) (Stencil, bool) {
	if i < 0 || i >= len(t.sizes) {
		return Stencil{}, false
	}
	off, n := t.offsets[i], t.sizes[i]
	return Stencil{
		Indices: t.indices[off : off+n],
		Weights: t.weights[off : off+n],
	}, true
}

// UpdateValues applies the stencils [start,end) to interleaved src
// control values and writes the results to dst, indexed by stencil.
// Negative start clamps to 0; a negative or oversized end clamps to the
// stencil count.
func (t *StencilTable) UpdateValues(width int, src, dst []float32, start, end int) error {
	if err := checkElementCount(width); err != nil {
		return err
	}
	if start < 0 {
		start = 0
	}
	if end < 0 || end > len(t.sizes) {
		end = len(t.sizes)
	}
	if len(src) < t.numControlVertices*width {
		return fmt.Errorf("far: stencil src holds %d floats, need %d: %w",
			len(src), t.numControlVertices*width, subd.ErrInvalidTopology)
	}
	if len(dst) < end*width {
		return fmt.Errorf("far: stencil dst holds %d floats, need %d: %w",
			len(dst), end*width, subd.ErrInvalidTopology)
	}
	for i := start; i < end; i++ {
		out := dst[i*width : (i+1)*width]
		for k := range out {
			out[k] = 0
		}
		off, n := int(t.offsets[i]), int(t.sizes[i])
		for j := 0; j < n; j++ {
			accumulate(out, src, t.indices[off+j], t.weights[off+j], width)
		}
	}
	return nil
}

// append adds one stencil row built from a sparse mask.
func (t *StencilTable) append(mask sparseMask) {
	t.offsets = append(t.offsets, int32(len(t.indices)))
	t.sizes = append(t.sizes, int32(len(mask.indices)))
	t.indices = append(t.indices, mask.indices...)
	t.weights = append(t.weights, mask.weights...)
}
