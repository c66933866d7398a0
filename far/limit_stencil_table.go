package far

// LimitStencilTable extends StencilTable with derivative weight arrays:
// every stencil row additionally carries the weights producing the
// first (du, dv) and optionally second (duu, duv, dvv) parametric
// derivatives of the limit surface.
type LimitStencilTable struct {
	StencilTable

	duWeights []float32
	dvWeights []float32

	duuWeights []float32
	duvWeights []float32
	dvvWeights []float32
}

// DuWeights returns the concatenated du weights, aligned with
// ControlIndices.
func (t *LimitStencilTable) DuWeights() []float32 { return t.duWeights }

// DvWeights returns the concatenated dv weights, aligned with
// ControlIndices.
func (t *LimitStencilTable) DvWeights() []float32 { return t.dvWeights }

// DuuWeights returns the concatenated duu weights, or nil when second
// derivatives were not generated.
func (t *LimitStencilTable) DuuWeights() []float32 { return t.duuWeights }

// DuvWeights returns the concatenated duv weights, or nil when second
// derivatives were not generated.
func (t *LimitStencilTable) DuvWeights() []float32 { return t.duvWeights }

// DvvWeights returns the concatenated dvv weights, or nil when second
// derivatives were not generated.
func (t *LimitStencilTable) DvvWeights() []float32 { return t.dvvWeights }

// UpdateDerivatives applies the first-derivative stencils [start,end) to
// interleaved src control values, writing du results to dstDu and dv
// results to dstDv. Range clamping matches UpdateValues.
func (t *LimitStencilTable) UpdateDerivatives(width int, src, dstDu, dstDv []float32, start, end int) error {
	if err := t.applyWeights(width, t.duWeights, src, dstDu, start, end); err != nil {
		return err
	}
	return t.applyWeights(width, t.dvWeights, src, dstDv, start, end)
}

func (t *LimitStencilTable) applyWeights(width int, weights, src, dst []float32, start, end int) error {
	if err := checkElementCount(width); err != nil {
		return err
	}
	if start < 0 {
		start = 0
	}
	if end < 0 || end > len(t.sizes) {
		end = len(t.sizes)
	}
	if err := checkPrimvarLen("src", src, t.numControlVertices, width); err != nil {
		return err
	}
	if err := checkPrimvarLen("dst", dst, end, width); err != nil {
		return err
	}
	for i := start; i < end; i++ {
		out := dst[i*width : (i+1)*width]
		for k := range out {
			out[k] = 0
		}
		off, n := int(t.offsets[i]), int(t.sizes[i])
		for j := 0; j < n; j++ {
			accumulate(out, src, t.indices[off+j], weights[off+j], width)
		}
	}
	return nil
}
