package far

import (
	"fmt"

	"github.com/gogpu/subd"
)

// PrimvarRefiner interpolates primvar data from one refinement level to
// the next. Values are interleaved float32 with 1 to 4 elements per
// vertex; any other width is rejected.
type PrimvarRefiner struct {
	refiner *TopologyRefiner
}

// NewPrimvarRefiner returns a primvar refiner over r's topology.
func NewPrimvarRefiner(r *TopologyRefiner) *PrimvarRefiner {
	return &PrimvarRefiner{refiner: r}
}

func checkElementCount(width int) error {
	if width < 1 || width > 4 {
		return fmt.Errorf("far: primvar width %d: %w", width, subd.ErrInvalidElementCount)
	}
	return nil
}

func (p *PrimvarRefiner) levelPair(lvl int) (parent, child *level, ref *refinement, err error) {
	r := p.refiner
	if lvl < 1 || lvl >= len(r.levels) {
		return nil, nil, nil, fmt.Errorf("far: interpolate to level %d of %d: %w",
			lvl, len(r.levels)-1, subd.ErrNotRefined)
	}
	return r.levels[lvl-1], r.levels[lvl], r.refinements[lvl-1], nil
}

// Interpolate applies the subdivision scheme's vertex masks to carry
// src, the primvar values of level-1, into dst, the values of level.
func (p *PrimvarRefiner) Interpolate(level, width int, src, dst []float32) error {
	if err := checkElementCount(width); err != nil {
		return err
	}
	parent, child, ref, err := p.levelPair(level)
	if err != nil {
		return err
	}
	if err := checkPrimvarLen("src", src, parent.numVertices, width); err != nil {
		return err
	}
	if err := checkPrimvarLen("dst", dst, child.numVertices, width); err != nil {
		return err
	}
	for cv, mask := range ref.vertexMasks {
		applyMask(dst[cv*width:(cv+1)*width], src, mask, width)
	}
	return nil
}

// InterpolateVarying carries varying data to the next level. Varying
// interpolation is linear regardless of scheme: face children average
// their corners, edge children their endpoints, vertex children copy.
func (p *PrimvarRefiner) InterpolateVarying(level, width int, src, dst []float32) error {
	if err := checkElementCount(width); err != nil {
		return err
	}
	parent, child, ref, err := p.levelPair(level)
	if err != nil {
		return err
	}
	if err := checkPrimvarLen("src", src, parent.numVertices, width); err != nil {
		return err
	}
	if err := checkPrimvarLen("dst", dst, child.numVertices, width); err != nil {
		return err
	}
	for cv, origin := range ref.childOrigins {
		out := dst[cv*width : (cv+1)*width]
		for i := range out {
			out[i] = 0
		}
		switch origin.kind {
		case originFace:
			fv := parent.faceVertices(origin.parent)
			w := 1 / float32(len(fv))
			for _, v := range fv {
				accumulate(out, src, v, w, width)
			}
		case originEdge:
			ev := parent.edgeVertices(origin.parent)
			accumulate(out, src, ev[0], 0.5, width)
			accumulate(out, src, ev[1], 0.5, width)
		default:
			accumulate(out, src, origin.parent, 1, width)
		}
	}
	return nil
}

// InterpolateFaceUniform carries uniform per-face data to the next
// level: every child face inherits its parent face's value.
func (p *PrimvarRefiner) InterpolateFaceUniform(level, width int, src, dst []float32) error {
	if err := checkElementCount(width); err != nil {
		return err
	}
	parent, child, _, err := p.levelPair(level)
	if err != nil {
		return err
	}
	if err := checkPrimvarLen("src", src, parent.numFaces, width); err != nil {
		return err
	}
	if err := checkPrimvarLen("dst", dst, child.numFaces, width); err != nil {
		return err
	}
	for cf := 0; cf < child.numFaces; cf++ {
		pf := int(child.faceParent[cf])
		copy(dst[cf*width:(cf+1)*width], src[pf*width:(pf+1)*width])
	}
	return nil
}

// InterpolateFaceVarying carries face-varying data of one channel to the
// next level using the channel's linear masks.
func (p *PrimvarRefiner) InterpolateFaceVarying(level, width int, src, dst []float32, channel int) error {
	if err := checkElementCount(width); err != nil {
		return err
	}
	parent, child, ref, err := p.levelPair(level)
	if err != nil {
		return err
	}
	if channel < 0 || channel >= len(parent.fvar) {
		return fmt.Errorf("far: face-varying channel %d of %d: %w",
			channel, len(parent.fvar), subd.ErrInvalidTopology)
	}
	if err := checkPrimvarLen("src", src, parent.fvar[channel].numValues, width); err != nil {
		return err
	}
	if err := checkPrimvarLen("dst", dst, child.fvar[channel].numValues, width); err != nil {
		return err
	}
	for cv, mask := range ref.fvarMasks[channel] {
		applyMask(dst[cv*width:(cv+1)*width], src, mask, width)
	}
	return nil
}

func checkPrimvarLen(name string, buf []float32, count, width int) error {
	if len(buf) < count*width {
		return fmt.Errorf("far: %s holds %d floats, need %d: %w",
			name, len(buf), count*width, subd.ErrInvalidTopology)
	}
	return nil
}

func applyMask(out, src []float32, mask sparseMask, width int) {
	for i := range out {
		out[i] = 0
	}
	for i, idx := range mask.indices {
		accumulate(out, src, idx, mask.weights[i], width)
	}
}

func accumulate(out, src []float32, idx subd.Index, w float32, width int) {
	base := int(idx) * width
	switch width {
	case 1:
		out[0] += w * src[base]
	case 2:
		out[0] += w * src[base]
		out[1] += w * src[base+1]
	case 3:
		out[0] += w * src[base]
		out[1] += w * src[base+1]
		out[2] += w * src[base+2]
	default:
		for i := 0; i < width; i++ {
			out[i] += w * src[base+i]
		}
	}
}
