package far

import (
	"fmt"

	"github.com/gogpu/subd"
)

// LimitStencilInterpolation selects which primvar class limit stencils
// reproduce.
type LimitStencilInterpolation uint8

const (
	LimitStencilInterpolateVertex LimitStencilInterpolation = iota
	LimitStencilInterpolateVarying
	LimitStencilInterpolateFaceVarying
)

// LimitStencilTableOptions configures CreateLimitStencilTable.
type LimitStencilTableOptions struct {
	InterpolationMode        LimitStencilInterpolation
	GenerateFirstDerivatives bool
	Generate2ndDerivatives   bool

	// FVarChannel selects the channel for face-varying interpolation.
	FVarChannel int
}

// Bitfield layout shared with GPU-side and serialized option blocks:
// bits [1:0] interpolation mode, bit 2 first derivatives, bit 3 second
// derivatives. The face-varying channel travels separately.
const (
	limitStencilModeMask  = 0x3
	limitStencil1stDeriv  = 1 << 2
	limitStencil2ndDerivs = 1 << 3
)

// Encode packs the options into their bitfield form.
func (o LimitStencilTableOptions) Encode() uint32 {
	bits := uint32(o.InterpolationMode) & limitStencilModeMask
	if o.GenerateFirstDerivatives {
		bits |= limitStencil1stDeriv
	}
	if o.Generate2ndDerivatives {
		bits |= limitStencil2ndDerivs
	}
	return bits
}

// DecodeLimitStencilTableOptions unpacks a bitfield produced by Encode.
func DecodeLimitStencilTableOptions(bits uint32, fvarChannel int) LimitStencilTableOptions {
	return LimitStencilTableOptions{
		InterpolationMode:        LimitStencilInterpolation(bits & limitStencilModeMask),
		GenerateFirstDerivatives: bits&limitStencil1stDeriv != 0,
		Generate2ndDerivatives:   bits&limitStencil2ndDerivs != 0,
		FVarChannel:              fvarChannel,
	}
}

// LocationArray names a set of parametric locations on one base (ptex)
// face. S and T must have equal length.
type LocationArray struct {
	PtexFace int
	S, T     []float32
}

// CreateLimitStencilTable builds limit stencils: one stencil per
// requested location, expressing the limit-surface value there (and its
// derivatives, when requested) over the base control values. A nil
// patchTable is built internally; a nil cvStencils composes the control
// stencils from the refiner.
func CreateLimitStencilTable(r *TopologyRefiner, locations []LocationArray,
	cvStencils *StencilTable, patchTable *PatchTable,
	options LimitStencilTableOptions) (*LimitStencilTable, error) {

	if r == nil || !r.IsUniform() || len(r.levels) < 2 {
		return nil, fmt.Errorf("far: limit stencils need a uniformly refined mesh: %w", subd.ErrNotRefined)
	}
	for i, loc := range locations {
		if len(loc.S) != len(loc.T) {
			return nil, fmt.Errorf("far: location array %d: %d s values, %d t values: %w",
				i, len(loc.S), len(loc.T), subd.ErrInvalidTopology)
		}
	}

	if patchTable == nil {
		var err error
		patchTable, err = CreatePatchTable(r, nil)
		if err != nil {
			return nil, err
		}
	}
	pmap := NewPatchMap(patchTable)

	topIdx := len(r.levels) - 1
	top := r.levels[topIdx]
	topOffset := r.levelVertexOffset(topIdx)

	// Control stencils over base values for every top-level value of
	// the selected interpolation class.
	var base []sparseMask
	var numControl int
	switch options.InterpolationMode {
	case LimitStencilInterpolateVertex:
		numControl = r.levels[0].numVertices
		if cvStencils != nil {
			base = stencilRowsFor(cvStencils, top.numVertices, topOffset, numControl)
			if base == nil {
				return nil, fmt.Errorf("far: control stencil table covers %d of %d vertices: %w",
					cvStencils.NumStencils(), topOffset+top.numVertices-numControl, subd.ErrInvalidTopology)
			}
		} else {
			base = stencilsToBase(r, topIdx)
		}
	case LimitStencilInterpolateVarying:
		numControl = r.levels[0].numVertices
		base = composeVaryingToBase(r, topIdx)
	case LimitStencilInterpolateFaceVarying:
		ch := options.FVarChannel
		if ch < 0 || ch >= len(r.levels[0].fvar) {
			return nil, fmt.Errorf("far: face-varying channel %d of %d: %w",
				ch, len(r.levels[0].fvar), subd.ErrInvalidTopology)
		}
		numControl = r.levels[0].fvar[ch].numValues
		base = composeFVarToBase(r, topIdx, ch)
	default:
		return nil, fmt.Errorf("far: limit stencil interpolation mode %d: %w",
			options.InterpolationMode, subd.ErrInvalidTopology)
	}

	table := &LimitStencilTable{}
	table.numControlVertices = numControl

	for _, loc := range locations {
		for i := range loc.S {
			s, t := loc.S[i], loc.T[i]
			handle, _, _, ok := pmap.FindPatch(loc.PtexFace, s, t)
			if !ok {
				return nil, fmt.Errorf("far: no patch at face %d (%g,%g): %w",
					loc.PtexFace, s, t, subd.ErrOutOfRange)
			}

			var row limitRow
			var err error
			if options.InterpolationMode == LimitStencilInterpolateVertex {
				row, err = vertexLimitRow(patchTable, handle, s, t, base, topOffset)
			} else {
				row, err = linearLimitRow(patchTable, handle, s, t, base, top, options)
			}
			if err != nil {
				return nil, err
			}
			appendLimitRow(table, row, options)
		}
	}
	if !options.GenerateFirstDerivatives {
		table.duWeights, table.dvWeights = nil, nil
	}
	if !options.Generate2ndDerivatives {
		table.duuWeights, table.duvWeights, table.dvvWeights = nil, nil, nil
	}
	return table, nil
}

// limitRow is one location's weights over base control values, one
// aligned weight array per derivative channel.
type limitRow struct {
	indices []subd.Index
	w       [6][]float32 // p, du, dv, duu, duv, dvv
}

// vertexLimitRow composes the patch basis with the control stencils.
func vertexLimitRow(pt *PatchTable, handle PatchHandle, s, t float32,
	base []sparseMask, topOffset int) (limitRow, error) {

	ncv := pt.arrays[handle.ArrayIndex].desc.NumControlVertices()
	weights := make([]float32, 6*ncv)
	wP := weights[0*ncv : 1*ncv]
	wDu := weights[1*ncv : 2*ncv]
	wDv := weights[2*ncv : 3*ncv]
	wDuu := weights[3*ncv : 4*ncv]
	wDuv := weights[4*ncv : 5*ncv]
	wDvv := weights[5*ncv : 6*ncv]
	err := pt.EvaluateBasis(handle.PatchIndex, s, t, wP, wDu, wDv, wDuu, wDuv, wDvv)
	if err != nil {
		return limitRow{}, err
	}

	cvs := pt.patchVertices(handle.ArrayIndex, handle.LocalIndex)
	local := make([]subd.Index, len(cvs))
	for i, cv := range cvs {
		local[i] = cv - subd.Index(topOffset)
	}
	return composeRow(local, [6][]float32{wP, wDu, wDv, wDuu, wDuv, wDvv}, base), nil
}

// linearLimitRow evaluates the bilinear limit of linearly interpolated
// data (varying or face-varying) at the location: bilinear weights over
// the containing face's corner values, composed with the control
// stencils.
func linearLimitRow(pt *PatchTable, handle PatchHandle, s, t float32,
	base []sparseMask, top *level, options LimitStencilTableOptions) (limitRow, error) {

	a := &pt.arrays[handle.ArrayIndex]
	param := a.params[handle.LocalIndex]
	face := a.faces[handle.LocalIndex]
	u, v := param.Normalize(s, t)

	var corners []subd.Index
	if options.InterpolationMode == LimitStencilInterpolateFaceVarying {
		corners = top.faceFVarValues(face, options.FVarChannel)
	} else {
		corners = top.faceVertices(face)
	}
	if len(corners) != 4 {
		return limitRow{}, fmt.Errorf("far: face %d has %d corners: %w",
			face, len(corners), subd.ErrInvalidTopology)
	}

	var wP, wDu, wDv, wDuu, wDuv, wDvv [4]float32
	bilinearPatchWeights(u, v, wP[:], wDu[:], wDv[:], wDuu[:], wDuv[:], wDvv[:])
	scale := 1 / param.paramFraction()
	scaleWeights(wDu[:], scale)
	scaleWeights(wDv[:], scale)
	scaleWeights(wDuu[:], scale*scale)
	scaleWeights(wDuv[:], scale*scale)
	scaleWeights(wDvv[:], scale*scale)

	return composeRow(corners,
		[6][]float32{wP[:], wDu[:], wDv[:], wDuu[:], wDuv[:], wDvv[:]}, base), nil
}

// composeRow expands per-corner weights through the corners' base
// stencils. All six channels share one index set so the rows stay
// aligned.
func composeRow(cvs []subd.Index, w [6][]float32, base []sparseMask) limitRow {
	builders := [6]maskBuilder{}
	for c := range builders {
		builders[c] = make(maskBuilder, 4*len(cvs))
	}
	for i, cv := range cvs {
		st := base[cv]
		for j, bi := range st.indices {
			bw := st.weights[j]
			for c := range builders {
				builders[c].add(bi, w[c][i]*bw)
			}
		}
	}

	p := builders[0].build()
	row := limitRow{indices: p.indices}
	row.w[0] = p.weights
	for c := 1; c < 6; c++ {
		row.w[c] = make([]float32, len(p.indices))
		for j, bi := range p.indices {
			row.w[c][j] = builders[c][bi]
		}
	}
	return row
}

func appendLimitRow(t *LimitStencilTable, row limitRow, options LimitStencilTableOptions) {
	t.offsets = append(t.offsets, int32(len(t.indices)))
	t.sizes = append(t.sizes, int32(len(row.indices)))
	t.indices = append(t.indices, row.indices...)
	t.weights = append(t.weights, row.w[0]...)
	t.duWeights = append(t.duWeights, row.w[1]...)
	t.dvWeights = append(t.dvWeights, row.w[2]...)
	t.duuWeights = append(t.duuWeights, row.w[3]...)
	t.duvWeights = append(t.duvWeights, row.w[4]...)
	t.dvvWeights = append(t.dvvWeights, row.w[5]...)
}

// stencilRowsFor adapts a caller-supplied stencil table to per-vertex
// masks of the finest level. Stencil i corresponds to refined vertex
// numBase+i in the concatenated vertex space; base vertices get
// identity stencils. Returns nil when the table is too small.
func stencilRowsFor(st *StencilTable, numTop, topOffset, numBase int) []sparseMask {
	rows := make([]sparseMask, numTop)
	for v := 0; v < numTop; v++ {
		global := topOffset + v
		if global < numBase {
			rows[v] = sparseMask{
				indices: []subd.Index{subd.Index(global)},
				weights: []float32{1},
			}
			continue
		}
		s, ok := st.Stencil(global - numBase)
		if !ok {
			return nil
		}
		rows[v] = sparseMask{indices: s.Indices, weights: s.Weights}
	}
	return rows
}

// composeVaryingToBase mirrors stencilsToBase for the linear varying
// rules.
func composeVaryingToBase(r *TopologyRefiner, lvl int) []sparseMask {
	numBase := r.levels[0].numVertices
	prev := identityMasks(numBase)
	for l := 1; l <= lvl; l++ {
		masks := varyingMasks(r.levels[l-1], r.refinements[l-1])
		prev = composeMasks(masks, prev, r.levels[l].numVertices)
	}
	return prev
}

// composeFVarToBase mirrors stencilsToBase for one face-varying
// channel.
func composeFVarToBase(r *TopologyRefiner, lvl, channel int) []sparseMask {
	prev := identityMasks(r.levels[0].fvar[channel].numValues)
	for l := 1; l <= lvl; l++ {
		masks := r.refinements[l-1].fvarMasks[channel]
		prev = composeMasks(masks, prev, r.levels[l].fvar[channel].numValues)
	}
	return prev
}

func identityMasks(n int) []sparseMask {
	masks := make([]sparseMask, n)
	for v := range masks {
		masks[v] = sparseMask{indices: []subd.Index{subd.Index(v)}, weights: []float32{1}}
	}
	return masks
}

func composeMasks(masks, prev []sparseMask, numChild int) []sparseMask {
	cur := make([]sparseMask, numChild)
	for cv, mask := range masks {
		mb := make(maskBuilder, 2*len(mask.indices))
		for i, pv := range mask.indices {
			w := mask.weights[i]
			base := prev[pv]
			for j, bv := range base.indices {
				mb.add(bv, w*base.weights[j])
			}
		}
		cur[cv] = mb.build()
	}
	return cur
}
