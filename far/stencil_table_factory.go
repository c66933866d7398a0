package far

import (
	"fmt"

	"github.com/gogpu/subd"
)

// StencilInterpolation selects which primvar class a stencil table
// reproduces.
type StencilInterpolation uint8

const (
	StencilInterpolateVertex StencilInterpolation = iota
	StencilInterpolateVarying
	StencilInterpolateFaceVarying
)

// StencilTableOptions configures CreateStencilTable.
type StencilTableOptions struct {
	// InterpolationMode selects vertex, varying or face-varying rules.
	InterpolationMode StencilInterpolation

	// GenerateIntermediateLevels includes stencils for every refined
	// level rather than only the last.
	GenerateIntermediateLevels bool

	// GenerateControlVertices prepends identity stencils for the base
	// control vertices.
	GenerateControlVertices bool

	// MaxLevel caps the refinement depth considered; zero means all
	// refined levels.
	MaxLevel int

	// FVarChannel selects the channel for face-varying interpolation.
	FVarChannel int
}

// CreateStencilTable factors the subdivision masks of a refined mesh
// into stencils over the base control vertices.
func CreateStencilTable(r *TopologyRefiner, options StencilTableOptions) (*StencilTable, error) {
	if r == nil || len(r.levels) < 2 {
		return nil, fmt.Errorf("far: stencil table needs a refined mesh: %w", subd.ErrNotRefined)
	}
	maxLevel := r.MaxLevel()
	if options.MaxLevel > 0 && options.MaxLevel < maxLevel {
		maxLevel = options.MaxLevel
	}

	masksAt := func(lvl int) ([]sparseMask, int, int, error) {
		ref := r.refinements[lvl-1]
		parent, child := r.levels[lvl-1], r.levels[lvl]
		switch options.InterpolationMode {
		case StencilInterpolateVertex:
			return ref.vertexMasks, parent.numVertices, child.numVertices, nil
		case StencilInterpolateVarying:
			return varyingMasks(parent, ref), parent.numVertices, child.numVertices, nil
		case StencilInterpolateFaceVarying:
			ch := options.FVarChannel
			if ch < 0 || ch >= len(ref.fvarMasks) {
				return nil, 0, 0, fmt.Errorf("far: face-varying channel %d of %d: %w",
					ch, len(ref.fvarMasks), subd.ErrInvalidTopology)
			}
			return ref.fvarMasks[ch], parent.fvar[ch].numValues, child.fvar[ch].numValues, nil
		default:
			return nil, 0, 0, fmt.Errorf("far: stencil interpolation mode %d: %w",
				options.InterpolationMode, subd.ErrInvalidTopology)
		}
	}

	_, numBase, _, err := masksAt(1)
	if err != nil {
		return nil, err
	}

	table := &StencilTable{numControlVertices: numBase}
	if options.GenerateControlVertices {
		for v := 0; v < numBase; v++ {
			table.append(sparseMask{
				indices: []subd.Index{subd.Index(v)},
				weights: []float32{1},
			})
		}
	}

	// Compose level-by-level: stencils at level k are the level-k masks
	// expanded through the level-(k-1) stencils down to base values.
	prev := identityMasks(numBase)
	for lvl := 1; lvl <= maxLevel; lvl++ {
		masks, _, numChild, err := masksAt(lvl)
		if err != nil {
			return nil, err
		}
		prev = composeMasks(masks, prev, numChild)
		if options.GenerateIntermediateLevels || lvl == maxLevel {
			for _, m := range prev {
				table.append(m)
			}
		}
	}
	return table, nil
}

// varyingMasks derives linear masks from the child-vertex origins.
func varyingMasks(parent *level, ref *refinement) []sparseMask {
	masks := make([]sparseMask, len(ref.childOrigins))
	for cv, origin := range ref.childOrigins {
		switch origin.kind {
		case originFace:
			fv := parent.faceVertices(origin.parent)
			mb := make(maskBuilder, len(fv))
			w := 1 / float32(len(fv))
			for _, v := range fv {
				mb.add(v, w)
			}
			masks[cv] = mb.build()
		case originEdge:
			ev := parent.edgeVertices(origin.parent)
			mb := make(maskBuilder, 2)
			mb.add(ev[0], 0.5)
			mb.add(ev[1], 0.5)
			masks[cv] = mb.build()
		default:
			masks[cv] = sparseMask{
				indices: []subd.Index{origin.parent},
				weights: []float32{1},
			}
		}
	}
	return masks
}

// stencilsToBase returns, for the given level, every vertex's stencil
// over the base control vertices. Shared by the limit stencil and patch
// machinery.
func stencilsToBase(r *TopologyRefiner, lvl int) []sparseMask {
	prev := identityMasks(r.levels[0].numVertices)
	for l := 1; l <= lvl; l++ {
		prev = composeMasks(r.refinements[l-1].vertexMasks, prev, r.levels[l].numVertices)
	}
	return prev
}
