package far

import (
	"fmt"

	"github.com/gogpu/subd"
)

// patchArray is one homogeneous run of patches sharing a descriptor.
type patchArray struct {
	desc   PatchDescriptor
	verts  []subd.Index // numPatches * desc.NumControlVertices()
	params []PatchParam
	faces  []subd.Index // source face per patch, finest level
}

// PatchTable holds the limit-surface patches of a uniformly refined
// mesh, grouped into arrays by patch type. Control-vertex indices refer
// to the concatenated all-levels vertex space of the refiner that
// produced the table.
type PatchTable struct {
	arrays      []patchArray
	maxValence  int
	localPoints *StencilTable
}

// NumPatchArrays returns the number of patch arrays.
func (t *PatchTable) NumPatchArrays() int { return len(t.arrays) }

// NumPatchesTotal returns the total patch count over all arrays.
func (t *PatchTable) NumPatchesTotal() int {
	total := 0
	for i := range t.arrays {
		total += len(t.arrays[i].params)
	}
	return total
}

// NumControlVerticesTotal returns the total control-vertex index count
// over all arrays.
func (t *PatchTable) NumControlVerticesTotal() int {
	total := 0
	for i := range t.arrays {
		total += len(t.arrays[i].verts)
	}
	return total
}

// MaxValence returns the maximum vertex valence of the source mesh.
func (t *PatchTable) MaxValence() int { return t.maxValence }

// NumLocalPoints returns the number of end-cap local points. Bilinear
// end caps introduce none, so the count is currently always zero.
func (t *PatchTable) NumLocalPoints() int {
	if t.localPoints == nil {
		return 0
	}
	return t.localPoints.NumStencils()
}

// LocalPointStencilTable returns the stencils that derive end-cap local
// points from refined vertices, or nil when the table has none.
func (t *PatchTable) LocalPointStencilTable() *StencilTable {
	return t.localPoints
}

// PatchArrayNumPatches returns the patch count of one array, or 0 when
// the array index is out of range.
func (t *PatchTable) PatchArrayNumPatches(array int) int {
	if array < 0 || array >= len(t.arrays) {
		return 0
	}
	return len(t.arrays[array].params)
}

// PatchArrayDescriptor returns the descriptor of one array.
func (t *PatchTable) PatchArrayDescriptor(array int) (PatchDescriptor, bool) {
	if array < 0 || array >= len(t.arrays) {
		return PatchDescriptor{}, false
	}
	return t.arrays[array].desc, true
}

// PatchArrayVertices returns the control-vertex indices of one array.
// The slice aliases the table; callers must not mutate it.
func (t *PatchTable) PatchArrayVertices(array int) []subd.Index {
	if array < 0 || array >= len(t.arrays) {
		return nil
	}
	return t.arrays[array].verts
}

// PatchParam returns the param of one patch within an array.
func (t *PatchTable) PatchParam(array, patch int) (PatchParam, bool) {
	if array < 0 || array >= len(t.arrays) {
		return PatchParam{}, false
	}
	if patch < 0 || patch >= len(t.arrays[array].params) {
		return PatchParam{}, false
	}
	return t.arrays[array].params[patch], true
}

// ControlVertices returns the control-vertex indices of all arrays
// concatenated in array order.
func (t *PatchTable) ControlVertices() []subd.Index {
	out := make([]subd.Index, 0, t.NumControlVerticesTotal())
	for i := range t.arrays {
		out = append(out, t.arrays[i].verts...)
	}
	return out
}

// locate maps a global patch index to its array, the patch's index
// within that array and the patch's control-vertex slice.
func (t *PatchTable) locate(patch int) (array, local int, err error) {
	if patch < 0 {
		return 0, 0, fmt.Errorf("far: patch index %d: %w", patch, subd.ErrOutOfRange)
	}
	for i := range t.arrays {
		n := len(t.arrays[i].params)
		if patch < n {
			return i, patch, nil
		}
		patch -= n
	}
	return 0, 0, fmt.Errorf("far: patch index beyond %d patches: %w",
		t.NumPatchesTotal(), subd.ErrOutOfRange)
}

// patchVertices returns the control-vertex indices of one patch within
// an array.
func (t *PatchTable) patchVertices(array, local int) []subd.Index {
	a := &t.arrays[array]
	n := a.desc.NumControlVertices()
	return a.verts[local*n : (local+1)*n]
}
