package far

// PatchHandle locates one patch within a PatchTable.
type PatchHandle struct {
	// PatchIndex is the global patch index over all arrays.
	PatchIndex int

	// ArrayIndex and LocalIndex locate the patch within its array.
	ArrayIndex int
	LocalIndex int
}

// faceGrid indexes the patches of one ptex face by parametric cell.
type faceGrid struct {
	side    int
	patches []int32 // side*side cells, -1 where no patch landed
}

// PatchMap maps a (ptex face, u, v) location to the patch containing
// it. Built once per patch table; lookups are O(1).
type PatchMap struct {
	table *PatchTable
	grids []faceGrid
}

// NewPatchMap indexes all patches of a table by base face and
// parametric cell.
func NewPatchMap(t *PatchTable) *PatchMap {
	maxFace := int32(-1)
	for a := range t.arrays {
		for _, p := range t.arrays[a].params {
			if p.FaceID() > maxFace {
				maxFace = p.FaceID()
			}
		}
	}

	m := &PatchMap{
		table: t,
		grids: make([]faceGrid, maxFace+1),
	}

	global := 0
	for a := range t.arrays {
		for _, p := range t.arrays[a].params {
			d := int(p.Depth())
			if p.NonQuadRoot() {
				d--
			}
			side := 1 << d
			g := &m.grids[p.FaceID()]
			if g.patches == nil {
				g.side = side
				g.patches = make([]int32, side*side)
				for i := range g.patches {
					g.patches[i] = -1
				}
			}
			g.patches[int(p.V())*g.side+int(p.U())] = int32(global)
			global++
		}
	}
	return m
}

// FindPatch returns the patch containing (u,v) on the given base (ptex)
// face, along with the coordinates normalized into that patch's local
// domain using the patch's own parametrization. It reports false when
// the face is unknown or no patch covers the location.
func (m *PatchMap) FindPatch(faceID int, u, v float32) (PatchHandle, float32, float32, bool) {
	if faceID < 0 || faceID >= len(m.grids) || m.grids[faceID].patches == nil {
		return PatchHandle{}, 0, 0, false
	}
	g := &m.grids[faceID]

	cu := cellOf(u, g.side)
	cv := cellOf(v, g.side)
	patch := g.patches[cv*g.side+cu]
	if patch < 0 {
		return PatchHandle{}, 0, 0, false
	}

	array, local, err := m.table.locate(int(patch))
	if err != nil {
		return PatchHandle{}, 0, 0, false
	}
	param := m.table.arrays[array].params[local]
	nu, nv := param.Normalize(u, v)
	return PatchHandle{
		PatchIndex: int(patch),
		ArrayIndex: array,
		LocalIndex: local,
	}, nu, nv, true
}

func cellOf(t float32, side int) int {
	c := int(t * float32(side))
	if c < 0 {
		return 0
	}
	if c >= side {
		return side - 1
	}
	return c
}
