package far

import (
	"fmt"

	"github.com/gogpu/subd"
	"github.com/gogpu/subd/sdc"
)

// EndCapType selects the basis used for patches around irregular
// features.
type EndCapType uint8

const (
	EndCapNone EndCapType = iota
	EndCapBilinearBasis
	EndCapBSplineBasis
	EndCapGregoryBasis
	EndCapLegacyGregory
)

// PatchTableOptions configures CreatePatchTable. The zero value is a
// valid default.
type PatchTableOptions struct {
	// EndCapType selects the end-cap basis. Only bilinear end caps are
	// generated; other values are accepted and treated as bilinear.
	EndCapType EndCapType

	// UseInfSharpPatch requests infinitely-sharp crease patches.
	// Infinitely sharp creases already refine to bilinear quads here, so
	// the flag changes nothing but is accepted for call compatibility.
	UseInfSharpPatch bool

	// TriangleSubdivision is accepted for call compatibility with older
	// callers and has no effect.
	TriangleSubdivision sdc.TriangleSubdivision

	// NumLegacyGregoryPatches is accepted for call compatibility with
	// older callers and has no effect.
	NumLegacyGregoryPatches int
}

// CreatePatchTable builds limit-surface patches for the finest level of
// a uniformly refined mesh. Interior faces whose one-ring is regular
// and crease-free become 16-point b-spline patches; everything else
// becomes a bilinear quad patch. A nil options pointer selects the
// defaults.
func CreatePatchTable(r *TopologyRefiner, options *PatchTableOptions) (*PatchTable, error) {
	if r == nil || !r.IsUniform() || len(r.levels) < 2 {
		return nil, fmt.Errorf("far: patch table needs a uniformly refined mesh: %w", subd.ErrNotRefined)
	}
	if options == nil {
		options = &PatchTableOptions{}
	}

	top := r.levels[len(r.levels)-1]
	offset := subd.Index(r.levelVertexOffset(len(r.levels) - 1))

	var regular, quads patchArray
	regular.desc = PatchDescriptor{Type: PatchRegular}
	quads.desc = PatchDescriptor{Type: PatchQuads}

	for f := 0; f < top.numFaces; f++ {
		if top.faceHole != nil && top.faceHole[f] {
			continue
		}
		t := top.faceTags[f]
		if cvs, ok := gatherRegularPatch(top, subd.Index(f)); ok {
			for _, cv := range cvs {
				regular.verts = append(regular.verts, cv+offset)
			}
			regular.params = append(regular.params, MakePatchParam(
				t.ptexFace, t.u, t.v, t.depth, t.nonQuadRoot, 0, 0, true))
			regular.faces = append(regular.faces, subd.Index(f))
			continue
		}
		boundary := uint8(0)
		for i, e := range top.faceEdgeIndices(subd.Index(f)) {
			if top.isEdgeBoundary(e) {
				boundary |= 1 << i
			}
		}
		for _, cv := range top.faceVertices(subd.Index(f)) {
			quads.verts = append(quads.verts, cv+offset)
		}
		quads.params = append(quads.params, MakePatchParam(
			t.ptexFace, t.u, t.v, t.depth, t.nonQuadRoot, boundary, 0, false))
		quads.faces = append(quads.faces, subd.Index(f))
	}

	table := &PatchTable{maxValence: r.MaxValence()}
	if len(regular.params) > 0 {
		table.arrays = append(table.arrays, regular)
	}
	if len(quads.params) > 0 {
		table.arrays = append(table.arrays, quads)
	}
	return table, nil
}

// gatherRegularPatch collects the 16 one-ring control vertices of a
// regular interior quad in v-major grid order, with the face corners at
// grid positions 5, 6, 10 and 9. It reports false when the face or its
// ring is not regular.
func gatherRegularPatch(l *level, f subd.Index) ([16]subd.Index, bool) {
	var grid [16]subd.Index

	fv := l.faceVertices(f)
	fe := l.faceEdgeIndices(f)
	if len(fv) != 4 {
		return grid, false
	}
	for _, v := range fv {
		if l.isVertexBoundary(v) || len(l.vertexEdges(v)) != 4 {
			return grid, false
		}
		if sdc.IsSharp(l.vertSharpness[v]) {
			return grid, false
		}
		for _, e := range l.vertexEdges(v) {
			if sdc.IsSharp(l.edgeSharpness[e]) {
				return grid, false
			}
		}
	}

	grid[5], grid[6], grid[10], grid[9] = fv[0], fv[1], fv[2], fv[3]

	// Edge-neighbor rows and columns.
	type edgeSlot struct {
		edge   int
		a, b   int // corner indices within fv
		ga, gb int // grid slots across fv[a] and fv[b]
	}
	slots := []edgeSlot{
		{0, 0, 1, 1, 2},   // v=0 row
		{1, 1, 2, 7, 11},  // u=1 column
		{2, 2, 3, 14, 13}, // v=1 row
		{3, 3, 0, 8, 4},   // u=0 column
	}
	var neighbors [4]subd.Index
	for _, s := range slots {
		g := otherEdgeFace(l, fe[s.edge], f)
		if !subd.IndexIsValid(g) || len(l.faceVertices(g)) != 4 {
			return grid, false
		}
		neighbors[s.edge] = g
		va := acrossVertexInFace(l, g, fv[s.a], fv[s.b])
		vb := acrossVertexInFace(l, g, fv[s.b], fv[s.a])
		if !subd.IndexIsValid(va) || !subd.IndexIsValid(vb) {
			return grid, false
		}
		grid[s.ga], grid[s.gb] = va, vb
	}

	// Diagonal corner points.
	cornerSlots := [4]int{0, 3, 15, 12}
	for i := 0; i < 4; i++ {
		prevEdge := (i + 3) % 4
		diag := subd.InvalidIndex
		for _, g := range l.vertexFaces(fv[i]) {
			if g != f && g != neighbors[i] && g != neighbors[prevEdge] {
				diag = g
				break
			}
		}
		if !subd.IndexIsValid(diag) || len(l.faceVertices(diag)) != 4 {
			return grid, false
		}
		grid[cornerSlots[i]] = diagonalVertexInFace(l, diag, fv[i])
		if !subd.IndexIsValid(grid[cornerSlots[i]]) {
			return grid, false
		}
	}
	return grid, true
}

// otherEdgeFace returns the face across edge e from f, or InvalidIndex
// on boundaries and non-manifold edges.
func otherEdgeFace(l *level, e, f subd.Index) subd.Index {
	faces := l.edgeFaceIndices(e)
	if len(faces) != 2 {
		return subd.InvalidIndex
	}
	if faces[0] == f {
		return faces[1]
	}
	return faces[0]
}

// acrossVertexInFace returns the vertex adjacent to a within face g,
// excluding b.
func acrossVertexInFace(l *level, g, a, b subd.Index) subd.Index {
	fv := l.faceVertices(g)
	n := len(fv)
	for i, v := range fv {
		if v != a {
			continue
		}
		next := fv[(i+1)%n]
		if next == b {
			return fv[(i+n-1)%n]
		}
		return next
	}
	return subd.InvalidIndex
}

// diagonalVertexInFace returns the vertex opposite v within quad g.
func diagonalVertexInFace(l *level, g, v subd.Index) subd.Index {
	fv := l.faceVertices(g)
	for i, fvv := range fv {
		if fvv == v {
			return fv[(i+2)%len(fv)]
		}
	}
	return subd.InvalidIndex
}
