package far

import (
	"sort"

	"github.com/gogpu/subd"
	"github.com/gogpu/subd/sdc"
)

// Child vertex origin kinds. Child vertices are ordered face children
// first, then edge children, then vertex children.
const (
	originFace = iota
	originEdge
	originVertex
)

type childOrigin struct {
	kind   uint8
	parent subd.Index
}

// sparseMask expresses one child value as a weighted combination of
// parent-level values.
type sparseMask struct {
	indices []subd.Index
	weights []float32
}

// refinement records how one level was derived from its parent: the
// origin of every child vertex, the subdivision masks used for smooth
// (vertex) interpolation and the face-varying masks per channel.
type refinement struct {
	childOrigins []childOrigin
	vertexMasks  []sparseMask
	fvarMasks    [][]sparseMask
}

// buildAdjacency derives edges and all adjacency relations from the
// face-vertex lists already present in l. Edge order follows face
// traversal; relation order is deterministic.
func buildAdjacency(l *level) {
	type edgeKey struct{ a, b subd.Index }
	mk := func(a, b subd.Index) edgeKey {
		if a > b {
			a, b = b, a
		}
		return edgeKey{a, b}
	}

	edgeIDs := make(map[edgeKey]subd.Index)
	l.faceEdges = make([]subd.Index, len(l.faceVerts))
	l.edgeVerts = l.edgeVerts[:0]

	for f := 0; f < l.numFaces; f++ {
		fv := l.faceVertices(subd.Index(f))
		fe := l.faceEdges[l.faceVertOffsets[f]:l.faceVertOffsets[f+1]]
		n := len(fv)
		for i := 0; i < n; i++ {
			a, b := fv[i], fv[(i+1)%n]
			key := mk(a, b)
			e, ok := edgeIDs[key]
			if !ok {
				e = subd.Index(len(edgeIDs))
				edgeIDs[key] = e
				l.edgeVerts = append(l.edgeVerts, a, b)
			}
			fe[i] = e
		}
	}
	l.numEdges = len(edgeIDs)

	// Edge-face incidence.
	edgeFaceCounts := make([]int32, l.numEdges+1)
	for f := 0; f < l.numFaces; f++ {
		for _, e := range l.faceEdgeIndices(subd.Index(f)) {
			edgeFaceCounts[e+1]++
		}
	}
	l.edgeFaceOffsets = prefixSum(edgeFaceCounts)
	l.edgeFaces = make([]subd.Index, l.edgeFaceOffsets[l.numEdges])
	fill := make([]int32, l.numEdges)
	for f := 0; f < l.numFaces; f++ {
		for _, e := range l.faceEdgeIndices(subd.Index(f)) {
			l.edgeFaces[l.edgeFaceOffsets[e]+fill[e]] = subd.Index(f)
			fill[e]++
		}
	}

	// Vertex-face incidence.
	vertFaceCounts := make([]int32, l.numVertices+1)
	for _, v := range l.faceVerts {
		vertFaceCounts[v+1]++
	}
	l.vertFaceOffsets = prefixSum(vertFaceCounts)
	l.vertFaces = make([]subd.Index, l.vertFaceOffsets[l.numVertices])
	fillV := make([]int32, l.numVertices)
	for f := 0; f < l.numFaces; f++ {
		for _, v := range l.faceVertices(subd.Index(f)) {
			l.vertFaces[l.vertFaceOffsets[v]+fillV[v]] = subd.Index(f)
			fillV[v]++
		}
	}

	// Vertex-edge incidence.
	vertEdgeCounts := make([]int32, l.numVertices+1)
	for e := 0; e < l.numEdges; e++ {
		vertEdgeCounts[l.edgeVerts[2*e]+1]++
		vertEdgeCounts[l.edgeVerts[2*e+1]+1]++
	}
	l.vertEdgeOffsets = prefixSum(vertEdgeCounts)
	l.vertEdges = make([]subd.Index, l.vertEdgeOffsets[l.numVertices])
	fillE := make([]int32, l.numVertices)
	for e := 0; e < l.numEdges; e++ {
		for _, v := range l.edgeVertices(subd.Index(e)) {
			l.vertEdges[l.vertEdgeOffsets[v]+fillE[v]] = subd.Index(e)
			fillE[v]++
		}
	}

	if l.edgeSharpness == nil {
		l.edgeSharpness = make([]float32, l.numEdges)
	}
	if l.vertSharpness == nil {
		l.vertSharpness = make([]float32, l.numVertices)
	}
}

func prefixSum(counts []int32) []int32 {
	for i := 1; i < len(counts); i++ {
		counts[i] += counts[i-1]
	}
	return counts
}

// maskBuilder accumulates sparse weights keyed by parent index.
type maskBuilder map[subd.Index]float32

func (m maskBuilder) add(i subd.Index, w float32) { m[i] += w }

func (m maskBuilder) build() sparseMask {
	keys := make([]subd.Index, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool { return keys[a] < keys[b] })
	mask := sparseMask{
		indices: keys,
		weights: make([]float32, len(keys)),
	}
	for i, k := range keys {
		mask.weights[i] = m[k]
	}
	return mask
}

// refineQuadLevel splits every face of parent into quads and returns the
// child level along with the refinement record. Both Catmull-Clark and
// bilinear schemes use the quad split; they differ only in the masks.
func refineQuadLevel(parent *level, scheme sdc.Scheme, opts sdc.Options) (*level, *refinement) {
	numChildVerts := parent.numFaces + parent.numEdges + parent.numVertices

	parent.faceChildVert = make([]subd.Index, parent.numFaces)
	parent.edgeChildVert = make([]subd.Index, parent.numEdges)
	parent.vertChildVert = make([]subd.Index, parent.numVertices)
	for f := range parent.faceChildVert {
		parent.faceChildVert[f] = subd.Index(f)
	}
	for e := range parent.edgeChildVert {
		parent.edgeChildVert[e] = subd.Index(parent.numFaces + e)
	}
	for v := range parent.vertChildVert {
		parent.vertChildVert[v] = subd.Index(parent.numFaces + parent.numEdges + v)
	}

	ref := &refinement{
		childOrigins: make([]childOrigin, numChildVerts),
	}
	for f := 0; f < parent.numFaces; f++ {
		ref.childOrigins[f] = childOrigin{originFace, subd.Index(f)}
	}
	for e := 0; e < parent.numEdges; e++ {
		ref.childOrigins[parent.numFaces+e] = childOrigin{originEdge, subd.Index(e)}
	}
	for v := 0; v < parent.numVertices; v++ {
		ref.childOrigins[parent.numFaces+parent.numEdges+v] = childOrigin{originVertex, subd.Index(v)}
	}

	child := &level{numVertices: numChildVerts}
	buildChildFaces(parent, child)
	buildAdjacency(child)
	propagateSharpness(parent, child, ref, opts)
	propagateTags(parent, child)
	ref.vertexMasks = buildVertexMasks(parent, scheme, opts)
	refineFVarChannels(parent, child, ref)
	return child, ref
}

// buildChildFaces fills the child level's face-vertex topology. Children
// of a quad keep the parent corner at the same local index, preserving
// parametric orientation; children of an n-gon each start at their corner
// vertex and become ptex sub-faces of their own.
func buildChildFaces(parent *level, child *level) {
	numChildFaces := 0
	for f := 0; f < parent.numFaces; f++ {
		numChildFaces += int(parent.faceVertOffsets[f+1] - parent.faceVertOffsets[f])
	}

	child.numFaces = numChildFaces
	child.faceVertOffsets = make([]int32, numChildFaces+1)
	child.faceVerts = make([]subd.Index, 0, numChildFaces*4)
	child.faceParent = make([]subd.Index, 0, numChildFaces)
	if parent.faceHole != nil {
		child.faceHole = make([]bool, 0, numChildFaces)
	}

	cf := 0
	for f := 0; f < parent.numFaces; f++ {
		fv := parent.faceVertices(subd.Index(f))
		fe := parent.faceEdgeIndices(subd.Index(f))
		n := len(fv)
		for i := 0; i < n; i++ {
			vc := parent.vertChildVert[fv[i]]
			ecNext := parent.edgeChildVert[fe[i]]
			ecPrev := parent.edgeChildVert[fe[(i+n-1)%n]]
			fc := parent.faceChildVert[f]

			var quad [4]subd.Index
			if n == 4 {
				quad[i] = vc
				quad[(i+1)%4] = ecNext
				quad[(i+2)%4] = fc
				quad[(i+3)%4] = ecPrev
			} else {
				quad = [4]subd.Index{vc, ecNext, fc, ecPrev}
			}
			child.faceVerts = append(child.faceVerts, quad[:]...)
			child.faceVertOffsets[cf+1] = child.faceVertOffsets[cf] + 4
			child.faceParent = append(child.faceParent, subd.Index(f))
			if child.faceHole != nil {
				child.faceHole = append(child.faceHole, parent.faceHole[f])
			}
			cf++
		}
	}
}

// propagateSharpness assigns crease sharpness to child edges and corner
// sharpness to child vertices. A child edge is either one half of a
// parent edge (endpoints: edge child + vertex child of an endpoint) or an
// interior edge spawned inside a parent face (sharpness 0).
func propagateSharpness(parent, child *level, ref *refinement, opts sdc.Options) {
	crease := sdc.NewCrease(opts.CreasingMethod)

	child.edgeSharpness = make([]float32, child.numEdges)
	for e := 0; e < child.numEdges; e++ {
		ev := child.edgeVertices(subd.Index(e))
		o0, o1 := ref.childOrigins[ev[0]], ref.childOrigins[ev[1]]
		if o0.kind > o1.kind {
			o0, o1 = o1, o0
		}
		if o0.kind != originEdge || o1.kind != originVertex {
			continue
		}
		parentEdge := o0.parent
		endVert := o1.parent
		s := parent.edgeSharpness[parentEdge]
		if !sdc.IsSharp(s) {
			continue
		}
		var adjacent []float32
		if opts.CreasingMethod == sdc.CreaseChaikin {
			for _, ae := range parent.vertexEdges(endVert) {
				if ae != parentEdge && sdc.IsSharp(parent.edgeSharpness[ae]) {
					adjacent = append(adjacent, parent.edgeSharpness[ae])
				}
			}
		}
		child.edgeSharpness[e] = crease.ChildEdgeSharpness(s, adjacent)
	}

	child.vertSharpness = make([]float32, child.numVertices)
	for v := 0; v < parent.numVertices; v++ {
		cv := parent.vertChildVert[v]
		child.vertSharpness[cv] = crease.DecrementSharpness(parent.vertSharpness[v])
	}
}

// propagateTags computes the parametric ancestry of every child face.
func propagateTags(parent, child *level) {
	child.faceTags = make([]faceTag, child.numFaces)
	cf := 0
	for f := 0; f < parent.numFaces; f++ {
		t := parent.faceTags[f]
		n := int(parent.faceVertOffsets[f+1] - parent.faceVertOffsets[f])
		for i := 0; i < n; i++ {
			var ct faceTag
			if n == 4 {
				ct = faceTag{
					ptexFace:    t.ptexFace,
					depth:       t.depth + 1,
					nonQuadRoot: t.nonQuadRoot,
				}
				switch i {
				case 0:
					ct.u, ct.v = 2*t.u, 2*t.v
				case 1:
					ct.u, ct.v = 2*t.u+1, 2*t.v
				case 2:
					ct.u, ct.v = 2*t.u+1, 2*t.v+1
				case 3:
					ct.u, ct.v = 2*t.u, 2*t.v+1
				}
			} else {
				// An n-gon's children become ptex sub-faces.
				ct = faceTag{
					ptexFace:    t.ptexFace + int32(i),
					depth:       t.depth + 1,
					nonQuadRoot: true,
				}
			}
			child.faceTags[cf] = ct
			cf++
		}
	}
}

// buildVertexMasks computes, for every child vertex, its subdivision mask
// over parent-level vertices.
func buildVertexMasks(parent *level, scheme sdc.Scheme, opts sdc.Options) []sparseMask {
	numChildVerts := parent.numFaces + parent.numEdges + parent.numVertices
	masks := make([]sparseMask, numChildVerts)

	// Face children: centroid of the parent face corners.
	for f := 0; f < parent.numFaces; f++ {
		fv := parent.faceVertices(subd.Index(f))
		mb := make(maskBuilder, len(fv))
		w := 1 / float32(len(fv))
		for _, v := range fv {
			mb.add(v, w)
		}
		masks[parent.faceChildVert[f]] = mb.build()
	}

	// Edge children.
	for e := 0; e < parent.numEdges; e++ {
		masks[parent.edgeChildVert[e]] = edgeChildMask(parent, subd.Index(e), scheme)
	}

	// Vertex children.
	for v := 0; v < parent.numVertices; v++ {
		masks[parent.vertChildVert[v]] = vertexChildMask(parent, subd.Index(v), scheme, opts)
	}
	return masks
}

// edgeChildMask returns the mask of the vertex spawned on an edge. The
// crease (midpoint) rule applies on boundaries and fully sharp creases;
// semi-sharp edges blend crease and smooth rules by the fractional
// sharpness.
func edgeChildMask(parent *level, e subd.Index, scheme sdc.Scheme) sparseMask {
	ev := parent.edgeVertices(e)
	mb := make(maskBuilder, 8)

	sharp := parent.edgeSharpness[e]
	boundary := parent.isEdgeBoundary(e)
	if scheme == sdc.SchemeBilinear || boundary || sharp >= 1 {
		mb.add(ev[0], 0.5)
		mb.add(ev[1], 0.5)
		return mb.build()
	}

	frac := sharp
	if frac < 0 {
		frac = 0
	}
	creaseW := frac
	smoothW := 1 - frac

	mb.add(ev[0], 0.5*creaseW)
	mb.add(ev[1], 0.5*creaseW)

	// Smooth: quarter weights on the endpoints plus the expanded face
	// points of the incident faces.
	mb.add(ev[0], 0.25*smoothW)
	mb.add(ev[1], 0.25*smoothW)
	faces := parent.edgeFaceIndices(e)
	fw := 0.5 * smoothW / float32(len(faces))
	for _, f := range faces {
		fv := parent.faceVertices(f)
		w := fw / float32(len(fv))
		for _, v := range fv {
			mb.add(v, w)
		}
	}
	return mb.build()
}

// vertexChildMask returns the mask of the vertex a parent vertex maps to.
// Rule selection follows the usual Catmull-Clark classification: smooth,
// crease (two sharp edges) or corner, with fractional sharpness blending
// between adjacent rules.
func vertexChildMask(parent *level, v subd.Index, scheme sdc.Scheme, opts sdc.Options) sparseMask {
	mb := make(maskBuilder, 16)
	if scheme == sdc.SchemeBilinear {
		mb.add(v, 1)
		return mb.build()
	}

	edges := parent.vertexEdges(v)
	faces := parent.vertexFaces(v)

	// Boundary edges act as infinitely sharp creases for rule purposes.
	var sharpEdges []subd.Index
	var sharpSum float32
	for _, e := range edges {
		s := parent.edgeSharpness[e]
		if parent.isEdgeBoundary(e) {
			s = sdc.SharpnessInfinite
		}
		if sdc.IsSharp(s) {
			sharpEdges = append(sharpEdges, e)
			if s > 1 {
				s = 1
			}
			sharpSum += s
		}
	}

	vs := parent.vertSharpness[v]
	isCornerPinned := vs >= 1 || len(sharpEdges) >= 3
	if opts.VtxBoundaryInterpolation == sdc.VtxBoundaryEdgeAndCorner &&
		parent.isVertexBoundary(v) && len(faces) == 1 {
		isCornerPinned = true
	}
	if isCornerPinned {
		mb.add(v, 1)
		return mb.build()
	}

	if len(sharpEdges) == 2 {
		// Crease rule, blended toward the corner rule by fractional
		// vertex sharpness.
		frac := sharpSum / 2
		if frac > 1 {
			frac = 1
		}
		cornerW := vs
		if cornerW > 1 {
			cornerW = 1
		}
		creaseW := (1 - cornerW) * frac
		smoothW := (1 - cornerW) * (1 - frac)

		mb.add(v, cornerW+0.75*creaseW)
		for _, e := range sharpEdges {
			mb.add(parent.otherEdgeVertex(e, v), 0.125*creaseW)
		}
		if smoothW > 0 {
			addSmoothVertexMask(mb, parent, v, smoothW)
		}
		return mb.build()
	}

	cornerW := vs
	if cornerW > 1 {
		cornerW = 1
	}
	if cornerW > 0 {
		mb.add(v, cornerW)
	}
	addSmoothVertexMask(mb, parent, v, 1-cornerW)
	return mb.build()
}

// addSmoothVertexMask accumulates the smooth Catmull-Clark vertex rule
// scaled by w: (n-2)/n on the vertex, 1/n^2 on each edge-adjacent vertex
// and 1/n^2 on each incident face point (expanded to the face corners).
func addSmoothVertexMask(mb maskBuilder, parent *level, v subd.Index, w float32) {
	if w <= 0 {
		return
	}
	edges := parent.vertexEdges(v)
	n := float32(len(edges))
	mb.add(v, w*(n-2)/n)
	inv2 := w / (n * n)
	for _, e := range edges {
		mb.add(parent.otherEdgeVertex(e, v), inv2)
	}
	for _, f := range parent.vertexFaces(v) {
		fv := parent.faceVertices(f)
		fw := inv2 / float32(len(fv))
		for _, fvv := range fv {
			mb.add(fvv, fw)
		}
	}
}
