package far

import "github.com/gogpu/subd"

// level stores the full connectivity of one refinement level. All
// relations are flattened index arrays with per-entity offsets, so views
// into them can be handed out without allocation.
type level struct {
	numVertices int
	numEdges    int
	numFaces    int

	faceVertOffsets []int32 // len numFaces+1
	faceVerts       []subd.Index
	faceEdges       []subd.Index // same layout as faceVerts

	edgeVerts []subd.Index // 2 per edge

	edgeFaceOffsets []int32
	edgeFaces       []subd.Index

	vertFaceOffsets []int32
	vertFaces       []subd.Index

	vertEdgeOffsets []int32
	vertEdges       []subd.Index

	edgeSharpness []float32
	vertSharpness []float32

	faceHole []bool

	faceTags []faceTag // parametric ancestry, used by the patch factory

	// Child relations, populated when the next level is built.
	faceChildVert []subd.Index
	edgeChildVert []subd.Index
	vertChildVert []subd.Index
	faceParent    []subd.Index // on child levels: parent face per face

	fvar []fvarLevel
}

// faceTag records where a face sits in the parametric domain of its base
// (ptex) face.
type faceTag struct {
	ptexFace    int32
	u, v        uint16 // cell coordinates at this depth
	depth       uint8
	nonQuadRoot bool // descended from a non-quad base face
}

// fvarLevel stores one face-varying channel at one level.
type fvarLevel struct {
	numValues  int
	faceValues []subd.Index // same layout as faceVerts
}

func (l *level) faceVertices(f subd.Index) []subd.Index {
	return l.faceVerts[l.faceVertOffsets[f]:l.faceVertOffsets[f+1]]
}

func (l *level) faceEdgeIndices(f subd.Index) []subd.Index {
	return l.faceEdges[l.faceVertOffsets[f]:l.faceVertOffsets[f+1]]
}

func (l *level) edgeVertices(e subd.Index) []subd.Index {
	return l.edgeVerts[2*e : 2*e+2]
}

func (l *level) edgeFaceIndices(e subd.Index) []subd.Index {
	return l.edgeFaces[l.edgeFaceOffsets[e]:l.edgeFaceOffsets[e+1]]
}

func (l *level) vertexFaces(v subd.Index) []subd.Index {
	return l.vertFaces[l.vertFaceOffsets[v]:l.vertFaceOffsets[v+1]]
}

func (l *level) vertexEdges(v subd.Index) []subd.Index {
	return l.vertEdges[l.vertEdgeOffsets[v]:l.vertEdgeOffsets[v+1]]
}

func (l *level) isEdgeBoundary(e subd.Index) bool {
	return l.edgeFaceOffsets[e+1]-l.edgeFaceOffsets[e] < 2
}

func (l *level) isVertexBoundary(v subd.Index) bool {
	for _, e := range l.vertexEdges(v) {
		if l.isEdgeBoundary(e) {
			return true
		}
	}
	return false
}

// findEdge returns the edge connecting v0 and v1, or InvalidIndex.
func (l *level) findEdge(v0, v1 subd.Index) subd.Index {
	for _, e := range l.vertexEdges(v0) {
		ev := l.edgeVertices(e)
		if ev[0] == v1 || ev[1] == v1 {
			return e
		}
	}
	return subd.InvalidIndex
}

func (l *level) faceFVarValues(f subd.Index, channel int) []subd.Index {
	fv := l.fvar[channel]
	return fv.faceValues[l.faceVertOffsets[f]:l.faceVertOffsets[f+1]]
}

// otherEdgeVertex returns the endpoint of e that is not v.
func (l *level) otherEdgeVertex(e, v subd.Index) subd.Index {
	ev := l.edgeVertices(e)
	if ev[0] == v {
		return ev[1]
	}
	return ev[0]
}

// TopologyLevel is a non-owning view into one refinement level of a
// TopologyRefiner. Its lifetime is bound to the refiner; it is never
// independently released.
type TopologyLevel struct {
	refiner *TopologyRefiner
	lvl     *level
	depth   int
}

// Depth returns the refinement depth of this level (0 for the base mesh).
func (tl TopologyLevel) Depth() int { return tl.depth }

// VertexCount returns the number of vertices in this level.
func (tl TopologyLevel) VertexCount() int { return tl.lvl.numVertices }

// EdgeCount returns the number of edges in this level.
func (tl TopologyLevel) EdgeCount() int { return tl.lvl.numEdges }

// FaceCount returns the number of faces in this level.
func (tl TopologyLevel) FaceCount() int { return tl.lvl.numFaces }

// FaceVertexCount returns the total number of face corners in this level.
func (tl TopologyLevel) FaceVertexCount() int { return len(tl.lvl.faceVerts) }

// FaceVertices returns the vertex indices of a face, or nil if the face
// index is out of range. The slice aliases refiner storage; treat it as
// read-only.
func (tl TopologyLevel) FaceVertices(face subd.Index) []subd.Index {
	if face < 0 || int(face) >= tl.lvl.numFaces {
		return nil
	}
	return tl.lvl.faceVertices(face)
}

// FaceEdges returns the edge indices around a face, or nil if out of range.
func (tl TopologyLevel) FaceEdges(face subd.Index) []subd.Index {
	if face < 0 || int(face) >= tl.lvl.numFaces {
		return nil
	}
	return tl.lvl.faceEdgeIndices(face)
}

// EdgeVertices returns the two endpoint vertices of an edge, or nil.
func (tl TopologyLevel) EdgeVertices(edge subd.Index) []subd.Index {
	if edge < 0 || int(edge) >= tl.lvl.numEdges {
		return nil
	}
	return tl.lvl.edgeVertices(edge)
}

// EdgeFaces returns the faces incident to an edge, or nil.
func (tl TopologyLevel) EdgeFaces(edge subd.Index) []subd.Index {
	if edge < 0 || int(edge) >= tl.lvl.numEdges {
		return nil
	}
	return tl.lvl.edgeFaceIndices(edge)
}

// VertexFaces returns the faces incident to a vertex, or nil.
func (tl TopologyLevel) VertexFaces(vertex subd.Index) []subd.Index {
	if vertex < 0 || int(vertex) >= tl.lvl.numVertices {
		return nil
	}
	return tl.lvl.vertexFaces(vertex)
}

// VertexEdges returns the edges incident to a vertex, or nil.
func (tl TopologyLevel) VertexEdges(vertex subd.Index) []subd.Index {
	if vertex < 0 || int(vertex) >= tl.lvl.numVertices {
		return nil
	}
	return tl.lvl.vertexEdges(vertex)
}

// FindEdge returns the edge connecting two vertices, or InvalidIndex.
func (tl TopologyLevel) FindEdge(v0, v1 subd.Index) subd.Index {
	if v0 < 0 || int(v0) >= tl.lvl.numVertices || v1 < 0 || int(v1) >= tl.lvl.numVertices {
		return subd.InvalidIndex
	}
	return tl.lvl.findEdge(v0, v1)
}

// IsEdgeBoundary reports whether an edge has fewer than two incident faces.
func (tl TopologyLevel) IsEdgeBoundary(edge subd.Index) bool {
	if edge < 0 || int(edge) >= tl.lvl.numEdges {
		return false
	}
	return tl.lvl.isEdgeBoundary(edge)
}

// IsVertexBoundary reports whether a vertex lies on a boundary edge.
func (tl TopologyLevel) IsVertexBoundary(vertex subd.Index) bool {
	if vertex < 0 || int(vertex) >= tl.lvl.numVertices {
		return false
	}
	return tl.lvl.isVertexBoundary(vertex)
}

// IsEdgeNonManifold reports whether more than two faces share an edge.
func (tl TopologyLevel) IsEdgeNonManifold(edge subd.Index) bool {
	if edge < 0 || int(edge) >= tl.lvl.numEdges {
		return false
	}
	return tl.lvl.edgeFaceOffsets[edge+1]-tl.lvl.edgeFaceOffsets[edge] > 2
}

// IsFaceHole reports whether a face is tagged as a hole.
func (tl TopologyLevel) IsFaceHole(face subd.Index) bool {
	if face < 0 || int(face) >= tl.lvl.numFaces || tl.lvl.faceHole == nil {
		return false
	}
	return tl.lvl.faceHole[face]
}

// EdgeSharpness returns the crease sharpness of an edge.
func (tl TopologyLevel) EdgeSharpness(edge subd.Index) float32 {
	if edge < 0 || int(edge) >= tl.lvl.numEdges {
		return 0
	}
	return tl.lvl.edgeSharpness[edge]
}

// VertexSharpness returns the corner sharpness of a vertex.
func (tl TopologyLevel) VertexSharpness(vertex subd.Index) float32 {
	if vertex < 0 || int(vertex) >= tl.lvl.numVertices {
		return 0
	}
	return tl.lvl.vertSharpness[vertex]
}

// FaceChildVertex returns the vertex this face spawns in the next level,
// or InvalidIndex if this is the finest level.
func (tl TopologyLevel) FaceChildVertex(face subd.Index) subd.Index {
	if tl.lvl.faceChildVert == nil || face < 0 || int(face) >= tl.lvl.numFaces {
		return subd.InvalidIndex
	}
	return tl.lvl.faceChildVert[face]
}

// EdgeChildVertex returns the vertex this edge spawns in the next level,
// or InvalidIndex if this is the finest level.
func (tl TopologyLevel) EdgeChildVertex(edge subd.Index) subd.Index {
	if tl.lvl.edgeChildVert == nil || edge < 0 || int(edge) >= tl.lvl.numEdges {
		return subd.InvalidIndex
	}
	return tl.lvl.edgeChildVert[edge]
}

// VertexChildVertex returns the vertex this vertex maps to in the next
// level, or InvalidIndex if this is the finest level.
func (tl TopologyLevel) VertexChildVertex(vertex subd.Index) subd.Index {
	if tl.lvl.vertChildVert == nil || vertex < 0 || int(vertex) >= tl.lvl.numVertices {
		return subd.InvalidIndex
	}
	return tl.lvl.vertChildVert[vertex]
}

// FaceParentFace returns the face of the previous level this face was
// split from, or InvalidIndex on the base level.
func (tl TopologyLevel) FaceParentFace(face subd.Index) subd.Index {
	if tl.lvl.faceParent == nil || face < 0 || int(face) >= tl.lvl.numFaces {
		return subd.InvalidIndex
	}
	return tl.lvl.faceParent[face]
}

// FVarChannelCount returns the number of face-varying channels.
func (tl TopologyLevel) FVarChannelCount() int { return len(tl.lvl.fvar) }

// FVarValueCount returns the number of distinct face-varying values in a
// channel, or 0 if the channel does not exist.
func (tl TopologyLevel) FVarValueCount(channel int) int {
	if channel < 0 || channel >= len(tl.lvl.fvar) {
		return 0
	}
	return tl.lvl.fvar[channel].numValues
}

// FaceFVarValues returns the face-varying value indices on a face's
// corners for a channel, or nil.
func (tl TopologyLevel) FaceFVarValues(face subd.Index, channel int) []subd.Index {
	if channel < 0 || channel >= len(tl.lvl.fvar) || face < 0 || int(face) >= tl.lvl.numFaces {
		return nil
	}
	fv := tl.lvl.fvar[channel]
	return fv.faceValues[tl.lvl.faceVertOffsets[face]:tl.lvl.faceVertOffsets[face+1]]
}
