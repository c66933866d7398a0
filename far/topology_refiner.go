package far

import (
	"fmt"

	"github.com/gogpu/subd"
	"github.com/gogpu/subd/sdc"
)

// TopologyRefinerOptions configures refiner construction.
type TopologyRefinerOptions struct {
	// Scheme selects the subdivision rules. The zero value is bilinear;
	// most meshes want sdc.SchemeCatmullClark.
	Scheme sdc.Scheme

	// SchemeOptions carries boundary interpolation, creasing method and
	// the other per-scheme options.
	SchemeOptions sdc.Options
}

// UniformRefinementOptions configures RefineUniform.
type UniformRefinementOptions struct {
	// RefinementLevel is the number of subdivision iterations. Zero
	// leaves only the base level.
	RefinementLevel int

	// OrderVerticesFromFacesFirst is accepted for call compatibility;
	// the refiner always orders child vertices faces-first.
	OrderVerticesFromFacesFirst bool
}

// TopologyRefiner owns the multi-level mesh connectivity produced from a
// TopologyDescriptor. The topology is immutable once refined; primvar
// refiners, stencil factories and patch factories all consume it
// read-only.
type TopologyRefiner struct {
	scheme     sdc.Scheme
	schemeOpts sdc.Options

	levels      []*level
	refinements []*refinement

	numPtexFaces int
	isUniform    bool
	hasHoles     bool
}

// NewTopologyRefiner builds the base level from a descriptor. It returns
// an error if the descriptor is nil or topologically inconsistent.
func NewTopologyRefiner(desc *TopologyDescriptor, options TopologyRefinerOptions) (*TopologyRefiner, error) {
	if desc == nil {
		return nil, fmt.Errorf("far: nil topology descriptor: %w", subd.ErrInvalidTopology)
	}
	if options.Scheme == sdc.SchemeLoop {
		return nil, fmt.Errorf("far: Loop refinement: %w", subd.ErrUnsupportedScheme)
	}

	base := &level{
		numVertices: desc.NumVertices,
		numFaces:    len(desc.VertsPerFace),
	}
	base.faceVertOffsets = make([]int32, base.numFaces+1)
	for i, n := range desc.VertsPerFace {
		if n < 3 {
			return nil, fmt.Errorf("far: face %d has arity %d: %w", i, n, subd.ErrInvalidTopology)
		}
		base.faceVertOffsets[i+1] = base.faceVertOffsets[i] + int32(n)
	}
	if int(base.faceVertOffsets[base.numFaces]) != len(desc.VertIndicesPerFace) {
		return nil, fmt.Errorf("far: face arities sum to %d, got %d indices: %w",
			base.faceVertOffsets[base.numFaces], len(desc.VertIndicesPerFace), subd.ErrInvalidTopology)
	}
	base.faceVerts = make([]subd.Index, len(desc.VertIndicesPerFace))
	copy(base.faceVerts, desc.VertIndicesPerFace)
	for i, v := range base.faceVerts {
		if v < 0 || int(v) >= base.numVertices {
			return nil, fmt.Errorf("far: face-vertex index [%d]=%d out of range: %w",
				i, v, subd.ErrInvalidTopology)
		}
	}

	buildAdjacency(base)

	r := &TopologyRefiner{
		scheme:     options.Scheme,
		schemeOpts: options.SchemeOptions,
		levels:     []*level{base},
	}

	if err := r.applyCreases(desc); err != nil {
		return nil, err
	}
	r.applyHoles(desc)
	r.assignPtexIndices(base)
	r.applyFVarChannels(desc, base)
	return r, nil
}

func (r *TopologyRefiner) applyCreases(desc *TopologyDescriptor) error {
	base := r.levels[0]
	for i := 0; i+1 < len(desc.CreaseVertexPairs); i += 2 {
		v0, v1 := desc.CreaseVertexPairs[i], desc.CreaseVertexPairs[i+1]
		e := base.findEdge(v0, v1)
		if !subd.IndexIsValid(e) {
			return fmt.Errorf("far: crease (%d,%d) is not an edge: %w", v0, v1, subd.ErrInvalidTopology)
		}
		base.edgeSharpness[e] = desc.CreaseWeights[i/2]
	}
	for i, v := range desc.CornerVertexIndices {
		base.vertSharpness[v] = desc.CornerWeights[i]
	}
	return nil
}

func (r *TopologyRefiner) applyHoles(desc *TopologyDescriptor) {
	if len(desc.Holes) == 0 {
		return
	}
	base := r.levels[0]
	base.faceHole = make([]bool, base.numFaces)
	for _, f := range desc.Holes {
		base.faceHole[f] = true
	}
	r.hasHoles = true
}

// assignPtexIndices numbers the parametric (ptex) faces of the base
// level: quads take one index, an n-gon takes n.
func (r *TopologyRefiner) assignPtexIndices(base *level) {
	base.faceTags = make([]faceTag, base.numFaces)
	ptex := int32(0)
	for f := 0; f < base.numFaces; f++ {
		n := base.faceVertOffsets[f+1] - base.faceVertOffsets[f]
		base.faceTags[f] = faceTag{ptexFace: ptex, nonQuadRoot: n != 4}
		if n == 4 {
			ptex++
		} else {
			ptex += n
		}
	}
	r.numPtexFaces = int(ptex)
}

func (r *TopologyRefiner) applyFVarChannels(desc *TopologyDescriptor, base *level) {
	for _, ch := range desc.fvarChannels {
		fv := make([]subd.Index, len(ch.valueIndices))
		copy(fv, ch.valueIndices)
		base.fvar = append(base.fvar, fvarLevel{
			numValues:  ch.numValues,
			faceValues: fv,
		})
	}
}

// RefineUniform subdivides every face of every level up to the requested
// depth. Calling it again replaces nothing: refinement is one-shot.
func (r *TopologyRefiner) RefineUniform(options UniformRefinementOptions) error {
	if len(r.levels) > 1 {
		return fmt.Errorf("far: refiner already refined to level %d", r.MaxLevel())
	}
	for i := 0; i < options.RefinementLevel; i++ {
		parent := r.levels[len(r.levels)-1]
		child, ref := refineQuadLevel(parent, r.scheme, r.schemeOpts)
		r.levels = append(r.levels, child)
		r.refinements = append(r.refinements, ref)
	}
	r.isUniform = true
	return nil
}

// Scheme returns the subdivision scheme of the refiner.
func (r *TopologyRefiner) Scheme() sdc.Scheme { return r.scheme }

// SchemeOptions returns the per-scheme subdivision options.
func (r *TopologyRefiner) SchemeOptions() sdc.Options { return r.schemeOpts }

// IsUniform reports whether uniform refinement has been applied.
func (r *TopologyRefiner) IsUniform() bool { return r.isUniform }

// HasHoles reports whether any base face is tagged as a hole.
func (r *TopologyRefiner) HasHoles() bool { return r.hasHoles }

// NumLevels returns the number of refinement levels, including the base.
func (r *TopologyRefiner) NumLevels() int { return len(r.levels) }

// MaxLevel returns the highest refinement depth.
func (r *TopologyRefiner) MaxLevel() int { return len(r.levels) - 1 }

// MaxValence returns the maximum vertex valence over all levels.
func (r *TopologyRefiner) MaxValence() int {
	maxV := 0
	for _, l := range r.levels {
		for v := 0; v < l.numVertices; v++ {
			if n := int(l.vertEdgeOffsets[v+1] - l.vertEdgeOffsets[v]); n > maxV {
				maxV = n
			}
		}
	}
	return maxV
}

// NumVerticesTotal returns the total vertex count over all levels.
func (r *TopologyRefiner) NumVerticesTotal() int {
	total := 0
	for _, l := range r.levels {
		total += l.numVertices
	}
	return total
}

// NumEdgesTotal returns the total edge count over all levels.
func (r *TopologyRefiner) NumEdgesTotal() int {
	total := 0
	for _, l := range r.levels {
		total += l.numEdges
	}
	return total
}

// NumFacesTotal returns the total face count over all levels.
func (r *TopologyRefiner) NumFacesTotal() int {
	total := 0
	for _, l := range r.levels {
		total += l.numFaces
	}
	return total
}

// NumFaceVerticesTotal returns the total face-corner count over all levels.
func (r *TopologyRefiner) NumFaceVerticesTotal() int {
	total := 0
	for _, l := range r.levels {
		total += len(l.faceVerts)
	}
	return total
}

// NumPtexFaces returns the number of parametric base faces: quads count
// one, an n-gon counts n.
func (r *TopologyRefiner) NumPtexFaces() int { return r.numPtexFaces }

// Level returns a view of one refinement level, or false when the index
// is out of range.
func (r *TopologyRefiner) Level(i int) (TopologyLevel, bool) {
	if i < 0 || i >= len(r.levels) {
		return TopologyLevel{}, false
	}
	return TopologyLevel{refiner: r, lvl: r.levels[i], depth: i}, true
}

// levelVertexOffset returns the index of the first vertex of level i in
// the concatenated all-levels vertex space used by stencil and patch
// tables.
func (r *TopologyRefiner) levelVertexOffset(i int) int {
	off := 0
	for l := 0; l < i && l < len(r.levels); l++ {
		off += r.levels[l].numVertices
	}
	return off
}
