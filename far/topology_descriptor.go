package far

import (
	"fmt"

	"github.com/gogpu/subd"
)

// TopologyDescriptor holds raw mesh topology as flat index buffers: the
// number of vertices, the arity of each face and the vertex indices of
// every face corner. Optional creases, corners, holes and face-varying
// channels refine the description.
//
// The descriptor borrows the caller's slices; it does not copy them until
// NewTopologyRefiner consumes it.
type TopologyDescriptor struct {
	NumVertices int

	// VertsPerFace holds the corner count of each face. Its length is the
	// number of faces.
	VertsPerFace []int

	// VertIndicesPerFace is the flattened list of vertex indices for all
	// face corners. Its length must equal the sum of VertsPerFace.
	VertIndicesPerFace []subd.Index

	// CreaseVertexPairs holds 2*n vertex indices describing n creased
	// edges; CreaseWeights holds the matching sharpness values.
	CreaseVertexPairs []subd.Index
	CreaseWeights     []float32

	// CornerVertexIndices and CornerWeights tag vertices with sharpness.
	CornerVertexIndices []subd.Index
	CornerWeights       []float32

	// Holes lists faces excluded from the surface.
	Holes []subd.Index

	// Left-handed winding is accepted and recorded; refinement does not
	// reverse it.
	IsLeftHanded bool

	fvarChannels []fvarChannelDesc
}

type fvarChannelDesc struct {
	numValues    int
	valueIndices []subd.Index
}

// NewTopologyDescriptor validates the mandatory topology arrays and
// returns a descriptor. The optional fields can be filled in afterward.
func NewTopologyDescriptor(numVertices int, vertsPerFace []int, vertIndices []subd.Index) (*TopologyDescriptor, error) {
	if numVertices <= 0 {
		return nil, fmt.Errorf("far: descriptor has %d vertices: %w", numVertices, subd.ErrInvalidTopology)
	}
	total := 0
	for i, n := range vertsPerFace {
		if n < 3 {
			return nil, fmt.Errorf("far: face %d has arity %d: %w", i, n, subd.ErrInvalidTopology)
		}
		total += n
	}
	if total != len(vertIndices) {
		return nil, fmt.Errorf("far: %d face-vertex indices, face arities sum to %d: %w",
			len(vertIndices), total, subd.ErrInvalidTopology)
	}
	for i, v := range vertIndices {
		if v < 0 || int(v) >= numVertices {
			return nil, fmt.Errorf("far: face-vertex index [%d]=%d out of range [0,%d): %w",
				i, v, numVertices, subd.ErrInvalidTopology)
		}
	}
	return &TopologyDescriptor{
		NumVertices:        numVertices,
		VertsPerFace:       vertsPerFace,
		VertIndicesPerFace: vertIndices,
	}, nil
}

// SetCreases adds creased edges as vertex-index pairs with matching
// sharpness values.
func (d *TopologyDescriptor) SetCreases(vertexPairs []subd.Index, weights []float32) error {
	if len(vertexPairs)%2 != 0 {
		return fmt.Errorf("far: %d crease vertices is not an even count: %w",
			len(vertexPairs), subd.ErrInvalidTopology)
	}
	if len(vertexPairs)/2 != len(weights) {
		return fmt.Errorf("far: %d crease pairs but %d weights: %w",
			len(vertexPairs)/2, len(weights), subd.ErrInvalidTopology)
	}
	for _, v := range vertexPairs {
		if v < 0 || int(v) >= d.NumVertices {
			return fmt.Errorf("far: crease vertex %d out of range: %w", v, subd.ErrInvalidTopology)
		}
	}
	d.CreaseVertexPairs = vertexPairs
	d.CreaseWeights = weights
	return nil
}

// SetCorners tags vertices with sharpness values.
func (d *TopologyDescriptor) SetCorners(vertices []subd.Index, weights []float32) error {
	if len(vertices) != len(weights) {
		return fmt.Errorf("far: %d corner vertices but %d weights: %w",
			len(vertices), len(weights), subd.ErrInvalidTopology)
	}
	for _, v := range vertices {
		if v < 0 || int(v) >= d.NumVertices {
			return fmt.Errorf("far: corner vertex %d out of range: %w", v, subd.ErrInvalidTopology)
		}
	}
	d.CornerVertexIndices = vertices
	d.CornerWeights = weights
	return nil
}

// SetHoles tags faces as holes.
func (d *TopologyDescriptor) SetHoles(faces []subd.Index) error {
	for _, f := range faces {
		if f < 0 || int(f) >= len(d.VertsPerFace) {
			return fmt.Errorf("far: hole face %d out of range: %w", f, subd.ErrInvalidTopology)
		}
	}
	d.Holes = faces
	return nil
}

// AddFVarChannel registers a face-varying channel. valueIndices assigns a
// value to every face corner, in the same flattened order as
// VertIndicesPerFace. It returns the channel index.
func (d *TopologyDescriptor) AddFVarChannel(numValues int, valueIndices []subd.Index) (int, error) {
	if len(valueIndices) != len(d.VertIndicesPerFace) {
		return -1, fmt.Errorf("far: fvar channel has %d corner values, topology has %d corners: %w",
			len(valueIndices), len(d.VertIndicesPerFace), subd.ErrInvalidTopology)
	}
	for i, v := range valueIndices {
		if v < 0 || int(v) >= numValues {
			return -1, fmt.Errorf("far: fvar value index [%d]=%d out of range [0,%d): %w",
				i, v, numValues, subd.ErrInvalidTopology)
		}
	}
	d.fvarChannels = append(d.fvarChannels, fvarChannelDesc{
		numValues:    numValues,
		valueIndices: valueIndices,
	})
	return len(d.fvarChannels) - 1, nil
}
