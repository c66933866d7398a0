package sdc

// VtxBoundaryInterpolation controls how boundary edges and vertices are
// interpolated during refinement.
type VtxBoundaryInterpolation int

const (
	// VtxBoundaryNone leaves boundary rule selection to the scheme
	// defaults. Refinement treats it like VtxBoundaryEdgeOnly.
	VtxBoundaryNone VtxBoundaryInterpolation = iota

	// VtxBoundaryEdgeOnly sharpens boundary edges; boundary vertices are
	// smoothed along the boundary curve.
	VtxBoundaryEdgeOnly

	// VtxBoundaryEdgeAndCorner additionally pins boundary vertices with
	// exactly two incident boundary edges (corners) in place.
	VtxBoundaryEdgeAndCorner
)

// FVarLinearInterpolation controls how face-varying data is interpolated.
// Only the fully linear mode is implemented; the remaining values are
// accepted and recorded so option round-trips are loss-free.
type FVarLinearInterpolation int

const (
	FVarLinearNone FVarLinearInterpolation = iota
	FVarLinearCornersOnly
	FVarLinearCornersPlus1
	FVarLinearCornersPlus2
	FVarLinearBoundaries
	FVarLinearAll
)

// CreasingMethod selects how semi-sharp edge sharpness decays per level.
type CreasingMethod int

const (
	// CreaseUniform decrements sharpness by one per refinement level.
	CreaseUniform CreasingMethod = iota

	// CreaseChaikin averages neighboring edge sharpness before
	// decrementing, yielding smoother sharpness falloff along a crease.
	CreaseChaikin
)

// TriangleSubdivision selects the Catmull-Clark weighting of triangular
// faces. TriSubSmooth biases triangle subdivision toward a smoother result.
type TriangleSubdivision int

const (
	TriSubCatmark TriangleSubdivision = iota
	TriSubSmooth
)

// Sharpness bounds. A crease at or above SharpnessInfinite never decays
// and behaves as a tangent discontinuity.
const (
	SharpnessSmooth   float32 = 0
	SharpnessInfinite float32 = 10
)

// Options bundles the per-scheme subdivision options. The zero value is
// the library default: edge-only boundaries, uniform creasing, linear-all
// face-varying interpolation.
type Options struct {
	VtxBoundaryInterpolation VtxBoundaryInterpolation
	FVarLinearInterpolation  FVarLinearInterpolation
	CreasingMethod           CreasingMethod
	TriangleSubdivision      TriangleSubdivision
}
