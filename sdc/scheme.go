package sdc

// Scheme selects the subdivision rules applied during refinement.
type Scheme int

const (
	// SchemeBilinear splits faces without smoothing: child vertices are
	// simple averages and the limit surface is the control cage.
	SchemeBilinear Scheme = iota

	// SchemeCatmullClark is the Catmull-Clark scheme: quads after one
	// level of refinement, bi-cubic B-spline limit surface in regular
	// regions.
	SchemeCatmullClark

	// SchemeLoop is the Loop triangle scheme. Refinement for Loop is not
	// implemented; factories reject it with ErrUnsupportedScheme.
	SchemeLoop
)

// String returns the scheme name.
func (s Scheme) String() string {
	switch s {
	case SchemeBilinear:
		return "Bilinear"
	case SchemeCatmullClark:
		return "CatmullClark"
	case SchemeLoop:
		return "Loop"
	default:
		return "Unknown"
	}
}

// Split describes the face-splitting topology of a scheme.
type Split int

const (
	// SplitToQuads splits every n-gon into n quads (bilinear, Catmull-Clark).
	SplitToQuads Split = iota

	// SplitToTriangles splits every triangle into four (Loop).
	SplitToTriangles
)

// SplitType returns the face-splitting topology used by the scheme.
func (s Scheme) SplitType() Split {
	if s == SchemeLoop {
		return SplitToTriangles
	}
	return SplitToQuads
}
