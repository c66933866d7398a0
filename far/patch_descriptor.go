package far

// PatchType identifies the basis of a patch array.
type PatchType uint8

const (
	PatchNone PatchType = iota
	PatchPoints
	PatchLines
	PatchQuads
	PatchTriangles
	PatchLoop
	PatchRegular
	PatchGregory
	PatchGregoryBoundary
	PatchGregoryBasis
	PatchGregoryTriangle
)

// String implements fmt.Stringer.
func (t PatchType) String() string {
	switch t {
	case PatchNone:
		return "None"
	case PatchPoints:
		return "Points"
	case PatchLines:
		return "Lines"
	case PatchQuads:
		return "Quads"
	case PatchTriangles:
		return "Triangles"
	case PatchLoop:
		return "Loop"
	case PatchRegular:
		return "Regular"
	case PatchGregory:
		return "Gregory"
	case PatchGregoryBoundary:
		return "GregoryBoundary"
	case PatchGregoryBasis:
		return "GregoryBasis"
	case PatchGregoryTriangle:
		return "GregoryTriangle"
	}
	return "Unknown"
}

// PatchDescriptor describes the shared shape of all patches in one
// patch array.
type PatchDescriptor struct {
	Type PatchType
}

// NumControlVertices returns the control vertices per patch for the
// descriptor's type, or 0 for types without a fixed count.
func (d PatchDescriptor) NumControlVertices() int {
	switch d.Type {
	case PatchPoints:
		return 1
	case PatchLines:
		return 2
	case PatchQuads:
		return 4
	case PatchTriangles, PatchLoop:
		return 3
	case PatchRegular:
		return 16
	case PatchGregory, PatchGregoryBoundary:
		return 4
	case PatchGregoryBasis:
		return 20
	case PatchGregoryTriangle:
		return 18
	}
	return 0
}
