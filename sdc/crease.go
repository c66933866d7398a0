package sdc

// Crease applies the sharpness decay rules of a CreasingMethod.
type Crease struct {
	method CreasingMethod
}

// NewCrease returns a Crease for the given method.
func NewCrease(method CreasingMethod) Crease {
	return Crease{method: method}
}

// IsSharp reports whether a sharpness value still affects subdivision.
func IsSharp(sharpness float32) bool { return sharpness > SharpnessSmooth }

// IsInfinitelySharp reports whether a sharpness value never decays.
func IsInfinitelySharp(sharpness float32) bool { return sharpness >= SharpnessInfinite }

// DecrementSharpness returns the child sharpness of an edge or vertex
// with the given parent sharpness. Infinitely sharp values are preserved.
func (c Crease) DecrementSharpness(sharpness float32) float32 {
	if IsInfinitelySharp(sharpness) {
		return sharpness
	}
	if sharpness <= 1 {
		return SharpnessSmooth
	}
	return sharpness - 1
}

// ChildEdgeSharpness returns the sharpness of a child edge. parent is the
// parent edge sharpness; adjacent holds the sharpness of the other sharp
// edges meeting the parent at the shared end vertex, used by the Chaikin
// method. Uniform creasing ignores adjacent.
func (c Crease) ChildEdgeSharpness(parent float32, adjacent []float32) float32 {
	if IsInfinitelySharp(parent) {
		return parent
	}
	if c.method == CreaseUniform || len(adjacent) == 0 {
		return c.DecrementSharpness(parent)
	}

	// Chaikin: 3/4 of the parent plus 1/4 of the average adjacent
	// sharpness, then decremented.
	var sum float32
	for _, s := range adjacent {
		sum += s
	}
	blended := 0.75*parent + 0.25*(sum/float32(len(adjacent)))
	return c.DecrementSharpness(blended)
}
