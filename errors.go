package subd

import "errors"

// Sentinel errors shared across sub-packages. Wrapped errors carry the
// package prefix and call context; match with errors.Is.
var (
	// ErrInvalidTopology reports a topology descriptor whose index data is
	// inconsistent (arity sums, out-of-range vertex indices, odd crease
	// pairs and similar).
	ErrInvalidTopology = errors.New("subd: invalid topology")

	// ErrNotRefined reports an operation that requires RefineUniform to
	// have been called first.
	ErrNotRefined = errors.New("subd: topology not refined")

	// ErrUnsupportedScheme reports a subdivision scheme the operation does
	// not implement.
	ErrUnsupportedScheme = errors.New("subd: unsupported subdivision scheme")

	// ErrUnsupportedPatchType reports a patch type the evaluator does not
	// implement.
	ErrUnsupportedPatchType = errors.New("subd: unsupported patch type")

	// ErrInvalidElementCount reports an element width outside the
	// supported 1..4 range on a primvar operation.
	ErrInvalidElementCount = errors.New("subd: element count must be 1..4")

	// ErrOutOfRange reports an index beyond the bounds of a table or
	// buffer.
	ErrOutOfRange = errors.New("subd: index out of range")

	// ErrUnavailable reports a compute backend that is compiled out or has
	// no usable device. Callers should treat this as a normal condition
	// and fall back to a CPU evaluator.
	ErrUnavailable = errors.New("subd: backend unavailable")
)
