package subd

// Index addresses a topological entity (vertex, edge, face or stencil)
// within a single refinement level or table.
type Index = int32

// InvalidIndex marks an index slot with no valid target, such as the
// missing opposite face of a boundary edge.
const InvalidIndex Index = -1

// IndexIsValid reports whether i refers to an actual entity.
func IndexIsValid(i Index) bool { return i >= 0 }
