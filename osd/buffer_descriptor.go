package osd

// BufferDescriptor describes the layout of primvar data in a flat
// float32 buffer: the offset of the first element, the number of
// elements per vertex and the stride between consecutive vertices, all
// in floats.
type BufferDescriptor struct {
	Offset int
	Length int
	Stride int
}

// IsValid reports whether the descriptor describes a usable layout.
func (d BufferDescriptor) IsValid() bool {
	return d.Length > 0 && d.Stride >= d.Length && d.Offset >= 0
}

// vertexAt returns the element range of vertex i.
func (d BufferDescriptor) vertexAt(i int) (int, int) {
	start := d.Offset + i*d.Stride
	return start, start + d.Length
}
