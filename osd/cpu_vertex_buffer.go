package osd

import (
	"fmt"

	"github.com/gogpu/subd"
)

// CPUBuffer is the binding contract of the CPU evaluators: any buffer
// that can expose its contents as a flat float32 slice.
type CPUBuffer interface {
	BindCPUBuffer() []float32
}

// CPUVertexBuffer holds interleaved primvar data in host memory.
type CPUVertexBuffer struct {
	numElements int
	numVertices int
	data        []float32
}

// NewCPUVertexBuffer allocates a buffer for numVertices vertices of
// numElements floats each.
func NewCPUVertexBuffer(numElements, numVertices int) (*CPUVertexBuffer, error) {
	if numElements <= 0 || numVertices < 0 {
		return nil, fmt.Errorf("osd: vertex buffer %d x %d: %w",
			numVertices, numElements, subd.ErrOutOfRange)
	}
	return &CPUVertexBuffer{
		numElements: numElements,
		numVertices: numVertices,
		data:        make([]float32, numElements*numVertices),
	}, nil
}

// NumElements returns the element count per vertex.
func (b *CPUVertexBuffer) NumElements() int { return b.numElements }

// NumVertices returns the vertex count.
func (b *CPUVertexBuffer) NumVertices() int { return b.numVertices }

// UpdateData copies vertex data into the buffer starting at
// startVertex. src must hold numVertices * NumElements floats.
func (b *CPUVertexBuffer) UpdateData(src []float32, startVertex, numVertices int) error {
	if startVertex < 0 || startVertex+numVertices > b.numVertices {
		return fmt.Errorf("osd: update vertices [%d,%d) of %d: %w",
			startVertex, startVertex+numVertices, b.numVertices, subd.ErrOutOfRange)
	}
	n := numVertices * b.numElements
	if len(src) < n {
		return fmt.Errorf("osd: update data holds %d floats, need %d: %w",
			len(src), n, subd.ErrOutOfRange)
	}
	copy(b.data[startVertex*b.numElements:], src[:n])
	return nil
}

// BindCPUBuffer exposes the buffer contents for evaluation.
func (b *CPUVertexBuffer) BindCPUBuffer() []float32 { return b.data }
