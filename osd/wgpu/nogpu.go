//go:build nogpu

package wgpu

import (
	"github.com/gogpu/subd"
	"github.com/gogpu/subd/far"
	"github.com/gogpu/subd/osd"
)

// Stub implementations used when the package is built with the nogpu
// tag. Every constructor reports subd.ErrUnavailable so callers fall
// back to the CPU evaluators.

type Device struct{}

func NewDevice() (*Device, error) { return nil, subd.ErrUnavailable }

func (d *Device) Close() {}

type VertexBuffer struct{}

func NewVertexBuffer(dev *Device, numElements, numVertices int) (*VertexBuffer, error) {
	return nil, subd.ErrUnavailable
}

func (b *VertexBuffer) NumElements() int { return 0 }
func (b *VertexBuffer) NumVertices() int { return 0 }

func (b *VertexBuffer) UpdateData(src []float32, startVertex, numVertices int) error {
	return subd.ErrUnavailable
}

func (b *VertexBuffer) ReadData() ([]float32, error) { return nil, subd.ErrUnavailable }

func (b *VertexBuffer) Destroy() {}

type StencilTable struct{}

func NewStencilTable(dev *Device, st *far.StencilTable) (*StencilTable, error) {
	return nil, subd.ErrUnavailable
}

func (t *StencilTable) NumStencils() int        { return 0 }
func (t *StencilTable) NumControlVertices() int { return 0 }
func (t *StencilTable) Destroy()                {}

type Evaluator struct{}

func NewEvaluator(dev *Device) (*Evaluator, error) { return nil, subd.ErrUnavailable }

func (e *Evaluator) Close() {}

func (e *Evaluator) EvalStencils(src *VertexBuffer, srcDesc osd.BufferDescriptor,
	dst *VertexBuffer, dstDesc osd.BufferDescriptor, st *StencilTable) error {
	return subd.ErrUnavailable
}
