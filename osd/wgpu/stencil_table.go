//go:build !nogpu

package wgpu

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/subd"
	"github.com/gogpu/subd/far"
)

// StencilTable is the GPU-resident form of a far.StencilTable: the
// sizes, offsets, indices and weights arrays uploaded into read-only
// storage buffers.
type StencilTable struct {
	dev *Device

	sizes   hal.Buffer
	offsets hal.Buffer
	indices hal.Buffer
	weights hal.Buffer

	numStencils        int
	numControlVertices int
}

// NewStencilTable uploads a stencil table to the device.
func NewStencilTable(dev *Device, st *far.StencilTable) (*StencilTable, error) {
	t := &StencilTable{
		dev:                dev,
		numStencils:        st.NumStencils(),
		numControlVertices: st.NumControlVertices(),
	}

	upload := func(target *hal.Buffer, label string, data []byte) error {
		size := uint64(len(data))
		if size < 4 {
			size = 4
		}
		buf, err := dev.device.CreateBuffer(&hal.BufferDescriptor{
			Label: label,
			Size:  size,
			Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("wgpu: create %s buffer: %w", label, err)
		}
		*target = buf
		if len(data) > 0 {
			dev.queue.WriteBuffer(buf, 0, data)
		}
		return nil
	}

	steps := []struct {
		target *hal.Buffer
		label  string
		data   []byte
	}{
		{&t.sizes, "subd_stencil_sizes", int32sToBytes(st.Sizes())},
		{&t.offsets, "subd_stencil_offsets", int32sToBytes(st.Offsets())},
		{&t.indices, "subd_stencil_indices", indicesToBytes(st.ControlIndices())},
		{&t.weights, "subd_stencil_weights", floatsToBytes(st.Weights())},
	}
	for _, s := range steps {
		if err := upload(s.target, s.label, s.data); err != nil {
			t.Destroy()
			return nil, err
		}
	}
	return t, nil
}

// NumStencils returns the stencil count.
func (t *StencilTable) NumStencils() int { return t.numStencils }

// NumControlVertices returns the control-vertex count the stencils
// reference.
func (t *StencilTable) NumControlVertices() int { return t.numControlVertices }

// Destroy releases all GPU buffers of the table.
func (t *StencilTable) Destroy() {
	destroy := func(b *hal.Buffer) {
		if *b != nil {
			t.dev.device.DestroyBuffer(*b)
			*b = nil
		}
	}
	destroy(&t.sizes)
	destroy(&t.offsets)
	destroy(&t.indices)
	destroy(&t.weights)
}

func int32sToBytes(src []int32) []byte {
	out := make([]byte, len(src)*4)
	for i, v := range src {
		binary.LittleEndian.PutUint32(out[i*4:], uint32(v))
	}
	return out
}

func indicesToBytes(src []subd.Index) []byte {
	out := make([]byte, len(src)*4)
	for i, v := range src {
		binary.LittleEndian.PutUint32(out[i*4:], uint32(v))
	}
	return out
}
