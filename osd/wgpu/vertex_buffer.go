//go:build !nogpu

package wgpu

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/subd"
)

// VertexBuffer holds interleaved primvar data in a GPU storage buffer.
type VertexBuffer struct {
	dev *Device
	buf hal.Buffer

	numElements int
	numVertices int
}

// NewVertexBuffer allocates a storage buffer for numVertices vertices
// of numElements floats each.
func NewVertexBuffer(dev *Device, numElements, numVertices int) (*VertexBuffer, error) {
	if numElements <= 0 || numVertices < 0 {
		return nil, fmt.Errorf("wgpu: vertex buffer %d x %d: %w",
			numVertices, numElements, subd.ErrOutOfRange)
	}
	size := uint64(numElements) * uint64(numVertices) * 4
	if size < 4 {
		size = 4
	}
	buf, err := dev.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "subd_vertex",
		Size:  size,
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst | gputypes.BufferUsageCopySrc,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create vertex buffer: %w", err)
	}
	return &VertexBuffer{
		dev:         dev,
		buf:         buf,
		numElements: numElements,
		numVertices: numVertices,
	}, nil
}

// NumElements returns the element count per vertex.
func (b *VertexBuffer) NumElements() int { return b.numElements }

// NumVertices returns the vertex count.
func (b *VertexBuffer) NumVertices() int { return b.numVertices }

// UpdateData uploads vertex data starting at startVertex.
func (b *VertexBuffer) UpdateData(src []float32, startVertex, numVertices int) error {
	if startVertex < 0 || startVertex+numVertices > b.numVertices {
		return fmt.Errorf("wgpu: update vertices [%d,%d) of %d: %w",
			startVertex, startVertex+numVertices, b.numVertices, subd.ErrOutOfRange)
	}
	n := numVertices * b.numElements
	if len(src) < n {
		return fmt.Errorf("wgpu: update data holds %d floats, need %d: %w",
			len(src), n, subd.ErrOutOfRange)
	}
	offset := uint64(startVertex) * uint64(b.numElements) * 4
	b.dev.queue.WriteBuffer(b.buf, offset, floatsToBytes(src[:n]))
	return nil
}

// ReadData copies the buffer contents back to host memory. It issues a
// copy into a mappable staging buffer and blocks until the GPU
// completes.
func (b *VertexBuffer) ReadData() ([]float32, error) {
	size := uint64(b.numElements) * uint64(b.numVertices) * 4
	if size == 0 {
		return nil, nil
	}

	staging, err := b.dev.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "subd_vertex_staging",
		Size:  size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create staging buffer: %w", err)
	}
	defer b.dev.device.DestroyBuffer(staging)

	encoder, err := b.dev.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "subd_readback",
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("subd_readback"); err != nil {
		return nil, fmt.Errorf("wgpu: begin encoding: %w", err)
	}
	encoder.CopyBufferToBuffer(b.buf, staging, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: size},
	})
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("wgpu: end encoding: %w", err)
	}
	defer b.dev.device.FreeCommandBuffer(cmdBuf)

	fence, err := b.dev.device.CreateFence()
	if err != nil {
		return nil, fmt.Errorf("wgpu: create fence: %w", err)
	}
	defer b.dev.device.DestroyFence(fence)
	if err := b.dev.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return nil, fmt.Errorf("wgpu: submit: %w", err)
	}
	ok, err := b.dev.device.Wait(fence, 1, 5*time.Second)
	if err != nil || !ok {
		return nil, fmt.Errorf("wgpu: wait for GPU: ok=%v err=%w", ok, err)
	}

	raw := make([]byte, size)
	if err := b.dev.queue.ReadBuffer(staging, 0, raw); err != nil {
		return nil, fmt.Errorf("wgpu: readback: %w", err)
	}
	return bytesToFloats(raw), nil
}

// Destroy releases the GPU buffer.
func (b *VertexBuffer) Destroy() {
	if b.buf != nil {
		b.dev.device.DestroyBuffer(b.buf)
		b.buf = nil
	}
}

func floatsToBytes(src []float32) []byte {
	out := make([]byte, len(src)*4)
	for i, f := range src {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(f))
	}
	return out
}

func bytesToFloats(src []byte) []float32 {
	out := make([]float32, len(src)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(src[i*4:]))
	}
	return out
}
