//go:build !nogpu

package wgpu

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/gogpu/subd"
	"github.com/gogpu/subd/far"
	"github.com/gogpu/subd/osd"
	"github.com/gogpu/subd/sdc"
)

// requireDevice opens a GPU device or skips the test on hosts without
// a usable Vulkan adapter.
func requireDevice(t *testing.T) *Device {
	t.Helper()
	dev, err := NewDevice()
	if errors.Is(err, subd.ErrUnavailable) {
		t.Skipf("no GPU available: %v", err)
	}
	if err != nil {
		t.Fatalf("NewDevice() error: %v", err)
	}
	t.Cleanup(dev.Close)
	return dev
}

func cubeStencils(t *testing.T) *far.StencilTable {
	t.Helper()
	desc, err := far.NewTopologyDescriptor(8,
		[]int{4, 4, 4, 4, 4, 4},
		[]subd.Index{
			0, 1, 3, 2,
			2, 3, 5, 4,
			4, 5, 7, 6,
			6, 7, 1, 0,
			1, 7, 5, 3,
			6, 0, 2, 4,
		})
	if err != nil {
		t.Fatalf("NewTopologyDescriptor() error: %v", err)
	}
	r, err := far.NewTopologyRefiner(desc, far.TopologyRefinerOptions{Scheme: sdc.SchemeCatmullClark})
	if err != nil {
		t.Fatalf("NewTopologyRefiner() error: %v", err)
	}
	if err := r.RefineUniform(far.UniformRefinementOptions{RefinementLevel: 2}); err != nil {
		t.Fatalf("RefineUniform() error: %v", err)
	}
	st, err := far.CreateStencilTable(r, far.StencilTableOptions{
		InterpolationMode: far.StencilInterpolateVertex,
	})
	if err != nil {
		t.Fatalf("CreateStencilTable() error: %v", err)
	}
	return st
}

func cubePositions() []float32 {
	return []float32{
		-1, -1, -1,
		1, -1, -1,
		-1, 1, -1,
		1, 1, -1,
		1, 1, 1,
		1, -1, 1,
		-1, 1, 1,
		-1, -1, 1,
	}
}

// =============================================================================
// GPU Round-Trip Tests
// =============================================================================

func TestVertexBuffer_RoundTrip(t *testing.T) {
	dev := requireDevice(t)

	buf, err := NewVertexBuffer(dev, 3, 4)
	if err != nil {
		t.Fatalf("NewVertexBuffer() error: %v", err)
	}
	defer buf.Destroy()

	if buf.NumElements() != 3 || buf.NumVertices() != 4 {
		t.Errorf("buffer shape = %d x %d, want 3 x 4", buf.NumElements(), buf.NumVertices())
	}

	src := []float32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	if err := buf.UpdateData(src, 0, 4); err != nil {
		t.Fatalf("UpdateData() error: %v", err)
	}

	got, err := buf.ReadData()
	if err != nil {
		t.Fatalf("ReadData() error: %v", err)
	}
	if len(got) != len(src) {
		t.Fatalf("ReadData() returned %d floats, want %d", len(got), len(src))
	}
	for i := range src {
		if got[i] != src[i] {
			t.Errorf("got[%d] = %v, want %v", i, got[i], src[i])
		}
	}
}

func TestEvaluator_EvalStencils_MatchesCPU(t *testing.T) {
	dev := requireDevice(t)
	st := cubeStencils(t)
	base := cubePositions()

	// CPU reference.
	want := make([]float32, st.NumStencils()*3)
	if err := st.UpdateValues(3, base, want, 0, -1); err != nil {
		t.Fatalf("UpdateValues() error: %v", err)
	}

	gpuST, err := NewStencilTable(dev, st)
	if err != nil {
		t.Fatalf("NewStencilTable() error: %v", err)
	}
	defer gpuST.Destroy()

	src, err := NewVertexBuffer(dev, 3, st.NumControlVertices())
	if err != nil {
		t.Fatalf("NewVertexBuffer(src) error: %v", err)
	}
	defer src.Destroy()
	if err := src.UpdateData(base, 0, st.NumControlVertices()); err != nil {
		t.Fatalf("UpdateData() error: %v", err)
	}

	dst, err := NewVertexBuffer(dev, 3, st.NumStencils())
	if err != nil {
		t.Fatalf("NewVertexBuffer(dst) error: %v", err)
	}
	defer dst.Destroy()

	eval, err := NewEvaluator(dev)
	if err != nil {
		t.Fatalf("NewEvaluator() error: %v", err)
	}
	defer eval.Close()

	desc := osd.BufferDescriptor{Offset: 0, Length: 3, Stride: 3}
	if err := eval.EvalStencils(src, desc, dst, desc, gpuST); err != nil {
		t.Fatalf("EvalStencils() error: %v", err)
	}

	got, err := dst.ReadData()
	if err != nil {
		t.Fatalf("ReadData() error: %v", err)
	}
	for i := range want {
		if math.Abs(float64(got[i]-want[i])) > 1e-4 {
			t.Errorf("got[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestEvaluator_EvalStencils_LayoutError(t *testing.T) {
	dev := requireDevice(t)
	st := cubeStencils(t)

	gpuST, err := NewStencilTable(dev, st)
	if err != nil {
		t.Fatalf("NewStencilTable() error: %v", err)
	}
	defer gpuST.Destroy()

	src, _ := NewVertexBuffer(dev, 3, st.NumControlVertices())
	defer src.Destroy()
	dst, _ := NewVertexBuffer(dev, 3, st.NumStencils())
	defer dst.Destroy()

	eval, err := NewEvaluator(dev)
	if err != nil {
		t.Fatalf("NewEvaluator() error: %v", err)
	}
	defer eval.Close()

	good := osd.BufferDescriptor{Offset: 0, Length: 3, Stride: 3}
	bad := osd.BufferDescriptor{Offset: 0, Length: 4, Stride: 4}
	if err := eval.EvalStencils(src, good, dst, bad, gpuST); !errors.Is(err, subd.ErrOutOfRange) {
		t.Errorf("EvalStencils(width mismatch) error = %v, want ErrOutOfRange", err)
	}
}

// =============================================================================
// Host-Side Helper Tests
// =============================================================================

func TestFloatsBytesRoundTrip(t *testing.T) {
	src := []float32{0, 1, -2.5, 3.25, float32(math.Pi)}
	got := bytesToFloats(floatsToBytes(src))
	if len(got) != len(src) {
		t.Fatalf("round trip returned %d floats, want %d", len(got), len(src))
	}
	for i := range src {
		if got[i] != src[i] {
			t.Errorf("got[%d] = %v, want %v", i, got[i], src[i])
		}
	}
}

func TestEvalParams_Layout(t *testing.T) {
	srcDesc := osd.BufferDescriptor{Offset: 2, Length: 3, Stride: 6}
	dstDesc := osd.BufferDescriptor{Offset: 0, Length: 3, Stride: 3}
	raw := evalParams(srcDesc, dstDesc, 100)

	if len(raw) != 32 {
		t.Fatalf("evalParams() holds %d bytes, want 32", len(raw))
	}
	le := binary.LittleEndian
	fields := []struct {
		name string
		off  int
		want uint32
	}{
		{"src_offset", 0, 2},
		{"src_stride", 4, 6},
		{"dst_offset", 8, 0},
		{"dst_stride", 12, 3},
		{"width", 16, 3},
		{"num_stencils", 20, 100},
	}
	for _, f := range fields {
		if got := le.Uint32(raw[f.off:]); got != f.want {
			t.Errorf("%s = %d, want %d", f.name, got, f.want)
		}
	}
}
