package far

import (
	"errors"
	"testing"

	"github.com/gogpu/subd"
)

// refinePositions carries positions level by level and returns the
// values of every level, base included.
func refinePositions(t testing.TB, r *TopologyRefiner, base []float32, width int) [][]float32 {
	t.Helper()
	p := NewPrimvarRefiner(r)
	levels := [][]float32{base}
	src := base
	for lvl := 1; lvl < r.NumLevels(); lvl++ {
		l, _ := r.Level(lvl)
		dst := make([]float32, l.VertexCount()*width)
		if err := p.Interpolate(lvl, width, src, dst); err != nil {
			t.Fatalf("Interpolate(%d) error: %v", lvl, err)
		}
		levels = append(levels, dst)
		src = dst
	}
	return levels
}

// =============================================================================
// Stencil Factory Tests
// =============================================================================

func TestCreateStencilTable_MatchesInterpolation(t *testing.T) {
	r := refineUniform(t, gridDescriptor(t, 2), 2)
	base := gridPositions(2)
	levels := refinePositions(t, r, base, 3)

	st, err := CreateStencilTable(r, StencilTableOptions{
		InterpolationMode: StencilInterpolateVertex,
	})
	if err != nil {
		t.Fatalf("CreateStencilTable() error: %v", err)
	}

	top := levels[len(levels)-1]
	if st.NumControlVertices() != len(base)/3 {
		t.Errorf("NumControlVertices() = %d, want %d", st.NumControlVertices(), len(base)/3)
	}
	if st.NumStencils() != len(top)/3 {
		t.Fatalf("NumStencils() = %d, want %d", st.NumStencils(), len(top)/3)
	}

	// Applying the factored stencils to the base values must reproduce
	// level-by-level interpolation exactly.
	dst := make([]float32, len(top))
	if err := st.UpdateValues(3, base, dst, 0, -1); err != nil {
		t.Fatalf("UpdateValues() error: %v", err)
	}
	for i := range top {
		if !float32Near(dst[i], top[i]) {
			t.Errorf("dst[%d] = %v, want %v", i, dst[i], top[i])
		}
	}
}

func TestCreateStencilTable_IntermediateLevels(t *testing.T) {
	r := refineUniform(t, cubeDescriptor(t), 2)

	lvl1, _ := r.Level(1)
	lvl2, _ := r.Level(2)

	all, err := CreateStencilTable(r, StencilTableOptions{
		InterpolationMode:          StencilInterpolateVertex,
		GenerateIntermediateLevels: true,
	})
	if err != nil {
		t.Fatalf("CreateStencilTable(intermediate) error: %v", err)
	}
	if got, want := all.NumStencils(), lvl1.VertexCount()+lvl2.VertexCount(); got != want {
		t.Errorf("NumStencils() = %d, want %d", got, want)
	}

	last, err := CreateStencilTable(r, StencilTableOptions{
		InterpolationMode: StencilInterpolateVertex,
	})
	if err != nil {
		t.Fatalf("CreateStencilTable(last) error: %v", err)
	}
	if got, want := last.NumStencils(), lvl2.VertexCount(); got != want {
		t.Errorf("NumStencils() = %d, want %d", got, want)
	}
}

func TestCreateStencilTable_ControlVertices(t *testing.T) {
	r := refineUniform(t, cubeDescriptor(t), 1)

	st, err := CreateStencilTable(r, StencilTableOptions{
		InterpolationMode:       StencilInterpolateVertex,
		GenerateControlVertices: true,
	})
	if err != nil {
		t.Fatalf("CreateStencilTable() error: %v", err)
	}

	lvl1, _ := r.Level(1)
	if got, want := st.NumStencils(), 8+lvl1.VertexCount(); got != want {
		t.Fatalf("NumStencils() = %d, want %d", got, want)
	}

	// The first stencils are identities over the control vertices.
	for i := 0; i < 8; i++ {
		s, ok := st.Stencil(i)
		if !ok {
			t.Fatalf("Stencil(%d) not found", i)
		}
		if s.Size() != 1 || s.Indices[0] != subd.Index(i) || s.Weights[0] != 1 {
			t.Errorf("Stencil(%d) = (%v, %v), want identity", i, s.Indices, s.Weights)
		}
	}
}

func TestCreateStencilTable_Varying(t *testing.T) {
	r := refineUniform(t, gridDescriptor(t, 1), 1)
	base := gridPositions(1)

	st, err := CreateStencilTable(r, StencilTableOptions{
		InterpolationMode: StencilInterpolateVarying,
	})
	if err != nil {
		t.Fatalf("CreateStencilTable(varying) error: %v", err)
	}

	p := NewPrimvarRefiner(r)
	lvl, _ := r.Level(1)
	want := make([]float32, lvl.VertexCount()*3)
	if err := p.InterpolateVarying(1, 3, base, want); err != nil {
		t.Fatalf("InterpolateVarying() error: %v", err)
	}

	got := make([]float32, len(want))
	if err := st.UpdateValues(3, base, got, 0, -1); err != nil {
		t.Fatalf("UpdateValues() error: %v", err)
	}
	for i := range want {
		if !float32Near(got[i], want[i]) {
			t.Errorf("got[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestCreateStencilTable_NotRefined(t *testing.T) {
	desc := cubeDescriptor(t)
	r, err := NewTopologyRefiner(desc, TopologyRefinerOptions{})
	if err != nil {
		t.Fatalf("NewTopologyRefiner() error: %v", err)
	}
	_, err = CreateStencilTable(r, StencilTableOptions{})
	if !errors.Is(err, subd.ErrNotRefined) {
		t.Errorf("CreateStencilTable(unrefined) error = %v, want ErrNotRefined", err)
	}
}

// =============================================================================
// Stencil Table Tests
// =============================================================================

func TestStencilTable_WeightsSumToOne(t *testing.T) {
	r := refineUniform(t, cubeDescriptor(t), 2)
	st, err := CreateStencilTable(r, StencilTableOptions{
		InterpolationMode: StencilInterpolateVertex,
	})
	if err != nil {
		t.Fatalf("CreateStencilTable() error: %v", err)
	}

	for i := 0; i < st.NumStencils(); i++ {
		s, _ := st.Stencil(i)
		var sum float32
		for _, w := range s.Weights {
			sum += w
		}
		if !float32Near(sum, 1) {
			t.Errorf("Stencil(%d) weights sum to %v, want 1", i, sum)
		}
	}
}

func TestStencilTable_UpdateValues_Range(t *testing.T) {
	r := refineUniform(t, cubeDescriptor(t), 1)
	st, err := CreateStencilTable(r, StencilTableOptions{
		InterpolationMode: StencilInterpolateVertex,
	})
	if err != nil {
		t.Fatalf("CreateStencilTable() error: %v", err)
	}

	src := make([]float32, st.NumControlVertices())
	for i := range src {
		src[i] = float32(i)
	}
	n := st.NumStencils()

	full := make([]float32, n)
	if err := st.UpdateValues(1, src, full, 0, -1); err != nil {
		t.Fatalf("UpdateValues(full) error: %v", err)
	}

	// Out-of-range bounds clamp to the full stencil range.
	clamped := make([]float32, n)
	if err := st.UpdateValues(1, src, clamped, -5, n+100); err != nil {
		t.Fatalf("UpdateValues(clamped) error: %v", err)
	}
	for i := range full {
		if clamped[i] != full[i] {
			t.Errorf("clamped[%d] = %v, want %v", i, clamped[i], full[i])
		}
	}

	// A sub-range touches only its own destination slots.
	partial := make([]float32, n)
	if err := st.UpdateValues(1, src, partial, 2, 5); err != nil {
		t.Fatalf("UpdateValues(partial) error: %v", err)
	}
	for i := range partial {
		if i >= 2 && i < 5 {
			if partial[i] != full[i] {
				t.Errorf("partial[%d] = %v, want %v", i, partial[i], full[i])
			}
		} else if partial[i] != 0 {
			t.Errorf("partial[%d] = %v, want 0 (untouched)", i, partial[i])
		}
	}
}

func TestStencilTable_UpdateValues_Errors(t *testing.T) {
	r := refineUniform(t, cubeDescriptor(t), 1)
	st, err := CreateStencilTable(r, StencilTableOptions{
		InterpolationMode: StencilInterpolateVertex,
	})
	if err != nil {
		t.Fatalf("CreateStencilTable() error: %v", err)
	}
	n := st.NumStencils()

	if err := st.UpdateValues(0, make([]float32, 8), make([]float32, n), 0, -1); !errors.Is(err, subd.ErrInvalidElementCount) {
		t.Errorf("UpdateValues(width 0) error = %v, want ErrInvalidElementCount", err)
	}
	if err := st.UpdateValues(5, make([]float32, 40), make([]float32, 5*n), 0, -1); !errors.Is(err, subd.ErrInvalidElementCount) {
		t.Errorf("UpdateValues(width 5) error = %v, want ErrInvalidElementCount", err)
	}
	if err := st.UpdateValues(3, make([]float32, 3), make([]float32, 3*n), 0, -1); err == nil {
		t.Error("UpdateValues(short src) succeeded, want error")
	}
	if err := st.UpdateValues(3, make([]float32, 24), make([]float32, 3), 0, -1); err == nil {
		t.Error("UpdateValues(short dst) succeeded, want error")
	}
}

func TestStencilTable_Stencil_OutOfRange(t *testing.T) {
	r := refineUniform(t, cubeDescriptor(t), 1)
	st, err := CreateStencilTable(r, StencilTableOptions{
		InterpolationMode: StencilInterpolateVertex,
	})
	if err != nil {
		t.Fatalf("CreateStencilTable() error: %v", err)
	}
	if _, ok := st.Stencil(-1); ok {
		t.Error("Stencil(-1) ok = true, want false")
	}
	if _, ok := st.Stencil(st.NumStencils()); ok {
		t.Error("Stencil(NumStencils) ok = true, want false")
	}
}
