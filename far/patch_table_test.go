package far

import (
	"errors"
	"math"
	"testing"

	"github.com/gogpu/subd"
)

// patchTestMesh refines a 4x4 flat grid once and returns the refiner,
// the patch table and the concatenated all-levels position buffer the
// patch control vertices index into.
func patchTestMesh(t testing.TB) (*TopologyRefiner, *PatchTable, []float32) {
	t.Helper()
	r := refineUniform(t, gridDescriptor(t, 4), 1)
	levels := refinePositions(t, r, gridPositions(4), 3)

	var points []float32
	for _, lvl := range levels {
		points = append(points, lvl...)
	}

	pt, err := CreatePatchTable(r, nil)
	if err != nil {
		t.Fatalf("CreatePatchTable() error: %v", err)
	}
	return r, pt, points
}

// =============================================================================
// Patch Table Factory Tests
// =============================================================================

func TestCreatePatchTable_NotRefined(t *testing.T) {
	desc := gridDescriptor(t, 2)
	r, err := NewTopologyRefiner(desc, TopologyRefinerOptions{})
	if err != nil {
		t.Fatalf("NewTopologyRefiner() error: %v", err)
	}
	if _, err := CreatePatchTable(r, nil); !errors.Is(err, subd.ErrNotRefined) {
		t.Errorf("CreatePatchTable(unrefined) error = %v, want ErrNotRefined", err)
	}
	if _, err := CreatePatchTable(nil, nil); !errors.Is(err, subd.ErrNotRefined) {
		t.Errorf("CreatePatchTable(nil) error = %v, want ErrNotRefined", err)
	}
}

func TestCreatePatchTable_GridCounts(t *testing.T) {
	_, pt, _ := patchTestMesh(t)

	if got := pt.NumPatchesTotal(); got != 64 {
		t.Errorf("NumPatchesTotal() = %d, want 64", got)
	}

	// An 8x8 refined grid has a 4x4 block of faces whose one-ring
	// stays clear of the boundary; those become b-spline patches, the
	// rest bilinear quads.
	var regular, quads int
	for a := 0; a < pt.NumPatchArrays(); a++ {
		desc, ok := pt.PatchArrayDescriptor(a)
		if !ok {
			t.Fatalf("PatchArrayDescriptor(%d) not found", a)
		}
		n := pt.PatchArrayNumPatches(a)
		switch desc.Type {
		case PatchRegular:
			regular += n
			if got := len(pt.PatchArrayVertices(a)); got != n*16 {
				t.Errorf("regular array holds %d vertices, want %d", got, n*16)
			}
		case PatchQuads:
			quads += n
			if got := len(pt.PatchArrayVertices(a)); got != n*4 {
				t.Errorf("quads array holds %d vertices, want %d", got, n*4)
			}
		default:
			t.Errorf("unexpected patch array type %s", desc.Type)
		}
	}
	if regular != 16 {
		t.Errorf("regular patches = %d, want 16", regular)
	}
	if quads != 48 {
		t.Errorf("quad patches = %d, want 48", quads)
	}

	// Bilinear end caps introduce no local points.
	if got := pt.NumLocalPoints(); got != 0 {
		t.Errorf("NumLocalPoints() = %d, want 0", got)
	}
	if pt.LocalPointStencilTable() != nil {
		t.Error("LocalPointStencilTable() != nil, want nil")
	}
}

func TestCreatePatchTable_Params(t *testing.T) {
	_, pt, _ := patchTestMesh(t)

	numBase := 16
	seen := make(map[[3]int]bool)
	for a := 0; a < pt.NumPatchArrays(); a++ {
		desc, _ := pt.PatchArrayDescriptor(a)
		for i := 0; i < pt.PatchArrayNumPatches(a); i++ {
			p, ok := pt.PatchParam(a, i)
			if !ok {
				t.Fatalf("PatchParam(%d, %d) not found", a, i)
			}
			if p.Depth() != 1 {
				t.Errorf("patch (%d, %d) depth = %d, want 1", a, i, p.Depth())
			}
			if int(p.FaceID()) >= numBase {
				t.Errorf("patch (%d, %d) face id = %d, want < %d", a, i, p.FaceID(), numBase)
			}
			if p.U() > 1 || p.V() > 1 {
				t.Errorf("patch (%d, %d) quadrant = (%d, %d), want within depth-1 grid", a, i, p.U(), p.V())
			}
			if p.IsRegular() != (desc.Type == PatchRegular) {
				t.Errorf("patch (%d, %d) IsRegular() = %v in %s array", a, i, p.IsRegular(), desc.Type)
			}
			key := [3]int{int(p.FaceID()), int(p.U()), int(p.V())}
			if seen[key] {
				t.Errorf("duplicate patch for face %d quadrant (%d, %d)", key[0], key[1], key[2])
			}
			seen[key] = true
		}
	}
	if len(seen) != 64 {
		t.Errorf("patches cover %d subfaces, want 64", len(seen))
	}
}

func TestCreatePatchTable_SkipsHoles(t *testing.T) {
	desc := gridDescriptor(t, 2)
	if err := desc.SetHoles([]subd.Index{0}); err != nil {
		t.Fatalf("SetHoles() error: %v", err)
	}
	r := refineUniform(t, desc, 1)

	pt, err := CreatePatchTable(r, nil)
	if err != nil {
		t.Fatalf("CreatePatchTable() error: %v", err)
	}
	// 4 faces refine to 16 children, minus the 4 children of the hole.
	if got := pt.NumPatchesTotal(); got != 12 {
		t.Errorf("NumPatchesTotal() = %d, want 12", got)
	}
}

// =============================================================================
// Patch Evaluation Tests
// =============================================================================

func TestPatchTable_EvaluateBasis_PartitionOfUnity(t *testing.T) {
	_, pt, _ := patchTestMesh(t)

	for patch := 0; patch < pt.NumPatchesTotal(); patch++ {
		wP := make([]float32, 16)
		wDu := make([]float32, 16)
		wDv := make([]float32, 16)
		if err := pt.EvaluateBasis(patch, 0.4, 0.6, wP, wDu, wDv, nil, nil, nil); err != nil {
			t.Fatalf("EvaluateBasis(%d) error: %v", patch, err)
		}
		if got := sum32(wP); !float32Near(got, 1) {
			t.Errorf("patch %d weights sum to %v, want 1", patch, got)
		}
		if got := sum32(wDu); math.Abs(float64(got)) > 1e-4 {
			t.Errorf("patch %d du weights sum to %v, want 0", patch, got)
		}
		if got := sum32(wDv); math.Abs(float64(got)) > 1e-4 {
			t.Errorf("patch %d dv weights sum to %v, want 0", patch, got)
		}
	}
}

func TestPatchTable_EvaluateBasis_Errors(t *testing.T) {
	_, pt, _ := patchTestMesh(t)

	if err := pt.EvaluateBasis(-1, 0.5, 0.5, make([]float32, 16), nil, nil, nil, nil, nil); !errors.Is(err, subd.ErrOutOfRange) {
		t.Errorf("EvaluateBasis(-1) error = %v, want ErrOutOfRange", err)
	}
	n := pt.NumPatchesTotal()
	if err := pt.EvaluateBasis(n, 0.5, 0.5, make([]float32, 16), nil, nil, nil, nil, nil); !errors.Is(err, subd.ErrOutOfRange) {
		t.Errorf("EvaluateBasis(%d) error = %v, want ErrOutOfRange", n, err)
	}
	if err := pt.EvaluateBasis(0, 0.5, 0.5, make([]float32, 2), nil, nil, nil, nil, nil); !errors.Is(err, subd.ErrOutOfRange) {
		t.Errorf("EvaluateBasis(short weights) error = %v, want ErrOutOfRange", err)
	}
}

func TestPatchTable_EvaluatePoint_FlatGridLimit(t *testing.T) {
	_, pt, points := patchTestMesh(t)
	pmap := NewPatchMap(pt)

	// The center face of the 4x4 base grid spans [1,2]x[1,2]. Its
	// interior b-spline patches reproduce the flat limit surface
	// exactly, so the evaluated point is the identity map of the face
	// domain and the first derivatives are the unit tangents.
	const faceID = 5 // face (1,1) of the row-major 4x4 grid
	samples := [][2]float32{{0.1, 0.2}, {0.5, 0.5}, {0.75, 0.3}, {0.9, 0.9}}

	for _, s := range samples {
		handle, _, _, ok := pmap.FindPatch(faceID, s[0], s[1])
		if !ok {
			t.Fatalf("FindPatch(%d, %v, %v) not found", faceID, s[0], s[1])
		}

		sample, err := pt.EvaluatePoint(handle.PatchIndex, s[0], s[1], points)
		if err != nil {
			t.Fatalf("EvaluatePoint() error: %v", err)
		}

		wantX := 1 + s[0]
		wantY := 1 + s[1]
		if math.Abs(float64(sample.P[0]-wantX)) > 1e-4 ||
			math.Abs(float64(sample.P[1]-wantY)) > 1e-4 ||
			math.Abs(float64(sample.P[2])) > 1e-4 {
			t.Errorf("P at (%v, %v) = %v, want (%v, %v, 0)", s[0], s[1], sample.P, wantX, wantY)
		}
		if math.Abs(float64(sample.Du[0]-1)) > 1e-3 || math.Abs(float64(sample.Du[1])) > 1e-3 {
			t.Errorf("Du at (%v, %v) = %v, want (1, 0, 0)", s[0], s[1], sample.Du)
		}
		if math.Abs(float64(sample.Dv[0])) > 1e-3 || math.Abs(float64(sample.Dv[1]-1)) > 1e-3 {
			t.Errorf("Dv at (%v, %v) = %v, want (0, 1, 0)", s[0], s[1], sample.Dv)
		}
	}
}

// =============================================================================
// Patch Map Tests
// =============================================================================

func TestPatchMap_FindPatch(t *testing.T) {
	_, pt, _ := patchTestMesh(t)
	pmap := NewPatchMap(pt)

	// Every subface location maps to the patch whose param covers it,
	// with coordinates renormalized into that patch's unit domain.
	for face := 0; face < 16; face++ {
		for _, s := range [][2]float32{{0.25, 0.25}, {0.75, 0.25}, {0.25, 0.75}, {0.75, 0.75}} {
			handle, nu, nv, ok := pmap.FindPatch(face, s[0], s[1])
			if !ok {
				t.Fatalf("FindPatch(%d, %v, %v) not found", face, s[0], s[1])
			}
			p, ok := pt.PatchParam(handle.ArrayIndex, handle.LocalIndex)
			if !ok {
				t.Fatalf("PatchParam(%d, %d) not found", handle.ArrayIndex, handle.LocalIndex)
			}
			if int(p.FaceID()) != face {
				t.Errorf("FindPatch(%d, %v, %v) landed on face %d", face, s[0], s[1], p.FaceID())
			}

			// Depth-1 quadrants renormalize a cell center to (0.5, 0.5).
			if !float32Near(nu, 0.5) || !float32Near(nv, 0.5) {
				t.Errorf("FindPatch(%d, %v, %v) normalized = (%v, %v), want (0.5, 0.5)",
					face, s[0], s[1], nu, nv)
			}

			// Renormalization inverts the patch's own parametrization.
			u, v := p.Unnormalize(nu, nv)
			if !float32Near(u, s[0]) || !float32Near(v, s[1]) {
				t.Errorf("Unnormalize round trip = (%v, %v), want (%v, %v)", u, v, s[0], s[1])
			}
		}
	}
}

func TestPatchMap_FindPatch_UnknownFace(t *testing.T) {
	_, pt, _ := patchTestMesh(t)
	pmap := NewPatchMap(pt)

	if _, _, _, ok := pmap.FindPatch(-1, 0.5, 0.5); ok {
		t.Error("FindPatch(-1) ok = true, want false")
	}
	if _, _, _, ok := pmap.FindPatch(999, 0.5, 0.5); ok {
		t.Error("FindPatch(999) ok = true, want false")
	}
}

func TestPatchMap_FindPatch_HoleGap(t *testing.T) {
	desc := gridDescriptor(t, 2)
	if err := desc.SetHoles([]subd.Index{0}); err != nil {
		t.Fatalf("SetHoles() error: %v", err)
	}
	r := refineUniform(t, desc, 1)
	pt, err := CreatePatchTable(r, nil)
	if err != nil {
		t.Fatalf("CreatePatchTable() error: %v", err)
	}
	pmap := NewPatchMap(pt)

	if _, _, _, ok := pmap.FindPatch(0, 0.5, 0.5); ok {
		t.Error("FindPatch(hole face) ok = true, want false")
	}
	if _, _, _, ok := pmap.FindPatch(1, 0.5, 0.5); !ok {
		t.Error("FindPatch(solid face) ok = false, want true")
	}
}
