package far

// PatchParam packs a patch's parametric ancestry into two 32-bit words
// so it travels by value and fits GPU-side patch buffers.
//
// field0 holds the base (ptex) face in bits [27:0] and the transition
// mask in bits [31:28]. field1 packs, from the high bits down: u cell
// [31:22], v cell [21:12], boundary mask [11:7], regular flag [5],
// non-quad-root flag [4] and the subdivision depth in [3:0].
type PatchParam struct {
	field0 uint32
	field1 uint32
}

// MakePatchParam packs the given patch attributes.
func MakePatchParam(faceID int32, u, v uint16, depth uint8, nonQuad bool,
	boundary, transition uint8, regular bool) PatchParam {

	var p PatchParam
	p.field0 = uint32(faceID)&0x0fffffff | uint32(transition&0xf)<<28

	nq := uint32(0)
	if nonQuad {
		nq = 1
	}
	reg := uint32(0)
	if regular {
		reg = 1
	}
	p.field1 = uint32(u&0x3ff)<<22 |
		uint32(v&0x3ff)<<12 |
		uint32(boundary&0x1f)<<7 |
		reg<<5 |
		nq<<4 |
		uint32(depth&0xf)
	return p
}

// FaceID returns the base (ptex) face index.
func (p PatchParam) FaceID() int32 { return int32(p.field0 & 0x0fffffff) }

// Transition returns the transition edge mask.
func (p PatchParam) Transition() uint8 { return uint8(p.field0 >> 28) }

// U returns the patch's u cell at its depth.
func (p PatchParam) U() uint16 { return uint16(p.field1 >> 22 & 0x3ff) }

// V returns the patch's v cell at its depth.
func (p PatchParam) V() uint16 { return uint16(p.field1 >> 12 & 0x3ff) }

// Boundary returns the boundary edge mask.
func (p PatchParam) Boundary() uint8 { return uint8(p.field1 >> 7 & 0x1f) }

// IsRegular reports whether the patch is a regular b-spline patch.
func (p PatchParam) IsRegular() bool { return p.field1>>5&1 != 0 }

// NonQuadRoot reports whether the patch descends from a non-quad base
// face.
func (p PatchParam) NonQuadRoot() bool { return p.field1>>4&1 != 0 }

// Depth returns the subdivision depth of the patch.
func (p PatchParam) Depth() uint8 { return uint8(p.field1 & 0xf) }

// paramFraction is the parametric width of the patch within its ptex
// face. A non-quad root face loses one level to the initial split.
func (p PatchParam) paramFraction() float32 {
	d := p.Depth()
	if p.NonQuadRoot() {
		d--
	}
	return 1 / float32(int32(1)<<d)
}

// Normalize maps (u,v) from the ptex face domain into the patch's local
// [0,1] domain.
func (p PatchParam) Normalize(u, v float32) (float32, float32) {
	frac := p.paramFraction()
	return (u - frac*float32(p.U())) / frac, (v - frac*float32(p.V())) / frac
}

// Unnormalize maps local patch (u,v) back into the ptex face domain.
func (p PatchParam) Unnormalize(u, v float32) (float32, float32) {
	frac := p.paramFraction()
	return u*frac + frac*float32(p.U()), v*frac + frac*float32(p.V())
}
