package far

import (
	"fmt"

	"github.com/gogpu/subd"
)

// EvaluateBasis computes the basis weights of a patch at a parametric
// location. The patch index is global over all arrays; (u,v) are in the
// patch's base (ptex) face domain and normalized internally. Any of the
// weight slices may be nil; non-nil slices must hold at least the
// patch's control-vertex count. Derivative weights are expressed in the
// ptex face domain.
func (t *PatchTable) EvaluateBasis(patch int, u, v float32,
	wP, wDu, wDv, wDuu, wDuv, wDvv []float32) error {

	array, local, err := t.locate(patch)
	if err != nil {
		return err
	}
	desc := t.arrays[array].desc
	param := t.arrays[array].params[local]
	u, v = param.Normalize(u, v)

	ncv := desc.NumControlVertices()
	for _, w := range [][]float32{wP, wDu, wDv, wDuu, wDuv, wDvv} {
		if w != nil && len(w) < ncv {
			return fmt.Errorf("far: basis weight slice holds %d, need %d: %w",
				len(w), ncv, subd.ErrOutOfRange)
		}
	}

	switch desc.Type {
	case PatchRegular:
		bSplinePatchWeights(u, v, wP, wDu, wDv, wDuu, wDuv, wDvv)
	case PatchQuads:
		bilinearPatchWeights(u, v, wP, wDu, wDv, wDuu, wDuv, wDvv)
	default:
		return fmt.Errorf("far: evaluate %s patch: %w", desc.Type, subd.ErrUnsupportedPatchType)
	}

	// Rescale derivatives from the patch-local domain to the ptex face
	// domain.
	scale := 1 / param.paramFraction()
	scaleWeights(wDu, scale)
	scaleWeights(wDv, scale)
	scaleWeights(wDuu, scale*scale)
	scaleWeights(wDuv, scale*scale)
	scaleWeights(wDvv, scale*scale)
	return nil
}

func scaleWeights(w []float32, s float32) {
	for i := range w {
		w[i] *= s
	}
}

// PointSample is one evaluated limit-surface point with its first and
// second parametric derivatives.
type PointSample struct {
	P   [3]float32
	Du  [3]float32
	Dv  [3]float32
	Duu [3]float32
	Duv [3]float32
	Dvv [3]float32
}

// EvaluatePoint evaluates the limit surface of a patch at (u,v) over
// interleaved xyz control points. The control points cover the
// concatenated all-levels vertex space the patch table indexes into.
func (t *PatchTable) EvaluatePoint(patch int, u, v float32, controlPoints []float32) (PointSample, error) {
	var sample PointSample

	array, local, err := t.locate(patch)
	if err != nil {
		return sample, err
	}
	ncv := t.arrays[array].desc.NumControlVertices()

	weights := make([]float32, 6*ncv)
	wP := weights[0*ncv : 1*ncv]
	wDu := weights[1*ncv : 2*ncv]
	wDv := weights[2*ncv : 3*ncv]
	wDuu := weights[3*ncv : 4*ncv]
	wDuv := weights[4*ncv : 5*ncv]
	wDvv := weights[5*ncv : 6*ncv]
	if err := t.EvaluateBasis(patch, u, v, wP, wDu, wDv, wDuu, wDuv, wDvv); err != nil {
		return sample, err
	}

	numPoints := len(controlPoints) / 3
	for i, cv := range t.patchVertices(array, local) {
		if int(cv) >= numPoints {
			return PointSample{}, fmt.Errorf("far: control vertex %d beyond %d points: %w",
				cv, numPoints, subd.ErrOutOfRange)
		}
		p := controlPoints[cv*3 : cv*3+3]
		for k := 0; k < 3; k++ {
			sample.P[k] += wP[i] * p[k]
			sample.Du[k] += wDu[i] * p[k]
			sample.Dv[k] += wDv[i] * p[k]
			sample.Duu[k] += wDuu[i] * p[k]
			sample.Duv[k] += wDuv[i] * p[k]
			sample.Dvv[k] += wDvv[i] * p[k]
		}
	}
	return sample, nil
}
