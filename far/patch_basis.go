package far

// Cubic B-spline basis functions and derivatives on [0,1].
func bSplineWeights(t float32) (w, d, dd [4]float32) {
	t2 := t * t
	t3 := t2 * t

	w[0] = (1 - 3*t + 3*t2 - t3) / 6
	w[1] = (4 - 6*t2 + 3*t3) / 6
	w[2] = (1 + 3*t + 3*t2 - 3*t3) / 6
	w[3] = t3 / 6

	d[0] = (-3 + 6*t - 3*t2) / 6
	d[1] = (-12*t + 9*t2) / 6
	d[2] = (3 + 6*t - 9*t2) / 6
	d[3] = 3 * t2 / 6

	dd[0] = 1 - t
	dd[1] = -2 + 3*t
	dd[2] = 1 - 3*t
	dd[3] = t
	return w, d, dd
}

// bSplinePatchWeights fills the 16 tensor-product weights of a regular
// patch at (u,v), rows in v-major order. Derivative weights are in the
// patch-local domain; the caller rescales them to the ptex face domain.
func bSplinePatchWeights(u, v float32, wP, wDu, wDv, wDuu, wDuv, wDvv []float32) {
	uw, ud, udd := bSplineWeights(u)
	vw, vd, vdd := bSplineWeights(v)

	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			k := 4*row + col
			if wP != nil {
				wP[k] = uw[col] * vw[row]
			}
			if wDu != nil {
				wDu[k] = ud[col] * vw[row]
			}
			if wDv != nil {
				wDv[k] = uw[col] * vd[row]
			}
			if wDuu != nil {
				wDuu[k] = udd[col] * vw[row]
			}
			if wDuv != nil {
				wDuv[k] = ud[col] * vd[row]
			}
			if wDvv != nil {
				wDvv[k] = uw[col] * vdd[row]
			}
		}
	}
}

// bilinearPatchWeights fills the 4 weights of a quad patch at (u,v).
// Corner order follows the face winding: (0,0), (1,0), (1,1), (0,1).
func bilinearPatchWeights(u, v float32, wP, wDu, wDv, wDuu, wDuv, wDvv []float32) {
	if wP != nil {
		wP[0] = (1 - u) * (1 - v)
		wP[1] = u * (1 - v)
		wP[2] = u * v
		wP[3] = (1 - u) * v
	}
	if wDu != nil {
		wDu[0] = -(1 - v)
		wDu[1] = 1 - v
		wDu[2] = v
		wDu[3] = -v
	}
	if wDv != nil {
		wDv[0] = -(1 - u)
		wDv[1] = -u
		wDv[2] = u
		wDv[3] = 1 - u
	}
	if wDuu != nil {
		for i := range wDuu[:4] {
			wDuu[i] = 0
		}
	}
	if wDvv != nil {
		for i := range wDvv[:4] {
			wDvv[i] = 0
		}
	}
	if wDuv != nil {
		wDuv[0] = 1
		wDuv[1] = -1
		wDuv[2] = 1
		wDuv[3] = -1
	}
}
