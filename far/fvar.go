package far

import "github.com/gogpu/subd"

// Face-varying refinement. Channels are refined with fully linear rules:
// corner values are copied, edge values average the two corner values of
// the shared edge, face values average the whole face. Values merge
// across faces only where the parent values match, so seams stay seams.

type fvarEdgeKey struct {
	edge   subd.Index
	lo, hi subd.Index
}

func refineFVarChannels(parent, child *level, ref *refinement) {
	if len(parent.fvar) == 0 {
		return
	}
	child.fvar = make([]fvarLevel, len(parent.fvar))
	ref.fvarMasks = make([][]sparseMask, len(parent.fvar))
	for c := range parent.fvar {
		refineFVarChannel(parent, child, ref, c)
	}
}

func refineFVarChannel(parent, child *level, ref *refinement, channel int) {
	src := parent.fvar[channel]

	cornerVals := make(map[subd.Index]subd.Index)
	edgeVals := make(map[fvarEdgeKey]subd.Index)
	faceVals := make(map[subd.Index]subd.Index)

	var masks []sparseMask
	newValue := func(mask sparseMask) subd.Index {
		masks = append(masks, mask)
		return subd.Index(len(masks) - 1)
	}

	childValues := make([]subd.Index, 0, len(child.faceVerts))

	for f := 0; f < parent.numFaces; f++ {
		begin := parent.faceVertOffsets[f]
		fv := src.faceValues[begin:parent.faceVertOffsets[f+1]]
		fe := parent.faceEdgeIndices(subd.Index(f))
		n := len(fv)

		faceValue := func() subd.Index {
			if idx, ok := faceVals[subd.Index(f)]; ok {
				return idx
			}
			mb := make(maskBuilder, n)
			w := 1 / float32(n)
			for _, val := range fv {
				mb.add(val, w)
			}
			idx := newValue(mb.build())
			faceVals[subd.Index(f)] = idx
			return idx
		}
		cornerValue := func(i int) subd.Index {
			val := fv[i]
			if idx, ok := cornerVals[val]; ok {
				return idx
			}
			idx := newValue(sparseMask{
				indices: []subd.Index{val},
				weights: []float32{1},
			})
			cornerVals[val] = idx
			return idx
		}
		edgeValue := func(i int) subd.Index {
			a, b := fv[i], fv[(i+1)%n]
			lo, hi := a, b
			if lo > hi {
				lo, hi = hi, lo
			}
			key := fvarEdgeKey{fe[i], lo, hi}
			if idx, ok := edgeVals[key]; ok {
				return idx
			}
			mb := make(maskBuilder, 2)
			mb.add(a, 0.5)
			mb.add(b, 0.5)
			idx := newValue(mb.build())
			edgeVals[key] = idx
			return idx
		}

		for i := 0; i < n; i++ {
			var quad [4]subd.Index
			vc := cornerValue(i)
			en := edgeValue(i)
			fc := faceValue()
			ep := edgeValue((i + n - 1) % n)
			if n == 4 {
				quad[i] = vc
				quad[(i+1)%4] = en
				quad[(i+2)%4] = fc
				quad[(i+3)%4] = ep
			} else {
				quad = [4]subd.Index{vc, en, fc, ep}
			}
			childValues = append(childValues, quad[:]...)
		}
	}

	child.fvar[channel] = fvarLevel{
		numValues:  len(masks),
		faceValues: childValues,
	}
	ref.fvarMasks[channel] = masks
}
