package osd

import (
	"fmt"

	"github.com/gogpu/subd"
	"github.com/gogpu/subd/far"
)

// PatchCoord names one parametric location for patch evaluation.
type PatchCoord struct {
	Handle far.PatchHandle
	S, T   float32
}

// EvalStencils applies all stencils of a table to the source buffer,
// writing one result vertex per stencil into the destination buffer.
func EvalStencils(src CPUBuffer, srcDesc BufferDescriptor,
	dst CPUBuffer, dstDesc BufferDescriptor, st *far.StencilTable) error {
	return evalStencilRange(src, srcDesc, dst, dstDesc, st, 0, st.NumStencils())
}

// evalStencilRange applies the stencils [start,end). Shared with the
// parallel evaluator, which partitions the range across workers.
func evalStencilRange(src CPUBuffer, srcDesc BufferDescriptor,
	dst CPUBuffer, dstDesc BufferDescriptor, st *far.StencilTable, start, end int) error {

	if err := checkStencilLayout(srcDesc, dstDesc); err != nil {
		return err
	}
	srcData := src.BindCPUBuffer()
	dstData := dst.BindCPUBuffer()

	sizes := st.Sizes()
	offsets := st.Offsets()
	indices := st.ControlIndices()
	weights := st.Weights()

	width := srcDesc.Length
	for i := start; i < end; i++ {
		lo, hi := dstDesc.vertexAt(i)
		if hi > len(dstData) {
			return fmt.Errorf("osd: stencil %d writes past %d floats: %w",
				i, len(dstData), subd.ErrOutOfRange)
		}
		out := dstData[lo:hi]
		for k := range out {
			out[k] = 0
		}
		off, n := int(offsets[i]), int(sizes[i])
		for j := 0; j < n; j++ {
			cv, cvEnd := srcDesc.vertexAt(int(indices[off+j]))
			if cvEnd > len(srcData) {
				return fmt.Errorf("osd: control vertex %d reads past %d floats: %w",
					indices[off+j], len(srcData), subd.ErrOutOfRange)
			}
			w := weights[off+j]
			for k := 0; k < width; k++ {
				out[k] += w * srcData[cv+k]
			}
		}
	}
	return nil
}

// EvalStencilsWithDerivatives applies a limit stencil table, writing
// limit positions to dst and first derivatives to dstDu and dstDv.
func EvalStencilsWithDerivatives(src CPUBuffer, srcDesc BufferDescriptor,
	dst CPUBuffer, dstDesc BufferDescriptor,
	dstDu CPUBuffer, duDesc BufferDescriptor,
	dstDv CPUBuffer, dvDesc BufferDescriptor, st *far.LimitStencilTable) error {

	if err := EvalStencils(src, srcDesc, dst, dstDesc, &st.StencilTable); err != nil {
		return err
	}
	if err := evalWeighted(src, srcDesc, dstDu, duDesc, st, st.DuWeights()); err != nil {
		return err
	}
	return evalWeighted(src, srcDesc, dstDv, dvDesc, st, st.DvWeights())
}

func evalWeighted(src CPUBuffer, srcDesc BufferDescriptor,
	dst CPUBuffer, dstDesc BufferDescriptor, st *far.LimitStencilTable, weights []float32) error {

	if weights == nil {
		return fmt.Errorf("osd: limit stencil table has no derivative weights: %w", subd.ErrOutOfRange)
	}
	if err := checkStencilLayout(srcDesc, dstDesc); err != nil {
		return err
	}
	srcData := src.BindCPUBuffer()
	dstData := dst.BindCPUBuffer()

	sizes := st.Sizes()
	offsets := st.Offsets()
	indices := st.ControlIndices()

	width := srcDesc.Length
	for i := 0; i < st.NumStencils(); i++ {
		lo, hi := dstDesc.vertexAt(i)
		if hi > len(dstData) {
			return fmt.Errorf("osd: stencil %d writes past %d floats: %w",
				i, len(dstData), subd.ErrOutOfRange)
		}
		out := dstData[lo:hi]
		for k := range out {
			out[k] = 0
		}
		off, n := int(offsets[i]), int(sizes[i])
		for j := 0; j < n; j++ {
			cv, _ := srcDesc.vertexAt(int(indices[off+j]))
			w := weights[off+j]
			for k := 0; k < width; k++ {
				out[k] += w * srcData[cv+k]
			}
		}
	}
	return nil
}

// EvalPatches evaluates the limit surface at the given patch
// coordinates over the source buffer, one destination vertex per
// coordinate. The source buffer covers the concatenated all-levels
// vertex space indexed by the patch table and must carry three
// elements per vertex.
func EvalPatches(src CPUBuffer, srcDesc BufferDescriptor,
	dst CPUBuffer, dstDesc BufferDescriptor,
	coords []PatchCoord, pt *far.PatchTable) error {

	if srcDesc.Length != 3 || dstDesc.Length != 3 {
		return fmt.Errorf("osd: patch evaluation needs 3-element buffers: %w", subd.ErrOutOfRange)
	}
	srcData := src.BindCPUBuffer()
	dstData := dst.BindCPUBuffer()

	// Patch evaluation indexes vertices directly; repack when the
	// source layout is not tightly packed xyz.
	points := srcData
	if srcDesc.Offset != 0 || srcDesc.Stride != 3 {
		numVerts := 0
		if srcDesc.Stride > 0 {
			numVerts = (len(srcData) - srcDesc.Offset) / srcDesc.Stride
		}
		points = make([]float32, numVerts*3)
		for v := 0; v < numVerts; v++ {
			lo, hi := srcDesc.vertexAt(v)
			copy(points[v*3:v*3+3], srcData[lo:hi])
		}
	}

	for i, c := range coords {
		sample, err := pt.EvaluatePoint(c.Handle.PatchIndex, c.S, c.T, points)
		if err != nil {
			return err
		}
		lo, hi := dstDesc.vertexAt(i)
		if hi > len(dstData) {
			return fmt.Errorf("osd: coord %d writes past %d floats: %w",
				i, len(dstData), subd.ErrOutOfRange)
		}
		copy(dstData[lo:hi], sample.P[:])
	}
	return nil
}

func checkStencilLayout(srcDesc, dstDesc BufferDescriptor) error {
	if !srcDesc.IsValid() || !dstDesc.IsValid() {
		return fmt.Errorf("osd: invalid buffer descriptor: %w", subd.ErrOutOfRange)
	}
	if srcDesc.Length != dstDesc.Length {
		return fmt.Errorf("osd: source width %d != destination width %d: %w",
			srcDesc.Length, dstDesc.Length, subd.ErrOutOfRange)
	}
	return nil
}
