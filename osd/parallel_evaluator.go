package osd

import (
	"sync"

	"github.com/gogpu/subd/far"
	"github.com/gogpu/subd/internal/parallel"
)

// ParallelEvaluator applies stencil tables across a goroutine pool.
// Results are bitwise identical to the serial evaluator; only the
// stencil ranges are partitioned. The evaluator owns its pool and must
// be closed when no longer needed.
type ParallelEvaluator struct {
	pool *parallel.WorkerPool

	// grain is the smallest stencil range worth queuing.
	grain int
}

// ParallelOption configures NewParallelEvaluator.
type ParallelOption func(*ParallelEvaluator)

// WithWorkers sets the worker count; 0 or negative selects GOMAXPROCS.
func WithWorkers(n int) ParallelOption {
	return func(e *ParallelEvaluator) {
		e.pool.Close()
		e.pool = parallel.NewWorkerPool(n)
	}
}

// WithGrainSize sets the minimum stencils per work item.
func WithGrainSize(n int) ParallelOption {
	return func(e *ParallelEvaluator) {
		if n > 0 {
			e.grain = n
		}
	}
}

// NewParallelEvaluator starts a worker pool sized to GOMAXPROCS unless
// overridden.
func NewParallelEvaluator(opts ...ParallelOption) *ParallelEvaluator {
	e := &ParallelEvaluator{
		pool:  parallel.NewWorkerPool(0),
		grain: 256,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Close stops the worker pool.
func (e *ParallelEvaluator) Close() { e.pool.Close() }

// EvalStencils applies all stencils of a table to the source buffer,
// partitioning the stencil range across the pool. The destination
// ranges of the work items never overlap, so workers write without
// locking.
func (e *ParallelEvaluator) EvalStencils(src CPUBuffer, srcDesc BufferDescriptor,
	dst CPUBuffer, dstDesc BufferDescriptor, st *far.StencilTable) error {

	total := st.NumStencils()
	if total <= e.grain || !e.pool.IsRunning() {
		return EvalStencils(src, srcDesc, dst, dstDesc, st)
	}

	chunk := (total + e.pool.Workers() - 1) / e.pool.Workers()
	if chunk < e.grain {
		chunk = e.grain
	}

	var mu sync.Mutex
	var firstErr error
	var work []func()
	for start := 0; start < total; start += chunk {
		end := start + chunk
		if end > total {
			end = total
		}
		s, en := start, end
		work = append(work, func() {
			if err := evalStencilRange(src, srcDesc, dst, dstDesc, st, s, en); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		})
	}
	e.pool.ExecuteAll(work)
	return firstErr
}
