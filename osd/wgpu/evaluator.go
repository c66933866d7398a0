//go:build !nogpu

package wgpu

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/subd"
	"github.com/gogpu/subd/internal/shader"
	"github.com/gogpu/subd/osd"
)

const evalFenceTimeout = 5 * time.Second

// Evaluator dispatches stencil evaluation as a GPU compute pass. It
// holds a compiled pipeline and is safe to reuse across dispatches;
// concurrent dispatches must be serialized by the caller, matching the
// queue's threading rules.
type Evaluator struct {
	dev *Device

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.ComputePipeline
}

// NewEvaluator compiles the stencil evaluation pipeline on the device.
func NewEvaluator(dev *Device) (*Evaluator, error) {
	e := &Evaluator{dev: dev}

	// The Vulkan backend consumes SPIR-V; translate the WGSL source
	// first.
	spirv, err := shader.CompileWGSL(stencilEvalShaderSource)
	if err != nil {
		return nil, fmt.Errorf("wgpu: compile stencil shader: %w", err)
	}
	module, err := dev.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "subd_stencil_eval",
		Source: hal.ShaderSource{SPIRV: spirv},
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create shader module: %w", err)
	}
	e.shader = module

	storage := func(binding uint32, readOnly bool) gputypes.BindGroupLayoutEntry {
		t := gputypes.BufferBindingTypeStorage
		if readOnly {
			t = gputypes.BufferBindingTypeReadOnlyStorage
		}
		return gputypes.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: gputypes.ShaderStageCompute,
			Buffer:     &gputypes.BufferBindingLayout{Type: t},
		}
	}
	bindLayout, err := dev.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "subd_stencil_eval_bgl",
		Entries: []gputypes.BindGroupLayoutEntry{
			{Binding: 0, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}},
			storage(1, true),
			storage(2, true),
			storage(3, true),
			storage(4, true),
			storage(5, true),
			storage(6, false),
		},
	})
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("wgpu: create bind group layout: %w", err)
	}
	e.bindLayout = bindLayout

	pipeLayout, err := dev.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "subd_stencil_eval_pl",
		BindGroupLayouts: []hal.BindGroupLayout{bindLayout},
	})
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("wgpu: create pipeline layout: %w", err)
	}
	e.pipeLayout = pipeLayout

	pipeline, err := dev.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:  "subd_stencil_eval",
		Layout: pipeLayout,
		Compute: hal.ComputeState{
			Module:     module,
			EntryPoint: "main",
		},
	})
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("wgpu: create compute pipeline: %w", err)
	}
	e.pipeline = pipeline

	subd.Logger().Debug("wgpu: stencil evaluation pipeline created")
	return e, nil
}

// Close releases the pipeline resources. The device is left open.
func (e *Evaluator) Close() {
	if e.pipeline != nil {
		e.dev.device.DestroyComputePipeline(e.pipeline)
		e.pipeline = nil
	}
	if e.pipeLayout != nil {
		e.dev.device.DestroyPipelineLayout(e.pipeLayout)
		e.pipeLayout = nil
	}
	if e.bindLayout != nil {
		e.dev.device.DestroyBindGroupLayout(e.bindLayout)
		e.bindLayout = nil
	}
	if e.shader != nil {
		e.dev.device.DestroyShaderModule(e.shader)
		e.shader = nil
	}
}

// evalParams mirrors the Params uniform block of the stencil shader.
func evalParams(srcDesc, dstDesc osd.BufferDescriptor, numStencils int) []byte {
	out := make([]byte, 32)
	le := binary.LittleEndian
	le.PutUint32(out[0:], uint32(srcDesc.Offset))
	le.PutUint32(out[4:], uint32(srcDesc.Stride))
	le.PutUint32(out[8:], uint32(dstDesc.Offset))
	le.PutUint32(out[12:], uint32(dstDesc.Stride))
	le.PutUint32(out[16:], uint32(srcDesc.Length))
	le.PutUint32(out[20:], uint32(numStencils))
	return out
}

// EvalStencils applies a GPU-resident stencil table to src, writing one
// vertex per stencil into dst. The call blocks until the GPU finishes.
func (e *Evaluator) EvalStencils(src *VertexBuffer, srcDesc osd.BufferDescriptor,
	dst *VertexBuffer, dstDesc osd.BufferDescriptor, st *StencilTable) error {

	if !srcDesc.IsValid() || !dstDesc.IsValid() || srcDesc.Length != dstDesc.Length {
		return fmt.Errorf("wgpu: invalid buffer layout: %w", subd.ErrOutOfRange)
	}
	if st.NumStencils() == 0 {
		return nil
	}

	params := evalParams(srcDesc, dstDesc, st.NumStencils())
	uniform, err := e.dev.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "subd_eval_params",
		Size:  uint64(len(params)),
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create uniform buffer: %w", err)
	}
	defer e.dev.device.DestroyBuffer(uniform)
	e.dev.queue.WriteBuffer(uniform, 0, params)

	entry := func(binding uint32, buf hal.Buffer) gputypes.BindGroupEntry {
		return gputypes.BindGroupEntry{
			Binding: binding,
			Resource: gputypes.BufferBinding{
				Buffer: buf.NativeHandle(),
				Offset: 0,
				Size:   0, // 0 = entire buffer
			},
		}
	}
	bg, err := e.dev.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "subd_stencil_eval_bg",
		Layout: e.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			entry(0, uniform),
			entry(1, st.sizes),
			entry(2, st.offsets),
			entry(3, st.indices),
			entry(4, st.weights),
			entry(5, src.buf),
			entry(6, dst.buf),
		},
	})
	if err != nil {
		return fmt.Errorf("wgpu: create bind group: %w", err)
	}
	defer e.dev.device.DestroyBindGroup(bg)

	encoder, err := e.dev.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "subd_stencil_eval",
	})
	if err != nil {
		return fmt.Errorf("wgpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("subd_stencil_eval"); err != nil {
		return fmt.Errorf("wgpu: begin encoding: %w", err)
	}

	const workgroupSize = 64
	wgCount := (uint32(st.NumStencils()) + workgroupSize - 1) / workgroupSize

	pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: "subd_stencil_eval"})
	pass.SetPipeline(e.pipeline)
	pass.SetBindGroup(0, bg, nil)
	pass.Dispatch(wgCount, 1, 1)
	pass.End()

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("wgpu: end encoding: %w", err)
	}
	defer e.dev.device.FreeCommandBuffer(cmdBuf)

	fence, err := e.dev.device.CreateFence()
	if err != nil {
		return fmt.Errorf("wgpu: create fence: %w", err)
	}
	defer e.dev.device.DestroyFence(fence)
	if err := e.dev.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("wgpu: submit: %w", err)
	}
	ok, err := e.dev.device.Wait(fence, 1, evalFenceTimeout)
	if err != nil {
		return fmt.Errorf("wgpu: wait for GPU: %w", err)
	}
	if !ok {
		return fmt.Errorf("wgpu: GPU timeout after %v", evalFenceTimeout)
	}

	subd.Logger().Debug("wgpu: stencils evaluated",
		"stencils", st.NumStencils(),
		"workgroups", wgCount)
	return nil
}
