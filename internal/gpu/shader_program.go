package gpu

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/lineview/lineview"
)

// CompiledStage is one compiled shader stage awaiting LinkProgram.
// LinkProgram releases it; a stage that is never linked must be released
// with Release.
type CompiledStage struct {
	Stage      lineview.ShaderStage
	EntryPoint string

	device   hal.Device
	module   hal.ShaderModule
	uniforms []uniformDecl
}

// CompileStage compiles WGSL source for one stage into a shader module.
// Any rejection, from naga or from the device, is a *lineview.ShaderCompileError
// carrying the diagnostic text.
func CompileStage(device hal.Device, stage lineview.ShaderStage, source string) (*CompiledStage, error) {
	if source == "" {
		return nil, &lineview.ShaderCompileError{Stage: stage, Log: "empty source"}
	}
	entry := entryPoint(stage, source)
	if entry == "" {
		return nil, &lineview.ShaderCompileError{
			Stage: stage,
			Log:   fmt.Sprintf("no @%s entry point", stage),
		}
	}

	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, &lineview.ShaderCompileError{Stage: stage, Log: err.Error()}
	}
	if len(spirvBytes) == 0 || len(spirvBytes)%4 != 0 {
		return nil, &lineview.ShaderCompileError{
			Stage: stage,
			Log:   fmt.Sprintf("invalid SPIR-V output (%d bytes)", len(spirvBytes)),
		}
	}

	// SPIR-V is little-endian 32-bit words.
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(spirvBytes[i*4:])
	}

	module, err := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "line_" + stage.String(),
		Source: hal.ShaderSource{SPIRV: words},
	})
	if err != nil {
		return nil, &lineview.ShaderCompileError{Stage: stage, Log: err.Error()}
	}

	return &CompiledStage{
		Stage:      stage,
		EntryPoint: entry,
		device:     device,
		module:     module,
		uniforms:   reflectUniforms(source),
	}, nil
}

// Release destroys the stage's shader module. Safe to call more than once.
func (cs *CompiledStage) Release() {
	if cs == nil || cs.module == nil {
		return
	}
	cs.device.DestroyShaderModule(cs.module)
	cs.module = nil
}

// uniformSlot is a linked uniform with its backing buffer.
type uniformSlot struct {
	name       string
	typ        string
	binding    uint32
	size       uint64
	inVertex   bool
	inFragment bool
	buf        hal.Buffer
}

// ShaderProgram is a linked line pipeline plus its uniform storage.
// It is immutable once linked and owns no geometry.
type ShaderProgram struct {
	device hal.Device
	queue  hal.Queue

	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.RenderPipeline
	bindGroup  hal.BindGroup

	uniforms map[string]*uniformSlot
	order    []*uniformSlot
}

// LinkProgram combines a vertex and a fragment stage into a render
// pipeline that draws line lists of Float32x2 positions into format.
//
// Both stages are released whether linking succeeds or not. On failure a
// *lineview.ProgramLinkError is returned and every object created along the
// way is destroyed, so no partially linked program is ever observable.
func LinkProgram(device hal.Device, queue hal.Queue, vs, fs *CompiledStage, format gputypes.TextureFormat) (*ShaderProgram, error) {
	defer vs.Release()
	defer fs.Release()

	if vs == nil || vs.Stage != lineview.StageVertex || vs.module == nil {
		return nil, &lineview.ProgramLinkError{Log: "missing compiled vertex stage"}
	}
	if fs == nil || fs.Stage != lineview.StageFragment || fs.module == nil {
		return nil, &lineview.ProgramLinkError{Log: "missing compiled fragment stage"}
	}

	p := &ShaderProgram{
		device:   device,
		queue:    queue,
		uniforms: make(map[string]*uniformSlot),
	}
	if err := p.collectUniforms(vs, fs); err != nil {
		return nil, &lineview.ProgramLinkError{Log: err.Error()}
	}
	if err := p.link(vs, fs, format); err != nil {
		p.Dispose()
		return nil, &lineview.ProgramLinkError{Log: err.Error()}
	}

	lineview.Logger().Debug("gpu: shader program linked",
		"vertex_entry", vs.EntryPoint,
		"fragment_entry", fs.EntryPoint,
		"uniforms", len(p.order))
	return p, nil
}

// collectUniforms merges the reflected uniforms of both stages. The same
// name must map to the same binding and type in both.
func (p *ShaderProgram) collectUniforms(vs, fs *CompiledStage) error {
	add := func(d uniformDecl, vertex bool) error {
		if d.group != 0 {
			return fmt.Errorf("uniform %q: only @group(0) is supported, got %d", d.name, d.group)
		}
		size, ok := uniformSize(d.typ)
		if !ok {
			return fmt.Errorf("uniform %q: unsupported type %s", d.name, d.typ)
		}
		slot, exists := p.uniforms[d.name]
		if !exists {
			for _, other := range p.order {
				if other.binding == d.binding {
					return fmt.Errorf("uniforms %q and %q share binding %d", other.name, d.name, d.binding)
				}
			}
			slot = &uniformSlot{name: d.name, typ: d.typ, binding: d.binding, size: size}
			p.uniforms[d.name] = slot
			p.order = append(p.order, slot)
		} else if slot.binding != d.binding || slot.typ != d.typ {
			return fmt.Errorf("uniform %q declared differently in vertex and fragment stages", d.name)
		}
		if vertex {
			slot.inVertex = true
		} else {
			slot.inFragment = true
		}
		return nil
	}
	for _, d := range vs.uniforms {
		if err := add(d, true); err != nil {
			return err
		}
	}
	for _, d := range fs.uniforms {
		if err := add(d, false); err != nil {
			return err
		}
	}
	sort.Slice(p.order, func(i, j int) bool { return p.order[i].binding < p.order[j].binding })
	return nil
}

// link creates layouts, the pipeline, uniform buffers and the bind group.
func (p *ShaderProgram) link(vs, fs *CompiledStage, format gputypes.TextureFormat) error {
	layoutEntries := make([]gputypes.BindGroupLayoutEntry, 0, len(p.order))
	for _, u := range p.order {
		visibility := gputypes.ShaderStageVertex | gputypes.ShaderStageFragment
		switch {
		case u.inVertex && !u.inFragment:
			visibility = gputypes.ShaderStageVertex
		case u.inFragment && !u.inVertex:
			visibility = gputypes.ShaderStageFragment
		}
		layoutEntries = append(layoutEntries, gputypes.BindGroupLayoutEntry{
			Binding:    u.binding,
			Visibility: visibility,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
		})
	}

	var bindLayouts []hal.BindGroupLayout
	if len(layoutEntries) > 0 {
		bindLayout, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
			Label:   "line_uniform_layout",
			Entries: layoutEntries,
		})
		if err != nil {
			return fmt.Errorf("create uniform layout: %w", err)
		}
		p.bindLayout = bindLayout
		bindLayouts = []hal.BindGroupLayout{bindLayout}
	}

	pipeLayout, err := p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "line_pipe_layout",
		BindGroupLayouts: bindLayouts,
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	p.pipeLayout = pipeLayout

	pipeline, err := p.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "line_pipeline",
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     vs.module,
			EntryPoint: vs.EntryPoint,
			Buffers:    lineVertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     fs.module,
			EntryPoint: fs.EntryPoint,
			Targets: []gputypes.ColorTargetState{
				{
					Format:    format,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyLineList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("create render pipeline: %w", err)
	}
	p.pipeline = pipeline

	if len(p.order) == 0 {
		return nil
	}

	groupEntries := make([]gputypes.BindGroupEntry, 0, len(p.order))
	for _, u := range p.order {
		buf, err := p.device.CreateBuffer(&hal.BufferDescriptor{
			Label: "line_uniform_" + u.name,
			Size:  u.size,
			Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("create uniform buffer %q: %w", u.name, err)
		}
		u.buf = buf
		groupEntries = append(groupEntries, gputypes.BindGroupEntry{
			Binding: u.binding,
			Resource: gputypes.BufferBinding{
				Buffer: buf.NativeHandle(), Offset: 0, Size: u.size,
			},
		})
	}

	bindGroup, err := p.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   "line_uniform_bind",
		Layout:  p.bindLayout,
		Entries: groupEntries,
	})
	if err != nil {
		return fmt.Errorf("create bind group: %w", err)
	}
	p.bindGroup = bindGroup
	return nil
}

// HasUniform reports whether the program declares a uniform called name.
func (p *ShaderProgram) HasUniform(name string) bool {
	_, ok := p.uniforms[name]
	return ok
}

// SetUniform uploads a 4x4 matrix to the named uniform. A name the program
// does not declare is logged as a MissingUniformWarning and ignored, and a
// failed upload is logged at warn level; it never fails the caller.
func (p *ShaderProgram) SetUniform(name string, m mgl32.Mat4) {
	u, ok := p.uniforms[name]
	if !ok || u.buf == nil {
		lineview.Logger().Warn("gpu: uniform ignored",
			"warning", lineview.MissingUniformWarning{Name: name})
		return
	}
	var data [64]byte
	for i, f := range m {
		binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(f))
	}
	if err := p.queue.WriteBuffer(u.buf, 0, data[:]); err != nil {
		lineview.Logger().Warn("gpu: uniform upload failed",
			"name", name, "err", err)
	}
}

// Use binds the pipeline and its uniforms on the render pass. Calling it
// repeatedly on the same pass is harmless.
func (p *ShaderProgram) Use(rp hal.RenderPassEncoder) {
	rp.SetPipeline(p.pipeline)
	if p.bindGroup != nil {
		rp.SetBindGroup(0, p.bindGroup, nil)
	}
}

// Dispose releases all GPU objects in reverse creation order.
func (p *ShaderProgram) Dispose() {
	if p.device == nil {
		return
	}
	if p.bindGroup != nil {
		p.device.DestroyBindGroup(p.bindGroup)
		p.bindGroup = nil
	}
	for _, u := range p.order {
		if u.buf != nil {
			p.device.DestroyBuffer(u.buf)
			u.buf = nil
		}
	}
	if p.pipeline != nil {
		p.device.DestroyRenderPipeline(p.pipeline)
		p.pipeline = nil
	}
	if p.pipeLayout != nil {
		p.device.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.bindLayout != nil {
		p.device.DestroyBindGroupLayout(p.bindLayout)
		p.bindLayout = nil
	}
}
