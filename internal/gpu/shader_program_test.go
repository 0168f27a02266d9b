package gpu

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/lineview/lineview"
)

func TestCompileStageDefaults(t *testing.T) {
	device, _, cleanup := createNoopDevice(t)
	defer cleanup()

	vs, err := CompileStage(device, lineview.StageVertex, DefaultVertexShaderSource())
	if err != nil {
		t.Fatalf("compile vertex: %v", err)
	}
	defer vs.Release()
	if vs.EntryPoint != "vs_main" {
		t.Errorf("vertex entry point = %q", vs.EntryPoint)
	}
	if len(vs.uniforms) != 1 {
		t.Errorf("expected the projection uniform, got %+v", vs.uniforms)
	}

	fs, err := CompileStage(device, lineview.StageFragment, DefaultFragmentShaderSource())
	if err != nil {
		t.Fatalf("compile fragment: %v", err)
	}
	defer fs.Release()
	if fs.EntryPoint != "fs_main" {
		t.Errorf("fragment entry point = %q", fs.EntryPoint)
	}
}

func TestCompileStageErrors(t *testing.T) {
	device, _, cleanup := createNoopDevice(t)
	defer cleanup()

	broken, err := os.ReadFile("testdata/broken.frag.wgsl")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		stage  lineview.ShaderStage
		source string
	}{
		{"empty", lineview.StageVertex, ""},
		{"malformed", lineview.StageFragment, string(broken)},
		{"wrong stage", lineview.StageFragment, DefaultVertexShaderSource()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs, err := CompileStage(device, tt.stage, tt.source)
			if cs != nil {
				t.Error("expected nil stage on failure")
			}
			var sce *lineview.ShaderCompileError
			if !errors.As(err, &sce) {
				t.Fatalf("expected ShaderCompileError, got %v", err)
			}
			if sce.Stage != tt.stage {
				t.Errorf("error stage = %s, want %s", sce.Stage, tt.stage)
			}
			if sce.Log == "" {
				t.Error("expected a diagnostic log")
			}
		})
	}
}

func linkDefaults(t *testing.T) (*ShaderProgram, func()) {
	t.Helper()
	device, queue, cleanup := createNoopDevice(t)
	vs, err := CompileStage(device, lineview.StageVertex, DefaultVertexShaderSource())
	if err != nil {
		cleanup()
		t.Fatalf("compile vertex: %v", err)
	}
	fs, err := CompileStage(device, lineview.StageFragment, DefaultFragmentShaderSource())
	if err != nil {
		vs.Release()
		cleanup()
		t.Fatalf("compile fragment: %v", err)
	}
	p, err := LinkProgram(device, queue, vs, fs, targetFormat)
	if err != nil {
		cleanup()
		t.Fatalf("link: %v", err)
	}
	if vs.module != nil || fs.module != nil {
		t.Error("stages must be released after link")
	}
	return p, func() {
		p.Dispose()
		cleanup()
	}
}

func TestLinkProgram(t *testing.T) {
	p, cleanup := linkDefaults(t)
	defer cleanup()

	if p.pipeline == nil {
		t.Error("expected pipeline")
	}
	if p.bindGroup == nil {
		t.Error("expected bind group for the projection uniform")
	}
	if !p.HasUniform("projection") {
		t.Error("expected projection uniform")
	}
	if p.uniforms["projection"].buf == nil {
		t.Error("expected projection uniform buffer")
	}
}

func TestLinkProgramRejectsSwappedStages(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	vs, err := CompileStage(device, lineview.StageVertex, DefaultVertexShaderSource())
	if err != nil {
		t.Fatal(err)
	}
	fs, err := CompileStage(device, lineview.StageFragment, DefaultFragmentShaderSource())
	if err != nil {
		t.Fatal(err)
	}

	p, err := LinkProgram(device, queue, fs, vs, targetFormat)
	if p != nil {
		t.Error("expected no program")
	}
	var ple *lineview.ProgramLinkError
	if !errors.As(err, &ple) {
		t.Fatalf("expected ProgramLinkError, got %v", err)
	}
	if vs.module != nil || fs.module != nil {
		t.Error("stages must be released after a failed link")
	}
}

func TestLinkProgramConflictingUniforms(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	frag := `@group(0) @binding(0) var<uniform> tint: mat4x4<f32>;
@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return tint[0];
}
`
	vs, err := CompileStage(device, lineview.StageVertex, DefaultVertexShaderSource())
	if err != nil {
		t.Fatal(err)
	}
	fs, err := CompileStage(device, lineview.StageFragment, frag)
	if err != nil {
		t.Fatal(err)
	}
	_, err = LinkProgram(device, queue, vs, fs, targetFormat)
	var ple *lineview.ProgramLinkError
	if !errors.As(err, &ple) {
		t.Fatalf("expected ProgramLinkError, got %v", err)
	}
	if !strings.Contains(ple.Log, "binding 0") {
		t.Errorf("log should name the shared binding: %q", ple.Log)
	}
}

func TestLinkProgramRejectsNonMatrixUniform(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	frag := `@group(0) @binding(1) var<uniform> tint: vec4<f32>;
@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return tint;
}
`
	vs, err := CompileStage(device, lineview.StageVertex, DefaultVertexShaderSource())
	if err != nil {
		t.Fatal(err)
	}
	fs, err := CompileStage(device, lineview.StageFragment, frag)
	if err != nil {
		t.Fatal(err)
	}
	p, err := LinkProgram(device, queue, vs, fs, targetFormat)
	if p != nil {
		t.Error("expected no program")
	}
	var ple *lineview.ProgramLinkError
	if !errors.As(err, &ple) {
		t.Fatalf("expected ProgramLinkError, got %v", err)
	}
	if !strings.Contains(ple.Log, "tint") || !strings.Contains(ple.Log, "unsupported type") {
		t.Errorf("log should name the uniform and its type: %q", ple.Log)
	}
}

func TestSetUniformUploadFailureWarns(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	fq := &failingQueue{Queue: queue}
	vs, err := CompileStage(device, lineview.StageVertex, DefaultVertexShaderSource())
	if err != nil {
		t.Fatal(err)
	}
	fs, err := CompileStage(device, lineview.StageFragment, DefaultFragmentShaderSource())
	if err != nil {
		t.Fatal(err)
	}
	p, err := LinkProgram(device, fq, vs, fs, targetFormat)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Dispose()

	var buf bytes.Buffer
	lineview.SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	defer lineview.SetLogger(nil)

	fq.failWrites = true
	p.SetUniform("projection", mgl32.Ident4())

	out := buf.String()
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "upload failed") {
		t.Errorf("expected an upload warning, got %q", out)
	}
}

func TestSetUniformMissingWarns(t *testing.T) {
	p, cleanup := linkDefaults(t)
	defer cleanup()

	var buf bytes.Buffer
	lineview.SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	defer lineview.SetLogger(nil)

	p.SetUniform("model", mgl32.Ident4())

	out := buf.String()
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "model") {
		t.Errorf("expected a warning naming the uniform, got %q", out)
	}

	buf.Reset()
	p.SetUniform("projection", mgl32.Ortho(0, 800, 0, 450, -1, 1))
	if strings.Contains(buf.String(), "level=WARN") {
		t.Errorf("unexpected warning for a declared uniform: %q", buf.String())
	}
}

func TestShaderProgramUseIdempotent(t *testing.T) {
	p, cleanup := linkDefaults(t)
	defer cleanup()

	rt := &renderTarget{}
	if err := rt.create(p.device, 4, 4); err != nil {
		t.Fatal(err)
	}
	defer rt.destroy(p.device)

	encoder, err := p.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "use_test"})
	if err != nil {
		t.Fatal(err)
	}
	if err := encoder.BeginEncoding("use_test"); err != nil {
		t.Fatal(err)
	}
	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "use_test_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:    rt.view,
			LoadOp:  gputypes.LoadOpClear,
			StoreOp: gputypes.StoreOpStore,
		}},
	})
	p.Use(rp)
	p.Use(rp)
	rp.End()
	encoder.DiscardEncoding()
}

func TestShaderProgramDisposeTwice(t *testing.T) {
	p, cleanup := linkDefaults(t)
	defer cleanup()

	p.Dispose()
	if p.pipeline != nil || p.bindGroup != nil || p.pipeLayout != nil || p.bindLayout != nil {
		t.Error("expected all objects released")
	}
	p.Dispose()
}
