package gpu

import (
	"testing"

	"github.com/lineview/lineview"
)

func TestReflectUniformsDefaultVertex(t *testing.T) {
	decls := reflectUniforms(DefaultVertexShaderSource())
	if len(decls) != 1 {
		t.Fatalf("expected 1 uniform, got %d: %+v", len(decls), decls)
	}
	d := decls[0]
	if d.name != "projection" || d.typ != "mat4x4<f32>" || d.group != 0 || d.binding != 0 {
		t.Errorf("unexpected uniform %+v", d)
	}
}

func TestReflectUniformsDefaultFragment(t *testing.T) {
	if decls := reflectUniforms(DefaultFragmentShaderSource()); len(decls) != 0 {
		t.Errorf("fragment stage should declare no uniforms, got %+v", decls)
	}
}

func TestReflectUniformsVariants(t *testing.T) {
	src := `
// @group(0) @binding(7) var<uniform> commented: mat4x4<f32>;
/* @group(0) @binding(8) var<uniform> blocked: f32; */
@binding(2) @group(1) var<uniform> swapped : vec4f;
@group(0)
@binding(3)
var<uniform> model: mat4x4< f32 >;
@group(0) @binding(4) var<storage, read> data: array<f32>;
`
	decls := reflectUniforms(src)
	if len(decls) != 2 {
		t.Fatalf("expected 2 uniforms, got %d: %+v", len(decls), decls)
	}
	if decls[0].name != "swapped" || decls[0].group != 1 || decls[0].binding != 2 || decls[0].typ != "vec4f" {
		t.Errorf("decls[0] = %+v", decls[0])
	}
	if decls[1].name != "model" || decls[1].binding != 3 || decls[1].typ != "mat4x4<f32>" {
		t.Errorf("decls[1] = %+v", decls[1])
	}
}

func TestEntryPoint(t *testing.T) {
	tests := []struct {
		stage lineview.ShaderStage
		src   string
		want  string
	}{
		{lineview.StageVertex, DefaultVertexShaderSource(), "vs_main"},
		{lineview.StageFragment, DefaultFragmentShaderSource(), "fs_main"},
		{lineview.StageFragment, DefaultVertexShaderSource(), ""},
		{lineview.StageVertex, "// @vertex fn hidden() {}", ""},
		{lineview.StageVertex, "@vertex\nfn  main_v(@location(0) p: vec2f) -> @builtin(position) vec4f { return vec4f(p, 0.0, 1.0); }", "main_v"},
	}
	for _, tt := range tests {
		if got := entryPoint(tt.stage, tt.src); got != tt.want {
			t.Errorf("entryPoint(%s, %q) = %q, want %q", tt.stage, tt.src, got, tt.want)
		}
	}
}

func TestUniformSize(t *testing.T) {
	tests := []struct {
		typ  string
		size uint64
		ok   bool
	}{
		{"mat4x4<f32>", 64, true},
		{"mat4x4f", 64, true},
		{"vec2<f32>", 0, false},
		{"f32", 0, false},
		{"mat3x3<f32>", 0, false},
		{"array<f32,4>", 0, false},
	}
	for _, tt := range tests {
		size, ok := uniformSize(tt.typ)
		if size != tt.size || ok != tt.ok {
			t.Errorf("uniformSize(%q) = (%d, %v), want (%d, %v)", tt.typ, size, ok, tt.size, tt.ok)
		}
	}
}
