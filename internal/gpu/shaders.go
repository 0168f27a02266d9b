package gpu

import (
	_ "embed"
	"regexp"
	"strconv"
	"strings"

	"github.com/lineview/lineview"
)

// Embedded WGSL shader sources used when no shader files are configured.

//go:embed shaders/line.vert.wgsl
var lineVertexShaderSource string

//go:embed shaders/line.frag.wgsl
var lineFragmentShaderSource string

// DefaultVertexShaderSource returns the built-in vertex stage.
func DefaultVertexShaderSource() string {
	return lineVertexShaderSource
}

// DefaultFragmentShaderSource returns the built-in fragment stage.
func DefaultFragmentShaderSource() string {
	return lineFragmentShaderSource
}

// uniformDecl is one `var<uniform>` declaration found in a WGSL stage.
type uniformDecl struct {
	name    string
	typ     string
	group   uint32
	binding uint32
}

var (
	uniformDeclRe  = regexp.MustCompile(`((?:@\s*(?:group|binding)\s*\(\s*\d+\s*\)\s*){2})var\s*<\s*uniform\s*>\s*([A-Za-z_][A-Za-z0-9_]*)\s*:\s*([^;=]+?)\s*;`)
	groupAttrRe    = regexp.MustCompile(`@\s*group\s*\(\s*(\d+)\s*\)`)
	bindingAttrRe  = regexp.MustCompile(`@\s*binding\s*\(\s*(\d+)\s*\)`)
	lineCommentRe  = regexp.MustCompile(`//[^\n]*`)
	blockCommentRe = regexp.MustCompile(`(?s)/\*.*?\*/`)
)

// stripComments removes WGSL comments so commented-out declarations are
// not reflected.
func stripComments(src string) string {
	return lineCommentRe.ReplaceAllString(blockCommentRe.ReplaceAllString(src, ""), "")
}

// reflectUniforms lists the uniform declarations of a WGSL source in
// declaration order.
func reflectUniforms(src string) []uniformDecl {
	src = stripComments(src)
	var decls []uniformDecl
	for _, m := range uniformDeclRe.FindAllStringSubmatch(src, -1) {
		g := groupAttrRe.FindStringSubmatch(m[1])
		b := bindingAttrRe.FindStringSubmatch(m[1])
		if g == nil || b == nil {
			continue
		}
		group, _ := strconv.ParseUint(g[1], 10, 32)
		binding, _ := strconv.ParseUint(b[1], 10, 32)
		decls = append(decls, uniformDecl{
			name:    m[2],
			typ:     strings.Join(strings.Fields(m[3]), ""),
			group:   uint32(group),   //nolint:gosec // parsed with bitSize 32
			binding: uint32(binding), //nolint:gosec // parsed with bitSize 32
		})
	}
	return decls
}

// entryPoint returns the name of the first function tagged with the stage
// attribute, or "" if there is none.
func entryPoint(stage lineview.ShaderStage, src string) string {
	re := regexp.MustCompile(`@\s*` + stage.String() + `\s+fn\s+([A-Za-z_][A-Za-z0-9_]*)`)
	m := re.FindStringSubmatch(stripComments(src))
	if m == nil {
		return ""
	}
	return m[1]
}

// uniformSize returns the uniform buffer size for a WGSL type. Only 4x4
// float matrices are supported; ok is false for anything else.
func uniformSize(typ string) (size uint64, ok bool) {
	switch typ {
	case "mat4x4<f32>", "mat4x4f":
		return 64, true
	default:
		return 0, false
	}
}
