package lineview

import (
	"errors"
	"fmt"
)

// Package errors.
var (
	// ErrNotReady is returned when RenderFrame is called on a surface that
	// has not been initialized or is already mid-frame.
	ErrNotReady = errors.New("lineview: render surface not ready")

	// ErrDisposed is returned for any operation on a disposed surface.
	ErrDisposed = errors.New("lineview: render surface disposed")

	// ErrInvalidDimensions is returned when width or height is not positive.
	ErrInvalidDimensions = errors.New("lineview: invalid dimensions")

	// ErrNoRenderer is returned when a controller has no renderer.
	ErrNoRenderer = errors.New("lineview: nil renderer")

	// ErrNoSink is returned when a controller has no pixel sink.
	ErrNoSink = errors.New("lineview: nil pixel sink")
)

// ShaderStage identifies a programmable pipeline stage.
type ShaderStage int

const (
	// StageVertex is the vertex stage.
	StageVertex ShaderStage = iota
	// StageFragment is the fragment stage.
	StageFragment
)

// String returns the WGSL attribute name of the stage.
func (s ShaderStage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	default:
		return fmt.Sprintf("ShaderStage(%d)", int(s))
	}
}

// ContextCreationError reports that no suitable GPU device could be
// obtained. It is fatal: the surface never reaches the Ready state.
type ContextCreationError struct {
	Reason string
	Err    error
}

func (e *ContextCreationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("lineview: create GPU context: %s: %v", e.Reason, e.Err)
	}
	return "lineview: create GPU context: " + e.Reason
}

func (e *ContextCreationError) Unwrap() error { return e.Err }

// ShaderCompileError carries the compiler diagnostics for a rejected stage.
type ShaderCompileError struct {
	Stage ShaderStage
	Log   string
}

func (e *ShaderCompileError) Error() string {
	return fmt.Sprintf("lineview: compile %s shader: %s", e.Stage, e.Log)
}

// ProgramLinkError carries the diagnostics for a program that failed to link.
type ProgramLinkError struct {
	Log string
}

func (e *ProgramLinkError) Error() string {
	return "lineview: link shader program: " + e.Log
}

// MissingUniformWarning describes a uniform that the program does not
// declare. It is logged, never returned: the draw proceeds with the uniform
// left at its GPU-side default.
type MissingUniformWarning struct {
	Name string
}

func (w MissingUniformWarning) Error() string {
	return fmt.Sprintf("lineview: uniform %q not found in shader", w.Name)
}
