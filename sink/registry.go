// Copyright 2026 The lineview Authors
// SPDX-License-Identifier: MIT

package sink

import (
	"errors"
	"sort"
	"sync"

	"github.com/lineview/lineview"
)

// Options configures a sink created through the registry.
type Options struct {
	// Width and Height are the frame dimensions the sink will receive.
	Width, Height int

	// Output is the destination file of the "file" sink.
	Output string

	// Device is the framebuffer device of the "framebuffer" sink.
	Device string

	// Title is the window title of the "sdl" sink.
	Title string
}

// Sink is a PixelSink that holds host resources.
type Sink interface {
	lineview.PixelSink

	// Close releases the host resources. Present must not be called after.
	Close() error
}

// Factory creates a new Sink with the given options.
type Factory func(opts Options) (Sink, error)

// RegistryEntry represents a registered sink backend.
type RegistryEntry struct {
	// Name is the unique identifier for this backend.
	Name string

	// Priority determines selection order (higher = preferred).
	//   - 100: windowed (SDL, cgo builds only)
	//   - 90: windowed (gogpu host)
	//   - 50: console framebuffer (cgo builds only)
	//   - 20: file output
	//   - 10: memory
	Priority int

	// Factory creates sink instances.
	Factory Factory

	// Available reports if the backend can be used on this system.
	Available func() bool
}

// globalRegistry is the default registry.
var globalRegistry = &Registry{}

// Registry manages registered sink backends.
//
// Example registration:
//
//	func init() {
//	    sink.Register("sdl", 100, newSDLSink, nil)
//	}
//
// Example usage:
//
//	s, err := sink.New("file", sink.Options{Width: 800, Height: 450, Output: "frame.png"})
//	// or pick the best available:
//	s, err := sink.NewBest(sink.Options{Width: 800, Height: 450})
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*RegistryEntry
}

// NewRegistry creates a new empty registry.
// Most code should use the global registry via Register and New.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*RegistryEntry),
	}
}

// Register adds a backend to the global registry.
// If available is nil, the backend is assumed always available.
// Registering a name that already exists replaces the previous entry.
func Register(name string, priority int, factory Factory, available func() bool) {
	globalRegistry.Register(name, priority, factory, available)
}

// List returns all registered backend names sorted by priority (highest first).
func List() []string {
	return globalRegistry.List()
}

// Available returns names of all available backends sorted by priority.
func Available() []string {
	return globalRegistry.Available()
}

// New creates a sink using a specific named backend.
func New(name string, opts Options) (Sink, error) {
	return globalRegistry.New(name, opts)
}

// NewBest creates a sink using the best available backend.
func NewBest(opts Options) (Sink, error) {
	return globalRegistry.NewBest(opts)
}

// Register adds a backend to this registry.
func (r *Registry) Register(name string, priority int, factory Factory, available func() bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.entries == nil {
		r.entries = make(map[string]*RegistryEntry)
	}
	if available == nil {
		available = func() bool { return true }
	}
	r.entries[name] = &RegistryEntry{
		Name:      name,
		Priority:  priority,
		Factory:   factory,
		Available: available,
	}
}

// List returns all registered backend names sorted by priority.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sortedNames(false)
}

// Available returns names of all available backends sorted by priority.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sortedNames(true)
}

// NewBest tries each available backend in priority order and returns the
// first sink that opens.
func (r *Registry) NewBest(opts Options) (Sink, error) {
	r.mu.RLock()
	available := r.sortedNames(true)
	r.mu.RUnlock()

	if len(available) == 0 {
		return nil, ErrNoSinkAvailable
	}

	var errs []error
	for _, name := range available {
		s, err := r.New(name, opts)
		if err == nil {
			lineview.Logger().Debug("sink: selected", "name", name)
			return s, nil
		}
		errs = append(errs, err)
	}
	return nil, errors.Join(errs...)
}

// New creates a sink using a specific backend.
func (r *Registry) New(name string, opts Options) (Sink, error) {
	r.mu.RLock()
	entry, ok := r.entries[name]
	r.mu.RUnlock()

	if !ok {
		return nil, &NotFoundError{Name: name}
	}
	if !entry.Available() {
		return nil, &UnavailableError{Name: name}
	}
	return entry.Factory(opts)
}

// sortedNames returns backend names sorted by priority (highest first),
// then by name. Must be called with lock held.
func (r *Registry) sortedNames(onlyAvailable bool) []string {
	if len(r.entries) == 0 {
		return nil
	}

	entries := make([]*RegistryEntry, 0, len(r.entries))
	for _, e := range r.entries {
		if onlyAvailable && !e.Available() {
			continue
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Priority != entries[j].Priority {
			return entries[i].Priority > entries[j].Priority
		}
		return entries[i].Name < entries[j].Name
	})

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}

// Errors.
var (
	// ErrNoSinkAvailable is returned when no sink backends are registered
	// or available on the current system.
	ErrNoSinkAvailable = errors.New("sink: no backend available")

	// ErrNoOutput is returned by the file sink when Options.Output is empty.
	ErrNoOutput = errors.New("sink: no output path")

	// ErrClosed is returned by Present after Close.
	ErrClosed = errors.New("sink: closed")

	// ErrNilFrame is returned by Present when given no frame.
	ErrNilFrame = errors.New("sink: nil frame")

	// ErrNoTextureCreator is returned by WindowSink.Draw when the host's
	// drawer cannot create textures.
	ErrNoTextureCreator = errors.New("sink: drawer has no texture creator")
)

// NotFoundError indicates a named backend is not registered.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return "sink: backend not found: " + e.Name
}

// UnavailableError indicates a backend exists but is not available.
type UnavailableError struct {
	Name string
}

func (e *UnavailableError) Error() string {
	return "sink: backend unavailable: " + e.Name
}
