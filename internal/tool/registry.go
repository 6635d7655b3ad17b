package tool

import (
	"errors"
	"sort"
	"sync"
)

// Registry maps tool names to capabilities. It owns no execution state.
// Setup code registers everything and then calls Freeze; after that the
// registry is read-only and may be shared across runs.
type Registry struct {
	mu     sync.RWMutex
	tools  map[string]Capability
	frozen bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Capability),
	}
}

// Register binds name to c. The capability is wrapped with Guard so a
// panic inside it can never escape an invocation.
func (r *Registry) Register(name string, c Capability) error {
	if name == "" {
		return errors.New("tool name is required")
	}
	if c == nil {
		return errors.New("tool capability is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return ErrFrozen
	}
	if _, ok := r.tools[name]; ok {
		return &DuplicateNameError{Name: name}
	}
	r.tools[name] = Guard(name, c)
	return nil
}

// MustRegister is Register for startup code, where a failure is a
// programming error.
func (r *Registry) MustRegister(name string, c Capability) {
	if err := r.Register(name, c); err != nil {
		panic(err)
	}
}

// Freeze makes the registry read-only.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Resolve returns the capability bound to name.
func (r *Registry) Resolve(name string) (Capability, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.tools[name]
	if !ok {
		return nil, &UnknownToolError{Name: name}
	}
	return c, nil
}

// List returns the registered names in lexical order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Describe returns a descriptor for each registered tool, ordered by name.
func (r *Registry) Describe() []Descriptor {
	names := r.List()

	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]Descriptor, 0, len(names))
	for _, name := range names {
		d := Descriptor{Name: name, Parameters: map[string]any{"type": "object"}}
		if desc, ok := r.tools[name].(Describer); ok {
			d.Description = desc.Description()
			if p := desc.Parameters(); p != nil {
				d.Parameters = p
			}
		}
		result = append(result, d)
	}
	return result
}
