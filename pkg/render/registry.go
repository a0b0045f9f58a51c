package render

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Helper is a function callable from templates by name.
type Helper func(call Call) (any, error)

// Loop describes the innermost enclosing iteration.
type Loop struct {
	// Index is the data index of the element (its path segment).
	Index int
	// Position is the zero-based iteration count.
	Position int
	// Count is the number of elements iterated.
	Count int
}

// First reports whether this is the first iteration.
func (l Loop) First() bool { return l.Position == 0 }

// Last reports whether this is the final iteration.
func (l Loop) Last() bool { return l.Position == l.Count-1 }

// Call is the invocation passed to a Helper.
type Call struct {
	Name string
	Args []Value

	ctx  context.Context
	dot  Value
	loop *Loop
}

// Context returns the render context.
func (c Call) Context() context.Context {
	if c.ctx == nil {
		return context.Background()
	}
	return c.ctx
}

// Dot returns the value of dot at the call site.
func (c Call) Dot() Value { return c.dot }

// Loop returns the innermost enclosing iteration.
func (c Call) Loop() (Loop, bool) {
	if c.loop == nil {
		return Loop{}, false
	}
	return *c.loop, true
}

func (c Call) arity(n int) error {
	if len(c.Args) != n {
		return fmt.Errorf("%s: want %d argument(s), got %d", c.Name, n, len(c.Args))
	}
	return nil
}

// Registry holds the helpers available to one renderer. Nothing is shared
// between registries; Clone before extending one that is already in use.
type Registry struct {
	mu      sync.RWMutex
	helpers map[string]Helper
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{helpers: make(map[string]Helper)}
}

// Register adds a helper. Duplicate names return an error.
func (r *Registry) Register(name string, helper Helper) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("render: helper name is required")
	}
	if helper == nil {
		return fmt.Errorf("render: helper %q is nil", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.helpers[name]; exists {
		return fmt.Errorf("render: helper %q already registered", name)
	}
	r.helpers[name] = helper
	return nil
}

// MustRegister panics on registration failure.
func (r *Registry) MustRegister(name string, helper Helper) {
	if err := r.Register(name, helper); err != nil {
		panic(err)
	}
}

// Replace registers helper under name, overriding any existing entry.
func (r *Registry) Replace(name string, helper Helper) error {
	name = strings.TrimSpace(name)
	if name == "" || helper == nil {
		return fmt.Errorf("render: helper name and function are required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.helpers[name] = helper
	return nil
}

// Lookup retrieves a helper by name.
func (r *Registry) Lookup(name string) (Helper, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	helper, ok := r.helpers[name]
	return helper, ok
}

// Has reports whether a helper is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// Names returns the sorted helper names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.helpers))
	for name := range r.helpers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns an independent copy of the registry.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := NewRegistry()
	for name, helper := range r.helpers {
		out.helpers[name] = helper
	}
	return out
}
