package macro

import (
	"fmt"
	"sort"
	"sync"
)

// Transformer rewrites the argument tokens of one invocation.
type Transformer interface {
	Name() string
	Transform(ctx *Context, in TokenStream) (TokenStream, error)
}

// Registry maps macro names to transformers.
type Registry struct {
	mu           sync.RWMutex
	transformers map[string]Transformer
	disabled     map[string]bool
}

// NewRegistry creates a registry holding the builtin macros.
func NewRegistry() *Registry {
	r := &Registry{
		transformers: make(map[string]Transformer),
		disabled:     make(map[string]bool),
	}
	r.registerBuiltins()
	return r
}

func (r *Registry) registerBuiltins() {
	builtins := []Transformer{
		condMacro{},
		elvisMacro{},
		elvisAssignMacro{},
		incDecMacro{},
		mapMacro{name: "hml"},
		mapMacro{name: "map"},
		spreadMacro{},
		interpMacro{},
		truthyMacro{},
	}
	for _, t := range builtins {
		if err := r.Register(t); err != nil {
			panic(err)
		}
	}
}

// Register adds a transformer. Names are unique.
func (r *Registry) Register(t Transformer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.transformers[t.Name()]; exists {
		return fmt.Errorf("macro %q already registered", t.Name())
	}
	r.transformers[t.Name()] = t
	return nil
}

// Disable hides a macro from Lookup.
func (r *Registry) Disable(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.transformers[name]; !exists {
		return fmt.Errorf("unknown macro %q", name)
	}
	r.disabled[name] = true
	return nil
}

// Lookup returns the enabled transformer registered under name. The second
// result reports whether the name is registered at all.
func (r *Registry) Lookup(name string) (t Transformer, known bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, known = r.transformers[name]
	if r.disabled[name] {
		return nil, known
	}
	return t, known
}

// Names lists the enabled macros, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.transformers))
	for name := range r.transformers {
		if !r.disabled[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
