package component

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Function is a helper callable from computed expressions.
type Function func(args ...any) (any, error)

// Functions declares expression helpers on a component descriptor under
// KeyFunctions. Derived constructors see the helpers of their ancestors and
// may shadow them.
type Functions map[string]Function

// FunctionRegistry holds expression helpers keyed by case-insensitive name.
// Lookups fall through to the parent registry, the same way asset
// registries do.
type FunctionRegistry struct {
	mu     sync.RWMutex
	parent *FunctionRegistry
	own    map[string]Function
}

// NewFunctionRegistry constructs an empty registry with no parent.
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{own: map[string]Function{}}
}

// derive returns an empty registry delegating to r.
func (r *FunctionRegistry) derive() *FunctionRegistry {
	return &FunctionRegistry{parent: r, own: map[string]Function{}}
}

// Parent returns the registry r delegates to.
func (r *FunctionRegistry) Parent() *FunctionRegistry {
	if r == nil {
		return nil
	}
	return r.parent
}

// Register adds fn under name. A name may shadow an inherited helper but not
// one registered on r itself.
func (r *FunctionRegistry) Register(name string, fn Function) error {
	switch {
	case fn == nil:
		return fmt.Errorf("%w: helper %q is nil", ErrInvalidOption, name)
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("%w: helper name must not be empty", ErrInvalidOption)
	}
	key := strings.ToLower(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.own == nil {
		r.own = map[string]Function{}
	}
	if _, exists := r.own[key]; exists {
		return fmt.Errorf("%w: helper %q already registered", ErrInvalidOption, name)
	}
	r.own[key] = fn
	return nil
}

// Lookup resolves name through r and its ancestors.
func (r *FunctionRegistry) Lookup(name string) (Function, bool) {
	key := strings.ToLower(name)
	for cur := r; cur != nil; cur = cur.parent {
		cur.mu.RLock()
		fn, ok := cur.own[key]
		cur.mu.RUnlock()
		if ok {
			return fn, true
		}
	}
	return nil, false
}

// Call runs the helper registered for name.
func (r *FunctionRegistry) Call(name string, args ...any) (any, error) {
	fn, ok := r.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("component: helper %q not registered", name)
	}
	return fn(args...)
}

// OwnNames returns the helpers registered on r itself, sorted.
func (r *FunctionRegistry) OwnNames() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.own)
}

// Names returns every helper visible through r, sorted.
func (r *FunctionRegistry) Names() []string {
	seen := map[string]struct{}{}
	for cur := r; cur != nil; cur = cur.parent {
		for _, name := range cur.OwnNames() {
			seen[name] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone flattens the helpers visible through r into a registry with no
// parent. Evaluators hold clones, so later registrations are not seen by
// programs already compiled.
func (r *FunctionRegistry) Clone() *FunctionRegistry {
	if r == nil {
		return nil
	}
	clone := NewFunctionRegistry()
	for _, name := range r.Names() {
		clone.own[name], _ = r.Lookup(name)
	}
	return clone
}

// mergeFunctions is the strategy for KeyFunctions. A child without helpers
// keeps the parent registry, so constructors that add none share the
// framework's evaluators and program cache.
func mergeFunctions(parent, child any, _ *Instance, _ string) (any, error) {
	var parentReg *FunctionRegistry
	if !isUnset(parent) {
		reg, ok := parent.(*FunctionRegistry)
		if !ok {
			return nil, invalidOption("*FunctionRegistry", parent)
		}
		parentReg = reg
	}
	var declared map[string]Function
	switch v := child.(type) {
	case nil:
	case Functions:
		declared = v
	case map[string]Function:
		declared = v
	case *FunctionRegistry:
		if v == parentReg {
			return parentReg, nil
		}
		declared = make(map[string]Function)
		for _, name := range v.OwnNames() {
			declared[name], _ = v.Lookup(name)
		}
	default:
		return nil, invalidOption("Functions", child)
	}
	if len(declared) == 0 {
		if parentReg == nil {
			return nil, nil
		}
		return parentReg, nil
	}
	out := parentReg.derive()
	for _, name := range sortedKeys(declared) {
		if err := out.Register(name, declared[name]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// WithFunctionRegistry makes the helpers in registry available to every
// computed expression of the framework.
func WithFunctionRegistry(registry *FunctionRegistry) Option {
	return func(cfg *config) {
		if registry == nil {
			return
		}
		cfg.functions = registry.Clone()
	}
}

// WithCustomFunction registers a single framework-wide helper.
func WithCustomFunction(name string, fn Function) Option {
	return func(cfg *config) {
		if cfg.functions == nil {
			cfg.functions = NewFunctionRegistry()
		}
		_ = cfg.functions.Register(name, fn)
	}
}
