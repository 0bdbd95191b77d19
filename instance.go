package component

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-component/layering"
	"go.uber.org/zap"
)

// Instance is a component instance. Its options are fixed once
// initialization completes.
type Instance struct {
	fw      *Framework
	ctor    *Constructor
	uid     int
	name    string
	options *Options

	self        *Instance
	renderProxy Proxy

	parent    *Instance
	root      *Instance
	children  []*Instance
	refs      map[string]any
	isMounted bool
	el        string

	events       map[string][]*listenerEntry
	hasHookEvent bool

	vnode    *VNode
	slots    map[string][]*VNode
	rendered *VNode

	props    map[string]any
	data     map[string]any
	methods  Methods
	computed map[string]Accessor
	watchers Watchers
	injected map[string]any
	provided map[string]any
}

// UID returns the instance id, unique within the framework.
func (vm *Instance) UID() int {
	return vm.uid
}

// Constructor returns the constructor vm was created from.
func (vm *Instance) Constructor() *Constructor {
	return vm.ctor
}

// Framework returns the framework owning vm.
func (vm *Instance) Framework() *Framework {
	return vm.fw
}

// Options returns the effective options of vm.
func (vm *Instance) Options() *Options {
	return vm.options
}

// Self returns vm.
func (vm *Instance) Self() *Instance {
	return vm.self
}

// Proxy returns the view render functions read the instance through. It is
// vm itself in production.
func (vm *Instance) Proxy() Proxy {
	return vm.renderProxy
}

// Parent returns the nearest non-abstract parent instance.
func (vm *Instance) Parent() *Instance {
	return vm.parent
}

// Root returns the top of the instance tree, vm itself for a root.
func (vm *Instance) Root() *Instance {
	return vm.root
}

// Children returns the instances that registered vm as parent.
func (vm *Instance) Children() []*Instance {
	return vm.children
}

func (vm *Instance) Refs() map[string]any {
	return vm.refs
}

// IsMounted reports whether the mounted hook has run.
func (vm *Instance) IsMounted() bool {
	return vm.isMounted
}

// El returns the mount target, empty until mounted.
func (vm *Instance) El() string {
	return vm.el
}

// VNode returns the placeholder node of vm in its parent's tree.
func (vm *Instance) VNode() *VNode {
	return vm.vnode
}

// Rendered returns the tree produced by the last render.
func (vm *Instance) Rendered() *VNode {
	return vm.rendered
}

// Slots returns the resolved slot content keyed by slot name.
func (vm *Instance) Slots() map[string][]*VNode {
	return vm.slots
}

// Data returns the data map of vm.
func (vm *Instance) Data() map[string]any {
	return vm.data
}

// Props returns the resolved prop values of vm.
func (vm *Instance) Props() map[string]any {
	return vm.props
}

// Injected returns the values resolved from ancestors' provide.
func (vm *Instance) Injected() map[string]any {
	return vm.injected
}

// Provided returns the values vm provides to descendants.
func (vm *Instance) Provided() map[string]any {
	return vm.provided
}

// Get reads a property by name. Prototype accessors (props and computed
// declared on the constructor) come first, then props, data, instance-level
// computed, methods and injected values.
func (vm *Instance) Get(key string) (any, error) {
	if accessor, ok := vm.ctor.proto.Lookup(key); ok && accessor.Get != nil {
		return accessor.Get(vm)
	}
	if value, ok := vm.props[key]; ok {
		return value, nil
	}
	if value, ok := vm.data[key]; ok {
		return value, nil
	}
	if accessor, ok := vm.computed[key]; ok {
		return accessor.Get(vm)
	}
	if method, ok := vm.methods[key]; ok {
		return method, nil
	}
	if value, ok := vm.injected[key]; ok {
		return value, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrPropertyNotFound, key)
}

// Set writes a property by name and runs the watchers of key when the value
// changes.
func (vm *Instance) Set(key string, value any) error {
	if accessor, ok := vm.ctor.proto.Lookup(key); ok && accessor.Set != nil {
		return accessor.Set(vm, value)
	}
	if _, ok := vm.props[key]; ok {
		vm.fw.warnComponent(vm, "avoid mutating a prop directly, the value is overwritten when the parent re-renders",
			zap.String("prop", key))
		return vm.assign(vm.props, key, value)
	}
	if _, ok := vm.data[key]; ok {
		return vm.assign(vm.data, key, value)
	}
	if accessor, ok := vm.computed[key]; ok {
		return accessor.Set(vm, value)
	}
	if _, ok := vm.injected[key]; ok {
		vm.fw.warnComponent(vm, "avoid mutating an injected value directly, the change is lost when the provider re-renders",
			zap.String("injection", key))
		return vm.assign(vm.injected, key, value)
	}
	return fmt.Errorf("%w: %q", ErrPropertyNotFound, key)
}

func (vm *Instance) assign(target map[string]any, key string, value any) error {
	old := target[key]
	target[key] = value
	return vm.notifyWatchers(key, value, old)
}

// Call invokes a method by name.
func (vm *Instance) Call(name string, args ...any) (any, error) {
	method, ok := vm.methods[name]
	if !ok || method == nil {
		return nil, fmt.Errorf("%w: method %q", ErrPropertyNotFound, name)
	}
	return method(vm, args...)
}

// Mount mounts vm onto el through the configured mounter.
func (vm *Instance) Mount(el string) error {
	return vm.fw.collaborators.Mounter.Mount(vm, el)
}

func (vm *Instance) source(key string) map[string]any {
	switch key {
	case SourceProps:
		return vm.props
	case SourceData:
		return vm.data
	}
	return nil
}

// snapshot is the state expression computeds evaluate against. Data shadows
// props, props shadow injected values.
func (vm *Instance) snapshot() map[string]any {
	merged := layering.MergeLayers(vm.data, vm.props, vm.injected)
	if merged == nil {
		merged = map[string]any{}
	}
	return merged
}

func (vm *Instance) notifyWatchers(key string, value, old any) error {
	handlers := vm.watchers[key]
	if len(handlers) == 0 || sameGroup(value, old) {
		return nil
	}
	var errs []error
	for _, handler := range handlers {
		if handler == nil {
			continue
		}
		if err := handler(vm, value, old); err != nil {
			vm.fw.handleError(err, vm, fmt.Sprintf("callback for watcher %q", key))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
