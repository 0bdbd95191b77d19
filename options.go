package component

import (
	"reflect"
	"sort"
)

// Option group keys understood by the default merge policy.
const (
	KeyName            = "name"
	KeyProps           = "props"
	KeyPropsData       = "propsData"
	KeyComputed        = "computed"
	KeyMethods         = "methods"
	KeyData            = "data"
	KeyWatch           = "watch"
	KeyComponents      = "components"
	KeyDirectives      = "directives"
	KeyFilters         = "filters"
	KeyProvide         = "provide"
	KeyInject          = "inject"
	KeyEl              = "el"
	KeyRender          = "render"
	KeyStaticRenderFns = "staticRenderFns"
	KeyMixins          = "mixins"
	KeyExtends         = "extends"
	KeyAbstract        = "abstract"
	KeyParent          = "parent"
	KeyFile            = "__file"
	KeyFunctions       = "functions"

	// Keys written by the internal instantiation path.
	KeyParentVnode     = "_parentVnode"
	KeyParentListeners = "_parentListeners"
	KeyRenderChildren  = "_renderChildren"
	KeyComponentTag    = "_componentTag"

	// KeyBase holds the root constructor. Its presence on a child marks the
	// child as already merged, so extends/mixins are not applied twice.
	KeyBase = "_base"
)

// Options is a set of named option groups (props, computed, components, ...).
// The same type describes an extension descriptor, the merged options of a
// constructor and the effective options of an instance.
//
// The *Options pointer is the identity handle used for change detection:
// Set mutates in place and keeps the handle, while merging always produces a
// new value. Function-valued groups are stored behind a funcEntry so that a
// replaced function is seen as a change even when it shares its code with
// the previous one.
type Options struct {
	groups map[string]any
	proto  *Options
}

// NewOptions returns an empty options set.
func NewOptions() *Options {
	return &Options{groups: map[string]any{}}
}

// OptionsFrom builds an options set from a group map. The map is copied.
func OptionsFrom(groups map[string]any) *Options {
	o := &Options{groups: make(map[string]any, len(groups))}
	for key, value := range groups {
		o.groups[key] = boxGroup(value)
	}
	return o
}

// funcEntry gives a function-valued group a pointer identity. Functions are
// not comparable, and two closures of one literal share a code pointer.
type funcEntry struct {
	fn any
}

func boxGroup(value any) any {
	if value == nil {
		return nil
	}
	if _, ok := value.(*funcEntry); ok {
		return value
	}
	if reflect.TypeOf(value).Kind() == reflect.Func {
		return &funcEntry{fn: value}
	}
	return value
}

func unboxGroup(value any) any {
	if entry, ok := value.(*funcEntry); ok {
		return entry.fn
	}
	return value
}

// inherit returns an empty options set whose lookups fall back to o.
func (o *Options) inherit() *Options {
	return &Options{groups: map[string]any{}, proto: o}
}

// With sets key and returns o for chaining.
func (o *Options) With(key string, value any) *Options {
	o.Set(key, value)
	return o
}

// Set stores value under key on o itself.
func (o *Options) Set(key string, value any) {
	if o.groups == nil {
		o.groups = map[string]any{}
	}
	o.groups[key] = boxGroup(value)
}

// Delete removes an own key.
func (o *Options) Delete(key string) {
	if o == nil {
		return
	}
	delete(o.groups, key)
}

// Get returns the value for key, consulting the delegate chain when o does
// not define it.
func (o *Options) Get(key string) (any, bool) {
	for cur := o; cur != nil; cur = cur.proto {
		if value, ok := cur.groups[key]; ok {
			return unboxGroup(value), true
		}
	}
	return nil, false
}

// Own returns the value for key only when o defines it itself.
func (o *Options) Own(key string) (any, bool) {
	if o == nil {
		return nil, false
	}
	value, ok := o.groups[key]
	return unboxGroup(value), ok
}

// ownGroup returns the stored group for key without unwrapping function
// entries. Drift detection compares these.
func (o *Options) ownGroup(key string) (any, bool) {
	if o == nil {
		return nil, false
	}
	value, ok := o.groups[key]
	return value, ok
}

// Has reports whether key resolves through o or its delegates.
func (o *Options) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

// Proto returns the options o delegates to, if any.
func (o *Options) Proto() *Options {
	if o == nil {
		return nil
	}
	return o.proto
}

// Keys returns the own keys of o in sorted order.
func (o *Options) Keys() []string {
	if o == nil {
		return nil
	}
	keys := make([]string, 0, len(o.groups))
	for key := range o.groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// AllKeys returns the own and delegated keys of o in sorted order.
func (o *Options) AllKeys() []string {
	seen := map[string]struct{}{}
	var keys []string
	for cur := o; cur != nil; cur = cur.proto {
		for key := range cur.groups {
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of own keys.
func (o *Options) Len() int {
	if o == nil {
		return 0
	}
	return len(o.groups)
}

// shallowCopy copies the own groups of o. Group values are shared.
func (o *Options) shallowCopy() *Options {
	if o == nil {
		return NewOptions()
	}
	return OptionsFrom(o.groups)
}

// Name returns the component name, inherited through the delegate chain.
func (o *Options) Name() string {
	name, _ := lookup[string](o, KeyName)
	return name
}

// Props returns the declared props.
func (o *Options) Props() Props {
	props, _ := lookup[Props](o, KeyProps)
	return props
}

// PropsData returns the raw prop values passed by the parent.
func (o *Options) PropsData() map[string]any {
	data, _ := lookup[map[string]any](o, KeyPropsData)
	return data
}

// Computed returns the declared computed properties.
func (o *Options) Computed() ComputedSet {
	computed, _ := lookup[ComputedSet](o, KeyComputed)
	return computed
}

// Methods returns the declared methods.
func (o *Options) Methods() Methods {
	methods, _ := lookup[Methods](o, KeyMethods)
	return methods
}

// Data returns the data factory, merged across layers.
func (o *Options) Data() DataFunc {
	fn, _ := lookup[DataFunc](o, KeyData)
	return fn
}

// Watch returns the watchers per key.
func (o *Options) Watch() Watchers {
	watch, _ := lookup[Watchers](o, KeyWatch)
	return watch
}

// Inject returns the normalized injections.
func (o *Options) Inject() Injections {
	inject, _ := lookup[Injections](o, KeyInject)
	return inject
}

// Components returns the component registry.
func (o *Options) Components() *Registry {
	reg, _ := lookup[*Registry](o, KeyComponents)
	return reg
}

// Directives returns the directive registry.
func (o *Options) Directives() *Registry {
	reg, _ := lookup[*Registry](o, KeyDirectives)
	return reg
}

// Filters returns the filter registry.
func (o *Options) Filters() *Registry {
	reg, _ := lookup[*Registry](o, KeyFilters)
	return reg
}

// Functions returns the expression helpers visible to the options.
func (o *Options) Functions() *FunctionRegistry {
	reg, _ := lookup[*FunctionRegistry](o, KeyFunctions)
	return reg
}

// Registry returns the asset registry for kind.
func (o *Options) Registry(kind AssetKind) *Registry {
	reg, _ := lookup[*Registry](o, kind.OptionKey())
	return reg
}

// El returns the mount target selector.
func (o *Options) El() string {
	el, _ := lookup[string](o, KeyEl)
	return el
}

// Render returns the render function.
func (o *Options) Render() RenderFunc {
	fn, _ := lookup[RenderFunc](o, KeyRender)
	return fn
}

// StaticRenderFns returns the render functions of static subtrees.
func (o *Options) StaticRenderFns() []RenderFunc {
	fns, _ := lookup[[]RenderFunc](o, KeyStaticRenderFns)
	return fns
}

// Mixins returns the descriptors applied before the options themselves.
func (o *Options) Mixins() []*Options {
	mixins, _ := lookup[[]*Options](o, KeyMixins)
	return mixins
}

// Abstract reports whether the component is skipped in the parent chain.
func (o *Options) Abstract() bool {
	abstract, _ := lookup[bool](o, KeyAbstract)
	return abstract
}

// Parent returns the parent instance of an instance being created.
func (o *Options) Parent() *Instance {
	parent, _ := lookup[*Instance](o, KeyParent)
	return parent
}

// ParentVnode returns the placeholder node of an internal component.
func (o *Options) ParentVnode() *VNode {
	vnode, _ := lookup[*VNode](o, KeyParentVnode)
	return vnode
}

// ParentListeners returns the listeners attached by the parent.
func (o *Options) ParentListeners() Listeners {
	listeners, _ := lookup[Listeners](o, KeyParentListeners)
	return listeners
}

// RenderChildren returns the slot content passed by the parent.
func (o *Options) RenderChildren() []*VNode {
	children, _ := lookup[[]*VNode](o, KeyRenderChildren)
	return children
}

// ComponentTag returns the tag the parent used for the component.
func (o *Options) ComponentTag() string {
	tag, _ := lookup[string](o, KeyComponentTag)
	return tag
}

// File returns the source file of the component, if known.
func (o *Options) File() string {
	file, _ := lookup[string](o, KeyFile)
	return file
}

// Base returns the root constructor recorded on merged options.
func (o *Options) Base() *Constructor {
	base, _ := lookup[*Constructor](o, KeyBase)
	return base
}

// Hooks returns the handlers merged for a lifecycle hook.
func (o *Options) Hooks(hook Hook) []HookFunc {
	list, _ := lookup[hookList](o, string(hook))
	if len(list) == 0 {
		return nil
	}
	out := make([]HookFunc, 0, len(list))
	for _, entry := range list {
		out = append(out, entry.fn)
	}
	return out
}

func (o *Options) errorCaptured() capturedList {
	list, _ := lookup[capturedList](o, string(HookErrorCaptured))
	return list
}

func lookup[T any](o *Options, key string) (T, bool) {
	var zero T
	value, ok := o.Get(key)
	if !ok || value == nil {
		return zero, false
	}
	typed, ok := value.(T)
	return typed, ok
}

// sameGroup reports whether two option group values are the same value by
// identity. Reference kinds compare by pointer; comparable scalars by value.
// Bare functions never compare equal: a code pointer says nothing about
// which closure it belongs to.
func sameGroup(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Func:
		return false
	case reflect.Map, reflect.Pointer, reflect.Chan, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	}
	if va.Comparable() && vb.Comparable() {
		return va.Equal(vb)
	}
	return false
}

// isUnset treats nil interfaces and typed nil references as absent.
func isUnset(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Pointer, reflect.Func, reflect.Slice, reflect.Interface, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
