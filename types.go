package component

import "reflect"

// Hook names a lifecycle hook. The hook name doubles as its option key.
type Hook string

const (
	HookBeforeCreate   Hook = "beforeCreate"
	HookCreated        Hook = "created"
	HookBeforeMount    Hook = "beforeMount"
	HookMounted        Hook = "mounted"
	HookBeforeUpdate   Hook = "beforeUpdate"
	HookUpdated        Hook = "updated"
	HookBeforeDestroy  Hook = "beforeDestroy"
	HookDestroyed      Hook = "destroyed"
	HookActivated      Hook = "activated"
	HookDeactivated    Hook = "deactivated"
	HookServerPrefetch Hook = "serverPrefetch"
	HookErrorCaptured  Hook = "errorCaptured"
)

// LifecycleHooks lists the hooks merged by concatenation.
var LifecycleHooks = []Hook{
	HookBeforeCreate,
	HookCreated,
	HookBeforeMount,
	HookMounted,
	HookBeforeUpdate,
	HookUpdated,
	HookBeforeDestroy,
	HookDestroyed,
	HookActivated,
	HookDeactivated,
	HookServerPrefetch,
}

func isLifecycleHook(key string) bool {
	for _, hook := range LifecycleHooks {
		if string(hook) == key {
			return true
		}
	}
	return false
}

// HookFunc runs for a lifecycle hook. Errors are routed to errorCaptured
// hooks and the framework error handler; they never abort initialization.
type HookFunc func(vm *Instance) error

// ErrorCapturedFunc receives errors raised by descendants. Returning false
// stops further propagation.
type ErrorCapturedFunc func(err error, vm *Instance, info string) bool

type hookEntry struct {
	fn HookFunc
}

// hookList keeps handler identity across merges so repeated folding of the
// same list can be deduplicated.
type hookList []*hookEntry

type capturedEntry struct {
	fn ErrorCapturedFunc
}

type capturedList []*capturedEntry

// Prop declares a component property.
type Prop struct {
	// Kind restricts the accepted value kind. reflect.Invalid accepts any.
	Kind reflect.Kind
	// Default is used when the prop is absent. A func() any is called per
	// instance.
	Default   any
	Required  bool
	Validator func(value any) bool
}

type Props map[string]Prop

// Computed declares a derived property. Get takes precedence over Expr.
type Computed struct {
	Get func(vm *Instance) (any, error)
	Set func(vm *Instance, value any) error
	// Expr is evaluated against the instance state (props, injected, data).
	Expr string
	// Engine selects the evaluator for Expr: "expr" (default), "cel" or "js".
	Engine string
}

type ComputedSet map[string]Computed

// Method is an instance method.
type Method func(vm *Instance, args ...any) (any, error)

type Methods map[string]Method

// DataFunc produces per-instance data. It is also the shape of provide.
type DataFunc func(vm *Instance) (map[string]any, error)

// Injection resolves a value provided by an ancestor.
type Injection struct {
	From string
	// Default is used when no ancestor provides From. A func(*Instance) any
	// is called per instance.
	Default any
}

type Injections map[string]Injection

// WatchHandler runs when a watched key changes through Instance.Set.
type WatchHandler func(vm *Instance, newValue, oldValue any) error

type Watchers map[string][]WatchHandler

// DirectiveBinding carries the arguments of a directive invocation.
type DirectiveBinding struct {
	Name      string
	Value     any
	OldValue  any
	Arg       string
	Modifiers map[string]bool
}

// DirectiveHook runs when a directive binds to or updates an element.
type DirectiveHook func(el any, binding DirectiveBinding, vnode *VNode) error

// Directive groups directive hooks. A bare DirectiveHook registers as Bind
// and Update.
type Directive struct {
	Bind             DirectiveHook
	Inserted         DirectiveHook
	Update           DirectiveHook
	ComponentUpdated DirectiveHook
	Unbind           DirectiveHook
}

// Filter transforms a value for display.
type Filter func(value any, args ...any) any

// RenderFunc produces the virtual node tree of an instance.
type RenderFunc func(vm *Instance) (*VNode, error)

// Listener handles an instance event.
type Listener func(args ...any) error

// Listeners maps event names to their listeners.
type Listeners map[string][]Listener

// VNode is the subset of a virtual node the core reads.
type VNode struct {
	Tag               string
	Key               string
	Text              string
	Data              map[string]any
	Children          []*VNode
	Context           *Instance
	ComponentOptions  *VNodeComponentOptions
	ComponentInstance *Instance
}

// VNodeComponentOptions is the component payload attached to a placeholder
// node by the renderer.
type VNodeComponentOptions struct {
	Ctor      *Constructor
	PropsData map[string]any
	Listeners Listeners
	Children  []*VNode
	Tag       string
}

// InternalOptions is the payload of a renderer-driven instantiation.
type InternalOptions struct {
	Parent          *Instance
	ParentVnode     *VNode
	Render          RenderFunc
	StaticRenderFns []RenderFunc
}

// AssetKind names one of the asset registries.
type AssetKind string

const (
	AssetComponent AssetKind = "component"
	AssetDirective AssetKind = "directive"
	AssetFilter    AssetKind = "filter"
)

// AssetKinds lists the registries every constructor carries.
var AssetKinds = []AssetKind{AssetComponent, AssetDirective, AssetFilter}

// OptionKey returns the option group holding the registry for k.
func (k AssetKind) OptionKey() string {
	return string(k) + "s"
}

func isAssetKey(key string) bool {
	for _, kind := range AssetKinds {
		if kind.OptionKey() == key {
			return true
		}
	}
	return false
}
