package component

// Initializer prepares one concern of a new instance.
type Initializer interface {
	Init(vm *Instance) error
}

// InitializerFunc adapts a function to Initializer.
type InitializerFunc func(vm *Instance) error

// Init implements Initializer.
func (f InitializerFunc) Init(vm *Instance) error {
	if f == nil {
		return nil
	}
	return f(vm)
}

// HookCaller dispatches lifecycle hooks.
type HookCaller interface {
	CallHook(vm *Instance, hook Hook)
}

// HookCallerFunc adapts a function to HookCaller.
type HookCallerFunc func(vm *Instance, hook Hook)

// CallHook implements HookCaller.
func (f HookCallerFunc) CallHook(vm *Instance, hook Hook) {
	if f != nil {
		f(vm, hook)
	}
}

// Mounter mounts an instance onto a target.
type Mounter interface {
	Mount(vm *Instance, el string) error
}

// MounterFunc adapts a function to Mounter.
type MounterFunc func(vm *Instance, el string) error

// Mount implements Mounter.
func (f MounterFunc) Mount(vm *Instance, el string) error {
	if f == nil {
		return nil
	}
	return f(vm, el)
}

// Collaborators are the concerns invoked while an instance initializes, in
// this order: Proxy (development only), Lifecycle, Events, Render,
// beforeCreate, Injections, State, Provide, created, then Mounter when the
// options carry an el target.
type Collaborators struct {
	Proxy      Initializer
	Lifecycle  Initializer
	Events     Initializer
	Render     Initializer
	Injections Initializer
	State      Initializer
	Provide    Initializer
	Hooks      HookCaller
	Mounter    Mounter
	Accessors  AccessorInstaller
}

func defaultCollaborators(fw *Framework) Collaborators {
	return Collaborators{
		Proxy:      InitializerFunc(initProxy),
		Lifecycle:  InitializerFunc(initLifecycle),
		Events:     InitializerFunc(initEvents),
		Render:     InitializerFunc(initRender),
		Injections: InitializerFunc(initInjections),
		State:      InitializerFunc(initState),
		Provide:    InitializerFunc(initProvide),
		Hooks:      HookCallerFunc(callHook),
		Mounter:    MounterFunc(mountComponent),
		Accessors:  frameworkAccessors{fw: fw},
	}
}

// override replaces the fields set on o.
func (c Collaborators) override(o Collaborators) Collaborators {
	if o.Proxy != nil {
		c.Proxy = o.Proxy
	}
	if o.Lifecycle != nil {
		c.Lifecycle = o.Lifecycle
	}
	if o.Events != nil {
		c.Events = o.Events
	}
	if o.Render != nil {
		c.Render = o.Render
	}
	if o.Injections != nil {
		c.Injections = o.Injections
	}
	if o.State != nil {
		c.State = o.State
	}
	if o.Provide != nil {
		c.Provide = o.Provide
	}
	if o.Hooks != nil {
		c.Hooks = o.Hooks
	}
	if o.Mounter != nil {
		c.Mounter = o.Mounter
	}
	if o.Accessors != nil {
		c.Accessors = o.Accessors
	}
	return c
}

// Perf records init timing marks. Calls are made only when performance is
// enabled outside production.
type Perf interface {
	Mark(label string)
	Measure(name, startLabel, endLabel string)
}
