package component

import (
	"fmt"

	"github.com/goliatone/go-component/pkg/activity"
)

// New creates an instance of c. opts are merged over the resolved
// constructor options; nil is treated as empty.
func (c *Constructor) New(opts *Options) (*Instance, error) {
	vm := &Instance{fw: c.fw, ctor: c}
	if err := vm.init(opts, nil); err != nil {
		return nil, err
	}
	return vm, nil
}

// NewInternal creates an instance on behalf of the renderer. The options
// delegate to the constructor options without a merge; the payload is
// trusted to be well formed.
func (c *Constructor) NewInternal(internal InternalOptions) (*Instance, error) {
	vm := &Instance{fw: c.fw, ctor: c}
	if err := vm.init(nil, &internal); err != nil {
		return nil, err
	}
	return vm, nil
}

func (vm *Instance) init(opts *Options, internal *InternalOptions) error {
	fw := vm.fw
	vm.uid = fw.nextUID
	fw.nextUID++

	var startTag, endTag string
	perf := fw.perfEnabled()
	if perf {
		startTag = fmt.Sprintf("component-perf-start:%d", vm.uid)
		endTag = fmt.Sprintf("component-perf-end:%d", vm.uid)
		fw.cfg.perf.Mark(startTag)
	}

	if internal != nil {
		vm.initInternalComponent(*internal)
	} else {
		resolved, err := vm.ctor.ResolveOptions()
		if err != nil {
			return err
		}
		if opts == nil {
			opts = NewOptions()
		}
		merged, err := fw.merge(resolved, opts, vm)
		if err != nil {
			return err
		}
		vm.options = merged
	}

	c := fw.collaborators
	vm.renderProxy = vm
	if !fw.cfg.production {
		if err := c.Proxy.Init(vm); err != nil {
			return err
		}
	}
	vm.self = vm

	for _, step := range []Initializer{c.Lifecycle, c.Events, c.Render} {
		if err := step.Init(vm); err != nil {
			return err
		}
	}
	c.Hooks.CallHook(vm, HookBeforeCreate)
	// Injections resolve before state so data can read them; provide runs
	// after state so it can read data and computed values.
	for _, step := range []Initializer{c.Injections, c.State, c.Provide} {
		if err := step.Init(vm); err != nil {
			return err
		}
	}
	c.Hooks.CallHook(vm, HookCreated)

	if perf {
		vm.name = FormatComponentName(vm, false)
		fw.cfg.perf.Mark(endTag)
		fw.cfg.perf.Measure(fmt.Sprintf("component %s init", vm.name), startTag, endTag)
	}

	fw.emit(activity.BuildInstanceCreatedEvent(activity.ComponentEventInput{
		CID:  vm.ctor.id,
		UID:  vm.uid,
		Name: vm.options.Name(),
	}))

	if el := vm.options.El(); el != "" {
		return vm.Mount(el)
	}
	return nil
}

// initInternalComponent builds options delegating to the constructor's
// current options and copies the renderer payload onto them.
func (vm *Instance) initInternalComponent(internal InternalOptions) {
	opts := vm.ctor.options.inherit()
	vm.options = opts

	parentVnode := internal.ParentVnode
	opts.Set(KeyParent, internal.Parent)
	opts.Set(KeyParentVnode, parentVnode)

	var vnodeOptions VNodeComponentOptions
	if parentVnode != nil && parentVnode.ComponentOptions != nil {
		vnodeOptions = *parentVnode.ComponentOptions
	}
	opts.Set(KeyPropsData, vnodeOptions.PropsData)
	opts.Set(KeyParentListeners, vnodeOptions.Listeners)
	opts.Set(KeyRenderChildren, vnodeOptions.Children)
	opts.Set(KeyComponentTag, vnodeOptions.Tag)

	if internal.Render != nil {
		opts.Set(KeyRender, internal.Render)
		opts.Set(KeyStaticRenderFns, internal.StaticRenderFns)
	}
}
