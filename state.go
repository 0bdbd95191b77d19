package component

import (
	"reflect"

	"github.com/stoewer/go-strcase"
	"go.uber.org/zap"
)

// initState initializes props, methods, data, computed and watch, in that
// order.
func initState(vm *Instance) error {
	opts := vm.options
	if props := opts.Props(); len(props) > 0 {
		initProps(vm, props)
	}
	if methods := opts.Methods(); len(methods) > 0 {
		initMethods(vm, methods)
	}
	if data := opts.Data(); data != nil {
		initData(vm, data)
	} else {
		vm.data = map[string]any{}
	}
	if computed := opts.Computed(); len(computed) > 0 {
		if err := initComputed(vm, computed); err != nil {
			return err
		}
	}
	if watch := opts.Watch(); len(watch) > 0 {
		vm.watchers = make(Watchers, len(watch))
		for key, handlers := range watch {
			vm.watchers[key] = append([]WatchHandler(nil), handlers...)
		}
	}
	return nil
}

func initProps(vm *Instance, props Props) {
	propsData := vm.options.PropsData()
	vm.props = make(map[string]any, len(props))
	for _, key := range sortedKeys(props) {
		vm.props[key] = validateProp(vm, key, props[key], propsData)
	}
}

// validateProp resolves the value of a prop: boolean casting, defaults and,
// outside production, assertions.
func validateProp(vm *Instance, key string, prop Prop, propsData map[string]any) any {
	value, present := propsData[key]
	if prop.Kind == reflect.Bool {
		if !present && prop.Default == nil {
			value = false
		} else if s, ok := value.(string); ok && (s == "" || s == strcase.KebabCase(key)) {
			value = true
		}
	}
	if value == nil {
		value = propDefault(vm, key, prop)
	}
	if !vm.fw.cfg.production {
		assertProp(vm, key, prop, value, present)
	}
	return value
}

func propDefault(vm *Instance, key string, prop Prop) any {
	switch def := prop.Default.(type) {
	case nil:
		return nil
	case func() any:
		return def()
	case func(*Instance) any:
		return def(vm)
	}
	kind := reflect.ValueOf(prop.Default).Kind()
	if kind == reflect.Map || kind == reflect.Slice {
		vm.fw.warnComponent(vm, "invalid default value for prop: map and slice defaults must use a factory function",
			zap.String("prop", key))
	}
	return prop.Default
}

func assertProp(vm *Instance, key string, prop Prop, value any, present bool) {
	if prop.Required && !present {
		vm.fw.warnComponent(vm, "missing required prop", zap.String("prop", key))
		return
	}
	if value == nil {
		return
	}
	if prop.Kind != reflect.Invalid {
		if got := reflect.ValueOf(value).Kind(); got != prop.Kind {
			vm.fw.warnComponent(vm, "invalid prop: type check failed",
				zap.String("prop", key),
				zap.Stringer("expected", prop.Kind),
				zap.Stringer("got", got))
			return
		}
	}
	if prop.Validator != nil && !prop.Validator(value) {
		vm.fw.warnComponent(vm, "invalid prop: custom validator check failed", zap.String("prop", key))
	}
}

func initMethods(vm *Instance, methods Methods) {
	vm.methods = make(Methods, len(methods))
	for _, key := range sortedKeys(methods) {
		method := methods[key]
		if method == nil {
			vm.fw.warnComponent(vm, "method has an undefined value in the component definition",
				zap.String("method", key))
			continue
		}
		if _, ok := vm.props[key]; ok {
			vm.fw.warnComponent(vm, "method has already been defined as a prop", zap.String("method", key))
		}
		vm.methods[key] = method
	}
}

// initData calls the data factory. A failing factory is reported and leaves
// the instance with empty data.
func initData(vm *Instance, fn DataFunc) {
	data, err := fn(vm)
	if err != nil {
		vm.fw.handleError(err, vm, "data()")
		data = nil
	}
	if data == nil {
		data = map[string]any{}
	}
	vm.data = data
	for _, key := range sortedKeys(data) {
		if _, ok := vm.methods[key]; ok {
			vm.fw.warnComponent(vm, "method has already been defined as a data property", zap.String("method", key))
		}
		if _, ok := vm.props[key]; ok {
			vm.fw.warnComponent(vm, "data property is already declared as a prop, use the prop default value instead",
				zap.String("data", key))
		}
	}
}

// initComputed defines instance-level accessors for computed properties the
// constructor prototype does not already define.
func initComputed(vm *Instance, computed ComputedSet) error {
	for _, key := range sortedKeys(computed) {
		if _, ok := vm.ctor.proto.Lookup(key); ok {
			continue
		}
		if _, ok := vm.data[key]; ok {
			vm.fw.warnComponent(vm, "computed property is already defined in data", zap.String("computed", key))
			continue
		}
		if _, ok := vm.props[key]; ok {
			vm.fw.warnComponent(vm, "computed property is already defined as a prop", zap.String("computed", key))
			continue
		}
		accessor, err := vm.fw.computedAccessor(key, computed[key], vm.options.Functions())
		if err != nil {
			return bindEvaluation(err, vm.ctor, vm, key)
		}
		if vm.computed == nil {
			vm.computed = map[string]Accessor{}
		}
		vm.computed[key] = accessor
	}
	return nil
}
