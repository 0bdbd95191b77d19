package component

import (
	"go.uber.org/zap"
)

// initInjections resolves inject against the provided values of vm's
// ancestors, nearest first.
func initInjections(vm *Instance) error {
	inject := vm.options.Inject()
	if len(inject) == 0 {
		return nil
	}
	vm.injected = make(map[string]any, len(inject))
	for _, key := range sortedKeys(inject) {
		injection := inject[key]
		from := injection.From
		if from == "" {
			from = key
		}
		if value, ok := resolveProvided(vm, from); ok {
			vm.injected[key] = value
			continue
		}
		if injection.Default != nil {
			vm.injected[key] = injectionDefault(vm, injection.Default)
			continue
		}
		vm.fw.warnComponent(vm, "injection not found", zap.String("injection", key))
	}
	return nil
}

func resolveProvided(vm *Instance, key string) (any, bool) {
	for source := vm; source != nil; source = source.parent {
		if value, ok := source.provided[key]; ok {
			return value, true
		}
	}
	return nil, false
}

func injectionDefault(vm *Instance, def any) any {
	switch fn := def.(type) {
	case func(*Instance) any:
		return fn(vm)
	case func() any:
		return fn()
	}
	return def
}

// initProvide evaluates provide once state is available.
func initProvide(vm *Instance) error {
	provide, _ := lookup[DataFunc](vm.options, KeyProvide)
	if provide == nil {
		return nil
	}
	provided, err := provide(vm)
	if err != nil {
		return err
	}
	vm.provided = provided
	return nil
}
