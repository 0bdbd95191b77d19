package component

import (
	"fmt"

	"go.uber.org/zap"
)

// initLifecycle links vm into the instance tree. Abstract parents are
// skipped.
func initLifecycle(vm *Instance) error {
	parent := vm.options.Parent()
	if parent != nil && !vm.options.Abstract() {
		for parent.options.Abstract() && parent.parent != nil {
			parent = parent.parent
		}
		parent.children = append(parent.children, vm)
	}

	vm.parent = parent
	vm.root = vm
	if parent != nil {
		vm.root = parent.root
	}
	vm.children = nil
	vm.refs = map[string]any{}
	vm.isMounted = false
	return nil
}

// callHook runs the handlers merged for hook. Handler errors are reported
// and do not stop the remaining handlers.
func callHook(vm *Instance, hook Hook) {
	for _, handler := range vm.options.Hooks(hook) {
		if handler == nil {
			continue
		}
		if err := handler(vm); err != nil {
			vm.fw.handleError(err, vm, fmt.Sprintf("%s hook", hook))
		}
	}
	if vm.hasHookEvent {
		if err := vm.Emit("hook:" + string(hook)); err != nil {
			vm.fw.handleError(err, vm, fmt.Sprintf("hook:%s event handler", hook))
		}
	}
}

// handleError offers err to the errorCaptured hooks of every ancestor,
// nearest first. A hook returning false stops propagation. Unclaimed errors
// go to the configured error handler, or the log.
func (fw *Framework) handleError(err error, vm *Instance, info string) {
	if vm != nil {
		for cur := vm.parent; cur != nil; cur = cur.parent {
			for _, entry := range cur.options.errorCaptured() {
				if entry.fn == nil {
					continue
				}
				if !fw.invokeErrorCaptured(entry.fn, err, vm, cur, info) {
					return
				}
			}
		}
	}
	fw.globalHandleError(err, vm, info)
}

// invokeErrorCaptured reports whether propagation continues. A panicking
// errorCaptured hook is itself reported to the global handler.
func (fw *Framework) invokeErrorCaptured(fn ErrorCapturedFunc, err error, vm, owner *Instance, info string) (propagate bool) {
	defer func() {
		if r := recover(); r != nil {
			fw.globalHandleError(fmt.Errorf("component: errorCaptured hook panicked: %v", r), owner, "errorCaptured hook")
			propagate = true
		}
	}()
	return fn(err, vm, info)
}

func (fw *Framework) globalHandleError(err error, vm *Instance, info string) {
	if fw.cfg.errorHandler != nil {
		fw.cfg.errorHandler(err, vm, info)
		return
	}
	fw.cfg.logger.Error("component error",
		zap.String("info", info),
		zap.String("component", FormatComponentName(vm, true)),
		zap.Error(err))
}
