package component

import (
	"errors"
	"strings"
)

type listenerEntry struct {
	fn   Listener
	once bool
}

// initEvents prepares the event registry and attaches the listeners the
// parent declared on the component placeholder.
func initEvents(vm *Instance) error {
	vm.events = map[string][]*listenerEntry{}
	vm.hasHookEvent = false
	for _, event := range sortedKeys(vm.options.ParentListeners()) {
		for _, fn := range vm.options.ParentListeners()[event] {
			vm.On(event, fn)
		}
	}
	return nil
}

// On registers fn for event and returns a function removing it. Listeners
// on "hook:<name>" run after the handlers of that lifecycle hook.
func (vm *Instance) On(event string, fn Listener) func() {
	return vm.addListener(event, fn, false)
}

// Once registers fn to run on the next emission of event only.
func (vm *Instance) Once(event string, fn Listener) func() {
	return vm.addListener(event, fn, true)
}

func (vm *Instance) addListener(event string, fn Listener, once bool) func() {
	if fn == nil {
		return func() {}
	}
	if vm.events == nil {
		vm.events = map[string][]*listenerEntry{}
	}
	entry := &listenerEntry{fn: fn, once: once}
	vm.events[event] = append(vm.events[event], entry)
	if strings.HasPrefix(event, "hook:") {
		vm.hasHookEvent = true
	}
	return func() { vm.removeListener(event, entry) }
}

func (vm *Instance) removeListener(event string, target *listenerEntry) {
	entries := vm.events[event]
	for i, entry := range entries {
		if entry == target {
			vm.events[event] = append(entries[:i:i], entries[i+1:]...)
			return
		}
	}
}

// Off removes every listener of event. An empty event removes all
// listeners.
func (vm *Instance) Off(event string) {
	if event == "" {
		vm.events = map[string][]*listenerEntry{}
		return
	}
	delete(vm.events, event)
}

// Emit calls the listeners of event in registration order and joins their
// errors.
func (vm *Instance) Emit(event string, args ...any) error {
	entries := append([]*listenerEntry(nil), vm.events[event]...)
	var errs []error
	for _, entry := range entries {
		if entry.once {
			vm.removeListener(event, entry)
		}
		if err := entry.fn(args...); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
