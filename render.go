package component

import (
	"strings"

	"go.uber.org/zap"
)

// DefaultSlot names content passed without a slot attribute.
const DefaultSlot = "default"

func initRender(vm *Instance) error {
	vm.vnode = vm.options.ParentVnode()
	vm.rendered = nil
	var renderContext *Instance
	if vm.vnode != nil {
		renderContext = vm.vnode.Context
	}
	vm.slots = resolveSlots(vm.options.RenderChildren(), renderContext)
	return nil
}

// resolveSlots groups children by slot name. Named slots are honored only
// for children compiled in the same context as the placeholder.
// Whitespace-only default content is dropped.
func resolveSlots(children []*VNode, context *Instance) map[string][]*VNode {
	if len(children) == 0 {
		return map[string][]*VNode{}
	}
	slots := map[string][]*VNode{}
	for _, child := range children {
		if child == nil {
			continue
		}
		name := DefaultSlot
		if slot, ok := child.Data["slot"].(string); ok && slot != "" && child.Context == context {
			name = slot
		}
		slots[name] = append(slots[name], child)
	}
	if isWhitespaceSlot(slots[DefaultSlot]) {
		delete(slots, DefaultSlot)
	}
	return slots
}

func isWhitespaceSlot(nodes []*VNode) bool {
	for _, node := range nodes {
		if node.Tag != "" || strings.TrimSpace(node.Text) != "" {
			return false
		}
	}
	return true
}

// mountComponent is the default mounter: beforeMount, render, mounted. Only
// root instances get mounted here; the renderer mounts child components.
func mountComponent(vm *Instance, el string) error {
	vm.el = el
	render := vm.options.Render()
	if render == nil {
		vm.fw.warnComponent(vm, "failed to mount component: render function not defined")
		render = func(*Instance) (*VNode, error) { return &VNode{}, nil }
	}

	hooks := vm.fw.collaborators.Hooks
	hooks.CallHook(vm, HookBeforeMount)

	vnode, err := render(vm)
	if err != nil {
		vm.fw.handleError(err, vm, "render")
		vnode = vm.rendered
	}
	vm.rendered = vnode

	if vm.vnode == nil {
		vm.isMounted = true
		hooks.CallHook(vm, HookMounted)
	}
	vm.fw.cfg.logger.Debug("component mounted",
		zap.Int("uid", vm.uid),
		zap.String("el", el))
	return nil
}
