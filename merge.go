package component

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-component/layering"
	"go.uber.org/zap"
)

// MergePolicy combines parent options with child options. vm is nil when
// merging for a constructor and set when merging for an instance. The result
// is always a new Options value.
type MergePolicy interface {
	Merge(parent, child *Options, vm *Instance) (*Options, error)
}

// MergeFunc adapts a function to MergePolicy.
type MergeFunc func(parent, child *Options, vm *Instance) (*Options, error)

// Merge implements MergePolicy.
func (f MergeFunc) Merge(parent, child *Options, vm *Instance) (*Options, error) {
	return f(parent, child, vm)
}

// Strategy merges a single option group. parent or child may be nil.
type Strategy func(parent, child any, vm *Instance, key string) (any, error)

type mergePolicy struct {
	logger       *zap.Logger
	production   bool
	validateName NameValidator
	strategies   map[string]Strategy
}

// DefaultMergePolicy returns the built-in merge policy.
func DefaultMergePolicy(logger *zap.Logger, production bool) MergePolicy {
	return newMergePolicy(logger, production, ValidateComponentName, nil)
}

func newMergePolicy(logger *zap.Logger, production bool, validateName NameValidator, overrides map[string]Strategy) *mergePolicy {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validateName == nil {
		validateName = ValidateComponentName
	}
	p := &mergePolicy{
		logger:       logger,
		production:   production,
		validateName: validateName,
		strategies:   map[string]Strategy{},
	}
	for _, hook := range LifecycleHooks {
		p.strategies[string(hook)] = mergeHooks
	}
	p.strategies[string(HookErrorCaptured)] = mergeErrorCaptured
	for _, kind := range AssetKinds {
		p.strategies[kind.OptionKey()] = mergeAssets
	}
	p.strategies[KeyEl] = p.mergeCreationOnly
	p.strategies[KeyPropsData] = p.mergeCreationOnly
	p.strategies[KeyData] = p.mergeData
	p.strategies[KeyProvide] = p.mergeData
	p.strategies[KeyWatch] = mergeWatch
	p.strategies[KeyProps] = mergeProps
	p.strategies[KeyMethods] = mergeMethods
	p.strategies[KeyInject] = mergeInject
	p.strategies[KeyComputed] = mergeComputed
	p.strategies[KeyFunctions] = mergeFunctions
	for key, strategy := range overrides {
		if strategy != nil {
			p.strategies[key] = strategy
		}
	}
	return p
}

func (p *mergePolicy) warn(msg string, fields ...zap.Field) {
	if p.production {
		return
	}
	p.logger.Warn(msg, fields...)
}

// Merge implements MergePolicy.
func (p *mergePolicy) Merge(parent, child *Options, vm *Instance) (*Options, error) {
	if parent == nil {
		parent = NewOptions()
	}
	if child == nil {
		child = NewOptions()
	}
	if !p.production {
		p.checkComponents(child)
	}

	// Merged options carry _base; their extends and mixins are already
	// applied.
	if _, merged := child.Get(KeyBase); !merged {
		if raw, ok := child.Get(KeyExtends); ok && !isUnset(raw) {
			extends, err := asOptions(raw)
			if err != nil {
				return nil, &MergeError{Key: KeyExtends, Err: err}
			}
			if parent, err = p.Merge(parent, extends, vm); err != nil {
				return nil, err
			}
		}
		if raw, ok := child.Get(KeyMixins); ok && !isUnset(raw) {
			mixins, err := asOptionsList(raw)
			if err != nil {
				return nil, &MergeError{Key: KeyMixins, Err: err}
			}
			for _, mixin := range mixins {
				if parent, err = p.Merge(parent, mixin, vm); err != nil {
					return nil, err
				}
			}
		}
	}

	out := NewOptions()
	for _, key := range parent.AllKeys() {
		if err := p.mergeField(out, parent, child, vm, key); err != nil {
			return nil, err
		}
	}
	for _, key := range child.AllKeys() {
		if parent.Has(key) {
			continue
		}
		if err := p.mergeField(out, parent, child, vm, key); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (p *mergePolicy) mergeField(out, parent, child *Options, vm *Instance, key string) error {
	strategy, ok := p.strategies[key]
	if !ok {
		strategy = mergeDefault
	}
	parentValue, _ := parent.Get(key)
	childValue, _ := child.Get(key)
	value, err := strategy(parentValue, childValue, vm, key)
	if err != nil {
		var mergeErr *MergeError
		if errors.As(err, &mergeErr) {
			return err
		}
		return &MergeError{Key: key, Err: err}
	}
	if value != nil {
		out.Set(key, value)
	}
	return nil
}

func (p *mergePolicy) checkComponents(child *Options) {
	raw, ok := child.Get(KeyComponents)
	if !ok || isUnset(raw) {
		return
	}
	var names []string
	switch components := raw.(type) {
	case *Registry:
		names = components.OwnNames()
	case map[string]any:
		names = sortedKeys(components)
	case map[string]*Constructor:
		names = sortedKeys(components)
	}
	for _, name := range names {
		if err := p.validateName(name); err != nil {
			p.warn("invalid component name", zap.String("name", name), zap.Error(err))
		}
	}
}

func asOptions(raw any) (*Options, error) {
	switch v := raw.(type) {
	case *Options:
		return v, nil
	case *Constructor:
		return v.options, nil
	}
	return nil, invalidOption("*Options or *Constructor", raw)
}

func asOptionsList(raw any) ([]*Options, error) {
	switch v := raw.(type) {
	case []*Options:
		return v, nil
	case []any:
		out := make([]*Options, 0, len(v))
		for _, item := range v {
			options, err := asOptions(item)
			if err != nil {
				return nil, err
			}
			out = append(out, options)
		}
		return out, nil
	}
	return nil, invalidOption("[]*Options", raw)
}

func mergeDefault(parent, child any, _ *Instance, _ string) (any, error) {
	if isUnset(child) {
		return parent, nil
	}
	return child, nil
}

func (p *mergePolicy) mergeCreationOnly(parent, child any, vm *Instance, key string) (any, error) {
	if vm == nil && !isUnset(child) {
		p.warn("option can only be used during instance creation with new", zap.String("option", key))
	}
	return mergeDefault(parent, child, vm, key)
}

// mergeData merges data and provide. The result is a function that layers the
// child's values over the parent's when invoked. A constructor-level data map
// would be shared by every instance, so it is rejected.
func (p *mergePolicy) mergeData(parent, child any, vm *Instance, key string) (any, error) {
	if vm == nil && key == KeyData && !isUnset(child) {
		if _, ok := child.(map[string]any); ok {
			p.warn("option should be a function that returns a per-instance value",
				zap.String("option", key))
			return parent, nil
		}
	}
	childFn, err := asDataFunc(child)
	if err != nil {
		return nil, err
	}
	parentFn, err := asDataFunc(parent)
	if err != nil {
		return nil, err
	}
	if vm == nil {
		if childFn == nil {
			return nilIfUnsetData(parentFn), nil
		}
		if parentFn == nil {
			return childFn, nil
		}
	}
	if childFn == nil && parentFn == nil {
		return nil, nil
	}
	return DataFunc(func(vm *Instance) (map[string]any, error) {
		var childData, parentData map[string]any
		var err error
		if childFn != nil {
			if childData, err = childFn(vm); err != nil {
				return nil, err
			}
		}
		if parentFn != nil {
			if parentData, err = parentFn(vm); err != nil {
				return nil, err
			}
		}
		if childData == nil {
			return parentData, nil
		}
		return layering.MergeLayers(childData, parentData), nil
	}), nil
}

func nilIfUnsetData(fn DataFunc) any {
	if fn == nil {
		return nil
	}
	return fn
}

func asDataFunc(raw any) (DataFunc, error) {
	if isUnset(raw) {
		return nil, nil
	}
	switch v := raw.(type) {
	case DataFunc:
		return v, nil
	case func(*Instance) (map[string]any, error):
		return v, nil
	case map[string]any:
		return func(*Instance) (map[string]any, error) { return v, nil }, nil
	}
	return nil, invalidOption("DataFunc", raw)
}

func mergeHooks(parent, child any, _ *Instance, _ string) (any, error) {
	childList, err := asHookList(child)
	if err != nil {
		return nil, err
	}
	parentList, err := asHookList(parent)
	if err != nil {
		return nil, err
	}
	if childList == nil {
		if parentList == nil {
			return nil, nil
		}
		return parentList, nil
	}
	merged := make(hookList, 0, len(parentList)+len(childList))
	merged = append(merged, parentList...)
	merged = append(merged, childList...)
	return dedupeHooks(merged), nil
}

func asHookList(raw any) (hookList, error) {
	if isUnset(raw) {
		return nil, nil
	}
	switch v := raw.(type) {
	case hookList:
		return v, nil
	case HookFunc:
		return hookList{{fn: v}}, nil
	case func(*Instance) error:
		return hookList{{fn: v}}, nil
	case []HookFunc:
		list := make(hookList, 0, len(v))
		for _, fn := range v {
			if fn != nil {
				list = append(list, &hookEntry{fn: fn})
			}
		}
		return list, nil
	}
	return nil, invalidOption("HookFunc or []HookFunc", raw)
}

func dedupeHooks(list hookList) hookList {
	seen := make(map[*hookEntry]struct{}, len(list))
	out := make(hookList, 0, len(list))
	for _, entry := range list {
		if _, ok := seen[entry]; ok {
			continue
		}
		seen[entry] = struct{}{}
		out = append(out, entry)
	}
	return out
}

func mergeErrorCaptured(parent, child any, _ *Instance, _ string) (any, error) {
	childList, err := asCapturedList(child)
	if err != nil {
		return nil, err
	}
	parentList, err := asCapturedList(parent)
	if err != nil {
		return nil, err
	}
	if childList == nil {
		if parentList == nil {
			return nil, nil
		}
		return parentList, nil
	}
	seen := map[*capturedEntry]struct{}{}
	merged := make(capturedList, 0, len(parentList)+len(childList))
	for _, entry := range append(append(capturedList{}, parentList...), childList...) {
		if _, ok := seen[entry]; ok {
			continue
		}
		seen[entry] = struct{}{}
		merged = append(merged, entry)
	}
	return merged, nil
}

func asCapturedList(raw any) (capturedList, error) {
	if isUnset(raw) {
		return nil, nil
	}
	switch v := raw.(type) {
	case capturedList:
		return v, nil
	case ErrorCapturedFunc:
		return capturedList{{fn: v}}, nil
	case func(error, *Instance, string) bool:
		return capturedList{{fn: v}}, nil
	case []ErrorCapturedFunc:
		list := make(capturedList, 0, len(v))
		for _, fn := range v {
			if fn != nil {
				list = append(list, &capturedEntry{fn: fn})
			}
		}
		return list, nil
	}
	return nil, invalidOption("ErrorCapturedFunc", raw)
}

// mergeAssets layers the child's own assets over a registry delegating to
// the parent's, so later registrations on an ancestor stay visible.
func mergeAssets(parent, child any, _ *Instance, key string) (any, error) {
	var parentReg *Registry
	if !isUnset(parent) {
		reg, ok := parent.(*Registry)
		if !ok {
			return nil, invalidOption("*Registry", parent)
		}
		parentReg = reg
	}
	out := NewRegistry(parentReg)
	if isUnset(child) {
		return out, nil
	}
	register := func(id string, value any) error {
		if key == AssetDirective.OptionKey() {
			directive, err := normalizeDirective(value)
			if err != nil {
				return fmt.Errorf("directive %q: %w", id, err)
			}
			value = directive
		}
		out.Register(id, value)
		return nil
	}
	switch v := child.(type) {
	case *Registry:
		for _, id := range v.OwnNames() {
			value, _ := v.Own(id)
			if err := register(id, value); err != nil {
				return nil, err
			}
		}
	case map[string]any:
		for _, id := range sortedKeys(v) {
			if err := register(id, v[id]); err != nil {
				return nil, err
			}
		}
	case map[string]*Constructor:
		for _, id := range sortedKeys(v) {
			out.Register(id, v[id])
		}
	case map[string]Filter:
		for _, id := range sortedKeys(v) {
			out.Register(id, v[id])
		}
	case map[string]Directive:
		for _, id := range sortedKeys(v) {
			out.Register(id, v[id])
		}
	default:
		return nil, invalidOption("*Registry or map[string]any", child)
	}
	return out, nil
}

// normalizeDirective turns a bare hook into a Directive bound on bind and
// update.
func normalizeDirective(def any) (Directive, error) {
	switch v := def.(type) {
	case Directive:
		return v, nil
	case *Directive:
		if v == nil {
			return Directive{}, invalidOption("Directive", def)
		}
		return *v, nil
	case DirectiveHook:
		return Directive{Bind: v, Update: v}, nil
	case func(any, DirectiveBinding, *VNode) error:
		return Directive{Bind: v, Update: v}, nil
	}
	return Directive{}, invalidOption("Directive or DirectiveHook", def)
}

func mergeWatch(parent, child any, _ *Instance, _ string) (any, error) {
	childWatch, err := asWatchers(child)
	if err != nil {
		return nil, err
	}
	parentWatch, err := asWatchers(parent)
	if err != nil {
		return nil, err
	}
	if childWatch == nil {
		if parentWatch == nil {
			return nil, nil
		}
		return parentWatch, nil
	}
	if parentWatch == nil {
		return childWatch, nil
	}
	out := make(Watchers, len(parentWatch)+len(childWatch))
	for key, handlers := range parentWatch {
		out[key] = append([]WatchHandler(nil), handlers...)
	}
	for key, handlers := range childWatch {
		out[key] = append(out[key], handlers...)
	}
	return out, nil
}

func asWatchers(raw any) (Watchers, error) {
	if isUnset(raw) {
		return nil, nil
	}
	switch v := raw.(type) {
	case Watchers:
		return v, nil
	case map[string]WatchHandler:
		out := make(Watchers, len(v))
		for key, handler := range v {
			out[key] = []WatchHandler{handler}
		}
		return out, nil
	}
	return nil, invalidOption("Watchers", raw)
}

// overlay copies parent and then child into a new map. A nil parent returns
// child unchanged.
func overlay[M ~map[string]V, V any](parent, child M) M {
	if parent == nil {
		return child
	}
	out := make(M, len(parent)+len(child))
	for key, value := range parent {
		out[key] = value
	}
	for key, value := range child {
		out[key] = value
	}
	return out
}

func mergeProps(parent, child any, _ *Instance, _ string) (any, error) {
	childProps, err := normalizeProps(child)
	if err != nil {
		return nil, err
	}
	parentProps, err := normalizeProps(parent)
	if err != nil {
		return nil, err
	}
	return nilIfEmpty(overlay(parentProps, childProps)), nil
}

func normalizeProps(raw any) (Props, error) {
	if isUnset(raw) {
		return nil, nil
	}
	switch v := raw.(type) {
	case Props:
		return camelizeKeys(v), nil
	case map[string]Prop:
		return camelizeKeys(Props(v)), nil
	case []string:
		out := make(Props, len(v))
		for _, name := range v {
			out[camelize(name)] = Prop{}
		}
		return out, nil
	}
	return nil, invalidOption("Props or []string", raw)
}

func camelizeKeys(props Props) Props {
	for key := range props {
		if strings.Contains(key, "-") {
			out := make(Props, len(props))
			for k, prop := range props {
				out[camelize(k)] = prop
			}
			return out
		}
	}
	return props
}

func mergeMethods(parent, child any, _ *Instance, _ string) (any, error) {
	childMethods, err := asMethods(child)
	if err != nil {
		return nil, err
	}
	parentMethods, err := asMethods(parent)
	if err != nil {
		return nil, err
	}
	return nilIfEmpty(overlay(parentMethods, childMethods)), nil
}

func asMethods(raw any) (Methods, error) {
	if isUnset(raw) {
		return nil, nil
	}
	switch v := raw.(type) {
	case Methods:
		return v, nil
	case map[string]Method:
		return v, nil
	}
	return nil, invalidOption("Methods", raw)
}

func mergeInject(parent, child any, _ *Instance, _ string) (any, error) {
	childInject, err := normalizeInject(child)
	if err != nil {
		return nil, err
	}
	parentInject, err := normalizeInject(parent)
	if err != nil {
		return nil, err
	}
	return nilIfEmpty(overlay(parentInject, childInject)), nil
}

func normalizeInject(raw any) (Injections, error) {
	if isUnset(raw) {
		return nil, nil
	}
	switch v := raw.(type) {
	case Injections:
		return fillInjectFrom(v), nil
	case map[string]Injection:
		return fillInjectFrom(Injections(v)), nil
	case []string:
		out := make(Injections, len(v))
		for _, key := range v {
			out[key] = Injection{From: key}
		}
		return out, nil
	case map[string]string:
		out := make(Injections, len(v))
		for key, from := range v {
			out[key] = Injection{From: from}
		}
		return out, nil
	}
	return nil, invalidOption("Injections, []string or map[string]string", raw)
}

// fillInjectFrom defaults From to the local key.
func fillInjectFrom(in Injections) Injections {
	out := make(Injections, len(in))
	for key, injection := range in {
		if injection.From == "" {
			injection.From = key
		}
		out[key] = injection
	}
	return out
}

func mergeComputed(parent, child any, _ *Instance, _ string) (any, error) {
	childComputed, err := asComputed(child)
	if err != nil {
		return nil, err
	}
	parentComputed, err := asComputed(parent)
	if err != nil {
		return nil, err
	}
	return nilIfEmpty(overlay(parentComputed, childComputed)), nil
}

func asComputed(raw any) (ComputedSet, error) {
	if isUnset(raw) {
		return nil, nil
	}
	switch v := raw.(type) {
	case ComputedSet:
		return v, nil
	case map[string]Computed:
		return v, nil
	case map[string]string:
		out := make(ComputedSet, len(v))
		for key, expression := range v {
			out[key] = Computed{Expr: expression}
		}
		return out, nil
	case map[string]func(*Instance) (any, error):
		out := make(ComputedSet, len(v))
		for key, get := range v {
			out[key] = Computed{Get: get}
		}
		return out, nil
	}
	return nil, invalidOption("ComputedSet", raw)
}

// nilIfEmpty keeps an absent group absent instead of storing a typed nil.
func nilIfEmpty[M ~map[string]V, V any](m M) any {
	if m == nil {
		return nil
	}
	return m
}
