package component

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
)

// Sources readable through proxy accessors.
const (
	SourceProps = "_props"
	SourceData  = "_data"
)

// Accessor is a getter/setter pair resolved against an instance.
type Accessor struct {
	Get func(vm *Instance) (any, error)
	Set func(vm *Instance, value any) error
}

// Prototype is the accessor table of a constructor. Lookups fall through to
// the parent constructor's prototype.
type Prototype struct {
	parent    *Prototype
	accessors map[string]Accessor
}

func newPrototype(parent *Prototype) *Prototype {
	return &Prototype{parent: parent, accessors: map[string]Accessor{}}
}

// Parent returns the prototype p delegates to.
func (p *Prototype) Parent() *Prototype {
	if p == nil {
		return nil
	}
	return p.parent
}

// Define installs an accessor on p itself.
func (p *Prototype) Define(key string, accessor Accessor) {
	p.accessors[key] = accessor
}

// Lookup resolves key through p and its ancestors.
func (p *Prototype) Lookup(key string) (Accessor, bool) {
	for cur := p; cur != nil; cur = cur.parent {
		if accessor, ok := cur.accessors[key]; ok {
			return accessor, true
		}
	}
	return Accessor{}, false
}

// OwnKeys returns the keys defined on p itself, sorted.
func (p *Prototype) OwnKeys() []string {
	if p == nil {
		return nil
	}
	keys := make([]string, 0, len(p.accessors))
	for key := range p.accessors {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// AccessorInstaller defines prototype accessors for props and computed
// properties when a constructor is derived. Computed accessors go on
// c.Prototype() and see the expression helpers of c.
type AccessorInstaller interface {
	InstallProxyAccessor(proto *Prototype, sourceKey, key string)
	InstallComputedAccessor(c *Constructor, key string, def Computed) error
}

// frameworkAccessors is the default installer. Expression computeds are
// compiled here, once per constructor.
type frameworkAccessors struct {
	fw *Framework
}

func (a frameworkAccessors) InstallProxyAccessor(proto *Prototype, sourceKey, key string) {
	proto.Define(key, proxyAccessor(sourceKey, key))
}

func (a frameworkAccessors) InstallComputedAccessor(c *Constructor, key string, def Computed) error {
	accessor, err := a.fw.computedAccessor(key, def, c.options.Functions())
	if err != nil {
		return bindEvaluation(err, c, nil, key)
	}
	c.proto.Define(key, accessor)
	return nil
}

func proxyAccessor(sourceKey, key string) Accessor {
	return Accessor{
		Get: func(vm *Instance) (any, error) {
			return vm.source(sourceKey)[key], nil
		},
		Set: func(vm *Instance, value any) error {
			if sourceKey == SourceProps {
				vm.fw.warnComponent(vm, "avoid mutating a prop directly, the value is overwritten when the parent re-renders",
					zap.String("prop", key))
			}
			source := vm.source(sourceKey)
			if source == nil {
				return fmt.Errorf("%w: %q (%s not initialized)", ErrPropertyNotFound, key, sourceKey)
			}
			old := source[key]
			source[key] = value
			return vm.notifyWatchers(key, value, old)
		},
	}
}

func (fw *Framework) computedAccessor(key string, def Computed, functions *FunctionRegistry) (Accessor, error) {
	getter, err := fw.computedGetter(key, def, functions)
	if err != nil {
		return Accessor{}, err
	}
	setter := def.Set
	if setter == nil {
		setter = func(vm *Instance, _ any) error {
			vm.fw.warnComponent(vm, "computed property was assigned to but it has no setter",
				zap.String("computed", key))
			return fmt.Errorf("%w: %q", ErrNoSetter, key)
		}
	}
	return Accessor{Get: getter, Set: setter}, nil
}

func (fw *Framework) computedGetter(key string, def Computed, functions *FunctionRegistry) (func(vm *Instance) (any, error), error) {
	if def.Get != nil {
		return def.Get, nil
	}
	if def.Expr == "" {
		return nil, fmt.Errorf("%w: computed %q has neither a getter nor an expression", ErrInvalidOption, key)
	}
	evaluator, err := fw.evaluatorFor(def.Engine, functions)
	if err != nil {
		return nil, err
	}
	engine := def.Engine
	if engine == "" {
		engine = EngineExpr
	}
	expression := def.Expr
	rule, err := evaluator.Compile(expression)
	if err != nil {
		return nil, wrapEvaluationError(engine, expression, "", err)
	}
	return func(vm *Instance) (any, error) {
		ctx := EvalContext{
			Snapshot:  vm.snapshot(),
			Component: vm.options.Name(),
		}
		start := time.Now()
		value, err := rule.Evaluate(ctx)
		if err != nil {
			err = bindEvaluation(wrapEvaluationError(engine, expression, ctx.componentLabel(), err), vm.ctor, vm, key)
			fw.cfg.logger.Debug("computed failed",
				append(evaluationFields(err), zap.Duration("duration", time.Since(start)))...)
			return nil, err
		}
		fw.cfg.logger.Debug("computed evaluated",
			zap.String("engine", engine),
			zap.String("computed", key),
			zap.Int("uid", vm.uid),
			zap.Duration("duration", time.Since(start)))
		return value, nil
	}, nil
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
