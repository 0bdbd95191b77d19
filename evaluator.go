package component

import (
	"fmt"
	"time"
)

// EvalContext carries the inputs of an expression computed property.
type EvalContext struct {
	// Snapshot is the instance state the expression sees as variables.
	Snapshot  any
	Now       *time.Time
	Args      map[string]any
	Metadata  map[string]any
	Component string
}

func (ctx EvalContext) withDefaultNow() EvalContext {
	if ctx.Now != nil {
		return ctx
	}
	now := time.Now()
	ctx.Now = &now
	return ctx
}

func (ctx EvalContext) timestamp() time.Time {
	ctx = ctx.withDefaultNow()
	return *ctx.Now
}

func (ctx EvalContext) withDefaultMaps() EvalContext {
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	if ctx.Metadata == nil {
		ctx.Metadata = map[string]any{}
	}
	return ctx
}

func (ctx EvalContext) withDefaults() EvalContext {
	return ctx.withDefaultNow().withDefaultMaps()
}

func (ctx EvalContext) componentLabel() string {
	if ctx.Component != "" {
		return ctx.Component
	}
	return "unknown"
}

func (ctx EvalContext) componentBinding() map[string]any {
	if ctx.Component == "" {
		return nil
	}
	return map[string]any{"name": ctx.Component}
}

// Evaluator executes expressions against an evaluation context.
type Evaluator interface {
	Evaluate(ctx EvalContext, expr string) (any, error)
	Compile(expr string) (CompiledRule, error)
}

// CompiledRule represents a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx EvalContext) (any, error)
}

// EvaluatorOption configures an evaluator built by NewExprEvaluator,
// NewCELEvaluator or NewJSEvaluator.
type EvaluatorOption func(*evaluatorConfig)

type evaluatorConfig struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

// EvalWithProgramCache stores compiled programs in cache.
func EvalWithProgramCache(cache ProgramCache) EvaluatorOption {
	return func(cfg *evaluatorConfig) {
		cfg.cache = cache
	}
}

// EvalWithFunctions exposes the helpers of registry to expressions. The
// evaluator keeps a clone; later registrations are not seen.
func EvalWithFunctions(registry *FunctionRegistry) EvaluatorOption {
	return func(cfg *evaluatorConfig) {
		if registry != nil {
			cfg.registry = registry.Clone()
		}
	}
}

func newEvaluatorConfig(opts []EvaluatorOption) evaluatorConfig {
	var cfg evaluatorConfig
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

const (
	EngineExpr = "expr"
	EngineCEL  = "cel"
	EngineJS   = "js"
)

// evaluatorKey identifies an evaluator by engine and the helper registry it
// was built with.
type evaluatorKey struct {
	engine    string
	functions *FunctionRegistry
}

// evaluatorFor returns the evaluator serving engine for expressions that
// see functions, building and caching it on first use. The empty engine
// selects the configured default. Constructors that declare no helpers of
// their own share the framework-wide evaluators.
func (fw *Framework) evaluatorFor(engine string, functions *FunctionRegistry) (Evaluator, error) {
	if engine == "" {
		if fw.cfg.evaluator != nil {
			return fw.cfg.evaluator, nil
		}
		engine = EngineExpr
	}
	key := evaluatorKey{engine: engine, functions: functions}
	if evaluator, ok := fw.evaluators[key]; ok {
		return evaluator, nil
	}
	namespace := engine
	if functions != fw.cfg.functions {
		namespace = fmt.Sprintf("%s@%d", engine, len(fw.evaluators))
	}
	opts := []EvaluatorOption{EvalWithFunctions(functions)}
	if fw.cfg.programCache != nil {
		opts = append(opts, EvalWithProgramCache(engineCache{engine: namespace, cache: fw.cfg.programCache}))
	}
	var evaluator Evaluator
	switch engine {
	case EngineExpr:
		evaluator = NewExprEvaluator(opts...)
	case EngineCEL:
		evaluator = NewCELEvaluator(opts...)
	case EngineJS:
		evaluator = NewJSEvaluator(opts...)
	default:
		return nil, fmt.Errorf("%w: unknown engine %q", ErrNoEvaluator, engine)
	}
	if evaluator == nil {
		return nil, fmt.Errorf("%w: engine %q is not available in this build", ErrNoEvaluator, engine)
	}
	fw.evaluators[key] = evaluator
	return evaluator, nil
}

// engineCache namespaces a shared ProgramCache per engine and helper scope.
type engineCache struct {
	engine string
	cache  ProgramCache
}

func (c engineCache) Get(key string) (any, bool) {
	return c.cache.Get(c.engine + ":" + key)
}

func (c engineCache) Set(key string, value any) {
	c.cache.Set(c.engine+":"+key, value)
}
