package component

import (
	"time"

	"go.uber.org/zap"
)

// Evaluate runs expr against the state of vm (data, props and injected
// values) with the default engine.
func (vm *Instance) Evaluate(expr string) (any, error) {
	return vm.EvaluateWith(EvalContext{}, "", expr)
}

// EvaluateWith runs expr on engine using ctx. A nil ctx.Snapshot is filled
// with the state of vm; an empty engine selects the default.
func (vm *Instance) EvaluateWith(ctx EvalContext, engine, expr string) (any, error) {
	if expr == "" {
		return nil, errEmptyExpression
	}
	evaluator, err := vm.fw.evaluatorFor(engine, vm.options.Functions())
	if err != nil {
		return nil, err
	}
	if ctx.Snapshot == nil {
		ctx.Snapshot = vm.snapshot()
	}
	if ctx.Component == "" {
		ctx.Component = vm.options.Name()
	}
	ctx = ctx.withDefaults()
	if engine == "" {
		engine = EngineExpr
	}

	start := time.Now()
	value, err := evaluator.Evaluate(ctx, expr)
	if err != nil {
		err = bindEvaluation(wrapEvaluationError(engine, expr, ctx.componentLabel(), err), vm.ctor, vm, "")
		vm.fw.cfg.logger.Debug("expression failed",
			append(evaluationFields(err), zap.String("expr", expr), zap.Duration("duration", time.Since(start)))...)
		return nil, err
	}
	vm.fw.cfg.logger.Debug("expression evaluated",
		zap.String("engine", engine),
		zap.String("expr", expr),
		zap.Int("uid", vm.uid),
		zap.Duration("duration", time.Since(start)))
	return value, nil
}
