package component

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stateInstance(t *testing.T, opts ...Option) *Instance {
	t.Helper()
	fw := New(opts...)
	ctor := fw.Root().MustExtend(NewOptions().
		With(KeyName, "price-tag").
		With(KeyProps, []string{"currency"}).
		With(KeyData, DataFunc(func(*Instance) (map[string]any, error) {
			return map[string]any{"amount": 40, "label": "total"}, nil
		})))
	vm, err := ctor.New(propsData(map[string]any{"currency": "eur"}))
	require.NoError(t, err)
	return vm
}

func TestEvaluateDefaultEngine(t *testing.T) {
	vm := stateInstance(t)

	value, err := vm.Evaluate("amount + 2")
	require.NoError(t, err)
	assert.EqualValues(t, 42, value)

	value, err = vm.Evaluate(`label + " " + currency`)
	require.NoError(t, err)
	assert.Equal(t, "total eur", value)

	value, err = vm.Evaluate("component.name")
	require.NoError(t, err)
	assert.Equal(t, "price-tag", value)
}

func TestEvaluateEmptyExpression(t *testing.T) {
	vm := stateInstance(t)
	_, err := vm.Evaluate("")
	assert.ErrorIs(t, err, errEmptyExpression)
}

func TestEvaluateCELEngine(t *testing.T) {
	vm := stateInstance(t)

	value, err := vm.EvaluateWith(EvalContext{}, EngineCEL, "amount > 10 && currency == 'eur'")
	require.NoError(t, err)
	assert.Equal(t, true, value)

	value, err = vm.EvaluateWith(EvalContext{Args: map[string]any{"limit": 5}}, EngineCEL, "args.limit")
	require.NoError(t, err)
	assert.EqualValues(t, 5, value)

	value, err = vm.EvaluateWith(EvalContext{}, EngineCEL, "component.name")
	require.NoError(t, err)
	assert.Equal(t, "price-tag", value)
}

func TestEvaluateUsesCustomFunctions(t *testing.T) {
	vm := stateInstance(t, WithCustomFunction("upper", func(args ...any) (any, error) {
		return strings.ToUpper(args[0].(string)), nil
	}))

	value, err := vm.Evaluate("upper(currency)")
	require.NoError(t, err)
	assert.Equal(t, "EUR", value)

	value, err = vm.EvaluateWith(EvalContext{}, EngineCEL, `call("upper", currency)`)
	require.NoError(t, err)
	assert.Equal(t, "EUR", value)
}

func TestEvaluateFunctionRegistryIsCloned(t *testing.T) {
	registry := NewFunctionRegistry()
	require.NoError(t, registry.Register("double", func(args ...any) (any, error) {
		return args[0].(int) * 2, nil
	}))
	vm := stateInstance(t, WithFunctionRegistry(registry))
	require.NoError(t, registry.Register("late", func(...any) (any, error) { return nil, nil }))

	value, err := vm.Evaluate("double(amount)")
	require.NoError(t, err)
	assert.Equal(t, 80, value)

	_, err = vm.Evaluate("late()")
	assert.Error(t, err)
}

func TestEvaluateExplicitSnapshotAndNow(t *testing.T) {
	vm := stateInstance(t)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	value, err := vm.EvaluateWith(EvalContext{
		Snapshot: map[string]any{"amount": 1},
		Now:      &now,
	}, EngineExpr, "amount")
	require.NoError(t, err)
	assert.EqualValues(t, 1, value)

	value, err = vm.EvaluateWith(EvalContext{Now: &now}, EngineCEL, "now.getFullYear()")
	require.NoError(t, err)
	assert.EqualValues(t, 2024, value)
}

func TestEvaluateErrorsCarryMetadata(t *testing.T) {
	vm := stateInstance(t)

	_, err := vm.Evaluate("amount +")
	require.Error(t, err)
	var evalErr *EvaluationError
	require.ErrorAs(t, err, &evalErr)
	assert.Equal(t, EngineExpr, evalErr.Engine)
	assert.Equal(t, "price-tag", evalErr.Component)
	assert.Equal(t, vm.Constructor().ID(), evalErr.CID)
	assert.Equal(t, vm.UID(), evalErr.UID)
	assert.Empty(t, evalErr.Computed)
}

func TestEvaluateJSEngine(t *testing.T) {
	vm := stateInstance(t)

	value, err := vm.EvaluateWith(EvalContext{}, EngineJS, "amount * 2")
	if !jsEvaluatorAvailable() {
		assert.ErrorIs(t, err, ErrNoEvaluator)
		return
	}
	require.NoError(t, err)
	assert.EqualValues(t, 80, value)
}

func TestEvaluateUnknownEngine(t *testing.T) {
	vm := stateInstance(t)
	_, err := vm.EvaluateWith(EvalContext{}, "lua", "1")
	assert.ErrorIs(t, err, ErrNoEvaluator)
}

func TestWithEvaluatorReplacesDefaultEngine(t *testing.T) {
	vm := stateInstance(t, WithEvaluator(NewCELEvaluator()))

	value, err := vm.Evaluate("currency == 'eur'")
	require.NoError(t, err)
	assert.Equal(t, true, value)
}

func TestProgramCacheSharedAcrossConstructors(t *testing.T) {
	cache := NewMemoryProgramCache()
	fw := New(WithProgramCache(cache))
	descriptor := func() *Options {
		return NewOptions().With(KeyComputed, map[string]string{"sum": "a + b"})
	}

	fw.Root().MustExtend(descriptor())
	fw.Root().MustExtend(descriptor())
	assert.Equal(t, 1, cache.Len())

	_, ok := cache.Get(EngineExpr + ":a + b")
	assert.True(t, ok)
}

func TestEvaluatorOptionsApplyToEveryEngine(t *testing.T) {
	cache := NewMemoryProgramCache()
	registry := NewFunctionRegistry()
	require.NoError(t, registry.Register("inc", func(args ...any) (any, error) {
		return args[0].(int) + 1, nil
	}))

	evaluator := NewExprEvaluator(EvalWithProgramCache(cache), EvalWithFunctions(registry))
	value, err := evaluator.Evaluate(EvalContext{Snapshot: map[string]any{"n": 1}}, "inc(n)")
	require.NoError(t, err)
	assert.Equal(t, 2, value)
	assert.Equal(t, 1, cache.Len())

	rule, err := NewCELEvaluator(EvalWithProgramCache(cache)).Compile("n + 1")
	require.NoError(t, err)
	value, err = rule.Evaluate(EvalContext{Snapshot: map[string]any{"n": 1}})
	require.NoError(t, err)
	assert.EqualValues(t, 2, value)
	assert.Equal(t, 2, cache.Len())
}
