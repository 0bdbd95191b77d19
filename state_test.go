package component

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func propsData(values map[string]any) *Options {
	return NewOptions().With(KeyPropsData, values)
}

func TestPropsResolveValuesAndDefaults(t *testing.T) {
	fw := New()
	ctor := fw.Root().MustExtend(NewOptions().With(KeyProps, Props{
		"title": {Kind: reflect.String},
		"size":  {Default: 12},
		"tags":  {Default: func() any { return []string{"new"} }},
	}))

	vm, err := ctor.New(propsData(map[string]any{"title": "Hello"}))
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"title": "Hello", "size": 12, "tags": []string{"new"}}, vm.Props())
	title, err := vm.Get("title")
	require.NoError(t, err)
	assert.Equal(t, "Hello", title)
}

func TestPropsDefaultFactoryPerInstance(t *testing.T) {
	fw := New()
	ctor := fw.Root().MustExtend(NewOptions().With(KeyProps, Props{
		"items": {Default: func(*Instance) any { return map[string]any{} }},
	}))

	a, err := ctor.New(nil)
	require.NoError(t, err)
	b, err := ctor.New(nil)
	require.NoError(t, err)

	a.Props()["items"].(map[string]any)["x"] = 1
	assert.Empty(t, b.Props()["items"])
}

func TestPropsBooleanCasting(t *testing.T) {
	fw := New()
	ctor := fw.Root().MustExtend(NewOptions().With(KeyProps, Props{
		"disabled":   {Kind: reflect.Bool},
		"isActive":   {Kind: reflect.Bool},
		"hasDefault": {Kind: reflect.Bool, Default: true},
	}))

	vm, err := ctor.New(propsData(map[string]any{"disabled": "", "isActive": "is-active"}))
	require.NoError(t, err)
	assert.Equal(t, true, vm.Props()["disabled"])
	assert.Equal(t, true, vm.Props()["isActive"])
	assert.Equal(t, true, vm.Props()["hasDefault"])

	vm, err = ctor.New(nil)
	require.NoError(t, err)
	assert.Equal(t, false, vm.Props()["disabled"])
}

func TestPropsAssertionsWarn(t *testing.T) {
	fw, logs := newObserved(t)
	ctor := fw.Root().MustExtend(NewOptions().With(KeyProps, Props{
		"id":    {Required: true},
		"count": {Kind: reflect.Int},
		"level": {Validator: func(v any) bool { return v.(int) < 5 }},
		"list":  {Default: []string{"shared"}},
	}))

	_, err := ctor.New(propsData(map[string]any{"count": "three", "level": 9}))
	require.NoError(t, err)

	assert.Equal(t, 1, warnCount(logs, "missing required prop"))
	assert.Equal(t, 1, warnCount(logs, "invalid prop: type check failed"))
	assert.Equal(t, 1, warnCount(logs, "invalid prop: custom validator check failed"))
	assert.Equal(t, 1, warnCount(logs, "invalid default value for prop: map and slice defaults must use a factory function"))
}

func TestPropsAssertionsSkippedInProduction(t *testing.T) {
	fw, logs := newObserved(t, WithProduction(true))
	ctor := fw.Root().MustExtend(NewOptions().With(KeyProps, Props{"id": {Required: true}}))

	_, err := ctor.New(nil)
	require.NoError(t, err)
	assert.Zero(t, logs.FilterLevelExact(zapcore.WarnLevel).Len())
}

func TestDataIsPerInstance(t *testing.T) {
	fw := New()
	ctor := fw.Root().MustExtend(NewOptions().With(KeyData, DataFunc(func(*Instance) (map[string]any, error) {
		return map[string]any{"count": 0}, nil
	})))

	a, err := ctor.New(nil)
	require.NoError(t, err)
	b, err := ctor.New(nil)
	require.NoError(t, err)

	require.NoError(t, a.Set("count", 5))
	assert.Equal(t, 5, a.Data()["count"])
	assert.Equal(t, 0, b.Data()["count"])
}

func TestDataCanReadProps(t *testing.T) {
	fw := New()
	ctor := fw.Root().MustExtend(NewOptions().
		With(KeyProps, []string{"initial"}).
		With(KeyData, DataFunc(func(vm *Instance) (map[string]any, error) {
			initial, err := vm.Get("initial")
			if err != nil {
				return nil, err
			}
			return map[string]any{"value": initial}, nil
		})))

	vm, err := ctor.New(propsData(map[string]any{"initial": 7}))
	require.NoError(t, err)
	assert.Equal(t, 7, vm.Data()["value"])
}

func TestDataErrorIsHandledAndLeavesEmptyData(t *testing.T) {
	var handled []string
	fw := New(WithErrorHandler(func(err error, _ *Instance, info string) {
		handled = append(handled, info+": "+err.Error())
	}))
	ctor := fw.Root().MustExtend(NewOptions().With(KeyData, DataFunc(func(*Instance) (map[string]any, error) {
		return nil, errors.New("db down")
	})))

	vm, err := ctor.New(nil)
	require.NoError(t, err)
	assert.Empty(t, vm.Data())
	assert.Equal(t, []string{"data(): db down"}, handled)
}

func TestStateConflictWarnings(t *testing.T) {
	fw, logs := newObserved(t)
	noop := Method(func(*Instance, ...any) (any, error) { return nil, nil })
	ctor := fw.Root().MustExtend(NewOptions().
		With(KeyProps, []string{"title", "label"}).
		With(KeyMethods, Methods{"label": noop, "save": noop, "missing": nil}).
		With(KeyData, DataFunc(func(*Instance) (map[string]any, error) {
			return map[string]any{"save": 1, "title": "x"}, nil
		})))

	_, err := ctor.New(nil)
	require.NoError(t, err)

	assert.Equal(t, 1, warnCount(logs, "method has already been defined as a prop"))
	assert.Equal(t, 1, warnCount(logs, "method has an undefined value in the component definition"))
	assert.Equal(t, 1, warnCount(logs, "method has already been defined as a data property"))
	assert.Equal(t, 1, warnCount(logs, "data property is already declared as a prop, use the prop default value instead"))
}

func TestMethodsCall(t *testing.T) {
	fw := New()
	ctor := fw.Root().MustExtend(NewOptions().
		With(KeyData, DataFunc(func(*Instance) (map[string]any, error) {
			return map[string]any{"count": 1}, nil
		})).
		With(KeyMethods, Methods{
			"add": func(vm *Instance, args ...any) (any, error) {
				current, _ := vm.Get("count")
				next := current.(int) + args[0].(int)
				return next, vm.Set("count", next)
			},
		}))

	vm, err := ctor.New(nil)
	require.NoError(t, err)

	result, err := vm.Call("add", 4)
	require.NoError(t, err)
	assert.Equal(t, 5, result)
	assert.Equal(t, 5, vm.Data()["count"])

	_, err = vm.Call("nope")
	assert.ErrorIs(t, err, ErrPropertyNotFound)
}

func TestComputedGetterAndSetter(t *testing.T) {
	fw := New()
	ctor := fw.Root().MustExtend(NewOptions().
		With(KeyData, DataFunc(func(*Instance) (map[string]any, error) {
			return map[string]any{"first": "Ada", "last": "Lovelace"}, nil
		})).
		With(KeyComputed, ComputedSet{
			"full": {
				Get: func(vm *Instance) (any, error) {
					return vm.Data()["first"].(string) + " " + vm.Data()["last"].(string), nil
				},
				Set: func(vm *Instance, value any) error {
					return vm.Set("first", value)
				},
			},
			"initials": {Expr: `first[0:1] + last[0:1]`},
		}))

	vm, err := ctor.New(nil)
	require.NoError(t, err)

	full, err := vm.Get("full")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", full)

	require.NoError(t, vm.Set("full", "Grace"))
	full, err = vm.Get("full")
	require.NoError(t, err)
	assert.Equal(t, "Grace Lovelace", full)

	initials, err := vm.Get("initials")
	require.NoError(t, err)
	assert.Equal(t, "GL", initials)
}

func TestComputedWithoutSetterRejectsAssignment(t *testing.T) {
	fw, logs := newObserved(t)
	ctor := fw.Root().MustExtend(NewOptions().With(KeyComputed, map[string]string{"answer": "40 + 2"}))

	vm, err := ctor.New(nil)
	require.NoError(t, err)

	answer, err := vm.Get("answer")
	require.NoError(t, err)
	assert.EqualValues(t, 42, answer)

	err = vm.Set("answer", 1)
	assert.ErrorIs(t, err, ErrNoSetter)
	assert.Equal(t, 1, warnCount(logs, "computed property was assigned to but it has no setter"))
}

func TestComputedCELEngine(t *testing.T) {
	fw := New()
	ctor := fw.Root().MustExtend(NewOptions().
		With(KeyProps, []string{"name"}).
		With(KeyComputed, ComputedSet{
			"greeting": {Expr: `"hello " + name`, Engine: EngineCEL},
		}))

	vm, err := ctor.New(propsData(map[string]any{"name": "ada"}))
	require.NoError(t, err)

	greeting, err := vm.Get("greeting")
	require.NoError(t, err)
	assert.Equal(t, "hello ada", greeting)
}

func TestComputedUnknownEngineFailsExtend(t *testing.T) {
	fw := New()
	_, err := fw.Root().Extend(NewOptions().With(KeyComputed, ComputedSet{"x": {Expr: "1", Engine: "lua"}}))
	assert.ErrorIs(t, err, ErrNoEvaluator)
}

func TestComputedDeclaredOnInstanceOptions(t *testing.T) {
	fw, logs := newObserved(t)
	ctor := fw.Root().MustExtend(NewOptions().With(KeyData, DataFunc(func(*Instance) (map[string]any, error) {
		return map[string]any{"n": 2, "taken": true}, nil
	})))

	vm, err := ctor.New(NewOptions().With(KeyComputed, ComputedSet{
		"double": {Get: func(vm *Instance) (any, error) { return vm.Data()["n"].(int) * 2, nil }},
		"taken":  {Expr: "1"},
	}))
	require.NoError(t, err)

	double, err := vm.Get("double")
	require.NoError(t, err)
	assert.Equal(t, 4, double)
	assert.Equal(t, 1, warnCount(logs, "computed property is already defined in data"))

	taken, err := vm.Get("taken")
	require.NoError(t, err)
	assert.Equal(t, true, taken)
}

func TestWatchersRunOnChange(t *testing.T) {
	type change struct{ newValue, oldValue any }
	var changes []change
	fw := New()
	ctor := fw.Root().MustExtend(NewOptions().
		With(KeyData, DataFunc(func(*Instance) (map[string]any, error) {
			return map[string]any{"count": 0}, nil
		})).
		With(KeyWatch, map[string]WatchHandler{
			"count": func(_ *Instance, newValue, oldValue any) error {
				changes = append(changes, change{newValue, oldValue})
				return nil
			},
		}))

	vm, err := ctor.New(nil)
	require.NoError(t, err)

	require.NoError(t, vm.Set("count", 1))
	require.NoError(t, vm.Set("count", 1))
	require.NoError(t, vm.Set("count", 2))
	assert.Equal(t, []change{{1, 0}, {2, 1}}, changes)
}

func TestWatcherErrorsAreHandledAndReturned(t *testing.T) {
	var infos []string
	boom := errors.New("boom")
	fw := New(WithErrorHandler(func(_ error, _ *Instance, info string) { infos = append(infos, info) }))
	ctor := fw.Root().MustExtend(NewOptions().
		With(KeyProps, []string{"value"}).
		With(KeyWatch, map[string]WatchHandler{
			"value": func(*Instance, any, any) error { return boom },
		}))

	vm, err := ctor.New(propsData(map[string]any{"value": 1}))
	require.NoError(t, err)

	err = vm.Set("value", 2)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{`callback for watcher "value"`}, infos)
}

func TestInstanceGetSetUnknownProperty(t *testing.T) {
	fw := New()
	vm, err := fw.Root().New(nil)
	require.NoError(t, err)

	_, err = vm.Get("nothing")
	assert.ErrorIs(t, err, ErrPropertyNotFound)
	assert.ErrorIs(t, vm.Set("nothing", 1), ErrPropertyNotFound)
}

func TestSettingPropWarns(t *testing.T) {
	fw, logs := newObserved(t)
	ctor := fw.Root().MustExtend(NewOptions().With(KeyProps, []string{"title"}))
	vm, err := ctor.New(propsData(map[string]any{"title": "a"}))
	require.NoError(t, err)

	require.NoError(t, vm.Set("title", "b"))
	assert.Equal(t, "b", vm.Props()["title"])
	assert.Equal(t, 1, warnCount(logs, "avoid mutating a prop directly, the value is overwritten when the parent re-renders"))
}
