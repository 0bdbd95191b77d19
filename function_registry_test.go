package component

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func money(symbol string) Function {
	return func(args ...any) (any, error) {
		return fmt.Sprintf("%s%v", symbol, args[0]), nil
	}
}

func TestFunctionRegistryDelegatesToParent(t *testing.T) {
	base := NewFunctionRegistry()
	require.NoError(t, base.Register("Money", money("$")))
	child := base.derive()
	require.NoError(t, child.Register("money", money("€")), "a child may shadow an inherited helper")
	require.NoError(t, child.Register("pad", func(args ...any) (any, error) { return " " + args[0].(string), nil }))

	err := child.Register("PAD", money("x"))
	assert.ErrorIs(t, err, ErrInvalidOption)
	assert.ErrorIs(t, base.Register("nil", nil), ErrInvalidOption)
	assert.ErrorIs(t, base.Register(" ", money("x")), ErrInvalidOption)

	value, err := child.Call("MONEY", 5)
	require.NoError(t, err)
	assert.Equal(t, "€5", value)
	value, err = base.Call("money", 5)
	require.NoError(t, err)
	assert.Equal(t, "$5", value)

	assert.Same(t, base, child.Parent())
	assert.Equal(t, []string{"money", "pad"}, child.Names())
	assert.Equal(t, []string{"money"}, base.Names())

	clone := child.Clone()
	assert.Nil(t, clone.Parent())
	assert.Equal(t, []string{"money", "pad"}, clone.OwnNames())

	_, err = base.Call("pad", "x")
	assert.Error(t, err)
}

func TestConstructorHelpersAreInherited(t *testing.T) {
	fw := New(WithCustomFunction("upper", func(args ...any) (any, error) {
		return strings.ToUpper(args[0].(string)), nil
	}))
	shop := fw.Root().MustExtend(named("Shop").With(KeyFunctions, Functions{"money": money("$")}))
	euroShop := shop.MustExtend(named("EuroShop").With(KeyFunctions, Functions{"money": money("€")}))
	priceTag := shop.MustExtend(named("PriceTag").
		With(KeyProps, []string{"amount", "label"}).
		With(KeyComputed, ComputedSet{"text": {Expr: `upper(label) + " " + money(amount)`}}))
	euroTag := euroShop.MustExtend(named("EuroTag").
		With(KeyProps, []string{"amount"}).
		With(KeyComputed, ComputedSet{"text": {Expr: `money(amount)`}}))

	vm, err := priceTag.New(propsData(map[string]any{"amount": 3, "label": "tea"}))
	require.NoError(t, err)
	text, err := vm.Get("text")
	require.NoError(t, err)
	assert.Equal(t, "TEA $3", text)

	euro, err := euroTag.New(propsData(map[string]any{"amount": 3}))
	require.NoError(t, err)
	text, err = euro.Get("text")
	require.NoError(t, err)
	assert.Equal(t, "€3", text)

	value, err := euro.EvaluateWith(EvalContext{}, EngineCEL, `call("money", amount)`)
	require.NoError(t, err)
	assert.Equal(t, "€3", value)

	assert.Same(t, shop.Options().Functions(), priceTag.Options().Functions(),
		"constructors without helpers of their own keep the parent registry")
	assert.Same(t, fw.Root().Options().Functions(), shop.Options().Functions().Parent())
}

func TestConstructorsWithoutHelpersShareEvaluators(t *testing.T) {
	cache := NewMemoryProgramCache()
	fw := New(WithProgramCache(cache))
	computed := ComputedSet{"sum": {Expr: "a + b"}}
	fw.Root().MustExtend(NewOptions().With(KeyComputed, computed))
	fw.Root().MustExtend(NewOptions().With(KeyComputed, computed))
	scoped := fw.Root().MustExtend(NewOptions().
		With(KeyComputed, computed).
		With(KeyFunctions, Functions{"twice": func(args ...any) (any, error) { return args[0], nil }}))

	assert.Len(t, fw.evaluators, 2)
	assert.Equal(t, 2, cache.Len(), "helper scopes compile into their own cache namespace")
	_, ok := cache.Get(EngineExpr + ":a + b")
	assert.True(t, ok)
	assert.NotNil(t, scoped.Options().Functions())
}

func TestFunctionsMergeRejectsInvalidShapes(t *testing.T) {
	fw := New()
	_, err := fw.Root().Extend(NewOptions().With(KeyFunctions, map[string]string{"x": "y"}))
	var mergeErr *MergeError
	require.ErrorAs(t, err, &mergeErr)
	assert.Equal(t, KeyFunctions, mergeErr.Key)
	assert.ErrorIs(t, err, ErrInvalidOption)

	_, err = fw.Root().Extend(NewOptions().With(KeyFunctions, Functions{"broken": nil}))
	assert.ErrorIs(t, err, ErrInvalidOption)
}

func TestComputedErrorsCarryConstructorAndInstance(t *testing.T) {
	fw := New()
	card := fw.Root().MustExtend(named("Card").
		With(KeyFunctions, Functions{"fail": func(...any) (any, error) { return nil, fmt.Errorf("no stock") }}).
		With(KeyComputed, ComputedSet{"stock": {Expr: "fail()"}}))
	vm, err := card.New(nil)
	require.NoError(t, err)

	_, err = vm.Get("stock")
	var evalErr *EvaluationError
	require.ErrorAs(t, err, &evalErr)
	assert.Equal(t, card.ID(), evalErr.CID)
	assert.Equal(t, vm.UID(), evalErr.UID)
	assert.Equal(t, "stock", evalErr.Computed)
	assert.Equal(t, "Card", evalErr.Component)
	assert.Contains(t, err.Error(), "no stock")
}
