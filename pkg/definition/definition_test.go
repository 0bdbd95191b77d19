package definition

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	component "github.com/goliatone/go-component"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFixture(t *testing.T, name string) (Context, []byte) {
	t.Helper()
	path := filepath.Join("testdata", name)
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	return Context{Source: path}, raw
}

func TestDecodeYAMLFixture(t *testing.T) {
	ctx, raw := loadFixture(t, "user_card.yaml")

	def, err := NewDecoder(WithNameValidation()).DecodeYAML(ctx, raw)
	require.NoError(t, err)

	assert.Equal(t, "user-card", def.Name)
	assert.Equal(t, ctx.Source, def.File, "file defaults to the source")
	assert.Equal(t, ComputedSpec{Expr: `firstName + " " + lastName`}, def.Computed["fullName"])
	assert.Equal(t, ComputedSpec{Expr: "len(tags)"}, def.Computed["tagCount"])
	assert.True(t, def.Props["firstName"].Required)
	assert.Equal(t, "i18n.locale", def.Inject["locale"])
	assert.Contains(t, def.Components, "user-avatar")
}

func TestDecodeJSONWithHooks(t *testing.T) {
	raw := []byte(`{"title":"Counter","computed":{"double":"count * 2"}}`)
	var seen []string
	decoder := NewDecoder(
		WithPreHook(func(ctx Context, payload map[string]any) (map[string]any, error) {
			seen = append(seen, "pre:"+ctx.Source)
			payload["name"] = payload["title"]
			delete(payload, "title")
			return payload, nil
		}),
		WithPostHook(func(_ Context, def *Definition) error {
			seen = append(seen, "post:"+def.Name)
			def.Engine = "cel"
			return nil
		}),
	)

	def, err := decoder.DecodeJSON(Context{Source: "inline"}, raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"pre:inline", "post:Counter"}, seen)
	assert.Equal(t, "cel", def.Engine)
	assert.Equal(t, "count * 2", def.Computed["double"].Expr)
}

func TestDecodeErrors(t *testing.T) {
	decoder := NewDecoder(WithDisallowUnknownFields())

	_, err := decoder.Decode(Context{Source: "nil"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "payload is nil")

	_, err = decoder.Decode(Context{Source: "unknown"}, map[string]any{"template": "<div/>"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown field")

	boom := errors.New("rejected")
	_, err = NewDecoder(WithPostHook(func(Context, *Definition) error { return boom })).
		Decode(Context{Source: "x"}, map[string]any{"name": "x-y"})
	assert.ErrorIs(t, err, boom)

	_, err = NewDecoder(WithNameValidation()).Decode(Context{}, map[string]any{"name": "div"})
	assert.ErrorIs(t, err, component.ErrInvalidComponentName)

	_, err = NewDecoder().DecodeYAML(Context{Source: "bad.yaml"}, []byte("name: [unclosed"))
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "definition: parse yaml"))
}

func TestDescriptorBuildsOptions(t *testing.T) {
	ctx, raw := loadFixture(t, "user_card.yaml")
	def, err := NewDecoder().DecodeYAML(ctx, raw)
	require.NoError(t, err)

	descriptor, err := Descriptor(def)
	require.NoError(t, err)

	assert.Equal(t, "user-card", descriptor.Name())
	props := descriptor.Props()
	assert.Equal(t, reflect.String, props["firstName"].Kind)
	assert.Equal(t, reflect.Bool, props["active"].Kind)
	assert.Equal(t, reflect.Slice, props["tags"].Kind)
	_, isFactory := props["tags"].Default.(func() any)
	assert.True(t, isFactory, "slice defaults are wrapped in a factory")

	computed := descriptor.Computed()
	assert.Equal(t, "expr", computed["fullName"].Engine, "definition engine is the default")

	first, err := descriptor.Data()(nil)
	require.NoError(t, err)
	second, err := descriptor.Data()(nil)
	require.NoError(t, err)
	first["theme"].(map[string]any)["color"] = "red"
	assert.Equal(t, "blue", second["theme"].(map[string]any)["color"], "data is copied per instance")

	components, ok := descriptor.Own(component.KeyComponents)
	require.True(t, ok)
	avatar := components.(map[string]any)["user-avatar"].(*component.Options)
	assert.Equal(t, "user-avatar", avatar.Name())
}

func TestDescriptorRejectsUnknownPropType(t *testing.T) {
	_, err := Descriptor(Definition{Props: map[string]PropSpec{"x": {Type: "date"}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown type "date"`)

	_, err = Descriptor(Definition{Computed: map[string]ComputedSpec{"x": {Expr: " "}}})
	require.Error(t, err)
}

func TestExtendCreatesWorkingConstructor(t *testing.T) {
	fw := component.New()
	ctor, err := Extend(fw.Root(), Definition{
		Name:     "greeting-card",
		Props:    map[string]PropSpec{"name": {Type: "string"}},
		Computed: map[string]ComputedSpec{"greeting": {Expr: `"Hello, " + name`}},
	})
	require.NoError(t, err)

	vm, err := ctor.New(component.NewOptions().With(component.KeyPropsData, map[string]any{"name": "Ada"}))
	require.NoError(t, err)

	value, err := vm.Get("greeting")
	require.NoError(t, err)
	assert.Equal(t, "Hello, Ada", value)

	registered, ok := ctor.Asset(component.AssetComponent, "greeting-card")
	require.True(t, ok)
	assert.Same(t, ctor, registered)
}
