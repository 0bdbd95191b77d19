// Package definition decodes declarative component definitions (YAML or
// JSON) into component descriptors.
package definition

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	component "github.com/goliatone/go-component"
	"github.com/goliatone/go-component/layering"
)

// Definition is the declarative form of a component descriptor.
type Definition struct {
	Name string `json:"name,omitempty"`
	File string `json:"file,omitempty"`
	// Engine is the default evaluator for computed expressions.
	Engine     string                  `json:"engine,omitempty"`
	Props      map[string]PropSpec     `json:"props,omitempty"`
	Computed   map[string]ComputedSpec `json:"computed,omitempty"`
	Data       map[string]any          `json:"data,omitempty"`
	Provide    map[string]any          `json:"provide,omitempty"`
	Inject     map[string]string       `json:"inject,omitempty"`
	Components map[string]Definition   `json:"components,omitempty"`
}

// PropSpec declares a prop. Type is one of string, number, integer,
// boolean, object, array or any.
type PropSpec struct {
	Type     string `json:"type,omitempty"`
	Default  any    `json:"default,omitempty"`
	Required bool   `json:"required,omitempty"`
}

// ComputedSpec declares an expression computed property. A bare string is
// accepted as the expression.
type ComputedSpec struct {
	Expr   string `json:"expr"`
	Engine string `json:"engine,omitempty"`
}

// UnmarshalJSON accepts either an object or a bare expression string.
func (c *ComputedSpec) UnmarshalJSON(raw []byte) error {
	var expr string
	if err := json.Unmarshal(raw, &expr); err == nil {
		*c = ComputedSpec{Expr: expr}
		return nil
	}
	type alias ComputedSpec
	var spec alias
	if err := json.Unmarshal(raw, &spec); err != nil {
		return err
	}
	*c = ComputedSpec(spec)
	return nil
}

var propKinds = map[string]reflect.Kind{
	"":        reflect.Invalid,
	"any":     reflect.Invalid,
	"string":  reflect.String,
	"number":  reflect.Float64,
	"integer": reflect.Int,
	"boolean": reflect.Bool,
	"bool":    reflect.Bool,
	"object":  reflect.Map,
	"array":   reflect.Slice,
}

// Descriptor converts def into a component descriptor. Data and provide are
// copied per instance.
func Descriptor(def Definition) (*component.Options, error) {
	descriptor := component.NewOptions()
	if def.Name != "" {
		descriptor.Set(component.KeyName, def.Name)
	}
	if def.File != "" {
		descriptor.Set(component.KeyFile, def.File)
	}

	if len(def.Props) > 0 {
		props := make(component.Props, len(def.Props))
		for name, spec := range def.Props {
			kind, ok := propKinds[strings.ToLower(spec.Type)]
			if !ok {
				return nil, fmt.Errorf("definition: prop %q: unknown type %q", name, spec.Type)
			}
			props[name] = component.Prop{
				Kind:     kind,
				Default:  propDefault(spec.Default),
				Required: spec.Required,
			}
		}
		descriptor.Set(component.KeyProps, props)
	}

	if len(def.Computed) > 0 {
		computed := make(component.ComputedSet, len(def.Computed))
		for name, spec := range def.Computed {
			if strings.TrimSpace(spec.Expr) == "" {
				return nil, fmt.Errorf("definition: computed %q: empty expression", name)
			}
			engine := spec.Engine
			if engine == "" {
				engine = def.Engine
			}
			computed[name] = component.Computed{Expr: spec.Expr, Engine: engine}
		}
		descriptor.Set(component.KeyComputed, computed)
	}

	if def.Data != nil {
		descriptor.Set(component.KeyData, copyFactory(def.Data))
	}
	if def.Provide != nil {
		descriptor.Set(component.KeyProvide, copyFactory(def.Provide))
	}

	if len(def.Inject) > 0 {
		inject := make(component.Injections, len(def.Inject))
		for key, from := range def.Inject {
			inject[key] = component.Injection{From: from}
		}
		descriptor.Set(component.KeyInject, inject)
	}

	if len(def.Components) > 0 {
		components := make(map[string]any, len(def.Components))
		for id, child := range def.Components {
			if child.Name == "" {
				child.Name = id
			}
			childDescriptor, err := Descriptor(child)
			if err != nil {
				return nil, fmt.Errorf("definition: component %q: %w", id, err)
			}
			components[id] = childDescriptor
		}
		descriptor.Set(component.KeyComponents, components)
	}

	return descriptor, nil
}

// Extend derives a constructor from def. Each call builds a new descriptor,
// so repeated calls yield distinct constructors.
func Extend(base *component.Constructor, def Definition) (*component.Constructor, error) {
	descriptor, err := Descriptor(def)
	if err != nil {
		return nil, err
	}
	return base.Extend(descriptor)
}

func copyFactory(values map[string]any) component.DataFunc {
	return func(*component.Instance) (map[string]any, error) {
		return layering.Clone(values), nil
	}
}

// propDefault wraps map and slice defaults in a factory so instances do not
// share them.
func propDefault(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return func() any { return layering.Clone(v) }
	case []any:
		return func() any { return append([]any(nil), v...) }
	}
	return value
}

func validateNames(_ Context, def *Definition) error {
	if def.Name != "" {
		if err := component.ValidateComponentName(def.Name); err != nil {
			return err
		}
	}
	for id, child := range def.Components {
		if err := component.ValidateComponentName(id); err != nil {
			return err
		}
		if err := validateNames(Context{}, &child); err != nil {
			return err
		}
	}
	return nil
}
