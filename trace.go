package component

import (
	"encoding/json"
	"fmt"
)

// Trace reports, for one option key, what each constructor in an ancestor
// chain contributed. Layers are ordered from the traced constructor up to
// the root.
type Trace struct {
	Key    string       `json:"key"`
	Layers []Provenance `json:"layers"`
}

// Provenance details one constructor's view of a traced key. Declared means
// the constructor's own descriptor sets the key; Found means its merged
// options carry it.
type Provenance struct {
	CID      int    `json:"cid"`
	Name     string `json:"name,omitempty"`
	Declared bool   `json:"declared"`
	Found    bool   `json:"found"`
	Type     string `json:"type,omitempty"`
	Value    any    `json:"-"`
}

// Trace resolves c's options and reports how key flows through its
// ancestors.
func (c *Constructor) Trace(key string) (Trace, error) {
	if _, err := c.ResolveOptions(); err != nil {
		return Trace{}, err
	}
	trace := Trace{Key: key}
	for cur := c; cur != nil; cur = cur.super {
		layer := Provenance{CID: cur.id, Name: cur.options.Name()}
		if cur.super == nil {
			_, layer.Declared = cur.options.Own(key)
		} else {
			_, layer.Declared = cur.extendOptions.Get(key)
		}
		if value, ok := cur.options.Get(key); ok {
			layer.Found = true
			layer.Value = value
			layer.Type = fmt.Sprintf("%T", value)
		}
		trace.Layers = append(trace.Layers, layer)
	}
	return trace, nil
}

// DeclaredBy returns the ids of the constructors whose own descriptor sets
// the key, nearest first.
func (t Trace) DeclaredBy() []int {
	var ids []int
	for _, layer := range t.Layers {
		if layer.Declared {
			ids = append(ids, layer.CID)
		}
	}
	return ids
}

// ToJSON serialises the trace into JSON for logging or transport helpers.
// Values are not serialised.
func (t Trace) ToJSON() ([]byte, error) {
	type alias Trace
	return json.Marshal(alias(t))
}

// TraceFromJSON deserialises a JSON payload that was previously generated via
// ToJSON.
func TraceFromJSON(payload []byte) (Trace, error) {
	type alias Trace
	var trace alias
	if err := json.Unmarshal(payload, &trace); err != nil {
		return Trace{}, err
	}
	return Trace(trace), nil
}
