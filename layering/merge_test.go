package layering

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeLayersStrongestWins(t *testing.T) {
	strong := map[string]any{"count": 2, "label": "child"}
	weak := map[string]any{"count": 1, "color": "red"}

	got := MergeLayers(strong, weak)

	assert.Equal(t, map[string]any{"count": 2, "label": "child", "color": "red"}, got)
	assert.Equal(t, map[string]any{"count": 1, "color": "red"}, weak, "weak layer must not be mutated")
	assert.Equal(t, map[string]any{"count": 2, "label": "child"}, strong, "strong layer must not be mutated")
}

func TestMergeLayersNestedMaps(t *testing.T) {
	strong := map[string]any{"style": map[string]any{"color": "blue"}}
	middle := map[string]any{"style": map[string]any{"size": 12}}
	weak := map[string]any{"style": map[string]any{"color": "red", "weight": "bold"}}

	got := MergeLayers(strong, middle, weak)

	assert.Equal(t, map[string]any{
		"style": map[string]any{"color": "blue", "size": 12, "weight": "bold"},
	}, got)
	assert.Equal(t, "red", weak["style"].(map[string]any)["color"])
}

func TestMergeLayersSharesLeafReferences(t *testing.T) {
	type counter struct{ n int }
	shared := &counter{n: 1}
	list := []string{"a"}

	got := MergeLayers(map[string]any{"list": list}, map[string]any{"ref": shared})

	require.Contains(t, got, "ref")
	assert.Same(t, shared, got["ref"])
	assert.Equal(t, list, got["list"])
}

func TestMergeLayersNilLayers(t *testing.T) {
	assert.Nil(t, MergeLayers())
	assert.Nil(t, MergeLayers(nil, nil))
	assert.Equal(t, map[string]any{"a": 1}, MergeLayers(nil, map[string]any{"a": 1}))
	assert.Equal(t, map[string]any{"a": 1}, MergeLayers(map[string]any{"a": 1}, nil))
}

func TestCloneIsDeepForNestedMaps(t *testing.T) {
	src := map[string]any{"nested": map[string]any{"k": "v"}}
	clone := Clone(src)

	clone["nested"].(map[string]any)["k"] = "changed"

	assert.Equal(t, "v", src["nested"].(map[string]any)["k"])
	assert.Nil(t, Clone(nil))
}
