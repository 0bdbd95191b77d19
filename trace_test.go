package component

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceReportsDeclaringConstructors(t *testing.T) {
	fw := New()
	base := fw.Root().MustExtend(NewOptions().With(KeyName, "Base").With("theme", "light"))
	mid := base.MustExtend(named("Mid"))
	leaf := mid.MustExtend(NewOptions().With(KeyName, "Leaf").With("theme", "dark"))

	trace, err := leaf.Trace("theme")
	require.NoError(t, err)

	require.Len(t, trace.Layers, 4)
	assert.Equal(t, []int{leaf.ID(), base.ID()}, trace.DeclaredBy())
	assert.Equal(t, "dark", trace.Layers[0].Value)
	assert.Equal(t, "light", trace.Layers[1].Value)
	assert.False(t, trace.Layers[1].Declared)
	assert.True(t, trace.Layers[1].Found)
	assert.False(t, trace.Layers[3].Found)
	assert.Equal(t, "string", trace.Layers[0].Type)
}

func TestTraceJSONRoundTrip(t *testing.T) {
	fw := New()
	card := fw.Root().MustExtend(named("Card"))

	trace, err := card.Trace(KeyName)
	require.NoError(t, err)
	payload, err := trace.ToJSON()
	require.NoError(t, err)

	decoded, err := TraceFromJSON(payload)
	require.NoError(t, err)
	assert.Equal(t, trace.Key, decoded.Key)
	require.Len(t, decoded.Layers, 2)
	assert.Equal(t, "Card", decoded.Layers[0].Name)
	assert.Nil(t, decoded.Layers[0].Value)

	_, err = TraceFromJSON([]byte("{"))
	assert.Error(t, err)
}
