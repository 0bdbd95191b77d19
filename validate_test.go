package component

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateComponentName(t *testing.T) {
	cases := []struct {
		name  string
		valid bool
	}{
		{"Foo", true},
		{"todo-item", true},
		{"my.widget_2", true},
		{"Café", true},
		{"div", false},
		{"slot", false},
		{"Component", false},
		{"circle", false},
		{"1-item", false},
		{"", false},
		{"has space", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateComponentName(tc.name)
			if tc.valid {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidComponentName)
		})
	}
}

func TestIsReservedTag(t *testing.T) {
	assert.True(t, IsReservedTag("button"))
	assert.True(t, IsReservedTag("SLOT"))
	assert.True(t, IsReservedTag("foreignObject"))
	assert.False(t, IsReservedTag("Button"))
	assert.False(t, IsReservedTag("user-card"))
}

func TestFormatComponentName(t *testing.T) {
	assert.Equal(t, "<Anonymous>", FormatComponentName(nil, false))

	fw := New()
	root, err := fw.Root().New(nil)
	require.NoError(t, err)
	assert.Equal(t, "<Root>", FormatComponentName(root, true))

	named := childOf(t, root, NewOptions().With(KeyName, "user-card").With(KeyFile, "src/components/UserCard.vue"))
	assert.Equal(t, "<UserCard>", FormatComponentName(named, false))
	assert.Equal(t, "<UserCard> at src/components/UserCard.vue", FormatComponentName(named, true))

	fromFile := childOf(t, root, NewOptions().With(KeyFile, `src\widgets\price_tag.vue`))
	assert.Equal(t, "<PriceTag>", FormatComponentName(fromFile, false))

	anonymous := childOf(t, root, NewOptions())
	assert.Equal(t, "<Anonymous>", FormatComponentName(anonymous, false))
}
