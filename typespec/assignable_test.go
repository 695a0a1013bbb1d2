package typespec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignableFrom(t *testing.T) {
	object := NewClassSpec("object")
	number := NewClassSpec("number", object)
	integer := NewClassSpec("integer", number)
	str := NewClassSpec("string", object)

	collection := NewGenericClassSpec("collection", []TypeParam{{Name: "E"}})
	listE := NewVariableSpec("E", nil)
	collectionOfE, err := NewParameterizedSpec(collection, listE)
	require.NoError(t, err)
	list := NewGenericClassSpecOf("list", []*VariableSpec{listE}, collectionOfE)

	testCases := []struct {
		name        string
		base, other *ClassSpec
		want        bool
	}{
		{"reflexive", number, number, true},
		{"direct supertype", number, integer, true},
		{"transitive supertype", object, integer, true},
		{"unrelated classes", number, str, false},
		{"wrong direction", integer, number, false},
		{"through a parameterized supertype", collection, list, true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.base.AssignableFrom(tc.other))
		})
	}

	t.Run("nil other", func(t *testing.T) {
		assert.False(t, number.AssignableFrom(nil))
	})
}

func TestRawOf(t *testing.T) {
	list := NewGenericClassSpec("list", []TypeParam{{Name: "E"}})
	str := NewClassSpec("string")
	listOfString, err := NewParameterizedSpec(list, str)
	require.NoError(t, err)

	raw, ok := RawOf(listOfString)
	require.True(t, ok)
	assert.Same(t, list, raw)

	raw, ok = RawOf(str)
	require.True(t, ok)
	assert.Same(t, str, raw)

	_, ok = RawOf(NewArraySpec(str))
	assert.False(t, ok)
}
