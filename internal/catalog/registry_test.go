package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	v, err := New(TagSmartphone)
	require.NoError(t, err)
	phone, ok := v.(*Smartphone)
	require.True(t, ok)
	assert.True(t, phone.HasSDSlot)
	assert.Equal(t, TagSmartphone, phone.Type)

	v, err = New(TagNotebook)
	require.NoError(t, err)
	assert.IsType(t, &NoteBook{}, v)

	_, err = New("tablet")
	require.ErrorIs(t, err, ErrUnknownType)
}

func TestRegistryIsConsistent(t *testing.T) {
	assert.Equal(t, []TypeTag{TagNotebook, TagSmartphone}, Tags())

	seen := map[TypeTag]bool{}
	for _, k := range registry {
		assert.False(t, seen[k.tag], "duplicate tag %s", k.tag)
		seen[k.tag] = true

		v := k.newVariant()
		assert.Len(t, v.specValues(), len(v.specColumns()), k.tag)
		assert.Len(t, v.specTargets(), len(v.specColumns()), k.tag)
		assert.NotEmpty(t, k.category, k.tag)
	}
}

func TestProductURL(t *testing.T) {
	assert.Equal(t, "/api/products/notebook/acer-aspire", ProductURL(TagNotebook, "acer-aspire"))
}
