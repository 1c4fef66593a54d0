package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringListScanTolerance(t *testing.T) {
	var l StringList

	require.NoError(t, l.Scan(nil))
	assert.Equal(t, StringList{}, l, "NULL columns come back as empty, never nil")

	require.NoError(t, l.Scan(`["a","b"]`))
	assert.Equal(t, StringList{"a", "b"}, l)

	require.NoError(t, l.Scan([]byte(`["c"]`)))
	assert.Equal(t, StringList{"c"}, l)

	assert.Error(t, l.Scan(42))
}

func TestOverrideMapCloneIsIndependent(t *testing.T) {
	qty := 3
	m := OverrideMap{"opt-a": {Quantity: &qty}}

	clone := m.Clone()
	other := 9
	clone["opt-a"] = OptionOverride{Quantity: &other}
	clone["opt-b"] = OptionOverride{}

	require.Len(t, m, 1)
	assert.Equal(t, 3, *m["opt-a"].Quantity, "mutating the clone leaves the source untouched")
}

func TestNilCollectionsValueAsEmptyJSON(t *testing.T) {
	var l StringList
	v, err := l.Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	var m OverrideMap
	v, err = m.Value()
	require.NoError(t, err)
	assert.Equal(t, "{}", v)

	var h SendHistoryList
	v, err = h.Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)
}
