package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVatOverrideJSONDistinguishesResetFromForceOff(t *testing.T) {
	var v VatOverride

	require.NoError(t, json.Unmarshal([]byte("null"), &v))
	assert.Equal(t, VatInherit, v)

	require.NoError(t, json.Unmarshal([]byte("false"), &v))
	assert.Equal(t, VatDisabled, v)

	require.NoError(t, json.Unmarshal([]byte("true"), &v))
	assert.Equal(t, VatEnabled, v)

	assert.Error(t, json.Unmarshal([]byte(`"yes"`), &v), "malformed overrides never degrade to inherit")
}

func TestVatOverrideRoundTrip(t *testing.T) {
	for _, v := range []VatOverride{VatInherit, VatEnabled, VatDisabled} {
		data, err := json.Marshal(v)
		require.NoError(t, err)

		var back VatOverride
		require.NoError(t, json.Unmarshal(data, &back))
		assert.Equal(t, v, back)
	}
}

func TestVatOverrideScanNullableBoolean(t *testing.T) {
	var v VatOverride

	require.NoError(t, v.Scan(nil))
	assert.Equal(t, VatInherit, v)

	require.NoError(t, v.Scan(true))
	assert.Equal(t, VatEnabled, v)

	// sqlite hands booleans back as integers
	require.NoError(t, v.Scan(int64(0)))
	assert.Equal(t, VatDisabled, v)

	assert.Error(t, v.Scan("true"))
}

func TestVatOverrideValueIsNullableBoolean(t *testing.T) {
	val, err := VatInherit.Value()
	require.NoError(t, err)
	assert.Nil(t, val)

	val, err = VatDisabled.Value()
	require.NoError(t, err)
	assert.Equal(t, false, val)
}
