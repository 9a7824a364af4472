package roster

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Roupies/holbertonschool-web-back-end/internal/domain/shared"
)

func TestNormalizeNumericEntries_DoublesOncePerCall(t *testing.T) {
	m := NewTagMap()
	m.Set("Bread", Number(10))
	m.Set("Cheese", Number(1.5))

	got, err := NormalizeNumericEntries(m)
	require.NoError(t, err)
	assert.Same(t, m, got)

	v, _ := m.Get("Bread")
	assert.Equal(t, Number(20), v)
	v, _ = m.Get("Cheese")
	assert.Equal(t, Number(3), v)

	_, err = NormalizeNumericEntries(m)
	require.NoError(t, err)
	v, _ = m.Get("Bread")
	assert.Equal(t, Number(40), v)
}

func TestNormalizeNumericEntries_LeavesOtherValues(t *testing.T) {
	m := NewTagMap()
	m.Set("label", Text("12"))
	m.Set("active", Flag(true))
	m.Set("none", Null{})
	m.Set("nested", Raw(`{"n":1}`))
	m.Set("count", Number(-4))

	_, err := NormalizeNumericEntries(m)
	require.NoError(t, err)

	v, _ := m.Get("label")
	assert.Equal(t, Text("12"), v)
	v, _ = m.Get("active")
	assert.Equal(t, Flag(true), v)
	v, _ = m.Get("none")
	assert.Equal(t, Null{}, v)
	v, _ = m.Get("nested")
	assert.Equal(t, Raw(`{"n":1}`), v)
	v, _ = m.Get("count")
	assert.Equal(t, Number(-8), v)
}

func TestNormalizeNumericEntries_RejectsNonMap(t *testing.T) {
	var nilMap *TagMap
	tests := []struct {
		name string
		arg  TagArg
	}{
		{"nil", nil},
		{"nil map pointer", nilMap},
		{"array", DecodeTagArg([]byte(`[1,2,3]`))},
		{"number", DecodeTagArg([]byte(`42`))},
		{"string", DecodeTagArg([]byte(`"map"`))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeNumericEntries(tt.arg)
			assert.Nil(t, got)
			assert.True(t, errors.Is(err, ErrTypeProcessing))
			assert.True(t, shared.IsValidation(err))
			assert.Contains(t, err.Error(), "Cannot process")
		})
	}
}

func TestTagMap_JSONRoundTripKeepsOrder(t *testing.T) {
	arg := DecodeTagArg([]byte(`{"z":1,"a":"x","m":true,"n":null,"o":[1,2]}`))
	m, ok := arg.(*TagMap)
	require.True(t, ok)

	assert.Equal(t, []string{"z", "a", "m", "n", "o"}, m.Keys())

	_, err := NormalizeNumericEntries(m)
	require.NoError(t, err)

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, `{"z":2,"a":"x","m":true,"n":null,"o":[1,2]}`, string(data))
}

func TestTagMap_SetOverwriteKeepsPosition(t *testing.T) {
	var m TagMap
	m.Set("a", Number(1))
	m.Set("b", Number(2))
	m.Set("a", Text("one"))

	assert.Equal(t, []string{"a", "b"}, m.Keys())
	assert.Equal(t, 2, m.Len())

	assert.True(t, m.Delete("a"))
	assert.False(t, m.Delete("a"))
	assert.Equal(t, []string{"b"}, m.Keys())
}

func TestTagMap_All(t *testing.T) {
	m := NewTagMap()
	m.Set("x", Number(1))
	m.Set("y", Number(2))

	var keys []string
	for k := range m.All() {
		keys = append(keys, k)
	}
	assert.Equal(t, []string{"x", "y"}, keys)
}

func TestTagMap_NonFiniteNumbersEncodeAsNull(t *testing.T) {
	m, ok := DecodeTagArg([]byte(`{"a":1e308,"b":2}`)).(*TagMap)
	require.True(t, ok)

	_, err := NormalizeNumericEntries(m)
	require.NoError(t, err)

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, `{"a":null,"b":4}`, string(data))

	m.Set("nan", Number(math.NaN()))
	data, err = json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, `{"a":null,"b":4,"nan":null}`, string(data))
}

func TestTagMap_CloneIsIndependent(t *testing.T) {
	m := NewTagMap()
	m.Set("n", Number(1))
	m.Set("raw", Raw(`[1]`))

	c := m.Clone()
	_, err := NormalizeNumericEntries(c)
	require.NoError(t, err)
	c.Set("extra", Flag(true))

	v, _ := m.Get("n")
	assert.Equal(t, Number(1), v)
	assert.Equal(t, []string{"n", "raw"}, m.Keys())
	v, _ = c.Get("n")
	assert.Equal(t, Number(2), v)
}
