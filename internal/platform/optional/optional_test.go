package optional

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type patch struct {
	Name  Field[string]  `json:"name"`
	Price Field[float64] `json:"price"`
}

func TestField_DistinguishesAbsentNullAndValue(t *testing.T) {
	var p patch
	require.NoError(t, json.Unmarshal([]byte(`{"price": null}`), &p))

	assert.False(t, p.Name.Set, "name no enviado")
	assert.True(t, p.Price.Set)
	assert.True(t, p.Price.Null)

	_, ok := p.Price.Get()
	assert.False(t, ok)
}

func TestField_Value(t *testing.T) {
	var p patch
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Buddy","price":12.5}`), &p))

	name, ok := p.Name.Get()
	require.True(t, ok)
	assert.Equal(t, "Buddy", name)

	price, ok := p.Price.Get()
	require.True(t, ok)
	assert.Equal(t, 12.5, price)
}

func TestField_EmptyStringIsAValue(t *testing.T) {
	var p patch
	require.NoError(t, json.Unmarshal([]byte(`{"name":""}`), &p))

	assert.True(t, p.Name.Set)
	assert.False(t, p.Name.Null)
	v, ok := p.Name.Get()
	assert.True(t, ok)
	assert.Equal(t, "", v)
}

func TestField_WrongType(t *testing.T) {
	var p patch
	err := json.Unmarshal([]byte(`{"price":"abc"}`), &p)
	assert.Error(t, err)
}
