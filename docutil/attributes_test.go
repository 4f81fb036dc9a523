package docutil

import (
	"errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

type profile struct {
	Name    string    `structs:"name"`
	Email   string    `structs:"email,omitempty"`
	Joined  time.Time `structs:"joined,omitnested"`
	Address address   `structs:"address"`
	secret  string
}

type address struct {
	City string `structs:"city"`
}

func TestAttributesFromStruct(t *testing.T) {
	joined := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	attrs, err := Attributes(&profile{Name: "a", Joined: joined, Address: address{City: "Pune"}, secret: "x"})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{
		"name":    "a",
		"joined":  joined,
		"address": map[string]interface{}{"city": "Pune"},
	}, attrs)
}

func TestAttributesFromMap(t *testing.T) {
	in := map[string]interface{}{"name": "a"}
	attrs, err := Attributes(in)
	require.NoError(t, err)
	assert.Equal(t, in, attrs)

	attrs, err = Attributes(Document{"name": "b"})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"name": "b"}, attrs)
}

func TestAttributesUnsupported(t *testing.T) {
	for _, v := range []interface{}{nil, "name", 42, []string{"a"}} {
		_, err := Attributes(v)
		assert.True(t, errors.Is(err, ErrUnsupportedAttributes), "%#v accepted", v)
	}
}
