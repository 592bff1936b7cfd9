package rpccodec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	ID    string   `json:"id"`
	Items []string `json:"items,omitempty"`
}

func TestJSONRoundTrip(t *testing.T) {
	codec := JSON{}
	assert.Equal(t, "json", codec.Name())

	data, err := codec.Marshal(&sample{ID: "a", Items: []string{"x"}})
	require.NoError(t, err)

	var got sample
	require.NoError(t, codec.Unmarshal(data, &got))
	assert.Equal(t, sample{ID: "a", Items: []string{"x"}}, got)
}

func TestJSONUnmarshalRejectsUnknownFields(t *testing.T) {
	var got sample
	err := JSON{}.Unmarshal([]byte(`{"id":"a","title":"nope"}`), &got)
	require.Error(t, err)
}

func TestJSONUnmarshalEmptyBody(t *testing.T) {
	got := sample{ID: "keep"}
	require.NoError(t, JSON{}.Unmarshal(nil, &got))
	assert.Equal(t, "keep", got.ID)
}
