package codec

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

type order struct {
	ID    string `json:"id"`
	Total int    `json:"total"`
}

func TestJSON_Compact(t *testing.T) {
	data, err := JSON[order]{}.Encode(order{ID: "o-1", Total: 3})
	require.NoError(t, err)
	require.Equal(t, `{"id":"o-1","total":3}`, string(data))

	v, err := JSON[order]{}.Decode(data)
	require.NoError(t, err)
	require.Equal(t, order{ID: "o-1", Total: 3}, v)
}

func TestJSON_DecodeError(t *testing.T) {
	_, err := JSON[order]{}.Decode([]byte("{"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "codec.order")
}

func TestFuncs(t *testing.T) {
	c := Funcs[int]{
		EncodeFunc: func(v int) ([]byte, error) { return []byte(strconv.Itoa(v)), nil },
		DecodeFunc: func(data []byte) (int, error) { return strconv.Atoi(string(data)) },
	}

	data, err := c.Encode(42)
	require.NoError(t, err)
	v, err := c.Decode(data)
	require.NoError(t, err)
	require.Equal(t, 42, v)
}
