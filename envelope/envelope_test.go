package envelope

import (
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/require"
)

func TestWrapUnwrap(t *testing.T) {
	for _, data := range [][]byte{{}, {1, 2, 3}, make([]byte, 4096)} {
		enc, err := Wrap(data)
		require.NoError(t, err)
		got, err := Unwrap(enc)
		require.NoError(t, err)
		require.Equal(t, len(data), len(got))
		if len(data) > 0 {
			require.Equal(t, data, got)
		}
	}
}

func TestDeterministic(t *testing.T) {
	a, err := Wrap([]byte("payload"))
	require.NoError(t, err)
	b, err := Wrap([]byte("payload"))
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestTaggedLayout(t *testing.T) {
	enc, err := Wrap([]byte{7})
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, cbor.Unmarshal(enc, &raw))
	require.Equal(t, "CallRemote", raw["type"])
	require.Contains(t, raw, "content")
}

func TestUnknownKind(t *testing.T) {
	enc, err := cbor.Marshal(map[string]any{
		"type":    "Broadcast",
		"content": map[string]any{"data": []byte{1}},
	})
	require.NoError(t, err)
	_, err = Decode(enc)
	require.ErrorIs(t, err, ErrUnknownKind)
}

func TestMalformed(t *testing.T) {
	_, err := Decode([]byte{0xff, 0x00})
	require.ErrorIs(t, err, ErrMalformed)

	enc, err := cbor.Marshal(map[string]any{"type": "CallRemote"})
	require.NoError(t, err)
	_, err = Decode(enc)
	require.ErrorIs(t, err, ErrMalformed)
}
