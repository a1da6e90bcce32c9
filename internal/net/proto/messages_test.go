package proto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ringside/internal/arena"
	"ringside/internal/character"
)

func TestInputRoundTrip(t *testing.T) {
	data, err := Encode(NewInput(42, arena.InputLight|arena.InputRight))
	require.NoError(t, err)
	assert.JSONEq(t, `{"t":"in","f":42,"m":10}`, string(data))

	decoded, err := Decode(data)
	require.NoError(t, err)
	msg, ok := decoded.(Input)
	require.True(t, ok, "decoded to %T", decoded)
	assert.Equal(t, uint32(42), msg.Frame)
	assert.Equal(t, uint8(arena.InputLight|arena.InputRight), msg.Mask)
}

func TestResendRequestRoundTrip(t *testing.T) {
	data, err := Encode(NewResendRequest(41))
	require.NoError(t, err)
	assert.JSONEq(t, `{"t":"req","f":41}`, string(data))

	decoded, err := Decode(data)
	require.NoError(t, err)
	msg, ok := decoded.(ResendRequest)
	require.True(t, ok, "decoded to %T", decoded)
	assert.Equal(t, uint32(41), msg.Frame)
}

func TestHelloRoundTrip(t *testing.T) {
	hello := Hello{T: TypeHello, User: "challenger", Character: character.Default("challenger")}
	data, err := Encode(hello)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	msg, ok := decoded.(Hello)
	require.True(t, ok, "decoded to %T", decoded)
	assert.Equal(t, "challenger", msg.User)
	assert.Equal(t, hello.Character, msg.Character)
	assert.NoError(t, msg.Character.Validate())
}

func TestStartRoundTrip(t *testing.T) {
	start := Start{
		T:      TypeStart,
		Seed:   -12345,
		P1User: "host",
		P2User: "guest",
		P1Char: character.Default("host"),
		P2Char: character.Default("guest"),
	}
	data, err := Encode(start)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	msg, ok := decoded.(Start)
	require.True(t, ok, "decoded to %T", decoded)
	assert.Equal(t, start, msg)
}

func TestDecodeRejectsMalformedPayloads(t *testing.T) {
	cases := map[string]string{
		"not json":      `input 42`,
		"empty object":  `{}`,
		"unknown tag":   `{"t":"teleport","f":1}`,
		"wrong types":   `{"t":"in","f":"one","m":3}`,
		"mask overflow": `{"t":"in","f":1,"m":255}`,
		"truncated":     `{"t":"in","f":1`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(payload))
			assert.Error(t, err)
		})
	}
}
