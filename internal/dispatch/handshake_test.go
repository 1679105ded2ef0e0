package dispatch

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcarmo/go-pva/internal/channel"
	"github.com/rcarmo/go-pva/internal/envelope"
	"github.com/rcarmo/go-pva/internal/fieldtype"
)

// TestFullHandshakeAndIntrospectionFetch drives a ServerSession and a
// ClientSession against each other over in-memory wires end to end:
// byte-order negotiation, connection validation (spec §8 scenario 6),
// channel creation, and the channel's root-type introspection fetch.
func TestFullHandshakeAndIntrospectionFetch(t *testing.T) {
	channels := channel.NewTable()
	var serverWire, clientWire bytes.Buffer

	server := NewServerSession(&serverWire, channels, nil)
	client := NewClientSession(&clientWire, []byte("testMP"))

	require.NoError(t, server.Start())

	serverExtractor := NewExtractor()
	clientExtractor := NewExtractor()

	for i := 0; i < 10 && client.State() != Idle; i++ {
		toClient := append([]byte(nil), serverWire.Bytes()...)
		serverWire.Reset()
		frames, err := clientExtractor.Feed(toClient)
		require.NoError(t, err)
		for _, f := range frames {
			require.NoError(t, client.HandleFrame(f))
		}

		toServer := append([]byte(nil), clientWire.Bytes()...)
		clientWire.Reset()
		frames, err = serverExtractor.Feed(toServer)
		require.NoError(t, err)
		for _, f := range frames {
			require.NoError(t, server.HandleFrame(f))
		}
	}

	require.Equal(t, Idle, client.State())
	assert.Equal(t, Serving, server.State())
	assert.Equal(t, 1, channels.Len())

	require.NotNil(t, client.RootType)
	assert.Equal(t, fieldtype.Float, client.RootType.Type.Major)
	assert.Equal(t, fieldtype.Binary64, client.RootType.Type.Sub)

	entry, ok := channels.Get(client.ServerChannelID())
	require.True(t, ok)
	assert.Equal(t, "testMP", string(entry.Name))
}

// TestServerStartEmitsByteOrderThenValidationRequest reproduces spec
// §8 scenario 6's opening half directly against the wire bytes.
func TestServerStartEmitsByteOrderThenValidationRequest(t *testing.T) {
	channels := channel.NewTable()
	var wire bytes.Buffer
	server := NewServerSession(&wire, channels, nil)
	require.NoError(t, server.Start())

	e := NewExtractor()
	frames, err := e.Feed(wire.Bytes())
	require.NoError(t, err)
	require.Len(t, frames, 2)
	assert.Equal(t, envelope.Control, frames[0].Header.Flags.Type)
	assert.Equal(t, uint8(envelope.ByteOrder), frames[0].Header.Command)
	assert.Equal(t, envelope.Application, frames[1].Header.Flags.Type)
	assert.Equal(t, uint8(envelope.ConnectionValidation), frames[1].Header.Command)
	assert.Equal(t, SentValidationRequest, server.State())
}
