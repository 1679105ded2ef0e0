package dispatch

import (
	"encoding/binary"
	"io"

	"github.com/rcarmo/go-pva/internal/envelope"
)

// ServerState is the server role's connection state machine (spec
// §3 Connection state, §4.6).
type ServerState uint8

const (
	// SentByteOrder: the server has written its ByteOrder control
	// frame and nothing else yet.
	SentByteOrder ServerState = iota
	// SentValidationRequest: the server has also written its
	// ConnectionValidationRequest and is waiting for the client's
	// ConnectionValidationResponse.
	SentValidationRequest
	// Validated: the handshake completed; no channel is open yet.
	Validated
	// Serving: at least one channel has been created.
	Serving
)

// ClientState is the client role's connection state machine (spec
// §3 Connection state, §4.6).
type ClientState uint8

const (
	AwaitingByteOrder ClientState = iota
	AwaitingValidation
	AwaitingValidated
	AwaitingChannel
	AwaitingIntrospection
	Idle
)

// writeFrame encodes header+payload and writes it to out in one call,
// so a frame is never observed half-written by a concurrent reader of
// the same connection.
func writeFrame(out io.Writer, bigEndian bool, direction envelope.Direction, msgType envelope.MessageType, command uint8, payload []byte) error {
	h := envelope.Header{
		Version: envelope.Version,
		Flags: envelope.Flags{
			Type:      msgType,
			Direction: direction,
			Segment:   envelope.Unsegmented,
			BigEndian: bigEndian,
		},
		Command:     command,
		PayloadSize: uint32(len(payload)),
	}
	buf := make([]byte, 0, envelope.HeaderSize+len(payload))
	buf = append(buf, envelope.Encode(h)...)
	buf = append(buf, payload...)
	_, err := out.Write(buf)
	return err
}

func order(bigEndian bool) binary.ByteOrder {
	if bigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}
