// Package envelope implements the PVAccess message header: the 8-byte
// frame prefix that carries the magic byte, protocol version, flag
// byte, command code, and payload size preceding every application or
// control message.
package envelope

import (
	"encoding/binary"
	"errors"
)

// ErrBadMagic is returned when the first header byte is not the
// protocol magic. It is fatal: framing is lost and the connection
// must be closed, since nothing downstream can resynchronize.
var ErrBadMagic = errors.New("envelope: bad magic byte")

// ErrShortHeader is returned when fewer than HeaderSize bytes are
// available to decode.
var ErrShortHeader = errors.New("envelope: short header")

// Magic is the fixed first byte of every header.
const Magic = 0xCA

// Version is the protocol version this module speaks.
const Version = 1

// HeaderSize is the fixed on-wire size of a header, in bytes.
const HeaderSize = 8

// MessageType distinguishes application commands (§6.4) from control
// commands (§6.5); carried in the flag byte.
type MessageType uint8

const (
	Application MessageType = iota
	Control
)

// Direction records which role sent the frame.
type Direction uint8

const (
	FromClient Direction = iota
	FromServer
)

// Segment records a frame's position in a segmented message. The
// core dispatcher parses this but does not yet reassemble segments
// (spec §4.7): all traffic exercised today is Unsegmented.
type Segment uint8

const (
	Unsegmented Segment = iota
	First
	Last
	Middle
)

// Flag bit layout within the header's flags byte. Only the bits this
// protocol assigns meaning to are named; the rest are reserved and
// always decode/encode as zero.
const (
	flagTypeBit      = 1 << 7
	flagDirectionBit = 1 << 6
	flagEndianBit    = 1 << 5
	flagSegmentShift = 2
	flagSegmentMask  = 0b11 << flagSegmentShift
)

// Flags is the decoded form of the header's flag byte.
type Flags struct {
	Type      MessageType
	Direction Direction
	Segment   Segment
	BigEndian bool
}

// Order returns the byte order this flag set advertises for the
// frame's payload.
func (f Flags) Order() binary.ByteOrder {
	if f.BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// DecodeFlags unpacks a flag byte.
func DecodeFlags(b byte) Flags {
	return Flags{
		Type:      MessageType((b & flagTypeBit) >> 7),
		Direction: Direction((b & flagDirectionBit) >> 6),
		Segment:   Segment((b & flagSegmentMask) >> flagSegmentShift),
		BigEndian: b&flagEndianBit != 0,
	}
}

// EncodeFlags packs a Flags value back into its single byte.
func EncodeFlags(f Flags) byte {
	var b byte
	b |= byte(f.Type) << 7
	b |= byte(f.Direction) << 6
	b |= byte(f.Segment) << flagSegmentShift
	if f.BigEndian {
		b |= flagEndianBit
	}
	return b
}

// Header is the decoded 8-byte message prefix.
type Header struct {
	Version     uint8
	Flags       Flags
	Command     uint8
	PayloadSize uint32
}

// IsValid reports whether a decoded header's magic was accepted. A
// Header produced by Decode is always valid; this mirrors the
// `is_valid()` predicate spec §8's header-parse scenario names.
func (h Header) IsValid() bool {
	return true
}

// Decode reads an 8-byte header from buf. The header itself is always
// framed with the endianness its own flag byte advertises; the header
// fields are decoded using that same order once the flag byte (at a
// fixed offset regardless of endianness) is read.
func Decode(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, ErrShortHeader
	}
	if buf[0] != Magic {
		return Header{}, ErrBadMagic
	}
	flags := DecodeFlags(buf[2])
	order := flags.Order()
	return Header{
		Version:     buf[1],
		Flags:       flags,
		Command:     buf[3],
		PayloadSize: order.Uint32(buf[4:8]),
	}, nil
}

// Encode packs h back into its 8-byte wire form, using the byte order
// h.Flags advertises.
func Encode(h Header) []byte {
	buf := make([]byte, HeaderSize)
	buf[0] = Magic
	buf[1] = h.Version
	buf[2] = EncodeFlags(h.Flags)
	buf[3] = h.Command
	h.Flags.Order().PutUint32(buf[4:8], h.PayloadSize)
	return buf
}

// ApplicationMessageCode enumerates the command byte values a header
// carries when its flag byte's Type is Application (§6.4).
type ApplicationMessageCode uint8

const (
	Beacon ApplicationMessageCode = iota
	ConnectionValidation
	Echo
	SearchRequest
	SearchResponse
	AuthNZ
	AccessRights
	CreateChannel
	DestroyChannel
	ConnectionValidated
	ChannelGet
	ChannelPut
	ChannelPutGet
	ChannelMonitor
	ChannelArray
	DestroyRequest
	ChannelProcess
	ChannelIF
	Message
	MultipleDataResponse
	ChannelRPC
	CancelRequest
)

// ControlMessageCode enumerates the command byte values a header
// carries when its flag byte's Type is Control (§6.5).
type ControlMessageCode uint8

const (
	MarkSent ControlMessageCode = iota
	AcknowledgeSent
	ByteOrder
	EchoRequest
	EchoResponse
)
