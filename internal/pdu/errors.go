package pdu

import "errors"

var (
	// ErrUnexpectedMessage names the case of a role receiving a message
	// it should never send or receive in its current state (spec §7
	// ProtocolViolation). The decoders in this package do not return
	// it; internal/dispatch reports that case as
	// dispatch.ErrProtocolViolation.
	ErrUnexpectedMessage = errors.New("pdu: unexpected message for role/state")
	// ErrUnknownStatusKind is returned when a Status byte is not one
	// of the five defined kinds.
	ErrUnknownStatusKind = errors.New("pdu: unknown status kind")
)
