// Package dispatch implements the per-connection frame extractor and
// the client- and server-role state machines that drive it (spec
// §4.6): the layer that turns a byte stream into PVAccess messages
// and turns session state transitions into outbound frames.
package dispatch

import "errors"

var (
	// ErrProtocolViolation is returned when a role receives a message
	// it should never receive in its current state (spec §7).
	ErrProtocolViolation = errors.New("dispatch: protocol violation")
)
