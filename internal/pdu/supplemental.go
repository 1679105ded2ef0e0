package pdu

import "github.com/rcarmo/go-pva/internal/pvabuf"

// Echo is a liveness probe (spec §4.5 supplemented feature, command
// 0x02): whatever payload a client sends, the server role in
// internal/dispatch returns verbatim. The client role does not answer
// Echo frames.
// Neither spec.md nor the original source documents a body beyond
// "opaque payload"; SPEC_FULL gives it one so internal/dispatch has
// something concrete to round-trip.
type Echo struct {
	Payload []byte
}

func (e Echo) Serialize(w *pvabuf.Writer) {
	w.Raw(e.Payload)
}

// DeserializeEcho consumes the entire remaining payload as the echoed
// bytes; callers must scope r to exactly this message's payload.
func DeserializeEcho(r *pvabuf.Reader) (Echo, error) {
	data, err := r.Raw(r.Len())
	if err != nil {
		return Echo{}, err
	}
	return Echo{Payload: data}, nil
}

// AccessRights notifies a client that a channel's access rights
// changed after creation (spec §4.5 supplemented feature, command
// 0x06). CreateChannelResponse only conveys rights at creation time;
// this message is the server's way to push a later change.
type AccessRights struct {
	ServerChannelID uint32
	Rights          uint16
}

func (a AccessRights) Serialize(w *pvabuf.Writer) {
	w.U32(a.ServerChannelID)
	w.U16(a.Rights)
}

func DeserializeAccessRights(r *pvabuf.Reader) (AccessRights, error) {
	var a AccessRights
	var err error
	if a.ServerChannelID, err = r.U32(); err != nil {
		return AccessRights{}, err
	}
	if a.Rights, err = r.U16(); err != nil {
		return AccessRights{}, err
	}
	return a, nil
}
