package pdu

import "github.com/rcarmo/go-pva/internal/pvabuf"

// ChannelRequest is one (client-id, name) pair requested by a
// CreateChannelRequest (spec §4.5).
type ChannelRequest struct {
	ClientID uint32
	Name     []byte
}

// CreateChannelRequest asks the server to open one or more named
// channels (spec §4.5, command 0x07).
type CreateChannelRequest struct {
	Channels []ChannelRequest
}

func (c CreateChannelRequest) Serialize(w *pvabuf.Writer) {
	w.U16(uint16(len(c.Channels)))
	for _, ch := range c.Channels {
		w.U32(ch.ClientID)
		w.String(ch.Name)
	}
}

func DeserializeCreateChannelRequest(r *pvabuf.Reader) (CreateChannelRequest, error) {
	count, err := r.U16()
	if err != nil {
		return CreateChannelRequest{}, err
	}
	channels := make([]ChannelRequest, 0, count)
	for i := uint16(0); i < count; i++ {
		var ch ChannelRequest
		if ch.ClientID, err = r.U32(); err != nil {
			return CreateChannelRequest{}, err
		}
		if ch.Name, err = r.String(); err != nil {
			return CreateChannelRequest{}, err
		}
		channels = append(channels, ch)
	}
	return CreateChannelRequest{Channels: channels}, nil
}

// CreateChannelResponse answers one channel creation (spec §4.5,
// command 0x07 on the reply path). AccessRights is only meaningful
// (and only present on the wire) when Status.Kind is OK or WARNING per
// spec §4.5; never for DEFAULT, even though Status.IsOK() accepts
// DEFAULT. Spec §9 open question (b)
// says to follow the u16 interpretation of accessRights, not the
// 4-byte one some producers use; this implementation always reads
// and writes it as a plain uint16.
type CreateChannelResponse struct {
	ClientID     uint32
	ServerID     uint32
	Status       Status
	AccessRights uint16
}

func (c CreateChannelResponse) Serialize(w *pvabuf.Writer) {
	w.U32(c.ClientID)
	w.U32(c.ServerID)
	c.Status.Serialize(w)
	if c.Status.Kind == StatusOK || c.Status.Kind == StatusWarning {
		w.U16(c.AccessRights)
	}
}

func DeserializeCreateChannelResponse(r *pvabuf.Reader) (CreateChannelResponse, error) {
	var c CreateChannelResponse
	var err error
	if c.ClientID, err = r.U32(); err != nil {
		return CreateChannelResponse{}, err
	}
	if c.ServerID, err = r.U32(); err != nil {
		return CreateChannelResponse{}, err
	}
	if c.Status, err = DeserializeStatus(r); err != nil {
		return CreateChannelResponse{}, err
	}
	if c.Status.Kind == StatusOK || c.Status.Kind == StatusWarning {
		if c.AccessRights, err = r.U16(); err != nil {
			return CreateChannelResponse{}, err
		}
	}
	return c, nil
}

// DestroyChannel ends one channel's lifetime (spec §4.5 supplemented
// feature, command 0x08). Its body is not documented by spec.md; this
// shape is sourced from the channel table's own key pair (spec §3).
type DestroyChannel struct {
	ClientChannelID uint32
	ServerChannelID uint32
}

func (d DestroyChannel) Serialize(w *pvabuf.Writer) {
	w.U32(d.ClientChannelID)
	w.U32(d.ServerChannelID)
}

func DeserializeDestroyChannel(r *pvabuf.Reader) (DestroyChannel, error) {
	var d DestroyChannel
	var err error
	if d.ClientChannelID, err = r.U32(); err != nil {
		return DestroyChannel{}, err
	}
	if d.ServerChannelID, err = r.U32(); err != nil {
		return DestroyChannel{}, err
	}
	return d, nil
}

// DestroyRequest cancels one in-flight operation on a channel (spec
// §4.5 supplemented feature, command 0x0F).
type DestroyRequest struct {
	ServerChannelID uint32
	RequestID       uint32
}

func (d DestroyRequest) Serialize(w *pvabuf.Writer) {
	w.U32(d.ServerChannelID)
	w.U32(d.RequestID)
}

func DeserializeDestroyRequest(r *pvabuf.Reader) (DestroyRequest, error) {
	var d DestroyRequest
	var err error
	if d.ServerChannelID, err = r.U32(); err != nil {
		return DestroyRequest{}, err
	}
	if d.RequestID, err = r.U32(); err != nil {
		return DestroyRequest{}, err
	}
	return d, nil
}
