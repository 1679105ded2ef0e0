package pdu

import "github.com/rcarmo/go-pva/internal/pvabuf"

// Sub-command bytes selecting the phase of a channel-get/put
// operation (spec GLOSSARY "Sub-command").
const (
	SubCommandGet  uint8 = 0x00
	SubCommandInit uint8 = 0x08
)

// ChannelGetFieldRequest asks for the introspection of a channel's
// root type, or of a named sub-field when SubFieldName is non-empty.
// Both it and its response travel under command 0x11 (ChannelIF); the
// data-get request/response pair below this type in the file uses the
// distinct 0x0A (ChannelGet) command (spec §4.5).
type ChannelGetFieldRequest struct {
	ServerChannelID uint32
	RequestID       uint32
	SubFieldName    []byte
}

func (c ChannelGetFieldRequest) Serialize(w *pvabuf.Writer) {
	w.U32(c.ServerChannelID)
	w.U32(c.RequestID)
	w.String(c.SubFieldName)
}

func DeserializeChannelGetFieldRequest(r *pvabuf.Reader) (ChannelGetFieldRequest, error) {
	var c ChannelGetFieldRequest
	var err error
	if c.ServerChannelID, err = r.U32(); err != nil {
		return ChannelGetFieldRequest{}, err
	}
	if c.RequestID, err = r.U32(); err != nil {
		return ChannelGetFieldRequest{}, err
	}
	if c.SubFieldName, err = r.String(); err != nil {
		return ChannelGetFieldRequest{}, err
	}
	return c, nil
}

// ChannelGetFieldResponse precedes the trailing introspection payload
// decoded separately via internal/introspect (spec §4.3, §4.6).
type ChannelGetFieldResponse struct {
	RequestID uint32
	Status    Status
}

func (c ChannelGetFieldResponse) Serialize(w *pvabuf.Writer) {
	w.U32(c.RequestID)
	c.Status.Serialize(w)
}

func DeserializeChannelGetFieldResponse(r *pvabuf.Reader) (ChannelGetFieldResponse, error) {
	var c ChannelGetFieldResponse
	var err error
	if c.RequestID, err = r.U32(); err != nil {
		return ChannelGetFieldResponse{}, err
	}
	if c.Status, err = DeserializeStatus(r); err != nil {
		return ChannelGetFieldResponse{}, err
	}
	return c, nil
}

// ChannelGetRequestInit opens a get operation's "init" phase
// (sub-command SubCommandInit), negotiating the request/response
// structure before any ChannelGetRequest streams data (SPEC_FULL
// supplemented feature, sourced from messages.py's
// ChannelGetRequestInit).
type ChannelGetRequestInit struct {
	ServerChannelID uint32
	RequestID       uint32
}

func (c ChannelGetRequestInit) Serialize(w *pvabuf.Writer) {
	w.U32(c.ServerChannelID)
	w.U32(c.RequestID)
	w.U8(SubCommandInit)
}

func DeserializeChannelGetRequestInit(r *pvabuf.Reader) (ChannelGetRequestInit, error) {
	var c ChannelGetRequestInit
	var err error
	if c.ServerChannelID, err = r.U32(); err != nil {
		return ChannelGetRequestInit{}, err
	}
	if c.RequestID, err = r.U32(); err != nil {
		return ChannelGetRequestInit{}, err
	}
	if _, err = r.U8(); err != nil { // sub-command, always SubCommandInit here
		return ChannelGetRequestInit{}, err
	}
	return c, nil
}

// ChannelGetResponseInit answers the init phase; its own PVField
// request/response structure, when Status is OK, follows as a
// trailing introspection payload decoded the same way
// ChannelGetFieldResponse's is.
type ChannelGetResponseInit struct {
	RequestID uint32
	Status    Status
}

func (c ChannelGetResponseInit) Serialize(w *pvabuf.Writer) {
	w.U32(c.RequestID)
	c.Status.Serialize(w)
}

func DeserializeChannelGetResponseInit(r *pvabuf.Reader) (ChannelGetResponseInit, error) {
	var c ChannelGetResponseInit
	var err error
	if c.RequestID, err = r.U32(); err != nil {
		return ChannelGetResponseInit{}, err
	}
	if c.Status, err = DeserializeStatus(r); err != nil {
		return ChannelGetResponseInit{}, err
	}
	return c, nil
}

// ChannelGetRequest streams a "get" (sub-command SubCommandGet) once
// the init phase has completed. The actual channel-data payload is
// out of scope (spec §1 Non-goals); ChannelGetResponse.Data carries it
// opaquely.
type ChannelGetRequest struct {
	ServerChannelID uint32
	RequestID       uint32
}

func (c ChannelGetRequest) Serialize(w *pvabuf.Writer) {
	w.U32(c.ServerChannelID)
	w.U32(c.RequestID)
	w.U8(SubCommandGet)
}

func DeserializeChannelGetRequest(r *pvabuf.Reader) (ChannelGetRequest, error) {
	var c ChannelGetRequest
	var err error
	if c.ServerChannelID, err = r.U32(); err != nil {
		return ChannelGetRequest{}, err
	}
	if c.RequestID, err = r.U32(); err != nil {
		return ChannelGetRequest{}, err
	}
	if _, err = r.U8(); err != nil {
		return ChannelGetRequest{}, err
	}
	return c, nil
}

// ChannelGetResponse carries the get's outcome; Data is the opaque
// remainder of the frame payload (the actual channel value, whose
// interpretation is out of scope).
type ChannelGetResponse struct {
	RequestID uint32
	Status    Status
	Data      []byte
}

func (c ChannelGetResponse) Serialize(w *pvabuf.Writer) {
	w.U32(c.RequestID)
	c.Status.Serialize(w)
	w.Raw(c.Data)
}

// DeserializeChannelGetResponse reads the fixed fields and consumes
// the rest of r as opaque Data. Callers must scope r to exactly this
// message's payload before calling.
func DeserializeChannelGetResponse(r *pvabuf.Reader) (ChannelGetResponse, error) {
	var c ChannelGetResponse
	var err error
	if c.RequestID, err = r.U32(); err != nil {
		return ChannelGetResponse{}, err
	}
	if c.Status, err = DeserializeStatus(r); err != nil {
		return ChannelGetResponse{}, err
	}
	if c.Data, err = r.Raw(r.Len()); err != nil {
		return ChannelGetResponse{}, err
	}
	return c, nil
}
