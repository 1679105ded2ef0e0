package pdu

import "github.com/rcarmo/go-pva/internal/pvabuf"

// ConnectionValidationRequest is sent by the server immediately after
// the ByteOrder control message (spec §4.5, command 0x01).
type ConnectionValidationRequest struct {
	ServerReceiveBufferSize uint32
	RegistryMaxSize         uint16
	AuthNZPlugins           [][]byte
}

func (c ConnectionValidationRequest) Serialize(w *pvabuf.Writer) {
	w.U32(c.ServerReceiveBufferSize)
	w.U16(c.RegistryMaxSize)
	w.StringArray(c.AuthNZPlugins)
}

func DeserializeConnectionValidationRequest(r *pvabuf.Reader) (ConnectionValidationRequest, error) {
	var c ConnectionValidationRequest
	var err error
	if c.ServerReceiveBufferSize, err = r.U32(); err != nil {
		return ConnectionValidationRequest{}, err
	}
	if c.RegistryMaxSize, err = r.U16(); err != nil {
		return ConnectionValidationRequest{}, err
	}
	if c.AuthNZPlugins, err = r.StringArray(); err != nil {
		return ConnectionValidationRequest{}, err
	}
	return c, nil
}

// ConnectionValidationResponse is the client's reply (spec §4.5).
type ConnectionValidationResponse struct {
	ClientReceiveBufferSize uint32
	RegistryMaxSize         uint16
	ConnectionQoS           uint16
	AuthNZSelection         []byte
}

func (c ConnectionValidationResponse) Serialize(w *pvabuf.Writer) {
	w.U32(c.ClientReceiveBufferSize)
	w.U16(c.RegistryMaxSize)
	w.U16(c.ConnectionQoS)
	w.String(c.AuthNZSelection)
}

func DeserializeConnectionValidationResponse(r *pvabuf.Reader) (ConnectionValidationResponse, error) {
	var c ConnectionValidationResponse
	var err error
	if c.ClientReceiveBufferSize, err = r.U32(); err != nil {
		return ConnectionValidationResponse{}, err
	}
	if c.RegistryMaxSize, err = r.U16(); err != nil {
		return ConnectionValidationResponse{}, err
	}
	if c.ConnectionQoS, err = r.U16(); err != nil {
		return ConnectionValidationResponse{}, err
	}
	if c.AuthNZSelection, err = r.String(); err != nil {
		return ConnectionValidationResponse{}, err
	}
	return c, nil
}

// ConnectionValidated closes the validation handshake (spec §4.5,
// command 0x09); its body is a bare Status.
type ConnectionValidated struct {
	Status Status
}

func (c ConnectionValidated) Serialize(w *pvabuf.Writer) {
	c.Status.Serialize(w)
}

func DeserializeConnectionValidated(r *pvabuf.Reader) (ConnectionValidated, error) {
	status, err := DeserializeStatus(r)
	if err != nil {
		return ConnectionValidated{}, err
	}
	return ConnectionValidated{Status: status}, nil
}
