package dispatch

import (
	"io"
	"sync"

	"github.com/rcarmo/go-pva/internal/envelope"
	"github.com/rcarmo/go-pva/internal/introspect"
	"github.com/rcarmo/go-pva/internal/logging"
	"github.com/rcarmo/go-pva/internal/pdu"
	"github.com/rcarmo/go-pva/internal/pvabuf"
)

// ClientSession drives the client role of one connection (spec §4.6):
// it reacts to the server's handshake, opens a single named channel,
// and fetches that channel's root introspection.
type ClientSession struct {
	mu    sync.Mutex
	out   io.Writer
	state ClientState

	bigEndian bool
	registry  *introspect.Registry

	clientBufferSize uint32
	registryMaxSize  uint16

	channelName  []byte
	clientChanID uint32
	serverChanID uint32
	requestID    uint32

	// RootType is the introspection decoded from the server's ChannelIF
	// reply, once the fetch has completed (State() == Idle).
	RootType *introspect.DataObject
}

// NewClientSession creates a client-role session that will open the
// named channel once the handshake completes.
func NewClientSession(out io.Writer, channelName []byte) *ClientSession {
	return &ClientSession{
		out:              out,
		state:            AwaitingByteOrder,
		registry:         introspect.NewRegistry(),
		clientBufferSize: 0x4400,
		registryMaxSize:  0x7FFF,
		channelName:      channelName,
		clientChanID:     1,
		requestID:        1,
	}
}

// HandleFrame processes one frame from the server, writing any reply
// frames as a side effect and advancing the client state machine.
func (c *ClientSession) HandleFrame(f Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if f.Header.Flags.Type == envelope.Control {
		if c.state == AwaitingByteOrder && envelope.ControlMessageCode(f.Header.Command) == envelope.ByteOrder {
			c.bigEndian = f.Header.Flags.BigEndian
			c.state = AwaitingValidation
		}
		return nil
	}

	r := pvabuf.NewReader(f.Payload, order(c.bigEndian))
	switch envelope.ApplicationMessageCode(f.Header.Command) {

	case envelope.ConnectionValidation:
		if c.state != AwaitingValidation {
			return ErrProtocolViolation
		}
		if _, err := pdu.DeserializeConnectionValidationRequest(r); err != nil {
			return err
		}
		resp := pdu.ConnectionValidationResponse{ClientReceiveBufferSize: c.clientBufferSize, RegistryMaxSize: c.registryMaxSize}
		w := pvabuf.NewWriter(order(c.bigEndian))
		resp.Serialize(w)
		if err := writeFrame(c.out, c.bigEndian, envelope.FromClient, envelope.Application, uint8(envelope.ConnectionValidation), w.Bytes()); err != nil {
			return err
		}
		c.state = AwaitingValidated
		return nil

	case envelope.ConnectionValidated:
		if c.state != AwaitingValidated {
			return ErrProtocolViolation
		}
		validated, err := pdu.DeserializeConnectionValidated(r)
		if err != nil {
			return err
		}
		if !validated.Status.IsOK() {
			return ErrProtocolViolation
		}
		req := pdu.CreateChannelRequest{Channels: []pdu.ChannelRequest{{ClientID: c.clientChanID, Name: c.channelName}}}
		w := pvabuf.NewWriter(order(c.bigEndian))
		req.Serialize(w)
		if err := writeFrame(c.out, c.bigEndian, envelope.FromClient, envelope.Application, uint8(envelope.CreateChannel), w.Bytes()); err != nil {
			return err
		}
		c.state = AwaitingChannel
		return nil

	case envelope.CreateChannel:
		if c.state != AwaitingChannel {
			return ErrProtocolViolation
		}
		resp, err := pdu.DeserializeCreateChannelResponse(r)
		if err != nil {
			return err
		}
		if !resp.Status.IsOK() {
			return ErrProtocolViolation
		}
		c.serverChanID = resp.ServerID

		getReq := pdu.ChannelGetFieldRequest{ServerChannelID: c.serverChanID, RequestID: c.requestID}
		w := pvabuf.NewWriter(order(c.bigEndian))
		getReq.Serialize(w)
		if err := writeFrame(c.out, c.bigEndian, envelope.FromClient, envelope.Application, uint8(envelope.ChannelIF), w.Bytes()); err != nil {
			return err
		}
		c.state = AwaitingIntrospection
		return nil

	case envelope.ChannelIF:
		if c.state != AwaitingIntrospection {
			return ErrProtocolViolation
		}
		fieldResp, err := pdu.DeserializeChannelGetFieldResponse(r)
		if err != nil {
			return err
		}
		if !fieldResp.Status.IsOK() {
			return ErrProtocolViolation
		}
		root, err := introspect.Decode(r, c.registry)
		if err != nil {
			return err
		}
		c.RootType = root
		c.state = Idle
		return nil

	default:
		logging.Debug("dispatch: client ignoring unhandled command %d", f.Header.Command)
		return nil
	}
}

// State returns the session's current client state.
func (c *ClientSession) State() ClientState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// ServerChannelID returns the server-assigned id for this session's
// channel, valid once State() has passed AwaitingChannel.
func (c *ClientSession) ServerChannelID() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.serverChanID
}
