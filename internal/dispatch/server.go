package dispatch

import (
	"io"
	"sync"

	"github.com/rcarmo/go-pva/internal/channel"
	"github.com/rcarmo/go-pva/internal/envelope"
	"github.com/rcarmo/go-pva/internal/fieldtype"
	"github.com/rcarmo/go-pva/internal/introspect"
	"github.com/rcarmo/go-pva/internal/logging"
	"github.com/rcarmo/go-pva/internal/pdu"
	"github.com/rcarmo/go-pva/internal/pvabuf"
)

// ChannelTypeFunc resolves the introspection type a server advertises
// for a named channel's root field. The default used when none is
// supplied advertises every channel as a scalar double, since the
// actual channel-data model is out of scope (spec §1 Non-goals) but
// the introspection flow that negotiates a type is not.
type ChannelTypeFunc func(name []byte) *introspect.DataObject

func defaultChannelType(name []byte) *introspect.DataObject {
	return &introspect.DataObject{Type: fieldtype.DataType{Major: fieldtype.Float, Sub: fieldtype.Binary64, Array: fieldtype.Scalar}}
}

// ServerSession drives the server role of one connection (spec §4.6):
// it owns the handshake, the server-assigned ids for channels opened
// on this connection, and the introspection registry those channels'
// types are defined against.
type ServerSession struct {
	mu    sync.Mutex
	out   io.Writer
	state ServerState

	bigEndian        bool
	registry         *introspect.Registry
	channels         *channel.Table
	channelType      ChannelTypeFunc
	serverBufferSize uint32
	registryMaxSize  uint16

	nextServerID uint32
}

// NewServerSession creates a server-role session writing frames to
// out and recording channels in the shared server-global table. A nil
// channelType falls back to defaultChannelType.
func NewServerSession(out io.Writer, channels *channel.Table, channelType ChannelTypeFunc) *ServerSession {
	if channelType == nil {
		channelType = defaultChannelType
	}
	return &ServerSession{
		out:              out,
		state:            SentByteOrder,
		registry:         introspect.NewRegistry(),
		channels:         channels,
		channelType:      channelType,
		serverBufferSize: 0x4400,
		registryMaxSize:  0x7FFF,
		nextServerID:     1,
	}
}

// Start writes the initial ByteOrder control frame followed by the
// ConnectionValidationRequest (spec §4.6, §8 scenario 6) and advances
// the state machine past both.
func (s *ServerSession) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := writeFrame(s.out, s.bigEndian, envelope.FromServer, envelope.Control, uint8(envelope.ByteOrder), nil); err != nil {
		return err
	}
	s.state = SentByteOrder

	req := pdu.ConnectionValidationRequest{ServerReceiveBufferSize: s.serverBufferSize, RegistryMaxSize: s.registryMaxSize}
	w := pvabuf.NewWriter(order(s.bigEndian))
	req.Serialize(w)
	if err := writeFrame(s.out, s.bigEndian, envelope.FromServer, envelope.Application, uint8(envelope.ConnectionValidation), w.Bytes()); err != nil {
		return err
	}
	s.state = SentValidationRequest
	return nil
}

// HandleFrame processes one frame read from the connection, writing
// any reply frames as a side effect.
func (s *ServerSession) HandleFrame(f Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if f.Header.Flags.Type == envelope.Control {
		// The server drives the byte-order negotiation itself; control
		// frames from the client carry nothing this role acts on yet.
		return nil
	}

	r := pvabuf.NewReader(f.Payload, order(s.bigEndian))
	switch envelope.ApplicationMessageCode(f.Header.Command) {

	case envelope.ConnectionValidation:
		if s.state != SentValidationRequest {
			return ErrProtocolViolation
		}
		if _, err := pdu.DeserializeConnectionValidationResponse(r); err != nil {
			return err
		}
		resp := pdu.ConnectionValidated{Status: pdu.Status{Kind: pdu.StatusOK}}
		w := pvabuf.NewWriter(order(s.bigEndian))
		resp.Serialize(w)
		if err := writeFrame(s.out, s.bigEndian, envelope.FromServer, envelope.Application, uint8(envelope.ConnectionValidated), w.Bytes()); err != nil {
			return err
		}
		s.state = Validated
		return nil

	case envelope.CreateChannel:
		if s.state != Validated && s.state != Serving {
			return ErrProtocolViolation
		}
		req, err := pdu.DeserializeCreateChannelRequest(r)
		if err != nil {
			return err
		}
		for _, ch := range req.Channels {
			serverID := s.nextServerID
			s.nextServerID++
			const defaultAccessRights = 0x0003 // read+write, spec GLOSSARY
			s.channels.Insert(serverID, channel.Entry{ClientID: ch.ClientID, Name: ch.Name, AccessRights: defaultAccessRights})

			resp := pdu.CreateChannelResponse{ClientID: ch.ClientID, ServerID: serverID, Status: pdu.Status{Kind: pdu.StatusOK}, AccessRights: defaultAccessRights}
			w := pvabuf.NewWriter(order(s.bigEndian))
			resp.Serialize(w)
			if err := writeFrame(s.out, s.bigEndian, envelope.FromServer, envelope.Application, uint8(envelope.CreateChannel), w.Bytes()); err != nil {
				return err
			}
		}
		s.state = Serving
		return nil

	case envelope.DestroyChannel:
		d, err := pdu.DeserializeDestroyChannel(r)
		if err != nil {
			return err
		}
		s.channels.Remove(d.ServerChannelID)
		return nil

	case envelope.ChannelIF:
		req, err := pdu.DeserializeChannelGetFieldRequest(r)
		if err != nil {
			return err
		}
		entry, ok := s.channels.Get(req.ServerChannelID)
		if !ok {
			resp := pdu.ChannelGetFieldResponse{RequestID: req.RequestID, Status: pdu.Status{Kind: pdu.StatusError, Message: []byte("unknown channel")}}
			w := pvabuf.NewWriter(order(s.bigEndian))
			resp.Serialize(w)
			return writeFrame(s.out, s.bigEndian, envelope.FromServer, envelope.Application, uint8(envelope.ChannelIF), w.Bytes())
		}

		resp := pdu.ChannelGetFieldResponse{RequestID: req.RequestID, Status: pdu.Status{Kind: pdu.StatusOK}}
		w := pvabuf.NewWriter(order(s.bigEndian))
		resp.Serialize(w)
		if err := introspect.Encode(w, s.channelType(entry.Name), s.registry); err != nil {
			return err
		}
		return writeFrame(s.out, s.bigEndian, envelope.FromServer, envelope.Application, uint8(envelope.ChannelIF), w.Bytes())

	case envelope.Echo:
		// Liveness probe: echoed back verbatim.
		echo, err := pdu.DeserializeEcho(r)
		if err != nil {
			return err
		}
		w := pvabuf.NewWriter(order(s.bigEndian))
		echo.Serialize(w)
		return writeFrame(s.out, s.bigEndian, envelope.FromServer, envelope.Application, uint8(envelope.Echo), w.Bytes())

	default:
		logging.Debug("dispatch: server ignoring unhandled command %d", f.Header.Command)
		return nil
	}
}

// State returns the session's current server state.
func (s *ServerSession) State() ServerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
