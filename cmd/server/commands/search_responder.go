package commands

import (
	"net"

	"github.com/rcarmo/go-pva/internal/channel"
	"github.com/rcarmo/go-pva/internal/envelope"
	"github.com/rcarmo/go-pva/internal/logging"
	"github.com/rcarmo/go-pva/internal/pdu"
	"github.com/rcarmo/go-pva/internal/pvabuf"
	"github.com/rcarmo/go-pva/internal/transport/udp"
)

// searchResponder answers SearchRequest datagrams (spec §4.5) against
// the live channel table, unicasting a SearchResponse back to the
// requester when any of the named channels is currently open.
type searchResponder struct {
	socket     *udp.Socket
	channels   *channel.Table
	guid       [pdu.GUIDSize]byte
	serverPort uint16
}

func (s *searchResponder) handle(data []byte, from *net.UDPAddr) {
	if len(data) < envelope.HeaderSize {
		return
	}
	header, err := envelope.Decode(data[:envelope.HeaderSize])
	if err != nil {
		return
	}
	if header.Flags.Type != envelope.Application || envelope.ApplicationMessageCode(header.Command) != envelope.SearchRequest {
		return
	}
	end := envelope.HeaderSize + int(header.PayloadSize)
	if end > len(data) {
		return
	}

	r := pvabuf.NewReader(data[envelope.HeaderSize:end], header.Flags.Order())
	req, err := pdu.DeserializeSearchRequest(r)
	if err != nil {
		logging.Debug("server: malformed search request from %s: %v", from, err)
		return
	}

	matched := s.matchChannels(req.Channels)
	if len(matched) == 0 {
		return
	}

	resp := pdu.SearchResponse{
		GUID:          s.guid,
		SequenceID:    req.SequenceID,
		ServerAddress: net.IPv4zero,
		ServerPort:    s.serverPort,
		Found:         true,
		InstanceIDs:   matched,
	}
	w := pvabuf.NewWriter(header.Flags.Order())
	resp.Serialize(w)

	replyHeader := envelope.Header{
		Version:     envelope.Version,
		Flags:       envelope.Flags{Type: envelope.Application, Direction: envelope.FromServer, BigEndian: header.Flags.BigEndian},
		Command:     uint8(envelope.SearchResponse),
		PayloadSize: uint32(w.Len()),
	}
	frame := append(envelope.Encode(replyHeader), w.Bytes()...)
	if err := s.socket.SendTo(from, frame); err != nil {
		logging.Warn("server: search response to %s failed: %v", from, err)
	}
}

func (s *searchResponder) matchChannels(queries []pdu.ChannelQuery) []uint32 {
	var matched []uint32
	entries := s.channels.Snapshot()
	for _, q := range queries {
		for _, entry := range entries {
			if string(entry.Name) == string(q.Name) {
				matched = append(matched, q.InstanceID)
				break
			}
		}
	}
	return matched
}
