package udp

import (
	"net"
	"time"

	"github.com/rcarmo/go-pva/internal/envelope"
	"github.com/rcarmo/go-pva/internal/pdu"
	"github.com/rcarmo/go-pva/internal/pvabuf"
)

// Search broadcasts a SearchRequest for the given channels and
// collects SearchResponse datagrams until timeout elapses (spec §4.5
// commands 0x03/0x04, §6.1). Responses to other sequence ids or for
// unrelated commands are ignored rather than treated as errors, since
// the broadcast domain may carry traffic from other queries.
func Search(socket *Socket, broadcast *net.UDPAddr, sequenceID uint32, channels []pdu.ChannelQuery, timeout time.Duration) ([]pdu.SearchResponse, error) {
	req := pdu.SearchRequest{SequenceID: sequenceID, Channels: channels}
	w := pvabuf.NewWriter(nil)
	req.Serialize(w)

	h := envelope.Header{
		Version:     envelope.Version,
		Flags:       envelope.Flags{Type: envelope.Application, Direction: envelope.FromClient},
		Command:     uint8(envelope.SearchRequest),
		PayloadSize: uint32(w.Len()),
	}
	frame := append(envelope.Encode(h), w.Bytes()...)
	if err := socket.SendTo(broadcast, frame); err != nil {
		return nil, err
	}

	var responses []pdu.SearchResponse
	deadline := time.Now().Add(timeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return responses, nil
		}

		data, _, err := socket.ReceiveFrom(remaining)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				return responses, nil
			}
			return responses, err
		}
		if len(data) < envelope.HeaderSize {
			continue
		}

		header, err := envelope.Decode(data[:envelope.HeaderSize])
		if err != nil {
			continue
		}
		if header.Flags.Type != envelope.Application || envelope.ApplicationMessageCode(header.Command) != envelope.SearchResponse {
			continue
		}
		end := envelope.HeaderSize + int(header.PayloadSize)
		if end > len(data) {
			continue
		}

		r := pvabuf.NewReader(data[envelope.HeaderSize:end], header.Flags.Order())
		resp, err := pdu.DeserializeSearchResponse(r)
		if err != nil {
			continue
		}
		if resp.SequenceID != sequenceID {
			continue
		}
		responses = append(responses, resp)
	}
}
