package pdu

import (
	"net"

	"github.com/rcarmo/go-pva/internal/pvabuf"
)

// ChannelQuery is one (instance-id, name) pair requested by a
// SearchRequest (spec §4.5).
type ChannelQuery struct {
	InstanceID uint32
	Name       []byte
}

// SearchRequest asks whether any server on the network serves the
// named channels (spec §4.5, command 0x03).
type SearchRequest struct {
	SequenceID      uint32
	Flags           uint8
	ResponseAddress net.IP
	ResponsePort    uint16
	Protocols       [][]byte
	Channels        []ChannelQuery
}

// Serialize encodes the request to w.
func (s SearchRequest) Serialize(w *pvabuf.Writer) {
	w.U32(s.SequenceID)
	w.U8(s.Flags)
	w.Padding(3)
	writeAddress(w, s.ResponseAddress)
	w.U16(s.ResponsePort)
	w.StringArray(s.Protocols)
	w.U16(uint16(len(s.Channels)))
	for _, ch := range s.Channels {
		w.U32(ch.InstanceID)
		w.String(ch.Name)
	}
}

// DeserializeSearchRequest reads a SearchRequest from r.
func DeserializeSearchRequest(r *pvabuf.Reader) (SearchRequest, error) {
	var s SearchRequest
	var err error

	if s.SequenceID, err = r.U32(); err != nil {
		return SearchRequest{}, err
	}
	if s.Flags, err = r.U8(); err != nil {
		return SearchRequest{}, err
	}
	if err = r.Skip(3); err != nil {
		return SearchRequest{}, err
	}
	if s.ResponseAddress, err = readAddress(r); err != nil {
		return SearchRequest{}, err
	}
	if s.ResponsePort, err = r.U16(); err != nil {
		return SearchRequest{}, err
	}
	if s.Protocols, err = r.StringArray(); err != nil {
		return SearchRequest{}, err
	}

	count, err := r.U16()
	if err != nil {
		return SearchRequest{}, err
	}
	s.Channels = make([]ChannelQuery, 0, count)
	for i := uint16(0); i < count; i++ {
		var ch ChannelQuery
		if ch.InstanceID, err = r.U32(); err != nil {
			return SearchRequest{}, err
		}
		if ch.Name, err = r.String(); err != nil {
			return SearchRequest{}, err
		}
		s.Channels = append(s.Channels, ch)
	}

	return s, nil
}

// SearchResponse answers a SearchRequest (spec §4.5, command 0x04).
type SearchResponse struct {
	GUID          [GUIDSize]byte
	SequenceID    uint32
	ServerAddress net.IP
	ServerPort    uint16
	Protocol      []byte
	Found         bool
	InstanceIDs   []uint32
}

// Serialize encodes the response to w.
func (s SearchResponse) Serialize(w *pvabuf.Writer) {
	w.Raw(s.GUID[:])
	w.U32(s.SequenceID)
	writeAddress(w, s.ServerAddress)
	w.U16(s.ServerPort)
	w.String(s.Protocol)
	if s.Found {
		w.U16(1)
	} else {
		w.U16(0)
	}
	w.U32Array(s.InstanceIDs)
}

// DeserializeSearchResponse reads a SearchResponse from r.
func DeserializeSearchResponse(r *pvabuf.Reader) (SearchResponse, error) {
	var s SearchResponse
	var err error

	guid, err := r.Raw(GUIDSize)
	if err != nil {
		return SearchResponse{}, err
	}
	copy(s.GUID[:], guid)

	if s.SequenceID, err = r.U32(); err != nil {
		return SearchResponse{}, err
	}
	if s.ServerAddress, err = readAddress(r); err != nil {
		return SearchResponse{}, err
	}
	if s.ServerPort, err = r.U16(); err != nil {
		return SearchResponse{}, err
	}
	if s.Protocol, err = r.String(); err != nil {
		return SearchResponse{}, err
	}

	found, err := r.U16()
	if err != nil {
		return SearchResponse{}, err
	}
	s.Found = found != 0

	if s.InstanceIDs, err = r.U32Array(); err != nil {
		return SearchResponse{}, err
	}

	return s, nil
}
