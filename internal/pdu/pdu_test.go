package pdu

import (
	"encoding/binary"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcarmo/go-pva/internal/pvabuf"
)

func TestStatusRoundTrip(t *testing.T) {
	tests := []Status{
		{Kind: StatusDefault},
		{Kind: StatusOK, Message: []byte("ok"), CallTree: []byte("")},
		{Kind: StatusError, Message: []byte("bad field"), CallTree: []byte("trace")},
	}

	for _, s := range tests {
		w := pvabuf.NewWriter(binary.LittleEndian)
		s.Serialize(w)

		r := pvabuf.NewReader(w.Bytes(), binary.LittleEndian)
		got, err := DeserializeStatus(r)
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
}

func TestStatusIsOK(t *testing.T) {
	assert.True(t, Status{Kind: StatusOK}.IsOK())
	assert.True(t, Status{Kind: StatusDefault}.IsOK())
	assert.False(t, Status{Kind: StatusWarning}.IsOK())
	assert.False(t, Status{Kind: StatusError}.IsOK())
	assert.False(t, Status{Kind: StatusFatal}.IsOK())
}

func TestBeaconRoundTrip(t *testing.T) {
	b := Beacon{
		Flags:         0,
		SequenceID:    1,
		ChangeCount:   2,
		ServerAddress: net.ParseIP("::ffff:0:0"),
		ServerPort:    5075,
		Protocol:      []byte("tcp"),
		Status:        Status{Kind: StatusDefault},
	}
	copy(b.GUID[:], []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12})

	w := pvabuf.NewWriter(binary.LittleEndian)
	b.Serialize(w)

	r := pvabuf.NewReader(w.Bytes(), binary.LittleEndian)
	got, err := DeserializeBeacon(r)
	require.NoError(t, err)
	assert.Equal(t, b.GUID, got.GUID)
	assert.Equal(t, b.SequenceID, got.SequenceID)
	assert.Equal(t, b.ChangeCount, got.ChangeCount)
	assert.True(t, b.ServerAddress.Equal(got.ServerAddress))
	assert.Equal(t, b.ServerPort, got.ServerPort)
	assert.Equal(t, b.Protocol, got.Protocol)
	assert.Equal(t, b.Status, got.Status)
}

func TestSearchRequestRoundTrip(t *testing.T) {
	req := SearchRequest{
		SequenceID:      1,
		Flags:           0,
		ResponseAddress: net.ParseIP("::ffff:0:0"),
		ResponsePort:    50001,
		Protocols:       [][]byte{[]byte("tcp")},
		Channels:        []ChannelQuery{{InstanceID: 1, Name: []byte("testMP")}},
	}

	w := pvabuf.NewWriter(binary.LittleEndian)
	req.Serialize(w)

	r := pvabuf.NewReader(w.Bytes(), binary.LittleEndian)
	got, err := DeserializeSearchRequest(r)
	require.NoError(t, err)

	assert.Equal(t, req.SequenceID, got.SequenceID)
	assert.Equal(t, req.Flags, got.Flags)
	assert.True(t, req.ResponseAddress.Equal(got.ResponseAddress))
	assert.Equal(t, req.ResponsePort, got.ResponsePort)
	assert.Equal(t, req.Protocols, got.Protocols)
	assert.Equal(t, req.Channels, got.Channels)
	assert.Equal(t, 0, r.Len())
}

func TestSearchResponseRoundTrip(t *testing.T) {
	resp := SearchResponse{
		SequenceID:    7,
		ServerAddress: net.ParseIP("::ffff:0:0"),
		ServerPort:    5075,
		Protocol:      []byte("tcp"),
		Found:         true,
		InstanceIDs:   []uint32{1, 2},
	}
	copy(resp.GUID[:], []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12})

	w := pvabuf.NewWriter(binary.LittleEndian)
	resp.Serialize(w)

	r := pvabuf.NewReader(w.Bytes(), binary.LittleEndian)
	got, err := DeserializeSearchResponse(r)
	require.NoError(t, err)
	assert.Equal(t, resp.GUID, got.GUID)
	assert.Equal(t, resp.SequenceID, got.SequenceID)
	assert.True(t, resp.ServerAddress.Equal(got.ServerAddress))
	assert.Equal(t, resp.Found, got.Found)
	assert.Equal(t, resp.InstanceIDs, got.InstanceIDs)
}

func TestConnectionValidationRoundTrip(t *testing.T) {
	req := ConnectionValidationRequest{
		ServerReceiveBufferSize: 0x4400,
		RegistryMaxSize:         0x7FFF,
		AuthNZPlugins:           [][]byte{[]byte("ca")},
	}
	w := pvabuf.NewWriter(binary.LittleEndian)
	req.Serialize(w)
	r := pvabuf.NewReader(w.Bytes(), binary.LittleEndian)
	gotReq, err := DeserializeConnectionValidationRequest(r)
	require.NoError(t, err)
	assert.Equal(t, req, gotReq)

	resp := ConnectionValidationResponse{
		ClientReceiveBufferSize: 0x4400,
		RegistryMaxSize:         0x7FFF,
		ConnectionQoS:           0,
		AuthNZSelection:         []byte(""),
	}
	w2 := pvabuf.NewWriter(binary.LittleEndian)
	resp.Serialize(w2)
	r2 := pvabuf.NewReader(w2.Bytes(), binary.LittleEndian)
	gotResp, err := DeserializeConnectionValidationResponse(r2)
	require.NoError(t, err)
	assert.Equal(t, resp, gotResp)
}

func TestCreateChannelResponseOmitsAccessRightsWhenNotOK(t *testing.T) {
	resp := CreateChannelResponse{
		ClientID: 1,
		ServerID: 2,
		Status:   Status{Kind: StatusDefault},
	}
	w := pvabuf.NewWriter(binary.LittleEndian)
	resp.Serialize(w)

	r := pvabuf.NewReader(w.Bytes(), binary.LittleEndian)
	got, err := DeserializeCreateChannelResponse(r)
	require.NoError(t, err)
	assert.Equal(t, uint16(0), got.AccessRights)
	assert.Equal(t, 0, r.Len())
}

func TestCreateChannelResponseCarriesAccessRightsWhenOK(t *testing.T) {
	resp := CreateChannelResponse{
		ClientID:     1,
		ServerID:     2,
		Status:       Status{Kind: StatusOK, Message: []byte(""), CallTree: []byte("")},
		AccessRights: 3,
	}
	w := pvabuf.NewWriter(binary.LittleEndian)
	resp.Serialize(w)

	r := pvabuf.NewReader(w.Bytes(), binary.LittleEndian)
	got, err := DeserializeCreateChannelResponse(r)
	require.NoError(t, err)
	assert.Equal(t, resp, got)
}

func TestChannelGetFieldRoundTrip(t *testing.T) {
	req := ChannelGetFieldRequest{ServerChannelID: 5, RequestID: 1, SubFieldName: []byte("")}
	w := pvabuf.NewWriter(binary.LittleEndian)
	req.Serialize(w)
	r := pvabuf.NewReader(w.Bytes(), binary.LittleEndian)
	got, err := DeserializeChannelGetFieldRequest(r)
	require.NoError(t, err)
	assert.Equal(t, req, got)
}

func TestEchoRoundTrip(t *testing.T) {
	e := Echo{Payload: []byte("ping")}
	w := pvabuf.NewWriter(binary.LittleEndian)
	e.Serialize(w)
	r := pvabuf.NewReader(w.Bytes(), binary.LittleEndian)
	got, err := DeserializeEcho(r)
	require.NoError(t, err)
	assert.Equal(t, e, got)
}

func TestAccessRightsRoundTrip(t *testing.T) {
	a := AccessRights{ServerChannelID: 9, Rights: 3}
	w := pvabuf.NewWriter(binary.LittleEndian)
	a.Serialize(w)
	r := pvabuf.NewReader(w.Bytes(), binary.LittleEndian)
	got, err := DeserializeAccessRights(r)
	require.NoError(t, err)
	assert.Equal(t, a, got)
}

func TestDestroyChannelAndRequestRoundTrip(t *testing.T) {
	dc := DestroyChannel{ClientChannelID: 1, ServerChannelID: 2}
	w := pvabuf.NewWriter(binary.LittleEndian)
	dc.Serialize(w)
	r := pvabuf.NewReader(w.Bytes(), binary.LittleEndian)
	gotDC, err := DeserializeDestroyChannel(r)
	require.NoError(t, err)
	assert.Equal(t, dc, gotDC)

	dr := DestroyRequest{ServerChannelID: 2, RequestID: 7}
	w2 := pvabuf.NewWriter(binary.LittleEndian)
	dr.Serialize(w2)
	r2 := pvabuf.NewReader(w2.Bytes(), binary.LittleEndian)
	gotDR, err := DeserializeDestroyRequest(r2)
	require.NoError(t, err)
	assert.Equal(t, dr, gotDR)
}
