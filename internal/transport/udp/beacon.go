package udp

import (
	"net"
	"time"

	"github.com/rcarmo/go-pva/internal/envelope"
	"github.com/rcarmo/go-pva/internal/logging"
	"github.com/rcarmo/go-pva/internal/pdu"
	"github.com/rcarmo/go-pva/internal/pvabuf"
)

// BeaconSender periodically broadcasts a server's Beacon datagram
// (spec §4.5 command 0x00, §6.1) until Stop is called. ChangeCount
// should be bumped by the caller whenever the server's channel set
// changes, per the GLOSSARY's beacon change-count semantics.
type BeaconSender struct {
	socket    *Socket
	broadcast *net.UDPAddr
	guid      [pdu.GUIDSize]byte
	port      uint16

	sequenceID  uint8
	changeCount uint16
	stopCh      chan struct{}
}

// NewBeaconSender builds a sender that advertises guid/port.
func NewBeaconSender(socket *Socket, broadcast *net.UDPAddr, guid [pdu.GUIDSize]byte, serverPort uint16) *BeaconSender {
	return &BeaconSender{socket: socket, broadcast: broadcast, guid: guid, port: serverPort, stopCh: make(chan struct{})}
}

// BumpChangeCount increments the beacon's change counter; call this
// whenever a channel is created or destroyed.
func (b *BeaconSender) BumpChangeCount() {
	b.changeCount++
}

// Run sends one beacon every interval until Stop is called. The
// caller runs this in its own goroutine.
func (b *BeaconSender) Run(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-b.stopCh:
			return
		case <-ticker.C:
			if err := b.send(); err != nil {
				logging.Warn("udp: beacon send failed: %v", err)
			}
		}
	}
}

// Stop ends a running Run loop.
func (b *BeaconSender) Stop() {
	close(b.stopCh)
}

func (b *BeaconSender) send() error {
	beacon := pdu.Beacon{
		GUID:          b.guid,
		SequenceID:    b.sequenceID,
		ChangeCount:   b.changeCount,
		ServerAddress: net.IPv4zero,
		ServerPort:    b.port,
		Status:        pdu.Status{Kind: pdu.StatusDefault},
	}
	b.sequenceID++

	w := pvabuf.NewWriter(nil)
	beacon.Serialize(w)

	h := envelope.Header{
		Version: envelope.Version,
		Flags:   envelope.Flags{Type: envelope.Application, Direction: envelope.FromServer},
		Command: uint8(envelope.Beacon),
		PayloadSize: uint32(w.Len()),
	}
	frame := append(envelope.Encode(h), w.Bytes()...)
	return b.socket.SendTo(b.broadcast, frame)
}
