package pdu

import (
	"errors"
	"fmt"
	"net"

	"github.com/rcarmo/go-pva/internal/pvabuf"
)

// ErrShortAddress is returned when fewer than 16 bytes are available
// to decode a server/response address.
var ErrShortAddress = errors.New("pdu: short address")

// writeAddress appends a 16-byte IPv6 address, encoding an IPv4
// address as its ::ffff:a.b.c.d-mapped form (spec §6.1).
func writeAddress(w *pvabuf.Writer, ip net.IP) {
	v16 := ip.To16()
	if v16 == nil {
		v16 = make(net.IP, 16)
	}
	w.Raw(v16)
}

// readAddress reads a 16-byte IPv6 (or IPv4-mapped) address.
func readAddress(r *pvabuf.Reader) (net.IP, error) {
	raw, err := r.Raw(16)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrShortAddress, err)
	}
	ip := make(net.IP, 16)
	copy(ip, raw)
	return ip, nil
}
