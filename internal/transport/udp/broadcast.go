package udp

import (
	"net"
	"syscall"
)

// setBroadcast sets SO_BROADCAST on the socket underlying conn so
// writes to a broadcast address succeed, the way a beacon/discovery
// client needs (spec §6.1).
func setBroadcast(conn *net.UDPConn) error {
	raw, err := conn.SyscallConn()
	if err != nil {
		return err
	}
	var sockErr error
	if err := raw.Control(func(fd uintptr) {
		sockErr = syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, syscall.SO_BROADCAST, 1)
	}); err != nil {
		return err
	}
	return sockErr
}
