// Package tcp implements the TCP session transport (spec §4.7): one
// connection per session, full duplex, feeding every frame it reads
// into a dispatcher role (internal/dispatch.ServerSession or
// ClientSession). Grounded on the teacher's tpkt.Protocol, a thin
// io.ReadWriteCloser wrapper that hands framed PDUs to a caller rather
// than owning any protocol state itself.
package tcp

import (
	"io"
	"net"

	"github.com/rcarmo/go-pva/internal/dispatch"
	"github.com/rcarmo/go-pva/internal/logging"
)

// FrameHandler processes one extracted frame. *dispatch.ServerSession
// and *dispatch.ClientSession both satisfy this.
type FrameHandler interface {
	HandleFrame(f dispatch.Frame) error
}

// Serve reads from conn, extracts frames, and forwards each to
// handler until the connection closes or a fatal framing/handling
// error occurs. conn is closed before Serve returns.
func Serve(conn net.Conn, handler FrameHandler) error {
	defer conn.Close()

	extractor := dispatch.NewExtractor()
	buf := make([]byte, 4096)
	for {
		n, readErr := conn.Read(buf)
		if n > 0 {
			frames, err := extractor.Feed(buf[:n])
			for _, f := range frames {
				if err := handler.HandleFrame(f); err != nil {
					logging.Warn("tcp: frame handling failed: %v", err)
					return err
				}
			}
			if err != nil {
				logging.Warn("tcp: framing error: %v", err)
				return err
			}
		}
		if readErr != nil {
			if readErr == io.EOF {
				return nil
			}
			return readErr
		}
	}
}
