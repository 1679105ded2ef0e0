package tcp

import (
	"net"
	"sync"

	"github.com/rcarmo/go-pva/internal/logging"
)

// SessionFunc builds the per-connection handler for a freshly accepted
// connection (typically a *dispatch.ServerSession, started before
// being returned so its handshake frames are already queued for
// writing).
type SessionFunc func(conn net.Conn) (FrameHandler, error)

// Listener accepts connections and serves each on its own goroutine,
// one session per connection (spec §4.7).
type Listener struct {
	ln net.Listener
}

// Listen opens a TCP listener on addr.
func Listen(addr string) (*Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Listener{ln: ln}, nil
}

// Addr returns the listener's bound address.
func (l *Listener) Addr() net.Addr {
	return l.ln.Addr()
}

// Close stops accepting new connections.
func (l *Listener) Close() error {
	return l.ln.Close()
}

// Serve accepts connections until Close is called or Accept returns a
// fatal error, spawning newSession for each and running it to
// completion in its own goroutine.
func (l *Listener) Serve(newSession SessionFunc) error {
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		conn, err := l.ln.Accept()
		if err != nil {
			return err
		}

		handler, err := newSession(conn)
		if err != nil {
			logging.Warn("tcp: session setup failed: %v", err)
			conn.Close()
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := Serve(conn, handler); err != nil {
				logging.Debug("tcp: session ended: %v", err)
			}
		}()
	}
}
