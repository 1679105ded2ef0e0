package tcp

import (
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcarmo/go-pva/internal/dispatch"
	"github.com/rcarmo/go-pva/internal/envelope"
)

type recordingHandler struct {
	mu     sync.Mutex
	frames []dispatch.Frame
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{}
}

func (h *recordingHandler) HandleFrame(f dispatch.Frame) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.frames = append(h.frames, f)
	return nil
}

func TestServeDeliversFramesThenEOF(t *testing.T) {
	client, server := net.Pipe()

	handler := newRecordingHandler()
	serveErr := make(chan error, 1)
	go func() { serveErr <- Serve(server, handler) }()

	h := envelope.Header{Version: envelope.Version, Flags: envelope.Flags{Type: envelope.Application}, Command: 2, PayloadSize: 3}
	frame := append(envelope.Encode(h), []byte("abc")...)

	go func() {
		client.Write(frame)
		client.Close()
	}()

	select {
	case err := <-serveErr:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after EOF")
	}

	handler.mu.Lock()
	defer handler.mu.Unlock()
	require.Len(t, handler.frames, 1)
	assert.Equal(t, []byte("abc"), handler.frames[0].Payload)
}

func TestListenerAcceptsAndServesConnections(t *testing.T) {
	ln, err := Listen("127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	handler := newRecordingHandler()
	go ln.Serve(func(conn net.Conn) (FrameHandler, error) {
		return handler, nil
	})

	conn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)

	h := envelope.Header{Version: envelope.Version, Flags: envelope.Flags{Type: envelope.Application}, Command: 2, PayloadSize: 2}
	frame := append(envelope.Encode(h), []byte("hi")...)
	_, err = conn.Write(frame)
	require.NoError(t, err)
	conn.Close()

	require.Eventually(t, func() bool {
		handler.mu.Lock()
		defer handler.mu.Unlock()
		return len(handler.frames) == 1
	}, time.Second, 10*time.Millisecond)
}
