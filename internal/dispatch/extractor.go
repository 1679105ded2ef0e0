package dispatch

import "github.com/rcarmo/go-pva/internal/envelope"

// Frame is one fully-extracted message: its decoded header and the
// exact payload_size bytes that follow it.
type Frame struct {
	Header  envelope.Header
	Payload []byte
}

// Extractor turns a byte stream into a sequence of Frames (spec
// §4.6 steps 1-4). It is stateful: bytes that don't yet add up to a
// complete frame stay buffered across calls to Feed, so a frame split
// across two reads is delivered exactly once, assembled, on whichever
// call completes it — feeding "s1" then "s2" yields the same frames as
// feeding "s1"+"s2" in one call (spec §8's framing transactionality
// property).
type Extractor struct {
	buf []byte
}

// NewExtractor returns an empty frame extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Feed appends data to the internal buffer and returns every frame
// that is now complete. A bad magic byte is fatal and reported
// immediately, since nothing downstream can resynchronize the stream;
// any frames already extracted before the bad header are still
// returned alongside the error.
func (e *Extractor) Feed(data []byte) ([]Frame, error) {
	e.buf = append(e.buf, data...)

	var frames []Frame
	for {
		if len(e.buf) < envelope.HeaderSize {
			break
		}
		header, err := envelope.Decode(e.buf[:envelope.HeaderSize])
		if err != nil {
			return frames, err
		}

		total := envelope.HeaderSize + int(header.PayloadSize)
		if len(e.buf) < total {
			break
		}

		payload := make([]byte, header.PayloadSize)
		copy(payload, e.buf[envelope.HeaderSize:total])
		frames = append(frames, Frame{Header: header, Payload: payload})

		e.buf = e.buf[total:]
	}
	return frames, nil
}

// Pending reports how many bytes are buffered waiting for the rest of
// their frame.
func (e *Extractor) Pending() int {
	return len(e.buf)
}
