package pdu

import "github.com/rcarmo/go-pva/internal/pvabuf"

// StatusKind is the kind byte of a Status (spec §3).
type StatusKind uint8

const (
	StatusOK StatusKind = iota
	StatusWarning
	StatusError
	StatusFatal
	// StatusDefault is encoded on the wire as a single 0xFF byte with
	// both strings omitted, never as byte value 4.
	StatusDefault
)

// statusDefaultByte is the single-byte wire form of StatusDefault.
const statusDefaultByte = 0xFF

// Status reports the outcome of an operation, per spec §3.
type Status struct {
	Kind     StatusKind
	Message  []byte
	CallTree []byte
}

// IsOK reports whether the status represents success: OK or DEFAULT,
// per spec §3's invariant `is_ok ≡ kind ∈ {OK, DEFAULT}`.
func (s Status) IsOK() bool {
	return s.Kind == StatusOK || s.Kind == StatusDefault
}

// Serialize writes the status to w.
func (s Status) Serialize(w *pvabuf.Writer) {
	if s.Kind == StatusDefault {
		w.U8(statusDefaultByte)
		return
	}
	w.U8(byte(s.Kind))
	w.String(s.Message)
	w.String(s.CallTree)
}

// DeserializeStatus reads a Status from r.
func DeserializeStatus(r *pvabuf.Reader) (Status, error) {
	kindByte, err := r.U8()
	if err != nil {
		return Status{}, err
	}
	if kindByte == statusDefaultByte {
		return Status{Kind: StatusDefault}, nil
	}
	if kindByte > byte(StatusFatal) {
		return Status{}, ErrUnknownStatusKind
	}

	message, err := r.String()
	if err != nil {
		return Status{}, err
	}
	callTree, err := r.String()
	if err != nil {
		return Status{}, err
	}

	return Status{Kind: StatusKind(kindByte), Message: message, CallTree: callTree}, nil
}
