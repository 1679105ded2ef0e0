// Package pvabuf implements the PVAccess wire buffer primitives: an
// endian-aware read/write cursor over a byte slice, plus the
// "compressed size" length-prefix encoding shared by every variable-size
// field on the wire.
package pvabuf

import (
	"encoding/binary"
	"errors"
)

var (
	// ErrShortBuffer is returned when a read would cross the end of the buffer.
	ErrShortBuffer = errors.New("pvabuf: short buffer")
	// ErrInvalidSize is returned when a decoded size field would exceed
	// the bytes remaining in the buffer, or when a size prefix uses the
	// reserved first byte 254.
	ErrInvalidSize = errors.New("pvabuf: invalid size")
)

// compressedSizeEscape marks a size that did not fit in one byte (§4.1/§6.2).
const compressedSizeEscape = 0xFF

// compressedSize64Escape marks a size that did not fit in the 4-byte form.
const compressedSize64Escape = 0x7FFFFFFF

// Reader wraps read access to a byte slice under a chosen byte order.
// The PVA wire format is little-endian by default; a connection switches
// to big-endian only after a ByteOrder control message negotiates it, so
// the order is always carried explicitly rather than assumed.
type Reader struct {
	buf   []byte
	index int
	order binary.ByteOrder
}

// NewReader creates a Reader over buf using the given byte order.
func NewReader(buf []byte, order binary.ByteOrder) *Reader {
	if order == nil {
		order = binary.LittleEndian
	}
	return &Reader{buf: buf, order: order}
}

// Len returns the number of unread bytes remaining.
func (r *Reader) Len() int {
	return len(r.buf) - r.index
}

// Index returns the current read cursor position.
func (r *Reader) Index() int {
	return r.index
}

// Order returns the byte order this reader decodes with.
func (r *Reader) Order() binary.ByteOrder {
	return r.order
}

// Raw reads n raw bytes and advances the cursor.
func (r *Reader) Raw(n int) ([]byte, error) {
	if n < 0 || r.Len() < n {
		return nil, ErrShortBuffer
	}
	v := r.buf[r.index : r.index+n]
	r.index += n
	return v, nil
}

// U8 reads one unsigned byte.
func (r *Reader) U8() (uint8, error) {
	b, err := r.Raw(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// U16 reads a 16-bit unsigned integer.
func (r *Reader) U16() (uint16, error) {
	b, err := r.Raw(2)
	if err != nil {
		return 0, err
	}
	return r.order.Uint16(b), nil
}

// U32 reads a 32-bit unsigned integer.
func (r *Reader) U32() (uint32, error) {
	b, err := r.Raw(4)
	if err != nil {
		return 0, err
	}
	return r.order.Uint32(b), nil
}

// U64 reads a 64-bit unsigned integer.
func (r *Reader) U64() (uint64, error) {
	b, err := r.Raw(8)
	if err != nil {
		return 0, err
	}
	return r.order.Uint64(b), nil
}

// Skip advances the cursor by n bytes without returning them.
func (r *Reader) Skip(n int) error {
	if n < 0 || r.Len() < n {
		return ErrShortBuffer
	}
	r.index += n
	return nil
}

// Size reads a compressed-size length prefix (§4.1, §6.2).
func (r *Reader) Size() (uint64, error) {
	b, err := r.U8()
	if err != nil {
		return 0, err
	}
	if b < 254 {
		return uint64(b), nil
	}
	if b != compressedSizeEscape {
		// 254 is reserved on the wire (never emitted by the encoder) but
		// some producers historically used it as a plain one-byte value
		// (spec §9 open question (c)); reject it rather than guess.
		return 0, ErrInvalidSize
	}
	v32, err := r.U32()
	if err != nil {
		return 0, err
	}
	if v32 != compressedSize64Escape {
		return uint64(v32), nil
	}
	return r.U64()
}

// String reads a compressed-size-prefixed byte string.
func (r *Reader) String() ([]byte, error) {
	size, err := r.Size()
	if err != nil {
		return nil, err
	}
	if size > uint64(r.Len()) {
		return nil, ErrInvalidSize
	}
	return r.Raw(int(size))
}

// StringArray reads a compressed-size-prefixed array of strings.
func (r *Reader) StringArray() ([][]byte, error) {
	size, err := r.Size()
	if err != nil {
		return nil, err
	}
	out := make([][]byte, 0, size)
	for i := uint64(0); i < size; i++ {
		s, err := r.String()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// U32Array reads a compressed-size-prefixed array of u32 values.
func (r *Reader) U32Array() ([]uint32, error) {
	size, err := r.Size()
	if err != nil {
		return nil, err
	}
	out := make([]uint32, 0, size)
	for i := uint64(0); i < size; i++ {
		v, err := r.U32()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Writer accumulates a wire message body under a chosen byte order.
type Writer struct {
	buf   []byte
	order binary.ByteOrder
}

// NewWriter creates an empty Writer using the given byte order.
func NewWriter(order binary.ByteOrder) *Writer {
	if order == nil {
		order = binary.LittleEndian
	}
	return &Writer{order: order}
}

// Bytes returns the accumulated buffer.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return len(w.buf)
}

// Raw appends raw bytes verbatim.
func (w *Writer) Raw(b []byte) {
	w.buf = append(w.buf, b...)
}

// Padding appends n zero bytes.
func (w *Writer) Padding(n int) {
	for i := 0; i < n; i++ {
		w.buf = append(w.buf, 0)
	}
}

// U8 appends one unsigned byte.
func (w *Writer) U8(v uint8) {
	w.buf = append(w.buf, v)
}

// U16 appends a 16-bit unsigned integer.
func (w *Writer) U16(v uint16) {
	var b [2]byte
	w.order.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// U32 appends a 32-bit unsigned integer.
func (w *Writer) U32(v uint32) {
	var b [4]byte
	w.order.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// U64 appends a 64-bit unsigned integer.
func (w *Writer) U64(v uint64) {
	var b [8]byte
	w.order.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// Size appends a compressed-size length prefix (§4.1, §6.2).
func (w *Writer) Size(size uint64) {
	if size < 254 {
		w.U8(uint8(size))
		return
	}
	w.U8(compressedSizeEscape)
	if size < uint64(compressedSize64Escape) {
		w.U32(uint32(size))
		return
	}
	w.U32(compressedSize64Escape)
	w.U64(size)
}

// String appends a compressed-size-prefixed byte string.
func (w *Writer) String(s []byte) {
	w.Size(uint64(len(s)))
	w.Raw(s)
}

// StringArray appends a compressed-size-prefixed array of strings.
func (w *Writer) StringArray(ss [][]byte) {
	w.Size(uint64(len(ss)))
	for _, s := range ss {
		w.String(s)
	}
}

// U32Array appends a compressed-size-prefixed array of u32 values.
func (w *Writer) U32Array(vs []uint32) {
	w.Size(uint64(len(vs)))
	for _, v := range vs {
		w.U32(v)
	}
}
