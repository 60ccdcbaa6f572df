package psd

import (
	"encoding/binary"
	"fmt"
)

// reader is a bounded cursor over an in-memory buffer. All integers in
// the PSD format are big endian. Slices handed out by ReadBytes alias
// the underlying buffer until the document is detached.
type reader struct {
	data []byte
	off  int
}

func newReader(data []byte) *reader {
	return &reader{data: data}
}

// Len returns the number of unread bytes.
func (r *reader) Len() int {
	return len(r.data) - r.off
}

// Empty returns true once the cursor has consumed the whole buffer.
func (r *reader) Empty() bool {
	return r.off >= len(r.data)
}

// ReadBytes returns the next n bytes without copying.
func (r *reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 || r.Len() < n {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrTruncated, n, r.Len())
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b, nil
}

// ReadString reads a string of the specified length.
func (r *reader) ReadString(n int) (string, error) {
	b, err := r.ReadBytes(n)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ReadByte reads a single byte.
func (r *reader) ReadByte() (byte, error) {
	b, err := r.ReadBytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadUint16 reads a 16-bit unsigned integer.
func (r *reader) ReadUint16() (uint16, error) {
	b, err := r.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

// ReadInt16 reads a 16-bit signed integer.
func (r *reader) ReadInt16() (int16, error) {
	v, err := r.ReadUint16()
	return int16(v), err
}

// ReadUint32 reads a 32-bit unsigned integer.
func (r *reader) ReadUint32() (uint32, error) {
	b, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// ReadInt32 reads a 32-bit signed integer.
func (r *reader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

// Skip advances the cursor by n bytes.
func (r *reader) Skip(n int) error {
	_, err := r.ReadBytes(n)
	return err
}

// Sub consumes the next n bytes and returns a reader bounded to them.
// Length-prefixed frames are parsed through sub-readers so a frame can
// never read past its declared length.
func (r *reader) Sub(n int) (*reader, error) {
	b, err := r.ReadBytes(n)
	if err != nil {
		return nil, err
	}
	return newReader(b), nil
}

// Rest consumes and returns everything left in the buffer.
func (r *reader) Rest() []byte {
	b := r.data[r.off:]
	r.off = len(r.data)
	return b
}

// The format uses three distinct alignment rules; each gets its own
// helper so they cannot be conflated.

// padEven rounds n up to an even byte count (resource data padding).
func padEven(n int) int {
	return (n + 1) &^ 1
}

// nameAdvance is the cursor advance for a resource-block Pascal name of
// n bytes, excluding the length byte: the occupied 1+n is padded to an
// even total by rounding n up to the next odd value.
func nameAdvance(n int) int {
	return n | 1
}

// layerNamePadding is the extra advance after a layer name of n bytes
// so that the length byte plus name occupy a multiple of 4.
func layerNamePadding(n int) int {
	return 3 - (n & 3)
}
