// Package bits provides bit-granular reading and writing in the
// most-significant-bit-first order used by the swf format.
package bits

import (
	"errors"
	"io"
	mathbits "math/bits"

	"github.com/icza/bitio"
)

// ErrSignedWidth signed bit field too narrow to hold a sign and a magnitude.
var ErrSignedWidth = errors.New("signed bit field must be at least 2 bits wide")

// ReaderAndByteReader io.Reader and io.ByteReader at the same time.
type ReaderAndByteReader interface {
	io.Reader
	io.ByteReader
}

// Reader reads bit fields from an underlying byte stream. Partial
// bytes are buffered internally and never fetched twice.
type Reader struct {
	br *bitio.Reader

	// TryError holds the first error occurred in TryXXX() methods.
	TryError error
}

// NewReader returns a new Reader reading from r. Bytes are pulled
// from r one at a time, so r is never consumed past the last
// requested bit.
func NewReader(r io.Reader) *Reader {
	in, ok := r.(ReaderAndByteReader)
	if !ok {
		in = &byteReader{in: r}
	}
	return &Reader{br: bitio.NewReader(in)}
}

// ReadBits reads the next n bits as an unsigned integer.
func (r *Reader) ReadBits(n uint8) (uint64, error) {
	u, err := r.br.ReadBits(n)
	return u, eofUnexpected(err)
}

// ReadSigned reads the next n bits as a two's-complement signed
// integer. The most significant of the n bits is the sign bit.
func (r *Reader) ReadSigned(n uint8) (int64, error) {
	if n < 2 {
		return 0, ErrSignedWidth
	}
	u, err := r.ReadBits(n)
	if err != nil {
		return 0, err
	}
	if u&(1<<(n-1)) != 0 {
		return int64(u) - int64(1)<<n, nil
	}
	return int64(u), nil
}

// ReadFlag reads a single bit.
func (r *Reader) ReadFlag() (bool, error) {
	b, err := r.br.ReadBool()
	return b, eofUnexpected(err)
}

// Align discards the unread bits of the current byte. The next read
// starts on a byte boundary.
func (r *Reader) Align() {
	r.br.Align()
}

// TryReadBits tries to read n bits.
func (r *Reader) TryReadBits(n uint8) uint64 {
	if r.TryError != nil {
		return 0
	}
	var u uint64
	u, r.TryError = r.ReadBits(n)
	return u
}

// TryReadSigned tries to read n bits as a signed integer.
func (r *Reader) TryReadSigned(n uint8) int64 {
	if r.TryError != nil {
		return 0
	}
	var v int64
	v, r.TryError = r.ReadSigned(n)
	return v
}

// TryReadFlag tries to read a single bit.
func (r *Reader) TryReadFlag() bool {
	if r.TryError != nil {
		return false
	}
	var b bool
	b, r.TryError = r.ReadFlag()
	return b
}

// WriterAndByteWriter io.Writer and io.ByteWriter at the same time.
type WriterAndByteWriter interface {
	io.Writer
	io.ByteWriter
}

// Writer writes bit fields to an underlying byte stream. Bits are
// buffered until a full byte is available.
type Writer struct {
	bw *bitio.Writer

	// TryError holds the first error occurred in TryXXX() methods.
	TryError error
}

// NewWriter returns a new Writer writing to w. Flush must be called
// before the underlying stream is used again, it pads the pending
// bits with zeros up to the next byte boundary.
func NewWriter(w io.Writer) *Writer {
	out, ok := w.(WriterAndByteWriter)
	if !ok {
		out = &byteWriter{out: w}
	}
	return &Writer{bw: bitio.NewWriter(out)}
}

// WriteBits writes the lowest n bits of v.
func (w *Writer) WriteBits(v uint64, n uint8) error {
	return w.bw.WriteBits(v&mask(n), n)
}

// WriteSigned writes v as an n-bit two's-complement value.
func (w *Writer) WriteSigned(v int64, n uint8) error {
	if n < 2 {
		return ErrSignedWidth
	}
	return w.bw.WriteBits(uint64(v)&mask(n), n)
}

// WriteFlag writes a single bit.
func (w *Writer) WriteFlag(b bool) error {
	return w.bw.WriteBool(b)
}

// Flush pads the buffered bits with zeros to the next byte boundary
// and writes them out. Flushing an aligned writer is a no-op.
func (w *Writer) Flush() error {
	if w.TryError != nil {
		return w.TryError
	}
	_, err := w.bw.Align()
	return err
}

// TryWriteBits tries to write the lowest n bits of v.
func (w *Writer) TryWriteBits(v uint64, n uint8) {
	if w.TryError == nil {
		w.TryError = w.WriteBits(v, n)
	}
}

// TryWriteSigned tries to write v as an n-bit signed value.
func (w *Writer) TryWriteSigned(v int64, n uint8) {
	if w.TryError == nil {
		w.TryError = w.WriteSigned(v, n)
	}
}

// TryWriteFlag tries to write a single bit.
func (w *Writer) TryWriteFlag(b bool) {
	if w.TryError == nil {
		w.TryError = w.WriteFlag(b)
	}
}

// RequiredBits returns the minimum width that fits every value as a
// two's-complement signed integer. The result is never below 2, a
// signed field cannot be narrower.
func RequiredBits(values ...int64) uint8 {
	var maxMag uint64
	for _, v := range values {
		// -2 fits in 2 bits but 2 needs 3, so a negative value
		// contributes its magnitude minus one.
		mag := uint64(v)
		if v < 0 {
			mag = uint64(-(v + 1))
		}
		if mag > maxMag {
			maxMag = mag
		}
	}
	n := mathbits.Len64(maxMag) + 1
	if n < 2 {
		n = 2
	}
	return uint8(n)
}

func mask(n uint8) uint64 {
	if n >= 64 {
		return ^uint64(0)
	}
	return 1<<n - 1
}

// A bit field cut short is always a truncation, even when the
// source reports a bare EOF.
func eofUnexpected(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

// byteReader is a helper for io.Readers without io.ByteReader. It
// keeps reads byte-sized so the source is never over-consumed.
type byteReader struct {
	in io.Reader
}

// Read implements io.Reader.
func (r *byteReader) Read(p []byte) (int, error) {
	return r.in.Read(p)
}

// ReadByte implements io.ByteReader.
func (r *byteReader) ReadByte() (byte, error) {
	var b [1]byte
	_, err := io.ReadFull(r.in, b[:])
	return b[0], err
}

// byteWriter is a helper for io.Writers without io.ByteWriter.
type byteWriter struct {
	out io.Writer
}

// Write implements io.Writer.
func (w *byteWriter) Write(p []byte) (int, error) {
	return w.out.Write(p)
}

// WriteByte implements io.ByteWriter.
func (w *byteWriter) WriteByte(b byte) error {
	_, err := w.out.Write([]byte{b})
	return err
}
