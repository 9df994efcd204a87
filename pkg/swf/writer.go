package swf

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// ErrWriterClosed write on a closed Writer.
var ErrWriterClosed = errors.New("writer is closed")

// Writer writes a file. Tags are buffered so the file header can
// carry the real body length; nothing reaches the output until
// Close, and skipping Close loses the file.
type Writer struct {
	out    io.Writer
	header Header
	body   bytes.Buffer
	sawEnd bool
	closed bool
}

// NewWriter creates a Writer with the given header. The header's
// FileLength is ignored and recomputed on Close.
func NewWriter(out io.Writer, header Header) (*Writer, error) {
	if header.FileHeader.Compressed && header.FileHeader.Version < 6 {
		return nil, fmt.Errorf(
			"%w: compression requires version 6, header has version %d",
			ErrCorrupted, header.FileHeader.Version)
	}
	w := &Writer{out: out, header: header}
	if err := header.FrameHeader.Marshal(&w.body); err != nil {
		return nil, fmt.Errorf("frame header: %w", err)
	}
	return w, nil
}

// WriteTag appends one tag to the body.
func (w *Writer) WriteTag(t Tag) error {
	if w.closed {
		return ErrWriterClosed
	}
	if w.sawEnd {
		return fmt.Errorf("tag %d after the end tag", t.Code())
	}
	if err := WriteTag(&w.body, t); err != nil {
		return err
	}
	if t.Code() == CodeEnd {
		w.sawEnd = true
	}
	return nil
}

// Close writes the header and the buffered body to the output,
// compressing the body when the header asks for it. An end tag is
// appended if the caller did not write one. Close is idempotent.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	if !w.sawEnd {
		if err := WriteTag(&w.body, &EndTag{}); err != nil {
			return err
		}
	}
	w.header.FileHeader.FileLength = uint32(fileHeaderSize + w.body.Len())
	if _, err := w.out.Write(w.header.FileHeader.Marshal()); err != nil {
		return err
	}
	if w.header.FileHeader.Compressed {
		zw := zlib.NewWriter(w.out)
		if _, err := zw.Write(w.body.Bytes()); err != nil {
			return err
		}
		return zw.Close()
	}
	_, err := w.out.Write(w.body.Bytes())
	return err
}
