package swf

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrCorrupted is the base error for every format violation. More
// specific causes are wrapped around it and carried in the message.
var ErrCorrupted = errors.New("corrupted swf")

const fileHeaderSize = 8

// FileHeader is the first 8 bytes of a file.
type FileHeader struct {
	Compressed bool
	Version    uint8

	// FileLength is the uncompressed file size including the
	// header. Informational on read, derived from the body on
	// write.
	FileLength uint32
}

// Marshal file header.
func (h FileHeader) Marshal() []byte {
	out := make([]byte, fileHeaderSize)
	copy(out, "FWS")
	if h.Compressed {
		out[0] = 'C'
	}
	out[3] = h.Version
	binary.LittleEndian.PutUint32(out[4:8], h.FileLength)
	return out
}

// Unmarshal file header from reader.
func (h *FileHeader) Unmarshal(r io.Reader) error {
	var buf [fileHeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return err
	}
	switch {
	case buf[0] == 'F' && buf[1] == 'W' && buf[2] == 'S':
		h.Compressed = false
	case buf[0] == 'C' && buf[1] == 'W' && buf[2] == 'S':
		h.Compressed = true
	default:
		return fmt.Errorf("%w: invalid signature %q", ErrCorrupted, buf[:3])
	}
	h.Version = buf[3]
	h.FileLength = binary.LittleEndian.Uint32(buf[4:8])
	return nil
}

// FrameHeader is the second part of the header, stored after the
// compressed boundary.
type FrameHeader struct {
	FrameSize  Rect   // In twips.
	FrameRate  uint16 // 8.8 fixed point frames per second.
	FrameCount uint16
}

// Marshal frame header to writer.
func (h FrameHeader) Marshal(w io.Writer) error {
	if err := h.FrameSize.Marshal(w); err != nil {
		return err
	}
	var buf [4]byte
	binary.LittleEndian.PutUint16(buf[0:2], h.FrameRate)
	binary.LittleEndian.PutUint16(buf[2:4], h.FrameCount)
	_, err := w.Write(buf[:])
	return err
}

// Unmarshal frame header from reader.
func (h *FrameHeader) Unmarshal(r io.Reader) error {
	if err := h.FrameSize.Unmarshal(r); err != nil {
		return err
	}
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return eofUnexpected(err)
	}
	h.FrameRate = binary.LittleEndian.Uint16(buf[0:2])
	h.FrameCount = binary.LittleEndian.Uint16(buf[2:4])
	return nil
}

// Header is the full file header.
type Header struct {
	FileHeader  FileHeader
	FrameHeader FrameHeader
}

// File is a fully decoded file.
type File struct {
	Header Header

	// Tags is the tag stream, including the end tag.
	Tags []Tag
}

// Decode reads a whole file into memory.
func Decode(r io.Reader) (*File, error) {
	sr, header, err := NewReader(r)
	if err != nil {
		return nil, err
	}
	tags, err := sr.ReadAllTags()
	if err != nil {
		return nil, err
	}
	return &File{Header: *header, Tags: tags}, nil
}

// Encode serializes the file. The length and signature fields of
// the written header are derived from the serialized body, not
// taken from f.
func (f *File) Encode(w io.Writer) error {
	fw, err := NewWriter(w, f.Header)
	if err != nil {
		return err
	}
	for _, tag := range f.Tags {
		if err := fw.WriteTag(tag); err != nil {
			return err
		}
	}
	return fw.Close()
}

// A record cut short mid-field is a truncation even when the source
// reports a bare EOF.
func eofUnexpected(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

func readUint16(r io.Reader) (uint16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, eofUnexpected(err)
	}
	return binary.LittleEndian.Uint16(buf[:]), nil
}

func writeUint16(w io.Writer, v uint16) error {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}
