package swf

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// TagCode identifies a tag type. Codes are 10 bits wide.
type TagCode uint16

// Tag codes with a registered decoder.
const (
	CodeEnd                TagCode = 0
	CodeSetBackgroundColor TagCode = 9
	CodeSoundStreamHead    TagCode = 18
	CodeSoundStreamBlock   TagCode = 19
	CodePlaceObject2       TagCode = 26
	CodeVideoFrame         TagCode = 61
)

const (
	maxTagCode = 1<<10 - 1

	// Payloads longer than 62 bytes use the extended length form.
	shortLengthMax = 62
	lengthSentinel = 63
)

// Tag is a single record in the file body.
type Tag interface {
	// Code returns the tag code.
	Code() TagCode

	// MarshalBody writes the tag payload, without the tag header.
	MarshalBody(w io.Writer) error

	// UnmarshalBody reads a payload of exactly length bytes.
	UnmarshalBody(r io.Reader, length int) error
}

var decoders = map[TagCode]func() Tag{
	CodeEnd:                func() Tag { return &EndTag{} },
	CodeSetBackgroundColor: func() Tag { return &SetBackgroundColorTag{} },
	CodeSoundStreamHead:    func() Tag { return &SoundStreamHeadTag{} },
	CodeSoundStreamBlock:   func() Tag { return &SoundStreamBlockTag{} },
	CodePlaceObject2:       func() Tag { return &PlaceObject2Tag{} },
	CodeVideoFrame:         func() Tag { return &VideoFrameTag{} },
}

// Register installs a decoder for a tag code, replacing any
// previous one. Codes without a decoder fall back to RawTag.
// Not safe for concurrent use with ReadTag.
func Register(code TagCode, fn func() Tag) {
	decoders[code] = fn
}

// ReadTag reads one framed tag from r.
//
// io.EOF is returned only when no header bytes are available at
// all; a partial header or payload is reported as a truncation.
func ReadTag(r io.Reader) (Tag, error) {
	var hdr [2]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, err
	}
	word := binary.LittleEndian.Uint16(hdr[:])
	code := TagCode(word >> 6)
	length := int(word & lengthSentinel)
	if length == lengthSentinel {
		var ext [4]byte
		if _, err := io.ReadFull(r, ext[:]); err != nil {
			return nil, eofUnexpected(err)
		}
		length = int(binary.LittleEndian.Uint32(ext[:]))
	}

	// The payload is materialized before dispatch so a misbehaving
	// decoder can never desync the tag framing.
	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, eofUnexpected(err)
	}

	var tag Tag
	if fn, ok := decoders[code]; ok {
		tag = fn()
	} else {
		tag = &RawTag{TagCode: code}
	}
	if err := tag.UnmarshalBody(bytes.NewReader(payload), length); err != nil {
		return nil, fmt.Errorf("tag %d: %w", code, err)
	}
	return tag, nil
}

// WriteTag frames and writes one tag to w. The payload is
// serialized first so the header carries its exact length, using
// the short form whenever the length fits in 6 bits.
func WriteTag(w io.Writer, t Tag) error {
	if t.Code() > maxTagCode {
		return fmt.Errorf("tag code %d does not fit in 10 bits", t.Code())
	}
	var body bytes.Buffer
	if err := t.MarshalBody(&body); err != nil {
		return fmt.Errorf("tag %d: %w", t.Code(), err)
	}

	word := uint16(t.Code()) << 6
	if body.Len() <= shortLengthMax {
		word |= uint16(body.Len())
		var hdr [2]byte
		binary.LittleEndian.PutUint16(hdr[:], word)
		if _, err := w.Write(hdr[:]); err != nil {
			return err
		}
	} else {
		word |= lengthSentinel
		var hdr [6]byte
		binary.LittleEndian.PutUint16(hdr[:2], word)
		binary.LittleEndian.PutUint32(hdr[2:], uint32(body.Len()))
		if _, err := w.Write(hdr[:]); err != nil {
			return err
		}
	}
	_, err := w.Write(body.Bytes())
	return err
}

// EndTag terminates the tag stream.
type EndTag struct{}

// Code returns the tag code.
func (*EndTag) Code() TagCode { return CodeEnd }

// MarshalBody writes nothing, the end tag has no payload.
func (*EndTag) MarshalBody(io.Writer) error { return nil }

// UnmarshalBody rejects any payload.
func (*EndTag) UnmarshalBody(_ io.Reader, length int) error {
	if length != 0 {
		return fmt.Errorf("%w: end tag with %d byte payload", ErrCorrupted, length)
	}
	return nil
}

// RawTag holds the opaque payload of a tag without a registered
// decoder.
type RawTag struct {
	TagCode TagCode
	Data    []byte
}

// Code returns the tag code.
func (t *RawTag) Code() TagCode { return t.TagCode }

// MarshalBody writes the payload unchanged.
func (t *RawTag) MarshalBody(w io.Writer) error {
	_, err := w.Write(t.Data)
	return err
}

// UnmarshalBody captures length raw bytes.
func (t *RawTag) UnmarshalBody(r io.Reader, length int) error {
	t.Data = make([]byte, length)
	if _, err := io.ReadFull(r, t.Data); err != nil {
		return eofUnexpected(err)
	}
	return nil
}
