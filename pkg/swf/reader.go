package swf

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// Reader reads a file tag by tag.
//
// A Reader owns its source for the duration of the session: the tag
// stream is a single forward pass and advancing it cannot be undone.
type Reader struct {
	// StrictLength makes ReadTag verify the header's file length
	// field against the number of bytes actually consumed once the
	// end tag is reached. Must be set before the first ReadTag
	// call; the field is informational by default.
	StrictLength bool

	body   *countingReader
	header Header
	sawEnd bool
}

// NewReader reads the file header from in and leaves the cursor at
// the first tag. A compressed body is fully inflated into memory
// before any further parsing.
func NewReader(in io.Reader) (*Reader, *Header, error) {
	var header Header
	if err := header.FileHeader.Unmarshal(in); err != nil {
		return nil, nil, fmt.Errorf("file header: %w", err)
	}

	body := in
	if header.FileHeader.Compressed {
		if header.FileHeader.Version < 6 {
			return nil, nil, fmt.Errorf(
				"%w: compression requires version 6, file has version %d",
				ErrCorrupted, header.FileHeader.Version)
		}
		zr, err := zlib.NewReader(in)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: bad compressed body: %v", ErrCorrupted, err)
		}
		data, err := io.ReadAll(zr)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: inflate body: %v", ErrCorrupted, err)
		}
		zr.Close()
		body = bytes.NewReader(data)
	}

	r := &Reader{body: &countingReader{in: body}}
	if err := header.FrameHeader.Unmarshal(r.body); err != nil {
		return nil, nil, fmt.Errorf("frame header: %w", err)
	}
	r.header = header
	return r, &header, nil
}

// ReadTag returns the next tag. The end tag is returned to the
// caller; the call after it reports io.EOF. Running out of bytes
// anywhere before the end tag is a format violation, not a clean
// end of stream.
func (r *Reader) ReadTag() (Tag, error) {
	if r.sawEnd {
		return nil, io.EOF
	}
	tag, err := ReadTag(r.body)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: tag stream ends without an end tag", ErrCorrupted)
		}
		return nil, err
	}
	if tag.Code() == CodeEnd {
		r.sawEnd = true
		if r.StrictLength {
			want := uint32(fileHeaderSize + r.body.n)
			if got := r.header.FileHeader.FileLength; got != want {
				return nil, fmt.Errorf("%w: header says %d bytes, body has %d",
					ErrCorrupted, got, want)
			}
		}
	}
	return tag, nil
}

// ReadAllTags reads the remaining tags, including the end tag.
func (r *Reader) ReadAllTags() ([]Tag, error) {
	var tags []Tag
	for {
		tag, err := r.ReadTag()
		if errors.Is(err, io.EOF) {
			return tags, nil
		}
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
}

// countingReader tracks consumed body bytes for length validation.
type countingReader struct {
	in io.Reader
	n  int
}

// Read implements io.Reader.
func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.in.Read(p)
	c.n += n
	return n, err
}
