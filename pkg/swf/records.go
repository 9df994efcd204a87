package swf

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"hsalf/pkg/swf/bits"
)

// Rect is a rectangle record. Coordinates are in twips.
type Rect struct {
	XMin, XMax, YMin, YMax int32
}

// Unmarshal rect from reader.
func (rect *Rect) Unmarshal(r io.Reader) error {
	br := bits.NewReader(r)
	n := uint8(br.TryReadBits(5))
	rect.XMin = int32(br.TryReadSigned(n))
	rect.XMax = int32(br.TryReadSigned(n))
	rect.YMin = int32(br.TryReadSigned(n))
	rect.YMax = int32(br.TryReadSigned(n))
	return br.TryError
}

// Marshal rect to writer. The field width is computed from the
// values being written.
func (rect Rect) Marshal(w io.Writer) error {
	n := bits.RequiredBits(
		int64(rect.XMin), int64(rect.XMax),
		int64(rect.YMin), int64(rect.YMax))
	if n > 31 {
		return fmt.Errorf("rect needs %d bit fields, limit is 31", n)
	}
	bw := bits.NewWriter(w)
	bw.TryWriteBits(uint64(n), 5)
	bw.TryWriteSigned(int64(rect.XMin), n)
	bw.TryWriteSigned(int64(rect.XMax), n)
	bw.TryWriteSigned(int64(rect.YMin), n)
	bw.TryWriteSigned(int64(rect.YMax), n)
	return bw.Flush()
}

// Fixed32 is a 32-bit 16.16 fixed point number.
type Fixed32 int32

// Float64 returns the value as a float.
func (f Fixed32) Float64() float64 {
	return float64(f) / 65536
}

// NewFixed32 converts a float to 16.16 fixed point.
func NewFixed32(v float64) Fixed32 {
	return Fixed32(v * 65536)
}

// Marshal fixed point value to writer.
func (f Fixed32) Marshal(w io.Writer) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(f))
	_, err := w.Write(buf[:])
	return err
}

// Unmarshal fixed point value from reader.
func (f *Fixed32) Unmarshal(r io.Reader) error {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return eofUnexpected(err)
	}
	*f = Fixed32(binary.LittleEndian.Uint32(buf[:]))
	return nil
}

// Matrix is a 2x3 transformation matrix record. Scale and rotate
// terms are 16.16 fixed point, translation is in twips.
type Matrix struct {
	HasScale       bool
	ScaleX, ScaleY Fixed32

	HasRotate                bool
	RotateSkew0, RotateSkew1 Fixed32

	TranslateX, TranslateY int32
}

// Unmarshal matrix from reader.
func (m *Matrix) Unmarshal(r io.Reader) error {
	br := bits.NewReader(r)
	m.HasScale = br.TryReadFlag()
	if m.HasScale {
		n := uint8(br.TryReadBits(5))
		m.ScaleX = Fixed32(br.TryReadSigned(n))
		m.ScaleY = Fixed32(br.TryReadSigned(n))
	}
	m.HasRotate = br.TryReadFlag()
	if m.HasRotate {
		n := uint8(br.TryReadBits(5))
		m.RotateSkew0 = Fixed32(br.TryReadSigned(n))
		m.RotateSkew1 = Fixed32(br.TryReadSigned(n))
	}
	// Width 0 is legal for the translate pair and means both
	// components are zero.
	n := uint8(br.TryReadBits(5))
	if n > 0 {
		m.TranslateX = int32(br.TryReadSigned(n))
		m.TranslateY = int32(br.TryReadSigned(n))
	} else {
		m.TranslateX = 0
		m.TranslateY = 0
	}
	return br.TryError
}

// Marshal matrix to writer.
func (m Matrix) Marshal(w io.Writer) error {
	bw := bits.NewWriter(w)
	bw.TryWriteFlag(m.HasScale)
	if m.HasScale {
		if err := writePair(bw, int64(m.ScaleX), int64(m.ScaleY)); err != nil {
			return err
		}
	}
	bw.TryWriteFlag(m.HasRotate)
	if m.HasRotate {
		if err := writePair(bw, int64(m.RotateSkew0), int64(m.RotateSkew1)); err != nil {
			return err
		}
	}
	if m.TranslateX == 0 && m.TranslateY == 0 {
		bw.TryWriteBits(0, 5)
	} else if err := writePair(bw, int64(m.TranslateX), int64(m.TranslateY)); err != nil {
		return err
	}
	return bw.Flush()
}

// writePair writes a 5-bit width preamble followed by two signed
// fields of that width.
func writePair(bw *bits.Writer, a, b int64) error {
	n := bits.RequiredBits(a, b)
	if n > 31 {
		return fmt.Errorf("matrix pair needs %d bit fields, limit is 31", n)
	}
	bw.TryWriteBits(uint64(n), 5)
	bw.TryWriteSigned(a, n)
	bw.TryWriteSigned(b, n)
	return bw.TryError
}

// ColorTransform is a CXFORM record. Mult terms are 8.8 fixed
// point, add terms are plain channel offsets. Fields are red,
// green, blue.
type ColorTransform struct {
	HasAdd  bool
	Add     [3]int16
	HasMult bool
	Mult    [3]int16
}

// Unmarshal color transform from reader.
func (c *ColorTransform) Unmarshal(r io.Reader) error {
	br := bits.NewReader(r)
	c.HasAdd = br.TryReadFlag()
	c.HasMult = br.TryReadFlag()
	n := uint8(br.TryReadBits(4))
	if c.HasMult {
		for i := range c.Mult {
			c.Mult[i] = int16(br.TryReadSigned(n))
		}
	}
	if c.HasAdd {
		for i := range c.Add {
			c.Add[i] = int16(br.TryReadSigned(n))
		}
	}
	return br.TryError
}

// Marshal color transform to writer. Both terms share one width
// computed over every present field.
func (c ColorTransform) Marshal(w io.Writer) error {
	var terms []int64
	if c.HasMult {
		terms = appendTerms(terms, c.Mult[:])
	}
	if c.HasAdd {
		terms = appendTerms(terms, c.Add[:])
	}
	n := bits.RequiredBits(terms...)
	if n > 15 {
		return fmt.Errorf("color transform needs %d bit fields, limit is 15", n)
	}
	bw := bits.NewWriter(w)
	bw.TryWriteFlag(c.HasAdd)
	bw.TryWriteFlag(c.HasMult)
	bw.TryWriteBits(uint64(n), 4)
	if c.HasMult {
		for _, v := range c.Mult {
			bw.TryWriteSigned(int64(v), n)
		}
	}
	if c.HasAdd {
		for _, v := range c.Add {
			bw.TryWriteSigned(int64(v), n)
		}
	}
	return bw.Flush()
}

// ColorTransformWithAlpha is a CXFORMWITHALPHA record. Fields are
// red, green, blue, alpha.
type ColorTransformWithAlpha struct {
	HasAdd  bool
	Add     [4]int16
	HasMult bool
	Mult    [4]int16
}

// Unmarshal color transform from reader.
func (c *ColorTransformWithAlpha) Unmarshal(r io.Reader) error {
	br := bits.NewReader(r)
	c.HasAdd = br.TryReadFlag()
	c.HasMult = br.TryReadFlag()
	n := uint8(br.TryReadBits(4))
	if c.HasMult {
		for i := range c.Mult {
			c.Mult[i] = int16(br.TryReadSigned(n))
		}
	}
	if c.HasAdd {
		for i := range c.Add {
			c.Add[i] = int16(br.TryReadSigned(n))
		}
	}
	return br.TryError
}

// Marshal color transform to writer.
func (c ColorTransformWithAlpha) Marshal(w io.Writer) error {
	var terms []int64
	if c.HasMult {
		terms = appendTerms(terms, c.Mult[:])
	}
	if c.HasAdd {
		terms = appendTerms(terms, c.Add[:])
	}
	n := bits.RequiredBits(terms...)
	if n > 15 {
		return fmt.Errorf("color transform needs %d bit fields, limit is 15", n)
	}
	bw := bits.NewWriter(w)
	bw.TryWriteFlag(c.HasAdd)
	bw.TryWriteFlag(c.HasMult)
	bw.TryWriteBits(uint64(n), 4)
	if c.HasMult {
		for _, v := range c.Mult {
			bw.TryWriteSigned(int64(v), n)
		}
	}
	if c.HasAdd {
		for _, v := range c.Add {
			bw.TryWriteSigned(int64(v), n)
		}
	}
	return bw.Flush()
}

func appendTerms(dst []int64, terms []int16) []int64 {
	for _, v := range terms {
		dst = append(dst, int64(v))
	}
	return dst
}

// RgbColor is a 3-byte RGB color record.
type RgbColor struct {
	R, G, B uint8
}

// Marshal color.
func (c RgbColor) Marshal() []byte {
	return []byte{c.R, c.G, c.B}
}

// Unmarshal color from reader.
func (c *RgbColor) Unmarshal(r io.Reader) error {
	var buf [3]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return eofUnexpected(err)
	}
	c.R, c.G, c.B = buf[0], buf[1], buf[2]
	return nil
}

// RgbaColor is a 4-byte RGBA color record.
type RgbaColor struct {
	R, G, B, A uint8
}

// Marshal color.
func (c RgbaColor) Marshal() []byte {
	return []byte{c.R, c.G, c.B, c.A}
}

// Unmarshal color from reader.
func (c *RgbaColor) Unmarshal(r io.Reader) error {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return eofUnexpected(err)
	}
	c.R, c.G, c.B, c.A = buf[0], buf[1], buf[2], buf[3]
	return nil
}

// String is a null-terminated string record.
type String string

// Unmarshal string from reader, consuming the terminator.
func (s *String) Unmarshal(r io.Reader) error {
	var out []byte
	var b [1]byte
	for {
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return eofUnexpected(err)
		}
		if b[0] == 0 {
			break
		}
		out = append(out, b[0])
	}
	*s = String(out)
	return nil
}

// Marshal string to writer, appending the terminator.
func (s String) Marshal(w io.Writer) error {
	if strings.ContainsRune(string(s), 0) {
		return fmt.Errorf("string %q contains a null byte", string(s))
	}
	_, err := w.Write(append([]byte(s), 0))
	return err
}
