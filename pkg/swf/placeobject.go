package swf

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"hsalf/pkg/swf/bits"
)

// ClipEventFlags is the event mask of a clip action handler.
type ClipEventFlags struct {
	KeyUp          bool
	KeyDown        bool
	MouseUp        bool
	MouseDown      bool
	MouseMove      bool
	Unload         bool
	EnterFrame     bool
	Load           bool
	DragOver       bool
	RollOut        bool
	RollOver       bool
	ReleaseOutside bool
	Release        bool
	Press          bool
	Initialize     bool
	Data           bool
	Construct      bool
	KeyPress       bool
	DragOut        bool
}

func (f *ClipEventFlags) fields() []*bool {
	return []*bool{
		&f.KeyUp, &f.KeyDown, &f.MouseUp, &f.MouseDown,
		&f.MouseMove, &f.Unload, &f.EnterFrame, &f.Load,
		&f.DragOver, &f.RollOut, &f.RollOver, &f.ReleaseOutside,
		&f.Release, &f.Press, &f.Initialize, &f.Data,
	}
}

// Unmarshal clip event flags from reader.
func (f *ClipEventFlags) Unmarshal(r io.Reader) error {
	br := bits.NewReader(r)
	for _, field := range f.fields() {
		*field = br.TryReadFlag()
	}
	reserved := br.TryReadBits(5)
	f.Construct = br.TryReadFlag()
	f.KeyPress = br.TryReadFlag()
	f.DragOut = br.TryReadFlag()
	reserved |= br.TryReadBits(8)
	if br.TryError != nil {
		return br.TryError
	}
	if reserved != 0 {
		return fmt.Errorf("%w: reserved clip event bits must be zero", ErrCorrupted)
	}
	return nil
}

// Marshal clip event flags to writer.
func (f *ClipEventFlags) Marshal(w io.Writer) error {
	bw := bits.NewWriter(w)
	for _, field := range f.fields() {
		bw.TryWriteFlag(*field)
	}
	bw.TryWriteBits(0, 5)
	bw.TryWriteFlag(f.Construct)
	bw.TryWriteFlag(f.KeyPress)
	bw.TryWriteFlag(f.DragOut)
	bw.TryWriteBits(0, 8)
	return bw.Flush()
}

// ActionRecord is a single action. Action payloads stay opaque,
// this codec does not interpret bytecode.
type ActionRecord struct {
	ActionCode uint8

	// Data is only present for codes 0x80 and above.
	Data []byte
}

// size returns the framed size in bytes.
func (a *ActionRecord) size() int {
	if a.ActionCode >= 0x80 {
		return 3 + len(a.Data)
	}
	return 1
}

// Unmarshal action record from reader.
func (a *ActionRecord) Unmarshal(r io.Reader) error {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return eofUnexpected(err)
	}
	a.ActionCode = b[0]
	a.Data = nil
	if a.ActionCode < 0x80 {
		return nil
	}
	length, err := readUint16(r)
	if err != nil {
		return err
	}
	a.Data = make([]byte, length)
	if _, err := io.ReadFull(r, a.Data); err != nil {
		return eofUnexpected(err)
	}
	return nil
}

// Marshal action record to writer.
func (a ActionRecord) Marshal(w io.Writer) error {
	if a.ActionCode < 0x80 {
		_, err := w.Write([]byte{a.ActionCode})
		return err
	}
	if len(a.Data) > 1<<16-1 {
		return fmt.Errorf("action payload of %d bytes does not fit in 16 bits",
			len(a.Data))
	}
	hdr := [3]byte{a.ActionCode}
	binary.LittleEndian.PutUint16(hdr[1:], uint16(len(a.Data)))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	_, err := w.Write(a.Data)
	return err
}

// ClipActionRecord is one event handler.
type ClipActionRecord struct {
	EventFlags ClipEventFlags

	// KeyCode is only present when EventFlags.KeyPress is set.
	KeyCode uint8

	Actions []ActionRecord
}

// Unmarshal clip action record from reader.
func (c *ClipActionRecord) Unmarshal(r io.Reader) error {
	if err := c.EventFlags.Unmarshal(r); err != nil {
		return err
	}
	var sizeBuf [4]byte
	if _, err := io.ReadFull(r, sizeBuf[:]); err != nil {
		return eofUnexpected(err)
	}
	recordSize := int(binary.LittleEndian.Uint32(sizeBuf[:]))

	size := 0
	c.KeyCode = 0
	if c.EventFlags.KeyPress {
		var b [1]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return eofUnexpected(err)
		}
		c.KeyCode = b[0]
		size = 1
	}
	c.Actions = nil
	for size < recordSize {
		var action ActionRecord
		if err := action.Unmarshal(r); err != nil {
			return err
		}
		size += action.size()
		c.Actions = append(c.Actions, action)
	}
	if size != recordSize {
		return fmt.Errorf("%w: clip action record size %d not met exactly",
			ErrCorrupted, recordSize)
	}
	return nil
}

// Marshal clip action record to writer. The record size field is
// derived from the serialized actions.
func (c ClipActionRecord) Marshal(w io.Writer) error {
	if err := c.EventFlags.Marshal(w); err != nil {
		return err
	}
	size := 0
	if c.EventFlags.KeyPress {
		size = 1
	}
	for i := range c.Actions {
		size += c.Actions[i].size()
	}
	var sizeBuf [4]byte
	binary.LittleEndian.PutUint32(sizeBuf[:], uint32(size))
	if _, err := w.Write(sizeBuf[:]); err != nil {
		return err
	}
	if c.EventFlags.KeyPress {
		if _, err := w.Write([]byte{c.KeyCode}); err != nil {
			return err
		}
	}
	for _, action := range c.Actions {
		if err := action.Marshal(w); err != nil {
			return err
		}
	}
	return nil
}

// ClipActions is the full handler table of a placed object.
type ClipActions struct {
	// AllEventFlags is the union of the event flags of every
	// record.
	AllEventFlags ClipEventFlags

	Records []ClipActionRecord
}

// Unmarshal clip actions from reader. The table ends at a 4-byte
// zero terminator in place of the next record.
func (c *ClipActions) Unmarshal(r io.Reader) error {
	var reserved [2]byte
	if _, err := io.ReadFull(r, reserved[:]); err != nil {
		return eofUnexpected(err)
	}
	if reserved[0] != 0 || reserved[1] != 0 {
		return fmt.Errorf("%w: reserved clip action bytes must be zero", ErrCorrupted)
	}
	if err := c.AllEventFlags.Unmarshal(r); err != nil {
		return err
	}
	c.Records = nil
	for {
		var peek [4]byte
		if _, err := io.ReadFull(r, peek[:]); err != nil {
			return eofUnexpected(err)
		}
		if peek == [4]byte{} {
			return nil
		}
		// Not the terminator, the bytes belong to the next record.
		r = io.MultiReader(bytes.NewReader(peek[:]), r)
		var record ClipActionRecord
		if err := record.Unmarshal(r); err != nil {
			return err
		}
		c.Records = append(c.Records, record)
	}
}

// Marshal clip actions to writer.
func (c ClipActions) Marshal(w io.Writer) error {
	if _, err := w.Write([]byte{0, 0}); err != nil {
		return err
	}
	if err := c.AllEventFlags.Marshal(w); err != nil {
		return err
	}
	for _, record := range c.Records {
		if err := record.Marshal(w); err != nil {
			return err
		}
	}
	_, err := w.Write([]byte{0, 0, 0, 0})
	return err
}

// PlaceObject2Tag places, moves or modifies a character on the
// display list. Optional fields are guarded by their Has flags.
type PlaceObject2Tag struct {
	Move  bool
	Depth uint16

	HasCharacter bool
	CharacterID  uint16

	HasMatrix bool
	Matrix    Matrix

	HasColorTransform bool
	ColorTransform    ColorTransformWithAlpha

	HasRatio bool
	Ratio    uint16

	HasName bool
	Name    String

	HasClipDepth bool
	ClipDepth    uint16

	HasClipActions bool
	ClipActions    ClipActions
}

// Code returns the tag code.
func (*PlaceObject2Tag) Code() TagCode { return CodePlaceObject2 }

// MarshalBody writes the tag payload.
func (t *PlaceObject2Tag) MarshalBody(w io.Writer) error {
	bw := bits.NewWriter(w)
	bw.TryWriteFlag(t.HasClipActions)
	bw.TryWriteFlag(t.HasClipDepth)
	bw.TryWriteFlag(t.HasName)
	bw.TryWriteFlag(t.HasRatio)
	bw.TryWriteFlag(t.HasColorTransform)
	bw.TryWriteFlag(t.HasMatrix)
	bw.TryWriteFlag(t.HasCharacter)
	bw.TryWriteFlag(t.Move)
	if err := bw.Flush(); err != nil {
		return err
	}
	if err := writeUint16(w, t.Depth); err != nil {
		return err
	}
	if t.HasCharacter {
		if err := writeUint16(w, t.CharacterID); err != nil {
			return err
		}
	}
	if t.HasMatrix {
		if err := t.Matrix.Marshal(w); err != nil {
			return err
		}
	}
	if t.HasColorTransform {
		if err := t.ColorTransform.Marshal(w); err != nil {
			return err
		}
	}
	if t.HasRatio {
		if err := writeUint16(w, t.Ratio); err != nil {
			return err
		}
	}
	if t.HasName {
		if err := t.Name.Marshal(w); err != nil {
			return err
		}
	}
	if t.HasClipDepth {
		if err := writeUint16(w, t.ClipDepth); err != nil {
			return err
		}
	}
	if t.HasClipActions {
		if err := t.ClipActions.Marshal(w); err != nil {
			return err
		}
	}
	return nil
}

// UnmarshalBody reads the tag payload.
func (t *PlaceObject2Tag) UnmarshalBody(r io.Reader, _ int) error {
	br := bits.NewReader(r)
	t.HasClipActions = br.TryReadFlag()
	t.HasClipDepth = br.TryReadFlag()
	t.HasName = br.TryReadFlag()
	t.HasRatio = br.TryReadFlag()
	t.HasColorTransform = br.TryReadFlag()
	t.HasMatrix = br.TryReadFlag()
	t.HasCharacter = br.TryReadFlag()
	t.Move = br.TryReadFlag()
	if br.TryError != nil {
		return br.TryError
	}

	var err error
	if t.Depth, err = readUint16(r); err != nil {
		return err
	}
	if t.HasCharacter {
		if t.CharacterID, err = readUint16(r); err != nil {
			return err
		}
	}
	if t.HasMatrix {
		if err := t.Matrix.Unmarshal(r); err != nil {
			return err
		}
	}
	if t.HasColorTransform {
		if err := t.ColorTransform.Unmarshal(r); err != nil {
			return err
		}
	}
	if t.HasRatio {
		if t.Ratio, err = readUint16(r); err != nil {
			return err
		}
	}
	if t.HasName {
		if err := t.Name.Unmarshal(r); err != nil {
			return err
		}
	}
	if t.HasClipDepth {
		if t.ClipDepth, err = readUint16(r); err != nil {
			return err
		}
	}
	if t.HasClipActions {
		if err := t.ClipActions.Unmarshal(r); err != nil {
			return err
		}
	}
	return nil
}
