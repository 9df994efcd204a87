package swf

import (
	"encoding/binary"
	"fmt"
	"io"

	"hsalf/pkg/swf/bits"
)

// SetBackgroundColorTag sets the stage background color.
type SetBackgroundColorTag struct {
	BackgroundColor RgbColor
}

// Code returns the tag code.
func (*SetBackgroundColorTag) Code() TagCode { return CodeSetBackgroundColor }

// MarshalBody writes the tag payload.
func (t *SetBackgroundColorTag) MarshalBody(w io.Writer) error {
	_, err := w.Write(t.BackgroundColor.Marshal())
	return err
}

// UnmarshalBody reads the tag payload.
func (t *SetBackgroundColorTag) UnmarshalBody(r io.Reader, _ int) error {
	return t.BackgroundColor.Unmarshal(r)
}

// Stream sound compression formats.
const (
	SoundADPCM = 1
	SoundMP3   = 2
)

// Sound channel layouts.
const (
	SoundMono   = 0
	SoundStereo = 1
)

// SoundStreamHeadTag describes the stream sound that follows in
// SoundStreamBlock tags.
//
// Rates are coded as 0: 5.5 kHz, 1: 11 kHz, 2: 22 kHz, 3: 44 kHz.
// The sound sizes are always 1 (16 bit).
type SoundStreamHeadTag struct {
	PlaybackRate uint8
	PlaybackSize uint8
	PlaybackType uint8 // SoundMono or SoundStereo.

	StreamCompression uint8 // SoundADPCM or SoundMP3.
	StreamRate        uint8
	StreamSize        uint8
	StreamType        uint8

	// StreamSampleCount is the average number of samples per
	// SoundStreamBlock.
	StreamSampleCount uint16

	// LatencySeek is the number of samples to skip, mp3 only.
	LatencySeek int16
}

// Code returns the tag code.
func (*SoundStreamHeadTag) Code() TagCode { return CodeSoundStreamHead }

// MarshalBody writes the tag payload.
func (t *SoundStreamHeadTag) MarshalBody(w io.Writer) error {
	bw := bits.NewWriter(w)
	bw.TryWriteBits(0, 4) // Reserved.
	bw.TryWriteBits(uint64(t.PlaybackRate), 2)
	bw.TryWriteBits(uint64(t.PlaybackSize), 1)
	bw.TryWriteBits(uint64(t.PlaybackType), 1)
	bw.TryWriteBits(uint64(t.StreamCompression), 4)
	bw.TryWriteBits(uint64(t.StreamRate), 2)
	bw.TryWriteBits(uint64(t.StreamSize), 1)
	bw.TryWriteBits(uint64(t.StreamType), 1)
	if err := bw.Flush(); err != nil {
		return err
	}
	if err := writeUint16(w, t.StreamSampleCount); err != nil {
		return err
	}
	if t.StreamCompression == SoundMP3 && t.LatencySeek != 0 {
		return writeUint16(w, uint16(t.LatencySeek))
	}
	return nil
}

// UnmarshalBody reads the tag payload.
func (t *SoundStreamHeadTag) UnmarshalBody(r io.Reader, length int) error {
	br := bits.NewReader(r)
	br.TryReadBits(4) // Reserved, not validated.
	t.PlaybackRate = uint8(br.TryReadBits(2))
	t.PlaybackSize = uint8(br.TryReadBits(1))
	t.PlaybackType = uint8(br.TryReadBits(1))
	t.StreamCompression = uint8(br.TryReadBits(4))
	t.StreamRate = uint8(br.TryReadBits(2))
	t.StreamSize = uint8(br.TryReadBits(1))
	t.StreamType = uint8(br.TryReadBits(1))
	if br.TryError != nil {
		return br.TryError
	}
	if t.PlaybackSize != 1 {
		return fmt.Errorf("%w: playback sound size must be 1", ErrCorrupted)
	}
	if t.StreamCompression != SoundADPCM && t.StreamCompression != SoundMP3 {
		return fmt.Errorf("%w: stream sound compression %d",
			ErrCorrupted, t.StreamCompression)
	}
	if t.StreamSize != 1 {
		return fmt.Errorf("%w: stream sound size must be 1", ErrCorrupted)
	}

	var err error
	if t.StreamSampleCount, err = readUint16(r); err != nil {
		return err
	}
	t.LatencySeek = 0
	if t.StreamCompression == SoundMP3 && length > 4 {
		seek, err := readUint16(r)
		if err != nil {
			return err
		}
		t.LatencySeek = int16(seek)
	}
	return nil
}

// SoundStreamBlockTag carries one block of compressed sound data.
// The payload stays opaque.
type SoundStreamBlockTag struct {
	SoundData []byte
}

// Code returns the tag code.
func (*SoundStreamBlockTag) Code() TagCode { return CodeSoundStreamBlock }

// MarshalBody writes the tag payload.
func (t *SoundStreamBlockTag) MarshalBody(w io.Writer) error {
	_, err := w.Write(t.SoundData)
	return err
}

// UnmarshalBody reads the tag payload.
func (t *SoundStreamBlockTag) UnmarshalBody(r io.Reader, length int) error {
	t.SoundData = make([]byte, length)
	if _, err := io.ReadFull(r, t.SoundData); err != nil {
		return eofUnexpected(err)
	}
	return nil
}

// VideoFrameTag carries one encoded video frame, for example a
// screen video packet. The frame data stays opaque at this layer.
type VideoFrameTag struct {
	StreamID  uint16
	FrameNum  uint16
	VideoData []byte
}

// Code returns the tag code.
func (*VideoFrameTag) Code() TagCode { return CodeVideoFrame }

// MarshalBody writes the tag payload.
func (t *VideoFrameTag) MarshalBody(w io.Writer) error {
	var buf [4]byte
	binary.LittleEndian.PutUint16(buf[0:2], t.StreamID)
	binary.LittleEndian.PutUint16(buf[2:4], t.FrameNum)
	if _, err := w.Write(buf[:]); err != nil {
		return err
	}
	_, err := w.Write(t.VideoData)
	return err
}

// UnmarshalBody reads the tag payload.
func (t *VideoFrameTag) UnmarshalBody(r io.Reader, length int) error {
	if length < 4 {
		return fmt.Errorf("%w: video frame tag with %d byte payload",
			ErrCorrupted, length)
	}
	var err error
	if t.StreamID, err = readUint16(r); err != nil {
		return err
	}
	if t.FrameNum, err = readUint16(r); err != nil {
		return err
	}
	t.VideoData = make([]byte, length-4)
	if _, err := io.ReadFull(r, t.VideoData); err != nil {
		return eofUnexpected(err)
	}
	return nil
}
