package swf

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTagShortForm(t *testing.T) {
	payload := bytes.Repeat([]byte{0xAB}, 62)
	tag := &RawTag{TagCode: 77, Data: payload}

	buf := &bytes.Buffer{}
	require.NoError(t, WriteTag(buf, tag))

	// 77<<6 | 62 = 0x137E.
	require.Equal(t, []byte{0x7E, 0x13}, buf.Bytes()[:2])
	require.Equal(t, 2+62, buf.Len())

	decoded, err := ReadTag(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Equal(t, tag, decoded)
}

func TestTagExtendedForm(t *testing.T) {
	payload := bytes.Repeat([]byte{0xCD}, 63)
	tag := &RawTag{TagCode: 77, Data: payload}

	buf := &bytes.Buffer{}
	require.NoError(t, WriteTag(buf, tag))

	expected := []byte{
		0x7F, 0x13, // 77<<6 | 63, the extended length sentinel.
		63, 0, 0, 0, // Extended length.
	}
	require.Equal(t, expected, buf.Bytes()[:6])
	require.Equal(t, 6+63, buf.Len())

	decoded, err := ReadTag(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Equal(t, tag, decoded)
}

func TestTagCodeRange(t *testing.T) {
	err := WriteTag(&bytes.Buffer{}, &RawTag{TagCode: 1024})
	require.Error(t, err)
}

func TestTagTruncated(t *testing.T) {
	// No header bytes at all is a clean EOF, the caller decides
	// whether an end tag was seen.
	_, err := ReadTag(bytes.NewReader(nil))
	require.ErrorIs(t, err, io.EOF)

	// Half a header.
	_, err = ReadTag(bytes.NewReader([]byte{0x7E}))
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)

	// Header promises more payload than available.
	_, err = ReadTag(bytes.NewReader([]byte{0x7E, 0x13, 0xAB}))
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestEndTag(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, WriteTag(buf, &EndTag{}))
	require.Equal(t, []byte{0x00, 0x00}, buf.Bytes())

	decoded, err := ReadTag(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Equal(t, CodeEnd, decoded.Code())

	// An end tag must not carry a payload.
	_, err = ReadTag(bytes.NewReader([]byte{0x01, 0x00, 0xFF}))
	require.ErrorIs(t, err, ErrCorrupted)
}

func TestSetBackgroundColorTag(t *testing.T) {
	tag := &SetBackgroundColorTag{
		BackgroundColor: RgbColor{R: 0x11, G: 0x22, B: 0x33},
	}

	buf := &bytes.Buffer{}
	require.NoError(t, WriteTag(buf, tag))

	expected := []byte{
		0x43, 0x02, // 9<<6 | 3.
		0x11, 0x22, 0x33, // Background color.
	}
	require.Equal(t, expected, buf.Bytes())

	decoded, err := ReadTag(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Equal(t, tag, decoded)
}

func TestSoundStreamHeadTag(t *testing.T) {
	tag := &SoundStreamHeadTag{
		PlaybackRate:      3,
		PlaybackSize:      1,
		PlaybackType:      SoundStereo,
		StreamCompression: SoundMP3,
		StreamRate:        3,
		StreamSize:        1,
		StreamType:        SoundStereo,
		StreamSampleCount: 0x1234,
	}

	buf := &bytes.Buffer{}
	require.NoError(t, WriteTag(buf, tag))

	expected := []byte{
		0x84, 0x04, // 18<<6 | 4.
		0x0F,       // Reserved, playback rate 3, size 1, stereo.
		0x2F,       // Mp3, stream rate 3, size 1, stereo.
		0x34, 0x12, // Sample count.
	}
	require.Equal(t, expected, buf.Bytes())

	decoded, err := ReadTag(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Equal(t, tag, decoded)
}

func TestSoundStreamHeadLatencySeek(t *testing.T) {
	tag := &SoundStreamHeadTag{
		PlaybackSize:      1,
		StreamCompression: SoundMP3,
		StreamSize:        1,
		StreamSampleCount: 1152,
		LatencySeek:       -1,
	}

	buf := &bytes.Buffer{}
	require.NoError(t, WriteTag(buf, tag))

	decoded, err := ReadTag(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Equal(t, tag, decoded)
}

func TestSoundStreamHeadValidation(t *testing.T) {
	cases := []struct {
		name string
		body []byte
	}{
		{"playback size", []byte{0x0D, 0x2F, 0x00, 0x00}},
		{"compression", []byte{0x0F, 0x5F, 0x00, 0x00}},
		{"stream size", []byte{0x0F, 0x2D, 0x00, 0x00}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var tag SoundStreamHeadTag
			err := tag.UnmarshalBody(bytes.NewReader(tc.body), len(tc.body))
			require.ErrorIs(t, err, ErrCorrupted)
		})
	}
}

func TestSoundStreamBlockTag(t *testing.T) {
	tag := &SoundStreamBlockTag{SoundData: []byte{1, 2, 3, 4, 5}}

	buf := &bytes.Buffer{}
	require.NoError(t, WriteTag(buf, tag))

	decoded, err := ReadTag(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Equal(t, tag, decoded)
}

func TestVideoFrameTag(t *testing.T) {
	tag := &VideoFrameTag{
		StreamID:  1,
		FrameNum:  7,
		VideoData: []byte{0xDE, 0xAD, 0xBE, 0xEF},
	}

	buf := &bytes.Buffer{}
	require.NoError(t, WriteTag(buf, tag))

	expected := []byte{
		0x48, 0x0F, // 61<<6 | 8.
		0x01, 0x00, // Stream id.
		0x07, 0x00, // Frame number.
		0xDE, 0xAD, 0xBE, 0xEF, // Video data.
	}
	require.Equal(t, expected, buf.Bytes())

	decoded, err := ReadTag(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Equal(t, tag, decoded)

	// A payload too short for the fixed fields.
	_, err = ReadTag(bytes.NewReader([]byte{0x42, 0x0F, 0x01, 0x00}))
	require.ErrorIs(t, err, ErrCorrupted)
}

func TestRegister(t *testing.T) {
	const code = TagCode(1000)
	Register(code, func() Tag { return &SoundStreamBlockTag{} })
	defer delete(decoders, code)

	buf := &bytes.Buffer{}
	require.NoError(t, WriteTag(buf, &RawTag{TagCode: code, Data: []byte{9}}))

	decoded, err := ReadTag(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.IsType(t, &SoundStreamBlockTag{}, decoded)
}
