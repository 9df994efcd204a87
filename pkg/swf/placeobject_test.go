package swf

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClipEventFlags(t *testing.T) {
	flags := ClipEventFlags{
		KeyUp:     true,
		MouseDown: true,
		Load:      true,
		Release:   true,
		Construct: true,
		DragOut:   true,
	}

	buf := &bytes.Buffer{}
	require.NoError(t, flags.Marshal(buf))

	expected := []byte{
		0x91, // KeyUp, MouseDown, Load.
		0x08, // Release.
		0x05, // Construct, DragOut.
		0x00,
	}
	require.Equal(t, expected, buf.Bytes())

	var decoded ClipEventFlags
	require.NoError(t, decoded.Unmarshal(bytes.NewReader(buf.Bytes())))
	require.Equal(t, flags, decoded)
}

func TestClipEventFlagsReserved(t *testing.T) {
	cases := []struct {
		name string
		data []byte
	}{
		{"upper", []byte{0x00, 0x00, 0x08, 0x00}},
		{"lower", []byte{0x00, 0x00, 0x00, 0x01}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var flags ClipEventFlags
			err := flags.Unmarshal(bytes.NewReader(tc.data))
			require.ErrorIs(t, err, ErrCorrupted)
		})
	}
}

func TestActionRecord(t *testing.T) {
	t.Run("short", func(t *testing.T) {
		action := ActionRecord{ActionCode: 0x07}

		buf := &bytes.Buffer{}
		require.NoError(t, action.Marshal(buf))
		require.Equal(t, []byte{0x07}, buf.Bytes())

		var decoded ActionRecord
		require.NoError(t, decoded.Unmarshal(bytes.NewReader(buf.Bytes())))
		require.Equal(t, action, decoded)
	})
	t.Run("long", func(t *testing.T) {
		action := ActionRecord{ActionCode: 0x81, Data: []byte("abc")}

		buf := &bytes.Buffer{}
		require.NoError(t, action.Marshal(buf))

		expected := []byte{
			0x81,       // Action code.
			0x03, 0x00, // Payload length.
			'a', 'b', 'c',
		}
		require.Equal(t, expected, buf.Bytes())

		var decoded ActionRecord
		require.NoError(t, decoded.Unmarshal(bytes.NewReader(buf.Bytes())))
		require.Equal(t, action, decoded)
	})
}

func TestClipActionRecord(t *testing.T) {
	record := ClipActionRecord{
		EventFlags: ClipEventFlags{Press: true, KeyPress: true},
		KeyCode:    13,
		Actions: []ActionRecord{
			{ActionCode: 0x81, Data: []byte{0x12, 0x34}},
			{ActionCode: 0x07},
		},
	}

	buf := &bytes.Buffer{}
	require.NoError(t, record.Marshal(buf))

	var decoded ClipActionRecord
	require.NoError(t, decoded.Unmarshal(bytes.NewReader(buf.Bytes())))
	require.Equal(t, record, decoded)
}

func TestClipActionRecordSizeMismatch(t *testing.T) {
	data := []byte{
		0x00, 0x00, 0x00, 0x00, // Event flags.
		0x02, 0x00, 0x00, 0x00, // Record size.
		0x81, 0x00, 0x00, // A 3-byte action overruns the size.
	}
	var record ClipActionRecord
	err := record.Unmarshal(bytes.NewReader(data))
	require.ErrorIs(t, err, ErrCorrupted)
}

func TestClipActions(t *testing.T) {
	actions := ClipActions{
		AllEventFlags: ClipEventFlags{Load: true, Press: true},
		Records: []ClipActionRecord{
			{
				EventFlags: ClipEventFlags{Load: true},
				Actions:    []ActionRecord{{ActionCode: 0x07}},
			},
			{
				EventFlags: ClipEventFlags{Press: true},
				Actions:    []ActionRecord{{ActionCode: 0x81, Data: []byte{0xFF}}},
			},
		},
	}

	buf := &bytes.Buffer{}
	require.NoError(t, actions.Marshal(buf))

	var decoded ClipActions
	require.NoError(t, decoded.Unmarshal(bytes.NewReader(buf.Bytes())))
	require.Equal(t, actions, decoded)
}

func TestClipActionsReservedBytes(t *testing.T) {
	var actions ClipActions
	err := actions.Unmarshal(bytes.NewReader([]byte{
		0x01, 0x00, // Reserved bytes must be zero.
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
	}))
	require.ErrorIs(t, err, ErrCorrupted)
}

func TestPlaceObject2Minimal(t *testing.T) {
	tag := &PlaceObject2Tag{Move: true, Depth: 5}

	buf := &bytes.Buffer{}
	require.NoError(t, WriteTag(buf, tag))

	expected := []byte{
		0x83, 0x06, // 26<<6 | 3.
		0x01,       // Only the move flag.
		0x05, 0x00, // Depth.
	}
	require.Equal(t, expected, buf.Bytes())

	decoded, err := ReadTag(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Equal(t, tag, decoded)
}

func TestPlaceObject2Full(t *testing.T) {
	tag := &PlaceObject2Tag{
		Depth:        1,
		HasCharacter: true,
		CharacterID:  42,
		HasMatrix:    true,
		Matrix: Matrix{
			HasScale:   true,
			ScaleX:     NewFixed32(2),
			ScaleY:     NewFixed32(0.5),
			TranslateX: 100,
			TranslateY: -200,
		},
		HasColorTransform: true,
		ColorTransform: ColorTransformWithAlpha{
			HasAdd:  true,
			Add:     [4]int16{10, -20, 30, 0},
			HasMult: true,
			Mult:    [4]int16{256, 256, 256, 128},
		},
		HasRatio:     true,
		Ratio:        0x8000,
		HasName:      true,
		Name:         "instance1",
		HasClipDepth: true,
		ClipDepth:    3,
		HasClipActions: true,
		ClipActions: ClipActions{
			AllEventFlags: ClipEventFlags{EnterFrame: true},
			Records: []ClipActionRecord{{
				EventFlags: ClipEventFlags{EnterFrame: true},
				Actions:    []ActionRecord{{ActionCode: 0x07}},
			}},
		},
	}

	buf := &bytes.Buffer{}
	require.NoError(t, WriteTag(buf, tag))

	decoded, err := ReadTag(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Equal(t, tag, decoded)
}
