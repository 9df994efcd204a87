// Package screenvideo implements the screen video block codec
// carried as the opaque payload of video frame tags.
package screenvideo

// Packet layout.
//
//   header { // 40 bits.
//     frameType   4 bits, key/inter/disposable inter
//     codecID     4 bits, always 3
//     blockWidth  4 bits, actual width is (value+1)*16
//     imageWidth  12 bits
//     blockHeight 4 bits, actual height is (value+1)*16
//     imageHeight 12 bits
//   }
//   blocks, row-major from the bottom-left of the image, each {
//     dataSize uint16 be, 0 means unchanged since the previous frame
//     data     []byte, zlib, inflates to width*height BGR triples
//   }
//
// Block pixel rows are stored bottom-up: the first triple is the
// leftmost pixel of the block's bottom row. Edge blocks are clipped
// to the remaining image pixels. Every block is compressed on its
// own, there is no shared dictionary between blocks or frames.

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"

	"hsalf/pkg/swf/bits"
)

// FrameType is the coding kind of a frame.
type FrameType uint8

// Frame types.
const (
	KeyFrame             FrameType = 1
	InterFrame           FrameType = 2
	DisposableInterFrame FrameType = 3
)

// CodecID is the screen video codec id. Packets carrying any other
// id are rejected.
const CodecID = 3

const (
	maxImageDim = 1<<12 - 1
	maxBlockDim = 16 * 16
)

// Codec errors.
var (
	// ErrWrongCodec wrong codec id in the packet header.
	ErrWrongCodec = errors.New("not a screen video packet")

	// ErrCorrupted malformed packet.
	ErrCorrupted = errors.New("corrupted screen video packet")

	// ErrPreviousFrame inter-frame coding without a compatible
	// previous frame.
	ErrPreviousFrame = errors.New("missing or incompatible previous frame")
)

// BGR is one pixel in the stored byte order.
type BGR struct {
	B, G, R uint8
}

// Block is one tile of a frame. Pixel rows are stored bottom-up:
// Pixels[0] is the leftmost pixel of the block's bottom row.
type Block struct {
	Width, Height int
	Pixels        []BGR
}

func (b *Block) equal(other *Block) bool {
	if other == nil || b.Width != other.Width || b.Height != other.Height ||
		len(b.Pixels) != len(other.Pixels) {
		return false
	}
	for i := range b.Pixels {
		if b.Pixels[i] != other.Pixels[i] {
			return false
		}
	}
	return true
}

// Frame is a single screen video packet.
//
// A frame is only meaningful relative to the frame immediately
// before it in the same stream: reconstructing the displayed image
// of an inter frame requires drawing it over the previous image.
type Frame struct {
	Type FrameType

	// Block dimensions are multiples of 16, at most 256.
	BlockWidth, BlockHeight int

	// Image dimensions are 12-bit values, at least 1.
	ImageWidth, ImageHeight int

	// Blocks is the block grid, row-major starting at the bottom
	// left of the image. A nil block in an inter frame means
	// unchanged since the previous frame; in a key frame it leaves
	// a hole.
	Blocks []*Block
}

// GridSize returns the number of block columns and rows.
func (f *Frame) GridSize() (cols, rows int) {
	cols = (f.ImageWidth + f.BlockWidth - 1) / f.BlockWidth
	rows = (f.ImageHeight + f.BlockHeight - 1) / f.BlockHeight
	return cols, rows
}

// BlockSize returns the dimensions of block n, clipped to the image
// edge.
func (f *Frame) BlockSize(n int) (width, height int) {
	cols, rows := f.GridSize()
	row := n / cols
	col := n % cols
	width = f.BlockWidth
	if col == cols-1 {
		width = f.ImageWidth - col*f.BlockWidth
	}
	height = f.BlockHeight
	if row == rows-1 {
		height = f.ImageHeight - row*f.BlockHeight
	}
	return width, height
}

// Unmarshal decodes a packet from the raw payload of a video tag.
func (f *Frame) Unmarshal(data []byte) error {
	r := bytes.NewReader(data)
	br := bits.NewReader(r)
	f.Type = FrameType(br.TryReadBits(4))
	codec := br.TryReadBits(4)
	f.BlockWidth = (int(br.TryReadBits(4)) + 1) * 16
	f.ImageWidth = int(br.TryReadBits(12))
	f.BlockHeight = (int(br.TryReadBits(4)) + 1) * 16
	f.ImageHeight = int(br.TryReadBits(12))
	if br.TryError != nil {
		return br.TryError
	}
	if codec != CodecID {
		return fmt.Errorf("%w: codec id %d", ErrWrongCodec, codec)
	}
	if f.ImageWidth == 0 || f.ImageHeight == 0 {
		return fmt.Errorf("%w: zero image dimension", ErrCorrupted)
	}

	cols, rows := f.GridSize()
	f.Blocks = make([]*Block, cols*rows)
	for n := range f.Blocks {
		block, err := f.readBlock(r, n)
		if err != nil {
			return fmt.Errorf("block %d: %w", n, err)
		}
		f.Blocks[n] = block
	}
	return nil
}

func (f *Frame) readBlock(r io.Reader, n int) (*Block, error) {
	var sizeBuf [2]byte
	if _, err := io.ReadFull(r, sizeBuf[:]); err != nil {
		return nil, eofUnexpected(err)
	}
	size := int(binary.BigEndian.Uint16(sizeBuf[:]))
	if size == 0 {
		return nil, nil
	}

	compressed := make([]byte, size)
	if _, err := io.ReadFull(r, compressed); err != nil {
		return nil, eofUnexpected(err)
	}
	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupted, err)
	}
	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupted, err)
	}
	zr.Close()

	width, height := f.BlockSize(n)
	if len(raw) != width*height*3 {
		return nil, fmt.Errorf("%w: %d bytes of pixel data, want %d",
			ErrCorrupted, len(raw), width*height*3)
	}
	block := &Block{
		Width:  width,
		Height: height,
		Pixels: make([]BGR, width*height),
	}
	for i := range block.Pixels {
		block.Pixels[i] = BGR{B: raw[i*3], G: raw[i*3+1], R: raw[i*3+2]}
	}
	return block, nil
}

// Marshal encodes the packet into the raw payload of a video tag.
// Present blocks are deflated independently; absent blocks are
// written as the zero-length marker.
func (f *Frame) Marshal() ([]byte, error) {
	if err := f.checkGeometry(); err != nil {
		return nil, err
	}
	cols, rows := f.GridSize()
	if len(f.Blocks) != cols*rows {
		return nil, fmt.Errorf("frame has %d blocks, grid needs %d",
			len(f.Blocks), cols*rows)
	}

	var out bytes.Buffer
	bw := bits.NewWriter(&out)
	bw.TryWriteBits(uint64(f.Type), 4)
	bw.TryWriteBits(CodecID, 4)
	bw.TryWriteBits(uint64(f.BlockWidth/16-1), 4)
	bw.TryWriteBits(uint64(f.ImageWidth), 12)
	bw.TryWriteBits(uint64(f.BlockHeight/16-1), 4)
	bw.TryWriteBits(uint64(f.ImageHeight), 12)
	if err := bw.Flush(); err != nil {
		return nil, err
	}

	for n, block := range f.Blocks {
		if block == nil {
			out.Write([]byte{0, 0})
			continue
		}
		if err := f.writeBlock(&out, n, block); err != nil {
			return nil, fmt.Errorf("block %d: %w", n, err)
		}
	}
	return out.Bytes(), nil
}

func (f *Frame) writeBlock(out *bytes.Buffer, n int, block *Block) error {
	width, height := f.BlockSize(n)
	if block.Width != width || block.Height != height {
		return fmt.Errorf("block is %dx%d, grid slot is %dx%d",
			block.Width, block.Height, width, height)
	}
	if len(block.Pixels) != width*height {
		return fmt.Errorf("block has %d pixels, want %d",
			len(block.Pixels), width*height)
	}

	raw := make([]byte, 0, len(block.Pixels)*3)
	for _, px := range block.Pixels {
		raw = append(raw, px.B, px.G, px.R)
	}
	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	if _, err := zw.Write(raw); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}
	if compressed.Len() > 1<<16-1 {
		return fmt.Errorf("compressed size %d does not fit in 16 bits",
			compressed.Len())
	}

	var sizeBuf [2]byte
	binary.BigEndian.PutUint16(sizeBuf[:], uint16(compressed.Len()))
	out.Write(sizeBuf[:])
	out.Write(compressed.Bytes())
	return nil
}

func (f *Frame) checkGeometry() error {
	if f.BlockWidth%16 != 0 || f.BlockHeight%16 != 0 ||
		f.BlockWidth < 16 || f.BlockHeight < 16 ||
		f.BlockWidth > maxBlockDim || f.BlockHeight > maxBlockDim {
		return fmt.Errorf("block size %dx%d must be a multiple of 16 up to %d",
			f.BlockWidth, f.BlockHeight, maxBlockDim)
	}
	if f.ImageWidth < 1 || f.ImageHeight < 1 ||
		f.ImageWidth > maxImageDim || f.ImageHeight > maxImageDim {
		return fmt.Errorf("image size %dx%d out of the 1..%d range",
			f.ImageWidth, f.ImageHeight, maxImageDim)
	}
	return nil
}

// A packet cut short mid-block is a truncation even when the source
// reports a bare EOF.
func eofUnexpected(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
