package screenvideo

import "fmt"

// Image is a plain top-down row-major pixel buffer, the working
// format for encoding frames and composing decoded ones.
type Image struct {
	Width, Height int
	Pix           []BGR
}

// NewImage returns a zeroed image.
func NewImage(width, height int) *Image {
	return &Image{
		Width:  width,
		Height: height,
		Pix:    make([]BGR, width*height),
	}
}

// At returns the pixel at x, y.
func (img *Image) At(x, y int) BGR {
	return img.Pix[y*img.Width+x]
}

// Set sets the pixel at x, y.
func (img *Image) Set(x, y int, c BGR) {
	img.Pix[y*img.Width+x] = c
}

// Clone returns a copy of the image.
func (img *Image) Clone() *Image {
	out := NewImage(img.Width, img.Height)
	copy(out.Pix, img.Pix)
	return out
}

// Draw composes the frame's present blocks onto img, flipping each
// block's bottom-up rows into the image's top-down order. Absent
// blocks leave img untouched, so drawing an inter frame over the
// previous displayed image reconstructs the new one.
func (f *Frame) Draw(img *Image) error {
	if img.Width != f.ImageWidth || img.Height != f.ImageHeight {
		return fmt.Errorf("image is %dx%d, frame is %dx%d",
			img.Width, img.Height, f.ImageWidth, f.ImageHeight)
	}
	cols, _ := f.GridSize()
	for n, block := range f.Blocks {
		if block == nil {
			continue
		}
		row := n / cols
		col := n % cols
		startX := col * f.BlockWidth
		// The image y of the block's bottom scanline.
		bottomY := f.ImageHeight - row*f.BlockHeight - 1
		for i, px := range block.Pixels {
			img.Set(startX+i%block.Width, bottomY-i/block.Width, px)
		}
	}
	return nil
}

// NewKeyFrame encodes img as a fully self-contained frame, every
// block present.
func NewKeyFrame(img *Image, blockWidth, blockHeight int) (*Frame, error) {
	f := &Frame{
		Type:        KeyFrame,
		BlockWidth:  blockWidth,
		BlockHeight: blockHeight,
		ImageWidth:  img.Width,
		ImageHeight: img.Height,
	}
	if err := f.checkGeometry(); err != nil {
		return nil, err
	}
	f.fillBlocks(img, nil)
	return f, nil
}

// NewInterFrame encodes img against the explicitly supplied
// previous frame of the same stream. Blocks that equal their
// predecessor pixel for pixel are marked absent; that is the only
// delta strategy, there is no motion search.
func NewInterFrame(img *Image, prev *Frame) (*Frame, error) {
	if prev == nil {
		return nil, ErrPreviousFrame
	}
	if prev.ImageWidth != img.Width || prev.ImageHeight != img.Height {
		return nil, fmt.Errorf("%w: previous frame is %dx%d, image is %dx%d",
			ErrPreviousFrame, prev.ImageWidth, prev.ImageHeight,
			img.Width, img.Height)
	}
	f := &Frame{
		Type:        InterFrame,
		BlockWidth:  prev.BlockWidth,
		BlockHeight: prev.BlockHeight,
		ImageWidth:  img.Width,
		ImageHeight: img.Height,
	}
	if err := f.checkGeometry(); err != nil {
		return nil, err
	}
	f.fillBlocks(img, prev)
	return f, nil
}

func (f *Frame) fillBlocks(img *Image, prev *Frame) {
	cols, rows := f.GridSize()
	f.Blocks = make([]*Block, cols*rows)
	for n := range f.Blocks {
		width, height := f.BlockSize(n)
		block := &Block{
			Width:  width,
			Height: height,
			Pixels: make([]BGR, 0, width*height),
		}
		row := n / cols
		col := n % cols
		startX := col * f.BlockWidth
		bottomY := f.ImageHeight - row*f.BlockHeight - 1
		for y := 0; y < height; y++ {
			imgY := bottomY - y
			for x := 0; x < width; x++ {
				block.Pixels = append(block.Pixels, img.At(startX+x, imgY))
			}
		}
		if prev != nil && len(prev.Blocks) == len(f.Blocks) &&
			block.equal(prev.Blocks[n]) {
			block = nil
		}
		f.Blocks[n] = block
	}
}
