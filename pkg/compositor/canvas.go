package compositor

import "image"

// bytesPerPixel is fixed: canvases always hold 8-bit RGBA.
const bytesPerPixel = 4

// Canvas is an owned RGBA8 buffer addressed by row stride.
type Canvas struct {
	Pix    []byte
	Stride int
	Width  int
	Height int
}

// NewCanvas allocates a transparent width×height canvas.
func NewCanvas(width, height int) *Canvas {
	stride := width * bytesPerPixel
	return &Canvas{
		Pix:    make([]byte, height*stride),
		Stride: stride,
		Width:  width,
		Height: height,
	}
}

// Row returns row y.
func (c *Canvas) Row(y int) []byte {
	return c.Pix[y*c.Stride : y*c.Stride+c.Stride]
}

// span returns the bytes of row y covering columns [x, x+w).
func (c *Canvas) span(x, y, w int) []byte {
	start := y*c.Stride + x*bytesPerPixel
	return c.Pix[start : start+w*bytesPerPixel]
}

// CopyFrom overwrites c with the contents of src, which must be the same size.
func (c *Canvas) CopyFrom(src *Canvas) {
	copy(c.Pix, src.Pix)
}

// Clear zeroes the whole canvas.
func (c *Canvas) Clear() {
	clear(c.Pix)
}

// ClearRect zeroes r, which must lie inside the canvas.
func (c *Canvas) ClearRect(r image.Rectangle) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		clear(c.span(r.Min.X, y, r.Dx()))
	}
}

// RestoreRect copies r from src.
func (c *Canvas) RestoreRect(src *Canvas, r image.Rectangle) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		copy(c.span(r.Min.X, y, r.Dx()), src.span(r.Min.X, y, r.Dx()))
	}
}

// Image returns a copy of the canvas as an NRGBA image.
func (c *Canvas) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, c.Width, c.Height))
	for y := 0; y < c.Height; y++ {
		copy(img.Pix[y*img.Stride:y*img.Stride+c.Width*bytesPerPixel], c.Row(y))
	}
	return img
}
