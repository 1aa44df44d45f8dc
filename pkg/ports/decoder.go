package ports

import (
	"image"
	"io"
)

// PNG color types, as per the PNG spec.
const (
	ColorGrayscale      = 0
	ColorTrueColor      = 2
	ColorPaletted       = 3
	ColorGrayscaleAlpha = 4
	ColorTrueColorAlpha = 6
)

// ImageHeader holds the fields of an IHDR chunk.
type ImageHeader struct {
	Width      int
	Height     int
	BitDepth   int
	ColorType  int
	Interlaced bool
}

// ColorInfo is everything a frame decoder needs to turn scanlines into
// 8-bit RGBA: the header plus the optional PLTE and tRNS payloads.
type ColorInfo struct {
	Header       ImageHeader
	Palette      []byte
	Transparency []byte
}

// FrameDecoder abstracts the baseline PNG scanline decoder.
type FrameDecoder interface {
	// DecodeHeader parses an IHDR payload.
	DecodeHeader(ihdr []byte) (ImageHeader, error)

	// DecodeFrame inflates and unfilters one frame's zlib stream into dst.
	// dst bounds define the frame's width and height; its pixels are
	// non-premultiplied 8-bit RGBA.
	DecodeFrame(info ColorInfo, data io.Reader, dst *image.NRGBA) error
}
