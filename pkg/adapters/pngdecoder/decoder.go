// Package pngdecoder provides the baseline PNG scanline decoder: zlib
// inflate, scanline unfiltering and conversion of every PNG color type and
// bit depth to 8-bit non-premultiplied RGBA.
package pngdecoder

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/user/apngview/pkg/apng"
	"github.com/user/apngview/pkg/ports"
)

// Filter type, as per the PNG spec.
const (
	ftNone    = 0
	ftSub     = 1
	ftUp      = 2
	ftAverage = 3
	ftPaeth   = 4
)

// Interlace method, as per the PNG spec.
const (
	itNone  = 0
	itAdam7 = 1
)

// interlaceScan describes one Adam7 reduced image.
type interlaceScan struct {
	xFactor, yFactor, xOffset, yOffset int
}

var adam7 = [7]interlaceScan{
	{8, 8, 0, 0},
	{8, 8, 4, 0},
	{4, 8, 0, 4},
	{4, 4, 2, 0},
	{2, 4, 0, 2},
	{2, 2, 1, 0},
	{1, 2, 0, 1},
}

// Decoder implements ports.FrameDecoder. It holds no per-stream state and
// is safe for concurrent use.
type Decoder struct{}

// New creates a new Decoder.
func New() *Decoder {
	return &Decoder{}
}

// DecodeHeader parses an IHDR payload and checks that the color type and
// bit depth combination can be decoded.
func (d *Decoder) DecodeHeader(ihdr []byte) (ports.ImageHeader, error) {
	if len(ihdr) != 13 {
		return ports.ImageHeader{}, apng.InvalidFormat("parse IHDR", errors.New("bad IHDR length"))
	}
	if ihdr[10] != 0 {
		return ports.ImageHeader{}, apng.StructureFailure("parse IHDR", errors.New("unsupported compression method"))
	}
	if ihdr[11] != 0 {
		return ports.ImageHeader{}, apng.StructureFailure("parse IHDR", errors.New("unsupported filter method"))
	}
	if ihdr[12] != itNone && ihdr[12] != itAdam7 {
		return ports.ImageHeader{}, apng.StructureFailure("parse IHDR", errors.New("unsupported interlace method"))
	}

	w := int64(binary.BigEndian.Uint32(ihdr[0:4]))
	h := int64(binary.BigEndian.Uint32(ihdr[4:8]))
	if w <= 0 || h <= 0 || w > 0x7fffffff || h > 0x7fffffff {
		return ports.ImageHeader{}, apng.InvalidFormat("parse IHDR", errors.New("non-positive dimension"))
	}

	hdr := ports.ImageHeader{
		Width:      int(w),
		Height:     int(h),
		BitDepth:   int(ihdr[8]),
		ColorType:  int(ihdr[9]),
		Interlaced: ihdr[12] == itAdam7,
	}
	if _, err := channels(hdr); err != nil {
		return ports.ImageHeader{}, apng.StructureFailure("parse IHDR", err)
	}
	return hdr, nil
}

// channels returns the number of samples per pixel, rejecting invalid
// color type and bit depth combinations.
func channels(hdr ports.ImageHeader) (int, error) {
	depth := hdr.BitDepth
	switch hdr.ColorType {
	case ports.ColorGrayscale:
		if depth == 1 || depth == 2 || depth == 4 || depth == 8 || depth == 16 {
			return 1, nil
		}
	case ports.ColorPaletted:
		if depth == 1 || depth == 2 || depth == 4 || depth == 8 {
			return 1, nil
		}
	case ports.ColorTrueColor:
		if depth == 8 || depth == 16 {
			return 3, nil
		}
	case ports.ColorGrayscaleAlpha:
		if depth == 8 || depth == 16 {
			return 2, nil
		}
	case ports.ColorTrueColorAlpha:
		if depth == 8 || depth == 16 {
			return 4, nil
		}
	}
	return 0, fmt.Errorf("bit depth %d, color type %d", depth, hdr.ColorType)
}

// DecodeFrame inflates data and writes dst.Bounds().Dx() × Dy() pixels.
func (d *Decoder) DecodeFrame(info ports.ColorInfo, data io.Reader, dst *image.NRGBA) error {
	conv, err := newConverter(info)
	if err != nil {
		return err
	}

	zr, err := zlib.NewReader(data)
	if err != nil {
		return apng.InternalDecode("inflate", err)
	}
	defer zr.Close()

	b := dst.Bounds()
	w, h := b.Dx(), b.Dy()
	if !info.Header.Interlaced {
		return decodePass(zr, conv, dst, interlaceScan{1, 1, 0, 0}, w, h)
	}
	for _, s := range adam7 {
		pw := (w - s.xOffset + s.xFactor - 1) / s.xFactor
		ph := (h - s.yOffset + s.yFactor - 1) / s.yFactor
		if pw <= 0 || ph <= 0 {
			continue
		}
		if err := decodePass(zr, conv, dst, s, pw, ph); err != nil {
			return err
		}
	}
	return nil
}

// decodePass reads ph filtered rows of pw pixels and scatters them into
// dst according to s.
func decodePass(r io.Reader, conv *converter, dst *image.NRGBA, s interlaceScan, pw, ph int) error {
	bitsPP := conv.channels * conv.depth
	bytesPP := (bitsPP + 7) / 8
	// The +1 is for the per-row filter type, which is at cr[0].
	rowSize := 1 + (int64(bitsPP)*int64(pw)+7)/8
	if rowSize != int64(int(rowSize)) {
		return apng.StructureFailure("decode rows", errors.New("dimension overflow"))
	}
	cr := make([]byte, rowSize)
	pr := make([]byte, rowSize)

	origin := dst.Bounds().Min
	for y := 0; y < ph; y++ {
		if _, err := io.ReadFull(r, cr); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return apng.InternalDecode("decode rows", errors.New("not enough pixel data"))
			}
			return apng.InternalDecode("decode rows", err)
		}
		cdat, pdat := cr[1:], pr[1:]
		if err := unfilter(cr[0], cdat, pdat, bytesPP); err != nil {
			return err
		}

		dy := origin.Y + y*s.yFactor + s.yOffset
		for x := 0; x < pw; x++ {
			dx := origin.X + x*s.xFactor + s.xOffset
			off := dst.PixOffset(dx, dy)
			if err := conv.pixel(cdat, x, dst.Pix[off:off+4:off+4]); err != nil {
				return err
			}
		}
		pr, cr = cr, pr
	}
	return nil
}

func unfilter(ft byte, cdat, pdat []byte, bpp int) error {
	switch ft {
	case ftNone:
		// No-op.
	case ftSub:
		for i := bpp; i < len(cdat); i++ {
			cdat[i] += cdat[i-bpp]
		}
	case ftUp:
		for i, p := range pdat {
			cdat[i] += p
		}
	case ftAverage:
		for i := 0; i < bpp && i < len(cdat); i++ {
			cdat[i] += pdat[i] / 2
		}
		for i := bpp; i < len(cdat); i++ {
			cdat[i] += uint8((int(cdat[i-bpp]) + int(pdat[i])) / 2)
		}
	case ftPaeth:
		for i := range cdat {
			var a, c int
			if i >= bpp {
				a = int(cdat[i-bpp])
				c = int(pdat[i-bpp])
			}
			cdat[i] += paeth(a, int(pdat[i]), c)
		}
	default:
		return apng.InternalDecode("unfilter", fmt.Errorf("bad filter type %d", ft))
	}
	return nil
}

// paeth implements the Paeth predictor.
func paeth(a, b, c int) uint8 {
	p := a + b - c
	pa, pb, pc := abs(p-a), abs(p-b), abs(p-c)
	if pa <= pb && pa <= pc {
		return uint8(a)
	}
	if pb <= pc {
		return uint8(b)
	}
	return uint8(c)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Ensure Decoder implements ports.FrameDecoder
var _ ports.FrameDecoder = (*Decoder)(nil)
