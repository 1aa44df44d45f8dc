package pngdecoder

import (
	"errors"
	"fmt"

	"github.com/user/apngview/pkg/apng"
	"github.com/user/apngview/pkg/ports"
)

// converter turns raw samples of one color type and bit depth into RGBA8.
type converter struct {
	colorType int
	depth     int
	channels  int

	// palette holds RGBA entries for paletted images.
	palette [][4]uint8

	// transparent is the tRNS key for grayscale and truecolor images.
	useTransparent bool
	transparent    [3]uint16
}

func newConverter(info ports.ColorInfo) (*converter, error) {
	n, err := channels(info.Header)
	if err != nil {
		return nil, apng.StructureFailure("prepare decoder", err)
	}
	c := &converter{
		colorType: info.Header.ColorType,
		depth:     info.Header.BitDepth,
		channels:  n,
	}

	switch c.colorType {
	case ports.ColorPaletted:
		if len(info.Palette) == 0 || len(info.Palette)%3 != 0 || len(info.Palette)/3 > 256 {
			return nil, apng.InternalDecode("read PLTE", errors.New("bad palette"))
		}
		if len(info.Transparency) > len(info.Palette)/3 {
			return nil, apng.InternalDecode("read tRNS", errors.New("bad transparency length"))
		}
		c.palette = make([][4]uint8, len(info.Palette)/3)
		for i := range c.palette {
			c.palette[i] = [4]uint8{info.Palette[3*i], info.Palette[3*i+1], info.Palette[3*i+2], 0xff}
			if i < len(info.Transparency) {
				c.palette[i][3] = info.Transparency[i]
			}
		}
	case ports.ColorGrayscale:
		if len(info.Transparency) > 0 {
			if len(info.Transparency) != 2 {
				return nil, apng.InternalDecode("read tRNS", errors.New("bad transparency length"))
			}
			c.useTransparent = true
			c.transparent[0] = uint16(info.Transparency[0])<<8 | uint16(info.Transparency[1])
		}
	case ports.ColorTrueColor:
		if len(info.Transparency) > 0 {
			if len(info.Transparency) != 6 {
				return nil, apng.InternalDecode("read tRNS", errors.New("bad transparency length"))
			}
			c.useTransparent = true
			for i := range c.transparent {
				c.transparent[i] = uint16(info.Transparency[2*i])<<8 | uint16(info.Transparency[2*i+1])
			}
		}
	}
	return c, nil
}

// sample returns the raw value of sample i of a row.
func (c *converter) sample(row []byte, i int) uint16 {
	switch c.depth {
	case 16:
		return uint16(row[2*i])<<8 | uint16(row[2*i+1])
	case 8:
		return uint16(row[i])
	default:
		bit := i * c.depth
		shift := 8 - c.depth - bit%8
		mask := byte(1)<<c.depth - 1
		return uint16(row[bit/8] >> shift & mask)
	}
}

// scale maps a raw sample to 8 bits.
func (c *converter) scale(v uint16) uint8 {
	switch c.depth {
	case 16:
		return uint8(v >> 8)
	case 8:
		return uint8(v)
	default:
		return uint8(uint32(v) * 0xff / (1<<c.depth - 1))
	}
}

// pixel writes the RGBA8 value of pixel x of row into px.
func (c *converter) pixel(row []byte, x int, px []byte) error {
	base := x * c.channels
	switch c.colorType {
	case ports.ColorGrayscale:
		v := c.sample(row, base)
		g := c.scale(v)
		px[0], px[1], px[2], px[3] = g, g, g, 0xff
		if c.useTransparent && v == c.transparent[0] {
			px[3] = 0
		}
	case ports.ColorTrueColor:
		r, g, b := c.sample(row, base), c.sample(row, base+1), c.sample(row, base+2)
		px[0], px[1], px[2], px[3] = c.scale(r), c.scale(g), c.scale(b), 0xff
		if c.useTransparent && r == c.transparent[0] && g == c.transparent[1] && b == c.transparent[2] {
			px[3] = 0
		}
	case ports.ColorPaletted:
		idx := int(c.sample(row, base))
		if idx >= len(c.palette) {
			return apng.InternalDecode("decode rows", fmt.Errorf("palette index %d out of range", idx))
		}
		p := c.palette[idx]
		px[0], px[1], px[2], px[3] = p[0], p[1], p[2], p[3]
	case ports.ColorGrayscaleAlpha:
		g := c.scale(c.sample(row, base))
		px[0], px[1], px[2], px[3] = g, g, g, c.scale(c.sample(row, base+1))
	case ports.ColorTrueColorAlpha:
		px[0] = c.scale(c.sample(row, base))
		px[1] = c.scale(c.sample(row, base+1))
		px[2] = c.scale(c.sample(row, base+2))
		px[3] = c.scale(c.sample(row, base+3))
	}
	return nil
}
