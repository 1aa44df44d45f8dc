package apng

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/user/apngview/pkg/ports"
)

// DefaultMaxDimension bounds declared canvas width and height.
const DefaultMaxDimension = 16384

// minFrameBytes is the smallest encoding of a frame after the default
// image: a complete fcTL chunk. Its data chunk only adds to this.
const minFrameBytes = 12 + 26

// HeaderOptions controls header validation.
type HeaderOptions struct {
	// MaxDimension is the largest accepted canvas width or height.
	// Zero means DefaultMaxDimension.
	MaxDimension int

	// Scale is copied into Metadata.Scale. Zero means 1.
	Scale float64
}

// Header is the result of reading everything up to the first image data.
type Header struct {
	Metadata Metadata
	Color    ports.ColorInfo

	// DefaultControl is the fcTL preceding IDAT, or nil when the default
	// image is hidden or the stream is not animated.
	DefaultControl *FrameControl

	// NextSequence is the sequence number expected of the next fcTL/fdAT.
	NextSequence uint32
}

// ReadHeader reads IHDR through dec, then the chunks before the first IDAT,
// collecting acTL, an optional fcTL, PLTE and tRNS. The reader is left on
// the first IDAT chunk.
func ReadHeader(r *ChunkReader, dec ports.FrameDecoder, opts HeaderOptions) (*Header, error) {
	maxDim := opts.MaxDimension
	if maxDim <= 0 {
		maxDim = DefaultMaxDimension
	}
	scale := opts.Scale
	if scale <= 0 {
		scale = 1
	}

	c, err := r.Next()
	if err != nil {
		var de *DecodeError
		switch {
		case err == io.EOF:
			err = io.ErrUnexpectedEOF
		case errors.As(err, &de):
			// A truncated header is a format error, not a decode error.
			err = de.Err
		}
		return nil, InvalidFormat("read IHDR", err)
	}
	if c.Type != ChunkIHDR {
		return nil, InvalidFormat("read IHDR", fmt.Errorf("first chunk is %q", c.Type))
	}
	if len(c.Data) != 13 {
		return nil, InvalidFormat("read IHDR", errors.New("bad IHDR length"))
	}
	w := binary.BigEndian.Uint32(c.Data[0:4])
	h := binary.BigEndian.Uint32(c.Data[4:8])
	if w == 0 || h == 0 {
		return nil, InvalidFormat("read IHDR", errors.New("non-positive dimension"))
	}
	if w > uint32(maxDim) || h > uint32(maxDim) {
		return nil, SizeExceeded("read IHDR", fmt.Errorf("%dx%d exceeds %d", w, h, maxDim))
	}

	ihdr, err := dec.DecodeHeader(c.Data)
	if err != nil {
		if Kind(err) != nil {
			return nil, err
		}
		return nil, StructureFailure("decode IHDR", err)
	}

	hdr := &Header{Color: ports.ColorInfo{Header: ihdr}}
	var (
		seenACTL   bool
		numFrames  uint32
		playCount  uint32
		defaultCtl *FrameControl
	)

	for {
		c, err := r.Peek()
		if err == io.EOF {
			return nil, InternalDecode("read header", errors.New("missing IDAT"))
		}
		if err != nil {
			return nil, err
		}
		if c.Type == ChunkIDAT {
			break
		}
		r.Next()

		switch c.Type {
		case ChunkACTL:
			if seenACTL {
				return nil, InternalDecode("read acTL", errors.New("duplicate acTL"))
			}
			if len(c.Data) != 8 {
				return nil, InternalDecode("read acTL", errors.New("bad acTL length"))
			}
			seenACTL = true
			numFrames = binary.BigEndian.Uint32(c.Data[0:4])
			playCount = binary.BigEndian.Uint32(c.Data[4:8])
		case ChunkFCTL:
			if defaultCtl != nil {
				return nil, InternalDecode("read fcTL", errors.New("duplicate fcTL before IDAT"))
			}
			ctl, err := ParseFrameControl(c.Data, int(w), int(h), &hdr.NextSequence)
			if err != nil {
				return nil, err
			}
			if ctl.X != 0 || ctl.Y != 0 || ctl.Width != int(w) || ctl.Height != int(h) {
				return nil, InternalDecode("read fcTL", errors.New("default image frame must cover the canvas"))
			}
			defaultCtl = &ctl
		case ChunkPLTE:
			hdr.Color.Palette = c.Data
		case ChunkTRNS:
			hdr.Color.Transparency = c.Data
		case ChunkIEND:
			return nil, InternalDecode("read header", errors.New("IEND before IDAT"))
		}
	}

	meta := Metadata{
		Width:    int(w),
		Height:   int(h),
		BitDepth: ihdr.BitDepth,
		Scale:    scale,
	}
	if !seenACTL || numFrames == 0 {
		// A plain PNG: one frame that never advances.
		meta.FrameCount = 1
		hdr.DefaultControl = nil
	} else {
		// Every frame but the default image needs its own fcTL, so the
		// declared count must fit in what is left of the input.
		following := uint64(numFrames)
		if defaultCtl != nil {
			following--
		}
		if following*minFrameBytes > uint64(r.Remaining()) {
			return nil, InternalDecode("read acTL",
				fmt.Errorf("%d frames declared but only %d bytes remain", numFrames, r.Remaining()))
		}

		meta.Animated = true
		meta.FirstFrameHidden = defaultCtl == nil
		meta.FrameCount = int(numFrames)
		if meta.FirstFrameHidden {
			meta.FrameCount++
		}
		meta.RepeatCount = RepeatCountFromPlays(playCount)
		hdr.DefaultControl = defaultCtl
	}
	hdr.Metadata = meta
	return hdr, nil
}

// RepeatCountFromPlays maps the acTL play count to a repeat count: zero
// plays loop forever, n plays repeat n-1 times after the first pass.
func RepeatCountFromPlays(plays uint32) int {
	if plays == 0 {
		return RepeatInfinite
	}
	return int(plays) - 1
}

// ParseFrameControl parses and validates an fcTL payload against the canvas.
// When seq is non-nil the chunk's sequence number must equal *seq, which is
// then advanced.
func ParseFrameControl(data []byte, canvasW, canvasH int, seq *uint32) (FrameControl, error) {
	if len(data) != 26 {
		return FrameControl{}, InternalDecode("read fcTL", errors.New("bad fcTL length"))
	}
	ctl := FrameControl{Sequence: binary.BigEndian.Uint32(data[0:4])}
	if err := checkSequence(ctl.Sequence, seq); err != nil {
		return FrameControl{}, err
	}

	fw := binary.BigEndian.Uint32(data[4:8])
	fh := binary.BigEndian.Uint32(data[8:12])
	fx := binary.BigEndian.Uint32(data[12:16])
	fy := binary.BigEndian.Uint32(data[16:20])
	if fw == 0 || fh == 0 {
		return FrameControl{}, InternalDecode("read fcTL", errors.New("empty frame rect"))
	}
	// uint64 sums cannot overflow for 32-bit operands.
	if uint64(fx)+uint64(fw) > uint64(canvasW) || uint64(fy)+uint64(fh) > uint64(canvasH) {
		return FrameControl{}, InternalDecode("read fcTL",
			fmt.Errorf("frame rect %dx%d+%d+%d outside %dx%d canvas", fw, fh, fx, fy, canvasW, canvasH))
	}
	ctl.Width, ctl.Height = int(fw), int(fh)
	ctl.X, ctl.Y = int(fx), int(fy)
	ctl.DelayNum = binary.BigEndian.Uint16(data[20:22])
	ctl.DelayDen = binary.BigEndian.Uint16(data[22:24])
	if ctl.DelayDen == 0 {
		ctl.DelayDen = DefaultDelayDenominator
	}

	switch DisposeOp(data[24]) {
	case DisposeNone, DisposeBackground, DisposePrevious:
		ctl.Dispose = DisposeOp(data[24])
	default:
		return FrameControl{}, InternalDecode("read fcTL", fmt.Errorf("bad dispose op %d", data[24]))
	}
	switch BlendOp(data[25]) {
	case BlendSource, BlendOver:
		ctl.Blend = BlendOp(data[25])
	default:
		return FrameControl{}, InternalDecode("read fcTL", fmt.Errorf("bad blend op %d", data[25]))
	}
	return ctl, nil
}

// CanvasControl returns a control record covering the whole canvas. It
// stands in for the missing fcTL of a hidden default image or a plain PNG.
func CanvasControl(m Metadata) FrameControl {
	return FrameControl{
		Width:    m.Width,
		Height:   m.Height,
		DelayDen: DefaultDelayDenominator,
		Dispose:  DisposeBackground,
		Blend:    BlendSource,
	}
}
