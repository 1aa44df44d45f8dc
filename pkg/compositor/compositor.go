// Package compositor reconstructs full-canvas APNG frames from per-frame
// rects by applying blend and dispose operations in stream order.
package compositor

import (
	"fmt"
	"image"

	"github.com/user/apngview/pkg/apng"
)

// Compositor owns the working canvas and the pre-blend snapshot. Neither
// buffer is ever handed out; emitted frames are copies.
type Compositor struct {
	canvas   *Canvas
	snapshot *Canvas
	frames   int
}

// New creates a compositor for a width×height canvas, initially transparent.
func New(width, height int) *Compositor {
	return &Compositor{
		canvas:   NewCanvas(width, height),
		snapshot: NewCanvas(width, height),
	}
}

// Reset clears both buffers so a new pass can start from frame 0.
func (c *Compositor) Reset() {
	c.canvas.Clear()
	c.snapshot.Clear()
	c.frames = 0
}

// Frames returns the number of frames composed since the last reset.
func (c *Compositor) Frames() int {
	return c.frames
}

// Canvas returns a copy of the working canvas.
func (c *Compositor) Canvas() *image.NRGBA {
	return c.canvas.Image()
}

// Compose blends src, the decoded pixels of the frame described by ctrl,
// onto the canvas and returns a copy of the result. The frame's dispose op
// is then applied so the canvas is ready for the next frame. firstVisible
// marks the first frame shown, which always replaces the canvas.
func (c *Compositor) Compose(ctrl apng.FrameControl, src *image.NRGBA, firstVisible bool) (*image.NRGBA, error) {
	rect := ctrl.Rect()
	if rect.Empty() || !rect.In(image.Rect(0, 0, c.canvas.Width, c.canvas.Height)) {
		return nil, apng.InternalDecode("compose", fmt.Errorf("frame rect %v outside %dx%d canvas", rect, c.canvas.Width, c.canvas.Height))
	}
	if sb := src.Bounds(); sb.Dx() != ctrl.Width || sb.Dy() != ctrl.Height {
		return nil, apng.InternalDecode("compose", fmt.Errorf("frame pixels %v do not match rect %v", sb, rect))
	}

	blend, dispose := ctrl.Blend, ctrl.Dispose
	if firstVisible {
		blend = apng.BlendSource
		if dispose == apng.DisposePrevious {
			dispose = apng.DisposeBackground
		}
	}

	// Only the frame rect is touched by the blend, so only it needs saving.
	if dispose == apng.DisposePrevious {
		c.snapshot.RestoreRect(c.canvas, rect)
	}

	switch blend {
	case apng.BlendSource:
		c.copyRect(src, rect)
	default:
		c.blendRect(src, rect)
	}

	out := c.canvas.Image()
	c.frames++

	switch dispose {
	case apng.DisposeBackground:
		c.canvas.ClearRect(rect)
	case apng.DisposePrevious:
		c.canvas.RestoreRect(c.snapshot, rect)
	}
	return out, nil
}

func (c *Compositor) copyRect(src *image.NRGBA, rect image.Rectangle) {
	w := rect.Dx()
	for y := 0; y < rect.Dy(); y++ {
		so := src.PixOffset(src.Rect.Min.X, src.Rect.Min.Y+y)
		copy(c.canvas.span(rect.Min.X, rect.Min.Y+y, w), src.Pix[so:so+w*bytesPerPixel])
	}
}

func (c *Compositor) blendRect(src *image.NRGBA, rect image.Rectangle) {
	w := rect.Dx()
	for y := 0; y < rect.Dy(); y++ {
		so := src.PixOffset(src.Rect.Min.X, src.Rect.Min.Y+y)
		srow := src.Pix[so : so+w*bytesPerPixel]
		drow := c.canvas.span(rect.Min.X, rect.Min.Y+y, w)
		for i := 0; i < len(srow); i += bytesPerPixel {
			Over(drow[i:i+bytesPerPixel:i+bytesPerPixel], srow[i:i+bytesPerPixel:i+bytesPerPixel])
		}
	}
}

// Over composites the non-premultiplied RGBA pixel src over dst in place.
func Over(dst, src []byte) {
	srcA := uint32(src[3])
	switch srcA {
	case 0xff:
		copy(dst, src)
		return
	case 0:
		return
	}

	dstA := uint32(dst[3])
	u := srcA * 0xff
	v := (0xff - srcA) * dstA
	total := u + v
	if total == 0 {
		copy(dst, src)
		return
	}
	for ch := 0; ch < 3; ch++ {
		dst[ch] = uint8((uint32(src[ch])*u + uint32(dst[ch])*v) / total)
	}
	dst[3] = uint8(total / 0xff)
}
