// Package apng defines the animation model shared by the decode pipeline:
// stream metadata, per-frame control records and composited frames, along
// with the chunk-level readers that produce them.
package apng

import (
	"fmt"
	"image"
	"math"
	"time"
)

// RepeatInfinite is the RepeatCount of an animation that loops forever.
// It is negative so it can never collide with a finite repeat count.
const RepeatInfinite = -1

// InfiniteDuration is the display duration of a frame that never advances,
// such as the single frame of a non-animated PNG.
const InfiniteDuration = time.Duration(math.MaxInt64)

// DefaultDelayDenominator replaces a zero delay denominator.
const DefaultDelayDenominator = 100

// DisposeOp describes how the frame area is prepared for the next frame.
type DisposeOp uint8

const (
	// DisposeNone leaves the canvas as-is.
	DisposeNone DisposeOp = 0
	// DisposeBackground clears the frame's rect to fully transparent.
	DisposeBackground DisposeOp = 1
	// DisposePrevious restores the canvas to its state before the frame was blended.
	DisposePrevious DisposeOp = 2
)

// String returns the name of the dispose op.
func (d DisposeOp) String() string {
	switch d {
	case DisposeNone:
		return "none"
	case DisposeBackground:
		return "background"
	case DisposePrevious:
		return "previous"
	default:
		return fmt.Sprintf("dispose(%d)", uint8(d))
	}
}

// BlendOp describes how decoded frame pixels are combined with the canvas.
type BlendOp uint8

const (
	// BlendSource replaces the rect verbatim.
	BlendSource BlendOp = 0
	// BlendOver alpha-composites the frame over the canvas.
	BlendOver BlendOp = 1
)

// String returns the name of the blend op.
func (b BlendOp) String() string {
	switch b {
	case BlendSource:
		return "source"
	case BlendOver:
		return "over"
	default:
		return fmt.Sprintf("blend(%d)", uint8(b))
	}
}

// Metadata describes a decoded animation. It is immutable once the header
// and control chunks have been read.
type Metadata struct {
	Width    int
	Height   int
	BitDepth int
	Scale    float64

	// FrameCount is the number of frames produced by a decode pass,
	// including a hidden default image when FirstFrameHidden is set.
	FrameCount int

	// RepeatCount is the number of additional passes after the first one,
	// or RepeatInfinite.
	RepeatCount int

	// FirstFrameHidden reports that frame 0 is the default image and is not
	// part of the animation.
	FirstFrameHidden bool

	// Animated is false for a plain PNG without an animation-control chunk.
	Animated bool
}

// FirstVisibleIndex returns the index playback starts and wraps to.
func (m Metadata) FirstVisibleIndex() int {
	if m.FirstFrameHidden {
		return 1
	}
	return 0
}

// Bounds returns the canvas rectangle.
func (m Metadata) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.Width, m.Height)
}

// LoopsForever reports whether playback wraps without limit.
func (m Metadata) LoopsForever() bool {
	return m.RepeatCount == RepeatInfinite
}

// FrameControl is the per-frame control record.
type FrameControl struct {
	Sequence uint32
	Width    int
	Height   int
	X        int
	Y        int
	DelayNum uint16
	DelayDen uint16
	Dispose  DisposeOp
	Blend    BlendOp
}

// Rect returns the frame's rectangle on the canvas.
func (c FrameControl) Rect() image.Rectangle {
	return image.Rect(c.X, c.Y, c.X+c.Width, c.Y+c.Height)
}

// Duration returns DelayNum/DelayDen seconds, with a zero denominator
// treated as DefaultDelayDenominator.
func (c FrameControl) Duration() time.Duration {
	den := int64(c.DelayDen)
	if den == 0 {
		den = DefaultDelayDenominator
	}
	return time.Duration(int64(c.DelayNum)) * time.Second / time.Duration(den)
}

// Frame is a fully composited, canvas-sized frame. The Image is never
// written after the frame is produced, so it can be shared freely.
type Frame struct {
	Index    int
	Image    *image.NRGBA
	Duration time.Duration
	Control  FrameControl
	Width    int
	Height   int
	BitDepth int
	Scale    float64
}

// Infinite reports whether the frame never advances.
func (f *Frame) Infinite() bool {
	return f.Duration == InfiniteDuration
}
