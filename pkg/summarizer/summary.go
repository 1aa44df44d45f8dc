// Package summarizer provides summary generation for decoded animations.
package summarizer

import (
	"time"

	"github.com/user/apngview/pkg/apng"
)

// Summary contains everything the info command reports about a file.
type Summary struct {
	// Metadata
	GeneratedAt time.Time

	// Source file
	Source SourceInfo

	// Canvas and animation properties
	Image ImageInfo

	// Per-frame control records, in decode order
	Frames []FrameInfo

	// How the file was decoded
	Decode DecodeInfo
}

// SourceInfo describes the input file.
type SourceInfo struct {
	Path     string
	FileSize int64
}

// ImageInfo contains canvas and animation properties.
type ImageInfo struct {
	Width            int
	Height           int
	BitDepth         int
	Animated         bool
	FrameCount       int
	FirstFrameHidden bool

	// RepeatCount is apng.RepeatInfinite for endless playback.
	RepeatCount int

	// TotalDurationMs is the length of one pass over the visible frames.
	TotalDurationMs int
}

// FrameInfo contains one frame's control record.
type FrameInfo struct {
	Index      int
	X, Y       int
	Width      int
	Height     int
	DurationMs int // -1 for a frame that never advances
	Dispose    string
	Blend      string
	Hidden     bool
}

// DecodeInfo contains decode mode and timing.
type DecodeInfo struct {
	Streaming  bool
	WindowSize int
	PeakFrames int // most frames the stream held at once
	Restarts   int
	ElapsedMs  int
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithSource sets source file information.
func (b *Builder) WithSource(path string, size int64) *Builder {
	b.summary.Source = SourceInfo{
		Path:     path,
		FileSize: size,
	}
	return b
}

// WithMetadata sets image information from decoded metadata.
func (b *Builder) WithMetadata(meta apng.Metadata) *Builder {
	b.summary.Image = ImageInfo{
		Width:            meta.Width,
		Height:           meta.Height,
		BitDepth:         meta.BitDepth,
		Animated:         meta.Animated,
		FrameCount:       meta.FrameCount,
		FirstFrameHidden: meta.FirstFrameHidden,
		RepeatCount:      meta.RepeatCount,
	}
	return b
}

// WithFrames records each frame's control record and sums the visible
// durations.
func (b *Builder) WithFrames(frames []*apng.Frame) *Builder {
	b.summary.Frames = make([]FrameInfo, 0, len(frames))
	b.summary.Image.TotalDurationMs = 0
	for _, f := range frames {
		b.AddFrame(f)
	}
	return b
}

// AddFrame appends one frame's control record, so a streamed image can be
// summarized without holding every frame. The hidden default image is
// marked and left out of the total duration.
func (b *Builder) AddFrame(f *apng.Frame) *Builder {
	hidden := f.Index == 0 && b.summary.Image.FirstFrameHidden
	durationMs := -1
	if !f.Infinite() {
		durationMs = int(f.Duration.Milliseconds())
		if !hidden {
			b.summary.Image.TotalDurationMs += durationMs
		}
	}
	c := f.Control
	b.summary.Frames = append(b.summary.Frames, FrameInfo{
		Index:      f.Index,
		X:          c.X,
		Y:          c.Y,
		Width:      c.Width,
		Height:     c.Height,
		DurationMs: durationMs,
		Dispose:    c.Dispose.String(),
		Blend:      c.Blend.String(),
		Hidden:     hidden,
	})
	return b
}

// WithDecode sets decode information.
func (b *Builder) WithDecode(decode DecodeInfo) *Builder {
	b.summary.Decode = decode
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}
