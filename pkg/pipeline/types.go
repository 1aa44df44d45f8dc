package pipeline

import (
	"context"
	"fmt"
	"image"
	"image/color"

	"github.com/user/apngview/pkg/apng"
	"github.com/user/apngview/pkg/ports"
)

// =============================================================================
// Common Types
// =============================================================================

// Dimension represents width and height.
type Dimension struct {
	Width  int
	Height int
}

// Rectangle represents a rectangular area.
type Rectangle struct {
	X      int
	Y      int
	Width  int
	Height int
}

// ScaleDimension scales d by factor, keeping each side at least one pixel.
// A non-positive factor leaves d unchanged.
func ScaleDimension(d Dimension, factor float64) Dimension {
	if factor <= 0 || factor == 1 {
		return d
	}
	w := int(float64(d.Width)*factor + 0.5)
	h := int(float64(d.Height)*factor + 0.5)
	return Dimension{Width: max(w, 1), Height: max(h, 1)}
}

// FrameSource serves composited frames by index. A streamed image blocks
// until the frame is decoded and keeps only a window of frames, so stages
// pull frames in order and drop each one when done with it.
type FrameSource interface {
	Frame(ctx context.Context, index int) (*apng.Frame, error)
	FrameCount() int
}

// FrameSlice is a FrameSource over frames already in memory.
type FrameSlice []*apng.Frame

// Frame returns the frame at index.
func (s FrameSlice) Frame(_ context.Context, index int) (*apng.Frame, error) {
	if index < 0 || index >= len(s) {
		return nil, fmt.Errorf("frame %d out of range [0, %d)", index, len(s))
	}
	return s[index], nil
}

// FrameCount returns len(s).
func (s FrameSlice) FrameCount() int {
	return len(s)
}

// FirstIndex returns the first index a stage should read: 1 when the hidden
// default image is skipped, otherwise 0.
func FirstIndex(skipHidden, firstFrameHidden bool) int {
	if skipHidden && firstFrameHidden {
		return 1
	}
	return 0
}

// =============================================================================
// Export Stage Types
// =============================================================================

// ExportInput contains the frames to write and how to write them.
type ExportInput struct {
	Source    FrameSource
	OutputDir string
	Format    ports.ImageFormat
	Quality   int     // JPEG quality (default: 90)
	Scale     float64 // Output scale factor (default: 1)

	// SkipHidden drops the default image when it is not part of the
	// animation.
	SkipHidden       bool
	FirstFrameHidden bool
}

// DefaultExportInput returns ExportInput with default values.
func DefaultExportInput() ExportInput {
	return ExportInput{
		Format:     ports.FormatPNG,
		Quality:    90,
		Scale:      1,
		SkipHidden: true,
	}
}

// ExportedFrame describes one written file.
type ExportedFrame struct {
	Index      int
	Path       string
	DurationMs int
	Size       Dimension
}

// ExportResult lists written files in frame order.
type ExportResult struct {
	Frames []ExportedFrame
}

// =============================================================================
// Sheet Stage Types
// =============================================================================

// SheetInput contains parameters for contact sheet rendering.
type SheetInput struct {
	Source     FrameSource
	Columns    int         // Tiles per row (default: 4)
	TileWidth  int         // Tile width, height follows aspect ratio (default: frame width)
	Gap        int         // Gap between tiles (default: 8)
	Padding    int         // Padding around the sheet (default: 16)
	LabelSize  float64     // Label font size, 0 disables labels (default: 12)
	Background color.Color // Sheet background (default: white)
	Border     color.Color // Tile outline, nil disables it

	// Checker draws a checkerboard behind each tile so transparency is
	// visible.
	Checker bool

	// SkipHidden leaves the default image off the sheet when it is not
	// part of the animation.
	SkipHidden       bool
	FirstFrameHidden bool
}

// DefaultSheetInput returns SheetInput with default values.
func DefaultSheetInput() SheetInput {
	return SheetInput{
		Columns:    4,
		Gap:        8,
		Padding:    16,
		LabelSize:  12,
		Background: color.White,
		Border:     color.Gray{Y: 0xc0},
		Checker:    true,
		SkipHidden: true,
	}
}

// SheetResult contains the rendered sheet and the tile placement.
type SheetResult struct {
	Image image.Image
	Size  Dimension
	Rows  int
	Tiles []Rectangle
}
