// Package sheet implements the contact sheet stage, which tiles composited
// frames onto a single image.
package sheet

import (
	"context"
	"fmt"
	"image/color"

	"github.com/user/apngview/pkg/apng"
	"github.com/user/apngview/pkg/pipeline"
	"github.com/user/apngview/pkg/ports"
)

const checkerSize = 8

var (
	checkerLight = color.Gray{Y: 0xff}
	checkerDark  = color.Gray{Y: 0xe0}
	labelColor   = color.Gray{Y: 0x40}
)

// Stage renders a contact sheet.
type Stage struct {
	renderer ports.Renderer
	logger   ports.Logger
}

// NewStage creates a new sheet stage.
func NewStage(renderer ports.Renderer, logger ports.Logger) *Stage {
	return &Stage{
		renderer: renderer,
		logger:   logger.WithComponent("sheet"),
	}
}

// Grid is the computed placement of tiles on a sheet.
type Grid struct {
	Size        pipeline.Dimension
	Columns     int
	Rows        int
	Tile        pipeline.Dimension
	LabelHeight int
	Tiles       []pipeline.Rectangle
}

// ComputeGrid places count tiles of the given source size. Tiles keep the
// source aspect ratio and fill rows left to right.
// This is exposed as a standalone function for testing and reuse.
func ComputeGrid(input pipeline.SheetInput, source pipeline.Dimension, count int) Grid {
	columns := max(input.Columns, 1)
	columns = min(columns, max(count, 1))
	rows := (count + columns - 1) / columns

	tileW := input.TileWidth
	if tileW <= 0 {
		tileW = source.Width
	}
	tileH := source.Height
	if source.Width > 0 {
		tileH = max((tileW*source.Height+source.Width/2)/source.Width, 1)
	}

	labelH := 0
	if input.LabelSize > 0 {
		labelH = int(input.LabelSize*1.6 + 0.5)
	}
	cellH := tileH + labelH

	width := input.Padding*2 + columns*tileW + (columns-1)*input.Gap
	height := input.Padding * 2
	if rows > 0 {
		height += rows*cellH + (rows-1)*input.Gap
	}

	tiles := make([]pipeline.Rectangle, count)
	for i := range tiles {
		col, row := i%columns, i/columns
		tiles[i] = pipeline.Rectangle{
			X:      input.Padding + col*(tileW+input.Gap),
			Y:      input.Padding + row*(cellH+input.Gap),
			Width:  tileW,
			Height: tileH,
		}
	}

	return Grid{
		Size:        pipeline.Dimension{Width: width, Height: height},
		Columns:     columns,
		Rows:        rows,
		Tile:        pipeline.Dimension{Width: tileW, Height: tileH},
		LabelHeight: labelH,
		Tiles:       tiles,
	}
}

// Label returns the caption drawn under a frame.
func Label(f *apng.Frame) string {
	if f.Infinite() {
		return fmt.Sprintf("#%d", f.Index)
	}
	return fmt.Sprintf("#%d %dms", f.Index, f.Duration.Milliseconds())
}

// Execute renders the frames of input.Source onto one canvas. Frames are
// pulled in index order and drawn as they arrive, so only the sheet and one
// frame are held at a time.
func (s *Stage) Execute(ctx context.Context, input pipeline.SheetInput) (pipeline.SheetResult, error) {
	first := pipeline.FirstIndex(input.SkipHidden, input.FirstFrameHidden)
	count := 0
	if input.Source != nil {
		count = input.Source.FrameCount() - first
	}
	if count <= 0 {
		return pipeline.SheetResult{}, fmt.Errorf("no frames to render")
	}

	// Every composited frame is canvas sized, so the first one fixes the grid.
	f, err := input.Source.Frame(ctx, first)
	if err != nil {
		return pipeline.SheetResult{}, fmt.Errorf("read frame %d: %w", first, err)
	}
	b := f.Image.Bounds()
	grid := ComputeGrid(input, pipeline.Dimension{Width: b.Dx(), Height: b.Dy()}, count)

	s.logger.Debug("Rendering %d frames on a %dx%d sheet (%d columns, %d rows)",
		count, grid.Size.Width, grid.Size.Height, grid.Columns, grid.Rows)

	bg := input.Background
	if bg == nil {
		bg = color.White
	}
	canvas := s.renderer.CreateCanvas(grid.Size.Width, grid.Size.Height, bg)

	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return pipeline.SheetResult{}, err
		}
		if i > 0 {
			if f, err = input.Source.Frame(ctx, first+i); err != nil {
				return pipeline.SheetResult{}, fmt.Errorf("read frame %d: %w", first+i, err)
			}
		}
		s.drawTile(canvas, input, grid, grid.Tiles[i], f)
	}

	return pipeline.SheetResult{
		Image: canvas.ToImage(),
		Size:  grid.Size,
		Rows:  grid.Rows,
		Tiles: grid.Tiles,
	}, nil
}

func (s *Stage) drawTile(canvas ports.Canvas, input pipeline.SheetInput, grid Grid, tile pipeline.Rectangle, f *apng.Frame) {
	if input.Checker {
		drawChecker(canvas, tile)
	}

	b := f.Image.Bounds()
	if b.Dx() == tile.Width && b.Dy() == tile.Height {
		canvas.DrawImage(f.Image, tile.X, tile.Y)
	} else {
		canvas.DrawImageScaled(f.Image, tile.X, tile.Y, tile.Width, tile.Height)
	}

	if input.Border != nil {
		canvas.DrawRectStroke(tile.X, tile.Y, tile.Width, tile.Height, input.Border, 1)
	}

	if grid.LabelHeight > 0 {
		canvas.DrawText(Label(f), tile.X+tile.Width/2, tile.Y+tile.Height+grid.LabelHeight/2, ports.TextStyle{
			FontSize: input.LabelSize,
			Color:    labelColor,
			Align:    ports.AlignCenter,
		})
	}
}

func drawChecker(canvas ports.Canvas, r pipeline.Rectangle) {
	for y := 0; y < r.Height; y += checkerSize {
		for x := 0; x < r.Width; x += checkerSize {
			c := checkerLight
			if (x/checkerSize+y/checkerSize)%2 == 1 {
				c = checkerDark
			}
			w := min(checkerSize, r.Width-x)
			h := min(checkerSize, r.Height-y)
			canvas.DrawRect(r.X+x, r.Y+y, w, h, c)
		}
	}
}
