package sheet

import (
	"context"
	"errors"
	"image"
	"image/color"
	"reflect"
	"testing"
	"time"

	"github.com/user/apngview/pkg/adapters/ggrenderer"
	"github.com/user/apngview/pkg/apng"
	"github.com/user/apngview/pkg/mocks"
	"github.com/user/apngview/pkg/pipeline"
)

func solidFrames(n, w, h int, c color.NRGBA) []*apng.Frame {
	frames := make([]*apng.Frame, n)
	for i := range frames {
		img := image.NewNRGBA(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				img.SetNRGBA(x, y, c)
			}
		}
		frames[i] = &apng.Frame{Index: i, Image: img, Duration: 100 * time.Millisecond}
	}
	return frames
}

func TestComputeGrid(t *testing.T) {
	input := pipeline.SheetInput{Columns: 3, Gap: 4, Padding: 10, LabelSize: 10}
	grid := ComputeGrid(input, pipeline.Dimension{Width: 40, Height: 20}, 7)

	if grid.Columns != 3 || grid.Rows != 3 {
		t.Errorf("expected 3x3 grid, got %dx%d", grid.Columns, grid.Rows)
	}
	if grid.Tile != (pipeline.Dimension{Width: 40, Height: 20}) {
		t.Errorf("unexpected tile size %+v", grid.Tile)
	}
	if grid.LabelHeight != 16 {
		t.Errorf("expected label height 16, got %d", grid.LabelHeight)
	}
	// 10 + 3*40 + 2*4 + 10
	if grid.Size.Width != 148 {
		t.Errorf("expected width 148, got %d", grid.Size.Width)
	}
	// 10 + 3*(20+16) + 2*4 + 10
	if grid.Size.Height != 136 {
		t.Errorf("expected height 136, got %d", grid.Size.Height)
	}
	if want := (pipeline.Rectangle{X: 54, Y: 50, Width: 40, Height: 20}); grid.Tiles[4] != want {
		t.Errorf("tile 4: expected %+v, got %+v", want, grid.Tiles[4])
	}
	if want := (pipeline.Rectangle{X: 10, Y: 90, Width: 40, Height: 20}); grid.Tiles[6] != want {
		t.Errorf("tile 6: expected %+v, got %+v", want, grid.Tiles[6])
	}
}

func TestComputeGrid_FewerFramesThanColumns(t *testing.T) {
	grid := ComputeGrid(pipeline.SheetInput{Columns: 8}, pipeline.Dimension{Width: 10, Height: 10}, 2)
	if grid.Columns != 2 || grid.Rows != 1 {
		t.Errorf("expected 2x1 grid, got %dx%d", grid.Columns, grid.Rows)
	}
	if grid.Size != (pipeline.Dimension{Width: 20, Height: 10}) {
		t.Errorf("unexpected size %+v", grid.Size)
	}
}

func TestComputeGrid_TileWidthKeepsAspect(t *testing.T) {
	grid := ComputeGrid(pipeline.SheetInput{Columns: 1, TileWidth: 50}, pipeline.Dimension{Width: 200, Height: 100}, 1)
	if grid.Tile != (pipeline.Dimension{Width: 50, Height: 25}) {
		t.Errorf("expected 50x25 tile, got %+v", grid.Tile)
	}
}

func TestLabel(t *testing.T) {
	f := &apng.Frame{Index: 3, Duration: 250 * time.Millisecond}
	if got := Label(f); got != "#3 250ms" {
		t.Errorf("unexpected label %q", got)
	}
	f.Duration = apng.InfiniteDuration
	if got := Label(f); got != "#3" {
		t.Errorf("unexpected label %q", got)
	}
}

func TestStage_Execute(t *testing.T) {
	renderer := &mocks.Renderer{}
	stage := NewStage(renderer, mocks.NewLogger())

	input := pipeline.DefaultSheetInput()
	input.Columns = 2
	input.TileWidth = 8
	input.Source = pipeline.FrameSlice(solidFrames(3, 16, 16, color.NRGBA{R: 255, A: 255}))

	result, err := stage.Execute(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Rows != 2 || len(result.Tiles) != 3 {
		t.Errorf("expected 2 rows and 3 tiles, got %d and %d", result.Rows, len(result.Tiles))
	}

	canvases := renderer.Canvases()
	if len(canvases) != 1 {
		t.Fatalf("expected 1 canvas, got %d", len(canvases))
	}
	c := canvases[0]
	if len(c.Images) != 3 {
		t.Fatalf("expected 3 drawn images, got %d", len(c.Images))
	}
	for i, call := range c.Images {
		tile := result.Tiles[i]
		if call != (mocks.DrawCall{X: tile.X, Y: tile.Y, Width: 8, Height: 8}) {
			t.Errorf("tile %d: unexpected draw %+v", i, call)
		}
	}
	if want := []string{"#0 100ms", "#1 100ms", "#2 100ms"}; !reflect.DeepEqual(c.Texts, want) {
		t.Errorf("expected labels %v, got %v", want, c.Texts)
	}
	if c.Strokes != 3 {
		t.Errorf("expected 3 borders, got %d", c.Strokes)
	}
}

func TestStage_Execute_NoLabelsNoBorder(t *testing.T) {
	renderer := &mocks.Renderer{}
	stage := NewStage(renderer, mocks.NewLogger())

	input := pipeline.SheetInput{Columns: 4, Source: pipeline.FrameSlice(solidFrames(2, 4, 4, color.NRGBA{A: 255}))}
	if _, err := stage.Execute(context.Background(), input); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c := renderer.Canvases()[0]
	if len(c.Texts) != 0 || c.Strokes != 0 {
		t.Errorf("expected no labels or borders, got %v and %d", c.Texts, c.Strokes)
	}
	if c.Background != color.White {
		t.Errorf("expected white default background, got %v", c.Background)
	}
}

func TestStage_Execute_SkipsHiddenFrame(t *testing.T) {
	renderer := &mocks.Renderer{}
	stage := NewStage(renderer, mocks.NewLogger())

	input := pipeline.DefaultSheetInput()
	input.Source = pipeline.FrameSlice(solidFrames(3, 4, 4, color.NRGBA{A: 255}))
	input.FirstFrameHidden = true

	result, err := stage.Execute(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Tiles) != 2 {
		t.Errorf("expected 2 tiles, got %d", len(result.Tiles))
	}
	if want := []string{"#1 100ms", "#2 100ms"}; !reflect.DeepEqual(renderer.Canvases()[0].Texts, want) {
		t.Errorf("expected labels %v, got %v", want, renderer.Canvases()[0].Texts)
	}

	input.SkipHidden = false
	if result, _ := stage.Execute(context.Background(), input); len(result.Tiles) != 3 {
		t.Errorf("expected 3 tiles with the hidden image kept, got %d", len(result.Tiles))
	}
}

// failingSource serves frames until index failAt.
type failingSource struct {
	pipeline.FrameSlice
	failAt int
	err    error
}

func (s failingSource) Frame(ctx context.Context, index int) (*apng.Frame, error) {
	if index == s.failAt {
		return nil, s.err
	}
	return s.FrameSlice.Frame(ctx, index)
}

func TestStage_Execute_SourceError(t *testing.T) {
	stage := NewStage(&mocks.Renderer{}, mocks.NewLogger())
	want := errors.New("stream terminated")

	for _, failAt := range []int{0, 2} {
		input := pipeline.DefaultSheetInput()
		input.Source = failingSource{FrameSlice: solidFrames(4, 4, 4, color.NRGBA{A: 255}), failAt: failAt, err: want}
		if _, err := stage.Execute(context.Background(), input); !errors.Is(err, want) {
			t.Errorf("failAt %d: expected source error, got %v", failAt, err)
		}
	}
}

func TestStage_Execute_Empty(t *testing.T) {
	stage := NewStage(&mocks.Renderer{}, mocks.NewLogger())
	if _, err := stage.Execute(context.Background(), pipeline.DefaultSheetInput()); err == nil {
		t.Error("expected error for empty input")
	}
}

func TestStage_Execute_Canceled(t *testing.T) {
	stage := NewStage(&mocks.Renderer{}, mocks.NewLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	input := pipeline.DefaultSheetInput()
	input.Source = pipeline.FrameSlice(solidFrames(2, 4, 4, color.NRGBA{A: 255}))
	if _, err := stage.Execute(ctx, input); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestStage_Execute_Pixels(t *testing.T) {
	stage := NewStage(ggrenderer.New(mocks.NewLogger()), mocks.NewLogger())

	input := pipeline.SheetInput{
		Columns:    2,
		Gap:        2,
		Padding:    3,
		Background: color.NRGBA{B: 255, A: 255},
		Source:     pipeline.FrameSlice(solidFrames(2, 10, 10, color.NRGBA{G: 255, A: 255})),
	}

	result, err := stage.Execute(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b := result.Image.Bounds(); b.Dx() != 28 || b.Dy() != 16 {
		t.Fatalf("expected 28x16 sheet, got %dx%d", b.Dx(), b.Dy())
	}

	// Inside the second tile
	if r, g, b, _ := result.Image.At(20, 8).RGBA(); r != 0 || g != 0xffff || b != 0 {
		t.Errorf("expected green tile, got (%d, %d, %d)", r>>8, g>>8, b>>8)
	}
	// In the gap between tiles
	if r, g, b, _ := result.Image.At(14, 8).RGBA(); r != 0 || g != 0 || b != 0xffff {
		t.Errorf("expected blue background, got (%d, %d, %d)", r>>8, g>>8, b>>8)
	}
}
