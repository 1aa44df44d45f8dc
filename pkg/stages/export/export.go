// Package export implements the frame export stage.
package export

import (
	"context"
	"fmt"
	"image"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"github.com/user/apngview/pkg/apng"
	"github.com/user/apngview/pkg/pipeline"
	"github.com/user/apngview/pkg/ports"
)

// Stage writes composited frames to image files.
type Stage struct {
	renderer   ports.Renderer
	fs         ports.FileSystem
	logger     ports.Logger
	numWorkers int
}

// NewStage creates a new export stage.
func NewStage(renderer ports.Renderer, fs ports.FileSystem, logger ports.Logger, numWorkers int) *Stage {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &Stage{
		renderer:   renderer,
		fs:         fs,
		logger:     logger.WithComponent("export"),
		numWorkers: numWorkers,
	}
}

// FileName returns the file name used for frame index.
func FileName(index int, format ports.ImageFormat) string {
	return fmt.Sprintf("frame-%04d%s", index, format.Extension())
}

// Execute writes every frame of input.Source under input.OutputDir. Frames
// are pulled in index order and handed to the workers one at a time, so a
// streamed source only ever has its window plus one frame per worker in
// memory.
func (s *Stage) Execute(ctx context.Context, input pipeline.ExportInput) (pipeline.ExportResult, error) {
	first := pipeline.FirstIndex(input.SkipHidden, input.FirstFrameHidden)
	count := 0
	if input.Source != nil {
		count = input.Source.FrameCount() - first
	}
	if count <= 0 {
		return pipeline.ExportResult{Frames: []pipeline.ExportedFrame{}}, nil
	}

	if err := s.fs.MkdirAll(input.OutputDir); err != nil {
		return pipeline.ExportResult{}, fmt.Errorf("create output directory: %w", err)
	}

	workers := min(s.numWorkers, count)
	s.logger.Debug("Exporting %d frames with %d workers", count, workers)

	workCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Unbuffered: a frame is only pulled once a worker is free for it.
	jobs := make(chan *apng.Frame)
	results := make(chan pipeline.ExportedFrame, count)
	errChan := make(chan error, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go s.worker(workCtx, cancel, &wg, input, jobs, results, errChan)
	}

	var pullErr error
feed:
	for i := first; i < first+count; i++ {
		f, err := input.Source.Frame(workCtx, i)
		if err != nil {
			pullErr = fmt.Errorf("read frame %d: %w", i, err)
			break
		}
		select {
		case jobs <- f:
		case <-workCtx.Done():
			break feed
		}
	}
	close(jobs)

	wg.Wait()
	close(results)
	close(errChan)

	if err := <-errChan; err != nil {
		return pipeline.ExportResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return pipeline.ExportResult{}, err
	}
	if pullErr != nil {
		return pipeline.ExportResult{}, pullErr
	}

	exported := make([]pipeline.ExportedFrame, 0, count)
	for r := range results {
		exported = append(exported, r)
	}
	sort.Slice(exported, func(i, j int) bool {
		return exported[i].Index < exported[j].Index
	})

	s.logger.Debug("Export completed")
	return pipeline.ExportResult{Frames: exported}, nil
}

func (s *Stage) worker(
	ctx context.Context,
	cancel context.CancelFunc,
	wg *sync.WaitGroup,
	input pipeline.ExportInput,
	jobs <-chan *apng.Frame,
	results chan<- pipeline.ExportedFrame,
	errChan chan<- error,
) {
	defer wg.Done()

	for f := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		r, err := s.exportFrame(input, f)
		if err != nil {
			select {
			case errChan <- fmt.Errorf("export frame %d: %w", f.Index, err):
			default:
			}
			cancel()
			return
		}
		results <- r
	}
}

func (s *Stage) exportFrame(input pipeline.ExportInput, f *apng.Frame) (pipeline.ExportedFrame, error) {
	bounds := f.Image.Bounds()
	size := pipeline.ScaleDimension(pipeline.Dimension{Width: bounds.Dx(), Height: bounds.Dy()}, input.Scale)

	img := image.Image(f.Image)
	if size.Width != bounds.Dx() || size.Height != bounds.Dy() {
		img = s.renderer.ResizeImage(f.Image, size.Width, size.Height)
	}

	data, err := s.renderer.EncodeImage(img, input.Format, input.Quality)
	if err != nil {
		return pipeline.ExportedFrame{}, err
	}

	path := filepath.Join(input.OutputDir, FileName(f.Index, input.Format))
	if err := s.fs.WriteFile(path, data); err != nil {
		return pipeline.ExportedFrame{}, err
	}

	durationMs := -1
	if !f.Infinite() {
		durationMs = int(f.Duration.Milliseconds())
	}
	return pipeline.ExportedFrame{
		Index:      f.Index,
		Path:       path,
		DurationMs: durationMs,
		Size:       size,
	}, nil
}
