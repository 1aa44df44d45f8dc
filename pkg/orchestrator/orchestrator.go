// Package orchestrator drives APNG decoding: signature check, header and
// control chunks, per-frame decode and compositing, and delivery of the
// composited frames either all at once or through a streaming buffer.
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ideamans/go-l10n"

	"github.com/user/apngview/pkg/apng"
	"github.com/user/apngview/pkg/framebuffer"
	"github.com/user/apngview/pkg/ports"
)

// DefaultWindowSize is the number of frames a stream retains by default.
const DefaultWindowSize = 8

// Config contains all configuration for a decode session.
type Config struct {
	// MaxDimension is the largest accepted canvas width or height.
	MaxDimension int

	// WindowSize is the number of frames a stream retains. Zero or less
	// retains every frame. DecodeAll ignores it.
	WindowSize int

	// Scale is reported on every frame for display consumers.
	Scale float64
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		MaxDimension: apng.DefaultMaxDimension,
		WindowSize:   DefaultWindowSize,
		Scale:        1,
	}
}

// Orchestrator decodes APNG streams with a baseline frame decoder.
type Orchestrator struct {
	decoder ports.FrameDecoder
	sink    ports.FrameSink
	logger  ports.Logger
}

// New creates a new Orchestrator.
func New(decoder ports.FrameDecoder, sink ports.FrameSink, logger ports.Logger) *Orchestrator {
	return &Orchestrator{
		decoder: decoder,
		sink:    sink,
		logger:  logger,
	}
}

// DecodeAll decodes every frame of data on the calling goroutine and returns
// them in stream order.
func (o *Orchestrator) DecodeAll(ctx context.Context, data []byte, config Config) (*Image, error) {
	p, err := o.open(data, config, nil)
	if err != nil {
		o.logger.Error(l10n.F("Failed to read header: %s", err))
		return nil, err
	}
	meta := p.meta()
	o.saveMetadata(meta)
	o.logger.Info(l10n.F("Decoding %dx%d image with %d frames", meta.Width, meta.Height, meta.FrameCount))

	buf := framebuffer.New(0)
	buf.SetFrameCount(meta.FrameCount)
	defer buf.Terminate()

	for i := 0; i < meta.FrameCount; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		f, err := p.decodeNext()
		if err != nil {
			o.logger.Error(l10n.F("Failed to decode frame %d: %s", i, err))
			return nil, err
		}
		buf.SetFrame(f.Index, f)
	}

	frames := make([]*apng.Frame, meta.FrameCount)
	for i := range frames {
		f, err := buf.WaitForFrame(ctx, i)
		if err != nil {
			return nil, fmt.Errorf("collect frame %d: %w", i, err)
		}
		frames[i] = f
	}

	o.logger.Info(l10n.F("Decoded %d frames", len(frames)))
	return &Image{Metadata: meta, Frames: frames}, nil
}

// DecodeStream reads the header synchronously, starts one background
// producer and returns once frame 0 is available. Frames are then pulled
// with Image.Frame. Canceling ctx terminates the stream. The caller must
// Close the image.
func (o *Orchestrator) DecodeStream(ctx context.Context, data []byte, config Config) (*Image, error) {
	p, err := o.open(data, config, nil)
	if err != nil {
		o.logger.Error(l10n.F("Failed to read header: %s", err))
		return nil, err
	}
	meta := p.meta()
	o.saveMetadata(meta)
	o.logger.Info(l10n.F("Streaming %dx%d image with %d frames, window %d",
		meta.Width, meta.Height, meta.FrameCount, config.WindowSize))

	buf := framebuffer.New(config.WindowSize)
	buf.SetFrameCount(meta.FrameCount)

	img := &Image{
		Metadata: meta,
		Stream:   buf,
		done:     make(chan struct{}),
	}
	stop := context.AfterFunc(ctx, buf.Terminate)
	go func() {
		defer close(img.done)
		defer stop()
		o.produce(data, config, p, buf)
	}()

	if _, err := buf.WaitForFrame(ctx, 0); err != nil {
		img.Close()
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		o.logger.Error(l10n.F("Failed to decode frame %d: %s", 0, err))
		return nil, err
	}
	return img, nil
}

// produce is the producer loop. It decodes forward while the buffer needs
// frames at or after the cursor and restarts from the first frame when a
// needed frame lies behind it, since every frame depends on the canvas left
// by its predecessors.
func (o *Orchestrator) produce(data []byte, config Config, p *pass, buf *framebuffer.Buffer) {
	log := o.logger.WithComponent("stream")
	for {
		want := buf.WaitForNextNeededIndex()
		if want == framebuffer.NoIndex {
			log.Debug("Producer stopped at frame %d", p.next)
			return
		}

		if want < p.next {
			log.Debug("Restarting decode for frame %d", want)
			np, err := o.open(data, config, p.comp)
			if err != nil {
				buf.Fail(err)
				return
			}
			if np.meta().FrameCount != p.meta().FrameCount {
				buf.Fail(apng.InternalDecode("restart", fmt.Errorf("frame count changed from %d to %d",
					p.meta().FrameCount, np.meta().FrameCount)))
				return
			}
			p = np
			buf.AddRestart()
		}

		f, err := p.decodeNext()
		if err != nil {
			log.Debug("Decode failed at frame %d: %s", p.next, err)
			buf.Fail(err)
			return
		}
		buf.SetFrame(f.Index, f)
	}
}

func (o *Orchestrator) saveMetadata(meta apng.Metadata) {
	if !o.sink.Enabled() {
		return
	}
	if data, err := json.MarshalIndent(meta, "", "  "); err == nil {
		if err := o.sink.SaveMetadataJSON(data); err != nil {
			o.logger.Warn(l10n.F("Failed to save debug output: %s", err))
		}
	}
}
