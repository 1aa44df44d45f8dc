package orchestrator

import (
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/user/apngview/pkg/apng"
	"github.com/user/apngview/pkg/compositor"
	"github.com/user/apngview/pkg/ports"
)

// pass is one forward decode of a stream, from the first frame to the last.
// Its compositor is owned by the producer and never shared.
type pass struct {
	r    *apng.ChunkReader
	hdr  *apng.Header
	dec  ports.FrameDecoder
	comp *compositor.Compositor
	sink ports.FrameSink
	log  ports.Logger

	next int    // index of the next frame to decode
	seq  uint32 // expected sequence number of the next fcTL or fdAT
}

// open validates data and reads its header. A non-nil comp is reset and
// reused for the new pass.
func (o *Orchestrator) open(data []byte, config Config, comp *compositor.Compositor) (*pass, error) {
	r, err := apng.NewChunkReader(data)
	if err != nil {
		return nil, err
	}
	hdr, err := apng.ReadHeader(r, o.decoder, apng.HeaderOptions{
		MaxDimension: config.MaxDimension,
		Scale:        config.Scale,
	})
	if err != nil {
		return nil, err
	}

	m := hdr.Metadata
	if comp == nil {
		comp = compositor.New(m.Width, m.Height)
	} else {
		comp.Reset()
	}
	return &pass{
		r:    r,
		hdr:  hdr,
		dec:  o.decoder,
		comp: comp,
		sink: o.sink,
		log:  o.logger.WithComponent("decode"),
		seq:  hdr.NextSequence,
	}, nil
}

func (p *pass) meta() apng.Metadata {
	return p.hdr.Metadata
}

// decodeNext decodes and composites the frame at p.next.
func (p *pass) decodeNext() (*apng.Frame, error) {
	m := p.hdr.Metadata
	index := p.next
	if index >= m.FrameCount {
		return nil, apng.InternalDecode("decode frame", fmt.Errorf("frame %d past end of %d-frame stream", index, m.FrameCount))
	}

	ctl, data, err := p.frameData(index)
	if err != nil {
		return nil, err
	}

	pixels := image.NewNRGBA(image.Rect(0, 0, ctl.Width, ctl.Height))
	if err := p.dec.DecodeFrame(p.hdr.Color, data, pixels); err != nil {
		if apng.Kind(err) == nil {
			err = apng.InternalDecode("decode frame", err)
		}
		return nil, err
	}

	canvas, err := p.comp.Compose(ctl, pixels, index == m.FirstVisibleIndex())
	if err != nil {
		return nil, err
	}

	duration := ctl.Duration()
	if !m.Animated {
		duration = apng.InfiniteDuration
	}
	p.log.Debug("Frame %d: %dx%d at (%d,%d), %s/%s, %v",
		index, ctl.Width, ctl.Height, ctl.X, ctl.Y, ctl.Blend, ctl.Dispose, duration)

	if p.sink.Enabled() {
		if err := p.sink.SaveRawFrame(index, pixels); err != nil {
			p.log.Warn("Failed to save debug output: %s", err)
		}
		if err := p.sink.SaveComposedFrame(index, canvas); err != nil {
			p.log.Warn("Failed to save debug output: %s", err)
		}
	}

	p.next++
	return &apng.Frame{
		Index:    index,
		Image:    canvas,
		Duration: duration,
		Control:  ctl,
		Width:    m.Width,
		Height:   m.Height,
		BitDepth: m.BitDepth,
		Scale:    m.Scale,
	}, nil
}

// frameData returns the control record and compressed data of frame index.
// Frame 0 is always the IDAT image; later frames are fcTL plus fdAT.
func (p *pass) frameData(index int) (apng.FrameControl, io.Reader, error) {
	m := p.hdr.Metadata
	if index == 0 {
		ctl := apng.CanvasControl(m)
		if p.hdr.DefaultControl != nil {
			ctl = *p.hdr.DefaultControl
		}
		data, err := p.r.DataReader(apng.ChunkIDAT, nil)
		return ctl, data, err
	}

	for {
		c, err := p.r.Next()
		if err == io.EOF {
			return apng.FrameControl{}, nil, apng.InternalDecode("read fcTL", fmt.Errorf("stream ended before frame %d", index))
		}
		if err != nil {
			return apng.FrameControl{}, nil, err
		}
		switch c.Type {
		case apng.ChunkFCTL:
			ctl, err := apng.ParseFrameControl(c.Data, m.Width, m.Height, &p.seq)
			if err != nil {
				return apng.FrameControl{}, nil, err
			}
			data, err := p.r.DataReader(apng.ChunkFDAT, &p.seq)
			return ctl, data, err
		case apng.ChunkFDAT:
			return apng.FrameControl{}, nil, apng.InternalDecode("read fdAT", errors.New("frame data without fcTL"))
		case apng.ChunkIDAT:
			return apng.FrameControl{}, nil, apng.InternalDecode("read IDAT", errors.New("image data after first frame"))
		case apng.ChunkIEND:
			return apng.FrameControl{}, nil, apng.InternalDecode("read fcTL", fmt.Errorf("IEND before frame %d", index))
		}
	}
}
