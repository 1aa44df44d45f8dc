package orchestrator

import (
	"context"

	"github.com/user/apngview/pkg/apng"
	"github.com/user/apngview/pkg/framebuffer"
)

// Image is a decoded animation. Exactly one of Frames (from DecodeAll) and
// Stream (from DecodeStream) is set.
type Image struct {
	Metadata apng.Metadata
	Frames   []*apng.Frame
	Stream   *framebuffer.Buffer

	done chan struct{}
}

// Streaming reports whether frames are served by a live stream.
func (img *Image) Streaming() bool {
	return img.Stream != nil
}

// Frame returns frame index, blocking on the stream when necessary.
func (img *Image) Frame(ctx context.Context, index int) (*apng.Frame, error) {
	if img.Stream != nil {
		return img.Stream.WaitForFrame(ctx, index)
	}
	if index < 0 || index >= len(img.Frames) {
		return nil, framebuffer.ErrIndexOutOfRange
	}
	return img.Frames[index], nil
}

// FrameCount returns the number of frames per decode pass.
func (img *Image) FrameCount() int {
	return img.Metadata.FrameCount
}

// Restarts returns how many times the stream restarted decoding from the
// first frame.
func (img *Image) Restarts() int {
	if img.Stream == nil {
		return 0
	}
	return img.Stream.Stats().Restarts
}

// PeakFrames returns the most frames held in memory at once: every frame
// for a synchronous decode, the buffer's high-water mark for a stream.
func (img *Image) PeakFrames() int {
	if img.Stream == nil {
		return len(img.Frames)
	}
	return img.Stream.Stats().Peak
}

// Close terminates the stream and waits for the producer to exit. It is
// safe to call more than once.
func (img *Image) Close() error {
	if img.Stream == nil {
		return nil
	}
	img.Stream.Terminate()
	<-img.done
	return nil
}
