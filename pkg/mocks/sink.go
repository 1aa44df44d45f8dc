package mocks

import (
	"image"
	"sync"

	"github.com/user/apngview/pkg/ports"
)

// FrameSink is a mock implementation of ports.FrameSink.
type FrameSink struct {
	mu sync.RWMutex

	enabled bool

	MetadataJSON   []byte
	RawFrames      map[int]image.Image
	ComposedFrames map[int]image.Image

	SaveComposedFrameFunc func(index int, img image.Image) error
}

// NewFrameSink creates a new mock FrameSink.
func NewFrameSink(enabled bool) *FrameSink {
	return &FrameSink{
		enabled:        enabled,
		RawFrames:      make(map[int]image.Image),
		ComposedFrames: make(map[int]image.Image),
	}
}

func (m *FrameSink) Enabled() bool {
	return m.enabled
}

func (m *FrameSink) SaveMetadataJSON(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MetadataJSON = data
	return nil
}

func (m *FrameSink) SaveRawFrame(index int, img image.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RawFrames[index] = img
	return nil
}

func (m *FrameSink) SaveComposedFrame(index int, img image.Image) error {
	if m.SaveComposedFrameFunc != nil {
		return m.SaveComposedFrameFunc(index, img)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ComposedFrames[index] = img
	return nil
}

// ComposedCount returns the number of composed frames saved.
func (m *FrameSink) ComposedCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.ComposedFrames)
}

var _ ports.FrameSink = (*FrameSink)(nil)

// NullSink is a no-op implementation of ports.FrameSink.
type NullSink struct{}

func (m *NullSink) Enabled() bool                                      { return false }
func (m *NullSink) SaveMetadataJSON(data []byte) error                 { return nil }
func (m *NullSink) SaveRawFrame(index int, img image.Image) error      { return nil }
func (m *NullSink) SaveComposedFrame(index int, img image.Image) error { return nil }

var _ ports.FrameSink = (*NullSink)(nil)
