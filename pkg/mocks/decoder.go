package mocks

import (
	"image"
	"io"
	"sync"

	"github.com/user/apngview/pkg/ports"
)

// FrameDecoder is a mock implementation of ports.FrameDecoder. Calls are
// forwarded to Base unless the matching Func field is set.
type FrameDecoder struct {
	mu sync.RWMutex

	Base ports.FrameDecoder

	DecodeHeaderFunc func(ihdr []byte) (ports.ImageHeader, error)
	DecodeFrameFunc  func(info ports.ColorInfo, data io.Reader, dst *image.NRGBA) error

	frameCalls int
}

func (m *FrameDecoder) DecodeHeader(ihdr []byte) (ports.ImageHeader, error) {
	if m.DecodeHeaderFunc != nil {
		return m.DecodeHeaderFunc(ihdr)
	}
	return m.Base.DecodeHeader(ihdr)
}

func (m *FrameDecoder) DecodeFrame(info ports.ColorInfo, data io.Reader, dst *image.NRGBA) error {
	m.mu.Lock()
	m.frameCalls++
	m.mu.Unlock()
	if m.DecodeFrameFunc != nil {
		return m.DecodeFrameFunc(info, data, dst)
	}
	return m.Base.DecodeFrame(info, data, dst)
}

// FrameCalls returns the number of DecodeFrame calls.
func (m *FrameDecoder) FrameCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.frameCalls
}

var _ ports.FrameDecoder = (*FrameDecoder)(nil)
