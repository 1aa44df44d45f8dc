// Package filesink provides a file-based frame sink implementation.
package filesink

import (
	"fmt"
	"image"
	"path/filepath"

	"github.com/user/apngview/pkg/ports"
)

// Sink saves debug output to files under a base directory.
type Sink struct {
	baseDir  string
	fs       ports.FileSystem
	renderer ports.Renderer
}

// New creates a new FileSink.
func New(baseDir string, fs ports.FileSystem, renderer ports.Renderer) *Sink {
	return &Sink{
		baseDir:  baseDir,
		fs:       fs,
		renderer: renderer,
	}
}

// Enabled returns true as this sink saves output.
func (s *Sink) Enabled() bool {
	return true
}

// SaveMetadataJSON saves the stream metadata as JSON.
func (s *Sink) SaveMetadataJSON(data []byte) error {
	if err := s.fs.MkdirAll(s.baseDir); err != nil {
		return err
	}
	path := filepath.Join(s.baseDir, "metadata.json")
	return s.fs.WriteFile(path, data)
}

// SaveRawFrame saves the decoded frame rect before compositing.
func (s *Sink) SaveRawFrame(index int, img image.Image) error {
	return s.savePNG(filepath.Join(s.baseDir, "frames", "raw"), index, img)
}

// SaveComposedFrame saves a fully composited frame.
func (s *Sink) SaveComposedFrame(index int, img image.Image) error {
	return s.savePNG(filepath.Join(s.baseDir, "frames", "composed"), index, img)
}

func (s *Sink) savePNG(dir string, index int, img image.Image) error {
	if err := s.fs.MkdirAll(dir); err != nil {
		return err
	}
	data, err := s.renderer.EncodeImage(img, ports.FormatPNG, 0)
	if err != nil {
		return fmt.Errorf("encode frame %d: %w", index, err)
	}
	path := filepath.Join(dir, fmt.Sprintf("frame-%04d.png", index))
	return s.fs.WriteFile(path, data)
}

// Ensure Sink implements ports.FrameSink
var _ ports.FrameSink = (*Sink)(nil)
