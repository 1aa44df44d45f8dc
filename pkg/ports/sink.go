package ports

import (
	"image"
)

// FrameSink abstracts debug output for intermediate decode results.
// It allows saving per-frame pixels while a stream is decoded.
type FrameSink interface {
	// Enabled returns true if debug output is enabled.
	Enabled() bool

	// SaveMetadataJSON saves the stream metadata as JSON.
	SaveMetadataJSON(data []byte) error

	// SaveRawFrame saves the decoded frame rect before compositing.
	SaveRawFrame(index int, img image.Image) error

	// SaveComposedFrame saves a fully composited frame.
	SaveComposedFrame(index int, img image.Image) error
}
