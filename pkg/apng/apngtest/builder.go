// Package apngtest builds APNG byte streams for tests.
package apngtest

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"

	"github.com/klauspost/compress/zlib"

	"github.com/user/apngview/pkg/apng"
)

// Frame is one animation frame: its control record and its w×h pixels.
// Sequence numbers in Control are ignored and assigned by Build.
type Frame struct {
	Control apng.FrameControl
	Image   *image.NRGBA
}

// Animation describes the stream to build.
type Animation struct {
	Width  int
	Height int
	Plays  uint32

	// Hidden, when non-nil, is written as a default image that is not part
	// of the animation.
	Hidden *image.NRGBA

	Frames []Frame

	// SplitData splits every frame's compressed data into chunks of at most
	// this many bytes. Zero writes one chunk per frame.
	SplitData int
}

// Build encodes a as an RGBA8 APNG stream.
func Build(a Animation) []byte {
	var buf bytes.Buffer
	buf.WriteString(apng.Signature)
	WriteChunk(&buf, apng.ChunkIHDR, IHDR(a.Width, a.Height, 8, 6))
	WriteChunk(&buf, apng.ChunkACTL, ACTL(uint32(len(a.Frames)), a.Plays))

	var seq uint32
	if a.Hidden != nil {
		writeData(&buf, apng.ChunkIDAT, nil, Compress(a.Hidden), a.SplitData)
	}
	for i, f := range a.Frames {
		WriteChunk(&buf, apng.ChunkFCTL, FCTL(seq, f.Control))
		seq++
		if i == 0 && a.Hidden == nil {
			writeData(&buf, apng.ChunkIDAT, nil, Compress(f.Image), a.SplitData)
			continue
		}
		writeData(&buf, apng.ChunkFDAT, &seq, Compress(f.Image), a.SplitData)
	}
	WriteChunk(&buf, apng.ChunkIEND, nil)
	return buf.Bytes()
}

// Still encodes img as a plain, non-animated RGBA8 PNG.
func Still(img *image.NRGBA) []byte {
	var buf bytes.Buffer
	b := img.Bounds()
	buf.WriteString(apng.Signature)
	WriteChunk(&buf, apng.ChunkIHDR, IHDR(b.Dx(), b.Dy(), 8, 6))
	WriteChunk(&buf, apng.ChunkIDAT, Compress(img))
	WriteChunk(&buf, apng.ChunkIEND, nil)
	return buf.Bytes()
}

func writeData(buf *bytes.Buffer, typ string, seq *uint32, data []byte, split int) {
	if split <= 0 {
		split = len(data)
	}
	for len(data) > 0 {
		n := min(split, len(data))
		payload := data[:n]
		if seq != nil {
			payload = append(binary.BigEndian.AppendUint32(nil, *seq), payload...)
			*seq++
		}
		WriteChunk(buf, typ, payload)
		data = data[n:]
	}
}

// WriteChunk appends a chunk with a valid CRC.
func WriteChunk(buf *bytes.Buffer, typ string, data []byte) {
	var hdr [8]byte
	binary.BigEndian.PutUint32(hdr[:4], uint32(len(data)))
	copy(hdr[4:], typ)
	buf.Write(hdr[:])
	buf.Write(data)
	crc := crc32.NewIEEE()
	crc.Write(hdr[4:])
	crc.Write(data)
	var sum [4]byte
	binary.BigEndian.PutUint32(sum[:], crc.Sum32())
	buf.Write(sum[:])
}

// IHDR returns an IHDR payload.
func IHDR(w, h int, depth, colorType byte) []byte {
	b := make([]byte, 13)
	binary.BigEndian.PutUint32(b[0:4], uint32(w))
	binary.BigEndian.PutUint32(b[4:8], uint32(h))
	b[8] = depth
	b[9] = colorType
	return b
}

// ACTL returns an acTL payload.
func ACTL(frames, plays uint32) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint32(b[0:4], frames)
	binary.BigEndian.PutUint32(b[4:8], plays)
	return b
}

// FCTL returns an fcTL payload for ctl with the given sequence number.
func FCTL(seq uint32, ctl apng.FrameControl) []byte {
	b := make([]byte, 26)
	binary.BigEndian.PutUint32(b[0:4], seq)
	binary.BigEndian.PutUint32(b[4:8], uint32(ctl.Width))
	binary.BigEndian.PutUint32(b[8:12], uint32(ctl.Height))
	binary.BigEndian.PutUint32(b[12:16], uint32(ctl.X))
	binary.BigEndian.PutUint32(b[16:20], uint32(ctl.Y))
	binary.BigEndian.PutUint16(b[20:22], ctl.DelayNum)
	binary.BigEndian.PutUint16(b[22:24], ctl.DelayDen)
	b[24] = byte(ctl.Dispose)
	b[25] = byte(ctl.Blend)
	return b
}

// Compress returns the zlib stream of img's scanlines, each with filter
// type None.
func Compress(img *image.NRGBA) []byte {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		zw.Write([]byte{0})
		off := img.PixOffset(b.Min.X, y)
		zw.Write(img.Pix[off : off+b.Dx()*4])
	}
	zw.Close()
	return buf.Bytes()
}

// Solid returns a w×h image filled with c.
func Solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
	}
	return img
}

// Control returns a frame control record.
func Control(x, y, w, h int, delayNum, delayDen uint16, dispose apng.DisposeOp, blend apng.BlendOp) apng.FrameControl {
	return apng.FrameControl{
		X: x, Y: y, Width: w, Height: h,
		DelayNum: delayNum, DelayDen: delayDen,
		Dispose: dispose, Blend: blend,
	}
}
