package apng

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
)

// Signature is the 8-byte PNG magic.
const Signature = "\x89PNG\r\n\x1a\n"

// Chunk types used by the decoder.
const (
	ChunkIHDR = "IHDR"
	ChunkPLTE = "PLTE"
	ChunkTRNS = "tRNS"
	ChunkIDAT = "IDAT"
	ChunkIEND = "IEND"
	ChunkACTL = "acTL"
	ChunkFCTL = "fcTL"
	ChunkFDAT = "fdAT"
)

// maxChunkLength is the largest length a chunk may declare.
const maxChunkLength = 0x7fffffff

// ValidateSignature checks that data starts with the PNG signature.
func ValidateSignature(data []byte) error {
	if len(data) < len(Signature) {
		return InvalidFormat("check signature", io.ErrUnexpectedEOF)
	}
	if string(data[:len(Signature)]) != Signature {
		return InvalidFormat("check signature", errors.New("not a PNG file"))
	}
	return nil
}

// Chunk is one length-type-data-crc record. Data aliases the source buffer
// and must not be modified.
type Chunk struct {
	Type   string
	Data   []byte
	Offset int
}

// ChunkReader walks the chunks of an in-memory PNG stream. It never copies
// chunk payloads.
type ChunkReader struct {
	data   []byte
	pos    int
	peeked *Chunk
}

// NewChunkReader validates the signature and positions the reader on the
// first chunk.
func NewChunkReader(data []byte) (*ChunkReader, error) {
	if err := ValidateSignature(data); err != nil {
		return nil, err
	}
	return &ChunkReader{data: data, pos: len(Signature)}, nil
}

// Offset returns the byte offset of the next unread chunk.
func (r *ChunkReader) Offset() int {
	if r.peeked != nil {
		return r.peeked.Offset
	}
	return r.pos
}

// Remaining returns the number of bytes from the next unread chunk to the
// end of the stream.
func (r *ChunkReader) Remaining() int {
	return len(r.data) - r.Offset()
}

// Peek returns the next chunk without consuming it.
func (r *ChunkReader) Peek() (Chunk, error) {
	if r.peeked != nil {
		return *r.peeked, nil
	}
	c, err := r.read()
	if err != nil {
		return Chunk{}, err
	}
	r.peeked = &c
	return c, nil
}

// Next consumes and returns the next chunk. It returns io.EOF only when the
// buffer ends exactly on a chunk boundary.
func (r *ChunkReader) Next() (Chunk, error) {
	if r.peeked != nil {
		c := *r.peeked
		r.peeked = nil
		return c, nil
	}
	return r.read()
}

func (r *ChunkReader) read() (Chunk, error) {
	start := r.pos
	if start == len(r.data) {
		return Chunk{}, io.EOF
	}
	if len(r.data)-start < 8 {
		return Chunk{}, InternalDecode("read chunk header", io.ErrUnexpectedEOF)
	}
	length := binary.BigEndian.Uint32(r.data[start : start+4])
	if length > maxChunkLength {
		return Chunk{}, InternalDecode("read chunk header", fmt.Errorf("bad chunk length %d", length))
	}
	typ := r.data[start+4 : start+8]
	end := start + 8 + int(length)
	if end+4 > len(r.data) {
		return Chunk{}, InternalDecode("read chunk "+string(typ), io.ErrUnexpectedEOF)
	}
	payload := r.data[start+8 : end]

	crc := crc32.NewIEEE()
	crc.Write(typ)
	crc.Write(payload)
	if binary.BigEndian.Uint32(r.data[end:end+4]) != crc.Sum32() {
		return Chunk{}, InternalDecode("read chunk "+string(typ), errors.New("invalid checksum"))
	}

	r.pos = end + 4
	return Chunk{Type: string(typ), Data: payload, Offset: start}, nil
}

// DataReader consumes the run of consecutive chunks of type typ starting at
// the reader's position and returns their payloads as one stream. For fdAT
// chunks the leading sequence number is stripped and checked against seq,
// which is advanced past every consumed chunk.
func (r *ChunkReader) DataReader(typ string, seq *uint32) (io.Reader, error) {
	var parts []io.Reader
	for {
		c, err := r.Peek()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if c.Type != typ {
			break
		}
		r.Next()
		payload := c.Data
		if typ == ChunkFDAT {
			if len(payload) < 4 {
				return nil, InternalDecode("read fdAT", errors.New("chunk too short"))
			}
			if err := checkSequence(binary.BigEndian.Uint32(payload[:4]), seq); err != nil {
				return nil, err
			}
			payload = payload[4:]
		}
		parts = append(parts, bytes.NewReader(payload))
	}
	if len(parts) == 0 {
		return nil, InternalDecode("read frame data", fmt.Errorf("missing %s chunk", typ))
	}
	return io.MultiReader(parts...), nil
}

func checkSequence(got uint32, want *uint32) error {
	if want == nil {
		return nil
	}
	if got != *want {
		return InternalDecode("check sequence", fmt.Errorf("sequence number %d, expected %d", got, *want))
	}
	*want++
	return nil
}
