package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/user/apngview/pkg/adapters/pngdecoder"
	"github.com/user/apngview/pkg/apng"
	"github.com/user/apngview/pkg/apng/apngtest"
	"github.com/user/apngview/pkg/framebuffer"
	"github.com/user/apngview/pkg/mocks"
	"github.com/user/apngview/pkg/ports"
)

var (
	red      = color.NRGBA{R: 255, A: 255}
	halfBlue = color.NRGBA{B: 255, A: 128}
	green    = color.NRGBA{G: 255, A: 255}
)

func newOrchestrator() *Orchestrator {
	return New(pngdecoder.New(), &mocks.NullSink{}, mocks.NewLogger())
}

// scenario is a 10x10 three-frame animation: a red background, a half blue
// square at (2,2) that is cleared after display, then a final frame.
func scenario(last apngtest.Frame) []byte {
	return apngtest.Build(apngtest.Animation{
		Width: 10, Height: 10,
		Frames: []apngtest.Frame{
			{Control: apngtest.Control(0, 0, 10, 10, 1, 10, apng.DisposeNone, apng.BlendSource), Image: apngtest.Solid(10, 10, red)},
			{Control: apngtest.Control(2, 2, 4, 4, 2, 10, apng.DisposeBackground, apng.BlendOver), Image: apngtest.Solid(4, 4, halfBlue)},
			last,
		},
	})
}

func fullGreen() apngtest.Frame {
	return apngtest.Frame{
		Control: apngtest.Control(0, 0, 10, 10, 1, 10, apng.DisposeNone, apng.BlendSource),
		Image:   apngtest.Solid(10, 10, green),
	}
}

// sequence returns an n-frame 6x6 animation whose frames differ in color.
func sequence(n int, plays uint32) []byte {
	a := apngtest.Animation{Width: 6, Height: 6, Plays: plays}
	for i := 0; i < n; i++ {
		c := color.NRGBA{R: uint8(10 * i), G: uint8(255 - 10*i), B: uint8(i), A: 255}
		a.Frames = append(a.Frames, apngtest.Frame{
			Control: apngtest.Control(i%3, i%2, 3, 4, uint16(i+1), 100, apng.DisposeNone, apng.BlendOver),
			Image:   apngtest.Solid(3, 4, c),
		})
	}
	a.Frames[0].Control = apngtest.Control(0, 0, 6, 6, 1, 100, apng.DisposeNone, apng.BlendSource)
	a.Frames[0].Image = apngtest.Solid(6, 6, red)
	return apngtest.Build(a)
}

func TestDecodeAll_Scenario(t *testing.T) {
	img, err := newOrchestrator().DecodeAll(context.Background(), scenario(fullGreen()), DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(img.Frames) != 3 {
		t.Fatalf("expected 3 frames, got %d", len(img.Frames))
	}
	wantDurations := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 100 * time.Millisecond}
	for i, f := range img.Frames {
		if f.Index != i {
			t.Errorf("frame %d has index %d", i, f.Index)
		}
		if f.Duration != wantDurations[i] {
			t.Errorf("frame %d: expected duration %v, got %v", i, wantDurations[i], f.Duration)
		}
		if f.Image.Bounds() != image.Rect(0, 0, 10, 10) {
			t.Errorf("frame %d: expected full canvas, got %v", i, f.Image.Bounds())
		}
	}

	blended := color.NRGBA{R: 127, B: 128, A: 255}
	f1 := img.Frames[1].Image
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			got := f1.NRGBAAt(x, y)
			if image.Pt(x, y).In(image.Rect(2, 2, 6, 6)) {
				if got != blended {
					t.Fatalf("frame 1 (%d,%d): expected %v, got %v", x, y, blended, got)
				}
			} else if got != red {
				t.Fatalf("frame 1 (%d,%d): expected frame 0 content, got %v", x, y, got)
			}
		}
	}
	if got := img.Frames[2].Image.NRGBAAt(3, 3); got != green {
		t.Errorf("frame 2: expected %v, got %v", green, got)
	}
}

func TestDecodeAll_BackgroundDisposeBeforeNextFrame(t *testing.T) {
	// A tiny final frame leaves the rest of the canvas visible.
	last := apngtest.Frame{
		Control: apngtest.Control(9, 9, 1, 1, 1, 10, apng.DisposeNone, apng.BlendOver),
		Image:   apngtest.Solid(1, 1, green),
	}
	img, err := newOrchestrator().DecodeAll(context.Background(), scenario(last), DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f2 := img.Frames[2].Image
	if got := f2.NRGBAAt(3, 3); got != (color.NRGBA{}) {
		t.Errorf("disposed rect should be transparent, got %v", got)
	}
	if got := f2.NRGBAAt(0, 0); got != red {
		t.Errorf("outside the rect expected %v, got %v", red, got)
	}
	if got := f2.NRGBAAt(9, 9); got != green {
		t.Errorf("expected %v, got %v", green, got)
	}
}

func TestDecodeAll_FrameCount(t *testing.T) {
	for _, n := range []int{1, 2, 7} {
		img, err := newOrchestrator().DecodeAll(context.Background(), sequence(n, 1), DefaultConfig())
		if err != nil {
			t.Fatalf("%d frames: unexpected error: %v", n, err)
		}
		if len(img.Frames) != n || img.FrameCount() != n {
			t.Errorf("expected %d frames, got %d", n, len(img.Frames))
		}
		for i, f := range img.Frames {
			if f.Index != i || f.Width != 6 || f.Height != 6 || f.Image.Bounds().Dx() != 6 {
				t.Errorf("frame %d: unexpected frame %+v", i, f)
			}
		}
		if img.Metadata.RepeatCount != 0 {
			t.Errorf("one play: expected repeat count 0, got %d", img.Metadata.RepeatCount)
		}
	}
}

func TestDecodeAll_Still(t *testing.T) {
	data := apngtest.Still(apngtest.Solid(5, 3, green))
	img, err := newOrchestrator().DecodeAll(context.Background(), data, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(img.Frames) != 1 {
		t.Fatalf("expected 1 frame, got %d", len(img.Frames))
	}
	f := img.Frames[0]
	if !f.Infinite() {
		t.Errorf("expected infinite duration, got %v", f.Duration)
	}
	if img.Metadata.Animated {
		t.Error("still image reported as animated")
	}
	if got := f.Image.NRGBAAt(4, 2); got != green {
		t.Errorf("expected %v, got %v", green, got)
	}
}

func TestDecodeAll_HiddenDefaultImage(t *testing.T) {
	ctl := apngtest.Control(0, 0, 4, 4, 1, 10, apng.DisposeNone, apng.BlendOver)
	data := apngtest.Build(apngtest.Animation{
		Width: 4, Height: 4,
		Hidden: apngtest.Solid(4, 4, green),
		Frames: []apngtest.Frame{
			{Control: ctl, Image: apngtest.Solid(4, 4, halfBlue)},
			{Control: ctl, Image: apngtest.Solid(4, 4, color.NRGBA{})},
		},
	})

	img, err := newOrchestrator().DecodeAll(context.Background(), data, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(img.Frames) != 3 || !img.Metadata.FirstFrameHidden {
		t.Fatalf("expected hidden frame plus 2 frames, got %d (%+v)", len(img.Frames), img.Metadata)
	}
	if got := img.Frames[0].Image.NRGBAAt(0, 0); got != green {
		t.Errorf("hidden frame: expected %v, got %v", green, got)
	}
	// The first visible frame replaces the canvas even though it declares OVER.
	if got := img.Frames[1].Image.NRGBAAt(0, 0); got != halfBlue {
		t.Errorf("first visible frame: expected %v, got %v", halfBlue, got)
	}
	if got := img.Frames[2].Image.NRGBAAt(0, 0); got != halfBlue {
		t.Errorf("transparent OVER frame: expected %v, got %v", halfBlue, got)
	}
}

func TestDecodeAll_MalformedInput(t *testing.T) {
	valid := scenario(fullGreen())

	oversized := bytes.NewBufferString(apng.Signature)
	apngtest.WriteChunk(oversized, apng.ChunkIHDR, apngtest.IHDR(1<<20, 4, 8, 6))

	badRect := apngtest.Build(apngtest.Animation{
		Width: 10, Height: 10,
		Frames: []apngtest.Frame{
			{Control: apngtest.Control(0, 0, 10, 10, 1, 10, apng.DisposeNone, apng.BlendSource), Image: apngtest.Solid(10, 10, red)},
			{Control: apngtest.Control(8, 8, 4, 4, 1, 10, apng.DisposeNone, apng.BlendSource), Image: apngtest.Solid(4, 4, red)},
		},
	})

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"bad signature", append([]byte("\x89PNX"), valid[4:]...), apng.ErrInvalidFormat},
		{"short input", valid[:5], apng.ErrInvalidFormat},
		{"truncated header", valid[:20], apng.ErrInvalidFormat},
		{"oversized dimensions", oversized.Bytes(), apng.ErrSizeExceeded},
		{"frame rect outside canvas", badRect, apng.ErrInternalDecode},
		{"truncated frames", valid[:len(valid)-40], apng.ErrInternalDecode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := newOrchestrator().DecodeAll(context.Background(), tt.data, DefaultConfig())
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
			if img != nil {
				t.Error("expected no image on error")
			}
		})
	}
}

// inflatedCount is a 2x2 stream whose acTL declares frames it does not
// contain. With hidden set, the default image is not part of the animation.
func inflatedCount(frames uint32, hidden bool) []byte {
	var buf bytes.Buffer
	buf.WriteString(apng.Signature)
	apngtest.WriteChunk(&buf, apng.ChunkIHDR, apngtest.IHDR(2, 2, 8, 6))
	apngtest.WriteChunk(&buf, apng.ChunkACTL, apngtest.ACTL(frames, 0))
	if !hidden {
		apngtest.WriteChunk(&buf, apng.ChunkFCTL,
			apngtest.FCTL(0, apngtest.Control(0, 0, 2, 2, 1, 10, apng.DisposeNone, apng.BlendSource)))
	}
	apngtest.WriteChunk(&buf, apng.ChunkIDAT, apngtest.Compress(apngtest.Solid(2, 2, red)))
	apngtest.WriteChunk(&buf, apng.ChunkIEND, nil)
	return buf.Bytes()
}

func TestDecode_DeclaredFrameCountBeyondInput(t *testing.T) {
	tests := []struct {
		name   string
		data   []byte
		window int
	}{
		{"2^28 frames, all retained", inflatedCount(0x10000000, false), 0},
		{"2^28 frames, default window", inflatedCount(0x10000000, false), 8},
		{"max frames after hidden image", inflatedCount(0xFFFFFFFF, true), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.WindowSize = tt.window
			o := newOrchestrator()

			done := make(chan struct{})
			go func() {
				defer close(done)
				img, err := o.DecodeStream(context.Background(), tt.data, cfg)
				if !errors.Is(err, apng.ErrInternalDecode) {
					t.Errorf("stream: expected ErrInternalDecode, got %v", err)
				}
				if img != nil {
					img.Close()
					t.Error("stream: expected no image")
				}
				if _, err := o.DecodeAll(context.Background(), tt.data, cfg); !errors.Is(err, apng.ErrInternalDecode) {
					t.Errorf("sync: expected ErrInternalDecode, got %v", err)
				}
			}()

			select {
			case <-done:
			case <-time.After(2 * time.Second):
				t.Fatal("decode did not reject the frame count promptly")
			}
		})
	}
}

func TestDecodeAll_DebugSink(t *testing.T) {
	sink := mocks.NewFrameSink(true)
	o := New(pngdecoder.New(), sink, mocks.NewLogger())

	if _, err := o.DecodeAll(context.Background(), scenario(fullGreen()), DefaultConfig()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sink.ComposedCount() != 3 {
		t.Errorf("expected 3 composed frames, got %d", sink.ComposedCount())
	}
	if len(sink.RawFrames) != 3 {
		t.Errorf("expected 3 raw frames, got %d", len(sink.RawFrames))
	}
	if got := sink.RawFrames[1].Bounds(); got != image.Rect(0, 0, 4, 4) {
		t.Errorf("raw frame should be rect-sized, got %v", got)
	}
	if !bytes.Contains(sink.MetadataJSON, []byte(`"FrameCount": 3`)) {
		t.Errorf("unexpected metadata JSON: %s", sink.MetadataJSON)
	}
}

func TestDecodeAll_SinkErrorIsNotFatal(t *testing.T) {
	sink := mocks.NewFrameSink(true)
	sink.SaveComposedFrameFunc = func(index int, img image.Image) error {
		return errors.New("disk full")
	}
	logger := mocks.NewLogger()
	o := New(pngdecoder.New(), sink, logger)

	if _, err := o.DecodeAll(context.Background(), scenario(fullGreen()), DefaultConfig()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if logger.Count(ports.LevelWarn) != 3 {
		t.Errorf("expected 3 warnings, got %d", logger.Count(ports.LevelWarn))
	}
}

func TestDecodeAll_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newOrchestrator().DecodeAll(ctx, sequence(3, 0), DefaultConfig()); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestDecodeStream_MatchesDecodeAll(t *testing.T) {
	data := sequence(9, 0)
	o := newOrchestrator()

	all, err := o.DecodeAll(context.Background(), data, DefaultConfig())
	if err != nil {
		t.Fatalf("DecodeAll: %v", err)
	}

	cfg := DefaultConfig()
	cfg.WindowSize = 2
	img, err := o.DecodeStream(context.Background(), data, cfg)
	if err != nil {
		t.Fatalf("DecodeStream: %v", err)
	}
	defer img.Close()

	if !img.Streaming() || img.Metadata != all.Metadata {
		t.Fatalf("unexpected metadata %+v", img.Metadata)
	}
	for i := 0; i < img.FrameCount(); i++ {
		f, err := img.Frame(context.Background(), i)
		if err != nil {
			t.Fatalf("Frame(%d): %v", i, err)
		}
		if f.Index != i {
			t.Errorf("requested %d, got %d", i, f.Index)
		}
		if !bytes.Equal(f.Image.Pix, all.Frames[i].Image.Pix) {
			t.Errorf("frame %d differs from synchronous decode", i)
		}
		if n := img.Stream.Len(); n > 2 {
			t.Errorf("window of 2 holds %d frames", n)
		}
	}
	if peak := img.Stream.Stats().Peak; peak > 2 {
		t.Errorf("window of 2 peaked at %d frames", peak)
	}
}

func TestDecodeStream_WrapAroundRestarts(t *testing.T) {
	data := sequence(5, 0)
	cfg := DefaultConfig()
	cfg.WindowSize = 2

	img, err := newOrchestrator().DecodeStream(context.Background(), data, cfg)
	if err != nil {
		t.Fatalf("DecodeStream: %v", err)
	}
	defer img.Close()

	first, err := img.Frame(context.Background(), 0)
	if err != nil {
		t.Fatalf("Frame(0): %v", err)
	}
	firstPix := append([]byte(nil), first.Image.Pix...)

	// Two full loops.
	for loop := 0; loop < 2; loop++ {
		for i := 0; i < img.FrameCount(); i++ {
			if _, err := img.Frame(context.Background(), i); err != nil {
				t.Fatalf("loop %d Frame(%d): %v", loop, i, err)
			}
		}
	}

	again, err := img.Frame(context.Background(), 0)
	if err != nil {
		t.Fatalf("Frame(0) after wrap: %v", err)
	}
	if !bytes.Equal(again.Image.Pix, firstPix) {
		t.Error("frame 0 after restart differs from the first decode")
	}
	if img.Restarts() < 2 {
		t.Errorf("expected at least 2 restarts, got %d", img.Restarts())
	}
}

func TestDecodeStream_RandomAccess(t *testing.T) {
	data := sequence(6, 0)
	o := newOrchestrator()
	all, _ := o.DecodeAll(context.Background(), data, DefaultConfig())

	cfg := DefaultConfig()
	cfg.WindowSize = 1
	img, err := o.DecodeStream(context.Background(), data, cfg)
	if err != nil {
		t.Fatalf("DecodeStream: %v", err)
	}
	defer img.Close()

	for _, i := range []int{4, 1, 5, 0, 3, 3, 2} {
		f, err := img.Frame(context.Background(), i)
		if err != nil {
			t.Fatalf("Frame(%d): %v", i, err)
		}
		if f.Index != i || !bytes.Equal(f.Image.Pix, all.Frames[i].Image.Pix) {
			t.Errorf("frame %d does not match synchronous decode", i)
		}
	}
}

func TestDecodeStream_OutOfRange(t *testing.T) {
	img, err := newOrchestrator().DecodeStream(context.Background(), sequence(3, 0), DefaultConfig())
	if err != nil {
		t.Fatalf("DecodeStream: %v", err)
	}
	defer img.Close()

	if _, err := img.Frame(context.Background(), 3); !errors.Is(err, framebuffer.ErrIndexOutOfRange) {
		t.Errorf("expected ErrIndexOutOfRange, got %v", err)
	}
}

// failingDecoder fails DecodeFrame from the failAt-th call on.
func failingDecoder(failAt int) *mocks.FrameDecoder {
	var mu sync.Mutex
	calls := 0
	base := pngdecoder.New()
	return &mocks.FrameDecoder{
		Base: base,
		DecodeFrameFunc: func(info ports.ColorInfo, data io.Reader, dst *image.NRGBA) error {
			mu.Lock()
			calls++
			n := calls
			mu.Unlock()
			if n >= failAt {
				return errors.New("corrupt scanline")
			}
			return base.DecodeFrame(info, data, dst)
		},
	}
}

func TestDecodeStream_ProducerErrorTerminates(t *testing.T) {
	o := New(failingDecoder(3), &mocks.NullSink{}, mocks.NewLogger())
	cfg := DefaultConfig()
	cfg.WindowSize = 1

	img, err := o.DecodeStream(context.Background(), sequence(5, 0), cfg)
	if err != nil {
		t.Fatalf("DecodeStream: %v", err)
	}

	if _, err := img.Frame(context.Background(), 1); err != nil {
		t.Fatalf("Frame(1): %v", err)
	}
	_, err = img.Frame(context.Background(), 2)
	if !errors.Is(err, apng.ErrInternalDecode) {
		t.Errorf("expected ErrInternalDecode, got %v", err)
	}
	if !img.Stream.Terminated() {
		t.Error("stream should be terminated after a producer error")
	}

	closed := make(chan struct{})
	go func() {
		img.Close()
		close(closed)
	}()
	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("Close did not join the producer")
	}
}

func TestDecodeStream_FirstFrameError(t *testing.T) {
	o := New(failingDecoder(1), &mocks.NullSink{}, mocks.NewLogger())

	img, err := o.DecodeStream(context.Background(), sequence(3, 0), DefaultConfig())
	if !errors.Is(err, apng.ErrInternalDecode) {
		t.Errorf("expected ErrInternalDecode, got %v", err)
	}
	if img != nil {
		t.Error("expected no image on error")
	}
}

func TestDecodeStream_HeaderError(t *testing.T) {
	_, err := newOrchestrator().DecodeStream(context.Background(), []byte("GIF89a"), DefaultConfig())
	if !errors.Is(err, apng.ErrInvalidFormat) {
		t.Errorf("expected ErrInvalidFormat, got %v", err)
	}
}

func TestDecodeStream_TerminateUnblocksConsumer(t *testing.T) {
	release := make(chan struct{})
	var mu sync.Mutex
	calls := 0
	base := pngdecoder.New()
	dec := &mocks.FrameDecoder{
		Base: base,
		DecodeFrameFunc: func(info ports.ColorInfo, data io.Reader, dst *image.NRGBA) error {
			mu.Lock()
			calls++
			n := calls
			mu.Unlock()
			if n > 1 {
				<-release
			}
			return base.DecodeFrame(info, data, dst)
		},
	}
	o := New(dec, &mocks.NullSink{}, mocks.NewLogger())

	img, err := o.DecodeStream(context.Background(), sequence(3, 0), DefaultConfig())
	if err != nil {
		t.Fatalf("DecodeStream: %v", err)
	}

	errCh := make(chan error)
	go func() {
		_, err := img.Frame(context.Background(), 2)
		errCh <- err
	}()
	time.Sleep(10 * time.Millisecond)
	img.Stream.Terminate()

	select {
	case err := <-errCh:
		if !errors.Is(err, framebuffer.ErrTerminated) {
			t.Errorf("expected ErrTerminated, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("consumer still blocked after Terminate")
	}

	close(release)
	img.Close()
	if n := img.Stream.Len(); n != 0 {
		t.Errorf("terminated stream holds %d frames", n)
	}
}

func TestDecodeStream_ContextCancelTerminates(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	img, err := newOrchestrator().DecodeStream(ctx, sequence(4, 0), DefaultConfig())
	if err != nil {
		t.Fatalf("DecodeStream: %v", err)
	}
	cancel()

	closed := make(chan struct{})
	go func() {
		img.Close()
		close(closed)
	}()
	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("producer did not stop after cancel")
	}
	if !img.Stream.Terminated() {
		t.Error("stream should be terminated after cancel")
	}
}

func TestImage_CloseTwice(t *testing.T) {
	img, err := newOrchestrator().DecodeStream(context.Background(), sequence(2, 0), DefaultConfig())
	if err != nil {
		t.Fatalf("DecodeStream: %v", err)
	}
	img.Close()
	img.Close()

	all, _ := newOrchestrator().DecodeAll(context.Background(), sequence(2, 0), DefaultConfig())
	if err := all.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if _, err := all.Frame(context.Background(), 2); !errors.Is(err, framebuffer.ErrIndexOutOfRange) {
		t.Errorf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func FuzzDecodeAll(f *testing.F) {
	f.Add(scenario(fullGreen()))
	f.Add(sequence(3, 2))
	f.Add(apngtest.Still(apngtest.Solid(2, 2, red)))
	f.Add([]byte(apng.Signature))

	cfg := DefaultConfig()
	cfg.MaxDimension = 64
	o := newOrchestrator()

	f.Fuzz(func(t *testing.T, data []byte) {
		img, err := o.DecodeAll(context.Background(), data, cfg)
		if err != nil {
			if apng.Kind(err) == nil {
				t.Fatalf("untyped error: %v", err)
			}
			return
		}
		if len(img.Frames) != img.Metadata.FrameCount {
			t.Fatalf("expected %d frames, got %d", img.Metadata.FrameCount, len(img.Frames))
		}
	})
}

func FuzzDecodeStream(f *testing.F) {
	f.Add(scenario(fullGreen()), 2)
	f.Add(sequence(5, 0), 0)
	f.Add(inflatedCount(0x10000000, false), 0)
	f.Add(apngtest.Still(apngtest.Solid(2, 2, red)), 1)

	o := newOrchestrator()

	f.Fuzz(func(t *testing.T, data []byte, window int) {
		cfg := DefaultConfig()
		cfg.MaxDimension = 64
		cfg.WindowSize = window % 4

		img, err := o.DecodeStream(context.Background(), data, cfg)
		if err != nil {
			if apng.Kind(err) == nil {
				t.Fatalf("untyped error: %v", err)
			}
			return
		}
		defer img.Close()

		for i := 0; i < img.FrameCount(); i++ {
			fr, err := img.Frame(context.Background(), i)
			if err != nil {
				if apng.Kind(err) == nil {
					t.Fatalf("untyped error at frame %d: %v", i, err)
				}
				return
			}
			if fr.Index != i {
				t.Fatalf("requested %d, got %d", i, fr.Index)
			}
		}
	})
}
