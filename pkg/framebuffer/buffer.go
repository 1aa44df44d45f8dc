// Package framebuffer holds composited frames between the decode producer
// and its consumers. Only a window of frames anchored at the last requested
// index is retained, so memory stays bounded regardless of animation length.
package framebuffer

import (
	"context"
	"errors"
	"sync"

	"github.com/user/apngview/pkg/apng"
)

var (
	// ErrTerminated is returned to waiters once the buffer has been closed.
	ErrTerminated = errors.New("framebuffer: terminated")
	// ErrIndexOutOfRange is returned for requests outside [0, frameCount).
	ErrIndexOutOfRange = errors.New("framebuffer: index out of range")
)

// NoIndex is returned by WaitForNextNeededIndex after termination.
const NoIndex = -1

// Stats counts buffer activity for diagnostics.
type Stats struct {
	Requests  int // WaitForFrame calls
	Hits      int // requests served without blocking
	Waits     int // requests that blocked at least once
	Stored    int // frames accepted by SetFrame
	Dropped   int // frames rejected because they were outside the window
	Evictions int // frames evicted when the window moved
	Peak      int // most frames retained at once
	Restarts  int // decode passes restarted from the first frame
}

// Buffer is a monitor shared by exactly one producer and any number of
// consumers. Every state change broadcasts on the condition variable.
type Buffer struct {
	mu   sync.Mutex
	cond *sync.Cond

	window        int
	frameCount    int
	frames        map[int]*apng.Frame
	lastRequested int
	terminated    bool
	err           error
	stats         Stats
}

// New creates a buffer retaining at most windowSize frames. A windowSize of
// zero or less retains every frame.
func New(windowSize int) *Buffer {
	b := &Buffer{
		window: windowSize,
		frames: make(map[int]*apng.Frame),
	}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// SetFrameCount records the number of frames per decode pass. The count
// only ever grows.
func (b *Buffer) SetFrameCount(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if n > b.frameCount {
		b.frameCount = n
		b.cond.Broadcast()
	}
}

// FrameCount returns the number of frames per decode pass.
func (b *Buffer) FrameCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.frameCount
}

// WindowSize returns the effective number of frames retained.
func (b *Buffer) WindowSize() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size()
}

func (b *Buffer) size() int {
	if b.window <= 0 || b.window > b.frameCount {
		return b.frameCount
	}
	return b.window
}

// inWindow reports whether index lies in the size() indices starting at
// lastRequested, wrapping modulo frameCount.
func (b *Buffer) inWindow(index int) bool {
	n := b.frameCount
	if n == 0 {
		return false
	}
	d := ((index-b.lastRequested)%n + n) % n
	return d < b.size()
}

// SetFrame stores frame at index and wakes waiters. It reports whether the
// frame was kept: frames outside the window and frames arriving after
// termination are discarded.
func (b *Buffer) SetFrame(index int, frame *apng.Frame) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.terminated {
		return false
	}
	if !b.inWindow(index) {
		b.stats.Dropped++
		return false
	}
	b.frames[index] = frame
	b.stats.Stored++
	b.stats.Peak = max(b.stats.Peak, len(b.frames))
	b.cond.Broadcast()
	return true
}

// WaitForFrame blocks until the frame at index is available and returns it.
// The request moves the window to start at index, evicting frames outside
// it. It fails with ErrIndexOutOfRange, with the terminal error once the
// buffer is terminated, or with ctx's error on cancellation.
func (b *Buffer) WaitForFrame(ctx context.Context, index int) (*apng.Frame, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if index < 0 || index >= b.frameCount {
		return nil, ErrIndexOutOfRange
	}
	b.stats.Requests++

	b.lastRequested = index
	for i := range b.frames {
		if !b.inWindow(i) {
			delete(b.frames, i)
			b.stats.Evictions++
		}
	}
	// The producer may be waiting for the window to move.
	b.cond.Broadcast()

	stop := context.AfterFunc(ctx, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.cond.Broadcast()
	})
	defer stop()

	waited := false
	for {
		if b.terminated {
			return nil, b.terminalError()
		}
		if f, ok := b.frames[index]; ok {
			if !waited {
				b.stats.Hits++
			}
			return f, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !waited {
			b.stats.Waits++
			waited = true
		}
		b.cond.Wait()
	}
}

func (b *Buffer) terminalError() error {
	if b.err != nil {
		return b.err
	}
	return ErrTerminated
}

// IndexesNeeded returns the indices of the window that are not yet present,
// in window order starting at the last requested index.
func (b *Buffer) IndexesNeeded() []int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.needed()
}

func (b *Buffer) needed() []int {
	if b.terminated || b.frameCount == 0 {
		return nil
	}
	out := make([]int, 0, max(b.size()-len(b.frames), 0))
	for d := 0; d < b.size(); d++ {
		i := (b.lastRequested + d) % b.frameCount
		if _, ok := b.frames[i]; !ok {
			out = append(out, i)
		}
	}
	return out
}

// firstNeeded returns the first missing window index without building the
// whole list, or NoIndex when the window is full.
func (b *Buffer) firstNeeded() int {
	if b.frameCount == 0 {
		return NoIndex
	}
	for d := 0; d < b.size(); d++ {
		i := (b.lastRequested + d) % b.frameCount
		if _, ok := b.frames[i]; !ok {
			return i
		}
	}
	return NoIndex
}

// WaitForNextNeededIndex blocks the producer until some window index is
// missing and returns the first one, or returns NoIndex once the buffer is
// terminated.
func (b *Buffer) WaitForNextNeededIndex() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	for {
		if b.terminated {
			return NoIndex
		}
		if i := b.firstNeeded(); i != NoIndex {
			return i
		}
		b.cond.Wait()
	}
}

// Terminate closes the buffer, releases stored frames and wakes every
// waiter. It is idempotent.
func (b *Buffer) Terminate() {
	b.Fail(nil)
}

// Fail terminates the buffer with err, which waiters receive instead of
// ErrTerminated. Only the first call has an effect.
func (b *Buffer) Fail(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.terminated {
		return
	}
	b.terminated = true
	b.err = err
	clear(b.frames)
	b.cond.Broadcast()
}

// Terminated reports whether the buffer has been closed.
func (b *Buffer) Terminated() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.terminated
}

// Err returns the error the buffer was failed with, if any.
func (b *Buffer) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

// Len returns the number of frames currently retained.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.frames)
}

// AddRestart records a restarted decode pass.
func (b *Buffer) AddRestart() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stats.Restarts++
}

// Stats returns a snapshot of the buffer counters.
func (b *Buffer) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats
}
