// Package player is a headless display consumer. It owns a playback clock,
// pulls frames by index, and wraps or stops at the end of each pass
// according to the animation's repeat count.
package player

import (
	"context"
	"time"

	"github.com/user/apngview/pkg/apng"
	"github.com/user/apngview/pkg/ports"
)

// Source serves composited frames by index.
type Source interface {
	Frame(ctx context.Context, index int) (*apng.Frame, error)
}

// Clock abstracts the playback timer.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// RealClock returns a Clock backed by the time package.
func RealClock() Clock {
	return realClock{}
}

// Options controls playback.
type Options struct {
	// OverrideRepeat replaces the stream's repeat count with RepeatCount.
	OverrideRepeat bool
	RepeatCount    int

	// MaxFrames stops playback after this many presented frames. Zero
	// means no limit.
	MaxFrames int
}

// Stats summarizes a playback run.
type Stats struct {
	Presented int
	Loops     int
	Elapsed   time.Duration
}

// Player walks a Source in display order.
type Player struct {
	src     Source
	meta    apng.Metadata
	clock   Clock
	logger  ports.Logger
	options Options

	index int
	loops int
	stats Stats
}

// New creates a Player positioned on the first visible frame.
func New(src Source, meta apng.Metadata, clock Clock, logger ports.Logger, options Options) *Player {
	return &Player{
		src:     src,
		meta:    meta,
		clock:   clock,
		logger:  logger.WithComponent("player"),
		options: options,
		index:   meta.FirstVisibleIndex(),
	}
}

// Index returns the current frame index.
func (p *Player) Index() int {
	return p.index
}

func (p *Player) repeatCount() int {
	if p.options.OverrideRepeat {
		return p.options.RepeatCount
	}
	return p.meta.RepeatCount
}

// Advance moves to the next frame. At the end of a pass it wraps to the
// first visible frame while repeats remain, otherwise it reports false and
// the index stays on the last frame. A non-animated image never advances.
func (p *Player) Advance() (int, bool) {
	if !p.meta.Animated {
		return p.index, false
	}
	if next := p.index + 1; next < p.meta.FrameCount {
		p.index = next
		return next, true
	}

	repeat := p.repeatCount()
	if repeat != apng.RepeatInfinite && p.loops >= repeat {
		return p.index, false
	}
	p.loops++
	p.index = p.meta.FirstVisibleIndex()
	p.logger.Debug("Loop %d, wrapping to frame %d", p.loops, p.index)
	return p.index, true
}

// Run presents frames until playback ends, present fails or ctx is done.
// Each frame stays on screen for its duration measured from the moment it
// was requested, so slow presentation does not stretch the animation.
func (p *Player) Run(ctx context.Context, present func(*apng.Frame) error) (Stats, error) {
	start := p.clock.Now()
	for {
		shown := p.clock.Now()
		f, err := p.src.Frame(ctx, p.index)
		if err != nil {
			return p.finish(start), err
		}
		if err := present(f); err != nil {
			return p.finish(start), err
		}
		p.stats.Presented++

		if f.Infinite() {
			return p.finish(start), nil
		}
		if p.options.MaxFrames > 0 && p.stats.Presented >= p.options.MaxFrames {
			return p.finish(start), nil
		}

		wait := f.Duration - p.clock.Now().Sub(shown)
		if wait > 0 {
			select {
			case <-ctx.Done():
				return p.finish(start), ctx.Err()
			case <-p.clock.After(wait):
			}
		}

		if _, ok := p.Advance(); !ok {
			return p.finish(start), nil
		}
	}
}

func (p *Player) finish(start time.Time) Stats {
	p.stats.Loops = p.loops
	p.stats.Elapsed = p.clock.Now().Sub(start)
	return p.stats
}
