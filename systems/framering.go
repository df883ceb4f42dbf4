package systems

import (
	"fmt"
	"image/color"
)

// FrameRing holds the last N drawn frames for trail compositing.
// It owns every surface it holds and releases each one when it is evicted.
type FrameRing struct {
	canvas Canvas
	frames []Surface
	head   int // index of the oldest frame
	closed bool
}

// NewFrameRing pre-fills a ring with maxFrames blank surfaces.
func NewFrameRing(canvas Canvas, maxFrames int) (*FrameRing, error) {
	if maxFrames < 1 {
		return nil, fmt.Errorf("frame ring needs at least one frame, got %d", maxFrames)
	}
	r := &FrameRing{
		canvas: canvas,
		frames: make([]Surface, maxFrames),
	}
	for i := range r.frames {
		s := canvas.NewSurface()
		s.Clear(color.NRGBA{})
		r.frames[i] = s
	}
	return r, nil
}

// Len returns the number of frames held. It is constant for the ring's lifetime.
func (r *FrameRing) Len() int {
	return len(r.frames)
}

// Push enqueues s as the newest frame and releases the oldest one.
// The ring takes ownership of s.
func (r *FrameRing) Push(s Surface) {
	oldest := r.frames[r.head]
	r.frames[r.head] = s
	r.head = (r.head + 1) % len(r.frames)
	r.canvas.Release(oldest)
}

// Each calls fn for every frame, oldest first.
func (r *FrameRing) Each(fn func(s Surface)) {
	n := len(r.frames)
	for i := 0; i < n; i++ {
		fn(r.frames[(r.head+i)%n])
	}
}

// Close releases every held frame. The ring must not be used afterwards.
func (r *FrameRing) Close() {
	if r.closed {
		return
	}
	r.closed = true
	r.Each(r.canvas.Release)
	r.frames = nil
}

// Composite draws every buffered frame, oldest to newest, over a fresh
// surface cleared to background. The caller owns the returned surface.
func Composite(r *FrameRing, canvas Canvas, background color.NRGBA) Surface {
	out := canvas.NewSurface()
	out.Clear(background)
	r.Each(out.Draw)
	return out
}
