package systems

import (
	"image/color"
	"log/slog"
)

// Surface is an offscreen frame that particles and frames are drawn into.
type Surface interface {
	// Clear fills the whole surface with c.
	Clear(c color.NRGBA)
	// Point draws a filled circle of diameter d centered at (x, y).
	Point(x, y, d float64, c color.NRGBA)
	// Line draws a segment of width w.
	Line(x0, y0, x1, y1, w float64, c color.NRGBA)
	// Draw composites src over this surface at the origin.
	Draw(src Surface)
}

// Canvas allocates and releases surfaces of a fixed size.
// Every surface returned by NewSurface must be passed to Release exactly once.
type Canvas interface {
	Size() (width, height int)
	NewSurface() Surface
	Release(s Surface)
}

// TrackedCanvas wraps a Canvas and counts surface lifetimes.
type TrackedCanvas struct {
	inner Canvas
	live  map[Surface]struct{}

	allocated      int64
	released       int64
	doubleReleases int64
	peak           int
}

// NewTrackedCanvas wraps inner with allocation tracking.
func NewTrackedCanvas(inner Canvas) *TrackedCanvas {
	return &TrackedCanvas{
		inner: inner,
		live:  make(map[Surface]struct{}),
	}
}

// Size returns the inner canvas size.
func (c *TrackedCanvas) Size() (int, int) {
	return c.inner.Size()
}

// NewSurface allocates a surface from the inner canvas.
func (c *TrackedCanvas) NewSurface() Surface {
	s := c.inner.NewSurface()
	c.live[s] = struct{}{}
	c.allocated++
	if len(c.live) > c.peak {
		c.peak = len(c.live)
	}
	return s
}

// Release frees s. Releasing a surface that is not live is counted and ignored.
func (c *TrackedCanvas) Release(s Surface) {
	if _, ok := c.live[s]; !ok {
		c.doubleReleases++
		slog.Error("surface released twice or never allocated", "double_releases", c.doubleReleases)
		return
	}
	delete(c.live, s)
	c.released++
	c.inner.Release(s)
}

// Live returns the number of surfaces currently allocated.
func (c *TrackedCanvas) Live() int {
	return len(c.live)
}

// Peak returns the highest Live value observed.
func (c *TrackedCanvas) Peak() int {
	return c.peak
}

// Allocated returns the total number of surfaces allocated.
func (c *TrackedCanvas) Allocated() int64 {
	return c.allocated
}

// Released returns the total number of surfaces released.
func (c *TrackedCanvas) Released() int64 {
	return c.released
}

// DoubleReleases returns how many invalid releases were ignored.
func (c *TrackedCanvas) DoubleReleases() int64 {
	return c.doubleReleases
}

// NullCanvas hands out surfaces that discard all drawing. Useful for
// measuring simulation cost without rasterization.
type NullCanvas struct {
	Width, Height int
}

type nullSurface struct {
	// non-zero size so each allocation has a distinct address
	_ byte
}

func (*nullSurface) Clear(color.NRGBA)                                             {}
func (*nullSurface) Point(float64, float64, float64, color.NRGBA)                  {}
func (*nullSurface) Line(float64, float64, float64, float64, float64, color.NRGBA) {}
func (*nullSurface) Draw(Surface)                                                  {}

// Size returns the configured size.
func (c NullCanvas) Size() (int, int) {
	return c.Width, c.Height
}

// NewSurface returns a new discarding surface.
func (c NullCanvas) NewSurface() Surface {
	return &nullSurface{}
}

// Release does nothing.
func (c NullCanvas) Release(Surface) {}
