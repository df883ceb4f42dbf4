// Package raster implements the drawing surfaces on the CPU with
// anti-aliased vector rasterization. It backs headless runs and PNG output.
package raster

import (
	"image"
	"image/color"
	"image/draw"
	"log/slog"
	"math"

	"golang.org/x/image/vector"

	"github.com/pthm-cable/afterglow/systems"
)

// kappa places cubic control points for a quarter circle.
const kappa = 0.5522847498

// maxFree bounds how many released surfaces are kept for reuse.
const maxFree = 4

// Canvas allocates RGBA surfaces of a fixed size. It is not safe for
// concurrent use; surfaces share the canvas rasterizer.
type Canvas struct {
	width, height int
	ras           *vector.Rasterizer
	maskBuf       []uint8
	free          []*Surface
}

// NewCanvas creates a canvas for width x height surfaces.
func NewCanvas(width, height int) *Canvas {
	return &Canvas{
		width:  width,
		height: height,
		ras:    vector.NewRasterizer(1, 1),
	}
}

// Size implements systems.Canvas.
func (c *Canvas) Size() (int, int) {
	return c.width, c.height
}

// NewSurface implements systems.Canvas. The surface starts fully transparent.
func (c *Canvas) NewSurface() systems.Surface {
	if n := len(c.free); n > 0 {
		s := c.free[n-1]
		c.free = c.free[:n-1]
		s.Clear(color.NRGBA{})
		return s
	}
	return &Surface{
		canvas: c,
		img:    image.NewRGBA(image.Rect(0, 0, c.width, c.height)),
	}
}

// Release implements systems.Canvas.
func (c *Canvas) Release(s systems.Surface) {
	rs, ok := s.(*Surface)
	if !ok || rs.canvas != c {
		slog.Error("raster: releasing foreign surface")
		return
	}
	if len(c.free) < maxFree {
		c.free = append(c.free, rs)
	}
}

// mask returns a scratch alpha mask of exactly w x h pixels.
func (c *Canvas) mask(w, h int) *image.Alpha {
	n := w * h
	if cap(c.maskBuf) < n {
		c.maskBuf = make([]uint8, n)
	}
	return &image.Alpha{
		Pix:    c.maskBuf[:n],
		Stride: w,
		Rect:   image.Rect(0, 0, w, h),
	}
}

// Surface is an RGBA image that remembers which pixels may be non-transparent.
type Surface struct {
	canvas *Canvas
	img    *image.RGBA
	dirty  image.Rectangle
}

// Image returns the backing image.
func (s *Surface) Image() *image.RGBA {
	return s.img
}

// Dirty returns the bounds of everything drawn since the last transparent clear.
func (s *Surface) Dirty() image.Rectangle {
	return s.dirty
}

// Clear implements systems.Surface.
func (s *Surface) Clear(c color.NRGBA) {
	if c.A == 0 {
		// Only the drawn region can hold colour.
		if !s.dirty.Empty() {
			draw.Draw(s.img, s.dirty, image.Transparent, image.Point{}, draw.Src)
		}
		s.dirty = image.Rectangle{}
		return
	}
	draw.Draw(s.img, s.img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	s.dirty = s.img.Bounds()
}

// Point implements systems.Surface as a filled circle of diameter d.
func (s *Surface) Point(x, y, d float64, c color.NRGBA) {
	if d <= 0 || c.A == 0 {
		return
	}
	r := d / 2
	s.fill(x-r, y-r, x+r, y+r, c, func(ras *vector.Rasterizer, ox, oy float64) {
		cx, cy := float32(x-ox), float32(y-oy)
		rr, k := float32(r), float32(r*kappa)
		ras.MoveTo(cx+rr, cy)
		ras.CubeTo(cx+rr, cy+k, cx+k, cy+rr, cx, cy+rr)
		ras.CubeTo(cx-k, cy+rr, cx-rr, cy+k, cx-rr, cy)
		ras.CubeTo(cx-rr, cy-k, cx-k, cy-rr, cx, cy-rr)
		ras.CubeTo(cx+k, cy-rr, cx+rr, cy-k, cx+rr, cy)
		ras.ClosePath()
	})
}

// Line implements systems.Surface as a butt-capped quad of width w.
// Zero-length lines draw nothing.
func (s *Surface) Line(x0, y0, x1, y1, w float64, c color.NRGBA) {
	dx, dy := x1-x0, y1-y0
	l := math.Hypot(dx, dy)
	if l == 0 || w <= 0 || c.A == 0 {
		return
	}
	nx, ny := -dy/l*w/2, dx/l*w/2

	minX := math.Min(x0, x1) - math.Abs(nx)
	minY := math.Min(y0, y1) - math.Abs(ny)
	maxX := math.Max(x0, x1) + math.Abs(nx)
	maxY := math.Max(y0, y1) + math.Abs(ny)
	s.fill(minX, minY, maxX, maxY, c, func(ras *vector.Rasterizer, ox, oy float64) {
		ras.MoveTo(float32(x0+nx-ox), float32(y0+ny-oy))
		ras.LineTo(float32(x1+nx-ox), float32(y1+ny-oy))
		ras.LineTo(float32(x1-nx-ox), float32(y1-ny-oy))
		ras.LineTo(float32(x0-nx-ox), float32(y0-ny-oy))
		ras.ClosePath()
	})
}

// Draw implements systems.Surface by blending src over s. Only raster
// surfaces can be drawn; anything else is logged and skipped.
func (s *Surface) Draw(src systems.Surface) {
	rs, ok := src.(*Surface)
	if !ok {
		slog.Error("raster: drawing foreign surface")
		return
	}
	r := rs.dirty.Intersect(s.img.Bounds())
	if r.Empty() {
		return
	}
	draw.Draw(s.img, r, rs.img, r.Min, draw.Over)
	s.dirty = s.dirty.Union(r)
}

// fill rasterizes the path built by path inside the box (x0,y0)-(x1,y1) and
// blends c through the resulting coverage mask.
func (s *Surface) fill(x0, y0, x1, y1 float64, c color.NRGBA, path func(ras *vector.Rasterizer, ox, oy float64)) {
	box := image.Rect(
		int(math.Floor(x0)), int(math.Floor(y0)),
		int(math.Ceil(x1)), int(math.Ceil(y1)),
	)
	clipped := box.Intersect(s.img.Bounds())
	if clipped.Empty() {
		return
	}

	ras := s.canvas.ras
	ras.Reset(box.Dx(), box.Dy())
	ras.DrawOp = draw.Src
	path(ras, float64(box.Min.X), float64(box.Min.Y))

	mask := s.canvas.mask(box.Dx(), box.Dy())
	ras.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})

	draw.DrawMask(s.img, clipped, image.NewUniform(c), image.Point{}, mask, clipped.Min.Sub(box.Min), draw.Over)
	s.dirty = s.dirty.Union(clipped)
}
