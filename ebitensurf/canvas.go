// Package ebitensurf implements drawing surfaces on ebiten offscreen images.
package ebitensurf

import (
	"image/color"
	"log/slog"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/pthm-cable/afterglow/systems"
)

// Canvas allocates ebiten images as surfaces.
type Canvas struct {
	width, height int
	antialias     bool
}

// NewCanvas creates a canvas of width x height images.
func NewCanvas(width, height int, antialias bool) *Canvas {
	return &Canvas{width: width, height: height, antialias: antialias}
}

// Size implements systems.Canvas.
func (c *Canvas) Size() (int, int) {
	return c.width, c.height
}

// NewSurface implements systems.Canvas.
func (c *Canvas) NewSurface() systems.Surface {
	return &Surface{
		canvas: c,
		img:    ebiten.NewImage(c.width, c.height),
	}
}

// Release implements systems.Canvas by deallocating the image.
func (c *Canvas) Release(s systems.Surface) {
	es, ok := s.(*Surface)
	if !ok || es.canvas != c {
		slog.Error("ebitensurf: releasing foreign surface")
		return
	}
	es.img.Deallocate()
}

// Surface is an offscreen ebiten image.
type Surface struct {
	canvas *Canvas
	img    *ebiten.Image
}

// Image returns the backing image.
func (s *Surface) Image() *ebiten.Image {
	return s.img
}

// Clear implements systems.Surface.
func (s *Surface) Clear(c color.NRGBA) {
	if c.A == 0 {
		s.img.Clear()
		return
	}
	s.img.Fill(c)
}

// Point implements systems.Surface.
func (s *Surface) Point(x, y, d float64, c color.NRGBA) {
	vector.DrawFilledCircle(s.img, float32(x), float32(y), float32(d/2), c, s.canvas.antialias)
}

// Line implements systems.Surface.
func (s *Surface) Line(x0, y0, x1, y1, w float64, c color.NRGBA) {
	vector.StrokeLine(s.img, float32(x0), float32(y0), float32(x1), float32(y1), float32(w), c, s.canvas.antialias)
}

// Draw implements systems.Surface with source-over blending.
func (s *Surface) Draw(src systems.Surface) {
	es, ok := src.(*Surface)
	if !ok {
		slog.Error("ebitensurf: drawing foreign surface")
		return
	}
	s.img.DrawImage(es.img, nil)
}
