// Package renderer draws the simulation on the GPU through raylib.
// Everything here must run on the thread that created the window.
package renderer

import (
	"image/color"
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/afterglow/systems"
)

// TextureCanvas allocates render textures as drawing surfaces.
// Drawing is batched into whichever texture is currently bound; the
// binding only changes when a different surface is drawn to.
type TextureCanvas struct {
	width, height int32
	active        *Surface
}

// NewTextureCanvas creates a canvas for width x height render textures.
// The raylib window must already be open.
func NewTextureCanvas(width, height int) *TextureCanvas {
	return &TextureCanvas{width: int32(width), height: int32(height)}
}

// Size implements systems.Canvas.
func (c *TextureCanvas) Size() (int, int) {
	return int(c.width), int(c.height)
}

// NewSurface implements systems.Canvas.
func (c *TextureCanvas) NewSurface() systems.Surface {
	// Loading a framebuffer unbinds the active one.
	c.Flush()
	return &Surface{
		canvas: c,
		target: rl.LoadRenderTexture(c.width, c.height),
	}
}

// Release implements systems.Canvas by unloading the render texture.
func (c *TextureCanvas) Release(s systems.Surface) {
	ts, ok := s.(*Surface)
	if !ok || ts.canvas != c {
		slog.Error("renderer: releasing foreign surface")
		return
	}
	c.Flush()
	rl.UnloadRenderTexture(ts.target)
}

// Flush ends the current texture batch so the screen can be drawn.
func (c *TextureCanvas) Flush() {
	if c.active != nil {
		rl.EndTextureMode()
		c.active = nil
	}
}

func (c *TextureCanvas) bind(s *Surface) {
	if c.active == s {
		return
	}
	if c.active != nil {
		rl.EndTextureMode()
	}
	rl.BeginTextureMode(s.target)
	c.active = s
}

// Surface is a render texture.
type Surface struct {
	canvas *TextureCanvas
	target rl.RenderTexture2D
}

// Texture returns the color texture backing the surface.
func (s *Surface) Texture() rl.Texture2D {
	return s.target.Texture
}

// Clear implements systems.Surface.
func (s *Surface) Clear(c color.NRGBA) {
	s.canvas.bind(s)
	rl.ClearBackground(toRL(c))
}

// Point implements systems.Surface.
func (s *Surface) Point(x, y, d float64, c color.NRGBA) {
	s.canvas.bind(s)
	rl.DrawCircleV(rl.Vector2{X: float32(x), Y: float32(y)}, float32(d/2), toRL(c))
}

// Line implements systems.Surface.
func (s *Surface) Line(x0, y0, x1, y1, w float64, c color.NRGBA) {
	s.canvas.bind(s)
	rl.DrawLineEx(
		rl.Vector2{X: float32(x0), Y: float32(y0)},
		rl.Vector2{X: float32(x1), Y: float32(y1)},
		float32(w),
		toRL(c),
	)
}

// Draw implements systems.Surface.
func (s *Surface) Draw(src systems.Surface) {
	ts, ok := src.(*Surface)
	if !ok {
		slog.Error("renderer: drawing foreign surface")
		return
	}
	s.canvas.bind(s)
	drawFlipped(ts.target.Texture, 0, 0)
}

// drawFlipped draws a render texture upright; OpenGL stores them bottom-up.
func drawFlipped(tex rl.Texture2D, x, y float32) {
	src := rl.Rectangle{X: 0, Y: 0, Width: float32(tex.Width), Height: -float32(tex.Height)}
	rl.DrawTextureRec(tex, src, rl.Vector2{X: x, Y: y}, rl.White)
}

// toRL converts to raylib's straight-alpha color.
func toRL(c color.NRGBA) rl.Color {
	return rl.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}
