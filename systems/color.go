package systems

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	husl "github.com/hsluv/hsluv-go"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/mazznoer/colorgrad"
)

// Color spaces accepted by Palette.Space besides gradient names.
const (
	SpaceHSL   = "hsl"
	SpaceHSLuv = "hsluv"
)

// ErrUnknownColorSpace is returned by Palette.Validate.
var ErrUnknownColorSpace = errors.New("unknown color space")

// gradients maps Palette.Space names to preset gradients sampled by hue/360.
var gradients = map[string]func() colorgrad.Gradient{
	"viridis": colorgrad.Viridis,
	"plasma":  colorgrad.Plasma,
	"inferno": colorgrad.Inferno,
	"magma":   colorgrad.Magma,
	"cividis": colorgrad.Cividis,
	"turbo":   colorgrad.Turbo,
	"rainbow": colorgrad.Rainbow,
	"sinebow": colorgrad.Sinebow,
}

// Palette produces the particle color from a slowly rotating hue.
type Palette struct {
	Hue        float64 // degrees, [0, 360)
	HueInc     float64 // degrees added per tick
	Saturation float64
	Lightness  float64
	Alpha      float64
	Space      string // hsl, hsluv or a gradient name

	grad *colorgrad.Gradient
}

// Validate reports an unknown Space.
func (p Palette) Validate() error {
	switch p.Space {
	case "", SpaceHSL, SpaceHSLuv:
		return nil
	}
	if _, ok := gradients[p.Space]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownColorSpace, p.Space)
	}
	return nil
}

// Color returns the current draw color. The hue is truncated to whole degrees.
// Gradient spaces ignore saturation and lightness.
func (p *Palette) Color() color.NRGBA {
	hue := math.Floor(p.Hue)

	var c colorful.Color
	switch p.Space {
	case "", SpaceHSL:
		c = colorful.Hsl(hue, p.Saturation, p.Lightness)
	case SpaceHSLuv:
		r, g, b := husl.HuslToRGB(hue, p.Saturation*100, p.Lightness*100)
		c = colorful.Color{R: r, G: g, B: b}
	default:
		if p.grad == nil {
			mk, ok := gradients[p.Space]
			if !ok {
				c = colorful.Hsl(hue, p.Saturation, p.Lightness)
				break
			}
			g := mk()
			p.grad = &g
		}
		c = p.grad.At(hue / 360)
	}

	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha8(p.Alpha)}
}

// Advance rotates the hue by HueInc.
func (p *Palette) Advance() {
	p.Hue = math.Mod(p.Hue+p.HueInc, 360)
	if p.Hue < 0 {
		p.Hue += 360
	}
}

func alpha8(a float64) uint8 {
	return uint8(clamp01(a)*255 + 0.5)
}
