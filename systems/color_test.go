package systems

import (
	"errors"
	"image/color"
	"testing"
)

func TestPaletteColor(t *testing.T) {
	tests := []struct {
		name string
		hue  float64
		want color.NRGBA
	}{
		{"red", 0, color.NRGBA{R: 255, G: 0, B: 0, A: 13}},
		{"green", 120, color.NRGBA{R: 0, G: 255, B: 0, A: 13}},
		{"blue", 240, color.NRGBA{R: 0, G: 0, B: 255, A: 13}},
		{"truncated hue", 120.9, color.NRGBA{R: 0, G: 255, B: 0, A: 13}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Palette{Hue: tt.hue, Saturation: 1, Lightness: 0.5, Alpha: 0.05}
			if got := p.Color(); got != tt.want {
				t.Errorf("Color() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPaletteAdvanceWraps(t *testing.T) {
	p := Palette{Hue: 358, HueInc: 1}
	p.Advance()
	p.Advance()
	if p.Hue != 0 {
		t.Errorf("hue after wrap = %v, want 0", p.Hue)
	}
	p.Advance()
	if p.Hue != 1 {
		t.Errorf("hue = %v, want 1", p.Hue)
	}

	back := Palette{Hue: 0, HueInc: -1}
	back.Advance()
	if back.Hue != 359 {
		t.Errorf("negative increment should wrap to 359, got %v", back.Hue)
	}
}

func TestPaletteSpaces(t *testing.T) {
	tests := []struct {
		name  string
		space string
		hue   float64
		check func(c color.NRGBA) bool
	}{
		{"hsluv red", SpaceHSLuv, 12, func(c color.NRGBA) bool { return c.R > c.G && c.R > c.B }},
		{"hsluv blue", SpaceHSLuv, 265, func(c color.NRGBA) bool { return c.B > c.R && c.B > c.G }},
		{"viridis start is purple", "viridis", 0, func(c color.NRGBA) bool { return c.B > c.G }},
		{"viridis end is yellow-green", "viridis", 350, func(c color.NRGBA) bool { return c.G > c.B }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Palette{Hue: tt.hue, Saturation: 1, Lightness: 0.5, Alpha: 1, Space: tt.space}
			if err := p.Validate(); err != nil {
				t.Fatalf("Validate: %v", err)
			}
			c := p.Color()
			if c.A != 255 {
				t.Errorf("alpha = %d, want 255", c.A)
			}
			if !tt.check(c) {
				t.Errorf("Color() = %v", c)
			}
		})
	}
}

func TestPaletteValidate(t *testing.T) {
	for _, space := range []string{"", SpaceHSL, SpaceHSLuv, "turbo"} {
		if err := (Palette{Space: space}).Validate(); err != nil {
			t.Errorf("Validate(%q) = %v", space, err)
		}
	}
	err := Palette{Space: "sepia"}.Validate()
	if !errors.Is(err, ErrUnknownColorSpace) {
		t.Errorf("Validate(sepia) = %v, want ErrUnknownColorSpace", err)
	}
}
